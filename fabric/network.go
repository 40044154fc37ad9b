package fabric

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/hyperledger/fabric-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-sdk-go/pkg/gateway"
)

// ErrIdentityNotFound is returned by Acquire when the requested identity
// label has not been imported into the wallet.
var ErrIdentityNotFound = errors.New("identity not found in wallet")

// Contract is the narrow slice of a ledger contract handle the HTTP layer
// needs. *gateway.Contract satisfies it.
type Contract interface {
	SubmitTransaction(name string, args ...string) ([]byte, error)
	EvaluateTransaction(name string, args ...string) ([]byte, error)
}

// ContractProvider hands out contract handles keyed by identity label. The
// HTTP layer depends on this interface rather than on SessionManager so
// handlers can run against a stub ledger in tests.
type ContractProvider interface {
	Acquire(label string) (Contract, error)
	Release(label string)
	ReleaseAll()
}

// Options describes the fixed channel/chaincode scope every session is
// opened against.
type Options struct {
	CCPPath    string
	WalletPath string
	Channel    string
	Chaincode  string
}

type session struct {
	contract Contract
	close    func()
}

// connectFunc establishes a ledger session for an identity label and returns
// the contract handle plus a teardown function. Swapped out in tests.
type connectFunc func(opts Options, label string) (Contract, func(), error)

// SessionManager holds one live ledger session per identity label. Sessions
// are created lazily on first use and reused afterwards; the registry is
// mutex-guarded so concurrent first requests for a label establish exactly
// one session. No retry policy is applied, callers see the raw failure.
type SessionManager struct {
	opts    Options
	connect connectFunc

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionManager creates a session registry scoped to one
// channel/chaincode pair.
func NewSessionManager(opts Options) *SessionManager {
	return &SessionManager{
		opts:     opts,
		connect:  gatewayConnect,
		sessions: make(map[string]*session),
	}
}

// Acquire returns the contract handle for the identity label, establishing
// and caching a session on first use. Fails with ErrIdentityNotFound when
// the label is absent from the wallet; connection failures are wrapped and
// propagated raw.
func (m *SessionManager) Acquire(label string) (Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[label]; ok {
		return s.contract, nil
	}

	contract, closeFn, err := m.connect(m.opts, label)
	if err != nil {
		return nil, err
	}

	m.sessions[label] = &session{contract: contract, close: closeFn}
	return contract, nil
}

// Release tears down and evicts the session for the label. Idempotent when
// no session is active.
func (m *SessionManager) Release(label string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[label]; ok {
		if s.close != nil {
			s.close()
		}
		delete(m.sessions, label)
	}
}

// ReleaseAll tears down every active session. Called at process shutdown.
func (m *SessionManager) ReleaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for label, s := range m.sessions {
		if s.close != nil {
			s.close()
		}
		delete(m.sessions, label)
	}
}

// ActiveSessions returns the labels with a live session, for diagnostics.
func (m *SessionManager) ActiveSessions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	labels := make([]string, 0, len(m.sessions))
	for label := range m.sessions {
		labels = append(labels, label)
	}
	return labels
}

// gatewayConnect opens a gateway connection for the label using the wallet
// and connection profile, scoped to the configured channel and chaincode.
func gatewayConnect(opts Options, label string) (Contract, func(), error) {
	wallet, err := gateway.NewFileSystemWallet(opts.WalletPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open wallet: %w", err)
	}

	if !wallet.Exists(label) {
		return nil, nil, fmt.Errorf("%w: %s", ErrIdentityNotFound, label)
	}

	gw, err := gateway.Connect(
		gateway.WithConfig(config.FromFile(filepath.Clean(opts.CCPPath))),
		gateway.WithIdentity(wallet, label),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect gateway as %s: %w", label, err)
	}

	network, err := gw.GetNetwork(opts.Channel)
	if err != nil {
		gw.Close()
		return nil, nil, fmt.Errorf("get network %s: %w", opts.Channel, err)
	}

	return network.GetContract(opts.Chaincode), gw.Close, nil
}
