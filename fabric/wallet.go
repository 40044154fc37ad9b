package fabric

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperledger/fabric-sdk-go/pkg/gateway"
)

// WalletStore wraps a filesystem-backed identity wallet. Identities are
// imported once, offline, from cryptogen/CA output and looked up by label
// when a ledger session is opened.
type WalletStore struct {
	wallet *gateway.Wallet
	path   string
}

// NewWallet opens (or creates) a filesystem wallet at the given directory.
func NewWallet(path string) (*WalletStore, error) {
	wallet, err := gateway.NewFileSystemWallet(path)
	if err != nil {
		return nil, fmt.Errorf("open wallet at %s: %w", path, err)
	}
	return &WalletStore{wallet: wallet, path: path}, nil
}

// Path returns the wallet directory.
func (w *WalletStore) Path() string {
	return w.path
}

// Gateway exposes the underlying SDK wallet for session establishment.
func (w *WalletStore) Gateway() *gateway.Wallet {
	return w.wallet
}

// Exists reports whether an identity is stored under the label.
func (w *WalletStore) Exists(label string) bool {
	return w.wallet.Exists(label)
}

// Remove deletes the identity stored under the label, if any.
func (w *WalletStore) Remove(label string) error {
	return w.wallet.Remove(label)
}

// ImportIdentity loads an X.509 certificate and private key from an MSP
// credential directory (cryptogen layout: signcerts/ and keystore/) and
// stores them under the label. An existing identity under the same label is
// overwritten.
func (w *WalletStore) ImportIdentity(label, mspID, credPath string) error {
	cert, err := readSingleFile(filepath.Join(credPath, "signcerts"), ".pem")
	if err != nil {
		return fmt.Errorf("read certificate for %s: %w", label, err)
	}

	key, err := readSingleFile(filepath.Join(credPath, "keystore"), "")
	if err != nil {
		return fmt.Errorf("read private key for %s: %w", label, err)
	}

	if w.wallet.Exists(label) {
		if err := w.wallet.Remove(label); err != nil {
			return fmt.Errorf("replace identity %s: %w", label, err)
		}
	}

	identity := gateway.NewX509Identity(mspID, cert, key)
	if err := w.wallet.Put(label, identity); err != nil {
		return fmt.Errorf("store identity %s: %w", label, err)
	}
	return nil
}

// readSingleFile returns the contents of the first file in dir matching the
// optional suffix. Cryptogen writes exactly one certificate and one key file
// per MSP directory.
func readSingleFile(dir, suffix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if suffix != "" && !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return "", err
		}
		return string(content), nil
	}
	return "", fmt.Errorf("no credential file found in %s", dir)
}
