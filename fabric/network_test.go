package fabric

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeContract struct {
	label string
}

func (f *fakeContract) SubmitTransaction(name string, args ...string) ([]byte, error) {
	return []byte(name), nil
}

func (f *fakeContract) EvaluateTransaction(name string, args ...string) ([]byte, error) {
	return []byte(name), nil
}

func newTestManager(connect connectFunc) *SessionManager {
	m := NewSessionManager(Options{
		CCPPath:    "connection-profile.json",
		WalletPath: "wallet",
		Channel:    "healthcarechannel",
		Chaincode:  "healthcare",
	})
	m.connect = connect
	return m
}

func TestAcquireCachesSessionPerLabel(t *testing.T) {
	connects := 0
	m := newTestManager(func(opts Options, label string) (Contract, func(), error) {
		connects++
		return &fakeContract{label: label}, func() {}, nil
	})

	first, err := m.Acquire("admin")
	assert.NoError(t, err)
	second, err := m.Acquire("admin")
	assert.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, connects)

	_, err = m.Acquire("auditOrgAdmin")
	assert.NoError(t, err)
	assert.Equal(t, 2, connects)
	assert.ElementsMatch(t, []string{"admin", "auditOrgAdmin"}, m.ActiveSessions())
}

func TestAcquirePropagatesIdentityNotFound(t *testing.T) {
	m := newTestManager(func(opts Options, label string) (Contract, func(), error) {
		return nil, nil, fmt.Errorf("%w: %s", ErrIdentityNotFound, label)
	})

	_, err := m.Acquire("ghost")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrIdentityNotFound))
	assert.Empty(t, m.ActiveSessions(), "failed connects must not be cached")
}

func TestReleaseIsIdempotent(t *testing.T) {
	closed := 0
	m := newTestManager(func(opts Options, label string) (Contract, func(), error) {
		return &fakeContract{label: label}, func() { closed++ }, nil
	})

	_, err := m.Acquire("admin")
	assert.NoError(t, err)

	m.Release("admin")
	m.Release("admin")
	m.Release("never-acquired")

	assert.Equal(t, 1, closed)
	assert.Empty(t, m.ActiveSessions())
}

func TestReleaseAllTearsDownEverySession(t *testing.T) {
	closed := 0
	m := newTestManager(func(opts Options, label string) (Contract, func(), error) {
		return &fakeContract{label: label}, func() { closed++ }, nil
	})

	for _, label := range []string{"admin", "auditOrgAdmin", "thirdOrg"} {
		_, err := m.Acquire(label)
		assert.NoError(t, err)
	}

	m.ReleaseAll()
	assert.Equal(t, 3, closed)
	assert.Empty(t, m.ActiveSessions())
}

func TestConcurrentFirstAcquireEstablishesOneSession(t *testing.T) {
	connects := 0
	m := newTestManager(func(opts Options, label string) (Contract, func(), error) {
		connects++
		return &fakeContract{label: label}, func() {}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Acquire("admin")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, connects)
}

func TestReacquireAfterRelease(t *testing.T) {
	connects := 0
	m := newTestManager(func(opts Options, label string) (Contract, func(), error) {
		connects++
		return &fakeContract{label: label}, func() {}, nil
	})

	_, err := m.Acquire("admin")
	assert.NoError(t, err)
	m.Release("admin")

	_, err = m.Acquire("admin")
	assert.NoError(t, err)
	assert.Equal(t, 2, connects)
}
