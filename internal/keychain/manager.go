// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain stores the catalog database DSN in the OS credential store.
//
// The DSN usually carries a password, so it never goes to the JSON config file.
// Operations are thread-safe; a process shares one Manager via GetManager.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	mu            sync.Mutex
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "pxfbridge"

// KeyDBDSN is the item holding the catalog DSN.
const KeyDBDSN = "db_dsn"

// ErrNoDSN is returned when no DSN has been stored.
var ErrNoDSN = errors.New("no database connection stored; run 'pxfbridge connect' first")

// Manager provides thread-safe operations on the OS keyring.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewManager opens the OS keyring.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return newManagerWithRing(ring), nil
}

func newManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the global keychain manager instance.
// A failed initialization is retried on the next call.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

// openRing opens the native credential store of the platform. There is no
// plain-file fallback.
func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		// pass covers macOS versions where the Keychain API is unavailable
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	case "linux", "freebsd", "openbsd":
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on " + runtime.GOOS)
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowed,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
		KWalletAppID:    ServiceName,
		KWalletFolder:   ServiceName,
	}
	return keyring.Open(cfg)
}

// SaveDBDSN stores the database DSN.
func (m *Manager) SaveDBDSN(dsn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{Key: KeyDBDSN, Data: []byte(dsn), Label: ServiceName + " catalog DSN"})
}

// LoadDBDSN returns the stored DSN, or ErrNoDSN.
func (m *Manager) LoadDBDSN() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(KeyDBDSN)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNoDSN
	}
	if err != nil {
		return "", err
	}
	if len(it.Data) == 0 {
		return "", ErrNoDSN
	}
	return string(it.Data), nil
}

// ClearDB removes the stored DSN. Removing a missing DSN is not an error.
func (m *Manager) ClearDB() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.ring.Remove(KeyDBDSN)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
