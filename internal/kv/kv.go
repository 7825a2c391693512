// Package kv defines the key-value store that workflow state is mirrored
// into, plus an in-memory implementation and tab scoping.
package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("kv: key not found")

// ErrInvalidScope is returned by ValidScope.
var ErrInvalidScope = errors.New("kv: scope may only contain letters, digits, '-', '_' and '='")

// Store is a minimal byte-oriented key-value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Lister is implemented by stores that can enumerate their keys.
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}

// MemoryStore is a Store backed by a map. The zero value is not usable;
// use NewMemoryStore.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[key] = cp
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys returns all keys in sorted order.
func (m *MemoryStore) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// ScopedStore prefixes every key with a tab identifier so that several
// tabs can share one backing store without seeing each other's state.
type ScopedStore struct {
	inner Store
	scope string
}

// Scoped wraps inner so all keys live under scope.
func Scoped(inner Store, scope string) *ScopedStore {
	return &ScopedStore{inner: inner, scope: scope}
}

// Scope returns the tab identifier.
func (s *ScopedStore) Scope() string { return s.scope }

func (s *ScopedStore) key(k string) string {
	return "tab." + sanitize(s.scope) + "." + k
}

func (s *ScopedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, s.key(key))
}

func (s *ScopedStore) Set(ctx context.Context, key string, value []byte) error {
	return s.inner.Set(ctx, s.key(key), value)
}

func (s *ScopedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.key(key))
}

func scopeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	default:
		return r == '-' || r == '_' || r == '='
	}
}

// ValidScope checks that scope is non-empty and uses only the token
// alphabet JetStream KV accepts, so distinct scopes never share keys.
func ValidScope(scope string) error {
	if scope == "" || strings.IndexFunc(scope, func(r rune) bool { return !scopeRune(r) }) >= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	return nil
}

// sanitize maps a scope onto the JetStream KV token alphabet.
func sanitize(scope string) string {
	return strings.Map(func(r rune) rune {
		if scopeRune(r) {
			return r
		}
		return '_'
	}, scope)
}
