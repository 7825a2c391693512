package testfixtures

import (
	"context"
	"sync"

	"github.com/mark3labs/deckfill/internal/kv"
)

// FailingStore is a kv.Store whose writes can be made to fail.
type FailingStore struct {
	inner kv.Store

	mu       sync.Mutex
	setErr   error
	setCalls int
}

// NewFailingStore wraps an in-memory store.
func NewFailingStore() *FailingStore {
	return &FailingStore{inner: kv.NewMemoryStore()}
}

// FailWrites makes every following Set return err. A nil err restores
// normal behavior.
func (f *FailingStore) FailWrites(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setErr = err
}

// SetCalls returns how many writes were attempted.
func (f *FailingStore) SetCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setCalls
}

func (f *FailingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return f.inner.Get(ctx, key)
}

func (f *FailingStore) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.setCalls++
	err := f.setErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.inner.Set(ctx, key, value)
}

func (f *FailingStore) Delete(ctx context.Context, key string) error {
	return f.inner.Delete(ctx, key)
}
