package nats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/deckfill/internal/kv"
	"github.com/mark3labs/deckfill/internal/logger"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	bucketName = "deckfill_sessions"

	// sessionTTL bounds how long an abandoned tab's entries survive.
	sessionTTL = 7 * 24 * time.Hour
)

// KVStore adapts a JetStream key-value bucket to kv.Store.
type KVStore struct {
	bucket jetstream.KeyValue
}

var _ kv.Store = (*KVStore)(nil)

// SetupBucket creates or updates the session bucket.
func SetupBucket(ctx context.Context, js jetstream.JetStream) (jetstream.KeyValue, error) {
	return js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucketName,
		Description: "deckfill tab-scoped workflow state",
		Storage:     jetstream.FileStorage,
		History:     1,
		TTL:         sessionTTL,
	})
}

// NewKVStore wraps an existing bucket.
func NewKVStore(bucket jetstream.KeyValue) *KVStore {
	return &KVStore{bucket: bucket}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.bucket.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, kv.ErrNotFound
		}
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return entry.Value(), nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.bucket.Put(ctx, key, value); err != nil {
		return fmt.Errorf("kv put %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}

// Keys lists live keys in the bucket.
func (s *KVStore) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.bucket.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("kv keys: %w", err)
	}
	return keys, nil
}

// Runtime owns an embedded server, its connection and the session store.
type Runtime struct {
	Store *KVStore

	ns *server.Server
	nc *nats.Conn
}

// Open starts the embedded server in dataDir and prepares the bucket.
func Open(ctx context.Context, dataDir string) (*Runtime, error) {
	ns, err := startServer(dataDir)
	if err != nil {
		return nil, fmt.Errorf("starting nats: %w", err)
	}
	nc, err := connect(ns)
	if err != nil {
		_ = shutdown(nil, ns)
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		_ = shutdown(nc, ns)
		return nil, fmt.Errorf("creating jetstream context: %w", err)
	}
	bucket, err := SetupBucket(ctx, js)
	if err != nil {
		_ = shutdown(nc, ns)
		return nil, fmt.Errorf("setting up session bucket: %w", err)
	}
	logger.Debug("Session bucket %s ready", bucketName)
	return &Runtime{Store: NewKVStore(bucket), ns: ns, nc: nc}, nil
}

// Close shuts the connection and server down.
func (r *Runtime) Close() error {
	return shutdown(r.nc, r.ns)
}
