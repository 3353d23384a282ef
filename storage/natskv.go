package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/c360studio/pageforge/domain"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// BucketResults is the KV bucket holding generation results.
const BucketResults = "PAGEFORGE_RESULTS"

// KVResultRepository is a GenerationResultRepository backed by NATS
// JetStream KV. Keys are "<session>.<seq>" with a zero-padded per-session
// sequence so lexical key order matches insertion order.
type KVResultRepository struct {
	nc  *nats.Conn
	kv  jetstream.KeyValue
	seq atomic.Uint64

	// ownsConn indicates the repository dialed the connection itself and
	// must drain it on Close.
	ownsConn bool
}

// NewKVResultRepository dials the given NATS URL and ensures the results
// bucket exists.
func NewKVResultRepository(ctx context.Context, url string) (*KVResultRepository, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	repo, err := NewKVResultRepositoryWithConn(ctx, nc)
	if err != nil {
		nc.Close()
		return nil, err
	}
	repo.ownsConn = true
	return repo, nil
}

// NewKVResultRepositoryWithConn builds the repository on an existing
// connection. The caller retains ownership of the connection.
func NewKVResultRepositoryWithConn(ctx context.Context, nc *nats.Conn) (*KVResultRepository, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	kv, err := getOrCreateBucket(ctx, js, BucketResults)
	if err != nil {
		return nil, fmt.Errorf("create results bucket: %w", err)
	}

	return &KVResultRepository{nc: nc, kv: kv}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "PageForge generation result storage",
	})
}

// Record appends a result under the session's next sequence key.
func (r *KVResultRepository) Record(ctx context.Context, sessionID string, result domain.GenerationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	key := fmt.Sprintf("%s.%012d", sanitizeKey(sessionID), r.seq.Add(1))
	if _, err := r.kv.Create(ctx, key, data); err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	return nil
}

// ListForSession returns the session's results in insertion order.
func (r *KVResultRepository) ListForSession(ctx context.Context, sessionID string) ([]domain.GenerationResult, error) {
	keys, err := r.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list result keys: %w", err)
	}

	prefix := sanitizeKey(sessionID) + "."
	var matched []string
	for _, key := range keys {
		if strings.HasPrefix(key, prefix) {
			matched = append(matched, key)
		}
	}
	sort.Strings(matched)

	results := make([]domain.GenerationResult, 0, len(matched))
	for _, key := range matched {
		entry, err := r.kv.Get(ctx, key)
		if err != nil {
			continue // Skip entries that fail to load
		}
		var result domain.GenerationResult
		if err := json.Unmarshal(entry.Value(), &result); err != nil {
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

// Close drains the NATS connection if this repository owns it.
// Implements registry.Disposable so scope teardown releases it.
func (r *KVResultRepository) Close(_ context.Context) error {
	if !r.ownsConn || r.nc == nil {
		return nil
	}
	if err := r.nc.Drain(); err != nil {
		return fmt.Errorf("drain NATS connection: %w", err)
	}
	return nil
}

// sanitizeKey maps a session id onto the KV key alphabet.
// UUIDs contain hyphens, which NATS KV keys do not allow.
func sanitizeKey(sessionID string) string {
	return strings.ReplaceAll(sessionID, "-", "_")
}
