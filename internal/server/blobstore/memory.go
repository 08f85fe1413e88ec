package blobstore

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/rackbook/internal/common"
)

type memObject struct {
	data    []byte
	version int64
}

// MemoryStore keeps blobs in process memory with the same conditional write
// semantics as S3. It backs tests and the "memory" backend for local runs.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]memObject
	seq     int64
	failure error

	gets int
	puts int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string]memObject{}}
}

// Fail makes every following call return err wrapped in
// common.ErrStoreUnavailable. Fail(nil) heals the store.
func (m *MemoryStore) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure = err
}

func (m *MemoryStore) Get(ctx context.Context, key string) (*Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(ctx, "get", key); err != nil {
		return nil, err
	}
	m.gets++

	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	return &Object{Data: data, Version: strconv.FormatInt(obj.version, 10)}, nil
}

func (m *MemoryStore) Put(ctx context.Context, key string, data []byte, opts PutOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(ctx, "put", key); err != nil {
		return "", err
	}
	m.puts++

	cur, exists := m.objects[key]
	if opts.IfNoneMatch && exists {
		return "", fmt.Errorf("put %s: %w", key, common.ErrStaleWrite)
	}
	if opts.IfMatch != "" && (!exists || strconv.FormatInt(cur.version, 10) != opts.IfMatch) {
		return "", fmt.Errorf("put %s: %w", key, common.ErrStaleWrite)
	}

	m.seq++
	stored := make([]byte, len(data))
	copy(stored, data)
	m.objects[key] = memObject{data: stored, version: m.seq}
	return strconv.FormatInt(m.seq, 10), nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.check(ctx, "ping", "")
}

// Raw returns the stored bytes for key, or nil.
func (m *MemoryStore) Raw(key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[key].data
}

// Calls reports how many Get and Put calls reached the store.
func (m *MemoryStore) Calls() (gets, puts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets, m.puts
}

func (m *MemoryStore) check(ctx context.Context, op, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s %s: %w: %v", op, key, common.ErrStoreUnavailable, err)
	}
	if m.failure != nil {
		return fmt.Errorf("%s %s: %w: %v", op, key, common.ErrStoreUnavailable, m.failure)
	}
	return nil
}
