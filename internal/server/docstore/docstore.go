// Package docstore keeps whole collections (devices, bookings, users) as JSON
// arrays in a blob store.
//
// Load and Save on their own are not atomic across requests: two callers can
// load the same version and the later Save wins. Mutate is the serialized
// path. In guarded mode it holds a per-collection lock for the whole
// read-modify-write and makes the write conditional on the version it read,
// so writers in other processes are detected too.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/rackbook/internal/common"
	"github.com/dmitrijs2005/rackbook/internal/logging"
	"github.com/dmitrijs2005/rackbook/internal/server/blobstore"
)

// Collection names.
const (
	Devices  = "devices"
	Bookings = "bookings"
	Users    = "users"
)

// DefaultFunc produces the content of a collection that does not exist yet.
// When persist is true the content is written to the store right away.
type DefaultFunc func(ctx context.Context) (records any, persist bool, err error)

// Collection describes one registered document.
type Collection struct {
	Key     string
	Default DefaultFunc
}

type Options struct {
	// Guarded turns on conditional writes and the per-collection lock.
	// Without it every write is an unconditional PUT (last writer wins).
	Guarded bool
	// MaxRetries is how many times Mutate starts over after a stale write.
	MaxRetries int
	// Timeout bounds every single blob store call; zero means no bound.
	Timeout time.Duration
}

type Store struct {
	blobs  blobstore.Store
	opts   Options
	logger logging.Logger

	mu       sync.RWMutex
	registry map[string]Collection
	locks    map[string]*sync.Mutex
}

func New(blobs blobstore.Store, opts Options, logger logging.Logger) *Store {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Store{
		blobs:    blobs,
		opts:     opts,
		logger:   logger.With("module", "docstore"),
		registry: map[string]Collection{},
		locks:    map[string]*sync.Mutex{},
	}
}

// Register adds or replaces a collection.
func (s *Store) Register(name string, c Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry[name] = c
	if _, ok := s.locks[name]; !ok {
		s.locks[name] = &sync.Mutex{}
	}
}

func (s *Store) collection(name string) (Collection, *sync.Mutex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.registry[name]
	if !ok {
		return Collection{}, nil, fmt.Errorf("%q: %w", name, common.ErrUnknownCollection)
	}
	return c, s.locks[name], nil
}

// Load decodes the named collection into out, which must point to a slice,
// and returns the version it read. An empty version means the collection is
// not stored yet and out holds the registered default.
func (s *Store) Load(ctx context.Context, name string, out any) (string, error) {
	c, _, err := s.collection(name)
	if err != nil {
		return "", err
	}
	return s.load(ctx, name, c, out)
}

func (s *Store) load(ctx context.Context, name string, c Collection, out any) (string, error) {
	obj, err := s.get(ctx, c.Key)
	if err == nil {
		if err := decode(obj.Data, out); err != nil {
			return "", fmt.Errorf("load %s: %w: %v", name, common.ErrCorruptDocument, err)
		}
		return obj.Version, nil
	}
	if !errors.Is(err, blobstore.ErrNotFound) {
		return "", fmt.Errorf("load %s: %w", name, err)
	}

	if c.Default == nil {
		return "", decode([]byte("[]"), out)
	}
	records, persist, err := c.Default(ctx)
	if err != nil {
		return "", fmt.Errorf("default %s: %w", name, err)
	}
	data, err := encode(records)
	if err != nil {
		return "", fmt.Errorf("default %s: %w", name, err)
	}

	var version string
	if persist {
		version, err = s.put(ctx, c.Key, data, blobstore.PutOptions{IfNoneMatch: s.opts.Guarded})
		switch {
		case errors.Is(err, common.ErrStaleWrite):
			// Someone else bootstrapped it first; use theirs.
			s.logger.Debug(ctx, "collection bootstrapped concurrently", "collection", name)
			return s.load(ctx, name, Collection{Key: c.Key}, out)
		case err != nil:
			return "", fmt.Errorf("bootstrap %s: %w", name, err)
		}
		s.logger.Info(ctx, "collection bootstrapped", "collection", name)
	}

	if err := decode(data, out); err != nil {
		return "", fmt.Errorf("default %s: %w", name, err)
	}
	return version, nil
}

// Save replaces the whole collection. In guarded mode the write only succeeds
// if the stored version still equals version (or, for an empty version, if
// nothing is stored yet); otherwise common.ErrStaleWrite is returned and the
// stored blob is untouched.
func (s *Store) Save(ctx context.Context, name string, records any, version string) (string, error) {
	c, _, err := s.collection(name)
	if err != nil {
		return "", err
	}
	return s.save(ctx, name, c, records, version)
}

func (s *Store) save(ctx context.Context, name string, c Collection, records any, version string) (string, error) {
	data, err := encode(records)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}

	var opts blobstore.PutOptions
	if s.opts.Guarded {
		if version == "" {
			opts.IfNoneMatch = true
		} else {
			opts.IfMatch = version
		}
	}

	v, err := s.put(ctx, c.Key, data, opts)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return v, nil
}

// Mutate loads the collection, hands the records to fn and writes back what fn
// returns. An error from fn aborts without writing and is returned as is.
//
// In guarded mode the whole cycle runs under the collection lock, and a stale
// write starts it over from a fresh load, at most MaxRetries times.
func Mutate[T any](ctx context.Context, s *Store, name string, fn func(records []T) ([]T, error)) error {
	c, lock, err := s.collection(name)
	if err != nil {
		return err
	}

	if s.opts.Guarded {
		lock.Lock()
		defer lock.Unlock()
	}

	for attempt := 0; ; attempt++ {
		var records []T
		version, err := s.load(ctx, name, c, &records)
		if err != nil {
			return err
		}

		updated, err := fn(records)
		if err != nil {
			return err
		}

		_, err = s.save(ctx, name, c, updated, version)
		if err == nil {
			return nil
		}
		if !s.opts.Guarded || !errors.Is(err, common.ErrStaleWrite) || attempt >= s.opts.MaxRetries {
			return err
		}

		s.logger.Warn(ctx, "stale write, retrying", "collection", name, "attempt", attempt+1)
	}
}

// LoadAll is the typed form of Load.
func LoadAll[T any](ctx context.Context, s *Store, name string) ([]T, error) {
	var records []T
	if _, err := s.Load(ctx, name, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Ping checks that the blob store answers.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.blobs.Ping(ctx)
}

func (s *Store) get(ctx context.Context, key string) (*blobstore.Object, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.blobs.Get(ctx, key)
}

func (s *Store) put(ctx context.Context, key string, data []byte, opts blobstore.PutOptions) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.blobs.Put(ctx, key, data, opts)
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.Timeout)
}

// encode writes records as a 2-space indented JSON array. A nil slice is
// stored as [] so the document stays an array.
func encode(records any) ([]byte, error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, err
	}
	if bytes.Equal(data, []byte("null")) {
		return []byte("[]"), nil
	}
	return data, nil
}

func decode(data []byte, out any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return errors.New("document is not a JSON array")
	}
	return json.Unmarshal(trimmed, out)
}
