package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/rackbook/internal/logging"
	"github.com/dmitrijs2005/rackbook/internal/server/blobstore"
	"github.com/dmitrijs2005/rackbook/internal/server/config"
	"github.com/dmitrijs2005/rackbook/internal/server/docstore"
	"github.com/dmitrijs2005/rackbook/internal/server/events"
	"github.com/dmitrijs2005/rackbook/internal/server/idalloc"
	"github.com/dmitrijs2005/rackbook/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rackbook/internal/server/validation"
)

var t0 = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func at(m int) time.Time { return t0.Add(time.Duration(m) * time.Minute) }

func fakeHash(p string) (string, error) { return "h:" + p, nil }

func fakeCheck(hash, p string) bool { return hash == "h:"+p }

// recorder keeps published events.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type harness struct {
	mem      *blobstore.MemoryStore
	rm       *repomanager.DocumentRepositoryManager
	events   *recorder
	devices  *DeviceService
	bookings *BookingService
	users    *UserService
}

func newHarness(t *testing.T, mutate func(c *config.Config)) *harness {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	if mutate != nil {
		mutate(cfg)
	}

	mem := blobstore.NewMemoryStore()
	store := docstore.New(mem, docstore.Options{
		Guarded:    cfg.ConcurrencyMode == config.ModeGuarded,
		MaxRetries: cfg.MaxWriteRetries,
	}, logging.Nop{})
	docstore.RegisterDefaults(store, docstore.Seed{
		AdminPassword: cfg.SeedAdminPassword,
		UserPassword:  cfg.SeedUserPassword,
		Hash:          fakeHash,
	})

	ids, err := idalloc.New(cfg.IDStrategy)
	if err != nil {
		t.Fatalf("idalloc: %v", err)
	}
	rm := repomanager.NewDocumentRepositoryManager(store, ids)
	v := validation.New()
	rec := &recorder{}

	us := NewUserService(rm, v, rec, logging.Nop{}, cfg)
	us.hashPassword = fakeHash
	us.checkPassword = fakeCheck

	bs := NewBookingService(rm, v, rec, logging.Nop{}, cfg)
	bs.now = func() time.Time { return t0.Add(-24 * time.Hour) }

	return &harness{
		mem:      mem,
		rm:       rm,
		events:   rec,
		devices:  NewDeviceService(rm, v, rec, logging.Nop{}),
		bookings: bs,
		users:    us,
	}
}
