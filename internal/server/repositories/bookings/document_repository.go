// Package bookings stores reservations in the "bookings" collection.
//
// Create and Update run their check inside the collection's read-modify-write,
// so the check sees exactly the bookings the write will replace.
package bookings

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/rackbook/internal/common"
	"github.com/dmitrijs2005/rackbook/internal/server/docstore"
	"github.com/dmitrijs2005/rackbook/internal/server/idalloc"
	"github.com/dmitrijs2005/rackbook/internal/server/models"
)

type DocumentRepository struct {
	store *docstore.Store
	ids   idalloc.Strategy
}

func NewDocumentRepository(s *docstore.Store, ids idalloc.Strategy) *DocumentRepository {
	return &DocumentRepository{store: s, ids: ids}
}

func (r *DocumentRepository) List(ctx context.Context) ([]models.Booking, error) {
	return docstore.LoadAll[models.Booking](ctx, r.store, docstore.Bookings)
}

func (r *DocumentRepository) ListByDevice(ctx context.Context, deviceID int64) ([]models.Booking, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Booking, 0, len(all))
	for _, b := range all {
		if b.DeviceID == deviceID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *DocumentRepository) Get(ctx context.Context, id int64) (*models.Booking, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(all, id); i >= 0 {
		return &all[i], nil
	}
	return nil, fmt.Errorf("booking %d: %w", id, common.ErrorNotFound)
}

func (r *DocumentRepository) Create(ctx context.Context, booking *models.Booking, check CheckFunc) (*models.Booking, error) {
	var created models.Booking
	err := docstore.Mutate(ctx, r.store, docstore.Bookings, func(all []models.Booking) ([]models.Booking, error) {
		if check != nil {
			if err := check(all); err != nil {
				return nil, err
			}
		}
		created = *booking
		created.ID = r.ids.Next(idalloc.IDs(all, bookingID))
		return append(all, created), nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update hands fn a copy of the stored booking together with the whole
// collection; the copy is written back if fn returns nil.
func (r *DocumentRepository) Update(ctx context.Context, id int64, fn func(b *models.Booking, current []models.Booking) error) (*models.Booking, error) {
	var updated models.Booking
	err := docstore.Mutate(ctx, r.store, docstore.Bookings, func(all []models.Booking) ([]models.Booking, error) {
		i := indexOf(all, id)
		if i < 0 {
			return nil, fmt.Errorf("booking %d: %w", id, common.ErrorNotFound)
		}
		b := all[i]
		if err := fn(&b, all); err != nil {
			return nil, err
		}
		b.ID = id
		all[i] = b
		updated = b
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id int64, check func(b *models.Booking) error) error {
	return docstore.Mutate(ctx, r.store, docstore.Bookings, func(all []models.Booking) ([]models.Booking, error) {
		i := indexOf(all, id)
		if i < 0 {
			return nil, fmt.Errorf("booking %d: %w", id, common.ErrorNotFound)
		}
		if check != nil {
			if err := check(&all[i]); err != nil {
				return nil, err
			}
		}
		return append(all[:i], all[i+1:]...), nil
	})
}

func indexOf(all []models.Booking, id int64) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}

func bookingID(b models.Booking) int64 { return b.ID }
