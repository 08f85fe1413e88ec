package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rackbook/internal/common"
	"github.com/dmitrijs2005/rackbook/internal/logging"
	"github.com/dmitrijs2005/rackbook/internal/server/auth"
	"github.com/dmitrijs2005/rackbook/internal/server/config"
	"github.com/dmitrijs2005/rackbook/internal/server/conflict"
	"github.com/dmitrijs2005/rackbook/internal/server/events"
	"github.com/dmitrijs2005/rackbook/internal/server/models"
	"github.com/dmitrijs2005/rackbook/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rackbook/internal/server/validation"
)

// BookingRequest is a new reservation. UserID is ignored when bookings
// require authentication; the token decides who books.
type BookingRequest struct {
	UserID   int64
	DeviceID int64
	Start    time.Time
	End      time.Time
	Reason   string
}

// BookingChange moves a reservation. A nil Reason keeps the old one.
type BookingChange struct {
	Start  time.Time
	End    time.Time
	Reason *string
}

// BookingService places, moves and cancels reservations.
//
// Every change runs the conflict check inside the bookings collection's
// read-modify-write. The device list is read just before; a device status
// change racing with a booking is not serialized against it.
type BookingService struct {
	repomanager repomanager.RepositoryManager
	validator   *validation.Validator
	publisher   events.Publisher
	logger      logging.Logger
	requireAuth bool
	maxDuration bool
	now         func() time.Time
}

func NewBookingService(m repomanager.RepositoryManager, v *validation.Validator, p events.Publisher, l logging.Logger, cfg *config.Config) *BookingService {
	return &BookingService{
		repomanager: m,
		validator:   v,
		publisher:   p,
		logger:      l.With("module", "booking_service"),
		requireAuth: cfg.RequireAuthForBookings,
		maxDuration: cfg.EnforceMaxDuration,
		now:         time.Now,
	}
}

// List returns all bookings, or those of one device when deviceID > 0.
func (s *BookingService) List(ctx context.Context, deviceID int64) ([]models.Booking, error) {
	if deviceID > 0 {
		return s.repomanager.Bookings().ListByDevice(ctx, deviceID)
	}
	return s.repomanager.Bookings().List(ctx)
}

func (s *BookingService) Get(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repomanager.Bookings().Get(ctx, id)
}

// Create books a device. actor is the authenticated caller and may be nil
// when bookings do not require authentication.
func (s *BookingService) Create(ctx context.Context, actor *auth.Identity, req BookingRequest) (*models.Booking, error) {
	if s.requireAuth {
		if actor == nil {
			return nil, common.ErrorUnauthorized
		}
		req.UserID = actor.UserID
	}

	b := &models.Booking{
		UserID:    req.UserID,
		DeviceID:  req.DeviceID,
		Start:     req.Start.UTC(),
		End:       req.End.UTC(),
		Reason:    req.Reason,
		Status:    common.BookingConfirmed,
		CreatedAt: s.now().UTC(),
	}
	if err := s.validator.Struct(b); err != nil {
		return nil, err
	}

	devices, err := s.repomanager.Devices().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading devices: %w", err)
	}

	proposal := conflict.Proposal{
		DeviceID:           b.DeviceID,
		Start:              b.Start,
		End:                b.End,
		EnforceMaxDuration: s.maxDuration,
	}
	created, err := s.repomanager.Bookings().Create(ctx, b, func(current []models.Booking) error {
		return conflict.ProposeBooking(devices, current, proposal)
	})
	if err != nil {
		return nil, fmt.Errorf("error creating booking: %w", err)
	}

	s.logger.Info(ctx, "booking created", "id", created.ID, "device_id", created.DeviceID, "user_id", created.UserID)
	publish(ctx, s.publisher, s.logger, events.New(events.BookingCreated, created.ID, created))
	return created, nil
}

// Update moves a booking, checking it against every other booking on the
// same device.
func (s *BookingService) Update(ctx context.Context, actor *auth.Identity, id int64, change BookingChange) (*models.Booking, error) {
	if s.requireAuth && actor == nil {
		return nil, common.ErrorUnauthorized
	}

	devices, err := s.repomanager.Devices().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading devices: %w", err)
	}

	updated, err := s.repomanager.Bookings().Update(ctx, id, func(b *models.Booking, current []models.Booking) error {
		if err := s.checkOwner(actor, b); err != nil {
			return err
		}

		b.Start = change.Start.UTC()
		b.End = change.End.UTC()
		if change.Reason != nil {
			b.Reason = *change.Reason
		}
		if err := s.validator.Struct(b); err != nil {
			return err
		}

		return conflict.ProposeBooking(devices, current, conflict.Proposal{
			DeviceID:           b.DeviceID,
			Start:              b.Start,
			End:                b.End,
			ExcludeID:          b.ID,
			EnforceMaxDuration: s.maxDuration,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("error updating booking: %w", err)
	}

	s.logger.Info(ctx, "booking updated", "id", id)
	publish(ctx, s.publisher, s.logger, events.New(events.BookingUpdated, id, updated))
	return updated, nil
}

// Delete cancels a booking.
func (s *BookingService) Delete(ctx context.Context, actor *auth.Identity, id int64) error {
	if s.requireAuth && actor == nil {
		return common.ErrorUnauthorized
	}

	err := s.repomanager.Bookings().Delete(ctx, id, func(b *models.Booking) error {
		return s.checkOwner(actor, b)
	})
	if err != nil {
		return fmt.Errorf("error deleting booking: %w", err)
	}

	s.logger.Info(ctx, "booking deleted", "id", id)
	publish(ctx, s.publisher, s.logger, events.New(events.BookingDeleted, id, nil))
	return nil
}

// checkOwner lets admins touch any booking and users only their own. Without
// required authentication everyone may touch everything.
func (s *BookingService) checkOwner(actor *auth.Identity, b *models.Booking) error {
	if !s.requireAuth || actor.IsAdmin() || actor.UserID == b.UserID {
		return nil
	}
	return fmt.Errorf("booking %d belongs to another user: %w", b.ID, common.ErrorForbidden)
}
