package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/rackbook/internal/common"
	"github.com/dmitrijs2005/rackbook/internal/logging"
	"github.com/dmitrijs2005/rackbook/internal/server/docstore"
	"github.com/dmitrijs2005/rackbook/internal/server/events"
	"github.com/dmitrijs2005/rackbook/internal/server/models"
	"github.com/dmitrijs2005/rackbook/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rackbook/internal/server/validation"
)

// DeviceService manages the device catalogue. Mutations are admin-only; the
// caller enforces that.
type DeviceService struct {
	repomanager repomanager.RepositoryManager
	validator   *validation.Validator
	publisher   events.Publisher
	logger      logging.Logger
}

func NewDeviceService(m repomanager.RepositoryManager, v *validation.Validator, p events.Publisher, l logging.Logger) *DeviceService {
	return &DeviceService{
		repomanager: m,
		validator:   v,
		publisher:   p,
		logger:      l.With("module", "device_service"),
	}
}

func (s *DeviceService) List(ctx context.Context) ([]models.Device, error) {
	return s.repomanager.Devices().List(ctx)
}

func (s *DeviceService) Get(ctx context.Context, id int64) (*models.Device, error) {
	return s.repomanager.Devices().Get(ctx, id)
}

// Create adds a device. Unset fields default to an available device with a
// 180 minute booking limit.
func (s *DeviceService) Create(ctx context.Context, in models.DevicePatch) (*models.Device, error) {
	d := &models.Device{
		Status:      common.DeviceAvailable,
		MaxDuration: docstore.DefaultDeviceMaxDuration,
	}
	in.Apply(d)

	if err := s.validator.Struct(d); err != nil {
		return nil, err
	}

	created, err := s.repomanager.Devices().Create(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("error creating device: %w", err)
	}

	s.logger.Info(ctx, "device created", "id", created.ID)
	publish(ctx, s.publisher, s.logger, events.New(events.DeviceCreated, created.ID, created))
	return created, nil
}

// Update merges the provided fields into the device; the id never changes.
func (s *DeviceService) Update(ctx context.Context, id int64, patch models.DevicePatch) (*models.Device, error) {
	updated, err := s.repomanager.Devices().Update(ctx, id, func(d *models.Device) error {
		patch.Apply(d)
		return s.validator.Struct(d)
	})
	if err != nil {
		return nil, fmt.Errorf("error updating device: %w", err)
	}

	s.logger.Info(ctx, "device updated", "id", id)
	publish(ctx, s.publisher, s.logger, events.New(events.DeviceUpdated, id, updated))
	return updated, nil
}

// Delete removes the device. Its bookings are kept; they simply stop matching
// an available device.
func (s *DeviceService) Delete(ctx context.Context, id int64) error {
	if err := s.repomanager.Devices().Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting device: %w", err)
	}

	s.logger.Info(ctx, "device deleted", "id", id)
	publish(ctx, s.publisher, s.logger, events.New(events.DeviceDeleted, id, nil))
	return nil
}
