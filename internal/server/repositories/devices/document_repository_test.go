package devices

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/rackbook/internal/common"
	"github.com/dmitrijs2005/rackbook/internal/logging"
	"github.com/dmitrijs2005/rackbook/internal/server/blobstore"
	"github.com/dmitrijs2005/rackbook/internal/server/docstore"
	"github.com/dmitrijs2005/rackbook/internal/server/idalloc"
	"github.com/dmitrijs2005/rackbook/internal/server/models"
)

func newRepo(t *testing.T, ids idalloc.Strategy) *DocumentRepository {
	t.Helper()
	s := docstore.New(blobstore.NewMemoryStore(), docstore.Options{Guarded: true, MaxRetries: 3}, logging.Nop{})
	docstore.RegisterDefaults(s, docstore.Seed{Hash: func(p string) (string, error) { return p, nil }})
	return NewDocumentRepository(s, ids)
}

func TestDocumentRepository_CRUD(t *testing.T) {
	r := newRepo(t, idalloc.MaxStrategy{})
	ctx := context.Background()

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 7)

	created, err := r.Create(ctx, &models.Device{ID: 999, Name: "Server 8", Status: common.DeviceAvailable})
	require.NoError(t, err)
	assert.Equal(t, int64(8), created.ID, "caller supplied id is ignored")

	got, err := r.Get(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	updated, err := r.Update(ctx, 8, func(d *models.Device) error {
		d.ID = 77
		d.Status = common.DeviceMaintenance
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), updated.ID)
	assert.Equal(t, common.DeviceMaintenance, updated.Status)

	require.NoError(t, r.Delete(ctx, 8))
	_, err = r.Get(ctx, 8)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	all, err = r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 7)
}

func TestDocumentRepository_NotFound(t *testing.T) {
	r := newRepo(t, idalloc.MaxStrategy{})
	ctx := context.Background()

	_, err := r.Update(ctx, 42, func(*models.Device) error { return nil })
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, r.Delete(ctx, 42), common.ErrorNotFound)
}

func TestDocumentRepository_UpdateAbort(t *testing.T) {
	r := newRepo(t, idalloc.MaxStrategy{})
	ctx := context.Background()

	boom := errors.New("invalid")
	_, err := r.Update(ctx, 1, func(d *models.Device) error {
		d.Name = "changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	d, err := r.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Server 1", d.Name)
}

func TestDocumentRepository_IDsAfterDelete(t *testing.T) {
	ctx := context.Background()

	r := newRepo(t, idalloc.MaxStrategy{})
	require.NoError(t, r.Delete(ctx, 3))
	d, err := r.Create(ctx, &models.Device{Name: "new", Status: common.DeviceAvailable})
	require.NoError(t, err)
	assert.Equal(t, int64(8), d.ID)

	legacy := newRepo(t, idalloc.CountStrategy{})
	require.NoError(t, legacy.Delete(ctx, 3))
	d, err = legacy.Create(ctx, &models.Device{Name: "new", Status: common.DeviceAvailable})
	require.NoError(t, err)
	assert.Equal(t, int64(7), d.ID, "count strategy collides with Server 7")
}
