// Package repomanager vends the repositories backed by the document store
// and the blob store health check they share.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/rackbook/internal/server/docstore"
	"github.com/dmitrijs2005/rackbook/internal/server/idalloc"
	"github.com/dmitrijs2005/rackbook/internal/server/repositories/bookings"
	"github.com/dmitrijs2005/rackbook/internal/server/repositories/devices"
	"github.com/dmitrijs2005/rackbook/internal/server/repositories/users"
)

// DocumentRepositoryManager hands out repositories over one docstore.Store.
type DocumentRepositoryManager struct {
	store    *docstore.Store
	devices  *devices.DocumentRepository
	bookings *bookings.DocumentRepository
	users    *users.DocumentRepository
}

// NewDocumentRepositoryManager wires the three repositories. ids decides how
// new records are numbered in every collection.
func NewDocumentRepositoryManager(s *docstore.Store, ids idalloc.Strategy) *DocumentRepositoryManager {
	return &DocumentRepositoryManager{
		store:    s,
		devices:  devices.NewDocumentRepository(s, ids),
		bookings: bookings.NewDocumentRepository(s, ids),
		users:    users.NewDocumentRepository(s, ids),
	}
}

func (m *DocumentRepositoryManager) Devices() devices.Repository   { return m.devices }
func (m *DocumentRepositoryManager) Bookings() bookings.Repository { return m.bookings }
func (m *DocumentRepositoryManager) Users() users.Repository       { return m.users }

// Ping reports whether the underlying blob store answers.
func (m *DocumentRepositoryManager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}
