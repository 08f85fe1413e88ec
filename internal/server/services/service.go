// Package services contains the server-side business logic: device
// administration, booking with conflict checks, and user accounts.
package services

import (
	"context"

	"github.com/dmitrijs2005/rackbook/internal/logging"
	"github.com/dmitrijs2005/rackbook/internal/server/events"
)

// publish sends e and only logs a failure; the write it reports on has
// already been stored.
func publish(ctx context.Context, p events.Publisher, l logging.Logger, e events.Event) {
	if err := p.Publish(ctx, e); err != nil {
		l.Warn(ctx, "event publish failed", "type", e.Type, "key", e.Key, "error", err)
	}
}
