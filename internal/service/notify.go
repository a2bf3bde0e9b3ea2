package service

import (
	"context"
	"log/slog"
	"time"

	"editorial_catalog/internal/domain"
)

// Notifier announces committed catalog changes. It publishes an event and
// drops cached public listings. Both steps are best effort: failures are
// logged and never reach the caller. A nil Notifier, publisher or cache is
// allowed.
type Notifier struct {
	publisher Publisher
	cache     ListingCache
	logger    *slog.Logger
}

func NewNotifier(publisher Publisher, cache ListingCache, logger *slog.Logger) *Notifier {
	return &Notifier{
		publisher: publisher,
		cache:     cache,
		logger:    logger.With("component", "notifier"),
	}
}

func (n *Notifier) Notify(ctx context.Context, entity domain.Entity, action domain.EventAction, id int64, slug string) {
	if n == nil {
		return
	}

	if n.cache != nil {
		if err := n.cache.InvalidateAll(ctx); err != nil {
			n.logger.Warn("failed to invalidate listing cache", "error", err)
		}
	}

	if n.publisher == nil {
		return
	}

	event := domain.CatalogEvent{
		Entity:    entity,
		Action:    action,
		EntityID:  id,
		Slug:      slug,
		Timestamp: time.Now().UTC(),
	}
	if err := n.publisher.Publish(ctx, event); err != nil {
		n.logger.Error("failed to publish catalog event",
			"entity", entity,
			"action", action,
			"id", id,
			"error", err,
		)
	}
}
