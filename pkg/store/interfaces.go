package store

import (
	"context"

	"airwavego/pkg/model"
)

// CacheStore caches raw HTTP responses keyed by request.
type CacheStore interface {
	GetCache(ctx context.Context, key string) ([]byte, bool)
	SetCache(ctx context.Context, key string, val []byte) error
}

// AnnouncementStore records produced announcements for the history endpoint.
type AnnouncementStore interface {
	SaveAnnouncement(ctx context.Context, a *model.Announcement) error
	RecentAnnouncements(ctx context.Context, limit int) ([]model.Announcement, error)
}

// Store composes all sub-interfaces for full store access.
// Consumers should depend on specific sub-interfaces when possible.
type Store interface {
	CacheStore
	AnnouncementStore

	// Close closes the store connection.
	Close() error
}
