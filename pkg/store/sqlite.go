package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"airwavego/pkg/db"
	"airwavego/pkg/model"
)

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Cache ---

func (s *SQLiteStore) GetCache(ctx context.Context, key string) ([]byte, bool) {
	var val []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM cache WHERE key = ?", key).Scan(&val)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("Cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

func (s *SQLiteStore) SetCache(ctx context.Context, key string, val []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO cache (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, created_at = CURRENT_TIMESTAMP",
		key, val)
	return err
}

// --- Announcements ---

func (s *SQLiteStore) SaveAnnouncement(ctx context.Context, a *model.Announcement) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO announcements (ts, category, text, audio_path, trigger_source) VALUES (?, ?, ?, ?, ?)",
		a.Timestamp, a.Category, a.Text, a.AudioPath, a.Trigger)
	return err
}

func (s *SQLiteStore) RecentAnnouncements(ctx context.Context, limit int) ([]model.Announcement, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT ts, category, text, audio_path, trigger_source FROM announcements ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Announcement
	for rows.Next() {
		var a model.Announcement
		var audioPath, trigger sql.NullString
		if err := rows.Scan(&a.Timestamp, &a.Category, &a.Text, &audioPath, &trigger); err != nil {
			return nil, err
		}
		a.AudioPath = audioPath.String
		a.Trigger = trigger.String
		out = append(out, a)
	}
	return out, rows.Err()
}
