package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlitedb "github.com/agalitsyn/sqlite"

	"github.com/agalitsyn/telegram-todo-bot/internal/model"
	"github.com/agalitsyn/telegram-todo-bot/internal/storage/sqlite/migrations"
)

// Open connects to the database file and applies pending migrations.
func Open(path string) (*sql.DB, error) {
	db, err := sqlitedb.Connect(path)
	if err != nil {
		return nil, err
	}
	if err := sqlitedb.MigrateUp(db, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not migrate database: %w", err)
	}
	return db, nil
}

type SnapshotStorage struct {
	db *sql.DB
}

func NewSnapshotStorage(db *sql.DB) *SnapshotStorage {
	return &SnapshotStorage{db: db}
}

func (s *SnapshotStorage) Load(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT data FROM snapshots WHERE key = ?`
	var data string
	err := s.db.QueryRowContext(ctx, q, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("could not load snapshot: %w", err)
	}
	return []byte(data), nil
}

func (s *SnapshotStorage) Save(ctx context.Context, key string, data []byte) error {
	const q = `
		INSERT INTO snapshots (key, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, q, key, string(data)); err != nil {
		return fmt.Errorf("could not save snapshot: %w", err)
	}
	return nil
}
