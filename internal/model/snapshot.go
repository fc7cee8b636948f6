package model

import (
	"context"
	"errors"
)

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// SnapshotStorage is a key-value store for serialized lists.
type SnapshotStorage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}
