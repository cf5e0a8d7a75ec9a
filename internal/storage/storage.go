// Package storage persists the dashboard's small amount of user state as
// named string blobs: the favorites list, the portfolio and the theme.
//
// Two backends satisfy Store: SQLite, which keeps one row per key, and a JSON
// file rewritten atomically on every Set. Reads through the typed helpers in
// state.go are best-effort; a missing or corrupt value yields the default.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Keys of the persisted blobs.
const (
	KeyFavorites = "favorites"
	KeyPortfolio = "portfolio"
	KeyTheme     = "theme"
)

// ErrNotFound is returned by Get for keys that were never set.
var ErrNotFound = errors.New("key not found")

// Store is a string-keyed blob store that survives restarts.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Open creates the store selected by backend ("sqlite" or "file").
func Open(backend, dbPath, filePath string) (Store, error) {
	switch backend {
	case "sqlite":
		return NewSQLite(dbPath)
	case "file":
		return NewFile(filePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
