package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rewired-gh/coinboard/internal/logger"
	"github.com/rewired-gh/coinboard/internal/models"
)

// LoadFavorites returns the persisted favorite IDs, or an empty list when the
// value is missing or corrupt.
func LoadFavorites(ctx context.Context, s Store) []string {
	var ids []string
	if !loadJSON(ctx, s, KeyFavorites, &ids) {
		return []string{}
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// SaveFavorites persists the favorite IDs.
func SaveFavorites(ctx context.Context, s Store, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	return saveJSON(ctx, s, KeyFavorites, ids)
}

// LoadPortfolio returns the persisted entries, or an empty list when the value
// is missing or corrupt. Individual invalid entries are dropped.
func LoadPortfolio(ctx context.Context, s Store) []models.PortfolioEntry {
	var entries []models.PortfolioEntry
	if !loadJSON(ctx, s, KeyPortfolio, &entries) {
		return []models.PortfolioEntry{}
	}
	out := make([]models.PortfolioEntry, 0, len(entries))
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			logger.Warn("Dropping stored portfolio entry %q: %v", e.ID, err)
			continue
		}
		out = append(out, e)
	}
	return out
}

// SavePortfolio persists the entries in order.
func SavePortfolio(ctx context.Context, s Store, entries []models.PortfolioEntry) error {
	if entries == nil {
		entries = []models.PortfolioEntry{}
	}
	return saveJSON(ctx, s, KeyPortfolio, entries)
}

// LoadTheme returns the persisted theme, defaulting to dark.
func LoadTheme(ctx context.Context, s Store) models.Theme {
	v, err := s.Get(ctx, KeyTheme)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("Failed to read theme, using default: %v", err)
		}
		return models.ThemeDark
	}
	return models.ParseTheme(v)
}

// SaveTheme persists the theme.
func SaveTheme(ctx context.Context, s Store, theme models.Theme) error {
	return s.Set(ctx, KeyTheme, string(theme))
}

func loadJSON(ctx context.Context, s Store, key string, v interface{}) bool {
	raw, err := s.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("Failed to read %s, using default: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		logger.Warn("Stored %s is corrupt, using default: %v", key, err)
		return false
	}
	return true
}

func saveJSON(ctx context.Context, s Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return s.Set(ctx, key, string(raw))
}
