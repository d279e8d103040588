package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/SscSPs/fx_rates_ingestor/internal/utils"
)

const timestampLayout = time.RFC3339Nano

// BaseRepository provides common functionality for all repositories.
// Dates are stored as YYYY-MM-DD text and timestamps as RFC 3339 text.
type BaseRepository struct {
	DB *sql.DB
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(utils.ISODateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored date %q: %w", s, err)
	}
	return t, nil
}
