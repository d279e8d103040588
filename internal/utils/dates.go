package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/SscSPs/fx_rates_ingestor/internal/apperrors"
)

const (
	// ISODateLayout is the calendar date layout used by the live source and modern archives.
	ISODateLayout = "2006-01-02"
	// ArchiveDateLayout is the month/day/year layout written to archive files; leading zeros optional.
	ArchiveDateLayout = "1/2/2006"
)

var dataLinePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4})`)

// ParseRateDate parses a trimmed token as an ISO date, falling back to M/d/YYYY.
// The result is midnight UTC of that calendar date.
func ParseRateDate(token string) (time.Time, error) {
	token = strings.TrimSpace(token)
	if t, err := time.Parse(ISODateLayout, token); err == nil {
		return t, nil
	}
	if t, err := time.Parse(ArchiveDateLayout, token); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidDate, token)
}

// FormatArchiveDate renders a calendar date the way archive data lines carry it.
func FormatArchiveDate(t time.Time) string {
	return t.Format(ArchiveDateLayout)
}

// FormatISODate renders a calendar date as YYYY-MM-DD.
func FormatISODate(t time.Time) string {
	return t.Format(ISODateLayout)
}

// LooksLikeDataLine reports whether a line starts with something shaped like a date.
func LooksLikeDataLine(line string) bool {
	return dataLinePattern.MatchString(line)
}

// Today returns the current calendar date at midnight UTC.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
