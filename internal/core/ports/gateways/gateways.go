package gateways

import (
	"context"

	"github.com/SscSPs/fx_rates_ingestor/internal/core/domain"
)

// LiveRateSource fetches the published series for one currency.
type LiveRateSource interface {
	// FetchCurrency returns the decoded series for code. Transport and HTTP
	// failures wrap apperrors.ErrSourceUnavailable.
	FetchCurrency(ctx context.Context, code string) ([]domain.Series, error)
}

// Pacer spaces out calls to the live source.
type Pacer interface {
	Wait(ctx context.Context) error
}

// ArchiveFile is an open archive file yielding data records lazily.
type ArchiveFile interface {
	// Next returns the next record or io.EOF.
	Next() (domain.ArchiveRecord, error)
	// Currency reports the identity parsed from the header, if any.
	Currency() (code, name string, ok bool)
	// Malformed counts data lines dropped for a bad date or value.
	Malformed() int
	// NoValue counts data lines carrying no value.
	NoValue() int
	Close() error
}

// ArchiveReader lists and opens archive files.
type ArchiveReader interface {
	ListFiles(dir string) ([]string, error)
	OpenFile(ctx context.Context, path string) (ArchiveFile, error)
}

// ArchiveWriter mirrors newly stored rates into the archive.
type ArchiveWriter interface {
	Append(ctx context.Context, currency domain.Currency, rates []domain.ExchangeRate) error
}

// RateArchive combines archive reads and writes.
type RateArchive interface {
	ArchiveReader
	ArchiveWriter
}
