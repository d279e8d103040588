package repositories

import (
	"context"

	"github.com/SscSPs/fx_rates_ingestor/internal/core/domain"
)

// CurrencyReader defines read operations for currency data
type CurrencyReader interface {
	// FindCurrencyByCode retrieves a specific currency by its code.
	// Returns apperrors.ErrNotFound when the code is unknown.
	FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves all known currencies ordered by code.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// CurrencyWriter defines write operations for currency data
type CurrencyWriter interface {
	// CreateCurrency inserts the currency unless its code already exists.
	// It reports whether a row was inserted; an existing row is never modified.
	CreateCurrency(ctx context.Context, currency domain.Currency) (bool, error)

	// SaveCurrency inserts a currency or updates its name and last-updated date.
	SaveCurrency(ctx context.Context, currency domain.Currency) error
}

// CurrencyRepositoryFacade combines all currency-related repository interfaces
// This is a facade for clients that need access to all operations
type CurrencyRepositoryFacade interface {
	CurrencyReader
	CurrencyWriter
}
