package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/fx_rates_ingestor/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rate data
type ExchangeRateReader interface {
	// ExistsExchangeRate reports whether a rate is stored for the currency on that date.
	ExistsExchangeRate(ctx context.Context, currencyCode string, rateDate time.Time) (bool, error)
}

// ExchangeRateWriter defines write operations for exchange rate data
type ExchangeRateWriter interface {
	// SaveExchangeRate inserts a new rate. It returns apperrors.ErrDuplicate when
	// a rate already exists for (CurrencyCode, RateDate).
	SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error
}

// ExchangeRateRepositoryFacade combines all exchange rate-related repository interfaces
// This is a facade for clients that need access to all operations
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
