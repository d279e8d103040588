package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/fx_rates_ingestor/internal/apperrors"
	"github.com/SscSPs/fx_rates_ingestor/internal/core/domain"
	portsrepo "github.com/SscSPs/fx_rates_ingestor/internal/core/ports/repositories"
	"github.com/SscSPs/fx_rates_ingestor/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxExchangeRateRepository implements the exchange rate store using pgxpool.
type PgxExchangeRateRepository struct {
	BaseRepository
}

// newPgxExchangeRateRepository creates a new PgxExchangeRateRepository.
func newPgxExchangeRateRepository(pool *pgxpool.Pool) portsrepo.ExchangeRateRepositoryFacade {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

// ExistsExchangeRate reports whether a rate is stored for (currencyCode, rateDate).
func (r *PgxExchangeRateRepository) ExistsExchangeRate(ctx context.Context, currencyCode string, rateDate time.Time) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM exchange_rates WHERE currency_code = $1 AND rate_date = $2)`,
		currencyCode, rateDate,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check exchange rate %s: %w", currencyCode, err)
	}
	return exists, nil
}

// SaveExchangeRate inserts a rate. The (currency_code, rate_date) unique key
// decides races: a conflicting insert returns apperrors.ErrDuplicate.
func (r *PgxExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	modelRate := mapping.ToModelExchangeRate(rate)

	tag, err := r.Pool.Exec(ctx, `
		INSERT INTO exchange_rates (
			exchange_rate_id, currency_code, rate_date, rate, source,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (currency_code, rate_date) DO NOTHING`,
		modelRate.ExchangeRateID, modelRate.CurrencyCode, modelRate.RateDate,
		modelRate.Rate, modelRate.Source,
		modelRate.CreatedAt, modelRate.CreatedBy, modelRate.LastUpdatedAt, modelRate.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save exchange rate %s: %w", modelRate.CurrencyCode, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDuplicate
	}
	return nil
}
