package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SscSPs/fx_rates_ingestor/internal/apperrors"
	"github.com/SscSPs/fx_rates_ingestor/internal/core/domain"
	portsrepo "github.com/SscSPs/fx_rates_ingestor/internal/core/ports/repositories"
	"github.com/SscSPs/fx_rates_ingestor/internal/utils"
	"github.com/SscSPs/fx_rates_ingestor/internal/utils/mapping"
)

type SQLiteExchangeRateRepository struct {
	BaseRepository
}

func newSQLiteExchangeRateRepository(db *sql.DB) portsrepo.ExchangeRateRepositoryFacade {
	return &SQLiteExchangeRateRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*SQLiteExchangeRateRepository)(nil)

// ExistsExchangeRate reports whether a rate is stored for (currencyCode, rateDate).
func (r *SQLiteExchangeRateRepository) ExistsExchangeRate(ctx context.Context, currencyCode string, rateDate time.Time) (bool, error) {
	var exists int
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM exchange_rates WHERE currency_code = ? AND rate_date = ?)`,
		currencyCode, utils.FormatISODate(rateDate),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check exchange rate %s: %w", currencyCode, err)
	}
	return exists == 1, nil
}

// SaveExchangeRate inserts a rate, returning apperrors.ErrDuplicate when
// (currency_code, rate_date) is already taken.
func (r *SQLiteExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	m := mapping.ToModelExchangeRate(rate)
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO exchange_rates (
			exchange_rate_id, currency_code, rate_date, rate, source,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(currency_code, rate_date) DO NOTHING`,
		m.ExchangeRateID,
		m.CurrencyCode,
		utils.FormatISODate(m.RateDate),
		m.Rate.String(),
		m.Source,
		formatTimestamp(m.CreatedAt),
		m.CreatedBy,
		formatTimestamp(m.LastUpdatedAt),
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save exchange rate %s: %w", m.CurrencyCode, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save exchange rate %s: %w", m.CurrencyCode, err)
	}
	if affected == 0 {
		return apperrors.ErrDuplicate
	}
	return nil
}
