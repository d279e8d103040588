package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SscSPs/fx_rates_ingestor/internal/apperrors"
	"github.com/SscSPs/fx_rates_ingestor/internal/core/domain"
	portsrepo "github.com/SscSPs/fx_rates_ingestor/internal/core/ports/repositories"
	"github.com/SscSPs/fx_rates_ingestor/internal/models"
	"github.com/SscSPs/fx_rates_ingestor/internal/utils"
	"github.com/SscSPs/fx_rates_ingestor/internal/utils/mapping"
)

const currencyColumns = `currency_code, name, last_updated, created_at, created_by, last_updated_at, last_updated_by`

type SQLiteCurrencyRepository struct {
	BaseRepository
}

func newSQLiteCurrencyRepository(db *sql.DB) portsrepo.CurrencyRepositoryFacade {
	return &SQLiteCurrencyRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.CurrencyRepositoryFacade = (*SQLiteCurrencyRepository)(nil)

// CreateCurrency inserts a currency on first sighting and leaves an existing row alone.
func (r *SQLiteCurrencyRepository) CreateCurrency(ctx context.Context, currency domain.Currency) (bool, error) {
	m := mapping.ToModelCurrency(currency)
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO currencies (`+currencyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(currency_code) DO NOTHING`,
		m.CurrencyCode,
		m.Name,
		utils.FormatISODate(m.LastUpdated),
		formatTimestamp(m.CreatedAt),
		m.CreatedBy,
		formatTimestamp(m.LastUpdatedAt),
		m.LastUpdatedBy,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create currency %s: %w", m.CurrencyCode, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to create currency %s: %w", m.CurrencyCode, err)
	}
	return affected > 0, nil
}

// SaveCurrency inserts a currency or updates its name and last-updated date.
func (r *SQLiteCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	m := mapping.ToModelCurrency(currency)
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO currencies (`+currencyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(currency_code) DO UPDATE SET
			name = excluded.name,
			last_updated = excluded.last_updated,
			last_updated_at = excluded.last_updated_at,
			last_updated_by = excluded.last_updated_by`,
		m.CurrencyCode,
		m.Name,
		utils.FormatISODate(m.LastUpdated),
		formatTimestamp(m.CreatedAt),
		m.CreatedBy,
		formatTimestamp(m.LastUpdatedAt),
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save currency %s: %w", m.CurrencyCode, err)
	}
	return nil
}

// FindCurrencyByCode retrieves a currency by its 3-letter code.
func (r *SQLiteCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+currencyColumns+` FROM currencies WHERE currency_code = ?`, currencyCode)
	m, err := scanCurrency(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find currency by code %s: %w", currencyCode, err)
	}
	d := mapping.ToDomainCurrency(m)
	return &d, nil
}

// ListCurrencies retrieves all currencies ordered by code.
func (r *SQLiteCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+currencyColumns+` FROM currencies ORDER BY currency_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	var ms []models.Currency
	for rows.Next() {
		m, err := scanCurrency(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan currencies: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan currencies: %w", err)
	}
	return mapping.ToDomainCurrencySlice(ms), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCurrency(row rowScanner) (models.Currency, error) {
	var (
		m                                  models.Currency
		lastUpdated, createdAt, modifiedAt string
	)
	if err := row.Scan(&m.CurrencyCode, &m.Name, &lastUpdated, &createdAt, &m.CreatedBy, &modifiedAt, &m.LastUpdatedBy); err != nil {
		return models.Currency{}, err
	}

	var err error
	if m.LastUpdated, err = parseDate(lastUpdated); err != nil {
		return models.Currency{}, err
	}
	if m.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return models.Currency{}, err
	}
	if m.LastUpdatedAt, err = parseTimestamp(modifiedAt); err != nil {
		return models.Currency{}, err
	}
	return m, nil
}
