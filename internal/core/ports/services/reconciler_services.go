package services

import (
	"context"

	"github.com/SscSPs/fx_rates_ingestor/internal/core/domain"
)

// ReconcilerSvc is the idempotent write path into the rate store.
type ReconcilerSvc interface {
	// Upsert stores the observation unless a rate already exists for its
	// (currency, date). A lost insert race is reported as skipped.
	Upsert(ctx context.Context, req domain.UpsertRequest) (domain.UpsertResult, error)

	// BackfillCurrencyName replaces a placeholder currency name. Resolved
	// names are never overwritten.
	BackfillCurrencyName(ctx context.Context, currencyCode, name string) error

	// TouchCurrency bumps the currency's last-updated date to today.
	TouchCurrency(ctx context.Context, currencyCode string, source domain.Source) (*domain.Currency, error)
}
