package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/fx_rates_ingestor/internal/apperrors"
	"github.com/SscSPs/fx_rates_ingestor/internal/core/domain"
	portsrepo "github.com/SscSPs/fx_rates_ingestor/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fx_rates_ingestor/internal/core/ports/services"
	"github.com/SscSPs/fx_rates_ingestor/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// reconcilerService implements the ReconcilerSvc interface
type reconcilerService struct {
	BaseService
	currencyRepo portsrepo.CurrencyRepositoryFacade
	rateRepo     portsrepo.ExchangeRateRepositoryFacade
	validate     *validator.Validate
}

// ReconcilerOption is a functional option for configuring the reconciler
type ReconcilerOption func(*reconcilerService)

// WithReconcilerClock overrides the clock used for audit fields and currency dates.
func WithReconcilerClock(now func() time.Time) ReconcilerOption {
	return func(s *reconcilerService) {
		s.now = now
	}
}

// NewReconcilerService creates the idempotent upsert service.
func NewReconcilerService(
	currencyRepo portsrepo.CurrencyRepositoryFacade,
	rateRepo portsrepo.ExchangeRateRepositoryFacade,
	options ...ReconcilerOption,
) portssvc.ReconcilerSvc {
	svc := &reconcilerService{
		currencyRepo: currencyRepo,
		rateRepo:     rateRepo,
		validate:     validator.New(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReconcilerSvc = (*reconcilerService)(nil)

func (s *reconcilerService) Upsert(ctx context.Context, req domain.UpsertRequest) (domain.UpsertResult, error) {
	obs := req.Observation
	code := obs.CurrencyCode

	if err := s.validateCode(code); err != nil {
		return domain.UpsertResult{}, err
	}
	if obs.Date.IsZero() {
		return domain.UpsertResult{}, fmt.Errorf("%w: missing date for %s", apperrors.ErrInvalidDate, code)
	}
	if !obs.Value.IsPositive() {
		return domain.UpsertResult{}, fmt.Errorf("%w: rate %s for %s on %s is not positive",
			apperrors.ErrMalformedValue, obs.Value.String(), code, utils.FormatISODate(obs.Date))
	}

	if _, err := s.ensureCurrency(ctx, code, req.CurrencyName, req.Source); err != nil {
		return domain.UpsertResult{}, err
	}

	rateDate := utils.Today(obs.Date)
	exists, err := s.rateRepo.ExistsExchangeRate(ctx, code, rateDate)
	if err != nil {
		return domain.UpsertResult{}, fmt.Errorf("checking rate %s on %s: %w", code, utils.FormatISODate(rateDate), err)
	}
	if exists {
		return domain.UpsertResult{Outcome: domain.OutcomeSkipped}, nil
	}

	now := s.Now().UTC()
	rate := domain.ExchangeRate{
		ExchangeRateID: uuid.NewString(),
		CurrencyCode:   code,
		RateDate:       rateDate,
		Rate:           obs.Value,
		Source:         req.Source,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     string(req.Source),
			LastUpdatedAt: now,
			LastUpdatedBy: string(req.Source),
		},
	}

	if err := s.rateRepo.SaveExchangeRate(ctx, rate); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// lost the insert race; the unique key decides
			s.LogDebug(ctx, "Rate inserted concurrently, skipping",
				slog.String("currency_code", code),
				slog.String("rate_date", utils.FormatISODate(rateDate)))
			return domain.UpsertResult{Outcome: domain.OutcomeSkipped}, nil
		}
		return domain.UpsertResult{}, fmt.Errorf("saving rate %s on %s: %w", code, utils.FormatISODate(rateDate), err)
	}

	return domain.UpsertResult{Outcome: domain.OutcomeInserted, Rate: &rate}, nil
}

func (s *reconcilerService) BackfillCurrencyName(ctx context.Context, currencyCode, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || name == domain.UnknownCountry || name == currencyCode {
		return nil
	}

	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("finding currency %s: %w", currencyCode, err)
	}
	if !currency.HasPlaceholderName() {
		return nil
	}

	previous := currency.Name
	currency.Name = name
	currency.LastUpdatedAt = s.Now().UTC()
	currency.LastUpdatedBy = string(domain.SourceCSV)
	if err := s.currencyRepo.SaveCurrency(ctx, *currency); err != nil {
		return fmt.Errorf("saving currency %s: %w", currencyCode, err)
	}

	s.LogInfo(ctx, "Backfilled currency name",
		slog.String("currency_code", currencyCode),
		slog.String("previous_name", previous),
		slog.String("name", name))
	return nil
}

func (s *reconcilerService) TouchCurrency(ctx context.Context, currencyCode string, source domain.Source) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("finding currency %s: %w", currencyCode, err)
	}

	now := s.Now()
	currency.LastUpdated = utils.Today(now)
	currency.LastUpdatedAt = now.UTC()
	currency.LastUpdatedBy = string(source)
	if err := s.currencyRepo.SaveCurrency(ctx, *currency); err != nil {
		return nil, fmt.Errorf("saving currency %s: %w", currencyCode, err)
	}
	return currency, nil
}

// ensureCurrency returns the stored currency, creating it on first sighting.
// An existing currency's name is left untouched.
func (s *reconcilerService) ensureCurrency(ctx context.Context, code, name string, source domain.Source) (*domain.Currency, error) {
	existing, err := s.currencyRepo.FindCurrencyByCode(ctx, code)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("finding currency %s: %w", code, err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = code
	}
	now := s.Now()
	currency := domain.Currency{
		CurrencyCode: code,
		Name:         name,
		LastUpdated:  utils.Today(now),
		AuditFields: domain.AuditFields{
			CreatedAt:     now.UTC(),
			CreatedBy:     string(source),
			LastUpdatedAt: now.UTC(),
			LastUpdatedBy: string(source),
		},
	}
	created, err := s.currencyRepo.CreateCurrency(ctx, currency)
	if err != nil {
		return nil, fmt.Errorf("creating currency %s: %w", code, err)
	}
	if !created {
		// another writer created it first; its name wins
		existing, err := s.currencyRepo.FindCurrencyByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("finding currency %s: %w", code, err)
		}
		return existing, nil
	}

	s.LogInfo(ctx, "Created currency",
		slog.String("currency_code", code),
		slog.String("name", name),
		slog.String("source", string(source)))
	return &currency, nil
}

func (s *reconcilerService) validateCode(code string) error {
	if err := s.validate.StructPartial(domain.Currency{CurrencyCode: code}, "CurrencyCode"); err != nil {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidCurrency, code)
	}
	return nil
}
