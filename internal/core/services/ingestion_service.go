package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/SscSPs/fx_rates_ingestor/internal/apperrors"
	"github.com/SscSPs/fx_rates_ingestor/internal/core/domain"
	"github.com/SscSPs/fx_rates_ingestor/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/fx_rates_ingestor/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fx_rates_ingestor/internal/core/ports/services"
	"github.com/SscSPs/fx_rates_ingestor/internal/platform/metrics"
)

const skipReasonNoCurrency = "no currency code in header"

// ingestionService drives the CSV directory import and the live refresh loop.
// Both run sequentially on the calling goroutine.
type ingestionService struct {
	BaseService
	reconciler   portssvc.ReconcilerSvc
	currencyRepo portsrepo.CurrencyReader
	archive      gateways.RateArchive
	source       gateways.LiveRateSource
	pacer        gateways.Pacer
}

// IngestionOption is a functional option for configuring the ingestion service
type IngestionOption func(*ingestionService)

// WithLiveSource sets the live rate source used by RefreshAllFromLiveSource.
func WithLiveSource(source gateways.LiveRateSource) IngestionOption {
	return func(s *ingestionService) {
		s.source = source
	}
}

// WithPacer spaces out live source calls.
func WithPacer(pacer gateways.Pacer) IngestionOption {
	return func(s *ingestionService) {
		s.pacer = pacer
	}
}

// NewIngestionService creates the ingestion orchestrator.
func NewIngestionService(
	reconciler portssvc.ReconcilerSvc,
	currencyRepo portsrepo.CurrencyReader,
	archive gateways.RateArchive,
	options ...IngestionOption,
) portssvc.IngestionSvcFacade {
	svc := &ingestionService{
		reconciler:   reconciler,
		currencyRepo: currencyRepo,
		archive:      archive,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.IngestionSvcFacade = (*ingestionService)(nil)

func (s *ingestionService) ImportCSVDirectory(ctx context.Context, dir string) (*domain.ImportSummary, error) {
	files, err := s.archive.ListFiles(dir)
	if err != nil {
		s.LogError(ctx, err, "Failed to list archive directory", slog.String("dir", dir))
		return nil, err
	}

	summary := &domain.ImportSummary{Files: make([]domain.FileImportResult, 0, len(files))}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result := s.importFile(ctx, path)
		summary.Add(result)
		metrics.RecordFileImport(result)
	}

	s.LogInfo(ctx, "CSV import finished",
		slog.String("dir", dir),
		slog.Int("files_processed", summary.FilesProcessed),
		slog.Int("files_skipped", summary.FilesSkipped),
		slog.Int("files_failed", summary.FilesFailed),
		slog.Int("inserted", summary.Inserted),
		slog.Int("skipped", summary.Skipped),
		slog.Int("malformed", summary.Malformed),
		slog.Int("no_value", summary.NoValue))
	return summary, nil
}

// importFile never returns an error; failures are recorded on the result.
func (s *ingestionService) importFile(ctx context.Context, path string) domain.FileImportResult {
	result := domain.FileImportResult{File: filepath.Base(path)}
	logger := s.GetLogger(ctx).With(slog.String("file", result.File))

	file, err := s.archive.OpenFile(ctx, path)
	if err != nil {
		logger.Error("Failed to open archive file", slog.String("error", err.Error()))
		result.Error = err.Error()
		return result
	}
	defer file.Close()

	for {
		record, err := file.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Error("Failed to read archive file", slog.String("error", err.Error()))
			result.Error = err.Error()
			return result
		}

		code, name, ok := file.Currency()
		if !ok {
			break
		}
		result.CurrencyCode, result.CurrencyName = code, name

		res, err := s.reconciler.Upsert(ctx, domain.UpsertRequest{
			Source:       domain.SourceCSV,
			CurrencyName: name,
			Observation: domain.Observation{
				CurrencyCode: code,
				Date:         record.Date,
				Value:        record.Value,
			},
		})
		switch {
		case errors.Is(err, apperrors.ErrInvalidCurrency):
			logger.Warn("Skipping file with invalid currency", slog.String("currency_code", code))
			result.SkipReason = err.Error()
			return result
		case errors.Is(err, apperrors.ErrMalformedValue), errors.Is(err, apperrors.ErrInvalidDate):
			logger.Warn("Skipping row", slog.Int("line", record.Line), slog.String("error", err.Error()))
			result.Malformed++
			continue
		case err != nil:
			logger.Error("Failed to store rate", slog.Int("line", record.Line), slog.String("error", err.Error()))
			result.Error = err.Error()
			return result
		}

		if res.Outcome == domain.OutcomeInserted {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}

	result.Malformed += file.Malformed()
	result.NoValue = file.NoValue()
	code, name, ok := file.Currency()
	if !ok {
		logger.Warn("Skipping file without currency header")
		result.SkipReason = skipReasonNoCurrency
		result.Malformed = 0
		result.NoValue = 0
		return result
	}
	result.CurrencyCode, result.CurrencyName = code, name

	if err := s.reconciler.BackfillCurrencyName(ctx, code, name); err != nil {
		logger.Warn("Failed to backfill currency name", slog.String("currency_code", code), slog.String("error", err.Error()))
	}

	logger.Info("Imported archive file",
		slog.String("currency_code", code),
		slog.Int("inserted", result.Inserted),
		slog.Int("skipped", result.Skipped),
		slog.Int("malformed", result.Malformed),
		slog.Int("no_value", result.NoValue))
	return result
}

func (s *ingestionService) RefreshAllFromLiveSource(ctx context.Context) (*domain.RefreshSummary, error) {
	if s.source == nil {
		return nil, apperrors.NewAppError(500, "live source is not configured", apperrors.ErrSourceUnavailable)
	}

	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list currencies")
		return nil, fmt.Errorf("listing currencies: %w", err)
	}

	summary := &domain.RefreshSummary{}
	if len(currencies) == 0 {
		s.LogWarn(ctx, "No currencies in the store, import CSVs first")
		return summary, nil
	}

	defer func() { metrics.RecordRefresh(*summary) }()

	for _, currency := range currencies {
		code := currency.CurrencyCode
		if strings.EqualFold(code, domain.BaseCurrencyCode) {
			continue
		}
		if s.pacer != nil {
			if err := s.pacer.Wait(ctx); err != nil {
				return summary, err
			}
		} else if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.CurrenciesProcessed++
		outcome, err := s.refreshCurrency(ctx, code)
		summary.Inserted += outcome.inserted
		summary.Skipped += outcome.skipped
		summary.Malformed += outcome.malformed
		summary.SeriesSkipped += outcome.seriesSkipped
		summary.ArchiveFailures += outcome.archiveFailures
		if err != nil {
			s.LogError(ctx, err, "Failed to refresh currency", slog.String("currency_code", code))
			summary.CurrenciesFailed++
			summary.FailedCurrencies = append(summary.FailedCurrencies, code)
			continue
		}
		if outcome.inserted > 0 {
			summary.CurrenciesUpdated++
		}
	}

	s.LogInfo(ctx, "Live refresh finished",
		slog.Int("currencies_processed", summary.CurrenciesProcessed),
		slog.Int("currencies_updated", summary.CurrenciesUpdated),
		slog.Int("currencies_failed", summary.CurrenciesFailed),
		slog.Int("inserted", summary.Inserted),
		slog.Int("skipped", summary.Skipped),
		slog.Int("archive_failures", summary.ArchiveFailures))
	return summary, nil
}

type currencyRefresh struct {
	inserted        int
	skipped         int
	malformed       int
	seriesSkipped   int
	archiveFailures int
}

// refreshCurrency fetches one currency, stores new observations and mirrors
// them to the archive. Archive failures are counted, not returned. A store
// failure stops the upserts, but rates inserted before it are still archived.
func (s *ingestionService) refreshCurrency(ctx context.Context, code string) (currencyRefresh, error) {
	var out currencyRefresh

	started := time.Now()
	series, err := s.source.FetchCurrency(ctx, code)
	metrics.ObserveFetch(started, err)
	if err != nil {
		return out, err
	}

	fresh := make(map[string][]domain.ExchangeRate)
	var order []string
	var storeErr error

upserts:
	for _, sr := range series {
		out.malformed += sr.Malformed
		for _, obs := range sr.Observations {
			res, err := s.reconciler.Upsert(ctx, domain.UpsertRequest{
				Source:       domain.SourceBundesbank,
				CurrencyName: obs.CurrencyCode,
				Observation:  obs,
			})
			if errors.Is(err, apperrors.ErrInvalidCurrency) {
				s.LogWarn(ctx, "Skipping series with invalid currency",
					slog.String("series_key", sr.Key),
					slog.String("currency_code", sr.CurrencyCode))
				out.seriesSkipped++
				break
			}
			if errors.Is(err, apperrors.ErrMalformedValue) || errors.Is(err, apperrors.ErrInvalidDate) {
				out.malformed++
				continue
			}
			if err != nil {
				storeErr = err
				break upserts
			}

			if res.Outcome != domain.OutcomeInserted {
				out.skipped++
				continue
			}
			out.inserted++
			if _, seen := fresh[obs.CurrencyCode]; !seen {
				order = append(order, obs.CurrencyCode)
			}
			fresh[obs.CurrencyCode] = append(fresh[obs.CurrencyCode], *res.Rate)
		}
	}

	for _, seriesCode := range order {
		currency, err := s.reconciler.TouchCurrency(ctx, seriesCode, domain.SourceBundesbank)
		if err != nil {
			s.LogError(ctx, err, "Failed to update currency", slog.String("currency_code", seriesCode))
			if storeErr == nil {
				storeErr = err
			}
			currency = &domain.Currency{CurrencyCode: seriesCode, Name: seriesCode}
		}
		if err := s.archive.Append(ctx, *currency, fresh[seriesCode]); err != nil {
			s.LogError(ctx, err, "Failed to append rates to archive",
				slog.String("currency_code", seriesCode),
				slog.Int("rates", len(fresh[seriesCode])))
			out.archiveFailures++
			continue
		}
		s.LogInfo(ctx, "Archived new rates",
			slog.String("currency_code", seriesCode),
			slog.Int("rates", len(fresh[seriesCode])))
	}
	return out, storeErr
}
