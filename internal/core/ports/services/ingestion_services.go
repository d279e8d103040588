package services

import (
	"context"

	"github.com/SscSPs/fx_rates_ingestor/internal/core/domain"
)

// CSVImporterSvc loads archive files into the store.
type CSVImporterSvc interface {
	// ImportCSVDirectory imports every archive file under dir. Only a failure
	// to list dir is returned as an error; per-file failures are in the summary.
	ImportCSVDirectory(ctx context.Context, dir string) (*domain.ImportSummary, error)
}

// LiveRefresherSvc pulls new rates from the live source.
type LiveRefresherSvc interface {
	// RefreshAllFromLiveSource refreshes every known non-EUR currency.
	// Only a failure to list the currencies is returned as an error.
	RefreshAllFromLiveSource(ctx context.Context) (*domain.RefreshSummary, error)
}

// IngestionSvcFacade combines both ingestion entry points.
type IngestionSvcFacade interface {
	CSVImporterSvc
	LiveRefresherSvc
}
