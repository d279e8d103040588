package metrics

import (
	"time"

	"github.com/SscSPs/fx_rates_ingestor/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ratesInsertedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fx_rates_inserted_total",
		Help: "Total number of reference rates inserted into the store",
	}, []string{"source"})

	ratesSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fx_rates_skipped_total",
		Help: "Total number of reference rates skipped because the (currency, date) key already existed",
	}, []string{"source"})

	rowsMalformedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fx_rows_malformed_total",
		Help: "Total number of input rows or observations dropped as malformed",
	}, []string{"source"})

	unitFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fx_unit_failures_total",
		Help: "Total number of files, currencies or archive writes that failed",
	}, []string{"unit"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fx_live_fetch_duration_seconds",
		Help:    "Duration of live source fetches in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
)

// RecordFileImport records the counters of one imported archive file.
func RecordFileImport(r domain.FileImportResult) {
	recordCounts(domain.SourceCSV, r.Inserted, r.Skipped, r.Malformed)
	if r.Error != "" {
		unitFailuresTotal.WithLabelValues("file").Inc()
	}
}

// RecordRefresh records the counters of a live refresh run.
func RecordRefresh(s domain.RefreshSummary) {
	recordCounts(domain.SourceBundesbank, s.Inserted, s.Skipped, s.Malformed)
	unitFailuresTotal.WithLabelValues("currency").Add(float64(s.CurrenciesFailed))
	unitFailuresTotal.WithLabelValues("archive").Add(float64(s.ArchiveFailures))
}

// ObserveFetch records the latency of one live fetch.
func ObserveFetch(started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	fetchDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
}

func recordCounts(source domain.Source, inserted, skipped, malformed int) {
	ratesInsertedTotal.WithLabelValues(string(source)).Add(float64(inserted))
	ratesSkippedTotal.WithLabelValues(string(source)).Add(float64(skipped))
	rowsMalformedTotal.WithLabelValues(string(source)).Add(float64(malformed))
}
