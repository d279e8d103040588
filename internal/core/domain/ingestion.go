package domain

// UpsertOutcome is the result of reconciling one observation against the store.
type UpsertOutcome int

const (
	OutcomeSkipped UpsertOutcome = iota
	OutcomeInserted
)

func (o UpsertOutcome) String() string {
	if o == OutcomeInserted {
		return "inserted"
	}
	return "skipped"
}

// FileImportResult reports what happened to a single archive file.
type FileImportResult struct {
	File         string `json:"file"`
	CurrencyCode string `json:"currencyCode,omitempty"`
	CurrencyName string `json:"currencyName,omitempty"`
	Inserted     int    `json:"inserted"`
	Skipped      int    `json:"skipped"`
	Malformed    int    `json:"malformed"`
	NoValue      int    `json:"noValue"`
	SkipReason   string `json:"skipReason,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ImportSummary aggregates a directory import run.
// FilesProcessed counts every candidate file, whatever its outcome.
type ImportSummary struct {
	FilesProcessed int                `json:"filesProcessed"`
	FilesImported  int                `json:"filesImported"`
	FilesSkipped   int                `json:"filesSkipped"`
	FilesFailed    int                `json:"filesFailed"`
	Inserted       int                `json:"inserted"`
	Skipped        int                `json:"skipped"`
	Malformed      int                `json:"malformed"`
	NoValue        int                `json:"noValue"`
	Files          []FileImportResult `json:"files"`
}

// Add folds a file result into the summary.
func (s *ImportSummary) Add(r FileImportResult) {
	s.FilesProcessed++
	switch {
	case r.Error != "":
		s.FilesFailed++
	case r.SkipReason != "":
		s.FilesSkipped++
	default:
		s.FilesImported++
	}
	s.Inserted += r.Inserted
	s.Skipped += r.Skipped
	s.Malformed += r.Malformed
	s.NoValue += r.NoValue
	s.Files = append(s.Files, r)
}

// RefreshSummary aggregates a live refresh run.
type RefreshSummary struct {
	CurrenciesProcessed int      `json:"currenciesProcessed"`
	CurrenciesUpdated   int      `json:"currenciesUpdated"`
	CurrenciesFailed    int      `json:"currenciesFailed"`
	Inserted            int      `json:"inserted"`
	Skipped             int      `json:"skipped"`
	Malformed           int      `json:"malformed"`
	SeriesSkipped       int      `json:"seriesSkipped"`
	ArchiveFailures     int      `json:"archiveFailures"`
	FailedCurrencies    []string `json:"failedCurrencies,omitempty"`
}

// UpsertRequest carries one observation and the identity to create its currency with.
type UpsertRequest struct {
	Source       Source
	CurrencyName string
	Observation  Observation
}

// UpsertResult is the outcome of one upsert; Rate is set when a row was inserted.
type UpsertResult struct {
	Outcome UpsertOutcome
	Rate    *ExchangeRate
}
