package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is the price of 1 EUR in CurrencyCode units on RateDate.
// (CurrencyCode, RateDate) is unique.
type ExchangeRate struct {
	ExchangeRateID string          `json:"exchangeRateID"`
	CurrencyCode   string          `json:"currencyCode"`
	RateDate       time.Time       `json:"rateDate"`
	Rate           decimal.Decimal `json:"rate"`
	Source         Source          `json:"source"`
	AuditFields
}

// Observation is a single incoming (currency, date, value) tuple before reconciliation.
type Observation struct {
	CurrencyCode string
	Date         time.Time
	Value        decimal.Decimal
}

// ArchiveRecord is one dated value read from an archive file's data section.
type ArchiveRecord struct {
	Line  int
	Date  time.Time
	Value decimal.Decimal
}

// Series is one decoded live-source time series for a single currency.
// Malformed counts observations dropped while decoding.
type Series struct {
	Key          string
	CurrencyCode string
	Observations []Observation
	Malformed    int
	Nulls        int
}
