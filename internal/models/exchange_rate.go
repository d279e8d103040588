package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is a row of the exchange_rates table, unique on (CurrencyCode, RateDate).
type ExchangeRate struct {
	ExchangeRateID string          `json:"exchangeRateID"` // Primary Key (UUID)
	CurrencyCode   string          `json:"currencyCode"`   // FK -> Currency.currencyCode
	RateDate       time.Time       `json:"rateDate"`
	Rate           decimal.Decimal `json:"rate"`
	Source         string          `json:"source"`
	AuditFields
}
