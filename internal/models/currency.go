package models

import "time"

// Currency is a row of the currencies table.
type Currency struct {
	CurrencyCode string    `json:"currencyCode"` // Primary Key (e.g., "USD")
	Name         string    `json:"name"`         // e.g., "US dollar"
	LastUpdated  time.Time `json:"lastUpdated"`  // calendar date
	AuditFields
}
