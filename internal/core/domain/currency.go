package domain

import "time"

// BaseCurrencyCode is the currency every reference rate is quoted against.
const BaseCurrencyCode = "EUR"

// UnknownCountry is the name used when a header carries no usable description.
const UnknownCountry = "Unknown Country"

// Currency represents a currency with at least one reference rate.
type Currency struct {
	CurrencyCode string    `json:"currencyCode" validate:"required,len=3,alpha,uppercase"` // Primary Key (e.g., "USD")
	Name         string    `json:"name"`                                                   // e.g., "US dollar"
	LastUpdated  time.Time `json:"lastUpdated"`                                            // calendar date of the last ingestion touching it
	AuditFields
}

// HasPlaceholderName reports whether the name was never resolved from an archive header.
func (c Currency) HasPlaceholderName() bool {
	return c.Name == "" || c.Name == UnknownCountry || c.Name == c.CurrencyCode
}
