package domain

import "time"

// AuditFields holds standard audit information for domain entities.
// CreatedBy / LastUpdatedBy hold the ingestion source rather than a user.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// Source identifies where a record was ingested from.
type Source string

const (
	SourceCSV        Source = "csv"
	SourceBundesbank Source = "bundesbank"
)
