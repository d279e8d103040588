package sqlite

import (
	"database/sql"

	portsrepo "github.com/SscSPs/fx_rates_ingestor/internal/core/ports/repositories"
)

func NewRepositoryProvider(db *sql.DB) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		CurrencyRepo:     newSQLiteCurrencyRepository(db),
		ExchangeRateRepo: newSQLiteExchangeRateRepository(db),
	}
}
