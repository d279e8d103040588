package services

import (
	"github.com/SscSPs/fx_rates_ingestor/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/fx_rates_ingestor/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fx_rates_ingestor/internal/core/ports/services"
)

// Gateways groups the non-store collaborators of the ingestion services.
type Gateways struct {
	Archive gateways.RateArchive
	Source  gateways.LiveRateSource
	Pacer   gateways.Pacer
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, gw Gateways) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Reconciler = NewReconcilerService(repos.CurrencyRepo, repos.ExchangeRateRepo)

	options := []IngestionOption{WithLiveSource(gw.Source)}
	if gw.Pacer != nil {
		options = append(options, WithPacer(gw.Pacer))
	}
	container.Ingestion = NewIngestionService(container.Reconciler, repos.CurrencyRepo, gw.Archive, options...)

	return container
}
