package services

// ServiceContainer holds instances of all the application services.
// It is the entry point used by the handlers and the command.
type ServiceContainer struct {
	Reconciler ReconcilerSvc
	Ingestion  IngestionSvcFacade
}
