package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/SscSPs/fx_rates_ingestor/internal/apperrors"
	portssvc "github.com/SscSPs/fx_rates_ingestor/internal/core/ports/services"
	"github.com/SscSPs/fx_rates_ingestor/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ingestionHandler exposes the manual import and refresh triggers.
// Only one run, of either kind, executes at a time.
type ingestionHandler struct {
	ingestionService portssvc.IngestionSvcFacade
	archiveDir       string
	running          sync.Mutex
}

func newIngestionHandler(svc portssvc.IngestionSvcFacade, archiveDir string) *ingestionHandler {
	return &ingestionHandler{
		ingestionService: svc,
		archiveDir:       archiveDir,
	}
}

func registerIngestionRoutes(rg *gin.RouterGroup, archiveDir string, svc portssvc.IngestionSvcFacade) {
	h := newIngestionHandler(svc, archiveDir)

	ingestion := rg.Group("/ingestion")
	{
		ingestion.POST("/import", h.importArchive)
		ingestion.POST("/refresh", h.refreshRates)
	}
}

// importArchive godoc
// @Summary Import the CSV archive
// @Description Imports every archive file in the configured directory into the store
// @Tags ingestion
// @Produce json
// @Success 200 {object} domain.ImportSummary
// @Failure 409 {object} map[string]string "Another ingestion run is in progress"
// @Failure 500 {object} map[string]string "Archive directory unreadable"
// @Router /ingestion/import [post]
func (h *ingestionHandler) importArchive(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if !h.running.TryLock() {
		logger.Warn("Import requested while another ingestion run is in progress")
		c.JSON(http.StatusConflict, gin.H{"error": "An ingestion run is already in progress"})
		return
	}
	defer h.running.Unlock()

	logger.Info("Received request to import archive", slog.String("dir", h.archiveDir))
	summary, err := h.ingestionService.ImportCSVDirectory(c.Request.Context(), h.archiveDir)
	if err != nil {
		logger.Error("Archive import failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import archive directory"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// refreshRates godoc
// @Summary Refresh rates from the live source
// @Description Fetches every known currency from the Bundesbank API, stores new rates and mirrors them to the archive
// @Tags ingestion
// @Produce json
// @Success 200 {object} domain.RefreshSummary
// @Failure 409 {object} map[string]string "Another ingestion run is in progress"
// @Failure 500 {object} map[string]string "Refresh could not start"
// @Router /ingestion/refresh [post]
func (h *ingestionHandler) refreshRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if !h.running.TryLock() {
		logger.Warn("Refresh requested while another ingestion run is in progress")
		c.JSON(http.StatusConflict, gin.H{"error": "An ingestion run is already in progress"})
		return
	}
	defer h.running.Unlock()

	logger.Info("Received request to refresh rates")
	summary, err := h.ingestionService.RefreshAllFromLiveSource(c.Request.Context())
	if err != nil {
		if summary != nil && c.Request.Context().Err() != nil {
			logger.Warn("Refresh cancelled", slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, summary)
			return
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			logger.Error("Refresh failed", slog.String("error", err.Error()))
			c.JSON(appErr.Code, gin.H{"error": appErr.Message})
			return
		}
		logger.Error("Refresh failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh rates"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
