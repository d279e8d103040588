package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getHome godoc
// @Summary Show the status of server.
// @Tags root
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func getHome(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"service": "fx-rates-ingestor",
		"endpoints": []string{
			"POST /api/v1/ingestion/import",
			"POST /api/v1/ingestion/refresh",
			"GET /healthz",
			"GET /metrics",
		},
	})
}

func registerHomeRoutes(r *gin.Engine) {
	r.GET("/", getHome)
}
