// Package api exposes the query boundary over HTTP for the tracking
// frontend.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/totemtrack/go-track-sheets/models"
	"github.com/totemtrack/go-track-sheets/sheet"
	"github.com/totemtrack/go-track-sheets/status"
	"github.com/totemtrack/go-track-sheets/store"
)

const (
	msgSourceUnavailable = "could not reach the data source"
	msgNotFound          = "no record found for this input"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	store *store.Store
}

// NewHandlers creates a new handlers instance.
func NewHandlers(st *store.Store) *Handlers {
	return &Handlers{store: st}
}

// trackedRecord pairs a record with its derived display status.
type trackedRecord struct {
	Record *models.TrackingRecord `json:"record"`
	Status status.Status          `json:"status"`
}

// Health returns the health of both dataset snapshots.
func (h *Handlers) Health(c *gin.Context) {
	datasets := gin.H{}
	healthy := true
	for _, dataset := range []sheet.Dataset{sheet.DatasetOrders, sheet.DatasetDocuments} {
		snap, err := h.store.Snapshot(dataset)
		switch {
		case err != nil:
			datasets[string(dataset)] = gin.H{"status": "unavailable"}
			healthy = false
		default:
			datasets[string(dataset)] = gin.H{
				"status":     "ok",
				"records":    len(snap.Records),
				"fetched_at": snap.FetchedAt,
			}
		}
	}

	code := http.StatusOK
	overall := "healthy"
	if !healthy {
		code = http.StatusServiceUnavailable
		overall = "degraded"
	}
	c.JSON(code, gin.H{"status": overall, "datasets": datasets})
}

// TrackOrder looks up a single shipment by order, secondary, or invoice
// number (?key=).
func (h *Handlers) TrackOrder(c *gin.Context) {
	rec, err := h.store.SearchByOrderKey(c.Query("key"))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": msgSourceUnavailable})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
		return
	}

	c.JSON(http.StatusOK, trackedRecord{Record: rec, Status: status.Classify(rec)})
}

// TrackDocument lists every shipment registered under a customer tax id
// (?key=), CPF or CNPJ, formatting noise tolerated.
func (h *Handlers) TrackDocument(c *gin.Context) {
	records, err := h.store.SearchByDocument(c.Query("key"))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": msgSourceUnavailable})
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
		return
	}

	tracked := make([]trackedRecord, 0, len(records))
	for _, rec := range records {
		tracked = append(tracked, trackedRecord{Record: rec, Status: status.Classify(rec)})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(tracked), "results": tracked})
}

// Router assembles the gin engine with all routes mounted.
func Router(h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api/v1")
	{
		api.GET("/health", h.Health)
		api.GET("/track/order", h.TrackOrder)
		api.GET("/track/document", h.TrackDocument)
	}
	return router
}
