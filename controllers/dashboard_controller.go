package controllers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/tradepost/marketplace-console/services"
	"github.com/tradepost/marketplace-console/userctx"
)

// defaultListLimit bounds reporting reads when the dashboard does not ask
// for a specific page size.
const defaultListLimit = 50

// DashboardController exposes the read-only audit reporting surface consumed
// by the admin dashboard.
type DashboardController struct {
	services *services.Services
	logger   *zap.Logger
}

// NewDashboardController creates a new dashboard controller
func NewDashboardController(services *services.Services, logger *zap.Logger) *DashboardController {
	return &DashboardController{services: services, logger: logger}
}

// Index handles GET /admin
func (c *DashboardController) Index(w http.ResponseWriter, r *http.Request) {
	summary, err := c.services.Gateway.Summary()
	if err != nil {
		c.serveStorageError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subject":    userctx.GetSubject(r.Context()),
		"csrf_token": userctx.GetCSRFToken(r.Context()),
		"summary":    summary,
	})
}

// Submissions handles GET /admin/audit/submissions
func (c *DashboardController) Submissions(w http.ResponseWriter, r *http.Request) {
	records, err := c.services.Gateway.RecentSubmissions(limitParam(r))
	if err != nil {
		c.serveStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"submissions": records})
}

// Suspicious handles GET /admin/audit/suspicious
func (c *DashboardController) Suspicious(w http.ResponseWriter, r *http.Request) {
	entries, err := c.services.Gateway.RecentSuspicious(limitParam(r))
	if err != nil {
		c.serveStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"suspicious": entries})
}

func (c *DashboardController) serveStorageError(w http.ResponseWriter, err error) {
	c.logger.Error("audit read failed", zap.Error(err))
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"error": "Audit data is temporarily unavailable, please try again",
	})
}

// limitParam reads the list page size from the query string
func limitParam(r *http.Request) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			return limit
		}
	}
	return defaultListLimit
}
