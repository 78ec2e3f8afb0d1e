package controllers

import (
	"encoding/json"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/tradepost/marketplace-console/config"
	"github.com/tradepost/marketplace-console/services"
)

// writeJSON renders a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already out; nothing useful left to do.
		return
	}
}

// renderTemplate executes a pre-parsed page template with the provided data
func renderTemplate(w http.ResponseWriter, statusCode int, tmpl *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// Controllers holds all controller instances
type Controllers struct {
	Auth      *AuthController
	Dashboard *DashboardController
	Public    *PublicController
}

// NewControllers creates and initializes all controller instances
func NewControllers(services *services.Services, cfg *config.Config, logger *zap.Logger) *Controllers {
	return &Controllers{
		Auth:      NewAuthController(services, logger),
		Dashboard: NewDashboardController(services, logger),
		Public:    NewPublicController(services, cfg, logger),
	}
}
