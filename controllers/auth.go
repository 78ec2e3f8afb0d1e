package controllers

import (
	"errors"
	"html/template"
	"net/http"

	"gitea.com/go-chi/session"
	"go.uber.org/zap"

	"github.com/tradepost/marketplace-console/middleware"
	"github.com/tradepost/marketplace-console/models"
	"github.com/tradepost/marketplace-console/services"
)

// AuthController handles the admin login and logout endpoints
type AuthController struct {
	services *services.Services
	logger   *zap.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(services *services.Services, logger *zap.Logger) *AuthController {
	return &AuthController{services: services, logger: logger}
}

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Admin Login</title></head>
<body>
  <h1>Marketplace Console</h1>
  {{if .Flash}}<p class="flash {{.Flash.Type}}">{{.Flash.Message}}</p>{{end}}
  <form method="POST" action="/login">
    <label>Password <input type="password" name="password" autocomplete="current-password"></label>
    <button type="submit">Sign in</button>
  </form>
</body>
</html>`))

type loginPage struct {
	Flash *models.FlashMessage
}

// LoginForm handles GET /login
func (c *AuthController) LoginForm(w http.ResponseWriter, r *http.Request) {
	page := loginPage{}
	switch r.URL.Query().Get("reason") {
	case middleware.ReasonExpired:
		page.Flash = &models.FlashMessage{Type: "warning", Message: "Your session has expired, please sign in again"}
	case middleware.ReasonUnauthenticated:
		page.Flash = &models.FlashMessage{Type: "info", Message: "Please sign in to continue"}
	}
	renderTemplate(w, http.StatusOK, loginTemplate, page)
}

// Login handles POST /login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	_, err := c.services.Sessions.Login(w, r, r.PostFormValue("password"))
	if errors.Is(err, services.ErrInvalidCredential) {
		// Same message regardless of what was wrong with the attempt.
		renderTemplate(w, http.StatusUnauthorized, loginTemplate, loginPage{
			Flash: &models.FlashMessage{Type: "error", Message: "Invalid credentials"},
		})
		return
	}
	if err != nil {
		c.logger.Error("login failed on session storage", zap.Error(err))
		renderTemplate(w, http.StatusInternalServerError, loginTemplate, loginPage{
			Flash: &models.FlashMessage{Type: "error", Message: "Something went wrong, please try again"},
		})
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout handles POST /logout
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSession(r)
	if err := c.services.Sessions.Logout(sess); err != nil {
		c.logger.Error("logout failed on session storage", zap.Error(err))
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
