package controllers

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tradepost/marketplace-console/config"
	"github.com/tradepost/marketplace-console/middleware"
	"github.com/tradepost/marketplace-console/models"
	"github.com/tradepost/marketplace-console/services"
)

// Public form field names. The "website" field is the honeypot: humans never
// see it, so any value marks the submission as automated. "form_ts" carries
// the render time the classifier compares against the submit time.
const (
	honeypotField = "website"
	renderedField = "form_ts"
)

// PublicController handles the unauthenticated form endpoints guarded by the
// submission classifier.
type PublicController struct {
	services *services.Services
	cfg      *config.Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewPublicController creates a new public form controller
func NewPublicController(services *services.Services, cfg *config.Config, logger *zap.Logger) *PublicController {
	return &PublicController{services: services, cfg: cfg, logger: logger, now: time.Now}
}

var formTemplate = template.Must(template.New("public-form").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
  <h1>{{.Title}}</h1>
  {{if .Flash}}<p class="flash {{.Flash.Type}}">{{.Flash.Message}}</p>{{end}}
  <form method="POST" action="{{.Action}}">
    <label>Name <input type="text" name="name" value="{{.Name}}"></label>
    <label>Email <input type="email" name="email" value="{{.Email}}"></label>
    <label>Message <textarea name="message">{{.Message}}</textarea></label>
    <div style="display:none" aria-hidden="true">
      <label>Website <input type="text" name="website" tabindex="-1" autocomplete="off"></label>
    </div>
    <input type="hidden" name="form_ts" value="{{.RenderedAt}}">
    <button type="submit">Send</button>
  </form>
</body>
</html>`))

var thanksTemplate = template.Must(template.New("public-thanks").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
  <h1>Thank you</h1>
  <p>Your message has been received.</p>
</body>
</html>`))

type formPage struct {
	Title      string
	Action     string
	Name       string
	Email      string
	Message    string
	RenderedAt int64
	Flash      *models.FlashMessage
}

// ShowContactForm handles GET /contact
func (c *PublicController) ShowContactForm(w http.ResponseWriter, r *http.Request) {
	c.showForm(w, "Contact us", "/contact")
}

// ShowVendorForm handles GET /vendor-application
func (c *PublicController) ShowVendorForm(w http.ResponseWriter, r *http.Request) {
	c.showForm(w, "Vendor application", "/vendor-application")
}

func (c *PublicController) showForm(w http.ResponseWriter, title, action string) {
	renderTemplate(w, http.StatusOK, formTemplate, formPage{
		Title:      title,
		Action:     action,
		RenderedAt: c.now().Unix(),
	})
}

// SubmitContact handles POST /contact
func (c *PublicController) SubmitContact(w http.ResponseWriter, r *http.Request) {
	c.submit(w, r, models.FormTypeContact, "Contact us", "/contact")
}

// SubmitVendorApplication handles POST /vendor-application
func (c *PublicController) SubmitVendorApplication(w http.ResponseWriter, r *http.Request) {
	c.submit(w, r, models.FormTypeVendorApplication, "Vendor application", "/vendor-application")
}

func (c *PublicController) submit(w http.ResponseWriter, r *http.Request, formType models.FormType, title, action string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	sub := &models.Submission{
		FormType:    formType,
		Name:        r.PostFormValue("name"),
		Email:       r.PostFormValue("email"),
		Message:     r.PostFormValue("message"),
		Honeypot:    r.PostFormValue(honeypotField),
		RenderedAt:  parseRenderedAt(r.PostFormValue(renderedField)),
		SubmittedAt: c.now(),
		SourceIP:    middleware.ClientIP(r, c.cfg.TrustedProxy),
		UserAgent:   r.UserAgent(),
	}

	decision, err := c.services.Gateway.GuardPublicSubmission(sub)
	if err != nil {
		// Fail closed: an unrecorded submission is not handed to the
		// business layer.
		c.logger.Error("submission audit failed", zap.Error(err))
		http.Error(w, "We could not process your submission, please try again", http.StatusServiceUnavailable)
		return
	}

	if decision.Blocked {
		renderTemplate(w, http.StatusUnprocessableEntity, formTemplate, formPage{
			Title:      title,
			Action:     action,
			Name:       sub.Name,
			Email:      sub.Email,
			Message:    sub.Message,
			RenderedAt: c.now().Unix(),
			Flash:      &models.FlashMessage{Type: "error", Message: "Your submission could not be accepted"},
		})
		return
	}

	// Allowed and recorded: this is where the business layer takes over
	// (persisting the contact message or vendor application).
	renderTemplate(w, http.StatusOK, thanksTemplate, formPage{Title: title})
}

// parseRenderedAt decodes the hidden timing field; zero means missing or
// mangled, which the classifier treats as a bot signal.
func parseRenderedAt(value string) time.Time {
	unix, err := strconv.ParseInt(value, 10, 64)
	if err != nil || unix <= 0 {
		return time.Time{}
	}
	return time.Unix(unix, 0)
}
