package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/tradepost/marketplace-console/repositories"
)

// Options carries the policy knobs the services need from configuration.
type Options struct {
	AdminSubject      string
	AdminPasswordHash string
	SessionLifetime   time.Duration
	MinFillTime       time.Duration
}

// Services holds all service instances
type Services struct {
	Credentials CredentialService
	Sessions    SessionService
	CSRF        CSRFService
	Classifier  ClassifierService
	Gateway     GatewayService
}

// NewServices creates and initializes all service instances
func NewServices(repos *repositories.Repositories, logger *zap.Logger, opts Options) *Services {
	credentials := NewCredentialService(opts.AdminPasswordHash)
	classifier := NewClassifierService(opts.MinFillTime)

	return &Services{
		Credentials: credentials,
		Sessions:    NewSessionService(credentials, opts.AdminSubject, opts.SessionLifetime),
		CSRF:        NewCSRFService(),
		Classifier:  classifier,
		Gateway:     NewGatewayService(classifier, repos.Audit, logger),
	}
}
