package services

import (
	"golang.org/x/crypto/bcrypt"
)

// CredentialService verifies the administrator secret against its stored
// bcrypt hash. There is exactly one administrative identity, so the only
// failure mode is "invalid" - callers must not distinguish further.
type CredentialService interface {
	Verify(submittedSecret string) bool
}

type credentialService struct {
	storedHash []byte
}

// NewCredentialService creates a credential verifier around the configured
// bcrypt hash. The raw secret is never stored and never logged.
func NewCredentialService(storedHash string) CredentialService {
	return &credentialService{storedHash: []byte(storedHash)}
}

// Verify reports whether the submitted secret matches the stored hash.
// bcrypt's comparison is constant-time with respect to the secret.
func (s *credentialService) Verify(submittedSecret string) bool {
	return bcrypt.CompareHashAndPassword(s.storedHash, []byte(submittedSecret)) == nil
}
