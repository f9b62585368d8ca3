package auth

import "golang.org/x/crypto/bcrypt"

// APIKeyVerifier defines the interface for checking a presented API key
// against stored credentials.
type APIKeyVerifier interface {
	// Verify compares the presented key against the stored hash.
	// Returns nil on match, ErrInvalidAPIKey on mismatch.
	Verify(presentedKey string) error
}

// BcryptAPIKeyVerifier implements APIKeyVerifier against a single
// bcrypt-hashed key from configuration.
type BcryptAPIKeyVerifier struct {
	keyHash string
}

// NewBcryptAPIKeyVerifier creates a verifier for the given bcrypt hash.
func NewBcryptAPIKeyVerifier(keyHash string) *BcryptAPIKeyVerifier {
	return &BcryptAPIKeyVerifier{keyHash: keyHash}
}

// Verify implements the APIKeyVerifier interface using bcrypt.
func (v *BcryptAPIKeyVerifier) Verify(presentedKey string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(v.keyHash), []byte(presentedKey)); err != nil {
		return ErrInvalidAPIKey
	}
	return nil
}

// HashAPIKey produces a bcrypt hash suitable for the api_key_hash
// configuration value. Exposed for provisioning tooling and tests.
func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
