package google

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// ServiceAccountKey holds the credential identity of a Google service account.
// It is loaded from the JSON key file issued by the Google Cloud console and
// must never be logged or persisted by this service.
type ServiceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`

	// TokenURI is the token endpoint from the key file. Empty means the
	// standard Google endpoint.
	TokenURI string `json:"token_uri,omitempty"`
}

// ParseKey parses a service-account key from its JSON representation.
func ParseKey(data []byte) (*ServiceAccountKey, error) {
	var key ServiceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("failed to parse service account key: %w", err)
	}
	if err := key.validate(); err != nil {
		return nil, err
	}
	return &key, nil
}

// LoadKey reads and parses a service-account key file.
func LoadKey(path string) (*ServiceAccountKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account key file: %w", err)
	}
	return ParseKey(data)
}

func (k *ServiceAccountKey) validate() error {
	if k.ClientEmail == "" {
		return fmt.Errorf("service account key is missing client_email")
	}
	if k.PrivateKey == "" {
		return fmt.Errorf("service account key is missing private_key")
	}
	return nil
}

// rsaKey parses the PEM-encoded private key for RS256 signing.
func (k *ServiceAccountKey) rsaKey() (*rsa.PrivateKey, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(k.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account private key: %w", err)
	}
	return key, nil
}
