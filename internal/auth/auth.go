// Package auth resolves the Vertex AI service-account credentials the gateway
// uses to reach the provider, and classifies provider errors for logging.
//
// Credentials are supplied as two configuration values:
//   - GOOGLE_PROJECT_ID: the GCP project identifier
//   - GOOGLE_SERVICE_ACCOUNT_KEY: the service-account key JSON (at least
//     private_key and client_email)
//
// The values are read once at startup into a Config and resolved into
// Credentials on every request, so a misconfigured deployment fails each
// request with a clean error instead of crashing the function.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Environment variables holding the provider credentials.
const (
	EnvProjectID         = "GOOGLE_PROJECT_ID"
	EnvServiceAccountKey = "GOOGLE_SERVICE_ACCOUNT_KEY"
)

// Config is the raw, unvalidated credential configuration.
type Config struct {
	ProjectID         string
	ServiceAccountKey string
}

// ConfigFromEnv reads the credential configuration from the environment.
func ConfigFromEnv() Config {
	return Config{
		ProjectID:         strings.TrimSpace(os.Getenv(EnvProjectID)),
		ServiceAccountKey: strings.TrimSpace(os.Getenv(EnvServiceAccountKey)),
	}
}

// Credentials are the resolved values needed to authenticate to Vertex AI.
type Credentials struct {
	ProjectID   string
	ClientEmail string
	PrivateKey  string
}

// String never includes the private key.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{project=%s, clientEmail=%s}", c.ProjectID, c.ClientEmail)
}

// MarshalZerologObject lets Credentials be logged with .Object() without
// exposing the private key.
func (c Credentials) MarshalZerologObject(e *zerolog.Event) {
	e.Str("projectId", c.ProjectID).Str("clientEmail", c.ClientEmail)
}

// ConfigErrorType distinguishes the two ways configuration can be wrong.
type ConfigErrorType int

const (
	// ErrTypeMissing indicates a credential value is not set.
	ErrTypeMissing ConfigErrorType = iota
	// ErrTypeMalformed indicates the service-account key could not be parsed.
	ErrTypeMalformed
)

// ConfigError reports a server-side credential problem.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// serviceAccountKey mirrors the fields of a GCP service-account key file
// that the gateway needs.
type serviceAccountKey struct {
	PrivateKey  string `json:"private_key"`
	ClientEmail string `json:"client_email"`
}

// Resolve validates cfg and returns the credentials it describes.
// Missing values are reported before the key format is checked.
func Resolve(cfg Config) (Credentials, error) {
	if cfg.ProjectID == "" || cfg.ServiceAccountKey == "" {
		return Credentials{}, &ConfigError{
			Type:    ErrTypeMissing,
			Message: "missing API credentials",
		}
	}

	var key serviceAccountKey
	if err := json.Unmarshal([]byte(cfg.ServiceAccountKey), &key); err != nil {
		return Credentials{}, &ConfigError{
			Type:    ErrTypeMalformed,
			Message: "invalid service account key format",
			Err:     err,
		}
	}
	if key.PrivateKey == "" || key.ClientEmail == "" {
		return Credentials{}, &ConfigError{
			Type:    ErrTypeMalformed,
			Message: "invalid service account key format",
			Err:     fmt.Errorf("private_key and client_email are required"),
		}
	}

	return Credentials{
		ProjectID:   cfg.ProjectID,
		ClientEmail: key.ClientEmail,
		PrivateKey:  key.PrivateKey,
	}, nil
}
