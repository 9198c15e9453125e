package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"cloud.google.com/go/auth/credentials"
	"google.golang.org/genai"

	"github.com/fpang/genai-gateway/internal/auth"
)

const (
	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
	googleTokenURI     = "https://oauth2.googleapis.com/token"
)

// VertexConfig describes how to reach Vertex AI.
type VertexConfig struct {
	// Location is the Vertex region. Defaults to DefaultRegion.
	Location string
	// HTTPClient is optional; genai uses its own default when nil.
	HTTPClient *http.Client
	Options    Options
}

// serviceAccountFile is the minimal key file accepted by the Google auth
// library for a service account.
type serviceAccountFile struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// DialVertex builds a Client authenticated as the given service account.
// The private key is parsed lazily by the auth library, so a bad key shows
// up as an error from the first provider call.
func DialVertex(ctx context.Context, creds auth.Credentials, cfg VertexConfig) (*Client, error) {
	location := cfg.Location
	if location == "" {
		location = DefaultRegion
	}

	keyJSON, err := json.Marshal(serviceAccountFile{
		Type:        "service_account",
		ProjectID:   creds.ProjectID,
		ClientEmail: creds.ClientEmail,
		PrivateKey:  creds.PrivateKey,
		TokenURI:    googleTokenURI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode service account: %w", err)
	}

	gcpCreds, err := credentials.NewCredentialsFromJSON(credentials.ServiceAccount, keyJSON, &credentials.DetectOptions{
		Scopes: []string{cloudPlatformScope},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load service account credentials: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:     genai.BackendVertexAI,
		Project:     creds.ProjectID,
		Location:    location,
		Credentials: gcpCreds,
		HTTPClient:  cfg.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	return NewClient(client, cfg.Options), nil
}
