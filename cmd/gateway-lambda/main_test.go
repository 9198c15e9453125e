package main

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	"github.com/fpang/genai-gateway/internal/auth"
	"github.com/fpang/genai-gateway/internal/lambdaboot"
)

func proxy(t *testing.T, cfg lambdaboot.GatewayConfig, method, body string) events.APIGatewayV2HTTPResponse {
	t.Helper()
	return proxyPath(t, cfg, "/generate", method, body)
}

func proxyPath(t *testing.T, cfg lambdaboot.GatewayConfig, path, method, body string) events.APIGatewayV2HTTPResponse {
	t.Helper()
	adapter := httpadapter.NewV2(newMux(cfg))
	resp, err := adapter.ProxyWithContext(context.Background(), events.APIGatewayV2HTTPRequest{
		RawPath: path,
		Headers: map[string]string{"content-type": "application/json"},
		Body:    body,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method: method,
				Path:   "/generate",
			},
		},
	})
	if err != nil {
		t.Fatalf("proxy failed: %v", err)
	}
	return resp
}

func TestLambda_PreFlight(t *testing.T) {
	resp := proxy(t, lambdaboot.GatewayConfig{}, http.MethodOptions, "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Headers["Access-Control-Allow-Origin"] != "*" {
		t.Errorf("expected CORS header, got %v", resp.Headers)
	}
}

func TestLambda_MissingCredentials(t *testing.T) {
	resp := proxy(t, lambdaboot.GatewayConfig{}, http.MethodPost,
		`{"step":"generateText","payload":{"systemPrompt":"S","userQuery":"Q"}}`)

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("invalid body %q: %v", resp.Body, err)
	}
	if body["error"] != "Server configuration error. Missing API credentials." {
		t.Errorf("unexpected error %q", body["error"])
	}
}

func TestLambda_InvalidStep(t *testing.T) {
	cfg := lambdaboot.GatewayConfig{}
	cfg.Handler.Credentials = auth.Config{
		ProjectID:         "test-project",
		ServiceAccountKey: `{"private_key":"k","client_email":"gateway@test-project.iam.gserviceaccount.com"}`,
	}
	resp := proxy(t, cfg, http.MethodPost, `{"step":"bogus"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d (%s)", resp.StatusCode, resp.Body)
	}
}

func TestLambda_UnknownPath(t *testing.T) {
	for _, path := range []string{"/", "/favicon.ico"} {
		resp := proxyPath(t, lambdaboot.GatewayConfig{}, path, http.MethodGet, "")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, resp.StatusCode)
		}
		if resp.Headers["Access-Control-Allow-Origin"] != "*" {
			t.Errorf("%s: expected CORS header, got %v", path, resp.Headers)
		}
		var body map[string]string
		if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
			t.Fatalf("%s: invalid body %q: %v", path, resp.Body, err)
		}
		if body["error"] != "Not Found" {
			t.Errorf("%s: unexpected error %q", path, body["error"])
		}
	}
}
