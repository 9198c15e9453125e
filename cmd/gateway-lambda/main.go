// Package main provides the Lambda entry point for the generative-AI gateway.
//
// The function sits behind a Lambda Function URL (or API Gateway HTTP API)
// and serves a single route:
//   - OPTIONS /generate: CORS pre-flight
//   - POST /generate:    generateText, generateImage, or describeImage
//
// Any other path answers 404 with the JSON error envelope.
//
// Vertex AI credentials come from GOOGLE_PROJECT_ID and
// GOOGLE_SERVICE_ACCOUNT_KEY. When the key is not set directly and
// SSM_SERVICE_ACCOUNT_KEY_PARAM names a SecureString parameter, it is read
// from SSM Parameter Store at cold start.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog/log"

	"github.com/fpang/genai-gateway/internal/chat"
	"github.com/fpang/genai-gateway/internal/gateway"
	"github.com/fpang/genai-gateway/internal/lambdaboot"
	"github.com/fpang/genai-gateway/internal/logging"
	"github.com/fpang/genai-gateway/internal/metrics"
)

// Set at build time via -ldflags.
var (
	commitHash string
	buildTime  string
)

var mux http.Handler

func init() {
	initStart := time.Now()
	logging.Init()

	cfg := lambdaboot.LoadGatewayConfig()

	ssmParam := os.Getenv(lambdaboot.EnvSSMServiceAccountKeyParam)
	if cfg.Handler.Credentials.ServiceAccountKey == "" && ssmParam != "" {
		ssmClient, err := lambdaboot.NewSSMClient(context.Background())
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load AWS config; service account key unavailable")
		} else {
			lambdaboot.LoadServiceAccountKey(context.Background(), ssmClient, ssmParam, &cfg.Handler.Credentials)
		}
	}

	cfg.Handler.Observer = metrics.NewEMFObserver(cfg.MetricsNamespace)
	mux = newMux(cfg)

	startup := lambdaboot.StartupLog("gateway-lambda", initStart).
		CommitHash(commitHash).
		BuildTime(buildTime).
		Feature("credentials", cfg.Handler.Credentials.ProjectID != "" && cfg.Handler.Credentials.ServiceAccountKey != "").
		Feature("imagen", cfg.Vertex.Options.ImageBackend == chat.ImageBackendImagen).
		Config("location", cfg.Vertex.Location).
		Config("textModel", cfg.Vertex.Options.TextModel).
		Config("imageModel", cfg.Vertex.Options.ImageModel).
		Config("providerTimeout", cfg.Handler.ProviderTimeout.String())
	if ssmParam != "" {
		startup.SSMParam("serviceAccountKey", ssmParam)
	}
	startup.Log()
}

// newMux wires the gateway handler, backed by Vertex AI, under /generate.
// Every other path gets a JSON 404.
func newMux(cfg lambdaboot.GatewayConfig) http.Handler {
	m := http.NewServeMux()
	m.Handle("/generate", gzhttp.GzipHandler(gateway.NewHandler(cfg.Handler, lambdaboot.ProviderFactory(cfg.Vertex))))
	m.Handle("/", gateway.NotFound())
	return m
}

func main() {
	adapter := httpadapter.NewV2(mux)
	lambda.Start(adapter.ProxyWithContext)
}
