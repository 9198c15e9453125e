// Package lambdaboot provides the gateway's cold-start bootstrap: reading
// configuration from the environment, optionally pulling the service
// account key from SSM Parameter Store, and startup logging.
package lambdaboot

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/genai-gateway/internal/auth"
	"github.com/fpang/genai-gateway/internal/chat"
	"github.com/fpang/genai-gateway/internal/gateway"
	"github.com/fpang/genai-gateway/internal/logging"
)

// EnvSSMServiceAccountKeyParam names the SSM parameter holding the service
// account key when GOOGLE_SERVICE_ACCOUNT_KEY is not set directly.
const EnvSSMServiceAccountKeyParam = "SSM_SERVICE_ACCOUNT_KEY_PARAM"

// DefaultMetricsNamespace is the CloudWatch namespace for gateway metrics.
const DefaultMetricsNamespace = "GenAIGateway"

// GatewayConfig is the full process configuration.
type GatewayConfig struct {
	Handler          gateway.Config
	Vertex           chat.VertexConfig
	MetricsNamespace string
}

// LoadGatewayConfig reads every gateway setting from the environment.
// Credentials are read but not validated; the handler does that per request.
func LoadGatewayConfig() GatewayConfig {
	return GatewayConfig{
		Handler: gateway.Config{
			Credentials:     auth.ConfigFromEnv(),
			ProviderTimeout: time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", int(gateway.DefaultProviderTimeout/time.Second))) * time.Second,
			MaxBodyBytes:    int64(getEnvInt("MAX_BODY_BYTES", gateway.DefaultMaxBodyBytes)),
		},
		Vertex: chat.VertexConfig{
			Location: logging.EnvOrDefault("GOOGLE_LOCATION", chat.DefaultRegion),
			Options: chat.Options{
				TextModel:       logging.EnvOrDefault("GEMINI_TEXT_MODEL", chat.DefaultTextModel),
				ImageModel:      logging.EnvOrDefault("GEMINI_IMAGE_MODEL", chat.DefaultImageModel),
				ImagenModel:     logging.EnvOrDefault("IMAGEN_MODEL", chat.DefaultImagenModel),
				ImageBackend:    chat.ParseImageBackend(os.Getenv("IMAGE_BACKEND")),
				ImageModalities: splitList(logging.EnvOrDefault("IMAGE_RESPONSE_MODALITIES", "IMAGE")),
			},
		},
		MetricsNamespace: logging.EnvOrDefault("METRICS_NAMESPACE", DefaultMetricsNamespace),
	}
}

// ProviderFactory returns the gateway factory that dials Vertex AI with each
// request's resolved credentials.
func ProviderFactory(cfg chat.VertexConfig) gateway.ProviderFactory {
	return func(ctx context.Context, creds auth.Credentials) (gateway.Provider, error) {
		client, err := chat.DialVertex(ctx, creds, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// ParameterGetter is the subset of the SSM client used at cold start.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// NewSSMClient loads the default AWS config and returns an SSM client.
func NewSSMClient(ctx context.Context) (*ssm.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return ssm.NewFromConfig(cfg), nil
}

// LoadServiceAccountKey fills cfg.ServiceAccountKey from the SSM parameter
// paramName when it is not already set. Failures are logged and leave cfg
// unchanged, so requests fail with the missing-credentials error rather
// than the function failing to start.
func LoadServiceAccountKey(ctx context.Context, client ParameterGetter, paramName string, cfg *auth.Config) {
	if cfg.ServiceAccountKey != "" || paramName == "" {
		return
	}

	start := time.Now()
	result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		log.Warn().Err(err).Str("param", paramName).Msg("Failed to read service account key from SSM")
		return
	}
	if result.Parameter == nil || result.Parameter.Value == nil {
		log.Warn().Str("param", paramName).Msg("SSM parameter has no value")
		return
	}

	cfg.ServiceAccountKey = strings.TrimSpace(*result.Parameter.Value)
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(start)).Msg("Service account key loaded from SSM")
}

// StartupLog is a convenience wrapper for the startup logger.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		log.Warn().Str("envVar", key).Str("value", value).Int("default", fallback).Msg("Invalid integer setting, using default")
		return fallback
	}
	return parsed
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, strings.ToUpper(item))
		}
	}
	return out
}
