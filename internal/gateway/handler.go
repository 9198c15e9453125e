// Package gateway implements the public generate endpoint: it validates a
// {step, payload} request, resolves the service-account credentials, calls
// the AI provider for the selected step, and answers with one JSON envelope.
//
// Request flow:
//
//	OPTIONS            -> 200, empty body
//	not POST           -> 405 {"error":"Method Not Allowed"}
//	credentials bad    -> 500 {"error":"Server configuration error. ..."}
//	step unknown       -> 400 {"error":"Invalid step provided"}
//	provider failure   -> 500 {"error":"API Error: <message>"}
//	success            -> 200 {"text":...} or {"base64Image":...}
//
// Every response, including rejections, carries permissive CORS headers.
package gateway

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fpang/genai-gateway/internal/auth"
	"github.com/fpang/genai-gateway/internal/chat"
	"github.com/fpang/genai-gateway/internal/metrics"
)

// DefaultMaxBodyBytes caps the request body (10 MB), enough for a
// base64-encoded screenshot.
const DefaultMaxBodyBytes = 10 << 20

// DefaultProviderTimeout bounds a single provider call.
const DefaultProviderTimeout = 60 * time.Second

// Provider performs the three generative operations.
type Provider interface {
	GenerateText(ctx context.Context, systemPrompt, userQuery string) (string, error)
	GenerateImage(ctx context.Context, prompt string) (*chat.Image, error)
	DescribeImage(ctx context.Context, systemPrompt string, image []byte, mimeType string) (string, error)
}

// ProviderFactory builds a Provider for one request's credentials.
type ProviderFactory func(ctx context.Context, creds auth.Credentials) (Provider, error)

// Config is everything the handler needs, injected at startup.
type Config struct {
	Credentials     auth.Config
	ProviderTimeout time.Duration
	MaxBodyBytes    int64
	Observer        metrics.Observer
}

// Handler serves the generate endpoint.
type Handler struct {
	cfg     Config
	factory ProviderFactory
}

// NewHandler creates a Handler. Zero timeouts and body limits take defaults;
// a nil Observer discards metrics.
func NewHandler(cfg Config, factory ProviderFactory) *Handler {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = DefaultProviderTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Observer == nil {
		cfg.Observer = metrics.Nop{}
	}
	return &Handler{cfg: cfg, factory: factory}
}

// outcome is the single response of one invocation.
type outcome struct {
	step   string
	status int
	body   any
	err    *Error
}

// ServeHTTP handles one invocation.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.NewString()

	setCORSHeaders(w.Header())
	w.Header().Set("X-Request-Id", requestID)

	logger := log.With().Str("request_id", requestID).Logger()
	ctx := logger.WithContext(r.Context())

	var out outcome
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		logger.Debug().Msg("Pre-flight request")
		return
	case http.MethodPost:
		out = h.handlePost(ctx, w, r)
	default:
		out = outcome{step: "none", err: errMethodNotAllowed}
	}

	errorType := ""
	if out.err != nil {
		out.status = out.err.Kind.Status()
		out.body = ErrorEnvelope{Error: out.err.Message}
		errorType = out.err.Kind.String()
		logFailure(&logger, r, out)
	}

	writeJSON(w, out.status, out.body)

	duration := time.Since(start)
	logger.Info().
		Str("method", r.Method).
		Str("step", out.step).
		Int("status", out.status).
		Dur("duration", duration).
		Msg("Request complete")

	h.cfg.Observer.ObserveRequest(metrics.RequestStats{
		RequestID: requestID,
		Step:      out.step,
		Status:    out.status,
		ErrorType: errorType,
		Duration:  duration,
	})
}

func (h *Handler) handlePost(ctx context.Context, w http.ResponseWriter, r *http.Request) outcome {
	creds, err := auth.Resolve(h.cfg.Credentials)
	if err != nil {
		return outcome{step: "none", err: configurationError(err)}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes))
	if err != nil {
		return outcome{step: "none", err: &Error{Kind: KindInvalidBody, Message: msgInvalidBody, Err: err}}
	}

	req, gwErr := DecodeRequest(body)
	if gwErr != nil {
		step := "invalid"
		if gwErr.Kind == KindInvalidPayload {
			step = string(stepOf(body))
		}
		return outcome{step: step, err: gwErr}
	}

	step := string(req.Step())
	result, gwErr := h.dispatch(ctx, creds, req)
	if gwErr != nil {
		return outcome{step: step, err: gwErr}
	}
	return outcome{step: step, status: http.StatusOK, body: result}
}

// dispatch runs the provider operation for req. Panics from the provider are
// converted into provider call errors so the platform never sees them.
func (h *Handler) dispatch(ctx context.Context, creds auth.Credentials, req Request) (result any, gwErr *Error) {
	defer func() {
		if p := recover(); p != nil {
			result = nil
			gwErr = providerError(fmt.Errorf("%v", p))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, h.cfg.ProviderTimeout)
	defer cancel()

	provider, err := h.factory(ctx, creds)
	if err != nil {
		return nil, providerError(err)
	}

	switch req := req.(type) {
	case GenerateTextRequest:
		text, err := provider.GenerateText(ctx, req.SystemPrompt, req.UserQuery)
		if err != nil {
			return nil, providerError(err)
		}
		return TextResult{Text: text}, nil

	case GenerateImageRequest:
		img, err := provider.GenerateImage(ctx, req.Prompt)
		if err != nil {
			return nil, providerError(err)
		}
		if img == nil || len(img.Data) == 0 {
			return nil, providerError(chat.ErrNoImage)
		}
		return ImageResult{Base64Image: base64.StdEncoding.EncodeToString(img.Data)}, nil

	case DescribeImageRequest:
		text, err := provider.DescribeImage(ctx, req.SystemPrompt, req.Image, describeImageMIMEType)
		if err != nil {
			return nil, providerError(err)
		}
		return TextResult{Text: text}, nil

	default:
		return nil, &Error{Kind: KindInvalidStep, Message: msgInvalidStep}
	}
}

func configurationError(err error) *Error {
	var cfgErr *auth.ConfigError
	if errors.As(err, &cfgErr) && cfgErr.Type == auth.ErrTypeMalformed {
		return &Error{Kind: KindConfiguration, Message: msgInvalidKeyFormat, Err: err}
	}
	return &Error{Kind: KindConfiguration, Message: msgMissingCredentials, Err: err}
}

func logFailure(logger *zerolog.Logger, r *http.Request, out outcome) {
	switch out.err.Kind {
	case KindConfiguration:
		logger.Error().Err(out.err.Err).Msg("Server configuration error")
	case KindProviderCall:
		logger.Error().
			Err(out.err.Err).
			Str("step", out.step).
			Str("error_type", auth.ClassifyProviderError(out.err.Err).String()).
			Msg("Provider call failed")
	case KindProviderResponse:
		logger.Error().Err(out.err.Err).Str("step", out.step).Msg("Provider response missing content")
	default:
		logger.Warn().
			Str("method", r.Method).
			Str("kind", out.err.Kind.String()).
			Str("error", out.err.Error()).
			Msg("Request rejected")
	}
}
