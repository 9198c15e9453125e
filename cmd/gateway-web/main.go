// Package main runs the gateway as a plain HTTP server for local
// development. It serves the same /generate endpoint as the Lambda, plus
// Prometheus metrics on /metrics.
//
// Configuration is read from the environment, after loading a .env file
// from the working directory when one exists.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fpang/genai-gateway/internal/chat"
	"github.com/fpang/genai-gateway/internal/gateway"
	"github.com/fpang/genai-gateway/internal/lambdaboot"
	"github.com/fpang/genai-gateway/internal/logging"
	"github.com/fpang/genai-gateway/internal/metrics"
)

// CLI flags
var (
	addrFlag    string
	envFileFlag string
	modelFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "gateway-web",
	Short: "Run the generative-AI gateway as a local HTTP server",
	Long: `gateway-web serves POST /generate exactly like the deployed Lambda,
using GOOGLE_PROJECT_ID and GOOGLE_SERVICE_ACCOUNT_KEY from the environment
or a .env file. Prometheus metrics are exposed on /metrics.

Examples:
  gateway-web
  gateway-web --addr :9090
  gateway-web --env-file ./dev.env --model ` + chat.ModelGemini25Pro,
	RunE: runServe,
}

func init() {
	rootCmd.Flags().StringVar(&addrFlag, "addr", logging.EnvOrDefault("WEB_ADDR", ":8080"), "Listen address")
	rootCmd.Flags().StringVar(&envFileFlag, "env-file", ".env", "Optional .env file to load before reading configuration")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Override the text model (e.g., "+chat.ModelGemini25Pro+")")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(envFileFlag); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	logging.Init()

	cfg := lambdaboot.LoadGatewayConfig()
	if modelFlag != "" {
		cfg.Vertex.Options.TextModel = modelFlag
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cfg.Handler.Observer = metrics.NewPromObserver(reg)

	srv := &http.Server{
		Addr:              addrFlag,
		Handler:           newMux(cfg, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("addr", addrFlag).
			Str("location", cfg.Vertex.Location).
			Str("textModel", cfg.Vertex.Options.TextModel).
			Str("imageModel", cfg.Vertex.Options.ImageModel).
			Str("imageBackend", string(cfg.Vertex.Options.ImageBackend)).
			Msg("Gateway listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newMux(cfg lambdaboot.GatewayConfig, gatherer prometheus.Gatherer) http.Handler {
	m := http.NewServeMux()
	m.Handle("/generate", gzhttp.GzipHandler(gateway.NewHandler(cfg.Handler, lambdaboot.ProviderFactory(cfg.Vertex))))
	m.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	m.Handle("/", gateway.NotFound())
	return m
}
