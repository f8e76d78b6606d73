// apibridge authenticates against a remote HTTP service, reads its OpenAPI
// document, and exposes every discovered operation as an MCP tool over
// stdio.
//
// Usage:
//
//	apibridge serve                       # start the bridge
//	apibridge serve --config config.yaml  # with a config file
//	apibridge version                     # show version information
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/apibridge/auth"
	"github.com/BaSui01/apibridge/bridge"
	"github.com/BaSui01/apibridge/config"
	"github.com/BaSui01/apibridge/internal/metrics"
	"github.com/BaSui01/apibridge/openapi"
	"github.com/BaSui01/apibridge/server"
	"github.com/BaSui01/apibridge/transport"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	args := os.Args[1:]
	command := "serve"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	switch command {
	case "serve":
		runServe(args)
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("starting apibridge",
		zap.String("version", Version),
		zap.String("base_url", cfg.API.BaseURL),
		zap.Bool("verify_ssl", cfg.API.VerifySSL),
	)

	ctx := context.Background()

	// Startup phase: every failure here is fatal per the error taxonomy.
	token, err := auth.NewClient(auth.Config{
		BaseURL:   cfg.API.BaseURL,
		LoginPath: cfg.API.LoginPath,
		Username:  cfg.API.Username,
		Password:  cfg.API.Password,
		VerifySSL: cfg.API.VerifySSL,
		Timeout:   cfg.API.Timeout,
	}, logger).Login(ctx)
	if err != nil {
		logger.Fatal("authentication failed", zap.Error(err))
	}

	client, err := transport.NewClient(transport.Config{
		BaseURL:   cfg.API.BaseURL,
		Token:     token.AccessToken,
		VerifySSL: cfg.API.VerifySSL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
	}, logger)
	if err != nil {
		logger.Fatal("failed to initialize API client", zap.Error(err))
	}

	doc, err := openapi.NewLoader(client, cfg.API.SpecPath, logger).Load(ctx)
	if err != nil {
		logger.Fatal("failed to fetch OpenAPI spec", zap.Error(err))
	}

	collector := metrics.NewCollector("apibridge", logger)
	br := bridge.New(client, logger, bridge.WithMetrics(collector))
	br.SetDocument(doc)

	srv, err := server.New(cfg.Server.Name, versionString(cfg), br, logger)
	if err != nil {
		logger.Fatal("failed to build MCP server", zap.Error(err))
	}

	var metricsSrv *http.Server
	if cfg.Server.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: cfg.Server.MetricsAddr, Handler: mux}
	}

	if err := serveGroup(ctx, srv.ServeStdio, metricsSrv, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}

	logger.Info("apibridge stopped")
}

// serveGroup runs the MCP stdio loop alongside the optional metrics
// listener. The two are tied in both directions: a closed MCP stream
// cancels the group so the metrics server shuts down, and a metrics
// failure cancels the stdio loop through its context. Without the explicit
// cancel a clean (nil) stdio return would leave the group waiting on the
// listener forever.
func serveGroup(ctx context.Context, serveStdio func(context.Context) error, metricsSrv *http.Server, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if metricsSrv != nil {
		g.Go(func() error {
			logger.Info("metrics listener started", zap.String("addr", metricsSrv.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer cancel()
		defer logger.Info("MCP stream closed")
		if err := serveStdio(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	return g.Wait()
}

func versionString(cfg *config.Config) string {
	if cfg.Server.Version != "" && cfg.Server.Version != "dev" {
		return cfg.Server.Version
	}
	return Version
}

func printVersion() {
	fmt.Printf("apibridge %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`apibridge - OpenAPI to MCP bridge

Usage:
  apibridge <command> [options]

Commands:
  serve     Start the bridge (default)
  version   Show version information
  help      Show this help message

Options for 'serve':
  --config <path>   Path to configuration file (YAML)

Environment:
  APIBRIDGE_API_BASE_URL    Remote API base URL
  APIBRIDGE_API_USERNAME    Login username
  APIBRIDGE_API_PASSWORD    Login password
  APIBRIDGE_API_VERIFY_SSL  Verify the remote TLS certificate (true/false)
  APIBRIDGE_METRICS_ADDR    Prometheus listen address (optional)`)
}

// initLogger builds the process logger. Everything goes to stderr: stdout
// carries the MCP stream.
func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapConfig.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
