// Package main is the entry point of the case-notification service.
//
// It loads the configuration, builds the registry clients, the query adapter,
// the notify dispatch service and the telemetry reporter, wires them into the
// event pipeline and serves the HTTP endpoints through the core chassis.
//
// In local and container deployments it runs a standard HTTP server on the
// configured port. Inside AWS Lambda it serves API Gateway proxy events with
// the same router.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/google/uuid"

	"casenotify/internal/api/handlers"
	"casenotify/internal/config"
	"casenotify/internal/core"
	"casenotify/internal/external"
	"casenotify/internal/metrics"
	"casenotify/internal/notify"
	"casenotify/internal/pipeline"
	"casenotify/internal/querying"
	"casenotify/internal/scenario"
	"casenotify/internal/telemetry"
	"casenotify/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("casenotify starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	ctx := context.Background()

	var recorder *metrics.CloudWatchRecorder
	if cfg.Observability.EnableMetrics {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Observability.AWSRegion))
		if err != nil {
			return fmt.Errorf("loading AWS configuration: %w", err)
		}
		recorder = metrics.NewCloudWatchRecorder(
			cloudwatch.NewFromConfig(awsCfg),
			cfg.Observability.MetricNamespace,
			types.NewSlogLogger(logger),
		)
	}

	srv, err := buildServer(cfg, logger, recorder)
	if err != nil {
		return err
	}

	if isLambdaEnvironment() {
		return runLambda(srv, logger)
	}
	return runHTTPServer(srv, cfg, logger)
}

// buildServer wires every component and mounts the routes. A nil recorder
// disables metrics.
func buildServer(cfg *config.Config, logger *slog.Logger, recorder *metrics.CloudWatchRecorder, opts ...external.RegistryOption) (*core.Server, error) {
	reg, err := external.NewClientRegistry(cfg, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating registry clients: %w", err)
	}

	adapter, err := querying.New(cfg, reg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating query adapter: %w", err)
	}

	notifier := notify.NewService(reg.Notify, cfg.Notify.DefaultCountryCode, logger)
	deps, err := scenarioDeps(cfg, adapter, notifier, logger)
	if err != nil {
		return nil, err
	}

	procOpts := []pipeline.Option{}
	if recorder != nil {
		procOpts = append(procOpts, pipeline.WithMetrics(recorder))
	}
	processor := pipeline.NewProcessor(deps, logger, procOpts...)

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}
	if recorder != nil {
		srv.Metrics = recorder
	}

	for _, name := range adapter.Dependencies() {
		srv.HealthProbes = append(srv.HealthProbes, core.ProbeFunc{
			Label: strings.ToLower(name),
			Fn:    func(ctx context.Context) error { return adapter.Check(ctx, name) },
		})
	}

	eventsHandler := handlers.NewEventsHandler(processor, adapter, cfg.Build, logger)

	// The preview endpoint renders arbitrary templates and is only exposed
	// outside production.
	var previewer handlers.TemplatePreviewer
	if cfg.IsTestMode || cfg.Environment != "prod" {
		previewer = notifier
	}
	notifyHandler := handlers.NewNotifyHandler(processor, previewer, core.NewValidator(logger), logger)

	srv.Registrars = append(srv.Registrars, eventsHandler.RegisterRoutes, notifyHandler.RegisterRoutes)
	srv.MountRoutes()
	return srv, nil
}

// scenarioDeps builds the collaborators shared by every scenario.
func scenarioDeps(cfg *config.Config, adapter *querying.Adapter, notifier *notify.Service, logger *slog.Logger) (*scenario.Deps, error) {
	templates, err := cfg.Notify.TemplateSet()
	if err != nil {
		return nil, err
	}

	taskType, err := uuid.Parse(cfg.Objecten.TaskTypeID)
	if err != nil {
		return nil, fmt.Errorf("parsing task object type: %w", err)
	}
	messageType, err := uuid.Parse(cfg.Objecten.MessageTypeID)
	if err != nil {
		return nil, fmt.Errorf("parsing message object type: %w", err)
	}

	return &scenario.Deps{
		Data:      adapter,
		Notify:    notifier,
		Reporter:  telemetry.NewReporter(adapter.Feedback, types.SystemClock{}, logger),
		Whitelist: cfg.Whitelist,
		Templates: templates,
		Objects:   scenario.ObjectTypes{Task: taskType, Message: messageType},
		Logger:    logger,
	}, nil
}

// isLambdaEnvironment returns true if the process is running inside AWS Lambda.
func isLambdaEnvironment() bool {
	_, hasRuntimeAPI := os.LookupEnv("AWS_LAMBDA_RUNTIME_API")
	_, hasServerPort := os.LookupEnv("_LAMBDA_SERVER_PORT")
	return hasRuntimeAPI || hasServerPort
}

// runLambda serves API Gateway proxy events with the server's router.
// lambda.Start blocks for the lifetime of the execution environment.
func runLambda(srv *core.Server, logger *slog.Logger) error {
	logger.Info("starting in Lambda mode")
	lambda.Start(newLambdaHandler(srv))
	return nil
}

// newLambdaHandler adapts the server's router to API Gateway proxy events.
func newLambdaHandler(srv *core.Server) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return chiadapter.New(srv.Router()).ProxyWithContext
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a JSON slog.Logger for the given level name.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
