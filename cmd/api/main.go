package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/Ramsey-B/poppy/config"
	recordrepo "github.com/Ramsey-B/poppy/internal/repositories/record"
	reportrepo "github.com/Ramsey-B/poppy/internal/repositories/report"
	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/events"
	"github.com/Ramsey-B/poppy/pkg/kafka"
	poppymw "github.com/Ramsey-B/poppy/pkg/middleware"
	"github.com/Ramsey-B/poppy/pkg/routes/health"
	recordroutes "github.com/Ramsey-B/poppy/pkg/routes/record"
	reportroutes "github.com/Ramsey-B/poppy/pkg/routes/report"
	"github.com/Ramsey-B/poppy/pkg/tracing"
	"github.com/Ramsey-B/poppy/pkg/tracing/exporters"
)

const version = "0.1.0"

const welcomeMessage = "Welcome to Blood Donation Management System API"

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)

	ctx := context.Background()

	shutdownTracing, err := initTracing(ctx, cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
		os.Exit(1)
	}
	defer shutdownTracing(ctx)

	db, err := database.Connect(ctx, database.ConnectConfig{
		URL:             cfg.DatabaseURL,
		TLSInsecure:     cfg.DatabaseTLSInsecure,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("Database connection error")
		os.Exit(1)
	}
	defer db.Close()

	var producer *kafka.Producer
	if cfg.KafkaEventsEnabled {
		kafkaCfg := kafka.DefaultProducerConfig()
		kafkaCfg.Brokers = cfg.KafkaBrokers
		kafkaCfg.Topic = cfg.KafkaOutputTopic
		kafkaCfg.BatchSize = cfg.KafkaBatchSize
		kafkaCfg.BatchTimeout = time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond
		kafkaCfg.RequiredAcks = cfg.KafkaRequiredAcks
		kafkaCfg.Compression = cfg.KafkaCompression

		producer, err = kafka.NewProducer(kafkaCfg, logger)
		if err != nil {
			logger.WithError(err).Error("Failed to create Kafka producer")
			os.Exit(1)
		}
		defer producer.Close()
	}
	emitter := events.NewEmitter(producer, logger)

	records := recordrepo.NewRepository(db, logger)
	reports := reportrepo.NewRepository(db, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = poppymw.Error(logger)

	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(poppymw.Context())
	e.Use(poppymw.Logger(logger))
	e.Use(echomw.Recover())
	e.Use(otelecho.Middleware(cfg.AppName))

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, welcomeMessage)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	recordroutes.NewHandler(records, emitter, logger).RegisterRoutes(e)
	reportroutes.NewHandler(records, reports, logger).RegisterRoutes(e)

	checker := health.NewChecker(db, version)
	checker.RegisterRoutes(e)
	checker.SetReady(true)

	// Static SPA is a fallback: JSON routes win, everything else is a
	// file lookup.
	e.Static("/", cfg.StaticDir)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		ReadTimeout:       time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		logger.WithField("port", cfg.Port).Infof("Server running on http://localhost:%d", cfg.Port)
		if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server stopped unexpectedly")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to shut down cleanly")
	}
}

func newLogger(cfg config.Config) ectologger.Logger {
	var zl *zap.Logger
	if cfg.PrettyLogs {
		zl, _ = zap.NewDevelopment()
	} else {
		zapCfg := zap.NewProductionConfig()
		if lvl, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
			zapCfg.Level = lvl
		}
		zl, _ = zapCfg.Build()
	}
	return zapadapter.NewZapEctoLogger(zl, nil)
}

func initTracing(ctx context.Context, cfg config.Config) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter
	switch cfg.TracingExporter {
	case "otlp":
		otlpCfg := exporters.DefaultOTLPConfig()
		otlpCfg.Endpoint = cfg.TracingOTLPEndpoint
		otlpCfg.Protocol = cfg.TracingOTLPProtocol
		exp, err := exporters.NewOTLPExporter(ctx, otlpCfg)
		if err != nil {
			return nil, err
		}
		exporter = exp
	default:
		exporter = &exporters.ConsoleExporter{}
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	tracing.SetTracer(tp.Tracer(cfg.AppName))

	return tp.Shutdown, nil
}
