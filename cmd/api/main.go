package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-insights-api/infrastructure/cache"
	"github.com/vfg2006/ads-insights-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-insights-api/infrastructure/integrator/googleads/gadsclient"
	"github.com/vfg2006/ads-insights-api/infrastructure/integrator/googleads/oauth"
	"github.com/vfg2006/ads-insights-api/infrastructure/integrator/summarizer"
	"github.com/vfg2006/ads-insights-api/infrastructure/repository"
	"github.com/vfg2006/ads-insights-api/internal/api"
	"github.com/vfg2006/ads-insights-api/internal/config"
	"github.com/vfg2006/ads-insights-api/internal/scheduler"
	"github.com/vfg2006/ads-insights-api/internal/usecases/aggregating"
	"github.com/vfg2006/ads-insights-api/internal/usecases/reporting"
)

func main() {
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Invalid log level: %s, using 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Log level set to: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	credentialRepo := repository.NewCredentialRepository(pgConn)
	usageRepo := repository.NewUsageRepository(pgConn)

	refresher := oauth.NewRefresher(cfg, credentialRepo)
	adsClient := gadsclient.NewClient(cfg, refresher)

	registry := reporting.NewRegistry()
	executor := reporting.NewExecutor(adsClient, reporting.DefaultRowLimits())

	reportCache, err := cache.NewReportCache(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Error connecting to Redis")
	}
	logrus.Info("Redis connection established successfully")

	summarizerClient := summarizer.NewClient(cfg)

	aggregator := aggregating.NewService(
		cfg,
		registry,
		executor,
		reportCache,
		usageRepo,
		summarizerClient,
	)

	retentionService := scheduler.NewUsageRetentionService(usageRepo, cfg)
	if err := retentionService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Error starting the usage retention scheduler")
	} else {
		logrus.Info("Usage retention scheduler started successfully")
	}

	server, err := api.New(
		cfg,
		registry,
		executor,
		aggregator,
		retentionService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger sets the log format and behavior
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn opens the database connection
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Error connecting to PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Error pinging PostgreSQL")
	}

	logrus.Info("PostgreSQL connection established successfully")
	return conn
}
