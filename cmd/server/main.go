package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/labextract-server/internal/api"
	"github.com/labextract-server/internal/cache"
	"github.com/labextract-server/internal/config"
	"github.com/labextract-server/internal/database"
	"github.com/labextract-server/internal/extraction"
	"github.com/labextract-server/internal/logging"
	"github.com/labextract-server/internal/metrics"
	"github.com/labextract-server/internal/repository"
	"github.com/labextract-server/internal/service"
	"github.com/labextract-server/internal/store"
	"github.com/labextract-server/internal/textract"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	var opts []config.Option
	if *configPath != "" {
		opts = append(opts, config.WithConfigFile(*configPath))
	}
	configManager, err := config.NewManager(opts...)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := logging.NewLogger(cfg.Logging)
	if cfg.Logging.Level == "debug" && !configManager.IsProduction() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.WithFields(logrus.Fields{
		"host":        cfg.Server.Host,
		"port":        cfg.Server.Port,
		"environment": cfg.Environment,
	}).Info("Starting lab report extraction server")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, configManager, logger); err != nil {
		logger.WithError(err).Error("Server failed")
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func run(ctx context.Context, configManager *config.Manager, logger *logrus.Logger) error {
	cfg := configManager.GetConfig()

	engine, err := extraction.NewEngine(configManager.GetExtractionConfig(), extraction.WithLogger(logger))
	if err != nil {
		return err
	}

	m := metrics.New(true)
	reportOpts := []service.Option{service.WithLogger(logger), service.WithMetrics(m)}
	var serverOpts []api.Option

	entities, err := store.Open(cfg.Store, configManager.GetStorePostgresURL())
	if err != nil {
		return err
	}
	if entities != nil {
		defer entities.Close()
		reportOpts = append(reportOpts, service.WithStore(entities))
		serverOpts = append(serverOpts, api.WithHealthCheck("store", entities.Ping))
	}

	if cfg.Database.Enabled {
		dbCfg := database.ConfigFrom(cfg.Database)
		runner, err := database.NewMigrationRunner(dbCfg.URL(), cfg.Database.MigrationsPath, logger)
		if err != nil {
			return err
		}
		err = runner.Up(ctx)
		runner.Close()
		if err != nil {
			return err
		}

		db, err := database.NewConnection(ctx, dbCfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		reportOpts = append(reportOpts, service.WithRunRecorder(repository.NewRunRepository(db.Pool, logger)))
		serverOpts = append(serverOpts, api.WithHealthCheck("database", db.Health))
	}

	if cfg.Cache.Enabled {
		results, err := cache.New(ctx, cfg.Cache, logger)
		if err != nil {
			return err
		}
		defer results.Close()
		reportOpts = append(reportOpts, service.WithCache(results))
		if cfg.Cache.RedisURL != "" {
			serverOpts = append(serverOpts, api.WithHealthCheck("cache", results.Healthy))
		}
	}

	var remote textract.Extractor
	if cfg.TextExtraction.BaseURL != "" {
		remote = textract.NewClient(cfg.TextExtraction, logger)
	}
	reportOpts = append(reportOpts, service.WithTextExtractor(textract.NewChain(remote)))

	reports := service.NewReportService(engine, cfg.Service, reportOpts...)
	serverOpts = append(serverOpts, api.WithLogger(logger), api.WithMetrics(m))
	return api.NewServer(cfg.Server, reports, serverOpts...).Start(ctx)
}
