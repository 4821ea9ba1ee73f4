package main

import (
	"context"

	"github.com/playfulorigins333/sirens-forge-master-sub001/internal/alerts"
	"github.com/playfulorigins333/sirens-forge-master-sub001/internal/catalog"
	"github.com/playfulorigins333/sirens-forge-master-sub001/internal/config"
	"github.com/playfulorigins333/sirens-forge-master-sub001/internal/handlers"
	"github.com/playfulorigins333/sirens-forge-master-sub001/internal/jobs"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/auth"
	pkgconfig "github.com/playfulorigins333/sirens-forge-master-sub001/pkg/config"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/database"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/kafka"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/logging"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/monitoring"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/server"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("herald")

	// Load environment variables
	pkgconfig.LoadEnv(logger)

	logger.Info("Starting Herald (Autopost API)")

	cfg := config.Load()

	// Connect to database
	dbConfig := database.DefaultConfig()
	dbConfig.URL = cfg.DatabaseURL
	db := database.MustConnect(dbConfig, logger)
	defer db.Close()

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("herald", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("herald", version.Version, version.GitCommit)

	// Add health checks
	healthChecker.AddCheck("database", monitoring.DatabaseHealthCheck(db))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"DATABASE_URL": cfg.DatabaseURL,
		"JWT_SECRET":   cfg.JWTSecret,
	}))

	// Create custom autopost metrics
	metrics := &jobs.Metrics{
		Dispatches: metricsCollector.NewCounter("dispatches_total", "Dispatch attempts by outcome", []string{"platform", "status"}),
	}
	metrics.SelectionRuns, metrics.SelectionRejections, metrics.SelectionDuration = metricsCollector.CreateSelectionMetrics()

	// Create database metrics
	metrics.DBQueries, metrics.DBDuration, metrics.DBConnections = metricsCollector.CreateDatabaseMetrics()

	store := catalog.NewStore(db, logger)

	// Optional decision event stream
	var producer *kafka.Producer
	if cfg.KafkaEnabled() {
		var err error
		producer, err = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create Kafka producer")
		}
		defer producer.Close()
		healthChecker.AddCheck("kafka", monitoring.KafkaProducerHealthCheck(producer.GetClient()))
	}

	webhook := alerts.NewWebhook(cfg.AlertWebhookURL, logger)

	// Initialize and start the runner for scheduled autopost rules
	runner := jobs.NewRunner(store, logger, jobs.Options{
		Producer:        producer,
		Webhook:         webhook,
		Metrics:         metrics,
		Interval:        cfg.RunInterval,
		DispatchEnabled: cfg.DispatchEnabled,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner.Start(ctx)
	defer runner.Stop()

	logger.Info("Autopost runner started - scheduled rules active")

	// Initialize handlers
	handlers.Init(store, logger, runner, metrics)

	// Setup router with unified monitoring
	router := server.SetupServiceRouter(logger, "herald", healthChecker, metricsCollector)

	// API routes (root level - nginx adds /api/autopost/ prefix)
	{
		// Authentication required endpoints
		protected := router.Group("")
		protected.Use(auth.JWTAuthMiddleware([]byte(cfg.JWTSecret)))
		{
			// Content pool endpoints
			protected.GET("/content/captions", handlers.ListCaptions)
			protected.POST("/content/captions", handlers.CreateCaption)
			protected.POST("/content/captions/:id/approval", handlers.SetCaptionApproval)
			protected.GET("/content/ctas", handlers.ListCTAs)
			protected.POST("/content/ctas", handlers.CreateCTA)
			protected.POST("/content/ctas/:id/approval", handlers.SetCTAApproval)
			protected.GET("/content/hashtag-sets", handlers.ListHashtagSets)
			protected.POST("/content/hashtag-sets", handlers.CreateHashtagSet)
			protected.POST("/content/hashtag-sets/:id/approval", handlers.SetHashtagSetApproval)

			// Rule and decision endpoints
			protected.GET("/autopost/rules", handlers.ListRules)
			protected.POST("/autopost/rules", handlers.CreateRule)
			protected.PATCH("/autopost/rules/:id", handlers.UpdateRule)
			protected.GET("/autopost/decisions", handlers.ListDecisions)
		}

		// Selection endpoints (service-to-service)
		serviceAPI := router.Group("")
		serviceAPI.Use(auth.ServiceAuthMiddleware(cfg.ServiceToken))
		{
			serviceAPI.POST("/autopost/run", handlers.RunAutopost)
			serviceAPI.POST("/autopost/rules/:id/execute", handlers.ExecuteRule)
		}
	}

	// Start server with graceful shutdown
	serverConfig := server.DefaultConfig("herald", cfg.Port)
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}
}
