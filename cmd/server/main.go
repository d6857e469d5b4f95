package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexuscrm/fieldstudio/internal/application/services"
	"github.com/nexuscrm/fieldstudio/internal/bootstrap"
	"github.com/nexuscrm/fieldstudio/internal/config"
	"github.com/nexuscrm/fieldstudio/internal/infrastructure/database"
	"github.com/nexuscrm/fieldstudio/internal/interfaces/middleware"
	"github.com/nexuscrm/fieldstudio/internal/interfaces/rest"
	"github.com/nexuscrm/fieldstudio/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if !logger.SetLevel(cfg.LogLevel) {
		logger.Warn("Unknown log level, keeping info", "level", cfg.LogLevel)
	}

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("Database connection established", "host", cfg.Database.Host, "database", cfg.Database.Name)

	if err := bootstrap.InitializeSchema(ctx, db); err != nil {
		logger.Error("Failed to initialize schema", "error", err)
		os.Exit(1)
	}

	svcMgr := services.NewServiceManager(db)
	logger.Info("Service manager initialized")

	if err := bootstrap.InitializeStandardObjects(ctx, svcMgr); err != nil {
		logger.Warn("Failed to initialize standard objects", "error", err)
	}
	if err := bootstrap.InitializeCapabilities(ctx, svcMgr.Repos.Settings, cfg.Capabilities); err != nil {
		logger.Warn("Failed to initialize capabilities", "error", err)
	}

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           newRouter(cfg, svcMgr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()
	logger.Info("Field Studio backend started",
		"server", "http://localhost:"+cfg.Port,
		"fields", "http://localhost:"+cfg.Port+"/api/object-fields",
		"metrics", "http://localhost:"+cfg.Port+"/metrics",
		"health", "http://localhost:"+cfg.Port+"/health",
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	logger.Info("Server exiting")
}

func newRouter(cfg *config.Config, svcMgr *services.ServiceManager) *gin.Engine {
	if !cfg.IsDebug() {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics := middleware.NewMetrics()

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), metrics.Middleware(), middleware.Cors(cfg.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	rest.RegisterRoutes(router, rest.Handlers{
		Fields:   rest.NewFieldHandler(svcMgr.Fields),
		Metadata: rest.NewMetadataHandler(svcMgr.Metadata),
		Lookups:  rest.NewLookupHandler(svcMgr.Objects, svcMgr.ValueSets, svcMgr.Settings),
	})
	return router
}
