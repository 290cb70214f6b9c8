package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/campusconnect/places-engine/pkg/auth"
	"github.com/campusconnect/places-engine/pkg/config"
	"github.com/campusconnect/places-engine/pkg/database"
	"github.com/campusconnect/places-engine/pkg/handlers"
	"github.com/campusconnect/places-engine/pkg/logging"
	"github.com/campusconnect/places-engine/pkg/middleware"
	"github.com/campusconnect/places-engine/pkg/repositories"
	"github.com/campusconnect/places-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.URL())),
	)

	// Connect to PostgreSQL
	ctx := context.Background()
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	// Run migrations through database/sql; the pgx pool stays dedicated
	// to request traffic.
	migrationDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		logger.Fatal("failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	if err := migrationDB.Close(); err != nil {
		logger.Warn("failed to close migration connection", zap.Error(err))
	}

	// Authentication
	jwksClient, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		logger.Fatal("failed to create JWKS client", zap.Error(err))
	}
	defer jwksClient.Close()

	authService := auth.NewAuthService(jwksClient, logger)
	authMiddleware := auth.NewMiddleware(authService, logger)

	// Repositories
	placeRepo := repositories.NewPlaceRepository(db)
	typeRepo := repositories.NewPlaceTypeRepository(db)
	univRepo := repositories.NewUniversityRepository(db)
	updateRepo := repositories.NewPlaceUpdateRepository(db)
	mediaRepo := repositories.NewPlaceMediaRepository(db)

	// Services
	placeService := services.NewPlaceService(&services.PlaceServiceDeps{
		DB:        db,
		PlaceRepo: placeRepo,
		TypeRepo:  typeRepo,
		UnivRepo:  univRepo,
		MediaRepo: mediaRepo,
		Logger:    logger,
	})
	reviewService := services.NewUpdateReviewService(&services.UpdateReviewServiceDeps{
		DB:         db,
		PlaceRepo:  placeRepo,
		UpdateRepo: updateRepo,
		TypeRepo:   typeRepo,
		UnivRepo:   univRepo,
		MediaRepo:  mediaRepo,
		Logger:     logger,
	})

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewPlaceHandler(placeService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewPlaceUpdateHandler(reviewService, logger).RegisterRoutes(mux, authMiddleware)
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := middleware.RequestLogger(logger)(middleware.Metrics()(mux))

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("starting places-engine", zap.String("addr", addr), zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
