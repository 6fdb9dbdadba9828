package main

import (
	"net/http"
	"time"

	"github.com/senyabanana/marketplace-service/internal/db"
	"github.com/senyabanana/marketplace-service/internal/handlers"
	"github.com/senyabanana/marketplace-service/internal/logger"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/router"
	"github.com/senyabanana/marketplace-service/internal/router/config"
	"github.com/senyabanana/marketplace-service/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config", zap.Error(err))
	}

	runDBMigration(log, cfg.MigrationURL, cfg.PostgresConn)

	dbPool, err := db.InitDb(cfg)
	if err != nil {
		log.Fatal("error initializing database", zap.Error(err))
	}
	defer dbPool.Close()

	projectRepo := repository.NewPostgresProjectRepository(dbPool)
	bidRepo := repository.NewPostgresBidRepository(dbPool)
	reviewRepo := repository.NewPostgresReviewRepository(dbPool)
	userRepo := repository.NewPostgresUserRepository(dbPool)

	projectService := services.NewProjectService(projectRepo, bidRepo, reviewRepo, userRepo)
	bidService := services.NewBidService(bidRepo, projectRepo, userRepo)
	rankingService := services.NewRankingService(bidRepo, projectRepo, userRepo)
	reviewService := services.NewReviewService(reviewRepo, projectRepo, userRepo)
	userService := services.NewUserService(userRepo)

	projectHandler := handlers.NewProjectHandler(projectService, log, 5*time.Second)
	bidHandler := handlers.NewBidHandler(bidService, rankingService, log, 5*time.Second)
	reviewHandler := handlers.NewReviewHandler(reviewService, log, 5*time.Second)
	userHandler := handlers.NewUserHandler(userService, log, 5*time.Second)

	routes := router.InitRoutes(projectHandler, bidHandler, reviewHandler, userHandler)

	log.Info("server is listening", zap.String("address", cfg.ServerAddress))
	if err := http.ListenAndServe(cfg.ServerAddress, routes); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func runDBMigration(log *zap.Logger, migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		log.Fatal("cannot create a new migrate instance", zap.Error(err))
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("failed to run migrate up", zap.Error(err))
	}
	log.Info("db migrated successfully")
}
