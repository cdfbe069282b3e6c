package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leonelm2/PotreroMobile/brackets"
	"github.com/leonelm2/PotreroMobile/config"
	"github.com/leonelm2/PotreroMobile/db"
	"github.com/leonelm2/PotreroMobile/handlers"
	"github.com/leonelm2/PotreroMobile/repositories"
	"github.com/leonelm2/PotreroMobile/repositories/memory"
	api "github.com/leonelm2/PotreroMobile/routes"
	"github.com/leonelm2/PotreroMobile/services"
	"github.com/leonelm2/PotreroMobile/storage"
	"github.com/leonelm2/PotreroMobile/utils"
)

const shutdownTimeout = 15 * time.Second

type repositorySet struct {
	users         repositories.UserRepository
	disciplines   repositories.DisciplineRepository
	teams         repositories.TeamRepository
	players       repositories.PlayerRepository
	championships repositories.ChampionshipRepository
	matches       repositories.MatchRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("storage_driver", cfg.StorageDriver),
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	repos, closeStorage, err := openRepositories(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	var uploader storage.FileUploader
	if cfg.R2.Complete() {
		uploader, err = storage.NewCloudflareR2Uploader(context.Background(), cfg.R2)
		if err != nil {
			return fmt.Errorf("initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2.BucketName))
	} else {
		logger.Warn("R2 settings incomplete, team logo upload disabled")
	}

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	defer wsHub.Stop()
	logger.Info("WebSocket hub started")

	tokens := utils.NewTokenManager(cfg.JWTSecretKey, cfg.JWTTTL)

	authService := services.NewAuthService(repos.users, tokens, logger)
	disciplineService := services.NewDisciplineService(repos.disciplines, logger)
	teamService := services.NewTeamService(repos.teams, repos.players, repos.disciplines, uploader, logger)
	playerService := services.NewPlayerService(repos.players, repos.teams, logger)
	championshipService := services.NewChampionshipService(
		repos.championships,
		repos.teams,
		repos.players,
		repos.disciplines,
		uploader,
		wsHub,
		logger,
	)
	matchService := services.NewMatchService(
		repos.matches,
		repos.championships,
		repos.teams,
		uploader,
		wsHub,
		logger,
	)

	if cfg.Admin.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		admin, err := authService.EnsureAdmin(ctx, services.RegisterInput{
			Username: cfg.Admin.Username,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
		})
		cancel()
		if err != nil {
			return fmt.Errorf("bootstrap administrator: %w", err)
		}
		logger.Info("bootstrap administrator ready", slog.Int("user_id", admin.ID))
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Options{
		Logger:         logger,
		Tokens:         tokens,
		AllowedOrigins: cfg.AllowedOrigins,
		SwaggerEnabled: cfg.SwaggerEnabled,
		Auth:           handlers.NewAuthHandler(authService),
		Disciplines:    handlers.NewDisciplineHandler(disciplineService),
		Teams:          handlers.NewTeamHandler(teamService),
		Players:        handlers.NewPlayerHandler(playerService),
		Championship:   handlers.NewChampionshipHandler(championshipService),
		Matches:        handlers.NewMatchHandler(matchService),
		WebSocket:      handlers.NewWebSocketHandler(wsHub, championshipService, cfg.AllowedOrigins),
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
	}
	return nil
}

// openRepositories returns the repositories for the configured driver and a
// function releasing their resources.
func openRepositories(cfg *config.Config, logger *slog.Logger) (repositorySet, func(), error) {
	if cfg.StorageDriver == config.DriverMemory {
		store := memory.NewStore()
		logger.Warn("using in-memory storage, data is lost on restart")
		return repositorySet{
			users:         store.Users(),
			disciplines:   store.Disciplines(),
			teams:         store.Teams(),
			players:       store.Players(),
			championships: store.Championships(),
			matches:       store.Matches(),
		}, func() {}, nil
	}

	if cfg.RunMigrations {
		if err := db.MigrateUp(cfg.DatabaseURL, logger); err != nil {
			return repositorySet{}, nil, err
		}
	}

	dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, cfg.DatabasePool, logger)
	if err != nil {
		return repositorySet{}, nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("database connection established")

	closeDB := func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
			return
		}
		logger.Info("database connection closed")
	}
	return postgresRepositories(dbConn), closeDB, nil
}

func postgresRepositories(dbConn *sql.DB) repositorySet {
	return repositorySet{
		users:         repositories.NewPostgresUserRepository(dbConn),
		disciplines:   repositories.NewPostgresDisciplineRepository(dbConn),
		teams:         repositories.NewPostgresTeamRepository(dbConn),
		players:       repositories.NewPostgresPlayerRepository(dbConn),
		championships: repositories.NewPostgresChampionshipRepository(dbConn),
		matches:       repositories.NewPostgresMatchRepository(dbConn),
	}
}
