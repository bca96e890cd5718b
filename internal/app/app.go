package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-edu-platform/internal/config"
	"go-edu-platform/internal/database"
	"go-edu-platform/internal/handler"
	"go-edu-platform/internal/middleware"
	"go-edu-platform/internal/model"
	"go-edu-platform/internal/oauth"
	"go-edu-platform/internal/repository"
	"go-edu-platform/internal/router"
	"go-edu-platform/internal/service"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	oauthRepo := repository.NewOAuthRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	teacherRepo := repository.NewTeacherRepository(pool)
	videoRepo := repository.NewVideoRepository(pool)
	progressRepo := repository.NewProgressRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	slog.Info("database ready")

	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	authService := service.NewAuthService(tokenService, userRepo, oauthRepo)

	seed := cfg.SeedSuperadmin
	if err := authService.EnsureSuperadmin(context.Background(), seed.Username, seed.Password, seed.Email); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed superadmin: %w", err)
	}

	providers := oauth.Registry{
		model.ProviderGoogle: oauth.NewGoogleVerifier(cfg.GoogleClientID),
		model.ProviderApple:  oauth.NewAppleVerifier(cfg.AppleClientID),
	}

	subjectService := service.NewSubjectService(subjectRepo)
	teacherService := service.NewTeacherService(teacherRepo, userRepo, subjectRepo)
	videoService := service.NewVideoService(videoRepo, progressRepo)
	testService := service.NewTestService(testRepo)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := handler.NewAuthHandler(authService, providers)
	userHandler := handler.NewUserHandler(authService)
	subjectHandler := handler.NewSubjectHandler(subjectService)
	teacherHandler := handler.NewTeacherHandler(teacherService)
	videoHandler := handler.NewVideoHandler(videoService)
	testHandler := handler.NewTestHandler(testService)

	appRouter := router.New(
		cfg,
		authMiddleware,
		authHandler,
		userHandler,
		subjectHandler,
		teacherHandler,
		videoHandler,
		testHandler,
	)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			func() {
				db.Close()
			},
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
