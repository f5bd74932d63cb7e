package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/gorilla/handlers"
	"github.com/rs/zerolog"

	"github.com/formflow/formflow-api/internal/config"
	"github.com/formflow/formflow-api/internal/handlers"
	"github.com/formflow/formflow-api/internal/lifecycle"
	"github.com/formflow/formflow-api/internal/middleware"
	"github.com/formflow/formflow-api/internal/migration"
	"github.com/formflow/formflow-api/internal/notification"
	"github.com/formflow/formflow-api/internal/render"
	"github.com/formflow/formflow-api/internal/repository"
	"github.com/formflow/formflow-api/internal/routes"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type application struct {
	config        *config.Config
	db            *sql.DB
	logger        zerolog.Logger
	notifications notification.Service
	users         repository.UserRepository
}

func main() {
	// Set up structured, level-based logging.
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.SetFlags(0)
	log.SetOutput(logger)

	// Load configuration.
	cfg := config.Load()

	// Initialize database connection.
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping database")
	}

	// Run database migrations.
	migration.RunMigrations(cfg.DatabaseURL, logger)

	// Initialize notification dispatcher with optional delivery channels.
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	var channels []notification.Notifier
	if cfg.Email.Enabled {
		emailNotifier, err := notification.NewEmailNotifier(cfg.Email, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure email notifier")
		}
		channels = append(channels, emailNotifier)
	}
	notificationService := notification.NewService(notificationRepo, userRepo, logger, channels...)

	// Create the application instance.
	app := &application{
		config:        cfg,
		db:            db,
		logger:        logger,
		notifications: notificationService,
		users:         userRepo,
	}

	// Start the retention sweeper for read notifications.
	sweeper := notification.NewSweeper(
		notificationService,
		cfg.Notifications.SweepInterval,
		cfg.Notifications.Retention,
		logger,
	)
	sweeper.Start()

	// Initialize the HTTP router and middleware.
	router := app.initRouter()
	timedRouter := middleware.TimeoutMiddleware(cfg.RequestTimeout)(router)
	loggedRouter := middleware.LoggingMiddleware(app.logger)(timedRouter)
	corsHandler := h.CORS(
		h.AllowedOrigins(cfg.AllowedOrigins),
		h.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		h.AllowCredentials(),
	)(loggedRouter)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(corsHandler, sweeper)

	logger.Info().Msg("Application terminated.")
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter() http.Handler {
	// Repositories
	formatRepo := repository.NewFormatRepository(app.db)
	submissionRepo := repository.NewSubmissionRepository(app.db)
	validationRepo := repository.NewValidationRepository(app.db)

	// Core lifecycle service
	lifecycleService := lifecycle.NewService(
		submissionRepo,
		validationRepo,
		formatRepo,
		app.users,
		app.notifications,
		app.logger,
	)

	// PDF rendering collaborator
	renderer := render.NewWKHTMLRenderer(app.config.Renderer.BinaryPath)

	// Handlers
	authHandler := handlers.NewAuthHandler(app.users, app.config.JWTSecret, app.logger)
	formatHandler := handlers.NewFormatHandler(formatRepo, app.logger)
	submissionHandler := handlers.NewSubmissionHandler(lifecycleService, app.logger)
	validationHandler := handlers.NewValidationHandler(lifecycleService, app.logger)
	documentHandler := handlers.NewDocumentHandler(lifecycleService, app.users, renderer, app.logger)
	notificationHandler := handlers.NewNotificationHandler(app.notifications, app.logger)

	return routes.NewRouter(authHandler, formatHandler, submissionHandler, validationHandler, documentHandler, notificationHandler)
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler, sweeper *notification.Sweeper) {
	server := &http.Server{
		Addr:    ":" + app.config.ServerPort,
		Handler: handler,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		app.logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		app.logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		app.logger.Error().Err(err).Msg("Server error occurred")
	}

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		app.logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		app.logger.Info().Msg("HTTP server shutdown complete.")
	}

	// Stop the notification sweeper.
	sweeper.Stop()
}
