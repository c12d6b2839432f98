package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webapi "github.com/confide-dev/confide/api/echo"
	"github.com/confide-dev/confide/cache"
	redisCache "github.com/confide-dev/confide/cache/redis"
	"github.com/confide-dev/confide/config"
	"github.com/confide-dev/confide/domain"
	"github.com/confide-dev/confide/internal/auth"
	"github.com/confide-dev/confide/internal/federation"
	"github.com/confide-dev/confide/internal/metrics"
	"github.com/confide-dev/confide/internal/server"
	"github.com/confide-dev/confide/log"
	"github.com/confide-dev/confide/mongodb"
	"github.com/confide-dev/confide/services"
	"github.com/confide-dev/confide/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	appLogger  log.Logger
	httpServer *http.Server
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := zerolog.New(os.Stdout).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logLevel, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		logLevel = zerolog.InfoLevel
	}
	appLogger = log.NewZerologAdapter(logLevel, cfg.LogPretty)
	appLogger.Info(context.Background(), "Starting confide gateway...", map[string]interface{}{
		"http_port":     cfg.HTTPPort,
		"public_url":    cfg.PublicBaseURL,
		"mongo_db_name": cfg.MongoDBName,
		"redis":         cfg.RedisAddr != "",
	})

	ctx := context.Background()

	var tracerProvider *sdktrace.TracerProvider
	if cfg.TracingEnabled {
		tp, tpErr := tracing.InitTracerProvider(cfg.OtelServiceName)
		if tpErr != nil {
			appLogger.Fatal(ctx, "Failed to initialize TracerProvider", tpErr)
		}
		tracerProvider = tp
		appLogger.Info(ctx, "TracerProvider initialized.")
	}

	if initErr := mongodb.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); initErr != nil {
		appLogger.Fatal(ctx, "Failed to initialize MongoDB connection", initErr)
	}
	db := mongodb.GetDB()

	// Repositories
	userRepo, err := mongodb.NewUserRepository(ctx, db)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize UserRepository", err)
	}
	sessionRepo, err := mongodb.NewSessionRepository(ctx, db)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize SessionRepository", err)
	}

	// Session cache: Redis when configured, otherwise in-memory.
	var sessionCache cache.SessionCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		sessionCache = redisCache.NewSessionCache(redisClient, "confide")
	} else {
		sessionCache = cache.NewMemorySessionCache(cfg.SessionTTL())
	}

	// Services
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	authService := services.NewAuthService(userRepo, passwordHasher)
	sessionService := services.NewSessionService(
		sessionRepo, userRepo, sessionCache,
		[]byte(cfg.SessionSecret), cfg.SessionTTL(),
	)

	fedService := federation.NewService(cfg.PublicBaseURL)
	registerProviders(ctx, cfg, fedService)
	federationService := services.NewFederationService(fedService, userRepo)

	metrics.InitCustomMetrics(prometheus.DefaultRegisterer)

	api := webapi.NewWebAPI(authService, federationService, sessionService, userRepo, mongodb.Ping)

	httpServer = server.NewHTTPServer(cfg, appLogger, api)
	go func() {
		appLogger.Info(context.Background(), fmt.Sprintf("HTTP server listening on port %s", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(context.Background(), "Failed to start HTTP server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit

	appLogger.Info(context.Background(), fmt.Sprintf("Received signal: %v. Shutting down...", receivedSignal))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "HTTP server shutdown error", err)
	}
	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			appLogger.Error(shutdownCtx, "TracerProvider shutdown error", err)
		}
	}
	mongodb.CloseMongoDB(shutdownCtx)
	appLogger.Info(context.Background(), "Shutdown complete.")
}

// registerProviders wires up every identity provider that has credentials
// configured. A provider without credentials is simply not offered.
func registerProviders(ctx context.Context, cfg *config.ServerConfig, fedService *federation.Service) {
	if google, err := federation.NewGoogleProvider(federation.ProviderConfig{
		Name:         domain.ProviderGoogle,
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
	}); err == nil && google.Config.Enabled() {
		fedService.RegisterProvider(google)
		appLogger.Info(ctx, "Registered identity provider", map[string]interface{}{"provider": domain.ProviderGoogle})
	}

	if facebook, err := federation.NewFacebookProvider(federation.ProviderConfig{
		Name:         domain.ProviderFacebook,
		ClientID:     cfg.FacebookClientID,
		ClientSecret: cfg.FacebookClientSecret,
	}); err == nil && facebook.Config.Enabled() {
		fedService.RegisterProvider(facebook)
		appLogger.Info(ctx, "Registered identity provider", map[string]interface{}{"provider": domain.ProviderFacebook})
	}
}
