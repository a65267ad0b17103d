package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vedran77/campusconnect/internal/config"
	"github.com/vedran77/campusconnect/internal/database"
	"github.com/vedran77/campusconnect/internal/repository"
	"github.com/vedran77/campusconnect/internal/repository/memory"
	postgresrepo "github.com/vedran77/campusconnect/internal/repository/postgres"
	"github.com/vedran77/campusconnect/internal/service"
	"github.com/vedran77/campusconnect/internal/transport/http/handlers"
	"github.com/vedran77/campusconnect/internal/transport/http/middleware"
	"github.com/vedran77/campusconnect/internal/transport/ws"
	"github.com/vedran77/campusconnect/pkg/logger"
	"github.com/vedran77/campusconnect/pkg/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "campusconnect: %v\n", err)
		os.Exit(1)
	}
}

type repositories struct {
	accounts     repository.AccountRepository
	listings     repository.ListingRepository
	applications repository.ApplicationRepository
	messages     repository.MessageRepository
	objects      repository.ObjectRepository
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	log := logger.Named("server")

	m := metrics.NewManager(metrics.WithGoCollectors())

	// Storage
	var repos repositories
	switch cfg.Store {
	case "memory":
		log.Warn(ctx, "using in-memory store, data is lost on restart")
		repos = repositories{
			accounts:     memory.NewAccountRepo(),
			listings:     memory.NewListingRepo(),
			applications: memory.NewApplicationRepo(),
			messages:     memory.NewMessageRepo(),
			objects:      memory.NewObjectRepo(),
		}
	default:
		pool, err := database.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		log.Info(ctx, "connected to database", logger.String("host", cfg.DBHost))

		if err := database.Migrate(ctx, pool, logger.Named("migrate")); err != nil {
			return err
		}

		repos = repositories{
			accounts:     postgresrepo.NewAccountRepo(pool),
			listings:     postgresrepo.NewListingRepo(pool),
			applications: postgresrepo.NewApplicationRepo(pool),
			messages:     postgresrepo.NewMessageRepo(pool),
			objects:      postgresrepo.NewObjectRepo(pool),
		}
	}

	// Rate limiting
	var limiter middleware.Limiter = middleware.NewMemoryLimiter()
	if cfg.RedisURL != "" {
		rdb := redis.NewClient(redisOptions(cfg.RedisURL))
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn(ctx, "redis unreachable, rate limits will fail open", logger.Err(err))
		}
		cancel()
		limiter = middleware.NewRedisLimiter(rdb, logger.Named("ratelimit"))
	}

	// Services
	authService := service.NewAuthService(repos.accounts, cfg.JWTSecret, cfg.TokenTTL)
	accountService := service.NewAccountService(repos.accounts, repos.objects)
	listingService := service.NewListingService(repos.listings, repos.accounts, repos.applications, m)
	applicationService := service.NewApplicationService(repos.applications, repos.listings, repos.accounts, m)
	threadService := service.NewThreadService(repos.messages, repos.accounts, m)
	dashboardService := service.NewDashboardService(repos.accounts, repos.listings, repos.applications)

	// WebSocket Hub
	hub := ws.NewHub(logger.Named("ws"), m)
	go hub.Run(ctx)
	threadService.SetNotifier(ws.NewHubNotifier(hub))

	// Handlers
	hlog := logger.Named("http")
	authHandler := handlers.NewAuthHandler(authService, hlog)
	accountHandler := handlers.NewAccountHandler(accountService, hlog)
	listingHandler := handlers.NewListingHandler(listingService, hlog)
	applicationHandler := handlers.NewApplicationHandler(applicationService, hlog)
	threadHandler := handlers.NewThreadHandler(threadService, hlog)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, hlog)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)
	limitMessages := middleware.RateLimit(limiter, m, "message", cfg.MessageRateLimit, cfg.RateLimitWindow)
	limitApplications := middleware.RateLimit(limiter, m, "application", cfg.ApplicationRateLimit, cfg.RateLimitWindow)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// Protected - Accounts
	mux.Handle("GET /api/v1/me", auth(http.HandlerFunc(accountHandler.Me)))
	mux.Handle("PATCH /api/v1/me", auth(http.HandlerFunc(accountHandler.UpdateMe)))
	mux.Handle("PUT /api/v1/me/resume", auth(http.HandlerFunc(accountHandler.UploadResume)))
	mux.Handle("PUT /api/v1/me/avatar", auth(http.HandlerFunc(accountHandler.UploadAvatar)))
	mux.Handle("GET /api/v1/accounts/{id}", auth(http.HandlerFunc(accountHandler.Get)))
	mux.Handle("GET /api/v1/objects/{path...}", auth(http.HandlerFunc(accountHandler.GetObject)))
	mux.Handle("GET /api/v1/dashboard", auth(http.HandlerFunc(dashboardHandler.Get)))

	// Protected - Listings
	mux.Handle("POST /api/v1/listings", auth(http.HandlerFunc(listingHandler.Create)))
	mux.Handle("GET /api/v1/listings", auth(http.HandlerFunc(listingHandler.Browse)))
	mux.Handle("GET /api/v1/listings/matches", auth(http.HandlerFunc(listingHandler.Matches)))
	mux.Handle("GET /api/v1/listings/{id}", auth(http.HandlerFunc(listingHandler.View)))
	mux.Handle("DELETE /api/v1/listings/{id}", auth(http.HandlerFunc(listingHandler.Delete)))

	// Protected - Applications
	mux.Handle("POST /api/v1/listings/{id}/applications", auth(limitApplications(http.HandlerFunc(applicationHandler.Submit))))
	mux.Handle("GET /api/v1/applications", auth(http.HandlerFunc(applicationHandler.List)))
	mux.Handle("PATCH /api/v1/applications/{id}", auth(http.HandlerFunc(applicationHandler.Decide)))

	// Protected - Threads
	mux.Handle("GET /api/v1/threads", auth(http.HandlerFunc(threadHandler.List)))
	mux.Handle("GET /api/v1/contacts", auth(http.HandlerFunc(threadHandler.Contacts)))
	mux.Handle("POST /api/v1/threads/{userId}/messages", auth(limitMessages(http.HandlerFunc(threadHandler.Send))))
	mux.Handle("GET /api/v1/threads/{threadId}/messages", auth(http.HandlerFunc(threadHandler.Messages)))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, threadService, cfg.JWTSecret, cfg.AllowedOrigin, logger.Named("ws")))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           middleware.CORS(cfg.AllowedOrigin)(middleware.Observe(m, hlog)(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting server", logger.String("addr", srv.Addr), logger.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// redisOptions accepts either a redis:// URL or a bare host:port address.
func redisOptions(addr string) *redis.Options {
	if opts, err := redis.ParseURL(addr); err == nil {
		return opts
	}
	return &redis.Options{Addr: addr}
}
