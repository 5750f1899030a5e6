package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"conference/internal/attendance"
	"conference/internal/auth"
	"conference/internal/config"
	"conference/internal/contact"
	"conference/internal/coupon"
	"conference/internal/dashboard"
	"conference/internal/events"
	"conference/internal/handler"
	"conference/internal/httpmiddleware"
	"conference/internal/logging"
	"conference/internal/payment"
	"conference/internal/queue"
	"conference/internal/registration"
	"conference/internal/scoring"
	"conference/internal/store"
	"conference/internal/store/backend"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.IsDev())

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

func runHTTP(cfg config.App, log zerolog.Logger) error {
	ctx := context.Background()

	st, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close(context.Background()) }()
	log.Info().Str("backend", cfg.StoreBackend).Msg("store ready")

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer func() { _ = redisClient.Close() }()

	q, closeQueue, err := queue.Open(cfg.QueueBackend, redisClient.Client, cfg.RabbitMQURL, cfg.RabbitMQQueue)
	if err != nil {
		return err
	}
	defer func() { _ = closeQueue() }()

	var cache scoring.Cache
	if cfg.LeaderboardCacheTTL > 0 && redisClient.Healthy(ctx) {
		cache = scoring.NewRedisCache(redisClient.Client, cfg.LeaderboardCacheTTL)
	} else {
		log.Warn().Msg("leaderboard cache disabled")
	}

	var limiter httpmiddleware.Limiter = httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	if cfg.RateLimitBackend == "redis" {
		limiter = httpmiddleware.NewRedisWindow(redisClient.Client, cfg.RateLimitPerMin)
	}

	coupons := coupon.NewService(st, log)
	gateway := payment.NewRazorpayClient(cfg.PaymentBaseURL, cfg.PaymentKeyID, cfg.PaymentKeySecret)
	if gateway.Skip {
		log.Warn().Msg("payment gateway credentials not set, orders are synthetic")
	}
	svc := handler.Services{
		Registrations: registration.NewService(st, st, q, log),
		Attendance:    attendance.NewService(st, st, log),
		Coupons:       coupons,
		Scoring:       scoring.NewService(st, st, cache, log),
		Dashboard:     dashboard.NewService(st),
		Events:        events.NewService(st, log),
		Contacts:      contact.NewService(st, q, log),
		Payments: payment.NewService(st, coupons, gateway, q, payment.Config{
			KeyID:     cfg.PaymentKeyID,
			KeySecret: cfg.PaymentKeySecret,
			Currency:  cfg.PaymentCurrency,
		}, log),
	}
	policy := auth.NewAllowlistPolicy(cfg.AdminEmails, cfg.ChairEmails)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.AccessLog(log, "/healthz", "/metrics"))
	r.Use(httpmiddleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:          24 * time.Hour,
	}))
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(httpmiddleware.RateLimit(limiter, log))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := st.Ping(c.Request.Context()) == nil
		status := http.StatusOK
		if !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	handler.New(svc, log).Register(r, auth.Middleware(cfg.JWTSigningKey, cfg.JWTIssuer, policy))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced shutdown")
	}
	log.Info().Msg("server exited")
	return nil
}
