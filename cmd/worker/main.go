package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"conference/internal/config"
	"conference/internal/logging"
	"conference/internal/notify"
	"conference/internal/queue"
	"conference/internal/store"
)

// Worker consumes queue messages and sends notification mail.
func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.IsDev()).With().Str("component", "worker").Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.QueueBackend == "memory" {
		log.Fatal().Msg("memory queue is process-local; run the worker with redis or rabbitmq")
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer func() { _ = redisClient.Close() }()

	q, closeQueue, err := queue.Open(cfg.QueueBackend, redisClient.Client, cfg.RabbitMQURL, cfg.RabbitMQQueue)
	if err != nil {
		log.Fatal().Err(err).Msg("queue init failed")
	}
	defer func() { _ = closeQueue() }()

	var mailer notify.Mailer = notify.LogMailer{Log: log}
	if cfg.SMTPAddr != "" {
		mailer = notify.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
		log.Info().Str("smtp", cfg.SMTPAddr).Msg("smtp mailer configured")
	}

	log.Info().Str("queue", cfg.QueueBackend).Msg("worker started, waiting for messages")
	if err := notify.NewHandler(mailer, cfg.NotifyAdminEmail, log).Run(ctx, q); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("worker stopped")
		return
	}
	log.Info().Msg("worker exited")
}
