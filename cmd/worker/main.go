package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/betterwealth/workshop-booking/internal/app"
	"github.com/betterwealth/workshop-booking/internal/config"
	"github.com/betterwealth/workshop-booking/internal/mail"
	"github.com/betterwealth/workshop-booking/internal/queue"
	"github.com/betterwealth/workshop-booking/internal/tasks"
)

// worker runs the booking.confirmed log consumer and the reminder task
// server.  Either half is skipped when its backing service is not
// configured.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := app.NewLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.RabbitMQURL != "" {
		consumer := queue.NewConsumer(cfg.RabbitMQURL, "logs", logger.Named("booking-consumer"))
		g.Go(func() error {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	} else {
		logger.Warn("RABBITMQ_URL not set; booking consumer disabled")
	}

	if cfg.RemindersEnabled {
		sender := mail.NewSender(cfg.ResendAPIKey, cfg.MailFrom, logger)
		srv := asynq.NewServer(cfg.Redis.AsynqOpt(), asynq.Config{
			Concurrency: 5,
			Logger:      logger.Named("asynq").Sugar(),
		})
		mux := asynq.NewServeMux()
		mux.HandleFunc(tasks.TypeBookingReminder, tasks.HandleReminder(sender, logger.Named("reminders")))

		g.Go(func() error {
			if err := srv.Start(mux); err != nil {
				return err
			}
			<-ctx.Done()
			srv.Shutdown()
			return nil
		})
	} else {
		logger.Warn("REMINDERS_ENABLED is false; reminder server disabled")
	}

	logger.Info("worker started", zap.Stringer("redis", cfg.Redis))
	if err := g.Wait(); err != nil {
		logger.Fatal("worker stopped", zap.Error(err))
	}
	logger.Info("worker stopped")
}
