package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/betterwealth/workshop-booking/internal/app"
	"github.com/betterwealth/workshop-booking/internal/captcha"
	"github.com/betterwealth/workshop-booking/internal/config"
	"github.com/betterwealth/workshop-booking/internal/database"
	"github.com/betterwealth/workshop-booking/internal/handler"
	"github.com/betterwealth/workshop-booking/internal/mail"
	"github.com/betterwealth/workshop-booking/internal/middleware"
	"github.com/betterwealth/workshop-booking/internal/payment"
	"github.com/betterwealth/workshop-booking/internal/queue"
	"github.com/betterwealth/workshop-booking/internal/repository"
	"github.com/betterwealth/workshop-booking/internal/router"
	"github.com/betterwealth/workshop-booking/internal/service"
	"github.com/betterwealth/workshop-booking/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := app.NewLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if cfg.DBMigrate {
		m, err := app.NewMigrator(db, logger)
		if err != nil {
			logger.Fatal("migrator init failed", zap.Error(err))
		}
		if err := m.Run(context.Background()); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		logger.Warn("redis unreachable; cache disabled", zap.Stringer("redis", cfg.Redis))
	} else {
		defer rdb.Close()
	}

	if cfg.CSRFSecret == "" {
		logger.Warn("CSRF_SECRET not set; CSRF protection disabled")
	}
	if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
		logger.Warn("stripe keys not fully configured; checkout or webhook calls will fail")
	}

	// repositories
	workshops := repository.NewWorkshopRepo(db)
	dates := repository.NewWorkshopDateRepo(db)
	bookings := repository.NewBookingRepo(db)
	subscribers := repository.NewSubscriberRepo(db)
	fulfillments := repository.NewFulfillmentRepo(db)
	customers := repository.NewCustomerRepo(db)

	// integrations
	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	verifier := captcha.NewTurnstile(cfg.TurnstileSecret)
	sender := mail.NewSender(cfg.ResendAPIKey, cfg.MailFrom, logger)

	var publisher service.EventPublisher
	if cfg.RabbitMQURL != "" {
		p := queue.NewPublisher(cfg.RabbitMQURL)
		defer p.Close()
		publisher = p
	}
	var reminders service.ReminderScheduler
	if cfg.RemindersEnabled {
		client := asynq.NewClient(cfg.Redis.AsynqOpt())
		defer client.Close()
		reminders = tasks.NewReminderScheduler(client)
	}

	// services
	checkout := service.NewCheckoutService(dates, gateway, verifier, cfg.SiteURL, cfg.Currency, logger)
	fulfillment := service.NewFulfillmentService(fulfillments, sender, publisher, reminders, service.FulfillmentConfig{
		SiteURL:       cfg.SiteURL,
		InternalInbox: cfg.MailInternalTo,
		Location:      cfg.EventLocation,
	}, logger)
	lookup := service.NewBookingLookupService(bookings, gateway, cfg.EventLocation)
	newsletter := service.NewNewsletterService(subscribers, verifier, logger)
	contact := service.NewContactService(sender, newsletter, cfg.MailInternalTo, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.NewRateLimiter(cfg.RateLimit, rdb, logger))
	e.Use(middleware.CSRF(middleware.CSRFConfig{Secret: cfg.CSRFSecret, Secure: cfg.IsProduction()}))

	router.RegisterRoutes(e, db)
	router.RegisterPublic(e, router.Handlers{
		Checkout: handler.NewCheckoutHandler(checkout, logger),
		Webhook:  handler.NewWebhookHandler(gateway, fulfillment, logger),
		Booking:  handler.NewBookingHandler(lookup, logger),
		Calendar: handler.NewCalendarHandler(cfg.SiteURL, cfg.EventLocation),
		Forms:    handler.NewFormsHandler(newsletter, contact, logger),
		Catalog:  handler.NewCatalogHandler(workshops, dates, logger),
	}, middleware.NewRedisCache(cfg.Cache, rdb))
	router.RegisterAdmin(e, handler.NewAdminHandler(handler.AdminConfig{
		Email:        cfg.AdminEmail,
		PasswordHash: cfg.AdminPasswordHash,
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     time.Duration(cfg.AccessTTLMin) * time.Minute,
	}, workshops, dates, bookings, customers, logger), cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.Port
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
