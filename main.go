package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"vegorder/internal/config"
	"vegorder/internal/database"
	"vegorder/internal/handlers"
	"vegorder/internal/middleware"
	"vegorder/internal/notify"
	"vegorder/internal/orders"
	"vegorder/internal/port"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	client, err := database.Connect(connectCtx, cfg.MongoURI)
	cancel()
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Println("MongoDB disconnect:", err)
		}
	}()

	db := client.Database(cfg.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureCollections(ctx, db); err != nil {
		log.Fatal(err)
	}
	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("⚠️ product index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("⚠️ order index warning: %v", err)
	}
	if err := database.EnsureOrderItemIndexes(db); err != nil {
		log.Printf("⚠️ order item index warning: %v", err)
	}
	if err := database.EnsureEmailFailureIndexes(db); err != nil {
		log.Printf("⚠️ email failure index warning: %v", err)
	}

	store := database.NewStore(db)
	service := orders.NewService(store, newNotifier(cfg), orders.Config{
		TxTimeout:     cfg.TxTimeout,
		NotifyTimeout: cfg.NotifyTimeout,
	})

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())

	handlers.RegisterRoutes(r, handlers.Deps{
		Health:    store,
		Orders:    service,
		OrderRepo: database.NewOrderRepository(db),
		Products:  database.NewProductRepository(db),
		JWTSecret: cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Println("listening on", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("shutdown:", err)
	}
}

func newNotifier(cfg config.Config) port.OrderNotifier {
	if !cfg.MailConfigured() {
		log.Println("⚠️ SMTP not configured, order emails will be recorded as failures")
	}

	mailer := notify.NewMailer(notify.MailerConfig{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		Username:   cfg.SMTPUser,
		Password:   cfg.SMTPPass,
		FromEmail:  cfg.FromEmail,
		FromName:   cfg.FromName,
		Recipients: cfg.OrderRecipients,
		Timeout:    cfg.NotifyTimeout,
	})

	return notify.NewBreaker(mailer, notify.BreakerConfig{
		MaxFailures: uint32(cfg.BreakerMaxFailures),
		OpenFor:     cfg.BreakerOpen,
	})
}
