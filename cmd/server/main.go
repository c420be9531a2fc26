package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/herbvita/shop_backend/internal/config"
	"github.com/herbvita/shop_backend/internal/es"
	"github.com/herbvita/shop_backend/internal/handlers"
	"github.com/herbvita/shop_backend/internal/logging"
	"github.com/herbvita/shop_backend/internal/mail"
	mw "github.com/herbvita/shop_backend/internal/middleware/auth"
	"github.com/herbvita/shop_backend/internal/middleware/csrf"
	"github.com/herbvita/shop_backend/internal/middleware/loggingmw"
	"github.com/herbvita/shop_backend/internal/mykafka"
	"github.com/herbvita/shop_backend/internal/service/referral"
	"github.com/herbvita/shop_backend/internal/service/settlement"
	"github.com/herbvita/shop_backend/internal/service/token"
	httpserver "github.com/herbvita/shop_backend/internal/transport/http"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LOG_LEVEL)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	prod := mykafka.NewProducer(config.CSV(cfg.KAFKA_ADDRESS))

	esClient, err := es.NewClient(cfg)
	if err != nil {
		log.Fatalf("elasticsearch init: %v", err)
	}

	tokens := token.NewService([]byte(cfg.JWT_SECRET), []byte(cfg.REFRESH_SECRET), cfg.IsProduction())
	referrals := &referral.Service{DB: db, WithdrawalMin: cfg.WITHDRAWAL_MIN}
	orders := &settlement.Service{DB: db}
	mailer := mail.NewEmailService(cfg)
	gate := mw.NewGate(tokens)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpserver.NewValidator()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     []string{cfg.FRONTEND_URL},
			AllowCredentials: true,
		}),
		loggingmw.RequestLogger(logger),
		csrf.Middleware(csrf.Config{
			Secure: cfg.IsProduction(),
			SkipPaths: []string{
				"/health",
				"/api/auth",
				"/api/newsletter",
				"/api/contact",
				"/api/chatbot",
			},
		}),
	)

	deps := httpserver.Deps{
		Gate: gate,
		Auth: &handlers.AuthHandler{
			DB: db, Tokens: tokens, Referrals: referrals,
			Mailer: mailer, Producer: prod, FrontendURL: cfg.FRONTEND_URL,
		},
		Referral:     &handlers.ReferralHandler{Svc: referrals, Producer: prod},
		Order:        &handlers.OrderHandler{Svc: orders, Producer: prod},
		AdminOrder:   &handlers.AdminOrderHandler{DB: db, Svc: orders, Mailer: mailer, Producer: prod},
		AdminUser:    &handlers.AdminUserHandler{DB: db, Producer: prod},
		Notification: &handlers.NotificationHandler{DB: db},
		Product:      &handlers.ProductHandler{DB: db, Producer: prod},
		Cart:         &handlers.CartHandler{DB: db, Producer: prod},
		Review:       &handlers.ReviewHandler{DB: db},
		BlogPost:     &handlers.BlogPostHandler{DB: db},
		Subscription: &handlers.SubscriptionHandler{DB: db},
		Distributor:  &handlers.DistributorHandler{DB: db},
		Newsletter:   &handlers.NewsletterHandler{DB: db, Mailer: mailer},
		Contact:      &handlers.ContactHandler{DB: db, Mailer: mailer},
		Chatbot:      handlers.NewChatbotHandler(db, cfg.CHATBOT_API_URL, cfg.CHATBOT_API_KEY),
		Search:       handlers.NewSearchHandler(esClient, "products"),
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
