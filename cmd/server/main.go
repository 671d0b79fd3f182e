package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"user-admin-service/internal/app"
	"user-admin-service/internal/auth"
	"user-admin-service/internal/config"
	"user-admin-service/internal/database"
	"user-admin-service/internal/handler"
	"user-admin-service/internal/mail"
	"user-admin-service/internal/middleware"
	"user-admin-service/internal/queue"
	"user-admin-service/internal/repository"
	"user-admin-service/internal/router"
	"user-admin-service/internal/token"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)

	issuer := token.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	cookies := auth.NewCookieManager(cfg.Env == "prod", cfg.RefreshTokenTTL)
	mailer := mail.NewQueueMailer(mail.BrokerURL(), cfg.BaseURL, cfg.Brand)

	svc := auth.NewService(users, roles, mailer, issuer, auth.Config{
		AdminRole:            cfg.AdminRole,
		UserRole:             cfg.UserRole,
		BcryptCost:           cfg.BcryptCost,
		CanDeleteSelfAccount: cfg.CanDeleteSelfAccount,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := app.Initialize(ctx, roles, users, app.Seed{
		AdminRole:     cfg.AdminRole,
		UserRole:      cfg.UserRole,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		BcryptCost:    cfg.BcryptCost,
	}); err != nil {
		log.Fatalf("seed: %v", err)
	}
	cancel()

	// Drain the outbound mail queue in the background; reconnects on its own.
	go queue.StartMailConsumer(mail.BrokerURL())

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting disabled")
	}
	limiter := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Cfg:     cfg,
		Issuer:  issuer,
		Auth:    handler.NewAuthHandler(svc, cookies),
		Users:   handler.NewUserHandler(svc, users, roles, cfg.BcryptCost),
		Roles:   handler.NewRoleHandler(roles),
		Links:   handler.NewLinkHandler(svc, cookies, cfg.FrontendURL),
		Limiter: limiter,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
