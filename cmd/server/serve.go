package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sincarebunch/barbershop-api/internal/config"
	"github.com/sincarebunch/barbershop-api/internal/database"
	"github.com/sincarebunch/barbershop-api/internal/handler"
	"github.com/sincarebunch/barbershop-api/internal/logger"
	"github.com/sincarebunch/barbershop-api/internal/middleware"
	"github.com/sincarebunch/barbershop-api/internal/queue"
	"github.com/sincarebunch/barbershop-api/internal/repository"
	"github.com/sincarebunch/barbershop-api/internal/router"
	"github.com/sincarebunch/barbershop-api/internal/service"
	"github.com/sincarebunch/barbershop-api/internal/utils"
)

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, closeLog, err := logger.New(cfg.Log.Level, cfg.Log.Dir)
	if err != nil {
		return err
	}
	defer closeLog()

	db, err := database.Open(cfg.DB.DSN(false))
	if err != nil {
		log.Error("database connect failed", zap.Error(err))
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	issuer, err := utils.LoadTokenIssuer(cfg.Auth.PrivateKeyPath, cfg.Auth.PublicKeyPath, cfg.Auth.AccessTTL())
	if err != nil {
		log.Error("load signing keys failed", zap.Error(err))
		return err
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db, cfg.Auth.RefreshTTL())
	hasher := utils.NewBcryptHasher(cfg.Auth.BcryptCost)

	var events service.EventPublisher
	if cfg.RabbitURL != "" {
		events = queue.NewPublisher(cfg.RabbitURL, log)
		consumer := queue.NewConsumer(cfg.RabbitURL, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("registration consumer stopped", zap.Error(err))
			}
		}()
	} else {
		log.Info("RABBITMQ_URL not set, registration events disabled")
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	authSvc := service.NewAuthService(users, tokens, hasher, events, log)
	userSvc := service.NewUserService(users, hasher)

	e := echo.New()
	router.Configure(e, cfg.CORSOrigins, log)
	router.RegisterRoutes(e, handler.NewBaseHandler(cfg.Version, db))
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc, issuer, log), middleware.NewTokenBucket(cfg.RateLimit, rdb, log))
	router.RegisterUser(e, handler.NewUserHandler(userSvc, log), issuer)
	router.RegisterAdmin(e, handler.NewLogsHandler(logger.Path(cfg.Log.Dir), log), issuer)

	go func() {
		<-ctx.Done()
		_ = e.Close()
	}()

	log.Info("listening", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env))
	if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}
