package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/infrastructure/messaging"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshelf/internal/interface/http/middleware"
	"github.com/xiebiao/bookshelf/pkg/jwt"
	"github.com/xiebiao/bookshelf/pkg/mq"
)

// Providers shared by the hand written wiring in main.go and the wire
// injector in wire.go. Each returns a cleanup func when it owns a resource.

func provideDB(cfg *config.Config, log *logrus.Logger) (*gorm.DB, func(), error) {
	db, err := mysql.NewDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

func provideBookRepository(db *gorm.DB) book.Repository {
	return mysql.NewBookRepository(db, mysql.NewTxManager(db))
}

// provideCache connects to Redis only when the cache is enabled.
func provideCache(ctx context.Context, cfg *config.Config, log *logrus.Logger) (book.Cache, func(), error) {
	if !cfg.Cache.Enabled {
		return book.NopCache{}, func() {}, nil
	}
	client, err := redis.NewClient(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return redis.NewBookCache(client, cfg.Cache), func() { _ = client.Close() }, nil
}

// provideEvents connects to the broker only when messaging is enabled.
func provideEvents(cfg *config.Config, log *logrus.Logger) (book.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return book.NopPublisher{}, func() {}, nil
	}
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, mq.ExchangeTopic, log)
	if err != nil {
		return nil, nil, fmt.Errorf("connect broker: %w", err)
	}
	return messaging.NewBookEventPublisher(publisher), func() { _ = publisher.Close() }, nil
}

func provideSideEffects(cache book.Cache, events book.EventPublisher, log *logrus.Logger) *appbook.SideEffects {
	return appbook.NewSideEffects(cache, events, log)
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.Auth.Secret,
		cfg.Auth.Issuer,
		cfg.Auth.AccessTokenExpire,
		cfg.Auth.RefreshTokenExpire,
	)
}

func provideAuthMiddleware(manager *jwt.Manager, cfg *config.Config) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(manager, cfg.Auth.Enabled)
}

func provideServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
