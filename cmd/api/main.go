package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/pkg/logger"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

// @title                       Bookshelf API
// @version                     1.0
// @description                 Book catalog with reviews, wishlists and reading lists.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	log, err := logger.Init(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		logrus.WithError(err).Fatal("init logger")
	}
	log.WithFields(logrus.Fields{
		"port":     cfg.Server.Port,
		"mode":     cfg.Server.Mode,
		"database": cfg.Database.Host,
		"cache":    cfg.Cache.Enabled,
		"auth":     cfg.Auth.Enabled,
		"mq":       cfg.MQ.Enabled,
	}).Info("config loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Options{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.WithError(err).Fatal("init tracer")
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.WithError(err).Warn("flush traces")
		}
	}()

	app, cleanup, err := buildApp(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("build app")
		return
	}
	defer cleanup()

	if err := app.Run(ctx); err != nil {
		log.WithError(err).Error("http server stopped")
		return
	}
	log.Info("bye")
}
