// Command events-tail binds a queue to the book event exchange and logs
// every event it receives. Handy for checking what the API publishes.
//
//	go run ./cmd/events-tail -keys 'book.reading_status_changed'
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/infrastructure/messaging"
	"github.com/xiebiao/bookshelf/pkg/logger"
	"github.com/xiebiao/bookshelf/pkg/mq"
)

func main() {
	queue := flag.String("queue", "bookshelf.events-tail", "queue to declare and bind")
	keys := flag.String("keys", messaging.RoutingKeyPrefix+"#", "comma separated binding keys")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log, err := logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		logrus.WithError(err).Fatal("init logger")
	}

	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, mq.ExchangeTopic, *queue, strings.Split(*keys, ","), log)
	if err != nil {
		log.WithError(err).Fatal("connect broker")
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{"exchange": cfg.MQ.Exchange, "queue": *queue, "keys": *keys}).Info("tailing book events")
	if err := consumer.Consume(ctx, messaging.LogBookEvents(log)); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("consumer stopped")
	}
}
