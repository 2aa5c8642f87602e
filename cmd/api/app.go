package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/interface/http/handler"
	"github.com/xiebiao/bookshelf/internal/interface/http/router"
)

// App is the assembled HTTP service.
type App struct {
	cfg    *config.Config
	log    *logrus.Logger
	server *http.Server
}

func newApp(cfg *config.Config, log *logrus.Logger, server *http.Server) *App {
	return &App{cfg: cfg, log: log, server: server}
}

// buildApp wires the dependency graph by hand. wire.go declares the same
// graph for `wire gen`.
func buildApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*App, func(), error) {
		cleanup()
		return nil, nil, err
	}

	db, closeDB, err := provideDB(cfg, log)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeDB)

	cache, closeCache, err := provideCache(ctx, cfg, log)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeCache)

	events, closeEvents, err := provideEvents(cfg, log)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeEvents)

	svc := book.NewService(provideBookRepository(db))
	effects := provideSideEffects(cache, events, log)

	bookHandler := handler.NewBookHandler(
		appbook.NewListBooksUseCase(svc),
		appbook.NewGetBookUseCase(svc, effects),
		appbook.NewCreateBookUseCase(svc, effects),
		appbook.NewUpdateBookUseCase(svc, effects),
		appbook.NewDeleteBookUseCase(svc, effects),
		appbook.NewAddReviewUseCase(svc, effects),
		appbook.NewReplaceWishlistUseCase(svc, effects),
		appbook.NewRemoveFromListsUseCase(svc, effects),
		appbook.NewMoveReadingStatusUseCase(svc, effects),
	)
	engine, err := router.New(cfg, log, bookHandler, provideAuthMiddleware(provideJWTManager(cfg), cfg))
	if err != nil {
		return fail(err)
	}

	return newApp(cfg, log, provideServer(cfg, engine)), cleanup, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most server.shutdown_timeout.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("addr", a.server.Addr).Info("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
