//go:build wireinject
// +build wireinject

// Injector for `wire gen ./cmd/api`. It declares the same graph buildApp
// assembles by hand.

package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/sirupsen/logrus"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/interface/http/handler"
	"github.com/xiebiao/bookshelf/internal/interface/http/router"
)

var infrastructureSet = wire.NewSet(
	provideDB,
	provideBookRepository,
	provideCache,
	provideEvents,
)

var domainSet = wire.NewSet(
	book.NewService,
)

var applicationSet = wire.NewSet(
	provideSideEffects,
	appbook.NewListBooksUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewCreateBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appbook.NewAddReviewUseCase,
	appbook.NewReplaceWishlistUseCase,
	appbook.NewRemoveFromListsUseCase,
	appbook.NewMoveReadingStatusUseCase,
)

var interfaceSet = wire.NewSet(
	provideJWTManager,
	provideAuthMiddleware,
	handler.NewBookHandler,
	router.New,
	wire.Bind(new(http.Handler), new(*gin.Engine)),
	provideServer,
)

func InitializeApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		domainSet,
		applicationSet,
		interfaceSet,
		newApp,
	)
	return nil, nil, nil
}
