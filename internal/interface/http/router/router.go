package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/interface/http/dto"
	"github.com/xiebiao/bookshelf/internal/interface/http/handler"
	"github.com/xiebiao/bookshelf/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/metrics"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// New builds the gin engine with every route of the service.
//
// Reads are public. Mutations go through RequireAuth, which is a no-op
// unless auth.enabled is set.
func New(
	cfg *config.Config,
	log *logrus.Logger,
	bookHandler *handler.BookHandler,
	auth *middleware.AuthMiddleware,
) (*gin.Engine, error) {
	gin.SetMode(cfg.Server.Mode)
	if err := dto.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(
		middleware.Logger(log),
		gin.Recovery(),
		middleware.Tracing(),
	)
	if cfg.Metrics.Enabled {
		metrics.InitMetrics()
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, apperrors.ErrNotFound)
	})

	v1 := r.Group("/api/v1")
	books := v1.Group("/books")
	{
		books.GET("", bookHandler.ListBooks)
		books.GET("/:id", bookHandler.GetBook)
	}

	write := books.Group("", auth.RequireAuth())
	{
		write.POST("", bookHandler.CreateBook)
		write.PATCH("/:id", bookHandler.UpdateBook)
		write.DELETE("/:id", bookHandler.DeleteBook)
		write.POST("/:id/reviews", bookHandler.AddReview)
		write.PUT("/:id/wishlist", bookHandler.ReplaceWishlist)
		write.DELETE("/:id/wishlist", bookHandler.RemoveMember)
		write.POST("/:id/read-soon", bookHandler.MoveReadingStatus(book.StatusReadSoon))
		write.POST("/:id/currently-reading", bookHandler.MoveReadingStatus(book.StatusCurrentlyReading))
		write.POST("/:id/finished", bookHandler.MoveReadingStatus(book.StatusFinished))
	}

	return r, nil
}
