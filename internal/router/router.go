package router

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/events"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// Options carries everything the router needs beyond the database.
type Options struct {
	JWTSecret                string
	TokenTTL                 time.Duration
	PageSize                 int
	MaxPageSize              int
	SubscriptionRecipesLimit int
	ShoppingListMaxRows      int
	MaxImageBytes            int64
	CORSAllowedOrigins       []string

	Images       service.ImageStore
	Publisher    events.Publisher
	CreateLimits middleware.Limiter
}

// SetupRouter wires services and handlers and returns the engine. All API
// routes live under /api.
func SetupRouter(db *gorm.DB, opts Options, log *slog.Logger) (*gin.Engine, error) {
	if err := validation.RegisterBindings(); err != nil {
		return nil, err
	}

	repo := repository.New(db)

	auth := service.NewAuthService(repo, opts.JWTSecret, opts.TokenTTL, log)
	users := service.NewUserService(repo, log)
	follows := service.NewFollowService(repo, opts.Publisher, opts.SubscriptionRecipesLimit, log)
	images := service.NewImageService(opts.Images, opts.MaxImageBytes, log)
	recipes := service.NewRecipeService(repo, images, opts.Publisher, log)
	memberships := service.NewMembershipService(repo, log)
	shopping := service.NewShoppingListService(repo, opts.ShoppingListMaxRows, log)
	catalog := service.NewCatalogService(repo)

	router := gin.New()
	router.Use(
		middleware.Recovery(log),
		middleware.CORS(opts.CORSAllowedOrigins),
		middleware.RequestLogger(log),
		middleware.ErrorHandler(log),
		middleware.Authenticate(auth),
	)

	api.NewHealthHandler(db, log).RegisterRoutes(router)

	var createLimit gin.HandlerFunc
	if opts.CreateLimits != nil {
		createLimit = middleware.RateLimit(opts.CreateLimits, log)
	}
	pages := api.Paginator{DefaultLimit: opts.PageSize, MaxLimit: opts.MaxPageSize}

	group := router.Group("/api")
	api.NewAuthHandler(auth, log).RegisterRoutes(group)
	api.NewUserHandler(auth, users, follows, pages, log).RegisterRoutes(group)
	api.NewRecipeHandler(recipes, memberships, shopping, createLimit, pages, log).RegisterRoutes(group)
	api.NewCatalogHandler(catalog).RegisterRoutes(group)

	return router, nil
}
