package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const shoppingListFilename = "shopping_list.txt"

// RecipeHandler serves recipes, favorites and the shopping cart.
type RecipeHandler struct {
	recipes     *service.RecipeService
	memberships *service.MembershipService
	shopping    *service.ShoppingListService
	createLimit gin.HandlerFunc
	pages       Paginator
	log         *slog.Logger
}

// NewRecipeHandler builds the handler. createLimit guards recipe creation
// and may be nil.
func NewRecipeHandler(
	recipes *service.RecipeService,
	memberships *service.MembershipService,
	shopping *service.ShoppingListService,
	createLimit gin.HandlerFunc,
	pages Paginator,
	log *slog.Logger,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:     recipes,
		memberships: memberships,
		shopping:    shopping,
		createLimit: createLimit,
		pages:       pages,
		log:         log.With("component", "recipe_handler"),
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	create := []gin.HandlerFunc{middleware.RequireAuth()}
	if h.createLimit != nil {
		create = append(create, h.createLimit)
	}
	create = append(create, h.CreateRecipe)

	recipes := router.Group("/recipes")
	{
		recipes.GET("/", h.ListRecipes)
		recipes.POST("/", create...)
		recipes.GET("/download_shopping_cart/", middleware.RequireAuth(), h.DownloadShoppingCart)
		recipes.GET("/:id/", h.GetRecipe)
		recipes.PATCH("/:id/", h.UpdateRecipe)
		recipes.DELETE("/:id/", h.DeleteRecipe)
		recipes.POST("/:id/favorite/", middleware.RequireAuth(), h.addTo(models.RelationFavorite))
		recipes.DELETE("/:id/favorite/", middleware.RequireAuth(), h.removeFrom(models.RelationFavorite))
		recipes.POST("/:id/shopping_cart/", middleware.RequireAuth(), h.addTo(models.RelationCart))
		recipes.DELETE("/:id/shopping_cart/", middleware.RequireAuth(), h.removeFrom(models.RelationCart))
	}
}

// ListRecipes supports ?author=, repeated ?tags=, ?is_favorited=1 and
// ?is_in_shopping_cart=1 on top of pagination.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	req, err := h.pages.Request(c)
	if err != nil {
		fail(c, err)
		return
	}

	filter := types.RecipeFilter{
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
		PageRequest:      req,
	}
	if raw := c.Query("author"); raw != "" {
		author, err := uuid.Parse(raw)
		if err != nil {
			fail(c, apperrors.InvalidArgument("invalid filter").
				WithDetails(map[string]string{"author": "must be a valid id"}))
			return
		}
		filter.AuthorID = &author
	}

	recipes, total, err := h.recipes.ListRecipes(c.Request.Context(), middleware.ActorFrom(c), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, req, recipes, total))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), middleware.ActorFrom(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req types.UpdateRecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), middleware.ActorFrom(c), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) addTo(rel models.Relation) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		summary, err := h.memberships.Add(c.Request.Context(), middleware.ActorFrom(c), id, rel)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, summary)
	}
}

func (h *RecipeHandler) removeFrom(rel models.Relation) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		if err := h.memberships.Remove(c.Request.Context(), middleware.ActorFrom(c), id, rel); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DownloadShoppingCart sends the aggregated ingredients of the cart as a
// plain text attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	body, err := h.shopping.Build(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}
