package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserHandler serves registration, profiles and subscriptions.
type UserHandler struct {
	auth    *service.AuthService
	users   *service.UserService
	follows *service.FollowService
	pages   Paginator
	log     *slog.Logger
}

func NewUserHandler(auth *service.AuthService, users *service.UserService, follows *service.FollowService, pages Paginator, log *slog.Logger) *UserHandler {
	return &UserHandler{
		auth:    auth,
		users:   users,
		follows: follows,
		pages:   pages,
		log:     log.With("component", "user_handler"),
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("/", h.ListUsers)
		users.POST("/", h.Register)
		users.GET("/me/", middleware.RequireAuth(), h.Me)
		users.POST("/set_password/", middleware.RequireAuth(), h.SetPassword)
		users.GET("/subscriptions/", middleware.RequireAuth(), h.ListSubscriptions)
		users.GET("/:id/", h.GetUser)
		users.PATCH("/:id/", h.UpdateUser)
		users.DELETE("/:id/", h.DeleteUser)
		users.POST("/:id/subscribe/", middleware.RequireAuth(), h.Subscribe)
		users.DELETE("/:id/subscribe/", middleware.RequireAuth(), h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	req, err := h.pages.Request(c)
	if err != nil {
		fail(c, err)
		return
	}

	users, total, err := h.users.List(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, req, users, total))
}

// Register creates an account. The response never carries the password.
func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	h.log.Info("user registered", "user_id", user.ID)
	c.JSON(http.StatusCreated, types.NewUserResponse(user, false))
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.Me(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	actor := middleware.ActorFrom(c)
	if err := h.auth.SetPassword(c.Request.Context(), actor.ID, req.CurrentPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req types.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Update(c.Request.Context(), middleware.ActorFrom(c), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	req, err := h.pages.Request(c)
	if err != nil {
		fail(c, err)
		return
	}

	items, total, err := h.follows.ListSubscriptions(c.Request.Context(), middleware.ActorFrom(c), req, recipesLimit(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, req, items, total))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	item, err := h.follows.Subscribe(c.Request.Context(), middleware.ActorFrom(c), id, recipesLimit(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.follows.Unsubscribe(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// recipesLimit reads ?recipes_limit=. Zero lets the service apply its
// default.
func recipesLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || n < 1 {
		return 0
	}
	return n
}
