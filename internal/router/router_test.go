package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

const (
	testSecret = "router-test-secret"
	storedURL  = "https://media.example.com/recipes/stored.png"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	db     *gorm.DB
	router *gin.Engine
	store  *mocks.ImageStore
	auth   *service.AuthService
}

func setupApp(t *testing.T, createLimit int) *testApp {
	t.Helper()

	db := testhelpers.SetupTestDatabase(t)
	store := new(mocks.ImageStore)
	store.On("PutImage", mock.Anything, mock.AnythingOfType("string"), mock.Anything, "image/png").Return(storedURL, nil).Maybe()
	store.On("DeleteImage", mock.Anything, mock.Anything).Return(nil).Maybe()

	engine, err := router.SetupRouter(db, router.Options{
		JWTSecret:                testSecret,
		TokenTTL:                 time.Hour,
		PageSize:                 6,
		MaxPageSize:              50,
		SubscriptionRecipesLimit: 3,
		ShoppingListMaxRows:      100,
		MaxImageBytes:            1 << 20,
		Images:                   store,
		CreateLimits: middleware.NewLocalLimiter(middleware.RateLimitConfig{
			Window: time.Hour,
			Limit:  createLimit,
		}),
	}, logger.Discard())
	require.NoError(t, err)

	return &testApp{
		db:     db,
		router: engine,
		store:  store,
		auth:   service.NewAuthService(repository.New(db), testSecret, time.Hour, logger.Discard()),
	}
}

func (a *testApp) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := a.auth.GenerateToken(user)
	require.NoError(t, err)
	return token
}

// do sends a request with an optional JSON body and bearer token.
func (a *testApp) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func recipePayload(name string, ingredient *models.Ingredient, amount int, tag *models.Tag) map[string]any {
	return map[string]any{
		"name":         name,
		"text":         "Mix and bake.",
		"cooking_time": 30,
		"image":        testhelpers.TestImage,
		"ingredients":  []map[string]any{{"id": ingredient.ID, "amount": amount}},
		"tags":         []string{tag.ID.String()},
	}
}

func TestHealth(t *testing.T) {
	app := setupApp(t, 10)

	for _, path := range []string{"/health", "/api/health"} {
		w := app.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		body := decode(t, w)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "up", body["database"])
	}
}

func TestRegisterLoginAndMe(t *testing.T) {
	app := setupApp(t, 10)

	w := app.do(t, http.MethodPost, "/api/users/", map[string]any{
		"email":      "Cook@Example.com",
		"username":   "cook",
		"first_name": "Casey",
		"last_name":  "Cook",
		"password":   "s3cret-pass",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "cook@example.com", created["email"])
	assert.NotContains(t, created, "password")

	w = app.do(t, http.MethodPost, "/api/auth/token/login/", map[string]any{
		"email": "cook@example.com", "password": "wrong-pass",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPost, "/api/auth/token/login/", map[string]any{
		"email": "cook@example.com", "password": "s3cret-pass",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decode(t, w)["auth_token"].(string)
	require.NotEmpty(t, token)

	w = app.do(t, http.MethodGet, "/api/users/me/", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cook", decode(t, w)["username"])

	w = app.do(t, http.MethodPost, "/api/auth/token/logout/", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := setupApp(t, 10)
	testhelpers.CreateUser(t, app.db, "taken")

	w := app.do(t, http.MethodPost, "/api/users/", map[string]any{
		"email":      "taken@example.com",
		"username":   "other",
		"first_name": "O",
		"last_name":  "T",
		"password":   "s3cret-pass",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	app := setupApp(t, 10)

	w := app.do(t, http.MethodPost, "/api/users/", map[string]any{"email": "not-an-email"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	details, ok := body["details"].(map[string]any)
	require.True(t, ok, w.Body.String())
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
}

func TestAuthenticationRequired(t *testing.T) {
	app := setupApp(t, 10)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/users/me/"},
		{http.MethodGet, "/api/users/subscriptions/"},
		{http.MethodPost, "/api/recipes/"},
		{http.MethodGet, "/api/recipes/download_shopping_cart/"},
	}
	for _, tt := range tests {
		w := app.do(t, tt.method, tt.path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, tt.path)
	}

	w := app.do(t, http.MethodGet, "/api/recipes/", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecipeLifecycle(t *testing.T) {
	app := setupApp(t, 10)
	author := testhelpers.CreateUser(t, app.db, "author")
	stranger := testhelpers.CreateUser(t, app.db, "stranger")
	flour := testhelpers.CreateIngredient(t, app.db, "flour", "g")
	tag := testhelpers.CreateTag(t, app.db, "Breakfast", "#E26C2D", "breakfast")
	token := app.tokenFor(t, author)

	w := app.do(t, http.MethodPost, "/api/recipes/", recipePayload("Pancakes", flour, 200, tag), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	id := created["id"].(string)
	assert.Equal(t, storedURL, created["image"])
	assert.Len(t, created["ingredients"], 1)

	w = app.do(t, http.MethodGet, "/api/recipes/"+id+"/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pancakes", decode(t, w)["name"])

	w = app.do(t, http.MethodPatch, "/api/recipes/"+id+"/", map[string]any{"name": "Stolen"}, app.tokenFor(t, stranger))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodPatch, "/api/recipes/"+id+"/", map[string]any{"cooking_time": 45}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 45, decode(t, w)["cooking_time"])

	w = app.do(t, http.MethodPost, "/api/recipes/", recipePayload("Pancakes", flour, 100, tag), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodDelete, "/api/recipes/"+id+"/", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = app.do(t, http.MethodGet, "/api/recipes/"+id+"/", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMalformedIDIsNotFound(t *testing.T) {
	app := setupApp(t, 10)

	for _, path := range []string{"/api/recipes/nope/", "/api/users/nope/", "/api/tags/nope/", "/api/ingredients/nope/"} {
		w := app.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestFavoritesAndShoppingCart(t *testing.T) {
	app := setupApp(t, 10)
	author := testhelpers.CreateUser(t, app.db, "author")
	viewer := testhelpers.CreateUser(t, app.db, "viewer")
	flour := testhelpers.CreateIngredient(t, app.db, "flour", "g")
	sugar := testhelpers.CreateIngredient(t, app.db, "sugar", "g")
	bread := testhelpers.CreateRecipe(t, app.db, author, "Bread", map[*models.Ingredient]int{flour: 200})
	cake := testhelpers.CreateRecipe(t, app.db, author, "Cake", map[*models.Ingredient]int{flour: 100, sugar: 50})
	token := app.tokenFor(t, viewer)

	w := app.do(t, http.MethodPost, "/api/recipes/"+bread.ID.String()+"/favorite/", nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Bread", decode(t, w)["name"])

	w = app.do(t, http.MethodPost, "/api/recipes/"+bread.ID.String()+"/favorite/", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodGet, "/api/recipes/?is_favorited=1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = app.do(t, http.MethodGet, "/api/recipes/?is_favorited=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["count"])

	w = app.do(t, http.MethodDelete, "/api/recipes/"+bread.ID.String()+"/favorite/", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = app.do(t, http.MethodDelete, "/api/recipes/"+bread.ID.String()+"/favorite/", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, r := range []*models.Recipe{cake, bread} {
		w = app.do(t, http.MethodPost, "/api/recipes/"+r.ID.String()+"/shopping_cart/", nil, token)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = app.do(t, http.MethodGet, "/api/recipes/download_shopping_cart/", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t, `attachment; filename="shopping_list.txt"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Foodgram\nShopping list\nflour - 300 g\nsugar - 50 g\n", w.Body.String())
}

func TestRecipeListPagination(t *testing.T) {
	app := setupApp(t, 10)
	author := testhelpers.CreateUser(t, app.db, "author")
	for i := 0; i < 5; i++ {
		testhelpers.CreateRecipe(t, app.db, author, fmt.Sprintf("Dish %d", i), nil)
	}

	w := app.do(t, http.MethodGet, "/api/recipes/?limit=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	first := decode(t, w)
	assert.EqualValues(t, 5, first["count"])
	assert.Len(t, first["results"], 2)
	assert.Nil(t, first["previous"])
	assert.Equal(t, "http://example.com/api/recipes/?limit=2&page=2", first["next"])

	w = app.do(t, http.MethodGet, "/api/recipes/?limit=2&page=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	second := decode(t, w)
	assert.Equal(t, "http://example.com/api/recipes/?limit=2", second["previous"])

	w = app.do(t, http.MethodGet, "/api/recipes/?limit=2&page=3", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	third := decode(t, w)
	assert.Len(t, third["results"], 1)
	assert.Nil(t, third["next"])

	w = app.do(t, http.MethodGet, "/api/recipes/?page=0", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, http.MethodGet, "/api/recipes/?author=not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecipeListTagFilter(t *testing.T) {
	app := setupApp(t, 10)
	author := testhelpers.CreateUser(t, app.db, "author")
	breakfast := testhelpers.CreateTag(t, app.db, "Breakfast", "#E26C2D", "breakfast")
	lunch := testhelpers.CreateTag(t, app.db, "Lunch", "#49B64E", "lunch")
	testhelpers.CreateRecipe(t, app.db, author, "Omelette", nil, breakfast)
	testhelpers.CreateRecipe(t, app.db, author, "Brunch", nil, breakfast, lunch)

	w := app.do(t, http.MethodGet, "/api/recipes/?tags=breakfast&tags=lunch", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.EqualValues(t, 1, body["count"])
	results := body["results"].([]any)
	assert.Equal(t, "Brunch", results[0].(map[string]any)["name"])
}

func TestRecipeCreateRateLimited(t *testing.T) {
	app := setupApp(t, 1)
	author := testhelpers.CreateUser(t, app.db, "author")
	flour := testhelpers.CreateIngredient(t, app.db, "flour", "g")
	tag := testhelpers.CreateTag(t, app.db, "Breakfast", "#E26C2D", "breakfast")
	token := app.tokenFor(t, author)

	w := app.do(t, http.MethodPost, "/api/recipes/", recipePayload("First", flour, 10, tag), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = app.do(t, http.MethodPost, "/api/recipes/", recipePayload("Second", flour, 10, tag), token)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestSubscriptions(t *testing.T) {
	app := setupApp(t, 10)
	follower := testhelpers.CreateUser(t, app.db, "follower")
	author := testhelpers.CreateUser(t, app.db, "author")
	for i := 0; i < 4; i++ {
		testhelpers.CreateRecipe(t, app.db, author, fmt.Sprintf("Dish %d", i), nil)
	}
	token := app.tokenFor(t, follower)

	w := app.do(t, http.MethodPost, "/api/users/"+follower.ID.String()+"/subscribe/", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPost, "/api/users/"+author.ID.String()+"/subscribe/?recipes_limit=2", nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decode(t, w)
	assert.Equal(t, true, item["is_subscribed"])
	assert.EqualValues(t, 4, item["recipes_count"])
	assert.Len(t, item["recipes"], 2)

	w = app.do(t, http.MethodPost, "/api/users/"+author.ID.String()+"/subscribe/", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodGet, "/api/users/"+author.ID.String()+"/", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["is_subscribed"])

	w = app.do(t, http.MethodGet, "/api/users/subscriptions/", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.EqualValues(t, 1, page["count"])
	first := page["results"].([]any)[0].(map[string]any)
	assert.Len(t, first["recipes"], 3)

	w = app.do(t, http.MethodDelete, "/api/users/"+author.ID.String()+"/subscribe/", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = app.do(t, http.MethodDelete, "/api/users/"+author.ID.String()+"/subscribe/", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserAdministration(t *testing.T) {
	app := setupApp(t, 10)
	admin := testhelpers.CreateAdmin(t, app.db, "admin")
	user := testhelpers.CreateUser(t, app.db, "plain")

	w := app.do(t, http.MethodPatch, "/api/users/"+user.ID.String()+"/", map[string]any{"first_name": "Changed"}, app.tokenFor(t, user))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodPatch, "/api/users/"+user.ID.String()+"/", map[string]any{"first_name": "Changed"}, app.tokenFor(t, admin))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Changed", decode(t, w)["first_name"])

	w = app.do(t, http.MethodGet, "/api/users/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["count"])

	w = app.do(t, http.MethodDelete, "/api/users/"+user.ID.String()+"/", nil, app.tokenFor(t, admin))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = app.do(t, http.MethodGet, "/api/users/"+user.ID.String()+"/", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetPassword(t *testing.T) {
	app := setupApp(t, 10)
	hash, err := service.HashPassword("old-password")
	require.NoError(t, err)
	user := testhelpers.CreateUser(t, app.db, "changer")
	require.NoError(t, app.db.Model(user).Update("password_hash", hash).Error)
	token := app.tokenFor(t, user)

	w := app.do(t, http.MethodPost, "/api/users/set_password/", map[string]any{
		"current_password": "wrong-password", "new_password": "new-password",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPost, "/api/users/set_password/", map[string]any{
		"current_password": "old-password", "new_password": "new-password",
	}, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = app.do(t, http.MethodPost, "/api/auth/token/login/", map[string]any{
		"email": "changer@example.com", "password": "new-password",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCatalog(t *testing.T) {
	app := setupApp(t, 10)
	testhelpers.CreateIngredient(t, app.db, "brown sugar", "g")
	sugar := testhelpers.CreateIngredient(t, app.db, "sugar", "g")
	testhelpers.CreateIngredient(t, app.db, "salt", "g")
	tag := testhelpers.CreateTag(t, app.db, "Dinner", "#8775D2", "dinner")

	w := app.do(t, http.MethodGet, "/api/ingredients/?name=sug", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var ingredients []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ingredients))
	require.Len(t, ingredients, 2)
	assert.Equal(t, "sugar", ingredients[0]["name"])
	assert.Equal(t, "brown sugar", ingredients[1]["name"])

	w = app.do(t, http.MethodGet, "/api/ingredients/"+sugar.ID.String()+"/", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/api/tags/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dinner")

	w = app.do(t, http.MethodGet, "/api/tags/"+tag.ID.String()+"/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "#8775D2", decode(t, w)["color"])
}
