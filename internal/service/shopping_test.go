package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestAggregateShoppingListSumsByIngredient(t *testing.T) {
	flour, sugar := uuid.New(), uuid.New()
	recipeA, recipeB := uuid.New(), uuid.New()

	rows := []repository.CartIngredientRow{
		{RecipeID: recipeB, IngredientID: sugar, Name: "sugar", MeasurementUnit: "g", Amount: 50},
		{RecipeID: recipeA, IngredientID: flour, Name: "flour", MeasurementUnit: "g", Amount: 200},
		{RecipeID: recipeB, IngredientID: flour, Name: "flour", MeasurementUnit: "g", Amount: 100},
	}
	reversed := []repository.CartIngredientRow{rows[2], rows[1], rows[0]}

	want := []service.ShoppingLine{
		{IngredientID: flour, Name: "flour", MeasurementUnit: "g", Total: 300},
		{IngredientID: sugar, Name: "sugar", MeasurementUnit: "g", Total: 50},
	}
	assert.Equal(t, want, service.AggregateShoppingList(rows))
	assert.Equal(t, want, service.AggregateShoppingList(reversed))
}

func TestAggregateShoppingListKeepsSameNamedIngredientsApart(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	rows := []repository.CartIngredientRow{
		{IngredientID: a, Name: "salt", MeasurementUnit: "g", Amount: 5},
		{IngredientID: b, Name: "salt", MeasurementUnit: "pinch", Amount: 1},
		{IngredientID: uuid.Nil, Name: "", Amount: 9},
	}

	lines := service.AggregateShoppingList(rows)
	require.Len(t, lines, 2)
	assert.NotEqual(t, lines[0].IngredientID, lines[1].IngredientID)
	assert.True(t, lines[0].IngredientID.String() < lines[1].IngredientID.String())
}

func TestRenderShoppingList(t *testing.T) {
	assert.Equal(t, "Foodgram\nShopping list\n", service.RenderShoppingList(nil))

	text := service.RenderShoppingList([]service.ShoppingLine{
		{Name: "flour", MeasurementUnit: "g", Total: 300},
		{Name: "sugar", MeasurementUnit: "g", Total: 50},
	})
	assert.Equal(t, "Foodgram\nShopping list\nflour - 300 g\nsugar - 50 g\n", text)
}

func TestShoppingListBuild(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	repo := repository.New(db)
	svc := service.NewShoppingListService(repo, 100, logger.Discard())
	ctx := context.Background()

	cook := testhelpers.CreateUser(t, db, "cook")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	sugar := testhelpers.CreateIngredient(t, db, "sugar", "g")
	bread := testhelpers.CreateRecipe(t, db, cook, "Bread", map[*models.Ingredient]int{flour: 200})
	cake := testhelpers.CreateRecipe(t, db, cook, "Cake", map[*models.Ingredient]int{flour: 100, sugar: 50})

	text, err := svc.Build(ctx, actorOf(cook))
	require.NoError(t, err)
	assert.Equal(t, service.ShoppingListHeader, text)

	testhelpers.AddToRelation(t, db, models.RelationCart, cook, bread)
	testhelpers.AddToRelation(t, db, models.RelationCart, cook, cake)

	text, err = svc.Build(ctx, actorOf(cook))
	require.NoError(t, err)
	assert.Equal(t, "Foodgram\nShopping list\nflour - 300 g\nsugar - 50 g\n", text)
}

func TestShoppingListTooLarge(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewShoppingListService(repository.New(db), 1, logger.Discard())

	cook := testhelpers.CreateUser(t, db, "cook")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	sugar := testhelpers.CreateIngredient(t, db, "sugar", "g")
	cake := testhelpers.CreateRecipe(t, db, cook, "Cake", map[*models.Ingredient]int{flour: 100, sugar: 50})
	testhelpers.AddToRelation(t, db, models.RelationCart, cook, cake)

	_, err := svc.Build(context.Background(), actorOf(cook))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument), "got %v", err)
}

func TestShoppingListRequiresActor(t *testing.T) {
	svc := service.NewShoppingListService(repository.New(testhelpers.SetupTestDatabase(t)), 10, logger.Discard())

	_, err := svc.Build(context.Background(), nil)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
}
