package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestParseIngredients(t *testing.T) {
	rows, err := parseIngredients(strings.NewReader("name,measurement_unit\nflour, g\n\"salt, sea\",pinch\n"))
	require.NoError(t, err)
	assert.Equal(t, []ingredientRow{
		{Name: "flour", MeasurementUnit: "g"},
		{Name: "salt, sea", MeasurementUnit: "pinch"},
	}, rows)
}

func TestParseIngredientsWithoutHeader(t *testing.T) {
	rows, err := parseIngredients(strings.NewReader("sugar,g\n"))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestParseIngredientsRejectsBadRows(t *testing.T) {
	_, err := parseIngredients(strings.NewReader("flour,g\n,kg\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = parseIngredients(strings.NewReader("flour,g,extra\n"))
	assert.Error(t, err)
}

func TestLoadIngredientsSkipsDuplicates(t *testing.T) {
	pg := testhelpers.SetupPostgresDatabase(t)
	testhelpers.CreateIngredient(t, pg.DB, "flour", "g")

	sqlDB, err := pg.DB.DB()
	require.NoError(t, err)

	inserted, err := loadIngredients(context.Background(), sqlDB, []ingredientRow{
		{Name: "flour", MeasurementUnit: "kg"},
		{Name: "sugar", MeasurementUnit: "g"},
		{Name: "sugar", MeasurementUnit: "g"},
		{Name: "milk", MeasurementUnit: "ml"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, inserted)

	var count int64
	require.NoError(t, pg.DB.Table("ingredients").Count(&count).Error)
	assert.EqualValues(t, 3, count)
}
