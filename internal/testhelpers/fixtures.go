package testhelpers

import (
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// TestImage is a 1x1 PNG encoded as a data URI.
const TestImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// CreateUser inserts a user with a throwaway password hash.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    strings.ToUpper(username[:1]) + username[1:],
		LastName:     "Tester",
		PasswordHash: "not-a-real-hash",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// CreateAdmin inserts a user holding the admin role.
func CreateAdmin(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := CreateUser(t, db, username)
	if err := db.Model(user).Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("failed to promote %s: %v", username, err)
	}
	user.Role = models.RoleAdmin
	return user
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ingredient
}

func CreateTag(t *testing.T, db *gorm.DB, name, color, slug string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Color: color, Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create tag %s: %v", name, err)
	}
	return tag
}

// CreateRecipe inserts a recipe with the given ingredient amounts and tags.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, amounts map[*models.Ingredient]int, tags ...*models.Tag) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       "https://media.example.com/recipes/" + name + ".png",
		Text:        "Cook " + name,
		CookingTime: 10,
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}

	recipeID := recipe.ID
	for ingredient, amount := range amounts {
		ingredientID := ingredient.ID
		row := &models.RecipeIngredient{RecipeID: &recipeID, IngredientID: &ingredientID, Amount: amount}
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("failed to link ingredient %s: %v", ingredient.Name, err)
		}
	}
	for _, tag := range tags {
		tagID := tag.ID
		if err := db.Create(&models.RecipeTag{RecipeID: &recipeID, TagID: &tagID}).Error; err != nil {
			t.Fatalf("failed to link tag %s: %v", tag.Slug, err)
		}
	}
	return recipe
}

// AddToRelation puts recipe into the user's favorites or shopping cart.
func AddToRelation(t *testing.T, db *gorm.DB, relation models.Relation, user *models.User, recipe *models.Recipe) {
	t.Helper()
	if err := db.Create(relation.NewRow(user.ID, recipe.ID)).Error; err != nil {
		t.Fatalf("failed to add recipe to %s: %v", relation, err)
	}
}

// Follow makes follower subscribe to author.
func Follow(t *testing.T, db *gorm.DB, follower, author *models.User) {
	t.Helper()
	if err := db.Create(&models.Follow{UserID: follower.ID, AuthorID: author.ID}).Error; err != nil {
		t.Fatalf("failed to follow: %v", err)
	}
}
