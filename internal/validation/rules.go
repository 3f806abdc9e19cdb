package validation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/types"
)

// MaxNameLength bounds recipe names.
const MaxNameLength = 200

// Rule checks one field of T and returns a message when it is invalid.
type Rule[T any] struct {
	Field string
	Check func(*T) string
}

// Apply runs every rule in order and returns an InvalidArgument error
// listing each failing field, or nil.
func Apply[T any](v *T, rules []Rule[T]) error {
	details := map[string]string{}
	for _, rule := range rules {
		if _, seen := details[rule.Field]; seen {
			continue
		}
		if msg := rule.Check(v); msg != "" {
			details[rule.Field] = msg
		}
	}
	if len(details) == 0 {
		return nil
	}
	return apperrors.InvalidArgument("invalid recipe").WithDetails(details)
}

// CreateRecipeRules validates a full recipe payload.
var CreateRecipeRules = []Rule[types.CreateRecipeRequest]{
	{Field: "name", Check: func(r *types.CreateRecipeRequest) string { return checkName(r.Name) }},
	{Field: "text", Check: func(r *types.CreateRecipeRequest) string { return checkText(r.Text) }},
	{Field: "cooking_time", Check: func(r *types.CreateRecipeRequest) string { return checkCookingTime(r.CookingTime) }},
	{Field: "image", Check: func(r *types.CreateRecipeRequest) string { return checkImage(r.Image) }},
	{Field: "ingredients", Check: func(r *types.CreateRecipeRequest) string { return checkIngredients(r.Ingredients) }},
	{Field: "tags", Check: func(r *types.CreateRecipeRequest) string { return checkTags(r.Tags) }},
}

// UpdateRecipeRules validates only the fields present in a partial update.
var UpdateRecipeRules = []Rule[types.UpdateRecipeRequest]{
	{Field: "name", Check: func(r *types.UpdateRecipeRequest) string {
		if r.Name == nil {
			return ""
		}
		return checkName(*r.Name)
	}},
	{Field: "text", Check: func(r *types.UpdateRecipeRequest) string {
		if r.Text == nil {
			return ""
		}
		return checkText(*r.Text)
	}},
	{Field: "cooking_time", Check: func(r *types.UpdateRecipeRequest) string {
		if r.CookingTime == nil {
			return ""
		}
		return checkCookingTime(*r.CookingTime)
	}},
	{Field: "image", Check: func(r *types.UpdateRecipeRequest) string {
		if r.Image == nil {
			return ""
		}
		return checkImage(*r.Image)
	}},
	{Field: "ingredients", Check: func(r *types.UpdateRecipeRequest) string {
		if r.Ingredients == nil {
			return ""
		}
		return checkIngredients(r.Ingredients)
	}},
	{Field: "tags", Check: func(r *types.UpdateRecipeRequest) string {
		if r.Tags == nil {
			return ""
		}
		return checkTags(r.Tags)
	}},
}

func checkName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "this field may not be blank"
	}
	if len([]rune(name)) > MaxNameLength {
		return fmt.Sprintf("ensure this field has no more than %d characters", MaxNameLength)
	}
	return ""
}

func checkText(text string) string {
	if strings.TrimSpace(text) == "" {
		return "this field may not be blank"
	}
	return ""
}

func checkCookingTime(minutes int) string {
	if minutes < 1 {
		return "cooking time must be at least 1 minute"
	}
	return ""
}

func checkImage(image string) string {
	if !strings.HasPrefix(image, "data:image/") || !strings.Contains(image, ";base64,") {
		return "image must be a base64 encoded data URI"
	}
	return ""
}

func checkIngredients(items []types.IngredientAmount) string {
	if len(items) == 0 {
		return "a recipe needs at least one ingredient"
	}
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if item.ID == uuid.Nil {
			return "ingredient id is required"
		}
		if _, dup := seen[item.ID]; dup {
			return "ingredients must not repeat"
		}
		seen[item.ID] = struct{}{}
		if item.Amount < 1 {
			return "ingredient amount must be at least 1"
		}
	}
	return ""
}

func checkTags(ids []uuid.UUID) string {
	if len(ids) == 0 {
		return "a recipe needs at least one tag"
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return "tags must not repeat"
		}
		seen[id] = struct{}{}
	}
	return ""
}
