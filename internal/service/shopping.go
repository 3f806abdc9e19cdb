package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/permissions"
	"github.com/pageza/foodgram/backend/internal/repository"
)

// ShoppingListHeader opens every rendered shopping list.
const ShoppingListHeader = "Foodgram\nShopping list\n"

// ShoppingLine is one ingredient of the shopping list with its summed
// amount.
type ShoppingLine struct {
	IngredientID    uuid.UUID
	Name            string
	MeasurementUnit string
	Total           int
}

// ShoppingListService builds the aggregated shopping list of a user's cart.
type ShoppingListService struct {
	repo    *repository.Repository
	maxRows int
	log     *slog.Logger
}

func NewShoppingListService(repo *repository.Repository, maxRows int, log *slog.Logger) *ShoppingListService {
	return &ShoppingListService{repo: repo, maxRows: maxRows, log: log.With("component", "shopping_list_service")}
}

// Build returns the rendered shopping list of the actor's cart. An empty
// cart renders the header alone.
func (s *ShoppingListService) Build(ctx context.Context, actor *permissions.Actor) (string, error) {
	lines, err := s.Lines(ctx, actor)
	if err != nil {
		return "", err
	}
	return RenderShoppingList(lines), nil
}

// Lines returns the aggregated lines of the actor's cart.
func (s *ShoppingListService) Lines(ctx context.Context, actor *permissions.Actor) ([]ShoppingLine, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	limit := 0
	if s.maxRows > 0 {
		limit = s.maxRows + 1
	}
	rows, err := s.repo.CartIngredientRows(ctx, actor.ID, limit)
	if err != nil {
		return nil, err
	}
	if s.maxRows > 0 && len(rows) > s.maxRows {
		s.log.Warn("shopping list too large", "user_id", actor.ID, "max_rows", s.maxRows)
		return nil, apperrors.InvalidArgument(
			fmt.Sprintf("shopping cart is too large: more than %d ingredient lines", s.maxRows))
	}
	return AggregateShoppingList(rows), nil
}

// AggregateShoppingList merges rows by ingredient id and sums the amounts.
// Rows without an ingredient are skipped. Lines are ordered by name, then
// by id for ingredients sharing a name.
func AggregateShoppingList(rows []repository.CartIngredientRow) []ShoppingLine {
	index := make(map[uuid.UUID]int, len(rows))
	lines := make([]ShoppingLine, 0, len(rows))

	for _, row := range rows {
		if row.IngredientID == uuid.Nil {
			continue
		}
		if i, ok := index[row.IngredientID]; ok {
			lines[i].Total += row.Amount
			continue
		}
		index[row.IngredientID] = len(lines)
		lines = append(lines, ShoppingLine{
			IngredientID:    row.IngredientID,
			Name:            row.Name,
			MeasurementUnit: row.MeasurementUnit,
			Total:           row.Amount,
		})
	}

	slices.SortFunc(lines, func(a, b ShoppingLine) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.IngredientID.String(), b.IngredientID.String())
	})
	return lines
}

// RenderShoppingList formats lines as the plain text download.
func RenderShoppingList(lines []ShoppingLine) string {
	var b strings.Builder
	b.WriteString(ShoppingListHeader)
	for _, line := range lines {
		fmt.Fprintf(&b, "%s - %d %s\n", line.Name, line.Total, line.MeasurementUnit)
	}
	return b.String()
}
