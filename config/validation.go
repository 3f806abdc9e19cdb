package config

import (
	"fmt"
	"strings"
)

// DevelopmentJWTSecret is the signing key used when none is configured.
// Production refuses to start with it.
const DevelopmentJWTSecret = "dev-insecure-secret"

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the configuration and reports every problem at once.
func ValidateConfig(cfg *Config) error {
	var errs []ValidationError
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			add("DB_HOST", "is required for the postgres driver")
		}
		if cfg.DBName == "" {
			add("DB_NAME", "is required for the postgres driver")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for the sqlite driver")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unsupported driver %q (want postgres or sqlite)", cfg.DBDriver))
	}

	if cfg.JWTSecret == "" {
		add("JWT_SECRET", "is required")
	}
	if cfg.JWTTTL <= 0 {
		add("JWT_TTL", "must be positive")
	}

	if cfg.Environment == Production || cfg.Environment == CI {
		if cfg.JWTSecret == DevelopmentJWTSecret {
			add("JWT_SECRET", "the development secret cannot be used outside development")
		}
	}
	if cfg.Environment == Production && cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
		add("DB_PASSWORD", "is required in production")
	}

	if cfg.PageSize < 1 {
		add("PAGE_SIZE", "must be at least 1")
	}
	if cfg.MaxPageSize < cfg.PageSize {
		add("MAX_PAGE_SIZE", "must not be smaller than PAGE_SIZE")
	}
	if cfg.SubscriptionRecipesLimit < 1 {
		add("SUBSCRIPTION_RECIPES_LIMIT", "must be at least 1")
	}
	if cfg.ShoppingListMaxRows < 1 {
		add("SHOPPING_LIST_MAX_ROWS", "must be at least 1")
	}
	if cfg.RecipeCreateLimit < 1 {
		add("RECIPE_CREATE_LIMIT", "must be at least 1")
	}
	if cfg.RecipeCreateWindow <= 0 {
		add("RECIPE_CREATE_WINDOW", "must be positive")
	}
	if cfg.MaxImageBytes < 1 {
		add("MAX_IMAGE_BYTES", "must be positive")
	}

	if len(errs) == 0 {
		return nil
	}

	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		lines = append(lines, e.Error())
	}
	return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
}
