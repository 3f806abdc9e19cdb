package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
)

type seedUser struct {
	email     string
	username  string
	firstName string
	lastName  string
	role      models.Role
}

var testUsers = []seedUser{
	{"admin@example.com", "admin", "Admin", "User", models.RoleAdmin},
	{"john.doe@example.com", "johndoe", "John", "Doe", models.RoleUser},
	{"jane.smith@example.com", "janesmith", "Jane", "Smith", models.RoleUser},
	{"bob.wilson@example.com", "bobwilson", "Bob", "Wilson", models.RoleUser},
}

var defaultTags = []models.Tag{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
}

func main() {
	password := flag.String("password", "testpassword123", "password given to every seeded user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	created, err := seedUsers(context.Background(), db, *password)
	if err != nil {
		log.Error("failed to seed users", "error", err)
		os.Exit(1)
	}
	log.Info("seeded test users", "created", created, "skipped", len(testUsers)-created)

	tags, err := seedTags(context.Background(), db)
	if err != nil {
		log.Error("failed to seed tags", "error", err)
		os.Exit(1)
	}
	log.Info("seeded tags", "created", tags)
}

// seedTags inserts the default tags that are not there yet.
func seedTags(ctx context.Context, db *gorm.DB) (int, error) {
	created := 0
	for _, t := range defaultTags {
		tag := t
		result := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&tag)
		if result.Error != nil {
			return created, result.Error
		}
		created += int(result.RowsAffected)
	}
	return created, nil
}

// seedUsers inserts the test users, leaving existing emails untouched.
func seedUsers(ctx context.Context, db *gorm.DB, password string) (int, error) {
	hash, err := service.HashPassword(password)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, u := range testUsers {
		user := &models.User{
			Email:        u.email,
			Username:     u.username,
			FirstName:    u.firstName,
			LastName:     u.lastName,
			PasswordHash: hash,
			Role:         u.role,
		}
		result := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(user)
		if result.Error != nil {
			return created, result.Error
		}
		created += int(result.RowsAffected)
	}
	return created, nil
}
