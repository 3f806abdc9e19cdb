// Command load_ingredients bulk loads the ingredient catalog from a CSV file
// of name,measurement_unit rows. Names already present are skipped.
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
)

type ingredientRow struct {
	Name            string
	MeasurementUnit string
}

func main() {
	file := flag.String("file", "ingredients.csv", "CSV file with name,measurement_unit rows")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := run(context.Background(), cfg, *file, log); err != nil {
		log.Error("failed to load ingredients", "file", *file, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, path string, log *slog.Logger) error {
	if cfg.DBDriver != "postgres" {
		return fmt.Errorf("bulk loading needs postgres, got %q", cfg.DBDriver)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := parseIngredients(f)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	inserted, err := loadIngredients(ctx, sqlDB, rows)
	if err != nil {
		return err
	}
	log.Info("ingredients loaded", "read", len(rows), "inserted", inserted)
	return nil
}

// parseIngredients reads name,measurement_unit records. A leading header row
// is skipped, blank names are rejected.
func parseIngredients(r io.Reader) ([]ingredientRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	var rows []ingredientRow
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		name := strings.TrimSpace(record[0])
		unit := strings.TrimSpace(record[1])
		if line == 1 && strings.EqualFold(name, "name") && strings.EqualFold(unit, "measurement_unit") {
			continue
		}
		if name == "" || unit == "" {
			return nil, fmt.Errorf("line %d: name and measurement unit are required", line)
		}
		rows = append(rows, ingredientRow{Name: name, MeasurementUnit: unit})
	}
	return rows, nil
}

// loadIngredients copies rows into a staging table and moves the new names
// into ingredients in one transaction. It returns the number inserted.
func loadIngredients(ctx context.Context, db *sql.DB, rows []ingredientRow) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		CREATE TEMP TABLE ingredients_staging (
			id               VARCHAR(36),
			name             VARCHAR(200),
			measurement_unit VARCHAR(200)
		) ON COMMIT DROP`); err != nil {
		return 0, fmt.Errorf("create staging table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("ingredients_staging", "id", "name", "measurement_unit"))
	if err != nil {
		return 0, fmt.Errorf("prepare copy: %w", err)
	}
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), row.Name, row.MeasurementUnit); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("copy %q: %w", row.Name, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return 0, fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO ingredients (id, name, measurement_unit)
		SELECT DISTINCT ON (name) id, name, measurement_unit
		FROM ingredients_staging
		ORDER BY name
		ON CONFLICT (name) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("insert ingredients: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return inserted, tx.Commit()
}
