// Package admissions holds the tour-registration data layer: tour dates with
// seat capacity, per-grade course capacity with waitlist fallback, and the
// registration rows written when a family completes a booking. Storage is a
// single SQLite file accessed through bun.
package admissions

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type DatabaseConfig struct {
	Path string `split_words:"true" default:"tour.db"`
}

// Open opens (or creates) the SQLite database file and returns a bun handle.
func Open(cfg DatabaseConfig) (*bun.DB, error) {
	path := cfg.Path
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+path+"?cache=shared&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer connection; SQLite's file lock is the only isolation
	// this system relies on.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	return db, nil
}

// Migrate creates the three tables idempotently.
func Migrate(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return fmt.Errorf("migrate: db is nil")
	}

	models := []any{
		(*TourDate)(nil),
		(*Course)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("migrate: create table for %T: %w", model, err)
		}
	}

	_, err := db.NewCreateTable().
		Model((*Registration)(nil)).
		IfNotExists().
		ForeignKey(`("tour_date_id") REFERENCES "tour_dates" ("id")`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("migrate: create registrations table: %w", err)
	}
	return nil
}

// SeedOptions controls the sample data written into an empty database.
type SeedOptions struct {
	Days int       // number of tour dates to create, one every 3 days
	From time.Time // anchor day; zero means today
}

var defaultCourseSeeds = []Course{
	{Name: "Inicial", CapacityAvailable: 6},
	{Name: "1° EGB", CapacityAvailable: 4},
	{Name: "2° EGB", CapacityAvailable: 2},
	{Name: "3° EGB", CapacityAvailable: 1},
	{Name: "4° EGB", CapacityAvailable: 0},
	{Name: "5° EGB", CapacityAvailable: 0},
	{Name: "6° EGB", CapacityAvailable: 3},
}

// Seed populates tour dates and course capacities when the tables are empty.
// Tour dates land every 3 days from the anchor, alternating capacity 10/12.
func Seed(ctx context.Context, db *bun.DB, opts SeedOptions) error {
	if db == nil {
		return fmt.Errorf("seed: db is nil")
	}

	days := opts.Days
	if days <= 0 {
		days = 4
	}
	from := opts.From
	if from.IsZero() {
		from = time.Now()
	}

	tourCount, err := db.NewSelect().Model((*TourDate)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("seed: count tour dates: %w", err)
	}
	if tourCount == 0 {
		tours := make([]TourDate, 0, days)
		for offset := 1; offset <= days; offset++ {
			capacity := 10
			if offset%2 == 0 {
				capacity = 12
			}
			day := from.AddDate(0, 0, offset*3)
			tours = append(tours, TourDate{
				Date:     day.Format("2006-01-02"),
				Capacity: capacity,
				Status:   TourStatusOpen,
			})
		}
		if _, err := db.NewInsert().Model(&tours).Exec(ctx); err != nil {
			return fmt.Errorf("seed: insert tour dates: %w", err)
		}
	}

	courseCount, err := db.NewSelect().Model((*Course)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("seed: count courses: %w", err)
	}
	if courseCount == 0 {
		courses := make([]Course, len(defaultCourseSeeds))
		copy(courses, defaultCourseSeeds)
		if _, err := db.NewInsert().Model(&courses).Exec(ctx); err != nil {
			return fmt.Errorf("seed: insert courses: %w", err)
		}
	}
	return nil
}
