package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"showtix/internal/shared/config"
	"showtix/internal/shared/database"
	"showtix/internal/shows"

	"github.com/joho/godotenv"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Showtix Database Seeder...")

	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedShows(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"bookings",
		"shows",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedShows creates sample shows with varied capacities so oversell and
// expiry behavior can be exercised by hand.
func (s *Seeder) SeedShows() error {
	fmt.Println("  🎬 Seeding shows...")

	showsData := []struct {
		name        string
		totalSeats  int
		daysFromNow int
	}{
		{"Interstellar (IMAX re-release)", 120, 3},
		{"The Midnight Jazz Session", 40, 7},
		{"Hamlet (City Theatre Company)", 80, 14},
		{"Tiny Room Stand-up Night", 10, 1},
		{"Symphony No. 9 Open Rehearsal", 250, 21},
	}

	for _, data := range showsData {
		show := shows.Show{
			Name:       data.name,
			StartTime:  time.Now().AddDate(0, 0, data.daysFromNow),
			TotalSeats: data.totalSeats,
		}

		if err := s.db.PostgreSQL.Create(&show).Error; err != nil {
			return fmt.Errorf("failed to create show %s: %w", data.name, err)
		}

		fmt.Printf("    ✅ Created show: %s (%d seats)\n", show.Name, show.TotalSeats)
	}

	// Drop any cached listings so the API serves the fresh rows.
	if redisClient := s.db.GetRedisClient(); redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return nil
}
