package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"island-timeline/config"
	"island-timeline/pkg/database"
)

const usage = `
Island Timeline - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Create the timelines table and indexes
  status      Show database connection status
  seed-dev    Seed with development timelines
  reset       Drop all tables and re-run migrations (DANGEROUS)
  truncate    Truncate all tables (DANGEROUS)

Flags:
  -islands int      Islands to seed (default 3)
  -users int        Subscribers per seeded island (default 5)
  -feeds int        Feeds per seeded island (default 20)
  -yes              Skip the reset countdown

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed-dev -islands 10 -feeds 200
  go run cmd/migrate/main.go reset -yes
`

func main() {
	islands := flag.Int("islands", 3, "Islands to seed")
	users := flag.Int("users", 5, "Subscribers per seeded island")
	feeds := flag.Int("feeds", 20, "Feeds per seeded island")
	yes := flag.Bool("yes", false, "Skip the reset countdown")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg := config.LoadConfig()
	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer database.Close()

	switch command {
	case "up":
		runMigrationsUp()
	case "status":
		showStatus()
	case "seed-dev":
		seedCfg := database.DefaultSeedConfig()
		seedCfg.Islands = *islands
		seedCfg.UsersPerIsland = *users
		seedCfg.FeedsPerIsland = *feeds
		seedCfg.PublicInboxUser = cfg.PublicInboxUserID
		seedCfg.BatchSize = cfg.TimelineInsertBatch
		runSeedDevelopment(seedCfg)
	case "reset":
		runReset(*yes)
	case "truncate":
		runTruncate()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp() {
	log.Println("🚀 Running migrations UP...")

	if err := database.RunFullMigration(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	log.Println("✅ Migrations completed successfully!")
}

func showStatus() {
	log.Println("🔍 Checking database status...")

	if err := database.Ping(); err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	log.Println("✅ Database connection: OK")

	exists, err := database.TableExists("timelines")
	if err != nil {
		log.Fatalf("⚠️  Error checking table timelines: %v", err)
	}
	if !exists {
		log.Println("❌ Table timelines does not exist, run `migrate up`")
		return
	}
	count, _ := database.GetTableCount("timelines")
	log.Printf("✅ Table timelines exists (%d rows)", count)

	if err := database.HealthCheck(); err != nil {
		log.Printf("⚠️  Health check warning: %v", err)
	} else {
		log.Println("✅ Health check: PASSED")
	}
}

func runSeedDevelopment(cfg *database.SeedConfig) {
	log.Println("🌱 Seeding database (development mode)...")

	if err := database.RunFullMigration(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	result, err := database.SeedDevelopment(context.Background(), database.DB, cfg)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("📊 Seed Summary:")
	log.Printf("   - Islands: %d", len(result.Islands))
	log.Printf("   - Users: %d", len(result.Users))
	log.Printf("   - Timeline entries: %d", result.Entries)
	log.Println("✅ Development seeding completed!")
}

func runReset(skipCountdown bool) {
	log.Println("⚠️  WARNING: This will DROP all tables and re-run migrations!")

	if !skipCountdown {
		log.Println("⚠️  Press Ctrl+C within 5 seconds to cancel...")
		fmt.Print("Proceeding in: ")
		for i := 5; i > 0; i-- {
			fmt.Printf("%d... ", i)
			time.Sleep(time.Second)
		}
		fmt.Println()
	}

	log.Println("🗑️  Dropping all tables...")
	if err := database.DropAllTables(); err != nil {
		log.Fatalf("❌ Failed to drop tables: %v", err)
	}

	log.Println("🚀 Running migrations...")
	if err := database.RunFullMigration(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	log.Println("✅ Database reset completed!")
}

func runTruncate() {
	log.Println("⚠️  WARNING: This will TRUNCATE all tables!")

	if err := database.TruncateAllTables(); err != nil {
		log.Fatalf("❌ Truncate failed: %v", err)
	}

	log.Println("✅ All tables truncated!")
}
