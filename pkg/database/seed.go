package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"island-timeline/internal/domain/timeline"
	"island-timeline/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeedConfig holds configuration for seeding development data
type SeedConfig struct {
	Islands         int
	UsersPerIsland  int
	FeedsPerIsland  int
	PublicInboxUser string
	BatchSize       int
}

func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		Islands:         3,
		UsersPerIsland:  5,
		FeedsPerIsland:  20,
		PublicInboxUser: "public-inbox",
		BatchSize:       500,
	}
}

type SeedResult struct {
	Islands []string
	Users   []string
	Entries int
}

// SeedDevelopment fans synthetic feeds out to synthetic subscribers the way
// the distributor would, so the query API has something to page through.
// Seeding twice is harmless: existing (user, feed) pairs are skipped.
func SeedDevelopment(ctx context.Context, db *gorm.DB, cfg *SeedConfig) (*SeedResult, error) {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}

	repo := repository.NewTimelineRepository(db, cfg.BatchSize)
	result := &SeedResult{}
	base := time.Now().Add(-24 * time.Hour).UnixMilli()
	now := time.Now().UnixMilli()

	for i := 0; i < cfg.Islands; i++ {
		islandID := fmt.Sprintf("dev-island-%d", i+1)
		result.Islands = append(result.Islands, islandID)

		users := make([]string, 0, cfg.UsersPerIsland)
		for u := 0; u < cfg.UsersPerIsland; u++ {
			users = append(users, fmt.Sprintf("dev-user-%d-%d", i+1, u+1))
		}
		result.Users = append(result.Users, users...)

		entries := make([]timeline.Timeline, 0, cfg.FeedsPerIsland*(len(users)+1))
		for f := 0; f < cfg.FeedsPerIsland; f++ {
			feedID := fmt.Sprintf("dev-feed-%d-%d", i+1, f+1)
			createdAt := base + int64(i*cfg.FeedsPerIsland+f)*60_000
			tag := uuid.NewString()
			recipients := append([]string{cfg.PublicInboxUser}, users...)
			for _, userID := range recipients {
				entries = append(entries, timeline.Timeline{
					ID:            uuid.New(),
					FeedID:        feedID,
					IslandID:      islandID,
					UserID:        userID,
					FeedCreatedAt: createdAt,
					DuplicateTag:  tag,
					EventID:       "seed-" + feedID,
					CreatedAt:     createdAt,
					UpdatedAt:     now,
				})
			}
		}

		if err := repo.InsertAll(ctx, entries); err != nil {
			return nil, fmt.Errorf("seed %s: %w", islandID, err)
		}
		result.Entries += len(entries)
		log.Printf("Seeded %d timeline entries for %s", len(entries), islandID)
	}

	return result, nil
}
