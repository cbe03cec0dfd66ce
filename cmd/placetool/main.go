package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"emoji_map/internal/adapters/observability"
	"emoji_map/internal/app"
	"emoji_map/internal/domain"
	"emoji_map/internal/shared"
	mysqlrepo "emoji_map/internal/storage/mysql"
)

// seedEntry is one row of the seed file: a review plus its author and place.
type seedEntry struct {
	UserID      string   `json:"userId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Rating      int      `json:"rating"`
	Emoji       string   `json:"emoji"`
	PlaceName   string   `json:"placeName"`
	Address     string   `json:"address"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Category    *string  `json:"category"`
	Images      []string `json:"images"`
}

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	var workers int

	root := &cobra.Command{
		Use:   "placetool",
		Short: "Operational tooling for the review database",
	}

	seed := &cobra.Command{
		Use:   "seed <file.json>",
		Short: "Insert reviews from a JSON file, creating places as needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo(cfg)
			if err != nil {
				return err
			}
			return runSeed(cmd.Context(), repo, args[0], workers)
		},
	}
	seed.Flags().IntVar(&workers, "workers", 4, "concurrent inserts")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Print per-place aggregate statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := openRepo(cfg)
			if err != nil {
				return err
			}
			return runStats(cmd.Context(), repo)
		},
	}

	root.AddCommand(seed, stats)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func openRepo(cfg shared.Config) (*mysqlrepo.Repo, error) {
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	return mysqlrepo.New(db), nil
}

func runSeed(ctx context.Context, repo *mysqlrepo.Repo, path string, workers int) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var entries []seedEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}
	log.Info().Int("entries", len(entries)).Int("workers", workers).Msg("seeding")

	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	for i, e := range entries {
		i, e := i, e

		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			if !domain.IsPaletteEmoji(e.Emoji) {
				log.Warn().Int("entry", i).Str("emoji", e.Emoji).Msg("skipped: emoji not in palette")
				return
			}
			_, err := repo.CreateReview(ctx, domain.NewReview{
				Title: e.Title, Description: e.Description, Rating: e.Rating,
				Emoji: e.Emoji, PlaceName: e.PlaceName, Address: e.Address,
				Latitude: e.Latitude, Longitude: e.Longitude,
				Category: e.Category, Images: e.Images,
			}, e.UserID)
			if err != nil {
				log.Warn().Int("entry", i).Err(err).Msg("insert failed")
				return
			}
			log.Info().Int("entry", i).Str("place", e.PlaceName).Msg("inserted")
		}()
	}
	wg.Wait()
	log.Info().Msg("seeding completed")
	return nil
}

func runStats(ctx context.Context, repo *mysqlrepo.Repo) error {
	reviews, places, err := repo.ListReviews(ctx)
	if err != nil {
		return err
	}
	views := app.AggregatePlaces(reviews, places)

	fmt.Printf("%d reviews across %d places\n\n", len(reviews), len(views))
	for _, v := range views {
		fmt.Printf("%s %-30s  reviews=%-4d avg=%.2f  %s\n",
			v.Emoji, v.PlaceName, v.TotalReviews, v.AvgRating, v.Address)
	}

	byEmoji := map[string]int{}
	for _, r := range reviews {
		byEmoji[r.Emoji]++
	}
	fmt.Println()
	for _, e := range domain.EmojiPalette {
		if n := byEmoji[e]; n > 0 {
			fmt.Printf("%s %d\n", e, n)
		}
	}
	return nil
}
