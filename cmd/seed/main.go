// Command seed fills the database with demo data.
package main

import (
	"context"
	"flag"

	"yatube/internal/config"
	"yatube/internal/db"
	"yatube/internal/logging"
	"yatube/internal/seed"
)

func main() {
	users := flag.Int("users", 20, "Number of users to create")
	posts := flag.Int("posts", 5, "Posts per user")
	comments := flag.Int("comments", 100, "Number of comments to create")
	follows := flag.Int("follows", 60, "Number of follow edges to create")
	clean := flag.Bool("clean", false, "Delete users, posts, comments and follows first")
	randSeed := flag.Int64("seed", 0, "Random seed, 0 for a random one")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.L().Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, ServiceName: "yatube-seed"})

	conn, err := db.Open(cfg)
	if err != nil {
		logging.L().Fatal().Err(err).Msg("failed to open database")
	}

	sum, err := seed.NewSeeder(conn, *randSeed).Run(context.Background(), seed.Options{
		Users:        *users,
		PostsPerUser: *posts,
		Comments:     *comments,
		Follows:      *follows,
		Clean:        *clean,
	})
	if err != nil {
		logging.L().Fatal().Err(err).Msg("seeding failed")
	}
	logging.L().Info().
		Int("users", sum.Users).
		Str("password", seed.DefaultPassword).
		Msg("seeded users share one password")
}
