// releaseradar keeps a label's release/artist database aligned with the
// Spotify catalog and pushes new-release notifications to configured
// webhooks. Sync runs are triggered over HTTP; see server for the endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/truantmusic/releaseradar/config"
	"github.com/truantmusic/releaseradar/db"
	"github.com/truantmusic/releaseradar/server"
	"github.com/truantmusic/releaseradar/sigctx"
	"github.com/truantmusic/releaseradar/spotify"
	"github.com/truantmusic/releaseradar/syncer"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	if err := run(logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("exiting", "err", err)
	}
	fmt.Println("done")
}

func run(logger *log.Logger) error {
	configPath := flag.String("config", "config.toml", "path to the TOML config file")
	flag.Parse()

	ctx := sigctx.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	spo := spotify.New(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)

	runner := &syncer.Runner{
		DB:                database,
		Catalog:           spo,
		Log:               logger.With("component", "syncer"),
		DefaultPlaylistID: cfg.Sync.DefaultPlaylistID,
		NavTimeout:        cfg.NavTimeout(),
		ArtistChunkSize:   cfg.ArtistChunkSize(),
		RetryCooldown:     cfg.RetryCooldown(),
	}

	return server.Run(ctx, cfg.Server.Addr, &server.Handler{
		DB:                database,
		Runner:            runner,
		Log:               logger.With("component", "server"),
		Secret:            cfg.Server.Secret,
		DefaultPlaylistID: cfg.Sync.DefaultPlaylistID,
	})
}
