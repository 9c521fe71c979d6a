// Command feed-sim runs the alert feed simulator on its own and writes every
// snapshot to stdout as one JSON object per line. Logs go to stderr.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mr1hm/go-flood-alerts/internal/broadcast"
	"github.com/mr1hm/go-flood-alerts/internal/config"
	"github.com/mr1hm/go-flood-alerts/internal/feed"
	"github.com/mr1hm/go-flood-alerts/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logger := logging.SetupWriter(os.Stderr, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	broadcaster := broadcast.NewBroadcaster(broadcast.DefaultBuffer)
	opts := []feed.Option{
		feed.WithDelays(cfg.Feed.ConnectDelay, cfg.Feed.RefreshInterval, cfg.Feed.ReconnectDelay),
		feed.WithLogger(logger),
		feed.WithPublisher(broadcaster),
	}
	if cfg.Feed.Seed != 0 {
		opts = append(opts, feed.WithSeed(cfg.Feed.Seed))
	}
	sim := feed.New(opts...)

	id, snapshots := broadcaster.Subscribe()
	defer broadcaster.Unsubscribe(id)

	if err := sim.Start(ctx); err != nil {
		logging.Fatalf("Failed to start feed simulator: %v", err)
	}
	slog.Info("feed simulator running", "refresh_interval", cfg.Feed.RefreshInterval)

	enc := json.NewEncoder(os.Stdout)
	for {
		select {
		case <-ctx.Done():
			sim.Stop()
			slog.Info("feed simulator stopped")
			return
		case snap := <-snapshots:
			if err := enc.Encode(snap); err != nil {
				slog.Error("failed to write snapshot", "error", err)
			}
		}
	}
}
