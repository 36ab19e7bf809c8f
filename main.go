package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/track360/server/auth"
	"github.com/track360/server/cliparse"
	"github.com/track360/server/logging"
	"github.com/track360/server/media"
	"github.com/track360/server/router"
	"github.com/track360/server/seed"
	"github.com/track360/server/store"
	"github.com/track360/server/supervisor"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	logger := logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.Info("configuration loaded", "config", cfg.Redacted(), "upload_limit", cfg.UploadLimit())

	// Everything that can fail without a connection goes before the store
	host, err := media.NewCloudinary(cfg.Media.CloudName, cfg.Media.APIKey, cfg.Media.APISecret)
	if err != nil {
		slog.Error("media host setup failed", "error", err)
		os.Exit(1)
	}

	sample, err := seed.Default()
	if err != nil {
		slog.Error("failed to load sample data", "error", err)
		os.Exit(1)
	}

	// Stop on Ctrl-C or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the record store
	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	st, err := store.Open(openCtx, store.Options{
		Type:         cfg.Database.Type,
		URL:          cfg.Database.URL,
		Name:         cfg.Database.Name,
		Transactions: cfg.Database.Transactions,
	})
	cancel()
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	deps := router.Deps{
		Store:  st,
		Media:  host,
		Signer: auth.NewSigner(cfg.Media.CloudName, cfg.Media.APIKey, cfg.Media.APISecret, cfg.Media.ProcessedFolder),
		Sample: sample,
	}

	// Create server
	server := &http.Server{
		Handler:           router.NewRouter(deps, cfg),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.New(logger, cfg.ShutdownTimeout)
	tree.Add(supervisor.NewHTTPService(server, cfg.ShutdownTimeout))

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	if err := tree.Serve(ctx); err != nil {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}
