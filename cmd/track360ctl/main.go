// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command track360ctl drives the Track360 API from a terminal: it records a
// clip from a video file, links processed results and shows the dashboard.
//
//	track360ctl [-server URL] <command> [flags]
//
// Commands: record, link, sign, stats, seed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"

	"github.com/track360/server/capture"
	"github.com/track360/server/client"
	"github.com/track360/server/dashboard"
	"github.com/track360/server/logging"
	"github.com/track360/server/models"
)

const defaultServer = "http://localhost:3318"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	// Optional; TRACK360_SERVER may come from it
	_ = godotenv.Load()

	fset := flag.NewFlagSet("track360ctl", flag.ContinueOnError)
	server := fset.String("server", envOr("TRACK360_SERVER", defaultServer), "API base URL")
	logLevel := fset.String("log-level", "warn", "log level")
	if err := fset.Parse(args); err != nil {
		return err
	}

	logging.Init(logging.Config{Level: *logLevel, Format: "console"})

	if fset.NArg() == 0 {
		return errors.New("missing command (record, link, sign, stats, seed)")
	}

	c := client.New(*server)
	cmd, rest := fset.Arg(0), fset.Args()[1:]

	switch cmd {
	case "record":
		return runRecord(ctx, c, rest, out)
	case "link":
		return runLink(ctx, c, rest, out)
	case "sign":
		resp, err := c.SignUpload(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, resp)
	case "stats":
		return runStats(ctx, c, out)
	case "seed":
		return runSeed(ctx, c, out)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runRecord(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	fset := flag.NewFlagSet("record", flag.ContinueOnError)
	path := fset.String("file", "", "video file standing in for the camera")
	lat := fset.Float64("lat", 0, "latitude reported for the clip")
	lng := fset.Float64("lng", 0, "longitude reported for the clip")
	duration := fset.Duration("duration", capture.ClipDuration, "clip length")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("record: -file is required")
	}
	if *duration <= 0 {
		return errors.New("record: -duration must be positive")
	}
	tick := min(time.Second, *duration)
	if *duration%tick != 0 {
		return errors.New("record: -duration must be under a second or a whole number of seconds")
	}

	locator := capture.FixedLocator{Location: models.Location{Latitude: *lat, Longitude: *lng}}
	session, err := capture.NewAcquirer(capture.FileCamera{Path: *path}, locator).Acquire(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	rec := capture.NewRecorder(session.Stream, capture.NewFileRecorder, locator, c,
		capture.WithTiming(*duration, tick, capture.ResetDelay),
		capture.WithStateListener(func(s capture.State) {
			switch {
			case s.Status == capture.StatusRecording && s.Countdown >= 0:
				fmt.Fprintf(out, "%s %ds\n", s.Message, s.Countdown)
			case s.Message != "":
				fmt.Fprintln(out, s.Message)
			}
		}),
	)
	defer rec.Close()

	if err := rec.Start(ctx); err != nil {
		return err
	}

	select {
	case <-rec.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	state := rec.State()
	if state.Status != capture.StatusSuccess {
		return errors.New(state.Message)
	}
	return printJSON(out, state.Upload)
}

func runLink(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	fset := flag.NewFlagSet("link", flag.ContinueOnError)
	id := fset.String("id", "", "unprocessed record id")
	videoURL := fset.String("url", "", "processed video URL")
	path := fset.String("file", "", "processed video file to upload instead of -url")
	data := fset.String("data", "", "JSON side data")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if *id == "" || (*videoURL == "") == (*path == "") {
		return errors.New("link: -id and exactly one of -url or -file are required")
	}

	var (
		resp *models.ProcessedUploadResponse
		err  error
	)
	if *path != "" {
		f, ferr := os.Open(*path)
		if ferr != nil {
			return ferr
		}
		defer f.Close()
		resp, err = c.UploadProcessed(ctx, *id, f, filepath.Base(*path), *data)
	} else {
		resp, err = c.LinkProcessed(ctx, *id, *videoURL, *data)
	}
	if err != nil {
		return err
	}
	return printJSON(out, resp)
}

func runStats(ctx context.Context, c *client.Client, out io.Writer) error {
	d := dashboard.New(c)
	stats, err := d.Load(ctx)
	if err != nil {
		slog.Debug("dashboard load failed", "error", err)
		return errors.New(dashboard.LoadFailedMessage)
	}
	if d.CanSeed() {
		fmt.Fprintln(out, "No videos yet. Run `track360ctl seed` to load sample data.")
	}
	return dashboard.Render(out, stats, time.Now())
}

func runSeed(ctx context.Context, c *client.Client, out io.Writer) error {
	d := dashboard.New(c)
	if _, err := d.Load(ctx); err != nil {
		return err
	}
	if !d.CanSeed() {
		return dashboard.ErrSeedUnavailable
	}

	stats, err := d.Seed(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Data Added")
	return dashboard.Render(out, stats, time.Now())
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
