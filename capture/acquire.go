// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package capture

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/track360/server/models"
)

var (
	// ErrPermission means the user or OS refused camera or location access.
	ErrPermission = errors.New("permission denied")
	// ErrGeolocation means no position could be obtained.
	ErrGeolocation = errors.New("geolocation unavailable")
)

// Permission error messages shown to the user
const (
	MsgAllowAccess      = "Please allow camera and location access to use this feature."
	MsgLocationDenied   = "Location permission denied. Please enable it in your browser settings."
	MsgUnknownAcquiring = "Unknown error occurred."
)

// StreamConstraints describes the camera stream to request.
type StreamConstraints struct {
	FacingMode string
	Width      int
	Height     int
	Audio      bool
}

// PositionOptions describes the position fix to request.
type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	// MaximumAge zero means a cached fix is never accepted.
	MaximumAge time.Duration
}

var (
	DefaultStreamConstraints = StreamConstraints{FacingMode: "environment", Width: 1920, Height: 1080, Audio: true}
	DefaultPositionOptions   = PositionOptions{HighAccuracy: true, Timeout: 5 * time.Second, MaximumAge: 0}
)

type Track interface {
	Stop()
}

// Stream is a live capture stream.
type Stream interface {
	Tracks() []Track
}

type Camera interface {
	Open(ctx context.Context, c StreamConstraints) (Stream, error)
}

type Locator interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (models.Location, error)
}

// PermissionError is an acquisition failure carrying the text to show.
type PermissionError struct {
	Message string
	Err     error
}

func (e *PermissionError) Error() string { return e.Message }
func (e *PermissionError) Unwrap() error { return e.Err }

// PermissionMessage maps an acquisition failure to user-facing text.
func PermissionMessage(err error) string {
	switch {
	case err == nil:
		return MsgUnknownAcquiring
	case errors.Is(err, ErrPermission):
		return MsgAllowAccess
	case errors.Is(err, ErrGeolocation):
		return MsgLocationDenied
	case err.Error() != "":
		return err.Error()
	default:
		return MsgUnknownAcquiring
	}
}

// Session holds an acquired stream and the position fixed while acquiring.
// Close releases the stream's tracks.
type Session struct {
	Stream   Stream
	Position models.Location

	closeOnce sync.Once
}

func (s *Session) Close() {
	s.closeOnce.Do(func() { stopTracks(s.Stream) })
}

// Acquirer requests camera and location access together.
type Acquirer struct {
	Camera      Camera
	Locator     Locator
	Constraints StreamConstraints
	Position    PositionOptions
}

func NewAcquirer(camera Camera, locator Locator) *Acquirer {
	return &Acquirer{
		Camera:      camera,
		Locator:     locator,
		Constraints: DefaultStreamConstraints,
		Position:    DefaultPositionOptions,
	}
}

// Acquire opens the stream and fixes a position concurrently. Both must
// succeed; on failure any stream already opened is stopped and the error is
// a *PermissionError.
func (a *Acquirer) Acquire(ctx context.Context) (*Session, error) {
	var (
		stream Stream
		pos    models.Location
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := a.Camera.Open(gctx, a.Constraints)
		if err != nil {
			return err
		}
		stream = s
		return nil
	})
	g.Go(func() error {
		p, err := locate(gctx, a.Locator, a.Position)
		if err != nil {
			return err
		}
		pos = p
		return nil
	})

	if err := g.Wait(); err != nil {
		stopTracks(stream)
		return nil, &PermissionError{Message: PermissionMessage(err), Err: err}
	}

	return &Session{Stream: stream, Position: pos}, nil
}

// locate bounds the position request by opts.Timeout.
func locate(ctx context.Context, l Locator, opts PositionOptions) (models.Location, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	return l.CurrentPosition(ctx, opts)
}

func stopTracks(s Stream) {
	if s == nil {
		return
	}
	for _, t := range s.Tracks() {
		t.Stop()
	}
}
