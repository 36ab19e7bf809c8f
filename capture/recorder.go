// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/track360/server/models"
)

var (
	ErrNoData    = errors.New("no video data recorded")
	ErrBusy      = errors.New("recorder is busy")
	ErrUpload    = errors.New("upload failed")
	ErrNoSession = errors.New("no capture stream")
)

// Status messages
const (
	MsgRecording  = "Recording video..."
	MsgProcessing = "Processing video..."
	MsgUploaded   = "Video uploaded successfully!"
	MsgNoData     = "No video data was recorded."
	MsgUploadFail = "Error uploading video. Please try again."
)

const (
	ClipDuration  = 10 * time.Second
	ResetDelay    = 3 * time.Second
	ClipFilename  = "recording.webm"
	countdownTick = time.Second
)

type Status int

const (
	StatusIdle Status = iota
	StatusRecording
	StatusProcessing
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRecording:
		return "recording"
	case StatusProcessing:
		return "processing"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MediaRecorder records a stream into chunks. Start delivers chunks to
// onData as they become available; Stop returns once the final chunk has
// been delivered.
type MediaRecorder interface {
	Start(onData func(chunk []byte)) error
	Stop() error
}

// RecorderFactory binds a new MediaRecorder to a stream.
type RecorderFactory func(Stream) (MediaRecorder, error)

// Uploader sends a finished clip. *client.Client satisfies it.
type Uploader interface {
	UploadUnprocessed(ctx context.Context, video io.Reader, filename string, loc models.Location) (*models.UnprocessedUploadResponse, error)
}

// State is a snapshot of the recorder. Countdown is -1 when no countdown
// is running.
type State struct {
	Status    Status
	Message   string
	Countdown int
	Upload    *models.UnprocessedUploadResponse
}

// Recorder captures one fixed-length clip at a time and uploads it with the
// position at upload time.
//
//	idle -> recording -> processing -> success -> idle
//	                  \             \-> error
//	                   \-> error (no data)
type Recorder struct {
	stream   Stream
	factory  RecorderFactory
	locator  Locator
	uploader Uploader

	position   PositionOptions
	duration   time.Duration
	tick       time.Duration
	resetDelay time.Duration
	onChange   func(State)

	mu         sync.Mutex
	state      State
	active     MediaRecorder
	stopTick   chan struct{}
	done       chan struct{}
	resetTimer *time.Timer

	chunkMu sync.Mutex
	chunks  [][]byte
}

type RecorderOption func(*Recorder)

// WithTiming overrides the clip length, countdown tick and success reset
// delay.
func WithTiming(duration, tick, resetDelay time.Duration) RecorderOption {
	return func(r *Recorder) {
		r.duration = duration
		r.tick = tick
		r.resetDelay = resetDelay
	}
}

// WithStateListener is called after every state change, outside the lock.
func WithStateListener(fn func(State)) RecorderOption {
	return func(r *Recorder) { r.onChange = fn }
}

func WithPositionOptions(opts PositionOptions) RecorderOption {
	return func(r *Recorder) { r.position = opts }
}

func NewRecorder(stream Stream, factory RecorderFactory, locator Locator, uploader Uploader, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		stream:     stream,
		factory:    factory,
		locator:    locator,
		uploader:   uploader,
		position:   DefaultPositionOptions,
		duration:   ClipDuration,
		tick:       countdownTick,
		resetDelay: ResetDelay,
		state:      State{Status: StatusIdle, Countdown: -1},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Done is closed when the current (or last) recording has finished
// processing. It is nil before the first Start.
func (r *Recorder) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Start begins recording. It is allowed from idle, success and error.
// The recording stops itself when the countdown reaches zero.
func (r *Recorder) Start(ctx context.Context) error {
	if r.stream == nil {
		return ErrNoSession
	}

	r.mu.Lock()
	switch r.state.Status {
	case StatusIdle, StatusSuccess, StatusError:
	default:
		r.mu.Unlock()
		return ErrBusy
	}

	mr, err := r.factory(r.stream)
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("failed to create media recorder: %w", err)
	}

	r.takeChunks()
	if err := mr.Start(r.addChunk); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("failed to start media recorder: %w", err)
	}

	if r.resetTimer != nil {
		r.resetTimer.Stop()
		r.resetTimer = nil
	}

	r.active = mr
	r.stopTick = make(chan struct{})
	r.done = make(chan struct{})
	r.state = State{
		Status:    StatusRecording,
		Message:   MsgRecording,
		Countdown: r.ticks(),
	}
	state := r.state
	stopTick := r.stopTick
	r.mu.Unlock()

	r.notify(state)
	go r.countdown(ctx, stopTick)
	return nil
}

// ticks is the countdown length, rounded up so a clip is never shorter
// than the configured duration.
func (r *Recorder) ticks() int {
	return int((r.duration + r.tick - 1) / r.tick)
}

func (r *Recorder) addChunk(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	r.chunkMu.Lock()
	r.chunks = append(r.chunks, chunk)
	r.chunkMu.Unlock()
}

func (r *Recorder) takeChunks() [][]byte {
	r.chunkMu.Lock()
	defer r.chunkMu.Unlock()
	chunks := r.chunks
	r.chunks = nil
	return chunks
}

func (r *Recorder) countdown(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			r.abort()
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.state.Status != StatusRecording || r.active == nil {
				r.mu.Unlock()
				return
			}
			r.state.Countdown--
			remaining := r.state.Countdown
			state := r.state
			r.mu.Unlock()

			r.notify(state)
			if remaining <= 0 {
				if err := r.Stop(ctx); err != nil {
					slog.Debug("recording finished with error", "error", err)
				}
				return
			}
		}
	}
}

// Stop ends the recording, waits for the final data and uploads the clip.
// Stopping while not recording is a no-op.
func (r *Recorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.state.Status != StatusRecording || r.active == nil {
		r.mu.Unlock()
		return nil
	}
	mr := r.active
	done := r.done
	r.active = nil
	close(r.stopTick)
	r.state.Countdown = -1
	// Still "recording" until the final chunk is in
	r.mu.Unlock()

	defer close(done)

	if err := mr.Stop(); err != nil {
		slog.Warn("media recorder stop failed", "error", err)
	}

	chunks := r.takeChunks()
	if len(chunks) == 0 {
		r.setState(State{Status: StatusError, Message: MsgNoData, Countdown: -1})
		return ErrNoData
	}
	r.setState(State{Status: StatusProcessing, Message: MsgProcessing, Countdown: -1})

	resp, err := r.upload(ctx, chunks)
	if err != nil {
		slog.Error("failed to upload recording", "error", err)
		r.setState(State{Status: StatusError, Message: MsgUploadFail, Countdown: -1})
		return fmt.Errorf("%w: %v", ErrUpload, err)
	}

	r.mu.Lock()
	r.state = State{Status: StatusSuccess, Message: MsgUploaded, Countdown: -1, Upload: resp}
	state := r.state
	r.resetTimer = time.AfterFunc(r.resetDelay, r.resetAfterSuccess)
	r.mu.Unlock()
	r.notify(state)
	return nil
}

// upload re-reads the position so the clip is tagged where it ended.
func (r *Recorder) upload(ctx context.Context, chunks [][]byte) (*models.UnprocessedUploadResponse, error) {
	loc, err := locate(ctx, r.locator, r.position)
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}

	video := bytes.NewReader(bytes.Join(chunks, nil))
	return r.uploader.UploadUnprocessed(ctx, video, ClipFilename, loc)
}

func (r *Recorder) resetAfterSuccess() {
	r.mu.Lock()
	if r.state.Status != StatusSuccess {
		r.mu.Unlock()
		return
	}
	r.state = State{Status: StatusIdle, Countdown: -1}
	state := r.state
	r.mu.Unlock()
	r.notify(state)
}

func (r *Recorder) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
	r.notify(s)
}

func (r *Recorder) notify(s State) {
	if r.onChange != nil {
		r.onChange(s)
	}
}

// Close abandons any recording in progress without uploading it and
// releases the stream's tracks.
func (r *Recorder) Close() {
	r.abort()
	stopTracks(r.stream)
}

func (r *Recorder) abort() {
	r.mu.Lock()
	if r.resetTimer != nil {
		r.resetTimer.Stop()
		r.resetTimer = nil
	}
	mr := r.active
	if mr != nil {
		r.active = nil
		close(r.stopTick)
		close(r.done)
		r.state = State{Status: StatusIdle, Countdown: -1}
	}
	r.mu.Unlock()

	if mr != nil {
		if err := mr.Stop(); err != nil {
			slog.Warn("media recorder stop failed", "error", err)
		}
		r.takeChunks()
	}
}
