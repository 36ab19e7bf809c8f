// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/track360/server/models"
)

// fileChunkSize is how much of the file each delivered chunk carries.
const fileChunkSize = 256 << 10

// FileCamera stands in for a device camera by streaming a video file.
type FileCamera struct {
	Path string
}

func (c FileCamera) Open(ctx context.Context, _ StreamConstraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", c.Path, err)
	}
	return &FileStream{file: f}, nil
}

// FileStream is a Stream backed by an open file. Its single track closes
// the file when stopped.
type FileStream struct {
	file *os.File
	once sync.Once
}

func (s *FileStream) Tracks() []Track {
	return []Track{fileTrack{s}}
}

type fileTrack struct {
	s *FileStream
}

func (t fileTrack) Stop() {
	t.s.once.Do(func() { t.s.file.Close() })
}

// NewFileRecorder is a RecorderFactory for FileStream.
func NewFileRecorder(stream Stream) (MediaRecorder, error) {
	fs, ok := stream.(*FileStream)
	if !ok {
		return nil, fmt.Errorf("file recorder needs a *FileStream, got %T", stream)
	}
	return &fileRecorder{stream: fs}, nil
}

// fileRecorder delivers the file from the start in fixed-size chunks.
type fileRecorder struct {
	stream *FileStream
	stop   chan struct{}
	done   chan struct{}
	err    error
}

func (r *fileRecorder) Start(onData func([]byte)) error {
	if _, err := r.stream.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		for {
			select {
			case <-r.stop:
				return
			default:
			}

			buf := make([]byte, fileChunkSize)
			n, err := r.stream.file.Read(buf)
			if n > 0 {
				onData(buf[:n])
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				r.err = err
				return
			}
		}
	}()
	return nil
}

func (r *fileRecorder) Stop() error {
	if r.stop == nil {
		return nil
	}
	close(r.stop)
	<-r.done
	r.stop = nil
	return r.err
}

// FixedLocator always reports the same position.
type FixedLocator struct {
	Location models.Location
}

func (l FixedLocator) CurrentPosition(ctx context.Context, _ PositionOptions) (models.Location, error) {
	if err := ctx.Err(); err != nil {
		return models.Location{}, err
	}
	return l.Location, nil
}
