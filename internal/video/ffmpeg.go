package video

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	playlistName = "list.txt"
	outputName   = "out.mp4"
	// tailLines is how much of ffmpeg's stderr is kept for error messages.
	tailLines = 8
)

// FFmpegEncoder runs the ffmpeg binary in a scratch directory per request.
type FFmpegEncoder struct {
	path   string
	logger *zap.Logger
}

// NewFFmpegEncoder creates an encoder for the binary at path. A bare name
// like "ffmpeg" is resolved through PATH when encoding.
func NewFFmpegEncoder(path string, logger *zap.Logger) *FFmpegEncoder {
	if path == "" {
		path = "ffmpeg"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFmpegEncoder{path: path, logger: logger}
}

// Available reports whether the binary can be found.
func (e *FFmpegEncoder) Available() error {
	if _, err := exec.LookPath(e.path); err != nil {
		return fmt.Errorf("%w: %v", ErrEncoderUnavailable, err)
	}
	return nil
}

// Encode writes the slides and the playlist to a temp dir, runs ffmpeg and
// returns the MP4 bytes.
func (e *FFmpegEncoder) Encode(ctx context.Context, req Request) ([]byte, error) {
	if len(req.Slides) == 0 {
		return nil, errors.New("no slides to export")
	}

	bin, err := exec.LookPath(e.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoderUnavailable, err)
	}

	dir, err := os.MkdirTemp("", "ficha-video-*")
	if err != nil {
		return nil, fmt.Errorf("creating work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	for _, s := range req.Slides {
		if err := os.WriteFile(filepath.Join(dir, s.Filename), s.Data, 0o644); err != nil {
			return nil, fmt.Errorf("writing slide %s: %w", s.Filename, err)
		}
	}
	playlist := BuildPlaylist(req.Slides, req.DurationSec)
	if err := os.WriteFile(filepath.Join(dir, playlistName), []byte(playlist), 0o644); err != nil {
		return nil, fmt.Errorf("writing playlist: %w", err)
	}

	fps := SafeFPS(req.FPS)
	cmd := exec.CommandContext(ctx, bin, FFmpegArgs(fps, playlistName, outputName)...)
	cmd.Dir = dir

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("attaching to encoder output: %w", err)
	}

	e.logger.Info("starting video encode",
		zap.Int("slides", len(req.Slides)),
		zap.Float64("duration", SafeDuration(req.DurationSec)),
		zap.Int("fps", fps),
	)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoderUnavailable, err)
	}

	tail := e.stream(stderr, req)

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v: %s", ErrEncodeFailed, err, strings.Join(tail, " | "))
	}

	out, err := os.ReadFile(filepath.Join(dir, outputName))
	if err != nil {
		return nil, fmt.Errorf("reading encoded video: %w", err)
	}
	return out, nil
}

// stream forwards every stderr line to the callbacks and returns the last
// few lines. ffmpeg separates progress updates with carriage returns.
func (e *FFmpegEncoder) stream(r io.Reader, req Request) []string {
	var tail []string
	sc := bufio.NewScanner(r)
	sc.Split(scanLinesCR)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		e.logger.Debug("ffmpeg", zap.String("line", line))
		if req.OnLog != nil {
			req.OnLog(line)
		}
		if req.OnProgress != nil && strings.Contains(line, "frame=") {
			req.OnProgress(line)
		}
		tail = append(tail, line)
		if len(tail) > tailLines {
			tail = tail[1:]
		}
	}
	return tail
}

// scanLinesCR is bufio.ScanLines that also breaks on a bare '\r'.
func scanLinesCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
