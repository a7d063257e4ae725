// Package video assembles slideshow frames into an MP4 through an external
// encoder. The encoder is a black box: it receives the ordered frames, a
// per-frame duration and a frame rate, and returns the encoded file.
package video

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrEncoderUnavailable is returned when the encoder binary can't be found
// or started. Still-image exports are unaffected by it.
var ErrEncoderUnavailable = errors.New("video encoder unavailable")

// ErrEncodeFailed is returned when the encoder ran but rejected the job. The
// wrapping error carries the encoder's last diagnostic lines.
var ErrEncodeFailed = errors.New("video encoding failed")

// Limits applied to the user's video settings.
const (
	MinDuration     = 0.5
	DefaultDuration = 2.5
	MinFPS          = 12
	MaxFPS          = 60
	DefaultFPS      = 30
)

// Slide is one encoded frame and the file name it is written under.
type Slide struct {
	Filename string
	Data     []byte
}

// Request is a single encode job.
type Request struct {
	Slides      []Slide
	DurationSec float64
	FPS         float64

	// OnLog receives every diagnostic line the encoder prints.
	OnLog func(line string)
	// OnProgress receives only the progress lines ("frame=...").
	OnProgress func(line string)
}

// Encoder turns a Request into an encoded video.
type Encoder interface {
	Encode(ctx context.Context, req Request) ([]byte, error)
}

// SafeDuration keeps the per-slide duration at or above MinDuration.
// Non-finite or non-positive input falls back to DefaultDuration.
func SafeDuration(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return DefaultDuration
	}
	return math.Max(MinDuration, d)
}

// SafeFPS clamps the frame rate into [MinFPS, MaxFPS].
// Non-finite or zero input falls back to DefaultFPS.
func SafeFPS(fps float64) int {
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps == 0 {
		return DefaultFPS
	}
	return int(math.Round(math.Max(MinFPS, math.Min(MaxFPS, fps))))
}

// BuildPlaylist writes a concat-demuxer list. Every slide gets a duration
// line; the last slide is then listed once more without one, otherwise the
// demuxer drops the final slide's duration.
func BuildPlaylist(slides []Slide, duration float64) string {
	if len(slides) == 0 {
		return ""
	}
	d := strconv.FormatFloat(SafeDuration(duration), 'f', -1, 64)

	var b strings.Builder
	for _, s := range slides {
		fmt.Fprintf(&b, "file '%s'\nduration %s\n", quote(s.Filename), d)
	}
	fmt.Fprintf(&b, "file '%s'\n", quote(slides[len(slides)-1].Filename))
	return b.String()
}

// quote escapes a single quote for the concat demuxer's quoting rules.
func quote(name string) string {
	return strings.ReplaceAll(name, "'", `'\''`)
}

// FFmpegArgs builds the ffmpeg command line: concat input at fps, frame
// rate normalized, 4:2:0 chroma for broad playback support and the moov
// atom moved to the front for streaming.
func FFmpegArgs(fps int, list, out string) []string {
	return []string{
		"-y",
		"-r", strconv.Itoa(fps),
		"-f", "concat",
		"-safe", "0",
		"-i", list,
		"-vf", fmt.Sprintf("fps=%d,format=yuv420p", fps),
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		out,
	}
}
