package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"strconv"
	"time"

	config "github.com/maheshrc27/clipcast/configs"
	"github.com/maheshrc27/clipcast/internal/workspace"
)

const (
	// DefaultFrameDuration is used when the caller supplies a missing,
	// non-numeric or non-positive per-frame duration.
	DefaultFrameDuration = 2.0

	// MinInputFPS floors the input frame rate for arbitrarily long
	// per-frame durations.
	MinInputFPS = 0.1

	// OutputFPS is the constant output frame rate; a frame held for D
	// seconds is repeated across enough output frames to fill D.
	OutputFPS = 30

	// MaxDimension caps the long edge of the output; aspect ratio is
	// preserved and dimensions stay even for yuv420p.
	MaxDimension = 1280
)

type VideoService interface {
	Assemble(ctx context.Context, ws *workspace.Workspace, frameDuration float64) (string, error)
}

type videoService struct {
	cfg config.Config
}

func NewVideoService(cfg config.Config) VideoService {
	return &videoService{cfg: cfg}
}

// ParseFrameDuration parses the raw form value, falling back to the default
// for anything that is not a positive finite number. ParseFloat accepts "NaN"
// and "Inf", neither of which may reach the encoder's argument list.
func ParseFrameDuration(raw string) float64 {
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return DefaultFrameDuration
	}
	return d
}

// InputFPS derives the input sequence frame rate from the per-frame duration.
func InputFPS(frameDuration float64) float64 {
	fps := 1.0 / frameDuration
	if fps < MinInputFPS {
		fps = MinInputFPS
	}
	return fps
}

// EncodeArgs builds the fixed ffmpeg argument list for one run.
func EncodeArgs(inputPattern, outputPath string, frameDuration float64) []string {
	return []string{
		"-y",
		"-framerate", strconv.FormatFloat(InputFPS(frameDuration), 'f', -1, 64),
		"-i", inputPattern,
		"-c:v", "libx264",
		"-profile:v", "baseline",
		"-pix_fmt", "yuv420p",
		"-vf", fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease:force_divisible_by=2", MaxDimension, MaxDimension),
		"-r", strconv.Itoa(OutputFPS),
		"-movflags", "+faststart",
		outputPath,
	}
}

// Assemble drives the external encoder over the normalized frame sequence and
// returns the artifact path. The subprocess runs under a bounded wall-clock
// budget; exceeding it fails the run instead of hanging.
func (s *videoService) Assemble(ctx context.Context, ws *workspace.Workspace, frameDuration float64) (string, error) {
	timeout := time.Duration(s.cfg.EncodeTimeoutS) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	outputPath := ws.OutputPath()
	args := EncodeArgs(ws.FramePattern(), outputPath, frameDuration)

	cmd := exec.CommandContext(ctx, s.cfg.FFmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	slog.Info("starting encode", "run_id", ws.RunID, "cmd", cmd.String())
	if err := cmd.Run(); err != nil {
		slog.Error("encoder exited with error", "run_id", ws.RunID, "error", err, "stderr", stderr.String())
		return "", fmt.Errorf("%w: %v", ErrEncode, err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return "", fmt.Errorf("%w: encoder produced no output file", ErrEncode)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("%w: encoder produced an empty file", ErrEncode)
	}

	slog.Info("encode complete", "run_id", ws.RunID, "bytes", info.Size())
	return outputPath, nil
}
