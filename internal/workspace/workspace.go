package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const dirPrefix = "run-"

// Workspace is the isolated transient directory owned by exactly one run.
// It is created on demand and removed unconditionally when the run ends.
type Workspace struct {
	RunID string
	Dir   string
}

// Acquire creates a fresh run directory under baseDir.
func Acquire(baseDir string) (*Workspace, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(baseDir, dirPrefix+id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating run workspace: %w", err)
	}

	return &Workspace{RunID: id, Dir: dir}, nil
}

// Release removes the workspace and everything in it. Safe to call on both
// success and failure paths.
func (w *Workspace) Release() {
	if w == nil || w.Dir == "" {
		return
	}
	if err := os.RemoveAll(w.Dir); err != nil {
		slog.Error("failed to release workspace", "dir", w.Dir, "error", err)
	}
}

// FramePath returns the addressable location of frame n. Three digit zero
// padding keeps names collision free for at least 1000 frames and gives
// ffmpeg a predictable input pattern.
func (w *Workspace) FramePath(n int) string {
	return filepath.Join(w.Dir, fmt.Sprintf("frame_%03d.jpg", n))
}

// FramePattern is the ffmpeg input pattern matching FramePath.
func (w *Workspace) FramePattern() string {
	return filepath.Join(w.Dir, "frame_%03d.jpg")
}

// OutputPath is where the assembled artifact is written.
func (w *Workspace) OutputPath() string {
	return filepath.Join(w.Dir, "output.mp4")
}

// Sweep removes run directories under baseDir older than maxAge. A crashed
// process can leave its workspace behind; the cron janitor calls this
// periodically so leaks never accumulate.
func Sweep(baseDir string, maxAge time.Duration) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		slog.Info("janitor: unable to read temp dir", "dir", baseDir, "error", err)
		return
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), dirPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			stale := filepath.Join(baseDir, entry.Name())
			if err := os.RemoveAll(stale); err != nil {
				slog.Info("janitor: failed to remove stale workspace", "dir", stale, "error", err)
				continue
			}
			slog.Info("janitor: removed stale workspace", "dir", stale)
		}
	}
}
