package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime/multipart"
	"os"

	config "github.com/maheshrc27/clipcast/configs"
	"github.com/maheshrc27/clipcast/internal/models"
	"github.com/maheshrc27/clipcast/internal/transfer"
	"github.com/maheshrc27/clipcast/internal/workspace"
	"github.com/maheshrc27/clipcast/pkg/utils"
)

type gateDecision int

const (
	gateSkip gateDecision = iota
	gateReject
	gateProceed
)

// EvaluateTarget is the pure per-target gate evaluated before any network
// effect: skip when disabled, reject locally when required configuration or
// the link dependency is missing, proceed otherwise.
func EvaluateTarget(tc transfer.TargetConfig, requireTargetID, needsLink bool, publicURL string) (gateDecision, string) {
	if !tc.Enabled {
		return gateSkip, ""
	}
	if tc.Token == "" {
		return gateReject, "missing access token"
	}
	if requireTargetID && tc.TargetID == "" {
		return gateReject, "missing account identifier"
	}
	if needsLink && publicURL == "" {
		return gateReject, "missing public video URL"
	}
	return gateProceed, ""
}

func rejectedResult(message string) *models.PlatformResult {
	return &models.PlatformResult{
		Success:    false,
		StatusCode: 400,
		Body:       fmt.Sprintf(`{"error":%q}`, message),
		Message:    message,
	}
}

type RenderService interface {
	Render(ctx context.Context, rc *transfer.RenderCreation, form *multipart.Form) (*models.RenderReport, error)
}

type renderService struct {
	cfg     config.Config
	frames  FrameService
	video   VideoService
	drive   DriveService
	fb      FacebookService
	ig      InstagramService
	tt      TiktokService
	yt      YoutubeService
	archive *ArchiveService
}

func NewRenderService(
	cfg config.Config,
	frames FrameService,
	video VideoService,
	drive DriveService,
	fb FacebookService,
	ig InstagramService,
	tt TiktokService,
	yt YoutubeService,
	archive *ArchiveService) RenderService {
	return &renderService{
		cfg:     cfg,
		frames:  frames,
		video:   video,
		drive:   drive,
		fb:      fb,
		ig:      ig,
		tt:      tt,
		yt:      yt,
		archive: archive,
	}
}

// Render runs one complete pipeline: normalization, assembly, optional
// storage upload, then the independent publish targets in a fixed order.
// Stage-fatal errors abort with no artifact; per-target failures only mark
// that target's result. The workspace is released on every path.
func (s *renderService) Render(ctx context.Context, rc *transfer.RenderCreation, form *multipart.Form) (report *models.RenderReport, err error) {
	rl := NewRunLog()
	report = &models.RenderReport{}

	// Unclassified panics must surface as a generic fatal error, never as an
	// unhandled fault to the caller.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("recovered from panic during render", "panic", r)
			err = fmt.Errorf("unexpected error: %v", r)
			rl.Add("fatal: %v", err)
			report.Error = err.Error()
		}
		report.Logs = rl.Lines()
	}()

	if rc.Prompt == "" {
		rl.Add("rejected: empty prompt")
		report.Error = ErrNoPrompt.Error()
		return report, ErrNoPrompt
	}

	title := rc.Title
	if title == "" {
		title = utils.Truncate(rc.Prompt, 60)
	}

	// Assets are collected before the workspace exists so an empty request
	// never touches the disk.
	assets, err := s.frames.CollectAssets(form)
	if err != nil {
		rl.Add("rejected: %v", err)
		report.Error = err.Error()
		return report, err
	}
	rl.Add("received %d image(s), prompt %q", len(assets), utils.Truncate(rc.Prompt, 40))

	ws, err := workspace.Acquire(s.cfg.TempDir)
	if err != nil {
		rl.Add("fatal: %v", err)
		report.Error = err.Error()
		return report, err
	}
	defer ws.Release()

	frames, err := s.frames.Normalize(assets, ws)
	if err != nil {
		rl.Add("fatal: %v", err)
		report.Error = err.Error()
		return report, err
	}
	rl.Add("normalized %d frame(s)", len(frames))

	frameDuration := ParseFrameDuration(rc.FrameDuration)
	rl.Add("render started: frame duration %.2fs, input %.3f fps", frameDuration, InputFPS(frameDuration))

	videoPath, err := s.video.Assemble(ctx, ws, frameDuration)
	if err != nil {
		rl.Add("fatal: %v", err)
		report.Error = err.Error()
		return report, err
	}

	videoBytes, err := os.ReadFile(videoPath)
	if err != nil {
		err = fmt.Errorf("%w: unable to read artifact: %v", ErrEncode, err)
		rl.Add("fatal: %v", err)
		report.Error = err.Error()
		return report, err
	}
	report.Video = base64.StdEncoding.EncodeToString(videoBytes)
	report.MimeType = videoMimeType
	rl.Add("render finished: %d bytes", len(videoBytes))

	if s.archive != nil {
		archiveURL, archiveErr := s.archive.Store(ctx, ws.RunID, videoBytes)
		if archiveErr != nil {
			rl.Add("artifact archive failed: %v", archiveErr)
		} else {
			report.ArchiveURL = archiveURL
			rl.Add("artifact archived")
		}
	}

	publicURL := s.runStorage(ctx, rc, title, videoBytes, rl, report)
	s.runTargets(ctx, rc, videoPath, videoBytes, title, rl, report, publicURL)

	return report, nil
}

// runStorage executes the optional Drive stage and returns the public link
// for the link-dependent targets, empty when skipped or failed.
func (s *renderService) runStorage(ctx context.Context, rc *transfer.RenderCreation, title string, video []byte, rl *RunLog, report *models.RenderReport) string {
	if rc.DriveToken == "" {
		rl.Add("storage upload skipped: no credentials supplied")
		return ""
	}

	rl.Add("storage upload started")
	result := s.drive.Upload(ctx, title+".mp4", video, rc.DriveToken, rc.DriveFolder)
	report.Storage = result
	if !result.Success {
		rl.Add("storage upload failed: %s", result.Message)
		return ""
	}
	rl.Add("storage upload succeeded: %s", result.PublicURL)
	return result.PublicURL
}

// runTargets evaluates every publish target independently, in a fixed order.
// One target's failure never blocks the others.
func (s *renderService) runTargets(ctx context.Context, rc *transfer.RenderCreation, videoPath string, video []byte, title string, rl *RunLog, report *models.RenderReport, publicURL string) {
	report.Facebook = s.attempt(rl, "facebook", rc.Facebook, true, false, publicURL, func() *models.PlatformResult {
		return s.fb.PublishVideo(ctx, rc.Facebook, video, title, rc.Caption)
	})
	report.Instagram = s.attempt(rl, "instagram", rc.Instagram, true, true, publicURL, func() *models.PlatformResult {
		return s.ig.PublishReel(ctx, rc.Instagram, publicURL, rc.Caption)
	})
	report.Tiktok = s.attempt(rl, "tiktok", rc.Tiktok, false, true, publicURL, func() *models.PlatformResult {
		return s.tt.PublishVideo(ctx, rc.Tiktok, publicURL, rc.Caption)
	})
	report.Youtube = s.attempt(rl, "youtube", rc.Youtube, false, false, publicURL, func() *models.PlatformResult {
		return s.yt.UploadVideo(ctx, rc.Youtube, videoPath, title, rc.Caption)
	})
}

// attempt applies the gate, then runs the protocol with panic isolation so a
// fault in one target cannot abort the remaining ones.
func (s *renderService) attempt(rl *RunLog, name string, tc transfer.TargetConfig, requireTargetID, needsLink bool, publicURL string, publish func() *models.PlatformResult) (result *models.PlatformResult) {
	decision, reason := EvaluateTarget(tc, requireTargetID, needsLink, publicURL)
	switch decision {
	case gateSkip:
		rl.Add("%s publish skipped: target disabled", name)
		return nil
	case gateReject:
		rl.Add("%s publish rejected: %s", name, reason)
		return rejectedResult(reason)
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("recovered from panic in publish target", "target", name, "panic", r)
			result = &models.PlatformResult{Message: fmt.Sprintf("unexpected error: %v", r)}
			rl.Add("%s publish failed: unexpected error", name)
		}
	}()

	rl.Add("%s publish started", name)
	result = publish()
	if result.Success {
		rl.Add("%s publish succeeded (status %d)", name, result.StatusCode)
	} else {
		rl.Add("%s publish failed (status %d): %s", name, result.StatusCode, result.Message)
	}
	return result
}
