package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"image/color"
	"mime/multipart"
	"os"
	"strings"
	"testing"

	config "github.com/maheshrc27/clipcast/configs"
	"github.com/maheshrc27/clipcast/internal/models"
	"github.com/maheshrc27/clipcast/internal/transfer"
	"github.com/maheshrc27/clipcast/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVideo struct {
	fail  bool
	calls int
}

func (s *stubVideo) Assemble(_ context.Context, ws *workspace.Workspace, _ float64) (string, error) {
	s.calls++
	if s.fail {
		return "", fmt.Errorf("%w: exit status 1", ErrEncode)
	}
	path := ws.OutputPath()
	if err := os.WriteFile(path, []byte("fakevideo"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type stubDrive struct {
	result *models.StorageUploadResult
	calls  int
}

func (s *stubDrive) Upload(_ context.Context, _ string, _ []byte, _, _ string) *models.StorageUploadResult {
	s.calls++
	return s.result
}

type stubPublisher struct {
	calls  int
	gotURL string
	panics bool
	result *models.PlatformResult
}

func (s *stubPublisher) publish(url string) *models.PlatformResult {
	s.calls++
	s.gotURL = url
	if s.panics {
		panic("publisher exploded")
	}
	if s.result != nil {
		return s.result
	}
	return &models.PlatformResult{Success: true, StatusCode: 200, Body: `{"id":"ok"}`}
}

func (s *stubPublisher) PublishVideo(_ context.Context, _ transfer.TargetConfig, _ []byte, _, _ string) *models.PlatformResult {
	return s.publish("")
}

func (s *stubPublisher) PublishReel(_ context.Context, _ transfer.TargetConfig, videoURL, _ string) *models.PlatformResult {
	return s.publish(videoURL)
}

type stubTiktok struct{ stubPublisher }

func (s *stubTiktok) PublishVideo(_ context.Context, _ transfer.TargetConfig, videoURL, _ string) *models.PlatformResult {
	return s.publish(videoURL)
}

type stubYoutube struct{ stubPublisher }

func (s *stubYoutube) UploadVideo(_ context.Context, _ transfer.TargetConfig, videoPath, _, _ string) *models.PlatformResult {
	return s.publish(videoPath)
}

type renderFixture struct {
	svc   RenderService
	video *stubVideo
	drive *stubDrive
	fb    *stubPublisher
	ig    *stubPublisher
	tt    *stubTiktok
	yt    *stubYoutube
	temp  string
}

func newRenderFixture(t *testing.T) *renderFixture {
	t.Helper()
	f := &renderFixture{
		video: &stubVideo{},
		drive: &stubDrive{result: &models.StorageUploadResult{Success: true, FileID: "f1", PublicURL: "https://drive.google.com/uc?id=f1", StatusCode: 200}},
		fb:    &stubPublisher{},
		ig:    &stubPublisher{},
		tt:    &stubTiktok{},
		yt:    &stubYoutube{},
		temp:  t.TempDir(),
	}
	cfg := config.Config{TempDir: f.temp, FFmpegPath: "ffmpeg", EncodeTimeoutS: 5}
	f.svc = NewRenderService(cfg, NewFrameService(), f.video, f.drive, f.fb, f.ig, f.tt, f.yt, nil)
	return f
}

func (f *renderFixture) leakedWorkspaces(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(f.temp)
	require.NoError(t, err)
	return len(entries)
}

func threeImageForm(t *testing.T) *multipart.Form {
	t.Helper()
	pic := pngBytes(t, color.White)
	return buildForm(t,
		[]string{"image_000", "image_001", "image_002"},
		map[string][]byte{"image_000": pic, "image_001": pic, "image_002": pic})
}

func baseCreation() *transfer.RenderCreation {
	return &transfer.RenderCreation{Prompt: "a sunny day", FrameDuration: "2"}
}

func TestRender_NoTargetsNoStorage(t *testing.T) {
	f := newRenderFixture(t)

	report, err := f.svc.Render(context.Background(), baseCreation(), threeImageForm(t))
	require.NoError(t, err)

	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("fakevideo")), report.Video)
	assert.Equal(t, "video/mp4", report.MimeType)
	assert.Empty(t, report.Error)

	assert.Nil(t, report.Storage, "storage never attempted without credentials")
	assert.Nil(t, report.Facebook)
	assert.Nil(t, report.Instagram)
	assert.Nil(t, report.Tiktok)
	assert.Nil(t, report.Youtube)

	assert.Zero(t, f.drive.calls)
	assert.Zero(t, f.ig.calls)

	assert.NotEmpty(t, report.Logs)
	joined := strings.Join(report.Logs, "\n")
	assert.Contains(t, joined, "storage upload skipped")
	assert.Contains(t, joined, "instagram publish skipped")

	assert.Zero(t, f.leakedWorkspaces(t), "workspace must be released")
}

func TestRender_EmptyPrompt(t *testing.T) {
	f := newRenderFixture(t)
	rc := baseCreation()
	rc.Prompt = ""

	report, err := f.svc.Render(context.Background(), rc, threeImageForm(t))
	assert.ErrorIs(t, err, ErrNoPrompt)
	assert.Empty(t, report.Video)
	assert.NotEmpty(t, report.Error)
}

func TestRender_NoImagesAbortsBeforeWorkspace(t *testing.T) {
	f := newRenderFixture(t)
	form := buildForm(t, []string{"other"}, map[string][]byte{"other": []byte("x")})

	report, err := f.svc.Render(context.Background(), baseCreation(), form)
	assert.ErrorIs(t, err, ErrNoImages)
	assert.Empty(t, report.Video)
	assert.Zero(t, f.video.calls)
	assert.Zero(t, f.leakedWorkspaces(t), "no workspace may exist for an empty request")
}

func TestRender_EncodeFailureIsFatalAndCleansUp(t *testing.T) {
	f := newRenderFixture(t)
	f.video.fail = true
	rc := baseCreation()
	rc.Instagram = transfer.TargetConfig{Enabled: true, Token: "t", TargetID: "id"}

	report, err := f.svc.Render(context.Background(), rc, threeImageForm(t))
	assert.ErrorIs(t, err, ErrEncode)
	assert.Empty(t, report.Video)
	assert.NotEmpty(t, report.Error)
	assert.Nil(t, report.Instagram, "no publishing after a fatal encode")
	assert.Zero(t, f.ig.calls)
	assert.Zero(t, f.leakedWorkspaces(t))
}

func TestRender_LinkTargetsRejectedWhenStorageSkipped(t *testing.T) {
	f := newRenderFixture(t)
	rc := baseCreation()
	rc.Instagram = transfer.TargetConfig{Enabled: true, Token: "t", TargetID: "id"}
	rc.Tiktok = transfer.TargetConfig{Enabled: true, Token: "t"}

	report, err := f.svc.Render(context.Background(), rc, threeImageForm(t))
	require.NoError(t, err)

	require.NotNil(t, report.Instagram, "enabled but unsatisfiable must be observable")
	assert.False(t, report.Instagram.Success)
	assert.Equal(t, 400, report.Instagram.StatusCode)
	assert.Contains(t, report.Instagram.Message, "missing public video URL")

	require.NotNil(t, report.Tiktok)
	assert.Equal(t, 400, report.Tiktok.StatusCode)

	assert.Zero(t, f.ig.calls, "no network call for an unsatisfiable target")
	assert.Zero(t, f.tt.calls)
}

func TestRender_LinkTargetsRejectedWhenStorageFails(t *testing.T) {
	f := newRenderFixture(t)
	f.drive.result = &models.StorageUploadResult{Success: false, StatusCode: 401, Message: "invalid credentials"}
	rc := baseCreation()
	rc.DriveToken = "drive-token"
	rc.Instagram = transfer.TargetConfig{Enabled: true, Token: "t", TargetID: "id"}

	report, err := f.svc.Render(context.Background(), rc, threeImageForm(t))
	require.NoError(t, err)

	assert.Equal(t, 1, f.drive.calls, "storage upload is attempted")
	require.NotNil(t, report.Storage)
	assert.False(t, report.Storage.Success)

	require.NotNil(t, report.Instagram)
	assert.False(t, report.Instagram.Success)
	assert.Equal(t, 400, report.Instagram.StatusCode)
	assert.Contains(t, report.Instagram.Message, "missing public video URL")
	assert.Zero(t, f.ig.calls)
}

func TestRender_MissingConfigRejectedLocally(t *testing.T) {
	f := newRenderFixture(t)
	rc := baseCreation()
	rc.Facebook = transfer.TargetConfig{Enabled: true} // no token, no page id

	report, err := f.svc.Render(context.Background(), rc, threeImageForm(t))
	require.NoError(t, err)

	require.NotNil(t, report.Facebook)
	assert.False(t, report.Facebook.Success)
	assert.Equal(t, 400, report.Facebook.StatusCode)
	assert.Zero(t, f.fb.calls, "local validation failure makes no network call")
}

func TestRender_PublicLinkThreadedToLinkTargets(t *testing.T) {
	f := newRenderFixture(t)
	rc := baseCreation()
	rc.DriveToken = "drive-token"
	rc.Instagram = transfer.TargetConfig{Enabled: true, Token: "t", TargetID: "id"}
	rc.Tiktok = transfer.TargetConfig{Enabled: true, Token: "t"}
	rc.Facebook = transfer.TargetConfig{Enabled: true, Token: "t", TargetID: "page"}
	rc.Youtube = transfer.TargetConfig{Enabled: true, Token: "t"}

	report, err := f.svc.Render(context.Background(), rc, threeImageForm(t))
	require.NoError(t, err)

	require.NotNil(t, report.Storage)
	assert.True(t, report.Storage.Success)

	assert.Equal(t, "https://drive.google.com/uc?id=f1", f.ig.gotURL)
	assert.Equal(t, "https://drive.google.com/uc?id=f1", f.tt.gotURL)
	assert.Contains(t, f.yt.gotURL, "output.mp4", "youtube gets the local artifact path")

	for _, r := range []*models.PlatformResult{report.Facebook, report.Instagram, report.Tiktok, report.Youtube} {
		require.NotNil(t, r)
		assert.True(t, r.Success)
	}
}

func TestRender_OneTargetPanicDoesNotBlockOthers(t *testing.T) {
	f := newRenderFixture(t)
	f.fb.panics = true
	rc := baseCreation()
	rc.DriveToken = "drive-token"
	rc.Facebook = transfer.TargetConfig{Enabled: true, Token: "t", TargetID: "page"}
	rc.Tiktok = transfer.TargetConfig{Enabled: true, Token: "t"}

	report, err := f.svc.Render(context.Background(), rc, threeImageForm(t))
	require.NoError(t, err, "a target fault never aborts the run")

	require.NotNil(t, report.Facebook)
	assert.False(t, report.Facebook.Success)
	assert.Contains(t, report.Facebook.Message, "unexpected error")

	require.NotNil(t, report.Tiktok)
	assert.True(t, report.Tiktok.Success, "later targets still attempted")
	assert.NotEmpty(t, report.Video)
}

func TestRender_FrameDurationFallback(t *testing.T) {
	f := newRenderFixture(t)
	rc := baseCreation()
	rc.FrameDuration = "not-a-number"

	report, err := f.svc.Render(context.Background(), rc, threeImageForm(t))
	require.NoError(t, err)
	assert.Contains(t, strings.Join(report.Logs, "\n"), "frame duration 2.00s")
}

func TestEvaluateTarget(t *testing.T) {
	enabled := transfer.TargetConfig{Enabled: true, Token: "t", TargetID: "id"}

	d, _ := EvaluateTarget(transfer.TargetConfig{}, true, false, "")
	assert.Equal(t, gateSkip, d, "disabled targets are skipped")

	d, reason := EvaluateTarget(transfer.TargetConfig{Enabled: true, TargetID: "id"}, true, false, "")
	assert.Equal(t, gateReject, d)
	assert.Contains(t, reason, "token")

	d, reason = EvaluateTarget(transfer.TargetConfig{Enabled: true, Token: "t"}, true, false, "")
	assert.Equal(t, gateReject, d)
	assert.Contains(t, reason, "identifier")

	d, reason = EvaluateTarget(enabled, true, true, "")
	assert.Equal(t, gateReject, d)
	assert.Equal(t, "missing public video URL", reason)

	d, _ = EvaluateTarget(enabled, true, true, "https://example.com/v.mp4")
	assert.Equal(t, gateProceed, d)

	d, _ = EvaluateTarget(transfer.TargetConfig{Enabled: true, Token: "t"}, false, false, "")
	assert.Equal(t, gateProceed, d, "targets without a required identifier need only a token")
}
