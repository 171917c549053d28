package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/maheshrc27/clipcast/internal/models"
	"github.com/maheshrc27/clipcast/internal/transfer"
)

const tiktokPublishURL = "https://open.tiktokapis.com/v2/post/publish/video/init/"

type TiktokService interface {
	PublishVideo(ctx context.Context, tc transfer.TargetConfig, videoURL, caption string) *models.PlatformResult
}

type tiktokService struct {
	publishURL string
	client     *http.Client
}

func NewTiktokService() TiktokService {
	return &tiktokService{
		publishURL: tiktokPublishURL,
		client:     http.DefaultClient,
	}
}

// PublishVideo issues a single direct-post init call with the public video
// URL pulled by TikTok's servers. A caller-supplied session identifier is
// forwarded when present. Link dependency is enforced by the gate before this
// method runs.
func (s *tiktokService) PublishVideo(ctx context.Context, tc transfer.TargetConfig, videoURL, caption string) *models.PlatformResult {
	upload := transfer.VideoUploadRequest{
		PostInfo: transfer.VideoPostInfo{
			Title:                 caption,
			PrivacyLevel:          "PUBLIC_TO_EVERYONE",
			DisableDuet:           false,
			DisableComment:        false,
			DisableStitch:         false,
			VideoCoverTimestampMs: 1000,
		},
		SourceInfo: transfer.VideoSourceInfo{
			Source:   "PULL_FROM_URL",
			VideoURL: videoURL,
		},
		PublishID: tc.SessionID,
	}

	jsonData, err := json.Marshal(upload)
	if err != nil {
		return &models.PlatformResult{Message: fmt.Sprintf("error marshalling payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.publishURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return &models.PlatformResult{Message: fmt.Sprintf("error creating request: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+tc.Token)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info("tiktok request failed", "error", err)
		return &models.PlatformResult{Message: fmt.Sprintf("HTTP request error: %v", err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	result := &models.PlatformResult{
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}

	var parsed transfer.TikTokUploadResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		result.Message = parsed.Error.Message
	}
	return result
}
