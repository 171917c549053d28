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

const instagramGraphURL = "https://graph.instagram.com/v21.0"

type InstagramService interface {
	PublishReel(ctx context.Context, tc transfer.TargetConfig, videoURL, caption string) *models.PlatformResult
}

type instagramService struct {
	baseURL string
	client  *http.Client
}

func NewInstagramService() InstagramService {
	return &instagramService{
		baseURL: instagramGraphURL,
		client:  http.DefaultClient,
	}
}

// PublishReel runs the two-phase protocol: create a media container keyed by
// the public video URL, then publish the returned creation id. Both raw
// bodies are kept in the result. A container response without an id is a
// described failure. The target depends on the storage stage's public link;
// the gate rejects it before this method when no link exists.
func (s *instagramService) PublishReel(ctx context.Context, tc transfer.TargetConfig, videoURL, caption string) *models.PlatformResult {
	container := transfer.InstagramContainerRequest{
		MediaType:   "REELS",
		VideoURL:    videoURL,
		Caption:     caption,
		CoverURL:    tc.Extra,
		AccessToken: tc.Token,
	}
	payload, err := json.Marshal(container)
	if err != nil {
		return &models.PlatformResult{Message: fmt.Sprintf("error marshalling payload: %v", err)}
	}

	containerURL := fmt.Sprintf("%s/%s/media", s.baseURL, tc.TargetID)
	status, containerBody, err := s.post(ctx, containerURL, payload)
	if err != nil {
		slog.Info("instagram container request failed", "error", err)
		return &models.PlatformResult{Message: fmt.Sprintf("HTTP request error: %v", err)}
	}
	if status < 200 || status >= 300 {
		return &models.PlatformResult{
			StatusCode: status,
			Body:       containerBody,
			Message:    fmt.Sprintf("container creation returned status %d", status),
		}
	}

	var created transfer.InstagramContainerResponse
	if err := json.Unmarshal([]byte(containerBody), &created); err != nil {
		return &models.PlatformResult{
			StatusCode: status,
			Body:       containerBody,
			Message:    fmt.Sprintf("error parsing container response: %v", err),
		}
	}
	if created.ID == "" {
		return &models.PlatformResult{
			StatusCode: status,
			Body:       containerBody,
			Message:    "no creation id returned from Instagram",
		}
	}

	publish := transfer.InstagramPublishRequest{
		CreationID:  created.ID,
		AccessToken: tc.Token,
	}
	payload, err = json.Marshal(publish)
	if err != nil {
		return &models.PlatformResult{Message: fmt.Sprintf("error marshalling payload: %v", err)}
	}

	publishURL := fmt.Sprintf("%s/%s/media_publish", s.baseURL, tc.TargetID)
	status, publishBody, err := s.post(ctx, publishURL, payload)
	if err != nil {
		slog.Info("instagram publish request failed", "creation_id", created.ID, "error", err)
		return &models.PlatformResult{
			Body:    containerBody,
			Message: fmt.Sprintf("HTTP request error: %v", err),
		}
	}

	// Both sub-call bodies travel back for diagnostics.
	return &models.PlatformResult{
		Success:    status >= 200 && status < 300,
		StatusCode: status,
		Body:       fmt.Sprintf("container: %s publish: %s", containerBody, publishBody),
	}
}

func (s *instagramService) post(ctx context.Context, url string, payload []byte) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return 0, "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("error reading response body: %w", err)
	}
	return resp.StatusCode, string(body), nil
}
