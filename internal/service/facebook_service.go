package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/maheshrc27/clipcast/internal/models"
	"github.com/maheshrc27/clipcast/internal/transfer"
)

const facebookVideoURL = "https://graph-video.facebook.com/v21.0"

type FacebookService interface {
	PublishVideo(ctx context.Context, tc transfer.TargetConfig, video []byte, title, caption string) *models.PlatformResult
}

type facebookService struct {
	baseURL string
	client  *http.Client
}

func NewFacebookService() FacebookService {
	return &facebookService{
		baseURL: facebookVideoURL,
		client:  http.DefaultClient,
	}
}

// PublishVideo uploads the raw artifact to a page feed in a single multipart
// call. The target takes the video bytes directly, so it has no dependency on
// the storage stage. Success is transport-level only; the raw body is always
// returned for the caller to inspect.
func (s *facebookService) PublishVideo(ctx context.Context, tc transfer.TargetConfig, video []byte, title, caption string) *models.PlatformResult {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"access_token": tc.Token,
		"title":        title,
		"description":  caption,
	}
	if tc.Extra != "" {
		cta, err := json.Marshal(map[string]interface{}{
			"type":  "LEARN_MORE",
			"value": map[string]string{"link": tc.Extra},
		})
		if err == nil {
			fields["call_to_action"] = string(cta)
		}
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return &models.PlatformResult{Message: fmt.Sprintf("error writing form field: %v", err)}
		}
	}

	filePart, err := writer.CreateFormFile("source", "video.mp4")
	if err != nil {
		return &models.PlatformResult{Message: fmt.Sprintf("error creating file part: %v", err)}
	}
	if _, err := filePart.Write(video); err != nil {
		return &models.PlatformResult{Message: fmt.Sprintf("error writing video part: %v", err)}
	}
	if err := writer.Close(); err != nil {
		return &models.PlatformResult{Message: fmt.Sprintf("error finalizing multipart body: %v", err)}
	}

	url := fmt.Sprintf("%s/%s/videos", s.baseURL, tc.TargetID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, &buf)
	if err != nil {
		return &models.PlatformResult{Message: fmt.Sprintf("error creating request: %v", err)}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info("facebook request failed", "error", err)
		return &models.PlatformResult{Message: fmt.Sprintf("HTTP request error: %v", err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return &models.PlatformResult{
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}
