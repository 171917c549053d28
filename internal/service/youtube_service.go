package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/maheshrc27/clipcast/internal/models"
	"github.com/maheshrc27/clipcast/internal/transfer"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const defaultYoutubeCategory = "22"

type YoutubeService interface {
	UploadVideo(ctx context.Context, tc transfer.TargetConfig, videoPath, title, caption string) *models.PlatformResult
}

type youtubeService struct {
	endpoint string // overrides the API base URL, empty in production
}

func NewYoutubeService() YoutubeService {
	return &youtubeService{}
}

// UploadVideo pushes the raw artifact straight to YouTube with the
// caller-supplied access token. Like the Facebook target it needs the local
// file, not the public link.
func (s *youtubeService) UploadVideo(ctx context.Context, tc transfer.TargetConfig, videoPath, title, caption string) *models.PlatformResult {
	token := &oauth2.Token{AccessToken: tc.Token}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		slog.Info("error creating youtube client", "error", err)
		return &models.PlatformResult{Message: fmt.Sprintf("error creating YouTube client: %v", err)}
	}

	file, err := os.Open(videoPath)
	if err != nil {
		return &models.PlatformResult{Message: fmt.Sprintf("error opening video file: %v", err)}
	}
	defer file.Close()

	category := tc.Extra
	if category == "" {
		category = defaultYoutubeCategory
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title,
			Description: caption,
			CategoryId:  category,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: "public",
		},
	}

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	response, err := call.Media(file).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return &models.PlatformResult{
				StatusCode: apiErr.Code,
				Body:       apiErr.Body,
				Message:    apiErr.Message,
			}
		}
		slog.Info("youtube upload failed", "error", err)
		return &models.PlatformResult{Message: fmt.Sprintf("error uploading video: %v", err)}
	}

	return &models.PlatformResult{
		Success:    true,
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf(`{"id":%q}`, response.Id),
		Message:    fmt.Sprintf("https://youtu.be/%s", response.Id),
	}
}
