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
	"net/textproto"

	"github.com/maheshrc27/clipcast/internal/models"
	"github.com/maheshrc27/clipcast/internal/transfer"
)

const (
	driveUploadURL = "https://www.googleapis.com/upload/drive/v3/files?uploadType=multipart"
	driveFilesURL  = "https://www.googleapis.com/drive/v3/files"
	videoMimeType  = "video/mp4"
)

type DriveService interface {
	Upload(ctx context.Context, name string, video []byte, token, folderID string) *models.StorageUploadResult
}

type driveService struct {
	uploadURL string
	filesURL  string
	client    *http.Client
}

func NewDriveService() DriveService {
	return &driveService{
		uploadURL: driveUploadURL,
		filesURL:  driveFilesURL,
		client:    http.DefaultClient,
	}
}

// Upload performs the two-call protocol: create the file object, then grant
// anyone-with-link read access. Success requires both calls to succeed; a
// create response without an id is a described failure, not a crash. No call
// is ever retried.
func (s *driveService) Upload(ctx context.Context, name string, video []byte, token, folderID string) *models.StorageUploadResult {
	result := &models.StorageUploadResult{}

	status, createBody, err := s.createFile(ctx, name, video, token, folderID)
	result.StatusCode = status
	result.CreateBody = createBody
	if err != nil {
		result.Message = err.Error()
		slog.Info("drive create call failed", "error", err)
		return result
	}
	if status < 200 || status >= 300 {
		result.Message = fmt.Sprintf("drive create returned status %d", status)
		return result
	}

	var created transfer.DriveFileResponse
	if err := json.Unmarshal([]byte(createBody), &created); err != nil {
		result.Message = fmt.Sprintf("error parsing drive response: %v", err)
		return result
	}
	if created.ID == "" {
		result.Message = "drive response did not contain a file id"
		return result
	}
	result.FileID = created.ID

	status, permBody, err := s.grantPublicAccess(ctx, created.ID, token)
	if status != 0 {
		// a transport-level failure carries no HTTP status; keep the
		// create call's status so diagnostics always have one
		result.StatusCode = status
	}
	result.PermissionBody = permBody
	if err != nil {
		result.Message = err.Error()
		slog.Info("drive permission call failed", "file_id", created.ID, "error", err)
		return result
	}
	if status < 200 || status >= 300 {
		result.Message = fmt.Sprintf("drive permission grant returned status %d", status)
		return result
	}

	result.Success = true
	result.PublicURL = fmt.Sprintf("https://drive.google.com/uc?id=%s", created.ID)
	return result
}

func (s *driveService) createFile(ctx context.Context, name string, video []byte, token, folderID string) (int, string, error) {
	metadata := transfer.DriveFileMetadata{
		Name:     name,
		MimeType: videoMimeType,
	}
	if folderID != "" {
		metadata.Parents = []string{folderID}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return 0, "", fmt.Errorf("error marshalling metadata: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return 0, "", fmt.Errorf("error creating metadata part: %w", err)
	}
	if _, err := metaPart.Write(metadataJSON); err != nil {
		return 0, "", fmt.Errorf("error writing metadata part: %w", err)
	}

	mediaHeader := textproto.MIMEHeader{}
	mediaHeader.Set("Content-Type", videoMimeType)
	mediaPart, err := writer.CreatePart(mediaHeader)
	if err != nil {
		return 0, "", fmt.Errorf("error creating media part: %w", err)
	}
	if _, err := mediaPart.Write(video); err != nil {
		return 0, "", fmt.Errorf("error writing media part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, "", fmt.Errorf("error finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.uploadURL, &buf)
	if err != nil {
		return 0, "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())

	return s.do(req)
}

func (s *driveService) grantPublicAccess(ctx context.Context, fileID, token string) (int, string, error) {
	payload, err := json.Marshal(transfer.DrivePermissionRequest{Role: "reader", Type: "anyone"})
	if err != nil {
		return 0, "", fmt.Errorf("error marshalling payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/permissions", s.filesURL, fileID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return 0, "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	return s.do(req)
}

func (s *driveService) do(req *http.Request) (int, string, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("error reading response body: %w", err)
	}
	return resp.StatusCode, string(body), nil
}
