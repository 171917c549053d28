package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/maheshrc27/clipcast/configs"
)

// ArchiveService keeps a best effort copy of every produced artifact in
// S3-compatible storage (Cloudflare R2). It is optional: the orchestrator
// holds a nil pointer when the bucket is not configured, and an upload
// failure never fails the run.
type ArchiveService struct {
	config cfg.Config
}

func NewArchiveService(cfg cfg.Config) *ArchiveService {
	return &ArchiveService{config: cfg}
}

func (r *ArchiveService) r2Client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.config.R2.AccessKey, r.config.R2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.R2.AccountID))
	}), nil
}

// Store uploads the artifact under the run id and returns its public URL if
// a public base is configured.
func (r *ArchiveService) Store(ctx context.Context, runID string, video []byte) (string, error) {
	client, err := r.r2Client(ctx)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("artifacts/%s.mp4", runID)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(video),
		ContentType: aws.String(videoMimeType),
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	if r.config.R2.PublicBase == "" {
		return "", nil
	}
	return fmt.Sprintf("%s/%s", r.config.R2.PublicBase, key), nil
}
