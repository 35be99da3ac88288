// Package imagehost forwards profile images to an S3-compatible bucket.
package imagehost

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"

	"github.com/redmonkez12/learnhub-api/internal/config"
)

const keyPrefix = "profiles/"

// S3Host uploads images with the aws-sdk-go uploader.
type S3Host struct {
	uploader s3manageriface.UploaderAPI
	bucket   string
}

// New creates an S3Host for the configured bucket. An empty endpoint uses AWS itself.
func New(cfg config.ImageHostConfig) (*S3Host, error) {
	if cfg.CloudName == "" {
		return nil, fmt.Errorf("image host bucket is required")
	}

	awsConfig := &aws.Config{
		Region:           aws.String(cfg.Region),
		Credentials:      credentials.NewStaticCredentials(cfg.APIKey, cfg.APISecret, ""),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create image host session: %w", err)
	}

	return newS3Host(s3manager.NewUploader(sess), cfg.CloudName), nil
}

func newS3Host(uploader s3manageriface.UploaderAPI, bucket string) *S3Host {
	return &S3Host{uploader: uploader, bucket: bucket}
}

// Upload stores the local file at path under the public id and returns its URL.
// Re-uploading the same public id replaces the previous image.
func (h *S3Host) Upload(ctx context.Context, publicID, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	out, err := h.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(keyPrefix + publicID),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return out.Location, nil
}
