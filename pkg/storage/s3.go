// Package storage uploads user media to an S3-compatible bucket
// (Cloudflare R2, MinIO, or AWS itself). It is optional: the server
// runs without it and the avatar upload endpoint reports the feature
// as unavailable.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/linkuphq/backend/pkg/config"
)

// Store wraps an S3 client bound to a single bucket.
type Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewStore builds a Store from the S3_* settings. It returns an error
// when S3_ENDPOINT is unset so the caller can decide whether uploads
// are mandatory for its deployment.
func NewStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg.S3Endpoint == "" {
		return nil, errors.New("storage: S3_ENDPOINT is not set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
	})

	publicURL := strings.TrimRight(cfg.S3PublicURL, "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("%s/%s", strings.TrimRight(cfg.S3Endpoint, "/"), cfg.S3Bucket)
	}

	return &Store{
		client:    client,
		bucket:    cfg.S3Bucket,
		publicURL: publicURL,
	}, nil
}

// Upload writes body under key and returns the public URL of the object.
func (s *Store) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put object %q: %w", key, err)
	}

	return fmt.Sprintf("%s/%s", s.publicURL, key), nil
}
