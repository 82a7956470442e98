// Package storage persists uploaded recipe images in an S3-compatible
// bucket and resolves stored paths to public URLs.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/tastebook/backend/internal/config"
)

// ImageRoot is the key prefix under which recipe images live. Paths with
// the "public/" prefix are servable and get rewritten to absolute URLs.
const ImageRoot = "public/images/recipes"

type S3Storage struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func New(cfg *config.Config) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.StorageRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.StorageKey, cfg.StorageSecret, ""),
		),
	}
	if cfg.StorageEndpoint != "" {
		endpoint := cfg.StorageEndpoint
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{URL: endpoint}, nil
		})
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	return &S3Storage{
		client:    s3.NewFromConfig(awsCfg),
		bucket:    cfg.StorageBucket,
		publicURL: strings.TrimSuffix(cfg.StoragePublicURL, "/"),
	}, nil
}

// Store uploads the file bytes under a fresh key derived from the
// original filename's extension and returns the stored path.
func (s *S3Storage) Store(ctx context.Context, data []byte, filename string) (string, error) {
	key := fmt.Sprintf("%s/%s%s", ImageRoot, uuid.New().String(), strings.ToLower(filepath.Ext(filename)))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(http.DetectContentType(data)),
		CacheControl: aws.String("public, max-age=31536000"),
		ACL:          types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return key, nil
}

// URL resolves a stored path to the absolute URL it is served from.
func (s *S3Storage) URL(path string) string {
	return s.publicURL + "/" + strings.TrimPrefix(path, "public/")
}

// Delete removes a stored object. Missing keys are not an error.
func (s *S3Storage) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
