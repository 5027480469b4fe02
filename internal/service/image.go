package service

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/warblerhq/warbler/config"
)

// ImageService stores uploaded profile images in S3. The server runs without
// it when no bucket is configured; the profile form then only accepts URLs.
type ImageService struct {
	client *s3.Client
	bucket string
	region string
}

// NewImageService initializes the S3 client from the standard AWS environment.
func NewImageService(ctx context.Context, cfg *config.Config) (*ImageService, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET_NAME must be set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}

	return &ImageService{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.S3Bucket,
		region: cfg.AWSRegion,
	}, nil
}

// UploadProfileImage uploads an image under a fresh key and returns its
// public URL.
func (s *ImageService) UploadProfileImage(ctx context.Context, body io.Reader, contentType string) (string, error) {
	key := fmt.Sprintf("profile-images/%s", uuid.New().String())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
