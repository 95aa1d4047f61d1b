package client

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"lms-service/internal/config"
	"lms-service/internal/util"
)

// S3Client handles course images and generated export artifacts.
type S3Client struct {
	client    *s3.Client
	presigner *s3.PresignClient
	config    *config.StorageConfig
}

func NewS3Client(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*S3Client, error) {
	storageConfig := cfg.Storage

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(storageConfig.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)

	util.Info("S3 client initialized",
		zap.String("bucket", storageConfig.Bucket),
		zap.String("region", storageConfig.Region))

	return &S3Client{
		client:    client,
		presigner: s3.NewPresignClient(client),
		config:    &storageConfig,
	}, nil
}

// Put uploads an object under the configured bucket.
func (c *S3Client) Put(ctx context.Context, key, contentType string, body []byte) error {
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

// Presign returns a time-limited download URL for an object.
func (c *S3Client) Presign(ctx context.Context, key string) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.config.Bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = c.config.PresignTTL
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}
	return req.URL, nil
}

// Delete removes an object; missing objects are treated as deleted.
func (c *S3Client) Delete(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// HealthCheck verifies bucket access.
func (c *S3Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.config.Bucket),
	})
	if err != nil {
		return fmt.Errorf("s3 bucket check failed: %w", err)
	}
	return nil
}
