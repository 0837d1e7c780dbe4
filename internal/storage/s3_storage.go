package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3Storage(region, bucket, accessKeyID, secretAccessKey, baseURL string) *S3Storage {
	var cfg aws.Config
	var err error

	// Static credentials when provided, otherwise the default chain (env, ~/.aws, IAM role)
	if accessKeyID != "" && secretAccessKey != "" {
		cfg = aws.Config{
			Region: region,
			Credentials: credentials.NewStaticCredentialsProvider(
				accessKeyID,
				secretAccessKey,
				"",
			),
		}
	} else {
		cfg, err = config.LoadDefaultConfig(context.TODO(),
			config.WithRegion(region),
		)
		if err != nil {
			cfg = aws.Config{
				Region: region,
			}
		}
	}

	return NewS3StorageWithClient(s3.NewFromConfig(cfg), bucket, baseURL)
}

func NewS3StorageWithClient(client *s3.Client, bucket, baseURL string) *S3Storage {
	return &S3Storage{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Upload stores body under key and returns its public URL
func (s *S3Storage) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	logger.Debug("Uploading object to S3", map[string]interface{}{
		"bucket": s.bucket,
		"key":    key,
		"size":   len(body),
	})

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		logger.Error("Failed to upload object to S3", err, map[string]interface{}{
			"bucket": s.bucket,
			"key":    key,
		})
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return s.FileURL(key), nil
}

// FileURL returns the CloudFront/custom URL when configured, otherwise the direct S3 URL
func (s *S3Storage) FileURL(key string) string {
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
}
