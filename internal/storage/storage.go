// Package storage publishes composed videos to S3-compatible object storage
// and issues time-limited download links.
package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultSignedURLExpiry is how long issued download links stay valid.
const DefaultSignedURLExpiry = time.Hour

// Config carries the object storage connection settings. Endpoint is the
// S3-compatible service URL (Wasabi in production); leave it empty for AWS
// proper.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

// Service uploads files and presigns GET links for one bucket.
type Service struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewService builds the S3 client for the configured endpoint.
func NewService(ctx context.Context, cfg Config) (*Service, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// S3-compatible services route by path, not virtual host.
			o.UsePathStyle = true
		}
	})

	return &Service{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

// ObjectKey returns the bucket key for a process's output file.
func ObjectKey(processID, filename string) string {
	return fmt.Sprintf("videos/%s/%s", processID, filepath.Base(filename))
}

// PublishFile uploads a local file under the process's key and returns the
// object key.
func (s *Service) PublishFile(ctx context.Context, processID, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	key := ObjectKey(processID, localPath)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("video/mp4"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	log.Printf("[Storage] Uploaded %s to s3://%s/%s", localPath, s.bucket, key)
	return key, nil
}

// SignedURL returns a presigned GET link for the object key.
func (s *Service) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = DefaultSignedURLExpiry
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}
