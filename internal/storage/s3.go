// Package storage resolves pet photo object keys to shareable links.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pratik-mahalle/petalert/internal/config"
)

// PhotoLinker turns a stored photo key into a URL a chat client can fetch
type PhotoLinker interface {
	PhotoURL(ctx context.Context, key string) (string, error)
}

// Presigner is the subset of s3.PresignClient used here
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3PhotoStore presigns GET requests for objects in one bucket
type S3PhotoStore struct {
	presigner Presigner
	bucket    string
	ttl       time.Duration
}

// NewS3PhotoStore builds a store from cfg. Static credentials are used when
// configured, otherwise the default AWS chain.
func NewS3PhotoStore(ctx context.Context, cfg config.StorageConfig) (*S3PhotoStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3PhotoStoreWithPresigner(s3.NewPresignClient(client), cfg.Bucket, cfg.PresignTTL), nil
}

// NewS3PhotoStoreWithPresigner wraps an existing presigner
func NewS3PhotoStoreWithPresigner(p Presigner, bucket string, ttl time.Duration) *S3PhotoStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &S3PhotoStore{presigner: p, bucket: bucket, ttl: ttl}
}

func (s *S3PhotoStore) PhotoURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign photo %s: %w", key, err)
	}
	return req.URL, nil
}
