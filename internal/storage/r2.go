package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	ErrNotConfigured = errors.New("missing R2 configuration (R2_ENDPOINT, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_BUCKET_NAME)")
	ErrInvalidKey    = errors.New("invalid object key")
)

// R2Config holds Cloudflare R2 credentials.
type R2Config struct {
	Endpoint        string // https://<account-id>.r2.cloudflarestorage.com
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicDomain    string
}

func (c R2Config) complete() bool {
	return c.Endpoint != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.Bucket != ""
}

// R2Client wraps the S3 client and its presigner for one bucket.
type R2Client struct {
	S3        *s3.Client
	presigner *s3.PresignClient
	bucket    string
	domain    string
}

func NewR2Client(ctx context.Context, cfg R2Config) (*R2Client, error) {
	if !cfg.complete() {
		return nil, ErrNotConfigured
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // required for R2
	})

	return &R2Client{
		S3:        client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		domain:    strings.TrimRight(cfg.PublicDomain, "/"),
	}, nil
}

// CleanKey validates a client-supplied object key such as
// "profiles/designers/jane.jpg".
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", ErrInvalidKey
		}
	}
	return path.Clean(key), nil
}

// PresignPut returns a URL the browser can PUT the object to until expiry.
func (c *R2Client) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := c.presigner.PresignPutObject(ctx, input, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

func (c *R2Client) DeleteObject(ctx context.Context, key string) error {
	_, err := c.S3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// PublicURL is empty when no public domain is configured.
func (c *R2Client) PublicURL(key string) string {
	if c.domain == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s", c.domain, c.bucket, key)
}
