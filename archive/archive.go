// Package archive stores completion receipts of finished play sessions in
// R2 object storage.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Receipt summarises a completed session.
type Receipt struct {
	UserGameID      string    `json:"user_game_id"`
	UserID          string    `json:"user_id"`
	GameID          string    `json:"game_id"`
	GameName        string    `json:"game_name"`
	TasksCompleted  int64     `json:"tasks_completed"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
	DurationSeconds int64     `json:"duration_seconds"`
}

// Key is the object key a receipt is stored under.
func (r Receipt) Key() string {
	return fmt.Sprintf("receipts/%s/%s.json", url.PathEscape(r.UserID), url.PathEscape(r.UserGameID))
}

type Archiver interface {
	// Store uploads the receipt and returns its public URL.
	Store(ctx context.Context, r Receipt) (string, error)
}

type noop struct{}

// NewNoop returns an archiver that stores nothing.
func NewNoop() Archiver { return noop{} }

func (noop) Store(context.Context, Receipt) (string, error) { return "", nil }

// R2Config holds the Cloudflare R2 credentials and bucket.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
	// Endpoint overrides the account endpoint.
	Endpoint string
}

func (c R2Config) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

type R2 struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewR2 builds an S3 client against the R2 endpoint of the account.
func NewR2(ctx context.Context, cfg R2Config) (*R2, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("r2 bucket is required")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load r2 config: %w", err)
	}

	endpoint := cfg.endpoint()
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	baseURL := cfg.CDNBaseURL
	if baseURL == "" {
		baseURL = endpoint + "/" + cfg.Bucket
	}
	return &R2{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

func (a *R2) Store(ctx context.Context, r Receipt) (string, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode receipt: %w", err)
	}
	key := r.Key()
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload receipt to r2: %w", err)
	}
	return fmt.Sprintf("%s/%s", a.baseURL, key), nil
}
