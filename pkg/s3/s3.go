// Package s3 fetches objects from an S3-compatible store. Preseed payloads
// for air-gapped sites are staged in SeaweedFS-style buckets, so the client
// defaults to path-style addressing and static credentials.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// maxObjectSize bounds a single preseed payload read. Preseeds are text
// files; anything larger is a misconfigured key.
const maxObjectSize = 8 << 20

// Client is a thin wrapper around the AWS SDK v2 S3 client.
type Client struct {
	api *s3.Client
}

// Config holds the connection settings for an S3-compatible endpoint.
type Config struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Region         string
	DisableTLS     bool
	ForcePathStyle bool
}

// ConfigFromEnv reads connection settings from the environment.
//
// Required: S3_ENDPOINT (host:port or full URL), S3_ACCESS_KEY,
// S3_SECRET_KEY. Optional: S3_REGION (default "us-east-1"),
// S3_DISABLE_TLS (default false), S3_FORCE_PATH_STYLE (default true).
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Endpoint:       strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		SecretKey:      os.Getenv("S3_SECRET_KEY"),
		Region:         envOr("S3_REGION", "us-east-1"),
		DisableTLS:     envBool("S3_DISABLE_TLS", false),
		ForcePathStyle: envBool("S3_FORCE_PATH_STYLE", true),
	}

	if cfg.Endpoint == "" {
		return Config{}, errors.New("S3_ENDPOINT is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return Config{}, errors.New("S3_ACCESS_KEY and S3_SECRET_KEY are required")
	}
	return cfg, nil
}

// baseEndpoint normalises the endpoint to a full URL, choosing the scheme
// from the TLS setting when the value carries none.
func (c Config) baseEndpoint() string {
	if strings.HasPrefix(c.Endpoint, "http://") || strings.HasPrefix(c.Endpoint, "https://") {
		return c.Endpoint
	}
	if c.DisableTLS {
		return "http://" + c.Endpoint
	}
	return "https://" + c.Endpoint
}

// NewClient builds a Client from explicit settings.
func NewClient(cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(
		context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	)
	if err != nil {
		return nil, err
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.ForcePathStyle
		o.BaseEndpoint = aws.String(cfg.baseEndpoint())
	})

	return &Client{api: api}, nil
}

// NewClientFromEnv builds a Client from ConfigFromEnv.
func NewClientFromEnv() (*Client, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return NewClient(cfg)
}

// Fetch downloads the object at bucket/key in full.
func (c *Client) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	if c == nil {
		return nil, errors.New("nil client")
	}
	if bucket == "" || key == "" {
		return nil, errors.New("bucket and key are required")
	}

	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}
	if len(data) > maxObjectSize {
		return nil, fmt.Errorf("s3://%s/%s exceeds %d bytes", bucket, key, maxObjectSize)
	}
	return data, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
