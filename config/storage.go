package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the bucket snapshots are kept in and how to reach it.
type S3Config struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
	// Endpoint points at an S3 compatible service (MinIO, LocalStack).
	Endpoint   string        `mapstructure:"endpoint"`
	PresignTTL time.Duration `mapstructure:"presign_ttl" validate:"min=0"`
}

// NewClient initializes the S3 client from the environment or shared config.
func (c S3Config) NewClient(ctx context.Context) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// SnapshotLocation resolves a snapshot location. A bare key is placed in the
// configured bucket; paths and s3:// URLs pass through.
func (c S3Config) SnapshotLocation(location string) string {
	if c.Bucket == "" || strings.HasPrefix(location, "s3://") ||
		strings.HasPrefix(location, "/") || strings.HasPrefix(location, ".") {
		return location
	}
	return "s3://" + c.Bucket + "/" + strings.TrimPrefix(location, "/")
}
