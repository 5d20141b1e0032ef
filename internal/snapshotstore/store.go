// Package snapshotstore persists snapshot files on local disk or in S3.
package snapshotstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Store reads and writes one snapshot. Write replaces the object as a whole.
type Store interface {
	Write(ctx context.Context, data []byte) error
	Read(ctx context.Context) ([]byte, error)
	Location() string
}

// ClientFactory builds the S3 client for s3:// locations.
type ClientFactory func(ctx context.Context) (*s3.Client, error)

// Open picks the store for a location: s3://bucket/key or a filesystem path.
func Open(ctx context.Context, location string, newClient ClientFactory) (Store, error) {
	if !strings.HasPrefix(location, "s3://") {
		if location == "" {
			return nil, fmt.Errorf("snapshot location is empty")
		}
		return NewLocalStore(location), nil
	}

	bucket, key, err := ParseS3Location(location)
	if err != nil {
		return nil, err
	}
	if newClient == nil {
		return nil, fmt.Errorf("snapshot location %s needs an S3 client", location)
	}
	client, err := newClient(ctx)
	if err != nil {
		return nil, err
	}
	return NewS3Store(client, s3.NewPresignClient(client), bucket, key), nil
}

// ParseS3Location splits s3://bucket/key.
func ParseS3Location(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("invalid snapshot location %q: %w", location, err)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Scheme != "s3" || u.Host == "" || key == "" {
		return "", "", fmt.Errorf("invalid snapshot location %q: want s3://bucket/key", location)
	}
	return u.Host, key, nil
}

// LocalStore writes through a temporary file in the target directory and
// renames it into place, so readers never observe a partial snapshot.
type LocalStore struct {
	path string
}

func NewLocalStore(path string) *LocalStore {
	return &LocalStore{path: path}
}

func (s *LocalStore) Location() string { return s.path }

func (s *LocalStore) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set snapshot permissions: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}
	return nil
}

func (s *LocalStore) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// ObjectAPI is the subset of the S3 client used by S3Store.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store keeps the snapshot as a single S3 object. PutObject is atomic per
// object.
type S3Store struct {
	client  ObjectAPI
	presign *s3.PresignClient
	bucket  string
	key     string
}

func NewS3Store(client ObjectAPI, presign *s3.PresignClient, bucket, key string) *S3Store {
	return &S3Store{client: client, presign: presign, bucket: bucket, key: key}
}

func (s *S3Store) Location() string { return "s3://" + s.bucket + "/" + s.key }

func (s *S3Store) Write(ctx context.Context, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(s.key)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot to %s: %w", s.Location(), err)
	}
	return nil
}

func (s *S3Store) Read(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download snapshot from %s: %w", s.Location(), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot body: %w", err)
	}
	return data, nil
}

// PresignedURL returns a temporary download link for reviewing the snapshot.
func (s *S3Store) PresignedURL(ctx context.Context, expiration time.Duration) (string, error) {
	if s.presign == nil {
		return "", fmt.Errorf("presigning not configured")
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func contentType(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".yaml", ".yml":
		return "application/yaml"
	default:
		return "application/json"
	}
}
