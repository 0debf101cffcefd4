// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"google.golang.org/api/option"
)

// Storage drivers.
const (
	DriverLocal = "local"
	DriverS3    = "s3"
	DriverGCS   = "gcs"
)

// Storage persists uploaded files. Save returns the reference stored on the
// record: a site path for local files or an absolute URL for object stores.
type Storage interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, name string) error
}

// Config selects and configures a Storage driver.
type Config struct {
	Driver string

	// local
	Dir       string
	URLPrefix string

	// s3 / MinIO
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool

	// gcs
	GCSBucket          string
	GCSCredentialsFile string

	// Optional public base URL (CDN) for object stores.
	PublicURL string

	// Object key prefix for object stores.
	KeyPrefix string
}

// NewStorage builds the Storage selected by cfg.Driver.
func NewStorage(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case "", DriverLocal:
		return NewLocalStorage(cfg.Dir, cfg.URLPrefix)
	case DriverS3:
		return NewS3Storage(cfg)
	case DriverGCS:
		return NewGCSStorage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown upload driver %q", cfg.Driver)
	}
}

// LocalStorage writes files into a directory served under URLPrefix.
type LocalStorage struct {
	dir       string
	urlPrefix string
}

// NewLocalStorage creates dir if needed.
func NewLocalStorage(dir, urlPrefix string) (*LocalStorage, error) {
	if dir == "" {
		dir = "./uploads"
	}
	if urlPrefix == "" {
		urlPrefix = "/uploads"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &LocalStorage{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

// Dir returns the directory files are written to.
func (s *LocalStorage) Dir() string { return s.dir }

// Save implements Storage.
func (s *LocalStorage) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	p, err := s.path(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	return s.urlPrefix + "/" + name, nil
}

// Delete implements Storage. Missing files are not an error.
func (s *LocalStorage) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}

// path keeps name inside the upload directory.
func (s *LocalStorage) path(name string) (string, error) {
	base := filepath.Base(name)
	if base != name || base == "." || base == ".." || base == "" {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return filepath.Join(s.dir, base), nil
}

// S3Storage stores uploads in an S3 bucket. Setting an endpoint switches to
// path-style addressing for MinIO.
type S3Storage struct {
	client    *s3.S3
	bucket    string
	keyPrefix string
	baseURL   string
}

// NewS3Storage creates an S3 client from cfg.
func NewS3Storage(cfg Config) (*S3Storage, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}
	awsConfig := &aws.Config{Region: aws.String(region)}
	if cfg.S3AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, "")
	}
	if cfg.S3Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.S3Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		awsConfig.DisableSSL = aws.Bool(!cfg.S3UseSSL)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	baseURL := cfg.PublicURL
	if baseURL == "" {
		baseURL = s3BaseURL(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3Bucket, region)
	}
	return &S3Storage{
		client:    s3.New(sess),
		bucket:    cfg.S3Bucket,
		keyPrefix: keyPrefix(cfg.KeyPrefix),
		baseURL:   strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func s3BaseURL(endpoint string, useSSL bool, bucket, region string) string {
	if endpoint == "" || strings.Contains(endpoint, "amazonaws.com") {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	host := strings.TrimPrefix(strings.TrimPrefix(endpoint, "http://"), "https://")
	return fmt.Sprintf("%s://%s/%s", scheme, strings.TrimSuffix(host, "/"), bucket)
}

// Save implements Storage.
func (s *S3Storage) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := s.keyPrefix + name
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

// Delete implements Storage.
func (s *S3Storage) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.keyPrefix + name),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// GCSStorage stores uploads in a Google Cloud Storage bucket.
type GCSStorage struct {
	client    *storage.Client
	bucket    string
	keyPrefix string
	baseURL   string
}

// NewGCSStorage creates a GCS client. Without a credentials file,
// application default credentials are used.
func NewGCSStorage(ctx context.Context, cfg Config) (*GCSStorage, error) {
	if cfg.GCSBucket == "" {
		return nil, errors.New("gcs bucket is required")
	}
	var opts []option.ClientOption
	if cfg.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	baseURL := cfg.PublicURL
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + cfg.GCSBucket
	}
	return &GCSStorage{
		client:    client,
		bucket:    cfg.GCSBucket,
		keyPrefix: keyPrefix(cfg.KeyPrefix),
		baseURL:   strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Save implements Storage.
func (s *GCSStorage) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := s.keyPrefix + name
	wc := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // single request for small files
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("failed to upload file to GCS: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to upload file to GCS: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

// Delete implements Storage.
func (s *GCSStorage) Delete(ctx context.Context, name string) error {
	err := s.client.Bucket(s.bucket).Object(s.keyPrefix + name).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete file from GCS: %w", err)
	}
	return nil
}

// Close releases the GCS client.
func (s *GCSStorage) Close() error { return s.client.Close() }

func keyPrefix(p string) string {
	if p == "" {
		p = "uploads"
	}
	return strings.Trim(p, "/") + "/"
}

// nameFromRef recovers the stored file name from a reference returned by Save.
func nameFromRef(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	return path.Base(ref)
}
