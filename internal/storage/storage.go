package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"travel-backoffice/internal/config"
)

var ErrDisabled = errors.New("object storage is not configured")

// Uploader stores public objects and returns their URL.
type Uploader interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// objectAPI is the subset of *s3.Client used here.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3 struct {
	api        objectAPI
	bucket     string
	publicBase string
	logger     *logrus.Logger
}

// NewS3 connects to an S3-compatible endpoint such as Cloudflare R2.
func NewS3(ctx context.Context, cfg *config.StorageConfig, logger *logrus.Logger) (*S3, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	endpoint := cfg.PublicEndpoint()
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	logger.WithFields(logrus.Fields{"endpoint": endpoint, "bucket": cfg.Bucket}).Info("Object storage configured")
	return &S3{
		api:        client,
		bucket:     cfg.Bucket,
		publicBase: strings.TrimRight(cfg.PublicURL, "/"),
		logger:     logger,
	}, nil
}

func (s *S3) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	s.logger.WithFields(logrus.Fields{"key": key, "size": len(body)}).Debug("Object uploaded")
	return s.URL(key), nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// URL is the public address of key.
func (s *S3) URL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.publicBase + "/" + strings.Join(parts, "/")
}

// KeyFromURL reverses URL for objects under this bucket's public base.
func (s *S3) KeyFromURL(raw string) (string, bool) {
	if !strings.HasPrefix(raw, s.publicBase+"/") {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimPrefix(raw, s.publicBase+"/"))
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9._-]+`)

// ObjectKey builds prefix/<uuid>-<sanitised name>.
func ObjectKey(prefix, filename string) string {
	name := strings.ToLower(path.Base(strings.ReplaceAll(filename, "\\", "/")))
	ext := path.Ext(name)
	stem := strings.Trim(unsafeChars.ReplaceAllString(strings.TrimSuffix(name, ext), "-"), "-.")
	ext = unsafeChars.ReplaceAllString(ext, "")
	if stem == "" {
		stem = "file"
	}
	key := uuid.NewString() + "-" + stem + ext
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key
}
