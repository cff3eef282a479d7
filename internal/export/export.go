// Package export persists rendered listings to object storage.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mohammed-shakir/eodata-query/internal/core/config"
	"github.com/mohammed-shakir/eodata-query/internal/core/observability"
)

var ErrDisabled = errors.New("listing export is not configured")

type Sink interface {
	Put(ctx context.Context, key, text string) (Location, error)
}

type Location struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Sink struct {
	logger *slog.Logger
	client putObjectAPI
	bucket string
	prefix string
}

// NewS3Sink returns ErrDisabled when no bucket is configured.
func NewS3Sink(ctx context.Context, cfg config.ExportCfg, logger *slog.Logger) (*S3Sink, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, ErrDisabled
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return newS3Sink(logger, client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Sink(logger *slog.Logger, client putObjectAPI, bucket, prefix string) *S3Sink {
	return &S3Sink{
		logger: logger,
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (s *S3Sink) Put(ctx context.Context, key, text string) (Location, error) {
	loc := Location{Bucket: s.bucket, Key: path.Join(s.prefix, key)}
	start := time.Now()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(loc.Bucket),
		Key:         aws.String(loc.Key),
		Body:        strings.NewReader(text),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		observability.IncExport("error")
		s.logger.ErrorContext(ctx, "listing export failed", "err", err, "bucket", loc.Bucket, "key", loc.Key)
		return Location{}, fmt.Errorf("put %s: %w", loc, err)
	}

	observability.IncExport("ok")
	s.logger.InfoContext(ctx, "listing exported",
		"bucket", loc.Bucket,
		"key", loc.Key,
		"size_bytes", len(text),
		"duration", time.Since(start).String())
	return loc, nil
}

// Key places a listing under its query id, e.g. "<id>/Sentinel-1_GRD_detailed.txt".
func Key(queryID, fileName string) string {
	return path.Join(queryID, fileName)
}
