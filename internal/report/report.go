// Package report writes a JSON summary of each migration run to a local
// directory or an S3 bucket.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"hostel-migrate/internal/config"
	"hostel-migrate/internal/migrate"
)

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

type Report struct {
	RunID       string          `json:"run_id"`
	Job         string          `json:"job"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
	Status      string          `json:"status"`
	Error       string          `json:"error,omitempty"`
	Collections []migrate.Stats `json:"collections"`
}

func New(job string, started time.Time) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Job:       job,
		StartedAt: started.UTC(),
	}
}

// Finish records the outcome. Stats gathered before a failure are kept.
func (r *Report) Finish(at time.Time, stats []migrate.Stats, err error) {
	r.FinishedAt = at.UTC()
	r.Collections = stats
	r.Status = StatusSucceeded
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
	}
}

// Name is the object or file name the report is stored under.
func (r *Report) Name() string {
	return fmt.Sprintf("%s-%s-%s.json", r.Job, r.StartedAt.Format("20060102T150405Z"), r.RunID)
}

func (r *Report) marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

type Sink interface {
	Write(ctx context.Context, r *Report) error
}

// DirSink writes reports as files under Dir, creating it when needed.
type DirSink struct {
	Dir string
}

func (s DirSink) Write(_ context.Context, r *Report) error {
	body, err := r.marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(s.Dir, r.Name())
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads reports to an S3 compatible bucket (AWS S3 or MinIO).
type S3Sink struct {
	client objectPutter
	bucket string
	prefix string
}

// NewS3Sink builds the client from the default AWS credential chain.
func NewS3Sink(ctx context.Context, cfg config.ReportConfig) (*S3Sink, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3PathStyle
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
	})
	return &S3Sink{client: client, bucket: cfg.S3Bucket, prefix: cfg.S3Prefix}, nil
}

func (s *S3Sink) Write(ctx context.Context, r *Report) error {
	body, err := r.marshal()
	if err != nil {
		return err
	}
	key := s.prefix + r.Name()
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// NewSink picks the S3 sink when a bucket is configured, else the directory
// sink when a dir is set. It returns nil when reporting is off.
func NewSink(ctx context.Context, cfg config.ReportConfig) (Sink, error) {
	switch {
	case cfg.S3Bucket != "":
		return NewS3Sink(ctx, cfg)
	case cfg.Dir != "":
		return DirSink{Dir: cfg.Dir}, nil
	}
	return nil, nil
}
