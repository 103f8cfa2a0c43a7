package gcp

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/yungbote/sprout-backend/internal/platform/ctxutil"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

// ImageArchive keeps the photos submitted for diagnosis.
type ImageArchive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Close() error
}

type gcsArchive struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
}

func NewImageArchive(ctx context.Context, log *logger.Logger, bucket string, opts ...option.ClientOption) (ImageArchive, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, fmt.Errorf("missing DIAGNOSIS_BUCKET")
	}
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	c, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	serviceLog := log.With("service", "gcp.ImageArchive")
	serviceLog.Info("Diagnosis image archive initialized", "bucket", bucket)
	return &gcsArchive{log: serviceLog, client: c, bucket: bucket}, nil
}

func (a *gcsArchive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	w := a.client.Bucket(a.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "private, max-age=0"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gs://%s/%s: %w", a.bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close gs://%s/%s: %w", a.bucket, key, err)
	}
	a.log.Debug("archived diagnosis image", "key", key, "bytes", len(data))
	return nil
}

func (a *gcsArchive) Close() error {
	if a == nil || a.client == nil {
		return nil
	}
	return a.client.Close()
}

// DiagnosisImageKey is the object key for a diagnosis photo of plantID.
func DiagnosisImageKey(plantID uuid.UUID, at time.Time, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		ext = "jpg"
	}
	name := fmt.Sprintf("%s-%s.%s", at.UTC().Format("20060102T150405Z"), uuid.NewString()[:8], ext)
	return path.Join("diagnoses", plantID.String(), name)
}
