//go:build s3export
// +build s3export

// This file provides a snapshot exporter backed by AWS S3.
// It is kept behind a build tag so regular builds do not pull in AWS
// configuration or credentials handling.
//
// Build with:
//
//	go build -tags s3export

package devtools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/quiver-dev/quiver/pkg/store"
)

// SnapshotExporter uploads engine snapshots to S3 for offline
// inspection, for example from a crashed or remote process.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	exp := devtools.NewSnapshotExporter(s3.NewFromConfig(cfg), "my-bucket", "quiver/snapshots/")
//	go exp.ExportEvery(ctx, time.Minute)
type SnapshotExporter struct {
	client    *s3.Client
	bucket    string
	prefix    string
	store     *store.Store
	urlExpiry time.Duration
}

// NewSnapshotExporter creates an exporter writing to the given bucket.
//
// Parameters:
//   - client: AWS S3 client from aws-sdk-go-v2
//   - bucket: S3 bucket name
//   - prefix: key prefix for snapshot objects (e.g. "quiver/snapshots/")
func NewSnapshotExporter(client *s3.Client, bucket, prefix string) *SnapshotExporter {
	return &SnapshotExporter{
		client:    client,
		bucket:    bucket,
		prefix:    prefix,
		store:     store.Default(),
		urlExpiry: 24 * time.Hour,
	}
}

// WithStore selects the store snapshotted by Export.
func (e *SnapshotExporter) WithStore(s *store.Store) *SnapshotExporter {
	e.store = s
	return e
}

// WithURLExpiry sets how long URLs from SnapshotURL stay valid.
func (e *SnapshotExporter) WithURLExpiry(d time.Duration) *SnapshotExporter {
	e.urlExpiry = d
	return e
}

// Export uploads one snapshot and returns its object key. Keys embed
// the capture time, so lexical order is chronological order.
func (e *SnapshotExporter) Export(ctx context.Context) (string, error) {
	snap := TakeSnapshot(e.store)

	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	key := e.prefix + snap.TakenAt.Format("20060102T150405.000") + "Z.json"

	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"taken-at": snap.TakenAt.Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}

	return key, nil
}

// ExportEvery uploads a snapshot every interval until ctx is canceled.
// It returns the first upload error, or nil once ctx ends.
func (e *SnapshotExporter) ExportEvery(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := e.Export(ctx); err != nil {
				return err
			}
		}
	}
}

// SnapshotURL returns a presigned GET URL for a previously exported
// snapshot, valid for the configured expiry.
func (e *SnapshotExporter) SnapshotURL(ctx context.Context, key string) (string, error) {
	presign := s3.NewPresignClient(e.client)
	out, err := presign.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(e.bucket),
			Key:    aws.String(key),
		},
		s3.WithPresignExpires(e.urlExpiry),
	)
	if err != nil {
		return "", fmt.Errorf("presign snapshot: %w", err)
	}
	return out.URL, nil
}

// Cleanup deletes exported snapshots older than maxAge.
func (e *SnapshotExporter) Cleanup(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)

	paginator := s3.NewListObjectsV2Paginator(e.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(e.bucket),
		Prefix: aws.String(e.prefix),
	})

	var stale []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}

		for _, obj := range page.Contents {
			if obj.LastModified != nil && obj.LastModified.Before(cutoff) && obj.Key != nil {
				stale = append(stale, *obj.Key)
			}
		}
	}

	for _, key := range stale {
		_, err := e.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(e.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return err
		}
	}

	return nil
}
