package publish

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/json-to-terraform/stacks/internal/result"
	"github.com/json-to-terraform/stacks/internal/synth"
)

// ObjectStore is the subset of Client the publisher needs.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	CreateBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, key, contentType string, data []byte) error
}

// Publish uploads every file of a successful synthesis under prefix in
// bucket, creating the bucket when it does not exist. It returns the keys
// written in upload order.
func Publish(ctx context.Context, store ObjectStore, log *slog.Logger, res *result.SynthResult, bucket, prefix string) ([]string, error) {
	if res == nil || !res.Success {
		return nil, fmt.Errorf("refusing to publish an unsuccessful synthesis")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	exists, err := store.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		log.Info("creating bucket", "bucket", bucket)
		if err := store.CreateBucket(ctx, bucket); err != nil {
			return nil, err
		}
	}

	paths := synth.SortedPaths(res)
	keys := make([]string, 0, len(paths))
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return keys, err
		}
		key := path.Join(prefix, rel)
		if err := store.PutObject(ctx, bucket, key, contentType(rel), res.Files[rel]); err != nil {
			return keys, err
		}
		log.Debug("uploaded", "bucket", bucket, "key", key, "bytes", len(res.Files[rel]))
		keys = append(keys, key)
	}
	log.Info("published", "bucket", bucket, "prefix", prefix, "objects", len(keys))
	return keys, nil
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".json":
		return "application/json"
	case ".zip":
		return "application/zip"
	case ".tf":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
