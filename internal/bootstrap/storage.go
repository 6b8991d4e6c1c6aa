package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// OpenScratchBucket opens the bucket materialized files are staged in.
// file:// directories are created on demand.
func OpenScratchBucket(ctx context.Context, bucketURL string, logger *slog.Logger) (*blob.Bucket, error) {
	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("parse scratch bucket url: %w", err)
	}
	if u.Scheme == "file" && u.Path != "" {
		if mkErr := os.MkdirAll(u.Path, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create scratch directory %s: %w", u.Path, mkErr)
		}
	}

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open scratch bucket: %w", err)
	}
	if logger != nil {
		logger.InfoContext(ctx, "scratch bucket opened", "scheme", u.Scheme, "location", u.Host+u.Path)
	}
	return bucket, nil
}
