package port

import "context"

// ObjectStorage fetches remote inputs (s3://bucket/key annotation or
// video paths) into the local temp dir before the pipeline runs.
type ObjectStorage interface {
	FetchObject(ctx context.Context, bucket, key, destPath string) error
}
