package port

import (
	"context"

	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/entity"
)

// BinaryTableWriter serializes a dataset table to the binary columnar
// artifact. Implementations are tried in order; the first success
// wins and failures accumulate as serialization warnings.
type BinaryTableWriter interface {
	Name() string
	Write(ctx context.Context, table entity.DatasetTable, csvPath, h5Path string) error
}
