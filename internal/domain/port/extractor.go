package port

import (
	"context"

	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/entity"
)

// ExtractedFrame is one successfully decoded frame on disk.
type ExtractedFrame struct {
	FrameIndex int
	Path       string
}

// FrameDecodeFailure records a single frame index that could not be
// decoded; the run continues without it.
type FrameDecodeFailure struct {
	FrameIndex int
	Reason     string
}

type FrameExtractionResult struct {
	Frames  []ExtractedFrame
	Skipped []FrameDecodeFailure
}

type FrameExtractor interface {
	// Probe reports frame count and geometry; failure means the video
	// cannot be opened and the run must abort before any writes.
	Probe(ctx context.Context, videoPath string) (entity.VideoInfo, error)

	// ExtractFrames decodes the selected indices in ascending order
	// into outputDir, named deterministically by frame index.
	ExtractFrames(ctx context.Context, videoPath, outputDir string, selection entity.FrameSelection) (*FrameExtractionResult, error)
}
