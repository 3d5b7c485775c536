package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/entity"
	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/port"
)

// FrameName is the deterministic image filename for a frame index;
// zero padding keeps lexical order equal to frame order.
func FrameName(frameIndex int) string {
	return fmt.Sprintf("frame_%06d.png", frameIndex)
}

// Extractor decodes single frames through the ffmpeg binary. Each
// extraction runs its own ffmpeg process, so workers never share a
// decode handle.
type Extractor struct {
	ffmpegBin  string
	ffprobeBin string
	workers    int
	logger     *zap.Logger
}

func NewExtractor(ffmpegBin, ffprobeBin string, workers int, logger *zap.Logger) *Extractor {
	if workers < 1 {
		workers = 1
	}
	return &Extractor{ffmpegBin: ffmpegBin, ffprobeBin: ffprobeBin, workers: workers, logger: logger}
}

// ExtractFrames decodes the selected indices into outputDir. The
// selection is processed in ascending order; with multiple workers
// the results are reassembled in ascending order before returning.
// A frame that fails to decode is skipped and reported, not fatal.
func (e *Extractor) ExtractFrames(ctx context.Context, videoPath, outputDir string, selection entity.FrameSelection) (*port.FrameExtractionResult, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create frames dir: %w", err)
	}

	result := &port.FrameExtractionResult{}
	if len(selection) == 0 {
		return result, nil
	}

	type outcome struct {
		frame port.ExtractedFrame
		fail  *port.FrameDecodeFailure
	}

	indices := make(chan int)
	outcomes := make(chan outcome, len(selection))

	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indices {
				framePath := filepath.Join(outputDir, FrameName(idx))
				if err := e.extractOne(ctx, videoPath, idx, framePath); err != nil {
					outcomes <- outcome{fail: &port.FrameDecodeFailure{FrameIndex: idx, Reason: err.Error()}}
					continue
				}
				outcomes <- outcome{frame: port.ExtractedFrame{FrameIndex: idx, Path: framePath}}
			}
		}()
	}

	go func() {
		defer close(indices)
		for _, idx := range selection {
			select {
			case indices <- idx:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(outcomes)

	for out := range outcomes {
		if out.fail != nil {
			e.logger.Warn("frame decode failed",
				zap.Int("frame", out.fail.FrameIndex),
				zap.String("reason", out.fail.Reason),
			)
			result.Skipped = append(result.Skipped, *out.fail)
			continue
		}
		result.Frames = append(result.Frames, out.frame)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(result.Frames, func(i, j int) bool {
		return result.Frames[i].FrameIndex < result.Frames[j].FrameIndex
	})
	sort.Slice(result.Skipped, func(i, j int) bool {
		return result.Skipped[i].FrameIndex < result.Skipped[j].FrameIndex
	})

	e.logger.Info("frames extracted",
		zap.Int("requested", len(selection)),
		zap.Int("extracted", len(result.Frames)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func (e *Extractor) extractOne(ctx context.Context, videoPath string, frameIndex int, framePath string) error {
	cmd := exec.CommandContext(ctx, e.ffmpegBin,
		"-v", "error",
		"-i", videoPath,
		"-vf", fmt.Sprintf("select=eq(n\\,%d)", frameIndex),
		"-fps_mode", "passthrough",
		"-frames:v", "1",
		"-y",
		framePath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg error: %w, output: %s", err, string(output))
	}

	// ffmpeg exits zero even when the select filter matched nothing,
	// e.g. an index past the decodable end of a truncated video.
	info, err := os.Stat(framePath)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(framePath)
		return fmt.Errorf("frame %d not decodable", frameIndex)
	}

	img, err := imaging.Open(framePath)
	if err != nil {
		_ = os.Remove(framePath)
		return fmt.Errorf("frame %d image unreadable: %w", frameIndex, err)
	}
	if img.Bounds().Empty() {
		_ = os.Remove(framePath)
		return fmt.Errorf("frame %d decoded empty", frameIndex)
	}
	return nil
}
