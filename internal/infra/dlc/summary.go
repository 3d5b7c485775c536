package dlc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/entity"
)

// WriteSummary emits the human-readable dataset_summary.txt with
// row/column counts, video information and every warning the run
// accumulated.
func WriteSummary(summary *entity.RunSummary, path string) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "DeepLabCut Dataset Summary\n")
	fmt.Fprintf(&buf, "%s\n\n", strings.Repeat("=", 50))
	fmt.Fprintf(&buf, "Project Name: %s\n", summary.Project)
	fmt.Fprintf(&buf, "Scorer: %s\n", summary.Scorer)
	fmt.Fprintf(&buf, "Run ID: %s\n", summary.RunID)
	fmt.Fprintf(&buf, "Processing Time: %s\n\n", summary.FinishedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&buf, "Source Data Information:\n")
	fmt.Fprintf(&buf, "  Video File: %s\n", summary.VideoPath)
	fmt.Fprintf(&buf, "  Video Resolution: %dx%d\n", summary.Video.Width, summary.Video.Height)
	fmt.Fprintf(&buf, "  Video FPS: %.2f\n", summary.Video.FPS)
	fmt.Fprintf(&buf, "  Total Video Frames: %d\n\n", summary.Video.TotalFrames)

	fmt.Fprintf(&buf, "Processing Configuration:\n")
	fmt.Fprintf(&buf, "  Selected Frame Range: %d-%d\n", summary.RangeStart, summary.RangeEnd)
	fmt.Fprintf(&buf, "  Requested Frames: %d\n", summary.Requested)
	fmt.Fprintf(&buf, "  Extracted Frames: %d\n\n", summary.Extracted)

	fmt.Fprintf(&buf, "Keypoint Information:\n")
	fmt.Fprintf(&buf, "  Number of Keypoints: %d\n", len(summary.Bodyparts))
	fmt.Fprintf(&buf, "  Keypoint List: %s\n\n", strings.Join(summary.Bodyparts, ", "))

	fmt.Fprintf(&buf, "Dataset Table:\n")
	fmt.Fprintf(&buf, "  Rows: %d\n", summary.RowCount)
	fmt.Fprintf(&buf, "  Columns: %d\n\n", summary.ColumnCount)

	if len(summary.Warnings) == 0 {
		fmt.Fprintf(&buf, "Warnings: none\n")
	} else {
		fmt.Fprintf(&buf, "Warnings (%d):\n", len(summary.Warnings))
		for _, w := range summary.Warnings {
			fmt.Fprintf(&buf, "  %s\n", w)
		}
	}

	fmt.Fprintf(&buf, "\nOutput Files:\n")
	fmt.Fprintf(&buf, "  Annotation CSV: labeled-data/%s/%s.csv\n", summary.VideoName, CollectedDataName(summary.Scorer))
	fmt.Fprintf(&buf, "  Annotation H5: labeled-data/%s/%s.h5\n", summary.VideoName, CollectedDataName(summary.Scorer))
	fmt.Fprintf(&buf, "  Configuration File: config.yaml\n")
	fmt.Fprintf(&buf, "  Video File: videos/%s\n", filepath.Base(summary.VideoPath))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
