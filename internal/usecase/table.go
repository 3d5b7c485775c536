package usecase

import (
	"math"
	"path/filepath"

	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/entity"
	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/port"
)

// BuildTable joins the frames that were actually extracted with the
// annotation set, one row per frame in ascending frame-index order.
// A bodypart with no observation on a frame gets NaN in both columns.
// When several observations share a (frame, bodypart) the first in
// document order wins and the rest are recorded as dropped
// duplicates.
func BuildTable(
	frames []port.ExtractedFrame,
	set *entity.AnnotationSet,
	schema entity.SkeletonSchema,
	scorer, videoName string,
	summary *entity.RunSummary,
) entity.DatasetTable {
	table := entity.DatasetTable{
		Scorer:    scorer,
		VideoName: videoName,
		Bodyparts: schema.Bodyparts,
	}

	colOf := make(map[string]int, len(schema.Bodyparts))
	for i, bp := range schema.Bodyparts {
		colOf[bp] = 2 * i
	}

	for _, frame := range frames {
		values := make([]float64, schema.ColumnCount())
		for i := range values {
			values[i] = math.NaN()
		}

		filled := make(map[string]bool, len(schema.Bodyparts))
		for _, obs := range set.ForFrame(frame.FrameIndex) {
			col, ok := colOf[obs.Bodypart]
			if !ok {
				continue
			}
			if filled[obs.Bodypart] {
				summary.AddWarning(entity.WarnDroppedDuplicate,
					"frame %d: duplicate observation for %q (track %d) dropped",
					obs.FrameIndex, obs.Bodypart, obs.TrackID)
				continue
			}
			filled[obs.Bodypart] = true
			values[col] = obs.X
			values[col+1] = obs.Y
		}

		table.Rows = append(table.Rows, entity.DatasetRow{
			FrameIndex: frame.FrameIndex,
			Image:      filepath.Base(frame.Path),
			Values:     values,
		})
	}

	return table
}
