package entity

// FrameRange is an inclusive [Start, End] frame-index window. A nil
// *FrameRange means the full video span.
type FrameRange struct {
	Start int
	End   int
}

// FrameSelection is the ordered, strictly increasing set of frame
// indices to extract. Empty is a valid terminal state meaning
// "nothing to export".
type FrameSelection []int

// SelectFrames intersects the annotated frame indices with the
// requested range. Range bounds are clamped to [0, totalFrames-1];
// a range that is empty after clamping yields an empty selection.
func SelectFrames(set *AnnotationSet, rng *FrameRange, totalFrames int) FrameSelection {
	start, end := 0, totalFrames-1
	if rng != nil {
		start, end = rng.Start, rng.End
	}
	if start < 0 {
		start = 0
	}
	if end > totalFrames-1 {
		end = totalFrames - 1
	}
	if start > end {
		return FrameSelection{}
	}

	selection := make(FrameSelection, 0, len(set.Frames()))
	for _, idx := range set.Frames() {
		if idx >= start && idx <= end {
			selection = append(selection, idx)
		}
	}
	return selection
}
