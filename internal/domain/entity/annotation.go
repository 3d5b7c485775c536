package entity

import "sort"

// NoTrack marks an observation that came from a per-image shape rather
// than an interpolated track.
const NoTrack = -1

// KeypointObservation is a single labeled point on a single frame.
type KeypointObservation struct {
	FrameIndex int
	Bodypart   string
	X          float64
	Y          float64
	Occluded   bool
	TrackID    int
}

// AnnotationSet is the full set of observations parsed from one
// annotation document, keyed by frame index. It is immutable after
// construction; document order within a frame is preserved.
type AnnotationSet struct {
	byFrame map[int][]KeypointObservation
	frames  []int
	count   int
}

func NewAnnotationSet(observations []KeypointObservation) *AnnotationSet {
	byFrame := make(map[int][]KeypointObservation)
	for _, obs := range observations {
		byFrame[obs.FrameIndex] = append(byFrame[obs.FrameIndex], obs)
	}

	frames := make([]int, 0, len(byFrame))
	for idx := range byFrame {
		frames = append(frames, idx)
	}
	sort.Ints(frames)

	return &AnnotationSet{byFrame: byFrame, frames: frames, count: len(observations)}
}

// Frames returns the annotated frame indices in ascending order.
func (s *AnnotationSet) Frames() []int {
	out := make([]int, len(s.frames))
	copy(out, s.frames)
	return out
}

// ForFrame returns the observations on one frame in document order.
func (s *AnnotationSet) ForFrame(frameIndex int) []KeypointObservation {
	obs := s.byFrame[frameIndex]
	out := make([]KeypointObservation, len(obs))
	copy(out, obs)
	return out
}

// Len is the total observation count across all frames.
func (s *AnnotationSet) Len() int {
	return s.count
}

// MaxFrame returns the highest annotated frame index, or -1 when empty.
func (s *AnnotationSet) MaxFrame() int {
	if len(s.frames) == 0 {
		return -1
	}
	return s.frames[len(s.frames)-1]
}
