package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func annotatedFrames(indices ...int) *AnnotationSet {
	var obs []KeypointObservation
	for _, idx := range indices {
		obs = append(obs, KeypointObservation{FrameIndex: idx, Bodypart: "head", TrackID: NoTrack})
	}
	return NewAnnotationSet(obs)
}

func TestSelectFramesFullSpan(t *testing.T) {
	set := annotatedFrames(5, 10, 15)

	selection := SelectFrames(set, nil, 20)

	assert.Equal(t, FrameSelection{5, 10, 15}, selection)
}

func TestSelectFramesRange(t *testing.T) {
	set := annotatedFrames(5, 10, 15)

	selection := SelectFrames(set, &FrameRange{Start: 8, End: 12}, 20)

	assert.Equal(t, FrameSelection{10}, selection)
}

func TestSelectFramesClampsOutOfBounds(t *testing.T) {
	set := annotatedFrames(0, 10, 19)

	selection := SelectFrames(set, &FrameRange{Start: -5, End: 100}, 20)

	assert.Equal(t, FrameSelection{0, 10, 19}, selection)
}

func TestSelectFramesEmptyAfterClamping(t *testing.T) {
	set := annotatedFrames(1, 2, 3)

	// start beyond the video collapses to an empty window
	selection := SelectFrames(set, &FrameRange{Start: 30, End: 40}, 20)

	assert.Empty(t, selection)
}

func TestSelectFramesDuplicateIndicesCollapse(t *testing.T) {
	set := NewAnnotationSet([]KeypointObservation{
		{FrameIndex: 7, Bodypart: "head", TrackID: NoTrack},
		{FrameIndex: 7, Bodypart: "thorax", TrackID: NoTrack},
	})

	selection := SelectFrames(set, nil, 10)

	assert.Equal(t, FrameSelection{7}, selection)
}

func TestSelectFramesRangeEqualsFullIntersectRange(t *testing.T) {
	set := annotatedFrames(0, 3, 6, 9, 12, 15, 18)
	total := 20

	for _, rng := range []FrameRange{
		{Start: 0, End: 19},
		{Start: 4, End: 10},
		{Start: 10, End: 4},
		{Start: -3, End: 7},
	} {
		rng := rng
		ranged := SelectFrames(set, &rng, total)

		var want FrameSelection
		for _, idx := range SelectFrames(set, nil, total) {
			if idx >= rng.Start && idx <= rng.End {
				want = append(want, idx)
			}
		}
		if want == nil {
			want = FrameSelection{}
		}
		require.Equal(t, want, ranged, "range %+v", rng)
	}
}
