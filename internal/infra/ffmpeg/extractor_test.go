package ffmpeg

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/entity"
)

func TestFrameNameIsZeroPaddedAndSortable(t *testing.T) {
	assert.Equal(t, "frame_000005.png", FrameName(5))
	assert.Equal(t, "frame_000123.png", FrameName(123))
	assert.Less(t, FrameName(9), FrameName(10), "lexical order must equal frame order")
	// a 30 fps video crosses five digits after ~6 minutes
	assert.Less(t, FrameName(9999), FrameName(10000))
	assert.Less(t, FrameName(99999), FrameName(100000))
}

func TestParseProbeOutput(t *testing.T) {
	output := "width=320\nheight=240\nr_frame_rate=30000/1001\nnb_read_packets=20\n"

	info, err := parseProbeOutput(output)
	require.NoError(t, err)

	assert.Equal(t, 320, info.Width)
	assert.Equal(t, 240, info.Height)
	assert.Equal(t, 20, info.TotalFrames)
	assert.InDelta(t, 29.97, info.FPS, 0.01)
}

func TestParseProbeOutputNoFrames(t *testing.T) {
	_, err := parseProbeOutput("width=320\nheight=240\n")
	require.Error(t, err)
}

func TestParseFrameRate(t *testing.T) {
	assert.Equal(t, 25.0, parseFrameRate("25"))
	assert.Equal(t, 30.0, parseFrameRate("30/1"))
	assert.Equal(t, 0.0, parseFrameRate("30/0"))
	assert.Equal(t, 0.0, parseFrameRate("bogus/x"))
}

// requireTestVideo synthesizes a short test clip, skipping when the
// ffmpeg binary is not installed.
func requireTestVideo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	path := filepath.Join(t.TempDir(), "test.mp4")
	cmd := exec.Command("ffmpeg",
		"-f", "lavfi",
		"-i", "testsrc=size=160x120:rate=10",
		"-frames:v", "10",
		"-pix_fmt", "yuv420p",
		"-y", path,
	)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, string(output))
	return path
}

func TestProbeAndExtractEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ffmpeg test in short mode")
	}
	videoPath := requireTestVideo(t)
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}

	extractor := NewExtractor("ffmpeg", "ffprobe", 2, zap.NewNop())
	ctx := context.Background()

	info, err := extractor.Probe(ctx, videoPath)
	require.NoError(t, err)
	assert.Equal(t, 10, info.TotalFrames)
	assert.Equal(t, 160, info.Width)

	outputDir := t.TempDir()
	result, err := extractor.ExtractFrames(ctx, videoPath, outputDir, entity.FrameSelection{2, 5, 8})
	require.NoError(t, err)

	require.Len(t, result.Frames, 3)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, 2, result.Frames[0].FrameIndex)
	assert.Equal(t, filepath.Join(outputDir, "frame_000002.png"), result.Frames[0].Path)
	for _, frame := range result.Frames {
		assert.FileExists(t, frame.Path)
	}
}

func TestExtractFramesSkipsUndecodableIndex(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ffmpeg test in short mode")
	}
	videoPath := requireTestVideo(t)

	extractor := NewExtractor("ffmpeg", "ffprobe", 1, zap.NewNop())
	result, err := extractor.ExtractFrames(context.Background(), videoPath, t.TempDir(), entity.FrameSelection{5, 500})
	require.NoError(t, err)

	require.Len(t, result.Frames, 1)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 500, result.Skipped[0].FrameIndex)
}

func TestProbeUnopenableVideo(t *testing.T) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}
	extractor := NewExtractor("ffmpeg", "ffprobe", 1, zap.NewNop())

	_, err := extractor.Probe(context.Background(), filepath.Join(t.TempDir(), "nope.mp4"))

	var extErr *entity.FrameExtractionError
	require.ErrorAs(t, err, &extErr)
}
