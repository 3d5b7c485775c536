package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/entity"
)

// Probe opens the video through ffprobe and reports frame count,
// frame rate and geometry. Any failure here means the video is
// unusable and the whole run must abort before writing anything.
func (e *Extractor) Probe(ctx context.Context, videoPath string) (entity.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, e.ffprobeBin,
		"-v", "error",
		"-select_streams", "v:0",
		"-count_packets",
		"-show_entries", "stream=width,height,r_frame_rate,nb_read_packets",
		"-of", "default=noprint_wrappers=1",
		videoPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return entity.VideoInfo{}, &entity.FrameExtractionError{
			VideoPath: videoPath,
			Err:       fmt.Errorf("ffprobe: %w, output: %s", err, string(output)),
		}
	}

	info, err := parseProbeOutput(string(output))
	if err != nil {
		return entity.VideoInfo{}, &entity.FrameExtractionError{VideoPath: videoPath, Err: err}
	}
	return info, nil
}

func parseProbeOutput(output string) (entity.VideoInfo, error) {
	var info entity.VideoInfo
	for _, line := range strings.Split(output, "\n") {
		key, value, found := strings.Cut(strings.TrimSpace(line), "=")
		if !found {
			continue
		}
		switch key {
		case "width":
			info.Width, _ = strconv.Atoi(value)
		case "height":
			info.Height, _ = strconv.Atoi(value)
		case "nb_read_packets":
			info.TotalFrames, _ = strconv.Atoi(value)
		case "r_frame_rate":
			info.FPS = parseFrameRate(value)
		}
	}
	if info.TotalFrames <= 0 {
		return entity.VideoInfo{}, fmt.Errorf("no video frames reported")
	}
	return info, nil
}

// parseFrameRate handles ffprobe's rational notation ("30000/1001").
func parseFrameRate(value string) float64 {
	num, den, found := strings.Cut(value, "/")
	if !found {
		fps, _ := strconv.ParseFloat(value, 64)
		return fps
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
