package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/entity"
	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/port"
	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/infra/config"
	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/infra/cvat"
	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/infra/dlc"
)

// Pipeline converts one (annotation, video) pair into a DeepLabCut
// project directory. One Run per invocation, no shared state.
type Pipeline struct {
	extractor port.FrameExtractor
	binary    []port.BinaryTableWriter
	progress  port.ProgressReporter
	logger    *zap.Logger
}

func NewPipeline(
	extractor port.FrameExtractor,
	binary []port.BinaryTableWriter,
	progress port.ProgressReporter,
	logger *zap.Logger,
) *Pipeline {
	if progress == nil {
		progress = port.NopReporter{}
	}
	return &Pipeline{extractor: extractor, binary: binary, progress: progress, logger: logger}
}

// Run executes the full conversion. Fatal errors (ParseError,
// ConfigError, FrameExtractionError, an I/O failure on the CSV) abort
// before the primary artifacts are touched; everything else
// accumulates as warnings in the returned summary.
func (p *Pipeline) Run(ctx context.Context, inv *config.Invocation) (*entity.RunSummary, error) {
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	schema, err := inv.Schema()
	if err != nil {
		return nil, err
	}

	summary := entity.NewRunSummary(inv.ProjectName, inv.Scorer)
	summary.VideoPath = inv.VideoPath
	summary.VideoName = videoName(inv.VideoPath)
	summary.Bodyparts = schema.Bodyparts
	summary.ColumnCount = schema.ColumnCount()

	log := p.logger.With(
		zap.String("run_id", summary.RunID.String()),
		zap.String("video", summary.VideoName),
	)

	p.report("parse", 0.05, "parsing annotation document")
	parser := cvat.NewParser(schema, log)
	parsed, err := parser.ParseFile(inv.AnnotationPath)
	if err != nil {
		return nil, err
	}
	summary.Warnings = append(summary.Warnings, parsed.Warnings...)

	p.report("probe", 0.15, "probing video")
	info, err := p.extractor.Probe(ctx, inv.VideoPath)
	if err != nil {
		return nil, err
	}
	summary.Video = info
	if parsed.Meta.Found && parsed.Meta.Size > 0 && parsed.Meta.Size != info.TotalFrames {
		summary.AddWarning(entity.WarnMetaMismatch,
			"annotation meta declares %d frames but the video has %d",
			parsed.Meta.Size, info.TotalFrames)
	}
	if maxFrame := parsed.Set.MaxFrame(); maxFrame >= info.TotalFrames {
		summary.AddWarning(entity.WarnMetaMismatch,
			"annotations reference frame %d but the video ends at frame %d",
			maxFrame, info.TotalFrames-1)
	}

	selection := entity.SelectFrames(parsed.Set, inv.Range, info.TotalFrames)
	summary.Requested = len(selection)
	summary.RangeStart, summary.RangeEnd = selectedRange(inv.Range, info.TotalFrames)

	if len(selection) == 0 {
		log.Info("no frames to export")
		p.report("done", 1.0, "no frames to export")
		summary.FinishedAt = time.Now().UTC()
		return summary, nil
	}

	framesDir := filepath.Join(inv.OutputRoot, "labeled-data", summary.VideoName)
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create labeled-data dir: %w", err)
	}

	p.report("extract", 0.25, fmt.Sprintf("extracting %d frames", len(selection)))
	extracted, err := p.extractor.ExtractFrames(ctx, inv.VideoPath, framesDir, selection)
	if err != nil {
		return nil, err
	}
	summary.Extracted = len(extracted.Frames)
	for _, skip := range extracted.Skipped {
		summary.AddWarning(entity.WarnFrameDecode,
			"frame %d skipped: %s", skip.FrameIndex, skip.Reason)
	}

	p.report("table", 0.6, "building dataset table")
	table := BuildTable(extracted.Frames, parsed.Set, schema, inv.Scorer, summary.VideoName, summary)
	summary.RowCount = len(table.Rows)

	csvPath := filepath.Join(framesDir, dlc.CollectedDataName(inv.Scorer)+".csv")
	if err := dlc.WriteCSV(table, csvPath); err != nil {
		return nil, fmt.Errorf("write dataset table: %w", err)
	}

	p.report("video", 0.7, "registering video")
	copiedVideo, err := copyVideo(inv.VideoPath, inv.OutputRoot)
	if err != nil {
		return nil, fmt.Errorf("copy video: %w", err)
	}

	p.report("descriptor", 0.75, "writing project descriptor")
	descriptor := dlc.NewDescriptor(inv.ProjectName, inv.Scorer, inv.OutputRoot, filepath.Base(copiedVideo), schema)
	if err := descriptor.WriteFile(filepath.Join(inv.OutputRoot, "config.yaml")); err != nil {
		return nil, err
	}

	p.report("h5", 0.85, "serializing binary table")
	h5Path := filepath.Join(framesDir, dlc.CollectedDataName(inv.Scorer)+".h5")
	p.writeBinary(ctx, table, csvPath, h5Path, summary, log)

	summary.FinishedAt = time.Now().UTC()
	if err := dlc.WriteSummary(summary, filepath.Join(inv.OutputRoot, "dataset_summary.txt")); err != nil {
		return nil, err
	}

	p.report("done", 1.0, fmt.Sprintf("%d rows, %d columns", summary.RowCount, summary.ColumnCount))
	log.Info("conversion completed",
		zap.Int("rows", summary.RowCount),
		zap.Int("columns", summary.ColumnCount),
		zap.Int("warnings", len(summary.Warnings)),
	)
	return summary, nil
}

// writeBinary tries the binary-table strategies in order; the first
// success wins. Exhausting them all downgrades the H5 artifact to a
// warning, the CSV remains the primary deliverable.
func (p *Pipeline) writeBinary(ctx context.Context, table entity.DatasetTable, csvPath, h5Path string, summary *entity.RunSummary, log *zap.Logger) {
	if len(p.binary) == 0 {
		return
	}
	var failures []string
	for _, writer := range p.binary {
		err := writer.Write(ctx, table, csvPath, h5Path)
		if err == nil {
			log.Info("binary table written", zap.String("strategy", writer.Name()))
			return
		}
		log.Warn("binary table strategy failed",
			zap.String("strategy", writer.Name()),
			zap.Error(err),
		)
		failures = append(failures, fmt.Sprintf("%s: %v", writer.Name(), err))
	}
	summary.AddWarning(entity.WarnSerialization,
		"binary table unavailable after %d strategies (%s); csv artifact is complete",
		len(p.binary), strings.Join(failures, "; "))
}

func (p *Pipeline) report(stage string, fraction float64, message string) {
	p.progress.Report(port.ProgressEvent{Stage: stage, Fraction: fraction, Message: message})
}

func copyVideo(videoPath, outputRoot string) (string, error) {
	videosDir := filepath.Join(outputRoot, "videos")
	if err := os.MkdirAll(videosDir, 0o755); err != nil {
		return "", err
	}

	dest := filepath.Join(videosDir, filepath.Base(videoPath))
	src, err := os.Open(videoPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return dest, nil
}

func selectedRange(rng *entity.FrameRange, totalFrames int) (int, int) {
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
	return start, end
}

func videoName(videoPath string) string {
	base := filepath.Base(videoPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
