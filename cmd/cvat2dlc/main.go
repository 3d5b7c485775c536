package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/entity"
	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/port"
	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/infra/config"
	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/infra/dlc"
	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/infra/ffmpeg"
	miniostorage "github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/infra/minio"
	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/usecase"
	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/pkg/logger"
)

func main() {
	var (
		xmlPath   string
		videoPath string
		outputDir string
		project   string
		scorer    string
		skeleton  string
		bodyparts string
		start     int
		end       int
		workers   int
	)

	flag.StringVar(&xmlPath, "xml", "", "CVAT XML annotation file (local path or s3://bucket/key)")
	flag.StringVar(&videoPath, "video", "", "source video file (local path or s3://bucket/key)")
	flag.StringVar(&outputDir, "out", "", "output project directory")
	flag.StringVar(&project, "project", "BeePoseEstimation", "project name")
	flag.StringVar(&scorer, "scorer", "manual", "scorer name")
	flag.StringVar(&skeleton, "skeleton", "bee-pair", "skeleton preset: queen-bee|other-bee|bee-pair")
	flag.StringVar(&bodyparts, "bodyparts", "", "comma-separated bodypart override (replaces the preset)")
	flag.IntVar(&start, "start", -1, "first frame of the export range (default: full video)")
	flag.IntVar(&end, "end", -1, "last frame of the export range, inclusive")
	flag.IntVar(&workers, "workers", 0, "frame extraction workers (0 = from environment)")
	flag.Parse()

	if xmlPath == "" || videoPath == "" || outputDir == "" {
		fmt.Fprintf(os.Stderr, "usage: %s -xml annotations.xml -video video.mp4 -out project_dir [flags]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}

	envCfg, err := config.LoadEnv()
	fatalOnErr(err, "load environment config")

	log, err := logger.New(envCfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	if workers <= 0 {
		workers = envCfg.WorkerCount
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	xmlPath, videoPath, err = resolveInputs(ctx, envCfg, xmlPath, videoPath, log)
	fatalOnErr(err, "resolve inputs")

	inv := &config.Invocation{
		AnnotationPath: xmlPath,
		VideoPath:      videoPath,
		OutputRoot:     outputDir,
		ProjectName:    project,
		Scorer:         scorer,
		SkeletonPreset: skeleton,
	}
	if bodyparts != "" {
		for _, bp := range strings.Split(bodyparts, ",") {
			if bp = strings.TrimSpace(bp); bp != "" {
				inv.Bodyparts = append(inv.Bodyparts, bp)
			}
		}
	}
	if start >= 0 || end >= 0 {
		if end < 0 {
			end = start
		}
		inv.Range = &entity.FrameRange{Start: start, End: end}
	}

	fatalOnErr(os.MkdirAll(outputDir, 0o755), "create output directory")

	extractor := ffmpeg.NewExtractor(envCfg.FFmpegBin, envCfg.FFprobeBin, workers, log)
	binary := []port.BinaryTableWriter{
		dlc.NewDLCConverter(envCfg.PythonBin, log),
		dlc.NewHDF5Writer(log),
	}

	pipeline := usecase.NewPipeline(extractor, binary, progressLogger{log: log}, log)

	summary, err := pipeline.Run(ctx, inv)
	if err != nil {
		log.Error("conversion failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	for _, w := range summary.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	fmt.Printf("done: %d rows, %d columns, %d warnings\n",
		summary.RowCount, summary.ColumnCount, len(summary.Warnings))
	fmt.Printf("project directory: %s\n", outputDir)
}

// resolveInputs downloads s3:// inputs into the temp dir; local paths
// pass through untouched.
func resolveInputs(ctx context.Context, envCfg *config.Env, xmlPath, videoPath string, log *zap.Logger) (string, string, error) {
	var storage port.ObjectStorage

	fetch := func(path string) (string, error) {
		bucket, key, ok := config.IsObjectPath(path)
		if !ok {
			return path, nil
		}
		if envCfg.MinIOEndpoint == "" {
			return "", fmt.Errorf("%s: CVAT2DLC_MINIO_ENDPOINT is not configured", path)
		}
		if storage == nil {
			var err error
			storage, err = miniostorage.NewStorage(miniostorage.StorageConfig{
				Endpoint:  envCfg.MinIOEndpoint,
				AccessKey: envCfg.MinIOAccessKey,
				SecretKey: envCfg.MinIOSecretKey,
				UseSSL:    envCfg.MinIOUseSSL,
			})
			if err != nil {
				return "", err
			}
		}
		dest := filepath.Join(envCfg.TempDir, filepath.Base(key))
		log.Info("fetching remote input", zap.String("path", path), zap.String("dest", dest))
		if err := storage.FetchObject(ctx, bucket, key, dest); err != nil {
			return "", err
		}
		return dest, nil
	}

	xmlLocal, err := fetch(xmlPath)
	if err != nil {
		return "", "", err
	}
	videoLocal, err := fetch(videoPath)
	if err != nil {
		return "", "", err
	}
	return xmlLocal, videoLocal, nil
}

// progressLogger renders pipeline progress events through zap; a GUI
// front-end would substitute its own reporter here.
type progressLogger struct {
	log *zap.Logger
}

func (p progressLogger) Report(ev port.ProgressEvent) {
	p.log.Info("progress",
		zap.String("stage", ev.Stage),
		zap.Float64("fraction", ev.Fraction),
		zap.String("message", ev.Message),
	)
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(1)
	}
}
