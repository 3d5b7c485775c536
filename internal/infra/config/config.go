package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/entity"
)

// Env holds process-level settings with environment overrides.
type Env struct {
	FFmpegBin  string `env:"CVAT2DLC_FFMPEG_BIN"  envDefault:"ffmpeg"`
	FFprobeBin string `env:"CVAT2DLC_FFPROBE_BIN" envDefault:"ffprobe"`
	PythonBin  string `env:"CVAT2DLC_PYTHON_BIN"  envDefault:"python3"`

	WorkerCount int    `env:"CVAT2DLC_WORKERS"   envDefault:"1"`
	LogLevel    string `env:"CVAT2DLC_LOG_LEVEL" envDefault:"info"`
	TempDir     string `env:"CVAT2DLC_TEMP_DIR"  envDefault:""`

	MinIOEndpoint  string `env:"CVAT2DLC_MINIO_ENDPOINT"   envDefault:""`
	MinIOAccessKey string `env:"CVAT2DLC_MINIO_ACCESS_KEY" envDefault:""`
	MinIOSecretKey string `env:"CVAT2DLC_MINIO_SECRET_KEY" envDefault:""`
	MinIOUseSSL    bool   `env:"CVAT2DLC_MINIO_USE_SSL"    envDefault:"false"`
}

func LoadEnv() (*Env, error) {
	cfg := &Env{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	return cfg, nil
}

// Invocation is one (annotation, video) conversion request as built
// by the CLI or GUI front-end.
type Invocation struct {
	AnnotationPath string
	VideoPath      string
	OutputRoot     string
	ProjectName    string
	Scorer         string
	SkeletonPreset string
	Bodyparts      []string // overrides the preset when non-empty
	Range          *entity.FrameRange
}

// Validate checks the parts of the invocation that do not require
// touching the video. Remote s3:// inputs are resolved before this
// runs, so every path here is local.
func (inv *Invocation) Validate() error {
	if inv.AnnotationPath == "" {
		return &entity.ConfigError{Field: "annotation", Err: fmt.Errorf("annotation path is required")}
	}
	if _, err := os.Stat(inv.AnnotationPath); err != nil {
		return &entity.ConfigError{Field: "annotation", Err: err}
	}
	if inv.VideoPath == "" {
		return &entity.ConfigError{Field: "video", Err: fmt.Errorf("video path is required")}
	}
	if _, err := os.Stat(inv.VideoPath); err != nil {
		return &entity.ConfigError{Field: "video", Err: err}
	}
	if inv.OutputRoot == "" {
		return &entity.ConfigError{Field: "output", Err: fmt.Errorf("output root is required")}
	}
	if inv.ProjectName == "" {
		inv.ProjectName = "BeePoseEstimation"
	}
	if inv.Scorer == "" {
		inv.Scorer = "manual"
	}
	if inv.Range != nil && inv.Range.Start > inv.Range.End {
		return &entity.ConfigError{
			Field: "range",
			Err:   fmt.Errorf("start %d greater than end %d", inv.Range.Start, inv.Range.End),
		}
	}
	return nil
}

// Schema resolves the active skeleton: an explicit bodypart override
// wins over the named preset.
func (inv *Invocation) Schema() (entity.SkeletonSchema, error) {
	if len(inv.Bodyparts) > 0 {
		schema := entity.CustomSchema(inv.Bodyparts)
		if err := schema.Validate(); err != nil {
			return entity.SkeletonSchema{}, &entity.ConfigError{Field: "bodyparts", Err: err}
		}
		return schema, nil
	}
	schema, err := entity.SchemaByName(inv.SkeletonPreset)
	if err != nil {
		return entity.SkeletonSchema{}, &entity.ConfigError{Field: "skeleton", Err: err}
	}
	return schema, nil
}

// IsObjectPath reports whether a path refers to object storage and
// splits it into bucket and key.
func IsObjectPath(path string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(path, "s3://") {
		return "", "", false
	}
	rest := strings.TrimPrefix(path, "s3://")
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
