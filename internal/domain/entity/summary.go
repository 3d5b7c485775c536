package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type WarningKind string

const (
	WarnFrameDecode      WarningKind = "frame_decode"
	WarnSchemaMismatch   WarningKind = "schema_mismatch"
	WarnMalformedShape   WarningKind = "malformed_shape"
	WarnSerialization    WarningKind = "serialization"
	WarnDroppedDuplicate WarningKind = "dropped_duplicate"
	WarnMetaMismatch     WarningKind = "meta_mismatch"
)

// Warning is a non-fatal condition recorded during a run and surfaced
// in the dataset summary.
type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Kind, w.Message)
}

// VideoInfo is what ffprobe reports about the input video.
type VideoInfo struct {
	TotalFrames int
	FPS         float64
	Width       int
	Height      int
}

// RunSummary accumulates the outcome of one conversion run.
type RunSummary struct {
	RunID       uuid.UUID
	Project     string
	Scorer      string
	VideoPath   string
	VideoName   string
	Video       VideoInfo
	RangeStart  int
	RangeEnd    int
	Requested   int // frames in the selection
	Extracted   int // frames actually decoded
	RowCount    int
	ColumnCount int
	Bodyparts   []string
	Warnings    []Warning
	StartedAt   time.Time
	FinishedAt  time.Time
}

func NewRunSummary(project, scorer string) *RunSummary {
	return &RunSummary{
		RunID:     uuid.New(),
		Project:   project,
		Scorer:    scorer,
		StartedAt: time.Now().UTC(),
	}
}

func (s *RunSummary) AddWarning(kind WarningKind, format string, args ...any) {
	s.Warnings = append(s.Warnings, Warning{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// WarningsOf filters the accumulated warnings by kind.
func (s *RunSummary) WarningsOf(kind WarningKind) []Warning {
	var out []Warning
	for _, w := range s.Warnings {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}
