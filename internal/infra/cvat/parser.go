package cvat

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/entity"
)

// JobMeta is the frame-span information CVAT records under <meta>.
type JobMeta struct {
	Size       int
	StartFrame int
	StopFrame  int
	Found      bool
}

// Result is one parsed annotation document.
type Result struct {
	Set      *entity.AnnotationSet
	Meta     JobMeta
	Warnings []entity.Warning
}

// Parser turns a CVAT XML export into an AnnotationSet. It handles
// both per-image shapes and per-track shapes; track shapes are
// recorded only at keyframes and are expanded to explicit per-frame
// observations here.
type Parser struct {
	schema entity.SkeletonSchema
	log    *zap.Logger
}

func NewParser(schema entity.SkeletonSchema, log *zap.Logger) *Parser {
	return &Parser{schema: schema, log: log}
}

type xmlDocument struct {
	XMLName xml.Name   `xml:"annotations"`
	Meta    xmlMeta    `xml:"meta"`
	Tracks  []xmlTrack `xml:"track"`
	Images  []xmlImage `xml:"image"`
}

type xmlMeta struct {
	Job  xmlJob `xml:"job"`
	Task xmlJob `xml:"task"`
}

type xmlJob struct {
	Size       *int `xml:"size"`
	StartFrame *int `xml:"start_frame"`
	StopFrame  *int `xml:"stop_frame"`
}

type xmlTrack struct {
	ID     int        `xml:"id,attr"`
	Label  string     `xml:"label,attr"`
	Points []xmlShape `xml:"points"`
	Boxes  []xmlBox   `xml:"box"`
}

type xmlShape struct {
	Frame    int    `xml:"frame,attr"`
	Outside  int    `xml:"outside,attr"`
	Occluded int    `xml:"occluded,attr"`
	Keyframe int    `xml:"keyframe,attr"`
	Label    string `xml:"label,attr"`
	Points   string `xml:"points,attr"`
}

type xmlBox struct {
	Frame    int     `xml:"frame,attr"`
	Outside  int     `xml:"outside,attr"`
	Occluded int     `xml:"occluded,attr"`
	Label    string  `xml:"label,attr"`
	XTL      float64 `xml:"xtl,attr"`
	YTL      float64 `xml:"ytl,attr"`
	XBR      float64 `xml:"xbr,attr"`
	YBR      float64 `xml:"ybr,attr"`
}

type xmlImage struct {
	ID     int        `xml:"id,attr"`
	Name   string     `xml:"name,attr"`
	Points []xmlShape `xml:"points"`
	Boxes  []xmlBox   `xml:"box"`
}

// ParseFile reads, validates and parses one annotation document.
// Every error it returns is a fatal *entity.ParseError.
func (p *Parser) ParseFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &entity.ParseError{Path: path, Err: err}
	}
	res, err := p.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &entity.ParseError{Path: path, Err: err}
	}
	return res, nil
}

// Parse validates the document structure and extracts all keypoint
// observations. Observations whose bodypart is not in the active
// schema are dropped with a warning; zero surviving observations is
// an error because an empty dataset is never useful.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if err := validateStructure(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}

	res := &Result{Meta: jobMeta(doc.Meta)}

	var observations []entity.KeypointObservation
	for _, img := range doc.Images {
		observations = append(observations, p.imageObservations(img, res)...)
	}
	for _, track := range doc.Tracks {
		observations = append(observations, p.trackObservations(track, res.Meta, res)...)
	}

	if len(observations) == 0 {
		return nil, fmt.Errorf("no keypoint observations found")
	}

	res.Set = entity.NewAnnotationSet(observations)
	p.log.Info("annotations parsed",
		zap.Int("observations", res.Set.Len()),
		zap.Int("frames", len(res.Set.Frames())),
		zap.Int("dropped", len(res.Warnings)),
	)
	return res, nil
}

func jobMeta(m xmlMeta) JobMeta {
	for _, job := range []xmlJob{m.Job, m.Task} {
		if job.Size == nil && job.StopFrame == nil {
			continue
		}
		meta := JobMeta{Found: true}
		if job.Size != nil {
			meta.Size = *job.Size
		}
		if job.StartFrame != nil {
			meta.StartFrame = *job.StartFrame
		}
		if job.StopFrame != nil {
			meta.StopFrame = *job.StopFrame
		} else if meta.Size > 0 {
			meta.StopFrame = meta.Size - 1
		}
		return meta
	}
	return JobMeta{}
}

func (p *Parser) imageObservations(img xmlImage, res *Result) []entity.KeypointObservation {
	var out []entity.KeypointObservation
	for _, shape := range img.Points {
		x, y, err := firstPoint(shape.Points)
		if err != nil {
			res.warnMalformed("image %d: %s: %v", img.ID, shape.Label, err)
			continue
		}
		if !p.accept(shape.Label, img.ID, res) {
			continue
		}
		out = append(out, entity.KeypointObservation{
			FrameIndex: img.ID,
			Bodypart:   shape.Label,
			X:          x,
			Y:          y,
			Occluded:   shape.Occluded != 0,
			TrackID:    entity.NoTrack,
		})
	}
	for _, box := range img.Boxes {
		name := box.Label + "_center"
		if !p.accept(name, img.ID, res) {
			continue
		}
		out = append(out, entity.KeypointObservation{
			FrameIndex: img.ID,
			Bodypart:   name,
			X:          (box.XTL + box.XBR) / 2,
			Y:          (box.YTL + box.YBR) / 2,
			Occluded:   box.Occluded != 0,
			TrackID:    entity.NoTrack,
		})
	}
	return out
}

// keyframe is the interpolation state for one (track, bodypart): the
// shape recorded in the document at one frame.
type keyframe struct {
	frame    int
	x, y     float64
	occluded bool
	outside  bool
}

// trackObservations expands both shape streams a track can carry:
// point keyframes under the track label, and box keyframes as
// <label>_center centroids.
func (p *Parser) trackObservations(track xmlTrack, meta JobMeta, res *Result) []entity.KeypointObservation {
	var out []entity.KeypointObservation

	var pointKeys []keyframe
	for _, shape := range track.Points {
		x, y, err := firstPoint(shape.Points)
		if err != nil {
			res.warnMalformed("track %d (%s) frame %d: %v", track.ID, track.Label, shape.Frame, err)
			continue
		}
		pointKeys = append(pointKeys, keyframe{
			frame:    shape.Frame,
			x:        x,
			y:        y,
			occluded: shape.Occluded != 0,
			outside:  shape.Outside != 0,
		})
	}
	if len(pointKeys) > 0 && p.accept(track.Label, pointKeys[0].frame, res) {
		out = append(out, expandKeyframes(track.ID, track.Label, pointKeys, meta)...)
	}

	var boxKeys []keyframe
	for _, box := range track.Boxes {
		boxKeys = append(boxKeys, keyframe{
			frame:    box.Frame,
			x:        (box.XTL + box.XBR) / 2,
			y:        (box.YTL + box.YBR) / 2,
			occluded: box.Occluded != 0,
			outside:  box.Outside != 0,
		})
	}
	if len(boxKeys) > 0 {
		name := track.Label + "_center"
		if p.accept(name, boxKeys[0].frame, res) {
			out = append(out, expandKeyframes(track.ID, name, boxKeys, meta)...)
		}
	}

	return out
}

// expandKeyframes resolves sparse keyframes into explicit per-frame
// observations: a frame between two keyframes inherits the nearest
// preceding keyframe unless that keyframe marks the track outside.
func expandKeyframes(trackID int, bodypart string, keys []keyframe, meta JobMeta) []entity.KeypointObservation {
	sort.Slice(keys, func(i, j int) bool { return keys[i].frame < keys[j].frame })

	last := keys[len(keys)-1].frame
	stop := last
	if meta.Found && meta.StopFrame > stop {
		stop = meta.StopFrame
	}

	var out []entity.KeypointObservation
	for i, key := range keys {
		if key.outside {
			continue
		}
		end := stop
		if i+1 < len(keys) {
			end = keys[i+1].frame - 1
		}
		for f := key.frame; f <= end; f++ {
			out = append(out, entity.KeypointObservation{
				FrameIndex: f,
				Bodypart:   bodypart,
				X:          key.x,
				Y:          key.y,
				Occluded:   key.occluded,
				TrackID:    trackID,
			})
		}
	}
	return out
}

// accept reports whether the bodypart is in the active schema,
// recording a schema-mismatch warning when it is not.
func (p *Parser) accept(bodypart string, frame int, res *Result) bool {
	if p.schema.Has(bodypart) {
		return true
	}
	res.Warnings = append(res.Warnings, entity.Warning{
		Kind:    entity.WarnSchemaMismatch,
		Message: fmt.Sprintf("bodypart %q (frame %d) is not in schema %q, observation dropped", bodypart, frame, p.schema.Name),
	})
	return false
}

func (res *Result) warnMalformed(format string, args ...any) {
	res.Warnings = append(res.Warnings, entity.Warning{
		Kind:    entity.WarnMalformedShape,
		Message: fmt.Sprintf(format, args...),
	})
}

// firstPoint parses a CVAT points attribute ("x1,y1;x2,y2;...") and
// returns the first coordinate pair.
func firstPoint(attr string) (float64, float64, error) {
	first, _, _ := strings.Cut(attr, ";")
	xs, ys, found := strings.Cut(first, ",")
	if !found {
		return 0, 0, fmt.Errorf("malformed points attribute %q", attr)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse x in %q: %w", attr, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse y in %q: %w", attr, err)
	}
	return x, y, nil
}
