package dlc

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/entity"
)

// Descriptor is the declarative project configuration the training
// framework reads for dataset creation, training and evaluation.
type Descriptor struct {
	Task        string
	Scorer      string
	Date        string
	ProjectPath string
	VideoFile   string
	Schema      entity.SkeletonSchema
}

func NewDescriptor(task, scorer, projectPath, videoFile string, schema entity.SkeletonSchema) Descriptor {
	return Descriptor{
		Task:        task,
		Scorer:      scorer,
		Date:        time.Now().Format("Jan02"),
		ProjectPath: projectPath,
		VideoFile:   videoFile,
		Schema:      schema,
	}
}

// WriteFile emits config.yaml in the commented BeePose layout the
// training framework expects. An existing descriptor is overwritten,
// last writer wins.
func (d Descriptor) WriteFile(path string) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Project definitions (do not edit)\n")
	fmt.Fprintf(&buf, "Task: %s\n", d.Task)
	fmt.Fprintf(&buf, "scorer: %s\n", d.Scorer)
	fmt.Fprintf(&buf, "date: %s\n", d.Date)
	fmt.Fprintf(&buf, "multianimalproject:\nidentity:\n\n\n")

	fmt.Fprintf(&buf, "# Project path (change when moving around)\n")
	fmt.Fprintf(&buf, "project_path: %s\n\n\n", d.ProjectPath)

	fmt.Fprintf(&buf, "# Default DeepLabCut engine to use for shuffle creation (either pytorch or tensorflow)\n")
	fmt.Fprintf(&buf, "engine: pytorch\n\n\n")

	fmt.Fprintf(&buf, "# Annotation data set configuration (and individual video cropping parameters)\n")
	fmt.Fprintf(&buf, "video_sets:\n")
	fmt.Fprintf(&buf, "  %s:\n", d.VideoFile)
	fmt.Fprintf(&buf, "    crop: false\n\n")

	fmt.Fprintf(&buf, "# Other settings\n")
	fmt.Fprintf(&buf, "bodyparts:\n")
	bodyparts, err := yaml.Marshal(d.Schema.Bodyparts)
	if err != nil {
		return fmt.Errorf("marshal bodyparts: %w", err)
	}
	buf.Write(bodyparts)
	fmt.Fprintf(&buf, "\n\n\n")

	fmt.Fprintf(&buf, "start: 0\nstop: 1\nnumframes2pick: 20\n\n\n")

	fmt.Fprintf(&buf, "# Plotting configuration\n")
	fmt.Fprintf(&buf, "skeleton:\n")
	for _, edge := range d.Schema.Edges {
		fmt.Fprintf(&buf, "- [%s, %s]\n", edge[0], edge[1])
	}
	fmt.Fprintf(&buf, "skeleton_color: blue\n")
	fmt.Fprintf(&buf, "pcutoff: 0.4\ndotsize: 12\nalphavalue: 0.7\ncolormap: plasma\n\n\n")

	fmt.Fprintf(&buf, "# Training,Evaluation and Analysis configuration\n")
	fmt.Fprintf(&buf, "TrainingFraction: [0.95]\n")
	fmt.Fprintf(&buf, "iteration: 0\n")
	fmt.Fprintf(&buf, "default_net_type: resnet_50\n")
	fmt.Fprintf(&buf, "default_augmenter: imgaug\n")
	fmt.Fprintf(&buf, "snapshotindex: -1\n")
	fmt.Fprintf(&buf, "detector_snapshotindex: -1\n")
	fmt.Fprintf(&buf, "batch_size: 8\n")
	fmt.Fprintf(&buf, "detector_batch_size: 1\n\n\n")

	fmt.Fprintf(&buf, "# Cropping Parameters (for analysis and outlier frame detection)\n")
	fmt.Fprintf(&buf, "cropping:\n")
	fmt.Fprintf(&buf, "#if cropping is true for analysis, then set the values here:\n")
	fmt.Fprintf(&buf, "x1:\nx2:\ny1:\ny2:\n\n\n")

	fmt.Fprintf(&buf, "# Refinement configuration (parameters from annotation dataset configuration also relevant in this stage)\n")
	fmt.Fprintf(&buf, "corner2move2:\nmove2corner:\n\n\n")

	fmt.Fprintf(&buf, "# Conversion tables to fine-tune SuperAnimal weights\n")
	fmt.Fprintf(&buf, "SuperAnimalConversionTables:\n")
	fmt.Fprintf(&buf, "project_name: %s\n", d.Task)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write descriptor: %w", err)
	}
	return nil
}

// ParsedDescriptor is the subset of config.yaml the converter itself
// cares about, used to check an emitted descriptor.
type ParsedDescriptor struct {
	Task        string                 `yaml:"Task"`
	Scorer      string                 `yaml:"scorer"`
	ProjectPath string                 `yaml:"project_path"`
	VideoSets   map[string]interface{} `yaml:"video_sets"`
	Bodyparts   []string               `yaml:"bodyparts"`
	Skeleton    [][]string             `yaml:"skeleton"`
	ProjectName string                 `yaml:"project_name"`
}

func ReadDescriptor(path string) (ParsedDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ParsedDescriptor{}, fmt.Errorf("read descriptor: %w", err)
	}
	var parsed ParsedDescriptor
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return ParsedDescriptor{}, fmt.Errorf("unmarshal descriptor: %w", err)
	}
	return parsed, nil
}
