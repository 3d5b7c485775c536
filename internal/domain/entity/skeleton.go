package entity

import "fmt"

// SkeletonSchema names the bodyparts tracked by a project and the
// edges drawn between them. Bodypart order is the canonical column
// order of every output artifact.
type SkeletonSchema struct {
	Name      string
	Bodyparts []string
	Edges     [][2]string
}

func (s SkeletonSchema) Validate() error {
	if len(s.Bodyparts) == 0 {
		return fmt.Errorf("schema %q has no bodyparts", s.Name)
	}
	seen := make(map[string]bool, len(s.Bodyparts))
	for _, bp := range s.Bodyparts {
		if seen[bp] {
			return fmt.Errorf("schema %q: duplicate bodypart %q", s.Name, bp)
		}
		seen[bp] = true
	}
	for _, edge := range s.Edges {
		for _, endpoint := range edge {
			if !seen[endpoint] {
				return fmt.Errorf("schema %q: edge endpoint %q is not a bodypart", s.Name, endpoint)
			}
		}
	}
	return nil
}

func (s SkeletonSchema) Has(bodypart string) bool {
	for _, bp := range s.Bodyparts {
		if bp == bodypart {
			return true
		}
	}
	return false
}

// ColumnCount is the width of the dataset table: one (x, y) pair per bodypart.
func (s SkeletonSchema) ColumnCount() int {
	return 2 * len(s.Bodyparts)
}

func beeParts(prefix string) []string {
	return []string{
		prefix + "_Head",
		prefix + "_Neck",
		prefix + "_Tail",
		prefix + "_Antenna_L1",
		prefix + "_Antenna_L2",
		prefix + "_Antenna_L3",
		prefix + "_Antenna_R1",
		prefix + "_Antenna_R2",
		prefix + "_Antenna_R3",
	}
}

func beeEdges(prefix string) [][2]string {
	return [][2]string{
		{prefix + "_Head", prefix + "_Neck"},
		{prefix + "_Neck", prefix + "_Tail"},
		{prefix + "_Antenna_L1", prefix + "_Antenna_L2"},
		{prefix + "_Antenna_L2", prefix + "_Antenna_L3"},
		{prefix + "_Antenna_L3", prefix + "_Head"},
		{prefix + "_Antenna_R1", prefix + "_Antenna_R2"},
		{prefix + "_Antenna_R2", prefix + "_Antenna_R3"},
		{prefix + "_Antenna_R3", prefix + "_Head"},
	}
}

// QueenBeeSchema covers the queen individual (Q_ prefix).
func QueenBeeSchema() SkeletonSchema {
	return SkeletonSchema{Name: "queen-bee", Bodyparts: beeParts("Q"), Edges: beeEdges("Q")}
}

// OtherBeeSchema covers the template worker individual (O_ prefix).
func OtherBeeSchema() SkeletonSchema {
	return SkeletonSchema{Name: "other-bee", Bodyparts: beeParts("O"), Edges: beeEdges("O")}
}

// BeePairSchema is the combined queen + template-worker skeleton used
// by the BeePose project layout.
func BeePairSchema() SkeletonSchema {
	return SkeletonSchema{
		Name:      "bee-pair",
		Bodyparts: append(beeParts("Q"), beeParts("O")...),
		Edges:     append(beeEdges("Q"), beeEdges("O")...),
	}
}

// SchemaByName resolves a named preset.
func SchemaByName(name string) (SkeletonSchema, error) {
	switch name {
	case "queen-bee":
		return QueenBeeSchema(), nil
	case "other-bee":
		return OtherBeeSchema(), nil
	case "bee-pair", "":
		return BeePairSchema(), nil
	}
	return SkeletonSchema{}, fmt.Errorf("unknown skeleton preset %q", name)
}

// CustomSchema builds an edge-less schema from an explicit bodypart
// list, for annotation exports that do not follow a preset.
func CustomSchema(bodyparts []string) SkeletonSchema {
	parts := make([]string, len(bodyparts))
	copy(parts, bodyparts)
	return SkeletonSchema{Name: "custom", Bodyparts: parts}
}
