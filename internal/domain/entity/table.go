package entity

import "math"

// DatasetRow is one labeled frame: the image filename plus one (x, y)
// pair per bodypart in schema order. Missing bodyparts carry NaN in
// both coordinates.
type DatasetRow struct {
	FrameIndex int
	Image      string
	Values     []float64
}

// DatasetTable is the in-memory form of CollectedData_<scorer>. Rows
// are in ascending frame-index order; Values width is always
// 2 * len(Bodyparts).
type DatasetTable struct {
	Scorer    string
	VideoName string
	Bodyparts []string
	Rows      []DatasetRow
}

// Equal compares schema and values, treating NaN as equal to NaN so
// that a serialized-then-parsed table matches its source.
func (t DatasetTable) Equal(other DatasetTable) bool {
	if t.Scorer != other.Scorer || t.VideoName != other.VideoName {
		return false
	}
	if len(t.Bodyparts) != len(other.Bodyparts) || len(t.Rows) != len(other.Rows) {
		return false
	}
	for i, bp := range t.Bodyparts {
		if bp != other.Bodyparts[i] {
			return false
		}
	}
	for i, row := range t.Rows {
		o := other.Rows[i]
		if row.Image != o.Image || len(row.Values) != len(o.Values) {
			return false
		}
		for j, v := range row.Values {
			if math.IsNaN(v) && math.IsNaN(o.Values[j]) {
				continue
			}
			if v != o.Values[j] {
				return false
			}
		}
	}
	return true
}
