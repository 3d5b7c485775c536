package dlc

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/entity"
)

// CollectedDataName is the base name of the table artifacts for a scorer.
func CollectedDataName(scorer string) string {
	return "CollectedData_" + scorer
}

// WriteCSV serializes the table in the BeePose CollectedData layout:
// three header rows (scorer, bodyparts, coords) over three key columns
// (labeled-data, video name, image name) followed by one row per
// frame. Missing coordinates are written as empty cells. The file is
// written to a temp name and renamed, so a failed run never leaves a
// truncated table behind.
func WriteCSV(table entity.DatasetTable, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".collected-*.csv")
	if err != nil {
		return fmt.Errorf("create temp csv: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)

	n := len(table.Bodyparts)
	scorerRow := append([]string{"scorer", "", ""}, repeat(table.Scorer, 2*n)...)

	bodypartsRow := []string{"bodyparts", "", ""}
	for _, bp := range table.Bodyparts {
		bodypartsRow = append(bodypartsRow, bp, bp)
	}

	coordsRow := []string{"coords", "", ""}
	for range table.Bodyparts {
		coordsRow = append(coordsRow, "x", "y")
	}

	for _, row := range [][]string{scorerRow, bodypartsRow, coordsRow} {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}

	for _, row := range table.Rows {
		record := []string{"labeled-data", table.VideoName, row.Image}
		for _, v := range row.Values {
			record = append(record, formatValue(v))
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp csv: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename csv into place: %w", err)
	}
	return nil
}

// ReadCSV parses a CollectedData CSV back into a table. Round trip
// with WriteCSV preserves schema and values.
func ReadCSV(path string) (entity.DatasetTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return entity.DatasetTable{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return entity.DatasetTable{}, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 3 {
		return entity.DatasetTable{}, fmt.Errorf("csv has no header rows")
	}

	scorerRow, bodypartsRow := records[0], records[1]
	if len(scorerRow) < 3 || scorerRow[0] != "scorer" {
		return entity.DatasetTable{}, fmt.Errorf("malformed scorer row")
	}

	var table entity.DatasetTable
	if len(scorerRow) > 3 {
		table.Scorer = scorerRow[3]
	}
	for col := 3; col < len(bodypartsRow); col += 2 {
		table.Bodyparts = append(table.Bodyparts, bodypartsRow[col])
	}

	for _, record := range records[3:] {
		if len(record) != 3+2*len(table.Bodyparts) {
			return entity.DatasetTable{}, fmt.Errorf("row width %d does not match schema", len(record))
		}
		table.VideoName = record[1]
		row := entity.DatasetRow{Image: record[2]}
		for _, cell := range record[3:] {
			v, err := parseValue(cell)
			if err != nil {
				return entity.DatasetTable{}, fmt.Errorf("parse cell %q: %w", cell, err)
			}
			row.Values = append(row.Values, v)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseValue(cell string) (float64, error) {
	if cell == "" || cell == "nan" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}
