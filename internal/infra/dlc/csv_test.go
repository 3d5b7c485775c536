package dlc

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/entity"
)

func sampleTable() entity.DatasetTable {
	return entity.DatasetTable{
		Scorer:    "manual",
		VideoName: "hive_cam",
		Bodyparts: []string{"head", "thorax", "abdomen"},
		Rows: []entity.DatasetRow{
			{FrameIndex: 5, Image: "frame_0005.png", Values: []float64{10.5, 20.25, 30, 40, math.NaN(), math.NaN()}},
			{FrameIndex: 10, Image: "frame_0010.png", Values: []float64{11, 21, math.NaN(), math.NaN(), 50, 60}},
		},
	}
}

func TestWriteCSVHeaderLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CollectedData_manual.csv")
	require.NoError(t, WriteCSV(sampleTable(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 5)

	assert.Equal(t, "scorer,,,manual,manual,manual,manual,manual,manual", lines[0])
	assert.Equal(t, "bodyparts,,,head,head,thorax,thorax,abdomen,abdomen", lines[1])
	assert.Equal(t, "coords,,,x,y,x,y,x,y", lines[2])
	assert.Equal(t, "labeled-data,hive_cam,frame_0005.png,10.5,20.25,30,40,,", lines[3])
	assert.Equal(t, "labeled-data,hive_cam,frame_0010.png,11,21,,,50,60", lines[4])
}

func TestCSVRoundTrip(t *testing.T) {
	table := sampleTable()
	path := filepath.Join(t.TempDir(), "CollectedData_manual.csv")

	require.NoError(t, WriteCSV(table, path))
	back, err := ReadCSV(path)
	require.NoError(t, err)

	// FrameIndex is not carried by the artifact, only the image name
	for i := range back.Rows {
		back.Rows[i].FrameIndex = table.Rows[i].FrameIndex
	}
	assert.True(t, table.Equal(back), "round trip must preserve schema and values")
}

func TestWriteCSVIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CollectedData_manual.csv")

	require.NoError(t, WriteCSV(sampleTable(), path))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, WriteCSV(sampleTable(), path))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestWriteCSVLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteCSV(sampleTable(), filepath.Join(dir, "out.csv")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.csv", entries[0].Name())
}

func TestReadCSVRejectsRaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	content := "scorer,,,manual,manual\nbodyparts,,,head,head\ncoords,,,x,y\nlabeled-data,v,f.png,1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := ReadCSV(path)
	require.Error(t, err)
}
