package dlc

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/hdf5"

	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/entity"
)

// HDF5Writer serializes the table straight to HDF5 through libhdf5,
// bypassing the training framework. It carries the identical schema
// and values as the CSV: a rows×columns float64 matrix, the image
// paths, the column labels and the scorer.
type HDF5Writer struct {
	logger *zap.Logger
}

func NewHDF5Writer(logger *zap.Logger) *HDF5Writer {
	return &HDF5Writer{logger: logger}
}

func (w *HDF5Writer) Name() string { return "hdf5-direct" }

func (w *HDF5Writer) Write(ctx context.Context, table entity.DatasetTable, csvPath, h5Path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := hdf5.CreateFile(h5Path, hdf5.F_ACC_TRUNC)
	if err != nil {
		return fmt.Errorf("create h5 file: %w", err)
	}
	defer f.Close()

	rows := len(table.Rows)
	cols := 2 * len(table.Bodyparts)

	values := make([]float64, 0, rows*cols)
	images := make([]string, 0, rows)
	for _, row := range table.Rows {
		values = append(values, row.Values...)
		images = append(images, row.Image)
	}

	columns := make([]string, 0, cols)
	for _, bp := range table.Bodyparts {
		columns = append(columns, bp+"/x", bp+"/y")
	}

	if err := writeFloatMatrix(f, "values", values, rows, cols); err != nil {
		return err
	}
	if err := writeStrings(f, "image_paths", images); err != nil {
		return err
	}
	if err := writeStrings(f, "columns", columns); err != nil {
		return err
	}
	if err := writeStrings(f, "scorer", []string{table.Scorer}); err != nil {
		return err
	}

	w.logger.Info("h5 written directly", zap.String("path", h5Path), zap.Int("rows", rows))
	return nil
}

func writeFloatMatrix(f *hdf5.File, name string, flat []float64, rows, cols int) error {
	space, err := hdf5.CreateSimpleDataspace([]uint{uint(rows), uint(cols)}, nil)
	if err != nil {
		return fmt.Errorf("create %s dataspace: %w", name, err)
	}
	defer space.Close()

	ds, err := f.CreateDataset(name, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return fmt.Errorf("create %s dataset: %w", name, err)
	}
	defer ds.Close()

	if err := ds.Write(&flat); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func writeStrings(f *hdf5.File, name string, values []string) error {
	space, err := hdf5.CreateSimpleDataspace([]uint{uint(len(values))}, nil)
	if err != nil {
		return fmt.Errorf("create %s dataspace: %w", name, err)
	}
	defer space.Close()

	ds, err := f.CreateDataset(name, hdf5.T_GO_STRING, space)
	if err != nil {
		return fmt.Errorf("create %s dataset: %w", name, err)
	}
	defer ds.Close()

	if err := ds.Write(&values); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
