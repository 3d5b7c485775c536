package dlc

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/entity"
)

// DLCConverter produces the H5 artifact through the training
// framework's own converter, deeplabcut.convertcsv2h5. The converter
// asks for interactive confirmation, so stdin is prewired with "yes"
// and the input builtin is patched the same way.
type DLCConverter struct {
	pythonBin string
	timeout   time.Duration
	logger    *zap.Logger
}

func NewDLCConverter(pythonBin string, logger *zap.Logger) *DLCConverter {
	return &DLCConverter{pythonBin: pythonBin, timeout: 2 * time.Minute, logger: logger}
}

func (c *DLCConverter) Name() string { return "deeplabcut-convertcsv2h5" }

func (c *DLCConverter) Write(ctx context.Context, table entity.DatasetTable, csvPath, h5Path string) error {
	// csvPath sits at <root>/labeled-data/<video>/CollectedData_<scorer>.csv
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(csvPath)))
	configPath := filepath.Join(projectRoot, "config.yaml")
	if _, err := os.Stat(configPath); err != nil {
		return fmt.Errorf("config.yaml not found at %s: %w", projectRoot, err)
	}

	script := strings.Join([]string{
		"import builtins",
		"builtins.input = lambda prompt='': 'yes'",
		"import deeplabcut",
		fmt.Sprintf("deeplabcut.convertcsv2h5(%q, scorer=%q)", configPath, table.Scorer),
	}, "\n")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.pythonBin, "-c", script)
	cmd.Stdin = strings.NewReader("yes\n")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("convertcsv2h5: %w, output: %s", err, string(output))
	}

	if _, err := os.Stat(h5Path); err != nil {
		return fmt.Errorf("converter reported success but %s is missing", filepath.Base(h5Path))
	}
	c.logger.Info("h5 written by deeplabcut converter", zap.String("path", h5Path))
	return nil
}
