// Package config loads the parameters file that drives a figure run.
// The file keeps the section layout of the pipeline's params.yaml so the same
// file can be shared with the DVC stage definition.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"figmgr/internal/figerr"

	"gopkg.in/yaml.v3"
)

// Params holds the configuration of one run. It is loaded once at startup
// and passed by value afterwards.
type Params struct {
	// Input data location
	DataETL DataETLConfig `yaml:"data_etl"`

	// Output figure settings
	FigureManager FigureManagerConfig `yaml:"figure_manager"`

	// Plot generation settings
	Plotter PlotterConfig `yaml:"plotter"`

	// Run log settings
	Logging LoggingConfig `yaml:"logging,omitempty"`

	// MetricsFile receives the effective parameters as JSON, relative to the project root.
	MetricsFile string `yaml:"metrics_file,omitempty"`
}

// DataETLConfig locates the input dataset.
type DataETLConfig struct {
	ExternalDataPath string `yaml:"external_data_path"`
	DataFile         string `yaml:"data_file,omitempty"` // default: Males.csv
}

// FigureManagerConfig configures figure layout and output.
type FigureManagerConfig struct {
	FiguresDir string    `yaml:"figures_dir"`
	PaperSize  PaperSize `yaml:"paper_size"`
	FileExt    string    `yaml:"file_ext"` // .png, .jpg, .pdf, .svg, .eps, .tif
	UseLatex   bool      `yaml:"use_latex"`
	DPI        int       `yaml:"dpi,omitempty"`
}

// PlotterConfig configures plot generation.
type PlotterConfig struct {
	Verbose bool `yaml:"verbose"`
}

const (
	DefaultDataFile    = "Males.csv"
	DefaultMetricsFile = "metrics.json"
	DefaultDPI         = 300
)

// DefaultParams returns the default parameters.
func DefaultParams() Params {
	return Params{
		DataETL: DataETLConfig{
			ExternalDataPath: "data/external",
			DataFile:         DefaultDataFile,
		},
		FigureManager: FigureManagerConfig{
			FiguresDir: "reports/figures",
			PaperSize:  PaperA4,
			FileExt:    ".pdf",
			UseLatex:   false,
			DPI:        DefaultDPI,
		},
		MetricsFile: DefaultMetricsFile,
	}
}

// Load reads a parameters file. Unlike most config files a missing
// parameters file is an error: every run needs an explicit one.
func Load(path string) (Params, error) {
	params := DefaultParams()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Params{}, figerr.Config("load params", "parameters file %s not found", path)
		}
		return Params{}, figerr.Config("load params", "read %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return Params{}, figerr.Config("load params", "parameters file %s is empty", path)
	}

	if err := yaml.Unmarshal(data, &params); err != nil {
		return Params{}, figerr.Config("load params", "parse %s: %w", path, err)
	}

	if err := params.applyEnvOverrides(); err != nil {
		return Params{}, err
	}
	params.normalize()

	if err := params.Validate(); err != nil {
		return Params{}, err
	}
	return params, nil
}

// Save writes the parameters as YAML.
func (p Params) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return figerr.Write("save params", "create directory: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return figerr.Write("save params", "write %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (p *Params) applyEnvOverrides() error {
	if dir := os.Getenv("FIGMGR_FIGURES_DIR"); dir != "" {
		p.FigureManager.FiguresDir = dir
	}
	if ext := os.Getenv("FIGMGR_FILE_EXT"); ext != "" {
		p.FigureManager.FileExt = ext
	}
	if size := os.Getenv("FIGMGR_PAPER_SIZE"); size != "" {
		p.FigureManager.PaperSize = PaperSize(size)
	}
	if v := os.Getenv("FIGMGR_USE_LATEX"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return figerr.Config("env override", "FIGMGR_USE_LATEX=%q is not a boolean", v)
		}
		p.FigureManager.UseLatex = b
	}
	return nil
}

// normalize fills optional fields and canonicalises enum spellings.
func (p *Params) normalize() {
	if p.DataETL.DataFile == "" {
		p.DataETL.DataFile = DefaultDataFile
	}
	if p.MetricsFile == "" {
		p.MetricsFile = DefaultMetricsFile
	}
	if p.FigureManager.DPI == 0 {
		p.FigureManager.DPI = DefaultDPI
	}
	p.FigureManager.FileExt = NormalizeExt(p.FigureManager.FileExt)
	if size, ok := ParsePaperSize(string(p.FigureManager.PaperSize)); ok {
		p.FigureManager.PaperSize = size
	}
}

// Validate validates the parameters.
func (p Params) Validate() error {
	if strings.TrimSpace(p.DataETL.ExternalDataPath) == "" {
		return figerr.Config("validate params", "data_etl.external_data_path is required")
	}
	if strings.TrimSpace(p.DataETL.DataFile) == "" {
		return figerr.Config("validate params", "data_etl.data_file is required")
	}
	if strings.TrimSpace(p.FigureManager.FiguresDir) == "" {
		return figerr.Config("validate params", "figure_manager.figures_dir is required")
	}
	if _, ok := ParsePaperSize(string(p.FigureManager.PaperSize)); !ok {
		return figerr.Config("validate params", "invalid paper_size %q (valid: %v)",
			p.FigureManager.PaperSize, ValidPaperSizes)
	}
	if _, ok := LookupFormat(p.FigureManager.FileExt); !ok {
		return figerr.Config("validate params", "invalid file_ext %q (valid: %v)",
			p.FigureManager.FileExt, SupportedExts())
	}
	if p.FigureManager.DPI < 0 {
		return figerr.Config("validate params", "dpi must be positive, got %d", p.FigureManager.DPI)
	}
	return p.Logging.validate()
}

// DataPath returns the dataset location under root.
func (p Params) DataPath(root string) string {
	return resolve(root, filepath.Join(p.DataETL.ExternalDataPath, p.DataETL.DataFile))
}

// FiguresPath returns the figures directory under root.
func (p Params) FiguresPath(root string) string {
	return resolve(root, p.FigureManager.FiguresDir)
}

// MetricsPath returns the metrics file location under root.
func (p Params) MetricsPath(root string) string {
	return resolve(root, p.MetricsFile)
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
