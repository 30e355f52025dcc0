// Package produce runs the figure job: it loads the dataset, writes the run
// metrics and renders every figure through the figure manager.
package produce

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"figmgr/internal/config"
	"figmgr/internal/dataset"
	"figmgr/internal/figerr"
	"figmgr/internal/figure"
	"figmgr/internal/logging"

	"go.uber.org/zap"
)

// Producer renders the configured figures for one project root.
type Producer struct {
	params    config.Params
	root      string
	toolchain figure.Toolchain
	ready     func() error
	log       *zap.Logger
}

// Option is a functional option for configuring the producer.
type Option func(*Producer) error

// WithLogger sets the parent logger. Without it the producer is silent.
func WithLogger(log *zap.Logger) Option {
	return func(p *Producer) error {
		p.log = log
		return nil
	}
}

// WithToolchain replaces the LaTeX toolchain probed when use_latex is set.
func WithToolchain(tc figure.Toolchain) Option {
	return func(p *Producer) error {
		p.toolchain = tc
		return nil
	}
}

// WithReady registers fn to run once every check has passed, just before
// the first output is written. An error from fn aborts the run.
func WithReady(fn func() error) Option {
	return func(p *Producer) error {
		p.ready = fn
		return nil
	}
}

// New creates a producer. Relative paths in params resolve against root.
func New(params config.Params, root string, opts ...Option) (*Producer, error) {
	p := &Producer{
		params:    params,
		root:      root,
		toolchain: figure.SystemToolchain(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, fmt.Errorf("failed to apply producer option: %w", err)
		}
	}
	if p.params.MetricsFile == "" {
		p.params.MetricsFile = config.DefaultMetricsFile
	}
	if p.params.DataETL.DataFile == "" {
		p.params.DataETL.DataFile = config.DefaultDataFile
	}
	return p, nil
}

// FigureReport lists the files written for one figure, composite first.
type FigureReport struct {
	Name   string
	Panels int
	Files  []string
}

// Report summarises a successful run.
type Report struct {
	Metrics  string
	Figures  []FigureReport
	Duration time.Duration
}

// Files returns every figure file in write order.
func (r *Report) Files() []string {
	var files []string
	for _, f := range r.Figures {
		files = append(files, f.Files...)
	}
	return files
}

// Produce runs the job. Nothing is written until the parameters, the
// dataset and the LaTeX toolchain have all been checked, so a failure in
// any of them leaves the output directories untouched.
func (p *Producer) Produce() (*Report, error) {
	start := time.Now()
	log := logging.For(p.log, logging.CategoryProduce)

	if err := p.params.Validate(); err != nil {
		return nil, err
	}

	data, err := LoadDataset(p.params, p.root, p.log)
	if err != nil {
		return nil, err
	}

	opts := figure.OptionsFromParams(p.params, p.root)
	opts.Toolchain = p.toolchain
	fm, err := figure.NewManager(opts, logging.For(p.log, logging.CategoryFigure))
	if err != nil {
		return nil, err
	}
	if p.ready != nil {
		if err := p.ready(); err != nil {
			return nil, err
		}
	}
	if err := fm.EnsureOutputDir(); err != nil {
		return nil, err
	}

	report := &Report{Metrics: p.params.MetricsPath(p.root)}
	if err := writeMetrics(report.Metrics, newMetrics(p.params)); err != nil {
		return nil, err
	}
	log.Debug("Wrote metrics", zap.String("path", report.Metrics))

	for _, def := range figures {
		f, err := fm.CreateFigure(def.rows, def.cols, def.panels)
		if err != nil {
			return nil, err
		}
		if err := def.draw(f, data, p.params.Plotter.Verbose, p.log); err != nil {
			return nil, fmt.Errorf("figure %s: %w", def.name, err)
		}
		files, err := f.Save(def.name)
		if err != nil {
			return nil, err
		}
		report.Figures = append(report.Figures, FigureReport{Name: def.name, Panels: def.panels, Files: files})
		log.Info("Figure written", zap.String("figure", def.name), zap.Int("files", len(files)))
	}

	report.Duration = time.Since(start)
	log.Info("Figures produced",
		zap.Int("figures", len(report.Figures)),
		zap.String("dir", fm.OutputDir()),
		zap.String("format", fm.Format().Name),
		zap.Duration("took", report.Duration))
	return report, nil
}

// LoadDataset reads the configured CSV and checks that every column the
// figures use is present.
func LoadDataset(params config.Params, root string, log *zap.Logger) (*dataset.Dataset, error) {
	path := params.DataPath(root)
	data, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	if err := data.Require(requiredColumns...); err != nil {
		return nil, err
	}
	logging.For(log, logging.CategoryDataset).Debug("Loaded dataset",
		zap.String("path", path),
		zap.Int("rows", data.Len()),
		zap.Strings("columns", data.Columns()))
	return data, nil
}

// Metrics is the JSON record of a run's effective parameters, read by CI.
type Metrics struct {
	Verbose          bool   `json:"verbose"`
	ExternalDataPath string `json:"external_data_path"`
	FiguresDir       string `json:"figures_dir"`
	PaperSize        string `json:"paper_size"`
	FileExt          string `json:"file_ext"`
	UseLatex         bool   `json:"use_latex"`
}

func newMetrics(p config.Params) Metrics {
	return Metrics{
		Verbose:          p.Plotter.Verbose,
		ExternalDataPath: p.DataETL.ExternalDataPath,
		FiguresDir:       p.FigureManager.FiguresDir,
		PaperSize:        string(p.FigureManager.PaperSize),
		FileExt:          p.FigureManager.FileExt,
		UseLatex:         p.FigureManager.UseLatex,
	}
}

func writeMetrics(path string, m Metrics) error {
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return figerr.Write("write metrics", "create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return figerr.Write("write metrics", "write %s: %w", path, err)
	}
	return nil
}
