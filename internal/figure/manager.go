// Package figure lays out multi-panel figures at paper size and writes
// them, plus one file per panel, in the configured image format.
package figure

import (
	"image/color"
	"os"

	"figmgr/internal/config"
	"figmgr/internal/figerr"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Options configures a Manager.
type Options struct {
	OutputDir string
	PaperSize config.PaperSize
	FileExt   string
	DPI       int
	UseLatex  bool

	// Toolchain is probed when UseLatex is set. Zero value probes PATH.
	Toolchain Toolchain
}

// OptionsFromParams derives manager options for a project root.
func OptionsFromParams(p config.Params, root string) Options {
	return Options{
		OutputDir: p.FiguresPath(root),
		PaperSize: p.FigureManager.PaperSize,
		FileExt:   p.FigureManager.FileExt,
		DPI:       p.FigureManager.DPI,
		UseLatex:  p.FigureManager.UseLatex,
	}
}

// Manager creates figures and writes them to one output directory.
type Manager struct {
	opts       Options
	format     config.Format
	handler    text.Handler
	background color.Color
	log        *zap.Logger
}

// margin is the page margin on each side, in inches.
const margin = 0.5

// panelAspect is panel height over panel width.
const panelAspect = 0.75

// NewManager validates the options and selects the text handler. With
// UseLatex it fails with a RenderingError when the toolchain is missing;
// there is no fallback to plain text.
func NewManager(opts Options, log *zap.Logger) (*Manager, error) {
	if log == nil {
		log = zap.NewNop()
	}
	opts.FileExt = config.NormalizeExt(opts.FileExt)
	format, ok := config.LookupFormat(opts.FileExt)
	if !ok {
		return nil, figerr.Config("figure manager", "unsupported file extension %q", opts.FileExt)
	}
	if opts.OutputDir == "" {
		return nil, figerr.Config("figure manager", "output directory is required")
	}
	if opts.DPI <= 0 {
		opts.DPI = config.DefaultDPI
	}

	var handler text.Handler = plot.DefaultTextHandler
	if opts.UseLatex {
		if err := opts.Toolchain.Check(format); err != nil {
			return nil, err
		}
		handler = &text.Latex{Fonts: font.DefaultCache, DPI: float64(opts.DPI)}
	}

	var background color.Color = color.White
	if format.Transparent || !format.Raster {
		background = color.Transparent
	}

	m := &Manager{
		opts:       opts,
		format:     format,
		handler:    handler,
		background: background,
		log:        log,
	}
	log.Debug("Figure manager ready",
		zap.String("dir", opts.OutputDir),
		zap.String("paper", string(opts.PaperSize)),
		zap.String("format", format.Name),
		zap.Bool("latex", opts.UseLatex))
	return m, nil
}

// EnsureOutputDir creates the output directory.
func (m *Manager) EnsureOutputDir() error {
	if err := os.MkdirAll(m.opts.OutputDir, 0755); err != nil {
		return figerr.Write("figure manager", "create output directory %s: %w", m.opts.OutputDir, err)
	}
	return nil
}

// OutputDir returns the directory figures are written to.
func (m *Manager) OutputDir() string { return m.opts.OutputDir }

// Format returns the output format.
func (m *Manager) Format() config.Format { return m.format }

// panelSize returns the width and height of one panel for a column count.
func (m *Manager) panelSize(cols int) (vg.Length, vg.Length) {
	paperW, _ := m.opts.PaperSize.Inches()
	usable := paperW - 2*margin
	w := usable / float64(cols)
	return vg.Length(w) * vg.Inch, vg.Length(w*panelAspect) * vg.Inch
}

// CreateFigure builds a rows×cols grid holding n panels filled row-major.
// Grid cells past n stay empty.
func (m *Manager) CreateFigure(rows, cols, n int) (*Figure, error) {
	if rows <= 0 || cols <= 0 || n <= 0 {
		return nil, figerr.Rendering("create figure",
			"rows, cols and panels must be positive (got %d, %d, %d)", rows, cols, n)
	}
	if n > rows*cols {
		return nil, figerr.Rendering("create figure",
			"%d panels cannot exceed %d×%d grid", n, rows, cols)
	}

	pw, ph := m.panelSize(cols)
	f := &Figure{
		manager:     m,
		rows:        rows,
		cols:        cols,
		panelWidth:  pw,
		panelHeight: ph,
	}
	for i := 0; i < n; i++ {
		p := plot.New()
		applyTheme(p, m.handler, m.background)
		f.panels = append(f.panels, &Panel{Plot: p, index: i + 1, latex: m.opts.UseLatex})
	}
	return f, nil
}
