package figure

import (
	"image/color"
	"os"
	"path/filepath"

	"figmgr/internal/figerr"

	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgeps"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Save writes the composite figure to <dir>/<name><ext> and each panel to
// <dir>/<name>_subplot_<i><ext>. It returns the written paths in that order
// and stops at the first failure.
func (f *Figure) Save(name string) ([]string, error) {
	m := f.manager
	names := f.FileNames(name)
	paths := make([]string, 0, len(names))

	full := filepath.Join(m.opts.OutputDir, names[0])
	w, h := f.Size()
	if err := m.writeCanvas(full, w, h, f.drawComposite); err != nil {
		return paths, err
	}
	paths = append(paths, full)
	m.log.Info("Saved full figure", zap.String("path", full))

	pw, ph := f.PanelSize()
	for i, p := range f.panels {
		path := filepath.Join(m.opts.OutputDir, names[i+1])
		panel := p
		if err := m.writeCanvas(path, pw, ph, func(dc draw.Canvas) { drawPanel(panel, dc) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
		m.log.Info("Saved subplot", zap.String("path", path))
	}
	return paths, nil
}

// newCanvas builds a canvas for the manager's format.
func (m *Manager) newCanvas(w, h vg.Length) (vg.CanvasWriterTo, error) {
	switch m.format.Name {
	case "png", "jpg", "tiff":
		bg := m.background
		if bg == nil {
			bg = color.White
		}
		img := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(m.opts.DPI), vgimg.UseBackgroundColor(bg))
		switch m.format.Name {
		case "png":
			return vgimg.PngCanvas{Canvas: img}, nil
		case "jpg":
			return vgimg.JpegCanvas{Canvas: img}, nil
		default:
			return vgimg.TiffCanvas{Canvas: img}, nil
		}
	case "pdf":
		return vgpdf.New(w, h), nil
	case "svg":
		return vgsvg.New(w, h), nil
	case "eps":
		return vgeps.New(w, h), nil
	}
	return nil, figerr.Rendering("new canvas", "no canvas backend for format %q", m.format.Name)
}

// writeCanvas renders onto a fresh canvas and writes it to path. Drawing
// and encoding failures are RenderingErrors; filesystem failures are
// WriteErrors. A partially written file is removed.
func (m *Manager) writeCanvas(path string, w, h vg.Length, render func(draw.Canvas)) (err error) {
	c, err := m.newCanvas(w, h)
	if err != nil {
		return err
	}
	if err := drawSafely(c, render); err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return figerr.Write("save figure", "create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = figerr.Write("save figure", "close %s: %w", path, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if _, err := c.WriteTo(out); err != nil {
		return figerr.Write("save figure", "write %s: %w", path, err)
	}
	return nil
}

// drawSafely converts a panic inside the plotting backend into a
// RenderingError.
func drawSafely(c vg.CanvasSizer, render func(draw.Canvas)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = figerr.Rendering("draw", "plotting backend failed: %v", r)
		}
	}()
	render(draw.New(c))
	return nil
}
