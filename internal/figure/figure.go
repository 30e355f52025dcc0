package figure

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Panel is one plotted region of a figure.
type Panel struct {
	Plot *plot.Plot

	index  int
	series int
	latex  bool
}

// Index returns the 1-based creation index of the panel.
func (p *Panel) Index() int { return p.index }

// NextStyle returns the next style of the panel's series cycle.
func (p *Panel) NextStyle() Style {
	s := styleAt(p.series)
	p.series++
	return s
}

// Literal returns s in a form the panel's text handler draws verbatim.
// Use it for text taken from the data, such as group keys and column names.
func (p *Panel) Literal(s string) string {
	if !p.latex {
		return s
	}
	return escapeLatex(s)
}

// Figure is a grid of panels sized for the manager's paper.
type Figure struct {
	manager *Manager
	rows    int
	cols    int
	panels  []*Panel

	panelWidth  vg.Length
	panelHeight vg.Length
}

// Panels returns the active panels in creation order.
func (f *Figure) Panels() []*Panel { return f.panels }

// Panel returns the i-th active panel, 0-based.
func (f *Figure) Panel(i int) *Panel { return f.panels[i] }

// Size returns the composite figure size.
func (f *Figure) Size() (w, h vg.Length) {
	return f.panelWidth * vg.Length(f.cols), f.panelHeight * vg.Length(f.rows)
}

// PanelSize returns the size used when a panel is saved on its own.
func (f *Figure) PanelSize() (w, h vg.Length) {
	return f.panelWidth, f.panelHeight
}

// FileNames returns the files Save writes for name: the composite first,
// then one per panel numbered from 1 in creation order.
func (f *Figure) FileNames(name string) []string {
	ext := f.manager.opts.FileExt
	names := []string{name + ext}
	for _, p := range f.panels {
		names = append(names, fmt.Sprintf("%s_subplot_%d%s", name, p.index, ext))
	}
	return names
}

// drawComposite aligns all panels on one canvas. Unused cells stay blank.
func (f *Figure) drawComposite(dc draw.Canvas) {
	grid := make([][]*plot.Plot, f.rows)
	for r := range grid {
		grid[r] = make([]*plot.Plot, f.cols)
	}
	for i, p := range f.panels {
		grid[i/f.cols][i%f.cols] = p.Plot
	}

	tiles := draw.Tiles{
		Rows:      f.rows,
		Cols:      f.cols,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(grid, tiles, dc)
	for r := range grid {
		for c, p := range grid[r] {
			if p != nil {
				p.Draw(canvases[r][c])
			}
		}
	}
}

// drawPanel draws one panel on its own canvas with a small padding.
func drawPanel(p *Panel, dc draw.Canvas) {
	pad := vg.Millimeter * 2
	p.Plot.Draw(draw.Crop(dc, pad, -pad, pad, -pad))
}
