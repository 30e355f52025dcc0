package figure

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// paletteHex is the 12-colour series cycle.
var paletteHex = []string{
	"#EF476F", "#1082A8", "#FFD166", "#06EFB1",
	"#08485E", "#FF6F61", "#1B998B", "#C6C013",
	"#5A189A", "#A7C957", "#D4A5A5", "#3D348B",
}

var palette = mustPalette(paletteHex)

// dashCycle mirrors the solid, dashed, dash-dot and dotted line styles.
var dashCycle = [][]vg.Length{
	nil,
	{vg.Points(4), vg.Points(2)},
	{vg.Points(4), vg.Points(1.5), vg.Points(1), vg.Points(1.5)},
	{vg.Points(1), vg.Points(1.5)},
}

var glyphCycle = []draw.GlyphDrawer{
	draw.CircleGlyph{},
	draw.BoxGlyph{},
	draw.PyramidGlyph{},
	draw.TriangleGlyph{},
	draw.RingGlyph{},
	draw.CrossGlyph{},
}

var axisColor = color.Gray{Y: 38}

func mustPalette(hex []string) []color.Color {
	out := make([]color.Color, len(hex))
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("figure: bad palette colour %q: %v", h, err))
		}
		out[i] = c
	}
	return out
}

// Style is one entry of the per-panel series cycle.
type Style struct {
	Color  color.Color
	Dashes []vg.Length
	Shape  draw.GlyphDrawer
}

// styleAt returns the i-th style; colour, dash and glyph cycles advance together.
func styleAt(i int) Style {
	return Style{
		Color:  palette[i%len(palette)],
		Dashes: dashCycle[i%len(dashCycle)],
		Shape:  glyphCycle[i%len(glyphCycle)],
	}
}

// Line returns the line style for a series.
func (s Style) Line() draw.LineStyle {
	return draw.LineStyle{Color: s.Color, Width: vg.Points(1), Dashes: s.Dashes}
}

// Glyph returns the marker style for a series.
func (s Style) Glyph() draw.GlyphStyle {
	return draw.GlyphStyle{Color: s.Color, Radius: vg.Points(2.5), Shape: s.Shape}
}

// Fill returns the series colour at the given opacity.
func (s Style) Fill(alpha float64) color.Color {
	c := color.NRGBAModel.Convert(s.Color).(color.NRGBA)
	switch {
	case alpha < 0:
		alpha = 0
	case alpha > 1:
		alpha = 1
	}
	c.A = uint8(alpha*255 + 0.5)
	return c
}

// applyTheme sets fonts, axis weights, the legend position and a dotted
// horizontal grid on a fresh plot.
func applyTheme(p *plot.Plot, handler text.Handler, background color.Color) {
	p.BackgroundColor = background

	styles := []*text.Style{
		&p.Title.TextStyle,
		&p.X.Label.TextStyle, &p.Y.Label.TextStyle,
		&p.X.Tick.Label, &p.Y.Tick.Label,
		&p.Legend.TextStyle,
	}
	for _, s := range styles {
		s.Font.Typeface = "Liberation"
		s.Font.Variant = "Serif"
		s.Font.Size = vg.Points(10)
		s.Handler = handler
	}
	p.X.Tick.Label.Font.Size = vg.Points(8)
	p.Y.Tick.Label.Font.Size = vg.Points(8)
	p.Legend.TextStyle.Font.Size = vg.Points(9)

	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.LineStyle.Color = axisColor
		ax.LineStyle.Width = vg.Points(0.8)
		ax.Tick.LineStyle.Color = axisColor
		ax.Tick.LineStyle.Width = vg.Points(0.8)
		ax.Tick.Length = vg.Points(4)
	}

	p.Legend.Top = true

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Width = vg.Points(0.5)
	grid.Horizontal.Dashes = []vg.Length{vg.Points(1), vg.Points(1.5)}
	p.Add(grid)
}
