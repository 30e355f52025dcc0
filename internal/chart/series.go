package chart

import (
	"errors"

	"figmgr/internal/figerr"
	"figmgr/internal/figure"
	"figmgr/internal/stats"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// series draws one group and collects its legend thumbnails.
type series struct {
	label  string
	style  figure.Style
	thumbs []plot.Thumbnailer
}

// errPoints pairs points with symmetric y errors for plotter.NewYErrorBars.
type errPoints struct {
	plotter.XYs
	plotter.YErrors
}

func (s *series) draw(p *figure.Panel, cols columnSet, rows []int, spec Spec) error {
	switch spec.Kind {
	case Hist:
		return s.hist(p, cols.x, rows, spec)
	case Scatter:
		return s.scatter(p, cols, rows, spec)
	}
	return s.line(p, cols, rows, spec)
}

func (s *series) hist(p *figure.Panel, xs []float64, rows []int, spec Spec) error {
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = xs[r]
	}
	counts, edges, err := stats.Histogram(values, spec.Bins)
	if errors.Is(err, stats.ErrNoValues) {
		return nil
	}
	if err != nil {
		return figerr.Rendering("chart", "histogram of %s: %w", spec.X, err)
	}

	bins := make([]plotter.HistogramBin, len(counts))
	for i, n := range counts {
		bins[i] = plotter.HistogramBin{Min: edges[i], Max: edges[i+1], Weight: n}
	}
	h := &plotter.Histogram{
		Bins:      bins,
		Width:     edges[1] - edges[0],
		FillColor: s.style.Fill(spec.histAlpha()),
		LineStyle: draw.LineStyle{Color: s.style.Color, Width: vg.Points(0.5)},
	}
	p.Plot.Add(h)
	s.thumbs = append(s.thumbs, h)
	return nil
}

func (s *series) scatter(p *figure.Panel, cols columnSet, rows []int, spec Spec) error {
	pts := points(cols.x, cols.y, rows)
	if len(pts) == 0 {
		return nil
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return figerr.Rendering("chart", "scatter of %s by %s: %w", spec.Y, spec.X, err)
	}
	sc.GlyphStyle = s.style.Glyph()
	p.Plot.Add(sc)
	s.thumbs = append(s.thumbs, sc)
	return s.decorate(p, cols, rows, spec)
}

func (s *series) line(p *figure.Panel, cols columnSet, rows []int, spec Spec) error {
	pts := points(cols.x, cols.y, rows)
	if len(pts) == 0 {
		return nil
	}
	if err := s.decorate(p, cols, rows, spec); err != nil {
		return err
	}

	l, sc, err := plotter.NewLinePoints(pts)
	if err != nil {
		return figerr.Rendering("chart", "plot of %s by %s: %w", spec.Y, spec.X, err)
	}
	l.LineStyle = s.style.Line()
	sc.GlyphStyle = s.style.Glyph()
	p.Plot.Add(l, sc)
	s.thumbs = append(s.thumbs, l, sc)
	return nil
}

// decorate adds error bars or a band behind the series.
func (s *series) decorate(p *figure.Panel, cols columnSet, rows []int, spec Spec) error {
	switch {
	case spec.YErr != "":
		return s.errorBars(p, cols, rows, spec)
	case spec.Band != nil:
		return s.band(p, cols, rows, spec)
	}
	return nil
}

func (s *series) errorBars(p *figure.Panel, cols columnSet, rows []int, spec Spec) error {
	var ep errPoints
	for _, r := range rows {
		x, y, e := cols.x[r], cols.y[r], cols.yerr[r]
		if !keep(x, y, e) {
			continue
		}
		ep.XYs = append(ep.XYs, plotter.XY{X: x, Y: y})
		ep.YErrors = append(ep.YErrors, struct{ Low, High float64 }{Low: e, High: e})
	}
	if len(ep.XYs) == 0 {
		return nil
	}
	bars, err := plotter.NewYErrorBars(ep)
	if err != nil {
		return figerr.Rendering("chart", "error bars of %s: %w", spec.YErr, err)
	}
	bars.LineStyle = draw.LineStyle{Color: s.style.Color, Width: vg.Points(1)}
	bars.CapWidth = vg.Points(6)
	p.Plot.Add(bars)
	return nil
}

// band shades [low, high] along x. Runs of finite points form separate
// polygons so gaps stay unshaded.
func (s *series) band(p *figure.Panel, cols columnSet, rows []int, spec Spec) error {
	var rings []plotter.XYer
	var lower, upper plotter.XYs
	flush := func() {
		if len(lower) >= 2 {
			ring := append(plotter.XYs(nil), lower...)
			for i := len(upper) - 1; i >= 0; i-- {
				ring = append(ring, upper[i])
			}
			rings = append(rings, ring)
		}
		lower, upper = nil, nil
	}
	for _, r := range rows {
		x, lo, hi := cols.x[r], cols.low[r], cols.high[r]
		if !keep(x, lo, hi) {
			flush()
			continue
		}
		lower = append(lower, plotter.XY{X: x, Y: lo})
		upper = append(upper, plotter.XY{X: x, Y: hi})
	}
	flush()
	if len(rings) == 0 {
		return nil
	}

	poly, err := plotter.NewPolygon(rings...)
	if err != nil {
		return figerr.Rendering("chart", "band %s..%s: %w", spec.Band.Low, spec.Band.High, err)
	}
	poly.Color = s.style.Fill(spec.bandAlpha())
	poly.LineStyle = draw.LineStyle{}
	p.Plot.Add(poly)
	return nil
}

// points collects the finite (x, y) pairs of rows.
func points(xs, ys []float64, rows []int) plotter.XYs {
	pts := make(plotter.XYs, 0, len(rows))
	for _, r := range rows {
		if keep(xs[r], ys[r]) {
			pts = append(pts, plotter.XY{X: xs[r], Y: ys[r]})
		}
	}
	return pts
}
