package chart

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"figmgr/internal/dataset"
	"figmgr/internal/figerr"
	"figmgr/internal/figure"
	"figmgr/internal/logging"
	"figmgr/internal/stats"

	"go.uber.org/zap"
)

// Generate draws data onto p as described by spec.
//
// Rows are split into one series per GroupBy key (a single series named
// spec.Label when ungrouped). With spec.Agg set, Y is reduced over X and
// the group columns first. A legend is added when the series are grouped
// or labelled.
func Generate(p *figure.Panel, data *dataset.Dataset, spec Spec, log *zap.Logger) error {
	log = logging.For(log, logging.CategoryChart)
	spec = spec.withDefaults()
	if err := spec.validate(data); err != nil {
		return err
	}

	raw, err := stats.GroupBy(data, spec.GroupBy, spec.SortOrder)
	if err != nil {
		return figerr.Rendering("chart", "group %v: %w", spec.GroupBy, err)
	}
	observed := make(map[string]stats.Group, len(raw))
	for _, g := range raw {
		observed[g.Label()] = g
	}

	table := data
	if spec.Agg != nil && spec.Kind != Hist {
		table, err = stats.Aggregate(data, spec.X, spec.Y, spec.GroupBy, spec.Agg)
		if err != nil {
			return figerr.Rendering("chart", "aggregate %s by %s: %w", spec.Y, spec.X, err)
		}
	}
	groups, err := stats.GroupBy(table, spec.GroupBy, spec.SortOrder)
	if err != nil {
		return figerr.Rendering("chart", "group %v: %w", spec.GroupBy, err)
	}

	cols, err := readColumns(table, spec)
	if err != nil {
		return err
	}

	legend := len(spec.GroupBy) > 0 || spec.Label != ""
	for _, g := range groups {
		label, text := g.Label(), p.Literal(g.Label())
		if len(spec.GroupBy) == 0 {
			label, text = spec.Label, spec.Label
		}
		s := series{label: label, style: p.NextStyle()}
		if err := s.draw(p, cols, g.Rows, spec); err != nil {
			return err
		}
		if legend && len(s.thumbs) > 0 {
			p.Plot.Legend.Add(text, s.thumbs...)
		}
		if spec.Verbose {
			if pre, ok := observed[g.Label()]; ok {
				reportCounts(log, data, spec, label, pre)
			}
		}
	}

	setupAxes(p, spec)
	return nil
}

// columnSet holds the numeric columns of the drawn table.
type columnSet struct {
	x, y, yerr, low, high []float64
}

func readColumns(d *dataset.Dataset, spec Spec) (columnSet, error) {
	var (
		cs  columnSet
		err error
	)
	read := func(name string, dst *[]float64) {
		if err != nil || name == "" {
			return
		}
		*dst, err = d.Floats(name)
	}
	read(spec.X, &cs.x)
	if spec.Kind != Hist {
		read(spec.Y, &cs.y)
	}
	read(spec.YErr, &cs.yerr)
	if spec.Band != nil {
		read(spec.Band.Low, &cs.low)
		read(spec.Band.High, &cs.high)
	}
	if err != nil {
		return columnSet{}, figerr.DataLoad("chart", "%w", err)
	}
	return cs, nil
}

// reportCounts logs how many observations back a series and where the
// data is thinnest. Thin spots of five or fewer are warnings.
func reportCounts(log *zap.Logger, d *dataset.Dataset, spec Spec, label string, g stats.Group) {
	xs, err := d.Floats(spec.X)
	if err != nil {
		return
	}
	values := make([]float64, len(g.Rows))
	for i, r := range g.Rows {
		values[i] = xs[r]
	}

	var info stats.CountInfo
	if spec.Kind == Hist {
		info, err = stats.MinBinCount(values, spec.Bins)
	} else {
		info, err = stats.MinValueCount(values)
	}
	if err != nil {
		log.Debug("No finite values to count", zap.String("group", label), zap.String("x", spec.X))
		return
	}

	msg := fmt.Sprintf("Group (%s) uses %d observations with fewest (%d) at '%s'=%s",
		label, len(g.Rows), info.Min, spec.X, formatPositions(info.At))
	fields := []zap.Field{
		zap.String("group", label),
		zap.Int("observations", len(g.Rows)),
		zap.Int("fewest", info.Min),
	}
	if info.Min <= 5 {
		log.Warn(msg, fields...)
		return
	}
	log.Info(msg, fields...)
}

func formatPositions(at []float64) string {
	parts := make([]string, len(at))
	for i, v := range at {
		parts[i] = fmt.Sprint(v)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func setupAxes(p *figure.Panel, spec Spec) {
	pl := p.Plot
	xlabel := capitalize(spec.XLabel)
	if xlabel == "" {
		xlabel = p.Literal(capitalize(spec.X))
	}
	pl.X.Label.Text = xlabel

	title := spec.Title
	x, y := p.Literal(spec.X), p.Literal(spec.Y)
	if spec.Y != "" && spec.Kind != Hist {
		ylabel := capitalize(spec.YLabel)
		if ylabel == "" {
			ylabel = p.Literal(capitalize(spec.Y))
		}
		pl.Y.Label.Text = ylabel
		if title == "" {
			title = fmt.Sprintf("%s of %s by %s", capitalize(string(spec.Kind)), y, x)
		}
	} else {
		if spec.YLabel != "" {
			pl.Y.Label.Text = capitalize(spec.YLabel)
		}
		if title == "" {
			title = fmt.Sprintf("%s of %s", capitalize(string(spec.Kind)), x)
		}
	}
	pl.Title.Text = title

	if r := spec.XLim; r != nil {
		pl.X.Min, pl.X.Max = r.Min, r.Max
	}
	if r := spec.YLim; r != nil {
		pl.Y.Min, pl.Y.Max = r.Min, r.Max
	}
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[n:])
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// keep reports whether a series point can be drawn.
func keep(vs ...float64) bool {
	for _, v := range vs {
		if !isFinite(v) {
			return false
		}
	}
	return true
}
