// Package chart draws one panel of a figure from a table: grouped lines,
// scatters and histograms, with optional error bars or confidence bands.
package chart

import (
	"figmgr/internal/dataset"
	"figmgr/internal/figerr"
	"figmgr/internal/stats"
)

// Kind selects how a series is drawn.
type Kind string

const (
	Line    Kind = "plot"
	Scatter Kind = "scatter"
	Hist    Kind = "hist"
)

// DefaultBins is the histogram bin count when Spec.Bins is zero.
const DefaultBins = 10

// bandAlpha is the band opacity when Spec.Alpha is zero.
const bandAlpha = 0.3

// Band names the lower and upper bound columns of a confidence band.
type Band struct {
	Low  string
	High string
}

// Range is a fixed axis range.
type Range struct {
	Min float64
	Max float64
}

// Spec describes one panel.
type Spec struct {
	Kind Kind
	X    string
	Y    string

	// GroupBy splits the table into one series per distinct key tuple.
	// SortOrder lists keys to draw first; see stats.GroupBy.
	GroupBy   []string
	SortOrder [][]string

	// Agg reduces Y over X and GroupBy before drawing. Ignored for Hist.
	Agg stats.AggFunc

	Bins  int
	Label string

	// YErr is a symmetric error column drawn as error bars. Band draws a
	// shaded region between two columns. At most one may be set.
	YErr string
	Band *Band

	// Alpha is the fill opacity of histogram bars and bands. Zero means
	// opaque bars and 0.3 for bands.
	Alpha float64

	XLabel string
	YLabel string
	Title  string
	XLim   *Range
	YLim   *Range

	Verbose bool
}

func (s Spec) withDefaults() Spec {
	if s.Kind == "" {
		s.Kind = Line
	}
	if s.Bins <= 0 {
		s.Bins = DefaultBins
	}
	return s
}

func (s Spec) histAlpha() float64 {
	if s.Alpha <= 0 {
		return 1
	}
	return s.Alpha
}

func (s Spec) bandAlpha() float64 {
	if s.Alpha <= 0 {
		return bandAlpha
	}
	return s.Alpha
}

// columns lists every column the chart reads.
func (s Spec) columns() []string {
	cols := []string{s.X}
	if s.Y != "" && s.Kind != Hist {
		cols = append(cols, s.Y)
	}
	cols = append(cols, s.GroupBy...)
	if s.YErr != "" {
		cols = append(cols, s.YErr)
	}
	if s.Band != nil {
		cols = append(cols, s.Band.Low, s.Band.High)
	}
	return cols
}

// validate rejects inconsistent specs with a RenderingError and missing
// columns with a DataLoadError.
func (s Spec) validate(d *dataset.Dataset) error {
	const op = "chart"
	switch s.Kind {
	case Line, Scatter, Hist:
	default:
		return figerr.Rendering(op, "unknown plot kind %q", s.Kind)
	}
	if s.X == "" {
		return figerr.Rendering(op, "x column is required")
	}
	if s.Kind != Hist && s.Y == "" {
		return figerr.Rendering(op, "%s plot of %s needs a y column", s.Kind, s.X)
	}
	if s.YErr != "" && s.Band != nil {
		return figerr.Rendering(op, "error bars and a band cannot be combined")
	}
	if s.Kind == Hist && (s.YErr != "" || s.Band != nil) {
		return figerr.Rendering(op, "histograms take no error columns")
	}
	if s.Band != nil && (s.Band.Low == "" || s.Band.High == "") {
		return figerr.Rendering(op, "band needs both bound columns")
	}
	if s.Agg != nil && s.Kind != Hist && (s.YErr != "" || s.Band != nil) {
		return figerr.Rendering(op, "aggregated series cannot carry error columns")
	}
	for _, key := range s.SortOrder {
		if len(key) != len(s.GroupBy) {
			return figerr.Rendering(op, "sort order key %v does not match group columns %v", key, s.GroupBy)
		}
	}

	if err := d.Require(s.columns()...); err != nil {
		return err
	}
	numeric := []string{s.X}
	if s.Kind != Hist {
		numeric = append(numeric, s.Y)
	}
	if s.YErr != "" {
		numeric = append(numeric, s.YErr)
	}
	if s.Band != nil {
		numeric = append(numeric, s.Band.Low, s.Band.High)
	}
	for _, name := range numeric {
		col, err := d.Column(name)
		if err != nil {
			return figerr.DataLoad(op, "%w", err)
		}
		if !col.Numeric() {
			return figerr.DataLoad(op, "column %q is not numeric", name)
		}
	}
	return nil
}
