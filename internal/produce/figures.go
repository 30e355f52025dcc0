package produce

import (
	"figmgr/internal/chart"
	"figmgr/internal/dataset"
	"figmgr/internal/figure"
	"figmgr/internal/stats"

	"go.uber.org/zap"
)

// Column names of the wage dataset.
const (
	colSchool    = "school"
	colExper     = "exper"
	colWage      = "wage"
	colMaried    = "maried"
	colResidence = "residence"
)

var requiredColumns = []string{colSchool, colExper, colWage, colMaried, colResidence}

// figureDef is one output figure: its grid and how its panels are drawn.
type figureDef struct {
	name   string
	rows   int
	cols   int
	panels int
	draw   func(f *figure.Figure, data *dataset.Dataset, verbose bool, log *zap.Logger) error
}

// figures are rendered in this order.
var figures = []figureDef{
	{name: "three_small_plots", rows: 2, cols: 2, panels: 3, draw: drawThreeSmallPlots},
	{name: "two_std_dev_plots", rows: 1, cols: 2, panels: 2, draw: drawTwoStdDevPlots},
	{name: "one_big_plot", rows: 1, cols: 1, panels: 1, draw: drawOneBigPlot},
}

// FigureNames lists the figures a run writes.
func FigureNames() []string {
	names := make([]string, len(figures))
	for i, def := range figures {
		names[i] = def.name
	}
	return names
}

func drawThreeSmallPlots(f *figure.Figure, data *dataset.Dataset, verbose bool, log *zap.Logger) error {
	specs := []chart.Spec{
		{
			Kind:    chart.Line,
			X:       colSchool,
			Y:       colWage,
			GroupBy: []string{colResidence},
			Agg:     stats.Mean,
			XLabel:  "School",
			YLabel:  "Wage",
			Title:   "Average Wage by School and Residence",
			Verbose: verbose,
		},
		{
			Kind:    chart.Line,
			X:       colExper,
			Y:       colWage,
			GroupBy: []string{colResidence},
			Agg:     stats.Mean,
			XLabel:  "Experience",
			YLabel:  "Wage",
			Title:   "Average Wage by Experience and Residence",
			Verbose: verbose,
		},
		{
			Kind:    chart.Hist,
			X:       colWage,
			Bins:    30,
			Alpha:   0.5,
			GroupBy: []string{colMaried},
			Verbose: verbose,
		},
	}
	for i, spec := range specs {
		if err := chart.Generate(f.Panel(i), data, spec, log); err != nil {
			return err
		}
	}
	return nil
}

func drawTwoStdDevPlots(f *figure.Figure, data *dataset.Dataset, _ bool, log *zap.Logger) error {
	table, _, err := SchoolSummary(data)
	if err != nil {
		return err
	}

	measures := []struct {
		name, label, title string
	}{
		{colWage, "Wage", "Average Wage by School and Residence"},
		{colExper, "Experience", "Average Experience by School and Residence"},
	}

	for _, m := range measures {
		err := chart.Generate(f.Panel(0), table, chart.Spec{
			X:      colSchool,
			Y:      m.name + "_mean",
			YErr:   m.name + "_std",
			Label:  m.label,
			XLabel: "School years",
			YLabel: m.label,
			Title:  m.title,
		}, log)
		if err != nil {
			return err
		}
	}
	for _, m := range measures {
		err := chart.Generate(f.Panel(1), table, chart.Spec{
			X:      colSchool,
			Y:      m.name + "_mean",
			Band:   &chart.Band{Low: m.name + "_ci_low", High: m.name + "_ci_high"},
			Label:  m.label,
			XLabel: "School years",
			YLabel: m.label,
			Title:  m.title,
		}, log)
		if err != nil {
			return err
		}
	}
	return nil
}

func drawOneBigPlot(f *figure.Figure, data *dataset.Dataset, verbose bool, log *zap.Logger) error {
	return chart.Generate(f.Panel(0), data, chart.Spec{
		Kind:    chart.Line,
		X:       colSchool,
		Y:       colWage,
		GroupBy: []string{colResidence},
		Agg:     stats.Mean,
		XLabel:  "School",
		YLabel:  "Wage",
		Verbose: verbose,
	}, log)
}

// SchoolSummary returns the per-school mean, sample standard deviation and
// 95% interval of wage and experience, as a table sorted by school and as
// the underlying summaries.
func SchoolSummary(data *dataset.Dataset) (*dataset.Dataset, []stats.GroupSummary, error) {
	measures := []string{colWage, colExper}
	sums, err := stats.Summarize(data, colSchool, measures...)
	if err != nil {
		return nil, nil, err
	}
	table, err := stats.SummaryTable(colSchool, measures, sums, stats.Z95)
	if err != nil {
		return nil, nil, err
	}
	return table, sums, nil
}
