package main

import (
	"fmt"
	"io"
	"math"

	"figmgr/internal/produce"
	"figmgr/internal/stats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func runSummary(cmd *cobra.Command, args []string) error {
	params, root, err := loadRun()
	if err != nil {
		return err
	}
	data, err := produce.LoadDataset(params, root, logger)
	if err != nil {
		return err
	}
	_, sums, err := produce.SchoolSummary(data)
	if err != nil {
		return err
	}
	if err := openLogFile(); err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), sums)
	return nil
}

func printSummary(out io.Writer, sums []stats.GroupSummary) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(out, "\n%s\n\n", cyan("=== Summary by school ==="))
	header := fmt.Sprintf("%-8s %5s  %-28s  %-28s", "School", "N", "Wage mean ± std [95% CI]", "Experience mean ± std [95% CI]")
	fmt.Fprintln(out, yellow(header))

	for _, s := range sums {
		wage, exper := s.Measures["wage"], s.Measures["exper"]
		key := s.Key
		if key == "" {
			key = gray("null")
		}
		fmt.Fprintf(out, "%-8s %5d  %-28s  %-28s\n", key, wage.N, formatSummary(wage), formatSummary(exper))
	}
	fmt.Fprintln(out)
}

func formatSummary(s stats.Summary) string {
	if math.IsNaN(s.Mean) {
		return "-"
	}
	if math.IsNaN(s.Std) {
		return fmt.Sprintf("%.3f", s.Mean)
	}
	low, high := s.Interval(stats.Z95)
	return fmt.Sprintf("%.3f ± %.3f [%.3f, %.3f]", s.Mean, s.Std, low, high)
}
