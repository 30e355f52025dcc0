package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"figmgr/internal/config"
	"figmgr/internal/figerr"
	"figmgr/internal/logging"
	"figmgr/internal/produce"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	paramsPath string
	rootDir    string
	verbose    bool

	// Logger
	logger  *zap.Logger
	logFile *logging.DeferredFile
)

// rootCmd renders every figure
var rootCmd = &cobra.Command{
	Use:   "figmgr",
	Short: "Render the project figures from a parameters file",
	Long: `figmgr loads the dataset named in the parameters file, computes the
grouped summaries and writes every figure, plus one file per panel, to the
configured figures directory. The effective parameters are written to
metrics.json for CI.

Relative paths in the parameters file resolve against the project root: the
nearest ancestor directory containing .git, or the working directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(logging.Options{Verbose: verbose})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		if logFile != nil {
			_ = logFile.Close()
		}
	},
	RunE: runProduce,
}

// summaryCmd prints the per-school statistics behind two_std_dev_plots
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print per-school wage and experience statistics",
	Long: `Prints, for every school level, the observation count, mean, sample
standard deviation and 95% interval of wage and experience.`,
	RunE: runSummary,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&paramsPath, "params", "p", "", "Parameters file (YAML, required)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Project root (default: nearest ancestor containing .git)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	_ = rootCmd.MarkPersistentFlagRequired("params")
	rootCmd.Long += "\n\nFigures: " + strings.Join(produce.FigureNames(), ", ")

	rootCmd.AddCommand(summaryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(figerr.ExitCode(err))
	}
}

// projectRoot returns --root, or the nearest .git ancestor of the working
// directory, or the working directory itself.
func projectRoot() (string, error) {
	if rootDir != "" {
		abs, err := filepath.Abs(rootDir)
		if err != nil {
			return "", figerr.Config("project root", "resolve %s: %w", rootDir, err)
		}
		return abs, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	root, found, err := config.FindProjectRoot(wd)
	if err != nil {
		return "", err
	}
	if !found {
		logger.Debug("No .git ancestor, using working directory", zap.String("dir", wd))
		return wd, nil
	}
	return root, nil
}

func loadRun() (config.Params, string, error) {
	params, err := config.Load(paramsPath)
	if err != nil {
		return config.Params{}, "", err
	}
	root, err := projectRoot()
	if err != nil {
		return config.Params{}, "", err
	}
	if err := configureLogger(params, root); err != nil {
		return config.Params{}, "", err
	}
	logger.Debug("Parameters loaded", zap.String("params", paramsPath), zap.String("root", root))
	return params, root, nil
}

// configureLogger replaces the bootstrap logger with one following the
// logging section of the parameters file. -v still forces debug level.
// The log file is held back until openLogFile, so failed checks leave none.
func configureLogger(params config.Params, root string) error {
	opts := logging.Options{
		Verbose: verbose,
		Level:   params.Logging.Level,
		JSON:    params.Logging.JSON(),
		Enabled: params.Logging.IsCategoryEnabled,
	}
	var file *logging.DeferredFile
	if path := params.Logging.FilePath(root); path != "" {
		file = logging.NewDeferredFile(path)
		opts.Sinks = []zapcore.WriteSyncer{file}
	}
	l, err := logging.New(opts)
	if err != nil {
		return figerr.Config("configure logging", "%w", err)
	}
	if logger != nil {
		_ = logger.Sync()
	}
	if logFile != nil {
		_ = logFile.Close()
	}
	logger, logFile = l, file
	return nil
}

// openLogFile creates the configured log file once the run is known to
// produce output.
func openLogFile() error {
	if logFile == nil {
		return nil
	}
	if err := logFile.Open(); err != nil {
		return figerr.Write("configure logging", "%s: %w", logFile.Path(), err)
	}
	return nil
}

func runProduce(cmd *cobra.Command, args []string) error {
	params, root, err := loadRun()
	if err != nil {
		return err
	}
	p, err := produce.New(params, root,
		produce.WithLogger(logger),
		produce.WithReady(openLogFile))
	if err != nil {
		return err
	}
	report, err := p.Produce()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(out, "%s Wrote %d figures to %s\n", green("✓"), len(report.Figures), relTo(root, params.FiguresPath(root)))
	for _, fig := range report.Figures {
		fmt.Fprintf(out, "  %s %s\n", cyan(fig.Name), gray(fmt.Sprintf("(%d panels, %d files)", fig.Panels, len(fig.Files))))
		for _, f := range fig.Files {
			fmt.Fprintf(out, "    %s\n", filepath.Base(f))
		}
	}
	fmt.Fprintf(out, "%s Metrics written to %s %s\n", green("✓"), relTo(root, report.Metrics),
		gray(fmt.Sprintf("(%s)", report.Duration.Round(time.Millisecond))))
	return nil
}

func relTo(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
