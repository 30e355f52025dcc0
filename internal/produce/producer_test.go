package produce

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"figmgr/internal/config"
	"figmgr/internal/dataset"
	"figmgr/internal/figerr"
	"figmgr/internal/figure"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	schools    = []int{9, 10, 11, 12, 13, 14, 16}
	residences = []string{"north_east", "nothern_central", "rural_area", "south"}
)

// writeMales writes a deterministic wage dataset with n rows.
func writeMales(t *testing.T, path string, n int) {
	t.Helper()
	var b strings.Builder
	b.WriteString("nr,year,school,exper,maried,residence,wage\n")
	for i := 0; i < n; i++ {
		school := schools[i%len(schools)]
		exper := i % 9
		maried := "no"
		if i%3 == 0 {
			maried = "yes"
		}
		wage := 0.5 + 0.08*float64(school) + 0.04*float64(exper) + 0.013*float64(i%11)
		fmt.Fprintf(&b, "%d,%d,%d,%d,%s,%s,%.4f\n",
			i+1, 1980+i%8, school, exper, maried, residences[i%len(residences)], wage)
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
}

func setupProject(t *testing.T, ext string) (string, config.Params) {
	t.Helper()
	root := t.TempDir()
	params := config.DefaultParams()
	params.FigureManager.FileExt = ext
	params.FigureManager.DPI = 30
	writeMales(t, params.DataPath(root), 140)
	return root, params
}

func run(t *testing.T, root string, params config.Params, opts ...Option) (*Report, error) {
	t.Helper()
	p, err := New(params, root, opts...)
	require.NoError(t, err)
	return p.Produce()
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func imageSize(t *testing.T, path string) [2]int {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return [2]int{cfg.Width, cfg.Height}
}

func TestProduce_WritesEveryFigure(t *testing.T) {
	root, params := setupProject(t, ".png")

	report, err := run(t, root, params)
	require.NoError(t, err)

	want := []string{
		"three_small_plots.png",
		"three_small_plots_subplot_1.png",
		"three_small_plots_subplot_2.png",
		"three_small_plots_subplot_3.png",
		"two_std_dev_plots.png",
		"two_std_dev_plots_subplot_1.png",
		"two_std_dev_plots_subplot_2.png",
		"one_big_plot.png",
		"one_big_plot_subplot_1.png",
	}
	if diff := cmp.Diff(want, baseNames(report.Files())); diff != "" {
		t.Fatalf("written files mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(params.FiguresPath(root))
	require.NoError(t, err)
	assert.Len(t, entries, len(want))

	for _, fig := range report.Figures {
		assert.Len(t, fig.Files, fig.Panels+1, fig.Name)
		for _, path := range fig.Files {
			assert.FileExists(t, path)
		}
	}
	assert.Equal(t, FigureNames(), []string{"three_small_plots", "two_std_dev_plots", "one_big_plot"})
}

func TestProduce_WritesMetrics(t *testing.T) {
	root, params := setupProject(t, ".png")
	params.Plotter.Verbose = true

	report, err := run(t, root, params)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "metrics.json"), report.Metrics)

	data, err := os.ReadFile(report.Metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    \"verbose\": true,")

	var got Metrics
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, Metrics{
		Verbose:          true,
		ExternalDataPath: "data/external",
		FiguresDir:       "reports/figures",
		PaperSize:        "A4",
		FileExt:          ".png",
	}, got)
}

func TestProduce_RepeatRunsMatch(t *testing.T) {
	root, params := setupProject(t, ".png")

	first, err := run(t, root, params)
	require.NoError(t, err)
	sizes := make(map[string][2]int)
	for _, path := range first.Files() {
		sizes[path] = imageSize(t, path)
	}

	second, err := run(t, root, params)
	require.NoError(t, err)
	assert.Equal(t, first.Files(), second.Files())
	for i, fig := range second.Figures {
		assert.Equal(t, first.Figures[i].Panels, fig.Panels)
	}
	for _, path := range second.Files() {
		assert.Equal(t, sizes[path], imageSize(t, path), path)
	}
}

func TestProduce_ExtensionOnlyChangesNames(t *testing.T) {
	stems := func(ext string) []string {
		root, params := setupProject(t, ext)
		report, err := run(t, root, params)
		require.NoError(t, err)
		var out []string
		for _, name := range baseNames(report.Files()) {
			require.Equal(t, ext, filepath.Ext(name))
			out = append(out, strings.TrimSuffix(name, ext))
		}
		return out
	}

	if diff := cmp.Diff(stems(".jpg"), stems(".png")); diff != "" {
		t.Fatalf("file stems differ between formats (-jpg +png):\n%s", diff)
	}
}

func TestProduce_VectorFormats(t *testing.T) {
	for _, ext := range []string{".pdf", ".svg"} {
		t.Run(ext, func(t *testing.T) {
			root, params := setupProject(t, ext)
			report, err := run(t, root, params)
			require.NoError(t, err)
			assert.Len(t, report.Files(), 9)
		})
	}
}

func assertNoOutputs(t *testing.T, root string, params config.Params) {
	t.Helper()
	assert.NoDirExists(t, params.FiguresPath(root))
	assert.NoFileExists(t, params.MetricsPath(root))
}

func TestProduce_MissingData(t *testing.T) {
	root := t.TempDir()
	params := config.DefaultParams()

	report, err := run(t, root, params)
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, figerr.ErrDataLoad), "got %v", err)
	assert.Equal(t, 3, figerr.ExitCode(err))
	assertNoOutputs(t, root, params)
}

func TestProduce_MissingColumn(t *testing.T) {
	root := t.TempDir()
	params := config.DefaultParams()
	path := params.DataPath(root)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("school,exper,wage,maried\n12,3,1.5,yes\n"), 0644))

	_, err := run(t, root, params)
	require.Error(t, err)
	assert.True(t, errors.Is(err, figerr.ErrDataLoad))
	assert.Contains(t, err.Error(), "residence")
	assertNoOutputs(t, root, params)
}

func TestProduce_LatexWithoutToolchain(t *testing.T) {
	root, params := setupProject(t, ".pdf")
	params.FigureManager.UseLatex = true
	missing := figure.Toolchain{LookPath: func(string) (string, error) { return "", exec.ErrNotFound }}

	_, err := run(t, root, params, WithToolchain(missing))
	require.Error(t, err)
	assert.True(t, errors.Is(err, figerr.ErrRendering), "got %v", err)
	assertNoOutputs(t, root, params)
}

func TestProduce_LatexLabels(t *testing.T) {
	present := figure.Toolchain{LookPath: func(file string) (string, error) { return "/usr/bin/" + file, nil }}

	for _, ext := range []string{".png", ".pdf"} {
		t.Run(ext, func(t *testing.T) {
			root, params := setupProject(t, ext)
			params.FigureManager.UseLatex = true

			report, err := run(t, root, params, WithToolchain(present))
			require.NoError(t, err, "residence keys contain underscores")
			assert.Len(t, report.Files(), 9)
			for _, f := range report.Files() {
				info, err := os.Stat(f)
				require.NoError(t, err)
				assert.Positive(t, info.Size(), f)
			}
		})
	}
}

func TestProduce_ReadyRunsAfterChecks(t *testing.T) {
	root, params := setupProject(t, ".png")
	calls := 0
	ready := WithReady(func() error {
		calls++
		assert.NoDirExists(t, params.FiguresPath(root), "ready runs before any output")
		return nil
	})

	_, err := run(t, root, params, ready)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	require.NoError(t, os.Remove(params.DataPath(root)))
	_, err = run(t, root, params, ready)
	require.Error(t, err)
	assert.Equal(t, 1, calls, "not called when the dataset is missing")

	root, params = setupProject(t, ".png")
	_, err = run(t, root, params, WithReady(func() error {
		return figerr.Write("open log", "disk full")
	}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, figerr.ErrWrite))
	assertNoOutputs(t, root, params)
}

func TestProduce_InvalidParams(t *testing.T) {
	root, params := setupProject(t, ".png")
	params.FigureManager.PaperSize = "B5"

	_, err := run(t, root, params)
	require.Error(t, err)
	assert.True(t, errors.Is(err, figerr.ErrConfig))
	assertNoOutputs(t, root, params)
}

func TestProduce_VerboseLogsGroupCounts(t *testing.T) {
	root, params := setupProject(t, ".png")
	params.Plotter.Verbose = true
	core, logs := observer.New(zapcore.InfoLevel)

	_, err := run(t, root, params, WithLogger(zap.New(core)))
	require.NoError(t, err)

	groups := logs.FilterLoggerName("chart").FilterMessageSnippet("observations").All()
	// residence (4 series) on two panels, maried (2 series) on the histogram,
	// residence again on one_big_plot
	assert.Len(t, groups, 4+4+2+4)
	assert.NotEmpty(t, logs.FilterMessage("Figure written").All())

	done := logs.FilterMessage("Figures produced").All()
	require.Len(t, done, 1)
	assert.Equal(t, "png", done[0].ContextMap()["format"])
}

func TestSchoolSummary(t *testing.T) {
	d, err := dataset.Read(strings.NewReader("school,wage,exper\n12,1.0,2\n12,2.0,4\n16,3.0,6\n"), "three.csv")
	require.NoError(t, err)

	table, sums, err := SchoolSummary(d)
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, 2, table.Len())

	wantCols := []string{
		"school",
		"wage_mean", "wage_std", "wage_ci_low", "wage_ci_high",
		"exper_mean", "exper_std", "exper_ci_low", "exper_ci_high",
	}
	if diff := cmp.Diff(wantCols, table.Columns()); diff != "" {
		t.Fatalf("summary columns mismatch (-want +got):\n%s", diff)
	}

	wage := sums[0].Measures["wage"]
	assert.Equal(t, "12", sums[0].Key)
	assert.InDelta(t, 1.5, wage.Mean, 1e-9)
	assert.InDelta(t, 0.7071067811865476, wage.Std, 1e-9)

	low, err := table.Floats("wage_ci_low")
	require.NoError(t, err)
	assert.InDelta(t, 1.5-1.96*0.7071067811865476, low[0], 1e-9)
	assert.True(t, math.IsNaN(low[1]), "single observation has no interval")
}
