package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"figmgr/internal/figerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleParams = `data_etl:
  external_data_path: data/external
figure_manager:
  figures_dir: reports/figures
  paper_size: a4
  file_ext: png
  use_latex: false
plotter:
  verbose: true
`

func writeParams(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, PaperA4, p.FigureManager.PaperSize)
	assert.Equal(t, ".pdf", p.FigureManager.FileExt)
	assert.Equal(t, DefaultDataFile, p.DataETL.DataFile)
	assert.Equal(t, DefaultDPI, p.FigureManager.DPI)
	assert.NoError(t, p.Validate())
}

func TestLoad(t *testing.T) {
	p, err := Load(writeParams(t, sampleParams))
	require.NoError(t, err)

	assert.Equal(t, "data/external", p.DataETL.ExternalDataPath)
	assert.Equal(t, "Males.csv", p.DataETL.DataFile)
	assert.Equal(t, "reports/figures", p.FigureManager.FiguresDir)
	assert.Equal(t, PaperA4, p.FigureManager.PaperSize, "paper size is canonicalised")
	assert.Equal(t, ".png", p.FigureManager.FileExt, "extension gains a leading dot")
	assert.False(t, p.FigureManager.UseLatex)
	assert.True(t, p.Plotter.Verbose)
	assert.Equal(t, DefaultMetricsFile, p.MetricsFile)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") }},
		{"empty file", func(t *testing.T) string { return writeParams(t, "  \n") }},
		{"bad yaml", func(t *testing.T) string { return writeParams(t, "figure_manager: [unclosed") }},
		{"bad paper", func(t *testing.T) string {
			return writeParams(t, "data_etl: {external_data_path: d}\nfigure_manager: {figures_dir: f, paper_size: B5, file_ext: .png}\n")
		}},
		{"bad ext", func(t *testing.T) string {
			return writeParams(t, "data_etl: {external_data_path: d}\nfigure_manager: {figures_dir: f, paper_size: A4, file_ext: .bmp}\n")
		}},
		{"missing data path", func(t *testing.T) string {
			return writeParams(t, "data_etl: {external_data_path: \"\"}\n")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, figerr.ErrConfig), "got %v", err)
		})
	}
}

func TestParams_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "params.yaml")

	p := DefaultParams()
	p.FigureManager.PaperSize = PaperLetter
	p.FigureManager.FileExt = ".svg"
	p.Plotter.Verbose = true
	require.NoError(t, p.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
}

func TestParams_Paths(t *testing.T) {
	p := DefaultParams()
	root := filepath.FromSlash("/proj")

	assert.Equal(t, filepath.Join(root, "data", "external", "Males.csv"), p.DataPath(root))
	assert.Equal(t, filepath.Join(root, "reports", "figures"), p.FiguresPath(root))
	assert.Equal(t, filepath.Join(root, "metrics.json"), p.MetricsPath(root))

	abs := t.TempDir()
	p.FigureManager.FiguresDir = abs
	assert.Equal(t, abs, p.FiguresPath(root), "absolute paths are kept")
}

func TestPaperSize(t *testing.T) {
	size, ok := ParsePaperSize(" letter ")
	require.True(t, ok)
	assert.Equal(t, PaperLetter, size)

	w, h := PaperA4.Inches()
	assert.InDelta(t, 8.27, w, 1e-9)
	assert.InDelta(t, 11.69, h, 1e-9)

	w, _ = PaperSize("tabloid").Inches()
	assert.InDelta(t, 8.27, w, 1e-9, "unknown sizes fall back to A4 dimensions")

	_, ok = ParsePaperSize("tabloid")
	assert.False(t, ok)
}

func TestLookupFormat(t *testing.T) {
	f, ok := LookupFormat("JPEG")
	require.True(t, ok)
	assert.Equal(t, "jpg", f.Name)
	assert.True(t, f.Raster)
	assert.False(t, f.Transparent)

	f, ok = LookupFormat(".pdf")
	require.True(t, ok)
	assert.False(t, f.Raster)

	_, ok = LookupFormat(".gif")
	assert.False(t, ok)
	assert.Contains(t, SupportedExts(), ".png")
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0755))
	deep := filepath.Join(root, "src", "pkg")
	require.NoError(t, os.MkdirAll(deep, 0755))

	got, found, err := FindProjectRoot(deep)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, root, got)
}

func TestLoad_LoggingSection(t *testing.T) {
	body := sampleParams + `logging:
  level: warn
  format: JSON
  file: logs/run.log
  categories:
    chart: false
`
	p, err := Load(writeParams(t, body))
	require.NoError(t, err)

	assert.True(t, p.Logging.JSON())
	assert.False(t, p.Logging.IsCategoryEnabled("chart"))
	assert.True(t, p.Logging.IsCategoryEnabled("produce"))
	assert.Equal(t, filepath.Join("/proj", "logs", "run.log"), p.Logging.FilePath("/proj"))
	assert.Empty(t, DefaultParams().Logging.FilePath("/proj"))

	_, err = Load(writeParams(t, sampleParams+"logging:\n  level: loud\n"))
	assert.True(t, errors.Is(err, figerr.ErrConfig))

	_, err = Load(writeParams(t, sampleParams+"logging:\n  format: xml\n"))
	assert.True(t, errors.Is(err, figerr.ErrConfig))
}
