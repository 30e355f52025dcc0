package config

import (
	"errors"
	"testing"

	"figmgr/internal/figerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("FIGMGR_FILE_EXT overrides file extension", func(t *testing.T) {
		t.Setenv("FIGMGR_FILE_EXT", "jpg")

		p, err := Load(writeParams(t, sampleParams))
		require.NoError(t, err)
		assert.Equal(t, ".jpg", p.FigureManager.FileExt)
	})

	t.Run("FIGMGR_FIGURES_DIR overrides output directory", func(t *testing.T) {
		t.Setenv("FIGMGR_FIGURES_DIR", "out")

		p := DefaultParams()
		require.NoError(t, p.applyEnvOverrides())
		assert.Equal(t, "out", p.FigureManager.FiguresDir)
	})

	t.Run("FIGMGR_PAPER_SIZE is normalised", func(t *testing.T) {
		t.Setenv("FIGMGR_PAPER_SIZE", "legal")

		p, err := Load(writeParams(t, sampleParams))
		require.NoError(t, err)
		assert.Equal(t, PaperLegal, p.FigureManager.PaperSize)
	})

	t.Run("FIGMGR_USE_LATEX parses booleans", func(t *testing.T) {
		t.Setenv("FIGMGR_USE_LATEX", "true")

		p := DefaultParams()
		require.NoError(t, p.applyEnvOverrides())
		assert.True(t, p.FigureManager.UseLatex)
	})

	t.Run("FIGMGR_USE_LATEX rejects garbage", func(t *testing.T) {
		t.Setenv("FIGMGR_USE_LATEX", "maybe")

		p := DefaultParams()
		err := p.applyEnvOverrides()
		require.Error(t, err)
		assert.True(t, errors.Is(err, figerr.ErrConfig))
	})
}
