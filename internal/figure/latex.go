package figure

import (
	"os/exec"
	"strings"
	"unicode"

	"figmgr/internal/config"
	"figmgr/internal/figerr"
)

// LookPathFunc resolves an executable name on PATH.
type LookPathFunc func(file string) (string, error)

// Toolchain checks that the external LaTeX programs needed to typeset
// labels for a given output format are installed. Labels are typeset by
// the in-process text.Latex handler; these programs are never run, the
// check only keeps use_latex tied to a working TeX installation.
type Toolchain struct {
	LookPath LookPathFunc
}

// SystemToolchain probes the real PATH.
func SystemToolchain() Toolchain {
	return Toolchain{LookPath: exec.LookPath}
}

// Required lists the programs needed for a format: latex always, dvipng for
// raster output, ghostscript for EPS.
func (tc Toolchain) Required(format config.Format) []string {
	progs := []string{"latex"}
	switch {
	case format.Raster:
		progs = append(progs, "dvipng")
	case format.Name == "eps":
		progs = append(progs, "gs")
	}
	return progs
}

// Check fails with a RenderingError naming the first missing program.
func (tc Toolchain) Check(format config.Format) error {
	lookPath := tc.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	for _, prog := range tc.Required(format) {
		if _, err := lookPath(prog); err != nil {
			return figerr.Rendering("latex toolchain",
				"use_latex is set but %q is not available: %v", prog, err)
		}
	}
	return nil
}

// latexSymbols maps characters the LaTeX text handler treats as markup, or
// cannot scan, to math-mode symbols.
var latexSymbols = map[rune]string{
	'_':  `$\_$`,
	'%':  `$\%$`,
	'$':  `$\$$`,
	'#':  `$\#$`,
	'{':  `$\{$`,
	'}':  `$\}$`,
	'\\': `$\backslash$`,
	'|':  `$\vert$`,
	'~':  `$\sim$`,
	'^':  `$\wedge$`,
	'&':  "+",
}

// latexPlain lists the punctuation drawn as-is in text mode.
const latexPlain = " =<>/*-+!?':,;.()[]"

func escapeLatex(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), r >= '0' && r <= '9', strings.ContainsRune(latexPlain, r):
			b.WriteRune(r)
		case latexSymbols[r] != "":
			b.WriteString(latexSymbols[r])
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}
