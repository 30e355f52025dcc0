package config

import "strings"

// PaperSize names a standard page format.
type PaperSize string

const (
	PaperA3     PaperSize = "A3"
	PaperA4     PaperSize = "A4"
	PaperA5     PaperSize = "A5"
	PaperLetter PaperSize = "Letter"
	PaperLegal  PaperSize = "Legal"
)

// ValidPaperSizes lists all supported paper sizes.
var ValidPaperSizes = []PaperSize{PaperA3, PaperA4, PaperA5, PaperLetter, PaperLegal}

// paperInches holds width and height in inches, portrait orientation.
var paperInches = map[PaperSize][2]float64{
	PaperA3:     {11.69, 16.54},
	PaperA4:     {8.27, 11.69},
	PaperA5:     {5.83, 8.27},
	PaperLetter: {8.5, 11},
	PaperLegal:  {8.5, 14},
}

// ParsePaperSize matches s case-insensitively against the supported sizes.
func ParsePaperSize(s string) (PaperSize, bool) {
	s = strings.TrimSpace(s)
	for _, size := range ValidPaperSizes {
		if strings.EqualFold(s, string(size)) {
			return size, true
		}
	}
	return "", false
}

// Inches returns the page width and height in inches.
// Unknown sizes report A4.
func (s PaperSize) Inches() (width, height float64) {
	if size, ok := ParsePaperSize(string(s)); ok {
		d := paperInches[size]
		return d[0], d[1]
	}
	d := paperInches[PaperA4]
	return d[0], d[1]
}
