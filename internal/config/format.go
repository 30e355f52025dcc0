package config

import (
	"sort"
	"strings"
)

// Format describes an output image encoding.
type Format struct {
	// Name is the encoder name understood by the canvas backends.
	Name string

	// Raster formats are pixel based and honour the DPI setting.
	Raster bool

	// Transparent formats keep an alpha channel in the background.
	Transparent bool
}

var formats = map[string]Format{
	".png":  {Name: "png", Raster: true, Transparent: true},
	".jpg":  {Name: "jpg", Raster: true},
	".jpeg": {Name: "jpg", Raster: true},
	".tif":  {Name: "tiff", Raster: true, Transparent: true},
	".tiff": {Name: "tiff", Raster: true, Transparent: true},
	".pdf":  {Name: "pdf"},
	".svg":  {Name: "svg"},
	".eps":  {Name: "eps"},
}

// NormalizeExt lower-cases ext and ensures a leading dot.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// LookupFormat returns the format for a file extension.
func LookupFormat(ext string) (Format, bool) {
	f, ok := formats[NormalizeExt(ext)]
	return f, ok
}

// SupportedExts lists the accepted file extensions in sorted order.
func SupportedExts() []string {
	exts := make([]string, 0, len(formats))
	for ext := range formats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
