// Package fonts provides the typeface used for node labels.
//
// Labels are set in the Go Regular font, which ships as Go source in
// golang.org/x/image, so raster output needs no system fonts. SVG output
// names the same family with web-safe fallbacks.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the CSS font-family name of the label font.
const FontFamily = "Go"

// FallbackFontFamily is the CSS font-family list used in SVG output.
const FallbackFontFamily = `'Go', 'Helvetica Neue', Arial, sans-serif`

var (
	regular     *truetype.Font
	regularErr  error
	regularOnce sync.Once
)

// RegularTTF returns the TTF data of the label font.
func RegularTTF() []byte {
	return goregular.TTF
}

// Regular returns the parsed label font. The result is cached after the
// first call.
func Regular() (*truetype.Font, error) {
	regularOnce.Do(func() {
		regular, regularErr = truetype.Parse(goregular.TTF)
	})
	return regular, regularErr
}

// Face returns a face of the label font at size points.
func Face(size float64) (font.Face, error) {
	f, err := Regular()
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
