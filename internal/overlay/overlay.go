// Package overlay draws detected block geometry on top of the source image.
package overlay

import (
	"image"
	"image/color"

	"github.com/ivlev/ocr-overlay/internal/ocr"
)

// Canvas receives drawing operations in pixel coordinates.
type Canvas interface {
	Line(a, b ocr.Point, c color.Color, width float64)
	Polygon(pts []ocr.Point, outline color.Color)
}

// Style holds the marker colors and widths.
type Style struct {
	WordStart   color.Color
	WordEnd     color.Color
	LineOutline color.Color
	MarkerWidth float64
	// EndMarkerWordsOnly limits the vertex 1->2 marker to WORD blocks.
	// By default every block gets it.
	EndMarkerWordsOnly bool
}

func DefaultStyle() Style {
	return Style{
		WordStart:   color.RGBA{R: 0, G: 128, B: 0, A: 255},
		WordEnd:     color.RGBA{R: 255, G: 0, B: 0, A: 255},
		LineOutline: color.RGBA{R: 0, G: 0, B: 0, A: 255},
		MarkerWidth: 2,
	}
}

type Renderer struct {
	Style Style
}

func NewRenderer(style Style) *Renderer {
	return &Renderer{Style: style}
}

// Render draws every block onto c for an image of w x h pixels and returns
// the number of blocks processed.
func (r *Renderer) Render(c Canvas, w, h int, blocks []ocr.Block) int {
	for _, b := range blocks {
		pts := b.Geometry.Denormalize(w, h)

		if len(pts) >= 4 {
			if b.Type == ocr.BlockWord {
				c.Line(pts[0], pts[3], r.Style.WordStart, r.Style.MarkerWidth)
			}
			if b.Type == ocr.BlockWord || !r.Style.EndMarkerWordsOnly {
				c.Line(pts[1], pts[2], r.Style.WordEnd, r.Style.MarkerWidth)
			}
		}

		if b.Type == ocr.BlockLine && len(pts) >= 2 {
			c.Polygon(pts, r.Style.LineOutline)
		}
	}
	return len(blocks)
}

// Annotate renders blocks on an opaque copy of img.
func (r *Renderer) Annotate(img image.Image, blocks []ocr.Block) (*image.RGBA, int) {
	dst := Prepare(img)
	b := dst.Bounds()
	n := r.Render(NewRasterCanvas(dst), b.Dx(), b.Dy(), blocks)
	return dst, n
}
