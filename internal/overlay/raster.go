package overlay

import (
	"bytes"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/vector"

	"github.com/ivlev/ocr-overlay/internal/ocr"
	"github.com/ivlev/ocr-overlay/internal/system"
)

// Decode reads an encoded image (JPEG, PNG, TIFF, BMP, GIF).
func Decode(data []byte) (image.Image, error) {
	return imaging.Decode(bytes.NewReader(data))
}

// Prepare returns a copy of img at origin (0,0) with the alpha channel
// dropped, so every pixel is opaque RGB. The raster comes from the shared
// pool; hand it back with system.PutImage once it is no longer needed.
func Prepare(img image.Image) *image.RGBA {
	src := imaging.Clone(img)
	dst := system.GetImage(src.Rect)
	for i := 0; i+3 < len(src.Pix); i += 4 {
		dst.Pix[i] = src.Pix[i]
		dst.Pix[i+1] = src.Pix[i+1]
		dst.Pix[i+2] = src.Pix[i+2]
		dst.Pix[i+3] = 0xff
	}
	return dst
}

// RasterCanvas draws onto an RGBA image with a vector rasterizer. The
// rasterizer only covers the clipped bounds of each stroke.
type RasterCanvas struct {
	Img *image.RGBA

	r vector.Rasterizer
}

func NewRasterCanvas(img *image.RGBA) *RasterCanvas {
	return &RasterCanvas{Img: img}
}

// Line strokes a segment of the given width with square caps.
func (c *RasterCanvas) Line(a, b ocr.Point, col color.Color, width float64) {
	if width <= 0 {
		width = 1
	}
	half := width / 2

	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	// unit direction; a zero-length segment becomes a square dot
	ux, uy := 1.0, 0.0
	if length > 0 {
		ux, uy = dx/length, dy/length
	}
	nx, ny := -uy*half, ux*half
	ex, ey := ux*half, uy*half

	quad := [4]ocr.Point{
		{X: a.X - ex + nx, Y: a.Y - ey + ny},
		{X: b.X + ex + nx, Y: b.Y + ey + ny},
		{X: b.X + ex - nx, Y: b.Y + ey - ny},
		{X: a.X - ex - nx, Y: a.Y - ey - ny},
	}
	rect := strokeBounds(quad[:]).Intersect(c.Img.Bounds())
	if rect.Empty() {
		return
	}

	ox, oy := float64(rect.Min.X), float64(rect.Min.Y)
	c.r.Reset(rect.Dx(), rect.Dy())
	c.r.MoveTo(float32(quad[0].X-ox), float32(quad[0].Y-oy))
	for _, p := range quad[1:] {
		c.r.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	c.r.ClosePath()
	c.r.Draw(c.Img, rect, image.NewUniform(col), image.Point{})
}

// strokeBounds is the smallest pixel rectangle holding pts.
func strokeBounds(pts []ocr.Point) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
}

// Polygon outlines pts as a closed shape with a 1px stroke.
func (c *RasterCanvas) Polygon(pts []ocr.Point, outline color.Color) {
	for i := range pts {
		c.Line(pts[i], pts[(i+1)%len(pts)], outline, 1)
	}
}
