package ocr

// BlockType identifies the kind of element a detector returned.
type BlockType string

const (
	BlockPage BlockType = "PAGE"
	BlockLine BlockType = "LINE"
	BlockWord BlockType = "WORD"
)

// StatusOK is the only status code for which a response is processed.
const StatusOK = 200

// Point is a vertex in normalized [0,1] image coordinates.
type Point struct {
	X float64
	Y float64
}

// BoundingBox is an axis-aligned rectangle in normalized coordinates.
type BoundingBox struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Geometry holds the location of a block. Polygon is ordered
// top-left, top-right, bottom-right, bottom-left.
type Geometry struct {
	BoundingBox BoundingBox
	Polygon     []Point
}

// Denormalize scales the polygon to pixel space for an image of w x h.
func (g Geometry) Denormalize(w, h int) []Point {
	pts := make([]Point, len(g.Polygon))
	for i, p := range g.Polygon {
		pts[i] = Point{X: float64(w) * p.X, Y: float64(h) * p.Y}
	}
	return pts
}

// Relationship links a block to other blocks of the same response.
type Relationship struct {
	Type string
	IDs  []string
}

// Block is one detected element. Blocks are read-only once produced.
type Block struct {
	Type          BlockType
	Text          string
	Confidence    float64 // 0-100
	ID            string
	Geometry      Geometry
	Relationships []Relationship
}

// HasText reports whether the block kind carries recognized text.
func (b Block) HasText() bool {
	return b.Type != BlockPage
}

// Response is what a detector returns for a single image.
type Response struct {
	StatusCode int
	Blocks     []Block
}

// OK reports whether the response may be rendered.
func (r Response) OK() bool {
	return r.StatusCode == StatusOK
}

// Count returns the number of blocks in the response.
func (r Response) Count() int {
	return len(r.Blocks)
}
