package engine

import (
	"fmt"
	"io"

	"github.com/ivlev/ocr-overlay/internal/ocr"
)

// WriteBlock печатает поля блока в том порядке, в котором их отдает сервис.
func WriteBlock(w io.Writer, b ocr.Block) {
	fmt.Fprintf(w, "Type: %s\n", b.Type)
	if b.HasText() {
		fmt.Fprintf(w, "Detected: %s\n", b.Text)
		fmt.Fprintf(w, "Confidence: %.2f%%\n", b.Confidence)
		fmt.Fprintf(w, "Id: %s\n", b.ID)
	}
	if len(b.Relationships) > 0 {
		fmt.Fprintf(w, "Relationships: %+v\n", b.Relationships)
		fmt.Fprintf(w, "Bounding Box: %+v\n", b.Geometry.BoundingBox)
		fmt.Fprintf(w, "Polygon: %+v\n", b.Geometry.Polygon)
		fmt.Fprintln(w)
	}
}
