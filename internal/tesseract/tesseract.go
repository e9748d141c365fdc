package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
	_ "golang.org/x/image/tiff"

	"github.com/ivlev/ocr-overlay/internal/ocr"
)

// Detector runs Tesseract locally and reports its lines and words in the
// same block model the cloud detector uses.
type Detector struct {
	Languages []string
}

func New(languages []string) *Detector {
	return &Detector{Languages: languages}
}

func (d *Detector) Name() string { return "tesseract" }

func (d *Detector) Detect(ctx context.Context, data []byte) (ocr.Response, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Response{}, &ocr.DetectError{Kind: ocr.KindService, Op: "tesseract", Err: err}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ocr.Response{}, &ocr.DetectError{Kind: ocr.KindDecode, Op: "decode image header", Err: err}
	}

	client := gosseract.NewClient()
	defer client.Close()

	if len(d.Languages) > 0 {
		if err := client.SetLanguage(d.Languages...); err != nil {
			return ocr.Response{}, ocr.Errorf(ocr.KindService, "tesseract", "set language: %w", err)
		}
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return ocr.Response{}, ocr.Errorf(ocr.KindService, "tesseract", "set image: %w", err)
	}

	lines, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return ocr.Response{}, ocr.Errorf(ocr.KindService, "tesseract", "lines: %w", err)
	}
	words, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return ocr.Response{}, ocr.Errorf(ocr.KindService, "tesseract", "words: %w", err)
	}

	return ocr.Response{
		StatusCode: ocr.StatusOK,
		Blocks:     buildBlocks(cfg.Width, cfg.Height, toBoxes(lines), toBoxes(words)),
	}, nil
}

type box struct {
	rect       image.Rectangle
	text       string
	confidence float64
}

func toBoxes(in []gosseract.BoundingBox) []box {
	out := make([]box, 0, len(in))
	for _, b := range in {
		out = append(out, box{rect: b.Box, text: b.Word, confidence: b.Confidence})
	}
	return out
}

// buildBlocks emits PAGE, then each LINE followed by the WORD blocks whose
// centers fall inside it. Words outside every line are appended at the end.
func buildBlocks(w, h int, lines, words []box) []ocr.Block {
	page := ocr.Block{
		Type:     ocr.BlockPage,
		ID:       "page-1",
		Geometry: geometry(image.Rect(0, 0, w, h), w, h),
	}

	lineBlocks := make([]ocr.Block, len(lines))
	children := make([][]ocr.Block, len(lines))
	var orphans []ocr.Block
	var lineIDs []string

	for i, l := range lines {
		id := fmt.Sprintf("line-%d", i+1)
		lineIDs = append(lineIDs, id)
		lineBlocks[i] = ocr.Block{
			Type:       ocr.BlockLine,
			Text:       strings.TrimSpace(l.text),
			Confidence: l.confidence,
			ID:         id,
			Geometry:   geometry(l.rect, w, h),
		}
	}

	for i, wd := range words {
		block := ocr.Block{
			Type:       ocr.BlockWord,
			Text:       strings.TrimSpace(wd.text),
			Confidence: wd.confidence,
			ID:         fmt.Sprintf("word-%d", i+1),
			Geometry:   geometry(wd.rect, w, h),
		}
		center := image.Pt((wd.rect.Min.X+wd.rect.Max.X)/2, (wd.rect.Min.Y+wd.rect.Max.Y)/2)
		placed := false
		for li, l := range lines {
			if center.In(l.rect) {
				children[li] = append(children[li], block)
				placed = true
				break
			}
		}
		if !placed {
			orphans = append(orphans, block)
		}
	}

	if len(lineIDs) > 0 {
		page.Relationships = []ocr.Relationship{{Type: "CHILD", IDs: lineIDs}}
	}

	blocks := []ocr.Block{page}
	for i := range lineBlocks {
		if len(children[i]) > 0 {
			ids := make([]string, len(children[i]))
			for j, c := range children[i] {
				ids[j] = c.ID
			}
			lineBlocks[i].Relationships = []ocr.Relationship{{Type: "CHILD", IDs: ids}}
		}
		blocks = append(blocks, lineBlocks[i])
		blocks = append(blocks, children[i]...)
	}
	return append(blocks, orphans...)
}

func geometry(r image.Rectangle, w, h int) ocr.Geometry {
	if w == 0 || h == 0 {
		return ocr.Geometry{}
	}
	fw, fh := float64(w), float64(h)
	left, top := float64(r.Min.X)/fw, float64(r.Min.Y)/fh
	right, bottom := float64(r.Max.X)/fw, float64(r.Max.Y)/fh
	return ocr.Geometry{
		BoundingBox: ocr.BoundingBox{Left: left, Top: top, Width: right - left, Height: bottom - top},
		Polygon: []ocr.Point{
			{X: left, Y: top},
			{X: right, Y: top},
			{X: right, Y: bottom},
			{X: left, Y: bottom},
		},
	}
}
