package engine

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io/fs"
	"log"
	"strings"
	"testing"

	"github.com/ivlev/ocr-overlay/internal/config"
	"github.com/ivlev/ocr-overlay/internal/ocr"
)

type page struct {
	name string
	data []byte
	err  error
}

type memSource struct {
	pages []page
}

func (s *memSource) PageCount() int        { return len(s.pages) }
func (s *memSource) PageName(i int) string { return s.pages[i].name }
func (s *memSource) ReadPage(i int) ([]byte, error) {
	return s.pages[i].data, s.pages[i].err
}
func (s *memSource) Close() error { return nil }

type scriptedDetector struct {
	calls     [][]byte
	responses map[string]ocr.Response
	errs      map[string]error
}

func (d *scriptedDetector) Name() string { return "scripted" }

func (d *scriptedDetector) Detect(ctx context.Context, data []byte) (ocr.Response, error) {
	d.calls = append(d.calls, data)
	key := string(data[len(data)-4:])
	return d.responses[key], d.errs[key]
}

type recordingViewer struct {
	shown []string
	err   error
}

func (v *recordingViewer) Show(ctx context.Context, name string, img image.Image) error {
	v.shown = append(v.shown, name)
	return v.err
}

// pngWithTag encodes a small PNG and appends a 4-byte tag after IEND so the
// detector fake can tell pages apart while the image still decodes.
func pngWithTag(t *testing.T, tag string) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 20, 10))); err != nil {
		t.Fatal(err)
	}
	return append(buf.Bytes(), tag...)
}

func wordBlocks(n int) []ocr.Block {
	blocks := make([]ocr.Block, n)
	for i := range blocks {
		blocks[i] = ocr.Block{
			Type:       ocr.BlockWord,
			Text:       "w",
			Confidence: 99,
			ID:         "id",
			Geometry: ocr.Geometry{Polygon: []ocr.Point{
				{X: 0.1, Y: 0.1}, {X: 0.5, Y: 0.1}, {X: 0.5, Y: 0.5}, {X: 0.1, Y: 0.5},
			}},
		}
	}
	return blocks
}

func newTestProject(src *memSource, det *scriptedDetector, v *recordingViewer) (*Project, *bytes.Buffer, *bytes.Buffer) {
	cfg := config.Default()
	cfg.InputPath = "mem"
	p := NewProject(cfg, src, det, v)
	var out, logs bytes.Buffer
	p.Out = &out
	p.Log = log.New(&logs, "", 0)
	return p, &out, &logs
}

func TestRunProcessesEveryPageInOrder(t *testing.T) {
	src := &memSource{pages: []page{
		{name: "a.png", data: pngWithTag(t, "AAAA")},
		{name: "b.png", data: pngWithTag(t, "BBBB")},
		{name: "c.png", data: pngWithTag(t, "CCCC")},
	}}
	det := &scriptedDetector{responses: map[string]ocr.Response{
		"AAAA": {StatusCode: 200, Blocks: wordBlocks(2)},
		"BBBB": {StatusCode: 200, Blocks: wordBlocks(5)},
		"CCCC": {StatusCode: 200, Blocks: nil},
	}}
	v := &recordingViewer{}
	p, out, _ := newTestProject(src, det, v)

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(det.calls) != 3 {
		t.Fatalf("Expected 3 detection calls, got %d", len(det.calls))
	}
	for i, tag := range []string{"AAAA", "BBBB", "CCCC"} {
		if !strings.HasSuffix(string(det.calls[i]), tag) {
			t.Errorf("call %d: expected page %s", i, tag)
		}
	}

	wantCounts := []int{2, 5, 0}
	for i, o := range summary.Outcomes {
		if !o.OK() || o.Blocks != wantCounts[i] {
			t.Errorf("outcome %d: %+v, want %d blocks", i, o, wantCounts[i])
		}
	}
	if summary.Blocks != 7 || summary.Failed != 0 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if strings.Join(v.shown, ",") != "a.png,b.png,c.png" {
		t.Errorf("unexpected viewer calls %v", v.shown)
	}
	for _, line := range []string{"Blocks detected: 2\n", "Blocks detected: 5\n", "Blocks detected: 0\n", "Detected Document Text\n", "Confidence: 99.00%\n"} {
		if !strings.Contains(out.String(), line) {
			t.Errorf("output missing %q", line)
		}
	}
}

func TestRunBadStatusSkipsRendering(t *testing.T) {
	src := &memSource{pages: []page{{name: "a.png", data: pngWithTag(t, "AAAA")}}}
	det := &scriptedDetector{responses: map[string]ocr.Response{
		"AAAA": {StatusCode: 500, Blocks: wordBlocks(3)},
	}}
	v := &recordingViewer{}
	p, out, logs := newTestProject(src, det, v)

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	o := summary.Outcomes[0]
	if o.Kind != ocr.KindStatus || o.Blocks != 0 {
		t.Errorf("Expected status failure with 0 blocks, got %+v", o)
	}
	if len(v.shown) != 0 {
		t.Error("viewer must not be called for a non-200 response")
	}
	if !strings.Contains(logs.String(), "API call failed with status code: 500") {
		t.Errorf("status code not logged: %q", logs.String())
	}
	if strings.Contains(out.String(), "Detected Document Text") {
		t.Error("blocks must not be reported for a non-200 response")
	}
	if !strings.Contains(out.String(), "Blocks detected: 0") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRunContinuesAfterFailures(t *testing.T) {
	src := &memSource{pages: []page{
		{name: "a.png", err: fs.ErrPermission},
		{name: "b.png", data: pngWithTag(t, "BBBB")},
		{name: "c.png", data: []byte("not an image CCCC")},
		{name: "d.png", data: pngWithTag(t, "DDDD")},
	}}
	det := &scriptedDetector{
		responses: map[string]ocr.Response{
			"CCCC": {StatusCode: 200, Blocks: wordBlocks(1)},
			"DDDD": {StatusCode: 200, Blocks: wordBlocks(4)},
		},
		errs: map[string]error{
			"BBBB": &ocr.DetectError{Kind: ocr.KindService, Op: "detect", Err: errors.New("timeout")},
		},
	}
	v := &recordingViewer{}
	p, _, logs := newTestProject(src, det, v)

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(det.calls) != 3 {
		t.Errorf("Expected 3 detection calls (unreadable page skipped), got %d", len(det.calls))
	}

	wantKinds := []ocr.Kind{ocr.KindFileAccess, ocr.KindService, ocr.KindDecode, ocr.KindNone}
	for i, want := range wantKinds {
		if got := summary.Outcomes[i].Kind; got != want {
			t.Errorf("page %d: expected %v, got %v", i, want, got)
		}
	}
	if !errors.Is(summary.Outcomes[0].Err, fs.ErrPermission) {
		t.Errorf("file error not preserved: %v", summary.Outcomes[0].Err)
	}
	if summary.Outcomes[3].Blocks != 4 || summary.Failed != 3 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if strings.Count(logs.String(), "An error occurred") != 3 {
		t.Errorf("expected 3 logged errors, got log %q", logs.String())
	}
}

func TestRunViewerFailureKeepsCount(t *testing.T) {
	src := &memSource{pages: []page{{name: "a.png", data: pngWithTag(t, "AAAA")}}}
	det := &scriptedDetector{responses: map[string]ocr.Response{
		"AAAA": {StatusCode: 200, Blocks: wordBlocks(2)},
	}}
	v := &recordingViewer{err: errors.New("no display")}
	p, _, _ := newTestProject(src, det, v)

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	o := summary.Outcomes[0]
	if o.Kind != ocr.KindView || o.Blocks != 2 {
		t.Errorf("Expected display failure with 2 blocks, got %+v", o)
	}
}

func TestRunEmptySource(t *testing.T) {
	p, _, _ := newTestProject(&memSource{}, &scriptedDetector{}, &recordingViewer{})
	if _, err := p.Run(context.Background()); !errors.Is(err, ocr.ErrEmptySource) {
		t.Errorf("Expected ErrEmptySource, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	src := &memSource{pages: []page{{name: "a.png", data: pngWithTag(t, "AAAA")}}}
	det := &scriptedDetector{}
	p, _, _ := newTestProject(src, det, &recordingViewer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(det.calls) != 0 {
		t.Errorf("Expected no calls after cancel, got %d", len(det.calls))
	}
}

func TestRunShowStats(t *testing.T) {
	src := &memSource{pages: []page{{name: "a.png", err: fs.ErrNotExist}}}
	p, out, _ := newTestProject(src, &scriptedDetector{}, &recordingViewer{})
	p.Config.ShowStats = true

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Failed: 1 (file access 1") {
		t.Errorf("unexpected report %q", out.String())
	}
}

func TestWriteBlock(t *testing.T) {
	var buf bytes.Buffer
	WriteBlock(&buf, ocr.Block{Type: ocr.BlockPage, ID: "p"})
	if buf.String() != "Type: PAGE\n" {
		t.Errorf("unexpected PAGE report %q", buf.String())
	}

	buf.Reset()
	WriteBlock(&buf, ocr.Block{
		Type:          ocr.BlockLine,
		Text:          "Total 42",
		Confidence:    87.125,
		ID:            "l1",
		Relationships: []ocr.Relationship{{Type: "CHILD", IDs: []string{"w1"}}},
	})
	want := []string{
		"Type: LINE",
		"Detected: Total 42",
		"Confidence: 87.12%",
		"Id: l1",
		"Relationships: [{Type:CHILD IDs:[w1]}]",
		"Bounding Box: {Left:0 Top:0 Width:0 Height:0}",
		"Polygon: []",
		"",
		"",
	}
	if got := strings.Split(buf.String(), "\n"); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("unexpected report:\n%s", buf.String())
	}
}
