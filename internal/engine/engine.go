package engine

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/ivlev/ocr-overlay/internal/config"
	"github.com/ivlev/ocr-overlay/internal/ocr"
	"github.com/ivlev/ocr-overlay/internal/overlay"
	"github.com/ivlev/ocr-overlay/internal/source"
	"github.com/ivlev/ocr-overlay/internal/system"
	"github.com/ivlev/ocr-overlay/internal/viewer"
)

// Project запускает распознавание по всем страницам источника, по одной за раз.
type Project struct {
	Config   *config.Config
	Source   source.Source
	Detector ocr.Detector
	Renderer *overlay.Renderer
	Viewer   viewer.Viewer
	// Out получает отчет по блокам, Log диагностику.
	Out io.Writer
	Log *log.Logger
}

func NewProject(cfg *config.Config, src source.Source, det ocr.Detector, v viewer.Viewer) *Project {
	style := overlay.DefaultStyle()
	style.EndMarkerWordsOnly = cfg.WordEndOnly
	return &Project{
		Config:   cfg,
		Source:   src,
		Detector: det,
		Renderer: overlay.NewRenderer(style),
		Viewer:   v,
		Out:      os.Stdout,
		Log:      log.Default(),
	}
}

// Outcome результат обработки одной страницы.
type Outcome struct {
	Index    int
	Name     string
	Blocks   int
	Kind     ocr.Kind
	Err      error
	Duration time.Duration
}

func (o Outcome) OK() bool { return o.Kind == ocr.KindNone }

type Summary struct {
	Outcomes []Outcome
	Blocks   int
	Failed   int
	Elapsed  time.Duration
}

// Run обрабатывает страницы по порядку. Ошибки страниц логируются и попадают
// в сводку; ошибка возвращается только для пустого источника или
// отмененного контекста.
func (p *Project) Run(ctx context.Context) (*Summary, error) {
	startTime := time.Now()

	pageCount := p.Source.PageCount()
	if pageCount == 0 {
		return nil, ocr.ErrEmptySource
	}

	p.Log.Printf("[*] Source: %s | Pages: %d | Detector: %s", p.Config.InputPath, pageCount, p.Detector.Name())

	summary := &Summary{}
	for i := 0; i < pageCount; i++ {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(startTime)
			return summary, err
		}

		out := p.ProcessPage(ctx, i)
		summary.Outcomes = append(summary.Outcomes, out)
		summary.Blocks += out.Blocks
		if !out.OK() {
			summary.Failed++
		}
		fmt.Fprintf(p.Out, "Blocks detected: %d\n", out.Blocks)
	}
	summary.Elapsed = time.Since(startTime)

	if p.Config.ShowStats {
		p.writeStats(summary)
	}
	return summary, nil
}

// ProcessPage обрабатывает страницу i: чтение, распознавание, отчет, отрисовка, показ.
// Если страница прочитана, распознавание вызывается ровно один раз.
func (p *Project) ProcessPage(ctx context.Context, i int) (out Outcome) {
	name := p.Source.PageName(i)
	out = Outcome{Index: i, Name: name}
	start := time.Now()
	defer func() { out.Duration = time.Since(start) }()

	data, err := p.Source.ReadPage(i)
	if err != nil {
		return p.fail(out, &ocr.DetectError{Kind: ocr.KindFileAccess, Op: "read " + name, Err: err})
	}

	resp, err := p.Detector.Detect(ctx, data)
	if err == nil && !resp.OK() {
		err = &ocr.StatusError{Code: resp.StatusCode}
	}
	if err != nil {
		return p.fail(out, err)
	}

	fmt.Fprintln(p.Out, "Detected Document Text")
	for _, b := range resp.Blocks {
		WriteBlock(p.Out, b)
	}

	img, err := overlay.Decode(data)
	if err != nil {
		return p.fail(out, &ocr.DetectError{Kind: ocr.KindDecode, Op: "decode " + name, Err: err})
	}
	annotated, n := p.Renderer.Annotate(img, resp.Blocks)
	out.Blocks = n

	err = p.Viewer.Show(ctx, name, annotated)
	system.PutImage(annotated)
	if err != nil {
		// распознавание прошло, счетчик блоков остается
		out.Kind = ocr.KindView
		out.Err = err
		p.Log.Printf("[!] %s: display failed: %v", name, err)
	}

	fmt.Fprintf(p.Out, "processing_time: %s\n", time.Since(start))
	return out
}

func (p *Project) fail(out Outcome, err error) Outcome {
	out.Kind = ocr.KindOf(err)
	out.Err = err
	out.Blocks = 0
	if out.Kind == ocr.KindStatus {
		p.Log.Printf("[!] %s: %v", out.Name, err)
	} else {
		p.Log.Printf("[!] %s: An error occurred: %v", out.Name, err)
	}
	return out
}

func (p *Project) writeStats(s *Summary) {
	byKind := map[ocr.Kind]int{}
	for _, o := range s.Outcomes {
		if !o.OK() {
			byKind[o.Kind]++
		}
	}

	fmt.Fprintf(p.Out,
		"--- [RUN REPORT] ---\n"+
			"Pages: %d\n"+
			"Failed: %d (file access %d, service %d, status %d, decode %d, display %d)\n"+
			"Blocks: %d\n"+
			"Total Time: %.2fs\n"+
			"%s\n"+
			"--------------------\n",
		len(s.Outcomes), s.Failed,
		byKind[ocr.KindFileAccess], byKind[ocr.KindService], byKind[ocr.KindStatus], byKind[ocr.KindDecode], byKind[ocr.KindView],
		s.Blocks, s.Elapsed.Seconds(), system.MemoryReport(),
	)
}
