package viewer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Viewer displays an annotated image.
type Viewer interface {
	Show(ctx context.Context, name string, img image.Image) error
}

// Nop discards images; used for headless runs.
type Nop struct{}

func (Nop) Show(context.Context, string, image.Image) error { return nil }

// System writes the image to a temporary PNG and opens it with the host
// viewer command. The file is left for the viewer to read.
type System struct {
	Command []string
	TempDir string
	// Run executes argv and blocks until it exits.
	Run func(ctx context.Context, argv []string) error
}

func NewSystem(command []string) *System {
	return &System{Command: command, Run: runCommand}
}

func (s *System) Show(ctx context.Context, name string, img image.Image) error {
	if len(s.Command) == 0 {
		return fmt.Errorf("viewer command is empty")
	}

	pattern := "ocr-overlay-" + sanitize(name) + "-*.png"
	f, err := os.CreateTemp(s.TempDir, pattern)
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}
	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	argv := append(append([]string(nil), s.Command...), f.Name())
	run := s.Run
	if run == nil {
		run = runCommand
	}
	if err := run(ctx, argv); err != nil {
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}

func runCommand(ctx context.Context, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%v, output: %s", err, strings.TrimSpace(out.String()))
	}
	return nil
}

func sanitize(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
}
