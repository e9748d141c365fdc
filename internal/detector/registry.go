package detector

import (
	"context"
	"fmt"
	"strings"

	"github.com/ivlev/ocr-overlay/internal/config"
	"github.com/ivlev/ocr-overlay/internal/ocr"
	"github.com/ivlev/ocr-overlay/internal/tesseract"
	"github.com/ivlev/ocr-overlay/internal/textract"
)

// New creates the detector named by cfg.Detector
func New(ctx context.Context, cfg *config.Config) (ocr.Detector, error) {
	switch strings.ToLower(cfg.Detector) {
	case "textract", "":
		return textract.New(ctx, textract.Options{Profile: cfg.Profile, Region: cfg.Region})
	case "tesseract":
		return tesseract.New(cfg.Languages), nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", cfg.Detector)
	}
}
