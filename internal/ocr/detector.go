package ocr

import "context"

// Detector submits raw image bytes to a text detection backend.
type Detector interface {
	Name() string
	Detect(ctx context.Context, image []byte) (Response, error)
}
