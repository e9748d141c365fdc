// Package textract adapts the AWS Textract DetectDocumentText call to the
// ocr.Detector interface.
package textract

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/ivlev/ocr-overlay/internal/ocr"
)

// API is the subset of *textract.Client the detector needs. Tests swap
// in a fake.
type API interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

// Options selects the credential profile and region of the session.
type Options struct {
	Profile string
	Region  string
}

type Detector struct {
	API API
	// StatusFrom extracts the HTTP status code of a successful call.
	StatusFrom func(middleware.Metadata) int
}

// New loads the shared AWS configuration for opts and builds a client.
// Retries are disabled so a failed call is final.
func New(ctx context.Context, opts Options) (*Detector, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config (profile %q): %w", opts.Profile, err)
	}
	return NewWithAPI(textract.NewFromConfig(awsCfg)), nil
}

func NewWithAPI(api API) *Detector {
	return &Detector{API: api, StatusFrom: StatusFromMetadata}
}

func (d *Detector) Name() string { return "textract" }

func (d *Detector) Detect(ctx context.Context, image []byte) (ocr.Response, error) {
	out, err := d.API.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: image},
	})
	if err != nil {
		return ocr.Response{}, &ocr.DetectError{Kind: ocr.KindService, Op: "detect document text", Err: err}
	}

	status := ocr.StatusOK
	if d.StatusFrom != nil {
		status = d.StatusFrom(out.ResultMetadata)
	}
	if status != ocr.StatusOK {
		return ocr.Response{StatusCode: status}, &ocr.StatusError{Code: status}
	}

	return ocr.Response{StatusCode: status, Blocks: ConvertBlocks(out.Blocks)}, nil
}

// StatusFromMetadata reads the status code of the raw HTTP response. The SDK
// only hands back output for completed calls, so a missing response counts
// as StatusOK.
func StatusFromMetadata(md middleware.Metadata) int {
	if raw, ok := awsmiddleware.GetRawResponse(md).(*smithyhttp.Response); ok && raw.Response != nil {
		return raw.StatusCode
	}
	return ocr.StatusOK
}

// ConvertBlocks maps SDK blocks to ocr blocks, preserving order.
func ConvertBlocks(in []types.Block) []ocr.Block {
	out := make([]ocr.Block, 0, len(in))
	for _, b := range in {
		out = append(out, convertBlock(b))
	}
	return out
}

func convertBlock(b types.Block) ocr.Block {
	block := ocr.Block{
		Type: ocr.BlockType(b.BlockType),
		Text: aws.ToString(b.Text),
		ID:   aws.ToString(b.Id),
	}
	if b.Confidence != nil {
		block.Confidence = float64(*b.Confidence)
	}
	if g := b.Geometry; g != nil {
		if bb := g.BoundingBox; bb != nil {
			block.Geometry.BoundingBox = ocr.BoundingBox{
				Left:   float64(bb.Left),
				Top:    float64(bb.Top),
				Width:  float64(bb.Width),
				Height: float64(bb.Height),
			}
		}
		for _, p := range g.Polygon {
			block.Geometry.Polygon = append(block.Geometry.Polygon, ocr.Point{X: float64(p.X), Y: float64(p.Y)})
		}
	}
	for _, r := range b.Relationships {
		block.Relationships = append(block.Relationships, ocr.Relationship{
			Type: string(r.Type),
			IDs:  append([]string(nil), r.Ids...),
		})
	}
	return block
}
