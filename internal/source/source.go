package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Source отдает байты каждой страницы, отправляемой на распознавание.
type Source interface {
	PageCount() int
	PageName(index int) string
	ReadPage(index int) ([]byte, error)
	Close() error
}

// Open выбирает PDF или папку с изображениями по расширению пути.
func Open(path string, dpi int) (Source, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return NewFitzPDFSource(path, dpi)
	}
	return NewImageSource(path)
}

// FitzPDFSource рендерит каждую страницу PDF в PNG.
type FitzPDFSource struct {
	doc  *fitz.Document
	path string
	dpi  int
}

func NewFitzPDFSource(path string, dpi int) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc, path: path, dpi: dpi}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) PageName(index int) string {
	return fmt.Sprintf("%s#page-%d", filepath.Base(f.path), index+1)
}

func (f *FitzPDFSource) ReadPage(index int) ([]byte, error) {
	data, err := f.doc.ImagePNG(index, float64(f.dpi))
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", index+1, err)
	}
	return data, nil
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
