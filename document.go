package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Page is one annotatable surface. The tool only ever consumes its logical
// dimensions; pixel rendering of the underlying bitmap belongs elsewhere.
type Page struct {
	Number int
	Width  float64
	Height float64
}

// Document is a loaded image or PDF plus its per-page metadata.
type Document struct {
	ID             string
	Path           string
	Filename       string
	Pages          []Page
	Classification map[string]string
}

func (d *Document) NumPages() int {
	return len(d.Pages)
}

func (d *Document) PageSize(n int) Point {
	for _, p := range d.Pages {
		if p.Number == n {
			return Point{p.Width, p.Height}
		}
	}
	return Point{}
}

// LoadDocument probes an image or PDF for page dimensions. The document id
// is the filename without extension, matching what the backend keys on.
func LoadDocument(path string) (*Document, error) {
	filename := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(filename))

	doc := &Document{
		ID:       strings.TrimSuffix(filename, filepath.Ext(filename)),
		Path:     path,
		Filename: filename,
		Classification: map[string]string{
			"type":   "handwritten",
			"domain": "notebook",
		},
	}

	switch ext {
	case ".png", ".jpg", ".jpeg":
		page, err := probeImage(path)
		if err != nil {
			return nil, err
		}
		doc.Pages = []Page{page}
	case ".pdf":
		pages, err := probePDF(path)
		if err != nil {
			return nil, err
		}
		doc.Pages = pages
	default:
		return nil, fmt.Errorf("unsupported document type %q (want .png, .jpg, or .pdf)", ext)
	}

	return doc, nil
}

func probeImage(path string) (Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return Page{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Page{}, fmt.Errorf("decode image %s: %w", path, err)
	}
	return Page{Number: 1, Width: float64(cfg.Width), Height: float64(cfg.Height)}, nil
}

func probePDF(path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, pdfmodel.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("pdfcpu page dims: %w", err)
	}

	pages := make([]Page, 0, len(dims))
	for i, d := range dims {
		pages = append(pages, Page{Number: i + 1, Width: d.Width, Height: d.Height})
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%s has no pages", path)
	}
	return pages, nil
}
