package render

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/zeitbericht/zeitbericht/pkg/report"
)

// Format selects the document variant written to disk.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// WriteFiles renders the selection into dir and returns the paths written.
// With FormatPDF a CSV sidecar is written first and removed again once the
// PDF exists, so a fetch that renders successfully never leaves a stray
// intermediate behind; a failed removal is logged, not fatal. With
// FormatHTML the HTML and CSS pair is the final output and is kept.
func WriteFiles(dir string, sel report.Selection, opts Options, format Format, sidecar bool) ([]string, error) {
	if len(sel.Rows) == 0 {
		return nil, report.ErrEmptyResult
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	base := report.Filename(sel)

	var sidecarPath string
	if sidecar {
		content, err := CSV(sel.Rows)
		if err != nil {
			return nil, err
		}
		sidecarPath = filepath.Join(dir, base+".csv")
		if err := os.WriteFile(sidecarPath, []byte(content), 0o644); err != nil {
			return nil, err
		}
	}

	switch format {
	case FormatHTML:
		html, css, err := HTML(sel, opts, base+".css")
		if err != nil {
			return nil, err
		}
		htmlPath := filepath.Join(dir, base+".html")
		cssPath := filepath.Join(dir, base+".css")
		if err := os.WriteFile(htmlPath, html, 0o644); err != nil {
			return nil, err
		}
		if err := os.WriteFile(cssPath, css, 0o644); err != nil {
			return nil, err
		}
		paths := []string{htmlPath, cssPath}
		if sidecarPath != "" {
			paths = append(paths, sidecarPath)
		}
		return paths, nil
	case FormatPDF, "":
		content, err := PDF(sel, opts)
		if err != nil {
			removeSidecar(sidecarPath)
			return nil, err
		}
		pdfPath := filepath.Join(dir, base+".pdf")
		if err := os.WriteFile(pdfPath, content, 0o644); err != nil {
			removeSidecar(sidecarPath)
			return nil, err
		}
		removeSidecar(sidecarPath)
		return []string{pdfPath}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// removeSidecar drops the intermediate CSV so a PDF run never leaves a
// partial file pair behind. A failed removal is logged, not fatal.
func removeSidecar(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil {
		log.Warnf("could not remove csv sidecar %s: %v", path, err)
	}
}
