// Package ingest loads a prescription scan from disk into an image the
// providers can send.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/jackzampolin/rxscan/internal/providers"
)

var (
	// ErrNoImage is returned when a file holds no usable image.
	ErrNoImage = errors.New("no image found")

	// ErrUnsupported is returned for files that are neither images nor PDFs.
	ErrUnsupported = errors.New("unsupported file type")
)

const pdfMimeType = "application/pdf"

// imageExtensions lists the file extensions Load and IsSupported accept.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".pdf":  true,
}

// Result is a loaded prescription scan.
type Result struct {
	Path      string
	Image     providers.Image
	FromPDF   bool
	PageCount int // PDF pages; 0 for plain images
}

// IsSupported reports whether path has an extension Load understands.
func IsSupported(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Load reads an image or PDF. For a PDF the first embedded image of the
// first page is used, falling back to rendering the page with pdftoppm when
// the page has no embedded image.
func Load(path string, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoImage)
	}

	mimeType := http.DetectContentType(data)
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		logger.Debug("loaded image", "file", filepath.Base(path), "mime", mimeType, "bytes", len(data))
		return &Result{
			Path:  path,
			Image: providers.Image{Data: data, MimeType: mimeType},
		}, nil
	case mimeType == pdfMimeType:
		return loadPDF(path, data, logger)
	default:
		return nil, fmt.Errorf("%s (%s): %w", path, mimeType, ErrUnsupported)
	}
}

func loadPDF(path string, data []byte, logger *slog.Logger) (*Result, error) {
	pageCount, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoImage)
	}
	if pageCount > 1 {
		logger.Warn("PDF has several pages, using the first", "file", filepath.Base(path), "pages", pageCount)
	}

	img, err := firstEmbeddedImage(data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract images from %s: %w", path, err)
	}
	if img == nil {
		logger.Debug("no embedded image, rendering page", "file", filepath.Base(path))
		img, err = renderFirstPage(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", path, ErrNoImage, err)
		}
	}

	logger.Debug("loaded PDF page", "file", filepath.Base(path), "mime", img.MimeType, "bytes", len(img.Data))
	return &Result{
		Path:      path,
		Image:     *img,
		FromPDF:   true,
		PageCount: pageCount,
	}, nil
}

// firstEmbeddedImage returns the first image on page 1, or nil if the page
// has none.
func firstEmbeddedImage(data []byte) (*providers.Image, error) {
	var found *providers.Image
	err := api.ExtractImages(bytes.NewReader(data), []string{"1"}, func(img model.Image, _ bool, _ int) error {
		if found != nil {
			return nil
		}
		raw, err := io.ReadAll(img)
		if err != nil {
			return err
		}
		mimeType := http.DetectContentType(raw)
		if !strings.HasPrefix(mimeType, "image/") {
			return nil
		}
		found = &providers.Image{Data: raw, MimeType: mimeType}
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return found, nil
}

// renderFirstPage renders page 1 to PNG using pdftoppm (poppler-utils).
func renderFirstPage(pdfPath string) (*providers.Image, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return nil, fmt.Errorf("pdftoppm not available: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "rxscan-page-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// -singlefile writes <prefix>.png without a page suffix
	outputPrefix := filepath.Join(tmpDir, "page")
	cmd := exec.Command("pdftoppm",
		"-png",
		"-f", "1",
		"-l", "1",
		"-r", "300",
		"-singlefile",
		pdfPath,
		outputPrefix,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	data, err := os.ReadFile(outputPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered image: %w", err)
	}
	return &providers.Image{Data: data, MimeType: "image/png"}, nil
}
