package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// WriteError reports an output image that could not be encoded or written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write image %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// JPEGQuality is the quality used when an output path has a JPEG extension.
const JPEGQuality = 95

// Save encodes img in the format implied by path's extension and writes it,
// creating the file or truncating an existing one. Color images are written in
// R, G, B order whatever the source codec's native channel order was.
//
// The containing directory must already exist.
func Save(img image.Image, path string) error {
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if info, err := os.Stat(filepath.Dir(path)); err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("output directory: %w", err)}
	} else if !info.IsDir() {
		return &WriteError{Path: path, Err: fmt.Errorf("output directory %s is not a directory", filepath.Dir(path))}
	}

	if err := imaging.Save(img, path, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
