package imaging

import (
	"errors"
	"image/color"
	"path/filepath"
	"testing"
)

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	img := createInMemoryImage(30, 20, color.RGBA{10, 200, 30, 255})

	for _, name := range []string{"out.png", "out.jpg", "out.jpeg", "out.bmp"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Save(img, path); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			loaded, err := NewImageCache().Load(path)
			if err != nil {
				t.Fatalf("Load of saved image failed: %v", err)
			}
			if loaded.Bounds().Dx() != 30 || loaded.Bounds().Dy() != 20 {
				t.Errorf("dimensions: got %v, want 30x20", loaded.Bounds())
			}

			// Channel order survives encoding: green stays dominant.
			r, g, b, _ := loaded.At(15, 10).RGBA()
			if g>>8 < 150 || r>>8 > 60 || b>>8 > 80 {
				t.Errorf("color: got (%d,%d,%d), want approximately (10,200,30)", r>>8, g>>8, b>>8)
			}
		})
	}
}

func TestSave_Errors(t *testing.T) {
	img := createInMemoryImage(4, 4, color.White)

	tests := []struct {
		name string
		path string
	}{
		{"unsupported extension", filepath.Join(t.TempDir(), "out.xyz")},
		{"missing directory", filepath.Join(t.TempDir(), "missing", "out.png")},
		{"directory is a file", filepath.Join(createTestImage(t, 2, 2, color.Black), "out.png")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Save(img, tt.path)
			if err == nil {
				t.Fatal("Save should fail")
			}
			var writeErr *WriteError
			if !errors.As(err, &writeErr) {
				t.Fatalf("error type: got %T, want *WriteError", err)
			}
			if writeErr.Path != tt.path {
				t.Errorf("Path: got %s, want %s", writeErr.Path, tt.path)
			}
		})
	}
}
