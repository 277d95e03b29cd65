package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestDilate(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 11, 11))
	mask.SetGray(5, 5, color.Gray{Y: 255})

	one := Dilate(mask, 3, 1)
	if got := CountNonZero(one); got != 9 {
		t.Errorf("one iteration: got %d foreground pixels, want 9", got)
	}

	two := Dilate(mask, 3, 2)
	if got := CountNonZero(two); got != 25 {
		t.Errorf("two iterations: got %d foreground pixels, want 25", got)
	}

	wide := Dilate(mask, 5, 1)
	if got := CountNonZero(wide); got != 25 {
		t.Errorf("kernel 5: got %d foreground pixels, want 25", got)
	}

	if CountNonZero(mask) != 1 {
		t.Error("Dilate modified its input")
	}
}

func TestDilate_ClipsAtBorder(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 5, 5))
	mask.SetGray(0, 0, color.Gray{Y: 255})

	out := Dilate(mask, 3, 1)
	if got := CountNonZero(out); got != 4 {
		t.Errorf("corner dilation: got %d foreground pixels, want 4", got)
	}
}

func TestErode(t *testing.T) {
	mask := createSquareGray(20, 20, 5, 5, 15, 15, 255)

	out := Erode(mask, 3, 1)
	if got := CountNonZero(out); got != 8*8 {
		t.Errorf("got %d foreground pixels, want 64", got)
	}
	if GrayAt(out, 5, 5) != 0 || GrayAt(out, 6, 6) != 255 {
		t.Error("erosion should strip exactly one pixel from each side")
	}
}

func TestErode_BorderIsNotBackground(t *testing.T) {
	full := createSquareGray(6, 6, 0, 0, 6, 6, 255)
	if got := CountNonZero(Erode(full, 3, 2)); got != 36 {
		t.Errorf("fully set mask should survive erosion, got %d of 36", got)
	}
}

func TestClose_FillsGap(t *testing.T) {
	mask := createSquareGray(30, 30, 5, 5, 25, 25, 255)
	mask.SetGray(15, 15, color.Gray{Y: 0})
	mask.SetGray(16, 15, color.Gray{Y: 0})

	closed := Close(mask, 3, 2)
	if GrayAt(closed, 15, 15) == 0 || GrayAt(closed, 16, 15) == 0 {
		t.Error("closing should fill a small hole")
	}
	if !Equal(closed, createSquareGray(30, 30, 5, 5, 25, 25, 255)) {
		t.Error("closing should restore the solid square exactly")
	}
}

func TestOpen_RemovesSpeckle(t *testing.T) {
	mask := createSquareGray(30, 30, 5, 5, 20, 20, 255)
	mask.SetGray(26, 26, color.Gray{Y: 255})

	opened := Open(mask, 3, 1)
	if GrayAt(opened, 26, 26) != 0 {
		t.Error("opening should remove an isolated pixel")
	}
	if !Equal(opened, createSquareGray(30, 30, 5, 5, 20, 20, 255)) {
		t.Error("opening should keep the square intact")
	}
}

func TestCleanup(t *testing.T) {
	mask := createSquareGray(40, 40, 10, 10, 30, 30, 200)

	out := Cleanup(mask, 3)
	if out.Bounds() != mask.Bounds() {
		t.Fatalf("bounds: got %v, want %v", out.Bounds(), mask.Bounds())
	}
	// Close restores the square, dilate x2 grows it by 2, open keeps it.
	if !Equal(out, createSquareGray(40, 40, 8, 8, 32, 32, 200)) {
		t.Errorf("cleanup should grow the square by two pixels per side, got %d foreground pixels", CountNonZero(out))
	}
}

func TestCleanup_EmptyMask(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 16, 16))
	if CountNonZero(Cleanup(mask, 5)) != 0 {
		t.Error("cleanup of an empty mask should stay empty")
	}
}
