package winfilter

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestImage(w, h int, fn func(x, y int) [3]uint8) *Image {
	img := NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGB(x, y, fn(x, y))
		}
	}
	return img
}

func flatImage(w, h int, v uint8) *Image {
	return newTestImage(w, h, func(int, int) [3]uint8 { return [3]uint8{v, v, v} })
}

func randomImage(w, h int, seed int64) *Image {
	r := rand.New(rand.NewSource(seed))
	img := NewImage(w, h)
	for i := range img.Pix {
		img.Pix[i] = uint8(r.Intn(256))
	}
	return img
}

func assertSameImage(t *testing.T, want, got *Image) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("image mismatch (-want +got):\n%s", diff)
	}
}
