package winfilter

import (
	"sync"
	"time"
)

// window is the neighborhood of one output pixel, stored per channel.
type window struct {
	rows, cols int
	samples    [3][]float64
}

func newWindow(rows, cols int) *window {
	w := &window{rows: rows, cols: cols}
	for c := range w.samples {
		w.samples[c] = make([]float64, rows*cols)
	}
	return w
}

// load copies the rows x cols block of src whose top-left corner is (x0, y0).
// Samples outside src read as zero.
func (w *window) load(src *Image, x0, y0 int) {
	k := 0
	for i := 0; i < w.rows; i++ {
		sy := y0 + i
		for j := 0; j < w.cols; j++ {
			sx := x0 + j
			if sy < 0 || sy >= src.Height || sx < 0 || sx >= src.Width {
				w.samples[0][k], w.samples[1][k], w.samples[2][k] = 0, 0, 0
			} else {
				p := src.PixOffset(sx, sy)
				w.samples[0][k] = float64(src.Pix[p])
				w.samples[1][k] = float64(src.Pix[p+1])
				w.samples[2][k] = float64(src.Pix[p+2])
			}
			k++
		}
	}
}

// Apply applies the filter to src using the default options and returns a
// new image. src is not modified.
func (f *Filter) Apply(src *Image) *Image {
	return f.ApplyWithOptions(src, defaultOptions)
}

// ApplyWithOptions applies the filter to src and returns a new image.
//
// With zero extension the result has the size of src. Otherwise it is
// smaller by the kernel size minus one in each dimension, and empty when the
// kernel does not fit in src.
func (f *Filter) ApplyWithOptions(src *Image, options Options) *Image {
	options.init()
	began := time.Now()

	width, height := f.Bounds(src.Width, src.Height)
	dst := NewImage(width, height)
	if dst.Empty() {
		Logger().Debug("filter produced an empty image", "filter", f.name,
			"src_width", src.Width, "src_height", src.Height, "rows", f.rows, "cols", f.cols)
		options.Metrics.observe(f.name, 0, time.Since(began))
		return dst
	}

	// Top-left corner of the window for output pixel (0, 0), in source coordinates.
	dx, dy := 0, 0
	if f.zeroExtension {
		dx, dy = -f.pivot.Col, -f.pivot.Row
	}

	offset := float64(f.offset)
	raw := make([]float64, width*height*3)
	parallelize(options.Workers, 0, height, func(start, stop int) {
		win := newWindow(f.rows, f.cols)
		for y := start; y < stop; y++ {
			for x := 0; x < width; x++ {
				win.load(src, x+dx, y+dy)
				r := f.op(win)
				i := (y*width + x) * 3
				raw[i+0] = r[0] + offset
				raw[i+1] = r[1] + offset
				raw[i+2] = r[2] + offset
			}
		}
	})

	f.limit.apply(raw)
	for i, v := range raw {
		dst.Pix[i] = toUint8(v)
	}
	if f.histogramExpansion {
		expandHistogram(dst.Pix)
	}

	elapsed := time.Since(began)
	options.Metrics.observe(f.name, width*height, elapsed)
	Logger().Debug("filter applied", "filter", f.name,
		"width", width, "height", height, "duration", elapsed)
	return dst
}

// parallelize splits the range [start, stop) into contiguous chunks and runs
// fn on them concurrently using at most workers goroutines.
func parallelize(workers, start, stop int, fn func(start, stop int)) {
	count := stop - start
	if count < 1 {
		return
	}
	workers = min(max(workers, 1), count)
	if workers == 1 {
		fn(start, stop)
		return
	}

	chunk := (count + workers - 1) / workers
	var wg sync.WaitGroup
	for s := start; s < stop; s += chunk {
		s := s
		e := min(s+chunk, stop)
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(s, e)
		}()
	}
	wg.Wait()
}
