package winfilter

import (
	"fmt"
	"math"
)

// MaxKernelArea is the largest number of cells (rows * cols) a kernel or
// statistic window may have.
const MaxKernelArea = 1 << 20

// Pivot is the kernel cell aligned with the output pixel.
type Pivot struct {
	Row, Col int
}

// Config describes a correlation filter before validation.
type Config struct {
	// Kernel holds the weights as [row][col][channel]. Each cell has
	// either 1 weight, used for all three channels, or 3 weights.
	Kernel [][][]float64

	// Pivot is the (row, col) kernel coordinate aligned with the output pixel.
	Pivot []int

	// ZeroExtension pads the image with black so the output keeps the
	// input size. Without it, the output only covers positions where the
	// whole kernel fits inside the image.
	ZeroExtension bool

	Limit              LimitFunction
	Offset             int
	HistogramExpansion bool
}

// operation computes the raw per-channel result for one window.
type operation func(w *window) [3]float64

// Filter is a validated, immutable spatial filter.
type Filter struct {
	name               string
	rows, cols         int
	weights            [3][]float64 // planar, row-major; nil for statistic filters
	pivot              Pivot
	zeroExtension      bool
	limit              LimitFunction
	offset             int
	histogramExpansion bool
	op                 operation
}

// NewFilter validates cfg and returns a weighted correlation filter.
func NewFilter(name string, cfg Config) (*Filter, error) {
	rows, cols, err := kernelShape(name, cfg.Kernel)
	if err != nil {
		return nil, err
	}
	pivot, err := checkPivot(name, cfg.Pivot, rows, cols)
	if err != nil {
		return nil, err
	}
	if !cfg.Limit.valid() {
		return nil, invalidf(name, "limit_function", ErrUnknownLimitFunction, "%d", int(cfg.Limit))
	}

	f := &Filter{
		name:               name,
		rows:               rows,
		cols:               cols,
		pivot:              pivot,
		zeroExtension:      cfg.ZeroExtension,
		limit:              cfg.Limit,
		offset:             cfg.Offset,
		histogramExpansion: cfg.HistogramExpansion,
	}
	for c := range f.weights {
		f.weights[c] = make([]float64, 0, rows*cols)
	}
	for _, row := range cfg.Kernel {
		for _, cell := range row {
			for c := range f.weights {
				w := cell[0]
				if len(cell) == 3 {
					w = cell[c]
				}
				f.weights[c] = append(f.weights[c], w)
			}
		}
	}
	f.op = f.correlate

	Logger().Debug("filter created", "filter", name, "rows", rows, "cols", cols,
		"pivot", fmt.Sprintf("%d,%d", pivot.Row, pivot.Col), "limit", f.limit.String())
	return f, nil
}

func kernelShape(name string, kernel [][][]float64) (rows, cols int, err error) {
	if len(kernel) == 0 || len(kernel[0]) == 0 {
		return 0, 0, invalid(name, "kernel", ErrEmptyKernel)
	}
	rows, cols = len(kernel), len(kernel[0])
	if err := checkArea(name, rows, cols); err != nil {
		return 0, 0, err
	}
	for i, row := range kernel {
		if len(row) != cols {
			return 0, 0, invalidf(name, "kernel", ErrRaggedKernel, "row %d has %d columns, want %d", i, len(row), cols)
		}
	}
	for i, row := range kernel {
		for j, cell := range row {
			if len(cell) != 1 && len(cell) != 3 {
				return 0, 0, invalidf(name, "kernel", ErrKernelChannels, "cell (%d,%d) has %d", i, j, len(cell))
			}
			for _, w := range cell {
				if math.IsNaN(w) || math.IsInf(w, 0) {
					return 0, 0, invalidf(name, "kernel", ErrKernelNotFinite, "cell (%d,%d)", i, j)
				}
			}
		}
	}
	return rows, cols, nil
}

func checkArea(name string, rows, cols int) error {
	if rows < 1 || cols < 1 {
		return invalidf(name, "kernel", ErrEmptyKernel, "%dx%d", rows, cols)
	}
	// Division keeps the check free of overflow.
	if rows > MaxKernelArea/cols {
		return invalidf(name, "kernel", ErrKernelTooLarge, "%dx%d exceeds %d cells", rows, cols, MaxKernelArea)
	}
	return nil
}

func checkPivot(name string, pivot []int, rows, cols int) (Pivot, error) {
	if len(pivot) != 2 {
		return Pivot{}, invalidf(name, "pivot", ErrPivotDimensions, "got %d", len(pivot))
	}
	p := Pivot{Row: pivot[0], Col: pivot[1]}
	if p.Row < 0 || p.Row >= rows || p.Col < 0 || p.Col >= cols {
		return Pivot{}, invalidf(name, "pivot", ErrPivotOutOfBounds, "(%d,%d) outside %dx%d kernel", p.Row, p.Col, rows, cols)
	}
	return p, nil
}

// Name returns the filter name.
func (f *Filter) Name() string { return f.name }

// Size returns the kernel dimensions.
func (f *Filter) Size() (rows, cols int) { return f.rows, f.cols }

// Pivot returns the kernel cell aligned with each output pixel.
func (f *Filter) Pivot() Pivot { return f.pivot }

// ZeroExtension reports whether the image border is padded with zeros.
func (f *Filter) ZeroExtension() bool { return f.zeroExtension }

// Limit returns the post-processing limit function.
func (f *Filter) Limit() LimitFunction { return f.limit }

// Offset returns the bias added to each raw result.
func (f *Filter) Offset() int { return f.offset }

// HistogramExpansion reports whether the final result is stretched to the full range.
func (f *Filter) HistogramExpansion() bool { return f.histogramExpansion }

// Kernel returns a copy of the weights as [row][col][channel], always with
// three channels. It returns nil for statistic filters.
func (f *Filter) Kernel() [][][3]float64 {
	if f.weights[0] == nil {
		return nil
	}
	k := make([][][3]float64, f.rows)
	for i := range k {
		k[i] = make([][3]float64, f.cols)
		for j := range k[i] {
			for c := 0; c < 3; c++ {
				k[i][j][c] = f.weights[c][i*f.cols+j]
			}
		}
	}
	return k
}

// Bounds returns the size of the output produced for a width x height input.
func (f *Filter) Bounds(width, height int) (int, int) {
	if f.zeroExtension {
		return max(width, 0), max(height, 0)
	}
	w, h := width-f.cols+1, height-f.rows+1
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	return w, h
}

func (f *Filter) String() string {
	return fmt.Sprintf("%s %dx%d pivot=(%d,%d) zero_extension=%t limit=%s offset=%d histogram_expansion=%t",
		f.name, f.rows, f.cols, f.pivot.Row, f.pivot.Col, f.zeroExtension, f.limit, f.offset, f.histogramExpansion)
}
