package winfilter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticFuncs(t *testing.T) {
	tests := []struct {
		name string
		stat Statistic
		in   []float64
		want float64
	}{
		{"mean", Mean, []float64{1, 2, 3, 6}, 3},
		{"median odd", Median, []float64{9, 1, 5}, 5},
		{"median even", Median, []float64{4, 1, 3, 10}, 3.5},
		{"mode", Mode, []float64{7, 2, 7, 2, 7}, 7},
		{"mode tie lowest wins", Mode, []float64{3, 1, 3, 1, 2}, 1},
		{"mode all distinct", Mode, []float64{5, 4, 9}, 4},
		{"min", Min, []float64{5, -1, 3}, -1},
		{"max", Max, []float64{5, -1, 3}, 5},
		{"single", Median, []float64{42}, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]float64(nil), tt.in...)
			assert.InDelta(t, tt.want, statisticFuncs[tt.stat](in), 1e-12)
		})
	}
}

func TestParseStatistic(t *testing.T) {
	for name, want := range map[string]Statistic{
		"box": Mean, "mean": Mean, "median": Median, "mode": Mode,
		"erode": Min, "min": Min, "dilate": Max, "max": Max,
	} {
		got, err := ParseStatistic(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseStatistic("mediana")
	assert.ErrorIs(t, err, ErrUnknownStatistic)
	assert.Contains(t, err.Error(), "[mediana]")
}

func TestStatisticFilterAtAreaLimit(t *testing.T) {
	f, err := NewStatisticFilter(Max, 1024, 1024, []int{0, 0}, true)
	require.NoError(t, err)
	dst := f.ApplyWithOptions(flatImage(2, 2, 10), Options{Workers: 1})
	assert.Equal(t, [3]uint8{10, 10, 10}, dst.RGBAt(0, 0))
}

func TestNewStatisticFilter(t *testing.T) {
	f, err := NewStatisticFilter(Min, 3, 5, []int{0, 4}, true)
	require.NoError(t, err)

	assert.Equal(t, "[erode]", f.Name())
	rows, cols := f.Size()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 5, cols)
	assert.Equal(t, Pivot{Row: 0, Col: 4}, f.Pivot())
	assert.True(t, f.ZeroExtension())
	assert.Equal(t, Clip, f.Limit())
	assert.Zero(t, f.Offset())
	assert.False(t, f.HistogramExpansion())
	assert.Nil(t, f.Kernel())
}

func TestNewStatisticFilterValidation(t *testing.T) {
	tests := []struct {
		name       string
		stat       Statistic
		rows, cols int
		pivot      []int
		want       error
	}{
		{"unknown statistic", Statistic(99), 3, 3, []int{1, 1}, ErrUnknownStatistic},
		{"zero rows", Median, 0, 3, []int{0, 0}, ErrEmptyKernel},
		{"negative cols", Median, 3, -1, []int{0, 0}, ErrEmptyKernel},
		{"area overflows int", Mean, math.MaxInt / 2, 4, []int{0, 0}, ErrKernelTooLarge},
		{"area above limit", Max, MaxKernelArea, 2, []int{0, 0}, ErrKernelTooLarge},
		{"pivot dimensions", Median, 3, 3, []int{1}, ErrPivotDimensions},
		{"pivot out of bounds", Median, 3, 3, []int{1, 3}, ErrPivotOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStatisticFilter(tt.stat, tt.rows, tt.cols, tt.pivot, false)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsInvalid(err))
		})
	}
}
