package winfilter

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Statistic is a window aggregate used by function filters.
type Statistic int

// Statistics.
const (
	// Mean is the arithmetic mean (box filter).
	Mean Statistic = iota
	// Median averages the two middle values when the window has an even size.
	Median
	// Mode is the most frequent value. Ties go to the lowest value.
	Mode
	// Min is the minimum (erosion).
	Min
	// Max is the maximum (dilation).
	Max
)

var statisticNames = map[Statistic]string{
	Mean:   "box",
	Median: "median",
	Mode:   "mode",
	Min:    "erode",
	Max:    "dilate",
}

var statisticAliases = map[string]Statistic{
	"box":    Mean,
	"mean":   Mean,
	"median": Median,
	"mode":   Mode,
	"erode":  Min,
	"min":    Min,
	"dilate": Max,
	"max":    Max,
}

func (s Statistic) String() string {
	if n, ok := statisticNames[s]; ok {
		return n
	}
	return "unknown"
}

// ParseStatistic returns the statistic for a function filter name.
// Accepted names are box, mean, median, mode, erode, min, dilate and max.
func ParseStatistic(name string) (Statistic, error) {
	s, ok := statisticAliases[name]
	if !ok {
		return 0, invalid(fmt.Sprintf("[%s]", name), "name", ErrUnknownStatistic)
	}
	return s, nil
}

// NewStatisticFilter returns a function filter computing stat over a
// rows x cols window. Function filters always clip, use no offset and no
// histogram expansion.
func NewStatisticFilter(s Statistic, rows, cols int, pivot []int, zeroExtension bool) (*Filter, error) {
	agg, ok := statisticFuncs[s]
	if !ok {
		return nil, invalidf("", "name", ErrUnknownStatistic, "%d", int(s))
	}
	name := "[" + s.String() + "]"
	if err := checkArea(name, rows, cols); err != nil {
		return nil, err
	}
	p, err := checkPivot(name, pivot, rows, cols)
	if err != nil {
		return nil, err
	}

	f := &Filter{
		name:          name,
		rows:          rows,
		cols:          cols,
		pivot:         p,
		zeroExtension: zeroExtension,
		limit:         Clip,
		op: func(w *window) [3]float64 {
			return [3]float64{agg(w.samples[0]), agg(w.samples[1]), agg(w.samples[2])}
		},
	}
	Logger().Debug("filter created", "filter", name, "rows", rows, "cols", cols,
		"pivot", fmt.Sprintf("%d,%d", p.Row, p.Col))
	return f, nil
}

// The aggregates may reorder x.
var statisticFuncs = map[Statistic]func(x []float64) float64{
	Mean:   func(x []float64) float64 { return stat.Mean(x, nil) },
	Median: median,
	Mode:   mode,
	Min:    floats.Min,
	Max:    floats.Max,
}

func median(x []float64) float64 {
	sort.Float64s(x)
	n := len(x)
	if n%2 == 1 {
		return x[n/2]
	}
	return (x[n/2-1] + x[n/2]) / 2
}

func mode(x []float64) float64 {
	sort.Float64s(x)
	best, bestCount := x[0], 0
	for i := 0; i < len(x); {
		j := i
		for j < len(x) && x[j] == x[i] {
			j++
		}
		// Strictly greater keeps the lowest value on ties.
		if j-i > bestCount {
			best, bestCount = x[i], j-i
		}
		i = j
	}
	return best
}
