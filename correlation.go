package winfilter

import "gonum.org/v1/gonum/floats"

// correlate returns the per-channel sum of the window weighted by the
// kernel. The kernel is not flipped.
func (f *Filter) correlate(w *window) [3]float64 {
	return [3]float64{
		floats.Dot(w.samples[0], f.weights[0]),
		floats.Dot(w.samples[1], f.weights[1]),
		floats.Dot(w.samples[2], f.weights[2]),
	}
}
