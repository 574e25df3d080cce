package winfilter

import "math"

// LimitFunction maps raw filter results into the displayable channel range.
type LimitFunction int

// Limit functions.
const (
	// Clip clamps every value to [0, 255].
	Clip LimitFunction = iota
	// Absolute takes the absolute value, then clamps to [0, 255].
	Absolute
	// Renormalize linearly rescales each channel of the whole image to span [0, 255].
	Renormalize
	// AbsRenormalize takes the absolute value, then renormalizes.
	AbsRenormalize
)

var limitFunctionNames = map[LimitFunction]string{
	Clip:           "clip",
	Absolute:       "absolute",
	Renormalize:    "renormalize",
	AbsRenormalize: "abs-renormalize",
}

// String returns the name used for the limit function in filter files.
func (l LimitFunction) String() string {
	if s, ok := limitFunctionNames[l]; ok {
		return s
	}
	return "unknown"
}

func (l LimitFunction) valid() bool {
	_, ok := limitFunctionNames[l]
	return ok
}

// ParseLimitFunction returns the limit function with the given name, one of
// clip, absolute, renormalize or abs-renormalize. Names must match exactly.
func ParseLimitFunction(name string) (LimitFunction, error) {
	for l, s := range limitFunctionNames {
		if s == name {
			return l, nil
		}
	}
	return 0, invalidf("", "limit_function", ErrUnknownLimitFunction, "%q", name)
}

// apply transforms raw in place. raw holds interleaved RGB samples.
func (l LimitFunction) apply(raw []float64) {
	switch l {
	case Absolute:
		for i, v := range raw {
			raw[i] = clamp(math.Abs(v))
		}
	case Renormalize:
		stretch(raw)
	case AbsRenormalize:
		for i, v := range raw {
			raw[i] = math.Abs(v)
		}
		stretch(raw)
	default:
		for i, v := range raw {
			raw[i] = clamp(v)
		}
	}
}

// stretch rescales each channel of the interleaved samples so that its
// minimum maps to 0 and its maximum to 255. A constant channel keeps its
// value, clamped to [0, 255].
func stretch(raw []float64) {
	for c := 0; c < 3; c++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := c; i < len(raw); i += 3 {
			lo = math.Min(lo, raw[i])
			hi = math.Max(hi, raw[i])
		}
		if !(hi > lo) {
			for i := c; i < len(raw); i += 3 {
				raw[i] = clamp(raw[i])
			}
			continue
		}
		scale := 255 / (hi - lo)
		for i := c; i < len(raw); i += 3 {
			raw[i] = (raw[i] - lo) * scale
		}
	}
}

// expandHistogram stretches each channel of the 8-bit samples to [0, 255].
func expandHistogram(pix []uint8) {
	raw := make([]float64, len(pix))
	for i, v := range pix {
		raw[i] = float64(v)
	}
	stretch(raw)
	for i, v := range raw {
		pix[i] = toUint8(v)
	}
}

func clamp(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 255:
		return 255
	}
	return v
}

// toUint8 rounds half to even and clamps to the channel range.
func toUint8(v float64) uint8 {
	return uint8(clamp(math.RoundToEven(v)))
}
