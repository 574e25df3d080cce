/*
Package winfilter applies spatial window filters to RGB images: weighted
kernel correlation and window statistics (mean, median, mode, min, max).

Basic usage:

	// 1. Load filters from a filter document and from the inline syntax.
	edges, err := winfilter.LoadFile("laplacian.json")
	if err != nil {
		return err
	}
	median, err := winfilter.ParseInline("[median,3,3,1,1,true]")
	if err != nil {
		return err
	}

	// 2. Convert a decoded image and apply the filters in order.
	src := winfilter.FromImage(img)
	dst := winfilter.NewSequence(median, edges).Apply(src)

	// 3. dst implements image.Image and can be encoded directly.
	png.Encode(w, dst)
*/
package winfilter

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Options is the parameters passed to filters when they are applied.
type Options struct {
	// Workers is the number of goroutines that compute output rows.
	Workers int
	// Metrics, if set, records every filter application.
	Metrics *Metrics
}

func (o *Options) init() {
	if o.Workers < 1 {
		o.Workers = min(6, runtime.NumCPU())
	}
}

var defaultOptions = Options{}

func init() {
	defaultOptions.init()
}

// Sequence is a list of filters applied one after the other, each filter
// reading the output of the previous one.
type Sequence struct {
	filters []*Filter
	options Options
}

// NewSequence creates a sequence of the given filters.
func NewSequence(filters ...*Filter) *Sequence {
	return &Sequence{
		filters: filters,
		options: defaultOptions,
	}
}

// NewSequenceWithOptions creates a sequence of the given filters applied with options.
func NewSequenceWithOptions(options Options, filters ...*Filter) *Sequence {
	options.init()
	return &Sequence{
		filters: filters,
		options: options,
	}
}

// Add appends filters to the sequence.
func (s *Sequence) Add(filters ...*Filter) {
	s.filters = append(s.filters, filters...)
}

// Len returns the number of filters in the sequence.
func (s *Sequence) Len() int {
	return len(s.filters)
}

// Names returns the filter names in order.
func (s *Sequence) Names() []string {
	names := make([]string, len(s.filters))
	for i, f := range s.filters {
		names[i] = f.Name()
	}
	return names
}

// Bounds returns the size of the result of applying the whole sequence to
// a width x height image.
//
// Example:
//
//	f, _ := winfilter.ParseInline("[box,3,3,1,1,false]")
//	s := winfilter.NewSequence(f, f)
//	w, h := s.Bounds(100, 200) // 96, 196
func (s *Sequence) Bounds(width, height int) (int, int) {
	for _, f := range s.filters {
		width, height = f.Bounds(width, height)
	}
	return width, height
}

// Apply applies all the filters in order and returns the result. Each stage
// is fully computed before the next one starts. An empty sequence returns
// a copy of src.
func (s *Sequence) Apply(src *Image) *Image {
	if len(s.filters) == 0 {
		return src.Clone()
	}
	img := src
	for _, f := range s.filters {
		img = f.ApplyWithOptions(img, s.options)
	}
	return img
}

// ApplyEach applies each filter independently to src, concurrently, and
// returns the results in the order of filters. src is only read. If ctx is
// canceled, filters that have not started are skipped and ctx.Err() is
// returned.
func ApplyEach(ctx context.Context, src *Image, options Options, filters ...*Filter) ([]*Image, error) {
	options.init()
	results := make([]*Image, len(filters))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(options.Workers)
	for i, f := range filters {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// The filters already run in parallel with each other.
			results[i] = f.ApplyWithOptions(src, Options{Workers: 1, Metrics: options.Metrics})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
