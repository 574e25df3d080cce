// Package main implements winfilter, a command that applies spatial window
// filters and filter sequences to an image and writes every result next to
// the input.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gohugoio/winfilter"
)

const (
	Version = "0.1.0"
	appName = "winfilter"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		_, _ = fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

type result struct {
	label string
	img   *winfilter.Image
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if cfg.ShowVersion {
		_, _ = fmt.Fprintf(stdout, "%s %s\n", appName, Version)
		return nil
	}
	if err := validateFlags(cfg); err != nil {
		return err
	}

	logger := setupLogger(stderr, cfg.LogLevel, cfg.LogFormat)
	winfilter.SetLogger(logger)
	defer winfilter.SetLogger(nil)

	// Load everything first so configuration errors are reported before
	// any image work starts.
	filters := make([]*winfilter.Filter, 0, len(cfg.Filters))
	for _, arg := range cfg.Filters {
		f, err := winfilter.Load(arg)
		if err != nil {
			return err
		}
		filters = append(filters, f)
	}

	reg := prometheus.NewRegistry()
	metrics, err := winfilter.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	options := winfilter.Options{Workers: cfg.Workers, Metrics: metrics}

	sequences := make([]*winfilter.Sequence, 0, len(cfg.Sequences))
	for _, seq := range cfg.Sequences {
		s := winfilter.NewSequenceWithOptions(options)
		for _, arg := range seq {
			f, err := winfilter.Load(arg)
			if err != nil {
				return err
			}
			s.Add(f)
		}
		sequences = append(sequences, s)
	}

	src, err := decodeFile(cfg.Input)
	if err != nil {
		return err
	}
	if cfg.Grayscale {
		src = src.Grayscale()
	}
	logger.Info("image loaded", "path", cfg.Input, "width", src.Width, "height", src.Height)

	var results []result
	if cfg.Negative {
		results = append(results, result{label: "neg_rgb", img: src.Negative()})
	}

	filtered, err := winfilter.ApplyEach(ctx, src, options, filters...)
	if err != nil {
		return err
	}
	for i, img := range filtered {
		results = append(results, result{label: "filter-" + filters[i].Name(), img: img})
	}
	for _, s := range sequences {
		results = append(results, result{
			label: "sequence-" + strings.Join(s.Names(), "+"),
			img:   s.Apply(src),
		})
	}

	dir := cfg.OutputDir
	if dir == "" {
		dir = filepath.Dir(cfg.Input)
	}
	for _, r := range results {
		if r.img.Empty() {
			logger.Warn("skipping empty result, the kernel is larger than the image", "result", r.label)
			continue
		}
		path, err := save(r.img, dir, cfg.Input, r.label)
		if err != nil {
			return err
		}
		logger.Info("result saved", "result", r.label, "path", path,
			"width", r.img.Width, "height", r.img.Height)
	}

	if cfg.Metrics {
		return writeMetrics(reg, stderr)
	}
	return nil
}

func decodeFile(path string) (*winfilter.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return winfilter.FromImage(img), nil
}

// save writes img as <dir>/<stem>_<label><ext>, keeping the input format
// when it can be encoded and falling back to PNG otherwise.
func save(img *winfilter.Image, dir, input, label string) (string, error) {
	ext := strings.ToLower(filepath.Ext(input))
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	var encode func(io.Writer, image.Image) error
	switch ext {
	case ".jpg", ".jpeg":
		encode = func(w io.Writer, m image.Image) error {
			return jpeg.Encode(w, m, &jpeg.Options{Quality: 95})
		}
	case ".bmp":
		encode = bmp.Encode
	case ".tif", ".tiff":
		encode = func(w io.Writer, m image.Image) error {
			return tiff.Encode(w, m, nil)
		}
	default:
		ext = ".png"
		encode = png.Encode
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, label, ext))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := encode(f, img); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	return path, f.Close()
}

func writeMetrics(reg *prometheus.Registry, w io.Writer) error {
	mfs, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
