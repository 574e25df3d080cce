package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	Input       string
	OutputDir   string
	Filters     []string
	Sequences   [][]string
	Grayscale   bool
	Negative    bool
	Workers     int
	LogLevel    string
	LogFormat   string
	Metrics     bool
	ShowVersion bool
}

// stringList collects a repeated flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, " ") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func parseFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var filters, sequences stringList
	fs.Var(&filters, "filter",
		"Filter to apply to the input, repeatable. A filter document, a .txt mask or a function filter such as [median,3,3,1,1,true]")
	fs.Var(&sequences, "sequence",
		"Space separated filters applied one after the other, repeatable")

	fs.StringVar(&cfg.OutputDir, "out",
		getEnv("WINFILTER_OUT", ""),
		"Directory for result images, defaults to the input directory (env: WINFILTER_OUT)")
	fs.BoolVar(&cfg.Grayscale, "grayscale", false, "Convert the input to grayscale before filtering")
	fs.BoolVar(&cfg.Negative, "negative", false, "Also write the RGB negative of the input")
	fs.IntVar(&cfg.Workers, "workers",
		getEnvInt("WINFILTER_WORKERS", 0),
		"Worker goroutines, 0 for the default (env: WINFILTER_WORKERS)")
	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("WINFILTER_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: WINFILTER_LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("WINFILTER_LOG_FORMAT", "text"),
		"Log format: json, text (env: WINFILTER_LOG_FORMAT)")
	fs.BoolVar(&cfg.Metrics, "metrics",
		getEnvBool("WINFILTER_METRICS", false),
		"Print filter metrics to stderr when done (env: WINFILTER_METRICS)")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, `%s - spatial window filters for images

Usage: %s [options] FILE

Options:
`, appName, appName)
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(stderr, `
Examples:
  %s -filter laplacian.json photo.png
  %s -filter "[median,3,3,1,1,true]" -filter sobel.txt photo.png
  %s -sequence "[erode,3,3,1,1,true] [dilate,3,3,1,1,true]" photo.png
`, appName, appName, appName)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Filters = filters
	for _, s := range sequences {
		cfg.Sequences = append(cfg.Sequences, strings.Fields(s))
	}
	if fs.NArg() > 0 {
		cfg.Input = fs.Arg(0)
	}
	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion {
		return nil
	}

	if cfg.Input == "" {
		return errors.New("missing input image")
	}
	if _, err := os.Stat(cfg.Input); err != nil {
		return fmt.Errorf("input image not found: %s", cfg.Input)
	}
	if len(cfg.Filters) == 0 && len(cfg.Sequences) == 0 && !cfg.Negative {
		return errors.New("nothing to do: use -filter, -sequence or -negative")
	}
	for _, s := range cfg.Sequences {
		if len(s) == 0 {
			return errors.New("empty filter sequence")
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("invalid worker count: %d", cfg.Workers)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
