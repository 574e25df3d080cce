package winfilter

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Filter document fields.
const (
	fieldKernel             = "kernel"
	fieldPivot              = "pivot"
	fieldZeroExtension      = "zero_extension"
	fieldLimitFunction      = "limit_function"
	fieldOffset             = "offset"
	fieldHistogramExpansion = "histogram_expansion"
)

// Load returns the filter described by arg: a bracketed function filter
// such as "[median,3,3,1,1,true]", a plain text mask (.txt) or a filter
// document.
func Load(arg string) (*Filter, error) {
	if IsInline(arg) {
		return ParseInline(arg)
	}
	if strings.EqualFold(filepath.Ext(arg), ".txt") {
		f, err := os.Open(arg)
		if err != nil {
			return nil, fmt.Errorf("open mask: %w", err)
		}
		defer f.Close()
		return ParseMask(baseName(arg), f)
	}
	return LoadFile(arg)
}

// LoadFile reads a filter document. The filter is named after the file's
// base name without extension.
func LoadFile(path string) (*Filter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filter: %w", err)
	}
	return Parse(baseName(path), data)
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Parse decodes a JSON (or YAML) filter document:
//
//	{
//	  "kernel": [[0, -1, 0], [-1, 4, -1], [0, -1, 0]],
//	  "pivot": [1, 1],
//	  "zero_extension": true,
//	  "limit_function": "absolute",
//	  "offset": 0,
//	  "histogram_expansion": false
//	}
//
// A kernel cell is either a number or an array of 3 numbers, one per channel.
// The limit function name must be spelled exactly as in [ParseLimitFunction].
func Parse(name string, data []byte) (*Filter, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, invalidf(name, "document", ErrMalformedDocument, "%v", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, invalidf(name, "document", ErrMalformedDocument, "expected an object")
	}

	fields := make(map[string]*yaml.Node)
	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		fields[root.Content[i].Value] = root.Content[i+1]
	}
	for _, f := range []string{fieldKernel, fieldPivot, fieldZeroExtension, fieldLimitFunction, fieldOffset, fieldHistogramExpansion} {
		if _, ok := fields[f]; !ok {
			return nil, invalid(name, f, ErrMissingField)
		}
	}

	var (
		cfg Config
		err error
	)
	if cfg.Kernel, err = decodeKernel(name, fields[fieldKernel]); err != nil {
		return nil, err
	}
	if cfg.Pivot, err = decodePivot(name, fields[fieldPivot]); err != nil {
		return nil, err
	}
	if cfg.ZeroExtension, err = decodeBool(name, fieldZeroExtension, fields[fieldZeroExtension]); err != nil {
		return nil, err
	}
	if cfg.HistogramExpansion, err = decodeBool(name, fieldHistogramExpansion, fields[fieldHistogramExpansion]); err != nil {
		return nil, err
	}

	n := fields[fieldLimitFunction]
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" {
		return nil, invalidf(name, fieldLimitFunction, ErrUnknownLimitFunction, "%q", n.Value)
	}
	if cfg.Limit, err = ParseLimitFunction(n.Value); err != nil {
		return nil, invalidf(name, fieldLimitFunction, ErrUnknownLimitFunction, "%q", n.Value)
	}

	n = fields[fieldOffset]
	if !isInt(n) {
		return nil, invalidf(name, fieldOffset, ErrOffsetNotInteger, "%q", n.Value)
	}
	if err := n.Decode(&cfg.Offset); err != nil {
		return nil, invalidf(name, fieldOffset, ErrOffsetNotInteger, "%v", err)
	}

	return NewFilter(name, cfg)
}

func decodeKernel(name string, n *yaml.Node) ([][][]float64, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, invalid(name, fieldKernel, ErrKernelNotNumeric)
	}
	kernel := make([][][]float64, 0, len(n.Content))
	for i, rowNode := range n.Content {
		if rowNode.Kind != yaml.SequenceNode {
			return nil, invalidf(name, fieldKernel, ErrKernelNotNumeric, "row %d", i)
		}
		row := make([][]float64, 0, len(rowNode.Content))
		for j, cellNode := range rowNode.Content {
			var cell []float64
			switch cellNode.Kind {
			case yaml.ScalarNode:
				v, ok := decodeNumber(cellNode)
				if !ok {
					return nil, invalidf(name, fieldKernel, ErrKernelNotNumeric, "cell (%d,%d)", i, j)
				}
				cell = []float64{v}
			case yaml.SequenceNode:
				for _, c := range cellNode.Content {
					v, ok := decodeNumber(c)
					if !ok {
						return nil, invalidf(name, fieldKernel, ErrKernelNotNumeric, "cell (%d,%d)", i, j)
					}
					cell = append(cell, v)
				}
			default:
				return nil, invalidf(name, fieldKernel, ErrKernelNotNumeric, "cell (%d,%d)", i, j)
			}
			row = append(row, cell)
		}
		kernel = append(kernel, row)
	}
	return kernel, nil
}

func decodePivot(name string, n *yaml.Node) ([]int, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, invalid(name, fieldPivot, ErrPivotDimensions)
	}
	if len(n.Content) != 2 {
		return nil, invalidf(name, fieldPivot, ErrPivotDimensions, "got %d", len(n.Content))
	}
	pivot := make([]int, 2)
	for i, c := range n.Content {
		if !isInt(c) {
			return nil, invalidf(name, fieldPivot, ErrPivotNotInteger, "%q", c.Value)
		}
		if err := c.Decode(&pivot[i]); err != nil {
			return nil, invalidf(name, fieldPivot, ErrPivotNotInteger, "%v", err)
		}
	}
	return pivot, nil
}

func decodeBool(name, field string, n *yaml.Node) (bool, error) {
	var b bool
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!bool" {
		return false, invalidf(name, field, ErrNotBoolean, "%q", n.Value)
	}
	if err := n.Decode(&b); err != nil {
		return false, invalidf(name, field, ErrNotBoolean, "%v", err)
	}
	return b, nil
}

func decodeNumber(n *yaml.Node) (float64, bool) {
	if n.Kind != yaml.ScalarNode {
		return 0, false
	}
	if t := n.ShortTag(); t != "!!int" && t != "!!float" {
		return 0, false
	}
	var v float64
	if err := n.Decode(&v); err != nil {
		return 0, false
	}
	return v, true
}

func isInt(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!int"
}

// ParseInline parses a function filter of the form
// [name,rows,cols,pivotRow,pivotCol,zeroExtension], e.g. "[median,3,3,1,1,true]".
func ParseInline(s string) (*Filter, error) {
	if !IsInline(s) {
		return nil, invalidf("", "function filter", ErrInlineSyntax, "%q is not enclosed in brackets", s)
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != 6 {
		return nil, invalidf("", "function filter", ErrInlineSyntax, "%q has %d fields, want 6", s, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	stat, err := ParseStatistic(parts[0])
	if err != nil {
		return nil, err
	}
	name := "[" + parts[0] + "]"

	var dims [2]int
	for i, p := range parts[1:3] {
		if dims[i], err = strconv.Atoi(p); err != nil {
			return nil, invalidf(name, "kernel", ErrInlineSyntax, "size %q is not an integer", p)
		}
	}
	pivot := make([]int, 2)
	for i, p := range parts[3:5] {
		if pivot[i], err = strconv.Atoi(p); err != nil {
			return nil, invalidf(name, "pivot", ErrPivotNotInteger, "%q", p)
		}
	}

	var zeroExtension bool
	switch strings.ToLower(parts[5]) {
	case "true":
		zeroExtension = true
	case "false":
	default:
		return nil, invalidf(name, fieldZeroExtension, ErrNotBoolean, "%q must be true or false", parts[5])
	}

	return NewStatisticFilter(stat, dims[0], dims[1], pivot, zeroExtension)
}

// IsInline reports whether s uses the bracketed function filter syntax.
func IsInline(s string) bool {
	return len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']'
}

// ParseMask reads a plain text mask: the number of rows and the number of
// columns on their own lines, followed by one line of whitespace separated
// weights per row. The resulting correlation filter is centered, zero
// extended and clipped.
func ParseMask(name string, r io.Reader) (*Filter, error) {
	sc := bufio.NewScanner(r)
	line := 0
	next := func() (string, bool) {
		for sc.Scan() {
			line++
			if s := strings.TrimSpace(sc.Text()); s != "" {
				return s, true
			}
		}
		return "", false
	}

	var dims [2]int
	for i := range dims {
		s, ok := next()
		if !ok {
			return nil, invalidf(name, "mask", ErrMalformedDocument, "missing kernel size")
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return nil, invalidf(name, "mask", ErrMalformedDocument, "line %d: invalid size %q", line, s)
		}
		dims[i] = n
	}
	rows, cols := dims[0], dims[1]
	if err := checkArea(name, rows, cols); err != nil {
		return nil, err
	}

	kernel := make([][][]float64, rows)
	for i := range kernel {
		s, ok := next()
		if !ok {
			return nil, invalidf(name, "mask", ErrMalformedDocument, "expected %d rows, got %d", rows, i)
		}
		fields := strings.Fields(s)
		if len(fields) != cols {
			return nil, invalidf(name, fieldKernel, ErrRaggedKernel, "line %d has %d values, want %d", line, len(fields), cols)
		}
		kernel[i] = make([][]float64, cols)
		for j, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil || math.IsNaN(v) {
				return nil, invalidf(name, fieldKernel, ErrKernelNotNumeric, "line %d: %q", line, field)
			}
			kernel[i][j] = []float64{v}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read mask: %w", err)
	}

	return NewFilter(name, Config{
		Kernel:        kernel,
		Pivot:         []int{rows / 2, cols / 2},
		ZeroExtension: true,
		Limit:         Clip,
	})
}
