package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/bestfit/internal/fit"
)

// DatasetFormat is the encoding of a dataset file.
type DatasetFormat int

const (
	DatasetCSV DatasetFormat = iota
	DatasetJSON
	DatasetYAML
)

func (f DatasetFormat) String() string {
	switch f {
	case DatasetCSV:
		return "csv"
	case DatasetJSON:
		return "json"
	case DatasetYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// DetectDatasetFormat picks the format from the file extension. Anything
// unrecognised is read as CSV.
func DetectDatasetFormat(path string) DatasetFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DatasetJSON
	case ".yaml", ".yml":
		return DatasetYAML
	default:
		return DatasetCSV
	}
}

// LoadDataset reads and validates the dataset at path. A path of "-" reads
// CSV from stdin.
func LoadDataset(path string) (fit.Dataset, error) {
	if path == "-" {
		return DecodeDataset(os.Stdin, DatasetCSV)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{ID: path}
		}
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	data, err := DecodeDataset(f, DetectDatasetFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// DecodeDataset reads a dataset in the given format and validates it.
//
// CSV rows hold "x,y" or a single y; a non-numeric first row is taken as a
// header and lines starting with '#' are skipped. JSON and YAML hold a list
// of [x, y] pairs, a list of {x, y} objects or a plain list of y values.
// Bare y values are numbered from 1 with fit.Sequential.
func DecodeDataset(r io.Reader, format DatasetFormat) (fit.Dataset, error) {
	var (
		data fit.Dataset
		err  error
	)
	switch format {
	case DatasetCSV:
		data, err = decodeCSV(r)
	case DatasetJSON:
		var v any
		if err = json.NewDecoder(r).Decode(&v); err == nil {
			data, err = datasetFromValue(v)
		}
	case DatasetYAML:
		var v any
		if err = yaml.NewDecoder(r).Decode(&v); err == nil {
			data, err = datasetFromValue(v)
		}
	default:
		err = fmt.Errorf("unsupported dataset format: %s", format)
	}
	if err != nil {
		if err == io.EOF {
			err = fmt.Errorf("empty %s dataset", format)
		}
		return nil, err
	}

	if err := data.Validate(); err != nil {
		return nil, err
	}
	return data, nil
}

func decodeCSV(r io.Reader) (fit.Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		points []fit.Point
		values []float64
	)
	for row := 0; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		nums, err := parseFields(record)
		if err != nil {
			if row == 0 {
				continue // header
			}
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		switch {
		case len(nums) == 1 && points == nil:
			values = append(values, nums[0])
		case len(nums) >= 2 && values == nil:
			points = append(points, fit.Point{X: nums[0], Y: nums[1]})
		default:
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: mixed single-column and x,y rows", line)
		}
	}

	if values != nil {
		return fit.Sequential(values, 1), nil
	}
	return points, nil
}

func parseFields(record []string) ([]float64, error) {
	nums := make([]float64, 0, len(record))
	for _, field := range record {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", field)
		}
		nums = append(nums, v)
	}
	if len(nums) == 0 {
		return nil, fmt.Errorf("empty row")
	}
	return nums, nil
}

// datasetFromValue converts the generic result of a JSON or YAML decode.
func datasetFromValue(v any) (fit.Dataset, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("dataset must be a list, got %T", v)
	}
	if len(list) == 0 {
		return fit.Dataset{}, nil
	}

	if _, scalar := toFloat(list[0]); scalar {
		values := make([]float64, len(list))
		for i, item := range list {
			f, ok := toFloat(item)
			if !ok {
				return nil, fmt.Errorf("item %d: expected a number, got %T", i, item)
			}
			values[i] = f
		}
		return fit.Sequential(values, 1), nil
	}

	data := make(fit.Dataset, len(list))
	for i, item := range list {
		p, err := pointFromValue(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		data[i] = p
	}
	return data, nil
}

func pointFromValue(v any) (fit.Point, error) {
	switch item := v.(type) {
	case []any:
		if len(item) != 2 {
			return fit.Point{}, fmt.Errorf("expected [x, y], got %d values", len(item))
		}
		x, okX := toFloat(item[0])
		y, okY := toFloat(item[1])
		if !okX || !okY {
			return fit.Point{}, fmt.Errorf("expected numeric [x, y]")
		}
		return fit.Point{X: x, Y: y}, nil
	case map[string]any:
		x, okX := toFloat(item["x"])
		y, okY := toFloat(item["y"])
		if !okX || !okY {
			return fit.Point{}, fmt.Errorf("expected numeric x and y keys")
		}
		return fit.Point{X: x, Y: y}, nil
	default:
		return fit.Point{}, fmt.Errorf("expected a point, got %T", v)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// DatasetFromPairs builds a dataset from [x, y] pairs, or from values
// numbered from start when pairs is empty.
func DatasetFromPairs(pairs [][]float64, values []float64, start int) (fit.Dataset, error) {
	if len(pairs) > 0 && len(values) > 0 {
		return nil, &ValidationError{Field: "data", Reason: "must be points or values, not both"}
	}
	if len(pairs) == 0 {
		return fit.Sequential(values, start), nil
	}

	data := make(fit.Dataset, len(pairs))
	for i, p := range pairs {
		if len(p) != 2 {
			return nil, &ValidationError{Field: fmt.Sprintf("points[%d]", i), Reason: "must have exactly two numbers"}
		}
		data[i] = fit.Point{X: p[0], Y: p[1]}
	}
	return data, nil
}
