package corpus

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/labeleval/internal/model"
)

// FileImporter reads a local CSV or JSON Lines corpus
type FileImporter struct {
	Path string
}

// Obtain reads the whole file
func (f *FileImporter) Obtain(ctx context.Context) (*RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer func() { _ = file.Close() }()

	if fileFormat(f.Path) == "jsonl" {
		return ParseJSONLines(file)
	}
	return ParseCSV(file)
}

// ParseCSV reads a header row followed by records. Empty cells become missing values.
func ParseCSV(r io.Reader) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &RawTable{}, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	header = append([]string(nil), header...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	table := &RawTable{Columns: header}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("%w: csv line %d has %d fields, header has %d", model.ErrTypeMismatch, line, len(record), len(header))
		}

		row := make([]any, len(record))
		for i, cell := range record {
			if cell != "" {
				row[i] = cell
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ParseJSONLines reads one JSON object per line. A JSON array of objects is also accepted.
// Columns follow first appearance order; absent keys and null become missing values.
func ParseJSONLines(r io.Reader) (*RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}

	var objects []map[string]any
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrTypeMismatch, err)
		}
		for i, item := range items {
			obj, err := decodeObject(item)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			objects = append(objects, obj)
		}
	} else {
		scanner := bufio.NewScanner(bytes.NewReader(trimmed))
		scanner.Buffer(make([]byte, 0, 64*1024), maxPayloadBytes)
		for line := 1; scanner.Scan(); line++ {
			text := bytes.TrimSpace(scanner.Bytes())
			if len(text) == 0 {
				continue
			}
			obj, err := decodeObject(text)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			objects = append(objects, obj)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read json lines: %w", err)
		}
	}

	return fromObjects(objects, nil), nil
}

func decodeObject(data []byte) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", model.ErrTypeMismatch)
	}
	return obj, nil
}

// fromObjects builds a table from decoded objects. Known columns come first in the
// given order; extra keys follow in first-seen order, sorted within a row.
func fromObjects(objects []map[string]any, columns []string) *RawTable {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	for _, obj := range objects {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			if _, ok := index[k]; !ok {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			index[k] = len(columns)
			columns = append(columns, k)
		}
	}

	table := &RawTable{Columns: columns, Rows: make([][]any, 0, len(objects))}
	for _, obj := range objects {
		row := make([]any, len(columns))
		for k, v := range obj {
			row[index[k]] = v
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
