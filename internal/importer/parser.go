package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
)

// ParsedData is the raw content of a file, before any column mapping.
type ParsedData struct {
	Headers []string
	Rows    [][]string
}

// ParseFile reads a CSV or JSON file. The format is picked from the
// filename extension.
func ParseFile(filename string, reader io.Reader) (*ParsedData, error) {
	switch strings.ToLower(path.Ext(filename)) {
	case ".csv":
		return parseCSV(reader)
	case ".json":
		return parseJSON(reader)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", path.Ext(filename))
	}
}

func parseCSV(reader io.Reader) (*ParsedData, error) {
	records, err := csv.NewReader(reader).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, errors.New("CSV file is empty")
	}

	if len(records) == 1 {
		return nil, errors.New("CSV file has no data rows")
	}

	return &ParsedData{Headers: records[0], Rows: records[1:]}, nil
}

// parseJSON expects an array of flat objects. Headers are the keys of the
// first object, sorted so column indexes are stable.
func parseJSON(reader io.Reader) (*ParsedData, error) {
	var data []map[string]any

	if err := json.NewDecoder(reader).Decode(&data); err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}

	if len(data) == 0 {
		return nil, errors.New("JSON file contains no records")
	}

	headers := make([]string, 0, len(data[0]))
	for key := range data[0] {
		headers = append(headers, key)
	}
	slices.Sort(headers)

	rows := make([][]string, 0, len(data))
	for _, record := range data {
		row := make([]string, len(headers))
		for i, header := range headers {
			if val, ok := record[header]; ok && val != nil {
				row[i] = fmt.Sprintf("%v", val)
			}
		}
		rows = append(rows, row)
	}

	return &ParsedData{Headers: headers, Rows: rows}, nil
}

// Column returns the index of the header matching name, ignoring case, or -1.
func (p *ParsedData) Column(name string) int {
	return slices.IndexFunc(p.Headers, func(h string) bool {
		return strings.EqualFold(strings.TrimSpace(h), name)
	})
}
