package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"comboselect/internal/service"
)

// CSVService parses uploaded CSV tables into the core dataset types. The
// expected retention layout mirrors the spreadsheet exports the instrument
// software produces: first column compound names, one column per condition.
type CSVService struct{}

func NewCSVService() *CSVService {
	return &CSVService{}
}

// RetentionTable is the parsed form of a retention-time CSV upload.
type RetentionTable struct {
	Labels    []string
	Compounds []string
	Columns   map[string][]float64
}

// ParseRetentionTable reads a CSV whose header row is "compound, <label 1>,
// <label 2>, ...". Empty or non-numeric cells become missing values; labels
// are taken verbatim, whitespace included, so mismatches against the
// capacity table surface instead of being papered over.
func (s *CSVService) ParseRetentionTable(r io.Reader) (*RetentionTable, error) {
	reader := csv.NewReader(r)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if len(headers) < 2 {
		return nil, fmt.Errorf("retention CSV needs a compound column plus at least one condition column")
	}

	table := &RetentionTable{
		Labels:  headers[1:],
		Columns: make(map[string][]float64, len(headers)-1),
	}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		if len(record) != len(headers) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", len(table.Compounds)+2, len(record), len(headers))
		}
		table.Compounds = append(table.Compounds, record[0])
		for i, label := range table.Labels {
			table.Columns[label] = append(table.Columns[label], parseCell(record[i+1]))
		}
	}
	return table, nil
}

// ParseCapacityTable reads a two-column CSV "condition, peak_capacity". The
// capacity must parse as a number; a malformed row fails the whole upload.
func (s *CSVService) ParseCapacityTable(r io.Reader) (service.PeakCapacities, error) {
	reader := csv.NewReader(r)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if len(headers) != 2 {
		return nil, fmt.Errorf("peak-capacity CSV needs exactly two columns, got %d", len(headers))
	}

	capacities := make(service.PeakCapacities)
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		row++
		value, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: peak capacity %q is not numeric", row, record[1])
		}
		capacities[record[0]] = value
	}
	return capacities, nil
}

// parseCell turns one retention cell into a float, mapping anything
// non-numeric to missing.
func parseCell(cell string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return service.Missing
	}
	return value
}
