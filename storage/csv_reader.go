package storage

import (
	"fmt"
	"io"
	"os"
	"strings"

	"rental-search/models"
)

const utf8BOM = "\ufeff"

// CSVReader reads seed rows from a CSV export.
//
// The format is line oriented: a header row followed by data rows, fields
// separated by commas, double-quoted when they contain commas, with "" as an
// escaped quote. Quoted fields cannot span lines.
type CSVReader struct {
	path string
}

// NewCSVReader returns a reader for the CSV file at path.
func NewCSVReader(path string) *CSVReader {
	return &CSVReader{path: path}
}

// ReadRows reads the whole file and returns its data rows keyed by header.
func (c *CSVReader) ReadRows() ([]models.CSVRow, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", c.path, err)
	}
	defer f.Close()

	rows, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("csv: parse %q: %w", c.path, err)
	}
	return rows, nil
}

// ParseCSV parses CSV text into rows keyed by header name. Blank lines are
// skipped, cells missing from short rows read as "", and cells beyond the
// header are ignored.
func ParseCSV(r io.Reader) ([]models.CSVRow, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, nil
	}

	headers := SplitLine(strings.TrimPrefix(lines[0], utf8BOM))
	rows := make([]models.CSVRow, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := SplitLine(line)
		row := make(models.CSVRow, len(headers))
		for i, h := range headers {
			if i < len(values) {
				row[h] = strings.TrimSpace(values[i])
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// SplitLine splits one CSV line on the commas that sit outside double quotes
// and unquotes every cell.
func SplitLine(line string) []string {
	var cells []string
	inQuotes := false
	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				cells = append(cells, unquote(line[start:i]))
				start = i + 1
			}
		}
	}
	return append(cells, unquote(line[start:]))
}

// unquote trims a cell and, when it is wrapped in double quotes, strips them
// and collapses "" to ".
func unquote(cell string) string {
	s := strings.TrimSpace(cell)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}
