package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// WriteCSV renders a report as three CSV sections separated by blank lines:
// city totals, communities and infrastructure.
func WriteCSV(out io.Writer, r Report) error {
	w := csv.NewWriter(out)

	rows := [][]string{
		{"City", r.City},
		{"Year", strconv.Itoa(r.Year)},
		{"Total Population", strconv.Itoa(r.Population)},
		{},
		{"Community", "Percentage", "Trend (%)", "Year"},
	}
	for _, c := range r.Communities {
		rows = append(rows, []string{c.Name, formatFloat(c.Percentage), formatFloat(c.Trend), strconv.Itoa(c.Year)})
	}
	rows = append(rows, []string{}, []string{"Infrastructure", "Count", "Year-over-Year Change (%)"})
	for _, i := range r.Infrastructure {
		rows = append(rows, []string{i.Type, strconv.Itoa(i.Count), formatFloat(i.YearOverYearChange)})
	}

	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// CSVWriter writes reports to a file. It is safe for concurrent use.
type CSVWriter struct {
	mu   sync.Mutex
	file *os.File
}

// NewCSVWriter creates (or truncates) the file at path. Intermediate
// directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	return &CSVWriter{file: f}, nil
}

// Write appends the report to the file.
func (c *CSVWriter) Write(r Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return WriteCSV(c.file, r)
}

// Close closes the underlying file.
func (c *CSVWriter) Close() error {
	return c.file.Close()
}
