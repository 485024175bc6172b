package predict

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Report is the model's classification report as exported next to the
// trained artifact: one row per class or average, one column per metric.
type Report struct {
	Columns []string    `json:"columns"`
	Rows    []ReportRow `json:"rows"`
}

// ReportRow holds the metric values for one label, in column order.
type ReportRow struct {
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

// ReadReport parses a classification report CSV. The first record is the
// header; its first cell names the label column and may be empty.
func ReadReport(r io.Reader) (Report, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Report{}, errors.New("classification report is empty")
	}
	if err != nil {
		return Report{}, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 {
		return Report{}, fmt.Errorf("classification report needs a label and at least one metric column, got %d columns", len(header))
	}

	rep := Report{Columns: header[1:], Rows: []ReportRow{}}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Report{}, fmt.Errorf("read row %d: %w", len(rep.Rows)+1, err)
		}
		rep.Rows = append(rep.Rows, ReportRow{
			Label:  strings.TrimSpace(rec[0]),
			Values: rec[1:],
		})
	}
	return rep, nil
}

// LoadReport reads a classification report file.
func LoadReport(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, err
	}
	defer f.Close()

	rep, err := ReadReport(f)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", path, err)
	}
	return rep, nil
}

// Value returns the named metric for label.
func (r Report) Value(label, column string) (string, bool) {
	col := -1
	for i, c := range r.Columns {
		if c == column {
			col = i
			break
		}
	}
	if col < 0 {
		return "", false
	}
	for _, row := range r.Rows {
		if row.Label == label {
			return row.Values[col], true
		}
	}
	return "", false
}
