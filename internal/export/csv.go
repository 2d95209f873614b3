package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/facet-dev/facet/internal/store"
)

var csvHeader = []string{"Date", "Start", "End", "Activity", "Tags", "Minutes", "Hours", "Notes"}

// ToCSV writes the export projection to a CSV file at path.
func ToCSV(rows []store.ExportRow, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Date,
			r.Start,
			r.End,
			r.Title,
			r.Tags,
			fmt.Sprintf("%d", r.Minutes),
			fmt.Sprintf("%.2f", r.Hours),
			r.Notes,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}
