package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/facet-dev/facet/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Entries    []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	Date    string  `json:"date"`
	Start   string  `json:"start"`
	End     string  `json:"end,omitempty"`
	Title   string  `json:"title"`
	Tags    string  `json:"tags,omitempty"`
	Minutes int64   `json:"minutes"`
	Hours   float64 `json:"hours"`
	Notes   string  `json:"notes,omitempty"`
}

// ToJSON writes the export projection to a JSON file at path.
func ToJSON(rows []store.ExportRow, path string) error {
	out := jsonExport{
		ExportedAt: time.Now().Format(time.RFC3339),
		Count:      len(rows),
	}
	for _, r := range rows {
		out.Entries = append(out.Entries, jsonEntry{
			Date:    r.Date,
			Start:   r.Start,
			End:     r.End,
			Title:   r.Title,
			Tags:    r.Tags,
			Minutes: r.Minutes,
			Hours:   r.Hours,
			Notes:   r.Notes,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
