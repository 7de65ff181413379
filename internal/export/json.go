package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/nowdoing/internal/duration"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Records    []jsonEntry `json:"records"`
}

type jsonEntry struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Kind        string `json:"kind"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time,omitempty"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
	Running     bool   `json:"running,omitempty"`
}

func ToJSON(src Source, path string) error {
	rs := rows(src)
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(rs),
		Records:    make([]jsonEntry, 0, len(rs)),
	}

	for _, r := range rs {
		export.Records = append(export.Records, jsonEntry{
			ID:          r.id,
			Status:      r.status,
			Kind:        r.kind,
			StartTime:   r.start,
			EndTime:     r.end,
			DurationSec: r.secs,
			Duration:    duration.SecondsToString(r.secs),
			Running:     r.open,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
