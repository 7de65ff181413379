package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/sadopc/nowdoing/internal/duration"
)

func ToCSV(src Source, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Status", "Kind", "Start", "End", "Duration (s)", "Duration"}); err != nil {
		return err
	}

	for _, r := range rows(src) {
		rec := []string{
			r.id,
			r.status,
			r.kind,
			r.start,
			r.end,
			fmt.Sprintf("%d", r.secs),
			duration.SecondsToString(r.secs),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
