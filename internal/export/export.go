package export

import (
	"time"

	"github.com/sadopc/nowdoing/internal/tracker"
)

// Source is the read side of the tracker the exporters need.
type Source interface {
	Statuses() []tracker.Status
	Records() []tracker.Record
	ElapsedSeconds(r tracker.Record) int64
}

type row struct {
	id     string
	status string
	kind   string
	start  string
	end    string
	secs   int64
	open   bool
}

// rows flattens records oldest first, resolving each status name against the
// current list.
func rows(src Source) []row {
	kinds := make(map[string]tracker.Kind)
	for _, s := range src.Statuses() {
		kinds[s.Name] = s.Kind
	}

	records := src.Records()
	out := make([]row, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		kind := "unknown"
		if k, ok := kinds[r.StatusName]; ok {
			kind = string(k)
		}
		end := ""
		if r.FinishedAt != nil {
			end = r.FinishedAt.Local().Format(time.RFC3339)
		}
		out = append(out, row{
			id:     r.ID,
			status: r.StatusName,
			kind:   kind,
			start:  r.StartedAt.Local().Format(time.RFC3339),
			end:    end,
			secs:   src.ElapsedSeconds(r),
			open:   r.Open(),
		})
	}
	return out
}
