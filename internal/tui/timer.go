package tui

import (
	"github.com/sadopc/nowdoing/internal/duration"
	"github.com/sadopc/nowdoing/internal/tracker"
)

// projection is the display state derived from the tracker on every tick. It
// is never persisted.
type projection struct {
	status   tracker.Status
	record   tracker.Record
	elapsed  int64
	statuses []tracker.Status
	records  []tracker.Record
	spans    []int64 // elapsed seconds per record, same order as records
	today    []tracker.TodayStat
	saveErr  error
	err      error
}

func project(t *tracker.Tracker) projection {
	snap := t.Snapshot()
	p := projection{
		statuses: snap.Statuses,
		records:  snap.Records,
		spans:    make([]int64, len(snap.Records)),
		today:    t.TodayStats(),
		saveErr:  t.LastSaveError(),
	}
	for i, r := range snap.Records {
		p.spans[i] = t.ElapsedSeconds(r)
	}

	status, err := t.CurrentStatus()
	if err != nil {
		p.err = err
		return p
	}
	record, err := t.CurrentRecord()
	if err != nil {
		p.err = err
		return p
	}
	p.status = status
	p.record = record
	p.elapsed = t.ElapsedSeconds(record)
	return p
}

func (p projection) elapsedString() string {
	return duration.SecondsToString(p.elapsed)
}

// todayTotal sums today's time over active statuses only.
func (p projection) todayTotal() int64 {
	kinds := make(map[string]tracker.Kind, len(p.statuses))
	for _, s := range p.statuses {
		kinds[s.Name] = s.Kind
	}
	var total int64
	for _, st := range p.today {
		if kinds[st.StatusName] == tracker.KindActive {
			total += st.DurationS
		}
	}
	return total
}

// statusFor resolves a name against the projected list. ok is false for
// dangling references.
func (p projection) statusFor(name string) (tracker.Status, bool) {
	for _, s := range p.statuses {
		if s.Name == name {
			return s, true
		}
	}
	return tracker.Status{}, false
}
