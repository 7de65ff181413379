package tracker

import (
	"fmt"
	"math"
	"time"
)

// CurrentRecord returns the open interval at the head of the history.
func (t *Tracker) CurrentRecord() (Record, error) {
	if len(t.records) == 0 {
		return Record{}, fmt.Errorf("current record: %w", ErrInvariant)
	}
	return t.records[0], nil
}

// ElapsedSeconds returns the frozen duration when set, otherwise the whole
// seconds between start and finish (or now for the open record).
func (t *Tracker) ElapsedSeconds(r Record) int64 {
	return elapsedAt(r, t.now())
}

func elapsedAt(r Record, now time.Time) int64 {
	if r.DurationS != nil {
		return *r.DurationS
	}
	end := now
	if r.FinishedAt != nil {
		end = *r.FinishedAt
	}
	return floorSeconds(end.Sub(r.StartedAt))
}

func floorSeconds(d time.Duration) int64 {
	s := int64(d / time.Second)
	if d%time.Second < 0 {
		s--
	}
	return s
}

// Start closes the current interval, freezing its duration, and opens a new
// one for name. Nothing changes when name is not a known status.
func (t *Tracker) Start(name string) error {
	if _, ok := t.lookup(name); !ok {
		return fmt.Errorf("start %q: %w", name, ErrNotFound)
	}
	if len(t.records) == 0 {
		return fmt.Errorf("start %q: %w", name, ErrInvariant)
	}

	now := t.now()
	elapsed := elapsedAt(t.records[0], now)
	t.records[0].FinishedAt = &now
	t.records[0].DurationS = &elapsed

	next := Record{ID: t.newID(), StatusName: name, StartedAt: now}
	t.records = append([]Record{next}, t.records...)

	if n := t.pruneAt(now); n > 0 {
		t.log.Debug("pruned records", "count", n)
	}
	t.save()
	return nil
}

// maxShiftSeconds is the largest shift a time.Duration can hold.
const maxShiftSeconds = int64(math.MaxInt64 / time.Second)

// EditCurrentDuration moves the open record's start so that its live elapsed
// time becomes secs. Negative values put the start in the future.
func (t *Tracker) EditCurrentDuration(secs int64) error {
	if len(t.records) == 0 {
		return fmt.Errorf("edit duration: %w", ErrInvariant)
	}
	if secs > maxShiftSeconds || secs < -maxShiftSeconds {
		return fmt.Errorf("edit duration %ds: %w", secs, ErrOutOfRange)
	}
	cur := &t.records[0]
	shift := elapsedAt(*cur, t.now()) - secs
	if shift > maxShiftSeconds || shift < -maxShiftSeconds {
		return fmt.Errorf("edit duration %ds: %w", secs, ErrOutOfRange)
	}
	cur.StartedAt = cur.StartedAt.Add(time.Duration(shift) * time.Second)
	t.save()
	return nil
}

// PruneStaleRecords drops closed records shorter than three seconds or
// finished more than 30 days ago. It returns how many were removed.
func (t *Tracker) PruneStaleRecords() int {
	n := t.pruneAt(t.now())
	if n > 0 {
		t.save()
	}
	return n
}

func (t *Tracker) pruneAt(now time.Time) int {
	cutoff := now.Add(-retention)
	kept := make([]Record, 0, len(t.records))
	for i, r := range t.records {
		if i == 0 || r.Open() {
			kept = append(kept, r)
			continue
		}
		secs := elapsedAt(r, now)
		if secs < 0 {
			secs = -secs
		}
		if secs < minRecordSeconds || r.FinishedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, r)
	}
	removed := len(t.records) - len(kept)
	t.records = kept
	return removed
}

// ResetAll replaces everything with the initial snapshot.
func (t *Tracker) ResetAll() {
	t.restore(t.initialSnapshot())
	t.save()
}
