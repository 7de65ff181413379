// Package tracker owns the status list and the interval history, and enforces
// the rules around the single open interval.
package tracker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/sadopc/nowdoing/internal/clock"
)

// AppName is the key the snapshot is stored under.
const AppName = "nowdoing"

const (
	minRecordSeconds = 3
	retention        = 30 * 24 * time.Hour
)

// Slot is the persistence transport: a single key/value cell. Read returns
// nil, nil when the key has never been written.
type Slot interface {
	Read(key string) ([]byte, error)
	Write(key string, value []byte) error
}

// Tracker is not safe for concurrent use. All calls are expected to come from
// one goroutine (the TUI update loop or a CLI command).
type Tracker struct {
	statuses []Status
	records  []Record
	defaults []Status

	slot  Slot
	key   string
	clock clock.Clock
	loc   *time.Location
	log   hclog.Logger
	newID func() string

	saveErr error
}

type Option func(*Tracker)

func WithClock(c clock.Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithLocation sets the zone used to decide what "today" means.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) { t.loc = loc }
}

// WithDefaults replaces the built-in status list used for new and reset stores.
func WithDefaults(statuses []Status) Option {
	return func(t *Tracker) {
		if len(statuses) > 0 {
			t.defaults = append([]Status(nil), statuses...)
		}
	}
}

func WithLogger(l hclog.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

func WithIDs(fn func() string) Option {
	return func(t *Tracker) { t.newID = fn }
}

func WithKey(key string) Option {
	return func(t *Tracker) { t.key = key }
}

// New returns an in-memory tracker holding the initial snapshot.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		defaults: DefaultStatuses(),
		key:      AppName,
		clock:    clock.System{},
		loc:      time.Local,
		log:      hclog.NewNullLogger(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.restore(t.initialSnapshot())
	return t
}

// Open rehydrates a tracker from slot. A missing or unusable snapshot is
// replaced by the initial one; only transport failures are returned.
func Open(slot Slot, opts ...Option) (*Tracker, error) {
	t := New(opts...)
	t.slot = slot

	raw, err := slot.Read(t.key)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if raw == nil {
		t.log.Info("no snapshot found, starting fresh", "key", t.key)
		t.save()
		return t, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.log.Warn("snapshot is corrupt, starting fresh", "key", t.key, "error", err)
		t.save()
		return t, nil
	}
	if err := validate(snap); err != nil {
		t.log.Warn("snapshot is invalid, starting fresh", "key", t.key, "error", err)
		t.save()
		return t, nil
	}

	for i := range snap.Records {
		if snap.Records[i].ID == "" {
			snap.Records[i].ID = t.newID()
		}
	}
	t.restore(snap)
	t.log.Debug("snapshot loaded", "statuses", len(t.statuses), "records", len(t.records))
	return t, nil
}

func validate(snap Snapshot) error {
	if err := ValidateStatuses(snap.Statuses); err != nil {
		return err
	}
	if len(snap.Records) == 0 {
		return fmt.Errorf("no records: %w", ErrInvariant)
	}
	if !snap.Records[0].Open() {
		return fmt.Errorf("head record is closed: %w", ErrInvariant)
	}
	for i, r := range snap.Records[1:] {
		if r.Open() {
			return fmt.Errorf("record %d is open below the head: %w", i+1, ErrInvariant)
		}
	}
	return nil
}

func (t *Tracker) initialSnapshot() Snapshot {
	statuses := append([]Status(nil), t.defaults...)
	return Snapshot{
		Statuses: statuses,
		Records: []Record{{
			ID:         t.newID(),
			StatusName: fallbackStatus(statuses).Name,
			StartedAt:  t.now(),
		}},
	}
}

func (t *Tracker) restore(snap Snapshot) {
	t.statuses = snap.Statuses
	t.records = snap.Records
}

// now strips the monotonic reading so stored timestamps compare equal after a
// JSON round trip.
func (t *Tracker) now() time.Time {
	return t.clock.Now().Round(0)
}

// Snapshot returns a copy of the persisted state.
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{Statuses: t.Statuses(), Records: t.Records()}
}

func (t *Tracker) Statuses() []Status {
	return append([]Status(nil), t.statuses...)
}

func (t *Tracker) Records() []Record {
	return append([]Record(nil), t.records...)
}

// LastSaveError reports the most recent persistence failure, or nil once a
// later save succeeds.
func (t *Tracker) LastSaveError() error {
	return t.saveErr
}

// save writes the snapshot. Failures are logged and remembered but never fail
// the mutation that triggered them.
func (t *Tracker) save() {
	if t.slot == nil {
		return
	}
	payload, err := json.Marshal(Snapshot{Statuses: t.statuses, Records: t.records})
	if err != nil {
		t.saveErr = fmt.Errorf("encode snapshot: %w", err)
		t.log.Error("encode snapshot", "error", err)
		return
	}
	if err := t.slot.Write(t.key, payload); err != nil {
		t.saveErr = fmt.Errorf("write snapshot: %w", err)
		t.log.Error("write snapshot", "key", t.key, "error", err)
		return
	}
	t.saveErr = nil
}
