package tracker

import "time"

// Kind separates the "doing nothing" fallback status from regular ones.
type Kind string

const (
	KindIdle   Kind = "idle"
	KindActive Kind = "active"
)

func (k Kind) Valid() bool {
	return k == KindIdle || k == KindActive
}

// Status is a named category an interval can belong to. Name is the identity
// key; the colors are display-only.
type Status struct {
	Name            string `json:"name" yaml:"name"`
	Kind            Kind   `json:"kind" yaml:"kind"`
	BackgroundColor string `json:"backgroundColor" yaml:"background"`
	TextColor       string `json:"textColor" yaml:"text"`
}

// Record is one contiguous interval during which StatusName was current.
// StatusName is a weak reference: the status may have been renamed or removed
// since, so every reader must go through a lookup with a fallback.
type Record struct {
	ID         string     `json:"id"`
	StatusName string     `json:"statusName"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	DurationS  *int64     `json:"durationS,omitempty"` // frozen at close
}

func (r Record) Open() bool {
	return r.FinishedAt == nil
}

// Snapshot is the persisted form of the tracker state. Records are ordered
// newest first and Records[0] is the open interval.
type Snapshot struct {
	Statuses []Status `json:"statuses"`
	Records  []Record `json:"records"`
}

// TodayStat is a derived per-status total for the current calendar day.
type TodayStat struct {
	StatusName     string
	DurationS      int64
	DurationString string
}

// DefaultStatuses returns the built-in status list.
func DefaultStatuses() []Status {
	return []Status{
		{Name: "❌", Kind: KindIdle, BackgroundColor: "#414868", TextColor: "#C0CAF5"},
		{Name: "😎", Kind: KindActive, BackgroundColor: "#2ECC71", TextColor: "#1A1B26"},
		{Name: "💻", Kind: KindActive, BackgroundColor: "#6C63FF", TextColor: "#FFFFFF"},
		{Name: "🍔", Kind: KindActive, BackgroundColor: "#F39C12", TextColor: "#1A1B26"},
		{Name: "😴", Kind: KindActive, BackgroundColor: "#2EC4B6", TextColor: "#1A1B26"},
	}
}
