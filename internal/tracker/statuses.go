package tracker

import "fmt"

func (t *Tracker) lookup(name string) (Status, bool) {
	for _, s := range t.statuses {
		if s.Name == name {
			return s, true
		}
	}
	return Status{}, false
}

// fallbackStatus picks the idle status, or the first one when none is idle.
// statuses must not be empty.
func fallbackStatus(statuses []Status) Status {
	for _, s := range statuses {
		if s.Kind == KindIdle {
			return s
		}
	}
	return statuses[0]
}

// CurrentStatus resolves the open record's status, falling back to the idle
// status (or the first one) when the name no longer resolves.
func (t *Tracker) CurrentStatus() (Status, error) {
	if len(t.statuses) == 0 {
		return Status{}, fmt.Errorf("current status: %w", ErrInvariant)
	}
	rec, err := t.CurrentRecord()
	if err != nil {
		return Status{}, err
	}
	if s, ok := t.lookup(rec.StatusName); ok {
		return s, nil
	}
	return fallbackStatus(t.statuses), nil
}

// SetStatuses replaces the status list. Records are left alone, so some of
// them may stop resolving.
func (t *Tracker) SetStatuses(statuses []Status) error {
	if err := ValidateStatuses(statuses); err != nil {
		return fmt.Errorf("set statuses: %w", err)
	}
	t.statuses = append([]Status(nil), statuses...)
	t.save()
	return nil
}

// ResetStatuses restores the default status list without touching records.
func (t *Tracker) ResetStatuses() {
	t.statuses = append([]Status(nil), t.defaults...)
	t.save()
}

// ValidateStatuses checks a status list is non-empty, uniquely named and uses
// known kinds.
func ValidateStatuses(statuses []Status) error {
	if len(statuses) == 0 {
		return fmt.Errorf("empty status list: %w", ErrInvariant)
	}
	seen := make(map[string]bool, len(statuses))
	for i, s := range statuses {
		if s.Name == "" {
			return fmt.Errorf("status %d has no name: %w", i, ErrInvalidStatus)
		}
		if !s.Kind.Valid() {
			return fmt.Errorf("status %q has kind %q: %w", s.Name, s.Kind, ErrInvalidStatus)
		}
		if seen[s.Name] {
			return fmt.Errorf("%q: %w", s.Name, ErrDuplicateStatus)
		}
		seen[s.Name] = true
	}
	return nil
}
