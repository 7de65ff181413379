package tracker

import (
	"sort"
	"time"

	"github.com/sadopc/nowdoing/internal/duration"
)

// TodayStats totals elapsed time per status over records that started or
// finished on the current local calendar day. Every current status gets an
// entry, zero if unused, in status-list order.
func (t *Tracker) TodayStats() []TodayStat {
	now := t.now()
	today := now.In(t.loc)

	position := make(map[string]int, len(t.statuses))
	index := make(map[string]int, len(t.statuses))
	stats := make([]TodayStat, 0, len(t.statuses))
	for i, s := range t.statuses {
		position[s.Name] = i
		index[s.Name] = len(stats)
		stats = append(stats, TodayStat{StatusName: s.Name})
	}

	for _, r := range t.records {
		touches := sameDay(r.StartedAt.In(t.loc), today)
		if !touches && r.FinishedAt != nil {
			touches = sameDay(r.FinishedAt.In(t.loc), today)
		}
		if !touches {
			continue
		}
		s, ok := t.lookup(r.StatusName)
		if !ok {
			continue
		}
		i, ok := index[s.Name]
		if !ok {
			i = len(stats)
			index[s.Name] = i
			stats = append(stats, TodayStat{StatusName: s.Name})
		}
		stats[i].DurationS += elapsedAt(r, now)
	}

	rank := func(name string) int {
		if p, ok := position[name]; ok {
			return p
		}
		return len(t.statuses)
	}
	sort.SliceStable(stats, func(a, b int) bool {
		return rank(stats[a].StatusName) < rank(stats[b].StatusName)
	})
	for i := range stats {
		stats[i].DurationString = duration.SecondsToString(stats[i].DurationS)
	}
	return stats
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
