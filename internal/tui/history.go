package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/nowdoing/internal/duration"
)

// historyModel lists the stored intervals, newest first.
type historyModel struct {
	width  int
	height int
	cursor int
	offset int
}

func newHistoryModel() historyModel {
	return historyModel{}
}

func (h *historyModel) setSize(w, hgt int) {
	h.width = w
	h.height = hgt
}

// pageSize is how many rows fit inside the panel.
func (h historyModel) pageSize() int {
	return max(1, h.height-8)
}

func (h historyModel) update(msg tea.Msg, p projection) (historyModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return h, nil
	}

	switch {
	case key.Matches(km, keys.Up):
		if h.cursor > 0 {
			h.cursor--
		}
	case key.Matches(km, keys.Down):
		if h.cursor < len(p.records)-1 {
			h.cursor++
		}
	}

	if h.cursor < h.offset {
		h.offset = h.cursor
	}
	if h.cursor >= h.offset+h.pageSize() {
		h.offset = h.cursor - h.pageSize() + 1
	}
	return h, nil
}

func (h historyModel) view(p projection) string {
	w := h.width - 4
	title := titleStyle.Render(fmt.Sprintf("History (%d)", len(p.records)))

	if len(p.records) == 0 {
		return panelStyle.Width(w).Render(title + "\n" + mutedStyle.Render("No records yet"))
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %-11s %-6s %-10s %10s", "Date", "Start", "Status", "Duration")))

	end := min(len(p.records), h.offset+h.pageSize())
	for i := h.offset; i < end; i++ {
		r := p.records[i]

		marker := "✓"
		if r.Open() {
			marker = "●"
		}
		dur := duration.SecondsToString(p.spans[i])

		name := r.StatusName
		if _, ok := p.statusFor(name); !ok {
			name += "?"
		}

		start := r.StartedAt.Local()
		line := fmt.Sprintf("%s %-11s %-6s %-10s %10s",
			marker, start.Format("2006-01-02"), start.Format("15:04"), name, dur)

		if i == h.cursor {
			rows = append(rows, selectedItemStyle.Render("> "+line))
		} else {
			rows = append(rows, normalItemStyle.Render("  "+line))
		}
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
