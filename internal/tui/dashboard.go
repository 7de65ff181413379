package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/nowdoing/internal/duration"
	"github.com/sadopc/nowdoing/internal/tracker"
)

// dashboardModel is the Now view: the running timer, the status picker and
// the duration edit prompt.
type dashboardModel struct {
	tracker *tracker.Tracker
	width   int
	height  int
	cursor  int

	editing bool
	form    *huh.Form

	// Form value pointer (survives value copies)
	editValue *string
}

func newDashboardModel(t *tracker.Tracker) dashboardModel {
	v := ""
	return dashboardModel{
		tracker:   t,
		editValue: &v,
	}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) update(msg tea.Msg, p projection) (dashboardModel, tea.Cmd) {
	if d.editing && d.form != nil {
		return d.updateForm(msg)
	}

	if d.cursor >= len(p.statuses) {
		d.cursor = max(0, len(p.statuses)-1)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}

	switch {
	case key.Matches(km, keys.Up):
		if d.cursor > 0 {
			d.cursor--
		}
	case key.Matches(km, keys.Down):
		if d.cursor < len(p.statuses)-1 {
			d.cursor++
		}
	case key.Matches(km, keys.Select):
		if len(p.statuses) == 0 {
			return d, nil
		}
		return d, d.start(p.statuses[d.cursor].Name)
	case key.Matches(km, keys.Pick):
		i := int(km.String()[0] - '1')
		if i >= len(p.statuses) {
			return d, errorCmd("No status #%d", i+1)
		}
		d.cursor = i
		return d, d.start(p.statuses[i].Name)
	case key.Matches(km, keys.Edit):
		return d.showEditForm(p)
	}
	return d, nil
}

func (d dashboardModel) start(name string) tea.Cmd {
	if err := d.tracker.Start(name); err != nil {
		return errorCmd("Start %s: %v", name, err)
	}
	return msgCmd(startedMsg{name: name})
}

func (d dashboardModel) showEditForm(p projection) (dashboardModel, tea.Cmd) {
	*d.editValue = p.elapsedString()

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Current duration").
				Description("H:MM:SS, M:SS or SS; a leading - is allowed").
				Value(d.editValue).
				Validate(validateDuration),
		),
	).WithShowHelp(true).WithShowErrors(true)

	d.editing = true
	return d, d.form.Init()
}

func validateDuration(s string) error {
	_, err := duration.StringToSeconds(s)
	return err
}

func (d dashboardModel) updateForm(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			d.editing = false
			d.form = nil
			return d, nil
		}
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	switch d.form.State {
	case huh.StateCompleted:
		d.editing = false
		d.form = nil
		return d, d.applyEdit(*d.editValue)
	case huh.StateAborted:
		d.editing = false
		d.form = nil
		return d, nil
	}

	return d, cmd
}

// applyEdit parses text and shifts the current record. Unparseable text leaves
// the tracker untouched.
func (d dashboardModel) applyEdit(text string) tea.Cmd {
	secs, err := duration.StringToSeconds(text)
	if err != nil {
		return errorCmd("Invalid duration %q", text)
	}
	if err := d.tracker.EditCurrentDuration(secs); err != nil {
		return errorCmd("Edit: %v", err)
	}
	return msgCmd(editedMsg{secs: secs})
}

func (d dashboardModel) view(p projection) string {
	if d.width < 20 {
		return "Terminal too small"
	}

	w := d.width - 4

	if p.err != nil {
		return panelStyle.Width(w).Render(errorStyle.Render(p.err.Error()))
	}

	timerPanel := d.renderTimerPanel(w, p)

	var bottom string
	if d.editing && d.form != nil {
		bottom = activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Edit Duration"), "", d.form.View()),
		)
	} else {
		bottom = d.renderStatusPicker(w, p)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, bottom)
}

func (d dashboardModel) renderTimerPanel(w int, p projection) string {
	style := statusStyle(p.status)

	name := style.Bold(true).Padding(0, 1).Render(p.status.Name)
	clock := timerStyle.Inherit(style).Width(w - 6).Render(p.elapsedString())

	since := mutedStyle.Render("since " + p.record.StartedAt.Local().Format("15:04:05"))
	total := highlightStyle.Render("active today " + duration.SecondsToString(p.todayTotal()))

	content := lipgloss.JoinVertical(lipgloss.Center,
		name,
		clock,
		since+"  "+total,
	)
	return activePanelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderStatusPicker(w int, p projection) string {
	title := titleStyle.Render("Statuses")

	var rows []string
	rows = append(rows, title)
	for i, s := range p.statuses {
		cursor := "  "
		style := normalItemStyle
		if i == d.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		num := "  "
		if i < 9 {
			num = fmt.Sprintf("%d ", i+1)
		}
		chip := statusStyle(s).Padding(0, 1).Render(s.Name)
		line := style.Render(cursor+num) + chip + mutedStyle.Render(" "+string(s.Kind))
		if s.Name == p.status.Name {
			line += successStyle.Render("  ● now")
		}
		rows = append(rows, line)
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter/1-9: start  e: edit duration  r×3: reset"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
