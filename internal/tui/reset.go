package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/nowdoing/internal/tracker"
)

const (
	resetStatuses = "statuses"
	resetAll      = "all"
	resetCancel   = "cancel"
)

// resetModel is the confirmation prompt opened by the reset gesture.
type resetModel struct {
	tracker *tracker.Tracker
	width   int

	active bool
	form   *huh.Form

	// Form value pointer (survives value copies)
	choice *string
}

func newResetModel(t *tracker.Tracker) resetModel {
	c := resetCancel
	return resetModel{
		tracker: t,
		choice:  &c,
	}
}

func (r *resetModel) setSize(w int) {
	r.width = w
}

func (r resetModel) open() (resetModel, tea.Cmd) {
	*r.choice = resetCancel
	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Reset").
				Options(
					huh.NewOption("Cancel", resetCancel),
					huh.NewOption("Reset statuses to defaults", resetStatuses),
					huh.NewOption("Reset everything", resetAll),
				).
				Value(r.choice),
		),
	).WithShowHelp(true)

	r.active = true
	return r, r.form.Init()
}

func (r resetModel) update(msg tea.Msg) (resetModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			r.active = false
			r.form = nil
			return r, nil
		}
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}

	switch r.form.State {
	case huh.StateCompleted:
		r.active = false
		r.form = nil
		return r, r.apply(*r.choice)
	case huh.StateAborted:
		r.active = false
		r.form = nil
		return r, nil
	}
	return r, cmd
}

func (r resetModel) apply(choice string) tea.Cmd {
	switch choice {
	case resetStatuses:
		r.tracker.ResetStatuses()
		return msgCmd(resetDoneMsg{all: false})
	case resetAll:
		r.tracker.ResetAll()
		return msgCmd(resetDoneMsg{all: true})
	}
	return nil
}

func (r resetModel) view() string {
	w := r.width - 4
	title := warningStyle.Bold(true).Render("Reset")
	return activePanelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", r.form.View()),
	)
}
