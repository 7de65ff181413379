package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// viewState represents the currently active view.
type viewState int

const (
	viewNow viewState = iota
	viewToday
	viewHistory
)

var viewNames = []string{"Now", "Today", "History"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type startedMsg struct {
	name string
}

type editedMsg struct {
	secs int64
}

type resetDoneMsg struct {
	all bool
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func errorCmd(format string, args ...any) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf(format, args...), isError: true}
	}
}

func msgCmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
