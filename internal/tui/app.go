package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-hclog"

	"github.com/sadopc/nowdoing/internal/clock"
	"github.com/sadopc/nowdoing/internal/duration"
	"github.com/sadopc/nowdoing/internal/export"
	"github.com/sadopc/nowdoing/internal/tracker"
)

// Options configures the App. Zero values pick sensible defaults.
type Options struct {
	Poll      time.Duration
	Clock     clock.Clock
	ExportDir string
	Logger    hclog.Logger
}

// App is the root Bubble Tea model.
type App struct {
	tracker *tracker.Tracker
	clock   clock.Clock
	log     hclog.Logger
	poll    time.Duration
	outDir  string
	width   int
	height  int

	proj projection

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	reports   reportsModel
	history   historyModel
	reset     resetModel
	clicks    clickCounter

	help   help.Model
	status string
	isErr  bool
}

func NewApp(t *tracker.Tracker, opts Options) App {
	if opts.Poll <= 0 {
		opts.Poll = time.Second
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.ExportDir == "" {
		opts.ExportDir, _ = os.UserHomeDir()
	}

	h := help.New()
	h.ShowAll = false

	return App{
		tracker:    t,
		clock:      opts.Clock,
		log:        opts.Logger.Named("tui"),
		poll:       opts.Poll,
		outDir:     opts.ExportDir,
		proj:       project(t),
		activeView: viewNow,
		dashboard:  newDashboardModel(t),
		reports:    newReportsModel(),
		history:    newHistoryModel(),
		reset:      newResetModel(t),
		clicks:     newClickCounter(opts.Clock, resetClicks, resetClickIdle),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tickCmd(a.poll)
}

func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh recomputes the projection after a tick or a mutation.
func (a *App) refresh() {
	a.proj = project(a.tracker)
	a.reports.buildChart(a.proj)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		a.reset.setSize(a.width)
		a.refresh()
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A child form captures all input until it closes.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Reset):
			if a.clicks.press() {
				var cmd tea.Cmd
				a.reset, cmd = a.reset.open()
				return a, cmd
			}
			left := resetClicks - a.clicks.pending()
			a.status = fmt.Sprintf("Press r %d more time(s) to reset", left)
			a.isErr = false
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, nil
		case key.Matches(msg, keys.BackTab):
			a.activeView = (a.activeView + viewState(len(viewNames)) - 1) % viewState(len(viewNames))
			return a, nil
		}

	case tickMsg:
		a.refresh()
		return a, tickCmd(a.poll)

	case statusMsg:
		a.status = msg.text
		a.isErr = msg.isError
		if msg.isError {
			a.log.Warn("action failed", "error", msg.text)
		}
		return a, nil

	case startedMsg:
		a.refresh()
		a.status = "Now " + msg.name
		a.isErr = false
		return a, nil

	case editedMsg:
		a.refresh()
		a.status = "Duration set to " + duration.SecondsToString(msg.secs)
		a.isErr = false
		return a, nil

	case resetDoneMsg:
		a.refresh()
		a.dashboard.cursor = 0
		a.history.cursor, a.history.offset = 0, 0
		if msg.all {
			a.status = "Everything reset"
		} else {
			a.status = "Statuses reset"
		}
		a.isErr = false
		a.log.Info("reset", "all", msg.all)
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.isErr = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if a.reset.active {
		a.reset, cmd = a.reset.update(msg)
		return a, cmd
	}
	switch a.activeView {
	case viewNow:
		a.dashboard, cmd = a.dashboard.update(msg, a.proj)
	case viewHistory:
		a.history, cmd = a.history.update(msg, a.proj)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	return a.reset.active || (a.activeView == viewNow && a.dashboard.editing)
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewNow:
		content = a.dashboard.view(a.proj)
	case viewToday:
		content = a.reports.view(a.proj)
	case viewHistory:
		content = a.history.view(a.proj)
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	switch {
	case a.exportPicking:
		content = a.renderExportPicker()
	case a.reset.active:
		content = a.reset.view()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render(tracker.AppName)
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.isErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	saveInfo := ""
	if a.proj.saveErr != nil {
		saveInfo = errorStyle.Render(" ⚠ not saved")
	}

	timerInfo := statusStyle(a.proj.status).Render(" " + a.proj.status.Name + " " + a.proj.elapsedString() + " ")

	left := footerStyle.Render(helpView)
	right := timerInfo + saveInfo + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the file before returning. The tracker is not safe for
// concurrent use, so this cannot run inside a tea.Cmd.
func (a App) doExport(format int) tea.Cmd {
	dateStr := a.clock.Now().Format("2006-01-02")

	if format == 0 {
		path := filepath.Join(a.outDir, fmt.Sprintf("%s-export-%s.csv", tracker.AppName, dateStr))
		if err := export.ToCSV(a.tracker, path); err != nil {
			return errorCmd("CSV error: %v", err)
		}
		return msgCmd(exportDoneMsg{path: path})
	}

	path := filepath.Join(a.outDir, fmt.Sprintf("%s-export-%s.json", tracker.AppName, dateStr))
	if err := export.ToJSON(a.tracker, path); err != nil {
		return errorCmd("JSON error: %v", err)
	}
	return msgCmd(exportDoneMsg{path: path})
}
