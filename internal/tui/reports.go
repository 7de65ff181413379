package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/nowdoing/internal/duration"
)

// reportsModel is the Today view: per-status totals as a table and a chart.
type reportsModel struct {
	width  int
	height int

	chart barchart.Model
}

func newReportsModel() reportsModel {
	return reportsModel{
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

// buildChart redraws the bars from p. Values are minutes; negative totals
// from backdated edits are drawn as empty bars.
func (r *reportsModel) buildChart(p projection) {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if r.height > 30 {
		chartHeight = 14
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, st := range p.today {
		color := colorSubtle
		if s, ok := p.statusFor(st.StatusName); ok {
			color = statusColor(s)
		}
		minutes := float64(max(st.DurationS, 0)) / 60.0
		bars = append(bars, barchart.BarData{
			Label: st.StatusName,
			Values: []barchart.BarValue{{
				Name:  st.StatusName,
				Value: minutes,
				Style: lipgloss.NewStyle().Foreground(color),
			}},
		})
	}

	if len(bars) == 0 {
		return
	}
	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view(p projection) string {
	w := r.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Today"), "  ",
		highlightStyle.Render("active "+duration.SecondsToString(p.todayTotal())),
	)

	chartView := r.chart.View()
	tableView := r.renderSummaryTable(w, p)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", tableView, "", mutedStyle.Render("  bars are minutes"),
		),
	)
}

func (r reportsModel) renderSummaryTable(w int, p projection) string {
	if len(p.today) == 0 {
		return mutedStyle.Render("  No statuses")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %-8s %10s", "Status", "Kind", "Duration")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 32))))

	for _, st := range p.today {
		kind := "?"
		dot := mutedStyle.Render("●")
		if s, ok := p.statusFor(st.StatusName); ok {
			kind = string(s.Kind)
			dot = lipgloss.NewStyle().Foreground(statusColor(s)).Render("●")
		}
		line := fmt.Sprintf("  %s %-10s %-8s %10s", dot, st.StatusName, kind, st.DurationString)
		if st.StatusName == p.status.Name {
			line = accentStyle.Render(line)
		}
		rows = append(rows, line)
	}

	return strings.Join(rows, "\n")
}
