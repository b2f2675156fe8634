// Package report renders a terminal summary of one run's histogram rows.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-bindstat/pkg/errs"
	"github.com/dd0wney/cluso-bindstat/pkg/histogram"
)

// barWidth is the width of the mean-share bar in characters.
const barWidth = 24

// Column summarizes one histogram column over all timesteps.
type Column struct {
	Name  string
	Mean  float64
	Min   int
	Max   int
	Final int
}

// Summary is the per-column summary of a run.
type Summary struct {
	Timesteps int
	Receptors int
	Columns   []Column
}

// Summarize computes per-column statistics. All rows must share one
// receptor total.
func Summarize(rows []*histogram.Histogram) (Summary, error) {
	if len(rows) == 0 {
		return Summary{}, errs.Invariant("summarize", "no histogram rows")
	}
	total := rows[0].Total()
	names := histogram.Header(total)
	cols := make([]Column, len(names))
	sums := make([]int, len(names))
	for i, name := range names {
		cols[i] = Column{Name: name, Min: -1}
	}

	for t, h := range rows {
		if h.Total() != total {
			return Summary{}, errs.Invariant("summarize", "row %d has %d receptors, row 0 has %d", t, h.Total(), total)
		}
		for i, v := range h.Row() {
			sums[i] += v
			if cols[i].Min < 0 || v < cols[i].Min {
				cols[i].Min = v
			}
			cols[i].Max = max(cols[i].Max, v)
			cols[i].Final = v
		}
	}
	for i := range cols {
		cols[i].Mean = float64(sums[i]) / float64(len(rows))
	}
	return Summary{Timesteps: len(rows), Receptors: total, Columns: cols}, nil
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Width(12)

	valueStyle = lipgloss.NewStyle().
			Width(9).
			Align(lipgloss.Right)

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			PaddingLeft(2)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)
)

// Render draws the summary as a bordered table with one line per column.
func Render(title string, s Summary) string {
	var lines []string
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
		headerStyle.Inherit(nameStyle).Render("class"),
		headerStyle.Inherit(valueStyle).Render("mean"),
		headerStyle.Inherit(valueStyle).Render("min"),
		headerStyle.Inherit(valueStyle).Render("max"),
		headerStyle.Inherit(valueStyle).Render("final"),
	))
	for _, c := range s.Columns {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			nameStyle.Render(c.Name),
			valueStyle.Render(fmt.Sprintf("%.2f", c.Mean)),
			valueStyle.Render(fmt.Sprint(c.Min)),
			valueStyle.Render(fmt.Sprint(c.Max)),
			valueStyle.Render(fmt.Sprint(c.Final)),
			barStyle.Render(bar(c.Mean, s.Receptors)),
		))
	}

	heading := titleStyle.Render(fmt.Sprintf("%s: %d timesteps, %d receptors", title, s.Timesteps, s.Receptors))
	return lipgloss.JoinVertical(lipgloss.Left, heading, boxStyle.Render(strings.Join(lines, "\n")))
}

// bar draws mean as a share of total receptors.
func bar(mean float64, total int) string {
	if total <= 0 {
		return ""
	}
	n := int(mean/float64(total)*barWidth + 0.5)
	return strings.Repeat("█", min(n, barWidth))
}
