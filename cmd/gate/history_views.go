package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/types"
)

// Style definitions.
var (
	TitleStyle = lipgloss.NewStyle().Bold(true)
	HelpStyle  = lipgloss.NewStyle().Faint(true)
	ErrorStyle = lipgloss.NewStyle().Bold(true)

	passStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

const kindAll = "all"

// listItem implements list.Item for the kind list.
type listItem struct {
	name        string
	description string
}

func (i listItem) Title() string       { return i.name }
func (i listItem) Description() string { return i.description }
func (i listItem) FilterValue() string { return i.name }

func NewKindList() list.Model {
	items := []list.Item{
		listItem{name: kindAll, description: "Every recorded check"},
		listItem{name: string(types.CheckKindBacktest), description: "Backtest trial checks"},
		listItem{name: string(types.CheckKindRecent), description: "Recent live-performance checks"},
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = "Select Check Kind"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

func NewStrategyInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "momentum-1"
	ti.Focus()
	ti.CharLimit = 128
	ti.Width = 50
	ti.Prompt = "> "

	return ti
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

func NewChecksTable() table.Model {
	return newTable([]table.Column{
		{Title: "Checked", Width: 17},
		{Title: "Kind", Width: 9},
		{Title: "Verdict", Width: 8},
		{Title: "Sharpe", Width: 8},
		{Title: "Return %", Width: 9},
		{Title: "Win rate", Width: 9},
		{Title: "Drawdown %", Width: 11},
		{Title: "Trades", Width: 7},
	})
}

func NewTrialsTable() table.Model {
	return newTable([]table.Column{
		{Title: "#", Width: 3},
		{Title: "Symbol", Width: 10},
		{Title: "Window end", Width: 11},
		{Title: "Attempts", Width: 9},
		{Title: "Outcome", Width: 18},
		{Title: "Return %", Width: 9},
		{Title: "Trades", Width: 7},
	})
}

// FilterChecks keeps the checks of kind, newest first. kindAll keeps every check.
func FilterChecks(checks []types.ProfitabilityCheck, kind string) []types.ProfitabilityCheck {
	out := make([]types.ProfitabilityCheck, 0, len(checks))

	for i := len(checks) - 1; i >= 0; i-- {
		if kind == kindAll || string(checks[i].Kind) == kind {
			out = append(out, checks[i])
		}
	}

	return out
}

func formatSharpe(v optional.Option[float64]) string {
	if !v.IsSome() {
		return "n/a"
	}

	return fmt.Sprintf("%.2f", v.Unwrap())
}

func UpdateChecksRows(t table.Model, checks []types.ProfitabilityCheck) table.Model {
	rows := make([]table.Row, 0, len(checks))

	for _, c := range checks {
		verdict := "FAIL"
		if c.Passed {
			verdict = "PASS"
		}

		rows = append(rows, table.Row{
			c.CheckedAt.Format("2006-01-02 15:04"),
			string(c.Kind),
			verdict,
			formatSharpe(c.Sharpe),
			fmt.Sprintf("%.2f", c.AvgReturn),
			fmt.Sprintf("%.1f%%", c.WinRate*100),
			fmt.Sprintf("%.2f", c.MaxDrawdown),
			fmt.Sprintf("%d", c.Details.SampleSize),
		})
	}

	t.SetRows(rows)
	t.SetCursor(0)

	return t
}

func UpdateTrialsRows(t table.Model, trials []types.TrialSummary) table.Model {
	rows := make([]table.Row, 0, len(trials))

	for _, tr := range trials {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", tr.Index),
			tr.Symbol,
			tr.End.Format("2006-01-02"),
			fmt.Sprintf("%d", tr.Attempts),
			string(tr.Outcome),
			fmt.Sprintf("%.2f", tr.ReturnPct),
			fmt.Sprintf("%d", tr.TotalTrades),
		})
	}

	t.SetRows(rows)
	t.SetCursor(0)

	return t
}

func FormatVerdict(passed bool) string {
	if passed {
		return passStyle.Render("PASS")
	}

	return failStyle.Render("FAIL")
}

// FormatCriterion renders one criterion line, e.g. "✓ sharpe 1.40 vs 1.00".
func FormatCriterion(c types.CriterionResult) string {
	mark := "✗"
	if c.Passed {
		mark = "✓"
	}

	if !c.Defined {
		return fmt.Sprintf("%s %s undefined vs %.2f", mark, c.Name, c.Threshold)
	}

	return fmt.Sprintf("%s %s %.2f vs %.2f", mark, c.Name, c.Value, c.Threshold)
}
