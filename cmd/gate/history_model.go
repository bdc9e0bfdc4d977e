package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/argo-gate/internal/types"
)

// History browser states.
const (
	StateStrategyInput = iota
	StateKindSelect
	StateChecks
	StateDetail
)

// checkLoader reads the checks of a strategy, oldest first.
type checkLoader func(ctx context.Context, strategyID string, days int) ([]types.ProfitabilityCheck, error)

// HistoryModel is the Bubble Tea model of the check history browser.
type HistoryModel struct {
	state         int
	strategyInput textinput.Model
	kindList      list.Model
	checksTable   table.Model
	trialsTable   table.Model
	load          checkLoader
	days          int
	strategyID    string
	kind          string
	checks        []types.ProfitabilityCheck
	selected      int
	err           error
	width         int
	height        int
}

// NewHistoryModel starts at the strategy prompt, or at the kind list when strategyID is set.
func NewHistoryModel(load checkLoader, strategyID string, days int) HistoryModel {
	m := HistoryModel{
		state:         StateStrategyInput,
		strategyInput: NewStrategyInput(),
		kindList:      NewKindList(),
		checksTable:   NewChecksTable(),
		trialsTable:   NewTrialsTable(),
		load:          load,
		days:          days,
	}

	if strategyID != "" {
		m.strategyID = strategyID
		m.strategyInput.SetValue(strategyID)
		m.strategyInput.Blur()
		m.state = StateKindSelect
	}

	return m
}

// Init implements tea.Model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state != StateStrategyInput {
				return m, tea.Quit
			}
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.kindList.SetSize(msg.Width, msg.Height-4)
		m.checksTable.SetWidth(msg.Width)
		m.checksTable.SetHeight(msg.Height - 6)
		m.trialsTable.SetWidth(msg.Width)
		m.trialsTable.SetHeight(msg.Height - 12)

		return m, nil

	case ChecksLoadedMsg:
		m.err = nil
		m.checks = FilterChecks(msg.Checks, m.kind)
		m.checksTable = UpdateChecksRows(m.checksTable, m.checks)
		m.state = StateChecks

		return m, nil

	case LoadErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	switch m.state {
	case StateStrategyInput:
		return m.updateStrategyInput(msg)
	case StateKindSelect:
		return m.updateKindSelect(msg)
	case StateChecks:
		return m.updateChecks(msg)
	case StateDetail:
		var cmd tea.Cmd
		m.trialsTable, cmd = m.trialsTable.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m HistoryModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateKindSelect:
		m.state = StateStrategyInput
		m.strategyInput.Focus()

		return m, textinput.Blink
	case StateChecks:
		m.checks = nil
		m.err = nil
		m.state = StateKindSelect
	case StateDetail:
		m.state = StateChecks
	}

	return m, nil
}

func (m HistoryModel) updateStrategyInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if id := strings.TrimSpace(m.strategyInput.Value()); id != "" {
			m.strategyID = id
			m.strategyInput.Blur()
			m.state = StateKindSelect

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.strategyInput, cmd = m.strategyInput.Update(msg)

	return m, cmd
}

func (m HistoryModel) updateKindSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if item, ok := m.kindList.SelectedItem().(listItem); ok {
			m.kind = item.name
			return m, m.loadChecks()
		}
	}

	var cmd tea.Cmd
	m.kindList, cmd = m.kindList.Update(msg)

	return m, cmd
}

func (m HistoryModel) updateChecks(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" && len(m.checks) > 0 {
		m.selected = m.checksTable.Cursor()
		m.trialsTable = UpdateTrialsRows(m.trialsTable, m.checks[m.selected].Details.Trials)
		m.state = StateDetail

		return m, nil
	}

	var cmd tea.Cmd
	m.checksTable, cmd = m.checksTable.Update(msg)

	return m, cmd
}

func (m HistoryModel) loadChecks() tea.Cmd {
	load, id, days := m.load, m.strategyID, m.days

	return func() tea.Msg {
		checks, err := load(context.Background(), id, days)
		if err != nil {
			return LoadErrorMsg{Err: err}
		}

		return ChecksLoadedMsg{Checks: checks}
	}
}

// View implements tea.Model.
func (m HistoryModel) View() string {
	var s strings.Builder

	switch m.state {
	case StateStrategyInput:
		s.WriteString(TitleStyle.Render("Argo Gate - Check History"))
		s.WriteString("\n\n")
		s.WriteString("Enter the strategy id:\n\n")
		s.WriteString(m.strategyInput.View())
		s.WriteString("\n\n")
		s.WriteString(HelpStyle.Render("Press Enter to confirm, ctrl+c to quit"))

	case StateKindSelect:
		s.WriteString(m.kindList.View())
		s.WriteString("\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n")
		}

		s.WriteString(HelpStyle.Render("Press Enter to select, Esc to go back, q to quit"))

	case StateChecks:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Checks - %s (%s)", m.strategyID, m.kind)))
		s.WriteString("\n\n")

		if len(m.checks) == 0 {
			s.WriteString("No checks recorded\n")
		} else {
			s.WriteString(m.checksTable.View())
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Enter: details | Esc: back | q: quit"))

	case StateDetail:
		check := m.checks[m.selected]

		s.WriteString(TitleStyle.Render(fmt.Sprintf("%s check %s", check.Kind, check.CheckedAt.Format("2006-01-02 15:04"))))
		s.WriteString("\n\n")
		s.WriteString(FormatVerdict(check.Passed))
		s.WriteString(" ")
		s.WriteString(check.Message)
		s.WriteString("\n\n")

		for _, c := range check.Details.Criteria {
			s.WriteString(FormatCriterion(c))
			s.WriteString("\n")
		}

		if len(check.Details.Trials) > 0 {
			s.WriteString("\n")
			s.WriteString(m.trialsTable.View())
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Esc: back | q: quit"))
	}

	return s.String()
}
