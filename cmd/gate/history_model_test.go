package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/stretchr/testify/assert"
)

func sampleChecks() []types.ProfitabilityCheck {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	return []types.ProfitabilityCheck{
		{
			StrategyID:  "momentum-1",
			Kind:        types.CheckKindBacktest,
			Passed:      false,
			Sharpe:      optional.Some(0.4),
			AvgReturn:   2,
			WinRate:     0.45,
			MaxDrawdown: 12,
			Message:     "failed: sharpe 0.40 not > 1.00",
			Details: types.CheckDetails{
				Trials: []types.TrialSummary{
					{Index: 0, Symbol: "BTCUSDT", End: at, Attempts: 1, Outcome: types.TrialOutcomeOk, TotalTrades: 12},
				},
				Criteria: []types.CriterionResult{
					{Name: "sharpe", Value: 0.4, Threshold: 1, Defined: true},
				},
				SampleSize: 12,
			},
			CheckedAt: at,
		},
		{
			StrategyID:  "momentum-1",
			Kind:        types.CheckKindRecent,
			Passed:      true,
			Sharpe:      optional.Some(1.6),
			AvgReturn:   7,
			WinRate:     0.6,
			MaxDrawdown: 8,
			Message:     "passed: recent trades",
			CheckedAt:   at.Add(24 * time.Hour),
		},
	}
}

func staticLoader(checks []types.ProfitabilityCheck, err error) checkLoader {
	return func(context.Context, string, int) ([]types.ProfitabilityCheck, error) {
		return checks, err
	}
}

func TestNewHistoryModel(t *testing.T) {
	m := NewHistoryModel(staticLoader(nil, nil), "", 0)
	assert.Equal(t, StateStrategyInput, m.state)
	assert.Empty(t, m.strategyID)

	m = NewHistoryModel(staticLoader(nil, nil), "momentum-1", 30)
	assert.Equal(t, StateKindSelect, m.state)
	assert.Equal(t, "momentum-1", m.strategyID)
	assert.Equal(t, 30, m.days)
}

func TestFilterChecks(t *testing.T) {
	checks := sampleChecks()

	all := FilterChecks(checks, kindAll)
	assert.Len(t, all, 2)
	assert.Equal(t, types.CheckKindRecent, all[0].Kind, "newest first")

	backtest := FilterChecks(checks, string(types.CheckKindBacktest))
	assert.Len(t, backtest, 1)
	assert.Equal(t, types.CheckKindBacktest, backtest[0].Kind)
}

func TestFormatCriterion(t *testing.T) {
	assert.Equal(t, "✓ win_rate 0.60 vs 0.50",
		FormatCriterion(types.CriterionResult{Name: "win_rate", Value: 0.6, Threshold: 0.5, Passed: true, Defined: true}))
	assert.Equal(t, "✗ sharpe undefined vs 1.00",
		FormatCriterion(types.CriterionResult{Name: "sharpe", Threshold: 1}))
}

func TestChecksLoadedMovesToTable(t *testing.T) {
	m := NewHistoryModel(staticLoader(nil, nil), "momentum-1", 0)
	m.kind = kindAll

	updated, _ := m.Update(ChecksLoadedMsg{Checks: sampleChecks()})
	hm := updated.(HistoryModel)

	assert.Equal(t, StateChecks, hm.state)
	assert.Len(t, hm.checks, 2)
	assert.Len(t, hm.checksTable.Rows(), 2)
	assert.Equal(t, "PASS", hm.checksTable.Rows()[0][2])

	updated, _ = hm.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateKindSelect, updated.(HistoryModel).state)
}

func TestBrowseChecks(t *testing.T) {
	m := NewHistoryModel(staticLoader(sampleChecks(), nil), "momentum-1", 0)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 40))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Select Check Kind"))
	}, teatest.WithDuration(2*time.Second))

	// first item is "all"
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Checks - momentum-1 (all)"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("passed: recent trades"))
	}, teatest.WithDuration(2*time.Second))

	err := tm.Quit()
	assert.NoError(t, err)
}

func TestLoadErrorIsShown(t *testing.T) {
	m := NewHistoryModel(staticLoader(nil, errors.New("database is locked")), "momentum-1", 0)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 40))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Select Check Kind"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("database is locked"))
	}, teatest.WithDuration(2*time.Second))

	err := tm.Quit()
	assert.NoError(t, err)
}

func TestStrategyInput(t *testing.T) {
	m := NewHistoryModel(staticLoader(nil, nil), "", 0)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 40))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Enter the strategy id"))
	}, teatest.WithDuration(2*time.Second))

	tm.Type("momentum-1")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Select Check Kind"))
	}, teatest.WithDuration(2*time.Second))

	err := tm.Quit()
	assert.NoError(t, err)
}
