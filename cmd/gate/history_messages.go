package main

import "github.com/rxtech-lab/argo-gate/internal/types"

// ChecksLoadedMsg carries the checks read from the store.
type ChecksLoadedMsg struct {
	Checks []types.ProfitabilityCheck
}

// LoadErrorMsg reports a failed history read.
type LoadErrorMsg struct {
	Err error
}
