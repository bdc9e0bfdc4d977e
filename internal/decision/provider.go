package decision

import (
	"context"

	"github.com/rxtech-lab/argo-gate/internal/types"
)

// DecisionProvider is an external source of trading decisions, typically a model behind an API.
// Implementations may be slow or fail; the engine bounds every call with a timeout.
type DecisionProvider interface {
	// Name identifies the provider in logs and errors.
	Name() string
	// Decide returns the provider's decision for one step.
	Decide(ctx context.Context, dctx types.DecisionContext, cfg types.StrategyConfig) (types.Decision, error)
}
