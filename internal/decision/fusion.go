package decision

import (
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-gate/internal/types"
)

// FusionWeights tunes how a fast and an external decision are blended.
type FusionWeights struct {
	// Fast and External weight confidence and size when both agree on direction.
	Fast     float64 `yaml:"fast" json:"fast"`
	External float64 `yaml:"external" json:"external"`
	// FlatAdoptPenalty cuts confidence when an external action replaces a flat fast decision.
	FlatAdoptPenalty float64 `yaml:"flat_adopt_penalty" json:"flatAdoptPenalty"`
	// DisagreementSizePenalty cuts size when an external action overrides an opposite fast action.
	DisagreementSizePenalty float64 `yaml:"disagreement_size_penalty" json:"disagreementSizePenalty"`
	// CloseConfidenceBand is the confidence gap within which the fast decision wins a disagreement.
	CloseConfidenceBand float64 `yaml:"close_confidence_band" json:"closeConfidenceBand"`
}

func DefaultFusionWeights() FusionWeights {
	return FusionWeights{
		Fast:                    0.7,
		External:                0.3,
		FlatAdoptPenalty:        0.2,
		DisagreementSizePenalty: 0.2,
		CloseConfidenceBand:     0.1,
	}
}

// Fuse combines a fast decision with an external one.
//
//   - fast flat, external long/short: adopt external with confidence cut by FlatAdoptPenalty
//   - same direction: weighted blend of confidence and size
//   - opposite directions: fast wins when confidences are within CloseConfidenceBand or
//     fast is more confident; otherwise external wins with size cut by DisagreementSizePenalty
//   - external flat: fast is kept
func Fuse(fast, external types.Decision, w FusionWeights) types.Decision {
	switch {
	case external.Action == types.ActionFlat:
		out := fast
		out.Notes = appendNote(fast.Notes, "external flat, kept fast decision")

		return out

	case fast.Action == types.ActionFlat:
		return types.Decision{
			Action:                external.Action,
			Confidence:            external.Confidence * (1 - w.FlatAdoptPenalty),
			TargetPositionSizePct: external.TargetPositionSizePct,
			Notes:                 appendNote(external.Notes, "adopted external over flat fast decision"),
			Source:                types.DecisionSourceExternal,
			Strength:              fast.Strength,
		}

	case fast.Action == external.Action:
		total := w.Fast + w.External
		if total <= 0 {
			total = 1
		}

		return types.Decision{
			Action:                fast.Action,
			Confidence:            (w.Fast*fast.Confidence + w.External*external.Confidence) / total,
			TargetPositionSizePct: (w.Fast*fast.TargetPositionSizePct + w.External*external.TargetPositionSizePct) / total,
			Notes:                 appendNote(fast.Notes, "blended with agreeing external decision"),
			Source:                types.DecisionSourceFused,
			Strength:              fast.Strength,
		}

	default:
		gap := external.Confidence - fast.Confidence
		if math.Abs(gap) <= w.CloseConfidenceBand || gap < 0 {
			out := fast
			out.Notes = appendNote(fast.Notes, fmt.Sprintf("kept fast over disagreeing external (gap %.2f)", gap))

			return out
		}

		return types.Decision{
			Action:                external.Action,
			Confidence:            external.Confidence,
			TargetPositionSizePct: external.TargetPositionSizePct * (1 - w.DisagreementSizePenalty),
			Notes:                 appendNote(external.Notes, "external overrode disagreeing fast decision"),
			Source:                types.DecisionSourceExternal,
			Strength:              fast.Strength,
		}
	}
}

func appendNote(notes, note string) string {
	if notes == "" {
		return note
	}

	return notes + "; " + note
}
