package decision

import (
	"testing"

	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/stretchr/testify/suite"
)

type FusionTestSuite struct {
	suite.Suite
	w FusionWeights
}

func TestFusionSuite(t *testing.T) {
	suite.Run(t, new(FusionTestSuite))
}

func (suite *FusionTestSuite) SetupTest() {
	suite.w = DefaultFusionWeights()
}

func decision(action types.Action, confidence, size float64) types.Decision {
	return types.Decision{Action: action, Confidence: confidence, TargetPositionSizePct: size}
}

func (suite *FusionTestSuite) TestFuse() {
	tests := []struct {
		name       string
		fast       types.Decision
		external   types.Decision
		action     types.Action
		confidence float64
		size       float64
		source     types.DecisionSource
	}{
		{
			name:       "flat fast adopts external with penalty",
			fast:       decision(types.ActionFlat, 0.5, 0),
			external:   decision(types.ActionLong, 0.9, 8),
			action:     types.ActionLong,
			confidence: 0.72,
			size:       8,
			source:     types.DecisionSourceExternal,
		},
		{
			name:       "agreement blends 70/30",
			fast:       decision(types.ActionShort, 0.6, 6),
			external:   decision(types.ActionShort, 0.9, 10),
			action:     types.ActionShort,
			confidence: 0.69,
			size:       7.2,
			source:     types.DecisionSourceFused,
		},
		{
			name:       "close disagreement keeps fast",
			fast:       decision(types.ActionLong, 0.6, 6),
			external:   decision(types.ActionShort, 0.65, 9),
			action:     types.ActionLong,
			confidence: 0.6,
			size:       6,
			source:     "",
		},
		{
			name:       "confident external overrides with size penalty",
			fast:       decision(types.ActionLong, 0.5, 5),
			external:   decision(types.ActionShort, 0.9, 10),
			action:     types.ActionShort,
			confidence: 0.9,
			size:       8,
			source:     types.DecisionSourceExternal,
		},
		{
			name:       "more confident fast wins disagreement",
			fast:       decision(types.ActionLong, 0.85, 8),
			external:   decision(types.ActionShort, 0.5, 10),
			action:     types.ActionLong,
			confidence: 0.85,
			size:       8,
			source:     "",
		},
		{
			name:       "flat external keeps fast",
			fast:       decision(types.ActionLong, 0.6, 6),
			external:   decision(types.ActionFlat, 0.99, 0),
			action:     types.ActionLong,
			confidence: 0.6,
			size:       6,
			source:     "",
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			out := Fuse(tc.fast, tc.external, suite.w)

			suite.Equal(tc.action, out.Action)
			suite.InDelta(tc.confidence, out.Confidence, 1e-9)
			suite.InDelta(tc.size, out.TargetPositionSizePct, 1e-9)
			suite.Equal(tc.source, out.Source)
			suite.NotEmpty(out.Notes)
		})
	}
}
