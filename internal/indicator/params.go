package indicator

import (
	"github.com/rxtech-lab/argo-gate/pkg/errors"
)

// periodParam reads a positive int period from params[idx].
func periodParam(params []any, idx int, name string) (int, error) {
	if len(params) <= idx {
		return 0, errors.Newf(errors.ErrCodeMissingParameter, "missing %s parameter", name)
	}

	period, ok := params[idx].(int)
	if !ok {
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected int", name)
	}

	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be a positive integer, got %d", name, period)
	}

	return period, nil
}
