package compliance

import (
	"github.com/shopspring/decimal"

	"tradelog/internal/models"
)

// ComputePnL returns round2((exit-entry)*size) for Long and
// round2((entry-exit)*size) for Short, rounding half away from zero.
func ComputePnL(direction models.Direction, entry, exit, size decimal.Decimal) decimal.Decimal {
	diff := exit.Sub(entry)
	if direction == models.DirectionShort {
		diff = entry.Sub(exit)
	}
	return diff.Mul(size).Round(2)
}

// IsCompliant requires zero Broken outcomes and at least one Followed. A trade
// with no rules, or only NotApplicable ones, is not compliant.
func IsCompliant(outcomes map[string]models.Outcome) bool {
	followed := 0
	for _, o := range outcomes {
		switch o {
		case models.OutcomeBroken:
			return false
		case models.OutcomeFollowed:
			followed++
		}
	}
	return followed >= 1
}

func priceWarnings(direction models.Direction, entry, exit decimal.Decimal, target, stop *decimal.Decimal) []Warning {
	var out []Warning
	long := direction == models.DirectionLong
	if target != nil {
		if (long && target.LessThanOrEqual(entry)) || (!long && target.GreaterThanOrEqual(entry)) {
			out = append(out, Warning{
				Code:    WarnTargetWrongSide,
				Message: "target price is on the wrong side of entry for a " + string(direction) + " trade",
			})
		}
		if exit.Equal(*target) {
			out = append(out, Warning{Code: WarnExitAtTarget, Message: "exit price equals planned target"})
		}
	}
	if stop != nil {
		if (long && stop.GreaterThanOrEqual(entry)) || (!long && stop.LessThanOrEqual(entry)) {
			out = append(out, Warning{
				Code:    WarnStopWrongSide,
				Message: "stop price is on the wrong side of entry for a " + string(direction) + " trade",
			})
		}
	}
	return out
}
