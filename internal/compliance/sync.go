package compliance

import "tradelog/internal/models"

// SyncRules applies one trade's outcomes to the rule catalog and returns the
// updated copy. Broken increments violations and stamps lastViolation with the
// trade date; Followed decrements, floored at zero, and clears lastViolation
// once the counter is back at zero. Rules are matched by id only.
func SyncRules(catalog []models.Rule, trade models.TradeEntry) []models.Rule {
	out := make([]models.Rule, len(catalog))
	copy(out, catalog)
	index := make(map[string]int, len(out))
	for i, r := range out {
		index[r.ID] = i
	}
	for _, ref := range trade.Rules {
		i, ok := index[ref.ID]
		if !ok {
			continue
		}
		r := out[i]
		switch trade.RuleOutcomes[ref.ID] {
		case models.OutcomeBroken:
			r.Violations++
			date := trade.Date
			r.LastViolation = &date
		case models.OutcomeFollowed:
			if r.Violations > 0 {
				r.Violations--
			}
			if r.Violations == 0 {
				r.LastViolation = nil
			}
		}
		out[i] = r
	}
	return out
}

// AddPromoted appends promoted rules whose id is not in the catalog yet.
func AddPromoted(catalog []models.Rule, promoted []models.Rule) []models.Rule {
	if len(promoted) == 0 {
		return catalog
	}
	have := make(map[string]struct{}, len(catalog))
	for _, r := range catalog {
		have[r.ID] = struct{}{}
	}
	out := append([]models.Rule(nil), catalog...)
	for _, r := range promoted {
		if _, ok := have[r.ID]; ok {
			continue
		}
		out = append(out, r)
	}
	return out
}
