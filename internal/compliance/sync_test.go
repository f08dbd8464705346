package compliance

import (
	"testing"

	"tradelog/internal/models"
)

func strPtr(s string) *string { return &s }

func TestSyncRules_FollowedAndBroken(t *testing.T) {
	catalog := []models.Rule{
		{ID: "A", Text: "A", Violations: 0},
		{ID: "B", Text: "B", Violations: 2, LastViolation: strPtr("2026-01-01")},
	}
	trade := models.TradeEntry{
		Date:         "2026-03-02",
		Rules:        []models.AppliedRule{{ID: "A"}, {ID: "B"}},
		RuleOutcomes: map[string]models.Outcome{"A": models.OutcomeFollowed, "B": models.OutcomeBroken},
	}
	trade.RuleCompliant = IsCompliant(trade.RuleOutcomes)
	if trade.RuleCompliant {
		t.Fatalf("A followed + B broken must not be compliant")
	}
	out := SyncRules(catalog, trade)
	if out[0].Violations != 0 || out[0].LastViolation != nil {
		t.Fatalf("A=%+v want floored at 0 with no lastViolation", out[0])
	}
	if out[1].Violations != 3 || out[1].LastViolation == nil || *out[1].LastViolation != "2026-03-02" {
		t.Fatalf("B=%+v", out[1])
	}
	if catalog[1].Violations != 2 {
		t.Fatalf("input catalog mutated")
	}
}

func TestSyncRules_FollowedClearsAtZero(t *testing.T) {
	catalog := []models.Rule{{ID: "A", Violations: 2, LastViolation: strPtr("2026-01-01")}}
	followed := models.TradeEntry{
		Date:         "2026-03-03",
		Rules:        []models.AppliedRule{{ID: "A"}},
		RuleOutcomes: map[string]models.Outcome{"A": models.OutcomeFollowed},
	}
	out := SyncRules(catalog, followed)
	if out[0].Violations != 1 || out[0].LastViolation == nil {
		t.Fatalf("after one follow: %+v", out[0])
	}
	out = SyncRules(out, followed)
	if out[0].Violations != 0 || out[0].LastViolation != nil {
		t.Fatalf("after two follows: %+v", out[0])
	}
	out = SyncRules(out, followed)
	if out[0].Violations != 0 {
		t.Fatalf("violations went negative: %d", out[0].Violations)
	}
}

func TestSyncRules_SameTextDifferentIDs(t *testing.T) {
	catalog := []models.Rule{
		{ID: "r1", Text: "Size down"},
		{ID: "r2", Text: "Size down"},
	}
	trade := models.TradeEntry{
		Date:         "2026-03-02",
		Rules:        []models.AppliedRule{{ID: "r2", Text: "Size down"}},
		RuleOutcomes: map[string]models.Outcome{"r2": models.OutcomeBroken},
	}
	out := SyncRules(catalog, trade)
	if out[0].Violations != 0 || out[1].Violations != 1 {
		t.Fatalf("counter drift: %+v", out)
	}
}

func TestAddPromoted(t *testing.T) {
	catalog := []models.Rule{{ID: "a"}}
	out := AddPromoted(catalog, []models.Rule{{ID: "a"}, {ID: "b"}})
	if len(out) != 2 || out[1].ID != "b" {
		t.Fatalf("out=%+v", out)
	}
	if len(catalog) != 1 {
		t.Fatalf("input mutated")
	}
}
