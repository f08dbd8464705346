package compliance

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradelog/internal/models"
)

const dateLayout = "2006-01-02"

// Draft is a trade as submitted, before pnl and compliance are derived.
// Numeric fields arrive as text and are parsed here.
type Draft struct {
	Date        string   `json:"date"`
	Symbol      string   `json:"symbol"`
	Direction   string   `json:"direction"`
	EntryPrice  string   `json:"entryPrice"`
	ExitPrice   string   `json:"exitPrice"`
	Size        string   `json:"size"`
	TargetPrice string   `json:"targetPrice,omitempty"`
	StopPrice   string   `json:"stopPrice,omitempty"`
	Emotion     string   `json:"emotion,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// AppliedRuleInput references a catalog rule by id, or an ad-hoc rule by text
// when RuleID is empty.
type AppliedRuleInput struct {
	RuleID  string         `json:"ruleId,omitempty"`
	Text    string         `json:"text,omitempty"`
	Outcome models.Outcome `json:"outcome"`
}

type Result struct {
	Trade    models.TradeEntry
	Warnings []Warning
	// Promoted holds ad-hoc rules that are not in the catalog yet.
	Promoted []models.Rule
}

type Evaluator struct {
	Now   func() time.Time
	NewID func() string
}

func (e *Evaluator) now() time.Time {
	if e == nil || e.Now == nil {
		return time.Now().UTC()
	}
	return e.Now()
}

func (e *Evaluator) newID() string {
	if e == nil || e.NewID == nil {
		return uuid.NewString()
	}
	return e.NewID()
}

// Evaluate validates the draft and derives the finalized trade. It does not
// touch any collection; catalog is read only.
func (e *Evaluator) Evaluate(draft Draft, applied []AppliedRuleInput, catalog []models.Rule) (Result, error) {
	entry, err := parseFinite("entryPrice", draft.EntryPrice)
	if err != nil {
		return Result{}, err
	}
	exit, err := parseFinite("exitPrice", draft.ExitPrice)
	if err != nil {
		return Result{}, err
	}
	size, err := parseFinite("size", draft.Size)
	if err != nil {
		return Result{}, err
	}
	if !size.IsPositive() {
		return Result{}, invalid("size", "must be greater than zero")
	}
	target, err := parseOptional("targetPrice", draft.TargetPrice)
	if err != nil {
		return Result{}, err
	}
	stop, err := parseOptional("stopPrice", draft.StopPrice)
	if err != nil {
		return Result{}, err
	}

	direction := models.Direction(strings.TrimSpace(draft.Direction))
	if !direction.Valid() {
		return Result{}, invalid("direction", "must be Long or Short")
	}
	symbol := strings.ToUpper(strings.TrimSpace(draft.Symbol))
	if symbol == "" {
		return Result{}, invalid("symbol", "required")
	}
	date := strings.TrimSpace(draft.Date)
	if _, err := time.Parse(dateLayout, date); err != nil {
		return Result{}, invalid("date", "must be YYYY-MM-DD")
	}

	rules, outcomes, promoted, err := e.resolveRules(applied, catalog)
	if err != nil {
		return Result{}, err
	}

	warnings := priceWarnings(direction, entry, exit, target, stop)
	trade := models.TradeEntry{
		CreatedAt:     e.now(),
		Date:          date,
		Symbol:        symbol,
		Direction:     direction,
		EntryPrice:    entry,
		ExitPrice:     exit,
		Size:          size,
		TargetPrice:   target,
		StopPrice:     stop,
		Emotion:       strings.TrimSpace(draft.Emotion),
		Notes:         strings.TrimSpace(draft.Notes),
		ImageIDs:      []int64{},
		Rules:         rules,
		RuleOutcomes:  outcomes,
		Tags:          MergeTags(draft.Tags, inheritedTags(rules, catalog, promoted)),
		PnL:           ComputePnL(direction, entry, exit, size),
		RuleCompliant: IsCompliant(outcomes),
		Warnings:      codes(warnings),
	}
	return Result{Trade: trade, Warnings: warnings, Promoted: promoted}, nil
}

// resolveRules turns every input into a catalog id. Ad-hoc text matches an
// existing rule only when exactly one rule carries that text; otherwise a new
// rule is promoted.
func (e *Evaluator) resolveRules(applied []AppliedRuleInput, catalog []models.Rule) ([]models.AppliedRule, map[string]models.Outcome, []models.Rule, error) {
	byID := make(map[string]models.Rule, len(catalog))
	byText := map[string][]models.Rule{}
	for _, r := range catalog {
		byID[r.ID] = r
		byText[r.Text] = append(byText[r.Text], r)
	}

	rules := make([]models.AppliedRule, 0, len(applied))
	outcomes := make(map[string]models.Outcome, len(applied))
	var promoted []models.Rule
	promotedByText := map[string]string{}

	for _, in := range applied {
		if !in.Outcome.Valid() {
			return nil, nil, nil, invalid("outcome", "must be Followed, Broken or NotApplicable")
		}
		var ref models.AppliedRule
		id := strings.TrimSpace(in.RuleID)
		text := strings.TrimSpace(in.Text)
		switch {
		case id != "":
			r, ok := byID[id]
			if !ok {
				return nil, nil, nil, invalid("rules", "unknown rule id "+id)
			}
			ref = models.AppliedRule{ID: r.ID, Text: r.Text}
		case text != "":
			if pid, ok := promotedByText[text]; ok {
				ref = models.AppliedRule{ID: pid, Text: text}
				break
			}
			matches := byText[text]
			if len(matches) > 1 {
				return nil, nil, nil, invalid("rules", "rule text "+strconv.Quote(text)+" matches several rules, reference it by id")
			}
			if len(matches) == 1 {
				ref = models.AppliedRule{ID: matches[0].ID, Text: matches[0].Text}
				break
			}
			r := models.Rule{
				ID:        e.newID(),
				Text:      text,
				Category:  "ad-hoc",
				Tags:      []string{},
				CreatedAt: e.now(),
			}
			promoted = append(promoted, r)
			promotedByText[text] = r.ID
			ref = models.AppliedRule{ID: r.ID, Text: r.Text}
		default:
			return nil, nil, nil, invalid("rules", "rule needs an id or text")
		}
		if _, dup := outcomes[ref.ID]; dup {
			return nil, nil, nil, invalid("rules", "rule "+ref.ID+" applied twice")
		}
		rules = append(rules, ref)
		outcomes[ref.ID] = in.Outcome
	}
	return rules, outcomes, promoted, nil
}

func inheritedTags(rules []models.AppliedRule, catalog, promoted []models.Rule) []string {
	byID := make(map[string]models.Rule, len(catalog)+len(promoted))
	for _, r := range catalog {
		byID[r.ID] = r
	}
	for _, r := range promoted {
		byID[r.ID] = r
	}
	var out []string
	for _, ref := range rules {
		out = append(out, byID[ref.ID].Tags...)
	}
	return out
}

// MergeTags returns the union of both lists, trimmed, keeping the first
// spelling of tags that differ only by case.
func MergeTags(lists ...[]string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, list := range lists {
		for _, tag := range list {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			key := strings.ToLower(tag)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}

func parseFinite(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, invalid(field, "required")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, invalid(field, "must be a finite number")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NewFromFloat(f), nil
	}
	return d, nil
}

func parseOptional(field, raw string) (*decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := parseFinite(field, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
