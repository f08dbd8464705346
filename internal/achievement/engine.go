package achievement

import (
	"time"

	"tradelog/internal/stats"
)

// Engine evaluates definitions against a stats snapshot. It holds no state
// beyond its catalogs and never writes anything.
type Engine struct {
	Definitions []Definition
	Challenges  []Challenge
}

func NewEngine() *Engine {
	return &Engine{Definitions: Catalog(), Challenges: Challenges()}
}

// IsSatisfied reports whether every requirement of def holds. A definition
// without requirements, or with an unknown requirement type, is never
// satisfied.
func IsSatisfied(def Definition, snap stats.Snapshot) bool {
	if len(def.Requirements) == 0 {
		return false
	}
	for _, req := range def.Requirements {
		if !requirementMet(req, snap) {
			return false
		}
	}
	return true
}

func requirementMet(req Requirement, snap stats.Snapshot) bool {
	v, ok := snap.For(req.Timeframe).Value(req.Type)
	if !ok {
		return false
	}
	switch req.Operator {
	case OpGTE:
		return v >= req.Target
	case OpLTE:
		return v <= req.Target
	case OpEQ:
		return v == req.Target
	}
	return false
}

// Progress returns how far the snapshot is towards def, from 0 to 1, taken
// from its least advanced gte requirement.
func Progress(def Definition, snap stats.Snapshot) float64 {
	if IsSatisfied(def, snap) {
		return 1
	}
	out := 1.0
	seen := false
	for _, req := range def.Requirements {
		if req.Operator != OpGTE || req.Target <= 0 {
			continue
		}
		v, _ := snap.For(req.Timeframe).Value(req.Type)
		p := v / req.Target
		if p > 1 {
			p = 1
		}
		if p < 0 {
			p = 0
		}
		if !seen || p < out {
			out = p
		}
		seen = true
	}
	if !seen {
		return 0
	}
	return out
}

// Rewards lists what a satisfied definition grants. Applying them is up to the
// caller.
func Rewards(def Definition) []Reward {
	out := make([]Reward, len(def.Rewards))
	copy(out, def.Rewards)
	return out
}

// CheckAchievements returns every catalog entry satisfied by snap.
func (e *Engine) CheckAchievements(snap stats.Snapshot) []Definition {
	var out []Definition
	for _, def := range e.Definitions {
		if IsSatisfied(def, snap) {
			out = append(out, def)
		}
	}
	return out
}

// GetActiveChallenges returns challenges that are active and whose window
// contains now.
func (e *Engine) GetActiveChallenges(now time.Time) []Challenge {
	var out []Challenge
	for _, c := range e.Challenges {
		if c.IsActive && !now.Before(c.StartDate) && !now.After(c.EndDate) {
			out = append(out, c)
		}
	}
	return out
}

// Scope narrows snap to the trades dated between the challenge start and the
// earlier of its end and now.
func (c Challenge) Scope(snap stats.Snapshot, now time.Time) stats.Snapshot {
	to := c.EndDate
	if now.Before(to) {
		to = now
	}
	return snap.Between(c.StartDate, to)
}

// CheckChallenges returns the active challenges satisfied by snap, each judged
// on its own window.
func (e *Engine) CheckChallenges(snap stats.Snapshot, now time.Time) []Challenge {
	var out []Challenge
	for _, c := range e.GetActiveChallenges(now) {
		if IsSatisfied(c.Definition, c.Scope(snap, now)) {
			out = append(out, c)
		}
	}
	return out
}

// Lookup finds a definition or challenge by id.
func (e *Engine) Lookup(id string) (Definition, bool) {
	for _, def := range e.Definitions {
		if def.ID == id {
			return def, true
		}
	}
	for _, c := range e.Challenges {
		if c.ID == id {
			return c.Definition, true
		}
	}
	return Definition{}, false
}
