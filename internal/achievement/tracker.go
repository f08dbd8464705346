package achievement

import (
	"context"

	"go.uber.org/zap"

	"tradelog/internal/logger"
	"tradelog/internal/repository"
)

// Tracker owns the persisted unlock set. Ids are only ever added.
type Tracker struct {
	Store  *repository.Store
	Engine *Engine
	Logger *zap.Logger
}

// Unlock records every satisfied definition that is not unlocked yet and
// returns only those, so rewards are reported once per achievement.
func (t *Tracker) Unlock(ctx context.Context, satisfied []Definition) ([]Definition, error) {
	if len(satisfied) == 0 {
		return nil, nil
	}
	var fresh []Definition
	_, err := t.Store.UpdateUnlocked(ctx, func(ids []string) ([]string, error) {
		fresh = nil
		have := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			have[id] = struct{}{}
		}
		for _, def := range satisfied {
			if _, ok := have[def.ID]; ok {
				continue
			}
			have[def.ID] = struct{}{}
			ids = append(ids, def.ID)
			fresh = append(fresh, def)
		}
		if len(fresh) == 0 {
			return ids, repository.ErrNoChange
		}
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	for _, def := range fresh {
		logger.OrNop(t.Logger).Info("achievement unlocked", zap.String("achievement", def.ID), zap.String("tier", string(def.Tier)))
	}
	return fresh, nil
}

// Unlocked returns the unlocked definitions in unlock order. Ids that are no
// longer in any catalog are skipped.
func (t *Tracker) Unlocked(ctx context.Context) ([]Definition, error) {
	ids, err := t.Store.Unlocked(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Definition, 0, len(ids))
	for _, id := range ids {
		def, ok := t.Engine.Lookup(id)
		if !ok {
			logger.OrNop(t.Logger).Debug("unlocked id not in catalog", zap.String("achievement", id))
			continue
		}
		out = append(out, def)
	}
	return out, nil
}
