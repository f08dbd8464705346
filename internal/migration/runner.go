package migration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"tradelog/internal/blob"
	"tradelog/internal/logger"
	"tradelog/internal/repository"
)

// Transform rewrites one stored trade document. It must return entry unchanged
// when there is nothing to do, so a second run is a no-op.
type Transform func(ctx context.Context, env *Env, entry []byte) ([]byte, error)

type Migration struct {
	ID        string
	Transform Transform
}

// Error reports the entry that aborted a migration.
type Error struct {
	Migration string
	Index     int
	Err       error
}

func (e *Error) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("migration %s: %v", e.Migration, e.Err)
	}
	return fmt.Sprintf("migration %s: entry %d: %v", e.Migration, e.Index, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Env is handed to transforms for the duration of one migration run.
type Env struct {
	blobs   blob.Store
	saved   []int64
	tradeID func(ctx context.Context) (int64, error)
}

// SaveAttachment stores data in the attachment store. Ids saved during a run
// that does not commit are released again.
func (e *Env) SaveAttachment(ctx context.Context, data []byte) (int64, error) {
	if e.blobs == nil {
		return 0, errors.New("no attachment store configured")
	}
	id, err := e.blobs.Save(ctx, data)
	if err != nil {
		return 0, err
	}
	e.saved = append(e.saved, id)
	return id, nil
}

// NextTradeID issues a fresh trade id from the store's sequence.
func (e *Env) NextTradeID(ctx context.Context) (int64, error) {
	if e.tradeID == nil {
		return 0, errors.New("no trade id sequence configured")
	}
	return e.tradeID(ctx)
}

type Report struct {
	Version int               `json:"version"`
	Applied []string          `json:"applied"`
	Adopted []string          `json:"adopted,omitempty"`
	Changed map[string]int    `json:"changed"`
	Failed  map[string]string `json:"failed,omitempty"`
}

// Runner applies the registered migrations, in order, to the trade collection.
type Runner struct {
	Store      *repository.Store
	Blobs      blob.Store
	Logger     *zap.Logger
	Migrations []Migration
}

func NewRunner(store *repository.Store, blobs blob.Store, log *zap.Logger) *Runner {
	return &Runner{Store: store, Blobs: blobs, Logger: logger.OrNop(log), Migrations: Default()}
}

func (r *Runner) log() *zap.Logger {
	return logger.OrNop(r.Logger)
}

// Run applies every migration that is not recorded as applied. A failing
// migration is logged and left unapplied; the others still run. The returned
// error is only set when the schema document itself cannot be read or written.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	report := Report{Changed: map[string]int{}, Failed: map[string]string{}}
	schema, err := r.Store.Schema(ctx)
	if err != nil {
		return report, err
	}

	for _, m := range r.Migrations {
		if schema.Applied[m.ID] {
			continue
		}
		legacy, err := r.Store.LegacyFlag(ctx, m.ID)
		if err != nil {
			r.log().Warn("read legacy migration flag failed", zap.String("migration", m.ID), zap.Error(err))
		}
		if legacy {
			if schema, err = r.markApplied(ctx, m.ID); err != nil {
				return report, err
			}
			report.Adopted = append(report.Adopted, m.ID)
			continue
		}

		changed, err := r.apply(ctx, m)
		if err != nil {
			r.log().Warn("migration failed, will retry on next start", zap.String("migration", m.ID), zap.Error(err))
			report.Failed[m.ID] = err.Error()
			continue
		}
		if schema, err = r.markApplied(ctx, m.ID); err != nil {
			return report, err
		}
		if err := r.Store.SetLegacyFlag(ctx, m.ID); err != nil {
			r.log().Warn("write legacy migration flag failed", zap.String("migration", m.ID), zap.Error(err))
		}
		report.Applied = append(report.Applied, m.ID)
		report.Changed[m.ID] = changed
		r.log().Info("migration applied", zap.String("migration", m.ID), zap.Int("changed", changed))
	}
	report.Version = schema.Version
	return report, nil
}

func (r *Runner) markApplied(ctx context.Context, id string) (repository.Schema, error) {
	return r.Store.UpdateSchema(ctx, func(cur repository.Schema) (repository.Schema, error) {
		cur.Applied[id] = true
		cur.Version = r.contiguous(cur.Applied)
		return cur, nil
	})
}

func (r *Runner) contiguous(applied map[string]bool) int {
	n := 0
	for _, m := range r.Migrations {
		if !applied[m.ID] {
			break
		}
		n++
	}
	return n
}

// apply transforms every entry and writes the collection back only when an
// entry changed. The write is conditional on the version that was read.
func (r *Runner) apply(ctx context.Context, m Migration) (changed int, err error) {
	env := &Env{blobs: r.Blobs}
	defer func() {
		if p := recover(); p != nil {
			err = &Error{Migration: m.ID, Index: -1, Err: fmt.Errorf("panic: %v", p)}
		}
		if err != nil && len(env.saved) > 0 {
			if rerr := blob.Release(ctx, r.Blobs, env.saved); rerr != nil {
				r.log().Warn("release attachments of aborted migration failed", zap.String("migration", m.ID), zap.Error(rerr))
			}
		}
	}()

	entries, version, err := r.Store.RawTrades(ctx)
	if err != nil {
		return 0, err
	}
	floor := maxNumericID(entries)
	env.tradeID = func(ctx context.Context) (int64, error) {
		return r.Store.NextTradeID(ctx, floor)
	}
	out := make([]json.RawMessage, len(entries))
	for i, entry := range entries {
		next, terr := m.Transform(ctx, env, entry)
		if terr != nil {
			return 0, &Error{Migration: m.ID, Index: i, Err: terr}
		}
		if !bytes.Equal(next, entry) {
			changed++
		}
		out[i] = next
	}
	if changed == 0 {
		return 0, nil
	}
	if err := r.Store.PutRawTrades(ctx, out, version); err != nil {
		return 0, &Error{Migration: m.ID, Index: -1, Err: err}
	}
	return changed, nil
}
