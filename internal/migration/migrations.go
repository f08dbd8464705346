package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"tradelog/internal/blob"
	"tradelog/internal/compliance"
	"tradelog/internal/models"
)

const (
	IDImagesMigrated       = "images_migrated_v1"
	IDPnLFixed             = "pnl_fixed_v1"
	IDImagesCleaned        = "images_cleaned_v1"
	IDComplianceRecomputed = "compliance_recomputed_v1"
	IDTradeIDsNormalized   = "trade_ids_normalized_v1"
)

// legacyFields were written by earlier versions and have no reader any more.
var legacyFields = []string{"images", "image", "imageData"}

// Default returns the registered migrations in the order they must run.
func Default() []Migration {
	return []Migration{
		{ID: IDImagesMigrated, Transform: ExternalizeImages},
		{ID: IDPnLFixed, Transform: FixPnL},
		{ID: IDImagesCleaned, Transform: CleanupLegacyFields},
		{ID: IDComplianceRecomputed, Transform: RecomputeCompliance},
		{ID: IDTradeIDsNormalized, Transform: NormalizeTradeID},
	}
}

// ExternalizeImages moves inline image payloads into the attachment store and
// records the returned ids under imageIds. Entries that already have imageIds
// are left alone.
func ExternalizeImages(ctx context.Context, env *Env, entry []byte) ([]byte, error) {
	if gjson.GetBytes(entry, "imageIds").Exists() {
		return entry, nil
	}
	images := gjson.GetBytes(entry, "images")
	if !images.Exists() {
		return entry, nil
	}
	ids := []int64{}
	for i, img := range images.Array() {
		payload := img.String()
		if img.IsObject() {
			payload = img.Get("data").String()
		}
		data, err := blob.DecodeInline(payload)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		id, err := env.SaveAttachment(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	out, err := sjson.SetBytes(entry, "imageIds", ids)
	if err != nil {
		return nil, err
	}
	return sjson.DeleteBytes(out, "images")
}

// FixPnL recomputes pnl from direction, prices and size and overwrites the
// stored value when it disagrees.
func FixPnL(_ context.Context, _ *Env, entry []byte) ([]byte, error) {
	direction := models.Direction(gjson.GetBytes(entry, "direction").String())
	if !direction.Valid() {
		return nil, fmt.Errorf("unknown direction %q", direction)
	}
	entryPrice, err := number(entry, "entryPrice")
	if err != nil {
		return nil, err
	}
	exitPrice, err := number(entry, "exitPrice")
	if err != nil {
		return nil, err
	}
	size, err := number(entry, "size")
	if err != nil {
		return nil, err
	}
	want := compliance.ComputePnL(direction, entryPrice, exitPrice, size)
	if stored, err := number(entry, "pnl"); err == nil && stored.Equal(want) {
		return entry, nil
	}
	raw, err := json.Marshal(want)
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(entry, "pnl", raw)
}

// number reads a field stored either as a JSON number or as a decimal string.
func number(entry []byte, field string) (decimal.Decimal, error) {
	v := gjson.GetBytes(entry, field)
	switch v.Type {
	case gjson.Number:
		return decimal.NewFromString(v.Raw)
	case gjson.String:
		d, err := decimal.NewFromString(strings.TrimSpace(v.Str))
		if err != nil {
			return decimal.Zero, fmt.Errorf("%s: %w", field, err)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("%s: missing or not a number", field)
	}
}

// CleanupLegacyFields drops deprecated fields. An entry that still holds inline
// images without imageIds has not been externalized yet and stops the run, so
// its payload is never lost.
func CleanupLegacyFields(_ context.Context, _ *Env, entry []byte) ([]byte, error) {
	if gjson.GetBytes(entry, "images").Exists() && !gjson.GetBytes(entry, "imageIds").Exists() {
		return nil, errors.New("inline images not externalized yet")
	}
	out := entry
	for _, field := range legacyFields {
		if !gjson.GetBytes(out, field).Exists() {
			continue
		}
		next, err := sjson.DeleteBytes(out, field)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

// RecomputeCompliance rewrites ruleCompliant from the stored outcomes.
func RecomputeCompliance(_ context.Context, _ *Env, entry []byte) ([]byte, error) {
	outcomes := map[string]models.Outcome{}
	gjson.GetBytes(entry, "ruleOutcomes").ForEach(func(key, value gjson.Result) bool {
		outcomes[key.String()] = models.Outcome(value.String())
		return true
	})
	want := compliance.IsCompliant(outcomes)
	stored := gjson.GetBytes(entry, "ruleCompliant")
	if stored.Exists() && stored.IsBool() && stored.Bool() == want {
		return entry, nil
	}
	return sjson.SetBytes(entry, "ruleCompliant", want)
}

// NormalizeTradeID turns the id of an entry into a positive integer. Numeric
// strings are converted in place. Any other id is replaced by a fresh one from
// the trade sequence and kept under legacyId.
func NormalizeTradeID(ctx context.Context, env *Env, entry []byte) ([]byte, error) {
	id := gjson.GetBytes(entry, "id")
	if n, ok := positiveInt(id); ok {
		if id.Type == gjson.Number {
			return entry, nil
		}
		return sjson.SetBytes(entry, "id", n)
	}
	next, err := env.NextTradeID(ctx)
	if err != nil {
		return nil, err
	}
	out := entry
	if id.Exists() && id.Type != gjson.Null {
		if out, err = sjson.SetBytes(out, "legacyId", id.String()); err != nil {
			return nil, err
		}
	}
	return sjson.SetBytes(out, "id", next)
}

func positiveInt(v gjson.Result) (int64, bool) {
	var raw string
	switch v.Type {
	case gjson.Number:
		raw = v.Raw
	case gjson.String:
		raw = strings.TrimSpace(v.Str)
	default:
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// maxNumericID is the highest id already usable as a trade id.
func maxNumericID(entries []json.RawMessage) int64 {
	var out int64
	for _, entry := range entries {
		if n, ok := positiveInt(gjson.GetBytes(entry, "id")); ok && n > out {
			out = n
		}
	}
	return out
}
