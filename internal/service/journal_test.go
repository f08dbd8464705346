package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradelog/internal/blob"
	"tradelog/internal/compliance"
	"tradelog/internal/config"
	"tradelog/internal/kv"
	"tradelog/internal/models"
	"tradelog/internal/repository"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls [][]string
}

func (n *recordingNotifier) Changed(_ context.Context, collections ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, collections)
}

// flakyBlobs fails every Save after the first okSaves.
type flakyBlobs struct {
	*blob.MemoryStore
	okSaves int
	saves   int
}

func (f *flakyBlobs) Save(ctx context.Context, data []byte) (int64, error) {
	f.saves++
	if f.saves > f.okSaves {
		return 0, errors.New("disk full")
	}
	return f.MemoryStore.Save(ctx, data)
}

// failingPuts rejects every write to key.
type failingPuts struct {
	*kv.MemoryStore
	key string
}

func (f *failingPuts) Put(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	if key == f.key {
		return 0, errors.New("connection reset")
	}
	return f.MemoryStore.Put(ctx, key, value, expectedVersion)
}

type fixture struct {
	svc      *Services
	store    *repository.Store
	mem      *kv.MemoryStore
	blobs    blob.Store
	notifier *recordingNotifier
}

func newFixture(t *testing.T, blobs blob.Store) fixture {
	t.Helper()
	mem := kv.NewMemoryStore()
	store := repository.New(mem, nil, 0)
	if blobs == nil {
		blobs = blob.NewMemoryStore()
	}
	n := &recordingNotifier{}
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	svc := New(Deps{
		Store:    store,
		Blobs:    blobs,
		Settings: NewStaticSettings(config.JournalConfig{StartingPortfolioValue: 10000, TargetCompletions: 100, PercentPerCompletion: 1}),
		Notifier: n,
		Now:      func() time.Time { return now },
	})
	return fixture{svc: svc, store: store, mem: mem, blobs: blobs, notifier: n}
}

func seedRules(t *testing.T, f fixture, rules ...models.Rule) {
	t.Helper()
	_, err := f.store.UpdateRules(context.Background(), func([]models.Rule) ([]models.Rule, error) {
		return rules, nil
	})
	if err != nil {
		t.Fatalf("seed rules: %v", err)
	}
}

func draft(direction, entry, exit, size string) compliance.Draft {
	return compliance.Draft{Date: "2026-03-02", Symbol: "AAPL", Direction: direction, EntryPrice: entry, ExitPrice: exit, Size: size}
}

func TestSubmitTrade_FullFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seedRules(t, f,
		models.Rule{ID: "A", Text: "Wait for the setup", Tags: []string{"patience"}},
		models.Rule{ID: "B", Text: "Respect the stop", Violations: 1, LastViolation: strPtr("2026-02-01")},
	)

	res, err := f.svc.Journal.SubmitTrade(ctx, SubmitRequest{
		Draft: draft("Long", "150.25", "152.75", "100"),
		Rules: []compliance.AppliedRuleInput{
			{RuleID: "A", Outcome: models.OutcomeFollowed},
			{RuleID: "B", Outcome: models.OutcomeFollowed},
			{Text: "Journal before entry", Outcome: models.OutcomeNotApplicable},
		},
		Attachments: [][]byte{[]byte("chart")},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Trade.ID != 1 || !res.Trade.PnL.Equal(decimal.RequireFromString("250")) || !res.Trade.RuleCompliant {
		t.Fatalf("trade=%+v", res.Trade)
	}
	if len(res.Trade.ImageIDs) != 1 {
		t.Fatalf("imageIds=%v", res.Trade.ImageIDs)
	}
	if !res.Progress.Applied.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("progress=%+v want 2.5 units", res.Progress)
	}
	unlocked := map[string]bool{}
	for _, d := range res.Unlocked {
		unlocked[d.ID] = true
	}
	if len(unlocked) != 2 || !unlocked["first-trade"] || !unlocked["first-profit"] {
		t.Fatalf("unlocked=%v", unlocked)
	}

	rules, _ := f.store.Rules(ctx)
	if len(rules) != 3 {
		t.Fatalf("rules=%d want 3 after promotion", len(rules))
	}
	if rules[1].Violations != 0 || rules[1].LastViolation != nil {
		t.Fatalf("rule B=%+v", rules[1])
	}
	if rules[2].Text != "Journal before entry" || rules[2].Category != "ad-hoc" {
		t.Fatalf("promoted=%+v", rules[2])
	}
	if len(f.notifier.calls) != 1 || len(f.notifier.calls[0]) != 6 {
		t.Fatalf("notifications=%v", f.notifier.calls)
	}

	// Second trade: new id, newest first, first-trade not granted again.
	res, err = f.svc.Journal.SubmitTrade(ctx, SubmitRequest{
		Draft: draft("Short", "245.80", "248.20", "50"),
		Rules: []compliance.AppliedRuleInput{{RuleID: "B", Outcome: models.OutcomeBroken}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Trade.ID != 2 || !res.Trade.PnL.Equal(decimal.RequireFromString("-120")) || res.Trade.RuleCompliant {
		t.Fatalf("trade=%+v", res.Trade)
	}
	for _, d := range res.Unlocked {
		if d.ID == "first-trade" {
			t.Fatalf("first-trade unlocked twice")
		}
	}
	trades, _, _ := f.svc.Journal.ListTrades(ctx, 10, 0)
	if len(trades) != 2 || trades[0].ID != 2 {
		t.Fatalf("trades=%+v", trades)
	}
	rules, _ = f.store.Rules(ctx)
	if rules[1].Violations != 1 || rules[1].LastViolation == nil || *rules[1].LastViolation != "2026-03-02" {
		t.Fatalf("rule B=%+v", rules[1])
	}
	daily, _ := f.svc.Journal.DailyStats(ctx)
	if daily["2026-03-02"].Violations != 1 {
		t.Fatalf("daily=%+v", daily)
	}
	activity, _ := f.svc.Journal.ActivityLog(ctx)
	if len(activity) != 1 || activity[0].TradeID != 2 {
		t.Fatalf("activity=%+v", activity)
	}
}

func strPtr(s string) *string { return &s }

func TestSubmitTrade_ValidationLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.svc.Journal.SubmitTrade(ctx, SubmitRequest{
		Draft:       draft("Long", "NaN", "10", "1"),
		Attachments: [][]byte{[]byte("x")},
	})
	if !errors.Is(err, compliance.ErrValidation) {
		t.Fatalf("err=%v want validation error", err)
	}
	if keys := f.mem.Keys(); len(keys) != 0 {
		t.Fatalf("store written on rejected draft: %v", keys)
	}
	if f.blobs.(*blob.MemoryStore).Len() != 0 {
		t.Fatalf("attachment saved for rejected draft")
	}
	if len(f.notifier.calls) != 0 {
		t.Fatalf("notified on rejected draft")
	}
}

func TestSubmitTrade_AttachmentFailureAbortsEverything(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyBlobs{MemoryStore: blob.NewMemoryStore(), okSaves: 1}
	f := newFixture(t, flaky)
	seedRules(t, f, models.Rule{ID: "A", Text: "A"})

	_, err := f.svc.Journal.SubmitTrade(ctx, SubmitRequest{
		Draft:       draft("Long", "10", "11", "1"),
		Rules:       []compliance.AppliedRuleInput{{RuleID: "A", Outcome: models.OutcomeBroken}},
		Attachments: [][]byte{[]byte("one"), []byte("two")},
	})
	if !errors.Is(err, ErrAttachmentSave) {
		t.Fatalf("err=%v want ErrAttachmentSave", err)
	}
	if flaky.Len() != 0 {
		t.Fatalf("saved attachment not released: %d left", flaky.Len())
	}
	trades, _ := f.store.Trades(ctx)
	if len(trades) != 0 {
		t.Fatalf("trade persisted after attachment failure")
	}
	rules, _ := f.store.Rules(ctx)
	if rules[0].Violations != 0 {
		t.Fatalf("rule counters changed after attachment failure")
	}
}

func TestDeleteTrade(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	res, err := f.svc.Journal.SubmitTrade(ctx, SubmitRequest{
		Draft:       draft("Long", "10", "11", "1"),
		Attachments: [][]byte{[]byte("a"), []byte("b")},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := f.svc.Journal.DeleteTrade(ctx, res.Trade.ID, false); !errors.Is(err, ErrDeleteNotConfirmed) {
		t.Fatalf("err=%v want ErrDeleteNotConfirmed", err)
	}
	if _, err := f.svc.Journal.GetTrade(ctx, res.Trade.ID); err != nil {
		t.Fatalf("unconfirmed delete removed the trade")
	}
	if err := f.svc.Journal.DeleteTrade(ctx, res.Trade.ID, true); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Journal.GetTrade(ctx, res.Trade.ID); !errors.Is(err, ErrTradeNotFound) {
		t.Fatalf("err=%v want ErrTradeNotFound", err)
	}
	if n := f.blobs.(*blob.MemoryStore).Len(); n != 0 {
		t.Fatalf("attachments not released: %d", n)
	}
	if err := f.svc.Journal.DeleteTrade(ctx, 99, true); !errors.Is(err, ErrTradeNotFound) {
		t.Fatalf("err=%v want ErrTradeNotFound", err)
	}
}

func TestRemoveAttachment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	res, err := f.svc.Journal.SubmitTrade(ctx, SubmitRequest{
		Draft:       draft("Long", "10", "11", "1"),
		Attachments: [][]byte{[]byte("a"), []byte("b")},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	first, second := res.Trade.ImageIDs[0], res.Trade.ImageIDs[1]
	if err := f.svc.Journal.RemoveAttachment(ctx, res.Trade.ID, first); err != nil {
		t.Fatalf("remove: %v", err)
	}
	trade, _ := f.svc.Journal.GetTrade(ctx, res.Trade.ID)
	if len(trade.ImageIDs) != 1 || trade.ImageIDs[0] != second {
		t.Fatalf("imageIds=%v", trade.ImageIDs)
	}
	if _, err := f.blobs.Get(ctx, first); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("attachment still stored: %v", err)
	}
	data, err := f.svc.Journal.Attachment(ctx, res.Trade.ID, second)
	if err != nil || string(data) != "b" {
		t.Fatalf("data=%q err=%v", data, err)
	}
	if err := f.svc.Journal.RemoveAttachment(ctx, res.Trade.ID, first); !errors.Is(err, ErrAttachmentNotFound) {
		t.Fatalf("err=%v want ErrAttachmentNotFound", err)
	}
	if err := f.svc.Journal.RemoveAttachment(ctx, 42, second); !errors.Is(err, ErrTradeNotFound) {
		t.Fatalf("err=%v want ErrTradeNotFound", err)
	}
}

func TestRuleService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	if _, err := f.svc.Rules.CreateRule(ctx, RuleInput{Text: "  "}); !errors.Is(err, compliance.ErrValidation) {
		t.Fatalf("err=%v want validation error", err)
	}
	a, err := f.svc.Rules.CreateRule(ctx, RuleInput{Text: "Size down", Tags: []string{"risk", "Risk"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, _ := f.svc.Rules.CreateRule(ctx, RuleInput{Text: "Size down"})
	if a.ID == b.ID {
		t.Fatalf("rules share an id")
	}
	if len(a.Tags) != 1 {
		t.Fatalf("tags=%v", a.Tags)
	}
	rules, _ := f.svc.Rules.ListRules(ctx)
	if len(rules) != 2 {
		t.Fatalf("rules=%d", len(rules))
	}
}

func TestAchievementService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	if err := f.store.SetSocialConnections(ctx, 6); err != nil {
		t.Fatalf("social: %v", err)
	}
	ev, err := f.svc.Achievements.Evaluate(ctx)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(ev.Unlocked) != 1 || ev.Unlocked[0].ID != "social-butterfly" {
		t.Fatalf("unlocked=%+v", ev.Unlocked)
	}
	list, err := f.svc.Achievements.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, st := range list {
		if st.ID == "social-butterfly" && (!st.Unlocked || st.Progress != 1) {
			t.Fatalf("status=%+v", st)
		}
		if st.ID == "community-leader" && st.Progress != 0.24 {
			t.Fatalf("community-leader progress=%v", st.Progress)
		}
	}
	unlocked, _ := f.svc.Achievements.Unlocked(ctx)
	if len(unlocked) != 1 {
		t.Fatalf("unlocked=%d", len(unlocked))
	}
}

func TestSubmitTrade_DeletedIDNotReused(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seedRules(t, f, models.Rule{ID: "A", Text: "Wait for the setup"})

	first, err := f.svc.Journal.SubmitTrade(ctx, SubmitRequest{
		Draft: draft("Long", "10", "9", "1"),
		Rules: []compliance.AppliedRuleInput{{RuleID: "A", Outcome: models.OutcomeBroken}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := f.svc.Journal.DeleteTrade(ctx, first.Trade.ID, true); err != nil {
		t.Fatalf("delete: %v", err)
	}
	second, err := f.svc.Journal.SubmitTrade(ctx, SubmitRequest{
		Draft: draft("Long", "10", "11", "1"),
		Rules: []compliance.AppliedRuleInput{{RuleID: "A", Outcome: models.OutcomeFollowed}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if second.Trade.ID == first.Trade.ID {
		t.Fatalf("second id=%d reuses deleted id", second.Trade.ID)
	}

	activity, _ := f.svc.Journal.ActivityLog(ctx)
	if len(activity) != 1 || activity[0].TradeID != first.Trade.ID {
		t.Fatalf("activity=%+v", activity)
	}
	if _, err := f.svc.Journal.GetTrade(ctx, activity[0].TradeID); !errors.Is(err, ErrTradeNotFound) {
		t.Fatalf("violation entry resolves to a live trade: err=%v", err)
	}
}

func TestSubmitTrade_RuleSyncFailureRemovesTrade(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	blobs := blob.NewMemoryStore()
	svc := New(Deps{
		Store:    repository.New(&failingPuts{MemoryStore: mem, key: repository.KeyRules}, nil, 0),
		Blobs:    blobs,
		Settings: NewStaticSettings(config.JournalConfig{StartingPortfolioValue: 10000, TargetCompletions: 100, PercentPerCompletion: 1}),
	})

	_, err := svc.Journal.SubmitTrade(ctx, SubmitRequest{
		Draft:       draft("Long", "10", "11", "1"),
		Rules:       []compliance.AppliedRuleInput{{Text: "Journal before entry", Outcome: models.OutcomeFollowed}},
		Attachments: [][]byte{[]byte("chart")},
	})
	if err == nil {
		t.Fatalf("submit succeeded without a rule write")
	}
	trades, _ := svc.Journal.Store.Trades(ctx)
	if len(trades) != 0 {
		t.Fatalf("trades=%+v want none after failed rule sync", trades)
	}
	if blobs.Len() != 0 {
		t.Fatalf("blobs=%d want 0 after failed rule sync", blobs.Len())
	}
}

func TestSubmitTrade_UndecodableCollectionBackedUp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seed := `[{"id":"legacy-1","symbol":"MSFT"},{"id":2,"symbol":"AAPL"}]`
	if _, err := f.mem.Put(ctx, repository.KeyTrades, []byte(seed), 0); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := f.svc.Journal.SubmitTrade(ctx, SubmitRequest{Draft: draft("Long", "10", "11", "1")}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	raw, _, found, err := f.mem.Get(ctx, repository.CorruptKey(repository.KeyTrades, 1))
	if err != nil || !found || string(raw) != seed {
		t.Fatalf("backup=%q found=%v err=%v want seeded collection", raw, found, err)
	}
}
