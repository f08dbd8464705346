package kv

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_PutVersions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	v1, err := s.Put(ctx, "trades", []byte(`[]`), 0)
	if err != nil || v1 != 1 {
		t.Fatalf("v1=%d err=%v", v1, err)
	}
	if _, err := s.Put(ctx, "trades", []byte(`[1]`), 0); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("err=%v want ErrVersionConflict", err)
	}
	v2, err := s.Put(ctx, "trades", []byte(`[1]`), v1)
	if err != nil || v2 != 2 {
		t.Fatalf("v2=%d err=%v", v2, err)
	}
	raw, version, found, err := s.Get(ctx, "trades")
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if string(raw) != `[1]` || version != 2 {
		t.Fatalf("raw=%s version=%d", raw, version)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if _, err := s.Put(ctx, "k", []byte("abc"), 0); err != nil {
		t.Fatalf("err=%v", err)
	}
	raw, _, _, _ := s.Get(ctx, "k")
	raw[0] = 'x'
	again, _, _, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("stored value mutated: %s", again)
	}
}

func TestMemoryStore_DeleteResetsVersion(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, _ = s.Put(ctx, "k", []byte("1"), 0)
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("err=%v", err)
	}
	if _, _, found, _ := s.Get(ctx, "k"); found {
		t.Fatalf("key still present")
	}
	if v, err := s.Put(ctx, "k", []byte("2"), 0); err != nil || v != 1 {
		t.Fatalf("v=%d err=%v", v, err)
	}
}

func TestPrefixed(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	p := Prefixed{Store: mem, Prefix: "tl:"}
	if _, err := p.Put(ctx, "rules", []byte(`[]`), 0); err != nil {
		t.Fatalf("err=%v", err)
	}
	if _, _, found, _ := mem.Get(ctx, "tl:rules"); !found {
		t.Fatalf("prefixed key missing, keys=%v", mem.Keys())
	}
}
