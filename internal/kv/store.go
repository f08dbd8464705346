package kv

import (
	"context"
	"errors"
)

// ErrVersionConflict is returned by Put when the stored version differs from
// the expected one.
var ErrVersionConflict = errors.New("kv: version conflict")

// Store holds serialized documents under string keys. Every document carries a
// version that increases by one on each successful Put.
type Store interface {
	// Get returns the document and its version. A missing key yields found=false
	// and version 0.
	Get(ctx context.Context, key string) (value []byte, version int64, found bool, err error)
	// Put writes value if the current version equals expectedVersion (0 means the
	// key must not exist) and returns the new version.
	Put(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error)
	Delete(ctx context.Context, key string) error
}

// Prefixed namespaces every key of an underlying store.
type Prefixed struct {
	Store  Store
	Prefix string
}

func (p Prefixed) Get(ctx context.Context, key string) ([]byte, int64, bool, error) {
	return p.Store.Get(ctx, p.Prefix+key)
}

func (p Prefixed) Put(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	return p.Store.Put(ctx, p.Prefix+key, value, expectedVersion)
}

func (p Prefixed) Delete(ctx context.Context, key string) error {
	return p.Store.Delete(ctx, p.Prefix+key)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
