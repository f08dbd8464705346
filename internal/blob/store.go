package blob

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("blob: attachment not found")

// Store holds binary attachments referenced by opaque integer ids. Ids are
// never reused after deletion.
type Store interface {
	Save(ctx context.Context, data []byte) (int64, error)
	Get(ctx context.Context, id int64) ([]byte, error)
	Delete(ctx context.Context, id int64) error
}

// Release deletes every id and returns the first error. Used to roll back
// attachments saved for a write that did not commit.
func Release(ctx context.Context, s Store, ids []int64) error {
	var first error
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) && first == nil {
			first = err
		}
	}
	return first
}
