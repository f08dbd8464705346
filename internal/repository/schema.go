package repository

import "context"

// Schema records which trade migrations have been applied. Version is the
// length of the contiguous applied prefix of the registered migration list.
type Schema struct {
	Version int             `json:"version"`
	Applied map[string]bool `json:"applied"`
}

func (s *Store) Schema(ctx context.Context) (Schema, error) {
	item, _, err := load(ctx, s, KeySchema, emptySchema)
	if item.Applied == nil {
		item.Applied = map[string]bool{}
	}
	return item, err
}

func (s *Store) UpdateSchema(ctx context.Context, fn func(Schema) (Schema, error)) (Schema, error) {
	return update(ctx, s, KeySchema, emptySchema, func(cur Schema) (Schema, error) {
		if cur.Applied == nil {
			cur.Applied = map[string]bool{}
		}
		return fn(cur)
	})
}
