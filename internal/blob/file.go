package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const seqFile = "seq.json"

// FileStore writes one file per attachment under Dir. The last issued id is
// persisted in seq.json so ids survive restarts and are never handed out twice.
type FileStore struct {
	dir  string
	mu   sync.Mutex
	last int64
}

type seqState struct {
	Last int64 `json:"last"`
}

func NewFileStore(dir string) (*FileStore, error) {
	s := &FileStore{dir: dir}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	b, err := os.ReadFile(filepath.Join(s.dir, seqFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var st seqState
	if err := json.Unmarshal(b, &st); err != nil {
		return fmt.Errorf("blob: read sequence: %w", err)
	}
	s.last = st.Last
	return nil
}

func (s *FileStore) saveSeq(last int64) error {
	b, err := json.Marshal(seqState{Last: last})
	if err != nil {
		return err
	}
	tmp := filepath.Join(s.dir, seqFile+".tmp")
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(s.dir, seqFile))
}

func (s *FileStore) path(id int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d.bin", id))
}

func (s *FileStore) Save(ctx context.Context, data []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.last + 1
	// The sequence is advanced first so a crash between the two writes burns
	// an id instead of reusing one.
	if err := s.saveSeq(id); err != nil {
		return 0, err
	}
	s.last = id
	if err := os.WriteFile(s.path(id), data, 0o600); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *FileStore) Get(ctx context.Context, id int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *FileStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}
