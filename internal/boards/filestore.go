package boards

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// storeShape is the on-disk layout: a single JSON document shared by all
// anonymous sessions. The legacy "sessions" key is accepted on read and
// treated identically to "boards"; writes always emit "boards".
type storeShape struct {
	Boards   []Board `json:"boards"`
	Sessions []Board `json:"sessions,omitempty"`
}

// FileStore keeps every anonymous board in one JSON file, read and
// rewritten wholesale on each mutation. There is no cross-process
// locking: concurrent writers race under last-write-wins, which is an
// accepted limitation of this scope. The mutex only serializes writers
// within this process.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) read() ([]Board, error) {
	buf, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Board{}, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}
	var shape storeShape
	if err := json.Unmarshal(buf, &shape); err != nil {
		return nil, fmt.Errorf("parse store: %w", err)
	}
	if shape.Boards != nil {
		return shape.Boards, nil
	}
	if shape.Sessions != nil {
		return shape.Sessions, nil
	}
	return []Board{}, nil
}

func (s *FileStore) write(list []Board) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure store dir: %w", err)
	}
	buf, err := json.MarshalIndent(storeShape{Boards: list}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := os.WriteFile(s.path, buf, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context, scope Scope) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].UpdatedAt > list[j].UpdatedAt })

	out := make([]Summary, 0, len(list))
	for _, b := range list {
		out = append(out, Summary{
			ID:        b.ID,
			Title:     b.Title,
			CreatedAt: b.CreatedAt,
			UpdatedAt: b.UpdatedAt,
			Count:     len(b.Items),
		})
	}
	return out, nil
}

func (s *FileStore) Get(ctx context.Context, scope Scope, id string) (*Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			b := list[i]
			if b.Items == nil {
				b.Items = []HistoryItem{}
			}
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) Create(ctx context.Context, scope Scope, title string) (*Board, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read()
	if err != nil {
		return nil, err
	}
	now := time.Now().UnixMilli()
	b := Board{ID: NewID(), Title: t, CreatedAt: now, UpdatedAt: now, Items: []HistoryItem{}}
	list = append([]Board{b}, list...)
	if err := s.write(list); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *FileStore) Rename(ctx context.Context, scope Scope, id, title string) (*Board, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			list[i].Title = t
			list[i].UpdatedAt = time.Now().UnixMilli()
			if err := s.write(list); err != nil {
				return nil, err
			}
			b := list[i]
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) Delete(ctx context.Context, scope Scope, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read()
	if err != nil {
		return err
	}
	next := list[:0]
	found := false
	for _, b := range list {
		if b.ID == id {
			found = true
			continue
		}
		next = append(next, b)
	}
	if !found {
		return ErrNotFound
	}
	return s.write(next)
}

func (s *FileStore) AppendItem(ctx context.Context, scope Scope, id string, item HistoryItem) (*Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read()
	if err != nil {
		return nil, err
	}
	now := time.Now().UnixMilli()
	for i := range list {
		if list[i].ID == id {
			list[i].Items = append(list[i].Items, item)
			list[i].UpdatedAt = now
			if err := s.write(list); err != nil {
				return nil, err
			}
			b := list[i]
			return &b, nil
		}
	}

	// Unknown id: the shared store upserts so history minted against an
	// id that predates a restart of the process is not lost.
	b := Board{ID: id, Title: DefaultTitle, CreatedAt: now, UpdatedAt: now, Items: []HistoryItem{item}}
	list = append([]Board{b}, list...)
	if err := s.write(list); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *FileStore) GetSnapshot(ctx context.Context, scope Scope, id string) (json.RawMessage, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read()
	if err != nil {
		return nil, 0, err
	}
	for i := range list {
		if list[i].ID == id {
			return list[i].Doc, list[i].UpdatedAt, nil
		}
	}
	return nil, 0, nil
}

func (s *FileStore) PutSnapshot(ctx context.Context, scope Scope, id string, doc json.RawMessage) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read()
	if err != nil {
		return 0, err
	}
	now := time.Now().UnixMilli()
	for i := range list {
		if list[i].ID == id {
			list[i].Doc = doc
			list[i].UpdatedAt = now
			if err := s.write(list); err != nil {
				return 0, err
			}
			return now, nil
		}
	}

	b := Board{ID: id, Title: DefaultTitle, CreatedAt: now, UpdatedAt: now, Items: []HistoryItem{}, Doc: doc}
	list = append([]Board{b}, list...)
	if err := s.write(list); err != nil {
		return 0, err
	}
	return now, nil
}

// Prune removes boards whose updatedAt is older than cutoff and reports
// how many were dropped. Used by the retention sweep on the shared
// anonymous store only.
func (s *FileStore) Prune(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read()
	if err != nil {
		return 0, err
	}
	limit := cutoff.UnixMilli()
	next := list[:0]
	dropped := 0
	for _, b := range list {
		if b.UpdatedAt < limit {
			dropped++
			continue
		}
		next = append(next, b)
	}
	if dropped == 0 {
		return 0, nil
	}
	if err := s.write(next); err != nil {
		return 0, err
	}
	return dropped, nil
}
