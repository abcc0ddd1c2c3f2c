package boards

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore keeps one document per board under
// users/{uid}/boards/{id}. Mutations are merged (partial-field) writes,
// so two clients editing different fields of the same board do not
// clobber each other the way the file store does.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

type fsItem struct {
	Question string `firestore:"question"`
	Response string `firestore:"response"`
	TS       int64  `firestore:"ts"`
}

type fsBoard struct {
	ID        string   `firestore:"id"`
	Title     string   `firestore:"title"`
	CreatedAt int64    `firestore:"createdAt"`
	UpdatedAt int64    `firestore:"updatedAt"`
	Items     []fsItem `firestore:"items"`
	// Serialized canvas snapshot, stored as its JSON text so it
	// round-trips byte for byte.
	Doc string `firestore:"doc"`
}

func (b fsBoard) toBoard() *Board {
	items := make([]HistoryItem, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, HistoryItem(it))
	}
	out := &Board{ID: b.ID, Title: b.Title, CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt, Items: items}
	if b.Doc != "" {
		out.Doc = json.RawMessage(b.Doc)
	}
	return out
}

func (s *FirestoreStore) boardsCol(scope Scope) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(scope.UserID).Collection("boards")
}

func (s *FirestoreStore) List(ctx context.Context, scope Scope) ([]Summary, error) {
	iter := s.boardsCol(scope).OrderBy("updatedAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	out := []Summary{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list boards: %w", err)
		}
		var b fsBoard
		if err := snap.DataTo(&b); err != nil {
			return nil, fmt.Errorf("decode board %s: %w", snap.Ref.ID, err)
		}
		out = append(out, Summary{
			ID:        snap.Ref.ID,
			Title:     b.Title,
			CreatedAt: b.CreatedAt,
			UpdatedAt: b.UpdatedAt,
			Count:     len(b.Items),
		})
	}
	return out, nil
}

func (s *FirestoreStore) Get(ctx context.Context, scope Scope, id string) (*Board, error) {
	snap, err := s.boardsCol(scope).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get board: %w", err)
	}
	var b fsBoard
	if err := snap.DataTo(&b); err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	if b.ID == "" {
		b.ID = id
	}
	return b.toBoard(), nil
}

func (s *FirestoreStore) Create(ctx context.Context, scope Scope, title string) (*Board, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	now := time.Now().UnixMilli()
	id := NewID()
	b := fsBoard{ID: id, Title: t, CreatedAt: now, UpdatedAt: now, Items: []fsItem{}}
	if _, err := s.boardsCol(scope).Doc(id).Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}
	return b.toBoard(), nil
}

func (s *FirestoreStore) Rename(ctx context.Context, scope Scope, id, title string) (*Board, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	ref := s.boardsCol(scope).Doc(id)
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "title", Value: t},
		{Path: "updatedAt", Value: time.Now().UnixMilli()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("rename board: %w", err)
	}
	return s.Get(ctx, scope, id)
}

func (s *FirestoreStore) Delete(ctx context.Context, scope Scope, id string) error {
	ref := s.boardsCol(scope).Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("delete board: %w", err)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	return nil
}

// AppendItem requires the board to pre-exist in this scope: per-user
// boards are explicit user-managed resources, unlike the shared store's
// upsert-on-append.
func (s *FirestoreStore) AppendItem(ctx context.Context, scope Scope, id string, item HistoryItem) (*Board, error) {
	ref := s.boardsCol(scope).Doc(id)
	var out *Board
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		var b fsBoard
		if err := snap.DataTo(&b); err != nil {
			return err
		}
		b.ID = id
		b.Items = append(b.Items, fsItem(item))
		b.UpdatedAt = time.Now().UnixMilli()
		out = b.toBoard()
		return tx.Set(ref, b)
	})
	if err != nil {
		if err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("append item: %w", err)
	}
	return out, nil
}

func (s *FirestoreStore) GetSnapshot(ctx context.Context, scope Scope, id string) (json.RawMessage, int64, error) {
	snap, err := s.boardsCol(scope).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("get snapshot: %w", err)
	}
	var b fsBoard
	if err := snap.DataTo(&b); err != nil {
		return nil, 0, fmt.Errorf("decode snapshot: %w", err)
	}
	if b.Doc == "" {
		return nil, b.UpdatedAt, nil
	}
	return json.RawMessage(b.Doc), b.UpdatedAt, nil
}

func (s *FirestoreStore) PutSnapshot(ctx context.Context, scope Scope, id string, doc json.RawMessage) (int64, error) {
	now := time.Now().UnixMilli()
	_, err := s.boardsCol(scope).Doc(id).Set(ctx, map[string]interface{}{
		"id":        id,
		"doc":       string(doc),
		"updatedAt": now,
	}, firestore.MergeAll)
	if err != nil {
		return 0, fmt.Errorf("put snapshot: %w", err)
	}
	return now, nil
}
