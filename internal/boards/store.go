package boards

import (
	"context"
	"encoding/json"
)

// Store is the board persistence contract. Two implementations exist:
// FileStore for the shared anonymous scope and FirestoreStore for
// per-user collections. Callers pick one through a Resolver rather than
// branching on authentication state themselves.
type Store interface {
	// List returns board summaries sorted by updatedAt descending.
	List(ctx context.Context, scope Scope) ([]Summary, error)
	Get(ctx context.Context, scope Scope, id string) (*Board, error)
	Create(ctx context.Context, scope Scope, title string) (*Board, error)
	Rename(ctx context.Context, scope Scope, id, title string) (*Board, error)
	Delete(ctx context.Context, scope Scope, id string) error
	// AppendItem adds one history item. The anonymous store upserts a
	// board titled "Untitled" when id is unknown; the per-user store
	// requires the board to pre-exist.
	AppendItem(ctx context.Context, scope Scope, id string, item HistoryItem) (*Board, error)
	// GetSnapshot returns the stored canvas snapshot and the board's
	// updatedAt, or (nil, 0, nil) when the board is absent.
	GetSnapshot(ctx context.Context, scope Scope, id string) (json.RawMessage, int64, error)
	// PutSnapshot overwrites the snapshot, upserting the board if absent,
	// and returns the new updatedAt.
	PutSnapshot(ctx context.Context, scope Scope, id string, doc json.RawMessage) (int64, error)
}

type Resolver struct {
	anon Store
	user Store
}

func NewResolver(anon, user Store) *Resolver {
	return &Resolver{anon: anon, user: user}
}

// ForScope selects the backing store for a scope. Anonymous requests
// always land on the shared store; authenticated ones on the per-user
// store when it is configured.
func (r *Resolver) ForScope(scope Scope) Store {
	if scope.Anonymous() || r.user == nil {
		return r.anon
	}
	return r.user
}
