package boards

import "encoding/json"

// HistoryItem is one recorded question/answer exchange on a board.
// Items are append-only and never mutated after creation.
type HistoryItem struct {
	Question string `json:"question"`
	Response string `json:"response"`
	TS       int64  `json:"ts"`
}

// Board is a named whiteboard session. Doc holds the serialized canvas
// snapshot and is round-tripped without interpretation.
type Board struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	CreatedAt int64           `json:"createdAt"`
	UpdatedAt int64           `json:"updatedAt"`
	Items     []HistoryItem   `json:"items"`
	Doc       json.RawMessage `json:"doc,omitempty"`
}

type Summary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
	Count     int    `json:"count"`
}

// Scope is the ownership context for a board: a specific authenticated
// user's private collection, or the shared anonymous store.
type Scope struct {
	UserID string
}

func (s Scope) Anonymous() bool { return s.UserID == "" }

const DefaultTitle = "Untitled"
