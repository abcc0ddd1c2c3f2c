package session

import (
	"context"
	"encoding/json"

	"github.com/curiosity-whiteboard/whiteboard-backend/internal/solve"
)

// Rect is an axis-aligned bounding box in page coordinates.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Canvas is the drawing engine the controller orchestrates. The engine
// itself is an external collaborator; the controller only enumerates
// shapes, exports them to an image, and writes text shapes back.
type Canvas interface {
	ShapeIDs() []string
	SelectedShapeIDs() []string
	ExportImage(ctx context.Context, shapeIDs []string) (data []byte, mimeType string, err error)
	// UnionBounds reports the bounding box of the given shapes, false
	// when it cannot be computed.
	UnionBounds(shapeIDs []string) (Rect, bool)
	CreateText(text string, x, y float64)
	ViewportCenter() (x, y float64)
	// Snapshot serializes the full canvas state as an opaque blob.
	Snapshot() (json.RawMessage, error)
	// OnChange registers a mutation listener and returns an unlisten func.
	OnChange(fn func()) func()
}

type Solver interface {
	Solve(ctx context.Context, req solve.Request) (*solve.Answer, error)
}

// Recognizer captures one spoken utterance and delivers its transcript.
type Recognizer interface {
	Start(onResult func(text string)) error
	Stop()
}

// KV is the injected key-value capability for UI toggles, replacing
// direct localStorage access.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
}
