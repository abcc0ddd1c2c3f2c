package boards

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewID returns a fresh board identifier: millisecond timestamp plus a
// random suffix. Collision within a scope is the only thing that matters,
// so this is deliberately not a UUID to stay compatible with ids minted
// by older clients.
func NewID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d-%d", time.Now().UnixMilli(), time.Now().UnixNano()%100000000)
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), hex.EncodeToString(b))
}
