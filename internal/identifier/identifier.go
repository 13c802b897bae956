// Package identifier provides the injectable ID capability consumed by the
// segmentation engine. IDs only need to be unique within one content item's
// lifetime, so a timestamp-based fallback is acceptable where UUIDs are not
// wanted.
package identifier

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// Generator produces a fresh, collision-resistant identifier on every call.
// Implementations must be safe for concurrent use.
type Generator func() string

// UUID returns a generator backed by random (version 4) UUIDs.
func UUID() Generator {
	return func() string {
		return uuid.NewString()
	}
}

// Timestamp returns a generator combining nanosecond wall-clock time with a
// random suffix. Collision resistance is weaker than UUID but sufficient for
// a single content item.
func Timestamp(now func() int64) Generator {
	return func() string {
		return fmt.Sprintf("%d-%06d", now(), rand.Intn(1_000_000))
	}
}
