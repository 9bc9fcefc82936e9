package follow

import "context"

// Checker resolves the reciprocal follow relationship between two users.
// The social graph lives in a separate service; this port is the only thing
// the messaging core knows about it.
type Checker interface {
	// IsMutualFollow reports whether userA and userB follow each other.
	IsMutualFollow(ctx context.Context, userA, userB string) (bool, error)
}
