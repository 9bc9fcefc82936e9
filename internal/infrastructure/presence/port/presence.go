package port

import "context"

// Tracker maintains the ephemeral mapping from user to the set of currently
// open connection identifiers. A user is online iff the set is non-empty;
// there is no stored offline flag. Implementations must be concurrency-safe
// and the remove-then-check in Disconnect must be atomic, since it drives the
// online -> offline transition.
type Tracker interface {
	// Connect records connID as a live connection of userID.
	Connect(ctx context.Context, userID, connID string) error

	// Disconnect removes connID and reports whether the user's connection set
	// became empty, i.e. the user just went offline.
	Disconnect(ctx context.Context, userID, connID string) (wentOffline bool, err error)

	// IsOnline reports whether userID has at least one open connection.
	IsOnline(ctx context.Context, userID string) (bool, error)

	// BatchIsOnline resolves presence for many users in one round trip.
	// Fan-out targeting calls this per conversation, so a sequential
	// implementation would not scale with membership size.
	BatchIsOnline(ctx context.Context, userIDs []string) (map[string]bool, error)
}
