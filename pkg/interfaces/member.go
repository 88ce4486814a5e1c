package interfaces

import "crosstalk/pkg/types"

// Member is one joined connection as seen by the membership directory and
// the broadcast bus. Implementations must make every method safe for
// concurrent use; Deliver must never block (buffered handoff, drop on
// overflow) so one slow socket cannot delay a room broadcast.
type Member interface {
	// ID is the unique connection ID, not the user identity: one user may
	// hold several connections.
	ID() string

	// User returns the user identity behind the connection.
	User() string

	// Language returns the member's current preferred language code.
	Language() string

	// Deliver hands a broadcast event to the member. It reports false when
	// the event was dropped because the member's buffer was full or the
	// connection is closing.
	Deliver(ev *types.ChatEvent) bool
}
