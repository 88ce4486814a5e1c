package interfaces

import (
	"context"

	"crosstalk/pkg/types"
)

// Store handles all persistence: rooms, messages, user language preferences
// and translation metrics. One interface keeps transaction handling behind a
// single boundary; the sqlite implementation serializes writes through a
// single writer goroutine.
type Store interface {
	// CreateRoom persists a new room. The slug must be unique.
	CreateRoom(ctx context.Context, room *types.Room) error

	// GetRoom retrieves a room by ID. Returns ErrRoomNotFound when absent.
	GetRoom(ctx context.Context, roomID string) (*types.Room, error)

	// RoomExists reports whether the room is known without loading it.
	RoomExists(ctx context.Context, roomID string) (bool, error)

	// ListRooms returns all rooms ordered by creation time.
	ListRooms(ctx context.Context) ([]*types.Room, error)

	// AppendMessage persists a message. The store assigns the timestamp;
	// per room, stored timestamps are non-decreasing in storage order.
	AppendMessage(ctx context.Context, msg *types.Message) error

	// RecentMessages returns the most recent limit messages of a room,
	// oldest first.
	RecentMessages(ctx context.Context, roomID string, limit int) ([]*types.Message, error)

	// PreferredLanguage returns the stored preference for a user, or the
	// fallback code when unset. It never fails for an unknown user.
	PreferredLanguage(ctx context.Context, userID string) (string, error)

	// SetPreferredLanguage stores a user's language preference.
	SetPreferredLanguage(ctx context.Context, userID, code string) error

	// MetricsSummary aggregates recorded translation metrics per language
	// pair.
	MetricsSummary(ctx context.Context) ([]*types.MetricsSummary, error)

	// HealthCheck verifies connectivity and basic read access.
	HealthCheck(ctx context.Context) error

	// Close flushes pending writes and releases the connection.
	Close() error
}

// MetricsSink receives per-call translation measurements. Record must not
// block the caller and must never fail a translation; implementations drop
// records rather than stall.
type MetricsSink interface {
	Record(metric *types.TranslationMetric)
}
