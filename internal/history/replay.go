// Package history replays the recent messages of a room to a newly joined
// member.
package history

import (
	"context"

	"github.com/rs/zerolog/log"

	"crosstalk/pkg/interfaces"
	"crosstalk/pkg/types"
)

// EventBuilder turns a stored message into a replay event for one
// recipient. The fan-out coordinator implements it.
type EventBuilder interface {
	Replay(ctx context.Context, msg *types.Message, recipientLang string) *types.ChatEvent
}

// Replayer fetches a bounded window of recent messages and delivers them,
// oldest first, to a single member. Replay runs concurrently with live
// delivery; replayed events carry the history flag so clients can order.
type Replayer struct {
	store   interfaces.Store
	builder EventBuilder
	limit   int
}

func NewReplayer(store interfaces.Store, builder EventBuilder, limit int) *Replayer {
	return &Replayer{store: store, builder: builder, limit: limit}
}

// Replay sends the room's recent messages to member. A store failure is
// returned so the caller can tell the client history is unavailable; the
// join itself is not affected. Delivery stops early when the member goes
// away or ctx is cancelled.
func (r *Replayer) Replay(ctx context.Context, roomID string, member interfaces.Member) error {
	messages, err := r.store.RecentMessages(ctx, roomID, r.limit)
	if err != nil {
		log.Warn().
			Str("module", "history").
			Str("room_id", roomID).
			Str("user_id", member.User()).
			Err(err).
			Msg("history unavailable")
		return err
	}

	for _, msg := range messages {
		if ctx.Err() != nil {
			return nil
		}
		// The recipient's language is re-read per message so a mid-replay
		// preference change takes effect immediately.
		ev := r.builder.Replay(ctx, msg, member.Language())
		if !member.Deliver(ev) {
			log.Debug().
				Str("module", "history").
				Str("room_id", roomID).
				Str("connection_id", member.ID()).
				Msg("member gone, replay stopped")
			return nil
		}
	}

	log.Debug().
		Str("module", "history").
		Str("room_id", roomID).
		Str("user_id", member.User()).
		Int("count", len(messages)).
		Msg("history replayed")
	return nil
}
