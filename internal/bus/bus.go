// Package bus delivers completed chat events to every member of a room.
package bus

import (
	"github.com/rs/zerolog/log"

	"crosstalk/pkg/interfaces"
	"crosstalk/pkg/types"
)

// MemberSource provides the current members of a room.
type MemberSource interface {
	MembersOf(roomID string) []interfaces.Member
}

// Bus fans a published event out to a snapshot of the room's members.
// Publish is synchronous over the snapshot but cannot stall: Deliver is
// contractually non-blocking, so one slow socket only drops its own copy.
type Bus struct {
	members MemberSource
}

func New(members MemberSource) *Bus {
	return &Bus{members: members}
}

// Publish delivers ev to every member joined to its room at call time.
// Members joining mid-publish receive nothing; members leaving mid-publish
// may still receive the event. It returns the number of members reached.
func (b *Bus) Publish(ev *types.ChatEvent) int {
	members := b.members.MembersOf(ev.RoomID)

	delivered := 0
	for _, member := range members {
		if member.Deliver(ev) {
			delivered++
			continue
		}
		log.Warn().
			Str("module", "bus").
			Str("room_id", ev.RoomID).
			Str("connection_id", member.ID()).
			Msg("event dropped for slow member")
	}

	log.Debug().
		Str("module", "bus").
		Str("room_id", ev.RoomID).
		Str("message_id", ev.ID).
		Int("delivered", delivered).
		Int("members", len(members)).
		Msg("event published")

	return delivered
}
