// Package directory tracks which connections are joined to which room.
//
// The directory is one of the two structures shared by all connections (the
// other is the translation worker pool). A single RWMutex makes Join, Leave,
// LanguagesInUse and MembersOf linearizable with respect to each other;
// readers get point-in-time snapshots, never half-updated views.
package directory

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"crosstalk/pkg/interfaces"
)

// Directory is the per-room registry of active members.
type Directory struct {
	mu    sync.RWMutex
	rooms map[string]*roomEntry // roomID -> members
}

type roomEntry struct {
	members map[string]interfaces.Member // connection ID -> member
	order   []string                     // join order, for stable MembersOf
}

// New creates an empty directory.
func New() *Directory {
	return &Directory{
		rooms: make(map[string]*roomEntry),
	}
}

// Join registers a member under a room. Registering the same connection ID
// twice replaces the previous entry. Unknown rooms get an entry on first
// join; whether the room actually exists is decided at the connection
// boundary, before a session is created.
func (d *Directory) Join(roomID string, member interfaces.Member) error {
	if member == nil {
		return ErrNilMember
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.rooms[roomID]
	if !ok {
		entry = &roomEntry{members: make(map[string]interfaces.Member)}
		d.rooms[roomID] = entry
	}

	id := member.ID()
	if _, exists := entry.members[id]; !exists {
		entry.order = append(entry.order, id)
	}
	entry.members[id] = member

	log.Debug().Str("module", "directory").
		Str("room", roomID).Str("conn", id).Str("user", member.User()).
		Msg("member joined")
	return nil
}

// Leave removes a member from a room. Idempotent: removing an absent member
// is a no-op, so abnormal closes can always call it safely.
func (d *Directory) Leave(roomID string, member interfaces.Member) {
	if member == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.rooms[roomID]
	if !ok {
		return
	}

	id := member.ID()
	registered, exists := entry.members[id]
	if !exists {
		return
	}
	// A reconnect may have replaced the entry; only the registered instance
	// may remove itself.
	if registered != member {
		return
	}

	delete(entry.members, id)
	for i, oid := range entry.order {
		if oid == id {
			entry.order = append(entry.order[:i], entry.order[i+1:]...)
			break
		}
	}
	if len(entry.members) == 0 {
		delete(d.rooms, roomID)
	}

	log.Debug().Str("module", "directory").
		Str("room", roomID).Str("conn", id).
		Msg("member left")
}

// LanguagesInUse returns the distinct preferred languages among current
// members of a room, sorted for deterministic iteration. The member set is
// snapshotted under the lock; Language is read outside it, because a member
// may answer from a store and the lock must stay cheap for Join and Leave.
func (d *Directory) LanguagesInUse(roomID string) []string {
	members := d.MembersOf(roomID)
	if len(members) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		seen[m.Language()] = struct{}{}
	}

	langs := make([]string, 0, len(seen))
	for code := range seen {
		langs = append(langs, code)
	}
	sort.Strings(langs)
	return langs
}

// MembersOf returns a snapshot of the room's members in join order.
func (d *Directory) MembersOf(roomID string) []interfaces.Member {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entry, ok := d.rooms[roomID]
	if !ok {
		return nil
	}

	members := make([]interfaces.Member, 0, len(entry.members))
	for _, id := range entry.order {
		if m, ok := entry.members[id]; ok {
			members = append(members, m)
		}
	}
	return members
}

// Stats reports member and room counts for health reporting.
func (d *Directory) Stats() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	total := 0
	for _, entry := range d.rooms {
		total += len(entry.members)
	}
	return map[string]int{
		"active_rooms":  len(d.rooms),
		"total_members": total,
	}
}
