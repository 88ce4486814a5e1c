// Package room manages the chat room catalog: creation, lookup and the
// in-memory cache in front of the store.
package room

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"crosstalk/pkg/interfaces"
	"crosstalk/pkg/types"
)

// Manager is the room catalog. Rooms are small and long-lived, so every
// known room is cached in memory; the store stays authoritative for
// uniqueness and restarts.
type Manager struct {
	store interfaces.Store
	rooms map[string]*types.Room // roomID -> Room
	slugs map[string]string      // slug -> roomID
	mu    sync.RWMutex
}

func NewManager(store interfaces.Store) *Manager {
	return &Manager{
		store: store,
		rooms: make(map[string]*types.Room),
		slugs: make(map[string]string),
	}
}

// LoadRooms warms the cache from the store. Called once at startup.
func (m *Manager) LoadRooms(ctx context.Context) error {
	rooms, err := m.store.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rooms: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, room := range rooms {
		m.rooms[room.ID] = room
		m.slugs[room.Slug] = room.ID
	}

	log.Info().Str("module", "room").Int("count", len(rooms)).Msg("rooms loaded")
	return nil
}

// CreateRoom validates and persists a new room. Slugs are unique; a taken
// slug returns ErrRoomExists.
func (m *Manager) CreateRoom(ctx context.Context, slug, name string) (*types.Room, error) {
	room := &types.Room{
		ID:        uuid.New().String(),
		Slug:      slug,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := room.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	_, taken := m.slugs[slug]
	m.mu.RUnlock()
	if taken {
		return nil, interfaces.ErrRoomExists
	}

	// The store's UNIQUE constraint is the real arbiter; the cache check
	// above only short-circuits the common case.
	if err := m.store.CreateRoom(ctx, room); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.rooms[room.ID] = room
	m.slugs[room.Slug] = room.ID
	m.mu.Unlock()

	log.Info().Str("module", "room").Str("room_id", room.ID).Str("slug", room.Slug).Msg("room created")
	return room, nil
}

// GetRoom retrieves a room by ID, falling through to the store on a cache
// miss.
func (m *Manager) GetRoom(ctx context.Context, roomID string) (*types.Room, error) {
	m.mu.RLock()
	if room, exists := m.rooms[roomID]; exists {
		m.mu.RUnlock()
		return room, nil
	}
	m.mu.RUnlock()

	room, err := m.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.rooms[room.ID] = room
	m.slugs[room.Slug] = room.ID
	m.mu.Unlock()

	return room, nil
}

// GetRoomBySlug resolves a slug to its room.
func (m *Manager) GetRoomBySlug(ctx context.Context, slug string) (*types.Room, error) {
	m.mu.RLock()
	roomID, exists := m.slugs[slug]
	m.mu.RUnlock()
	if exists {
		return m.GetRoom(ctx, roomID)
	}
	return nil, interfaces.ErrRoomNotFound
}

// ListRooms returns all known rooms ordered by creation time.
func (m *Manager) ListRooms(ctx context.Context) ([]*types.Room, error) {
	return m.store.ListRooms(ctx)
}

// RoomExists reports whether the room is known.
func (m *Manager) RoomExists(ctx context.Context, roomID string) (bool, error) {
	m.mu.RLock()
	_, exists := m.rooms[roomID]
	m.mu.RUnlock()
	if exists {
		return true, nil
	}
	return m.store.RoomExists(ctx, roomID)
}
