package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	dbconfig "crosstalk/pkg/database"
	"crosstalk/pkg/interfaces"
	"crosstalk/pkg/types"
)

var (
	_ interfaces.Store       = (*Manager)(nil)
	_ interfaces.MetricsSink = (*Manager)(nil)
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	cfg := dbconfig.DefaultConfig()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "test.db")

	m, err := NewManager(cfg, "eng_Latn")
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	if err := m.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func createTestRoom(t *testing.T, m *Manager, slug string) *types.Room {
	t.Helper()
	room := &types.Room{
		ID:        uuid.New().String(),
		Slug:      slug,
		Name:      "Room " + slug,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.CreateRoom(context.Background(), room); err != nil {
		t.Fatalf("failed to create room: %v", err)
	}
	return room
}

func TestManager_RoomLifecycle(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	room := createTestRoom(t, m, "general")

	got, err := m.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if got.Slug != "general" || got.Name != room.Name {
		t.Errorf("room round trip mismatch: %+v", got)
	}

	exists, err := m.RoomExists(ctx, room.ID)
	if err != nil || !exists {
		t.Errorf("RoomExists = (%v, %v), want (true, nil)", exists, err)
	}

	exists, err = m.RoomExists(ctx, "missing")
	if err != nil || exists {
		t.Errorf("RoomExists for unknown room = (%v, %v), want (false, nil)", exists, err)
	}

	if _, err := m.GetRoom(ctx, "missing"); err != interfaces.ErrRoomNotFound {
		t.Errorf("GetRoom for unknown room = %v, want ErrRoomNotFound", err)
	}

	dup := &types.Room{ID: uuid.New().String(), Slug: "general", Name: "dup", CreatedAt: time.Now()}
	if err := m.CreateRoom(ctx, dup); err != interfaces.ErrRoomExists {
		t.Errorf("duplicate slug = %v, want ErrRoomExists", err)
	}

	rooms, err := m.ListRooms(ctx)
	if err != nil {
		t.Fatalf("ListRooms failed: %v", err)
	}
	if len(rooms) != 1 {
		t.Errorf("expected 1 room, got %d", len(rooms))
	}
}

func TestManager_AppendAndRecentMessages(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	room := createTestRoom(t, m, "history")

	for i, text := range []string{"first", "second", "third"} {
		msg := &types.Message{
			ID:         uuid.New().String(),
			RoomID:     room.ID,
			Author:     "alice",
			Text:       text,
			SourceLang: "eng_Latn",
		}
		if err := m.AppendMessage(ctx, msg); err != nil {
			t.Fatalf("AppendMessage %d failed: %v", i, err)
		}
		if msg.Timestamp.IsZero() {
			t.Errorf("message %d: store did not assign timestamp", i)
		}
	}

	messages, err := m.RecentMessages(ctx, room.ID, 2)
	if err != nil {
		t.Fatalf("RecentMessages failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	// Window is the newest two, returned oldest first.
	if messages[0].Text != "second" || messages[1].Text != "third" {
		t.Errorf("unexpected window order: %q, %q", messages[0].Text, messages[1].Text)
	}

	// Per-room timestamps never decrease in storage order.
	all, err := m.RecentMessages(ctx, room.ID, 10)
	if err != nil {
		t.Fatalf("RecentMessages failed: %v", err)
	}
	for i := 1; i < len(all); i++ {
		if all[i].Timestamp.Before(all[i-1].Timestamp) {
			t.Errorf("timestamps decreasing at index %d", i)
		}
	}
}

func TestManager_RecentMessages_EmptyRoom(t *testing.T) {
	m := newTestManager(t)
	room := createTestRoom(t, m, "quiet")

	messages, err := m.RecentMessages(context.Background(), room.ID, 50)
	if err != nil {
		t.Fatalf("RecentMessages failed: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("expected no messages, got %d", len(messages))
	}
}

func TestManager_Preferences(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	// Unset preference falls back.
	code, err := m.PreferredLanguage(ctx, "nobody")
	if err != nil {
		t.Fatalf("PreferredLanguage failed: %v", err)
	}
	if code != "eng_Latn" {
		t.Errorf("expected fallback eng_Latn, got %q", code)
	}

	if err := m.SetPreferredLanguage(ctx, "bob", "sna_Latn"); err != nil {
		t.Fatalf("SetPreferredLanguage failed: %v", err)
	}
	code, err = m.PreferredLanguage(ctx, "bob")
	if err != nil || code != "sna_Latn" {
		t.Errorf("PreferredLanguage = (%q, %v), want (sna_Latn, nil)", code, err)
	}

	// Owner can change it.
	if err := m.SetPreferredLanguage(ctx, "bob", "fra_Latn"); err != nil {
		t.Fatalf("update preference failed: %v", err)
	}
	code, _ = m.PreferredLanguage(ctx, "bob")
	if code != "fra_Latn" {
		t.Errorf("expected updated preference fra_Latn, got %q", code)
	}
}

func TestManager_MetricsRecordAndSummary(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	m.Record(&types.TranslationMetric{
		SourceLang:     "eng_Latn",
		TargetLang:     "sna_Latn",
		Duration:       120 * time.Millisecond,
		CharacterCount: 11,
		WordCount:      2,
		Success:        true,
		Timestamp:      time.Now().UTC(),
	})
	m.Record(&types.TranslationMetric{
		SourceLang:     "eng_Latn",
		TargetLang:     "sna_Latn",
		Duration:       80 * time.Millisecond,
		CharacterCount: 5,
		WordCount:      1,
		Success:        false,
		ErrorText:      "engine overloaded",
		Timestamp:      time.Now().UTC(),
	})

	// Records are asynchronous; wait for the writer to drain them.
	deadline := time.Now().Add(2 * time.Second)
	var summaries []*types.MetricsSummary
	for time.Now().Before(deadline) {
		var err error
		summaries, err = m.MetricsSummary(ctx)
		if err != nil {
			t.Fatalf("MetricsSummary failed: %v", err)
		}
		if len(summaries) == 1 && summaries[0].Count == 2 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	if len(summaries) != 1 {
		t.Fatalf("expected 1 language pair, got %d", len(summaries))
	}
	s := summaries[0]
	if s.Count != 2 || s.SuccessCount != 1 {
		t.Errorf("summary counts = (%d, %d), want (2, 1)", s.Count, s.SuccessCount)
	}
	if s.MinDuration > s.MeanDuration || s.MeanDuration > s.MaxDuration {
		t.Errorf("duration ordering broken: min=%s mean=%s max=%s", s.MinDuration, s.MeanDuration, s.MaxDuration)
	}
}

func TestManager_CloseDoesNotStrandPendingWrites(t *testing.T) {
	m := newTestManager(t)
	room := createTestRoom(t, m, "busy")
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- m.AppendMessage(ctx, &types.Message{
				ID:         uuid.New().String(),
				RoomID:     room.ID,
				Author:     "alice",
				Text:       "racing close",
				SourceLang: "eng_Latn",
			})
		}()
	}
	_ = m.Close()

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("writes queued around Close never returned")
	}
	close(results)
	for err := range results {
		if err != nil && err != interfaces.ErrStoreUnavailable {
			t.Errorf("unexpected write error: %v", err)
		}
	}
}

func TestManager_CloseIsIdempotent(t *testing.T) {
	m := newTestManager(t)
	if err := m.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if err := m.AppendMessage(context.Background(), &types.Message{}); err != interfaces.ErrStoreUnavailable {
		t.Errorf("write after close = %v, want ErrStoreUnavailable", err)
	}
}
