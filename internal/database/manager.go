// Package database implements the persistent store on sqlite.
//
// All writes are serialized through a single writer goroutine; reads run
// concurrently against the connection pool under WAL. Metric writes are
// fire-and-forget: they are enqueued without a result channel and dropped
// when the queue is full, so recording can never stall a translation.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	dbconfig "crosstalk/pkg/database"
	"crosstalk/pkg/interfaces"
	"crosstalk/pkg/types"
)

// Manager implements interfaces.Store and interfaces.MetricsSink.
type Manager struct {
	db           *sql.DB
	fallbackLang string
	writeChannel chan writeOperation
	shutdown     chan struct{}
	wg           sync.WaitGroup
	closed       bool
	mu           sync.RWMutex

	// lastStamp tracks the newest assigned timestamp per room. Touched only
	// from the writer goroutine.
	lastStamp map[string]time.Time
}

// writeOperation is one queued write. A nil result channel marks the
// operation as fire-and-forget.
type writeOperation struct {
	operation func(*sql.DB) error
	result    chan error
}

// NewManager opens the database, applies pragmas and starts the writer.
// fallbackLang is returned for users with no stored preference.
func NewManager(config *dbconfig.Config, fallbackLang string) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}

	db, err := sql.Open("sqlite3", config.DatabasePath+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxConnections)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	if err := dbconfig.ApplySQLiteOptimizations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply sqlite optimizations: %w", err)
	}

	m := &Manager{
		db:           db,
		fallbackLang: fallbackLang,
		writeChannel: make(chan writeOperation, 256),
		shutdown:     make(chan struct{}),
		lastStamp:    make(map[string]time.Time),
	}

	m.wg.Add(1)
	go m.writeLoop()

	return m, nil
}

// Migrate applies pending schema migrations.
func (m *Manager) Migrate() error {
	return dbconfig.NewMigrationManager(m.db).ApplyMigrations()
}

func (m *Manager) writeLoop() {
	defer m.wg.Done()

	for {
		select {
		case op := <-m.writeChannel:
			err := op.operation(m.db)
			if err != nil {
				log.Warn().Str("module", "database").Err(err).Msg("write failed, retrying once")
				time.Sleep(100 * time.Millisecond)
				err = op.operation(m.db)
				if err != nil {
					log.Error().Str("module", "database").Err(err).Msg("write failed after retry")
				}
			}
			if op.result != nil {
				op.result <- err
			}

		case <-m.shutdown:
			return
		}
	}
}

// executeWrite queues a write and waits for its outcome.
func (m *Manager) executeWrite(operation func(*sql.DB) error) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return interfaces.ErrStoreUnavailable
	}
	m.mu.RUnlock()

	result := make(chan error, 1)

	select {
	case m.writeChannel <- writeOperation{operation: operation, result: result}:
		// The writer may be stopped between the enqueue and the reply.
		select {
		case err := <-result:
			return err
		case <-m.shutdown:
			return interfaces.ErrStoreUnavailable
		}
	case <-time.After(30 * time.Second):
		return fmt.Errorf("write operation timeout")
	case <-m.shutdown:
		return interfaces.ErrStoreUnavailable
	}
}

// CreateRoom persists a new room.
func (m *Manager) CreateRoom(ctx context.Context, room *types.Room) error {
	return m.executeWrite(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO rooms (id, slug, name, created_at)
			VALUES (?, ?, ?, ?)
		`, room.ID, room.Slug, room.Name, room.CreatedAt)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return interfaces.ErrRoomExists
			}
			return fmt.Errorf("failed to insert room: %w", err)
		}
		return nil
	})
}

// GetRoom retrieves a room by ID.
func (m *Manager) GetRoom(ctx context.Context, roomID string) (*types.Room, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT id, slug, name, created_at FROM rooms WHERE id = ?
	`, roomID)

	var room types.Room
	err := row.Scan(&room.ID, &room.Slug, &room.Name, &room.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, interfaces.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to query room: %w", err)
	}
	return &room, nil
}

// RoomExists reports whether the room is known.
func (m *Manager) RoomExists(ctx context.Context, roomID string) (bool, error) {
	var count int
	err := m.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM rooms WHERE id = ?", roomID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check room: %w", err)
	}
	return count > 0, nil
}

// ListRooms returns all rooms ordered by creation time.
func (m *Manager) ListRooms(ctx context.Context) ([]*types.Room, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, slug, name, created_at FROM rooms ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rooms []*types.Room
	for rows.Next() {
		var room types.Room
		if err := rows.Scan(&room.ID, &room.Slug, &room.Name, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan room row: %w", err)
		}
		rooms = append(rooms, &room)
	}
	return rooms, rows.Err()
}

// AppendMessage persists a message. The timestamp is assigned inside the
// writer goroutine and clamped to be non-decreasing per room.
func (m *Manager) AppendMessage(ctx context.Context, msg *types.Message) error {
	return m.executeWrite(func(db *sql.DB) error {
		ts := time.Now().UTC()
		if last, ok := m.lastStamp[msg.RoomID]; ok && ts.Before(last) {
			ts = last
		}
		m.lastStamp[msg.RoomID] = ts
		msg.Timestamp = ts

		_, err := db.ExecContext(ctx, `
			INSERT INTO messages (id, room_id, author, text, source_lang, timestamp)
			VALUES (?, ?, ?, ?, ?, ?)
		`, msg.ID, msg.RoomID, msg.Author, msg.Text, msg.SourceLang, ts)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
		return nil
	})
}

// RecentMessages returns the newest limit messages of a room, oldest first.
func (m *Manager) RecentMessages(ctx context.Context, roomID string, limit int) ([]*types.Message, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, room_id, author, text, source_lang, timestamp
		FROM messages
		WHERE room_id = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?
	`, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []*types.Message
	for rows.Next() {
		var msg types.Message
		err := rows.Scan(&msg.ID, &msg.RoomID, &msg.Author, &msg.Text, &msg.SourceLang, &msg.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	// Query is newest-first for the LIMIT; replay wants oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// PreferredLanguage returns the stored preference or the fallback code.
func (m *Manager) PreferredLanguage(ctx context.Context, userID string) (string, error) {
	var code string
	err := m.db.QueryRowContext(ctx,
		"SELECT language FROM preferences WHERE user_id = ?", userID,
	).Scan(&code)
	if err != nil {
		if err == sql.ErrNoRows {
			return m.fallbackLang, nil
		}
		return "", fmt.Errorf("failed to query preference: %w", err)
	}
	return code, nil
}

// SetPreferredLanguage stores a user's language preference.
func (m *Manager) SetPreferredLanguage(ctx context.Context, userID, code string) error {
	return m.executeWrite(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO preferences (user_id, language) VALUES (?, ?)
			ON CONFLICT(user_id) DO UPDATE SET language = excluded.language
		`, userID, code)
		if err != nil {
			return fmt.Errorf("failed to upsert preference: %w", err)
		}
		return nil
	})
}

// Record enqueues a translation metric without waiting. Dropped when the
// write queue is full or the manager is closed.
func (m *Manager) Record(metric *types.TranslationMetric) {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return
	}
	m.mu.RUnlock()

	op := writeOperation{
		operation: func(db *sql.DB) error {
			_, err := db.Exec(`
				INSERT INTO translation_metrics
					(source_lang, target_lang, duration_ms, character_count, word_count, success, error_text, timestamp)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`,
				metric.SourceLang,
				metric.TargetLang,
				float64(metric.Duration)/float64(time.Millisecond),
				metric.CharacterCount,
				metric.WordCount,
				metric.Success,
				metric.ErrorText,
				metric.Timestamp,
			)
			return err
		},
	}

	select {
	case m.writeChannel <- op:
	default:
		log.Debug().Str("module", "database").Msg("metrics queue full, record dropped")
	}
}

// MetricsSummary aggregates recorded translation metrics per language pair.
func (m *Manager) MetricsSummary(ctx context.Context) ([]*types.MetricsSummary, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT source_lang, target_lang,
		       COUNT(*), SUM(success),
		       AVG(duration_ms), MIN(duration_ms), MAX(duration_ms)
		FROM translation_metrics
		GROUP BY source_lang, target_lang
		ORDER BY source_lang, target_lang
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []*types.MetricsSummary
	for rows.Next() {
		var s types.MetricsSummary
		var mean, min, max float64
		err := rows.Scan(&s.SourceLang, &s.TargetLang, &s.Count, &s.SuccessCount, &mean, &min, &max)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metrics row: %w", err)
		}
		s.MeanDuration = time.Duration(mean * float64(time.Millisecond))
		s.MinDuration = time.Duration(min * float64(time.Millisecond))
		s.MaxDuration = time.Duration(max * float64(time.Millisecond))
		summaries = append(summaries, &s)
	}
	return summaries, rows.Err()
}

// HealthCheck validates connectivity and basic read access.
func (m *Manager) HealthCheck(ctx context.Context) error {
	if err := m.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	var count int
	if err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rooms").Scan(&count); err != nil {
		return fmt.Errorf("database read test failed: %w", err)
	}
	return nil
}

// Close drains the writer and closes the connection. Safe to call twice.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	close(m.shutdown)
	m.wg.Wait()

	if err := m.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
