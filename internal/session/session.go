// Package session drives one websocket connection through its lifecycle:
// join, history replay, the inbound read loop and teardown. A Session is
// also the room member the directory and bus see.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"crosstalk/pkg/interfaces"
	"crosstalk/pkg/types"
)

// Session states.
const (
	StateConnecting = "connecting"
	StateJoined     = "joined"
	StateClosing    = "closing"
	StateClosed     = "closed"
)

// Conn is the transport the session talks through. The websocket package
// provides the production implementation.
type Conn interface {
	Send(v interface{}) error
	TrySend(v interface{}) bool
	ReadMessage() ([]byte, error)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Ping() error
	Done() <-chan struct{}
	Close() error
}

// Directory is the membership surface the session registers with.
type Directory interface {
	Join(roomID string, member interfaces.Member) error
	Leave(roomID string, member interfaces.Member)
}

// Dispatcher turns an inbound message into a completed broadcast event.
type Dispatcher interface {
	Dispatch(ctx context.Context, roomID, author, text, sourceLang string) (*types.ChatEvent, error)
}

// Publisher fans a completed event out to the room.
type Publisher interface {
	Publish(ev *types.ChatEvent) int
}

// Replayer sends a room's recent history to a single member.
type Replayer interface {
	Replay(ctx context.Context, roomID string, member interfaces.Member) error
}

// Options carries the session timing knobs.
type Options struct {
	PingInterval time.Duration
	ReadTimeout  time.Duration
	FallbackLang string
}

// Session is one joined connection. Inbound frames are read strictly one at
// a time, but each dispatch runs on its own goroutine, so several fan-outs
// can be in flight while the read loop keeps going.
type Session struct {
	id   string
	user string
	room *types.Room

	conn       Conn
	store      interfaces.Store
	directory  Directory
	dispatcher Dispatcher
	publisher  Publisher
	replayer   Replayer
	opts       Options

	events chan *types.ChatEvent
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	state    string
	lastLang string
}

// New builds a session for an upgraded connection. The room must already be
// resolved; unknown rooms are rejected before a session exists.
func New(conn Conn, room *types.Room, user string, store interfaces.Store, dir Directory, dispatcher Dispatcher, publisher Publisher, replayer Replayer, opts Options) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:         uuid.New().String(),
		user:       user,
		room:       room,
		conn:       conn,
		store:      store,
		directory:  dir,
		dispatcher: dispatcher,
		publisher:  publisher,
		replayer:   replayer,
		opts:       opts,
		events:     make(chan *types.ChatEvent, 64),
		ctx:        ctx,
		cancel:     cancel,
		state:      StateConnecting,
		lastLang:   opts.FallbackLang,
	}
}

// ID returns the connection ID. One user may hold several sessions.
func (s *Session) ID() string { return s.id }

// User returns the user identity behind the connection.
func (s *Session) User() string { return s.user }

// Language returns the user's current preferred language. It is re-read
// from the store on every call so a mid-session preference change takes
// effect on the next event; on a store error the last known value is used.
func (s *Session) Language() string {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	code, err := s.store.PreferredLanguage(ctx, s.user)
	if err != nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.lastLang
	}

	s.mu.Lock()
	s.lastLang = code
	s.mu.Unlock()
	return code
}

// Deliver hands a broadcast event to the session. Never blocks: the event
// is dropped when the session buffer is full or the session is closing.
func (s *Session) Deliver(ev *types.ChatEvent) bool {
	// Checked before the send: with buffer space free, a combined select
	// may pick the send over the done case and a closed session would keep
	// accepting events nobody will read.
	select {
	case <-s.ctx.Done():
		return false
	default:
	}

	select {
	case s.events <- ev:
		return true
	case <-s.ctx.Done():
		return false
	default:
		return false
	}
}

// Run joins the room and blocks on the read loop until the connection drops
// or Close is called. Teardown always runs exactly once.
func (s *Session) Run() {
	if err := s.directory.Join(s.room.ID, s); err != nil {
		log.Error().
			Str("module", "session").
			Str("room_id", s.room.ID).
			Str("user_id", s.user).
			Err(err).
			Msg("join failed")
		_ = s.conn.Send(types.ErrorFrame{Kind: types.FrameKindError, Detail: "failed to join room"})
		s.teardown()
		return
	}
	s.setState(StateJoined)

	log.Info().
		Str("module", "session").
		Str("connection_id", s.id).
		Str("room_id", s.room.ID).
		Str("user_id", s.user).
		Msg("session joined")

	go s.replayHistory()
	go s.pingLoop()
	go s.deliverLoop()

	s.readLoop()
	s.teardown()
}

// replayHistory runs independently of the read loop; live events may
// interleave with replayed ones, which carry the history flag.
func (s *Session) replayHistory() {
	event := types.SystemEventHistoryComplete
	if err := s.replayer.Replay(s.ctx, s.room.ID, s); err != nil {
		event = types.SystemEventHistoryUnavailable
	}
	if s.ctx.Err() != nil {
		return
	}
	_ = s.conn.Send(types.SystemFrame{Kind: types.FrameKindSystem, Event: event})
}

func (s *Session) pingLoop() {
	if s.opts.PingInterval <= 0 {
		return
	}

	_ = s.conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
	})

	ticker := time.NewTicker(s.opts.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.conn.Ping(); err != nil {
				return
			}
		case <-s.ctx.Done():
			return
		}
	}
}

// deliverLoop renders queued events for this member and pushes them to the
// socket. Rendering re-reads the preferred language per event.
func (s *Session) deliverLoop() {
	for {
		select {
		case ev := <-s.events:
			frame := types.RenderEvent(ev, s.Language())
			if !s.conn.TrySend(frame) {
				log.Debug().
					Str("module", "session").
					Str("connection_id", s.id).
					Str("message_id", ev.ID).
					Msg("frame dropped for slow connection")
			}
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Session) readLoop() {
	for {
		data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame types.SendFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.reject("malformed frame")
			continue
		}
		if err := frame.Validate(); err != nil {
			s.reject(err.Error())
			continue
		}

		// Dispatch off the read loop so a slow translation engine never
		// stalls frame intake.
		go s.dispatch(frame.Text, frame.SourceLanguage)
	}
}

// reject reports a recoverable input error to the client. The session state
// is unchanged.
func (s *Session) reject(detail string) {
	log.Debug().
		Str("module", "session").
		Str("connection_id", s.id).
		Str("user_id", s.user).
		Str("detail", detail).
		Msg("frame rejected")
	_ = s.conn.Send(types.ErrorFrame{Kind: types.FrameKindError, Detail: detail})
}

func (s *Session) dispatch(text, sourceLang string) {
	ev, err := s.dispatcher.Dispatch(s.ctx, s.room.ID, s.user, text, sourceLang)
	if err != nil {
		log.Error().
			Str("module", "session").
			Str("room_id", s.room.ID).
			Str("user_id", s.user).
			Str("source", sourceLang).
			Err(err).
			Msg("dispatch failed")
		_ = s.conn.Send(types.ErrorFrame{Kind: types.FrameKindError, Detail: "message could not be delivered"})
		return
	}
	s.publisher.Publish(ev)
}

// teardown deregisters, cancels in-flight work and releases the socket.
// Reachable from every state and safe to run more than once.
func (s *Session) teardown() {
	s.setState(StateClosing)

	// Leave is idempotent and instance-scoped: if a reconnect already
	// replaced this session, the replacement stays registered.
	s.directory.Leave(s.room.ID, s)
	// Cancellation is advisory for translations already running; their
	// results are discarded when they settle.
	s.cancel()
	_ = s.conn.Close()

	s.setState(StateClosed)
	log.Info().
		Str("module", "session").
		Str("connection_id", s.id).
		Str("room_id", s.room.ID).
		Str("user_id", s.user).
		Msg("session closed")
}

// Close terminates the session from outside the read loop.
func (s *Session) Close() {
	s.cancel()
	_ = s.conn.Close()
}

// State reports the current lifecycle state.
func (s *Session) State() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) setState(state string) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
