package types

import (
	"time"
)

// Frame kinds for server-to-client websocket frames.
const (
	FrameKindMessage = "message"
	FrameKindError   = "error"
	FrameKindSystem  = "system"
)

// System frame events.
const (
	SystemEventHistoryComplete    = "history_complete"
	SystemEventHistoryUnavailable = "history_unavailable"
)

// Room is a chat room. Immutable once created except for Name.
type Room struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is a stored chat message. Immutable after creation; the timestamp
// is server-assigned and non-decreasing per room in storage order.
type Message struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	Author     string    `json:"author"`
	Text       string    `json:"text"`
	SourceLang string    `json:"source_language"`
	Timestamp  time.Time `json:"timestamp"`
}

// FanoutResult maps each distinct target language to its translated text,
// alongside the original. Built once per broadcast and never mutated after
// publication, so concurrent readers need no locking.
type FanoutResult struct {
	Original   string
	SourceLang string
	Variants   map[string]string
}

// Render picks the text a member with the given preferred language should
// see: the translated variant when one exists, otherwise the original. The
// second return value is the language the returned text is in.
func (r *FanoutResult) Render(lang string) (text, renderedLang string) {
	if lang != r.SourceLang {
		if v, ok := r.Variants[lang]; ok {
			return v, lang
		}
	}
	return r.Original, r.SourceLang
}

// ChatEvent is one logical broadcast: a message plus its fan-out result.
// Events are immutable once published.
type ChatEvent struct {
	ID         string
	RoomID     string
	Author     string
	SourceLang string
	Original   string
	Timestamp  time.Time
	Result     *FanoutResult
	History    bool
}

// SendFrame is the client-to-server chat frame.
type SendFrame struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
}

// MessageFrame is the server-to-client rendering of a ChatEvent for one
// recipient.
type MessageFrame struct {
	Kind             string    `json:"kind"`
	OriginalText     string    `json:"original_text"`
	RenderedText     string    `json:"rendered_text"`
	Author           string    `json:"author"`
	SourceLanguage   string    `json:"source_language"`
	RenderedLanguage string    `json:"rendered_language"`
	Timestamp        time.Time `json:"timestamp"`
	History          bool      `json:"history,omitempty"`
}

// ErrorFrame reports a recoverable per-connection failure to the client.
type ErrorFrame struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// SystemFrame carries lifecycle notifications such as history_complete.
type SystemFrame struct {
	Kind  string `json:"kind"`
	Event string `json:"event"`
}

// RenderEvent builds the MessageFrame a member with the given preferred
// language should receive for ev.
func RenderEvent(ev *ChatEvent, lang string) MessageFrame {
	text, renderedLang := ev.Result.Render(lang)
	return MessageFrame{
		Kind:             FrameKindMessage,
		OriginalText:     ev.Original,
		RenderedText:     text,
		Author:           ev.Author,
		SourceLanguage:   ev.SourceLang,
		RenderedLanguage: renderedLang,
		Timestamp:        ev.Timestamp,
		History:          ev.History,
	}
}

// TranslationMetric is one recorded translation attempt.
type TranslationMetric struct {
	SourceLang     string        `json:"source_language"`
	TargetLang     string        `json:"target_language"`
	Duration       time.Duration `json:"duration"`
	CharacterCount int           `json:"character_count"`
	WordCount      int           `json:"word_count"`
	Success        bool          `json:"success"`
	ErrorText      string        `json:"error_text,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
}

// MetricsSummary aggregates recorded translation metrics for one language
// pair.
type MetricsSummary struct {
	SourceLang   string        `json:"source_language"`
	TargetLang   string        `json:"target_language"`
	Count        int           `json:"count"`
	SuccessCount int           `json:"success_count"`
	MeanDuration time.Duration `json:"mean_duration"`
	MinDuration  time.Duration `json:"min_duration"`
	MaxDuration  time.Duration `json:"max_duration"`
}
