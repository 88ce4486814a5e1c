package types

import (
	"strings"
	"testing"
	"time"
)

func TestFanoutResult_Render(t *testing.T) {
	result := &FanoutResult{
		Original:   "hello",
		SourceLang: "eng_Latn",
		Variants: map[string]string{
			"spa_Latn": "hola",
			"fra_Latn": "bonjour",
		},
	}

	cases := []struct {
		name     string
		lang     string
		wantText string
		wantLang string
	}{
		{"translated variant", "spa_Latn", "hola", "spa_Latn"},
		{"second variant", "fra_Latn", "bonjour", "fra_Latn"},
		{"same as source", "eng_Latn", "hello", "eng_Latn"},
		{"no variant available", "deu_Latn", "hello", "eng_Latn"},
		{"empty language", "", "hello", "eng_Latn"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text, lang := result.Render(tc.lang)
			if text != tc.wantText || lang != tc.wantLang {
				t.Errorf("Render(%q) = (%q, %q), want (%q, %q)",
					tc.lang, text, lang, tc.wantText, tc.wantLang)
			}
		})
	}
}

func TestRenderEvent(t *testing.T) {
	ts := time.Now()
	ev := &ChatEvent{
		Author:     "alice",
		SourceLang: "eng_Latn",
		Original:   "good morning",
		Timestamp:  ts,
		Result: &FanoutResult{
			Original:   "good morning",
			SourceLang: "eng_Latn",
			Variants:   map[string]string{"sna_Latn": "mangwanani"},
		},
		History: true,
	}

	frame := RenderEvent(ev, "sna_Latn")
	if frame.Kind != FrameKindMessage {
		t.Errorf("expected kind %q, got %q", FrameKindMessage, frame.Kind)
	}
	if frame.RenderedText != "mangwanani" || frame.RenderedLanguage != "sna_Latn" {
		t.Errorf("unexpected rendering: %q in %q", frame.RenderedText, frame.RenderedLanguage)
	}
	if frame.OriginalText != "good morning" || frame.SourceLanguage != "eng_Latn" {
		t.Errorf("original not preserved: %q in %q", frame.OriginalText, frame.SourceLanguage)
	}
	if !frame.History {
		t.Error("history flag not carried through")
	}
	if !frame.Timestamp.Equal(ts) {
		t.Error("timestamp not carried through")
	}
}

func TestSendFrame_Validate(t *testing.T) {
	cases := []struct {
		name    string
		frame   SendFrame
		wantErr error
	}{
		{"valid", SendFrame{Text: "hi", SourceLanguage: "eng_Latn"}, nil},
		{"empty text", SendFrame{Text: "", SourceLanguage: "eng_Latn"}, ErrEmptyText},
		{"whitespace only", SendFrame{Text: "   ", SourceLanguage: "eng_Latn"}, ErrEmptyText},
		{"too large", SendFrame{Text: strings.Repeat("a", MaxTextBytes+1), SourceLanguage: "eng_Latn"}, ErrTextTooLarge},
		{"bad encoding", SendFrame{Text: string([]byte{0xff, 0xfe}), SourceLanguage: "eng_Latn"}, ErrInvalidEncoding},
		{"missing language", SendFrame{Text: "hi"}, ErrMissingSourceLanguage},
		{"unknown language accepted", SendFrame{Text: "hi", SourceLanguage: "qqq_Qqqq"}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.frame.Validate(); err != tc.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestIsValidUserID(t *testing.T) {
	cases := []struct {
		id   string
		want bool
	}{
		{"alice", true},
		{"user_42-a", true},
		{"", false},
		{strings.Repeat("a", 51), false},
		{"bad user", false},
		{"naïve", false},
	}
	for _, tc := range cases {
		if got := IsValidUserID(tc.id); got != tc.want {
			t.Errorf("IsValidUserID(%q) = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestRoom_Validate(t *testing.T) {
	cases := []struct {
		name    string
		room    Room
		wantErr error
	}{
		{"valid", Room{Slug: "team-chat", Name: "Team Chat"}, nil},
		{"bad slug", Room{Slug: "Team Chat", Name: "Team Chat"}, ErrInvalidRoomSlug},
		{"uppercase slug", Room{Slug: "Team-chat", Name: "ok"}, ErrInvalidRoomSlug},
		{"empty name", Room{Slug: "team-chat", Name: ""}, ErrInvalidRoomName},
		{"long name", Room{Slug: "team-chat", Name: strings.Repeat("x", 201)}, ErrInvalidRoomName},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.room.Validate(); err != tc.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}
