// Package fanout turns one inbound chat message into one translated event
// per room. A message is translated once per distinct target language in
// use, never once per member, and a failed translation degrades that one
// language to the original text instead of failing the broadcast.
package fanout

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"crosstalk/pkg/interfaces"
	"crosstalk/pkg/lang"
	"crosstalk/pkg/types"
)

// LanguageSource reports the preferred languages of a room's currently
// joined members.
type LanguageSource interface {
	LanguagesInUse(roomID string) []string
}

// Coordinator persists inbound messages and produces their fan-out result.
type Coordinator struct {
	translator interfaces.Translator
	store      interfaces.Store
	languages  LanguageSource
}

func NewCoordinator(translator interfaces.Translator, store interfaces.Store, languages LanguageSource) *Coordinator {
	return &Coordinator{
		translator: translator,
		store:      store,
		languages:  languages,
	}
}

// Dispatch stores the message, translates it into every distinct target
// language currently in use in the room, and returns the assembled event.
// The event is complete when returned: all translation calls have settled.
//
// Persistence failure is the only fatal outcome. Translation failures and
// unknown language codes degrade per language to the original text.
func (c *Coordinator) Dispatch(ctx context.Context, roomID, author, text, sourceLang string) (*types.ChatEvent, error) {
	msg := &types.Message{
		ID:         uuid.New().String(),
		RoomID:     roomID,
		Author:     author,
		Text:       text,
		SourceLang: sourceLang,
	}
	// The store assigns the timestamp, keeping broadcast order and history
	// order on the same clock.
	if err := c.store.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	result := c.translateAll(ctx, text, sourceLang, c.targets(roomID, sourceLang))

	return &types.ChatEvent{
		ID:         msg.ID,
		RoomID:     roomID,
		Author:     author,
		SourceLang: sourceLang,
		Original:   text,
		Timestamp:  msg.Timestamp,
		Result:     result,
	}, nil
}

// Replay builds the event for a stored message being replayed to a single
// recipient. Only the recipient's language can matter, so at most one
// translation call is made.
func (c *Coordinator) Replay(ctx context.Context, msg *types.Message, recipientLang string) *types.ChatEvent {
	var targets []string
	if recipientLang != msg.SourceLang && lang.IsValid(recipientLang) && lang.IsValid(msg.SourceLang) {
		targets = []string{recipientLang}
	}

	result := c.translateAll(ctx, msg.Text, msg.SourceLang, targets)

	return &types.ChatEvent{
		ID:         msg.ID,
		RoomID:     msg.RoomID,
		Author:     msg.Author,
		SourceLang: msg.SourceLang,
		Original:   msg.Text,
		Timestamp:  msg.Timestamp,
		Result:     result,
		History:    true,
	}
}

// targets returns the distinct valid languages in use in the room, minus
// the source language. An unrecognized source code yields no targets: there
// is nothing the engine could translate from.
func (c *Coordinator) targets(roomID, sourceLang string) []string {
	if !lang.IsValid(sourceLang) {
		return nil
	}

	var targets []string
	for _, code := range c.languages.LanguagesInUse(roomID) {
		if code == sourceLang {
			continue
		}
		if !lang.IsValid(code) {
			log.Debug().Str("module", "fanout").Str("language", code).Msg("skipping unknown language code")
			continue
		}
		targets = append(targets, code)
	}
	return targets
}

// translateAll runs all target translations concurrently and waits for every
// one to settle. Concurrency is bounded by the translator itself (the worker
// pool), not here. A failed language is left out of the variants map, which
// makes Render fall back to the original text for its members.
func (c *Coordinator) translateAll(ctx context.Context, text, sourceLang string, targets []string) *types.FanoutResult {
	result := &types.FanoutResult{
		Original:   text,
		SourceLang: sourceLang,
		Variants:   make(map[string]string, len(targets)),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(target string) {
			defer wg.Done()
			translated, err := c.translator.Translate(ctx, text, sourceLang, target)
			if err != nil {
				log.Warn().
					Str("module", "fanout").
					Str("source", sourceLang).
					Str("target", target).
					Err(err).
					Msg("translation failed, members get original text")
				return
			}
			mu.Lock()
			result.Variants[target] = translated
			mu.Unlock()
		}(target)
	}
	wg.Wait()

	return result
}
