package interfaces

import "context"

// Translator is the translation port. Calls may take arbitrary wall-clock
// time and must never be assumed to run on the caller's goroutine; the
// worker pool in internal/translate enforces that. A failed call returns an
// error and the caller substitutes the original text.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(ctx context.Context, text, sourceLang, targetLang string) (string, error)

func (f TranslatorFunc) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return f(ctx, text, sourceLang, targetLang)
}
