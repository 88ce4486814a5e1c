package translate

import (
	"context"
	"strings"
	"time"

	"crosstalk/pkg/interfaces"
	"crosstalk/pkg/types"
)

// Instrumented wraps a translator and records one metric per call. Recording
// is fire-and-forget: a slow or failed sink never delays or fails the call.
type Instrumented struct {
	next interfaces.Translator
	sink interfaces.MetricsSink
}

func NewInstrumented(next interfaces.Translator, sink interfaces.MetricsSink) *Instrumented {
	return &Instrumented{next: next, sink: sink}
}

func (i *Instrumented) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	start := time.Now()
	out, err := i.next.Translate(ctx, text, sourceLang, targetLang)

	metric := &types.TranslationMetric{
		SourceLang:     sourceLang,
		TargetLang:     targetLang,
		Duration:       time.Since(start),
		CharacterCount: len([]rune(text)),
		WordCount:      len(strings.Fields(text)),
		Success:        err == nil,
		Timestamp:      start,
	}
	if err != nil {
		metric.ErrorText = err.Error()
	}
	i.sink.Record(metric)

	return out, err
}
