package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/bean-scene/internal/metrics"
	"github.com/Veraticus/bean-scene/internal/model"
)

// UsageConfidence is the fixed confidence attached to extracted subjects.
const UsageConfidence = 0.8

const defaultTrackingTimeout = 5 * time.Second

// UsageRecorder persists usage records.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, record model.UsageRecord) error
}

// subjectKeywords are preferred over arbitrary words when picking a subject.
var subjectKeywords = func() []string {
	words := make([]string, 0, len(model.FlavorVocabulary)+12)
	for _, note := range model.FlavorVocabulary {
		words = append(words, string(note))
	}
	return append(words,
		"espresso", "filter", "milk", "latte", "cappuccino",
		"light", "medium", "dark", "roast", "decaf", "origin", "blend")
}()

var stopWords = map[string]bool{
	"about": true, "which": true, "would": true, "could": true, "should": true,
	"there": true, "their": true, "these": true, "those": true, "where": true,
	"what": true, "your": true, "have": true, "with": true, "that": true,
	"this": true, "from": true, "like": true, "want": true, "something": true,
	"coffee": true, "coffees": true, "recommend": true, "please": true,
}

// ExtractSubject picks the term a message is about: the first known coffee
// keyword, else the longest non-stop word of four letters or more, else
// "general".
func ExtractSubject(message string) string {
	q := newQuery(message)
	for _, kw := range subjectKeywords {
		if q.words[kw] {
			return kw
		}
	}

	best := ""
	for _, w := range wordPattern.FindAllString(q.text, -1) {
		if len(w) >= 4 && !stopWords[w] && len(w) > len(best) {
			best = w
		}
	}
	if best == "" {
		return "general"
	}
	return best
}

// usageTracker writes usage records in the background. Failures and panics
// are logged and counted, never returned.
type usageTracker struct {
	recorder UsageRecorder
	logger   *slog.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
}

func newUsageTracker(recorder UsageRecorder, timeout time.Duration, logger *slog.Logger) *usageTracker {
	if timeout <= 0 {
		timeout = defaultTrackingTimeout
	}
	return &usageTracker{recorder: recorder, timeout: timeout, logger: logger}
}

func (t *usageTracker) track(messages []Message, result Result) {
	msg, ok := LastUserMessage(messages)
	if !ok {
		return
	}

	record := model.UsageRecord{
		ID:         uuid.NewString(),
		Model:      result.Model,
		Provider:   result.Provider,
		Subject:    ExtractSubject(msg),
		Confidence: UsageConfidence,
		CreatedAt:  time.Now().UTC(),
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if err := t.record(record); err != nil {
			metrics.UsageTrackingFailures.Inc()
			t.logger.Warn("usage tracking failed",
				"model", record.Model,
				"subject", record.Subject,
				"error", err)
		}
	}()
}

func (t *usageTracker) record(record model.UsageRecord) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("usage recorder panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	if err := t.recorder.RecordUsage(ctx, record); err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

// wait blocks until pending records are written.
func (t *usageTracker) wait() {
	t.wg.Wait()
}
