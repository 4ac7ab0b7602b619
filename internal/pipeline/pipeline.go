package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Model produces a raw textual reply for a receipt image. Implementations
// own prompt selection, transport, and timeouts; the reply is expected to
// contain a JSON object but frequently does not arrive clean.
type Model interface {
	Transcribe(image []byte, contentType string, advanced bool) (string, error)
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// defaultAttempts caps model invocations per receipt.
const defaultAttempts = 3

// Processor turns receipt images into normalized expense records. Each
// model reply runs through sanitation, lenient parsing, field validation,
// and cross-validation; failed model calls are retried.
type Processor struct {
	model      Model
	thresholds Thresholds
	attempts   int
	timeSource TimeSource
}

// NewProcessor creates a Processor with default thresholds and time source
func NewProcessor(model Model) *Processor {
	return NewProcessorWithDeps(model, DefaultThresholds(), &defaultTimeSource{})
}

// NewProcessorWithDeps creates a Processor with custom dependencies for testing
func NewProcessorWithDeps(model Model, thresholds Thresholds, timeSrc TimeSource) *Processor {
	return &Processor{
		model:      model,
		thresholds: thresholds,
		attempts:   defaultAttempts,
		timeSource: timeSrc,
	}
}

// Process extracts an expense record from a receipt image. It never returns
// an error: malformed replies degrade to a fallback record and transport
// failures exhaust every attempt before yielding a synthetic record
// describing the last error.
func (p *Processor) Process(image []byte, contentType string, advanced bool) *Record {
	var lastErr error

	for attempt := 1; attempt <= p.attempts; attempt++ {
		raw, err := p.model.Transcribe(image, contentType, advanced)
		if err == nil && strings.TrimSpace(raw) == "" {
			err = errors.New("empty model reply")
		}
		if err != nil {
			lastErr = err
			slog.Warn("Receipt transcription attempt failed", "attempt", attempt, "error", err)
			continue
		}
		return p.ProcessText(raw)
	}

	slog.Error("Receipt transcription exhausted retries", "attempts", p.attempts, "error", lastErr)
	rec := p.fallbackRecord()
	rec.ExtractionNotes = fmt.Sprintf("Processing failed after %d attempts: %v", p.attempts, lastErr)
	return rec
}

// ProcessText runs a single raw model reply through the pipeline. Replies
// that cannot be decoded even after repair produce a fallback record.
func (p *Processor) ProcessText(raw string) *Record {
	m, err := parseLenient(sanitize(raw))
	if err != nil {
		// sanitation may have over-trimmed; carve the brace span out of
		// the original reply and decode once more
		if span, ok := braceSpan(raw); ok {
			m, err = decodeObject(span)
		}
		if err != nil || m == nil {
			slog.Warn("Could not extract structured data from model reply", "error", err)
			return p.fallbackRecord()
		}
	}

	rec := normalizeRecord(m, p.timeSource.Now())
	crossValidate(rec, p.thresholds)
	return rec
}

// fallbackRecord is the minimal valid record substituted when no structured
// data could be extracted. It skips cross-validation; its confidence already
// says everything.
func (p *Processor) fallbackRecord() *Record {
	return &Record{
		MerchantName:    DefaultMerchant,
		TransactionDate: p.timeSource.Now().Format(dateLayouts[0]),
		Currency:        DefaultCurrency,
		Category:        DefaultCategory,
		Items:           []LineItem{},
		Confidence:      fallbackConfidence,
		ExtractionNotes: parseFailureNote,
	}
}
