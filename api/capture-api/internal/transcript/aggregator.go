// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package internal_transcript

import (
	"strings"
	"sync"

	internal_type "github.com/scribeai/api/capture-api/internal/type"
)

// Aggregator folds inbound transcript events into a single growing string.
// Only final segments are committed; interim segments are observed but never
// persisted. Aggregation is order-preserving and deliberately not
// deduplicated: duplicate final segments from a flaky link duplicate text.
type Aggregator struct {
	mu      sync.Mutex
	parts   []string
	interim string
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Observe folds one segment into the aggregate. Final segments with
// non-empty trimmed text are appended, space-joined with prior content.
func (a *Aggregator) Observe(segment internal_type.TranscriptSegment) {
	text := strings.TrimSpace(segment.Text)
	a.mu.Lock()
	defer a.mu.Unlock()
	if !segment.IsFinal {
		a.interim = text
		return
	}
	a.interim = ""
	if text == "" {
		return
	}
	a.parts = append(a.parts, text)
}

// Current returns the committed transcript.
func (a *Aggregator) Current() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return strings.Join(a.parts, " ")
}

// Interim returns the latest advisory segment, for display only.
func (a *Aggregator) Interim() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.interim
}

// Reset clears the aggregate for a new session.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.parts = nil
	a.interim = ""
}
