// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package internal_transcript

import (
	"testing"

	internal_type "github.com/scribeai/api/capture-api/internal/type"
	"github.com/stretchr/testify/assert"
)

func seg(text string, final bool) internal_type.TranscriptSegment {
	return internal_type.TranscriptSegment{Text: text, IsFinal: final}
}

func TestFinalSegmentsSpaceJoined(t *testing.T) {
	a := NewAggregator()
	a.Observe(seg("hello world", true))
	a.Observe(seg("how are you", true))
	assert.Equal(t, "hello world how are you", a.Current())
}

func TestInterimSegmentsNeverCommitted(t *testing.T) {
	a := NewAggregator()
	a.Observe(seg("hel", false))
	a.Observe(seg("hello wor", false))
	a.Observe(seg("hello world", true))
	a.Observe(seg("and mo", false))
	assert.Equal(t, "hello world", a.Current())
	assert.Equal(t, "and mo", a.Interim())
}

func TestEmptyFinalSegmentIgnored(t *testing.T) {
	a := NewAggregator()
	a.Observe(seg("first", true))
	a.Observe(seg("   ", true))
	a.Observe(seg("", true))
	a.Observe(seg("second", true))
	assert.Equal(t, "first second", a.Current())
}

func TestTextIsTrimmed(t *testing.T) {
	a := NewAggregator()
	a.Observe(seg("  padded  ", true))
	assert.Equal(t, "padded", a.Current())
}

// Duplicate finals duplicate text. A flaky link that redelivers a final
// segment produces it twice; this is a documented limitation, not a bug.
func TestDuplicateFinalsDuplicateText(t *testing.T) {
	a := NewAggregator()
	a.Observe(seg("again", true))
	a.Observe(seg("again", true))
	assert.Equal(t, "again again", a.Current())
}

func TestResetClearsEverything(t *testing.T) {
	a := NewAggregator()
	a.Observe(seg("something", true))
	a.Observe(seg("parti", false))
	a.Reset()
	assert.Equal(t, "", a.Current())
	assert.Equal(t, "", a.Interim())
}

func TestFinalClearsInterim(t *testing.T) {
	a := NewAggregator()
	a.Observe(seg("parti", false))
	a.Observe(seg("partial done", true))
	assert.Equal(t, "", a.Interim())
}
