// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package utils

import (
	"encoding/binary"
	"fmt"
	"time"
)

const wavHeaderSize = 44

// WAVDuration computes the playback duration of a canonical PCM WAV object
// from its header. Returns an error for anything that does not look like a
// PCM WAV; callers treat that as non-fatal and degrade to a default.
func WAVDuration(wav []byte) (time.Duration, error) {
	if len(wav) < wavHeaderSize {
		return 0, fmt.Errorf("wav too short: %d bytes", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return 0, fmt.Errorf("missing RIFF/WAVE header")
	}

	byteRate := binary.LittleEndian.Uint32(wav[28:32])
	if byteRate == 0 {
		return 0, fmt.Errorf("zero byte rate")
	}
	dataSize := binary.LittleEndian.Uint32(wav[40:44])

	seconds := float64(dataSize) / float64(byteRate)
	return time.Duration(seconds * float64(time.Second)), nil
}
