// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package internal_audio

// Config describes a PCM stream layout.
type Config struct {
	SampleRate uint32
	Channels   uint16
}

// SCRIBE_INTERNAL_AUDIO_CONFIG is the canonical wire and storage format:
// 16 kHz mono LINEAR16. Everything captured at a device-native rate is
// resampled to this before it reaches the recorder or the transport.
var SCRIBE_INTERNAL_AUDIO_CONFIG = Config{
	SampleRate: 16000,
	Channels:   1,
}

const (
	// BytesPerSample for LINEAR16.
	BytesPerSample = 2
	// BitsPerSample for LINEAR16.
	BitsPerSample = 16
	// PCMFormat is the WAV PCM format tag.
	PCMFormat = 1
)

// BytesPerSecond returns the encoded byte rate for a config.
func BytesPerSecond(cfg Config) int {
	return int(cfg.SampleRate) * int(cfg.Channels) * BytesPerSample
}
