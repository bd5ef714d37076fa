// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package internal_recorder

import (
	"bytes"
	"encoding/binary"
	"sync"

	internal_audio "github.com/scribeai/api/capture-api/internal/audio"
	internal_type "github.com/scribeai/api/capture-api/internal/type"
	"github.com/scribeai/pkg/commons"
)

var audioConfig = internal_audio.SCRIBE_INTERNAL_AUDIO_CONFIG

// pendingFlushThreshold is the size at which coalesced appends are promoted
// into a sealed chunk. Small appends (one resampled frame each) are cheap to
// coalesce; sealing keeps chunk count proportional to audio length rather
// than frame count.
const pendingFlushThreshold = 32000 // 1s at 16kHz LINEAR16

// chunk is a recorded audio fragment. Seq is the monotonically increasing
// position of the chunk within the session.
type chunk struct {
	Seq  int
	Data []byte
}

type audioRecorder struct {
	logger  commons.Logger
	mu      sync.Mutex
	chunks  []chunk
	pending bytes.Buffer
	nextSeq int
}

// NewAudioRecorder creates a single-track recorder accumulating LINEAR16
// chunks in strict append order, independent of any live connection.
func NewAudioRecorder(logger commons.Logger) internal_type.Recorder {
	return &audioRecorder{logger: logger}
}

// Append stores audio in call order. The data is copied, so callers may reuse
// their buffer. Appends are coalesced into a pending buffer and sealed into a
// chunk once the flush threshold is reached.
func (r *audioRecorder) Append(data []byte) {
	if len(data) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending.Write(data)
	if r.pending.Len() >= pendingFlushThreshold {
		r.sealPendingLocked()
	}
}

// sealPendingLocked promotes the pending buffer into a sealed chunk.
// Caller must hold r.mu.
func (r *audioRecorder) sealPendingLocked() {
	if r.pending.Len() == 0 {
		return
	}
	data := make([]byte, r.pending.Len())
	r.pending.Read(data)
	r.pending.Reset()
	r.chunks = append(r.chunks, chunk{Seq: r.nextSeq, Data: data})
	r.nextSeq++
}

// Finalize forces out any pending unflushed data and renders one contiguous
// WAV object concatenating every chunk in append order. It is idempotent with
// respect to buffer contents: repeated calls before further appends return
// equivalent output. Returns nil when nothing has been recorded.
func (r *audioRecorder) Finalize() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sealPendingLocked()
	if len(r.chunks) == 0 {
		return nil
	}

	total := 0
	for _, c := range r.chunks {
		total += len(c.Data)
	}
	pcm := make([]byte, 0, total)
	for _, c := range r.chunks {
		pcm = append(pcm, c.Data...)
	}

	r.logger.Infof("audio finalize: pcm=%d bytes (%.2fs), chunks=%d",
		total,
		float64(total)/float64(internal_audio.BytesPerSecond(audioConfig)),
		len(r.chunks))

	return createWAVFile(pcm)
}

// PCMBytes reports recorded PCM bytes, pending data included.
func (r *audioRecorder) PCMBytes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := r.pending.Len()
	for _, c := range r.chunks {
		total += len(c.Data)
	}
	return total
}

// Clear discards all recorded audio. This is the only way contents are
// dropped.
func (r *audioRecorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = nil
	r.pending.Reset()
	r.nextSeq = 0
}

func createWAVFile(pcmData []byte) []byte {
	var buf bytes.Buffer
	sampleRate := audioConfig.SampleRate
	channels := audioConfig.Channels
	bps := internal_audio.BytesPerSecond(audioConfig)

	buf.Write([]byte("RIFF"))
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcmData)))
	buf.Write([]byte("WAVE"))

	buf.Write([]byte("fmt "))
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(internal_audio.PCMFormat))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(bps))
	binary.Write(&buf, binary.LittleEndian, uint16(internal_audio.BytesPerSample))
	binary.Write(&buf, binary.LittleEndian, uint16(internal_audio.BitsPerSample))

	// data chunk
	buf.Write([]byte("data"))
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcmData)))
	buf.Write(pcmData)

	return buf.Bytes()
}
