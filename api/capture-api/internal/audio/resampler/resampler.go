// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package internal_resampler

import (
	"encoding/binary"
	"math"
)

// Resample converts a mono float32 frame from srcRate to dstRate using linear
// interpolation between adjacent source samples. For output index i at source
// position i·ratio the result is src[floor]·(1-frac) + src[floor+1]·frac; the
// last source sample is held at the end of the sequence.
//
// The function is pure: no state is carried between frames.
func Resample(src []float32, srcRate, dstRate int) []float32 {
	if len(src) == 0 || srcRate <= 0 || dstRate <= 0 {
		return nil
	}
	if srcRate == dstRate {
		out := make([]float32, len(src))
		copy(out, src)
		return out
	}

	ratio := float64(srcRate) / float64(dstRate)
	outLen := int(math.Round(float64(len(src)) / ratio))
	if outLen == 0 {
		outLen = 1
	}

	out := make([]float32, outLen)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(src)-1 {
			out[i] = src[len(src)-1]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = src[idx]*(1-frac) + src[idx+1]*frac
	}
	return out
}

// Quantize clamps samples to [-1, 1] and converts them to 16-bit signed
// integers. Negative values scale by 32768, non-negative by 32767, so both
// extremes map onto the full int16 range without overflow.
func Quantize(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, v := range samples {
		if v < -1 {
			v = -1
		} else if v > 1 {
			v = 1
		}
		if v < 0 {
			out[i] = int16(v * 32768)
		} else {
			out[i] = int16(v * 32767)
		}
	}
	return out
}

// Encode serialises 16-bit samples as little-endian PCM bytes.
func Encode(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// EncodeFrame is the full capture path for one frame: resample to dstRate,
// quantize and serialise. Returns nil for an empty frame.
func EncodeFrame(src []float32, srcRate, dstRate int) []byte {
	resampled := Resample(src, srcRate, dstRate)
	if len(resampled) == 0 {
		return nil
	}
	return Encode(Quantize(resampled))
}
