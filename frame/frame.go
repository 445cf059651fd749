// Package frame implements sample staging (spec §4.1): deinterleaving and
// sign-normalizing raw PCM into per-channel integer lanes, and carrying the
// prediction/LTP history that persists across frames.
package frame

import (
	"github.com/go-als/alsenc/types"
)

// HistoryLen is the amount of per-channel history retained between frames,
// per spec §3: enough for the longest predictor (max_order) or the longest
// LTP lag, whichever is larger.
func HistoryLen(maxOrder int) int {
	if maxOrder > types.LTPMaxLag {
		return maxOrder
	}
	return types.LTPMaxLag
}

// Lane is one channel's working buffer: History() samples of carried-over
// context followed by the current frame's samples. Samples[0:histLen] is
// history; Samples[histLen:] is the current frame.
type Lane struct {
	Samples []int32
	histLen int
	frameN  int // length of the current frame within Samples
}

// NewLane allocates a lane sized for the configured history and the
// largest frame the stream will ever present.
func NewLane(histLen, maxFrameLen int) *Lane {
	return &Lane{
		Samples: make([]int32, histLen+maxFrameLen),
		histLen: histLen,
	}
}

// History returns the carried-over samples preceding the current frame.
func (l *Lane) History() []int32 {
	return l.Samples[:l.histLen]
}

// Current returns the current frame's samples.
func (l *Lane) Current() []int32 {
	return l.Samples[l.histLen : l.histLen+l.frameN]
}

// Window returns history plus current frame, i.e. everything available for
// prediction at the start of this frame.
func (l *Lane) Window() []int32 {
	return l.Samples[:l.histLen+l.frameN]
}

// Load copies frameSamples into the current-frame slot and records its
// length, without yet shifting history (call Advance after encoding).
func (l *Lane) Load(frameSamples []int32) {
	l.frameN = len(frameSamples)
	copy(l.Samples[l.histLen:l.histLen+l.frameN], frameSamples)
}

// Advance shifts the most recent histLen samples (tail of history+current)
// to the front, preparing the lane for the next frame's Load. Must be
// called exactly once per encoded frame.
func (l *Lane) Advance() {
	total := l.histLen + l.frameN
	if total <= l.histLen {
		// Empty frame (frameN == 0): nothing new to shift in, so both copies
		// are no-ops and the history stays as it is.
		copy(l.Samples[0:l.histLen-l.frameN], l.Samples[l.frameN:l.histLen])
		copy(l.Samples[l.histLen-l.frameN:l.histLen], l.Samples[l.histLen:total])
		return
	}
	copy(l.Samples[0:l.histLen], l.Samples[total-l.histLen:total])
}

// Stage deinterleaves one frame of interleaved raw samples of the given
// container width (8/16/32) and raw bit depth into per-channel signed
// lanes (spec §4.1). samplesPerChannel is the number of samples per
// channel in this frame (the final frame of a stream may be shorter).
func Stage(lanes []*Lane, interleaved []int32, channels, samplesPerChannel, containerBits, rawBits int) {
	shift := uint(containerBits - rawBits)
	scratch := make([]int32, samplesPerChannel)
	for c := 0; c < channels; c++ {
		for n := 0; n < samplesPerChannel; n++ {
			v := interleaved[n*channels+c]
			if containerBits == 8 {
				// 8-bit containers are unsigned PCM, re-centered per §4.1.
				v -= 128
			}
			scratch[n] = v >> shift
		}
		lanes[c].Load(scratch)
	}
}
