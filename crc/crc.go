// Package crc implements the IEEE CRC-32 stream accumulator spec §4.7
// requires over raw samples before encoding. The ALS standard specifies
// the literal IEEE polynomial (0xEDB88320), which stdlib hash/crc32
// already computes bit-exact — unlike the codec's own Ogg container code
// (now removed from this tree), which hand-rolls its CRC table because
// Ogg's checksum uses a different, non-IEEE polynomial (0x04C11DB7) that
// hash/crc32 cannot produce. See DESIGN.md.
package crc

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/go-als/alsenc/types"
)

// Stream accumulates a running IEEE CRC-32 over raw samples in input
// order (spec §5's ordering guarantee: "CRC is folded in input order").
type Stream struct {
	h          uint32
	resolution types.Resolution
	scratch    []byte
}

// NewStream starts a fresh accumulator for the given sample resolution.
func NewStream(resolution types.Resolution) *Stream {
	return &Stream{resolution: resolution}
}

// Update folds one frame of raw samples, channel-interleaved in the order
// the caller supplied them, into the running CRC. Samples are serialized
// little-endian at the resolution's byte width; per §4.7, resolution==2
// (24-bit) is byte-reduced (3 bytes per sample, not 4).
func (s *Stream) Update(samples []int32) {
	width := byteWidth(s.resolution)
	need := len(samples) * width
	if cap(s.scratch) < need {
		s.scratch = make([]byte, need)
	}
	buf := s.scratch[:need]
	for i, v := range samples {
		off := i * width
		switch width {
		case 1:
			buf[off] = byte(v)
		case 2:
			binary.LittleEndian.PutUint16(buf[off:], uint16(v))
		case 3:
			u := uint32(v)
			buf[off] = byte(u)
			buf[off+1] = byte(u >> 8)
			buf[off+2] = byte(u >> 16)
		case 4:
			binary.LittleEndian.PutUint32(buf[off:], uint32(v))
		}
	}
	s.h = crc32.Update(s.h, crc32.IEEETable, buf)
}

func byteWidth(r types.Resolution) int {
	switch r {
	case types.Resolution8:
		return 1
	case types.Resolution16:
		return 2
	case types.Resolution24:
		return 3
	default:
		return 4
	}
}

// Sum returns the current 32-bit IEEE CRC.
func (s *Stream) Sum() uint32 {
	return s.h
}
