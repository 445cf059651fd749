package bitstream

import (
	"github.com/go-als/alsenc/bitio"
	"github.com/go-als/alsenc/types"
)

// alsMagic is the 32-bit "ALS\0" magic starting ALSSpecificConfig.
const alsMagic = 0x414C5300

// alsSamplingIndex is the fixed sampling_frequency_index AudioSpecificConfig
// uses to flag "see ALSSpecificConfig for the real rate" (§4.7).
const alsSamplingIndex = 0x0F

// alsObjectTypeALS is the MPEG-4 Audio object type id for ALS.
const alsObjectTypeALS = 36

// ConfigParams carries every ALSSpecificConfig field the config writer
// needs; it mirrors the stream's immutable configuration (spec §3).
type ConfigParams struct {
	SampleRate       uint32
	TotalSamples     uint32 // 0 at open; back-patched on close
	Channels         int
	FileType         int
	Resolution       types.Resolution
	Floating         bool
	MSBFirst         bool
	FrameLength      int
	RADistance       int
	RAFlag           types.RAFlag
	AdaptOrder       bool
	CoefTable        types.CoefTable
	LongTermPred     bool
	MaxOrder         int
	BlockSwitchDepth int // 0 if block switching disabled, else the partition tree depth D
	BGMC             bool
	SBPart           bool
	JointStereo      bool
	MCCoding         bool
	ChanConfig       bool
	ChanSort         bool
	CRCEnabled       bool
	RLSLMS           bool
	AuxDataEnabled   bool
	HeaderSize       uint32
	TrailerSize      uint32
	CRC              uint32 // valid only when CRCEnabled
}

// WriteAudioSpecificConfig emits the 43-bit AudioSpecificConfig prefix
// that precedes ALSSpecificConfig in the extradata blob (§4.7): the object
// type (36 does not fit the 5-bit field, so it is sent as the escape value
// 31 followed by 6 bits holding 36-32), a 4-bit sampling_frequency_index
// fixed to 0x0F signalling an out-of-band rate, a 24-bit explicit sample
// rate, and a 4-bit channel configuration left at 0 (ALS encodes its own
// channel count).
func WriteAudioSpecificConfig(w *bitio.Writer, sampleRate uint32) error {
	if err := w.WriteBits(31, 5); err != nil { // object type escape
		return err
	}
	if err := w.WriteBits(alsObjectTypeALS-32, 6); err != nil {
		return err
	}
	if err := w.WriteBits(alsSamplingIndex, 4); err != nil {
		return err
	}
	if err := w.WriteBits(sampleRate, 24); err != nil {
		return err
	}
	return w.WriteBits(0, 4)
}

// ConfigOffset returns the byte offset ALSSpecificConfig starts at within
// the extradata blob, given AudioSpecificConfig's bit length (§4.7's
// config_offset = (AudioSpecificConfig_bits + 7) >> 3).
func ConfigOffset(audioSpecificConfigBits int) int {
	return (audioSpecificConfigBits + 7) >> 3
}

// WriteALSSpecificConfig emits the byte-aligned ALSSpecificConfig header
// per §4.7's field list. It returns the byte offset (within w) of the
// header_size field and the byte offset of the total_samples field, so a
// caller can PatchUint32BE them once the true values are known at close.
type ConfigPatchOffsets struct {
	TotalSamplesOffset int
	HeaderSizeOffset   int
	TrailerSizeOffset  int
	CRCOffset          int // -1 when CRCEnabled is false
}

func WriteALSSpecificConfig(w *bitio.Writer, p ConfigParams) (ConfigPatchOffsets, error) {
	off := ConfigPatchOffsets{CRCOffset: -1}

	if err := w.WriteBits(alsMagic, 32); err != nil {
		return off, err
	}
	if err := w.WriteBits(p.SampleRate, 32); err != nil {
		return off, err
	}

	off.TotalSamplesOffset = w.ByteLength()
	if err := w.WriteBits(p.TotalSamples, 32); err != nil {
		return off, err
	}

	if err := w.WriteBits(uint32(p.Channels-1), 16); err != nil {
		return off, err
	}
	if err := w.WriteBits(uint32(p.FileType), 3); err != nil {
		return off, err
	}
	if err := w.WriteBits(uint32(p.Resolution), 3); err != nil {
		return off, err
	}
	if err := w.WriteBit(p.Floating); err != nil {
		return off, err
	}
	if err := w.WriteBit(p.MSBFirst); err != nil {
		return off, err
	}
	if err := w.WriteBits(uint32(p.FrameLength-1), 16); err != nil {
		return off, err
	}
	if err := w.WriteBits(uint32(p.RADistance), 8); err != nil {
		return off, err
	}
	if err := w.WriteBits(uint32(p.RAFlag), 2); err != nil {
		return off, err
	}
	if err := w.WriteBit(p.AdaptOrder); err != nil {
		return off, err
	}
	if err := w.WriteBits(uint32(p.CoefTable), 2); err != nil {
		return off, err
	}
	if err := w.WriteBit(p.LongTermPred); err != nil {
		return off, err
	}
	if err := w.WriteBits(uint32(p.MaxOrder), 10); err != nil {
		return off, err
	}

	bsCode := 0
	if p.BlockSwitchDepth > 0 {
		bsCode = p.BlockSwitchDepth - 2
		if bsCode < 1 {
			bsCode = 1
		}
	}
	if err := w.WriteBits(uint32(bsCode), 2); err != nil {
		return off, err
	}

	if err := w.WriteBit(p.BGMC); err != nil {
		return off, err
	}
	if err := w.WriteBit(p.SBPart); err != nil {
		return off, err
	}
	if err := w.WriteBit(p.JointStereo); err != nil {
		return off, err
	}
	if err := w.WriteBit(p.MCCoding); err != nil {
		return off, err
	}
	if err := w.WriteBit(p.ChanConfig); err != nil {
		return off, err
	}
	if err := w.WriteBit(p.ChanSort); err != nil {
		return off, err
	}
	if err := w.WriteBit(p.CRCEnabled); err != nil {
		return off, err
	}
	if err := w.WriteBit(p.RLSLMS); err != nil {
		return off, err
	}
	if err := w.WriteBits(0, 5); err != nil { // reserved
		return off, err
	}
	if err := w.WriteBit(p.AuxDataEnabled); err != nil {
		return off, err
	}
	if err := w.AlignByte(); err != nil {
		return off, err
	}

	off.HeaderSizeOffset = w.ByteLength()
	if err := w.WriteBits(p.HeaderSize, 32); err != nil {
		return off, err
	}
	off.TrailerSizeOffset = w.ByteLength()
	if err := w.WriteBits(p.TrailerSize, 32); err != nil {
		return off, err
	}

	if p.CRCEnabled {
		off.CRCOffset = w.ByteLength()
		if err := w.WriteBits(p.CRC, 32); err != nil {
			return off, err
		}
	}
	return off, nil
}

// PatchClose back-patches the fields whose true value is only known once
// the stream is closed: total_samples, header_size, trailer_size, and
// (when present) the CRC.
func PatchClose(w *bitio.Writer, off ConfigPatchOffsets, totalSamples, headerSize, trailerSize, crc uint32) {
	w.PatchUint32BE(off.TotalSamplesOffset, totalSamples)
	w.PatchUint32BE(off.HeaderSizeOffset, headerSize)
	w.PatchUint32BE(off.TrailerSizeOffset, trailerSize)
	if off.CRCOffset >= 0 {
		w.PatchUint32BE(off.CRCOffset, crc)
	}
}
