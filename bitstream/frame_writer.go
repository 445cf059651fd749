package bitstream

import (
	"github.com/go-als/alsenc/bitio"
	"github.com/go-als/alsenc/block"
	"github.com/go-als/alsenc/types"
)

// ChannelFrame is one channel's worth of searched blocks plus its bs_info
// tree word for this frame, ready for WriteFrame.
type ChannelFrame struct {
	BSInfo uint32
	Blocks []*block.Block
}

// WriteFrame emits one frame: per §4.6, every channel's blocks in order,
// then a byte alignment. When raFlag is RAFlagFrames and raDistance==1 a
// 32-bit ra_unit_size placeholder is reserved at the frame's start and
// back-patched once the frame's total size is known — back-patching the
// reserved leading slot, per spec §9's correction of the reference
// implementation's bug (it mistakenly appends the size at the tail
// instead of patching the head; we do not replicate that).
func WriteFrame(w *bitio.Writer, channels []ChannelFrame, sp StreamParams, raFlag types.RAFlag, raDistance int) error {
	raUnitOffset := -1
	if raFlag == types.RAFlagFrames && raDistance == 1 {
		raUnitOffset = w.ByteLength()
		if err := w.WriteBits(0, 32); err != nil {
			return err
		}
	}

	for _, ch := range channels {
		for blkIdx, b := range ch.Blocks {
			isFirst := blkIdx == 0
			if err := WriteBlock(w, b, sp, isFirst); err != nil {
				return err
			}
		}
	}

	if err := w.AlignByte(); err != nil {
		return err
	}

	if raUnitOffset >= 0 {
		size := uint32(w.ByteLength() - raUnitOffset - 4)
		w.PatchUint32BE(raUnitOffset, size)
	}
	return nil
}
