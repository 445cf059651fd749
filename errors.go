// errors.go defines the public error taxonomy for the alsenc package,
// per spec §7: configuration, memory, arithmetic, and bitstream failure
// classes, plus the header-rewrite warning path.

package alsenc

import "errors"

// Public error values for encoder construction and frame encoding.
var (
	// ErrInvalidSampleRate indicates a non-positive or absurd sample rate.
	ErrInvalidSampleRate = errors.New("alsenc: invalid sample rate")

	// ErrInvalidChannels indicates a channel count outside [1, 255].
	ErrInvalidChannels = errors.New("alsenc: invalid channel count")

	// ErrInvalidResolution indicates an unsupported sample resolution.
	ErrInvalidResolution = errors.New("alsenc: invalid resolution")

	// ErrInvalidFrameLength indicates a frame length outside [2, 65536].
	ErrInvalidFrameLength = errors.New("alsenc: invalid frame length")

	// ErrInvalidFrameSize indicates the PCM slice passed to EncodeFrame
	// doesn't match channels * samples-per-channel for this stream.
	ErrInvalidFrameSize = errors.New("alsenc: invalid frame size")

	// ErrInvalidMaxOrder indicates a max prediction order outside [0, 1023].
	ErrInvalidMaxOrder = errors.New("alsenc: invalid max prediction order")

	// ErrInvalidCompressionLevel indicates a CompressionLevel outside {0,1,2}.
	ErrInvalidCompressionLevel = errors.New("alsenc: invalid compression level")

	// ErrBufferOverflow indicates the packet buffer was too small for a
	// frame's encoded bitstream (spec §7's bitstream-overflow failure
	// surface). The frame is discarded; the encoder's state is otherwise
	// unaffected and subsequent calls may succeed.
	ErrBufferOverflow = errors.New("alsenc: bitstream write buffer overflow")

	// ErrEncoderClosed is returned by EncodeFrame after Close.
	ErrEncoderClosed = errors.New("alsenc: encoder is closed")
)
