// encoder.go implements the public Encoder API: construction, the
// encode_frame/flush cycle of spec §6, and the stream-level accessors.

package alsenc

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/go-als/alsenc/bitio"
	"github.com/go-als/alsenc/bitstream"
	"github.com/go-als/alsenc/crc"
	"github.com/go-als/alsenc/frame"
	"github.com/go-als/alsenc/types"
)

// Encoder encodes deinterleaved integer PCM into an ALS bitstream.
//
// An Encoder is single-threaded per stream (spec §5) and is NOT safe for
// concurrent use; each goroutine encoding its own stream should own a
// separate Encoder. All working buffers are allocated in NewEncoder and
// reused across frames except the returned packet payload.
type Encoder struct {
	cfg      Config
	logger   *log.Logger
	streamID uuid.UUID

	lanes   []*frame.Lane
	histLen int

	crcStream *crc.Stream

	writer  *bitio.Writer
	scratch []byte

	configWriter    *bitio.Writer
	configBuf       []byte
	configOffsets   bitstream.ConfigPatchOffsets
	audioConfigBits int

	frameCounter int
	totalSamples uint32
	closed       bool
}

// Option configures optional Encoder behavior at construction.
type Option func(*Encoder)

// WithLogWriter directs diagnostic output (spec §7's header-rewrite and
// overflow warnings) to w instead of the default (stderr, Warn level).
func WithLogWriter(w io.Writer) Option {
	return func(e *Encoder) {
		e.logger = log.NewWithOptions(w, log.Options{Level: log.WarnLevel})
	}
}

// NewEncoder allocates an Encoder for the given stream configuration.
func NewEncoder(cfg Config, opts ...Option) (*Encoder, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	e := &Encoder{
		cfg:      cfg,
		logger:   log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel}),
		streamID: uuid.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("stream", e.streamID.String())

	e.histLen = frame.HistoryLen(cfg.MaxOrder)
	e.lanes = make([]*frame.Lane, cfg.Channels)
	for c := range e.lanes {
		e.lanes[c] = frame.NewLane(e.histLen, cfg.FrameLength)
	}

	e.crcStream = crc.NewStream(cfg.Resolution)

	// Packet buffer sized per spec §5: frame_length * channels * 32 bits,
	// plus a fixed slack for headers and the ra_unit_size reservation.
	bufBytes := cfg.FrameLength*cfg.Channels*4 + 256
	e.scratch = make([]byte, bufBytes)
	e.writer = bitio.NewWriter(e.scratch)

	if err := e.buildInitialConfig(); err != nil {
		return nil, fmt.Errorf("alsenc: building initial config: %w", err)
	}

	return e, nil
}

func validateConfig(cfg Config) error {
	if cfg.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	if cfg.Channels < 1 || cfg.Channels > 255 {
		return ErrInvalidChannels
	}
	if cfg.FrameLength < 2 || cfg.FrameLength > 65536 {
		return ErrInvalidFrameLength
	}
	if cfg.MaxOrder < 0 || cfg.MaxOrder > 1023 {
		return ErrInvalidMaxOrder
	}
	switch cfg.Resolution {
	case types.Resolution8, types.Resolution16, types.Resolution24, types.Resolution32:
	default:
		return ErrInvalidResolution
	}
	return nil
}

// buildInitialConfig writes the AudioSpecificConfig+ALSSpecificConfig
// extradata once at construction with placeholder total_samples/CRC,
// recording the patch offsets Close uses to finalize it.
func (e *Encoder) buildInitialConfig() error {
	e.configBuf = make([]byte, 128)
	e.configWriter = bitio.NewWriter(e.configBuf)

	if err := bitstream.WriteAudioSpecificConfig(e.configWriter, uint32(e.cfg.SampleRate)); err != nil {
		return err
	}
	e.audioConfigBits = e.configWriter.BitLength()
	if err := e.configWriter.AlignByte(); err != nil {
		return err
	}

	off, err := bitstream.WriteALSSpecificConfig(e.configWriter, e.configParams(0, 0))
	if err != nil {
		return err
	}
	e.configOffsets = off
	return nil
}

func (e *Encoder) configParams(totalSamples, crcValue uint32) bitstream.ConfigParams {
	return bitstream.ConfigParams{
		SampleRate:       uint32(e.cfg.SampleRate),
		TotalSamples:     totalSamples,
		Channels:         e.cfg.Channels,
		Resolution:       e.cfg.Resolution,
		MSBFirst:         e.cfg.MSBFirst,
		FrameLength:      e.cfg.FrameLength,
		RADistance:       e.cfg.RADistance,
		RAFlag:           e.cfg.RAFlag,
		AdaptOrder:       e.cfg.AdaptOrder,
		CoefTable:        e.cfg.CoefTable,
		LongTermPred:     e.cfg.LongTermPrediction,
		MaxOrder:         e.cfg.MaxOrder,
		BlockSwitchDepth: e.cfg.BlockSwitchDepth,
		BGMC:             e.cfg.BGMC,
		SBPart:           e.cfg.SBPart,
		JointStereo:      e.cfg.JointStereo,
		CRCEnabled:       e.cfg.CRCEnabled,
		CRC:              crcValue,
	}
}

// Extradata returns the AudioSpecificConfig+ALSSpecificConfig bytes a
// muxer persists at file start (spec §6's muxer contract), with
// total_samples and CRC still at their placeholder (zero) values. Call
// EncodeFrame(nil, 0) after all frames to obtain the finalized version.
func (e *Encoder) Extradata() []byte {
	out := make([]byte, len(e.configBuf))
	copy(out, e.configBuf)
	return out
}

// ConfigOffset returns the byte offset ALSSpecificConfig starts at
// within Extradata (spec §6).
func (e *Encoder) ConfigOffset() int {
	return bitstream.ConfigOffset(e.audioConfigBits)
}

// EncodeFrame encodes one frame of interleaved PCM (channels interleaved,
// samplesPerChannel samples per channel, container width cfg.ContainerBits)
// and returns its packet. Passing a nil pcm slice flushes the stream: no
// audio is encoded, the encoder is closed to further frames, and the
// returned packet carries the finalized extradata (total sample count
// and CRC filled in) as side data.
func (e *Encoder) EncodeFrame(pcm []int32, samplesPerChannel int) (*Packet, error) {
	if e.closed {
		return nil, ErrEncoderClosed
	}
	if pcm == nil {
		return e.flush()
	}
	if len(pcm) != e.cfg.Channels*samplesPerChannel {
		return nil, ErrInvalidFrameSize
	}

	e.crcStream.Update(pcm)
	frame.Stage(e.lanes, pcm, e.cfg.Channels, samplesPerChannel, e.cfg.ContainerBits, e.cfg.Resolution.BitsPerSample())

	isRA := e.cfg.RAFlag != types.RAFlagNone && e.cfg.RADistance > 0 && e.frameCounter%e.cfg.RADistance == 0

	plans := e.planFrame(samplesPerChannel, isRA)
	channelFrames := e.searchFrame(plans, samplesPerChannel, isRA)

	e.writer.Reset(e.scratch)
	if err := bitstream.WriteFrame(e.writer, channelFrames, e.streamParams(), e.cfg.RAFlag, e.cfg.RADistance); err != nil {
		e.logger.Warn("discarding frame: bitstream buffer overflow", "frame", e.frameCounter)
		return nil, fmt.Errorf("%w: %v", ErrBufferOverflow, err)
	}

	data := make([]byte, e.writer.ByteLength())
	copy(data, e.writer.Bytes())

	e.totalSamples += uint32(samplesPerChannel)
	e.frameCounter++
	e.advanceLanes()

	return &Packet{Data: data, Samples: samplesPerChannel}, nil
}

// flush finalizes the extradata with the true sample count and CRC, and
// closes the encoder to further EncodeFrame calls.
func (e *Encoder) flush() (*Packet, error) {
	var crcValue uint32
	if e.cfg.CRCEnabled {
		crcValue = e.crcStream.Sum()
	}
	bitstream.PatchClose(e.configWriter, e.configOffsets, e.totalSamples, 0, 0, crcValue)
	e.closed = true

	return &Packet{Data: e.Extradata(), IsConfig: true}, nil
}

// Close releases the encoder. It is safe to call multiple times and
// safe to call without having flushed first (state is simply discarded).
func (e *Encoder) Close() error {
	e.closed = true
	return nil
}

// Channels returns the configured channel count.
func (e *Encoder) Channels() int { return e.cfg.Channels }

// SampleRate returns the configured sample rate in Hz.
func (e *Encoder) SampleRate() int { return e.cfg.SampleRate }

// Config returns a copy of the encoder's stream configuration.
func (e *Encoder) Config() Config { return e.cfg }

// StreamID returns the UUID stamped on this Encoder's log lines,
// distinguishing concurrent streams' diagnostics without shared state.
func (e *Encoder) StreamID() string { return e.streamID.String() }
