// config.go implements the stream configuration and compression-level
// presets of spec §3 and §6.

package alsenc

import "github.com/go-als/alsenc/types"

// Config is the immutable-once-constructed stream configuration (spec
// §3's SpecificConfig). Build one with NewConfig and optionally override
// individual fields before passing it to NewEncoder.
type Config struct {
	SampleRate  int
	Channels    int
	Resolution  types.Resolution
	FrameLength int // N, samples per channel per frame

	// ContainerBits is the width of each raw interleaved input sample
	// before sign-normalization (spec §4.1); defaults to Resolution's
	// width when left at 0.
	ContainerBits int

	Level types.CompressionLevel

	// RADistance is R: 0 disables random access, else every R-th frame's
	// first block is a random-access point (spec §3, §8).
	RADistance int
	RAFlag     types.RAFlag

	BlockSwitchDepth int // D, 0..5
	MaxOrder         int // P, 0..1023
	AdaptOrder       bool
	FullSearchOrder  bool // true: exact per-order enumeration; false: valley-detect

	LongTermPrediction bool
	LTPGainMode        types.LTPGainMode

	BGMC        bool
	SBPart      bool
	JointStereo bool
	CoefTable   types.CoefTable

	ExactEntropy bool // true: exact Rice bit search; false: estimate only. BGMC always uses the estimate.

	CRCEnabled bool
	MSBFirst   bool

	MergeStrategy types.MergeStrategy

	// The following are recognized per spec §1's non-goals, but no
	// algorithm for them runs and their values are not passed on: floating
	// point samples, multi-channel correlation, RLS-LMS, and channel
	// sorting are always written into ALSSpecificConfig as disabled/zero.
	Floating bool
	MCCoding bool
	ChanSort bool
	RLSLMS   bool
}

// NewConfig builds a Config from the caller-facing parameters and a
// compression-level preset (spec §6): level 0 favors speed, level 2
// favors ratio. Individual fields on the returned Config may still be
// overridden before constructing an Encoder.
func NewConfig(sampleRate, channels int, resolution types.Resolution, frameLength int, level types.CompressionLevel) (Config, error) {
	if sampleRate <= 0 {
		return Config{}, ErrInvalidSampleRate
	}
	if channels < 1 || channels > 255 {
		return Config{}, ErrInvalidChannels
	}
	if frameLength < 2 || frameLength > 65536 {
		return Config{}, ErrInvalidFrameLength
	}

	cfg := Config{
		SampleRate:    sampleRate,
		Channels:      channels,
		Resolution:    resolution,
		FrameLength:   frameLength,
		ContainerBits: resolution.BitsPerSample(),
		Level:         level,
		CoefTable:     types.CoefTable0,
		MergeStrategy: types.MergeBottomUp,
	}

	switch level {
	case types.Level0:
		cfg.MaxOrder = 4
		cfg.JointStereo = false
		cfg.BlockSwitchDepth = 0
		cfg.LongTermPrediction = false
		cfg.BGMC = false
		cfg.CRCEnabled = false
		cfg.ExactEntropy = false
	case types.Level1:
		cfg.MaxOrder = 10
		cfg.JointStereo = true
		cfg.SBPart = true
		cfg.CRCEnabled = true
		cfg.BlockSwitchDepth = 0
		cfg.LongTermPrediction = false
		cfg.BGMC = false
		cfg.ExactEntropy = true
	case types.Level2:
		cfg.MaxOrder = 32
		cfg.JointStereo = true
		cfg.SBPart = true
		cfg.CRCEnabled = true
		cfg.AdaptOrder = true
		cfg.FullSearchOrder = true
		cfg.LongTermPrediction = true
		cfg.LTPGainMode = types.LTPGainCholesky
		cfg.BlockSwitchDepth = partitionMaxDepth
		cfg.BGMC = true
		cfg.MergeStrategy = types.MergeFullSearch
		cfg.ExactEntropy = true
	default:
		return Config{}, ErrInvalidCompressionLevel
	}

	return cfg, nil
}

// partitionMaxDepth mirrors partition.MaxDepth without importing the
// partition package here, avoiding a cycle with config validation that
// runs before any per-stream state exists.
const partitionMaxDepth = 5

// SetMaxOrder overrides the preset's max prediction order (spec §6's
// max_prediction_order override).
func (c *Config) SetMaxOrder(order int) error {
	if order < 0 || order > 1023 {
		return ErrInvalidMaxOrder
	}
	c.MaxOrder = order
	return nil
}

// SetGOPSize configures random access by group-of-pictures size in
// frames (spec §6's gop_size → ra_distance mapping). A size of 0
// disables random access.
func (c *Config) SetGOPSize(frames int) {
	if frames <= 0 {
		c.RADistance = 0
		c.RAFlag = types.RAFlagNone
		return
	}
	c.RADistance = frames
	c.RAFlag = types.RAFlagFrames
}

// SetBGMC overrides the preset's entropy coder choice (spec §6's
// coder_type override: arithmetic selects BGMC).
func (c *Config) SetBGMC(enabled bool) {
	c.BGMC = enabled
}
