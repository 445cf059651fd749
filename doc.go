// Package alsenc implements the encoder core of MPEG-4 Audio Lossless
// Coding (ALS, ISO/IEC 14496-3 subpart 11): the subsystem that turns
// deinterleaved integer PCM into a conformant ALS bitstream.
//
// The encoder performs, per frame: sample staging into per-channel lanes
// with carried history, difference-signal generation for joint-stereo
// pairs, block-partition search (bottom-up or full-search over a binary
// tree of up to 5 levels), per-block linear prediction (PARCOR/LPC with
// adaptive order selection and an optional long-term predictor), and
// residual entropy coding via adaptive Rice or Block Gilbert-Moore
// Coding (BGMC). Output is a sequence of byte packets plus a finalized
// AudioSpecificConfig+ALSSpecificConfig header, emitted as a config packet
// when the encoder is flushed with EncodeFrame(nil, 0).
//
// The surrounding file muxer, command-line driver, and I/O layer are
// out of scope; this package only produces packet payloads and the
// config/header bytes a muxer writes verbatim.
//
// # Compression levels
//
// NewConfig accepts a CompressionLevel that selects a preset bundle of
// encoder features (joint-stereo, block switching, LTP, BGMC, predictor
// order) per spec: level 0 is fastest/least effective, level 2 is
// slowest/most effective. Individual features may still be overridden
// on the returned Config before constructing an Encoder.
package alsenc
