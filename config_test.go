package alsenc

import (
	"testing"

	"github.com/go-als/alsenc/types"
)

func TestNewConfigRejectsBadParams(t *testing.T) {
	if _, err := NewConfig(0, 2, types.Resolution16, 4096, types.Level1); err != ErrInvalidSampleRate {
		t.Fatalf("err = %v, want ErrInvalidSampleRate", err)
	}
	if _, err := NewConfig(48000, 0, types.Resolution16, 4096, types.Level1); err != ErrInvalidChannels {
		t.Fatalf("err = %v, want ErrInvalidChannels", err)
	}
	if _, err := NewConfig(48000, 2, types.Resolution16, 1, types.Level1); err != ErrInvalidFrameLength {
		t.Fatalf("err = %v, want ErrInvalidFrameLength", err)
	}
	if _, err := NewConfig(48000, 2, types.Resolution16, 4096, types.CompressionLevel(99)); err != ErrInvalidCompressionLevel {
		t.Fatalf("err = %v, want ErrInvalidCompressionLevel", err)
	}
}

func TestNewConfigLevel0FavorsSpeed(t *testing.T) {
	cfg, err := NewConfig(48000, 2, types.Resolution16, 4096, types.Level0)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.MaxOrder != 4 {
		t.Fatalf("MaxOrder = %d, want 4", cfg.MaxOrder)
	}
	if cfg.JointStereo || cfg.LongTermPrediction || cfg.BGMC || cfg.CRCEnabled || cfg.ExactEntropy {
		t.Fatalf("level 0 should disable every ratio-hungry feature, got %+v", cfg)
	}
}

func TestNewConfigLevel1EnablesJointStereoAndCRC(t *testing.T) {
	cfg, err := NewConfig(44100, 2, types.Resolution16, 4096, types.Level1)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if !cfg.JointStereo || !cfg.SBPart || !cfg.CRCEnabled || !cfg.ExactEntropy {
		t.Fatalf("level 1 should enable joint-stereo/sb_part/CRC/exact entropy, got %+v", cfg)
	}
	if cfg.LongTermPrediction || cfg.BGMC || cfg.AdaptOrder {
		t.Fatalf("level 1 should not enable level-2-only features, got %+v", cfg)
	}
}

func TestNewConfigLevel2EnablesFullSearch(t *testing.T) {
	cfg, err := NewConfig(96000, 2, types.Resolution24, 8192, types.Level2)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if !cfg.AdaptOrder || !cfg.FullSearchOrder || !cfg.LongTermPrediction || !cfg.BGMC {
		t.Fatalf("level 2 should enable adaptive order, LTP, and BGMC, got %+v", cfg)
	}
	if cfg.MergeStrategy != types.MergeFullSearch {
		t.Fatalf("level 2 should use full-search merge, got %v", cfg.MergeStrategy)
	}
	if cfg.BlockSwitchDepth != partitionMaxDepth {
		t.Fatalf("BlockSwitchDepth = %d, want %d", cfg.BlockSwitchDepth, partitionMaxDepth)
	}
}

func TestSetMaxOrderValidates(t *testing.T) {
	cfg, _ := NewConfig(48000, 2, types.Resolution16, 4096, types.Level1)
	if err := cfg.SetMaxOrder(-1); err != ErrInvalidMaxOrder {
		t.Fatalf("err = %v, want ErrInvalidMaxOrder", err)
	}
	if err := cfg.SetMaxOrder(20); err != nil {
		t.Fatalf("SetMaxOrder: %v", err)
	}
	if cfg.MaxOrder != 20 {
		t.Fatalf("MaxOrder = %d, want 20", cfg.MaxOrder)
	}
}

func TestSetGOPSizeMapsToRADistance(t *testing.T) {
	cfg, _ := NewConfig(48000, 2, types.Resolution16, 4096, types.Level1)
	cfg.SetGOPSize(10)
	if cfg.RADistance != 10 || cfg.RAFlag != types.RAFlagFrames {
		t.Fatalf("RADistance/RAFlag = %d/%v, want 10/RAFlagFrames", cfg.RADistance, cfg.RAFlag)
	}
	cfg.SetGOPSize(0)
	if cfg.RADistance != 0 || cfg.RAFlag != types.RAFlagNone {
		t.Fatalf("RADistance/RAFlag = %d/%v, want 0/RAFlagNone", cfg.RADistance, cfg.RAFlag)
	}
}

func TestSetBGMCOverridesPreset(t *testing.T) {
	cfg, _ := NewConfig(48000, 2, types.Resolution16, 4096, types.Level0)
	cfg.SetBGMC(true)
	if !cfg.BGMC {
		t.Fatalf("expected BGMC enabled after override")
	}
}
