package x11

import (
	"math"
	"testing"

	"github.com/BurntSushi/xgb/randr"

	"github.com/1broseidon/displayctl/internal/display"
)

func TestRefreshRate_FromTimings(t *testing.T) {
	tests := []struct {
		name string
		mi   randr.ModeInfo
		want float64
	}{
		{
			// Standard CEA 1920x1080@60: 148.5MHz / (2200*1125).
			name: "1080p60",
			mi:   randr.ModeInfo{DotClock: 148500000, Htotal: 2200, Vtotal: 1125},
			want: 60.0,
		},
		{
			// VESA DMT 1080p: 148.352MHz variant lands on 59.94.
			name: "1080p59.94",
			mi:   randr.ModeInfo{DotClock: 148351648, Htotal: 2200, Vtotal: 1125},
			want: 59.94,
		},
		{
			name: "interlaced doubles the field rate",
			mi: randr.ModeInfo{
				DotClock: 74250000, Htotal: 2200, Vtotal: 1125,
				ModeFlags: randr.ModeFlagInterlace,
			},
			want: 60.0,
		},
		{
			name: "doublescan halves the frame rate",
			mi: randr.ModeInfo{
				DotClock: 148500000, Htotal: 2200, Vtotal: 1125,
				ModeFlags: randr.ModeFlagDoubleScan,
			},
			want: 30.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := refreshRate(tt.mi)
			if math.Abs(got-tt.want) > 0.01 {
				t.Fatalf("refreshRate = %.4f, want %.2f", got, tt.want)
			}
		})
	}
}

func TestRefreshRate_ZeroTimingsAreSkippable(t *testing.T) {
	if got := refreshRate(randr.ModeInfo{DotClock: 148500000}); got != 0 {
		t.Fatalf("expected 0 for degenerate timings, got %v", got)
	}
}

func TestDepthsInRange(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi int32
		want   []display.ColorDepth
	}{
		{"typical hdr panel", 8, 12, []display.ColorDepth{display.Depth8, display.Depth10, display.Depth12}},
		{"sdr only", 6, 8, []display.ColorDepth{display.Depth8}},
		{"full range", 8, 16, []display.ColorDepth{display.Depth8, display.Depth10, display.Depth12, display.Depth16}},
		{"nonsense range falls back to 8-bit", 0, 4, []display.ColorDepth{display.Depth8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := depthsInRange(tt.lo, tt.hi)
			if len(got) != len(tt.want) {
				t.Fatalf("depthsInRange(%d,%d) = %v, want %v", tt.lo, tt.hi, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("depthsInRange(%d,%d) = %v, want %v", tt.lo, tt.hi, got, tt.want)
				}
			}
		})
	}
}

func TestClassifyConfigStatus(t *testing.T) {
	mode := display.Mode{Width: 1920, Height: 1080, RefreshHz: 60, Depth: display.Depth8}

	if err := classifyConfigStatus(randr.SetConfigSuccess, mode); err != nil {
		t.Fatalf("success status should not error: %v", err)
	}

	err := classifyConfigStatus(randr.SetConfigFailed, mode)
	if display.Kind(err) != "ModeApplyRejected" {
		t.Fatalf("Failed status should map to ModeApplyRejected, got %v", err)
	}

	for _, status := range []byte{randr.SetConfigInvalidConfigTime, randr.SetConfigInvalidTime, 0x7f} {
		err := classifyConfigStatus(status, mode)
		if display.Kind(err) != "ModeApplyUnknown" {
			t.Fatalf("status %d should map to ModeApplyUnknown, got %v", status, err)
		}
	}
}
