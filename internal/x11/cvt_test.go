package x11

import (
	"testing"

	"github.com/BurntSushi/xgb/randr"
)

func TestCvtReducedBlanking_Known1080p60(t *testing.T) {
	// Pinned against `cvt -r 1920 1080 60`:
	// 138.50MHz, h: 1968 2000 total 2080, v: 1083 1088 total 1111.
	mi, err := cvtReducedBlanking(1920, 1080, 60)
	if err != nil {
		t.Fatalf("cvt: %v", err)
	}
	if mi.DotClock != 138500000 {
		t.Fatalf("dot clock = %d, want 138500000", mi.DotClock)
	}
	if mi.Htotal != 2080 || mi.HsyncStart != 1968 || mi.HsyncEnd != 2000 {
		t.Fatalf("horizontal timings = %d %d %d, want 1968 2000 2080", mi.HsyncStart, mi.HsyncEnd, mi.Htotal)
	}
	if mi.Vtotal != 1111 || mi.VsyncStart != 1083 || mi.VsyncEnd != 1088 {
		t.Fatalf("vertical timings = %d %d %d, want 1083 1088 1111", mi.VsyncStart, mi.VsyncEnd, mi.Vtotal)
	}
	if mi.ModeFlags&randr.ModeFlagHsyncPositive == 0 || mi.ModeFlags&randr.ModeFlagVsyncNegative == 0 {
		t.Fatalf("reduced blanking should be +hsync -vsync, got flags %#x", mi.ModeFlags)
	}
}

func TestCvtReducedBlanking_GeneratedRefreshIsClose(t *testing.T) {
	// The pixel clock is floored to 0.25MHz steps, so the achieved refresh
	// sits slightly under the request but must stay within CVT slack.
	cases := []struct {
		w, h    int
		refresh float64
	}{
		{1280, 800, 90},
		{2560, 1440, 120},
		{3840, 2160, 60},
		{1920, 1200, 144},
	}
	for _, tc := range cases {
		mi, err := cvtReducedBlanking(tc.w, tc.h, tc.refresh)
		if err != nil {
			t.Fatalf("cvt %dx%d@%.0f: %v", tc.w, tc.h, tc.refresh, err)
		}
		got := refreshRate(mi)
		if got > tc.refresh || got < tc.refresh-0.5 {
			t.Fatalf("cvt %dx%d@%.0f produced %.3fHz", tc.w, tc.h, tc.refresh, got)
		}
		if int(mi.Width) > tc.w || tc.w-int(mi.Width) >= cvtCellGranularity {
			t.Fatalf("width %d not snapped to cell granularity for %d", mi.Width, tc.w)
		}
	}
}

func TestCvtReducedBlanking_RejectsImpossibleGeometry(t *testing.T) {
	if _, err := cvtReducedBlanking(0, 1080, 60); err == nil {
		t.Fatal("expected error for zero width")
	}
	if _, err := cvtReducedBlanking(1920, 1080, -1); err == nil {
		t.Fatal("expected error for negative refresh")
	}
	// A refresh so high the whole frame would not fit in the line budget.
	if _, err := cvtReducedBlanking(1920, 1080, 100000); err == nil {
		t.Fatal("expected error for absurd refresh")
	}
}

func TestCvtVSyncWidth_AspectTable(t *testing.T) {
	tests := []struct {
		w, h, want int
	}{
		{1024, 768, 4},  // 4:3
		{1920, 1080, 5}, // 16:9
		{1920, 1200, 6}, // 16:10
		{1280, 1024, 7}, // 5:4
		{1280, 800, 6},  // 16:10
		{1234, 567, 10}, // non-standard
	}
	for _, tt := range tests {
		if got := cvtVSyncWidth(tt.w, tt.h); got != tt.want {
			t.Fatalf("cvtVSyncWidth(%d,%d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}
