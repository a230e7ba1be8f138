package x11

import (
	"fmt"
	"math"

	"github.com/BurntSushi/xgb/randr"
)

// CVT reduced-blanking timing generation, for registering custom modes the
// server does not already know (the unsafe-override path). Reduced blanking
// is the right variant for the fixed-pixel displays this tool targets; it is
// what `cvt -r` emits and what streaming setups add by hand.
const (
	cvtCellGranularity = 8
	cvtClockStepMHz    = 0.25

	rbHorizontalBlank = 160 // pixels
	rbHorizontalSync  = 32  // pixels
	rbHorizontalBack  = 80  // pixels
	rbMinVBlankUs     = 460.0
	rbVFrontPorch     = 3 // lines
	rbMinVBackPorch   = 6 // lines
)

// cvtVSyncWidth picks the vertical sync width from the aspect ratio, per the
// CVT aspect table. Non-standard ratios get the reserved value.
func cvtVSyncWidth(width, height int) int {
	switch {
	case width*3 == height*4:
		return 4
	case width*9 == height*16:
		return 5
	case width*10 == height*16:
		return 6
	case width*4 == height*5, width*9 == height*15:
		return 7
	default:
		return 10
	}
}

// cvtReducedBlanking computes a CVT-RB mode for the requested geometry. The
// returned ModeInfo has no id or name length; the caller fills those in when
// registering the mode with the server.
func cvtReducedBlanking(width, height int, refreshHz float64) (randr.ModeInfo, error) {
	if width <= 0 || height <= 0 || refreshHz <= 0 {
		return randr.ModeInfo{}, fmt.Errorf("invalid mode geometry %dx%d @%.2fHz", width, height, refreshHz)
	}

	// Horizontal pixels snap to the character cell.
	hDisplay := (width / cvtCellGranularity) * cvtCellGranularity

	// Estimate the line period, then size the vertical blank to cover the
	// minimum blanking interval.
	hPeriodEst := ((1000000.0 / refreshHz) - rbMinVBlankUs) / float64(height)
	if hPeriodEst <= 0 {
		return randr.ModeInfo{}, fmt.Errorf("refresh %.2fHz is too high for %dx%d with reduced blanking", refreshHz, width, height)
	}
	vbiLines := int(rbMinVBlankUs/hPeriodEst) + 1

	vSync := cvtVSyncWidth(width, height)
	minVbi := rbVFrontPorch + vSync + rbMinVBackPorch
	if vbiLines < minVbi {
		vbiLines = minVbi
	}

	vTotal := height + vbiLines
	hTotal := hDisplay + rbHorizontalBlank

	// Pixel clock, floored to the CVT clock step.
	clockMHz := refreshHz * float64(vTotal) * float64(hTotal) / 1e6
	clockMHz = math.Floor(clockMHz/cvtClockStepMHz) * cvtClockStepMHz

	hSyncEnd := hTotal - rbHorizontalBack
	hSyncStart := hSyncEnd - rbHorizontalSync
	vSyncStart := height + rbVFrontPorch
	vSyncEnd := vSyncStart + vSync

	return randr.ModeInfo{
		Width:      uint16(hDisplay),
		Height:     uint16(height),
		DotClock:   uint32(clockMHz * 1e6),
		HsyncStart: uint16(hSyncStart),
		HsyncEnd:   uint16(hSyncEnd),
		Htotal:     uint16(hTotal),
		VsyncStart: uint16(vSyncStart),
		VsyncEnd:   uint16(vSyncEnd),
		Vtotal:     uint16(vTotal),
		ModeFlags:  randr.ModeFlagHsyncPositive | randr.ModeFlagVsyncNegative,
	}, nil
}
