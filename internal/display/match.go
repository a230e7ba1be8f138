package display

import (
	"math"
	"sort"
)

// DefaultRefreshTolerance treats two refresh rates as equal when they round
// to the same hundredth of a hertz. RandR derives rates from mode timings
// (59.951Hz and friends), so a straight comparison would reject modes the
// display actually drives. Overridable via refresh_tolerance in the config;
// the value here matches observed driver rounding, not a published spec.
const DefaultRefreshTolerance = 0.01

// maxClosestCandidates caps the diagnostic list in UnsupportedModeError.
const maxClosestCandidates = 3

// Resolve matches req against the enumerated supported set and returns the
// mode to apply. Pure function over already-fetched state; no retries.
//
// Exact-match policy: width and height equal, refresh equal within tolerance.
// When several supported modes match and differ only by color depth, the
// highest depth wins. Without a match the call fails with
// *UnsupportedModeError carrying the closest candidates.
//
// With req.Unsafe the supported set is bypassed entirely and the mode is
// built verbatim from the request.
func Resolve(req Request, supported []Mode, tolerance float64) (Mode, error) {
	if req.Unsafe {
		// Depth stays zero: the request carries no depth, and guessing one
		// would lower the connector on deeper panels. The applier keeps the
		// current depth for zero.
		return Mode{
			Width:     req.Width,
			Height:    req.Height,
			RefreshHz: req.RefreshHz,
		}, nil
	}

	if tolerance <= 0 {
		tolerance = DefaultRefreshTolerance
	}

	var best Mode
	found := false
	for _, m := range supported {
		if m.Width != req.Width || m.Height != req.Height {
			continue
		}
		if !RefreshEqual(m.RefreshHz, req.RefreshHz, tolerance) {
			continue
		}
		if !found || m.Depth > best.Depth {
			best = m
			found = true
		}
	}
	if found {
		return best, nil
	}

	return Mode{}, &UnsupportedModeError{Request: req, Closest: closest(req, supported)}
}

// RefreshEqual reports whether two refresh rates land on the same tolerance
// grid cell. Every refresh comparison in the pipeline goes through this, so
// a mode that resolved as equal still compares equal when looked up again
// at apply time.
func RefreshEqual(a, b, tolerance float64) bool {
	return math.Round(a/tolerance) == math.Round(b/tolerance)
}

// closest ranks supported modes by resolution distance, then refresh
// distance, collapsing depth variants, and returns the top few.
func closest(req Request, supported []Mode) []Mode {
	modes := append([]Mode(nil), supported...)
	sort.SliceStable(modes, func(i, j int) bool {
		di, dj := resolutionDistance(req, modes[i]), resolutionDistance(req, modes[j])
		if di != dj {
			return di < dj
		}
		ri := math.Abs(modes[i].RefreshHz - req.RefreshHz)
		rj := math.Abs(modes[j].RefreshHz - req.RefreshHz)
		if ri != rj {
			return ri < rj
		}
		return modes[i].Depth > modes[j].Depth
	})

	type key struct {
		w, h, centihz int
	}
	seen := make(map[key]struct{})
	var out []Mode
	for _, m := range modes {
		k := key{m.Width, m.Height, int(math.Round(m.RefreshHz * 100))}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, m)
		if len(out) == maxClosestCandidates {
			break
		}
	}
	return out
}

func resolutionDistance(req Request, m Mode) int {
	dw := m.Width - req.Width
	dh := m.Height - req.Height
	return dw*dw + dh*dh
}
