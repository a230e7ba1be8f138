package display

import (
	"errors"
	"testing"
)

var deckModes = []Mode{
	{Width: 1280, Height: 800, RefreshHz: 90.0, Depth: Depth10},
	{Width: 1280, Height: 800, RefreshHz: 90.0, Depth: Depth8},
	{Width: 1280, Height: 800, RefreshHz: 60.0, Depth: Depth8},
	{Width: 1920, Height: 1080, RefreshHz: 59.951, Depth: Depth8},
	{Width: 1920, Height: 1080, RefreshHz: 59.951, Depth: Depth10},
	{Width: 1920, Height: 1080, RefreshHz: 119.982, Depth: Depth8},
	{Width: 3840, Height: 2160, RefreshHz: 60.0, Depth: Depth10},
}

func TestResolve_ReflexiveOverSupportedSet(t *testing.T) {
	// Every enumerated mode must resolve to itself (or a deeper variant of
	// itself) when requested verbatim.
	for _, m := range deckModes {
		req := Request{Width: m.Width, Height: m.Height, RefreshHz: m.RefreshHz}
		got, err := Resolve(req, deckModes, DefaultRefreshTolerance)
		if err != nil {
			t.Fatalf("Resolve(%v) failed: %v", req, err)
		}
		if got.Width != m.Width || got.Height != m.Height || got.RefreshHz != m.RefreshHz {
			t.Fatalf("Resolve(%v) = %v, want geometry/refresh of %v", req, got, m)
		}
		if got.Depth < m.Depth {
			t.Fatalf("Resolve(%v) = %v, returned shallower depth than %v", req, got, m)
		}
	}
}

func TestResolve_TieBreakPrefersHighestDepth(t *testing.T) {
	req := Request{Width: 1920, Height: 1080, RefreshHz: 59.951}
	got, err := Resolve(req, deckModes, DefaultRefreshTolerance)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Depth != Depth10 {
		t.Fatalf("expected 10-bit variant to win the tie, got %v", got)
	}
}

func TestResolve_RefreshToleranceRounding(t *testing.T) {
	tests := []struct {
		name      string
		requested float64
		wantMatch bool
	}{
		{"exact", 59.951, true},
		{"rounds to same hundredth", 59.9512, true},
		{"integral request against rational mode", 59.95, true},
		{"off by a hundredth", 59.96, false},
		{"plain 60 against 59.951", 60.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{Width: 1920, Height: 1080, RefreshHz: tt.requested}
			_, err := Resolve(req, deckModes, DefaultRefreshTolerance)
			if tt.wantMatch && err != nil {
				t.Fatalf("expected match for %.4fHz, got %v", tt.requested, err)
			}
			if !tt.wantMatch && err == nil {
				t.Fatalf("expected no match for %.4fHz", tt.requested)
			}
		})
	}
}

func TestResolve_UnsupportedModeNamesClosestCandidates(t *testing.T) {
	req := Request{Width: 3840, Height: 2160, RefreshHz: 144}
	_, err := Resolve(req, deckModes, DefaultRefreshTolerance)
	if err == nil {
		t.Fatal("expected UnsupportedMode failure")
	}

	var unsupported *UnsupportedModeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected *UnsupportedModeError, got %T", err)
	}
	if unsupported.Request != req {
		t.Fatalf("error should carry the offending request, got %v", unsupported.Request)
	}
	if len(unsupported.Closest) == 0 {
		t.Fatal("expected closest candidates for diagnostics")
	}
	// Same resolution at a different refresh is the nearest candidate.
	first := unsupported.Closest[0]
	if first.Width != 3840 || first.Height != 2160 {
		t.Fatalf("expected 3840x2160 as closest candidate, got %v", first)
	}
	if len(unsupported.Closest) > maxClosestCandidates {
		t.Fatalf("candidate list should be capped at %d, got %d", maxClosestCandidates, len(unsupported.Closest))
	}
}

func TestResolve_ClosestCandidatesCollapseDepthVariants(t *testing.T) {
	req := Request{Width: 1920, Height: 1080, RefreshHz: 240}
	_, err := Resolve(req, deckModes, DefaultRefreshTolerance)
	var unsupported *UnsupportedModeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected *UnsupportedModeError, got %v", err)
	}
	type key struct {
		w, h int
		hz   float64
	}
	seen := map[key]bool{}
	for _, m := range unsupported.Closest {
		k := key{m.Width, m.Height, m.RefreshHz}
		if seen[k] {
			t.Fatalf("duplicate candidate %v differing only by depth", m)
		}
		seen[k] = true
	}
}

func TestResolve_UnsafeOverrideBypassesSupportedSet(t *testing.T) {
	req := Request{Width: 2560, Height: 1600, RefreshHz: 165, Unsafe: true}
	got, err := Resolve(req, deckModes, DefaultRefreshTolerance)
	if err != nil {
		t.Fatalf("unsafe resolve must never fail with UnsupportedMode: %v", err)
	}
	want := Mode{Width: 2560, Height: 1600, RefreshHz: 165}
	if got != want {
		t.Fatalf("unsafe resolve = %v, want %v", got, want)
	}
	// Zero depth: the connector's current depth stays untouched rather than
	// being lowered to a guess.
	if got.Depth != 0 {
		t.Fatalf("unsafe resolve guessed a depth: %v", got.Depth)
	}

	// Works against an empty supported set too.
	got, err = Resolve(req, nil, DefaultRefreshTolerance)
	if err != nil || got != want {
		t.Fatalf("unsafe resolve over empty set = %v, %v", got, err)
	}
}

func TestResolve_EmptySupportedSet(t *testing.T) {
	req := Request{Width: 1280, Height: 800, RefreshHz: 90}
	_, err := Resolve(req, nil, DefaultRefreshTolerance)
	var unsupported *UnsupportedModeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected *UnsupportedModeError, got %v", err)
	}
	if len(unsupported.Closest) != 0 {
		t.Fatalf("no candidates to name for an empty set, got %v", unsupported.Closest)
	}
}

func TestResolve_ZeroToleranceFallsBackToDefault(t *testing.T) {
	req := Request{Width: 1920, Height: 1080, RefreshHz: 59.9512}
	if _, err := Resolve(req, deckModes, 0); err != nil {
		t.Fatalf("expected default tolerance fallback to match, got %v", err)
	}
}

func TestRefreshEqual_SharedComparison(t *testing.T) {
	// The applier re-finds the resolved mode with the same comparison, so a
	// resolved-equal pair must stay equal here.
	tests := []struct {
		a, b float64
		want bool
	}{
		{59.951, 59.951, true},
		{59.951, 59.9512, true},
		{59.951, 59.95, true},
		{59.951, 59.96, false},
		{59.951, 60.0, false},
	}
	for _, tt := range tests {
		if got := RefreshEqual(tt.a, tt.b, DefaultRefreshTolerance); got != tt.want {
			t.Fatalf("RefreshEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestKind_MapsEveryTaxonomyEntry(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&NoPrimaryDisplayError{}, "NoPrimaryDisplay"},
		{&UnsupportedModeError{}, "UnsupportedMode"},
		{&ModeApplyRejectedError{}, "ModeApplyRejected"},
		{&ModeApplyUnknownError{}, "ModeApplyUnknown"},
		{&BoostUnsupportedError{}, "BoostUnsupported"},
		{&BoostApplyFailedError{}, "BoostApplyFailed"},
		{&ProfileNotAssociatedError{}, "ProfileNotAssociated"},
		{&ProfileApplyFailedError{}, "ProfileApplyFailed"},
		{errors.New("boom"), "Unknown"},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Fatalf("Kind(%T) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
