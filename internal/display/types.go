package display

import "fmt"

// ColorDepth is bits per color component, as exposed by the output's
// "max bpc" connector property.
type ColorDepth int

const (
	Depth8  ColorDepth = 8
	Depth10 ColorDepth = 10
	Depth12 ColorDepth = 12
	Depth16 ColorDepth = 16
)

// Mode is one configuration the display can drive: resolution, refresh rate
// and color depth. Immutable value type; comparable, so it can key a map.
// A zero Depth means the connector's current depth is kept as-is.
type Mode struct {
	Width     int
	Height    int
	RefreshHz float64
	Depth     ColorDepth
}

func (m Mode) String() string {
	if m.Depth == 0 {
		return fmt.Sprintf("%dx%d @%.2fHz", m.Width, m.Height, m.RefreshHz)
	}
	return fmt.Sprintf("%dx%d @%.2fHz %d-bit", m.Width, m.Height, m.RefreshHz, m.Depth)
}

// Request is a user-requested mode. Unsafe skips the supported-set check and
// trusts the caller; some legitimately supported custom modes are not
// enumerable through RandR, so the escape hatch has to exist.
type Request struct {
	Width     int
	Height    int
	RefreshHz float64
	Unsafe    bool
}

func (r Request) String() string {
	return fmt.Sprintf("%dx%d @%.2fHz", r.Width, r.Height, r.RefreshHz)
}
