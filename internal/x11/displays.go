package x11

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/randr"

	"github.com/1broseidon/displayctl/internal/display"
)

// Identity names the primary display for one invocation: the RandR output,
// the CRTC currently driving it, and the connector name. Resolved fresh at
// the start of every invocation and never cached across runs; the primary
// display can change between streaming sessions.
type Identity struct {
	Output randr.Output
	Crtc   randr.Crtc
	Name   string
}

func (id Identity) String() string { return id.Name }

// OutputStatus describes one connected output for the list verbs.
type OutputStatus struct {
	Name      string
	Primary   bool
	Width     int
	Height    int
	RefreshHz float64
	X, Y      int
}

// maxBpcProperty is the kernel connector property drivers expose for the
// output's color depth, surfaced through RandR.
const maxBpcProperty = "max bpc"

// bpcSteps are the depths drivers actually advertise.
var bpcSteps = []display.ColorDepth{display.Depth8, display.Depth10, display.Depth12, display.Depth16}

// Primary resolves the OS-designated primary output.
func (c *Connection) Primary() (Identity, error) {
	prim, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return Identity{}, fmt.Errorf("query primary output: %w", err)
	}
	if prim.Output == 0 {
		return Identity{}, &display.NoPrimaryDisplayError{}
	}

	res, err := c.resources()
	if err != nil {
		return Identity{}, err
	}
	info, err := randr.GetOutputInfo(c.XUtil.Conn(), prim.Output, res.ConfigTimestamp).Reply()
	if err != nil {
		return Identity{}, fmt.Errorf("query primary output info: %w", err)
	}
	if info.Connection != randr.ConnectionConnected {
		return Identity{}, &display.NoPrimaryDisplayError{}
	}

	return Identity{
		Output: prim.Output,
		Crtc:   info.Crtc,
		Name:   string(info.Name),
	}, nil
}

// SupportedModes enumerates every mode the server reports for the identity,
// expanded across the color depths the connector advertises and de-duplicated
// by (width, height, refresh, depth). Read-only; reflects live server state,
// not a snapshot, so driver-added custom modes may come and go between calls.
func (c *Connection) SupportedModes(id Identity) ([]display.Mode, error) {
	res, err := c.resources()
	if err != nil {
		return nil, err
	}
	info, err := randr.GetOutputInfo(c.XUtil.Conn(), id.Output, res.ConfigTimestamp).Reply()
	if err != nil {
		return nil, fmt.Errorf("query output info for %s: %w", id.Name, err)
	}

	infoByID := make(map[randr.Mode]randr.ModeInfo, len(res.Modes))
	for _, mi := range res.Modes {
		infoByID[randr.Mode(mi.Id)] = mi
	}

	depths := c.supportedDepths(id.Output)

	set := make(map[display.Mode]struct{})
	for _, mid := range info.Modes {
		mi, ok := infoByID[mid]
		if !ok {
			continue
		}
		hz := refreshRate(mi)
		if hz == 0 {
			continue
		}
		for _, depth := range depths {
			set[display.Mode{
				Width:     int(mi.Width),
				Height:    int(mi.Height),
				RefreshHz: hz,
				Depth:     depth,
			}] = struct{}{}
		}
	}

	modes := make([]display.Mode, 0, len(set))
	for m := range set {
		modes = append(modes, m)
	}
	sort.Slice(modes, func(i, j int) bool {
		a, b := modes[i], modes[j]
		if a.Width != b.Width {
			return a.Width > b.Width
		}
		if a.Height != b.Height {
			return a.Height > b.Height
		}
		if a.RefreshHz != b.RefreshHz {
			return a.RefreshHz > b.RefreshHz
		}
		return a.Depth > b.Depth
	})
	return modes, nil
}

// Outputs lists every connected output with its current geometry, for the
// list verbs. The primary marker matches what Primary would resolve.
func (c *Connection) Outputs() ([]OutputStatus, error) {
	res, err := c.resources()
	if err != nil {
		return nil, err
	}
	prim, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("query primary output: %w", err)
	}

	infoByID := make(map[randr.Mode]randr.ModeInfo, len(res.Modes))
	for _, mi := range res.Modes {
		infoByID[randr.Mode(mi.Id)] = mi
	}

	var outputs []OutputStatus
	for _, out := range res.Outputs {
		info, err := randr.GetOutputInfo(c.XUtil.Conn(), out, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Connection != randr.ConnectionConnected {
			continue
		}

		status := OutputStatus{
			Name:    string(info.Name),
			Primary: out == prim.Output,
		}
		if info.Crtc != 0 {
			crtc, err := randr.GetCrtcInfo(c.XUtil.Conn(), info.Crtc, res.ConfigTimestamp).Reply()
			if err == nil {
				status.Width = int(crtc.Width)
				status.Height = int(crtc.Height)
				status.X = int(crtc.X)
				status.Y = int(crtc.Y)
				if mi, ok := infoByID[crtc.Mode]; ok {
					status.RefreshHz = refreshRate(mi)
				}
			}
		}
		outputs = append(outputs, status)
	}
	return outputs, nil
}

func (c *Connection) resources() (*randr.GetScreenResourcesReply, error) {
	res, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}
	return res, nil
}

// supportedDepths reads the valid range of the "max bpc" property. Outputs
// without the property only drive 8-bit.
func (c *Connection) supportedDepths(output randr.Output) []display.ColorDepth {
	atom, err := c.atom(maxBpcProperty, true)
	if err != nil || atom == 0 {
		return []display.ColorDepth{display.Depth8}
	}
	q, err := randr.QueryOutputProperty(c.XUtil.Conn(), output, atom).Reply()
	if err != nil || !q.Range || len(q.ValidValues) < 2 {
		return []display.ColorDepth{display.Depth8}
	}
	return depthsInRange(q.ValidValues[0], q.ValidValues[1])
}

func depthsInRange(lo, hi int32) []display.ColorDepth {
	var depths []display.ColorDepth
	for _, d := range bpcSteps {
		if int32(d) >= lo && int32(d) <= hi {
			depths = append(depths, d)
		}
	}
	if len(depths) == 0 {
		depths = []display.ColorDepth{display.Depth8}
	}
	return depths
}

// refreshRate derives the vertical refresh from mode timings the way xrandr
// does: dot clock over total pixels, doublescan doubling and interlace
// halving the effective vertical total.
func refreshRate(mi randr.ModeInfo) float64 {
	vTotal := float64(mi.Vtotal)
	if mi.ModeFlags&randr.ModeFlagDoubleScan != 0 {
		vTotal *= 2
	}
	if mi.ModeFlags&randr.ModeFlagInterlace != 0 {
		vTotal /= 2
	}
	if mi.Htotal == 0 || vTotal == 0 {
		return 0
	}
	return float64(mi.DotClock) / (float64(mi.Htotal) * vTotal)
}
