package x11

import (
	"encoding/binary"
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/displayctl/internal/display"
)

// transition is the sequence of server mutations a mode change needs, split
// from the wire calls so the ordering is testable without a live server.
type transition interface {
	growScreen(width, height int) error
	setCrtcConfig() (byte, error)
	setMaxBpc(depth display.ColorDepth) error
	shrinkScreenToFit()
}

// ApplyMode commits mode to the identity's CRTC. Single attempt, no retries:
// on failure the display keeps its prior configuration, and a success is
// never reverted by this code even if a later pipeline stage fails.
//
// The transition can momentarily blank the display; callers must tolerate a
// brief signal drop. Refresh rates compare within tolerance (Hz) when looking
// up the server's mode, matching how the mode was resolved.
func (c *Connection) ApplyMode(id Identity, mode display.Mode, tolerance float64) error {
	if id.Crtc == 0 {
		return &display.ModeApplyUnknownError{
			Mode: mode,
			Err:  fmt.Errorf("primary output %s has no active CRTC", id.Name),
		}
	}

	res, err := c.resources()
	if err != nil {
		return &display.ModeApplyUnknownError{Mode: mode, Err: err}
	}

	modeID, err := c.serverMode(res, id, mode, tolerance)
	if err != nil {
		return &display.ModeApplyUnknownError{Mode: mode, Err: err}
	}

	crtc, err := randr.GetCrtcInfo(c.XUtil.Conn(), id.Crtc, res.ConfigTimestamp).Reply()
	if err != nil {
		return &display.ModeApplyUnknownError{Mode: mode, Err: fmt.Errorf("query CRTC info: %w", err)}
	}

	t := &serverTransition{c: c, id: id, res: res, crtc: crtc, modeID: modeID}
	return applyTransition(t, mode, int(crtc.X), int(crtc.Y))
}

// applyTransition sequences the mutations around the CRTC change. Nothing
// user-visible moves before the server accepts it: the framebuffer grow is
// the only prior write, and a rejected change shrinks it back so the display
// keeps its prior configuration. The depth property is written only after
// success; a zero depth leaves the connector's current depth untouched.
func applyTransition(t transition, mode display.Mode, x, y int) error {
	if err := t.growScreen(mode.Width+x, mode.Height+y); err != nil {
		return &display.ModeApplyUnknownError{Mode: mode, Err: err}
	}

	status, err := t.setCrtcConfig()
	if err != nil {
		t.shrinkScreenToFit()
		return &display.ModeApplyUnknownError{Mode: mode, Err: err}
	}
	if err := classifyConfigStatus(status, mode); err != nil {
		t.shrinkScreenToFit()
		return err
	}

	if mode.Depth != 0 {
		if err := t.setMaxBpc(mode.Depth); err != nil {
			return &display.ModeApplyUnknownError{Mode: mode, Err: err}
		}
	}
	t.shrinkScreenToFit()
	return nil
}

// serverTransition runs the transition against the live server.
type serverTransition struct {
	c      *Connection
	id     Identity
	res    *randr.GetScreenResourcesReply
	crtc   *randr.GetCrtcInfoReply
	modeID randr.Mode
}

func (t *serverTransition) growScreen(width, height int) error {
	return t.c.growScreen(width, height)
}

func (t *serverTransition) setCrtcConfig() (byte, error) {
	reply, err := randr.SetCrtcConfig(t.c.XUtil.Conn(), t.id.Crtc, 0, t.res.ConfigTimestamp,
		t.crtc.X, t.crtc.Y, t.modeID, t.crtc.Rotation, t.crtc.Outputs).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Status, nil
}

func (t *serverTransition) setMaxBpc(depth display.ColorDepth) error {
	return t.c.setMaxBpc(t.id.Output, depth)
}

func (t *serverTransition) shrinkScreenToFit() {
	t.c.shrinkScreenToFit()
}

// classifyConfigStatus maps the RandR status onto the failure taxonomy. An
// explicit Failed is the server refusing parameters that were individually
// valid (bandwidth, CRTC limits); everything else unexpected is Unknown.
func classifyConfigStatus(status byte, mode display.Mode) error {
	switch status {
	case randr.SetConfigSuccess:
		return nil
	case randr.SetConfigFailed:
		return &display.ModeApplyRejectedError{Mode: mode, Reason: "configuration refused by the server"}
	case randr.SetConfigInvalidConfigTime, randr.SetConfigInvalidTime:
		return &display.ModeApplyUnknownError{
			Mode: mode,
			Err:  fmt.Errorf("display configuration changed while applying (status %d)", status),
		}
	default:
		return &display.ModeApplyUnknownError{
			Mode: mode,
			Err:  fmt.Errorf("unrecognized SetCrtcConfig status %d", status),
		}
	}
}

// serverMode finds the server's mode id for the resolved mode, registering a
// CVT-RB mode when the server does not already have one. Resolved safe modes
// always come from the enumerated set, so registration only happens on the
// unsafe-override path.
func (c *Connection) serverMode(res *randr.GetScreenResourcesReply, id Identity, mode display.Mode, tolerance float64) (randr.Mode, error) {
	if tolerance <= 0 {
		tolerance = display.DefaultRefreshTolerance
	}

	info, err := randr.GetOutputInfo(c.XUtil.Conn(), id.Output, res.ConfigTimestamp).Reply()
	if err != nil {
		return 0, fmt.Errorf("query output info: %w", err)
	}

	infoByID := make(map[randr.Mode]randr.ModeInfo, len(res.Modes))
	for _, mi := range res.Modes {
		infoByID[randr.Mode(mi.Id)] = mi
	}
	for _, mid := range info.Modes {
		mi, ok := infoByID[mid]
		if !ok {
			continue
		}
		if int(mi.Width) == mode.Width && int(mi.Height) == mode.Height &&
			display.RefreshEqual(refreshRate(mi), mode.RefreshHz, tolerance) {
			return mid, nil
		}
	}

	return c.registerMode(id, mode)
}

// registerMode creates a CVT reduced-blanking mode on the server and attaches
// it to the output, the way `xrandr --newmode` + `--addmode` does.
func (c *Connection) registerMode(id Identity, mode display.Mode) (randr.Mode, error) {
	mi, err := cvtReducedBlanking(mode.Width, mode.Height, mode.RefreshHz)
	if err != nil {
		return 0, err
	}
	name := fmt.Sprintf("%dx%d_%.2f", mode.Width, mode.Height, mode.RefreshHz)
	mi.NameLen = uint16(len(name))

	created, err := randr.CreateMode(c.XUtil.Conn(), c.Root, mi, name).Reply()
	if err != nil {
		return 0, fmt.Errorf("create mode %s: %w", name, err)
	}
	if err := randr.AddOutputModeChecked(c.XUtil.Conn(), id.Output, created.Mode).Check(); err != nil {
		return 0, fmt.Errorf("attach mode %s to %s: %w", name, id.Name, err)
	}
	return created.Mode, nil
}

// setMaxBpc writes the resolved color depth to the connector property.
// Outputs without the property only ever resolve to 8-bit, so a missing
// property is not an error here.
func (c *Connection) setMaxBpc(output randr.Output, depth display.ColorDepth) error {
	atom, err := c.atom(maxBpcProperty, true)
	if err != nil {
		return err
	}
	if atom == 0 {
		return nil
	}
	if _, err := randr.QueryOutputProperty(c.XUtil.Conn(), output, atom).Reply(); err != nil {
		return nil
	}

	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, uint32(depth))
	if err := randr.ChangeOutputPropertyChecked(c.XUtil.Conn(), output, atom, xproto.AtomInteger,
		32, xproto.PropModeReplace, 1, data).Check(); err != nil {
		return fmt.Errorf("set %s=%d: %w", maxBpcProperty, depth, err)
	}
	return nil
}

// growScreen enlarges the root framebuffer when the new geometry needs it.
// Physical size scales with the setup-time DPI so reported dimensions stay
// coherent.
func (c *Connection) growScreen(width, height int) error {
	screen := c.XUtil.Screen()
	curW, curH := int(screen.WidthInPixels), int(screen.HeightInPixels)
	if geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply(); err == nil {
		curW, curH = int(geom.Width), int(geom.Height)
	}
	if width <= curW && height <= curH {
		return nil
	}
	if width < curW {
		width = curW
	}
	if height < curH {
		height = curH
	}

	mmW, mmH := c.millimetersFor(width, height)
	if err := randr.SetScreenSizeChecked(c.XUtil.Conn(), c.Root,
		uint16(width), uint16(height), mmW, mmH).Check(); err != nil {
		return fmt.Errorf("grow screen to %dx%d: %w", width, height, err)
	}
	return nil
}

// shrinkScreenToFit trims the framebuffer down to the bounding box of the
// active CRTCs. Runs after a successful change, and after a failed one to
// undo a speculative grow. Best effort: a leftover oversized framebuffer is
// cosmetic, so failures are swallowed.
func (c *Connection) shrinkScreenToFit() {
	res, err := c.resources()
	if err != nil {
		return
	}
	var maxX, maxY int
	for _, crtc := range res.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, res.ConfigTimestamp).Reply()
		if err != nil || info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}
		if x := int(info.X) + int(info.Width); x > maxX {
			maxX = x
		}
		if y := int(info.Y) + int(info.Height); y > maxY {
			maxY = y
		}
	}
	if maxX == 0 || maxY == 0 {
		return
	}

	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil || (int(geom.Width) == maxX && int(geom.Height) == maxY) {
		return
	}
	if maxX > int(geom.Width) || maxY > int(geom.Height) {
		return
	}

	mmW, mmH := c.millimetersFor(maxX, maxY)
	_ = randr.SetScreenSizeChecked(c.XUtil.Conn(), c.Root, uint16(maxX), uint16(maxY), mmW, mmH).Check()
}

// millimetersFor converts pixel dimensions to physical ones, preserving the
// DPI the server reported at connection time.
func (c *Connection) millimetersFor(width, height int) (uint32, uint32) {
	screen := c.XUtil.Screen()
	if screen.WidthInPixels == 0 || screen.HeightInPixels == 0 ||
		screen.WidthInMillimeters == 0 || screen.HeightInMillimeters == 0 {
		// 96 DPI fallback.
		return uint32(float64(width) * 25.4 / 96.0), uint32(float64(height) * 25.4 / 96.0)
	}
	mmW := uint32(float64(width) * float64(screen.WidthInMillimeters) / float64(screen.WidthInPixels))
	mmH := uint32(float64(height) * float64(screen.HeightInMillimeters) / float64(screen.HeightInPixels))
	return mmW, mmH
}
