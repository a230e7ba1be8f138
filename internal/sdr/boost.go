// Package sdr adjusts the primary display's SDR white-level boost through a
// driver-exposed output property. The property's raw units are undocumented;
// the normalized [0,100] view and the empirical mapping live here so nothing
// else has to know about the curve.
package sdr

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/1broseidon/displayctl/internal/display"
)

// DefaultProperty is the connector property HDR-capable drivers expose for
// the SDR white level. It only appears while HDR is active, which doubles as
// the HDR-enabled check.
const DefaultProperty = "SDR_WHITE_LEVEL"

// PropertyStore is the slice of the output-property surface the controller
// needs. *x11.OutputProperties implements it bound to one output.
type PropertyStore interface {
	Exists(property string) (bool, error)
	Range(property string) (lo, hi int32, ok bool, err error)
	Value(property string) (int32, error)
	SetValue(property string, value int32) error
}

// Mapping converts the normalized [0,100] boost level to the platform's raw
// units. The defaults were measured against observed driver behavior, not a
// published spec: raw units count 1/1000ths of 80 nits, level 0 lands on the
// SDR white point (1000 = 80 nits) and each point adds 50 (level 100 = 6000
// = 480 nits). Both knobs are config-overridable; Step must stay positive so
// the mapping stays monotonic.
type Mapping struct {
	Base int32
	Step int32
}

// DefaultMapping matches the platform's settings slider.
var DefaultMapping = Mapping{Base: 1000, Step: 50}

// Raw maps a normalized level to raw units.
func (m Mapping) Raw(level int) int32 {
	return m.Base + int32(level)*m.Step
}

// Level inverts Raw, rounding to the nearest level and clamping to [0,100].
func (m Mapping) Level(raw int32) int {
	if m.Step <= 0 {
		return 0
	}
	level := int(math.Round(float64(raw-m.Base) / float64(m.Step)))
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}

// Controller reads and writes the boost level for one display.
type Controller struct {
	Store    PropertyStore
	Output   string // display name, for failure context
	Property string
	Mapping  Mapping
	Log      *slog.Logger
}

// NewController builds a controller with the default property and mapping.
func NewController(store PropertyStore, output string, log *slog.Logger) *Controller {
	return &Controller{
		Store:    store,
		Output:   output,
		Property: DefaultProperty,
		Mapping:  DefaultMapping,
		Log:      log,
	}
}

// Set applies the normalized boost level. Fails with BoostUnsupported when
// the display is not in an HDR-enabled state rather than silently doing
// nothing. Idempotent: repeating a level rewrites the same raw value.
func (c *Controller) Set(level int) error {
	if level < 0 || level > 100 {
		return &display.BoostApplyFailedError{
			Output: c.Output,
			Level:  level,
			Err:    fmt.Errorf("level must be in [0,100]"),
		}
	}

	exists, err := c.Store.Exists(c.Property)
	if err != nil {
		return &display.BoostApplyFailedError{Output: c.Output, Level: level, Err: err}
	}
	if !exists {
		return &display.BoostUnsupportedError{Output: c.Output, Property: c.Property}
	}

	raw := c.Mapping.Raw(level)
	if lo, hi, ok, err := c.Store.Range(c.Property); err == nil && ok {
		// Trust the driver's advertised range over the empirical curve.
		if raw < lo {
			raw = lo
		}
		if raw > hi {
			raw = hi
		}
	}

	if err := c.Store.SetValue(c.Property, raw); err != nil {
		return &display.BoostApplyFailedError{Output: c.Output, Level: level, Err: err}
	}
	c.Log.Info("sdr boost applied", "output", c.Output, "level", level, "raw", raw)
	return nil
}

// Get reads back the current normalized level.
func (c *Controller) Get() (int, error) {
	exists, err := c.Store.Exists(c.Property)
	if err != nil {
		return 0, &display.BoostApplyFailedError{Output: c.Output, Err: err}
	}
	if !exists {
		return 0, &display.BoostUnsupportedError{Output: c.Output, Property: c.Property}
	}
	raw, err := c.Store.Value(c.Property)
	if err != nil {
		return 0, &display.BoostApplyFailedError{Output: c.Output, Err: err}
	}
	return c.Mapping.Level(raw), nil
}
