package x11

import (
	"encoding/binary"
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// OutputProperties exposes one output's integer RandR properties. The SDR
// boost controller consumes this surface; keeping it narrow isolates the
// undocumented driver properties behind explicit calls.
type OutputProperties struct {
	conn   *Connection
	output randr.Output
}

// OutputProperties binds the property surface to the identity's output.
func (c *Connection) OutputProperties(id Identity) *OutputProperties {
	return &OutputProperties{conn: c, output: id.Output}
}

// Exists reports whether the output carries the named property. Drivers only
// expose properties for capabilities that are currently active, so absence
// is meaningful state, not an error.
func (p *OutputProperties) Exists(property string) (bool, error) {
	atom, err := p.conn.atom(property, true)
	if err != nil {
		return false, err
	}
	if atom == 0 {
		return false, nil
	}
	reply, err := randr.GetOutputProperty(p.conn.XUtil.Conn(), p.output, atom,
		xproto.GetPropertyTypeAny, 0, 1, false, false).Reply()
	if err != nil {
		// The server answers BadName for properties the output lacks. Any
		// other failure is a broken query, not meaningful absence.
		if isBadName(err) {
			return false, nil
		}
		return false, fmt.Errorf("query property %q: %w", property, err)
	}
	return reply.Format != 0, nil
}

func isBadName(err error) bool {
	_, ok := err.(xproto.NameError)
	return ok
}

// Range reports the valid value range the driver advertises for the
// property, when it advertises one.
func (p *OutputProperties) Range(property string) (lo, hi int32, ok bool, err error) {
	atom, err := p.conn.atom(property, true)
	if err != nil || atom == 0 {
		return 0, 0, false, err
	}
	reply, err := randr.QueryOutputProperty(p.conn.XUtil.Conn(), p.output, atom).Reply()
	if err != nil || !reply.Range || len(reply.ValidValues) < 2 {
		return 0, 0, false, nil
	}
	return reply.ValidValues[0], reply.ValidValues[1], true, nil
}

// Value reads the property's current 32-bit integer value.
func (p *OutputProperties) Value(property string) (int32, error) {
	atom, err := p.conn.atom(property, true)
	if err != nil {
		return 0, err
	}
	if atom == 0 {
		return 0, fmt.Errorf("property %q does not exist", property)
	}
	reply, err := randr.GetOutputProperty(p.conn.XUtil.Conn(), p.output, atom,
		xproto.GetPropertyTypeAny, 0, 1, false, false).Reply()
	if err != nil {
		return 0, fmt.Errorf("read property %q: %w", property, err)
	}
	if reply.Format != 32 || reply.NumItems < 1 || len(reply.Data) < 4 {
		return 0, fmt.Errorf("property %q is not a 32-bit integer", property)
	}
	return int32(binary.LittleEndian.Uint32(reply.Data)), nil
}

// SetValue replaces the property with a single 32-bit integer value.
func (p *OutputProperties) SetValue(property string, value int32) error {
	atom, err := p.conn.atom(property, false)
	if err != nil {
		return err
	}
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, uint32(value))
	if err := randr.ChangeOutputPropertyChecked(p.conn.XUtil.Conn(), p.output, atom,
		xproto.AtomInteger, 32, xproto.PropModeReplace, 1, data).Check(); err != nil {
		return fmt.Errorf("write property %q: %w", property, err)
	}
	return nil
}
