package x11

import (
	"fmt"
	"os"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Connection manages the X11 connection and core X resources.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// ConnectOptions override how the X server is reached. Both are optional;
// empty values fall back to the environment, which is what hook scripts
// normally rely on.
type ConnectOptions struct {
	Display    string
	XAuthority string
}

// NewConnection establishes a connection to the X11 server and initializes
// the RandR extension.
func NewConnection(opts ConnectOptions) (*Connection, error) {
	if opts.XAuthority != "" {
		os.Setenv("XAUTHORITY", opts.XAuthority)
	}

	var (
		xu  *xgbutil.XUtil
		err error
	)
	if opts.Display != "" {
		xu, err = xgbutil.NewConnDisplay(opts.Display)
	} else {
		xu, err = xgbutil.NewConn()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}

	if err := randr.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// Close cleanly disconnects from the X11 server.
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

// atom interns name, or resolves it without creating when onlyIfExists is
// set (a zero atom then means the server has never seen the name).
func (c *Connection) atom(name string, onlyIfExists bool) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), onlyIfExists, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern atom %q: %w", name, err)
	}
	return reply.Atom, nil
}
