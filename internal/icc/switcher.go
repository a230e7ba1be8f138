// Package icc switches the primary display's default ICC profile through
// colord, the color management daemon that owns the profile store. Profiles
// must already be associated with the display; association and installation
// belong to the OS calibration tooling, not this tool.
package icc

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/1broseidon/displayctl/internal/display"
)

const (
	colordService = "org.freedesktop.ColorManager"
	colordPath    = "/org/freedesktop/ColorManager"
	colordIface   = "org.freedesktop.ColorManager"
	deviceIface   = "org.freedesktop.ColorManager.Device"
	profileIface  = "org.freedesktop.ColorManager.Profile"
)

// busObject is the slice of dbus.BusObject the switcher uses; tests supply
// an in-memory implementation.
type busObject interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
	GetProperty(p string) (dbus.Variant, error)
}

// objectLookup resolves a colord object path to a callable proxy.
type objectLookup func(path dbus.ObjectPath) busObject

// Profile is one ICC profile colord associates with a display.
type Profile struct {
	Name string // file name, the unit users refer to
	Path string // full filesystem path
}

type associatedProfile struct {
	Profile
	object dbus.ObjectPath
}

// Switcher enumerates and activates ICC profiles for one invocation.
type Switcher struct {
	object objectLookup
	Log    *slog.Logger
}

// NewSwitcher wires the switcher to the system bus, where colord lives.
func NewSwitcher(conn *dbus.Conn, log *slog.Logger) *Switcher {
	return &Switcher{
		object: func(path dbus.ObjectPath) busObject {
			return conn.Object(colordService, path)
		},
		Log: log,
	}
}

// Profiles lists the profiles colord associates with the named output.
func (s *Switcher) Profiles(outputName string) ([]Profile, error) {
	associated, err := s.associatedProfiles(outputName)
	if err != nil {
		return nil, err
	}
	profiles := make([]Profile, 0, len(associated))
	for _, p := range associated {
		profiles = append(profiles, p.Profile)
	}
	return profiles, nil
}

// SetDefault makes profileName the output's default profile. Matching is by
// exact file name, case-insensitive — the profile store's filesystem is
// case-preserving but not case-sensitive. No fuzzy matching.
func (s *Switcher) SetDefault(outputName, profileName string) error {
	associated, err := s.associatedProfiles(outputName)
	if err != nil {
		return &display.ProfileApplyFailedError{Output: outputName, Profile: profileName, Err: err}
	}

	var match *associatedProfile
	for i := range associated {
		if strings.EqualFold(associated[i].Name, profileName) {
			match = &associated[i]
			break
		}
	}
	if match == nil {
		names := make([]string, 0, len(associated))
		for _, p := range associated {
			names = append(names, p.Name)
		}
		return &display.ProfileNotAssociatedError{
			Output:     outputName,
			Profile:    profileName,
			Associated: names,
		}
	}

	devPath, err := s.findDevice(outputName)
	if err != nil {
		return &display.ProfileApplyFailedError{Output: outputName, Profile: profileName, Err: err}
	}
	call := s.object(devPath).Call(deviceIface+".MakeProfileDefault", 0, match.object)
	if call.Err != nil {
		return &display.ProfileApplyFailedError{Output: outputName, Profile: profileName, Err: call.Err}
	}

	s.Log.Info("icc profile activated", "output", outputName, "profile", match.Name, "path", match.Path)
	return nil
}

func (s *Switcher) associatedProfiles(outputName string) ([]associatedProfile, error) {
	devPath, err := s.findDevice(outputName)
	if err != nil {
		return nil, err
	}

	v, err := s.object(devPath).GetProperty(deviceIface + ".Profiles")
	if err != nil {
		return nil, fmt.Errorf("read device profiles: %w", err)
	}
	paths, ok := v.Value().([]dbus.ObjectPath)
	if !ok {
		return nil, fmt.Errorf("unexpected type %T for device profiles", v.Value())
	}

	var profiles []associatedProfile
	for _, path := range paths {
		fv, err := s.object(path).GetProperty(profileIface + ".Filename")
		if err != nil {
			continue
		}
		filename, ok := fv.Value().(string)
		if !ok || filename == "" {
			continue
		}
		profiles = append(profiles, associatedProfile{
			Profile: Profile{Name: filepath.Base(filename), Path: filename},
			object:  path,
		})
	}
	return profiles, nil
}

// findDevice resolves the colord device for an output. colord registers X11
// outputs under the xrandr-<connector> id convention; older daemons leave
// the connector in the device metadata instead, so scan as a fallback.
func (s *Switcher) findDevice(outputName string) (dbus.ObjectPath, error) {
	root := s.object(dbus.ObjectPath(colordPath))

	var devPath dbus.ObjectPath
	if err := root.Call(colordIface+".FindDeviceById", 0, "xrandr-"+outputName).Store(&devPath); err == nil {
		return devPath, nil
	}

	var devices []dbus.ObjectPath
	if err := root.Call(colordIface+".GetDevices", 0).Store(&devices); err != nil {
		return "", fmt.Errorf("color manager unavailable: %w", err)
	}
	for _, path := range devices {
		v, err := s.object(path).GetProperty(deviceIface + ".Metadata")
		if err != nil {
			continue
		}
		meta, ok := v.Value().(map[string]string)
		if !ok {
			continue
		}
		if meta["XRANDR_name"] == outputName {
			return path, nil
		}
	}
	return "", fmt.Errorf("color manager has no device for display %s", outputName)
}
