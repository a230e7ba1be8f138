package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/godbus/dbus/v5"

	"github.com/1broseidon/displayctl/internal/display"
	"github.com/1broseidon/displayctl/internal/icc"
)

func (a *app) runSetIccProfile(args []string) int {
	fs := flag.NewFlagSet("set-icc-profile", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: displayctl set-icc-profile <profile.icc>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "The profile is matched by file name against the profiles already")
		fmt.Fprintln(os.Stderr, "associated with the primary display ('list profiles' shows them).")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "set-icc-profile requires <profile.icc>")
		fs.Usage()
		return 2
	}
	profileName := fs.Arg(0)

	conn, err := a.connect()
	if err != nil {
		return a.fail("icc switch", err)
	}
	defer conn.Close()

	id, err := conn.Primary()
	if err != nil {
		return a.fail("icc switch", err)
	}

	bus, err := dbus.ConnectSystemBus()
	if err != nil {
		return a.fail("icc switch", &display.ProfileApplyFailedError{
			Output:  id.Name,
			Profile: profileName,
			Err:     fmt.Errorf("connect system bus: %w", err),
		})
	}
	defer bus.Close()

	if err := icc.NewSwitcher(bus, a.log).SetDefault(id.Name, profileName); err != nil {
		return a.fail("icc switch", err)
	}
	fmt.Printf("Successfully set ICC profile to %s\n", profileName)
	return 0
}
