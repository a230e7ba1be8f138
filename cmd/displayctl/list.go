package main

import (
	"fmt"
	"os"

	"github.com/godbus/dbus/v5"

	"github.com/1broseidon/displayctl/internal/display"
	"github.com/1broseidon/displayctl/internal/icc"
)

func (a *app) runList(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  displayctl list displays")
		fmt.Fprintln(os.Stderr, "  displayctl list modes")
		fmt.Fprintln(os.Stderr, "  displayctl list profiles")
		return 2
	}
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "list %s takes no arguments\n", args[0])
		return 2
	}

	switch args[0] {
	case "displays":
		return a.listDisplays()
	case "modes":
		return a.listModes()
	case "profiles":
		return a.listProfiles()
	default:
		fmt.Fprintf(os.Stderr, "Unknown list target: %s\n", args[0])
		return 2
	}
}

func (a *app) listDisplays() int {
	conn, err := a.connect()
	if err != nil {
		return a.fail("list displays", err)
	}
	defer conn.Close()

	outputs, err := conn.Outputs()
	if err != nil {
		return a.fail("list displays", err)
	}
	for _, out := range outputs {
		marker := " "
		if out.Primary {
			marker = "*"
		}
		fmt.Printf("%s %s  %dx%d @%.2fHz +%d+%d\n",
			marker, out.Name, out.Width, out.Height, out.RefreshHz, out.X, out.Y)
	}
	return 0
}

func (a *app) listModes() int {
	conn, err := a.connect()
	if err != nil {
		return a.fail("list modes", err)
	}
	defer conn.Close()

	id, err := conn.Primary()
	if err != nil {
		return a.fail("list modes", err)
	}
	modes, err := conn.SupportedModes(id)
	if err != nil {
		return a.fail("list modes", err)
	}

	fmt.Printf("%s:\n", id.Name)
	for _, m := range modes {
		fmt.Printf("  %s\n", m)
	}
	return 0
}

func (a *app) listProfiles() int {
	conn, err := a.connect()
	if err != nil {
		return a.fail("list profiles", err)
	}
	defer conn.Close()

	id, err := conn.Primary()
	if err != nil {
		return a.fail("list profiles", err)
	}

	bus, err := dbus.ConnectSystemBus()
	if err != nil {
		return a.fail("list profiles", &display.ProfileApplyFailedError{
			Output: id.Name,
			Err:    fmt.Errorf("connect system bus: %w", err),
		})
	}
	defer bus.Close()

	profiles, err := icc.NewSwitcher(bus, a.log).Profiles(id.Name)
	if err != nil {
		return a.fail("list profiles", err)
	}
	if len(profiles) == 0 {
		fmt.Printf("no profiles associated with %s\n", id.Name)
		return 0
	}
	for _, p := range profiles {
		fmt.Printf("%s  %s\n", p.Name, p.Path)
	}
	return 0
}
