package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/1broseidon/displayctl/internal/display"
)

func (a *app) runChangeMode(args []string) int {
	fs := flag.NewFlagSet("change-primary-display-mode", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	unsafeMode := fs.Bool("unsafe", false, "Apply the mode without checking the supported-mode list")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: displayctl change-primary-display-mode [--unsafe] <width> <height> <refresh>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "The requested mode must be one the primary display reports unless")
		fmt.Fprintln(os.Stderr, "--unsafe is given.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "change-primary-display-mode requires <width> <height> <refresh>")
		fs.Usage()
		return 2
	}

	req, err := parseModeRequest(fs.Arg(0), fs.Arg(1), fs.Arg(2), *unsafeMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	conn, err := a.connect()
	if err != nil {
		return a.fail("mode change", err)
	}
	defer conn.Close()

	id, err := conn.Primary()
	if err != nil {
		return a.fail("mode change", err)
	}

	supported, err := conn.SupportedModes(id)
	if err != nil {
		return a.fail("mode change", err)
	}
	a.log.Debug("enumerated supported modes", "display", id.Name, "count", len(supported))

	mode, err := display.Resolve(req, supported, a.cfg.RefreshTolerance)
	if err != nil {
		return a.fail("mode change", err)
	}
	if req.Unsafe {
		a.log.Warn("applying unverified mode", "display", id.Name, "mode", mode.String())
	}

	if err := conn.ApplyMode(id, mode, a.cfg.RefreshTolerance); err != nil {
		return a.fail("mode change", err)
	}

	a.log.Info("mode change applied", "display", id.Name, "mode", mode.String())
	fmt.Printf("Successfully changed primary display mode to %s\n", mode)
	return 0
}

func parseModeRequest(widthArg, heightArg, refreshArg string, unsafeMode bool) (display.Request, error) {
	width, err := parseDimension("width", widthArg)
	if err != nil {
		return display.Request{}, err
	}
	height, err := parseDimension("height", heightArg)
	if err != nil {
		return display.Request{}, err
	}
	refresh, err := strconv.ParseFloat(refreshArg, 64)
	if err != nil {
		return display.Request{}, fmt.Errorf("invalid refresh %q", refreshArg)
	}
	if refresh <= 0 {
		return display.Request{}, fmt.Errorf("refresh must be positive, got %v", refresh)
	}
	return display.Request{Width: width, Height: height, RefreshHz: refresh, Unsafe: unsafeMode}, nil
}

func parseDimension(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", name, v)
	}
	return v, nil
}
