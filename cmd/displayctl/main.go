package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/displayctl/internal/config"
	"github.com/1broseidon/displayctl/internal/display"
	"github.com/1broseidon/displayctl/internal/logging"
	"github.com/1broseidon/displayctl/internal/x11"
)

func main() {
	fs := flag.NewFlagSet("displayctl", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	logToFile := fs.Bool("log", false, "Also append JSON events to the log file (log_file in config)")
	configPath := fs.String("config", "", "Config file path (default: ~/.config/displayctl/config.yaml)")
	fs.Usage = func() { printMainUsage(os.Stderr) }
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			printMainUsage(os.Stdout)
			os.Exit(0)
		}
		os.Exit(2)
	}
	args := fs.Args()
	if len(args) == 0 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	os.Exit(run(args, *configPath, *logToFile))
}

func run(args []string, configPath string, logToFile bool) int {
	var cfg *config.Config
	var err error
	if configPath == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFromPath(configPath)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logFile := ""
	if logToFile {
		logFile = cfg.LogFile
		if logFile == "" {
			logFile = "displayctl.log"
		}
	}
	logger, closeLog := logging.New(logFile, cfg.SlogLevel())
	defer closeLog()

	a := &app{cfg: cfg, log: logger}

	switch args[0] {
	case "change-primary-display-mode", "cpdm":
		return a.runChangeMode(args[1:])
	case "set-sdr-level", "ssdrl":
		return a.runSetSdrLevel(args[1:])
	case "get-sdr-level":
		return a.runGetSdrLevel(args[1:])
	case "set-icc-profile", "sicc":
		return a.runSetIccProfile(args[1:])
	case "list":
		return a.runList(args[1:])
	case "config":
		return a.runConfigCmd(args[1:])
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printMainUsage(os.Stderr)
		return 2
	}
}

// app carries the loaded config and logger into the subcommand handlers.
type app struct {
	cfg *config.Config
	log *slog.Logger
}

func (a *app) connect() (*x11.Connection, error) {
	return x11.NewConnection(x11.ConnectOptions{
		Display:    a.cfg.Display,
		XAuthority: a.cfg.XAuthority,
	})
}

// fail logs the structured failure event and maps it to the exit code.
func (a *app) fail(op string, err error) int {
	a.log.Error(op+" failed", "kind", display.Kind(err), "error", err)
	return 1
}

func (a *app) runConfigCmd(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  displayctl [--config PATH] config validate")
		fmt.Fprintln(os.Stderr, "  displayctl [--config PATH] config print")
		return 2
	}

	switch args[0] {
	case "validate":
		// Loading already validated; reaching this point means the config is fine.
		fmt.Println("config: ok")
		return 0
	case "print":
		data, err := yaml.Marshal(a.cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: displayctl [--log] [--config PATH] <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  change-primary-display-mode   Change the primary display mode (alias: cpdm)")
	fmt.Fprintln(w, "  set-sdr-level                 Set the SDR brightness boost, 0-100 (alias: ssdrl)")
	fmt.Fprintln(w, "  get-sdr-level                 Read back the current SDR brightness boost")
	fmt.Fprintln(w, "  set-icc-profile               Activate an ICC profile by file name (alias: sicc)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  list displays                 List connected displays")
	fmt.Fprintln(w, "  list modes                    List modes the primary display supports")
	fmt.Fprintln(w, "  list profiles                 List ICC profiles associated with the primary display")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate               Validate configuration")
	fmt.Fprintln(w, "  config print                  Print effective configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'displayctl <command> --help' for command options.")
}
