package main

import (
	"fmt"
	"os"

	"github.com/andrew24601/doofc/internal/config"
)

// cliFlags holds the parsed flags shared by the compile and project
// subcommands. Files holds the positional arguments (the source file, or
// the project entry file); each subcommand checks how many it was given.
type cliFlags struct {
	ConfigPath string
	Roots      []string
	Opts       config.Options
	OutDir     string
	Files      []string // positional arguments
}

// parseArgs separates doofc's own flags from positional file arguments,
// applying them on top of base (the config-file options, or defaults if no
// config was found) so a discovered doofc.config.json sets the baseline
// and explicit flags always win.
// Unknown flags are reported as an error rather than silently ignored,
// since unlike tsgo there's no downstream flag parser to forward them to.
func parseArgs(args []string, base config.Options) (cliFlags, error) {
	f := cliFlags{Opts: base}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--target":
			if i+1 >= len(args) {
				return f, fmt.Errorf("--target requires a value")
			}
			i++
			f.Opts.Target = config.Target(args[i])
		case "--namespace":
			if i+1 >= len(args) {
				return f, fmt.Errorf("--namespace requires a value")
			}
			i++
			f.Opts.Namespace = args[i]
		case "--no-header":
			f.Opts.EmitHeader = false
		case "--no-source":
			f.Opts.EmitSource = false
		case "--allow-top-level":
			f.Opts.AllowTopLevelStatements = true
		case "--out":
			if i+1 >= len(args) {
				return f, fmt.Errorf("--out requires a value")
			}
			i++
			f.OutDir = args[i]
		case "--config":
			if i+1 >= len(args) {
				return f, fmt.Errorf("--config requires a value")
			}
			i++
			f.ConfigPath = args[i]
		case "--root":
			if i+1 >= len(args) {
				return f, fmt.Errorf("--root requires a value")
			}
			i++
			f.Roots = append(f.Roots, args[i])
		default:
			if len(arg) > 0 && arg[0] == '-' {
				return f, fmt.Errorf("unknown flag: %s", arg)
			}
			f.Files = append(f.Files, arg)
		}
	}

	return f, nil
}

// baseOptions resolves the config baseline flags are parsed against: an
// explicit --config path (found by a first pass over args) is loaded as
// given, otherwise the current directory is searched, matching the
// teacher's auto-discovery in loadOrDiscoverConfig (cmd/tsgonest/build.go).
// Falls back to config.DefaultOptions() when no config file applies.
func baseOptions(args []string) (config.Options, error) {
	path := explicitConfigPath(args)
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return config.Options{}, err
		}
		path = config.Discover(cwd)
		if path == "" {
			return config.DefaultOptions(), nil
		}
	}
	opts, err := config.Load(path)
	if err != nil {
		return config.Options{}, fmt.Errorf("loading config %q: %w", path, err)
	}
	return *opts, nil
}

func explicitConfigPath(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
