package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/andrew24601/doofc/internal/compile"
)

// runProject implements `doofc project <entry> [flags]`: compiles the
// entry file and everything it transitively imports, resolved against
// --root source roots (spec §6's project-wide entry point).
func runProject(args []string) int {
	base, err := baseOptions(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	flags, err := parseArgs(args, base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if len(flags.Files) != 1 {
		fmt.Fprintln(os.Stderr, "error: doofc project takes exactly one entry file")
		return 1
	}
	if len(flags.Roots) > 0 {
		flags.Opts.SourceRoots = flags.Roots
	}
	if err := flags.Opts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	entry := flags.Files[0]
	readFile := func(name string) (string, error) {
		data, err := os.ReadFile(name)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	results, linkErrs := compile.CompileProject(notImplementedParse, entry, flags.Opts.SourceRoots, readFile, flags.Opts)

	hadError := printLinkErrors(linkErrs)

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var outDir string
		if flags.OutDir != "" {
			outDir = flags.OutDir
		}
		if reportResult(name, results[name], flags.Opts, outDir) {
			hadError = true
		}
	}

	if hadError {
		return 1
	}
	return 0
}
