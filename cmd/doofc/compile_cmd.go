package main

import (
	"fmt"
	"os"

	"github.com/andrew24601/doofc/internal/compile"
)

// runCompile implements `doofc compile <file> [flags]`: a single-file
// compile with no project source roots (spec §6's single-file entry
// point).
func runCompile(args []string) int {
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
		fmt.Fprintln(os.Stderr, "error: doofc compile takes exactly one file")
		return 1
	}
	if err := flags.Opts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	filename := flags.Files[0]
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: reading %s: %v\n", filename, err)
		return 1
	}

	result := compile.CompileFile(notImplementedParse, filename, string(source), flags.Opts)
	if reportResult(filename, result, flags.Opts, flags.OutDir) {
		return 1
	}
	return 0
}
