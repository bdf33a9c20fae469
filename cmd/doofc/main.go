package main

import (
	"fmt"
	"os"
	"strings"
)

const version = "0.0.1-dev"

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		printUsage()
		return 1
	}

	switch os.Args[1] {
	case "compile":
		return runCompile(os.Args[2:])
	case "project":
		return runProject(os.Args[2:])
	case "--version", "-v":
		fmt.Println("doofc", version)
		return 0
	case "--help", "-h":
		printUsage()
		return 0
	default:
		if strings.HasPrefix(os.Args[1], "-") {
			fmt.Fprintf(os.Stderr, "unknown flag: %s\n", os.Args[1])
		} else {
			fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		}
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Println("doofc - multi-target compiler core (C++ / JS / TS / VM bytecode)")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  doofc compile <file> [flags]   Compile a single source file")
	fmt.Println("  doofc project <entry> [flags]  Compile entry and everything it imports")
	fmt.Println()
	fmt.Println("Global Flags:")
	fmt.Println("  --version, -v          Print version and exit")
	fmt.Println("  --help, -h             Print this help message")
	fmt.Println()
	fmt.Println("Compile Flags:")
	fmt.Println("  --target <t>           cpp, js, ts, or vm (default: cpp)")
	fmt.Println("  --namespace <n>        Override the filename-derived namespace/module name")
	fmt.Println("  --no-header            Suppress header output (cpp target)")
	fmt.Println("  --no-source            Suppress source output")
	fmt.Println("  --allow-top-level      Allow top-level statements (REPL-style files)")
	fmt.Println("  --out <dir>            Write outputs under this directory instead of stdout")
	fmt.Println("  --config <path>        Path to doofc.config.json")
	fmt.Println()
	fmt.Println("Project Flags (in addition to the above):")
	fmt.Println("  --root <path>          A source root; repeatable")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  doofc compile main.doof")
	fmt.Println("  doofc compile main.doof --target vm --out dist")
	fmt.Println("  doofc project main.doof --root src --target js")
	fmt.Println()
}
