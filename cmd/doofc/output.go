package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andrew24601/doofc/internal/compile"
	"github.com/andrew24601/doofc/internal/config"
	"github.com/andrew24601/doofc/internal/diagnostic"
)

// reportResult prints a file's diagnostics to stderr and, when outDir is
// set, writes any generated header/source to disk; otherwise generated
// text goes to stdout. Returns true if the result carried an error.
func reportResult(filename string, result compile.Result, opts config.Options, outDir string) bool {
	for _, d := range result.Errors {
		fmt.Fprintln(os.Stderr, d.String())
	}
	if result.HasErrors() {
		return true
	}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if outDir == "" {
		fmt.Printf("// ---- %s ----\n", filename)
		if result.Header != nil {
			fmt.Println(*result.Header)
		}
		if result.Source != nil {
			fmt.Println(*result.Source)
		}
		return false
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error: creating %s: %v\n", outDir, err)
		return true
	}
	if result.Header != nil {
		path := filepath.Join(outDir, base+".h")
		if err := os.WriteFile(path, []byte(*result.Header), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "error: writing %s: %v\n", path, err)
			return true
		}
	}
	if result.Source != nil {
		path := filepath.Join(outDir, base+sourceExt(opts.Target))
		if err := os.WriteFile(path, []byte(*result.Source), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "error: writing %s: %v\n", path, err)
			return true
		}
	}
	return false
}

func sourceExt(target config.Target) string {
	switch target {
	case config.TargetCPP:
		return ".cpp"
	case config.TargetJS:
		return ".js"
	case config.TargetTS:
		return ".ts"
	case config.TargetVM:
		return ".doofvm"
	default:
		return ".out"
	}
}

// printLinkErrors reports project-level diagnostics that aren't attached
// to any single file's Result (unresolved entry file, cross-file import
// failures collected after validation).
func printLinkErrors(errs []diagnostic.Diagnostic) bool {
	hadError := false
	for _, d := range errs {
		fmt.Fprintln(os.Stderr, d.String())
		if d.Severity == diagnostic.SeverityError {
			hadError = true
		}
	}
	return hadError
}
