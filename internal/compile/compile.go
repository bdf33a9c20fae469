// Package compile wires together collection, resolution, validation,
// monomorphization and code generation into the two entry points spec §6
// describes: a single-file compile and a project-wide compile. The parser
// itself stays an external collaborator (see internal/ast's package
// doc) — callers inject one via ParseFunc.
package compile

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/config"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/cppgen"
	"github.com/andrew24601/doofc/internal/diagnostic"
	"github.com/andrew24601/doofc/internal/jsgen"
	"github.com/andrew24601/doofc/internal/monomorph"
	"github.com/andrew24601/doofc/internal/resolve"
	"github.com/andrew24601/doofc/internal/validator"
	"github.com/andrew24601/doofc/internal/vmgen"
)

// ParseFunc parses one file's source text into an AST, or returns parse
// diagnostics (spec §7: a Parse Error is fatal for its file, not for the
// rest of the project).
type ParseFunc func(filename, source string) (*ast.Node, []diagnostic.Diagnostic)

// Result is one file's compile record: the generated header/source text
// (nil when the target or options didn't call for one, or when errors
// suppressed codegen) plus every diagnostic raised against the file.
type Result struct {
	Header *string
	Source *string
	Errors []diagnostic.Diagnostic
}

// HasErrors reports whether r carries any error-severity diagnostic.
func (r Result) HasErrors() bool {
	for _, d := range r.Errors {
		if d.Severity == diagnostic.SeverityError {
			return true
		}
	}
	return false
}

// CompileFile compiles a single source file in isolation: no project
// source roots, no cross-file imports expected (an import present in the
// source will surface as an unresolved-import diagnostic, same as an
// unknown import in project mode).
func CompileFile(parse ParseFunc, filename, source string, opts config.Options) Result {
	prog, parseErrs := parse(filename, source)
	if len(parseErrs) > 0 {
		return Result{Errors: parseErrs}
	}

	g := context.NewGlobalContext()
	fc := context.NewFileContext(filename)
	fc.AllowTopLevelStatements = opts.AllowTopLevelStatements
	g.AddFile(fc)

	validator.CollectDeclarations(fc, prog)
	resolve.AssignModuleNames(g, opts.SourceRoots)
	resolve.ResolveFile(g, fc, prog)
	resolve.BuildExports(g)

	validator.New(g, fc).ValidateProgram(prog)
	monomorph.Run(g, map[string]*ast.Node{filename: prog})

	if fc.Diagnostics.HasErrors() {
		return Result{Errors: fc.Diagnostics.Diagnostics()}
	}

	return generate(g, map[string]*ast.Node{filename: prog}, []string{filename}, filename, opts)
}

// CompileProject compiles entryFile and everything it transitively
// imports, resolved against roots. readFile supplies source text for a
// discovered file path; discovery order becomes the file-supply order the
// global link step and the merged error list both honor (spec §5).
func CompileProject(parse ParseFunc, entryFile string, roots []string, readFile func(string) (string, error), opts config.Options) (map[string]Result, []diagnostic.Diagnostic) {
	g := context.NewGlobalContext()
	progs := map[string]*ast.Node{}
	var linkErrs []diagnostic.Diagnostic

	queue := []string{entryFile}
	queued := map[string]bool{entryFile: true}
	for len(queue) > 0 {
		fname := queue[0]
		queue = queue[1:]

		source, err := readFile(fname)
		if err != nil {
			linkErrs = append(linkErrs, diagnostic.Diagnostic{
				Severity: diagnostic.SeverityError,
				Category: diagnostic.KindImportExportViolation,
				File:     fname,
				Message:  fmt.Sprintf("cannot read %q: %v", fname, err),
			})
			continue
		}

		fc := context.NewFileContext(fname)
		fc.AllowTopLevelStatements = opts.AllowTopLevelStatements
		g.AddFile(fc)

		prog, parseErrs := parse(fname, source)
		if len(parseErrs) > 0 {
			for _, d := range parseErrs {
				fc.Diagnostics.Error(d.Category, fname, d.Line, d.Column, d.Message)
			}
			continue
		}
		progs[fname] = prog
		validator.CollectDeclarations(fc, prog)

		for _, decl := range prog.Decls {
			if decl.Kind != ast.KindImportDecl {
				continue
			}
			target := resolveImportPath(g, filepath.Dir(fname), decl.ModulePath)
			if target != "" && !queued[target] {
				queued[target] = true
				queue = append(queue, target)
			}
		}
	}

	resolve.AssignModuleNames(g, roots)
	for _, fname := range g.FileOrder {
		if progs[fname] != nil {
			resolve.ResolveFile(g, g.Files[fname], progs[fname])
		}
	}
	resolve.BuildExports(g)

	var eg errgroup.Group
	for _, fname := range g.FileOrder {
		fname := fname
		prog := progs[fname]
		if prog == nil {
			continue
		}
		eg.Go(func() error {
			validator.New(g, g.Files[fname]).ValidateProgram(prog)
			return nil
		})
	}
	eg.Wait()

	monomorph.Run(g, progs)

	results := make(map[string]Result, len(g.FileOrder))
	for _, fname := range g.FileOrder {
		fc := g.Files[fname]
		if fc.Diagnostics.HasErrors() {
			results[fname] = Result{Errors: fc.Diagnostics.Diagnostics()}
			continue
		}
		if progs[fname] == nil {
			results[fname] = Result{Errors: fc.Diagnostics.Diagnostics()}
			continue
		}
		results[fname] = generate(g, progs, g.FileOrder, fname, opts)
	}

	return results, append(linkErrs, g.AllDiagnostics()...)
}

// resolveImportPath mirrors resolve's unexported candidate-suffix search
// so project discovery agrees with the later ResolveFile pass on which
// path an import specifier names. Files not yet discovered are queued
// under their plain ".doof" form; readFile reports a missing-file error
// for the queue entry if that guess is wrong, surfaced same as any other
// unresolved import.
func resolveImportPath(g *context.GlobalContext, fromDir, spec string) string {
	bases := []string{filepath.Join(fromDir, spec), filepath.Clean(spec)}
	suffixes := []string{"", ".doof", "/index.doof"}
	for _, base := range bases {
		for _, suffix := range suffixes {
			candidate := base + suffix
			if _, ok := g.Files[candidate]; ok {
				return candidate
			}
		}
	}
	return filepath.Join(fromDir, spec) + ".doof"
}

// generate dispatches fname's validated, monomorphized AST to the
// configured backend, recovering any codegen panic into an Internal Error
// diagnostic: codegen assumes a validated context and must never raise a
// user-visible error (spec §7).
func generate(g *context.GlobalContext, progs map[string]*ast.Node, fileOrder []string, fname string, opts config.Options) (result Result) {
	fc := g.Files[fname]
	prog := progs[fname]

	defer func() {
		if r := recover(); r != nil {
			fc.Diagnostics.Internal(fname, 0, 0, fmt.Sprintf("codegen panic: %v", r))
			result = Result{Errors: fc.Diagnostics.Diagnostics()}
		}
	}()

	namespace := opts.Namespace
	if namespace == "" {
		namespace = g.ModuleNames[fname]
	}
	headerName := filepath.Base(fname)
	headerName = headerName[:len(headerName)-len(filepath.Ext(headerName))] + ".h"

	switch opts.Target {
	case config.TargetCPP:
		out := cppgen.Generate(g, fc, prog, namespace, headerName, opts.EmitHeader, opts.EmitSource)
		result = Result{Errors: fc.Diagnostics.Diagnostics()}
		if opts.EmitHeader {
			h := out.Header
			result.Header = &h
		}
		if opts.EmitSource {
			s := out.Source
			result.Source = &s
		}

	case config.TargetJS, config.TargetTS:
		src := jsgen.Generate(fc, prog, opts.Target == config.TargetTS)
		result = Result{Errors: fc.Diagnostics.Diagnostics(), Source: &src}

	case config.TargetVM:
		container, err := vmgen.Generate(progs, g.Files, fileOrder)
		if err != nil {
			fc.Diagnostics.Internal(fname, 0, 0, err.Error())
			result = Result{Errors: fc.Diagnostics.Diagnostics()}
			return
		}
		data, err := container.Marshal()
		if err != nil {
			fc.Diagnostics.Internal(fname, 0, 0, err.Error())
			result = Result{Errors: fc.Diagnostics.Diagnostics()}
			return
		}
		s := string(data)
		result = Result{Errors: fc.Diagnostics.Diagnostics(), Source: &s}
	}

	return result
}
