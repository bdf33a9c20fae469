package main

import (
	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/diagnostic"
)

// notImplementedParse is the ParseFunc this CLI wires into internal/compile.
// The lexer and parser are an external collaborator the core deliberately
// doesn't own (see internal/ast's package doc); a real build plugs in a
// proper frontend here. This placeholder keeps the CLI runnable end to end
// against pre-built ASTs (fixtures, embedders) while reporting a clear
// diagnostic for anything handed raw .doof source text.
func notImplementedParse(filename, source string) (*ast.Node, []diagnostic.Diagnostic) {
	return nil, []diagnostic.Diagnostic{{
		Severity: diagnostic.SeverityError,
		Category: diagnostic.KindParseError,
		File:     filename,
		Message:  "no parser is wired into this build; doofc expects a ParseFunc supplying an already-parsed AST",
	}}
}
