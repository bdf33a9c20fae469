// Package context holds the per-file and global validation contexts (spec
// §3.3): symbol tables, accumulated diagnostics, and the codegen hints a
// backend reads instead of recomputing decisions already made during
// type-checking.
package context

import (
	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/diagnostic"
	"github.com/andrew24601/doofc/internal/types"
)

// ClassSymbol is a resolved class declaration plus its structural type.
type ClassSymbol struct {
	Decl *ast.Node
	Type *types.Type
}

// FuncSymbol is a resolved function (or method) declaration plus its
// function type.
type FuncSymbol struct {
	Decl *ast.Node
	Type *types.Type
}

// EnumSymbol is a resolved enum declaration.
type EnumSymbol struct {
	Decl *ast.Node
	Type *types.Type
}

// AliasSymbol is a resolved type alias.
type AliasSymbol struct {
	Decl   *ast.Node
	Target *types.Type
}

// ImportedSymbol records one name brought in by an import declaration.
type ImportedSymbol struct {
	LocalName  string
	ModulePath string
	Exported   string // the name as exported by the source module
}

// FileContext is the per-file validation context:
// maps from name to class/enum/function/type-alias/imported-symbol, an
// ordered error list, and the codegen hints record.
type FileContext struct {
	FileName string

	Classes     map[string]*ClassSymbol
	Enums       map[string]*EnumSymbol
	Functions   map[string]*FuncSymbol
	TypeAliases map[string]*AliasSymbol
	Imports     map[string]*ImportedSymbol
	Exports     map[string]bool // locally declared names marked `export`

	Diagnostics *diagnostic.Collector
	Hints       *CodegenHints

	AllowTopLevelStatements bool
}

// NewFileContext creates an empty FileContext for fileName.
func NewFileContext(fileName string) *FileContext {
	return &FileContext{
		FileName:    fileName,
		Classes:     make(map[string]*ClassSymbol),
		Enums:       make(map[string]*EnumSymbol),
		Functions:   make(map[string]*FuncSymbol),
		TypeAliases: make(map[string]*AliasSymbol),
		Imports:     make(map[string]*ImportedSymbol),
		Exports:     make(map[string]bool),
		Diagnostics: diagnostic.NewCollector(),
		Hints:       NewCodegenHints(),
	}
}

// LookupClass resolves name to a class symbol, checking local declarations
// first, then imports routed through the global context.
func (fc *FileContext) LookupClass(g *GlobalContext, name string) *ClassSymbol {
	if c, ok := fc.Classes[name]; ok {
		return c
	}
	if imp, ok := fc.Imports[name]; ok {
		if other := g.Files[imp.ModulePath]; other != nil {
			return other.Classes[imp.Exported]
		}
	}
	return nil
}

// ExportedSymbolRef identifies where a merged export actually lives.
type ExportedSymbolRef struct {
	FileName string
	Name     string
}

// GlobalContext is the global context shared across a compilation run:
// the file map, the module-name map (canonical dotted path derived from the
// configured source roots), and the merged exported-symbol table. It
// outlives every per-file context within a single run.
type GlobalContext struct {
	Files       map[string]*FileContext
	ModuleNames map[string]string // file path -> dotted module name
	Exports     map[string]ExportedSymbolRef // "module.Name" -> ref

	// FileOrder preserves the order files were supplied in, since the
	// global link step visits files in the order they were supplied.
	FileOrder []string
}

// NewGlobalContext creates an empty GlobalContext.
func NewGlobalContext() *GlobalContext {
	return &GlobalContext{
		Files:       make(map[string]*FileContext),
		ModuleNames: make(map[string]string),
		Exports:     make(map[string]ExportedSymbolRef),
	}
}

// AddFile registers a FileContext, preserving supply order.
func (g *GlobalContext) AddFile(fc *FileContext) {
	if _, exists := g.Files[fc.FileName]; !exists {
		g.FileOrder = append(g.FileOrder, fc.FileName)
	}
	g.Files[fc.FileName] = fc
}

// AllDiagnostics merges every file's diagnostics in file-supply order,
// matching the merged error list returned by a project-wide compile call.
func (g *GlobalContext) AllDiagnostics() []diagnostic.Diagnostic {
	var all []diagnostic.Diagnostic
	for _, name := range g.FileOrder {
		all = append(all, g.Files[name].Diagnostics.Diagnostics()...)
	}
	return all
}

// HasErrors reports whether any file in the program has an error
// diagnostic.
func (g *GlobalContext) HasErrors() bool {
	for _, name := range g.FileOrder {
		if g.Files[name].Diagnostics.HasErrors() {
			return true
		}
	}
	return false
}
