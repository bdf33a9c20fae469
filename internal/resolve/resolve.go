// Package resolve builds the module graph: deriving each file's dotted
// module name from its path relative to the nearest configured source
// root, and resolving every file's import declarations to the
// FileContext they name. It runs after CollectDeclarations has populated
// every file's symbol tables and before the validator checks bodies, so
// cross-file references (imports are permitted to cycle) resolve
// regardless of file supply order.
package resolve

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/diagnostic"
)

// ModuleName derives the dotted module name for filePath relative to the
// nearest root in roots: non-identifier characters are mapped to `_` and a
// leading digit is prefixed, component by component, joined with `.`. The
// file extension is dropped. Falls back to the file's base name (minus
// extension) when no root contains the path.
func ModuleName(filePath string, roots []string) string {
	rel := filePath
	best := ""
	for _, root := range roots {
		root = filepath.Clean(root)
		clean := filepath.Clean(filePath)
		r, err := filepath.Rel(root, clean)
		if err != nil || strings.HasPrefix(r, "..") {
			continue
		}
		if len(root) > len(best) {
			best = root
			rel = r
		}
	}
	if best == "" {
		rel = filepath.Base(filePath)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	rel = filepath.ToSlash(rel)

	parts := strings.Split(rel, "/")
	for i, p := range parts {
		parts[i] = identifierSafe(p)
	}
	return strings.Join(parts, ".")
}

// identifierSafe NFC-normalizes s (so two source trees differing only in
// Unicode normalization form agree), then maps every non-identifier
// character to `_` and prefixes a leading digit with `_`.
func identifierSafe(s string) string {
	s = norm.NFC.String(s)
	var sb strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)):
			sb.WriteRune(r)
		case unicode.IsDigit(r) && i == 0:
			sb.WriteByte('_')
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}

// AssignModuleNames populates g.ModuleNames for every file currently
// registered in g, deriving each one's dotted module name relative to
// roots.
func AssignModuleNames(g *context.GlobalContext, roots []string) {
	for _, name := range g.FileOrder {
		g.ModuleNames[name] = ModuleName(name, roots)
	}
}

// candidateSuffixes are tried in order when an import specifier names a
// directory or an extensionless module rather than an exact file.
var candidateSuffixes = []string{"", ".doof", "/index.doof"}

// ResolveFile resolves every ImportDecl in prog against g's known files,
// rewriting fc's already-collected ImportedSymbol.ModulePath entries from
// the raw source specifier to the target file's FileContext key, and
// flags unresolved import paths, names imported more than once, and
// imported names the target file never exports.
func ResolveFile(g *context.GlobalContext, fc *context.FileContext, prog *ast.Node) {
	if prog == nil {
		return
	}
	seenLocal := map[string]bool{}
	dir := filepath.Dir(fc.FileName)

	for _, decl := range prog.Decls {
		if decl.Kind != ast.KindImportDecl {
			continue
		}
		target, ok := resolveModulePath(g, dir, decl.ModulePath)
		if !ok {
			fc.Diagnostics.Error(diagnostic.KindImportExportViolation, fc.FileName, decl.Pos.Line, decl.Pos.Column,
				"cannot resolve import path \""+decl.ModulePath+"\"")
			continue
		}
		other := g.Files[target]

		for _, name := range decl.ImportNames {
			local := name.Alias
			if local == "" {
				local = name.Name
			}
			if seenLocal[local] {
				fc.Diagnostics.Error(diagnostic.KindImportExportViolation, fc.FileName, decl.Pos.Line, decl.Pos.Column,
					"duplicate import of name \""+local+"\"")
				continue
			}
			seenLocal[local] = true

			if other != nil && !other.Exports[name.Name] {
				fc.Diagnostics.Error(diagnostic.KindImportExportViolation, fc.FileName, decl.Pos.Line, decl.Pos.Column,
					"\""+name.Name+"\" is not exported by \""+decl.ModulePath+"\"")
			}

			fc.Imports[local] = &context.ImportedSymbol{
				LocalName:  local,
				ModulePath: target,
				Exported:   name.Name,
			}
		}
	}
}

// resolveModulePath maps a raw import specifier to the FileContext key
// (FileName) it names, trying the specifier as given, then with a .doof
// extension, then as a directory index file — relative to the importing
// file's directory first, then as already resolved (absolute/root-relative
// specifiers some configurations pass straight through).
func resolveModulePath(g *context.GlobalContext, fromDir, spec string) (string, bool) {
	bases := []string{filepath.Join(fromDir, spec), filepath.Clean(spec)}
	for _, base := range bases {
		for _, suffix := range candidateSuffixes {
			candidate := base + suffix
			if _, ok := g.Files[candidate]; ok {
				return candidate, true
			}
		}
	}
	return "", false
}

// BuildExports merges every file's exported top-level names into g.Exports
// under "module.Name", using the dotted module names AssignModuleNames
// already computed. Call after AssignModuleNames.
func BuildExports(g *context.GlobalContext) {
	for _, name := range g.FileOrder {
		fc := g.Files[name]
		module := g.ModuleNames[name]
		for exported := range fc.Exports {
			key := module + "." + exported
			g.Exports[key] = context.ExportedSymbolRef{FileName: name, Name: exported}
		}
	}
}
