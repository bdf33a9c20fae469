package unions

import "github.com/andrew24601/doofc/internal/ast"

// DisambiguationOutcome classifies the result of matching an untagged
// object literal against a union of classes.
type DisambiguationOutcome int

const (
	Disambiguated DisambiguationOutcome = iota
	AmbiguousLiteral
	NoMatchingVariant
	MissingRequiredField
)

// DisambiguateLiteral selects the unique class member whose discriminants
// match the literal's matching fields and whose required fields are all
// supplied by providedFields. classNames is the union's member class
// names, in declaration order.
func DisambiguateLiteral(classNames []string, fields ClassFields, providedFields map[string]*ast.Node) (selected string, outcome DisambiguationOutcome) {
	var candidates []string
	for _, name := range classNames {
		fs, ok := fields(name)
		if !ok {
			continue
		}
		if !hasAllRequired(fs, providedFields) {
			continue
		}
		if !fieldsCompatible(fs, providedFields) {
			continue
		}
		discMatch := true
		for _, f := range fs {
			lit, ok := providedFields[f.Name]
			if f.IsConst && ok && lit != nil && lit.Kind == ast.KindLiteral && lit.LiteralValue != nil &&
				LiteralKey(lit.LiteralValue) != LiteralKey(f.ConstValue) {
				discMatch = false
				break
			}
		}
		if !discMatch {
			continue
		}
		candidates = append(candidates, name)
	}

	switch len(candidates) {
	case 0:
		if allRequiredFailedEverywhere(classNames, fields, providedFields) {
			return "", MissingRequiredField
		}
		return "", NoMatchingVariant
	case 1:
		return candidates[0], Disambiguated
	default:
		return "", AmbiguousLiteral
	}
}

func hasAllRequired(fs []ast.FieldDecl, provided map[string]*ast.Node) bool {
	for _, f := range fs {
		if f.Default != nil || f.IsConst {
			continue
		}
		if _, ok := provided[f.Name]; !ok {
			return false
		}
	}
	return true
}

// fieldsCompatible rejects literals that supply a field the class doesn't
// declare at all (an untagged literal must name only fields the candidate
// actually has).
func fieldsCompatible(fs []ast.FieldDecl, provided map[string]*ast.Node) bool {
	declared := make(map[string]bool, len(fs))
	for _, f := range fs {
		declared[f.Name] = true
	}
	for name := range provided {
		if !declared[name] {
			return false
		}
	}
	return true
}

func allRequiredFailedEverywhere(classNames []string, fields ClassFields, provided map[string]*ast.Node) bool {
	sawFieldMismatchOnly := false
	for _, name := range classNames {
		fs, ok := fields(name)
		if !ok {
			continue
		}
		if !fieldsCompatible(fs, provided) {
			continue
		}
		if !hasAllRequired(fs, provided) {
			sawFieldMismatchOnly = true
		}
	}
	return sawFieldMismatchOnly
}
