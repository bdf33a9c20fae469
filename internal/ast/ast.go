// Package ast defines the AST node shapes this compiler core consumes.
//
// The lexer and parser are out of scope here; their output is an opaque
// structured tree handed to this core, and the parser is treated as an
// external collaborator rather than something this package implements.
// What this package DOES own is the shape of that tree: the tagged node
// kinds, their fields, and source locations, so validation,
// monomorphization and the backends have something concrete to walk.
//
// The shape follows a single flat Node struct with a Kind discriminant and
// one field group per variant, the same style internal/types.Type uses for
// the type lattice: a closed tagged union where only the fields relevant
// to Kind are populated.
package ast

import "github.com/andrew24601/doofc/internal/types"

// Position is a single point in source text.
type Position struct {
	File   string
	Line   int // 1-based
	Column int // 1-based
}

// Kind discriminates a Node's variant.
type Kind string

const (
	// Top level
	KindProgram       Kind = "program"
	KindFunctionDecl  Kind = "functionDecl"
	KindClassDecl     Kind = "classDecl"
	KindEnumDecl      Kind = "enumDecl"
	KindTypeAliasDecl Kind = "typeAliasDecl"
	KindImportDecl    Kind = "importDecl"
	KindExportDecl    Kind = "exportDecl"
	KindExternClass   Kind = "externClass"

	// Statements
	KindBlock        Kind = "block"
	KindVarDeclStmt  Kind = "varDeclStmt"
	KindExprStmt     Kind = "exprStmt"
	KindIfStmt       Kind = "ifStmt"
	KindWhileStmt    Kind = "whileStmt"
	KindForStmt      Kind = "forStmt"
	KindForOfStmt    Kind = "forOfStmt"
	KindReturnStmt   Kind = "returnStmt"
	KindBreakStmt    Kind = "breakStmt"
	KindContinueStmt Kind = "continueStmt"
	KindSwitchStmt   Kind = "switchStmt"

	// Expressions
	KindLiteral           Kind = "literal"
	KindIdentifier        Kind = "identifier"
	KindBinary            Kind = "binary"
	KindUnary             Kind = "unary"
	KindCall              Kind = "call"
	KindMember            Kind = "member"
	KindArrayLit          Kind = "arrayLit"
	KindObjectLit         Kind = "objectLit"
	KindPositionalObject  Kind = "positionalObject"
	KindRange             Kind = "range"
	KindConditional       Kind = "conditional"
	KindInterpolatedStr   Kind = "interpolatedString"
	KindTaggedTemplate    Kind = "taggedTemplate"
	KindLambda            Kind = "lambda"
	KindTrailingLambda    Kind = "trailingLambda"
	KindEnumShorthand     Kind = "enumShorthand"
	KindXMLCall           Kind = "xmlCall"
	KindMarkdownTable     Kind = "markdownTable"
)

// BinaryOp enumerates the binary operator set; the validator's overload
// tables are keyed by one of these plus operand kinds.
type BinaryOp string

const (
	OpAdd      BinaryOp = "+"
	OpSub      BinaryOp = "-"
	OpMul      BinaryOp = "*"
	OpDiv      BinaryOp = "/"
	OpMod      BinaryOp = "%"
	OpEq       BinaryOp = "=="
	OpNeq      BinaryOp = "!="
	OpLt       BinaryOp = "<"
	OpLte      BinaryOp = "<="
	OpGt       BinaryOp = ">"
	OpGte      BinaryOp = ">="
	OpAnd      BinaryOp = "&&"
	OpOr       BinaryOp = "||"
	OpAssign   BinaryOp = "="
	OpAddAssn  BinaryOp = "+="
	OpSubAssn  BinaryOp = "-="
	OpMulAssn  BinaryOp = "*="
	OpDivAssn  BinaryOp = "/="
	OpModAssn  BinaryOp = "%="
	OpIs       BinaryOp = "is"
)

// IsCompoundAssign reports whether op is one of the `x op= e` forms.
func (op BinaryOp) IsCompoundAssign() bool {
	switch op {
	case OpAddAssn, OpSubAssn, OpMulAssn, OpDivAssn, OpModAssn:
		return true
	}
	return false
}

// UnaryOp enumerates the unary/postfix operator set.
type UnaryOp string

const (
	OpNeg     UnaryOp = "-"
	OpNot     UnaryOp = "!"
	OpPreInc  UnaryOp = "++pre"
	OpPreDec  UnaryOp = "--pre"
	OpPostInc UnaryOp = "++post"
	OpPostDec UnaryOp = "--post"
)

// RangeKind distinguishes inclusive/exclusive ranges.
type RangeKind int

const (
	RangeInclusive RangeKind = iota
	RangeExclusive
)

// Node is a single AST node. Only the fields relevant to Kind are set.
type Node struct {
	Kind Kind
	Pos  Position

	// Program
	Decls []*Node

	// FunctionDecl / lambdas / methods / constructors share this shape.
	Name         string
	TypeParams   []TypeParamDecl
	Params       []ParamDecl
	ReturnType   *types.Type
	Body         *Node // Block, or nil for extern/abstract
	ExprBody     *Node // expression-form lambda body
	IsShortForm  bool  // lambda implicit-`it` form

	// ClassDecl
	Fields       []FieldDecl
	Methods      []*Node // FunctionDecl with Name set
	Constructors []*Node // FunctionDecl
	Heritage     []string
	Modifiers    []string

	// EnumDecl
	EnumMembers []EnumMemberDecl

	// TypeAliasDecl
	AliasTarget *types.Type

	// ImportDecl / ExportDecl
	ModulePath   string
	ImportNames  []ImportedName
	ExportedName string
	ExportExpr   *Node

	// ExternClass reuses ClassDecl fields (Fields, Methods).

	// Block
	Stmts []*Node

	// VarDeclStmt
	VarName    string
	VarType    *types.Type // declared type, nil if inferred
	VarInit    *Node       // nil if uninitialized
	IsConst    bool
	IsReadonly bool

	// ExprStmt / ReturnStmt conditions / single-expr carriers
	Expr *Node

	// IfStmt
	Cond     *Node
	Then     *Node
	Else     *Node

	// WhileStmt reuses Cond + Body.

	// ForStmt (C-style)
	ForInit *Node
	ForCond *Node
	ForPost *Node

	// ForOfStmt
	LoopVarName  string
	LoopVarName2 string // set when destructuring (key, value) over a map
	Iterable     *Node

	// SwitchStmt
	SwitchSubject *Node
	SwitchCases   []SwitchCase

	// Literal
	LiteralValue any // string | float64 | bool | nil
	LiteralType  *types.Type

	// Identifier
	IdentName string

	// Binary
	BinOp BinaryOp
	Left  *Node
	Right *Node

	// Unary
	UnOp    UnaryOp
	Operand *Node

	// Call
	Callee        *Node
	Args          []Arg
	ExplicitTypes []*types.Type

	// Member
	Object   *Node
	Property string
	Computed bool
	Index    *Node // set when Computed

	// ArrayLit
	Elements []*Node

	// ObjectLit
	ClassName   string // "" for map/set literal
	IsMapLit    bool
	IsSetLit    bool
	Fields2     []ObjectField

	// PositionalObject
	CtorArgs []*Node

	// Range
	RangeFrom *Node
	RangeTo   *Node
	RangeKind RangeKind

	// Conditional
	CondTest *Node
	CondThen *Node
	CondElse *Node

	// InterpolatedStr / TaggedTemplate
	TemplateParts []TemplatePart
	TagCallee     *Node

	// EnumShorthand
	ShorthandMember string

	// XmlCall
	XMLTag        string
	XMLAttrs      []ObjectField
	XMLChildren   []*Node

	// MarkdownTable
	TableHeaders []string
	TableRows    [][]*Node
}

// TypeParamDecl is a generic binder on a function/class/method decl.
type TypeParamDecl struct {
	Name       string
	Constraint *types.Type
}

// ParamDecl is a function/method/constructor parameter.
type ParamDecl struct {
	Name     string
	Type     *types.Type
	Default  *Node // nil if required
	Readonly bool
}

// FieldDecl is a class field.
type FieldDecl struct {
	Name          string
	Type          *types.Type
	Default       *Node
	IsConst       bool  // `const name = literal` discriminant
	ConstValue    any   // the literal value when IsConst
	Readonly      bool
	Visibility    string // "public" | "private" | "protected"
}

// EnumMemberDecl is a single enum member.
type EnumMemberDecl struct {
	Name  string
	Value any // nil = auto-numbered
}

// ImportedName is one imported symbol within an ImportDecl.
type ImportedName struct {
	Name  string
	Alias string // "" if unaliased
}

// Arg is one call argument, positional or named.
type Arg struct {
	Name  string // "" for positional
	Value *Node
}

// ObjectField is one field of an object/map/set literal, or an XML
// attribute (name/value pair).
type ObjectField struct {
	Name  string
	Value *Node
}

// SwitchCase is one `case`/`default` arm of a switch statement.
type SwitchCase struct {
	Values    []*Node // empty = default
	Body      []*Node
	Fallthru  bool
}

// TemplatePart is one segment of an interpolated string or tagged
// template: alternating literal text and expressions.
type TemplatePart struct {
	Literal string
	Expr    *Node // nil when this part is a literal-only segment
}
