package vmgen

import (
	"github.com/go-json-experiment/json"
)

// InstrJSON is the wire shape of one Instr: the opcode stays a plain
// string so a bytecode file is readable without a symbol table.
type InstrJSON struct {
	Op Opcode `json:"op"`
	A  int    `json:"a"`
	B  int    `json:"b"`
	C  int    `json:"c"`
}

// FunctionBytecode is one compiled function/method: its register
// high-water mark, parameter count (so a loader knows where the
// temporary band begins), instruction stream and constant pool.
type FunctionBytecode struct {
	Name         string      `json:"name"`
	ClassName    string      `json:"class,omitempty"`
	Registers    int         `json:"registers"`
	ParamCount   int         `json:"paramCount"`
	IsMethod     bool        `json:"isMethod,omitempty"`
	Instructions []InstrJSON `json:"instructions"`
	Constants    []any       `json:"constants"`
}

// ClassBytecode records a class's field layout and static-symbol slots so
// the VM's class table and GET_STATIC/SET_STATIC resolution can be built
// without re-walking the AST.
type ClassBytecode struct {
	Name    string         `json:"name"`
	Fields  []string       `json:"fields"`
	Statics map[string]int `json:"statics,omitempty"`
}

// Container is the full bytecode unit produced for one compiled program:
// every function, every class layout, and the extern glue descriptors
// needed to marshal calls into host-provided classes.
type Container struct {
	Functions []FunctionBytecode `json:"functions"`
	Classes   []ClassBytecode    `json:"classes"`
	Externs   []ExternGlue       `json:"externs,omitempty"`
}

// NewFunctionBytecode captures a completed FuncGen's stream into its wire
// form.
func NewFunctionBytecode(name, className string, isMethod bool, paramCount int, g *FuncGen) FunctionBytecode {
	instrs := make([]InstrJSON, len(g.stream.Instrs))
	for i, in := range g.stream.Instrs {
		instrs[i] = InstrJSON{Op: in.Op, A: in.A, B: in.B, C: in.C}
	}
	consts := g.stream.Consts
	if consts == nil {
		consts = []any{}
	}
	return FunctionBytecode{
		Name:         name,
		ClassName:    className,
		Registers:    g.alloc.HighWaterMark(),
		ParamCount:   paramCount,
		IsMethod:     isMethod,
		Instructions: instrs,
		Constants:    consts,
	}
}

// Marshal renders c as JSON bytecode.
func (c *Container) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// UnmarshalContainer parses a bytecode file produced by Marshal.
func UnmarshalContainer(data []byte) (*Container, error) {
	var c Container
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
