// Package resolve implements scope-based symbol resolution over the
// WGSL AST: symbol tables, entry-point classification, per-function
// call graphs, transitive reachability, and static binding layout
// metadata.
package resolve

import (
	"fmt"

	"github.com/gogpu/wgslc/wgsl"
)

// SymbolKind classifies a symbol.
type SymbolKind uint8

const (
	SymbolGlobal SymbolKind = iota
	SymbolLocal
	SymbolParam
)

// String returns the string representation of the symbol kind.
func (k SymbolKind) String() string {
	switch k {
	case SymbolGlobal:
		return "global"
	case SymbolLocal:
		return "local"
	case SymbolParam:
		return "param"
	default:
		return "unknown"
	}
}

// ShaderStage identifies the pipeline stage of an entry point.
type ShaderStage uint8

const (
	StageUnknown ShaderStage = iota
	StageVertex
	StageFragment
	StageCompute
)

// String returns the string representation of the stage.
func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// Symbol is a resolved declaration. IDs are 1-based, unique across the
// whole program, and assigned monotonically in declaration order.
// Symbols are immutable once created; query functions return copies.
type Symbol struct {
	ID   int
	Kind SymbolKind
	Name string

	// Decl is the declaring AST node.
	Decl wgsl.Node

	// Fn is the owning function, nil for module-scope symbols.
	Fn *wgsl.FunctionDecl

	// Group and Binding are the @group/@binding indices, -1 when absent.
	Group   int
	Binding int

	// MinBindingSize is the static minimum byte size for uniform and
	// storage buffer globals, 0 when it cannot be determined.
	MinBindingSize uint32
}

// EntryPoint describes a shader entry point found during resolution.
type EntryPoint struct {
	Name     string
	Stage    ShaderStage
	Function *wgsl.FunctionDecl
}

// fnInfo is the per-function record used for reachability analysis.
type fnInfo struct {
	globals   []int // directly referenced global symbol ids, deduplicated
	globalSet map[int]struct{}
	callees   []string // directly called function names, deduplicated
	calleeSet map[string]struct{}
	stage     ShaderStage
}

func newFnInfo() *fnInfo {
	return &fnInfo{
		globalSet: make(map[int]struct{}),
		calleeSet: make(map[string]struct{}),
	}
}

func (fi *fnInfo) addGlobal(id int) {
	if _, ok := fi.globalSet[id]; ok {
		return
	}
	fi.globalSet[id] = struct{}{}
	fi.globals = append(fi.globals, id)
}

func (fi *fnInfo) addCallee(name string) {
	if _, ok := fi.calleeSet[name]; ok {
		return
	}
	fi.calleeSet[name] = struct{}{}
	fi.callees = append(fi.callees, name)
}

// Resolver holds the symbol table and auxiliary indices built from a
// parsed module. It indexes the AST it was built from; if that AST is
// mutated or discarded the Resolver must be rebuilt.
type Resolver struct {
	module *wgsl.Module

	structs map[string]*wgsl.StructDecl
	funcs   map[string]*wgsl.FunctionDecl
	aliases map[string]wgsl.Type

	symbols []Symbol
	refs    map[uint32]int // Ident.ID -> symbol id
	fnInfos map[string]*fnInfo
	entries []EntryPoint

	scopes []map[string]int

	// walk context
	currentFn   *wgsl.FunctionDecl
	currentInfo *fnInfo
}

// Build resolves a parsed module. The module must be non-nil; partial
// modules produced by a failed parse are accepted, and unresolved
// names simply produce no binding.
func Build(module *wgsl.Module) (*Resolver, error) {
	if module == nil {
		return nil, fmt.Errorf("resolve: nil module")
	}

	r := &Resolver{
		module:  module,
		structs: make(map[string]*wgsl.StructDecl),
		funcs:   make(map[string]*wgsl.FunctionDecl),
		aliases: make(map[string]wgsl.Type),
		refs:    make(map[uint32]int),
		fnInfos: make(map[string]*fnInfo),
	}

	// Pass 1: register struct and function names so forward references
	// and recursive calls resolve.
	for _, s := range module.Structs {
		r.structs[s.Name] = s
		r.declare(SymbolGlobal, s.Name, s, nil)
	}
	for _, a := range module.Aliases {
		r.aliases[a.Name] = a.Type
	}
	for _, f := range module.Functions {
		if f.Name == "" {
			continue
		}
		r.funcs[f.Name] = f
		r.declare(SymbolGlobal, f.Name, f, nil)
	}

	// Pass 2: module-scope variables and constants.
	r.scopes = []map[string]int{make(map[string]int)}
	for i := range r.symbols {
		r.scopes[0][r.symbols[i].Name] = r.symbols[i].ID
	}
	for _, c := range module.Constants {
		id := r.declare(SymbolGlobal, c.Name, c, nil)
		r.scopes[0][c.Name] = id
	}
	for _, o := range module.Overrides {
		id := r.declare(SymbolGlobal, o.Name, o, nil)
		r.scopes[0][o.Name] = id
	}
	for _, g := range module.GlobalVars {
		id := r.declare(SymbolGlobal, g.Name, g, nil)
		r.scopes[0][g.Name] = id

		sym := &r.symbols[id-1]
		sym.Group = attrInt(g.Attributes, "group")
		sym.Binding = attrInt(g.Attributes, "binding")
		if g.AddressSpace == "uniform" || g.AddressSpace == "storage" {
			if size, ok := r.typeMinSize(g.Type, 0); ok {
				sym.MinBindingSize = size
			}
		}
	}

	// Pass 3: function bodies.
	for _, f := range module.Functions {
		r.resolveFunction(f)
	}

	return r, nil
}

// declare appends a new symbol and returns its id.
func (r *Resolver) declare(kind SymbolKind, name string, decl wgsl.Node, fn *wgsl.FunctionDecl) int {
	id := len(r.symbols) + 1
	r.symbols = append(r.symbols, Symbol{
		ID:      id,
		Kind:    kind,
		Name:    name,
		Decl:    decl,
		Fn:      fn,
		Group:   -1,
		Binding: -1,
	})
	return id
}

// resolveFunction walks one function body, maintaining the scope stack.
func (r *Resolver) resolveFunction(f *wgsl.FunctionDecl) {
	info := newFnInfo()
	info.stage = stageOf(f.Attributes)
	r.fnInfos[f.Name] = info
	if info.stage != StageUnknown {
		r.entries = append(r.entries, EntryPoint{
			Name:     f.Name,
			Stage:    info.stage,
			Function: f,
		})
	}

	r.currentFn = f
	r.currentInfo = info
	defer func() {
		r.currentFn = nil
		r.currentInfo = nil
	}()

	r.pushScope()
	defer r.popScope()

	for _, p := range f.Params {
		id := r.declare(SymbolParam, p.Name, p, f)
		r.bind(p.Name, id)
	}

	if f.Body != nil {
		for _, stmt := range f.Body.Statements {
			r.resolveStmt(stmt)
		}
	}
}

// resolveStmt walks a statement, declaring locals into the current
// scope and recording identifier references.
func (r *Resolver) resolveStmt(stmt wgsl.Stmt) {
	switch s := stmt.(type) {
	case *wgsl.VarDecl:
		r.resolveType(s.Type)
		r.resolveExpr(s.Init)
		id := r.declare(SymbolLocal, s.Name, s, r.currentFn)
		r.bind(s.Name, id)

	case *wgsl.ConstDecl:
		r.resolveType(s.Type)
		r.resolveExpr(s.Init)
		id := r.declare(SymbolLocal, s.Name, s, r.currentFn)
		r.bind(s.Name, id)

	case *wgsl.BlockStmt:
		r.pushScope()
		for _, inner := range s.Statements {
			r.resolveStmt(inner)
		}
		r.popScope()

	case *wgsl.ReturnStmt:
		r.resolveExpr(s.Value)

	case *wgsl.IfStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Body)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}

	case *wgsl.ForStmt:
		// The loop header gets its own scope so init declarations do
		// not leak.
		r.pushScope()
		if s.Init != nil {
			r.resolveStmt(s.Init)
		}
		r.resolveExpr(s.Condition)
		if s.Update != nil {
			r.resolveStmt(s.Update)
		}
		r.resolveStmt(s.Body)
		r.popScope()

	case *wgsl.WhileStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Body)

	case *wgsl.DoWhileStmt:
		r.resolveStmt(s.Body)
		r.resolveExpr(s.Condition)

	case *wgsl.LoopStmt:
		r.resolveStmt(s.Body)
		if s.Continuing != nil {
			r.resolveStmt(s.Continuing)
		}

	case *wgsl.SwitchStmt:
		r.resolveExpr(s.Selector)
		for _, c := range s.Cases {
			for _, sel := range c.Selectors {
				r.resolveExpr(sel)
			}
			r.resolveStmt(c.Body)
		}

	case *wgsl.AssignStmt:
		r.resolveExpr(s.Left)
		r.resolveExpr(s.Right)

	case *wgsl.ExprStmt:
		r.resolveExpr(s.Expr)

	case *wgsl.BreakStmt, *wgsl.ContinueStmt, *wgsl.DiscardStmt:
		// No names involved.
	}
}

// resolveExpr walks an expression and records identifier references.
func (r *Resolver) resolveExpr(expr wgsl.Expr) {
	switch e := expr.(type) {
	case nil:
		return

	case *wgsl.Ident:
		id, ok := r.lookup(e.Name)
		if !ok {
			return
		}
		r.refs[e.ID] = id
		if r.currentInfo != nil && r.symbols[id-1].Kind == SymbolGlobal {
			r.currentInfo.addGlobal(id)
		}

	case *wgsl.Literal:
		// Nothing to resolve.

	case *wgsl.BinaryExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *wgsl.UnaryExpr:
		r.resolveExpr(e.Operand)

	case *wgsl.TernaryExpr:
		r.resolveExpr(e.Condition)
		r.resolveExpr(e.Then)
		r.resolveExpr(e.Else)

	case *wgsl.CallExpr:
		// The callee of a bare-identifier call is recorded as a
		// call-by-name edge, not as an ordinary reference: the target
		// function may not have been processed yet, and WGSL has no
		// overloading to disambiguate.
		if e.Func != nil && r.currentInfo != nil {
			r.currentInfo.addCallee(e.Func.Name)
		}
		for _, arg := range e.Args {
			r.resolveExpr(arg)
		}

	case *wgsl.IndexExpr:
		r.resolveExpr(e.Expr)
		r.resolveExpr(e.Index)

	case *wgsl.MemberExpr:
		r.resolveExpr(e.Expr)

	case *wgsl.ConstructExpr:
		r.resolveType(e.Type)
		for _, arg := range e.Args {
			r.resolveExpr(arg)
		}

	case *wgsl.BitcastExpr:
		r.resolveType(e.Type)
		r.resolveExpr(e.Expr)
	}
}

// resolveType walks expression arguments embedded in a type (array
// lengths and generic expression arguments).
func (r *Resolver) resolveType(t wgsl.Type) {
	switch ty := t.(type) {
	case nil:
		return
	case *wgsl.NamedType:
		for _, tp := range ty.TypeParams {
			r.resolveType(tp)
		}
		for _, sa := range ty.SizeArgs {
			r.resolveExpr(sa)
		}
	case *wgsl.ArrayType:
		r.resolveType(ty.Element)
		r.resolveExpr(ty.Size)
	case *wgsl.PtrType:
		r.resolveType(ty.PointeeType)
	}
}

// Scope helpers. Lookup walks from innermost to outermost;
// last-declared-wins within a scope supports shadowing.

func (r *Resolver) pushScope() {
	r.scopes = append(r.scopes, make(map[string]int))
}

func (r *Resolver) popScope() {
	if len(r.scopes) > 1 {
		r.scopes = r.scopes[:len(r.scopes)-1]
	}
}

func (r *Resolver) bind(name string, id int) {
	r.scopes[len(r.scopes)-1][name] = id
}

func (r *Resolver) lookup(name string) (int, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if id, ok := r.scopes[i][name]; ok {
			return id, true
		}
	}
	return 0, false
}

// stageOf returns the shader stage named by the function's attributes.
// A function has at most one recognized stage.
func stageOf(attrs []wgsl.Attribute) ShaderStage {
	for _, a := range attrs {
		switch a.Name {
		case "vertex":
			return StageVertex
		case "fragment":
			return StageFragment
		case "compute":
			return StageCompute
		}
	}
	return StageUnknown
}

// hasAttr reports whether the attribute list carries the named
// attribute.
func hasAttr(attrs []wgsl.Attribute, name string) bool {
	for _, a := range attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}
