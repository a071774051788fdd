package resolve

import (
	"github.com/gogpu/wgslc/wgsl"
)

// FragmentOutput describes one @location output of a fragment entry
// point.
type FragmentOutput struct {
	Location       int
	ComponentCount int
	NumericType    NumericType
}

// VertexInput describes one @location input of a vertex entry point.
type VertexInput struct {
	Location       int
	ComponentCount int
	NumericType    NumericType
	ByteSize       uint32
}

// AllSymbols returns every symbol in declaration order.
func (r *Resolver) AllSymbols() []Symbol {
	if r == nil {
		return nil
	}
	out := make([]Symbol, len(r.symbols))
	copy(out, r.symbols)
	return out
}

// Globals returns the module-scope symbols in declaration order.
func (r *Resolver) Globals() []Symbol {
	if r == nil {
		return nil
	}
	var out []Symbol
	for _, s := range r.symbols {
		if s.Kind == SymbolGlobal {
			out = append(out, s)
		}
	}
	return out
}

// BindingVars returns the globals that carry both @group and @binding.
func (r *Resolver) BindingVars() []Symbol {
	if r == nil {
		return nil
	}
	var out []Symbol
	for _, s := range r.symbols {
		if s.Kind == SymbolGlobal && s.Group >= 0 && s.Binding >= 0 {
			out = append(out, s)
		}
	}
	return out
}

// Symbol returns the symbol with the given id, or false for an id that
// was never assigned.
func (r *Resolver) Symbol(id int) (Symbol, bool) {
	if r == nil || id < 1 || id > len(r.symbols) {
		return Symbol{}, false
	}
	return r.symbols[id-1], true
}

// IdentSymbolID returns the symbol id an identifier node resolved to,
// or -1 when the name did not resolve.
func (r *Resolver) IdentSymbolID(ident *wgsl.Ident) int {
	if r == nil || ident == nil {
		return -1
	}
	if id, ok := r.refs[ident.ID]; ok {
		return id
	}
	return -1
}

// EntryPoints returns the shader entry points in declaration order.
func (r *Resolver) EntryPoints() []EntryPoint {
	if r == nil {
		return nil
	}
	out := make([]EntryPoint, len(r.entries))
	copy(out, r.entries)
	return out
}

// entryPoint finds an entry point by name, optionally requiring a
// stage.
func (r *Resolver) entryPoint(name string, stage ShaderStage) (*wgsl.FunctionDecl, bool) {
	if r == nil {
		return nil, false
	}
	for _, ep := range r.entries {
		if ep.Name != name {
			continue
		}
		if stage != StageUnknown && ep.Stage != stage {
			return nil, false
		}
		return ep.Function, true
	}
	return nil, false
}

// FragmentOutputs returns the @location outputs of a fragment entry
// point, in location order of appearance. A bare return type with a
// @location attribute yields a single entry; a struct return type
// yields one entry per @location member. Builtin outputs are skipped.
func (r *Resolver) FragmentOutputs(entry string) []FragmentOutput {
	fn, ok := r.entryPoint(entry, StageFragment)
	if !ok || fn.ReturnType == nil {
		return nil
	}

	if loc := attrInt(fn.ReturnAttrs, "location"); loc >= 0 {
		count, num := typeComponents(fn.ReturnType)
		return []FragmentOutput{{
			Location:       loc,
			ComponentCount: count,
			NumericType:    num,
		}}
	}

	nt, ok := fn.ReturnType.(*wgsl.NamedType)
	if !ok {
		return nil
	}
	s, ok := r.structs[nt.Name]
	if !ok {
		return nil
	}
	var out []FragmentOutput
	for _, m := range s.Members {
		if hasAttr(m.Attributes, "builtin") {
			continue
		}
		loc := attrInt(m.Attributes, "location")
		if loc < 0 {
			continue
		}
		count, num := typeComponents(m.Type)
		out = append(out, FragmentOutput{
			Location:       loc,
			ComponentCount: count,
			NumericType:    num,
		})
	}
	return out
}

// VertexInputs returns the @location inputs of a vertex entry point,
// in order of appearance. Parameters with a struct type contribute one
// entry per @location member. Builtin inputs are skipped.
func (r *Resolver) VertexInputs(entry string) []VertexInput {
	fn, ok := r.entryPoint(entry, StageVertex)
	if !ok {
		return nil
	}

	var out []VertexInput
	for _, p := range fn.Params {
		if hasAttr(p.Attributes, "builtin") {
			continue
		}
		if loc := attrInt(p.Attributes, "location"); loc >= 0 {
			out = append(out, r.vertexInput(loc, p.Type))
			continue
		}
		nt, ok := p.Type.(*wgsl.NamedType)
		if !ok {
			continue
		}
		s, ok := r.structs[nt.Name]
		if !ok {
			continue
		}
		for _, m := range s.Members {
			if hasAttr(m.Attributes, "builtin") {
				continue
			}
			loc := attrInt(m.Attributes, "location")
			if loc < 0 {
				continue
			}
			out = append(out, r.vertexInput(loc, m.Type))
		}
	}
	return out
}

func (r *Resolver) vertexInput(loc int, t wgsl.Type) VertexInput {
	count, num := typeComponents(t)
	size, _ := r.typeMinSize(t, 0)
	return VertexInput{
		Location:       loc,
		ComponentCount: count,
		NumericType:    num,
		ByteSize:       size,
	}
}

// EntryPointGlobals returns the globals transitively reachable from an
// entry point through its call graph, deduplicated, in first-reached
// order. Calls to undeclared names (builtins) contribute nothing.
func (r *Resolver) EntryPointGlobals(entry string) []Symbol {
	if r == nil {
		return nil
	}
	if _, ok := r.fnInfos[entry]; !ok {
		return nil
	}

	visited := make(map[string]bool)
	seen := make(map[int]bool)
	var ids []int

	var walk func(name string)
	walk = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true
		info, ok := r.fnInfos[name]
		if !ok {
			return
		}
		for _, id := range info.globals {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		for _, callee := range info.callees {
			if _, ok := r.funcs[callee]; ok {
				walk(callee)
			}
		}
	}
	walk(entry)

	out := make([]Symbol, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.symbols[id-1])
	}
	return out
}

// EntryPointBindingVars filters EntryPointGlobals down to resources
// with both @group and @binding. This is the set a pipeline layout for
// the entry point must provide.
func (r *Resolver) EntryPointBindingVars(entry string) []Symbol {
	var out []Symbol
	for _, s := range r.EntryPointGlobals(entry) {
		if s.Group >= 0 && s.Binding >= 0 {
			out = append(out, s)
		}
	}
	return out
}
