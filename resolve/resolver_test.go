package resolve

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/gogpu/wgslc/wgsl"
)

func buildSource(t *testing.T, source string) (*wgsl.Module, *Resolver) {
	t.Helper()
	tokens, err := wgsl.NewLexer(source).Tokenize()
	be.Err(t, err, nil)
	module, err := wgsl.NewParser(tokens).Parse()
	be.Err(t, err, nil)
	r, err := Build(module)
	be.Err(t, err, nil)
	return module, r
}

func TestBuildNilModule(t *testing.T) {
	_, err := Build(nil)
	if err == nil {
		t.Fatal("expected an error for a nil module")
	}
}

func TestSymbolIDsUniqueAndMonotonic(t *testing.T) {
	_, r := buildSource(t, `
struct S { x: f32 }
const C = 1;
var<private> g: f32;
fn f(p: i32) {
    let a = p;
    {
        let a = 2;
    }
}
@fragment fn main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`)

	syms := r.AllSymbols()
	be.True(t, len(syms) > 0)
	for i, s := range syms {
		be.Equal(t, s.ID, i+1)
	}

	// Every top-level declaration owns a symbol.
	names := make(map[string]int)
	for _, s := range syms {
		if s.Kind == SymbolGlobal {
			names[s.Name]++
		}
	}
	for _, want := range []string{"S", "C", "g", "f", "main"} {
		be.Equal(t, names[want], 1)
	}
}

func TestParamSymbols(t *testing.T) {
	module, r := buildSource(t, `
fn f(a: i32, b: f32) -> i32 {
    return a;
}`)

	fn := module.Functions[0]
	ret := fn.Body.Statements[0].(*wgsl.ReturnStmt)
	id := r.IdentSymbolID(ret.Value.(*wgsl.Ident))
	sym, ok := r.Symbol(id)
	be.True(t, ok)
	be.Equal(t, sym.Kind, SymbolParam)
	be.Equal(t, sym.Name, "a")
	be.True(t, sym.Fn == fn)
	be.True(t, sym.Decl == wgsl.Node(fn.Params[0]))
}

func TestShadowing(t *testing.T) {
	module, r := buildSource(t, `
fn f() {
    let x = 1;
    {
        let x = 2;
        let y = x;
    }
    let z = x;
}`)

	stmts := module.Functions[0].Body.Statements
	outerX := stmts[0].(*wgsl.VarDecl)
	block := stmts[1].(*wgsl.BlockStmt)
	innerX := block.Statements[0].(*wgsl.VarDecl)
	y := block.Statements[1].(*wgsl.VarDecl)
	z := stmts[2].(*wgsl.VarDecl)

	symbolFor := func(decl wgsl.Node) int {
		for _, s := range r.AllSymbols() {
			if s.Decl == decl {
				return s.ID
			}
		}
		t.Fatal("declaration has no symbol")
		return 0
	}
	outerID := symbolFor(outerX)
	innerID := symbolFor(innerX)
	be.True(t, outerID != innerID)

	// Inside the block the inner x wins; after the block the outer x is
	// visible again.
	be.Equal(t, r.IdentSymbolID(y.Init.(*wgsl.Ident)), innerID)
	be.Equal(t, r.IdentSymbolID(z.Init.(*wgsl.Ident)), outerID)
}

func TestForHeaderScope(t *testing.T) {
	module, r := buildSource(t, `
fn f() {
    let i = 10;
    for (var i = 0; i < 3; i++) {
    }
    let after = i;
}`)

	stmts := module.Functions[0].Body.Statements
	after := stmts[2].(*wgsl.VarDecl)
	id := r.IdentSymbolID(after.Init.(*wgsl.Ident))
	sym, ok := r.Symbol(id)
	be.True(t, ok)
	be.True(t, sym.Decl == wgsl.Node(stmts[0]))
}

func TestEntryPoints(t *testing.T) {
	_, r := buildSource(t, `
@vertex fn vs() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }
@fragment fn fs() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
@compute @workgroup_size(64) fn cs() {}
fn helper() {}
`)

	eps := r.EntryPoints()
	be.Equal(t, len(eps), 3)
	be.Equal(t, eps[0].Name, "vs")
	be.Equal(t, eps[0].Stage, StageVertex)
	be.Equal(t, eps[1].Name, "fs")
	be.Equal(t, eps[1].Stage, StageFragment)
	be.Equal(t, eps[2].Name, "cs")
	be.Equal(t, eps[2].Stage, StageCompute)
}

func TestBindingMetadata(t *testing.T) {
	_, r := buildSource(t, `
@group(1) @binding(2) var<uniform> cam: mat4x4<f32>;
var<private> scratch: f32;
`)

	vars := r.BindingVars()
	be.Equal(t, len(vars), 1)
	be.Equal(t, vars[0].Name, "cam")
	be.Equal(t, vars[0].Group, 1)
	be.Equal(t, vars[0].Binding, 2)

	// Globals without attributes keep the absent markers.
	for _, s := range r.Globals() {
		if s.Name == "scratch" {
			be.Equal(t, s.Group, -1)
			be.Equal(t, s.Binding, -1)
		}
	}
}

func TestMinBindingSize(t *testing.T) {
	_, r := buildSource(t, `
struct S {
    a: f32,
    b: vec3<f32>,
}
@group(0) @binding(0) var<storage, read> buf: S;
@group(0) @binding(1) var<uniform> single: vec4<f32>;
@group(0) @binding(2) var<storage> open: array<f32>;
`)

	sizes := make(map[string]uint32)
	for _, s := range r.BindingVars() {
		sizes[s.Name] = s.MinBindingSize
	}
	be.Equal(t, sizes["buf"], 16)    // 4 + 12, no padding
	be.Equal(t, sizes["single"], 16) // 4x4
	be.Equal(t, sizes["open"], 0)    // runtime-sized
}

func TestMinBindingSizeThroughAlias(t *testing.T) {
	_, r := buildSource(t, `
alias Mat = array<vec4<f32>, 4>;
@group(0) @binding(0) var<uniform> m: Mat;
`)
	vars := r.BindingVars()
	be.Equal(t, len(vars), 1)
	be.Equal(t, vars[0].MinBindingSize, 64)
}

func TestReachability(t *testing.T) {
	_, r := buildSource(t, `
@group(0) @binding(0) var<uniform> G: f32;
@group(0) @binding(1) var<uniform> H: f32;

fn C() -> f32 { return G; }
fn B() -> f32 { return C(); }
fn D() -> f32 { return H; }

@compute @workgroup_size(1)
fn A() {
    let v = B();
}`)

	vars := r.EntryPointBindingVars("A")
	be.Equal(t, len(vars), 1)
	be.Equal(t, vars[0].Name, "G")
}

func TestReachabilityHandlesRecursion(t *testing.T) {
	_, r := buildSource(t, `
var<private> g: f32;
fn a() { b(); }
fn b() { a(); g = 1.0; }
@compute @workgroup_size(1) fn main() { a(); }
`)

	globals := r.EntryPointGlobals("main")
	be.Equal(t, len(globals), 1)
	be.Equal(t, globals[0].Name, "g")
}

func TestBuiltinCallsIgnoredInReachability(t *testing.T) {
	_, r := buildSource(t, `
@compute @workgroup_size(1)
fn main() {
    let x = max(1.0, 2.0);
    let v = vec4f(0.0, 0.0, 0.0, 1.0);
}`)
	be.Equal(t, len(r.EntryPointGlobals("main")), 0)
}

func TestVertexInputs(t *testing.T) {
	_, r := buildSource(t, `
struct VertexInput {
    @location(0) position: vec2f,
    @location(1) color: vec4<f32>,
    @builtin(vertex_index) idx: u32,
}

@vertex
fn vs(in: VertexInput, @location(2) weight: f32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.position, 0.0, 1.0);
}`)

	inputs := r.VertexInputs("vs")
	be.Equal(t, len(inputs), 3)

	be.Equal(t, inputs[0], VertexInput{Location: 0, ComponentCount: 2, NumericType: NumericF32, ByteSize: 8})
	be.Equal(t, inputs[1], VertexInput{Location: 1, ComponentCount: 4, NumericType: NumericF32, ByteSize: 16})
	be.Equal(t, inputs[2], VertexInput{Location: 2, ComponentCount: 1, NumericType: NumericF32, ByteSize: 4})
}

func TestFragmentOutputs(t *testing.T) {
	_, r := buildSource(t, `
struct FragOut {
    @builtin(frag_depth) depth: f32,
    @location(0) color: vec4<f32>,
    @location(1) normal: vec2f,
}

@fragment
fn fs() -> FragOut {
    var out: FragOut;
    return out;
}

@fragment
fn direct() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}`)

	outs := r.FragmentOutputs("fs")
	be.Equal(t, len(outs), 2)
	be.Equal(t, outs[0], FragmentOutput{Location: 0, ComponentCount: 4, NumericType: NumericF32})
	be.Equal(t, outs[1], FragmentOutput{Location: 1, ComponentCount: 2, NumericType: NumericF32})

	direct := r.FragmentOutputs("direct")
	be.Equal(t, len(direct), 1)
	be.Equal(t, direct[0].Location, 0)
	be.Equal(t, direct[0].ComponentCount, 4)
}

func TestQueriesOnWrongStage(t *testing.T) {
	_, r := buildSource(t, `
@fragment fn fs() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`)
	be.Equal(t, len(r.VertexInputs("fs")), 0)
	be.Equal(t, len(r.FragmentOutputs("nosuch")), 0)
}

func TestNilResolverQueries(t *testing.T) {
	var r *Resolver
	be.Equal(t, len(r.AllSymbols()), 0)
	be.Equal(t, len(r.Globals()), 0)
	be.Equal(t, len(r.BindingVars()), 0)
	be.Equal(t, len(r.EntryPoints()), 0)
	be.Equal(t, len(r.EntryPointGlobals("x")), 0)
	be.Equal(t, r.IdentSymbolID(nil), -1)
	_, ok := r.Symbol(1)
	be.True(t, !ok)
}
