package wgsl

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func parseSource(t *testing.T, source string) *Module {
	t.Helper()
	tokens, err := NewLexer(source).Tokenize()
	be.Err(t, err, nil)
	module, err := NewParser(tokens).Parse()
	be.Err(t, err, nil)
	return module
}

func TestParseSimpleFunction(t *testing.T) {
	module := parseSource(t, `
@vertex
fn vs(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}`)

	be.Equal(t, len(module.Functions), 1)
	fn := module.Functions[0]
	be.Equal(t, fn.Name, "vs")
	be.Equal(t, len(fn.Attributes), 1)
	be.Equal(t, fn.Attributes[0].Name, "vertex")
	be.Equal(t, len(fn.Params), 1)
	be.Equal(t, fn.Params[0].Name, "idx")
	be.Equal(t, fn.Params[0].Attributes[0].Name, "builtin")
	be.Equal(t, len(fn.ReturnAttrs), 1)
	be.Equal(t, fn.ReturnAttrs[0].Name, "builtin")

	rt, ok := fn.ReturnType.(*NamedType)
	be.True(t, ok)
	be.Equal(t, rt.Name, "vec4")
	be.Equal(t, len(rt.TypeParams), 1)

	be.Equal(t, len(fn.Body.Statements), 1)
	ret, ok := fn.Body.Statements[0].(*ReturnStmt)
	be.True(t, ok)
	construct, ok := ret.Value.(*ConstructExpr)
	be.True(t, ok)
	be.Equal(t, len(construct.Args), 4)
}

func TestParseStruct(t *testing.T) {
	module := parseSource(t, `
struct VertexInput {
    @location(0) position: vec2f,
    @location(1) color: vec4<f32>,
}`)

	be.Equal(t, len(module.Structs), 1)
	s := module.Structs[0]
	be.Equal(t, s.Name, "VertexInput")
	be.Equal(t, len(s.Members), 2)
	be.Equal(t, s.Members[0].Name, "position")
	be.Equal(t, s.Members[0].Attributes[0].Name, "location")

	pos, ok := s.Members[0].Type.(*NamedType)
	be.True(t, ok)
	be.Equal(t, pos.Name, "vec2f")
}

func TestGlobalVarQualifiers(t *testing.T) {
	// The two qualifiers are classified by membership, not position.
	tests := []struct {
		source string
		space  string
		access string
	}{
		{"var<storage, read> b: f32;", "storage", "read"},
		{"var<read, storage> b: f32;", "storage", "read"},
		{"var<uniform> u: f32;", "uniform", ""},
		{"var<workgroup> w: f32;", "workgroup", ""},
		{"var<storage, read_write> rw: f32;", "storage", "read_write"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			module := parseSource(t, tt.source)
			be.Equal(t, len(module.GlobalVars), 1)
			be.Equal(t, module.GlobalVars[0].AddressSpace, tt.space)
			be.Equal(t, module.GlobalVars[0].AccessMode, tt.access)
		})
	}
}

func TestParseGlobalDeclarations(t *testing.T) {
	module := parseSource(t, `
alias Vec = vec3<f32>;
const PI = 3.14159;
override scale: f32 = 1.0;
@group(0) @binding(0) var<uniform> camera: mat4x4<f32>;
`)
	be.Equal(t, len(module.Aliases), 1)
	be.Equal(t, module.Aliases[0].Name, "Vec")
	be.Equal(t, len(module.Constants), 1)
	be.Equal(t, module.Constants[0].Name, "PI")
	be.Equal(t, len(module.Overrides), 1)
	be.Equal(t, module.Overrides[0].Name, "scale")
	be.Equal(t, len(module.GlobalVars), 1)
	be.Equal(t, len(module.GlobalVars[0].Attributes), 2)
}

func TestDirectivesSkipped(t *testing.T) {
	module := parseSource(t, `
enable f16;
diagnostic(off, derivative_uniformity);
requires readonly_and_readwrite_storage_textures;
fn main() {}
`)
	be.Equal(t, len(module.Functions), 1)
}

func TestArrayTypes(t *testing.T) {
	module := parseSource(t, `
var<uniform> fixed: array<f32, 4>;
var<storage> runtime: array<vec4<f32>>;
`)
	fixed, ok := module.GlobalVars[0].Type.(*ArrayType)
	be.True(t, ok)
	size, ok := fixed.Size.(*Literal)
	be.True(t, ok)
	be.Equal(t, size.Value, "4")

	runtime, ok := module.GlobalVars[1].Type.(*ArrayType)
	be.True(t, ok)
	be.True(t, runtime.Size == nil)
}

func TestConstructorDisambiguation(t *testing.T) {
	module := parseSource(t, `
fn f(a: i32, b: i32) -> bool {
    let v = MyVec<f32>(1.0);
    let c = a < b;
    return c;
}`)

	stmts := module.Functions[0].Body.Statements

	v, ok := stmts[0].(*VarDecl)
	be.True(t, ok)
	construct, ok := v.Init.(*ConstructExpr)
	be.True(t, ok)
	ct, ok := construct.Type.(*NamedType)
	be.True(t, ok)
	be.Equal(t, ct.Name, "MyVec")

	c, ok := stmts[1].(*VarDecl)
	be.True(t, ok)
	cmp, ok := c.Init.(*BinaryExpr)
	be.True(t, ok)
	be.Equal(t, cmp.Op, TokenLess)
}

func TestShorthandConstructorIsCall(t *testing.T) {
	// vec4f has no angle brackets, so it parses as an ordinary call.
	module := parseSource(t, "fn f() { let v = vec4f(1.0, 2.0, 3.0, 4.0); }")
	v := module.Functions[0].Body.Statements[0].(*VarDecl)
	call, ok := v.Init.(*CallExpr)
	be.True(t, ok)
	be.Equal(t, call.Func.Name, "vec4f")
	be.Equal(t, len(call.Args), 4)
}

func TestOperatorPrecedence(t *testing.T) {
	module := parseSource(t, "fn f(a: i32, b: i32, c: i32) -> i32 { return a + b * c; }")
	ret := module.Functions[0].Body.Statements[0].(*ReturnStmt)
	add, ok := ret.Value.(*BinaryExpr)
	be.True(t, ok)
	be.Equal(t, add.Op, TokenPlus)
	mul, ok := add.Right.(*BinaryExpr)
	be.True(t, ok)
	be.Equal(t, mul.Op, TokenStar)
}

func TestTernaryExpression(t *testing.T) {
	module := parseSource(t, "fn f(c: bool, a: i32, b: i32) -> i32 { return c ? a : b; }")
	ret := module.Functions[0].Body.Statements[0].(*ReturnStmt)
	tern, ok := ret.Value.(*TernaryExpr)
	be.True(t, ok)
	_, ok = tern.Condition.(*Ident)
	be.True(t, ok)
}

func TestPostfixIncrement(t *testing.T) {
	module := parseSource(t, "fn f() { var i = 0; i++; }")
	stmt, ok := module.Functions[0].Body.Statements[1].(*ExprStmt)
	be.True(t, ok)
	inc, ok := stmt.Expr.(*UnaryExpr)
	be.True(t, ok)
	be.Equal(t, inc.Op, TokenPlusPlus)
	be.True(t, inc.Postfix)
}

func TestCompoundAssignment(t *testing.T) {
	module := parseSource(t, "fn f() { var x = 1; x += 2; x <<= 3; }")
	stmts := module.Functions[0].Body.Statements
	plus, ok := stmts[1].(*AssignStmt)
	be.True(t, ok)
	be.Equal(t, plus.Op, TokenPlusEqual)
	shl, ok := stmts[2].(*AssignStmt)
	be.True(t, ok)
	be.Equal(t, shl.Op, TokenLessLessEqual)
}

func TestControlFlowStatements(t *testing.T) {
	module := parseSource(t, `
fn f(n: i32) {
    for (var i = 0; i < n; i++) {
        if i == 2 {
            continue;
        } else {
            break;
        }
    }
    while n > 0 {
        discard;
    }
    loop {
        break;
    }
    switch n {
        case 1, 2: {
        }
        default: {
        }
    }
}`)

	stmts := module.Functions[0].Body.Statements
	be.Equal(t, len(stmts), 4)
	_, ok := stmts[0].(*ForStmt)
	be.True(t, ok)
	_, ok = stmts[1].(*WhileStmt)
	be.True(t, ok)
	_, ok = stmts[2].(*LoopStmt)
	be.True(t, ok)
	sw, ok := stmts[3].(*SwitchStmt)
	be.True(t, ok)
	be.Equal(t, len(sw.Cases), 2)
	be.Equal(t, len(sw.Cases[0].Selectors), 2)
	be.True(t, sw.Cases[1].IsDefault)
}

func TestBitcastExpression(t *testing.T) {
	module := parseSource(t, "fn f(x: i32) -> u32 { return bitcast<u32>(x); }")
	ret := module.Functions[0].Body.Statements[0].(*ReturnStmt)
	bc, ok := ret.Value.(*BitcastExpr)
	be.True(t, ok)
	target, ok := bc.Type.(*NamedType)
	be.True(t, ok)
	be.Equal(t, target.Name, "u32")
}

func TestIdentNodeIDsAreUnique(t *testing.T) {
	module := parseSource(t, "fn f(a: i32) -> i32 { return a + a; }")
	ret := module.Functions[0].Body.Statements[0].(*ReturnStmt)
	add := ret.Value.(*BinaryExpr)
	left := add.Left.(*Ident)
	right := add.Right.(*Ident)
	be.True(t, left.ID != 0)
	be.True(t, right.ID != 0)
	be.True(t, left.ID != right.ID)
}

func TestMalformedFunctionName(t *testing.T) {
	tokens, err := NewLexer("fn () {}").Tokenize()
	be.Err(t, err, nil)
	parser := NewParser(tokens)
	module, err := parser.Parse()
	if err == nil {
		t.Fatal("expected a parse error")
	}
	be.True(t, module != nil)

	found := false
	for _, perr := range parser.Errors() {
		if strings.Contains(perr.Message, "expected function name") {
			found = true
		}
	}
	be.True(t, found)
}

func TestParserRecoversAcrossDeclarations(t *testing.T) {
	tokens, err := NewLexer(`
fn () {}
fn good() {}
`).Tokenize()
	be.Err(t, err, nil)
	parser := NewParser(tokens)
	module, err := parser.Parse()
	if err == nil {
		t.Fatal("expected a parse error")
	}
	// The malformed declaration does not hide the following one.
	be.Equal(t, len(module.Functions), 1)
	be.Equal(t, module.Functions[0].Name, "good")
}

func TestParserTerminatesOnMalformedInput(t *testing.T) {
	// Deliberately broken and truncated inputs; parsing must finish in
	// bounded steps regardless of what was recovered.
	inputs := []string{
		"fn",
		"fn (",
		"fn f(",
		"fn f() -> {",
		"struct { x }",
		"struct S { x: }",
		"var<> x",
		"let = 1;",
		"fn f() { let x = ; }",
		"fn f() { if { } }",
		"fn f() { for (;; }",
		"@group( fn f() {}",
		"} } }",
		"fn f() { return (1 + ; }",
		"vec3<f32",
	}

	for _, src := range inputs {
		t.Run(src, func(t *testing.T) {
			tokens, err := NewLexer(src).Tokenize()
			be.Err(t, err, nil)
			module, _ := NewParser(tokens).Parse()
			be.True(t, module != nil)
		})
	}
}
