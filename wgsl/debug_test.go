package wgsl

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestDebugModuleStringVisitsAllDeclarations(t *testing.T) {
	module := parseSource(t, `
struct S { x: f32 }
alias A = f32;
const C = 1;
override O: f32 = 2.0;
@group(0) @binding(0) var<uniform> G: f32;
fn F() {}
@fragment fn main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`)

	dump := DebugModuleString(module)

	// Each top-level declaration appears exactly once.
	be.Equal(t, strings.Count(dump, "Struct S"), 1)
	be.Equal(t, strings.Count(dump, "AliasDecl A"), 1)
	be.Equal(t, strings.Count(dump, "ConstDecl C"), 1)
	be.Equal(t, strings.Count(dump, "OverrideDecl O"), 1)
	be.Equal(t, strings.Count(dump, "VarDecl G"), 1)
	be.Equal(t, strings.Count(dump, "Function F"), 1)
	be.Equal(t, strings.Count(dump, "Function main"), 1)
}

func TestDebugStringStatements(t *testing.T) {
	module := parseSource(t, `
fn f(n: i32) -> i32 {
    var acc = 0;
    for (var i = 0; i < n; i++) {
        acc += i;
    }
    if acc > 10 {
        return acc;
    }
    return 0;
}`)

	dump := DebugString(module.Functions[0])
	be.True(t, strings.Contains(dump, "Function f"))
	be.True(t, strings.Contains(dump, "For"))
	be.True(t, strings.Contains(dump, "If"))
	be.True(t, strings.Contains(dump, "Return"))
	be.True(t, strings.Contains(dump, "Ident acc"))

	// Deeper nodes are indented further than their parents.
	fnLine := strings.Index(dump, "Function f")
	forLine := strings.Index(dump, "For")
	be.True(t, fnLine < forLine)
}

func TestNodeTypeName(t *testing.T) {
	be.Equal(t, NodeTypeName(&StructDecl{}), "Struct")
	be.Equal(t, NodeTypeName(&FunctionDecl{}), "Function")
	be.Equal(t, NodeTypeName(&BinaryExpr{}), "Binary")
	be.Equal(t, NodeTypeName(&NamedType{}), "Type")
}
