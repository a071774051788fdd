package resolve

import (
	"math"
	"testing"

	"github.com/nalgeon/be"
)

func TestParseDecimalInt(t *testing.T) {
	tests := []struct {
		input string
		want  int64
		ok    bool
	}{
		{"0", 0, true},
		{"42", 42, true},
		{"42u", 42, true},
		{"42i", 42, true},
		{"1_000_000", 1000000, true},
		{"-7", -7, true},
		{"+7", 7, true},
		{"", 0, false},
		{"u", 0, false},
		{"4u2", 0, false},
		{"0x1F", 0, false},
		{"1.5", 0, false},
		{"99999999999999999999999999", math.MaxInt64, true},
		{"-99999999999999999999999999", math.MinInt64, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n, ok := parseDecimalInt(tt.input)
			be.Equal(t, ok, tt.ok)
			if tt.ok {
				be.Equal(t, n, tt.want)
			}
		})
	}
}

func TestVecShorthand(t *testing.T) {
	count, elem, ok := vecShorthand("vec2f")
	be.True(t, ok)
	be.Equal(t, count, 2)
	be.Equal(t, elem, uint32(4))

	count, elem, ok = vecShorthand("vec4h")
	be.True(t, ok)
	be.Equal(t, count, 4)
	be.Equal(t, elem, uint32(2))

	for _, bad := range []string{"vec5f", "vec2x", "vec2", "vector", "mat2f"} {
		_, _, ok := vecShorthand(bad)
		be.True(t, !ok)
	}
}

func TestHalfPrecisionSizes(t *testing.T) {
	_, r := buildSource(t, `
struct Half {
    a: f16,
    b: vec4h,
}
@group(0) @binding(0) var<uniform> h: Half;
`)
	vars := r.BindingVars()
	be.Equal(t, len(vars), 1)
	be.Equal(t, vars[0].MinBindingSize, 10) // 2 + 4x2
}

func TestSelfReferentialStructSize(t *testing.T) {
	// Invalid WGSL, but the parser accepts it; sizing must not recurse
	// forever.
	_, r := buildSource(t, `
struct S {
    next: S,
}
@group(0) @binding(0) var<storage> s: S;
`)
	vars := r.BindingVars()
	be.Equal(t, len(vars), 1)
	be.Equal(t, vars[0].MinBindingSize, uint32(0))
}

func TestNestedArraySize(t *testing.T) {
	_, r := buildSource(t, `
@group(0) @binding(0) var<uniform> grid: array<array<f32, 4>, 2>;
`)
	vars := r.BindingVars()
	be.Equal(t, vars[0].MinBindingSize, uint32(32))
}
