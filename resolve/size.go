package resolve

import (
	"math"
	"strings"

	"github.com/gogpu/wgslc/wgsl"
)

// maxTypeDepth bounds recursion through nested and self-referential
// types. Anything deeper resolves to unknown rather than overflowing
// the stack.
const maxTypeDepth = 32

// scalarSizes maps scalar type names to their byte size.
var scalarSizes = map[string]uint32{
	"f32":  4,
	"i32":  4,
	"u32":  4,
	"bool": 4,
	"f16":  2,
}

// typeMinSize computes the minimum byte size a buffer bound to this
// type must have. The result is a lower bound without alignment
// padding. Returns ok=false when the size is not statically known
// (runtime-sized arrays, opaque types, unresolved names).
func (r *Resolver) typeMinSize(t wgsl.Type, depth int) (uint32, bool) {
	if depth > maxTypeDepth {
		return 0, false
	}

	switch ty := t.(type) {
	case *wgsl.NamedType:
		if size, ok := scalarSizes[ty.Name]; ok {
			return size, true
		}
		if count, elem, ok := vecShorthand(ty.Name); ok {
			return uint32(count) * elem, true
		}
		if strings.HasPrefix(ty.Name, "vec") && len(ty.Name) == 4 {
			n := int(ty.Name[3] - '0')
			if n >= 2 && n <= 4 && len(ty.TypeParams) == 1 {
				elem, ok := r.typeMinSize(ty.TypeParams[0], depth+1)
				if !ok {
					return 0, false
				}
				return uint32(n) * elem, true
			}
			return 0, false
		}
		if ty.Name == "array" {
			if len(ty.TypeParams) != 1 || len(ty.SizeArgs) != 1 {
				return 0, false
			}
			n, ok := literalIntValue(ty.SizeArgs[0])
			if !ok || n <= 0 {
				return 0, false
			}
			elem, ok := r.typeMinSize(ty.TypeParams[0], depth+1)
			if !ok {
				return 0, false
			}
			return uint32(n) * elem, true
		}
		if s, ok := r.structs[ty.Name]; ok {
			return r.structMinSize(s, depth+1)
		}
		if aliased, ok := r.aliases[ty.Name]; ok {
			return r.typeMinSize(aliased, depth+1)
		}
		return 0, false

	case *wgsl.ArrayType:
		if ty.Size == nil {
			// Runtime-sized arrays have no static minimum beyond zero
			// elements.
			return 0, false
		}
		n, ok := literalIntValue(ty.Size)
		if !ok || n <= 0 {
			return 0, false
		}
		elem, ok := r.typeMinSize(ty.Element, depth+1)
		if !ok {
			return 0, false
		}
		return uint32(n) * elem, true

	default:
		return 0, false
	}
}

// structMinSize sums the member sizes without padding. Any member of
// unknown size makes the whole struct unknown.
func (r *Resolver) structMinSize(s *wgsl.StructDecl, depth int) (uint32, bool) {
	var total uint32
	for _, m := range s.Members {
		size, ok := r.typeMinSize(m.Type, depth)
		if !ok {
			return 0, false
		}
		total += size
	}
	return total, true
}

// literalIntValue extracts the value of an integer literal expression.
// Only plain literals count; anything computed is non-static here.
func literalIntValue(e wgsl.Expr) (int64, bool) {
	lit, ok := e.(*wgsl.Literal)
	if !ok || lit.Kind != wgsl.TokenIntLiteral {
		return 0, false
	}
	n, ok := parseDecimalInt(lit.Value)
	if !ok {
		return 0, false
	}
	return n, true
}

// attrInt returns the first argument of the named attribute as an
// integer, or -1 when the attribute is absent, has no arguments, or
// the argument is not an integer literal.
func attrInt(attrs []wgsl.Attribute, name string) int {
	for _, a := range attrs {
		if a.Name != name {
			continue
		}
		if len(a.Args) == 0 {
			return -1
		}
		lit, ok := a.Args[0].(*wgsl.Literal)
		if !ok || lit.Kind != wgsl.TokenIntLiteral {
			return -1
		}
		n, ok := parseDecimalInt(lit.Value)
		if !ok {
			return -1
		}
		if n > math.MaxInt32 {
			return math.MaxInt32
		}
		if n < math.MinInt32 {
			return math.MinInt32
		}
		return int(n)
	}
	return -1
}

// parseDecimalInt parses a decimal integer lexeme, tolerating digit
// separators and the u/i suffixes. Values beyond int64 saturate
// instead of wrapping.
func parseDecimalInt(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	i := 0
	switch s[0] {
	case '-':
		neg = true
		i++
	case '+':
		i++
	}
	var n int64
	digits := 0
	saturated := false
	for ; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			continue
		}
		if c == 'u' || c == 'U' || c == 'i' || c == 'I' {
			if i != len(s)-1 {
				return 0, false
			}
			break
		}
		if c < '0' || c > '9' {
			return 0, false
		}
		digits++
		if saturated {
			continue
		}
		if n > (math.MaxInt64-int64(c-'0'))/10 {
			saturated = true
			n = math.MaxInt64
			continue
		}
		n = n*10 + int64(c-'0')
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		if saturated {
			return math.MinInt64, true
		}
		return -n, true
	}
	return n, true
}

// NumericType classifies the component type of a shader interface
// value.
type NumericType uint8

const (
	NumericUnknown NumericType = iota
	NumericF32
	NumericF16
	NumericI32
	NumericU32
)

// String returns the WGSL spelling of the numeric type.
func (n NumericType) String() string {
	switch n {
	case NumericF32:
		return "f32"
	case NumericF16:
		return "f16"
	case NumericI32:
		return "i32"
	case NumericU32:
		return "u32"
	default:
		return "unknown"
	}
}

var scalarNumeric = map[string]NumericType{
	"f32": NumericF32,
	"f16": NumericF16,
	"i32": NumericI32,
	"u32": NumericU32,
}

var suffixNumeric = map[byte]NumericType{
	'f': NumericF32,
	'h': NumericF16,
	'i': NumericI32,
	'u': NumericU32,
}

// vecShorthand decodes the predeclared vector aliases (vec2f, vec3u,
// ...) into a component count and element byte size.
func vecShorthand(name string) (count int, elemSize uint32, ok bool) {
	if len(name) != 5 || !strings.HasPrefix(name, "vec") {
		return 0, 0, false
	}
	n := int(name[3] - '0')
	if n < 2 || n > 4 {
		return 0, 0, false
	}
	switch name[4] {
	case 'f', 'i', 'u':
		return n, 4, true
	case 'h':
		return n, 2, true
	}
	return 0, 0, false
}

// typeComponents classifies a shader interface type as a component
// count plus numeric type. Non-numeric and unrecognized types report
// zero components.
func typeComponents(t wgsl.Type) (int, NumericType) {
	nt, ok := t.(*wgsl.NamedType)
	if !ok {
		return 0, NumericUnknown
	}
	if num, ok := scalarNumeric[nt.Name]; ok {
		return 1, num
	}
	if strings.HasPrefix(nt.Name, "vec") {
		if len(nt.Name) == 4 {
			n := int(nt.Name[3] - '0')
			if n < 2 || n > 4 {
				return 0, NumericUnknown
			}
			if len(nt.TypeParams) == 1 {
				if inner, ok := nt.TypeParams[0].(*wgsl.NamedType); ok {
					if num, ok := scalarNumeric[inner.Name]; ok {
						return n, num
					}
				}
			}
			return n, NumericUnknown
		}
		if len(nt.Name) == 5 {
			n := int(nt.Name[3] - '0')
			if n >= 2 && n <= 4 {
				if num, ok := suffixNumeric[nt.Name[4]]; ok {
					return n, num
				}
			}
		}
	}
	return 0, NumericUnknown
}
