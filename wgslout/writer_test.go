// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgslout

import (
	"math"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/pkg/errors"

	"github.com/gogpu/wgslc/ssir"
)

// Shared type arena layout for the tests below.
const (
	tF32 ssir.TypeID = iota
	tVec4
	tVec2
	tI32
	tU32
	tBool
)

func baseTypes() []ssir.Type {
	f32 := ssir.ScalarType{Kind: ssir.ScalarFloat, Width: 4}
	return []ssir.Type{
		{Inner: f32},
		{Inner: ssir.VectorType{Size: 4, Scalar: f32}},
		{Inner: ssir.VectorType{Size: 2, Scalar: f32}},
		{Inner: ssir.ScalarType{Kind: ssir.ScalarSint, Width: 4}},
		{Inner: ssir.ScalarType{Kind: ssir.ScalarUint, Width: 4}},
		{Inner: ssir.ScalarType{Kind: ssir.ScalarBool, Width: 4}},
	}
}

func floatConst(id ssir.ValueID, typ ssir.TypeID, v float64) ssir.Constant {
	return ssir.Constant{
		ID:    id,
		Type:  typ,
		Value: ssir.ScalarValue{Bits: math.Float64bits(v)},
	}
}

func convert(t *testing.T, module *ssir.Module) (string, Info) {
	t.Helper()
	text, info, err := Convert(module, Options{})
	be.Err(t, err, nil)
	return text, info
}

func TestConvertNilModule(t *testing.T) {
	_, _, err := Convert(nil, Options{})
	be.True(t, errors.Is(err, ErrInvalidInput))
}

func TestConvertRejectsEmptyFunction(t *testing.T) {
	module := &ssir.Module{
		Types:     baseTypes(),
		Functions: []ssir.Function{{Name: "broken"}},
	}
	_, _, err := Convert(module, Options{})
	be.True(t, errors.Is(err, ErrInvalidInput))
}

func TestConvertRejectsMissingTerminator(t *testing.T) {
	module := &ssir.Module{
		Types:     baseTypes(),
		Functions: []ssir.Function{{Name: "f", Blocks: []ssir.Block{{}}}},
	}
	_, _, err := Convert(module, Options{})
	be.True(t, errors.Is(err, ErrInvalidInput))
}

func TestReusedValueBakesOnce(t *testing.T) {
	result := tVec4
	module := &ssir.Module{
		Types:     baseTypes(),
		Constants: []ssir.Constant{floatConst(1, tF32, 1.0)},
		Functions: []ssir.Function{{
			Name:   "main",
			Result: &result,
			Blocks: []ssir.Block{{
				Insts: []ssir.Inst{
					{Result: 2, Type: tVec4, Op: ssir.OpCompose{Type: tVec4, Components: []ssir.ValueID{1, 1, 1, 1}}},
					{Result: 3, Type: tVec4, Op: ssir.OpBinary{Op: ssir.BinaryAdd, LHS: 2, RHS: 2}},
				},
				Term: ssir.TermReturn{Value: 3},
			}},
		}},
	}

	text, _ := convert(t, module)

	// The doubly-used compose binds to exactly one let; the single-use
	// add inlines into the return.
	be.Equal(t, strings.Count(text, "let "), 1)
	be.Equal(t, strings.Count(text, "_l2"), 3)
	be.True(t, strings.Contains(text, "let _l2 = vec4<f32>(1.0, 1.0, 1.0, 1.0);"))
	be.True(t, strings.Contains(text, "return (_l2 + _l2);"))
}

func TestComputeEntryAttributes(t *testing.T) {
	module := &ssir.Module{
		Types: baseTypes(),
		Functions: []ssir.Function{{
			Name:   "main",
			Blocks: []ssir.Block{{Term: ssir.TermReturn{}}},
		}},
		EntryPoints: []ssir.EntryPoint{{
			Name:      "main",
			Stage:     ssir.StageCompute,
			Function:  0,
			Workgroup: [3]uint32{8, 0, 0},
		}},
	}

	text, info := convert(t, module)

	// Zero workgroup dimensions default to 1, and the stage attributes
	// immediately precede the fn line.
	be.True(t, strings.Contains(text, "@compute @workgroup_size(8, 1, 1)\nfn main()"))
	be.Equal(t, info.EntryPointNames["main"], "main")
}

func TestEntryPointInterfaceSynthesis(t *testing.T) {
	loc := uint32(0)
	pos := ssir.BuiltinPosition
	module := &ssir.Module{
		Types:     baseTypes(),
		Constants: []ssir.Constant{floatConst(1, tF32, 0.5)},
		Globals: []ssir.GlobalVar{
			{ID: 20, Type: tVec2, Space: ssir.SpaceInput, Location: &loc},
			{ID: 21, Type: tVec4, Space: ssir.SpaceOutput, Builtin: &pos},
		},
		Functions: []ssir.Function{{
			Name: "vs",
			Blocks: []ssir.Block{{
				Insts: []ssir.Inst{
					{Op: ssir.OpStore{Ptr: 21, Value: 1}},
				},
				Term: ssir.TermReturn{},
			}},
		}},
		EntryPoints: []ssir.EntryPoint{{Name: "vs", Stage: ssir.StageVertex, Function: 0}},
	}

	text, _ := convert(t, module)

	// The input global becomes a decorated parameter, the output global
	// a local variable returned at the end.
	be.True(t, strings.Contains(text, "fn vs(@location(0) _g20: vec2<f32>) -> @builtin(position) vec4<f32> {"))
	be.True(t, strings.Contains(text, "var _g21: vec4<f32>;"))
	be.True(t, strings.Contains(text, "_g21 = 0.5;"))
	be.True(t, strings.Contains(text, "return _g21;"))
	// No module-scope declaration for interface variables.
	be.True(t, !strings.Contains(text, "var _g20:"))
}

func TestIntegerWidthWidening(t *testing.T) {
	module := &ssir.Module{
		Types: []ssir.Type{
			{Inner: ssir.ScalarType{Kind: ssir.ScalarSint, Width: 2}},
		},
		Constants: []ssir.Constant{{
			ID:    1,
			Name:  "small",
			Type:  0,
			Value: ssir.ScalarValue{Bits: uint64(5)},
		}},
	}

	text, info, err := Convert(module, Options{PreserveNames: true})
	be.Err(t, err, nil)

	be.True(t, strings.Contains(text, "const small: i32 = 5i;"))
	be.Equal(t, len(info.Diagnostics), 1)
	be.Equal(t, info.Diagnostics[0].Kind, DiagWidenedInt)
	be.True(t, strings.Contains(info.Diagnostics[0].Message, "16-bit"))
}

func TestStorageTexturePlaceholder(t *testing.T) {
	module := &ssir.Module{
		Types: []ssir.Type{
			{Inner: ssir.ImageType{Dim: ssir.Dim2D, Class: ssir.ImageClassStorage, Sampled: ssir.ScalarFloat}},
		},
		Globals: []ssir.GlobalVar{{
			ID:      1,
			Type:    0,
			Space:   ssir.SpaceHandle,
			Binding: &ssir.ResourceBinding{Group: 0, Binding: 0},
		}},
	}

	text, info := convert(t, module)

	be.True(t, strings.Contains(text, "_unknown_type_1"))
	be.Equal(t, len(info.Diagnostics), 1)
	be.Equal(t, info.Diagnostics[0].Kind, DiagUnsupportedType)
}

func TestSwizzleExtraction(t *testing.T) {
	result := tF32
	module := &ssir.Module{
		Types: baseTypes(),
		Functions: []ssir.Function{{
			Name:   "f",
			Params: []ssir.Param{{ID: 10, Type: tVec4}},
			Result: &result,
			Blocks: []ssir.Block{{
				Insts: []ssir.Inst{
					{Result: 11, Type: tF32, Op: ssir.OpExtract{Base: 10, Indices: []uint32{1}}},
				},
				Term: ssir.TermReturn{Value: 11},
			}},
		}},
	}

	text, _ := convert(t, module)
	be.True(t, strings.Contains(text, "return _p10.y;"))
}

func TestStructMemberExtraction(t *testing.T) {
	f32 := ssir.ScalarType{Kind: ssir.ScalarFloat, Width: 4}
	vec4 := ssir.VectorType{Size: 4, Scalar: f32}
	types := []ssir.Type{
		{Inner: f32},
		{Inner: vec4},
		{Name: "Light", Inner: ssir.StructType{Members: []ssir.StructMember{
			{Name: "color", Type: 1},
			{Name: "intensity", Type: 0},
		}}},
	}
	result := ssir.TypeID(0)
	module := &ssir.Module{
		Types: types,
		Functions: []ssir.Function{{
			Name:   "f",
			Params: []ssir.Param{{ID: 10, Type: 2}},
			Result: &result,
			Blocks: []ssir.Block{{
				Insts: []ssir.Inst{
					{Result: 11, Type: 0, Op: ssir.OpExtract{Base: 10, Indices: []uint32{0, 2}}},
				},
				Term: ssir.TermReturn{Value: 11},
			}},
		}},
	}

	text, _ := convert(t, module)

	// Struct index uses the member name, the vector index a swizzle.
	be.True(t, strings.Contains(text, "return _p10.color.z;"))
	be.True(t, strings.Contains(text, "struct _S2 {"))
	be.True(t, strings.Contains(text, "color: vec4<f32>,"))
}

func TestStructMemberBindings(t *testing.T) {
	f32 := ssir.ScalarType{Kind: ssir.ScalarFloat, Width: 4}
	vec4 := ssir.VectorType{Size: 4, Scalar: f32}
	flat := ssir.Interpolation{Kind: ssir.InterpolationFlat}
	module := &ssir.Module{
		Types: []ssir.Type{
			{Inner: f32},
			{Inner: vec4},
			{Name: "VertexOut", Inner: ssir.StructType{Members: []ssir.StructMember{
				{Name: "pos", Type: 1, Binding: ssir.BuiltinBinding{Builtin: ssir.BuiltinPosition}},
				{Name: "fade", Type: 0, Binding: ssir.LocationBinding{Location: 3, Interp: &flat}},
				{Name: "pad", Type: 0},
			}}},
		},
	}

	text, _ := convert(t, module)

	be.True(t, strings.Contains(text, "@builtin(position) pos: vec4<f32>,"))
	be.True(t, strings.Contains(text, "@location(3) @interpolate(flat) fade: f32,"))
	be.True(t, strings.Contains(text, "    pad: f32,"))
}

func TestOperatorRewrites(t *testing.T) {
	boolT := tBool
	module := &ssir.Module{
		Types: baseTypes(),
		Functions: []ssir.Function{{
			Name: "f",
			Params: []ssir.Param{
				{ID: 10, Type: tF32},
				{ID: 11, Type: tF32},
				{ID: 12, Type: tI32},
				{ID: 13, Type: tU32},
			},
			Result: &boolT,
			Blocks: []ssir.Block{{
				Insts: []ssir.Inst{
					{Result: 20, Type: tF32, Op: ssir.OpBinary{Op: ssir.BinaryFRem, LHS: 10, RHS: 11}},
					{Result: 21, Type: tI32, Op: ssir.OpBinary{Op: ssir.BinaryShiftRightLogical, LHS: 12, RHS: 13}},
					{Result: 22, Type: tBool, Op: ssir.OpUnary{Op: ssir.UnaryIsNaN, X: 20}},
					{Result: 23, Type: tBool, Op: ssir.OpUnary{Op: ssir.UnaryIsInf, X: 10}},
					{Result: 24, Type: tBool, Op: ssir.OpBinary{Op: ssir.BinaryLogicalAnd, LHS: 22, RHS: 23}},
					{Result: 25, Type: tBool, Op: ssir.OpBinary{Op: ssir.BinaryLogicalAnd, LHS: 24, RHS: 21}},
				},
				Term: ssir.TermReturn{Value: 25},
			}},
		}},
	}

	text, _ := convert(t, module)

	be.True(t, strings.Contains(text, "(_p10 - _p11 * trunc(_p10 / _p11))"))
	be.True(t, strings.Contains(text, "bitcast<i32>((bitcast<u32>(_p12) >> _p13))"))
	be.True(t, strings.Contains(text, "!= (_p10 - _p11 * trunc(_p10 / _p11))"))
	be.True(t, strings.Contains(text, "(abs(_p10) == 3.402823466e+38)"))
}

func TestTextureGatherComponentFirst(t *testing.T) {
	f32 := ssir.ScalarType{Kind: ssir.ScalarFloat, Width: 4}
	types := []ssir.Type{
		{Inner: f32},
		{Inner: ssir.VectorType{Size: 4, Scalar: f32}},
		{Inner: ssir.VectorType{Size: 2, Scalar: f32}},
		{Inner: ssir.ImageType{Dim: ssir.Dim2D, Class: ssir.ImageClassSampled, Sampled: ssir.ScalarFloat}},
		{Inner: ssir.SamplerType{}},
	}
	result := ssir.TypeID(1)
	module := &ssir.Module{
		Types: types,
		Functions: []ssir.Function{{
			Name: "f",
			Params: []ssir.Param{
				{ID: 10, Type: 3},
				{ID: 11, Type: 4},
				{ID: 12, Type: 2},
			},
			Result: &result,
			Blocks: []ssir.Block{{
				Insts: []ssir.Inst{
					{Result: 20, Type: 1, Op: ssir.OpImageGather{Image: 10, Sampler: 11, Coord: 12, Component: 2}},
				},
				Term: ssir.TermReturn{Value: 20},
			}},
		}},
	}

	text, _ := convert(t, module)
	be.True(t, strings.Contains(text, "textureGather(2, _p10, _p11, _p12)"))
	be.True(t, strings.Contains(text, "texture_2d<f32>"))
}

func TestPhiBecomesVariable(t *testing.T) {
	result := tF32
	module := &ssir.Module{
		Types: baseTypes(),
		Constants: []ssir.Constant{
			{ID: 1, Type: tBool, Value: ssir.ScalarValue{Bits: 1}},
			floatConst(2, tF32, 1.0),
			floatConst(3, tF32, 2.0),
		},
		Functions: []ssir.Function{{
			Name:   "f",
			Result: &result,
			Blocks: []ssir.Block{
				{Term: ssir.TermBranchCond{Cond: 1, True: 1, False: 2, Merge: 3}},
				{Term: ssir.TermBranch{Target: 3}},
				{Term: ssir.TermBranch{Target: 3}},
				{
					Phis: []ssir.Phi{{
						Result: 5,
						Type:   tF32,
						Incoming: []ssir.PhiIncoming{
							{Pred: 1, Value: 2},
							{Pred: 2, Value: 3},
						},
					}},
					Term: ssir.TermReturn{Value: 5},
				},
			},
		}},
	}

	text, _ := convert(t, module)

	be.True(t, strings.Contains(text, "var _l5: f32;"))
	be.True(t, strings.Contains(text, "if (true) {"))
	be.True(t, strings.Contains(text, "_l5 = 1.0;"))
	be.True(t, strings.Contains(text, "_l5 = 2.0;"))
	be.Equal(t, strings.Count(text, "return _l5;"), 1)
	be.True(t, strings.Contains(text, "} else {"))
}

func TestAtomicCallIsBaked(t *testing.T) {
	i32 := tI32
	module := &ssir.Module{
		Types: baseTypes(),
		Constants: []ssir.Constant{{
			ID:    1,
			Type:  tI32,
			Value: ssir.ScalarValue{Bits: 1},
		}},
		Functions: []ssir.Function{{
			Name:   "f",
			Locals: []ssir.Local{{ID: 7, Type: tI32}},
			Result: &i32,
			Blocks: []ssir.Block{{
				Insts: []ssir.Inst{
					{Result: 8, Type: tI32, Op: ssir.OpAtomic{Op: ssir.AtomicAdd, Ptr: 7, Value: 1}},
				},
				Term: ssir.TermReturn{Value: 8},
			}},
		}},
	}

	text, _ := convert(t, module)

	// Side effects execute exactly once even with a single use.
	be.True(t, strings.Contains(text, "let _l8 = atomicAdd(&_l7, 1i);"))
	be.True(t, strings.Contains(text, "return _l8;"))
}

func TestSelectArgumentOrder(t *testing.T) {
	result := tF32
	module := &ssir.Module{
		Types: baseTypes(),
		Functions: []ssir.Function{{
			Name: "f",
			Params: []ssir.Param{
				{ID: 10, Type: tBool},
				{ID: 11, Type: tF32},
				{ID: 12, Type: tF32},
			},
			Result: &result,
			Blocks: []ssir.Block{{
				Insts: []ssir.Inst{
					{Result: 20, Type: tF32, Op: ssir.OpSelect{Cond: 10, True: 11, False: 12}},
				},
				Term: ssir.TermReturn{Value: 20},
			}},
		}},
	}

	text, _ := convert(t, module)
	be.True(t, strings.Contains(text, "select(_p12, _p11, _p10)"))
}

func TestPreserveNames(t *testing.T) {
	result := tF32
	fn := ssir.Function{
		Name:   "helper",
		Params: []ssir.Param{{ID: 10, Name: "x", Type: tF32}},
		Result: &result,
		Blocks: []ssir.Block{{Term: ssir.TermReturn{Value: 10}}},
	}

	module := &ssir.Module{Types: baseTypes(), Functions: []ssir.Function{fn}}
	text, _, err := Convert(module, Options{PreserveNames: true})
	be.Err(t, err, nil)
	be.True(t, strings.Contains(text, "fn helper(x: f32)"))
	be.True(t, strings.Contains(text, "return x;"))

	module = &ssir.Module{Types: baseTypes(), Functions: []ssir.Function{fn}}
	text, _, err = Convert(module, Options{})
	be.Err(t, err, nil)
	be.True(t, strings.Contains(text, "fn helper(_p10: f32)"))
}

func TestOverrideConstants(t *testing.T) {
	spec := uint32(7)
	module := &ssir.Module{
		Types: baseTypes(),
		Constants: []ssir.Constant{{
			ID:     1,
			Name:   "scale",
			Type:   tF32,
			SpecID: &spec,
			Value:  ssir.ScalarValue{Bits: math.Float64bits(2.0)},
		}},
	}

	text, _, err := Convert(module, Options{PreserveNames: true})
	be.Err(t, err, nil)
	be.True(t, strings.Contains(text, "@id(7) override scale: f32 = 2.0;"))
}

func TestGlobalVariableEmission(t *testing.T) {
	init := ssir.ConstID(0)
	module := &ssir.Module{
		Types: baseTypes(),
		Constants: []ssir.Constant{
			floatConst(1, tF32, 3.0),
		},
		Globals: []ssir.GlobalVar{
			{ID: 2, Name: "ubo", Type: tVec4, Space: ssir.SpaceUniform, Binding: &ssir.ResourceBinding{Group: 1, Binding: 2}},
			{ID: 3, Name: "accum", Type: tF32, Space: ssir.SpaceStorage, Binding: &ssir.ResourceBinding{Group: 0, Binding: 0}},
			{ID: 4, Name: "scratch", Type: tF32, Space: ssir.SpacePrivate, Init: &init},
		},
	}

	text, _ := convert(t, module)

	be.True(t, strings.Contains(text, "@group(1) @binding(2) var<uniform> _g2: vec4<f32>;"))
	be.True(t, strings.Contains(text, "@group(0) @binding(0) var<storage, read_write> _g3: f32;"))
	be.True(t, strings.Contains(text, "var<private> _g4: f32 = 3.0;"))
}

func TestFormatFloat(t *testing.T) {
	be.Equal(t, formatFloat(1.0, 4), "1.0")
	be.Equal(t, formatFloat(-2.0, 4), "-2.0")
	be.Equal(t, formatFloat(0.5, 4), "0.5")
	be.Equal(t, formatFloat(0.00025, 4), "0.00025")
	be.Equal(t, formatFloat(1.0, 2), "1.0h")
}
