// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgslout

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/wgslc/ssir"
)

// constExpr renders a constant value as a WGSL expression.
func (w *Writer) constExpr(c *ssir.Constant) string {
	switch v := c.Value.(type) {
	case ssir.ScalarValue:
		return w.scalarConst(c.Type, v.Bits)

	case ssir.CompositeValue:
		parts := make([]string, len(v.Components))
		for i, comp := range v.Components {
			if int(comp) < len(w.module.Constants) {
				parts[i] = w.constRef(&w.module.Constants[comp])
			} else {
				w.diag(DiagUnsupportedOp, "constant %d references out-of-range component %d", c.ID, comp)
				parts[i] = "0"
			}
		}
		return fmt.Sprintf("%s(%s)", w.typeName(c.Type), strings.Join(parts, ", "))

	default:
		w.diag(DiagUnsupportedOp, "constant %d has unknown value shape", c.ID)
		return "0"
	}
}

// constRef renders a reference to a constant: named constants print by
// name, anonymous ones inline their value.
func (w *Writer) constRef(c *ssir.Constant) string {
	if c.Name != "" || c.SpecID != nil {
		return w.valueNames[c.ID]
	}
	return w.constExpr(c)
}

// scalarConst renders a scalar constant with the literal suffix WGSL
// requires for its type.
func (w *Writer) scalarConst(typ ssir.TypeID, bits uint64) string {
	scalar, ok := w.scalarOf(typ)
	if !ok {
		return fmt.Sprintf("%d", bits)
	}
	switch scalar.Kind {
	case ssir.ScalarBool:
		if bits != 0 {
			return "true"
		}
		return "false"
	case ssir.ScalarSint:
		return fmt.Sprintf("%di", int64(bits))
	case ssir.ScalarUint:
		return fmt.Sprintf("%du", bits)
	case ssir.ScalarFloat:
		return formatFloat(math.Float64frombits(bits), scalar.Width)
	default:
		return fmt.Sprintf("%d", bits)
	}
}

// formatFloat renders a float literal. Whole values get one decimal
// place to force float lexical form.
func formatFloat(v float64, width uint8) string {
	var s string
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		s = fmt.Sprintf("%.1f", v)
	} else {
		s = strconv.FormatFloat(v, 'g', -1, 64)
	}
	if width == 2 {
		return s + "h"
	}
	return s
}

// scalarOf returns the scalar type underlying a scalar or vector type.
func (w *Writer) scalarOf(id ssir.TypeID) (ssir.ScalarType, bool) {
	if int(id) >= len(w.module.Types) {
		return ssir.ScalarType{}, false
	}
	switch t := w.module.Types[id].Inner.(type) {
	case ssir.ScalarType:
		return t, true
	case ssir.VectorType:
		return t.Scalar, true
	default:
		return ssir.ScalarType{}, false
	}
}

// lookupDef finds a value's definition, function scope first.
func (w *Writer) lookupDef(id ssir.ValueID) (valueDef, bool) {
	if w.fnDefs != nil {
		if def, ok := w.fnDefs[id]; ok {
			return def, true
		}
	}
	def, ok := w.moduleDefs[id]
	return def, ok
}

// typeOfValue returns the type a value id carries.
func (w *Writer) typeOfValue(id ssir.ValueID) (ssir.TypeID, bool) {
	def, ok := w.lookupDef(id)
	if !ok {
		return 0, false
	}
	return def.typ, true
}

// valueExpr renders a reference to a value: baked values and named
// entities print by name, anonymous constants inline, everything else
// synthesizes an expression from its defining instruction.
func (w *Writer) valueExpr(id ssir.ValueID) string {
	if name, ok := w.baked[id]; ok {
		return name
	}
	def, ok := w.lookupDef(id)
	if !ok {
		w.diag(DiagUnsupportedOp, "reference to undefined value %d", id)
		return fmt.Sprintf("_undef_%d", id)
	}
	switch {
	case def.constant != nil:
		return w.constRef(def.constant)
	case def.inst != nil:
		return w.instExpr(def.inst)
	default:
		// Globals, params, locals, and phis print by name.
		return w.valueNames[id]
	}
}

// instExpr synthesizes an expression from an instruction's opcode.
func (w *Writer) instExpr(inst *ssir.Inst) string {
	switch op := inst.Op.(type) {
	case ssir.OpBinary:
		return w.binaryExpr(op)

	case ssir.OpUnary:
		return w.unaryExpr(op)

	case ssir.OpCall:
		return fmt.Sprintf("%s(%s)", w.funcNames[op.Func], w.argList(op.Args))

	case ssir.OpBuiltin:
		name, ok := builtinFuncNames[op.Fn]
		if !ok {
			w.diag(DiagUnsupportedOp, "builtin function %d has no WGSL name", op.Fn)
			name = "unknown_builtin"
		}
		return fmt.Sprintf("%s(%s)", name, w.argList(op.Args))

	case ssir.OpExtract:
		return w.extractExpr(op.Base, op.Indices)

	case ssir.OpAccess:
		return fmt.Sprintf("%s[%s]", w.valueExpr(op.Base), w.valueExpr(op.Index))

	case ssir.OpLoad:
		// Variables are accessed by name in WGSL; a load through a
		// pointer chain renders as the chain itself.
		return w.valueExpr(op.Ptr)

	case ssir.OpCompose:
		return fmt.Sprintf("%s(%s)", w.typeName(op.Type), w.argList(op.Components))

	case ssir.OpSelect:
		return fmt.Sprintf("select(%s, %s, %s)", w.valueExpr(op.False), w.valueExpr(op.True), w.valueExpr(op.Cond))

	case ssir.OpBitcast:
		return fmt.Sprintf("bitcast<%s>(%s)", w.typeName(op.To), w.valueExpr(op.X))

	case ssir.OpConvert:
		return fmt.Sprintf("%s(%s)", w.typeName(op.To), w.valueExpr(op.X))

	case ssir.OpAtomic:
		return w.atomicExpr(op)

	case ssir.OpImageSample:
		if op.Level != ssir.NoValue {
			return fmt.Sprintf("textureSampleLevel(%s, %s, %s, %s)",
				w.valueExpr(op.Image), w.valueExpr(op.Sampler), w.valueExpr(op.Coord), w.valueExpr(op.Level))
		}
		return fmt.Sprintf("textureSample(%s, %s, %s)",
			w.valueExpr(op.Image), w.valueExpr(op.Sampler), w.valueExpr(op.Coord))

	case ssir.OpImageGather:
		// WGSL puts the component first; the IR carries it last.
		return fmt.Sprintf("textureGather(%d, %s, %s, %s)",
			op.Component, w.valueExpr(op.Image), w.valueExpr(op.Sampler), w.valueExpr(op.Coord))

	case ssir.OpImageLoad:
		level := "0"
		if op.Level != ssir.NoValue {
			level = w.valueExpr(op.Level)
		}
		return fmt.Sprintf("textureLoad(%s, %s, %s)", w.valueExpr(op.Image), w.valueExpr(op.Coord), level)

	case ssir.OpImageSize:
		if op.Level != ssir.NoValue {
			return fmt.Sprintf("textureDimensions(%s, %s)", w.valueExpr(op.Image), w.valueExpr(op.Level))
		}
		return fmt.Sprintf("textureDimensions(%s)", w.valueExpr(op.Image))

	default:
		w.diag(DiagUnsupportedOp, "instruction for value %d has unknown opcode", inst.Result)
		return "unknown_op()"
	}
}

func (w *Writer) argList(args []ssir.ValueID) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = w.valueExpr(a)
	}
	return strings.Join(parts, ", ")
}

// binaryExpr renders a binary operation with full parenthesization.
// Two operators need rewrites: floating remainder has no reliable %
// mapping, and logical right-shift of a signed operand must round-trip
// through the unsigned bit pattern to force zero fill.
func (w *Writer) binaryExpr(op ssir.OpBinary) string {
	lhs := w.valueExpr(op.LHS)
	rhs := w.valueExpr(op.RHS)

	if op.Op == ssir.BinaryFRem {
		return fmt.Sprintf("(%s - %s * trunc(%s / %s))", lhs, rhs, lhs, rhs)
	}

	if op.Op == ssir.BinaryShiftRightLogical {
		if typ, ok := w.typeOfValue(op.LHS); ok && w.isSignedInt(typ) {
			return fmt.Sprintf("bitcast<%s>((bitcast<%s>(%s) >> %s))",
				w.typeName(typ), w.unsignedName(typ), lhs, rhs)
		}
		return fmt.Sprintf("(%s >> %s)", lhs, rhs)
	}

	sym, ok := binaryOpSymbols[op.Op]
	if !ok {
		w.diag(DiagUnsupportedOp, "binary operator %d has no WGSL form", op.Op)
		sym = "/*?*/"
	}
	return fmt.Sprintf("(%s %s %s)", lhs, sym, rhs)
}

var binaryOpSymbols = map[ssir.BinaryOp]string{
	ssir.BinaryAdd:             "+",
	ssir.BinarySub:             "-",
	ssir.BinaryMul:             "*",
	ssir.BinaryDiv:             "/",
	ssir.BinaryRem:             "%",
	ssir.BinaryAnd:             "&",
	ssir.BinaryOr:              "|",
	ssir.BinaryXor:             "^",
	ssir.BinaryShiftLeft:       "<<",
	ssir.BinaryShiftRightArith: ">>",
	ssir.BinaryEqual:           "==",
	ssir.BinaryNotEqual:        "!=",
	ssir.BinaryLess:            "<",
	ssir.BinaryLessEqual:       "<=",
	ssir.BinaryGreater:         ">",
	ssir.BinaryGreaterEqual:    ">=",
	ssir.BinaryLogicalAnd:      "&&",
	ssir.BinaryLogicalOr:       "||",
}

// unaryExpr renders a unary operation. isnan and isinf do not exist in
// WGSL and are rewritten arithmetically.
func (w *Writer) unaryExpr(op ssir.OpUnary) string {
	x := w.valueExpr(op.X)
	switch op.Op {
	case ssir.UnaryNeg:
		return fmt.Sprintf("(-%s)", x)
	case ssir.UnaryNot:
		return fmt.Sprintf("(!%s)", x)
	case ssir.UnaryBitNot:
		return fmt.Sprintf("(~%s)", x)
	case ssir.UnaryIsNaN:
		return fmt.Sprintf("(%s != %s)", x, x)
	case ssir.UnaryIsInf:
		return fmt.Sprintf("(abs(%s) == 3.402823466e+38)", x)
	default:
		w.diag(DiagUnsupportedOp, "unary operator %d has no WGSL form", op.Op)
		return fmt.Sprintf("(/*?*/%s)", x)
	}
}

var atomicFuncNames = map[ssir.AtomicOp]string{
	ssir.AtomicLoad:     "atomicLoad",
	ssir.AtomicStore:    "atomicStore",
	ssir.AtomicAdd:      "atomicAdd",
	ssir.AtomicSub:      "atomicSub",
	ssir.AtomicAnd:      "atomicAnd",
	ssir.AtomicOr:       "atomicOr",
	ssir.AtomicXor:      "atomicXor",
	ssir.AtomicMin:      "atomicMin",
	ssir.AtomicMax:      "atomicMax",
	ssir.AtomicExchange: "atomicExchange",
}

func (w *Writer) atomicExpr(op ssir.OpAtomic) string {
	name, ok := atomicFuncNames[op.Op]
	if !ok {
		w.diag(DiagUnsupportedOp, "atomic operation %d has no WGSL name", op.Op)
		name = "unknown_builtin"
	}
	ptr := "&" + w.valueExpr(op.Ptr)
	if op.Value == ssir.NoValue {
		return fmt.Sprintf("%s(%s)", name, ptr)
	}
	return fmt.Sprintf("%s(%s, %s)", name, ptr, w.valueExpr(op.Value))
}

var swizzleLetters = [4]string{"x", "y", "z", "w"}

// extractExpr renders a compile-time indexed access chain, tracing the
// evolving aggregate type to pick between swizzles, member names, and
// bracketed indices.
func (w *Writer) extractExpr(base ssir.ValueID, indices []uint32) string {
	expr := w.valueExpr(base)

	var inner ssir.TypeInner
	var curID ssir.TypeID
	idKnown := false
	if tid, ok := w.typeOfValue(base); ok {
		inner, curID = w.arenaInner(tid)
		idKnown = true
	}

	for _, idx := range indices {
		switch it := inner.(type) {
		case ssir.VectorType:
			if idx < 4 {
				expr += "." + swizzleLetters[idx]
			} else {
				expr += fmt.Sprintf("[%d]", idx)
			}
			inner = it.Scalar
			idKnown = false

		case ssir.MatrixType:
			expr += fmt.Sprintf("[%d]", idx)
			inner = ssir.VectorType{Size: it.Rows, Scalar: it.Scalar}
			idKnown = false

		case ssir.ArrayType:
			expr += fmt.Sprintf("[%d]", idx)
			inner, curID = w.arenaInner(it.Elem)
			idKnown = true

		case ssir.StructType:
			if int(idx) >= len(it.Members) {
				expr += fmt.Sprintf(".member%d", idx)
				inner = nil
				continue
			}
			if idKnown {
				expr += "." + w.memberName(curID, idx)
			} else {
				expr += fmt.Sprintf(".member%d", idx)
			}
			inner, curID = w.arenaInner(it.Members[idx].Type)
			idKnown = true

		default:
			expr += fmt.Sprintf("[%d]", idx)
			inner = nil
		}
	}
	return expr
}

// arenaInner loads a type's inner shape, unwrapping pointers, and
// returns the final arena id it settled on.
func (w *Writer) arenaInner(id ssir.TypeID) (ssir.TypeInner, ssir.TypeID) {
	for {
		if int(id) >= len(w.module.Types) {
			return nil, id
		}
		inner := w.module.Types[id].Inner
		ptr, ok := inner.(ssir.PointerType)
		if !ok {
			return inner, id
		}
		id = ptr.Pointee
	}
}

// builtinFuncNames maps builtin ops to WGSL builtin function names.
var builtinFuncNames = map[ssir.BuiltinFunc]string{
	ssir.BuiltinAbs:         "abs",
	ssir.BuiltinMin:         "min",
	ssir.BuiltinMax:         "max",
	ssir.BuiltinClamp:       "clamp",
	ssir.BuiltinFloor:       "floor",
	ssir.BuiltinCeil:        "ceil",
	ssir.BuiltinTrunc:       "trunc",
	ssir.BuiltinRound:       "round",
	ssir.BuiltinFract:       "fract",
	ssir.BuiltinSqrt:        "sqrt",
	ssir.BuiltinInverseSqrt: "inverseSqrt",
	ssir.BuiltinSin:         "sin",
	ssir.BuiltinCos:         "cos",
	ssir.BuiltinTan:         "tan",
	ssir.BuiltinAsin:        "asin",
	ssir.BuiltinAcos:        "acos",
	ssir.BuiltinAtan:        "atan",
	ssir.BuiltinAtan2:       "atan2",
	ssir.BuiltinPow:         "pow",
	ssir.BuiltinExp:         "exp",
	ssir.BuiltinExp2:        "exp2",
	ssir.BuiltinLog:         "log",
	ssir.BuiltinLog2:        "log2",
	ssir.BuiltinDot:         "dot",
	ssir.BuiltinCross:       "cross",
	ssir.BuiltinLength:      "length",
	ssir.BuiltinDistance:    "distance",
	ssir.BuiltinNormalize:   "normalize",
	ssir.BuiltinReflect:     "reflect",
	ssir.BuiltinRefract:     "refract",
	ssir.BuiltinMix:         "mix",
	ssir.BuiltinStep:        "step",
	ssir.BuiltinSmoothstep:  "smoothstep",
	ssir.BuiltinSign:        "sign",
	ssir.BuiltinFma:         "fma",
	ssir.BuiltinDpdx:        "dpdx",
	ssir.BuiltinDpdy:        "dpdy",
	ssir.BuiltinFwidth:      "fwidth",
}
