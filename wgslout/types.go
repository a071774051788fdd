// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgslout

import (
	"fmt"

	"github.com/gogpu/wgslc/ssir"
)

// typeName renders a type id as WGSL type syntax. Unknown shapes
// produce a marked placeholder plus a diagnostic rather than failing
// the conversion.
func (w *Writer) typeName(id ssir.TypeID) string {
	if int(id) >= len(w.module.Types) {
		return w.unknownType("type id %d out of range", id)
	}
	return w.typeInnerName(id, w.module.Types[id].Inner)
}

func (w *Writer) typeInnerName(id ssir.TypeID, inner ssir.TypeInner) string {
	switch t := inner.(type) {
	case ssir.ScalarType:
		return w.scalarName(t)

	case ssir.VectorType:
		return fmt.Sprintf("vec%d<%s>", t.Size, w.scalarName(t.Scalar))

	case ssir.MatrixType:
		return fmt.Sprintf("mat%dx%d<%s>", t.Columns, t.Rows, w.scalarName(t.Scalar))

	case ssir.ArrayType:
		if t.Size == nil {
			return fmt.Sprintf("array<%s>", w.typeName(t.Elem))
		}
		return fmt.Sprintf("array<%s, %d>", w.typeName(t.Elem), *t.Size)

	case ssir.StructType:
		if name, ok := w.typeNames[id]; ok {
			return name
		}
		return w.unknownType("anonymous struct type %d", id)

	case ssir.PointerType:
		// WGSL rarely surfaces raw pointers; render the pointee.
		return w.typeName(t.Pointee)

	case ssir.AtomicType:
		return fmt.Sprintf("atomic<%s>", w.scalarName(t.Scalar))

	case ssir.SamplerType:
		if t.Comparison {
			return "sampler_comparison"
		}
		return "sampler"

	case ssir.ImageType:
		return w.imageName(id, t)

	default:
		return w.unknownType("type %d has unknown shape", id)
	}
}

// scalarName maps a scalar to its WGSL spelling. WGSL has no 8/16/64
// bit integers, so those widths widen to 32 bits; the downcast is
// lossy but source-compatible and reported as a diagnostic.
func (w *Writer) scalarName(s ssir.ScalarType) string {
	switch s.Kind {
	case ssir.ScalarBool:
		return "bool"

	case ssir.ScalarFloat:
		if s.Width == 2 {
			return "f16"
		}
		if s.Width == 8 {
			w.diag(DiagUnsupportedType, "64-bit float narrowed to f32")
		}
		return "f32"

	case ssir.ScalarSint:
		if s.Width != 4 {
			w.diag(DiagWidenedInt, "%d-bit signed integer widened to i32", s.Width*8)
		}
		return "i32"

	case ssir.ScalarUint:
		if s.Width != 4 {
			w.diag(DiagWidenedInt, "%d-bit unsigned integer widened to u32", s.Width*8)
		}
		return "u32"

	default:
		return w.unknownType("scalar kind %d", s.Kind)
	}
}

// imageName renders texture types.
func (w *Writer) imageName(id ssir.TypeID, t ssir.ImageType) string {
	dim := imageDimName(t.Dim)

	switch t.Class {
	case ssir.ImageClassDepth:
		if t.Multisampled {
			return "texture_depth_multisampled_2d"
		}
		suffix := ""
		if t.Arrayed {
			suffix = "_array"
		}
		return fmt.Sprintf("texture_depth_%s%s", dim, suffix)

	case ssir.ImageClassSampled:
		elem := w.scalarName(ssir.ScalarType{Kind: t.Sampled, Width: 4})
		if t.Multisampled {
			return fmt.Sprintf("texture_multisampled_2d<%s>", elem)
		}
		suffix := ""
		if t.Arrayed {
			suffix = "_array"
		}
		return fmt.Sprintf("texture_%s%s<%s>", dim, suffix, elem)

	case ssir.ImageClassStorage:
		// The IR carries no texel format, so a faithful storage
		// texture type cannot be reconstructed.
		return w.unknownType("storage texture %d without texel format", id)

	default:
		return w.unknownType("image type %d has unknown class", id)
	}
}

func imageDimName(dim ssir.ImageDimension) string {
	switch dim {
	case ssir.Dim1D:
		return "1d"
	case ssir.Dim3D:
		return "3d"
	case ssir.DimCube:
		return "cube"
	default:
		return "2d"
	}
}

// unknownType records a diagnostic and returns a marked placeholder
// type name.
func (w *Writer) unknownType(format string, args ...any) string {
	w.diag(DiagUnsupportedType, format, args...)
	w.unknownTypes++
	return fmt.Sprintf("_unknown_type_%d", w.unknownTypes)
}

// unsignedName returns the u32-based spelling matching a type's shape,
// used for bit-pattern shift rewrites.
func (w *Writer) unsignedName(id ssir.TypeID) string {
	if int(id) >= len(w.module.Types) {
		return "u32"
	}
	switch t := w.module.Types[id].Inner.(type) {
	case ssir.VectorType:
		return fmt.Sprintf("vec%d<u32>", t.Size)
	default:
		return "u32"
	}
}

// isSignedInt reports whether a type is a signed integer scalar or
// vector.
func (w *Writer) isSignedInt(id ssir.TypeID) bool {
	if int(id) >= len(w.module.Types) {
		return false
	}
	switch t := w.module.Types[id].Inner.(type) {
	case ssir.ScalarType:
		return t.Kind == ssir.ScalarSint
	case ssir.VectorType:
		return t.Scalar.Kind == ssir.ScalarSint
	default:
		return false
	}
}
