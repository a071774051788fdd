// Package ssir defines the structural shader IR consumed by the WGSL
// re-emission backend.
//
// The IR is a flat, table-based module: types and constants live in
// indexed arenas, functions hold basic blocks of instructions in SSA
// form, and every constant, global, parameter, local, and instruction
// result occupies one module-wide value id space. Consumers treat a
// Module as read-only.
package ssir

// Handle types for referencing IR objects. Handles index into the
// module's arenas.
type (
	TypeID   uint32
	ConstID  uint32
	FuncID   uint32
	GlobalID uint32
	BlockID  uint32
)

// ValueID identifies a value in the module-wide value space: constant,
// global, parameter, local, or instruction result. Zero is reserved
// and never names a value.
type ValueID uint32

// NoValue marks an absent value operand.
const NoValue ValueID = 0

// NoBlock marks an absent block reference.
const NoBlock BlockID = ^BlockID(0)

// Module represents a lowered shader module.
type Module struct {
	// Types holds all type definitions
	Types []Type

	// Constants holds module-scope constants
	Constants []Constant

	// Globals holds module-scope variables, including pipeline
	// input/output interface variables
	Globals []GlobalVar

	// Functions holds all function definitions
	Functions []Function

	// EntryPoints holds shader entry points
	EntryPoints []EntryPoint
}

// EntryPoint binds a function to a pipeline stage.
type EntryPoint struct {
	Name      string
	Stage     ShaderStage
	Function  FuncID
	Workgroup [3]uint32 // For compute shaders
}

// ShaderStage represents a shader stage.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
	StageCompute
)

// Type represents a type in the IR. Name carries the original debug
// name when one survived lowering.
type Type struct {
	Name  string
	Inner TypeInner
}

// TypeInner represents the inner type kind.
type TypeInner interface {
	typeInner()
}

// ScalarType represents scalar types.
type ScalarType struct {
	Kind  ScalarKind
	Width uint8 // in bytes: 1, 2, 4, or 8
}

func (ScalarType) typeInner() {}

// ScalarKind represents scalar type kinds.
type ScalarKind uint8

const (
	ScalarSint  ScalarKind = iota // Signed integer
	ScalarUint                    // Unsigned integer
	ScalarFloat                   // Floating point
	ScalarBool                    // Boolean
)

// VectorType represents vector types.
type VectorType struct {
	Size   uint8 // 2, 3, or 4
	Scalar ScalarType
}

func (VectorType) typeInner() {}

// MatrixType represents matrix types (column-major).
type MatrixType struct {
	Columns uint8
	Rows    uint8
	Scalar  ScalarType
}

func (MatrixType) typeInner() {}

// ArrayType represents array types. Size is nil for runtime-sized
// arrays.
type ArrayType struct {
	Elem TypeID
	Size *uint32
}

func (ArrayType) typeInner() {}

// StructType represents struct types.
type StructType struct {
	Members []StructMember
}

func (StructType) typeInner() {}

// StructMember represents a struct member. Name may be empty when the
// debug name did not survive lowering.
type StructMember struct {
	Name    string
	Type    TypeID
	Binding Binding
}

// PointerType represents pointer types.
type PointerType struct {
	Pointee TypeID
	Space   AddressSpace
}

func (PointerType) typeInner() {}

// AtomicType represents atomic types.
type AtomicType struct {
	Scalar ScalarType
}

func (AtomicType) typeInner() {}

// SamplerType represents sampler types.
type SamplerType struct {
	Comparison bool
}

func (SamplerType) typeInner() {}

// ImageType represents image/texture types.
type ImageType struct {
	Dim          ImageDimension
	Arrayed      bool
	Multisampled bool
	Class        ImageClass
	Sampled      ScalarKind // Component kind for sampled/storage images
}

func (ImageType) typeInner() {}

// ImageDimension represents image dimensions.
type ImageDimension uint8

const (
	Dim1D ImageDimension = iota
	Dim2D
	Dim3D
	DimCube
)

// ImageClass represents image classification.
type ImageClass uint8

const (
	ImageClassSampled ImageClass = iota
	ImageClassDepth
	ImageClassStorage
)

// AddressSpace represents memory address spaces. Input and Output are
// the pipeline interface spaces; globals there become entry-point
// parameters and return values on re-emission.
type AddressSpace uint8

const (
	SpaceFunction AddressSpace = iota
	SpacePrivate
	SpaceWorkgroup
	SpaceUniform
	SpaceStorage
	SpaceHandle
	SpaceInput
	SpaceOutput
)

// Constant represents a module-scope constant. A non-nil SpecID marks
// a specialization (override) constant with its pipeline id.
type Constant struct {
	ID     ValueID
	Name   string
	Type   TypeID
	SpecID *uint32
	Value  ConstantValue
}

// ConstantValue represents constant values.
type ConstantValue interface {
	constantValue()
}

// ScalarValue represents a scalar constant as a bit pattern
// interpreted per the constant's scalar type. Integers store the value
// in two's complement; floating values store the float64 bit pattern
// regardless of width; booleans store 0 or 1.
type ScalarValue struct {
	Bits uint64
}

func (ScalarValue) constantValue() {}

// CompositeValue represents a composite constant built from other
// constants.
type CompositeValue struct {
	Components []ConstID
}

func (CompositeValue) constantValue() {}

// GlobalVar represents a module-scope variable.
type GlobalVar struct {
	ID      ValueID
	Name    string
	Type    TypeID
	Space   AddressSpace
	Binding *ResourceBinding
	Init    *ConstID

	// Interface decoration, meaningful for Input/Output spaces.
	Location  *uint32
	Builtin   *BuiltinValue
	Interp    *Interpolation
	Invariant bool
}

// ResourceBinding represents a resource binding slot.
type ResourceBinding struct {
	Group   uint32
	Binding uint32
}

// BuiltinValue represents built-in interface values.
type BuiltinValue uint8

const (
	BuiltinPosition BuiltinValue = iota
	BuiltinVertexIndex
	BuiltinInstanceIndex
	BuiltinFrontFacing
	BuiltinFragDepth
	BuiltinSampleIndex
	BuiltinSampleMask
	BuiltinLocalInvocationID
	BuiltinLocalInvocationIndex
	BuiltinGlobalInvocationID
	BuiltinWorkgroupID
	BuiltinNumWorkgroups
)

// Interpolation represents interpolation settings for a location
// interface variable.
type Interpolation struct {
	Kind     InterpolationKind
	Sampling InterpolationSampling
}

// InterpolationKind represents interpolation kinds.
type InterpolationKind uint8

const (
	InterpolationPerspective InterpolationKind = iota
	InterpolationLinear
	InterpolationFlat
)

// InterpolationSampling represents interpolation sampling.
type InterpolationSampling uint8

const (
	SamplingCenter InterpolationSampling = iota
	SamplingCentroid
	SamplingSample
)

// Binding represents an interface binding on a struct member.
type Binding interface {
	binding()
}

// BuiltinBinding represents a built-in binding.
type BuiltinBinding struct {
	Builtin BuiltinValue
}

func (BuiltinBinding) binding() {}

// LocationBinding represents a location binding.
type LocationBinding struct {
	Location uint32
	Interp   *Interpolation
}

func (LocationBinding) binding() {}
