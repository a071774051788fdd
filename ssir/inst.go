package ssir

// Function represents a function definition. Blocks[0] is the entry
// block; BlockIDs index into Blocks.
type Function struct {
	Name   string
	Params []Param
	Result *TypeID // nil for void
	Locals []Local
	Blocks []Block
}

// Param represents a function parameter.
type Param struct {
	ID   ValueID
	Name string
	Type TypeID
}

// Local represents a function-local variable. Its value id names a
// pointer to the variable's storage.
type Local struct {
	ID   ValueID
	Name string
	Type TypeID
	Init *ConstID
}

// Block is a basic block: phi nodes, then ordinary instructions, then
// exactly one terminator.
type Block struct {
	Phis  []Phi
	Insts []Inst
	Term  Terminator
}

// Phi merges values flowing in from predecessor blocks.
type Phi struct {
	Result   ValueID
	Type     TypeID
	Incoming []PhiIncoming
}

// PhiIncoming is one (predecessor, value) arm of a phi.
type PhiIncoming struct {
	Pred  BlockID
	Value ValueID
}

// Inst is a single instruction. Result is NoValue for instructions
// that produce nothing (stores). Type is the result type and is
// meaningless when Result is NoValue.
type Inst struct {
	Result ValueID
	Type   TypeID
	Op     Op
}

// Op represents the operation an instruction performs.
type Op interface {
	op()
}

// OpBinary applies a binary operator.
type OpBinary struct {
	Op  BinaryOp
	LHS ValueID
	RHS ValueID
}

func (OpBinary) op() {}

// BinaryOp represents binary operators. Shift-right is split by
// semantics, not by operand signedness: logical shifts fill with
// zeroes regardless of the operand type.
type BinaryOp uint8

const (
	BinaryAdd BinaryOp = iota
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryRem  // Integer remainder
	BinaryFRem // Floating remainder, truncated toward zero

	BinaryAnd
	BinaryOr
	BinaryXor
	BinaryShiftLeft
	BinaryShiftRightLogical
	BinaryShiftRightArith

	BinaryEqual
	BinaryNotEqual
	BinaryLess
	BinaryLessEqual
	BinaryGreater
	BinaryGreaterEqual

	BinaryLogicalAnd
	BinaryLogicalOr
)

// OpUnary applies a unary operator.
type OpUnary struct {
	Op UnaryOp
	X  ValueID
}

func (OpUnary) op() {}

// UnaryOp represents unary operators.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
	UnaryBitNot
	UnaryIsNaN
	UnaryIsInf
)

// OpCall calls a function defined in the module.
type OpCall struct {
	Func FuncID
	Args []ValueID
}

func (OpCall) op() {}

// OpBuiltin calls a shading-language builtin.
type OpBuiltin struct {
	Fn   BuiltinFunc
	Args []ValueID
}

func (OpBuiltin) op() {}

// BuiltinFunc enumerates the recognized builtin functions.
type BuiltinFunc uint8

const (
	BuiltinAbs BuiltinFunc = iota
	BuiltinMin
	BuiltinMax
	BuiltinClamp
	BuiltinFloor
	BuiltinCeil
	BuiltinTrunc
	BuiltinRound
	BuiltinFract
	BuiltinSqrt
	BuiltinInverseSqrt
	BuiltinSin
	BuiltinCos
	BuiltinTan
	BuiltinAsin
	BuiltinAcos
	BuiltinAtan
	BuiltinAtan2
	BuiltinPow
	BuiltinExp
	BuiltinExp2
	BuiltinLog
	BuiltinLog2
	BuiltinDot
	BuiltinCross
	BuiltinLength
	BuiltinDistance
	BuiltinNormalize
	BuiltinReflect
	BuiltinRefract
	BuiltinMix
	BuiltinStep
	BuiltinSmoothstep
	BuiltinSign
	BuiltinFma
	BuiltinDpdx
	BuiltinDpdy
	BuiltinFwidth
)

// OpExtract extracts from an aggregate by compile-time indices.
// Vector components 0-3 re-emit as swizzles, struct indices as member
// access, anything else as a bracketed index.
type OpExtract struct {
	Base    ValueID
	Indices []uint32
}

func (OpExtract) op() {}

// OpAccess indexes an aggregate with a computed index.
type OpAccess struct {
	Base  ValueID
	Index ValueID
}

func (OpAccess) op() {}

// OpLoad loads through a pointer.
type OpLoad struct {
	Ptr ValueID
}

func (OpLoad) op() {}

// OpStore stores through a pointer. Produces no result.
type OpStore struct {
	Ptr   ValueID
	Value ValueID
}

func (OpStore) op() {}

// OpCompose constructs a composite value.
type OpCompose struct {
	Type       TypeID
	Components []ValueID
}

func (OpCompose) op() {}

// OpSelect chooses between two values by a boolean condition.
type OpSelect struct {
	Cond  ValueID
	True  ValueID
	False ValueID
}

func (OpSelect) op() {}

// OpBitcast reinterprets a value's bits as another type.
type OpBitcast struct {
	To TypeID
	X  ValueID
}

func (OpBitcast) op() {}

// OpConvert performs a value-preserving numeric conversion.
type OpConvert struct {
	To TypeID
	X  ValueID
}

func (OpConvert) op() {}

// OpAtomic performs a read-modify-write atomic operation on a pointer
// to an atomic type. Value is NoValue for loads.
type OpAtomic struct {
	Op    AtomicOp
	Ptr   ValueID
	Value ValueID
}

func (OpAtomic) op() {}

// AtomicOp represents atomic read-modify-write operations.
type AtomicOp uint8

const (
	AtomicLoad AtomicOp = iota
	AtomicStore
	AtomicAdd
	AtomicSub
	AtomicAnd
	AtomicOr
	AtomicXor
	AtomicMin
	AtomicMax
	AtomicExchange
)

// OpImageSample samples a sampled or depth image.
type OpImageSample struct {
	Image   ValueID
	Sampler ValueID
	Coord   ValueID
	Level   ValueID // NoValue for implicit LOD
}

func (OpImageSample) op() {}

// OpImageGather gathers one component across a 2x2 texel footprint.
type OpImageGather struct {
	Image     ValueID
	Sampler   ValueID
	Coord     ValueID
	Component uint32
}

func (OpImageGather) op() {}

// OpImageLoad reads a texel directly without sampling.
type OpImageLoad struct {
	Image ValueID
	Coord ValueID
	Level ValueID // NoValue when the image has no mip levels
}

func (OpImageLoad) op() {}

// OpImageStore writes a texel to a storage image. Produces no result.
type OpImageStore struct {
	Image ValueID
	Coord ValueID
	Value ValueID
}

func (OpImageStore) op() {}

// OpImageSize queries an image's dimensions.
type OpImageSize struct {
	Image ValueID
	Level ValueID // NoValue for level 0
}

func (OpImageSize) op() {}

// Terminator ends a basic block.
type Terminator interface {
	terminator()
}

// TermBranch transfers control unconditionally.
type TermBranch struct {
	Target BlockID
}

func (TermBranch) terminator() {}

// TermBranchCond transfers control by a boolean condition. Merge, when
// not NoBlock, names the block where both arms rejoin; re-emission
// continues there after closing the conditional.
type TermBranchCond struct {
	Cond  ValueID
	True  BlockID
	False BlockID
	Merge BlockID
}

func (TermBranchCond) terminator() {}

// TermReturn returns from the function. Value is NoValue for void
// returns.
type TermReturn struct {
	Value ValueID
}

func (TermReturn) terminator() {}

// TermUnreachable marks a block that control never reaches.
type TermUnreachable struct{}

func (TermUnreachable) terminator() {}
