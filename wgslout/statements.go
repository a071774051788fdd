// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgslout

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/gogpu/wgslc/ssir"
)

// writeFunctions emits every function, decorating entry points.
func (w *Writer) writeFunctions() error {
	epByFunc := make(map[ssir.FuncID]*ssir.EntryPoint)
	for i := range w.module.EntryPoints {
		ep := &w.module.EntryPoints[i]
		epByFunc[ep.Function] = ep
	}

	for id := range w.module.Functions {
		if err := w.writeFunction(ssir.FuncID(id), epByFunc[ssir.FuncID(id)]); err != nil {
			return err
		}
		w.writeLine("")
	}
	return nil
}

// writeFunction emits one function definition.
func (w *Writer) writeFunction(id ssir.FuncID, ep *ssir.EntryPoint) error {
	fn := &w.module.Functions[id]
	w.fn = fn
	w.entry = ep
	w.fnDefs = make(map[ssir.ValueID]valueDef)
	w.baked = make(map[ssir.ValueID]string)
	w.visited = make([]bool, len(fn.Blocks))
	defer func() {
		w.fn = nil
		w.entry = nil
		w.fnDefs = nil
	}()

	for i := range fn.Params {
		p := &fn.Params[i]
		w.fnDefs[p.ID] = valueDef{typ: p.Type, isParam: true}
	}
	for i := range fn.Locals {
		l := &fn.Locals[i]
		w.fnDefs[l.ID] = valueDef{typ: l.Type, isLocal: true}
	}
	var phis []*ssir.Phi
	for bi := range fn.Blocks {
		b := &fn.Blocks[bi]
		for pi := range b.Phis {
			phi := &b.Phis[pi]
			w.fnDefs[phi.Result] = valueDef{phi: phi, typ: phi.Type}
			w.valueNames[phi.Result] = w.namer.call(fmt.Sprintf("_l%d", phi.Result))
			phis = append(phis, phi)
		}
		for ii := range b.Insts {
			inst := &b.Insts[ii]
			if inst.Result != ssir.NoValue {
				w.fnDefs[inst.Result] = valueDef{inst: inst, typ: inst.Type}
			}
		}
	}

	w.countUses(fn)

	if ep != nil {
		w.writeEntryAttrs(ep)
	}
	sig, err := w.signature(fn, ep)
	if err != nil {
		return err
	}
	w.writeLine("%s {", sig)
	w.pushIndent()

	// Output interface variables live as ordinary locals inside the
	// entry point and are returned at the end.
	if ep != nil {
		for _, g := range w.outputGlobals() {
			w.writeLine("var %s: %s;", w.valueNames[g.ID], w.typeName(g.Type))
		}
	}
	for i := range fn.Locals {
		l := &fn.Locals[i]
		if l.Init != nil && int(*l.Init) < len(w.module.Constants) {
			w.writeLine("var %s: %s = %s;", w.valueNames[l.ID], w.typeName(l.Type), w.constExpr(&w.module.Constants[*l.Init]))
		} else {
			w.writeLine("var %s: %s;", w.valueNames[l.ID], w.typeName(l.Type))
		}
	}
	// Phi results have no direct WGSL expression form; each becomes a
	// var assigned in its predecessor arms.
	for _, phi := range phis {
		w.writeLine("var %s: %s;", w.valueNames[phi.Result], w.typeName(phi.Type))
	}

	if len(fn.Blocks) > 0 {
		w.emitBlock(0)
	}

	w.popIndent()
	w.writeLine("}")
	return nil
}

// writeEntryAttrs writes the stage attribute line for an entry point.
func (w *Writer) writeEntryAttrs(ep *ssir.EntryPoint) {
	switch ep.Stage {
	case ssir.StageVertex:
		w.writeLine("@vertex")
	case ssir.StageFragment:
		w.writeLine("@fragment")
	case ssir.StageCompute:
		wg := ep.Workgroup
		for i := range wg {
			if wg[i] == 0 {
				wg[i] = 1
			}
		}
		w.writeLine("@compute @workgroup_size(%d, %d, %d)", wg[0], wg[1], wg[2])
	}
}

// signature renders the fn line. Entry points merge input-interface
// globals ahead of ordinary parameters and take their return type from
// the output-interface globals.
func (w *Writer) signature(fn *ssir.Function, ep *ssir.EntryPoint) (string, error) {
	var params []string

	if ep != nil {
		for _, g := range w.inputGlobals() {
			params = append(params, fmt.Sprintf("%s%s: %s", w.interfaceAttrs(g), w.valueNames[g.ID], w.typeName(g.Type)))
		}
	}
	for i := range fn.Params {
		p := &fn.Params[i]
		params = append(params, fmt.Sprintf("%s: %s", w.valueNames[p.ID], w.typeName(p.Type)))
	}

	name := w.funcNames[w.funcID(fn)]
	sig := fmt.Sprintf("fn %s(%s)", name, strings.Join(params, ", "))

	if ep != nil {
		outputs := w.outputGlobals()
		if len(outputs) > 1 {
			w.diag(DiagUnsupportedOp, "entry point %s has %d output interface variables, using the first", ep.Name, len(outputs))
		}
		if len(outputs) > 0 {
			g := outputs[0]
			return fmt.Sprintf("%s -> %s%s", sig, w.interfaceAttrs(g), w.typeName(g.Type)), nil
		}
	}
	if fn.Result != nil {
		return fmt.Sprintf("%s -> %s", sig, w.typeName(*fn.Result)), nil
	}
	return sig, nil
}

func (w *Writer) funcID(fn *ssir.Function) ssir.FuncID {
	for i := range w.module.Functions {
		if &w.module.Functions[i] == fn {
			return ssir.FuncID(i)
		}
	}
	return 0
}

func (w *Writer) inputGlobals() []*ssir.GlobalVar {
	var out []*ssir.GlobalVar
	for i := range w.module.Globals {
		if w.module.Globals[i].Space == ssir.SpaceInput {
			out = append(out, &w.module.Globals[i])
		}
	}
	return out
}

func (w *Writer) outputGlobals() []*ssir.GlobalVar {
	var out []*ssir.GlobalVar
	for i := range w.module.Globals {
		if w.module.Globals[i].Space == ssir.SpaceOutput {
			out = append(out, &w.module.Globals[i])
		}
	}
	return out
}

// interfaceAttrs renders the decoration of an interface variable,
// including a trailing space when non-empty.
func (w *Writer) interfaceAttrs(g *ssir.GlobalVar) string {
	var sb strings.Builder
	if g.Builtin != nil {
		fmt.Fprintf(&sb, "@builtin(%s) ", builtinValueName(*g.Builtin))
	}
	if g.Location != nil {
		fmt.Fprintf(&sb, "@location(%d) ", *g.Location)
		if g.Interp != nil {
			fmt.Fprintf(&sb, "@interpolate(%s) ", interpolationName(*g.Interp))
		}
	}
	if g.Invariant {
		sb.WriteString("@invariant ")
	}
	return sb.String()
}

// countUses builds the per-function use-count table driving `let`
// materialization.
func (w *Writer) countUses(fn *ssir.Function) {
	w.uses = make(map[ssir.ValueID]int)
	add := func(id ssir.ValueID) {
		if id != ssir.NoValue {
			w.uses[id]++
		}
	}
	for bi := range fn.Blocks {
		b := &fn.Blocks[bi]
		for _, phi := range b.Phis {
			for _, inc := range phi.Incoming {
				add(inc.Value)
			}
		}
		for _, inst := range b.Insts {
			opOperands(inst.Op, add)
		}
		switch t := b.Term.(type) {
		case ssir.TermBranchCond:
			add(t.Cond)
		case ssir.TermReturn:
			add(t.Value)
		}
	}
}

// opOperands calls fn for every value operand of an operation.
func opOperands(op ssir.Op, fn func(ssir.ValueID)) {
	switch o := op.(type) {
	case ssir.OpBinary:
		fn(o.LHS)
		fn(o.RHS)
	case ssir.OpUnary:
		fn(o.X)
	case ssir.OpCall:
		for _, a := range o.Args {
			fn(a)
		}
	case ssir.OpBuiltin:
		for _, a := range o.Args {
			fn(a)
		}
	case ssir.OpExtract:
		fn(o.Base)
	case ssir.OpAccess:
		fn(o.Base)
		fn(o.Index)
	case ssir.OpLoad:
		fn(o.Ptr)
	case ssir.OpStore:
		fn(o.Ptr)
		fn(o.Value)
	case ssir.OpCompose:
		for _, c := range o.Components {
			fn(c)
		}
	case ssir.OpSelect:
		fn(o.Cond)
		fn(o.True)
		fn(o.False)
	case ssir.OpBitcast:
		fn(o.X)
	case ssir.OpConvert:
		fn(o.X)
	case ssir.OpAtomic:
		fn(o.Ptr)
		fn(o.Value)
	case ssir.OpImageSample:
		fn(o.Image)
		fn(o.Sampler)
		fn(o.Coord)
		fn(o.Level)
	case ssir.OpImageGather:
		fn(o.Image)
		fn(o.Sampler)
		fn(o.Coord)
	case ssir.OpImageLoad:
		fn(o.Image)
		fn(o.Coord)
		fn(o.Level)
	case ssir.OpImageStore:
		fn(o.Image)
		fn(o.Coord)
		fn(o.Value)
	case ssir.OpImageSize:
		fn(o.Image)
		fn(o.Level)
	}
}

// sideEffect reports whether an operation must execute exactly once.
func sideEffect(op ssir.Op) bool {
	switch op.(type) {
	case ssir.OpCall, ssir.OpAtomic:
		return true
	default:
		return false
	}
}

// shouldBake reports whether an instruction's result is bound to a
// `let` rather than inlined at each use site.
func (w *Writer) shouldBake(inst *ssir.Inst) bool {
	if sideEffect(inst.Op) {
		return true
	}
	return w.uses[inst.Result] > 1
}

// emitBlock emits a basic block's instructions and follows its
// terminator, depth first. A visited bitmap prevents re-emission of
// natural successors.
func (w *Writer) emitBlock(id ssir.BlockID) {
	if int(id) >= len(w.fn.Blocks) || w.visited[id] {
		return
	}
	w.visited[id] = true
	b := &w.fn.Blocks[id]

	for ii := range b.Insts {
		inst := &b.Insts[ii]
		switch op := inst.Op.(type) {
		case ssir.OpStore:
			w.writeLine("%s = %s;", w.valueExpr(op.Ptr), w.valueExpr(op.Value))

		case ssir.OpImageStore:
			w.writeLine("textureStore(%s, %s, %s);", w.valueExpr(op.Image), w.valueExpr(op.Coord), w.valueExpr(op.Value))

		default:
			if inst.Result == ssir.NoValue {
				w.writeLine("%s;", w.instExpr(inst))
				continue
			}
			if w.shouldBake(inst) {
				// Render before registering the name so the defining
				// expression does not refer to itself.
				expr := w.instExpr(inst)
				name := w.namer.call(fmt.Sprintf("_l%d", inst.Result))
				w.baked[inst.Result] = name
				w.writeLine("let %s = %s;", name, expr)
			}
		}
	}

	w.emitTerminator(id, b.Term)
}

// emitTerminator reconstructs structured control flow from a block
// terminator.
func (w *Writer) emitTerminator(cur ssir.BlockID, term ssir.Terminator) {
	switch t := term.(type) {
	case ssir.TermBranch:
		w.emitPhiMoves(cur, t.Target)
		w.emitBlock(t.Target)

	case ssir.TermBranchCond:
		// Defer the merge block so neither arm swallows it.
		deferMerge := t.Merge != ssir.NoBlock && int(t.Merge) < len(w.fn.Blocks) && !w.visited[t.Merge]
		if deferMerge {
			w.visited[t.Merge] = true
		}

		w.writeLine("if (%s) {", w.valueExpr(t.Cond))
		w.pushIndent()
		w.emitPhiMoves(cur, t.True)
		w.emitBlock(t.True)
		w.popIndent()
		if t.False != t.Merge {
			w.writeLine("} else {")
			w.pushIndent()
			w.emitPhiMoves(cur, t.False)
			w.emitBlock(t.False)
			w.popIndent()
		}
		w.writeLine("}")

		if deferMerge {
			w.visited[t.Merge] = false
			w.emitBlock(t.Merge)
		}

	case ssir.TermReturn:
		if t.Value != ssir.NoValue {
			w.writeLine("return %s;", w.valueExpr(t.Value))
			return
		}
		if w.entry != nil {
			if outputs := w.outputGlobals(); len(outputs) > 0 {
				w.writeLine("return %s;", w.valueNames[outputs[0].ID])
				return
			}
		}
		w.writeLine("return;")

	case ssir.TermUnreachable:
		// Structural marker, nothing to emit.

	default:
		w.diags = append(w.diags, Diagnostic{
			Kind:    DiagUnsupportedOp,
			Message: fmt.Sprintf("block %d has unknown terminator", cur),
		})
	}
}

// emitPhiMoves assigns the phi variables of a branch target that take
// their value from the current block.
func (w *Writer) emitPhiMoves(from, to ssir.BlockID) {
	if int(to) >= len(w.fn.Blocks) {
		return
	}
	for _, phi := range w.fn.Blocks[to].Phis {
		for _, inc := range phi.Incoming {
			if inc.Pred == from {
				w.writeLine("%s = %s;", w.valueNames[phi.Result], w.valueExpr(inc.Value))
			}
		}
	}
}

// validateModule checks the cross-references a conversion relies on.
func validateModule(module *ssir.Module) error {
	for i, fn := range module.Functions {
		if len(fn.Blocks) == 0 {
			return errors.Wrapf(ErrInvalidInput, "function %d (%s) has no blocks", i, fn.Name)
		}
		for bi, b := range fn.Blocks {
			if b.Term == nil {
				return errors.Wrapf(ErrInvalidInput, "function %d (%s) block %d has no terminator", i, fn.Name, bi)
			}
		}
	}
	for _, ep := range module.EntryPoints {
		if int(ep.Function) >= len(module.Functions) {
			return errors.Wrapf(ErrInvalidInput, "entry point %s references function %d of %d", ep.Name, ep.Function, len(module.Functions))
		}
	}
	return nil
}
