// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgslout

import (
	"fmt"
	"strings"

	"github.com/gogpu/wgslc/ssir"
)

// valueDef records where a value id is defined.
type valueDef struct {
	constant *ssir.Constant
	global   *ssir.GlobalVar
	inst     *ssir.Inst
	phi      *ssir.Phi
	typ      ssir.TypeID
	isParam  bool
	isLocal  bool
}

// Writer generates WGSL source code from SSIR.
type Writer struct {
	module  *ssir.Module
	options *Options

	// Output buffer
	out strings.Builder

	// Current indentation level
	indent int

	// Name management
	namer       *namer
	typeNames   map[ssir.TypeID]string
	memberNames map[memberKey]string
	valueNames  map[ssir.ValueID]string
	funcNames   map[ssir.FuncID]string

	// Module-wide value definitions (constants and globals); function
	// values are layered on top in fnDefs during function writing.
	moduleDefs map[ssir.ValueID]valueDef

	// Function context (set during function writing)
	fn      *ssir.Function
	fnDefs  map[ssir.ValueID]valueDef
	uses    map[ssir.ValueID]int
	baked   map[ssir.ValueID]string
	visited []bool
	entry   *ssir.EntryPoint

	// Output tracking
	entryPointNames map[string]string
	diags           []Diagnostic

	unknownTypes int
}

// memberKey identifies a struct member for name lookup.
type memberKey struct {
	typ   ssir.TypeID
	index uint32
}

// namer generates unique identifiers.
type namer struct {
	usedNames map[string]struct{}
	counter   uint32
}

func newNamer() *namer {
	return &namer{
		usedNames: make(map[string]struct{}),
	}
}

// call generates a unique name based on the given base.
func (n *namer) call(base string) string {
	if _, used := n.usedNames[base]; !used {
		n.usedNames[base] = struct{}{}
		return base
	}
	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", base, n.counter)
		if _, used := n.usedNames[candidate]; !used {
			n.usedNames[candidate] = struct{}{}
			return candidate
		}
	}
}

// newWriter creates a new WGSL writer.
func newWriter(module *ssir.Module, options *Options) *Writer {
	return &Writer{
		module:          module,
		options:         options,
		namer:           newNamer(),
		typeNames:       make(map[ssir.TypeID]string),
		memberNames:     make(map[memberKey]string),
		valueNames:      make(map[ssir.ValueID]string),
		funcNames:       make(map[ssir.FuncID]string),
		moduleDefs:      make(map[ssir.ValueID]valueDef),
		entryPointNames: make(map[string]string),
	}
}

// String returns the generated WGSL source code.
func (w *Writer) String() string {
	return w.out.String()
}

// diag records a degraded construct.
func (w *Writer) diag(kind DiagnosticKind, format string, args ...any) {
	w.diags = append(w.diags, Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
}

// writeModule generates WGSL for the entire module, in phase order:
// names, structs, override constants, ordinary constants, globals,
// functions.
func (w *Writer) writeModule() error {
	w.registerNames()

	if err := w.writeStructs(); err != nil {
		return err
	}
	w.writeConstants()
	w.writeGlobals()
	return w.writeFunctions()
}

// pickName chooses the debug name when preservation is on and a name
// exists, otherwise a synthesized prefix+id name.
func (w *Writer) pickName(debugName, prefix string, id uint32) string {
	if w.options.PreserveNames && debugName != "" {
		return w.namer.call(debugName)
	}
	return w.namer.call(fmt.Sprintf("%s%d", prefix, id))
}

// registerNames assigns a printable name to every id in the module.
// Synthesized names are unique by construction; preserved debug names
// go through the namer to resolve collisions.
func (w *Writer) registerNames() {
	for id := range w.module.Types {
		t := &w.module.Types[id]
		st, ok := t.Inner.(ssir.StructType)
		if !ok {
			continue
		}
		w.typeNames[ssir.TypeID(id)] = w.pickName(t.Name, "_S", uint32(id))
		for mi, m := range st.Members {
			key := memberKey{typ: ssir.TypeID(id), index: uint32(mi)}
			if m.Name != "" {
				w.memberNames[key] = m.Name
			}
		}
	}

	for i := range w.module.Constants {
		c := &w.module.Constants[i]
		w.valueNames[c.ID] = w.pickName(c.Name, "_c", uint32(c.ID))
		w.moduleDefs[c.ID] = valueDef{constant: c, typ: c.Type}
	}

	for i := range w.module.Globals {
		g := &w.module.Globals[i]
		w.valueNames[g.ID] = w.pickName(g.Name, "_g", uint32(g.ID))
		w.moduleDefs[g.ID] = valueDef{global: g, typ: g.Type}
	}

	epNames := make(map[ssir.FuncID]string)
	for _, ep := range w.module.EntryPoints {
		if ep.Name != "" {
			epNames[ep.Function] = ep.Name
		}
	}
	for id := range w.module.Functions {
		fn := &w.module.Functions[id]
		debugName := fn.Name
		if name, ok := epNames[ssir.FuncID(id)]; ok {
			debugName = name
		}
		var name string
		if debugName != "" {
			name = w.namer.call(debugName)
		} else {
			name = w.namer.call(fmt.Sprintf("_f%d", id))
		}
		w.funcNames[ssir.FuncID(id)] = name

		for i := range fn.Params {
			p := &fn.Params[i]
			w.valueNames[p.ID] = w.pickName(p.Name, "_p", uint32(p.ID))
		}
		for i := range fn.Locals {
			l := &fn.Locals[i]
			w.valueNames[l.ID] = w.pickName(l.Name, "_l", uint32(l.ID))
		}
	}

	for _, ep := range w.module.EntryPoints {
		w.entryPointNames[ep.Name] = w.funcNames[ep.Function]
	}
}

// memberName returns the emitted name of a struct member, falling back
// to a positional placeholder when the debug name did not survive.
func (w *Writer) memberName(typ ssir.TypeID, index uint32) string {
	if name, ok := w.memberNames[memberKey{typ: typ, index: index}]; ok {
		return name
	}
	return fmt.Sprintf("member%d", index)
}

// writeStructs emits every struct type definition.
func (w *Writer) writeStructs() error {
	for id := range w.module.Types {
		st, ok := w.module.Types[id].Inner.(ssir.StructType)
		if !ok {
			continue
		}
		w.writeLine("struct %s {", w.typeNames[ssir.TypeID(id)])
		w.pushIndent()
		for mi, m := range st.Members {
			attrs := w.bindingAttrs(m.Binding)
			w.writeLine("%s%s: %s,", attrs, w.memberName(ssir.TypeID(id), uint32(mi)), w.typeName(m.Type))
		}
		w.popIndent()
		w.writeLine("}")
		w.writeLine("")
	}
	return nil
}

// writeConstants emits specialization constants with their @id
// attribute, then named ordinary constants. Anonymous constants are
// inlined at use sites instead.
func (w *Writer) writeConstants() {
	for i := range w.module.Constants {
		c := &w.module.Constants[i]
		if c.SpecID == nil {
			continue
		}
		w.writeLine("@id(%d) override %s: %s = %s;", *c.SpecID, w.valueNames[c.ID], w.typeName(c.Type), w.constExpr(c))
	}
	for i := range w.module.Constants {
		c := &w.module.Constants[i]
		if c.SpecID != nil || c.Name == "" {
			continue
		}
		w.writeLine("const %s: %s = %s;", w.valueNames[c.ID], w.typeName(c.Type), w.constExpr(c))
	}
	if len(w.module.Constants) > 0 {
		w.writeLine("")
	}
}

// writeGlobals emits every global variable except pipeline interface
// variables, which become entry-point parameters and return values.
func (w *Writer) writeGlobals() {
	wrote := false
	for i := range w.module.Globals {
		g := &w.module.Globals[i]
		if g.Space == ssir.SpaceInput || g.Space == ssir.SpaceOutput {
			continue
		}
		wrote = true

		var sb strings.Builder
		if g.Binding != nil {
			fmt.Fprintf(&sb, "@group(%d) @binding(%d) ", g.Binding.Group, g.Binding.Binding)
		}
		sb.WriteString("var")
		if space := addressSpaceName(g.Space); space != "" {
			fmt.Fprintf(&sb, "<%s>", space)
		}
		fmt.Fprintf(&sb, " %s: %s", w.valueNames[g.ID], w.typeName(g.Type))
		if g.Init != nil {
			fmt.Fprintf(&sb, " = %s", w.constExpr(&w.module.Constants[*g.Init]))
		}
		sb.WriteString(";")
		w.writeLine("%s", sb.String())
	}
	if wrote {
		w.writeLine("")
	}
}

// addressSpaceName returns the var<...> qualifier for an address
// space, empty for spaces WGSL leaves implicit.
func addressSpaceName(space ssir.AddressSpace) string {
	switch space {
	case ssir.SpacePrivate:
		return "private"
	case ssir.SpaceWorkgroup:
		return "workgroup"
	case ssir.SpaceUniform:
		return "uniform"
	case ssir.SpaceStorage:
		return "storage, read_write"
	default:
		return ""
	}
}

// bindingAttrs renders the attributes for an interface binding,
// including a trailing space when non-empty.
func (w *Writer) bindingAttrs(b ssir.Binding) string {
	switch bind := b.(type) {
	case ssir.BuiltinBinding:
		return fmt.Sprintf("@builtin(%s) ", builtinValueName(bind.Builtin))
	case ssir.LocationBinding:
		var sb strings.Builder
		fmt.Fprintf(&sb, "@location(%d) ", bind.Location)
		if bind.Interp != nil {
			fmt.Fprintf(&sb, "@interpolate(%s) ", interpolationName(*bind.Interp))
		}
		return sb.String()
	default:
		return ""
	}
}

// builtinValueName maps builtin interface values to WGSL names.
func builtinValueName(b ssir.BuiltinValue) string {
	switch b {
	case ssir.BuiltinPosition:
		return "position"
	case ssir.BuiltinVertexIndex:
		return "vertex_index"
	case ssir.BuiltinInstanceIndex:
		return "instance_index"
	case ssir.BuiltinFrontFacing:
		return "front_facing"
	case ssir.BuiltinFragDepth:
		return "frag_depth"
	case ssir.BuiltinSampleIndex:
		return "sample_index"
	case ssir.BuiltinSampleMask:
		return "sample_mask"
	case ssir.BuiltinLocalInvocationID:
		return "local_invocation_id"
	case ssir.BuiltinLocalInvocationIndex:
		return "local_invocation_index"
	case ssir.BuiltinGlobalInvocationID:
		return "global_invocation_id"
	case ssir.BuiltinWorkgroupID:
		return "workgroup_id"
	case ssir.BuiltinNumWorkgroups:
		return "num_workgroups"
	default:
		return "position"
	}
}

// interpolationName renders an interpolation setting.
func interpolationName(interp ssir.Interpolation) string {
	var kind string
	switch interp.Kind {
	case ssir.InterpolationFlat:
		kind = "flat"
	case ssir.InterpolationLinear:
		kind = "linear"
	default:
		kind = "perspective"
	}
	switch interp.Sampling {
	case ssir.SamplingCentroid:
		return kind + ", centroid"
	case ssir.SamplingSample:
		return kind + ", sample"
	default:
		return kind
	}
}

// Output helpers

//nolint:goprintffuncname
func (w *Writer) write(format string, args ...any) {
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
}

//nolint:goprintffuncname
func (w *Writer) writeLine(format string, args ...any) {
	w.writeIndent()
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

func (w *Writer) pushIndent() {
	w.indent++
}

func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}
