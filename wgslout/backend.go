// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgslout

import (
	"github.com/pkg/errors"

	"github.com/gogpu/wgslc/ssir"
)

// Error kinds distinguishable by errors.Is.
var (
	// ErrInvalidInput indicates a nil or malformed module.
	ErrInvalidInput = errors.New("wgslout: invalid input")

	// ErrUnsupported indicates a construct WGSL cannot express.
	ErrUnsupported = errors.New("wgslout: unsupported feature")

	// ErrInternal indicates inconsistent IR that should not occur.
	ErrInternal = errors.New("wgslout: internal error")
)

// Options configures WGSL code generation.
type Options struct {
	// PreserveNames uses original debug names where available instead
	// of synthesized _gN/_pN/_lN names.
	PreserveNames bool
}

// DefaultOptions returns the default generation options.
func DefaultOptions() Options {
	return Options{}
}

// DiagnosticKind classifies a conversion diagnostic.
type DiagnosticKind uint8

const (
	// DiagUnsupportedType marks a type rendered as a placeholder.
	DiagUnsupportedType DiagnosticKind = iota

	// DiagUnsupportedOp marks an opcode rendered as a placeholder.
	DiagUnsupportedOp

	// DiagWidenedInt marks an 8/16/64-bit integer widened to 32 bits.
	DiagWidenedInt
)

// String returns the diagnostic kind label.
func (k DiagnosticKind) String() string {
	switch k {
	case DiagUnsupportedType:
		return "unsupported-type"
	case DiagUnsupportedOp:
		return "unsupported-op"
	case DiagWidenedInt:
		return "widened-int"
	default:
		return "unknown"
	}
}

// Diagnostic records a construct the converter could not express
// faithfully. The output still contains a clearly marked placeholder
// or approximation at the corresponding position.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
}

// Info contains information about the generated WGSL output.
type Info struct {
	// EntryPointNames maps original entry point names to emitted names.
	EntryPointNames map[string]string

	// Diagnostics lists every degraded construct, in emission order.
	Diagnostics []Diagnostic
}

// Convert generates WGSL source text from an SSIR module.
// The module is read-only; unsupported constructs degrade to marked
// placeholders and are reported through Info.Diagnostics rather than
// failing the whole conversion.
func Convert(module *ssir.Module, options Options) (string, Info, error) {
	if module == nil {
		return "", Info{}, errors.Wrap(ErrInvalidInput, "nil module")
	}
	if err := validateModule(module); err != nil {
		return "", Info{}, err
	}

	w := newWriter(module, &options)
	if err := w.writeModule(); err != nil {
		return "", Info{}, err
	}

	info := Info{
		EntryPointNames: w.entryPointNames,
		Diagnostics:     w.diags,
	}
	return w.String(), info, nil
}
