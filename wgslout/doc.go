// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package wgslout re-emits an SSIR shader module as WGSL source text.
//
// The conversion runs in fixed phases: name assignment, struct
// emission, constant emission, global emission, function emission.
// Control flow is reconstructed structurally from block terminators,
// and values are materialized as `let` bindings when they have side
// effects or more than one use. Constructs WGSL cannot express degrade
// to marked placeholders reported through Info.Diagnostics; only a nil
// or structurally broken module fails the conversion outright.
//
// The converter assumes structured input control flow: every branch
// target is reachable only through its designated predecessor, and
// conditional branches carry their merge block. Irreducible control
// flow is not supported.
package wgslout
