// Package wgslc provides a pure Go WGSL compiler front end.
//
// wgslc parses WGSL (WebGPU Shading Language) source code, resolves
// names and binding metadata over the AST, and can re-emit an
// externally lowered shader module (SSIR) back to WGSL text.
//
// The package provides a simple, high-level API as well as lower-level
// access to the individual stages.
//
// Example usage:
//
//	source := `
//	@vertex
//	fn main(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4<f32> {
//	    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
//	}
//	`
//	module, resolver, err := wgslc.Analyze(source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, ep := range resolver.EntryPoints() {
//	    fmt.Println(ep.Name, ep.Stage)
//	}
//
// For WGSL re-emission from a lowered module, use the wgslout package:
//
//	text, info, err := wgslout.Convert(ssirModule, wgslout.Options{})
package wgslc

import (
	"fmt"

	"github.com/gogpu/wgslc/resolve"
	"github.com/gogpu/wgslc/wgsl"
)

// Parse parses WGSL source code to AST (Abstract Syntax Tree).
//
// This is the first stage of compilation. The AST represents the
// syntactic structure of the shader but carries no semantic
// information. On a syntax error the partial AST is returned together
// with the error; wgsl.Parser retains the full error list.
func Parse(source string) (*wgsl.Module, error) {
	// Tokenize
	lexer := wgsl.NewLexer(source)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, fmt.Errorf("tokenization error: %w", err)
	}

	// Parse to AST
	parser := wgsl.NewParser(tokens)
	module, err := parser.Parse()
	if err != nil {
		return module, fmt.Errorf("parse error: %w", err)
	}

	return module, nil
}

// Resolve builds a symbol resolver over a parsed module.
//
// The resolver binds every identifier to its declaration, classifies
// entry points, and computes binding metadata and per-entry-point
// reachability. It indexes the given AST, which must outlive it.
func Resolve(module *wgsl.Module) (*resolve.Resolver, error) {
	return resolve.Build(module)
}

// Analyze parses WGSL source and resolves it in one step.
//
// On a parse error the partial module is still resolved so reflection
// queries work over whatever was recovered, and the parse error is
// returned alongside the results.
func Analyze(source string) (*wgsl.Module, *resolve.Resolver, error) {
	module, parseErr := Parse(source)
	if module == nil {
		return nil, nil, parseErr
	}
	resolver, err := resolve.Build(module)
	if err != nil {
		return module, nil, err
	}
	return module, resolver, parseErr
}
