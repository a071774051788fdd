// Package wgsl implements the WGSL front end: a lexer, a
// recursive-descent parser, and the AST they produce.
//
// The pipeline is:
//
//	source text -> Lexer -> []Token -> Parser -> *Module (AST)
//
// The parser is fault tolerant: syntax errors are recorded with their
// source position and parsing continues at the next declaration
// boundary, so one malformed construct does not hide the rest of the
// module. Parse returns the partial AST together with a non-nil error
// when anything was recorded.
//
// The AST is a strict tree: every node owns its children exclusively
// and nothing is shared between nodes. Identifier nodes carry a stable
// integer id assigned at parse time, which the resolve package uses to
// key its reference table.
package wgsl
