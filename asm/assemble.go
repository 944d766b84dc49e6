// Package asm implements the five-pass Pendragon assembler pipeline: lex,
// parse, semantic analysis, code-graph construction, and address
// resolution, producing a binary image the cpu package can load and run.
package asm

import (
	"io"

	"github.com/stephenwhippuk/pendragon/image"
)

// Assemble runs the full pipeline over source and returns the resolved
// data and code segments. Any diagnostic recorded during lexing, parsing,
// semantic analysis, or resolution is returned; callers should check
// diags.HasErrors() before trusting the returned segments.
func Assemble(source, filename string) (data []byte, code []byte, diags *Diagnostics) {
	parser := NewParser(source, filename)
	program := parser.Parse()
	diags = parser.Diagnostics()

	Analyze(program, diags)
	if diags.HasErrors() {
		return nil, nil, diags
	}

	graph := BuildCodeGraph(program)
	Resolve(graph, program, diags)
	if diags.HasErrors() {
		return nil, nil, diags
	}

	return EncodeData(graph), EncodeCode(graph), diags
}

// AssembleToImage assembles source and writes the resulting binary image
// to w under the given program name. It returns the accumulated
// diagnostics as an error if assembly failed.
func AssembleToImage(w io.Writer, source, filename, programName string) error {
	data, code, diags := Assemble(source, filename)
	if diags.HasErrors() {
		return diags
	}
	return image.Write(w, programName, data, code)
}
