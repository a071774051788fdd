// Command wgslc is the WGSL front-end CLI.
//
// Usage:
//
//	wgslc [options] <input>
//
// Examples:
//
//	wgslc shader.wgsl            # Parse and resolve, report errors
//	wgslc -ast shader.wgsl       # Dump the AST
//	wgslc -reflect shader.wgsl   # Dump entry points and bindings
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gogpu/wgslc"
	"github.com/gogpu/wgslc/resolve"
	"github.com/gogpu/wgslc/wgsl"
)

var (
	dumpAST     = flag.Bool("ast", false, "dump the parsed AST")
	dumpReflect = flag.Bool("reflect", false, "dump entry points and their bindings")
	version     = flag.Bool("version", false, "print version")
)

const wgslcVersion = "0.1.0-dev"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("wgslc version %s\n", wgslcVersion)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}

	inputPath := args[0]
	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	module, resolver, err := wgslc.Analyze(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", inputPath, err)
		if module == nil {
			os.Exit(1)
		}
		// Partial results are still printable below.
	}

	if *dumpAST {
		fmt.Print(wgsl.DebugModuleString(module))
	}
	if *dumpReflect && resolver != nil {
		printReflection(resolver)
	}
	if !*dumpAST && !*dumpReflect && err == nil {
		fmt.Printf("%s: ok (%d entry points, %d symbols)\n", inputPath, len(resolver.EntryPoints()), len(resolver.AllSymbols()))
	}
	if err != nil {
		os.Exit(1)
	}
}

func printReflection(r *resolve.Resolver) {
	for _, ep := range r.EntryPoints() {
		fmt.Printf("entry %s (%s)\n", ep.Name, ep.Stage)
		for _, sym := range r.EntryPointBindingVars(ep.Name) {
			fmt.Printf("  binding %s @group(%d) @binding(%d)", sym.Name, sym.Group, sym.Binding)
			if sym.MinBindingSize > 0 {
				fmt.Printf(" min_size=%d", sym.MinBindingSize)
			}
			fmt.Println()
		}
		switch ep.Stage {
		case resolve.StageVertex:
			for _, in := range r.VertexInputs(ep.Name) {
				fmt.Printf("  input @location(%d) %dx%s (%d bytes)\n", in.Location, in.ComponentCount, in.NumericType, in.ByteSize)
			}
		case resolve.StageFragment:
			for _, out := range r.FragmentOutputs(ep.Name) {
				fmt.Printf("  output @location(%d) %dx%s\n", out.Location, out.ComponentCount, out.NumericType)
			}
		}
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: wgslc [options] <input.wgsl>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  wgslc shader.wgsl           Parse and resolve\n")
	fmt.Fprintf(os.Stderr, "  wgslc -ast shader.wgsl      Dump the AST\n")
	fmt.Fprintf(os.Stderr, "  wgslc -reflect shader.wgsl  Dump reflection info\n")
}
