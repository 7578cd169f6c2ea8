// Command ruc runs the front end over a single source file: lexing,
// parsing, declaration analysis and tree validation, reporting every
// diagnostic it finds to stderr.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/6easy9/ruc"
)

// args mirrors the teacher's flag-struct-of-pointers shape: every
// field is filled in directly by the flag package, then readArgs
// turns the result into a context the rest of main can act on
// without re-touching package flag.
type args struct {
	input      *string
	keywords   *string
	astOnly    *bool
	dumpTree   *bool
	outputPath *string
}

func readArgs() *args {
	a := &args{
		input:      flag.String("input", "", "path to the source file to analyze (required)"),
		keywords:   flag.String("keywords", "", "path to a custom keyword manifest (defaults to the built-in one)"),
		astOnly:    flag.Bool("ast-only", false, "stop after analysis, printing diagnostics only"),
		dumpTree:   flag.Bool("dump-tree", false, "print the flat integer tree after a successful analysis"),
		outputPath: flag.String("output-path", "", "where to write -dump-tree output (defaults to stdout)"),
	}
	flag.Parse()
	return a
}

func main() {
	a := readArgs()
	if *a.input == "" {
		fmt.Fprintln(os.Stderr, "ruc: -input is required")
		flag.Usage()
		os.Exit(2)
	}

	src, err := os.ReadFile(*a.input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ruc: %v\n", err)
		os.Exit(1)
	}

	manifest := ""
	if *a.keywords != "" {
		kb, err := os.ReadFile(*a.keywords)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ruc: %v\n", err)
			os.Exit(1)
		}
		manifest = string(kb)
	}

	sink := ruc.NewCollectingSink()
	cfg := ruc.NewConfig()
	result, err := ruc.Analyze(src, *a.input, manifest, cfg, sink)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ruc: %v\n", err)
		os.Exit(1)
	}

	for _, d := range sink.Diagnostics {
		fmt.Fprintf(os.Stderr, "%s: %s: %v\n", *a.input, d.Kind, d)
	}

	if sink.HasErrors() {
		os.Exit(1)
	}
	if *a.astOnly {
		return
	}

	if *a.dumpTree {
		out := os.Stdout
		if *a.outputPath != "" {
			f, err := os.Create(*a.outputPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "ruc: %v\n", err)
				os.Exit(1)
			}
			defer f.Close()
			out = f
		}
		for i := 0; i < result.Tree.Len(); i++ {
			fmt.Fprintf(out, "%d\n", result.Tree.At(i))
		}
	}
}
