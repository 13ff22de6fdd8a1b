// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command lambdanf parses an untyped lambda calculus term, reduces it
// to β-normal form under the evaluation machine in internal/rt and
// internal/backend, and prints the result.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"lambdanf/internal/backend"
	"lambdanf/internal/gc"
	"lambdanf/internal/quote"
	"lambdanf/internal/syntax"
	"lambdanf/internal/value"
)

const defaultProgram = `λ x. x`

var (
	verbose  = flag.Bool("v", false, "log each pipeline stage (parse, compile, normalize) to stderr")
	nursery  = flag.Int("nursery", 0, "nursery capacity in words (0 uses the runtime default)")
	oldSpace = flag.Int("oldspace", 0, "old-space capacity in words (0 uses the runtime default)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] [term]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	log.SetFlags(0)
	log.SetPrefix("lambdanf: ")

	src := defaultProgram
	if flag.NArg() > 0 {
		src = flag.Arg(0)
	}

	out, err := run(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lambdanf: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}

func logf(format string, args ...any) {
	if *verbose {
		log.Printf(format, args...)
	}
}

// run is abort-safe: runtime-fatal conditions (blackhole divergence,
// allocation too large for one heap check, adjacent update frames) are
// reported as panics by the packages underneath and converted here into
// the single error path §7 calls for.
func run(src string) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	logf("parsing %q", src)
	_, root, perr := syntax.Parse(src)
	if perr != nil {
		return "", perr
	}

	logf("compiling")
	blob := backend.Compile(root)

	var heap *gc.Heap
	if *nursery > 0 || *oldSpace > 0 {
		n, o := *nursery, *oldSpace
		if n == 0 {
			n = gc.DefaultNursery
		}
		if o == 0 {
			o = gc.DefaultNursery * gc.DefaultOldFactor
		}
		heap = gc.NewHeapSize(n, o)
	} else {
		heap = gc.NewHeap()
	}
	ctx := &value.Ctx{Heap: heap}

	logf("normalizing")
	buf := quote.Normalize(ctx, blob)
	out := quote.Pretty(buf)
	logf("normal form: %s", out)
	return out, nil
}
