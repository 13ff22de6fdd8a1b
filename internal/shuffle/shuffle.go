// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shuffle implements the parallel-move algorithm for realigning
// a tail call's outgoing frame (§4.4): given a set of destination slots
// each naming the source slot its value should come from, it performs a
// "parallel copy with one scratch" schedule — every destination is
// written exactly once, every live cycle through the slots is broken by
// stashing a single value in a scratch, and the whole thing is specified
// independently of the evaluator so it can be tested on its own. The
// backend does not call it: it applies a call's arguments one at a time
// through rt.Apply instead of laying out a multi-argument frame.
package shuffle

// Src names where a value lives before a shuffle runs: either a numbered
// slot of the current data-stack frame, or a numbered slot of SELF's
// captured environment. Environment slots are read-only sources: nothing
// a shuffle performs ever targets SELF's environment in place, so they
// can never be part of a cycle.
type Src struct {
	Env   bool
	Index int
}

// SelfDest is the reserved Move.Dest value standing for "the new SELF",
// the one destination slot outside the data-stack's own numbering.
const SelfDest = -1

// Move says the value currently at Src belongs at the outgoing stack
// slot Dest (or, if Dest == SelfDest, in the new SELF).
type Move struct {
	Dest int
	Src  Src
}

// Plan is a full parallel-move specification for one tail call.
type Plan struct {
	Moves []Move
}

// Frame is where a shuffle reads and writes. T is the slot value type
// (a plain int in this package's tests, so the algorithm can be
// exercised without any heap machinery at all).
type Frame[T any] interface {
	ReadStack(slot int) T
	ReadEnv(slot int) T
	WriteStack(slot int, v T)
	WriteSelf(v T)
}

type status int

const (
	notStarted status = iota
	pending
	done
)

// Run executes p against f. Destinations are written in whatever order
// the DFS below discovers them; callers that need a specific physical
// stack-resize order should perform it before calling Run, since Run
// only ever addresses slots by the numbering in p, never by comparing
// against a frame size.
func Run[T any](p Plan, f Frame[T]) {
	destsOf := make(map[Src][]int, len(p.Moves))
	for _, m := range p.Moves {
		destsOf[m.Src] = append(destsOf[m.Src], m.Dest)
	}

	st := make(map[Src]status, len(destsOf))
	temp := make(map[Src]T, 1)

	read := func(s Src) T {
		if s.Env {
			return f.ReadEnv(s.Index)
		}
		return f.ReadStack(s.Index)
	}
	write := func(dest int, v T) {
		if dest == SelfDest {
			f.WriteSelf(v)
			return
		}
		f.WriteStack(dest, v)
	}

	var vacate func(s Src)
	vacate = func(s Src) {
		switch st[s] {
		case done:
			return
		case pending:
			// A cycle closes here: s would be overwritten before its
			// current value is ever read out, so stash it now.
			temp[s] = read(s)
			return
		}
		dests, ok := destsOf[s]
		if !ok || len(dests) == 0 {
			st[s] = done
			return
		}
		st[s] = pending
		for _, d := range dests {
			if d != SelfDest {
				vacate(Src{Index: d}) // d may itself be a source; clear it first
			}
		}
		val, stashed := temp[s]
		if !stashed {
			val = read(s)
		}
		for _, d := range dests {
			write(d, val)
		}
		st[s] = done
	}

	for s := range destsOf {
		vacate(s)
	}
}
