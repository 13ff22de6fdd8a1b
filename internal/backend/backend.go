// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package backend compiles A-normal-form IR (package ir) into compiled
// closures (value.Blob) per §4.3's per-node code shape: allocate this
// node's lets, then force its head and apply it to its arguments in
// turn. §3.3's environment descriptors are computed ahead of time so
// every variable reference resolves to a constant slot index at compile
// time, never a runtime search.
package backend

import (
	"sort"

	"lambdanf/internal/ir"
	"lambdanf/internal/rt"
	"lambdanf/internal/value"
)

// refKind says which of a node's three address spaces a variable
// reference resolves into.
type refKind int

const (
	refUpval refKind = iota // a slot of SELF's captured environment
	refParam                // one of this node's own lambda parameters
	refLet                  // one of this node's own let bindings
)

type ref struct {
	kind  refKind
	index int
}

// childInfo is what a node's blob needs to know, at compile time, to
// allocate one of its let-bound children: the child's own arity and
// compiled body, plus where in the parent's frame each of the child's
// captured upvalues comes from.
type childInfo struct {
	arity      int
	parentRefs []ref
	blob       value.Blob
}

// compiler threads a memo table across a whole compilation so that
// computeUpvals, which is naturally defined by recursion into a node's
// own lets, is computed once per node rather than once per ancestor
// chain that reaches it.
type compiler struct {
	upvalMemo map[*ir.Node][]int
}

// Compile produces the top-level blob for root. root always has arity 0
// (package syntax seeds a zero-arity top-level thunk) and no upvalues
// of its own, since nothing encloses it.
func Compile(root *ir.Node) value.Blob {
	c := &compiler{upvalMemo: make(map[*ir.Node][]int)}
	return c.compileNode(root, nil)
}

// computeUpvals returns, in ascending order, every de Bruijn level below
// n.Lvl that n's own head/args or any of its lets (transitively) need
// from outside n itself — the "used" set of §3.3, propagated up through
// nested lets until it meets a binder.
func (c *compiler) computeUpvals(n *ir.Node) []int {
	if v, ok := c.upvalMemo[n]; ok {
		return v
	}
	needed := make(map[int]bool)
	if n.Head < n.Lvl {
		needed[n.Head] = true
	}
	for _, a := range n.Args {
		if a < n.Lvl {
			needed[a] = true
		}
	}
	for _, child := range n.Lets {
		for _, lvl := range c.computeUpvals(child) {
			if lvl < n.Lvl {
				needed[lvl] = true
			}
		}
	}
	out := make([]int, 0, len(needed))
	for lvl := range needed {
		out = append(out, lvl)
	}
	sort.Ints(out)
	c.upvalMemo[n] = out
	return out
}

// resolveLevel maps an absolute de Bruijn level referenced inside n to
// where n's own frame finds it: n's captured environment (upvals, laid
// out in the order computeUpvals returned), one of n's own parameters,
// or one of n's own lets.
func resolveLevel(n *ir.Node, upvals []int, level int) ref {
	if level < n.Lvl {
		idx := sort.SearchInts(upvals, level)
		return ref{kind: refUpval, index: idx}
	}
	if level < n.Lvl+n.Arity {
		return ref{kind: refParam, index: level - n.Lvl}
	}
	return ref{kind: refLet, index: level - (n.Lvl + n.Arity)}
}

// compileNode compiles n, whose own captured-environment layout is
// upvals (as computed by computeUpvals for n), into a Blob.
func (c *compiler) compileNode(n *ir.Node, upvals []int) value.Blob {
	children := make([]childInfo, len(n.Lets))
	for i, child := range n.Lets {
		childUpvals := c.computeUpvals(child)
		refs := make([]ref, len(childUpvals))
		for j, lvl := range childUpvals {
			refs[j] = resolveLevel(n, upvals, lvl)
		}
		children[i] = childInfo{
			arity:      child.Arity,
			parentRefs: refs,
			blob:       c.compileNode(child, childUpvals),
		}
	}

	headRef := resolveLevel(n, upvals, n.Head)
	argRefs := make([]ref, len(n.Args))
	for i, a := range n.Args {
		argRefs[i] = resolveLevel(n, upvals, a)
	}
	arity := n.Arity

	return func(ctx *value.Ctx, args []*value.Object) *value.Object {
		// §4.3 step 2: allocate locals. The whole live frame (incoming
		// args, SELF, and each let as it's built) lives as a suffix of
		// ctx.DStk for the duration, so GC triggered by any Check below
		// finds and relocates it in place (evacuateRoots scans all of
		// ctx.DStk); fetch always re-reads from ctx.DStk rather than a
		// cached copy, so it is never stale across a collection.
		base := len(ctx.DStk)
		for _, a := range args {
			ctx.Push(a)
		}
		ctx.Push(ctx.Self)

		fetch := func(r ref) *value.Object {
			switch r.kind {
			case refUpval:
				return ctx.DStk[base+arity].Words[r.index]
			case refParam:
				return ctx.DStk[base+r.index]
			default: // refLet
				return ctx.DStk[base+arity+1+r.index]
			}
		}

		for _, child := range children {
			ctx.Heap.Check(ctx, len(child.parentRefs)+1) // entry + upvalue words
			upWords := make([]*value.Object, len(child.parentRefs))
			for j, pr := range child.parentRefs {
				upWords[j] = fetch(pr)
			}
			var obj *value.Object
			if child.arity == 0 {
				obj = ctx.Heap.Alloc(value.THUNK, 0, upWords)
			} else {
				obj = ctx.Heap.Alloc(value.FUN, 0, upWords)
				obj.Arity = int32(child.arity)
			}
			obj.Code = child.blob
			ctx.Push(obj)
		}

		// §4.3 steps 3-4: shuffle for the tail call and jump. The
		// spec's multi-argument "jmp [SELF]" is realized here as
		// repeated single-argument application through rt.Apply,
		// exactly the primitive the quoter itself drives application
		// with (§4.7) — applying k args at once and applying them one
		// at a time are the same reduction, just traded for simplicity
		// over avoiding intermediate PAP allocation.
		result := rt.Force(ctx, fetch(headRef))
		for _, ar := range argRefs {
			result = rt.Apply(ctx, result, fetch(ar))
		}

		ctx.DStk = ctx.DStk[:base]
		return result
	}
}
