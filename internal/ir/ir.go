// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ir defines the A-normal-form intermediate representation that
// the surface parser builds and the backend consumes.
//
// A Node represents
//
//	λ x1 ... xa . let y1=e1; ...; yl=el in h a1 ... ak
//
// Every argument position (head and args) is a de Bruijn level: a variable
// index counted from the outermost binder of the whole term. Levels are
// stable under substitution of sub-terms, which is what lets the backend
// assign environment slots once, at compile time, without renumbering.
package ir

// Node is one A-normalized binding group. It is always either a lambda
// (Arity > 0) or a thunk (Arity == 0), followed by a sequence of lets and
// a single tail application.
type Node struct {
	Lvl   int // de Bruijn level at which this node's own bindings start
	Arity int // number of lambdas bound here; 0 means a thunk

	Lets []*Node // nested node for each let-bound value, in order

	Head int   // de Bruijn level of the application head (always a variable)
	Args []int // de Bruijn levels of the application arguments, in order
}

// Depth returns the number of de Bruijn levels visible inside this node's
// own lets and tail application: Lvl + Arity + len(Lets).
func (n *Node) Depth() int {
	return n.Lvl + n.Arity + len(n.Lets)
}

// Arena bump-allocates Nodes. It is the IR's only owner: nodes are never
// freed individually, only released wholesale once code emission is done.
type Arena struct {
	nodes []Node
}

// NewArena returns an empty arena with room for a modest program.
func NewArena() *Arena {
	return &Arena{nodes: make([]Node, 0, 64)}
}

// New allocates a fresh zeroed Node in the arena and returns a pointer to it.
// When the arena is full, New grows it through Reserve, which copies the
// existing nodes into a new backing array: pointers returned by earlier
// calls still reach valid nodes, but those are the old copies, no longer
// the arena's own storage.
func (a *Arena) New() *Node {
	if len(a.nodes) == cap(a.nodes) {
		a.Reserve(len(a.nodes) + 1)
	}
	a.nodes = a.nodes[:len(a.nodes)+1]
	n := &a.nodes[len(a.nodes)-1]
	*n = Node{}
	return n
}

// Reserve grows the arena's backing storage to hold at least n nodes total,
// copying existing nodes into the new storage. Call this before taking any
// pointers you intend to keep across further New calls, or prefer sizing
// the arena once up front via NewArenaSize.
func (a *Arena) Reserve(n int) {
	if n <= cap(a.nodes) {
		return
	}
	grown := make([]Node, len(a.nodes), n)
	copy(grown, a.nodes)
	a.nodes = grown
}

// NewArenaSize returns an arena pre-sized to hold n nodes without
// reallocating, so that pointers returned by New remain the arena's own
// storage while up to n nodes are allocated. (syntax.Parse uses NewArena
// instead.)
func NewArenaSize(n int) *Arena {
	return &Arena{nodes: make([]Node, 0, n)}
}

// Release drops the arena's backing storage. Any Node pointers obtained
// from it become invalid; callers must have finished code emission first.
func (a *Arena) Release() {
	a.nodes = nil
}

// Len reports how many nodes have been allocated.
func (a *Arena) Len() int { return len(a.nodes) }
