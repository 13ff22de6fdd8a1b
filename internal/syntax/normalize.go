// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import "lambdanf/internal/ir"

// Parse turns source text into A-normal-form IR rooted at a single
// zero-arity node (a thunk), per the evaluator's expectation that
// normalize seeds a top-level thunk. Unbound variables are rejected here,
// at parse time, as required by the grammar.
func Parse(src string) (*ir.Arena, *ir.Node, error) {
	e, err := parseProgram(src)
	if err != nil {
		return nil, nil, err
	}
	arena := ir.NewArena()
	b := &builder{arena: arena}
	root, err := b.buildNode(0, nil, e)
	if err != nil {
		return nil, nil, err
	}
	return arena, root, nil
}

// binding associates a surface name with the de Bruijn level assigned to
// it for as long as it stays in lexical scope.
type binding struct {
	name string
	lvl  int
}

type builder struct {
	arena *ir.Arena
	scope []binding
}

func (b *builder) lookup(name string) (int, bool) {
	for i := len(b.scope) - 1; i >= 0; i-- {
		if b.scope[i].name == name {
			return b.scope[i].lvl, true
		}
	}
	return 0, false
}

// buildNode normalizes one lambda (or thunk, if params is empty) into an
// ir.Node whose own bindings start at lvl. next the running level counter
// for this node's own lets resumes, after the params, at lvl+len(params).
func (b *builder) buildNode(lvl int, params []string, body expr) (*ir.Node, error) {
	n := b.arena.New()
	n.Lvl = lvl
	n.Arity = len(params)

	depth := len(b.scope)
	for i, p := range params {
		b.scope = append(b.scope, binding{name: p, lvl: lvl + i})
	}

	next := lvl + n.Arity
	var lets []*ir.Node
	head, args, err := b.buildTail(&next, &lets, body)

	b.scope = b.scope[:depth]
	if err != nil {
		return nil, err
	}
	n.Lets = lets
	n.Head = head
	n.Args = args
	return n, nil
}

// buildTail normalizes body into the (lets, head, args) triple that
// belongs in the node currently being built. *next is that node's own
// running level counter, bumped once per fresh let introduced.
func (b *builder) buildTail(next *int, lets *[]*ir.Node, body expr) (head int, args []int, err error) {
	switch e := body.(type) {
	case *varExpr:
		lvl, ok := b.lookup(e.name)
		if !ok {
			return 0, nil, &ParseError{Offset: e.offset, Msg: "unbound variable " + e.name}
		}
		return lvl, nil, nil

	case *lamExpr:
		lvl, err := b.materialize(next, lets, e)
		if err != nil {
			return 0, nil, err
		}
		return lvl, nil, nil

	case *appExpr:
		headLvl, err := b.atomic(next, lets, e.fun)
		if err != nil {
			return 0, nil, err
		}
		args = make([]int, 0, len(e.args))
		for _, a := range e.args {
			lvl, err := b.atomic(next, lets, a)
			if err != nil {
				return 0, nil, err
			}
			args = append(args, lvl)
		}
		return headLvl, args, nil

	default:
		panic("syntax: unknown expr type")
	}
}

// atomic returns the de Bruijn level of a variable standing for e's
// value, materializing e as a fresh anonymous let in *lets when e is not
// already a bare variable reference.
func (b *builder) atomic(next *int, lets *[]*ir.Node, e expr) (int, error) {
	if v, ok := e.(*varExpr); ok {
		lvl, ok := b.lookup(v.name)
		if !ok {
			return 0, &ParseError{Offset: v.offset, Msg: "unbound variable " + v.name}
		}
		return lvl, nil
	}
	return b.materialize(next, lets, e)
}

// materialize turns an arbitrary sub-expression (an App or a Lam; never a
// bare Var, handled by atomic above) into a new let-bound child node,
// appends it to *lets, and returns the level of the fresh binding.
func (b *builder) materialize(next *int, lets *[]*ir.Node, e expr) (int, error) {
	lvl := *next
	*next++

	var (
		child *ir.Node
		err   error
	)
	switch e := e.(type) {
	case *lamExpr:
		child, err = b.buildNode(lvl, e.params, e.body)
	default:
		child, err = b.buildNode(lvl, nil, e)
	}
	if err != nil {
		return 0, err
	}
	*lets = append(*lets, child)
	return lvl, nil
}
