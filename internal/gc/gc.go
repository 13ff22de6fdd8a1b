// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gc implements the generational copying collector described in
// §4.5: a fixed-size nursery evacuated by minor collections, and a
// growable old space evacuated to a fresh, possibly larger region by
// major collections. Both semispaces are modeled as value.Space budgets;
// the objects themselves are ordinary Go heap values linked by pointers,
// so "evacuation" means allocating a fresh *value.Object and rewriting
// every live pointer to it, with the original left behind as a FORWARD
// marker for any reference that hasn't been visited yet.
package gc

import "lambdanf/internal/value"

// defaults from §5: a 3 MiB nursery, old space initially twice that,
// words sized as 8 bytes to match the spec's word-addressed machine.
const (
	wordBytes        = 8
	DefaultNursery   = 3 * 1024 * 1024 / wordBytes
	DefaultOldFactor = 2
)

// Heap owns the nursery and the (possibly doubled) old-space buffers plus
// the remembered set and copy-stack worklist the write barrier and
// collector share. It implements value.Allocator.
type Heap struct {
	Nursery *value.Space
	Old     *value.Space
	oldAlt  *value.Space // alternate old-space region, grown on promotion

	remembered []*value.Object // old-space REFs whose target is young
	copyStack  []*value.Object // worklist of freshly evacuated copies

	minor bool // true while a collection in progress is a minor one
	into  *value.Space
}

// NewHeap allocates a heap with the default nursery and old-space sizes.
func NewHeap() *Heap {
	return NewHeapSize(DefaultNursery, DefaultNursery*DefaultOldFactor)
}

// NewHeapSize allocates a heap with the given nursery and initial
// old-space word budgets, for tests that want to force collections
// quickly.
func NewHeapSize(nursery, old int) *Heap {
	return &Heap{
		Nursery: &value.Space{Name: "nursery", Young: true, Capacity: nursery},
		Old:     &value.Space{Name: "old", Capacity: old},
		oldAlt:  &value.Space{Name: "old-alt", Capacity: old},
	}
}

// Alloc reserves a fresh object directly in the nursery. The caller must
// already have called Check with a budget large enough for this object.
func (h *Heap) Alloc(tag value.Tag, info int32, words []*value.Object) *value.Object {
	obj := &value.Object{Tag: tag, Info: info, Words: words, Gen: h.Nursery}
	if !tag.Dynamic() {
		obj.Size = int32(len(words) + 1) // header.size sentinel: 0 means dynamic
	}
	h.Nursery.Used += obj.WordSize()
	return obj
}

// Check is the heap check the backend makes before each let allocation
// (and the runtime helpers before theirs): if the
// nursery doesn't have need words of headroom, run a minor collection
// (promoting to a major one if old space is also tight) over ctx's roots
// before returning.
func (h *Heap) Check(ctx *value.Ctx, need int) {
	if h.Nursery.Headroom() >= need {
		return
	}
	h.collect(ctx)
	if h.Nursery.Headroom() < need {
		panic("gc: allocation too large for one heap check")
	}
}

// Update is the write barrier (§4.5): it rewrites thunk in place into
// REF→value, and if thunk is not young while value is, remembers thunk so
// the next minor collection can still find its (young) target.
func (h *Heap) Update(thunk, val *value.Object) {
	thunk.Tag = value.REF
	thunk.Code = nil
	thunk.Arity = 0
	thunk.Info = 0
	thunk.Words = []*value.Object{val}
	if !thunk.Gen.Young && val.Gen.Young {
		h.remember(thunk)
	}
}

func (h *Heap) remember(thunk *value.Object) {
	h.remembered = append(h.remembered, thunk)
}

// collect runs a minor collection, promoting to a major one itself if old
// space doesn't have a full nursery's worth of headroom (§4.5).
func (h *Heap) collect(ctx *value.Ctx) {
	if h.Old.Headroom() < h.Nursery.Capacity {
		h.majorCollect(ctx)
		return
	}
	h.minorCollect(ctx)
}

func (h *Heap) minorCollect(ctx *value.Ctx) {
	h.minor = true
	h.into = h.Old
	h.evacuateRoots(ctx)
	for _, thunk := range h.remembered {
		if thunk.Tag != value.REF {
			continue // updated again since being remembered; nothing to do
		}
		thunk.Words[0] = h.evacuate(thunk.Words[0])
	}
	h.drain()
	h.Nursery.Used = 0
	h.remembered = h.remembered[:0]
}

func (h *Heap) majorCollect(ctx *value.Ctx) {
	h.minor = false
	h.into = h.oldAlt
	h.into.Used = 0
	h.evacuateRoots(ctx)
	h.drain()
	if h.into.Used+h.Nursery.Capacity > h.into.Capacity {
		h.into.Capacity *= 2
	}
	h.Old, h.oldAlt = h.into, h.Old
	h.Nursery.Used = 0
	h.remembered = h.remembered[:0]
}

func (h *Heap) evacuateRoots(ctx *value.Ctx) {
	ctx.Self = h.evacuate(ctx.Self)
	for i, v := range ctx.DStk {
		ctx.DStk[i] = h.evacuate(v)
	}
}

// evacuate copies obj into h.into if it needs evacuating, returning the
// address live code should now use in its place. See §4.5.
func (h *Heap) evacuate(obj *value.Object) *value.Object {
	if obj == nil {
		return nil
	}
	if obj.Tag == value.FORWARD {
		return obj.Forward()
	}
	if h.minor && !obj.Gen.Young {
		return obj
	}
	switch obj.Tag {
	case value.REF:
		target := h.evacuate(obj.Words[0])
		obj.Words[0] = target
		return target
	default:
		cp := &value.Object{
			Tag:   obj.Tag,
			Size:  obj.Size,
			Arity: obj.Arity,
			Info:  obj.Info,
			Code:  obj.Code,
			Words: append([]*value.Object(nil), obj.Words...),
			Gen:   h.into,
		}
		h.into.Used += cp.WordSize()
		obj.SetForward(cp)
		h.copyStack = append(h.copyStack, cp)
		return cp
	}
}

// drain scans every freshly evacuated object's pointer slots, evacuating
// whatever they still reference, until the worklist runs dry.
func (h *Heap) drain() {
	for len(h.copyStack) > 0 {
		n := len(h.copyStack) - 1
		obj := h.copyStack[n]
		h.copyStack = h.copyStack[:n]
		for i, w := range obj.Words {
			obj.Words[i] = h.evacuate(w)
		}
	}
}
