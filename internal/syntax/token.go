// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// tokenKind enumerates the lexical categories of the surface grammar.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokLambda
	tokDot
	tokLParen
	tokRParen
)

type token struct {
	kind   tokenKind
	text   string // identifier text, for tokIdent
	offset int     // byte offset of the token's first byte
}
