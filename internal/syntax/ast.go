// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// expr is the surface-syntax AST produced by the parser, before scope
// resolution and A-normalization turn it into ir.Node. It exists only
// inside this package.
type expr interface {
	pos() int
}

type varExpr struct {
	name   string
	offset int
}

func (e *varExpr) pos() int { return e.offset }

type lamExpr struct {
	params []string
	body   expr
	offset int
}

func (e *lamExpr) pos() int { return e.offset }

type appExpr struct {
	fun    expr
	args   []expr
	offset int
}

func (e *appExpr) pos() int { return e.offset }
