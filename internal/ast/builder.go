package ast

import "vela/internal/source"

// Hints provides arena capacity hints for NewBuilder.
type Hints struct{ Files, Items, Stmts, Exprs, Types, Params, TypeParams uint }

// Builder owns every arena needed to assemble a syntax tree by hand, the
// way this repo's tests construct fixtures: there is no lexer or parser
// here, only the tree types a front end would populate.
type Builder struct {
	Files      *Files
	Items      *Items
	Stmts      *Stmts
	Exprs      *Exprs
	Types      *TypeExprs
	Params     *Params
	TypeParams *TypeParams

	Strings *source.Interner
}

// NewBuilder creates a Builder with sensible default capacities for any
// zero-valued Hints field, sharing stringsInterner (or a fresh one if nil)
// across every file built from it.
func NewBuilder(hints Hints, stringsInterner *source.Interner) *Builder {
	def := func(v, d uint) uint {
		if v == 0 {
			return d
		}
		return v
	}
	hints.Files = def(hints.Files, 8)
	hints.Items = def(hints.Items, 64)
	hints.Stmts = def(hints.Stmts, 128)
	hints.Exprs = def(hints.Exprs, 128)
	hints.Types = def(hints.Types, 64)
	hints.Params = def(hints.Params, 32)
	hints.TypeParams = def(hints.TypeParams, 16)

	if stringsInterner == nil {
		stringsInterner = source.NewInterner()
	}
	return &Builder{
		Files:      NewFiles(hints.Files),
		Items:      NewItems(hints.Items),
		Stmts:      NewStmts(hints.Stmts),
		Exprs:      NewExprs(hints.Exprs),
		Types:      NewTypeExprs(hints.Types),
		Params:     NewParams(hints.Params),
		TypeParams: NewTypeParams(hints.TypeParams),
		Strings:    stringsInterner,
	}
}

// Ident interns s and returns its StringID, a small convenience for
// hand-built test fixtures.
func (b *Builder) Ident(s string) source.StringID { return b.Strings.Intern(s) }
