package sema

import (
	"vela/internal/scope"
	"vela/internal/types"
)

// MonoObligation names one generic symbol instance a lowered tree still
// references by way of a placeholder type argument — a type parameter
// that hasn't itself been substituted by the caller's own instantiation
// walk yet. The driver re-instantiates these to fixpoint.
type MonoObligation struct {
	Generic scope.SymbolID
	Args    []types.TypeID
}

// CollectMonos walks e and reports every call whose callee is a
// monomorphized instance still carrying a placeholder type argument.
// Fully concrete instances (no KindTypeParam among their TypeArgs)
// are already final and aren't reported.
func CollectMonos(table *scope.Table, e *Expr, out []MonoObligation) []MonoObligation {
	if e == nil {
		return out
	}
	if sym := table.Symbols.Get(e.Callee); sym != nil && sym.InstantiatedFrom.IsValid() {
		if hasPlaceholderArg(table.Types, sym.TypeArgs) {
			out = append(out, MonoObligation{Generic: sym.InstantiatedFrom, Args: sym.TypeArgs})
		}
	}
	out = CollectMonos(table, e.Receiver, out)
	out = CollectMonos(table, e.Operand, out)
	for _, a := range e.Args {
		out = CollectMonos(table, a, out)
	}
	for _, f := range e.Fields {
		out = CollectMonos(table, f.Value, out)
	}
	return out
}

// CollectMonosStmt extends CollectMonos across a statement tree.
func CollectMonosStmt(table *scope.Table, s *Stmt, out []MonoObligation) []MonoObligation {
	if s == nil {
		return out
	}
	out = CollectMonos(table, s.Expr, out)
	out = CollectMonos(table, s.Init, out)
	out = CollectMonos(table, s.Target, out)
	out = CollectMonos(table, s.Value, out)
	out = CollectMonos(table, s.Dst, out)
	out = CollectMonos(table, s.Src, out)
	out = CollectMonos(table, s.Cond, out)
	for _, child := range s.Children {
		out = CollectMonosStmt(table, child, out)
	}
	for _, arm := range s.Arms {
		out = CollectMonos(table, arm.Cond, out)
		for _, b := range arm.Body {
			out = CollectMonosStmt(table, b, out)
		}
	}
	for _, b := range s.Else {
		out = CollectMonosStmt(table, b, out)
	}
	for _, b := range s.Body {
		out = CollectMonosStmt(table, b, out)
	}
	return out
}

func hasPlaceholderArg(in *types.Interner, args []types.TypeID) bool {
	for _, a := range args {
		if in.KindOf(in.StripAllModifiers(a)) == types.KindTypeParam {
			return true
		}
	}
	return false
}
