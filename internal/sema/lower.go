package sema

import (
	"fmt"

	"vela/internal/ast"
	"vela/internal/diag"
	"vela/internal/scope"
	"vela/internal/source"
	"vela/internal/trace"
	"vela/internal/types"
)

// Lowering reduces a type-checked sema tree to the restricted statement
// surface CreateLowered's callers (the control-flow analyzer, the
// back-end) consume: block-end markers, labels, jumps, returns, exits,
// expression-statements, var-statements, simple assignments, and
// copy/drop glue. Every other statement kind is rewritten away.
//
// Lowering never rejects a tree: the symbols it declares (fresh labels,
// compound-assignment temporaries) and resolves (the strong_ptr_new /
// strong_ptr_value / weak_ptr_lock runtime helpers) cannot fail on a
// tree that already passed type-checking, but the table's declare/
// resolve calls still return Diagnosed[T] uniformly, so bag collects
// whatever they produce rather than discarding it silently.
type Lowering struct {
	Table  *scope.Table
	bag    *diag.Bag
	labels int
}

func NewLowering(table *scope.Table, bag *diag.Bag) *Lowering {
	return &Lowering{Table: table, bag: bag}
}

// traceRewrite reports that a statement-level rewrite fired, using the
// lowering's table's Tracer (trace.Nop by default, so this costs nothing
// unless a caller installed a real Tracer on the table).
func (lw *Lowering) traceRewrite(name string, span source.Span) {
	lw.Table.Tracer.Emit(trace.Event{
		Kind: "point", Scope: trace.ScopeDetail, Name: "lower." + name,
		Detail: fmt.Sprintf("span=%d-%d", span.Start, span.End),
	})
}

// newLabel declares a fresh, uniquely named label symbol in sc; the
// name is never user-visible, it exists only so the symbol table's
// general-purpose redefinition bookkeeping works uniformly for labels
// the same way it does for every other kind.
func (lw *Lowering) newLabel(sc scope.ScopeID, span source.Span) scope.SymbolID {
	lw.labels++
	name := lw.Table.Strings.Intern(fmt.Sprintf(".L%d", lw.labels))
	return diag.Collect(lw.bag, lw.Table.DeclareSymbol(scope.Symbol{
		Name: name, Kind: scope.SymLabel, Category: scope.CatStatic,
		Scope: sc, Span: span, Flags: scope.FlagDefined,
	}))
}

func label(span source.Span, sc scope.ScopeID, l scope.SymbolID) *Stmt {
	return &Stmt{Kind: StmtLabel, Span: span, Scope: sc, Label: l}
}

func jump(span source.Span, sc scope.ScopeID, l scope.SymbolID) *Stmt {
	return &Stmt{Kind: StmtNormalJump, Span: span, Scope: sc, Label: l}
}

func condJump(span source.Span, sc scope.ScopeID, cond *Expr, l scope.SymbolID) *Stmt {
	return &Stmt{Kind: StmtConditionalJump, Span: span, Scope: sc, Expr: cond, Label: l}
}

func group(span source.Span, sc scope.ScopeID, stmts ...*Stmt) *Stmt {
	return &Stmt{Kind: StmtGroup, Span: span, Scope: sc, Children: flattenGroups(stmts)}
}

// flattenGroups inlines any StmtGroup child so a group never nests
// another group one level down — CreateLowered keeps group contents
// flat by construction, but callers building a group from already
// lowered fragments route through here defensively.
func flattenGroups(stmts []*Stmt) []*Stmt {
	out := make([]*Stmt, 0, len(stmts))
	for _, s := range stmts {
		if s == nil {
			continue
		}
		if s.Kind == StmtGroup {
			out = append(out, s.Children...)
			continue
		}
		out = append(out, s)
	}
	return out
}

// CreateLowered rebuilds e, lowering box/unbox/lock into static calls
// and user operators into static calls; everything else carries its
// already-lowered children.
func (lw *Lowering) CreateLowered(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ExprBox:
		return lw.lowerOperandCall(e, "strong_ptr_new")
	case ExprUnbox:
		return lw.lowerOperandCall(e, "strong_ptr_value")
	case ExprLock:
		name := "weak_ptr_lock"
		if lw.Table.Types.IsDynStrongPtr(e.Info.Type) {
			name = "weak_ptr_lock_dyn"
		}
		return lw.lowerOperandCall(e, name)

	case ExprCast, ExprConversionPlaceholder:
		// The type checker keeps an ExprCast as a cast node (it checks
		// only the operand), and no pass turns it into a conversion
		// call; lowering leaves the node in place and only recurses
		// into the operand.
		operand := lw.CreateLowered(e.Operand)
		if operand == e.Operand {
			return e
		}
		next := *e
		next.Operand = operand
		return &next

	case ExprUserBinary, ExprUserUnary:
		args := lw.lowerExprs(e.Args)
		recv := lw.CreateLowered(e.Receiver)
		kind := ExprStaticCall
		if recv != nil {
			kind = ExprInstanceCall
		}
		if sameExprs(args, e.Args) && recv == e.Receiver && kind == e.Kind {
			return e
		}
		next := *e
		next.Kind, next.Args, next.Receiver = kind, args, recv
		return &next

	case ExprStaticCall, ExprInstanceCall:
		args := lw.lowerExprs(e.Args)
		recv := lw.CreateLowered(e.Receiver)
		if sameExprs(args, e.Args) && recv == e.Receiver {
			return e
		}
		next := *e
		next.Args, next.Receiver = args, recv
		return &next

	case ExprFieldRef, ExprSymbolLiteral:
		recv := lw.CreateLowered(e.Receiver)
		if recv == e.Receiver {
			return e
		}
		next := *e
		next.Receiver = recv
		return &next

	case ExprAnd, ExprOr, ExprLogicalNegation, ExprAddressOf, ExprDerefAs, ExprSizeof, ExprReferenceOf:
		if e.Operand == nil && len(e.Args) == 0 {
			return e
		}
		operand := lw.CreateLowered(e.Operand)
		args := lw.lowerExprs(e.Args)
		if operand == e.Operand && sameExprs(args, e.Args) {
			return e
		}
		next := *e
		next.Operand, next.Args = operand, args
		return &next

	case ExprStructConstruction:
		changed := false
		fields := make([]FieldInit, len(e.Fields))
		for i, f := range e.Fields {
			v := lw.CreateLowered(f.Value)
			fields[i] = FieldInit{Field: f.Field, Value: v}
			if v != f.Value {
				changed = true
			}
		}
		if !changed {
			return e
		}
		next := *e
		next.Fields = fields
		return &next

	default:
		return e
	}
}

func (lw *Lowering) lowerOperandCall(e *Expr, fnName string) *Expr {
	operand := lw.CreateLowered(e.Operand)
	callee := lw.findRuntimeFn(fnName)
	return &Expr{
		Kind: ExprStaticCall, Span: e.Span, Scope: e.Scope, Info: e.Info,
		Callee: callee, Args: []*Expr{operand},
	}
}

// findRuntimeFn resolves one of the compiler-synthesized runtime
// helpers (strong_ptr_new, strong_ptr_value, weak_ptr_lock[_dyn]) by
// name in the root scope, where the front-end is expected to have
// declared them as ordinary static functions.
func (lw *Lowering) findRuntimeFn(name string) scope.SymbolID {
	id := lw.Table.Strings.Intern(name)
	return diag.Collect(lw.bag, lw.Table.ResolveStaticSymbol(
		ast.Simple(id, source.Span{}), lw.Table.Root, lw.Table.Root, scope.SymFunction.Mask()))
}

func (lw *Lowering) lowerExprs(in []*Expr) []*Expr {
	if in == nil {
		return nil
	}
	out := make([]*Expr, len(in))
	changed := false
	for i, a := range in {
		out[i] = lw.CreateLowered(a)
		if out[i] != a {
			changed = true
		}
	}
	if !changed {
		return in
	}
	return out
}

func sameExprs(a, b []*Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// CreateLoweredStmt rebuilds s into the restricted statement surface.
// Desugarings that need fresh control-flow (if/while/compound-assign/
// assert) always return a *Stmt whose Kind is StmtGroup; callers
// that flatten a statement list (CreateLoweredBlock) inline it.
func (lw *Lowering) CreateLoweredStmt(s *Stmt) *Stmt {
	if s == nil {
		return nil
	}
	switch s.Kind {
	case StmtBlock:
		children := lw.CreateLoweredBlock(s.Children)
		end := &Stmt{Kind: StmtBlockEnd, Span: s.Span, Scope: s.Scope, BlockScope: s.Scope}
		return group(s.Span, s.Scope, append(append([]*Stmt{}, children...), end)...)

	case StmtExprStmt:
		expr := lw.CreateLowered(s.Expr)
		if expr == s.Expr {
			return s
		}
		next := *s
		next.Expr = expr
		return &next

	case StmtVar:
		init := lw.CreateLowered(s.Init)
		if init == s.Init {
			return s
		}
		next := *s
		next.Init = init
		return &next

	case StmtSimpleAssign:
		target, value := lw.CreateLowered(s.Target), lw.CreateLowered(s.Value)
		if target == s.Target && value == s.Value {
			return s
		}
		next := *s
		next.Target, next.Value = target, value
		return &next

	case StmtCompoundAssign:
		return lw.lowerCompoundAssign(s)

	case StmtIf:
		return lw.lowerIf(s)

	case StmtWhile:
		return lw.lowerWhile(s)

	case StmtAssert:
		return lw.lowerAssert(s)

	case StmtReturn:
		expr := lw.CreateLowered(s.Expr)
		if expr == s.Expr {
			return s
		}
		next := *s
		next.Expr = expr
		return &next

	default:
		return s
	}
}

// CreateLoweredBlock lowers each statement and flattens any resulting
// group in place, producing the flat sequence §4.4 describes.
func (lw *Lowering) CreateLoweredBlock(stmts []*Stmt) []*Stmt {
	out := make([]*Stmt, 0, len(stmts))
	for _, s := range stmts {
		lowered := lw.CreateLoweredStmt(s)
		if lowered.Kind == StmtGroup {
			out = append(out, lowered.Children...)
			continue
		}
		out = append(out, lowered)
	}
	return out
}

// lowerIf implements the if/elif/else desugaring: gotoif ¬c0 L0; b0;
// goto Lend; L0: gotoif ¬c1 L1; b1; goto Lend; ...; Lend:
func (lw *Lowering) lowerIf(s *Stmt) *Stmt {
	lw.traceRewrite("if", s.Span)
	lend := lw.newLabel(s.Scope, s.Span)
	var out []*Stmt
	for i, arm := range s.Arms {
		cond := lw.CreateLowered(arm.Cond)
		body := lw.CreateLoweredBlock(arm.Body)
		isLast := i == len(s.Arms)-1 && s.Else == nil
		var next scope.SymbolID
		if !isLast {
			next = lw.newLabel(s.Scope, s.Span)
		} else {
			next = lend
		}
		out = append(out, condJump(arm.Cond.Span, s.Scope, negate(cond), next))
		out = append(out, body...)
		if !isLast {
			out = append(out, jump(s.Span, s.Scope, lend))
			out = append(out, label(s.Span, s.Scope, next))
		}
	}
	if s.Else != nil {
		out = append(out, lw.CreateLoweredBlock(s.Else)...)
	}
	out = append(out, label(s.Span, s.Scope, lend))
	return group(s.Span, s.Scope, out...)
}

// lowerWhile implements: goto Lcont; Lbegin: b; Lcont: gotoif c Lbegin.
func (lw *Lowering) lowerWhile(s *Stmt) *Stmt {
	lw.traceRewrite("while", s.Span)
	lbegin := lw.newLabel(s.Scope, s.Span)
	lcont := lw.newLabel(s.Scope, s.Span)
	body := lw.CreateLoweredBlock(s.Body)
	cond := lw.CreateLowered(s.Cond)
	out := []*Stmt{
		jump(s.Span, s.Scope, lcont),
		label(s.Span, s.Scope, lbegin),
	}
	out = append(out, body...)
	out = append(out, label(s.Span, s.Scope, lcont))
	out = append(out, condJump(s.Span, s.Scope, cond, lbegin))
	return group(s.Span, s.Scope, out...)
}

// lowerAssert implements: assert e -> if ¬e { exit }.
func (lw *Lowering) lowerAssert(s *Stmt) *Stmt {
	lw.traceRewrite("assert", s.Span)
	lend := lw.newLabel(s.Scope, s.Span)
	cond := lw.CreateLowered(s.Expr)
	out := []*Stmt{
		condJump(s.Span, s.Scope, negate(cond), lend),
		{Kind: StmtExit, Span: s.Span, Scope: s.Scope},
		label(s.Span, s.Scope, lend),
	}
	return group(s.Span, s.Scope, out...)
}

// lowerCompoundAssign implements the temp-capture-then-rewrite
// desugaring: a pure static var ref (possibly dereferenced) rewrites in
// place as `lhs = lhs op rhs`. A field access `recv.f` captures recv
// once into a temporary (a ref temp if recv is already an L-value, a
// value temp plus a ref temp otherwise) so the receiver's side effects,
// if any, fire exactly once.
func (lw *Lowering) lowerCompoundAssign(s *Stmt) *Stmt {
	lw.traceRewrite("compound_assign", s.Span)
	op := s.Compound
	value := lw.CreateLowered(s.Value)

	if s.Target.Kind != ExprFieldRef || s.Target.Receiver == nil {
		target := lw.CreateLowered(s.Target)
		combined := lw.callOperator(op, s.Span, s.Scope, target, value)
		return group(s.Span, s.Scope, &Stmt{
			Kind: StmtSimpleAssign, Span: s.Span, Scope: s.Scope, Target: target, Value: combined,
		})
	}

	recv := lw.CreateLowered(s.Target.Receiver)
	var stmts []*Stmt
	base := recv
	if recv.Info.Value != types.ValueL {
		valSym := lw.newTempVar(s.Scope, s.Span, recv.Info.Type)
		stmts = append(stmts, &Stmt{Kind: StmtVar, Span: s.Span, Scope: s.Scope, Var: valSym, Init: recv})
		base = symbolRef(s.Span, s.Scope, valSym, types.TypeInfo{Type: recv.Info.Type, Value: types.ValueL})
	}
	refType := lw.Table.Types.GetWithRef(recv.Info.Type)
	refSym := lw.newTempVar(s.Scope, s.Span, refType)
	refOf := &Expr{Kind: ExprReferenceOf, Span: base.Span, Scope: s.Scope, Operand: base, Target: refType,
		Info: types.TypeInfo{Type: refType, Value: types.ValueR}}
	stmts = append(stmts, &Stmt{Kind: StmtVar, Span: s.Span, Scope: s.Scope, Var: refSym, Init: refOf})
	refTarget := symbolRef(s.Span, s.Scope, refSym, types.TypeInfo{Type: refType, Value: types.ValueL})

	fieldTarget := &Expr{
		Kind: ExprFieldRef, Span: s.Target.Span, Scope: s.Scope, Info: s.Target.Info,
		Symbol: s.Target.Symbol, Receiver: refTarget,
	}
	combined := lw.callOperator(op, s.Span, s.Scope, fieldTarget, value)
	stmts = append(stmts, &Stmt{
		Kind: StmtSimpleAssign, Span: s.Span, Scope: s.Scope, Target: fieldTarget, Value: combined,
	})
	return group(s.Span, s.Scope, stmts...)
}

func (lw *Lowering) callOperator(op scope.SymbolID, span source.Span, sc scope.ScopeID, lhs, rhs *Expr) *Expr {
	info := lhs.Info
	if sym := lw.Table.Symbols.Get(op); sym != nil {
		if fn, ok := lw.Table.Types.FnInfo(sym.Type); ok {
			info = types.TypeInfo{Type: fn.Return, Value: types.ValueR}
		}
	}
	return &Expr{Kind: ExprStaticCall, Span: span, Scope: sc, Info: info, Callee: op, Args: []*Expr{lhs, rhs}}
}

// newTempVar declares a fresh compiler-introduced local and returns its
// symbol; callers immediately emit a StmtVar to initialize it.
func (lw *Lowering) newTempVar(sc scope.ScopeID, span source.Span, ty types.TypeID) scope.SymbolID {
	lw.labels++
	name := lw.Table.Strings.Intern(fmt.Sprintf(".t%d", lw.labels))
	return diag.Collect(lw.bag, lw.Table.DeclareSymbol(scope.Symbol{
		Name: name, Kind: scope.SymLocal, Category: scope.CatStatic,
		Scope: sc, Span: span, Type: ty, Flags: scope.FlagDefined,
	}))
}

func symbolRef(span source.Span, sc scope.ScopeID, sym scope.SymbolID, info types.TypeInfo) *Expr {
	return &Expr{Kind: ExprSymbolLiteral, Span: span, Scope: sc, Symbol: sym, Info: info}
}

// negate wraps cond in a logical-negation node. cond may itself still
// be an ExprAnd/ExprOr: short-circuit evaluation of those is left as an
// expression-level node rather than hoisted into statement-level jumps,
// since the emitter already branches on any boolean sub-expression via
// CreateCondBr and doing it again here would just duplicate that control
// flow one layer up.
func negate(cond *Expr) *Expr {
	return &Expr{Kind: ExprLogicalNegation, Span: cond.Span, Scope: cond.Scope, Operand: cond, Info: cond.Info}
}

