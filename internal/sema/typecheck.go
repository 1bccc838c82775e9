package sema

import (
	"vela/internal/diag"
	"vela/internal/scope"
	"vela/internal/source"
	"vela/internal/types"
)

// FuncContext carries the information a type-checking pass needs from
// the enclosing function: its declared return type and whether it is
// void (IsVoid), for the return-mismatch diagnostics.
type FuncContext struct {
	ReturnType types.TypeID
	IsVoid     bool
}

// Checker rebuilds a bound sema tree bottom-up, inserting implicit
// conversions and validating assignability, call shape, and return
// agreement. CreateTypeChecked never mutates a node; it returns either
// the receiver (nothing changed) or a freshly built one.
type Checker struct {
	Table *scope.Table
	bag   *diag.Bag
}

func NewChecker(table *scope.Table, bag *diag.Bag) *Checker {
	return &Checker{Table: table, bag: bag}
}

// CreateTypeChecked is the expression-level entry point. expected is the
// TypeInfo the surrounding context wants this expression converted to;
// pass e.Info to type-check in place without forcing a conversion (the
// statement-level callers that have no contextual target do this).
func (c *Checker) CreateTypeChecked(e *Expr, expected types.TypeInfo) *Expr {
	if e == nil {
		return nil
	}
	checked := c.typeCheckSelf(e)
	return c.convertImplicit(checked, expected)
}

// typeCheckSelf recurses into e's children and runs e's own local
// checks, without applying an outer conversion.
func (c *Checker) typeCheckSelf(e *Expr) *Expr {
	switch e.Kind {
	case ExprLiteral, ExprSizeof, ExprTypeInfoPtr, ExprVtablePtr:
		return e

	case ExprSymbolLiteral, ExprFieldRef:
		if e.Receiver != nil {
			recv := c.CreateTypeChecked(e.Receiver, e.Receiver.Info)
			if recv != e.Receiver {
				next := *e
				next.Receiver = recv
				return &next
			}
		}
		return e

	case ExprStaticCall:
		return c.checkCall(e, nil)

	case ExprInstanceCall:
		recv := c.CreateTypeChecked(e.Receiver, e.Receiver.Info)
		checked := c.checkCall(e, recv)
		return c.checkSelfParam(checked)

	case ExprUserBinary, ExprUserUnary:
		fn, ok := c.Table.Types.FnInfo(c.calleeType(e.Callee))
		var params []types.TypeID
		if ok {
			params = fn.Params
		}
		return c.convertArgs(e, params, nil)

	case ExprAnd, ExprOr:
		boolInfo := types.TypeInfo{Type: c.Table.Types.Builtins().Bool, Value: types.ValueR}
		lhs := c.CreateTypeChecked(e.Args[0], boolInfo)
		rhs := c.CreateTypeChecked(e.Args[1], boolInfo)
		if lhs != e.Args[0] || rhs != e.Args[1] {
			next := *e
			next.Args = []*Expr{lhs, rhs}
			return &next
		}
		return e

	case ExprLogicalNegation:
		boolInfo := types.TypeInfo{Type: c.Table.Types.Builtins().Bool, Value: types.ValueR}
		operand := c.CreateTypeChecked(e.Operand, boolInfo)
		if operand != e.Operand {
			next := *e
			next.Operand = operand
			return &next
		}
		return e

	case ExprAddressOf, ExprDerefAs, ExprCast, ExprBox, ExprUnbox, ExprLock:
		if e.Operand == nil {
			return e
		}
		operand := c.CreateTypeChecked(e.Operand, e.Operand.Info)
		if operand != e.Operand {
			next := *e
			next.Operand = operand
			return &next
		}
		return e

	case ExprStructConstruction:
		return c.checkStructConstruction(e)

	default:
		return e
	}
}

func (c *Checker) calleeType(sym scope.SymbolID) types.TypeID {
	s := c.Table.Symbols.Get(sym)
	if s == nil {
		return types.NoTypeID
	}
	return s.Type
}

// checkCall validates argument count against the callee's signature and
// converts each argument to its corresponding parameter type. recv is
// non-nil (already type-checked) for an instance call.
func (c *Checker) checkCall(e *Expr, recv *Expr) *Expr {
	fn, ok := c.Table.Types.FnInfo(c.calleeType(e.Callee))
	var params []types.TypeID
	if ok {
		params = fn.Params
		if sym := c.Table.Symbols.Get(e.Callee); sym != nil && sym.Category == scope.CatInstance && len(params) > 0 {
			params = params[1:] // drop the self slot; recv carries it separately
		}
	}
	checked := c.convertArgs(e, params, recv)
	if ok && len(e.Args) != len(params) {
		c.bag.Add(diag.NewError(diag.TypeArgumentCountMismatch, e.Span,
			"expected argument count does not match declaration"))
	}
	return checked
}

// convertArgs converts each argument to its positional expected type
// (when the counts agree; a mismatch is reported by the caller and
// arguments are left unconverted) and rebuilds the node if anything
// changed, including swapping in a re-checked receiver.
func (c *Checker) convertArgs(e *Expr, params []types.TypeID, recv *Expr) *Expr {
	changed := recv != nil && recv != e.Receiver
	args := e.Args
	if len(params) == len(e.Args) {
		newArgs := make([]*Expr, len(args))
		for i, a := range args {
			converted := c.CreateTypeChecked(a, types.TypeInfo{Type: params[i], Value: types.ValueR})
			newArgs[i] = converted
			if converted != a {
				changed = true
			}
		}
		args = newArgs
	} else {
		newArgs := make([]*Expr, len(args))
		for i, a := range args {
			converted := c.typeCheckSelf(a)
			newArgs[i] = converted
			if converted != a {
				changed = true
			}
		}
		args = newArgs
	}
	if !changed {
		return e
	}
	next := *e
	next.Args = args
	if recv != nil {
		next.Receiver = recv
	}
	return &next
}

// checkSelfParam validates that an instance call's receiver can satisfy
// the method's self parameter: a strong-pointer self cannot be satisfied
// by a plain value (the reverse is fine via autoref, so no conversion
// is inserted here — the back-end's EmitCopy/address-of handles it).
func (c *Checker) checkSelfParam(e *Expr) *Expr {
	fn, ok := c.Table.Types.FnInfo(c.calleeType(e.Callee))
	if !ok || len(fn.Params) == 0 || e.Receiver == nil {
		return e
	}
	selfType := fn.Params[0]
	if c.Table.Types.IsAnyStrongPtr(selfType) && !c.Table.Types.IsAnyStrongPtr(e.Receiver.Info.Type) {
		c.bag.Add(diag.NewError(diag.TypeMismatchedSelf, e.Span,
			"method requires a strong-pointer receiver"))
	}
	if sym := c.Table.Symbols.Get(e.Callee); sym != nil && c.Table.Types.IsDynStrongPtr(e.Receiver.Info.Type) {
		if sym.Flags&scope.FlagDynDispatchable == 0 {
			c.bag.Add(diag.NewError(diag.TypeMismatchedSelf, e.Span,
				"function is not dynamically dispatchable"))
		}
	}
	return e
}

// checkStructConstruction converts each field initializer to its
// declared field type.
func (c *Checker) checkStructConstruction(e *Expr) *Expr {
	fieldType := make(map[scope.SymbolID]types.TypeID, len(e.Fields))
	for _, init := range e.Fields {
		if fsym := c.Table.Symbols.Get(init.Field); fsym != nil {
			fieldType[init.Field] = fsym.Type
		}
	}
	changed := false
	newFields := make([]FieldInit, len(e.Fields))
	for i, init := range e.Fields {
		target := fieldType[init.Field]
		if !target.IsValid() {
			newFields[i] = init
			continue
		}
		converted := c.CreateTypeChecked(init.Value, types.TypeInfo{Type: target, Value: types.ValueR})
		newFields[i] = FieldInit{Field: init.Field, Value: converted}
		if converted != init.Value {
			changed = true
		}
	}
	if !changed {
		return e
	}
	next := *e
	next.Fields = newFields
	return &next
}

// convertImplicit implements S -> T per the implicit-conversion
// algorithm: value-kind check, unaliased-equality short circuit,
// reference adjustment, then a user-defined conversion operator lookup.
func (c *Checker) convertImplicit(e *Expr, target types.TypeInfo) *Expr {
	if e == nil || !target.Type.IsValid() {
		return e
	}
	in := c.Table.Types
	if target.Value == types.ValueL && e.Info.Value != types.ValueL {
		c.bag.Add(diag.NewError(diag.TypeExpectedLValue, e.Span, "expected an assignable expression"))
		return e
	}
	if in.Equal(e.Info.Type, target.Type) {
		return e
	}
	if in.IsReference(e.Info.Type) && in.Equal(in.GetWithoutRef(e.Info.Type), target.Type) {
		return &Expr{
			Kind: ExprDerefAs, Span: e.Span, Scope: e.Scope, Operand: e, Target: target.Type,
			Info: types.TypeInfo{Type: target.Type, Value: types.ValueL},
		}
	}
	if !in.IsReference(e.Info.Type) {
		if refTarget := in.GetWithoutRef(target.Type); in.IsReference(target.Type) && in.Equal(e.Info.Type, refTarget) {
			return &Expr{
				Kind: ExprReferenceOf, Span: e.Span, Scope: e.Scope, Operand: e, Target: target.Type,
				Info: types.TypeInfo{Type: target.Type, Value: types.ValueR},
			}
		}
	}
	if conv, ok := c.findConversionOperator(e.Info.Type, target.Type, false); ok {
		return &Expr{
			Kind: ExprConversionPlaceholder, Span: e.Span, Scope: e.Scope, Operand: e, Target: target.Type, Callee: conv,
			Info: types.TypeInfo{Type: target.Type, Value: types.ValueR},
		}
	}
	c.bag.Add(diag.NewError(diag.TypeCannotConvert, e.Span, "cannot convert to the expected type"))
	return e
}

// findConversionOperator looks up a user-defined conversion function
// declared on src's type converting to dst, via the same
// instance-method resolution path a `.` call uses; explicit
// additionally admits an explicit-only (`as`-only) conversion operator.
func (c *Checker) findConversionOperator(src, dst types.TypeID, explicit bool) (scope.SymbolID, bool) {
	names := []string{"operator->"}
	if explicit {
		names = append(names, "operator::as")
	}
	probe := diag.NewBag(0)
	for _, name := range names {
		id := c.Table.Strings.Intern(name)
		resolved := diag.Collect(probe, c.Table.ResolveInstanceSymbol(src, id, source.Span{}, scope.SymFunction.Mask(), scope.NoScopeID))
		if !resolved.IsValid() {
			continue
		}
		sym := c.Table.Symbols.Get(resolved)
		if sym == nil {
			continue
		}
		fn, ok := c.Table.Types.FnInfo(sym.Type)
		if ok && c.Table.Types.Equal(fn.Return, dst) {
			return resolved, true
		}
	}
	return scope.NoSymbolID, false
}

// CreateTypeCheckedStmt rebuilds a bound statement tree bottom-up,
// threading fn so return statements can be checked against the
// enclosing function's declared return type.
func (c *Checker) CreateTypeCheckedStmt(s *Stmt, fn FuncContext) *Stmt {
	if s == nil {
		return nil
	}
	switch s.Kind {
	case StmtBlock:
		return c.rebuildBlock(s, s.Children, fn)

	case StmtVar:
		if s.Init == nil {
			return s
		}
		sym := c.Table.Symbols.Get(s.Var)
		target := s.Init.Info
		if sym != nil {
			target = types.TypeInfo{Type: sym.Type, Value: types.ValueR}
		}
		init := c.CreateTypeChecked(s.Init, target)
		if init == s.Init {
			return s
		}
		next := *s
		next.Init = init
		return &next

	case StmtExprStmt:
		expr := c.CreateTypeChecked(s.Expr, s.Expr.Info)
		if expr == s.Expr {
			return s
		}
		next := *s
		next.Expr = expr
		return &next

	case StmtSimpleAssign:
		target := c.CreateTypeChecked(s.Target, s.Target.Info)
		targetType := assignmentTargetType(c.Table.Types, target.Info.Type)
		value := c.CreateTypeChecked(s.Value, types.TypeInfo{Type: targetType, Value: types.ValueR})
		if target == s.Target && value == s.Value {
			return s
		}
		next := *s
		next.Target, next.Value = target, value
		return &next

	case StmtCompoundAssign:
		target := c.CreateTypeChecked(s.Target, s.Target.Info)
		value := c.CreateTypeChecked(s.Value, s.Value.Info)
		if target == s.Target && value == s.Value {
			return s
		}
		next := *s
		next.Target, next.Value = target, value
		return &next

	case StmtIf:
		boolInfo := types.TypeInfo{Type: c.Table.Types.Builtins().Bool, Value: types.ValueR}
		arms := make([]IfArm, len(s.Arms))
		changed := false
		for i, arm := range s.Arms {
			cond := c.CreateTypeChecked(arm.Cond, boolInfo)
			body := c.rebuildStmtList(arm.Body, fn)
			arms[i] = IfArm{Cond: cond, Body: body}
			if cond != arm.Cond || !sameList(body, arm.Body) {
				changed = true
			}
		}
		elseBody := s.Else
		if s.Else != nil {
			elseBody = c.rebuildStmtList(s.Else, fn)
			if !sameList(elseBody, s.Else) {
				changed = true
			}
		}
		if !changed {
			return s
		}
		next := *s
		next.Arms, next.Else = arms, elseBody
		return &next

	case StmtWhile:
		boolInfo := types.TypeInfo{Type: c.Table.Types.Builtins().Bool, Value: types.ValueR}
		cond := c.CreateTypeChecked(s.Cond, boolInfo)
		body := c.rebuildStmtList(s.Body, fn)
		if cond == s.Cond && sameList(body, s.Body) {
			return s
		}
		next := *s
		next.Cond, next.Body = cond, body
		return &next

	case StmtReturn:
		return c.checkReturn(s, fn)

	case StmtAssert:
		boolInfo := types.TypeInfo{Type: c.Table.Types.Builtins().Bool, Value: types.ValueR}
		expr := c.CreateTypeChecked(s.Expr, boolInfo)
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

func (c *Checker) checkReturn(s *Stmt, fn FuncContext) *Stmt {
	if fn.IsVoid {
		if s.Expr != nil {
			c.bag.Add(diag.NewError(diag.TypeReturnFromVoidFunction, s.Span, "cannot return a value from a void function"))
		}
		return s
	}
	if s.Expr == nil {
		c.bag.Add(diag.NewError(diag.TypeMissingReturnExpression, s.Span, "missing return expression"))
		return s
	}
	if c.Table.Types.KindOf(c.Table.Types.Unalias(fn.ReturnType)) == types.KindTrait {
		c.bag.Add(diag.NewError(diag.TypeUnsizedReturnExpression, s.Span,
			"a trait type has no fixed size and cannot be returned by value"))
	}
	expr := c.CreateTypeChecked(s.Expr, types.TypeInfo{Type: fn.ReturnType, Value: types.ValueR})
	if expr == s.Expr {
		return s
	}
	next := *s
	next.Expr = expr
	return &next
}

// assignmentTargetType strips one reference layer from an lvalue's own
// type to get the type both sides of an assignment convert to.
func assignmentTargetType(in *types.Interner, lhsType types.TypeID) types.TypeID {
	if in.IsReference(lhsType) {
		return in.GetWithoutRef(lhsType)
	}
	return lhsType
}

func (c *Checker) rebuildBlock(s *Stmt, children []*Stmt, fn FuncContext) *Stmt {
	rebuilt := c.rebuildStmtList(children, fn)
	if sameList(rebuilt, children) {
		return s
	}
	next := *s
	next.Children = rebuilt
	return &next
}

func (c *Checker) rebuildStmtList(stmts []*Stmt, fn FuncContext) []*Stmt {
	out := make([]*Stmt, len(stmts))
	for i, st := range stmts {
		out[i] = c.CreateTypeCheckedStmt(st, fn)
	}
	return out
}

func sameList(a, b []*Stmt) bool {
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
