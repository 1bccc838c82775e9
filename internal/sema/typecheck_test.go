package sema

import (
	"testing"

	"vela/internal/diag"
	"vela/internal/scope"
	"vela/internal/source"
	"vela/internal/types"
)

func newCheckerFixture() (*scope.Table, *diag.Bag) {
	table := scope.NewTable(nil, nil)
	return table, diag.NewBag(0)
}

func litInt(v int64) *Expr {
	return &Expr{Kind: ExprLiteral, Lit: 0 /* ast.LitInt */, IntVal: v}
}

func intInfo(table *scope.Table) types.TypeInfo {
	return types.TypeInfo{Type: table.Types.Builtins().Int, Value: types.ValueR}
}

func TestConvertImplicitSameTypeIsNoop(t *testing.T) {
	table, bag := newCheckerFixture()
	c := NewChecker(table, bag)

	e := &Expr{Kind: ExprLiteral, Info: intInfo(table)}
	got := c.convertImplicit(e, intInfo(table))
	if got != e {
		t.Fatalf("expected the same node back for an already-matching type")
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
}

func TestConvertImplicitInsertsDerefForReferenceSource(t *testing.T) {
	table, bag := newCheckerFixture()
	c := NewChecker(table, bag)

	refInt := table.Types.GetWithRef(table.Types.Builtins().Int)
	e := &Expr{Kind: ExprSymbolLiteral, Info: types.TypeInfo{Type: refInt, Value: types.ValueL}}

	got := c.convertImplicit(e, intInfo(table))
	if got.Kind != ExprDerefAs {
		t.Fatalf("expected ExprDerefAs, got %v", got.Kind)
	}
	if got.Operand != e {
		t.Fatalf("expected the deref to wrap the original node")
	}
	if !table.Types.Equal(got.Info.Type, table.Types.Builtins().Int) {
		t.Fatalf("expected the deref's result type to be int")
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
}

func TestConvertImplicitInsertsReferenceOfForValueSource(t *testing.T) {
	table, bag := newCheckerFixture()
	c := NewChecker(table, bag)

	refInt := table.Types.GetWithRef(table.Types.Builtins().Int)
	e := &Expr{Kind: ExprLiteral, Info: intInfo(table)}

	got := c.convertImplicit(e, types.TypeInfo{Type: refInt, Value: types.ValueR})
	if got.Kind != ExprReferenceOf {
		t.Fatalf("expected ExprReferenceOf, got %v", got.Kind)
	}
	if got.Operand != e {
		t.Fatalf("expected the reference-of to wrap the original node")
	}
}

func TestConvertImplicitUnrelatedTypesReportsCannotConvert(t *testing.T) {
	table, bag := newCheckerFixture()
	c := NewChecker(table, bag)

	e := &Expr{Kind: ExprLiteral, Info: types.TypeInfo{Type: table.Types.Builtins().String, Value: types.ValueR}}
	got := c.convertImplicit(e, intInfo(table))
	if got != e {
		t.Fatalf("convertImplicit should return the original node on failure")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.TypeCannotConvert {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TypeCannotConvert, got %v", bag.Items())
	}
}

func TestConvertImplicitRValueToLValueTargetReportsExpectedLValue(t *testing.T) {
	table, bag := newCheckerFixture()
	c := NewChecker(table, bag)

	e := &Expr{Kind: ExprLiteral, Info: intInfo(table)}
	got := c.convertImplicit(e, types.TypeInfo{Type: table.Types.Builtins().Int, Value: types.ValueL})
	if got != e {
		t.Fatalf("expected the original node back")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.TypeExpectedLValue {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TypeExpectedLValue, got %v", bag.Items())
	}
}

// declareFn declares a free function `name(params...) returnType` and
// returns its symbol.
func declareFn(t *testing.T, table *scope.Table, name string, params []types.TypeID, ret types.TypeID) scope.SymbolID {
	t.Helper()
	fnType := table.Types.RegisterFn(types.FnInfo{Params: params, Return: ret})
	sym := diag.Collect(diag.NewBag(0), table.DeclareSymbol(scope.Symbol{
		Name: table.Strings.Intern(name), Kind: scope.SymFunction, Category: scope.CatStatic,
		Scope: table.Root, Span: source.Span{Start: 1, End: 1}, Type: fnType, Flags: scope.FlagDefined,
	}))
	return sym
}

func TestCheckCallReportsArgumentCountMismatch(t *testing.T) {
	table, bag := newCheckerFixture()
	c := NewChecker(table, bag)
	fn := declareFn(t, table, "takesOne", []types.TypeID{table.Types.Builtins().Int}, table.Types.Builtins().Unit)

	call := &Expr{Kind: ExprStaticCall, Span: source.Span{Start: 1, End: 5}, Callee: fn, Args: nil}
	c.checkCall(call, nil)

	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.TypeArgumentCountMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TypeArgumentCountMismatch, got %v", bag.Items())
	}
}

func TestCheckCallConvertsArgumentsToParamTypes(t *testing.T) {
	table, bag := newCheckerFixture()
	c := NewChecker(table, bag)
	refInt := table.Types.GetWithRef(table.Types.Builtins().Int)
	fn := declareFn(t, table, "takesRef", []types.TypeID{refInt}, table.Types.Builtins().Unit)

	arg := &Expr{Kind: ExprLiteral, Info: intInfo(table)}
	call := &Expr{Kind: ExprStaticCall, Span: source.Span{Start: 1, End: 5}, Callee: fn, Args: []*Expr{arg}}

	got := c.checkCall(call, nil)
	if len(got.Args) != 1 || got.Args[0].Kind != ExprReferenceOf {
		t.Fatalf("expected the sole argument to be wrapped in ExprReferenceOf, got %+v", got.Args)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
}

// declareMethod declares an instance method `name(self, params...) returnType`
// on a struct whose self parameter has type selfType.
func declareMethod(t *testing.T, table *scope.Table, selfType, returnType types.TypeID, params []types.TypeID, dynDispatchable bool) scope.SymbolID {
	t.Helper()
	allParams := append([]types.TypeID{selfType}, params...)
	fnType := table.Types.RegisterFn(types.FnInfo{Params: allParams, Return: returnType})
	flags := scope.FlagDefined
	if dynDispatchable {
		flags |= scope.FlagDynDispatchable
	}
	sym := diag.Collect(diag.NewBag(0), table.DeclareSymbol(scope.Symbol{
		Name: table.Strings.Intern("method"), Kind: scope.SymFunction, Category: scope.CatInstance,
		Scope: table.Root, Span: source.Span{Start: 1, End: 1}, Type: fnType, Flags: flags,
	}))
	return sym
}

func TestCheckSelfParamRejectsValueReceiverForStrongPointerSelf(t *testing.T) {
	table, bag := newCheckerFixture()
	c := NewChecker(table, bag)
	_, structSym := declareVector2(t, table)
	structInfo := table.Symbols.Get(structSym)
	strongSelf := table.Types.GetWithStrongPtr(structInfo.Type)

	fn := declareMethod(t, table, strongSelf, table.Types.Builtins().Unit, nil, false)
	recv := &Expr{Kind: ExprSymbolLiteral, Info: types.TypeInfo{Type: structInfo.Type, Value: types.ValueL}}
	call := &Expr{Kind: ExprInstanceCall, Span: source.Span{Start: 1, End: 1}, Callee: fn, Receiver: recv}

	c.checkSelfParam(call)

	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.TypeMismatchedSelf {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TypeMismatchedSelf, got %v", bag.Items())
	}
}

func TestCheckSelfParamRejectsNonDynDispatchableOnDynReceiver(t *testing.T) {
	table, bag := newCheckerFixture()
	c := NewChecker(table, bag)
	_, structSym := declareVector2(t, table)
	structInfo := table.Symbols.Get(structSym)
	strongSelf := table.Types.GetWithStrongPtr(structInfo.Type)
	dynRecvType := table.Types.GetWithDynStrongPtr(structInfo.Type)

	fn := declareMethod(t, table, strongSelf, table.Types.Builtins().Unit, nil, false)
	recv := &Expr{Kind: ExprSymbolLiteral, Info: types.TypeInfo{Type: dynRecvType, Value: types.ValueR}}
	call := &Expr{Kind: ExprInstanceCall, Span: source.Span{Start: 1, End: 1}, Callee: fn, Receiver: recv}

	c.checkSelfParam(call)

	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.TypeMismatchedSelf {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TypeMismatchedSelf for a non-dyn-dispatchable method called through a dyn receiver, got %v", bag.Items())
	}
}

func TestCheckReturnFromVoidFunctionWithValueIsRejected(t *testing.T) {
	table, bag := newCheckerFixture()
	c := NewChecker(table, bag)
	ret := &Stmt{Kind: StmtReturn, Span: source.Span{Start: 1, End: 2}, Expr: &Expr{Kind: ExprLiteral, Info: intInfo(table)}}

	c.checkReturn(ret, FuncContext{IsVoid: true})

	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.TypeReturnFromVoidFunction {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TypeReturnFromVoidFunction, got %v", bag.Items())
	}
}

func TestCheckReturnMissingExpressionInNonVoidFunctionIsRejected(t *testing.T) {
	table, bag := newCheckerFixture()
	c := NewChecker(table, bag)
	ret := &Stmt{Kind: StmtReturn, Span: source.Span{Start: 1, End: 2}, Expr: nil}

	c.checkReturn(ret, FuncContext{IsVoid: false, ReturnType: table.Types.Builtins().Int})

	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.TypeMissingReturnExpression {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TypeMissingReturnExpression, got %v", bag.Items())
	}
}

func TestCheckReturnTraitByValueIsRejectedAsUnsized(t *testing.T) {
	table, bag := newCheckerFixture()
	c := NewChecker(table, bag)
	traitName := table.Strings.Intern("Drawable")
	traitType := table.Types.RegisterTrait(traitName, source.Span{Start: 1, End: 1})

	ret := &Stmt{
		Kind: StmtReturn, Span: source.Span{Start: 1, End: 2},
		Expr: &Expr{Kind: ExprLiteral, Info: types.TypeInfo{Type: traitType, Value: types.ValueR}},
	}
	c.checkReturn(ret, FuncContext{IsVoid: false, ReturnType: traitType})

	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.TypeUnsizedReturnExpression {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TypeUnsizedReturnExpression, got %v", bag.Items())
	}
}

func TestCheckReturnMatchingTypeProducesNoDiagnostics(t *testing.T) {
	table, bag := newCheckerFixture()
	c := NewChecker(table, bag)
	ret := &Stmt{Kind: StmtReturn, Span: source.Span{Start: 1, End: 2}, Expr: &Expr{Kind: ExprLiteral, Info: intInfo(table)}}

	c.checkReturn(ret, FuncContext{IsVoid: false, ReturnType: table.Types.Builtins().Int})

	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
}
