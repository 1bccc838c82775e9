package sema

import (
	"testing"

	"vela/internal/diag"
	"vela/internal/scope"
	"vela/internal/source"
	"vela/internal/types"
)

func newLoweringFixture() (*scope.Table, *diag.Bag, scope.ScopeID) {
	table := scope.NewTable(nil, nil)
	bag := diag.NewBag(0)
	sc := table.NewScope(scope.KindBlock, table.Root, scope.Owner{}, "")
	return table, bag, sc
}

func boolLit(table *scope.Table, sc scope.ScopeID, v bool) *Expr {
	return &Expr{
		Kind: ExprLiteral, Scope: sc, BoolVal: v,
		Info: types.TypeInfo{Type: table.Types.Builtins().Bool, Value: types.ValueR},
	}
}

func exprStmt(sc scope.ScopeID, e *Expr) *Stmt {
	return &Stmt{Kind: StmtExprStmt, Scope: sc, Expr: e}
}

func TestLowerIfSingleArmNoElseSharesLastLabelWithEnd(t *testing.T) {
	table, bag, sc := newLoweringFixture()
	lw := NewLowering(table, bag)

	cond := boolLit(table, sc, true)
	body := []*Stmt{exprStmt(sc, boolLit(table, sc, true))}
	ifStmt := &Stmt{Kind: StmtIf, Scope: sc, Arms: []IfArm{{Cond: cond, Body: body}}}

	got := lw.lowerIf(ifStmt)
	if got.Kind != StmtGroup {
		t.Fatalf("expected a StmtGroup, got %v", got.Kind)
	}
	// gotoif ¬c0 Lend; b0; Lend:   (no intervening `goto Lend` or extra label)
	if len(got.Children) != 3 {
		t.Fatalf("expected 3 statements (condjump, body, end label), got %d: %+v", len(got.Children), got.Children)
	}
	condJumpStmt := got.Children[0]
	if condJumpStmt.Kind != StmtConditionalJump {
		t.Fatalf("expected the first statement to be a conditional jump, got %v", condJumpStmt.Kind)
	}
	if condJumpStmt.Expr.Kind != ExprLogicalNegation {
		t.Fatalf("expected the jump condition to be negated")
	}
	lastLabel := got.Children[len(got.Children)-1]
	if lastLabel.Kind != StmtLabel {
		t.Fatalf("expected the last statement to be the end label, got %v", lastLabel.Kind)
	}
	if condJumpStmt.Label != lastLabel.Label {
		t.Fatalf("expected the single arm's jump target to be the same label as the end, no intermediate label")
	}
}

func TestLowerIfWithElseJumpsPastElseBody(t *testing.T) {
	table, bag, sc := newLoweringFixture()
	lw := NewLowering(table, bag)

	cond := boolLit(table, sc, true)
	body := []*Stmt{exprStmt(sc, boolLit(table, sc, true))}
	elseBody := []*Stmt{exprStmt(sc, boolLit(table, sc, false))}
	ifStmt := &Stmt{Kind: StmtIf, Scope: sc, Arms: []IfArm{{Cond: cond, Body: body}}, Else: elseBody}

	got := lw.lowerIf(ifStmt)
	// gotoif ¬c0 L0; b0; goto Lend; L0: else-body; Lend:
	if len(got.Children) != 6 {
		t.Fatalf("expected 6 statements, got %d: %+v", len(got.Children), got.Children)
	}
	if got.Children[0].Kind != StmtConditionalJump {
		t.Fatalf("expected conditional jump first, got %v", got.Children[0].Kind)
	}
	if got.Children[1].Kind != StmtExprStmt {
		t.Fatalf("expected the arm's body second, got %v", got.Children[1].Kind)
	}
	if got.Children[2].Kind != StmtNormalJump {
		t.Fatalf("expected an unconditional jump past the else body, got %v", got.Children[2].Kind)
	}
	if got.Children[3].Kind != StmtLabel {
		t.Fatalf("expected the arm-skip label before the else body, got %v", got.Children[3].Kind)
	}
	if got.Children[3].Label != got.Children[0].Label {
		t.Fatalf("expected the conditional jump's target to land exactly on the else body's label")
	}
	if got.Children[5].Kind != StmtLabel {
		t.Fatalf("expected the trailing end label last, got %v", got.Children[5].Kind)
	}
	if got.Children[2].Label != got.Children[5].Label {
		t.Fatalf("expected the unconditional jump to target the end label")
	}
}

func TestLowerWhileShape(t *testing.T) {
	table, bag, sc := newLoweringFixture()
	lw := NewLowering(table, bag)

	cond := boolLit(table, sc, true)
	body := []*Stmt{exprStmt(sc, boolLit(table, sc, true))}
	whileStmt := &Stmt{Kind: StmtWhile, Scope: sc, Cond: cond, Body: body}

	got := lw.lowerWhile(whileStmt)
	// goto Lcont; Lbegin: body; Lcont: gotoif c Lbegin
	if len(got.Children) != 5 {
		t.Fatalf("expected 5 statements, got %d: %+v", len(got.Children), got.Children)
	}
	if got.Children[0].Kind != StmtNormalJump {
		t.Fatalf("expected the entry jump to Lcont first, got %v", got.Children[0].Kind)
	}
	if got.Children[1].Kind != StmtLabel {
		t.Fatalf("expected Lbegin second, got %v", got.Children[1].Kind)
	}
	if got.Children[2].Kind != StmtExprStmt {
		t.Fatalf("expected the loop body third, got %v", got.Children[2].Kind)
	}
	if got.Children[3].Kind != StmtLabel {
		t.Fatalf("expected Lcont fourth, got %v", got.Children[3].Kind)
	}
	if got.Children[0].Label != got.Children[3].Label {
		t.Fatalf("expected the entry jump to target Lcont")
	}
	last := got.Children[4]
	if last.Kind != StmtConditionalJump {
		t.Fatalf("expected the trailing conditional jump fifth, got %v", last.Kind)
	}
	if last.Expr.Kind == ExprLogicalNegation {
		t.Fatalf("the trailing while jump tests the condition directly, not negated")
	}
	if last.Label != got.Children[1].Label {
		t.Fatalf("expected the trailing conditional jump to target Lbegin")
	}
}

func TestLowerAssertShape(t *testing.T) {
	table, bag, sc := newLoweringFixture()
	lw := NewLowering(table, bag)

	cond := boolLit(table, sc, true)
	assertStmt := &Stmt{Kind: StmtAssert, Scope: sc, Expr: cond}

	got := lw.lowerAssert(assertStmt)
	if len(got.Children) != 3 {
		t.Fatalf("expected 3 statements, got %d: %+v", len(got.Children), got.Children)
	}
	if got.Children[0].Kind != StmtConditionalJump || got.Children[0].Expr.Kind != ExprLogicalNegation {
		t.Fatalf("expected a negated conditional jump first, got %+v", got.Children[0])
	}
	if got.Children[1].Kind != StmtExit {
		t.Fatalf("expected an exit second, got %v", got.Children[1].Kind)
	}
	if got.Children[2].Kind != StmtLabel {
		t.Fatalf("expected the end label third, got %v", got.Children[2].Kind)
	}
	if got.Children[0].Label != got.Children[2].Label {
		t.Fatalf("expected the conditional jump to skip straight past the exit to the end label")
	}
}

func TestLowerCompoundAssignPureVarRefRewritesInPlace(t *testing.T) {
	table, bag, sc := newLoweringFixture()
	lw := NewLowering(table, bag)
	op := declareFn(t, table, "operator+=", []types.TypeID{table.Types.Builtins().Int, table.Types.Builtins().Int}, table.Types.Builtins().Int)

	varSym := diag.Collect(diag.NewBag(0), table.DeclareSymbol(scope.Symbol{
		Name: table.Strings.Intern("n"), Kind: scope.SymLocal, Category: scope.CatStatic,
		Scope: sc, Span: source.Span{Start: 1, End: 1}, Type: table.Types.Builtins().Int, Flags: scope.FlagDefined,
	}))
	target := &Expr{Kind: ExprSymbolLiteral, Scope: sc, Symbol: varSym, Info: types.TypeInfo{Type: table.Types.Builtins().Int, Value: types.ValueL}}
	rhs := &Expr{Kind: ExprLiteral, Scope: sc, IntVal: 1, Info: types.TypeInfo{Type: table.Types.Builtins().Int, Value: types.ValueR}}
	stmt := &Stmt{Kind: StmtCompoundAssign, Scope: sc, Target: target, Value: rhs, Compound: op}

	got := lw.lowerCompoundAssign(stmt)
	if got.Kind != StmtGroup || len(got.Children) != 1 {
		t.Fatalf("expected a single-statement group for a pure variable ref, got %+v", got)
	}
	assign := got.Children[0]
	if assign.Kind != StmtSimpleAssign {
		t.Fatalf("expected a simple assignment, got %v", assign.Kind)
	}
	if assign.Target.Kind != ExprSymbolLiteral || assign.Target.Symbol != varSym {
		t.Fatalf("expected the assignment target to stay the original variable, got %+v", assign.Target)
	}
	if assign.Value.Kind != ExprStaticCall || assign.Value.Callee != op {
		t.Fatalf("expected the assignment value to be a call to the compound operator, got %+v", assign.Value)
	}
	if len(assign.Value.Args) != 2 || assign.Value.Args[0].Symbol != varSym {
		t.Fatalf("expected the operator call's first argument to read the same variable, got %+v", assign.Value.Args)
	}
}

func TestLowerCompoundAssignFieldAccessCapturesReceiverOnce(t *testing.T) {
	table, bag, sc := newLoweringFixture()
	lw := NewLowering(table, bag)
	_, structSym := declareVector2(t, table)
	structInfo := table.Symbols.Get(structSym)
	op := declareFn(t, table, "operator+=", []types.TypeID{table.Types.Builtins().Int, table.Types.Builtins().Int}, table.Types.Builtins().Int)

	recvSym := diag.Collect(diag.NewBag(0), table.DeclareSymbol(scope.Symbol{
		Name: table.Strings.Intern("v"), Kind: scope.SymLocal, Category: scope.CatStatic,
		Scope: sc, Span: source.Span{Start: 1, End: 1}, Type: structInfo.Type, Flags: scope.FlagDefined,
	}))
	recv := &Expr{Kind: ExprSymbolLiteral, Scope: sc, Symbol: recvSym, Info: types.TypeInfo{Type: structInfo.Type, Value: types.ValueL}}
	fieldSym := scope.SymbolID(0) // field identity isn't checked by lowering, only carried through
	target := &Expr{
		Kind: ExprFieldRef, Scope: sc, Symbol: fieldSym, Receiver: recv,
		Info: types.TypeInfo{Type: table.Types.Builtins().Int, Value: types.ValueL},
	}
	rhs := &Expr{Kind: ExprLiteral, Scope: sc, IntVal: 1, Info: types.TypeInfo{Type: table.Types.Builtins().Int, Value: types.ValueR}}
	stmt := &Stmt{Kind: StmtCompoundAssign, Scope: sc, Target: target, Value: rhs, Compound: op}

	got := lw.lowerCompoundAssign(stmt)
	if got.Kind != StmtGroup || len(got.Children) != 2 {
		t.Fatalf("expected a two-statement group (temp capture + assignment), got %+v", got)
	}
	capture := got.Children[0]
	if capture.Kind != StmtVar {
		t.Fatalf("expected the first statement to capture the receiver into a temp, got %v", capture.Kind)
	}
	if capture.Init == nil || capture.Init.Kind != ExprReferenceOf || capture.Init.Operand != recv {
		t.Fatalf("expected the temp to be initialized with a reference to the original receiver expression")
	}
	assign := got.Children[1]
	if assign.Kind != StmtSimpleAssign || assign.Target.Kind != ExprFieldRef {
		t.Fatalf("expected a field-ref assignment second, got %+v", assign)
	}
	if assign.Target.Receiver.Symbol != capture.Var {
		t.Fatalf("expected the assignment's field access to read through the captured temp, not the original receiver")
	}
	if assign.Value.Args[0].Receiver.Symbol != capture.Var {
		t.Fatalf("expected the operator call's lhs field access to also read through the captured temp")
	}
}

func TestGroupFlattensNestedGroups(t *testing.T) {
	table, _, sc := newLoweringFixture()
	inner := group(source.Span{}, sc, exprStmt(sc, boolLit(table, sc, true)))
	outer := group(source.Span{}, sc, inner, exprStmt(sc, boolLit(table, sc, false)))
	if len(outer.Children) != 2 {
		t.Fatalf("expected the inner group's single child to be inlined, got %d children", len(outer.Children))
	}
	for _, c := range outer.Children {
		if c.Kind == StmtGroup {
			t.Fatalf("expected no nested StmtGroup after flattening, got %+v", c)
		}
	}
}

func TestCreateLoweredBlockFlattensIfGroupIntoSurroundingBlock(t *testing.T) {
	table, bag, sc := newLoweringFixture()
	lw := NewLowering(table, bag)

	cond := boolLit(table, sc, true)
	body := []*Stmt{exprStmt(sc, boolLit(table, sc, true))}
	ifStmt := &Stmt{Kind: StmtIf, Scope: sc, Arms: []IfArm{{Cond: cond, Body: body}}}
	trailing := exprStmt(sc, boolLit(table, sc, false))

	got := lw.CreateLoweredBlock([]*Stmt{ifStmt, trailing})
	for _, s := range got {
		if s.Kind == StmtGroup {
			t.Fatalf("expected CreateLoweredBlock to flatten the if's group, got %+v", s)
		}
	}
	last := got[len(got)-1]
	if last.Kind != StmtExprStmt {
		t.Fatalf("expected the trailing statement to survive after the flattened if, got %v", last.Kind)
	}
}
