package sema

import (
	"testing"

	"vela/internal/diag"
	"vela/internal/scope"
	"vela/internal/source"
	"vela/internal/types"
)

func TestCollectMonosFindsCallToPlaceholderInstance(t *testing.T) {
	table := scope.NewTable(nil, nil)
	generic := diag.Collect(diag.NewBag(0), table.DeclareSymbol(scope.Symbol{
		Name: table.Strings.Intern("identity"), Kind: scope.SymFunction, Category: scope.CatStatic,
		Scope: table.Root, Span: source.Span{Start: 1, End: 1}, Flags: scope.FlagDefined,
	}))
	param := table.Types.RegisterTypeParam(table.Strings.Intern("T"), source.Span{Start: 1, End: 1})
	instance := diag.Collect(diag.NewBag(0), table.DeclareSymbol(scope.Symbol{
		Name: table.Strings.Intern("identity"), Kind: scope.SymFunction, Category: scope.CatStatic,
		Scope: table.Root, Span: source.Span{Start: 2, End: 2}, Flags: scope.FlagDefined,
		InstantiatedFrom: generic, TypeArgs: []types.TypeID{param},
	}))

	call := &Expr{Kind: ExprStaticCall, Callee: instance}
	obligations := CollectMonos(table, call, nil)
	if len(obligations) != 1 {
		t.Fatalf("expected one obligation, got %v", obligations)
	}
	if obligations[0].Generic != generic {
		t.Fatalf("expected the obligation to name the generic symbol, got %v", obligations[0].Generic)
	}
}

func TestCollectMonosSkipsFullyConcreteInstance(t *testing.T) {
	table := scope.NewTable(nil, nil)
	generic := diag.Collect(diag.NewBag(0), table.DeclareSymbol(scope.Symbol{
		Name: table.Strings.Intern("identity"), Kind: scope.SymFunction, Category: scope.CatStatic,
		Scope: table.Root, Span: source.Span{Start: 1, End: 1}, Flags: scope.FlagDefined,
	}))
	instance := diag.Collect(diag.NewBag(0), table.DeclareSymbol(scope.Symbol{
		Name: table.Strings.Intern("identity"), Kind: scope.SymFunction, Category: scope.CatStatic,
		Scope: table.Root, Span: source.Span{Start: 2, End: 2}, Flags: scope.FlagDefined,
		InstantiatedFrom: generic, TypeArgs: []types.TypeID{table.Types.Builtins().Int},
	}))

	call := &Expr{Kind: ExprStaticCall, Callee: instance}
	obligations := CollectMonos(table, call, nil)
	if len(obligations) != 0 {
		t.Fatalf("expected no obligations for a fully concrete instance, got %v", obligations)
	}
}

func TestCollectMonosStmtWalksNestedIfBranches(t *testing.T) {
	table := scope.NewTable(nil, nil)
	generic := diag.Collect(diag.NewBag(0), table.DeclareSymbol(scope.Symbol{
		Name: table.Strings.Intern("identity"), Kind: scope.SymFunction, Category: scope.CatStatic,
		Scope: table.Root, Span: source.Span{Start: 1, End: 1}, Flags: scope.FlagDefined,
	}))
	param := table.Types.RegisterTypeParam(table.Strings.Intern("T"), source.Span{Start: 1, End: 1})
	instance := diag.Collect(diag.NewBag(0), table.DeclareSymbol(scope.Symbol{
		Name: table.Strings.Intern("identity"), Kind: scope.SymFunction, Category: scope.CatStatic,
		Scope: table.Root, Span: source.Span{Start: 2, End: 2}, Flags: scope.FlagDefined,
		InstantiatedFrom: generic, TypeArgs: []types.TypeID{param},
	}))
	call := &Expr{Kind: ExprStaticCall, Callee: instance}
	body := []*Stmt{{Kind: StmtExprStmt, Expr: call}}
	ifStmt := &Stmt{Kind: StmtIf, Arms: []IfArm{{Cond: &Expr{Kind: ExprLiteral, BoolVal: true}, Body: body}}}

	obligations := CollectMonosStmt(table, ifStmt, nil)
	if len(obligations) != 1 {
		t.Fatalf("expected CollectMonosStmt to find the call nested inside the if arm, got %v", obligations)
	}
}
