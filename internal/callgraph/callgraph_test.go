package callgraph

import (
	"errors"
	"fmt"
	"testing"

	"github.com/morozRed/moveprobe/internal/ast"
	"github.com/morozRed/moveprobe/internal/index"
	"github.com/morozRed/moveprobe/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	vaultPath    = "sources/vault.move"
	poolPath     = "sources/pool.move"
	treasuryPath = "sources/treasury.move"
)

func u64() ast.Type { return ast.Named("u64") }

func mutRef(name string) ast.Type {
	return &ast.RefType{Mut: true, Inner: ast.Named(name)}
}

func call(name string, args ...ast.Exp) *ast.CallExp {
	return &ast.CallExp{Target: ast.Single(name), Args: args}
}

func qcall(names ...string) *ast.CallExp {
	return &ast.CallExp{Target: ast.Qualified(names...)}
}

func num(text string) ast.Exp {
	return &ast.ValueExp{Kind: ast.LiteralNumber, Text: text}
}

func name(n string) ast.Exp {
	return &ast.NameExp{Chain: ast.Single(n)}
}

func body(items ...ast.Exp) ast.FunctionBody {
	seq := ast.Sequence{}
	for _, it := range items {
		seq.Items = append(seq.Items, &ast.ExpItem{Exp: it})
	}
	return ast.FunctionBody{Seq: seq}
}

func fixture(t *testing.T, extra ...*ast.Function) (*index.Index, index.ModuleInfo) {
	t.Helper()
	addr, err := ast.ParseAccountAddress("0x42")
	require.NoError(t, err)

	vaultMembers := []ast.Member{
		&ast.Struct{Name: "Vault"},
		&ast.Function{Name: "helper", Params: []ast.Param{{Name: "x", Type: u64()}}, Return: u64()},
		&ast.Function{Name: "deposit", Visibility: ast.VisibilityPublic, Params: []ast.Param{{Name: "v", Type: mutRef("Vault")}, {Name: "amount", Type: u64()}}},
	}
	for _, fn := range extra {
		vaultMembers = append(vaultMembers, fn)
	}

	project := &ast.Project{Files: []ast.SourceFile{
		{Path: vaultPath, Definitions: []ast.ModuleDefinition{{Address: addr, Name: "vault", Members: vaultMembers}}},
		{Path: poolPath, Definitions: []ast.ModuleDefinition{{Address: addr, AddressName: "mypkg", Name: "pool", Members: []ast.Member{
			&ast.Struct{Name: "Pool"},
			&ast.Function{Name: "create", Visibility: ast.VisibilityPublic, Return: ast.Named("Pool")},
			&ast.Function{Name: "swap", Visibility: ast.VisibilityPublic, Params: []ast.Param{{Name: "p", Type: mutRef("Pool")}}},
			&ast.Function{Name: "get_value", Visibility: ast.VisibilityPublic, Params: []ast.Param{{Name: "p", Type: &ast.RefType{Inner: ast.Named("Pool")}}}, Return: u64()},
		}}}},
		{Path: treasuryPath, Definitions: []ast.ModuleDefinition{{Address: addr, Name: "treasury", Members: []ast.Member{
			&ast.Function{Name: "credit", Visibility: ast.VisibilityPublic, Params: []ast.Param{{Name: "v", Type: mutRef("Vault")}}},
		}}}},
	}}
	return index.New(project), index.ModuleInfo{Address: addr, Name: "vault", FilePath: vaultPath}
}

func extract(t *testing.T, opts Options, b ast.FunctionBody, extra ...*ast.Function) []report.FunctionCall {
	t.Helper()
	idx, mod := fixture(t, extra...)
	calls, err := New(idx, opts).Extract(b, mod)
	require.NoError(t, err)
	require.NotNil(t, calls)
	return calls
}

func TestRepeatedCallsCollapseToOneEdge(t *testing.T) {
	calls := extract(t, Options{}, body(call("helper", num("1")), call("helper", num("2")), call("helper", num("3"))))

	require.Len(t, calls, 1)
	assert.Equal(t, report.FunctionCall{File: vaultPath, Function: "fun helper(x: u64): u64", Module: "vault"}, calls[0])
}

func TestIntrinsicsAreNotEdges(t *testing.T) {
	assertCall := &ast.CallExp{Target: ast.Single("assert"), IsMacro: true, Args: []ast.Exp{name("ok"), num("0")}}
	calls := extract(t, Options{}, body(assertCall, call("exists", name("addr")), call("borrow_global_mut", name("addr"))))

	assert.Empty(t, calls)
}

func TestEveryConstructIsTraversed(t *testing.T) {
	var fns []*ast.Function
	mk := func(i int) *ast.CallExp {
		n := fmt.Sprintf("c%d", i)
		fns = append(fns, &ast.Function{Name: n})
		return call(n)
	}

	b := body(
		&ast.IfElseExp{Cond: name("flag"), Then: mk(0), Else: mk(1)},
		&ast.WhileExp{Cond: mk(2), Body: mk(3)},
		&ast.LoopExp{Body: &ast.BlockExp{Seq: ast.Sequence{Items: []ast.SequenceItem{&ast.ExpItem{Exp: mk(4)}}}}},
		&ast.BinaryExp{Op: "+", Left: mk(5), Right: num("1")},
		&ast.UnaryExp{Op: "!", Exp: mk(6)},
		&ast.PackExp{Type: ast.Single("Vault"), Fields: []ast.FieldInit{{Name: "balance", Value: mk(7)}}},
		&ast.VectorExp{Elems: []ast.Exp{num("1"), mk(8)}},
		&ast.AssignExp{Lhs: name("x"), Rhs: mk(9)},
		&ast.AbortExp{Code: mk(10)},
		&ast.ReturnExp{Value: &ast.ParensExp{Exp: mk(11)}},
		&ast.MatchExp{Subject: mk(12), Arms: []ast.MatchArm{{Pattern: "_", Guard: mk(13), Body: mk(14)}}},
		&ast.LabeledExp{Label: "outer", Body: &ast.BreakExp{Value: mk(15)}},
		&ast.DerefExp{Exp: &ast.BorrowExp{Exp: mk(16)}},
		&ast.IndexExp{Target: name("v"), Indices: []ast.Exp{mk(17)}},
		&ast.CastExp{Exp: mk(18), Type: u64()},
		&ast.AnnotateExp{Exp: mk(19), Type: u64()},
		&ast.ExpListExp{Exps: []ast.Exp{mk(20)}},
		&ast.LambdaExp{Body: mk(21)},
		&ast.DotExp{Receiver: mk(22), Field: "balance"},
		call("helper", mk(23)),
	)
	b.Seq.Items = append(b.Seq.Items, &ast.LetItem{Bindings: []string{"y"}, Value: mk(24)})
	b.Seq.Result = mk(25)

	calls := extract(t, Options{}, b, fns...)

	want := make([]string, 0, len(fns)+1)
	for i := range fns {
		want = append(want, fmt.Sprintf("fun c%d()", i))
		if i == 23 {
			want = append(want, "fun helper(x: u64): u64")
		}
	}
	got := make([]string, 0, len(calls))
	for _, c := range calls {
		got = append(got, c.Function)
	}
	assert.ElementsMatch(t, want, got)
}

func TestUnknownReceiversAreNeverResolved(t *testing.T) {
	b := body(
		&ast.DotCallExp{Receiver: name("pool"), Method: "swap"},
		&ast.DotCallExp{Receiver: call("helper", num("1")), Method: "swap", Args: []ast.Exp{call("deposit")}},
	)

	calls := extract(t, Options{}, b)

	require.Len(t, calls, 2)
	assert.Equal(t, "fun helper(x: u64): u64", calls[0].Function)
	assert.Equal(t, "public fun deposit(v: &mut Vault, amount: u64)", calls[1].Function)
	for _, c := range calls {
		assert.NotContains(t, c.Module, "pool")
	}
}

func TestSyntacticReceiversResolve(t *testing.T) {
	packed := &ast.PackExp{Type: ast.Single("Pool")}
	b := body(
		&ast.DotCallExp{Receiver: &ast.BorrowExp{Mut: true, Exp: packed}, Method: "swap"},
		&ast.DotCallExp{Receiver: packed, Method: "get_value"},
	)

	calls := extract(t, Options{}, b)

	require.Len(t, calls, 1)
	assert.Equal(t, report.FunctionCall{File: poolPath, Function: "public fun swap(p: &mut Pool)", Module: "pool"}, calls[0])
}

func TestQualifiedCalls(t *testing.T) {
	b := body(
		qcall("pool", "create"),
		qcall("Self", "helper"),
		qcall("vector", "push_back"),
		qcall("coin", "mint"),
		qcall("missing", "thing"),
		qcall("Pool", "swap"),
		qcall("Vault", "credit"),
	)

	calls := extract(t, Options{}, b)

	assert.Equal(t, []report.FunctionCall{
		{File: poolPath, Function: "public fun create(): Pool", Module: "pool"},
		{File: vaultPath, Function: "fun helper(x: u64): u64", Module: "vault"},
		{File: poolPath, Function: "public fun swap(p: &mut Pool)", Module: "pool"},
		{File: treasuryPath, Function: "public fun credit(v: &mut Vault)", Module: "treasury"},
	}, calls)
}

func TestAddressQualifiedCalls(t *testing.T) {
	two, err := ast.ParseAccountAddress("0x2")
	require.NoError(t, err)
	far, err := ast.ParseAccountAddress("0xbeef")
	require.NoError(t, err)

	addrCall := func(addr ast.AccountAddress, module, fn string) *ast.CallExp {
		return &ast.CallExp{Target: ast.NameAccessChain{Path: []ast.PathEntry{
			{Kind: ast.EntryAnonymousAddress, Address: addr},
			{Name: module},
			{Name: fn},
		}}}
	}

	b := body(
		addrCall(two, "coin", "mint"),
		qcall("sui", "transfer", "public_transfer"),
		qcall("mypkg", "pool", "create"),
		addrCall(far, "oracle", "price"),
		addrCall(far, "oracle", "price"),
	)

	calls := extract(t, Options{}, b)

	assert.Equal(t, []report.FunctionCall{
		{File: poolPath, Function: "public fun create(): Pool", Module: "pool"},
		{File: ExternalPrefix + "0xbeef", Function: "0xbeef::oracle::price", Module: "oracle"},
	}, calls)
}

func TestAddressQualifiedCallsMatchTheModuleAddress(t *testing.T) {
	local, err := ast.ParseAccountAddress("0x42")
	require.NoError(t, err)
	far, err := ast.ParseAccountAddress("0xbeef")
	require.NoError(t, err)

	addrCall := func(addr ast.AccountAddress, module, fn string) *ast.CallExp {
		return &ast.CallExp{Target: ast.NameAccessChain{Path: []ast.PathEntry{
			{Kind: ast.EntryAnonymousAddress, Address: addr},
			{Name: module},
			{Name: fn},
		}}}
	}

	t.Run("same module name at another address stays external", func(t *testing.T) {
		calls := extract(t, Options{}, body(addrCall(far, "pool", "create")))
		assert.Equal(t, []report.FunctionCall{
			{File: ExternalPrefix + "0xbeef", Function: "0xbeef::pool::create", Module: "pool"},
		}, calls)
	})

	t.Run("another named address stays external", func(t *testing.T) {
		calls := extract(t, Options{}, body(qcall("otherpkg", "pool", "create")))
		assert.Equal(t, []report.FunctionCall{
			{File: ExternalPrefix + "otherpkg", Function: "otherpkg::pool::create", Module: "pool"},
		}, calls)
	})

	t.Run("numeric address of the local module resolves", func(t *testing.T) {
		calls := extract(t, Options{}, body(addrCall(local, "pool", "create")))
		assert.Equal(t, []report.FunctionCall{
			{File: poolPath, Function: "public fun create(): Pool", Module: "pool"},
		}, calls)
	})
}

func TestSpecExpressionsRequireOptIn(t *testing.T) {
	b := body(
		&ast.SpecBlockExp{Conditions: []ast.Exp{call("helper", num("1"))}},
		&ast.QuantExp{Kind: "forall", Ranges: []ast.QuantRange{{Var: "x", Range: name("u64")}}, Condition: call("deposit")},
	)

	assert.Empty(t, extract(t, Options{}, b))
	assert.Len(t, extract(t, Options{IncludeSpecs: true}, b), 2)
}

func TestRulesExtendDefaults(t *testing.T) {
	b := body(call("helper", num("1")), qcall("pool", "create"), call("assert"))

	calls := extract(t, Options{Rules: Rules{Builtins: []string{"helper"}, StdModules: []string{"pool"}}}, b)

	assert.Empty(t, calls)
}

func TestNativeBodyHasNoCalls(t *testing.T) {
	calls := extract(t, Options{}, ast.FunctionBody{Native: true})
	assert.Empty(t, calls)
}

type bogusExp struct{ ast.Exp }

func TestUnknownExpressionIsAnError(t *testing.T) {
	idx, mod := fixture(t)

	_, err := New(idx, Options{}).Extract(body(&ast.BinaryExp{Left: &bogusExp{}}), mod)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnhandledExpression))
}

func TestExtractIsIdempotent(t *testing.T) {
	idx, mod := fixture(t)
	ex := New(idx, Options{})
	b := body(call("helper", qcall("pool", "create")))

	first, err := ex.Extract(b, mod)
	require.NoError(t, err)
	second, err := ex.Extract(b, mod)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
