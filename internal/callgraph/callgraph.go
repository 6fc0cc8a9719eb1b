// Package callgraph finds the calls a function body makes and resolves them
// against the project index.
package callgraph

import (
	"errors"
	"fmt"

	"github.com/morozRed/moveprobe/internal/ast"
	"github.com/morozRed/moveprobe/internal/index"
	"github.com/morozRed/moveprobe/internal/report"
	"github.com/morozRed/moveprobe/internal/signature"
	"github.com/morozRed/moveprobe/internal/typefmt"
)

// ErrUnhandledExpression is returned when the body contains an expression
// kind the traversal does not know.
var ErrUnhandledExpression = errors.New("unhandled expression kind")

// ExternalPrefix marks call records whose target lives outside the project.
const ExternalPrefix = "external://"

// selfModule is the keyword for the enclosing module in qualified names.
const selfModule = "Self"

// Options tune extraction.
type Options struct {
	// IncludeSpecs descends into specification-only expressions.
	IncludeSpecs bool
	// Rules extend the builtin, library and accessor tables.
	Rules Rules
}

// Extractor resolves call sites. It is safe for concurrent use; every
// Extract call owns its accumulator.
type Extractor struct {
	index *index.Index
	opts  Options
	rules ruleSet
}

// New creates an extractor over idx.
func New(idx *index.Index, opts Options) *Extractor {
	return &Extractor{index: idx, opts: opts, rules: opts.Rules.compile()}
}

// Extract walks body and returns its deduplicated call edges in first-seen
// order. Native bodies have no calls.
func (e *Extractor) Extract(body ast.FunctionBody, module index.ModuleInfo) ([]report.FunctionCall, error) {
	acc := newCollector()
	if body.Native {
		return acc.calls, nil
	}

	owner, ok := e.index.FindOwningModule(module)
	if !ok {
		owner, _, _ = e.index.FindModuleByName(module.Name)
	}
	w := &walker{ex: e, module: module, owner: owner, acc: acc}
	if err := w.sequence(body.Seq); err != nil {
		return nil, err
	}
	return acc.calls, nil
}

// collector accumulates call edges, suppressing duplicates by Key.
type collector struct {
	calls []report.FunctionCall
	seen  map[string]struct{}
}

func newCollector() *collector {
	return &collector{
		calls: make([]report.FunctionCall, 0),
		seen:  make(map[string]struct{}),
	}
}

func (c *collector) add(call report.FunctionCall) {
	key := call.Key()
	if _, dup := c.seen[key]; dup {
		return
	}
	c.seen[key] = struct{}{}
	c.calls = append(c.calls, call)
}

type walker struct {
	ex     *Extractor
	module index.ModuleInfo
	owner  *ast.ModuleDefinition
	acc    *collector
}

func (w *walker) sequence(seq ast.Sequence) error {
	for _, item := range seq.Items {
		var err error
		switch it := item.(type) {
		case *ast.ExpItem:
			err = w.exp(it.Exp)
		case *ast.LetItem:
			err = w.exp(it.Value)
		case *ast.DeclareItem:
		default:
			err = fmt.Errorf("%w: sequence item %T", ErrUnhandledExpression, item)
		}
		if err != nil {
			return err
		}
	}
	return w.exp(seq.Result)
}

func (w *walker) exps(list ...ast.Exp) error {
	for _, e := range list {
		if err := w.exp(e); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) exp(e ast.Exp) error {
	switch v := e.(type) {
	case nil:
		return nil

	// Leaves.
	case *ast.ValueExp, *ast.UnitExp, *ast.NameExp, *ast.MoveExp, *ast.CopyExp,
		*ast.ContinueExp, *ast.UnresolvedExp:
		return nil

	case *ast.CallExp:
		w.call(v)
		return w.exps(v.Args...)
	case *ast.DotCallExp:
		if err := w.exp(v.Receiver); err != nil {
			return err
		}
		w.methodCall(v)
		return w.exps(v.Args...)

	case *ast.PackExp:
		for _, f := range v.Fields {
			if err := w.exp(f.Value); err != nil {
				return err
			}
		}
		return nil
	case *ast.VectorExp:
		return w.exps(v.Elems...)
	case *ast.ExpListExp:
		return w.exps(v.Exps...)

	case *ast.IfElseExp:
		return w.exps(v.Cond, v.Then, v.Else)
	case *ast.MatchExp:
		if err := w.exp(v.Subject); err != nil {
			return err
		}
		for _, arm := range v.Arms {
			if err := w.exps(arm.Guard, arm.Body); err != nil {
				return err
			}
		}
		return nil
	case *ast.WhileExp:
		return w.exps(v.Cond, v.Body)
	case *ast.LoopExp:
		return w.exp(v.Body)
	case *ast.LabeledExp:
		return w.exp(v.Body)
	case *ast.BlockExp:
		return w.sequence(v.Seq)
	case *ast.LambdaExp:
		return w.exp(v.Body)

	case *ast.QuantExp:
		if !w.ex.opts.IncludeSpecs {
			return nil
		}
		for _, r := range v.Ranges {
			if err := w.exp(r.Range); err != nil {
				return err
			}
		}
		for _, trigger := range v.Triggers {
			if err := w.exps(trigger...); err != nil {
				return err
			}
		}
		return w.exps(v.Condition, v.Body)
	case *ast.SpecBlockExp:
		if !w.ex.opts.IncludeSpecs {
			return nil
		}
		return w.exps(v.Conditions...)

	case *ast.AssignExp:
		return w.exps(v.Lhs, v.Rhs)
	case *ast.AbortExp:
		return w.exp(v.Code)
	case *ast.ReturnExp:
		return w.exp(v.Value)
	case *ast.BreakExp:
		return w.exp(v.Value)

	case *ast.DerefExp:
		return w.exp(v.Exp)
	case *ast.UnaryExp:
		return w.exp(v.Exp)
	case *ast.BinaryExp:
		return w.exps(v.Left, v.Right)
	case *ast.BorrowExp:
		return w.exp(v.Exp)
	case *ast.DotExp:
		return w.exp(v.Receiver)
	case *ast.IndexExp:
		if err := w.exp(v.Target); err != nil {
			return err
		}
		return w.exps(v.Indices...)
	case *ast.CastExp:
		return w.exp(v.Exp)
	case *ast.AnnotateExp:
		return w.exp(v.Exp)
	case *ast.ParensExp:
		return w.exp(v.Exp)

	default:
		return fmt.Errorf("%w: %T", ErrUnhandledExpression, e)
	}
}

// call classifies a call by the shape of its target path.
func (w *walker) call(c *ast.CallExp) {
	path := c.Target.Path
	switch len(path) {
	case 1:
		w.directCall(path[0])
	case 2:
		if path[0].Kind != ast.EntryName {
			return
		}
		w.scopedCall(path[0].Name, path[1].Name)
	case 3:
		w.externalCall(path[0], path[1].Name, path[2].Name)
	}
}

// directCall handles `name(args)`. Imported members are not followed.
func (w *walker) directCall(entry ast.PathEntry) {
	if entry.Kind != ast.EntryName || w.ex.rules.isBuiltin(entry.Name) {
		return
	}
	if w.owner == nil {
		return
	}
	if fn, ok := w.owner.Function(entry.Name); ok {
		w.record(fn, w.module)
	}
}

// scopedCall handles `scope::name(args)`, trying scope as a module first and
// as a resource type second.
func (w *walker) scopedCall(scope, name string) {
	if scope == selfModule {
		w.directCall(ast.PathEntry{Name: name})
		return
	}
	if w.ex.rules.isStdModule(scope) {
		return
	}
	if ref, ok := w.ex.index.FindInModule(scope, name); ok {
		w.record(ref.Function, ref.Module)
		return
	}
	if ref, ok := w.resourceFunction(scope, name); ok {
		w.record(ref.Function, ref.Module)
	}
}

// resourceFunction finds a function named name taking or returning typeName.
// A function in the module declaring the type wins; otherwise the first match.
func (w *walker) resourceFunction(typeName, name string) (index.FunctionRef, bool) {
	var first *index.FunctionRef
	for _, ref := range w.ex.index.FindByName(name) {
		if !mentionsType(ref.Function, typeName) {
			continue
		}
		if mod, ok := w.ex.index.FindOwningModule(ref.Module); ok && mod.DeclaresStruct(typeName) {
			return ref, true
		}
		if first == nil {
			first = &ref
		}
	}
	if first == nil {
		return index.FunctionRef{}, false
	}
	return *first, true
}

func mentionsType(fn *ast.Function, typeName string) bool {
	for _, p := range fn.Params {
		if typefmt.Mentions(p.Type, typeName) {
			return true
		}
	}
	return typefmt.Mentions(fn.Return, typeName)
}

// externalCall handles `address::module::name(args)`.
func (w *walker) externalCall(addr ast.PathEntry, module, name string) {
	addrText := addr.Name
	if addr.Kind == ast.EntryAnonymousAddress {
		addrText = addr.Address.ShortString()
	}
	if w.ex.rules.isStdAddress(addrText) {
		return
	}
	if ref, ok := w.ex.index.FindAtAddress(addr, module, name); ok {
		w.record(ref.Function, ref.Module)
		return
	}
	w.acc.add(report.FunctionCall{
		File:     ExternalPrefix + addrText,
		Function: addrText + "::" + module + "::" + name,
		Module:   module,
	})
}

// methodCall handles `receiver.method(args)`. Only receivers whose type is
// spelled out in the expression itself are resolved.
func (w *walker) methodCall(c *ast.DotCallExp) {
	if w.ex.rules.isAccessor(c.Method) {
		return
	}
	typeName := receiverType(c.Receiver)
	if typeName == "" {
		return
	}
	w.scopedCall(typeName, c.Method)
}

func receiverType(e ast.Exp) string {
	switch v := e.(type) {
	case *ast.PackExp:
		return v.Type.Last().Name
	case *ast.AnnotateExp:
		return typefmt.BaseName(v.Type)
	case *ast.CastExp:
		return typefmt.BaseName(v.Type)
	case *ast.ParensExp:
		return receiverType(v.Exp)
	case *ast.BorrowExp:
		return receiverType(v.Exp)
	default:
		return ""
	}
}

func (w *walker) record(fn *ast.Function, module index.ModuleInfo) {
	w.acc.add(report.FunctionCall{
		File:     module.FilePath,
		Function: signature.Build(fn),
		Module:   module.Name,
	})
}
