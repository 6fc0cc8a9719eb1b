package ast

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedDump is returned when a dump tree does not match the node schema.
var ErrMalformedDump = errors.New("malformed ast dump")

// DecodeSourceFiles converts a generic document tree (as produced by
// encoding/json or yaml.v3 unmarshalling into `any`) into source files.
// A document is either a single file object or {"files": [...]}.
func DecodeSourceFiles(doc any) ([]SourceFile, error) {
	d := &decoder{}
	root := d.object(doc, "$")
	if d.err != nil {
		return nil, d.err
	}

	var files []SourceFile
	if root.has("files") {
		for i, item := range d.list(root, "files") {
			files = append(files, d.sourceFile(d.object(item, fmt.Sprintf("$.files[%d]", i))))
		}
	} else {
		files = append(files, d.sourceFile(root))
	}
	if d.err != nil {
		return nil, d.err
	}
	return files, nil
}

type object struct {
	fields map[string]any
	path   string
}

func (o object) has(key string) bool {
	v, ok := o.fields[key]
	return ok && v != nil
}

func (o object) at(key string) string {
	return o.path + "." + key
}

// decoder keeps the first error so node builders stay linear.
type decoder struct {
	err error
}

func (d *decoder) fail(path, format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %s: %s", ErrMalformedDump, path, fmt.Sprintf(format, args...))
	}
}

func (d *decoder) object(v any, path string) object {
	switch m := v.(type) {
	case map[string]any:
		return object{fields: m, path: path}
	case map[any]any:
		fields := make(map[string]any, len(m))
		for k, val := range m {
			fields[fmt.Sprint(k)] = val
		}
		return object{fields: fields, path: path}
	default:
		d.fail(path, "expected object, got %T", v)
		return object{fields: map[string]any{}, path: path}
	}
}

func (d *decoder) str(o object, key string) string {
	v, ok := o.fields[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.fail(o.at(key), "expected string, got %T", v)
		return ""
	}
	return s
}

func (d *decoder) boolean(o object, key string) bool {
	v, ok := o.fields[key]
	if !ok || v == nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		d.fail(o.at(key), "expected bool, got %T", v)
		return false
	}
	return b
}

func (d *decoder) integer(o object, key string) int {
	v, ok := o.fields[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		if n != math.Trunc(n) || n < 0 {
			d.fail(o.at(key), "expected non-negative integer, got %v", n)
			return 0
		}
		return int(n)
	case json.Number:
		parsed, err := strconv.Atoi(n.String())
		if err != nil {
			d.fail(o.at(key), "expected integer: %v", err)
		}
		return parsed
	default:
		d.fail(o.at(key), "expected integer, got %T", v)
		return 0
	}
}

func (d *decoder) list(o object, key string) []any {
	v, ok := o.fields[key]
	if !ok || v == nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		d.fail(o.at(key), "expected list, got %T", v)
		return nil
	}
	return items
}

func (d *decoder) strings(o object, key string) []string {
	items := d.list(o, key)
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			d.fail(fmt.Sprintf("%s[%d]", o.at(key), i), "expected string, got %T", item)
			continue
		}
		out = append(out, s)
	}
	return out
}

func (d *decoder) loc(o object) Loc {
	if !o.has("loc") {
		return Loc{}
	}
	lo := d.object(o.fields["loc"], o.at("loc"))
	loc := Loc{Start: d.integer(lo, "start"), End: d.integer(lo, "end")}
	if loc.End < loc.Start {
		d.fail(lo.path, "end %d before start %d", loc.End, loc.Start)
	}
	return loc
}

func (d *decoder) sourceFile(o object) SourceFile {
	file := SourceFile{
		Path:   d.str(o, "path"),
		IsTest: d.boolean(o, "is_test"),
	}
	if file.Path == "" {
		d.fail(o.at("path"), "source file path is required")
	}
	for i, item := range d.list(o, "definitions") {
		file.Definitions = append(file.Definitions, d.module(d.object(item, fmt.Sprintf("%s[%d]", o.at("definitions"), i))))
	}
	return file
}

func (d *decoder) module(o object) ModuleDefinition {
	mod := ModuleDefinition{
		Name: d.str(o, "name"),
		Loc:  d.loc(o),
	}
	if mod.Name == "" {
		d.fail(o.at("name"), "module name is required")
	}
	address := strings.TrimSpace(d.str(o, "address"))
	if IsNumericAddress(address) {
		mod.Address, _ = ParseAccountAddress(address)
	} else {
		mod.AddressName = address
	}
	for i, item := range d.list(o, "members") {
		if member := d.member(d.object(item, fmt.Sprintf("%s[%d]", o.at("members"), i))); member != nil {
			mod.Members = append(mod.Members, member)
		}
	}
	return mod
}

func (d *decoder) member(o object) Member {
	switch kind := d.str(o, "kind"); kind {
	case "function":
		return d.function(o)
	case "struct":
		st := &Struct{
			Name:       d.str(o, "name"),
			Abilities:  d.strings(o, "abilities"),
			TypeParams: d.typeParams(o),
			Loc:        d.loc(o),
		}
		for i, item := range d.list(o, "fields") {
			fo := d.object(item, fmt.Sprintf("%s[%d]", o.at("fields"), i))
			st.Fields = append(st.Fields, StructField{Name: d.str(fo, "name"), Type: d.typ(fo, "type")})
		}
		return st
	case "constant":
		return &Constant{
			Name:  d.str(o, "name"),
			Type:  d.typ(o, "type"),
			Value: d.optExp(o, "value"),
			Loc:   d.loc(o),
		}
	case "use":
		use := &UseDecl{Module: d.str(o, "module"), Alias: d.str(o, "alias"), Loc: d.loc(o)}
		for i, item := range d.list(o, "members") {
			mo := d.object(item, fmt.Sprintf("%s[%d]", o.at("members"), i))
			use.Members = append(use.Members, UseMember{Name: d.str(mo, "name"), Alias: d.str(mo, "alias")})
		}
		return use
	case "friend":
		return &FriendDecl{Module: d.str(o, "module"), Loc: d.loc(o)}
	default:
		d.fail(o.at("kind"), "unknown member kind %q", kind)
		return nil
	}
}

func (d *decoder) function(o object) *Function {
	fn := &Function{
		Name:       d.str(o, "name"),
		Entry:      d.boolean(o, "entry"),
		TypeParams: d.typeParams(o),
		Loc:        d.loc(o),
	}
	if fn.Name == "" {
		d.fail(o.at("name"), "function name is required")
	}
	switch vis := d.str(o, "visibility"); vis {
	case "", "internal", "private":
		fn.Visibility = VisibilityInternal
	case "public":
		fn.Visibility = VisibilityPublic
	case "public(friend)", "friend":
		fn.Visibility = VisibilityFriend
	case "public(package)", "package":
		fn.Visibility = VisibilityPackage
	default:
		d.fail(o.at("visibility"), "unknown visibility %q", vis)
	}
	for i, item := range d.list(o, "params") {
		po := d.object(item, fmt.Sprintf("%s[%d]", o.at("params"), i))
		fn.Params = append(fn.Params, Param{Name: d.str(po, "name"), Type: d.typ(po, "type")})
	}
	if o.has("return") {
		fn.Return = d.typ(o, "return")
	} else {
		fn.Return = &UnitType{}
	}
	fn.Body.Native = d.boolean(o, "native")
	if !fn.Body.Native && o.has("body") {
		fn.Body.Seq = d.sequence(d.object(o.fields["body"], o.at("body")))
	}
	return fn
}

func (d *decoder) typeParams(o object) []TypeParam {
	items := d.list(o, "type_params")
	if len(items) == 0 {
		return nil
	}
	out := make([]TypeParam, 0, len(items))
	for i, item := range items {
		to := d.object(item, fmt.Sprintf("%s[%d]", o.at("type_params"), i))
		out = append(out, TypeParam{Name: d.str(to, "name"), Constraints: d.strings(to, "constraints")})
	}
	return out
}

func (d *decoder) typ(o object, key string) Type {
	if !o.has(key) {
		d.fail(o.at(key), "type is required")
		return &UnresolvedType{}
	}
	return d.typeNode(o.fields[key], o.at(key))
}

func (d *decoder) optType(o object, key string) Type {
	if !o.has(key) {
		return nil
	}
	return d.typeNode(o.fields[key], o.at(key))
}

func (d *decoder) types(o object, key string) []Type {
	items := d.list(o, key)
	if len(items) == 0 {
		return nil
	}
	out := make([]Type, 0, len(items))
	for i, item := range items {
		out = append(out, d.typeNode(item, fmt.Sprintf("%s[%d]", o.at(key), i)))
	}
	return out
}

func (d *decoder) typeNode(v any, path string) Type {
	o := d.object(v, path)
	switch kind := d.str(o, "kind"); kind {
	case "unit":
		return &UnitType{}
	case "apply":
		return &ApplyType{Chain: d.chain(o, "chain")}
	case "ref":
		return &RefType{Mut: d.boolean(o, "mut"), Inner: d.typ(o, "inner")}
	case "fun":
		ret := d.optType(o, "return")
		if ret == nil {
			ret = &UnitType{}
		}
		return &FunType{Params: d.types(o, "params"), Return: ret}
	case "tuple":
		return &TupleType{Types: d.types(o, "types")}
	case "unresolved":
		return &UnresolvedType{}
	default:
		d.fail(o.at("kind"), "unknown type kind %q", kind)
		return &UnresolvedType{}
	}
}

// chain accepts either {"path": [...]} or the shorthand string "a::b::c".
func (d *decoder) chain(o object, key string) NameAccessChain {
	v, ok := o.fields[key]
	if !ok || v == nil {
		d.fail(o.at(key), "name access chain is required")
		return NameAccessChain{}
	}
	if s, ok := v.(string); ok {
		return parseChainShorthand(s)
	}

	co := d.object(v, o.at(key))
	var chain NameAccessChain
	for i, item := range d.list(co, "path") {
		eo := d.object(item, fmt.Sprintf("%s[%d]", co.at("path"), i))
		entry := PathEntry{
			Name:     d.str(eo, "name"),
			TypeArgs: d.types(eo, "type_args"),
			IsMacro:  d.boolean(eo, "macro"),
		}
		switch kind := d.str(eo, "kind"); kind {
		case "", "name":
			entry.Kind = EntryName
		case "global":
			entry.Kind = EntryGlobalAddress
		case "address":
			entry.Kind = EntryAnonymousAddress
			addr, err := ParseAccountAddress(entry.Name)
			if err != nil {
				d.fail(eo.at("name"), "%v", err)
			}
			entry.Address = addr
		default:
			d.fail(eo.at("kind"), "unknown path entry kind %q", kind)
		}
		chain.Path = append(chain.Path, entry)
	}
	if len(chain.Path) == 0 {
		d.fail(co.at("path"), "name access chain is empty")
	}
	return chain
}

func parseChainShorthand(raw string) NameAccessChain {
	var chain NameAccessChain
	for i, part := range strings.Split(strings.TrimSpace(raw), "::") {
		part = strings.TrimSpace(part)
		entry := PathEntry{Name: part}
		if i == 0 && IsNumericAddress(part) {
			entry.Kind = EntryAnonymousAddress
			entry.Address, _ = ParseAccountAddress(part)
		}
		chain.Path = append(chain.Path, entry)
	}
	return chain
}

func (d *decoder) sequence(o object) Sequence {
	var seq Sequence
	for i, item := range d.list(o, "items") {
		io := d.object(item, fmt.Sprintf("%s[%d]", o.at("items"), i))
		switch kind := d.str(io, "kind"); kind {
		case "exp":
			seq.Items = append(seq.Items, &ExpItem{Exp: d.exp(io, "exp")})
		case "let":
			seq.Items = append(seq.Items, &LetItem{
				Bindings: d.strings(io, "bindings"),
				Type:     d.optType(io, "type"),
				Value:    d.exp(io, "value"),
			})
		case "declare":
			seq.Items = append(seq.Items, &DeclareItem{
				Bindings: d.strings(io, "bindings"),
				Type:     d.optType(io, "type"),
			})
		default:
			d.fail(io.at("kind"), "unknown sequence item kind %q", kind)
		}
	}
	seq.Result = d.optExp(o, "result")
	return seq
}

func (d *decoder) exp(o object, key string) Exp {
	if !o.has(key) {
		d.fail(o.at(key), "expression is required")
		return &UnresolvedExp{}
	}
	return d.expNode(o.fields[key], o.at(key))
}

func (d *decoder) optExp(o object, key string) Exp {
	if !o.has(key) {
		return nil
	}
	return d.expNode(o.fields[key], o.at(key))
}

func (d *decoder) exps(o object, key string) []Exp {
	items := d.list(o, key)
	if len(items) == 0 {
		return nil
	}
	out := make([]Exp, 0, len(items))
	for i, item := range items {
		out = append(out, d.expNode(item, fmt.Sprintf("%s[%d]", o.at(key), i)))
	}
	return out
}

func (d *decoder) expNode(v any, path string) Exp {
	o := d.object(v, path)
	switch kind := d.str(o, "kind"); kind {
	case "value":
		return &ValueExp{Kind: d.literalKind(o), Text: d.str(o, "text")}
	case "unit":
		return &UnitExp{}
	case "name":
		return &NameExp{Chain: d.chain(o, "chain")}
	case "move":
		return &MoveExp{Var: d.str(o, "var")}
	case "copy":
		return &CopyExp{Var: d.str(o, "var")}
	case "call":
		return &CallExp{Target: d.chain(o, "target"), IsMacro: d.boolean(o, "macro"), Args: d.exps(o, "args")}
	case "pack":
		pack := &PackExp{Type: d.chain(o, "type")}
		for i, item := range d.list(o, "fields") {
			fo := d.object(item, fmt.Sprintf("%s[%d]", o.at("fields"), i))
			pack.Fields = append(pack.Fields, FieldInit{Name: d.str(fo, "name"), Value: d.exp(fo, "value")})
		}
		return pack
	case "vector":
		return &VectorExp{ElemTypes: d.types(o, "elem_types"), Elems: d.exps(o, "elems")}
	case "if":
		return &IfElseExp{Cond: d.exp(o, "cond"), Then: d.exp(o, "then"), Else: d.optExp(o, "else")}
	case "match":
		m := &MatchExp{Subject: d.exp(o, "subject")}
		for i, item := range d.list(o, "arms") {
			ao := d.object(item, fmt.Sprintf("%s[%d]", o.at("arms"), i))
			m.Arms = append(m.Arms, MatchArm{Pattern: d.str(ao, "pattern"), Guard: d.optExp(ao, "guard"), Body: d.exp(ao, "body")})
		}
		return m
	case "while":
		return &WhileExp{Cond: d.exp(o, "cond"), Body: d.exp(o, "body")}
	case "loop":
		return &LoopExp{Body: d.exp(o, "body")}
	case "labeled":
		return &LabeledExp{Label: d.str(o, "label"), Body: d.exp(o, "body")}
	case "block":
		if !o.has("seq") {
			return &BlockExp{}
		}
		return &BlockExp{Seq: d.sequence(d.object(o.fields["seq"], o.at("seq")))}
	case "lambda":
		lambda := &LambdaExp{Return: d.optType(o, "return"), Body: d.exp(o, "body")}
		for i, item := range d.list(o, "params") {
			po := d.object(item, fmt.Sprintf("%s[%d]", o.at("params"), i))
			lambda.Params = append(lambda.Params, LambdaParam{Name: d.str(po, "name"), Type: d.optType(po, "type")})
		}
		return lambda
	case "quant":
		q := &QuantExp{Kind: d.str(o, "quantifier"), Condition: d.optExp(o, "condition"), Body: d.exp(o, "body")}
		for i, item := range d.list(o, "ranges") {
			ro := d.object(item, fmt.Sprintf("%s[%d]", o.at("ranges"), i))
			q.Ranges = append(q.Ranges, QuantRange{Var: d.str(ro, "var"), Range: d.exp(ro, "range")})
		}
		for i, item := range d.list(o, "triggers") {
			group, ok := item.([]any)
			if !ok {
				d.fail(fmt.Sprintf("%s[%d]", o.at("triggers"), i), "expected list, got %T", item)
				continue
			}
			trigger := make([]Exp, 0, len(group))
			for j, t := range group {
				trigger = append(trigger, d.expNode(t, fmt.Sprintf("%s[%d][%d]", o.at("triggers"), i, j)))
			}
			q.Triggers = append(q.Triggers, trigger)
		}
		return q
	case "spec":
		return &SpecBlockExp{Conditions: d.exps(o, "conditions")}
	case "list":
		return &ExpListExp{Exps: d.exps(o, "exps")}
	case "assign":
		return &AssignExp{Lhs: d.exp(o, "lhs"), Rhs: d.exp(o, "rhs")}
	case "abort":
		return &AbortExp{Code: d.optExp(o, "code")}
	case "return":
		return &ReturnExp{Label: d.str(o, "label"), Value: d.optExp(o, "value")}
	case "break":
		return &BreakExp{Label: d.str(o, "label"), Value: d.optExp(o, "value")}
	case "continue":
		return &ContinueExp{Label: d.str(o, "label")}
	case "deref":
		return &DerefExp{Exp: d.exp(o, "exp")}
	case "unary":
		return &UnaryExp{Op: d.str(o, "op"), Exp: d.exp(o, "exp")}
	case "binary":
		return &BinaryExp{Op: d.str(o, "op"), Left: d.exp(o, "left"), Right: d.exp(o, "right")}
	case "borrow":
		return &BorrowExp{Mut: d.boolean(o, "mut"), Exp: d.exp(o, "exp")}
	case "dot":
		return &DotExp{Receiver: d.exp(o, "receiver"), Field: d.str(o, "field")}
	case "dot_call":
		return &DotCallExp{
			Receiver: d.exp(o, "receiver"),
			Method:   d.str(o, "method"),
			IsMacro:  d.boolean(o, "macro"),
			TypeArgs: d.types(o, "type_args"),
			Args:     d.exps(o, "args"),
		}
	case "index":
		return &IndexExp{Target: d.exp(o, "target"), Indices: d.exps(o, "indices")}
	case "cast":
		return &CastExp{Exp: d.exp(o, "exp"), Type: d.typ(o, "type")}
	case "annotate":
		return &AnnotateExp{Exp: d.exp(o, "exp"), Type: d.typ(o, "type")}
	case "parens":
		return &ParensExp{Exp: d.exp(o, "exp")}
	case "unresolved":
		return &UnresolvedExp{}
	default:
		d.fail(o.at("kind"), "unknown expression kind %q", kind)
		return &UnresolvedExp{}
	}
}

func (d *decoder) literalKind(o object) LiteralKind {
	switch kind := d.str(o, "literal"); kind {
	case "", "number":
		return LiteralNumber
	case "bool":
		return LiteralBool
	case "address":
		return LiteralAddress
	case "bytes":
		return LiteralBytes
	case "hex":
		return LiteralHex
	default:
		d.fail(o.at("literal"), "unknown literal kind %q", kind)
		return LiteralNumber
	}
}
