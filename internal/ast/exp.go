package ast

// Exp is an expression node. The set of implementations is closed; consumers
// switch over every kind and treat anything else as a structural error.
type Exp interface {
	expNode()
}

// Sequence is a block body: ordered items and an optional trailing result.
type Sequence struct {
	Items  []SequenceItem
	Result Exp
}

// SequenceItem is a statement inside a sequence.
type SequenceItem interface {
	seqItem()
}

// ExpItem is an expression statement (`e;`).
type ExpItem struct {
	Exp Exp
}

// LetItem is `let binds: T = e;`.
type LetItem struct {
	Bindings []string
	Type     Type
	Value    Exp
}

// DeclareItem is `let binds: T;` without an initializer.
type DeclareItem struct {
	Bindings []string
	Type     Type
}

func (*ExpItem) seqItem()     {}
func (*LetItem) seqItem()     {}
func (*DeclareItem) seqItem() {}

// LiteralKind classifies a literal value.
type LiteralKind int

const (
	LiteralNumber LiteralKind = iota
	LiteralBool
	LiteralAddress
	LiteralBytes
	LiteralHex
)

// ValueExp is a literal value.
type ValueExp struct {
	Kind LiteralKind
	Text string
}

// UnitExp is ().
type UnitExp struct{}

// NameExp is a bare name reference.
type NameExp struct {
	Chain NameAccessChain
}

// MoveExp is `move x`.
type MoveExp struct {
	Var string
}

// CopyExp is `copy x`.
type CopyExp struct {
	Var string
}

// CallExp is a direct or qualified call `chain(args)`.
type CallExp struct {
	Target  NameAccessChain
	IsMacro bool
	Args    []Exp
}

// FieldInit is one `name: value` initializer inside a pack.
type FieldInit struct {
	Name  string
	Value Exp
}

// PackExp constructs a struct value `T { f: e, ... }`.
type PackExp struct {
	Type   NameAccessChain
	Fields []FieldInit
}

// VectorExp is `vector<T>[e, ...]`.
type VectorExp struct {
	ElemTypes []Type
	Elems     []Exp
}

// IfElseExp is `if (c) t else e`; Else is nil when absent.
type IfElseExp struct {
	Cond Exp
	Then Exp
	Else Exp
}

// MatchArm is one `pattern if guard => body` arm.
type MatchArm struct {
	Pattern string
	Guard   Exp
	Body    Exp
}

// MatchExp is `match (subject) { arms }`.
type MatchExp struct {
	Subject Exp
	Arms    []MatchArm
}

// WhileExp is `while (c) body`.
type WhileExp struct {
	Cond Exp
	Body Exp
}

// LoopExp is `loop body`.
type LoopExp struct {
	Body Exp
}

// LabeledExp is `'label: e`.
type LabeledExp struct {
	Label string
	Body  Exp
}

// BlockExp is a nested `{ ... }`.
type BlockExp struct {
	Seq Sequence
}

// LambdaParam is a lambda binding with an optional type.
type LambdaParam struct {
	Name string
	Type Type
}

// LambdaExp is `|params| body`.
type LambdaExp struct {
	Params []LambdaParam
	Return Type
	Body   Exp
}

// QuantRange binds a quantified variable over a range or type.
type QuantRange struct {
	Var   string
	Range Exp
}

// QuantExp is a specification-only `forall`/`exists`.
type QuantExp struct {
	Kind      string
	Ranges    []QuantRange
	Triggers  [][]Exp
	Condition Exp
	Body      Exp
}

// SpecBlockExp is an inline `spec { ... }` block.
type SpecBlockExp struct {
	Conditions []Exp
}

// ExpListExp is a tuple expression `(a, b)`.
type ExpListExp struct {
	Exps []Exp
}

// AssignExp is `lhs = rhs`.
type AssignExp struct {
	Lhs Exp
	Rhs Exp
}

// AbortExp is `abort code`; Code is nil for a bare abort.
type AbortExp struct {
	Code Exp
}

// ReturnExp is `return 'label e`.
type ReturnExp struct {
	Label string
	Value Exp
}

// BreakExp is `break 'label e`.
type BreakExp struct {
	Label string
	Value Exp
}

// ContinueExp is `continue 'label`.
type ContinueExp struct {
	Label string
}

// DerefExp is `*e`.
type DerefExp struct {
	Exp Exp
}

// UnaryExp is `!e` and friends.
type UnaryExp struct {
	Op  string
	Exp Exp
}

// BinaryExp is `l op r`.
type BinaryExp struct {
	Op    string
	Left  Exp
	Right Exp
}

// BorrowExp is `&e` or `&mut e`.
type BorrowExp struct {
	Mut bool
	Exp Exp
}

// DotExp is field access `e.f`.
type DotExp struct {
	Receiver Exp
	Field    string
}

// DotCallExp is method-call syntax `e.m<T>(args)`.
type DotCallExp struct {
	Receiver Exp
	Method   string
	IsMacro  bool
	TypeArgs []Type
	Args     []Exp
}

// IndexExp is `e[i, ...]`.
type IndexExp struct {
	Target  Exp
	Indices []Exp
}

// CastExp is `(e as T)`.
type CastExp struct {
	Exp  Exp
	Type Type
}

// AnnotateExp is `(e: T)`.
type AnnotateExp struct {
	Exp  Exp
	Type Type
}

// ParensExp is `(e)`.
type ParensExp struct {
	Exp Exp
}

// UnresolvedExp marks an expression the front-end could not parse.
type UnresolvedExp struct{}

func (*ValueExp) expNode()      {}
func (*UnitExp) expNode()       {}
func (*NameExp) expNode()       {}
func (*MoveExp) expNode()       {}
func (*CopyExp) expNode()       {}
func (*CallExp) expNode()       {}
func (*PackExp) expNode()       {}
func (*VectorExp) expNode()     {}
func (*IfElseExp) expNode()     {}
func (*MatchExp) expNode()      {}
func (*WhileExp) expNode()      {}
func (*LoopExp) expNode()       {}
func (*LabeledExp) expNode()    {}
func (*BlockExp) expNode()      {}
func (*LambdaExp) expNode()     {}
func (*QuantExp) expNode()      {}
func (*SpecBlockExp) expNode()  {}
func (*ExpListExp) expNode()    {}
func (*AssignExp) expNode()     {}
func (*AbortExp) expNode()      {}
func (*ReturnExp) expNode()     {}
func (*BreakExp) expNode()      {}
func (*ContinueExp) expNode()   {}
func (*DerefExp) expNode()      {}
func (*UnaryExp) expNode()      {}
func (*BinaryExp) expNode()     {}
func (*BorrowExp) expNode()     {}
func (*DotExp) expNode()        {}
func (*DotCallExp) expNode()    {}
func (*IndexExp) expNode()      {}
func (*CastExp) expNode()       {}
func (*AnnotateExp) expNode()   {}
func (*ParensExp) expNode()     {}
func (*UnresolvedExp) expNode() {}
