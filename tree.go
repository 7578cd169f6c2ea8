package ruc

// Tag identifies a structural tree node (spec §4.8's table). Tags
// live in a small, low range that's disjoint from the lexeme range
// TokenTag's punctuator/operator constants occupy (see token.go),
// exactly the way the original compiler's tree.c keeps its own
// structural tags apart from the 9001-9595 lexeme band
// (SPEC_FULL.md item 2).
type Tag int

const (
	_ Tag = iota

	// Declarations
	TFuncdef
	TDeclid
	TDeclarr
	TStructbeg
	TStructend

	// Operators (statements)
	TBegin
	TEnd
	TPrintid
	TPrintf
	TGetid
	TGoto
	TLabel
	TIf
	TFor
	TWhile
	TDo
	TSwitch
	TCase
	TDefault
	TReturnval
	TReturnvoid
	TBreak
	TContinue
	NOP

	// Transparent grouping markers (spec §9 Open Questions): balanced
	// like TBegin/TEnd but carry no semantics of their own beyond
	// structural balance, preserved verbatim for the code generator.
	TCreatedirectc
	TExitc

	// Expressions
	TBeginit
	TStructinit
	TPrint
	TCondexpr
	TSelect
	TAddrtoval
	TAddrtovald
	TIdenttoval
	TIdenttovald
	TIdenttoaddr
	TIdent
	TConst
	TConstd
	TString
	TStringd
	TSliceident
	TSlice
	TCall1
	TCall2
	TExprend
)

func (t Tag) IsOperatorTag() bool {
	switch t {
	case TFuncdef, TDeclid, TDeclarr, TStructbeg, TStructend,
		TBegin, TEnd, TPrintid, TGoto, TLabel, TIf, TFor, TWhile, TDo,
		TSwitch, TCase, TDefault, TReturnval, TReturnvoid, TBreak, TContinue,
		NOP, TCreatedirectc:
		return true
	}
	return false
}

func (t Tag) IsExpressionTag() bool {
	switch t {
	case TBeginit, TStructinit, TPrint, TCondexpr, TSelect, TAddrtoval, TAddrtovald,
		TIdenttoval, TIdenttovald, TIdenttoaddr, TIdent, TConst, TConstd, TString,
		TStringd, TSliceident, TSlice, TCall1, TCall2, TExprend:
		return true
	}
	return false
}

// Tree is the append-only flat integer vector of spec §3/§4.8. Every
// node is a Tag (or, inside an expression, a lexeme TokenTag)
// followed by its fixed or length-prefixed arguments; nothing is ever
// rewritten once appended except via backpatching a previously
// emitted slot (e.g. TIf's else-offset).
type Tree struct {
	nodes []int
}

func newTree(capacityHint int) *Tree {
	return &Tree{nodes: make([]int, 0, capacityHint)}
}

// Len is the offset the next emitted node will land at; it is what
// TFuncdef's body-offset, TIf's else-offset and TFor's clause and
// body offsets all record.
func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) At(i int) int {
	return t.nodes[i]
}

func (t *Tree) Set(i, v int) {
	t.nodes[i] = v
}

func (t *Tree) emit(v int) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, v)
	return idx
}

// EmitTag appends a structural tag.
func (t *Tree) EmitTag(tag Tag) int {
	return t.emit(int(tag))
}

// EmitLexeme appends an operator/punctuator tag directly, used by
// the expression analyzer for binary/unary/compound-assignment nodes
// (spec §8 scenario 3).
func (t *Tree) EmitLexeme(tag TokenTag) int {
	return t.emit(int(tag))
}

// EmitArg appends a plain integer argument (an ident-ref, a mode
// index, a count, a literal value, ...).
func (t *Tree) EmitArg(v int) int {
	return t.emit(v)
}

func (t *Tree) TagAt(i int) Tag {
	return Tag(t.nodes[i])
}

func (t *Tree) LexemeAt(i int) TokenTag {
	return TokenTag(t.nodes[i])
}

// BeginDirect/EndDirect push and pop the transparent TCreatedirectc/
// TExitc grouping pair: balanced like TBegin/TEnd for the validator,
// but carrying no scope or semantics of their own beyond that balance.
func (t *Tree) BeginDirect() int {
	return t.EmitTag(TCreatedirectc)
}

func (t *Tree) EndDirect() int {
	return t.EmitTag(TExitc)
}
