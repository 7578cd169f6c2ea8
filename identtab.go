package ruc

import "errors"

// ErrRedeclared is returned by identTab.Declare when repr already
// names something in the same scope; the decl/statement analyzer
// turns this into a positioned Diagnostic.
var ErrRedeclared = errors.New("redeclaration in the same scope")

// IdentKind classifies what an identifier entry names.
type IdentKind int

const (
	KindVar IdentKind = iota
	KindParam
	KindFunc
	KindStructTag
)

// identEntry is an ident-tab entry (spec §3): a name bound to a mode
// and a frame/global displacement.
type identEntry struct {
	ReprIndex    int
	ModeIndex    int
	Displacement int
	Kind         IdentKind
}

// overlayEntry records, for one name shadowed or freshly bound inside
// a scope, what identTab.current pointed at before the scope began,
// so LeaveScope can restore it in O(1).
type overlayEntry struct {
	repr      int
	prevIdent int
	hadPrev   bool
}

type scopeFrame struct {
	savedDisplacement int
	declared          map[int]bool
	overlay           []overlayEntry
}

// identTab is the scoped symbol table of spec §4.4. Per the design
// note in spec §9, repr-tab stays immutable after interning; the
// "current binding" pointer it would otherwise have carried lives
// here instead, as a plain map overlaid per scope so leaving a scope
// is a cheap, explicit replay instead of a repr-tab mutation.
type identTab struct {
	entries []identEntry
	current map[int]int

	scopes []scopeFrame

	globalDeclared      map[int]bool
	localDisplacement   int
	globalDisplacement  int
	maxDisplacement     int
}

func newIdentTab(capacityHint int) *identTab {
	return &identTab{
		entries:        make([]identEntry, 0, capacityHint),
		current:        make(map[int]int, capacityHint),
		globalDeclared: make(map[int]bool),
	}
}

// EnterScope pushes a new naming region (spec §4.4), saving the
// current local-displacement counter so sibling blocks can reuse the
// same frame offsets.
func (t *identTab) EnterScope() {
	t.scopes = append(t.scopes, scopeFrame{
		savedDisplacement: t.localDisplacement,
		declared:          make(map[int]bool),
	})
}

// LeaveScope restores every shadowed binding the scope overlaid and
// rewinds the local-displacement counter.
func (t *identTab) LeaveScope() {
	n := len(t.scopes)
	top := t.scopes[n-1]
	t.scopes = t.scopes[:n-1]

	for i := len(top.overlay) - 1; i >= 0; i-- {
		ov := top.overlay[i]
		if ov.hadPrev {
			t.current[ov.repr] = ov.prevIdent
		} else {
			delete(t.current, ov.repr)
		}
	}
	t.localDisplacement = top.savedDisplacement
}

// BeginFunction resets the frame-local displacement counter and the
// running high-water mark a function's definition tracks for the
// code generator's stack-frame size (spec §4.4's "max-displacement").
func (t *identTab) BeginFunction() {
	t.localDisplacement = 0
	t.maxDisplacement = 0
}

func (t *identTab) MaxDisplacement() int {
	return t.maxDisplacement
}

// GlobalWords is the number of stack words the global segment needs,
// for the code generator's data-segment size.
func (t *identTab) GlobalWords() int {
	return -t.globalDisplacement
}

func (t *identTab) InScope() bool {
	return len(t.scopes) > 0
}

// Declare binds repr to mode/kind, allocating `words` stack words of
// displacement for it. It fails with ErrRedeclared if repr
// already names something in the *same* scope (shadowing an outer
// scope's binding is allowed).
func (t *identTab) Declare(repr, mode int, kind IdentKind, words int) (int, error) {
	if t.InScope() {
		top := &t.scopes[len(t.scopes)-1]
		if top.declared[repr] {
			return -1, ErrRedeclared
		}
	} else if t.globalDeclared[repr] {
		return -1, ErrRedeclared
	}

	var disp int
	if t.InScope() {
		disp = t.localDisplacement
		t.localDisplacement += words
		if t.localDisplacement > t.maxDisplacement {
			t.maxDisplacement = t.localDisplacement
		}
	} else {
		disp = t.globalDisplacement
		t.globalDisplacement -= words
		t.globalDeclared[repr] = true
	}

	idx := len(t.entries)
	t.entries = append(t.entries, identEntry{
		ReprIndex:    repr,
		ModeIndex:    mode,
		Displacement: disp,
		Kind:         kind,
	})

	prevIdent, hadPrev := t.current[repr]
	if t.InScope() {
		top := &t.scopes[len(t.scopes)-1]
		top.declared[repr] = true
		top.overlay = append(top.overlay, overlayEntry{repr: repr, prevIdent: prevIdent, hadPrev: hadPrev})
	}
	t.current[repr] = idx
	return idx, nil
}

const identUndeclared = -1

// Resolve looks up the identifier currently bound to repr, or reports
// it undeclared.
func (t *identTab) Resolve(repr int) (int, bool) {
	idx, ok := t.current[repr]
	if !ok {
		return identUndeclared, false
	}
	return idx, true
}

func (t *identTab) Entry(idx int) identEntry {
	return t.entries[idx]
}

func (t *identTab) Len() int {
	return len(t.entries)
}
