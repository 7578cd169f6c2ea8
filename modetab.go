package ruc

// Primitive modes are small negative sentinels rather than mode-tab
// indices (spec §3): they never need interning because there's only
// ever one of each.
const (
	LInt       = -1
	LFloat     = -2
	LChar      = -3
	LVoid      = -4
	LVoidAster = -5
)

// Mode-tab header tags. A composite mode's header always starts with
// one of these.
const (
	MFunction = iota + 1
	MArray
	MStruct
	MPointer
)

// modeTab is the flat integer vector described in spec §3/§4.3: a
// mode is identified by the index at which its header begins, and
// structurally-equal headers are deduplicated (interned) rather than
// appended twice.
type modeTab struct {
	entries []int
	// StartMode is the first user-installable mode index, set once
	// InstallPredefinedModes has run (spec §4.3).
	StartMode int

	// MessageInfoMode, MsgSendMode and InterpreterMode are the indices
	// the three predefined modes land at, recorded on this instance by
	// InstallPredefinedModes instead of living as package-level state
	// (spec §9's redesign note: no hidden singletons). They're stable
	// across instances built the same way because interning is
	// structural, but each modeTab now owns its own copy rather than
	// every caller racing to read one shared global.
	MessageInfoMode int
	MsgSendMode     int
	InterpreterMode int
}

func newModeTab(capacityHint int) *modeTab {
	return &modeTab{entries: make([]int, 0, capacityHint)}
}

// headerLen returns how many ints the header beginning at start
// occupies, computed the same way the original compiler's walkers
// compute it: structs and functions carry their own length in a
// count field, pointers are always two ints, and arrays carry their
// element count as a third int (needed to size their storage
// correctly — see wordSize).
func (t *modeTab) headerLen(start int) int {
	switch t.entries[start] {
	case MFunction:
		paramCount := t.entries[start+2]
		return 3 + paramCount
	case MStruct:
		fieldCount := t.entries[start+2]
		return 3 + fieldCount*2
	case MArray:
		return 3
	case MPointer:
		return 2
	default:
		return 1
	}
}

func headerEqual(a, b []int) bool {
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

// install performs the structural interning invariant of spec §3: a
// linear scan seeks a structurally-equal existing mode before
// appending a new one.
func (t *modeTab) install(header []int) int {
	for start := 0; start < len(t.entries); {
		l := t.headerLen(start)
		if headerEqual(t.entries[start:start+l], header) {
			return start
		}
		start += l
	}
	idx := len(t.entries)
	t.entries = append(t.entries, header...)
	return idx
}

func (t *modeTab) InstallFunction(returnMode int, paramModes []int) int {
	header := make([]int, 0, 3+len(paramModes))
	header = append(header, MFunction, returnMode, len(paramModes))
	header = append(header, paramModes...)
	return t.install(header)
}

// InstallArray installs (or reuses, via structural interning) an array
// mode of count elements, each of mode elemMode. count must be the
// declared element count (spec §4.7's constant array-size declarator)
// so wordSize can size the array's actual storage instead of treating
// every array as a single element.
func (t *modeTab) InstallArray(elemMode, count int) int {
	return t.install([]int{MArray, elemMode, count})
}

func (t *modeTab) InstallPointer(pointeeMode int) int {
	return t.install([]int{MPointer, pointeeMode})
}

// structField pairs a field's mode with the repr-tab index of its
// name, matching the mode-tab struct header layout (field-mode,
// field-name-repr) x N.
type structField struct {
	Mode     int
	NameRepr int
}

func (t *modeTab) InstallStruct(totalSize int, fields []structField) int {
	header := make([]int, 0, 3+len(fields)*2)
	header = append(header, MStruct, totalSize, len(fields))
	for _, f := range fields {
		header = append(header, f.Mode, f.NameRepr)
	}
	return t.install(header)
}

func (t *modeTab) IsFunction(idx int) bool { return idx >= 0 && t.entries[idx] == MFunction }
func (t *modeTab) IsArray(idx int) bool    { return idx >= 0 && t.entries[idx] == MArray }
func (t *modeTab) IsStruct(idx int) bool   { return idx >= 0 && t.entries[idx] == MStruct }
func (t *modeTab) IsPointer(idx int) bool  { return idx >= 0 && t.entries[idx] == MPointer }

func (t *modeTab) IsNumeric(idx int) bool {
	return idx == LInt || idx == LFloat || idx == LChar
}

func (t *modeTab) ReturnMode(idx int) int {
	return t.entries[idx+1]
}

func (t *modeTab) ParamCount(idx int) int {
	return t.entries[idx+2]
}

func (t *modeTab) ParamMode(idx, i int) int {
	return t.entries[idx+3+i]
}

func (t *modeTab) ElementMode(idx int) int {
	return t.entries[idx+1]
}

// ArrayCount returns an array mode's declared element count.
func (t *modeTab) ArrayCount(idx int) int {
	return t.entries[idx+2]
}

func (t *modeTab) PointeeMode(idx int) int {
	return t.entries[idx+1]
}

func (t *modeTab) StructSize(idx int) int {
	return t.entries[idx+1]
}

func (t *modeTab) FieldCount(idx int) int {
	return t.entries[idx+2]
}

// FieldAt returns the mode and name-repr of the i'th field of a
// struct mode, plus its word displacement within the struct.
func (t *modeTab) FieldAt(idx, i int) (mode, nameRepr, displacement int) {
	base := idx + 3 + i*2
	mode = t.entries[base]
	nameRepr = t.entries[base+1]
	displacement = 0
	for j := 0; j < i; j++ {
		displacement += t.wordSize(t.entries[idx+3+j*2])
	}
	return
}

// wordSize is how many stack words a value of the given mode
// occupies. LFLOAT values are doubles and take two words, structs
// occupy their declared size, an array occupies its element count
// times its element's own word size (recursively, so an array of
// floats or an array of structs is sized correctly too), and
// everything else is one word.
func (t *modeTab) wordSize(mode int) int {
	switch mode {
	case LFloat:
		return 2
	}
	if t.IsStruct(mode) {
		return t.StructSize(mode)
	}
	if t.IsArray(mode) {
		return t.ArrayCount(mode) * t.wordSize(t.ElementMode(mode))
	}
	return 1
}

// WordSize exports wordSize for callers outside this file (the
// expression and declaration analyzers) that need to size a value on
// the evaluation stack or in a struct/array layout.
func (t *modeTab) WordSize(mode int) int {
	return t.wordSize(mode)
}

// FindField looks up a struct field by its repr-tab name index,
// returning its mode and word displacement.
func (t *modeTab) FindField(structMode, nameRepr int) (mode, displacement int, ok bool) {
	n := t.FieldCount(structMode)
	for i := 0; i < n; i++ {
		m, nr, d := t.FieldAt(structMode, i)
		if nr == nameRepr {
			return m, d, true
		}
	}
	return 0, 0, false
}

// InstallPredefinedModes installs, in order, the message-info struct
// and the two built-in function modes described in spec §4.3,
// reproducing the original compiler's init_modetab bit-for-bit
// (SPEC_FULL.md item 1), and records their indices on modes itself
// (MessageInfoMode/MsgSendMode/InterpreterMode) rather than in
// package-level state, so each modeTab instance owns its own notion of
// "the message-send mode" instead of every caller sharing one mutable
// global that the most recent install clobbers.
func InstallPredefinedModes(modes *modeTab, repr *reprTab) {
	numThRepr := repr.internString("numTh")
	dataRepr := repr.internString("data")

	modes.MessageInfoMode = modes.InstallStruct(2, []structField{
		{Mode: LInt, NameRepr: numThRepr},
		{Mode: LInt, NameRepr: dataRepr},
	})

	modes.MsgSendMode = modes.InstallFunction(LVoid, []int{modes.MessageInfoMode})
	modes.InterpreterMode = modes.InstallFunction(LVoidAster, []int{LVoidAster})

	modes.StartMode = len(modes.entries)
}
