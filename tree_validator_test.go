package ruc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildMinimalMain constructs the flat tree for:
//
//	void main() { return; }
func buildMinimalMain(repr *reprTab, modes *modeTab, idents *identTab) *Tree {
	tree := newTree(32)
	mainRepr := repr.internString("main")
	fnMode := modes.InstallFunction(LVoid, nil)
	identIdx, _ := idents.Declare(mainRepr, fnMode, KindFunc, 1)

	tree.EmitTag(TFuncdef)
	tree.EmitArg(identIdx)
	bodySlot := tree.EmitArg(0)
	tree.Set(bodySlot, tree.Len())

	tree.EmitTag(TBegin)
	tree.EmitTag(TReturnvoid)
	tree.EmitTag(TEnd)

	tree.EmitTag(TEnd) // program terminator
	return tree
}

func TestTreeValidatesMinimalProgram(t *testing.T) {
	repr := newReprTab(8)
	modes := newModeTab(8)
	idents := newIdentTab(8)
	tree := buildMinimalMain(repr, modes, idents)
	assert.NoError(t, tree.Validate())
}

func TestTreeValidatesExpressionStatement(t *testing.T) {
	repr := newReprTab(8)
	modes := newModeTab(8)
	idents := newIdentTab(8)
	tree := newTree(32)

	mainRepr := repr.internString("main")
	xRepr := repr.internString("x")
	fnMode := modes.InstallFunction(LVoid, nil)
	fnIdx, _ := idents.Declare(mainRepr, fnMode, KindFunc, 1)

	tree.EmitTag(TFuncdef)
	tree.EmitArg(fnIdx)
	bodySlot := tree.EmitArg(0)
	tree.Set(bodySlot, tree.Len())
	tree.EmitTag(TBegin)

	idents.EnterScope()
	idents.BeginFunction()
	xIdx, _ := idents.Declare(xRepr, LInt, KindVar, 1)

	// x = 1 + 2;
	patchIdx := tree.EmitTag(TIdent)
	tree.EmitArg(idents.Entry(xIdx).Displacement)
	tree.Set(patchIdx, int(TIdenttoaddr))
	tree.EmitTag(TConst)
	tree.EmitArg(1)
	tree.EmitTag(TConst)
	tree.EmitArg(2)
	tree.EmitLexeme(TagPlus)
	tree.EmitLexeme(TagAssign)
	tree.EmitTag(TExprend)

	idents.LeaveScope()
	tree.EmitTag(TReturnvoid)
	tree.EmitTag(TEnd)
	tree.EmitTag(TEnd)

	require.NoError(t, tree.Validate())
}

func TestTreeValidatesIfWithElse(t *testing.T) {
	tree := newTree(32)

	tree.EmitTag(TIf)
	elseSlot := tree.EmitArg(0)
	tree.EmitTag(TConst)
	tree.EmitArg(1)
	tree.EmitTag(TExprend)
	tree.EmitTag(TReturnvoid)
	tree.Set(elseSlot, tree.Len())
	tree.EmitTag(TReturnvoid)
	tree.EmitTag(TEnd)

	_, err := tree.skipOperator(0)
	assert.NoError(t, err)
}

func TestTreeRejectsTruncatedTree(t *testing.T) {
	tree := newTree(4)
	tree.EmitTag(TBegin)
	// no matching TEnd
	assert.Error(t, tree.Validate())
}

func TestTreeRejectsUnknownTag(t *testing.T) {
	tree := newTree(4)
	tree.EmitArg(99999)
	tree.EmitTag(TEnd)
	assert.Error(t, tree.Validate())
}
