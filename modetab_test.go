package ruc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeTabStructuralInterning(t *testing.T) {
	modes := newModeTab(16)
	a := modes.InstallArray(LInt, 10)
	b := modes.InstallArray(LInt, 10)
	assert.Equal(t, a, b, "structurally identical array modes must intern to the same slot")

	c := modes.InstallArray(LFloat, 10)
	assert.NotEqual(t, a, c)

	d := modes.InstallArray(LInt, 4)
	assert.NotEqual(t, a, d, "arrays of the same element mode but different counts are distinct modes")
}

func TestModeTabPointerAndArrayDistinctFromEachOther(t *testing.T) {
	modes := newModeTab(16)
	arr := modes.InstallArray(LInt, 10)
	ptr := modes.InstallPointer(LInt)
	assert.NotEqual(t, arr, ptr)
	assert.True(t, modes.IsArray(arr))
	assert.True(t, modes.IsPointer(ptr))
	assert.False(t, modes.IsArray(ptr))
}

func TestModeTabFunctionHeaderLen(t *testing.T) {
	modes := newModeTab(16)
	f := modes.InstallFunction(LInt, []int{LInt, LFloat})
	assert.Equal(t, LInt, modes.ReturnMode(f))
	require.Equal(t, 2, modes.ParamCount(f))
	assert.Equal(t, LInt, modes.ParamMode(f, 0))
	assert.Equal(t, LFloat, modes.ParamMode(f, 1))
}

func TestModeTabStructFieldDisplacementIsWordBased(t *testing.T) {
	modes := newModeTab(16)
	repr := newReprTab(8)
	xRepr := repr.internString("x")
	yRepr := repr.internString("y")

	s := modes.InstallStruct(3, []structField{
		{Mode: LFloat, NameRepr: xRepr}, // 2 words
		{Mode: LInt, NameRepr: yRepr},   // 1 word
	})

	mode, disp, ok := modes.FindField(s, yRepr)
	require.True(t, ok)
	assert.Equal(t, LInt, mode)
	assert.Equal(t, 2, disp, "y follows x's two-word float field")

	_, _, ok = modes.FindField(s, xRepr)
	require.True(t, ok)
}

func TestModeTabWordSizeDoublesForFloat(t *testing.T) {
	modes := newModeTab(8)
	assert.Equal(t, 1, modes.WordSize(LInt))
	assert.Equal(t, 2, modes.WordSize(LFloat))
}

func TestModeTabWordSizeScalesWithArrayCount(t *testing.T) {
	modes := newModeTab(16)

	ints := modes.InstallArray(LInt, 10)
	assert.Equal(t, 10, modes.WordSize(ints))

	floats := modes.InstallArray(LFloat, 3)
	assert.Equal(t, 6, modes.WordSize(floats), "each float element is two words")
}

func TestModeTabStructFieldDisplacementSkipsWholeArray(t *testing.T) {
	modes := newModeTab(16)
	repr := newReprTab(8)
	aRepr := repr.internString("a")
	bRepr := repr.internString("b")

	arrayMode := modes.InstallArray(LInt, 3)
	s := modes.InstallStruct(4, []structField{
		{Mode: arrayMode, NameRepr: aRepr},
		{Mode: LInt, NameRepr: bRepr},
	})

	mode, disp, ok := modes.FindField(s, bRepr)
	require.True(t, ok)
	assert.Equal(t, LInt, mode)
	assert.Equal(t, 3, disp, "b must follow all three elements of a's array, not just one")
}

func TestInstallPredefinedModesIsStable(t *testing.T) {
	modesA := newModeTab(32)
	reprA := newReprTab(32)
	InstallPredefinedModes(modesA, reprA)

	modesB := newModeTab(32)
	reprB := newReprTab(32)
	InstallPredefinedModes(modesB, reprB)

	assert.True(t, modesA.IsFunction(modesA.MsgSendMode))
	assert.True(t, modesB.IsFunction(modesB.MsgSendMode))
	assert.Equal(t, modesA.MsgSendMode, modesB.MsgSendMode, "structural interning makes the two instances land the predefined modes at the same indices")
	assert.Equal(t, modesA.StartMode, modesB.StartMode)
}
