package ruc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReprTabInternIdempotent(t *testing.T) {
	tab := newReprTab(8)
	a := tab.intern([]byte("numTh"))
	b := tab.intern([]byte("numTh"))
	assert.Equal(t, a, b)
	assert.Equal(t, 1, tab.Len())
}

func TestReprTabDistinctSpellings(t *testing.T) {
	tab := newReprTab(8)
	a := tab.internString("foo")
	b := tab.internString("bar")
	assert.NotEqual(t, a, b)
	assert.Equal(t, "foo", tab.spellingString(a))
	assert.Equal(t, "bar", tab.spellingString(b))
}

func TestReprTabLookupMissing(t *testing.T) {
	tab := newReprTab(8)
	_, ok := tab.lookup([]byte("missing"))
	assert.False(t, ok)
}

func TestReprTabHashCollisionStillResolves(t *testing.T) {
	tab := newReprTab(8)
	// "ab" and "ba" sum to the same byte total and therefore the same
	// bucket; the chain walk must still tell them apart.
	require.Equal(t, hashSpelling([]byte("ab")), hashSpelling([]byte("ba")))
	a := tab.internString("ab")
	b := tab.internString("ba")
	assert.NotEqual(t, a, b)
	assert.Equal(t, "ab", tab.spellingString(a))
	assert.Equal(t, "ba", tab.spellingString(b))
}

func TestReprTabKeywordMarking(t *testing.T) {
	tab := newReprTab(8)
	idx := tab.internString("if")
	assert.False(t, tab.isKeyword(idx))
	tab.markKeyword(idx, KwIf)
	assert.True(t, tab.isKeyword(idx))
	assert.Equal(t, KwIf, tab.keywordTag(idx))
}

func TestLoadKeywordsBindsDefaultManifest(t *testing.T) {
	tab := newReprTab(64)
	require.NoError(t, LoadKeywords(tab, defaultKeywordManifest))

	idx, ok := tab.lookup([]byte("main"))
	require.True(t, ok)
	assert.True(t, tab.isKeyword(idx))
	assert.Equal(t, KwMain, tab.keywordTag(idx))

	idx2, ok := tab.lookup([]byte("printf"))
	require.True(t, ok)
	assert.Equal(t, KwPrintf, tab.keywordTag(idx2))
}

func TestLoadKeywordsRejectsMalformedLine(t *testing.T) {
	tab := newReprTab(8)
	err := LoadKeywords(tab, "1000 int extra\n")
	assert.Error(t, err)
}
