package ruc

// reprEntry is one interned spelling: an identifier or keyword byte
// sequence, its hash-chain link, and a reference count (spec §4.2 /
// §3's Representation entry).
type reprEntry struct {
	next     int // index of the previous entry in the same bucket, or -1
	refCount int
	bytes    []byte
	keyword  bool
	keywordTag TokenTag
}

const reprBucketCount = 256

// reprTab interns identifier and keyword spellings. Per the design
// note in spec §9 ("Repr-tab 'current binding' pointer mutated by
// scopes → separate scope-lookup map"), reprTab itself is immutable
// once an entry is interned: it never tracks which ident-tab entry
// currently owns a name. That bookkeeping lives in identTab instead
// (see identtab.go), so two reprTab instances built from the same
// inputs are always structurally interchangeable.
type reprTab struct {
	entries []reprEntry
	buckets [reprBucketCount]int
}

func newReprTab(capacityHint int) *reprTab {
	t := &reprTab{entries: make([]reprEntry, 0, capacityHint)}
	for i := range t.buckets {
		t.buckets[i] = -1
	}
	return t
}

// hashSpelling reproduces the original compiler's additive byte-sum
// hash (see SPEC_FULL.md item 5): changing it would silently change
// which interned spellings collide, which is exactly the behavior
// this rewrite is grounded against.
func hashSpelling(b []byte) int {
	sum := 0
	for _, c := range b {
		sum += int(c)
	}
	return sum & (reprBucketCount - 1)
}

func (t *reprTab) find(b []byte) (int, bool) {
	h := hashSpelling(b)
	for i := t.buckets[h]; i != -1; i = t.entries[i].next {
		if string(t.entries[i].bytes) == string(b) {
			return i, true
		}
	}
	return -1, false
}

// lookup returns the index of an already-interned spelling without
// inserting it.
func (t *reprTab) lookup(b []byte) (int, bool) {
	return t.find(b)
}

// intern returns the stable index for spelling b, inserting it into
// the hash chain on first sight and bumping its reference count on
// every subsequent sighting.
func (t *reprTab) intern(b []byte) int {
	if idx, ok := t.find(b); ok {
		t.entries[idx].refCount++
		return idx
	}

	h := hashSpelling(b)
	idx := len(t.entries)
	cp := make([]byte, len(b))
	copy(cp, b)
	t.entries = append(t.entries, reprEntry{
		next:     t.buckets[h],
		refCount: 1,
		bytes:    cp,
	})
	t.buckets[h] = idx
	return idx
}

// internString is a convenience wrapper for literal Go strings.
func (t *reprTab) internString(s string) int {
	return t.intern([]byte(s))
}

func (t *reprTab) spelling(idx int) []byte {
	return t.entries[idx].bytes
}

func (t *reprTab) spellingString(idx int) string {
	return string(t.entries[idx].bytes)
}

func (t *reprTab) markKeyword(idx int, tag TokenTag) {
	t.entries[idx].keyword = true
	t.entries[idx].keywordTag = tag
}

func (t *reprTab) isKeyword(idx int) bool {
	return t.entries[idx].keyword
}

func (t *reprTab) keywordTag(idx int) TokenTag {
	return t.entries[idx].keywordTag
}

func (t *reprTab) Len() int {
	return len(t.entries)
}
