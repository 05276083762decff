package index

import (
	"fmt"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring"

	apperrors "github.com/Adithya-Monish-Kumar-K/textindex/pkg/errors"
)

// MemoryIndex keeps the inverted map (term -> documents) and the forward map
// (document -> term frequencies) in lock-step. Document IDs are interned to
// uint32 ordinals so each term's document set can be held in a roaring bitmap.
//
// Mutations take the write lock; reads share the read lock.
type MemoryIndex struct {
	mu       sync.RWMutex
	inverted map[string]*roaring.Bitmap
	forward  map[string]*document
	ids      []string // ordinal -> doc ID, "" for a free slot
	free     []uint32
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		inverted: make(map[string]*roaring.Bitmap),
		forward:  make(map[string]*document),
	}
}

// Add inserts a document. An existing document with the same ID is replaced
// when replace is set; otherwise ErrAlreadyIndexed is returned and nothing
// changes. The index takes ownership of freqs.
func (m *MemoryIndex) Add(docID string, freqs map[string]int, replace bool) (bool, error) {
	if err := validateEntry(docID, freqs); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	replaced := false
	if _, exists := m.forward[docID]; exists {
		if !replace {
			return false, apperrors.New("add", docID, apperrors.ErrAlreadyIndexed)
		}
		m.removeLocked(docID)
		replaced = true
	}
	m.insertLocked(docID, freqs)
	return replaced, nil
}

// AddBatch inserts all entries or none of them. It returns the number of
// existing documents that were replaced.
func (m *MemoryIndex) AddBatch(entries []Entry, replace bool) (int, error) {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if err := validateEntry(e.DocID, e.Frequencies); err != nil {
			return 0, err
		}
		if _, dup := seen[e.DocID]; dup {
			return 0, apperrors.Newf("add", e.DocID, apperrors.ErrAlreadyIndexed, "appears more than once in batch")
		}
		seen[e.DocID] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !replace {
		for _, e := range entries {
			if _, exists := m.forward[e.DocID]; exists {
				return 0, apperrors.New("add", e.DocID, apperrors.ErrAlreadyIndexed)
			}
		}
	}
	replaced := 0
	for _, e := range entries {
		if m.removeLocked(e.DocID) {
			replaced++
		}
		m.insertLocked(e.DocID, e.Frequencies)
	}
	return replaced, nil
}

// Remove deletes a document and prunes terms left without documents. It
// reports whether the document was present.
func (m *MemoryIndex) Remove(docID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeLocked(docID)
}

// Lookup returns the postings of every given term found in the index along
// with the corpus size, read under a single lock.
func (m *MemoryIndex) Lookup(terms []string) Lookup {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := Lookup{
		CorpusSize: len(m.forward),
		Postings:   make(map[string]PostingList, len(terms)),
	}
	if result.CorpusSize == 0 {
		return result
	}
	for _, term := range terms {
		bitmap, ok := m.inverted[term]
		if !ok {
			continue
		}
		postings := make(PostingList, 0, bitmap.GetCardinality())
		for iter := bitmap.Iterator(); iter.HasNext(); {
			docID := m.ids[iter.Next()]
			doc := m.forward[docID]
			postings = append(postings, Posting{
				DocID:     docID,
				Frequency: doc.freqs[term],
				DocLength: doc.length,
			})
		}
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].DocID < postings[j].DocID
		})
		result.Postings[term] = postings
	}
	return result
}

// Match returns the IDs of documents containing at least one of terms,
// sorted ascending.
func (m *MemoryIndex) Match(terms []string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bitmaps := make([]*roaring.Bitmap, 0, len(terms))
	for _, term := range terms {
		if bitmap, ok := m.inverted[term]; ok {
			bitmaps = append(bitmaps, bitmap)
		}
	}
	if len(bitmaps) == 0 {
		return []string{}
	}
	union := roaring.FastOr(bitmaps...)
	result := make([]string, 0, union.GetCardinality())
	for iter := union.Iterator(); iter.HasNext(); {
		result = append(result, m.ids[iter.Next()])
	}
	sort.Strings(result)
	return result
}

func (m *MemoryIndex) Contains(docID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.forward[docID]
	return ok
}

func (m *MemoryIndex) DocCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.forward)
}

func (m *MemoryIndex) TermCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.inverted)
}

// Terms returns the live vocabulary, sorted.
func (m *MemoryIndex) Terms() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	terms := make([]string, 0, len(m.inverted))
	for term := range m.inverted {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// DocTerms returns the term frequencies recorded for a document, or nil if
// it is not indexed.
func (m *MemoryIndex) DocTerms(docID string) map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.forward[docID]
	if !ok {
		return nil
	}
	freqs := make(map[string]int, len(doc.freqs))
	for term, n := range doc.freqs {
		freqs[term] = n
	}
	return freqs
}

// Snapshot returns every term with its postings, terms sorted and postings
// sorted by document ID.
func (m *MemoryIndex) Snapshot() []TermEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]TermEntry, 0, len(m.inverted))
	for term, bitmap := range m.inverted {
		postings := make(PostingList, 0, bitmap.GetCardinality())
		for iter := bitmap.Iterator(); iter.HasNext(); {
			docID := m.ids[iter.Next()]
			doc := m.forward[docID]
			postings = append(postings, Posting{
				DocID:     docID,
				Frequency: doc.freqs[term],
				DocLength: doc.length,
			})
		}
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].DocID < postings[j].DocID
		})
		entries = append(entries, TermEntry{
			Term:     term,
			Postings: postings,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

func (m *MemoryIndex) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inverted = make(map[string]*roaring.Bitmap)
	m.forward = make(map[string]*document)
	m.ids = nil
	m.free = nil
}

// Verify checks that the inverted and forward maps agree: every document is
// listed under exactly the terms it contains, no term has an empty document
// set, and the ordinal table matches the forward map.
func (m *MemoryIndex) Verify() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	live := 0
	for ord, docID := range m.ids {
		if docID == "" {
			continue
		}
		live++
		doc, ok := m.forward[docID]
		if !ok {
			return fmt.Errorf("ordinal %d maps to unindexed document %q", ord, docID)
		}
		if doc.ordinal != uint32(ord) {
			return fmt.Errorf("document %q has ordinal %d, table says %d", docID, doc.ordinal, ord)
		}
	}
	if live != len(m.forward) {
		return fmt.Errorf("ordinal table has %d live entries, forward map has %d", live, len(m.forward))
	}
	if live+len(m.free) != len(m.ids) {
		return fmt.Errorf("free list has %d slots, want %d", len(m.free), len(m.ids)-live)
	}

	for docID, doc := range m.forward {
		if len(doc.freqs) == 0 {
			return fmt.Errorf("document %q has no terms", docID)
		}
		total := 0
		for term, n := range doc.freqs {
			if n <= 0 {
				return fmt.Errorf("document %q has frequency %d for %q", docID, n, term)
			}
			total += n
			bitmap, ok := m.inverted[term]
			if !ok || !bitmap.Contains(doc.ordinal) {
				return fmt.Errorf("document %q contains %q but is not listed under it", docID, term)
			}
		}
		if total != doc.length {
			return fmt.Errorf("document %q length is %d, frequencies sum to %d", docID, doc.length, total)
		}
	}

	for term, bitmap := range m.inverted {
		if bitmap.IsEmpty() {
			return fmt.Errorf("term %q has an empty document set", term)
		}
		for iter := bitmap.Iterator(); iter.HasNext(); {
			ord := iter.Next()
			if int(ord) >= len(m.ids) || m.ids[ord] == "" {
				return fmt.Errorf("term %q lists free ordinal %d", term, ord)
			}
			docID := m.ids[ord]
			if _, ok := m.forward[docID].freqs[term]; !ok {
				return fmt.Errorf("term %q lists document %q which does not contain it", term, docID)
			}
		}
	}
	return nil
}

func (m *MemoryIndex) insertLocked(docID string, freqs map[string]int) {
	ord := m.allocOrdinal(docID)
	length := 0
	for term, n := range freqs {
		bitmap, ok := m.inverted[term]
		if !ok {
			bitmap = roaring.New()
			m.inverted[term] = bitmap
		}
		bitmap.Add(ord)
		length += n
	}
	m.forward[docID] = &document{
		ordinal: ord,
		freqs:   freqs,
		length:  length,
	}
}

func (m *MemoryIndex) removeLocked(docID string) bool {
	doc, ok := m.forward[docID]
	if !ok {
		return false
	}
	for term := range doc.freqs {
		bitmap, ok := m.inverted[term]
		if !ok {
			continue
		}
		bitmap.Remove(doc.ordinal)
		if bitmap.IsEmpty() {
			delete(m.inverted, term)
		}
	}
	delete(m.forward, docID)
	m.ids[doc.ordinal] = ""
	m.free = append(m.free, doc.ordinal)
	return true
}

func (m *MemoryIndex) allocOrdinal(docID string) uint32 {
	if n := len(m.free); n > 0 {
		ord := m.free[n-1]
		m.free = m.free[:n-1]
		m.ids[ord] = docID
		return ord
	}
	m.ids = append(m.ids, docID)
	return uint32(len(m.ids) - 1)
}

func validateEntry(docID string, freqs map[string]int) error {
	if docID == "" {
		return apperrors.Newf("add", docID, apperrors.ErrInvalidArgument, "document ID must not be empty")
	}
	if len(freqs) == 0 {
		return apperrors.New("add", docID, apperrors.ErrNoIndexableContent)
	}
	for term, n := range freqs {
		if term == "" || n <= 0 {
			return apperrors.Newf("add", docID, apperrors.ErrInvalidArgument, "bad frequency %d for term %q", n, term)
		}
	}
	return nil
}
