package ranker

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/textindex/internal/indexer/index"
)

func TestRankZeroIDFTieBreaksByID(t *testing.T) {
	postings := map[string]index.PostingList{
		"cat": {
			{DocID: "d2", Frequency: 1, DocLength: 4},
			{DocID: "d1", Frequency: 1, DocLength: 3},
		},
	}
	ranked := Rank(postings, 2, 0)
	require.Len(t, ranked, 2)
	assert.Equal(t, []string{"d1", "d2"}, DocIDs(ranked))
	assert.Zero(t, ranked[0].Score)
	assert.Zero(t, ranked[1].Score)
}

func TestRankSingleRareTerm(t *testing.T) {
	postings := map[string]index.PostingList{
		"cherry": {{DocID: "d2", Frequency: 3, DocLength: 4}},
	}
	ranked := Rank(postings, 2, 0)
	require.Len(t, ranked, 1)
	assert.Equal(t, "d2", ranked[0].DocID)
	assert.InDelta(t, 0.75*math.Log10(2), ranked[0].Score, 1e-12)
}

func TestRankSumsAcrossTerms(t *testing.T) {
	postings := map[string]index.PostingList{
		"a": {
			{DocID: "x", Frequency: 1, DocLength: 2},
			{DocID: "y", Frequency: 1, DocLength: 4},
		},
		"b": {
			{DocID: "y", Frequency: 3, DocLength: 4},
		},
	}
	ranked := Rank(postings, 4, 0)
	require.Len(t, ranked, 2)

	idfA := math.Log10(4.0 / 2.0)
	idfB := math.Log10(4.0 / 1.0)
	wantY := 0.25*idfA + 0.75*idfB
	wantX := 0.5 * idfA
	assert.Equal(t, "y", ranked[0].DocID)
	assert.InDelta(t, wantY, ranked[0].Score, 1e-12)
	assert.Equal(t, "x", ranked[1].DocID)
	assert.InDelta(t, wantX, ranked[1].Score, 1e-12)
}

func TestRankLimit(t *testing.T) {
	pl := make(index.PostingList, 0, 10)
	for i := 0; i < 10; i++ {
		pl = append(pl, index.Posting{DocID: fmt.Sprintf("doc-%02d", i), Frequency: i + 1, DocLength: 10})
	}
	ranked := Rank(map[string]index.PostingList{"t": pl}, 20, 3)
	assert.Equal(t, []string{"doc-09", "doc-08", "doc-07"}, DocIDs(ranked))
}

func TestRankEmptyCorpus(t *testing.T) {
	assert.Empty(t, Rank(map[string]index.PostingList{}, 0, 0))
	assert.Empty(t, Rank(nil, 3, 0))
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b ScoredDoc
		want int
	}{
		{"higher score first", ScoredDoc{"b", 0.5}, ScoredDoc{"a", 0.1}, -1},
		{"lower score last", ScoredDoc{"a", 0.1}, ScoredDoc{"b", 0.5}, 1},
		{"tie by id", ScoredDoc{"a", 0.3}, ScoredDoc{"b", 0.3}, -1},
		{"equal", ScoredDoc{"a", 0.3}, ScoredDoc{"a", 0.3}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
		})
	}
}

func TestFrequencies(t *testing.T) {
	assert.InDelta(t, 2.0/3.0, TermFrequency(2, 3), 1e-12)
	assert.Zero(t, TermFrequency(1, 0))
	assert.Zero(t, InverseDocumentFrequency(2, 2))
	assert.Zero(t, InverseDocumentFrequency(0, 0))
	assert.InDelta(t, 1.0, InverseDocumentFrequency(10, 1), 1e-12)
}

func BenchmarkTFIDFRanking(b *testing.B) {
	for _, numDocs := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("docs_%d", numDocs), func(b *testing.B) {
			pl := make(index.PostingList, numDocs)
			for i := 0; i < numDocs; i++ {
				pl[i] = index.Posting{
					DocID:     fmt.Sprintf("doc-%d", i),
					Frequency: (i % 10) + 1,
					DocLength: 100 + i%50,
				}
			}
			postings := map[string]index.PostingList{"search": pl}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = Rank(postings, numDocs*2, 10)
			}
		})
	}
}
