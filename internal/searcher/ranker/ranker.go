package ranker

import (
	"cmp"
	"math"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/textindex/internal/indexer/index"
)

type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Rank scores every document appearing in postingsPerTerm with TF-IDF:
//
//	tf  = frequency / document length
//	idf = log10(corpusSize / documents containing the term)
//
// and sums the weights per document. Every matched document is returned,
// including those scoring zero, ordered by Compare. A positive limit
// truncates the result.
func Rank(postingsPerTerm map[string]index.PostingList, corpusSize int, limit int) []ScoredDoc {
	if corpusSize == 0 {
		return []ScoredDoc{}
	}
	scores := make(map[string]float64)
	for _, postings := range postingsPerTerm {
		if len(postings) == 0 {
			continue
		}
		idf := InverseDocumentFrequency(corpusSize, len(postings))
		for _, posting := range postings {
			scores[posting.DocID] += TermFrequency(posting.Frequency, posting.DocLength) * idf
		}
	}
	result := make([]ScoredDoc, 0, len(scores))
	for docID, score := range scores {
		result = append(result, ScoredDoc{
			DocID: docID,
			Score: score,
		})
	}
	slices.SortFunc(result, Compare)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// Compare orders by descending score, then ascending document ID.
func Compare(a, b ScoredDoc) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return cmp.Compare(a.DocID, b.DocID)
}

func TermFrequency(frequency int, docLength int) float64 {
	if docLength <= 0 {
		return 0
	}
	return float64(frequency) / float64(docLength)
}

// InverseDocumentFrequency is zero for a term present in every document.
func InverseDocumentFrequency(corpusSize int, docFreq int) float64 {
	if corpusSize <= 0 || docFreq <= 0 {
		return 0
	}
	return math.Log10(float64(corpusSize) / float64(docFreq))
}

// DocIDs strips the scores from ranked results.
func DocIDs(ranked []ScoredDoc) []string {
	ids := make([]string, len(ranked))
	for i, doc := range ranked {
		ids[i] = doc.DocID
	}
	return ids
}
