package parser

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/textindex/internal/indexer/tokenizer"
)

// QueryPlan holds the distinct terms of a query. Only the set of terms
// matters: repeating a word in the query does not change its weight.
type QueryPlan struct {
	Terms    []string
	RawQuery string
}

func Parse(tok *tokenizer.Tokenizer, query string) *QueryPlan {
	set := tok.Set(query)
	terms := make([]string, 0, len(set))
	for term := range set {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return &QueryPlan{
		Terms:    terms,
		RawQuery: query,
	}
}
