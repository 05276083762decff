package executor

import (
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/textindex/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/textindex/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/textindex/internal/searcher/ranker"
)

// Source is the read side of an index.
type Source interface {
	Lookup(terms []string) index.Lookup
	Match(terms []string) []string
}

type SearchResult struct {
	Query     string             `json:"query"`
	TotalHits int                `json:"total_hits"`
	Results   []ranker.ScoredDoc `json:"results"`
	TermStats map[string]int     `json:"term_stats"`
}

type Executor struct {
	source Source
	logger *slog.Logger
}

func New(source Source, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		source: source,
		logger: logger.With("component", "query-executor"),
	}
}

// Execute ranks every document matching at least one term of plan.
func (e *Executor) Execute(plan *parser.QueryPlan, limit int) *SearchResult {
	if len(plan.Terms) == 0 {
		return &SearchResult{
			Query:     plan.RawQuery,
			Results:   []ranker.ScoredDoc{},
			TermStats: map[string]int{},
		}
	}

	lookup := e.source.Lookup(plan.Terms)
	termStats := make(map[string]int, len(lookup.Postings))
	for term, postings := range lookup.Postings {
		termStats[term] = len(postings)
	}
	ranked := ranker.Rank(lookup.Postings, lookup.CorpusSize, 0)
	totalHits := len(ranked)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	e.logger.Debug("query executed",
		"query", plan.RawQuery,
		"terms", plan.Terms,
		"corpus_size", lookup.CorpusSize,
		"candidates", totalHits,
		"results", len(ranked),
	)
	return &SearchResult{
		Query:     plan.RawQuery,
		TotalHits: totalHits,
		Results:   ranked,
		TermStats: termStats,
	}
}

// Match returns the union of the documents containing any term of plan,
// sorted by ID.
func (e *Executor) Match(plan *parser.QueryPlan) []string {
	if len(plan.Terms) == 0 {
		return []string{}
	}
	matched := e.source.Match(plan.Terms)
	e.logger.Debug("match executed",
		"query", plan.RawQuery,
		"terms", plan.Terms,
		"results", len(matched),
	)
	return matched
}
