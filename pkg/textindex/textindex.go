// Package textindex is an in-memory full-text index over documents keyed by
// caller-supplied string IDs.
//
// Documents are split into case-sensitive words on spaces and the characters
// . , ! " ' : ; ? and recorded in two mappings kept in lock-step: word to
// documents, and document to word frequencies. Queries are answered either
// as the set of documents containing any query word (SearchSet) or as a list
// ranked by TF-IDF (Search, SearchScored):
//
//	tf(d, w)  = occurrences of w in d / words in d
//	idf(w)    = log10(indexed documents / documents containing w)
//	score(d)  = sum over query words of tf(d, w) * idf(w)
//
// Ranked results include every matching document, zero scores included,
// ordered by score descending and then by ID ascending.
//
// A TextIndex is safe for concurrent use: adds and removes are exclusive,
// searches share a read lock.
package textindex

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/textindex/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/textindex/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/textindex/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/textindex/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/textindex/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/textindex/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/textindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/textindex/pkg/metrics"
)

// Re-exported so callers need not import the errors package to match them.
var (
	ErrInvalidArgument    = apperrors.ErrInvalidArgument
	ErrAlreadyIndexed     = apperrors.ErrAlreadyIndexed
	ErrNoIndexableContent = apperrors.ErrNoIndexableContent
)

// Document is an (ID, content) pair for AddBatch.
type Document = indexer.Document

// ScoredDoc is a ranked search hit.
type ScoredDoc = ranker.ScoredDoc

// Stats reports the current index size.
type Stats = indexer.Stats

// TermEntry is one word of the vocabulary with the documents containing it.
type TermEntry = index.TermEntry

// TextIndex is the index handle. The zero value is not usable; call New.
type TextIndex struct {
	engine   *indexer.Engine
	executor *executor.Executor
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type options struct {
	cfg       config.IndexConfig
	logger    *slog.Logger
	reg       prometheus.Registerer
	namespace string
}

type Option func(*options)

// WithPunctuation replaces the set of characters treated as word separators
// in addition to the space character.
func WithPunctuation(punctuation string) Option {
	return func(o *options) { o.cfg.Punctuation = punctuation }
}

// WithDuplicatePolicy selects what AddIndex does for an ID that is already
// indexed. The default is config.DuplicateReject.
func WithDuplicatePolicy(policy config.DuplicatePolicy) Option {
	return func(o *options) { o.cfg.DuplicatePolicy = policy }
}

// WithBatchConcurrency bounds the number of documents AddBatch tokenizes at
// once.
func WithBatchConcurrency(n int) Option {
	return func(o *options) { o.cfg.BatchConcurrency = n }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRegisterer registers the index's Prometheus collectors on reg under
// namespace.
func WithRegisterer(reg prometheus.Registerer, namespace string) Option {
	return func(o *options) {
		o.reg = reg
		o.namespace = namespace
	}
}

// New creates an empty index with the default configuration modified by
// opts. It panics if the resulting configuration is invalid or metric
// registration fails; use NewFromConfig to get an error instead.
func New(opts ...Option) *TextIndex {
	t, err := NewFromConfig(config.DefaultIndexConfig(), opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// NewFromConfig creates an empty index from cfg modified by opts.
func NewFromConfig(cfg config.IndexConfig, opts ...Option) (*TextIndex, error) {
	o := options{cfg: cfg}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	var m *metrics.Metrics
	if o.reg != nil {
		var err error
		m, err = metrics.New(o.reg, o.namespace)
		if err != nil {
			return nil, err
		}
	}
	engine, err := indexer.NewEngine(o.cfg, m, o.logger)
	if err != nil {
		return nil, err
	}
	return &TextIndex{
		engine:   engine,
		executor: executor.New(engine.Index(), o.logger),
		metrics:  m,
		logger:   o.logger.With("component", "textindex"),
	}, nil
}

// AddIndex tokenizes content and indexes it under id.
//
// It returns ErrInvalidArgument for an empty id, ErrNoIndexableContent when
// content has no words (the index is left unchanged, including any previous
// entry for id), and ErrAlreadyIndexed when id is present and the duplicate
// policy is reject. Under the replace policy the previous entry is removed
// first.
func (t *TextIndex) AddIndex(id string, content string) error {
	return t.engine.IndexDocument(id, content)
}

// AddBatch indexes docs atomically: either every document is added or, on
// the first invalid document or duplicate, none is.
func (t *TextIndex) AddBatch(ctx context.Context, docs []Document) error {
	return t.engine.IndexBatch(ctx, docs)
}

// RemoveIndex removes id and reports whether it was indexed. Removing an
// unknown id is a no-op.
func (t *TextIndex) RemoveIndex(id string) bool {
	return t.engine.RemoveDocument(id)
}

// Search returns the IDs of documents matching any word of query, ranked by
// TF-IDF.
func (t *TextIndex) Search(query string) ([]string, error) {
	ranked, err := t.SearchScored(query, 0)
	if err != nil {
		return nil, err
	}
	return ranker.DocIDs(ranked), nil
}

// SearchScored is Search with scores. A positive limit keeps only the top
// limit results.
func (t *TextIndex) SearchScored(query string, limit int) ([]ScoredDoc, error) {
	if query == "" {
		return nil, apperrors.Newf("search", "", apperrors.ErrInvalidArgument, "query must not be empty")
	}
	start := time.Now()
	plan := parser.Parse(t.engine.Tokenizer(), query)
	result := t.executor.Execute(plan, limit)
	t.metrics.ObserveSearch(metrics.ModeRanked, start, result.TotalHits)
	return result.Results, nil
}

// SearchSet returns the unordered set of documents containing any word of
// query.
func (t *TextIndex) SearchSet(query string) (map[string]struct{}, error) {
	if query == "" {
		return nil, apperrors.Newf("search", "", apperrors.ErrInvalidArgument, "query must not be empty")
	}
	start := time.Now()
	plan := parser.Parse(t.engine.Tokenizer(), query)
	matched := t.executor.Match(plan)
	set := make(map[string]struct{}, len(matched))
	for _, id := range matched {
		set[id] = struct{}{}
	}
	t.metrics.ObserveSearch(metrics.ModeSet, start, len(set))
	return set, nil
}

// Contains reports whether id is currently indexed.
func (t *TextIndex) Contains(id string) bool {
	return t.engine.Index().Contains(id)
}

// Len returns the number of indexed documents.
func (t *TextIndex) Len() int {
	return t.engine.Index().DocCount()
}

func (t *TextIndex) Stats() Stats {
	return t.engine.Stats()
}

// Terms returns the indexed vocabulary, sorted.
func (t *TextIndex) Terms() []string {
	return t.engine.Index().Terms()
}

// Snapshot returns a consistent copy of the whole index: every word, sorted,
// with its postings sorted by document ID.
func (t *TextIndex) Snapshot() []TermEntry {
	return t.engine.Index().Snapshot()
}

// Verify checks the internal consistency of the index and returns a
// description of the first violation found.
func (t *TextIndex) Verify() error {
	if err := t.engine.Index().Verify(); err != nil {
		t.logger.Error("index consistency check failed", "error", err)
		return err
	}
	return nil
}
