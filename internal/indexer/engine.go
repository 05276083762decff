package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/textindex/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/textindex/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/textindex/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/textindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/textindex/pkg/metrics"
)

// Document is a raw document awaiting tokenization.
type Document struct {
	ID      string
	Content string
}

type Stats struct {
	Documents int `json:"documents"`
	Terms     int `json:"terms"`
}

// Engine tokenizes documents and applies them to the memory index under the
// configured duplicate policy.
type Engine struct {
	tok      *tokenizer.Tokenizer
	memIndex *index.MemoryIndex
	cfg      config.IndexConfig
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewEngine validates cfg and creates an empty engine. m may be nil.
func NewEngine(cfg config.IndexConfig, m *metrics.Metrics, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid index config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		tok:      tokenizer.New(cfg.Punctuation),
		memIndex: index.NewMemoryIndex(),
		cfg:      cfg,
		metrics:  m,
		logger:   logger.With("component", "indexer"),
	}, nil
}

func (e *Engine) Tokenizer() *tokenizer.Tokenizer {
	return e.tok
}

func (e *Engine) Index() *index.MemoryIndex {
	return e.memIndex
}

// IndexDocument tokenizes content and adds it under docID. Content without
// tokens yields ErrNoIndexableContent and leaves the index untouched.
func (e *Engine) IndexDocument(docID string, content string) error {
	freqs := e.tok.Frequencies(content)
	replaced, err := e.memIndex.Add(docID, freqs, e.replaces())
	if err != nil {
		e.rejected(docID, err)
		return err
	}
	e.metrics.ObserveIndexed(1)
	e.updateSize()
	e.logger.Debug("document indexed",
		"doc_id", docID,
		"distinct_terms", len(freqs),
		"replaced", replaced,
	)
	return nil
}

// IndexBatch tokenizes docs concurrently and adds them all at once. If any
// document is invalid, or ctx is cancelled before tokenization finishes,
// nothing is indexed.
func (e *Engine) IndexBatch(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	entries := make([]index.Entry, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.BatchConcurrency)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = index.Entry{
				DocID:       doc.ID,
				Frequencies: e.tok.Frequencies(doc.Content),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("tokenizing batch: %w", err)
	}

	replaced, err := e.memIndex.AddBatch(entries, e.replaces())
	if err != nil {
		var ie *apperrors.IndexError
		docID := ""
		if errors.As(err, &ie) {
			docID = ie.DocID
		}
		e.rejected(docID, err)
		return err
	}
	e.metrics.ObserveIndexed(len(entries))
	e.updateSize()
	e.logger.Info("batch indexed",
		"documents", len(entries),
		"replaced", replaced,
		"corpus_size", e.memIndex.DocCount(),
	)
	return nil
}

// RemoveDocument deletes docID from the index. Removing an unknown ID is a
// no-op; the result reports whether anything was removed.
func (e *Engine) RemoveDocument(docID string) bool {
	if !e.memIndex.Remove(docID) {
		return false
	}
	e.metrics.ObserveRemoved()
	e.updateSize()
	e.logger.Debug("document removed", "doc_id", docID)
	return true
}

func (e *Engine) Stats() Stats {
	return Stats{
		Documents: e.memIndex.DocCount(),
		Terms:     e.memIndex.TermCount(),
	}
}

func (e *Engine) replaces() bool {
	return e.cfg.DuplicatePolicy == config.DuplicateReplace
}

func (e *Engine) rejected(docID string, err error) {
	reason := apperrors.Reason(err)
	e.metrics.ObserveRejected(reason)
	e.logger.Debug("document rejected",
		"doc_id", docID,
		"reason", reason,
		"error", err,
	)
}

func (e *Engine) updateSize() {
	if e.metrics == nil {
		return
	}
	e.metrics.SetSize(e.memIndex.DocCount(), e.memIndex.TermCount())
}
