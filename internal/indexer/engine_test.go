package indexer

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/textindex/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/textindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/textindex/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/textindex/pkg/metrics"
)

func newEngine(t *testing.T, policy config.DuplicatePolicy) (*Engine, *metrics.Metrics) {
	t.Helper()
	m, err := metrics.New(prometheus.NewRegistry(), "test")
	require.NoError(t, err)
	cfg := config.DefaultIndexConfig()
	cfg.DuplicatePolicy = policy
	e, err := NewEngine(cfg, m, logger.Discard())
	require.NoError(t, err)
	return e, m
}

func TestIndexDocument(t *testing.T) {
	e, m := newEngine(t, config.DuplicateReject)
	require.NoError(t, e.IndexDocument("d1", "the cat sat"))
	require.NoError(t, e.IndexDocument("d2", "the cat ran fast"))

	assert.Equal(t, Stats{Documents: 2, Terms: 5}, e.Stats())
	assert.Equal(t, map[string]int{"the": 1, "cat": 1, "sat": 1}, e.Index().DocTerms("d1"))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocsIndexedTotal))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.IndexTerms))
	require.NoError(t, e.Index().Verify())
}

func TestIndexDocumentRejectPolicy(t *testing.T) {
	e, m := newEngine(t, config.DuplicateReject)
	require.NoError(t, e.IndexDocument("d1", "cat dog"))

	err := e.IndexDocument("d1", "bird")
	require.ErrorIs(t, err, apperrors.ErrAlreadyIndexed)
	assert.Equal(t, []string{"cat", "dog"}, e.Index().Terms())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectionsTotal.WithLabelValues("already_indexed")))
}

func TestIndexDocumentReplacePolicy(t *testing.T) {
	e, _ := newEngine(t, config.DuplicateReplace)
	require.NoError(t, e.IndexDocument("d1", "cat dog"))
	require.NoError(t, e.IndexDocument("d1", "bird"))
	assert.Equal(t, []string{"bird"}, e.Index().Terms())
	assert.Equal(t, 1, e.Stats().Documents)
	require.NoError(t, e.Index().Verify())
}

func TestIndexDocumentEmptyContent(t *testing.T) {
	e, m := newEngine(t, config.DuplicateReplace)
	require.NoError(t, e.IndexDocument("d1", "cat"))

	err := e.IndexDocument("d1", " ?!. ")
	require.ErrorIs(t, err, apperrors.ErrNoIndexableContent)
	assert.Equal(t, map[string]int{"cat": 1}, e.Index().DocTerms("d1"))

	err = e.IndexDocument("d2", "")
	require.ErrorIs(t, err, apperrors.ErrNoIndexableContent)
	assert.False(t, e.Index().Contains("d2"))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RejectionsTotal.WithLabelValues("no_content")))
}

func TestIndexDocumentEmptyID(t *testing.T) {
	e, _ := newEngine(t, config.DuplicateReject)
	err := e.IndexDocument("", "cat")
	require.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	assert.Equal(t, 0, e.Stats().Documents)
}

func TestRemoveDocument(t *testing.T) {
	e, m := newEngine(t, config.DuplicateReject)
	require.NoError(t, e.IndexDocument("d1", "cat dog"))
	require.NoError(t, e.IndexDocument("d2", "dog bird"))

	assert.True(t, e.RemoveDocument("d1"))
	assert.False(t, e.RemoveDocument("d1"))
	assert.Equal(t, []string{"bird", "dog"}, e.Index().Terms())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocsRemovedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexDocuments))
	require.NoError(t, e.Index().Verify())
}

func TestIndexBatch(t *testing.T) {
	e, m := newEngine(t, config.DuplicateReject)
	docs := make([]Document, 0, 50)
	for i := 0; i < 50; i++ {
		docs = append(docs, Document{
			ID:      fmt.Sprintf("doc-%02d", i),
			Content: fmt.Sprintf("shared word%d, word%d!", i, i%5),
		})
	}
	require.NoError(t, e.IndexBatch(context.Background(), docs))
	assert.Equal(t, 50, e.Stats().Documents)
	assert.Equal(t, 50.0, testutil.ToFloat64(m.DocsIndexedTotal))
	assert.Len(t, e.Index().Match([]string{"shared"}), 50)
	require.NoError(t, e.Index().Verify())

	require.NoError(t, e.IndexBatch(context.Background(), nil))
}

func TestIndexBatchRejectsWholeBatch(t *testing.T) {
	e, _ := newEngine(t, config.DuplicateReject)
	err := e.IndexBatch(context.Background(), []Document{
		{ID: "a", Content: "fine"},
		{ID: "b", Content: "..."},
	})
	require.ErrorIs(t, err, apperrors.ErrNoIndexableContent)
	assert.Equal(t, 0, e.Stats().Documents)

	var ie *apperrors.IndexError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "b", ie.DocID)
}

func TestIndexBatchCancelled(t *testing.T) {
	e, _ := newEngine(t, config.DuplicateReject)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := e.IndexBatch(ctx, []Document{{ID: "a", Content: "fine"}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, e.Stats().Documents)
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	cfg := config.DefaultIndexConfig()
	cfg.DuplicatePolicy = "merge"
	_, err := NewEngine(cfg, nil, nil)
	assert.Error(t, err)
}

func BenchmarkEngineIndex(b *testing.B) {
	for _, preload := range []int{100, 1000, 5000} {
		b.Run(fmt.Sprintf("preload_%d", preload), func(b *testing.B) {
			e, err := NewEngine(config.DefaultIndexConfig(), nil, logger.Discard())
			if err != nil {
				b.Fatal(err)
			}
			for i := 0; i < preload; i++ {
				e.IndexDocument(fmt.Sprintf("preload-%d", i), "preloading documents for benchmark warmup phase")
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := e.IndexDocument(fmt.Sprintf("bench-%d", i), "benchmark document body, measuring indexing throughput"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
