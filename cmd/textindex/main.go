package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"gopkg.in/yaml.v3"

	"github.com/Adithya-Monish-Kumar-K/textindex/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/textindex/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/textindex/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/textindex/pkg/textindex"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	query := flag.String("q", "", "query to run against the indexed files")
	mode := flag.String("mode", "ranked", "search mode: ranked or set")
	limit := flag.Int("limit", -1, "maximum ranked results (0 for all, -1 for the configured default)")
	verify := flag.Bool("verify", false, "check index consistency after loading")
	dumpMetrics := flag.Bool("metrics", false, "print metrics in Prometheus text format on exit")
	dumpIndex := flag.Bool("dump", false, "print the whole index as YAML after loading")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flag.Args(), runOptions{
		query:       *query,
		mode:        *mode,
		limit:       *limit,
		verify:      *verify,
		dumpIndex:   *dumpIndex,
		dumpMetrics: *dumpMetrics,
	}, os.Stdout); err != nil {
		slog.Error("textindex failed", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	query       string
	mode        string
	limit       int
	verify      bool
	dumpIndex   bool
	dumpMetrics bool
}

func run(ctx context.Context, cfg *config.Config, files []string, ro runOptions, out io.Writer) error {
	log := logger.WithComponent("cli")
	opts := []textindex.Option{}
	var reg *prometheus.Registry
	if cfg.Metrics.Enabled || ro.dumpMetrics {
		reg = prometheus.NewRegistry()
		opts = append(opts, textindex.WithRegisterer(reg, cfg.Metrics.Namespace))
	}
	idx, err := textindex.NewFromConfig(cfg.Index, opts...)
	if err != nil {
		return fmt.Errorf("creating index: %w", err)
	}

	docs, err := readDocuments(log, files, cfg.Index.Punctuation)
	if err != nil {
		return err
	}
	if err := idx.AddBatch(ctx, docs); err != nil {
		return fmt.Errorf("indexing %d files: %w", len(docs), err)
	}
	stats := idx.Stats()
	log.Info("files indexed", "documents", stats.Documents, "terms", stats.Terms)

	if ro.verify {
		if err := idx.Verify(); err != nil {
			return fmt.Errorf("verifying index: %w", err)
		}
		fmt.Fprintln(out, "index consistent")
	}

	if ro.dumpIndex {
		enc := yaml.NewEncoder(out)
		if err := enc.Encode(idx.Snapshot()); err != nil {
			return fmt.Errorf("dumping index: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("dumping index: %w", err)
		}
	}

	if ro.query != "" {
		limit := ro.limit
		if limit < 0 {
			limit = cfg.Search.DefaultLimit
		}
		if err := search(idx, ro.query, ro.mode, limit, out); err != nil {
			return err
		}
	}

	if ro.dumpMetrics {
		return writeMetrics(reg, out)
	}
	return nil
}

// readDocuments uses each file's path as its document ID. Files with no
// indexable words are skipped with a warning.
func readDocuments(log *slog.Logger, paths []string, punctuation string) ([]textindex.Document, error) {
	tok := tokenizer.New(punctuation)
	docs := make([]textindex.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		content := string(data)
		if len(tok.Tokenize(content)) == 0 {
			log.Warn("skipping file without words", "path", path)
			continue
		}
		docs = append(docs, textindex.Document{ID: path, Content: content})
	}
	return docs, nil
}

func search(idx *textindex.TextIndex, query, mode string, limit int, out io.Writer) error {
	switch mode {
	case "ranked":
		results, err := idx.SearchScored(query, limit)
		if err != nil {
			return fmt.Errorf("searching %q: %w", query, err)
		}
		for i, r := range results {
			fmt.Fprintf(out, "%d\t%.6f\t%s\n", i+1, r.Score, r.DocID)
		}
	case "set":
		matched, err := idx.SearchSet(query)
		if err != nil {
			return fmt.Errorf("searching %q: %w", query, err)
		}
		ids := make([]string, 0, len(matched))
		for id := range matched {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
	default:
		return fmt.Errorf("unknown search mode %q", mode)
	}
	return nil
}

func writeMetrics(reg *prometheus.Registry, out io.Writer) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}
