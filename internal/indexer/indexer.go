// Package indexer turns input documents into a vector store, embedding raw text in batches
// or loading previously serialized records.
package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/vecindex/internal/embedding"
	"github.com/hyperjump/vecindex/internal/models"
	"github.com/hyperjump/vecindex/internal/vector"
	"github.com/hyperjump/vecindex/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrBatchSize is returned when the batch size is not positive.
var ErrBatchSize = errors.New("batch size must be at least 1")

const (
	defaultBatchSize = 32
	captionLogLen    = 80
)

// ProgressFunc is called after each batch is added with the documents done so far.
type ProgressFunc func(done, total int)

// Indexer embeds documents in batches and adds them to a vector store.
type Indexer struct {
	embedder       embedding.Embedder
	batchSize      int
	concurrency    int
	output         string
	captionField   string
	textField      string
	fragmentsField string
	storeOpts      []vector.StoreOption
	progress       ProgressFunc
	logger         *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for progress output (document indexed, batch done, etc.).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithBatchSize sets how many documents go into one provider call.
func WithBatchSize(n int) IndexerOption {
	return func(idx *Indexer) { idx.batchSize = n }
}

// WithConcurrency embeds up to n batches at once. Documents are still added in input order.
func WithConcurrency(n int) IndexerOption {
	return func(idx *Indexer) { idx.concurrency = n }
}

// WithOutput saves the finished store to path.
func WithOutput(path string) IndexerOption {
	return func(idx *Indexer) { idx.output = path }
}

// WithCaptionField names the metadata field logged for each indexed document.
func WithCaptionField(field string) IndexerOption {
	return func(idx *Indexer) { idx.captionField = field }
}

// WithTextFields sets the field names used by Build to pick a TextSource.
func WithTextFields(textField, fragmentsField string) IndexerOption {
	return func(idx *Indexer) {
		idx.textField = textField
		idx.fragmentsField = fragmentsField
	}
}

// WithProgress registers a callback invoked after every batch.
func WithProgress(fn ProgressFunc) IndexerOption {
	return func(idx *Indexer) { idx.progress = fn }
}

// WithStoreOptions passes options to the stores the indexer creates.
func WithStoreOptions(opts ...vector.StoreOption) IndexerOption {
	return func(idx *Indexer) { idx.storeOpts = append(idx.storeOpts, opts...) }
}

// NewIndexer creates an indexer using embedder for raw documents.
func NewIndexer(embedder embedding.Embedder, opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		embedder:       embedder,
		batchSize:      defaultBatchSize,
		concurrency:    1,
		captionField:   "header",
		textField:      "text_block",
		fragmentsField: "text_blocks",
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	if idx.logger == nil {
		idx.logger = zap.NewNop()
	}
	return idx
}

// Build detects the input mode and returns the resulting store. Embedded input is loaded
// as-is; raw input is embedded with a TextSource chosen from the first document.
func (idx *Indexer) Build(ctx context.Context, docs []models.RawDocument) (*vector.Store, Mode, error) {
	mode, err := DetectMode(docs)
	if err != nil {
		return nil, mode, err
	}
	if mode == ModeEmbedded {
		store, err := LoadEmbedded(docs, idx.storeOpts...)
		if err != nil {
			return nil, mode, err
		}
		idx.logger.Info("loaded embedded documents", zap.Int("documents", store.Len()))
		if err := idx.save(store); err != nil {
			return nil, mode, err
		}
		return store, mode, nil
	}

	source := SingleField(idx.textField)
	if len(docs) > 0 {
		source = SelectTextSource(docs[0], idx.textField, idx.fragmentsField)
	}
	store, err := idx.Index(ctx, docs, source)
	return store, mode, err
}

// Index embeds every document's text with one provider call per batch and adds the
// vectors to a new store in input order. Any provider error aborts the run.
func (idx *Indexer) Index(ctx context.Context, docs []models.RawDocument, source TextSource) (*vector.Store, error) {
	if idx.batchSize < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBatchSize, idx.batchSize)
	}
	texts := make([]string, len(docs))
	for i, doc := range docs {
		text, err := source.Extract(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		texts[i] = text
	}

	store := vector.NewStore(idx.storeOpts...)
	spans := Batches(len(docs), idx.batchSize)
	idx.logger.Debug("indexing",
		zap.Int("documents", len(docs)),
		zap.Int("batches", len(spans)),
		zap.Int("batch_size", idx.batchSize),
		zap.Stringer("source", source))

	if idx.concurrency > 1 && len(spans) > 1 {
		if err := idx.indexParallel(ctx, store, docs, texts, spans); err != nil {
			return nil, err
		}
	} else {
		for _, span := range spans {
			vecs, err := idx.embed(ctx, texts, span)
			if err != nil {
				return nil, err
			}
			if err := idx.add(store, docs, vecs, span); err != nil {
				return nil, err
			}
		}
	}

	idx.logger.Info("done", zap.Int("total_indexed", store.Len()))
	if err := idx.save(store); err != nil {
		return nil, err
	}
	return store, nil
}

func (idx *Indexer) indexParallel(ctx context.Context, store *vector.Store, docs []models.RawDocument, texts []string, spans []Span) error {
	results := make([][][]float32, len(spans))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.concurrency)
	for i, span := range spans {
		g.Go(func() error {
			vecs, err := idx.embed(gctx, texts, span)
			if err != nil {
				return err
			}
			results[i] = vecs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, span := range spans {
		if err := idx.add(store, docs, results[i], span); err != nil {
			return err
		}
	}
	return nil
}

func (idx *Indexer) embed(ctx context.Context, texts []string, span Span) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vecs, err := idx.embedder.EmbedBatch(ctx, texts[span.Start:span.End])
	if err != nil {
		return nil, fmt.Errorf("embed documents %d-%d: %w", span.Start, span.End-1, err)
	}
	if len(vecs) != span.Len() {
		return nil, fmt.Errorf("embed documents %d-%d: provider returned %d vectors for %d texts",
			span.Start, span.End-1, len(vecs), span.Len())
	}
	return vecs, nil
}

func (idx *Indexer) add(store *vector.Store, docs []models.RawDocument, vecs [][]float32, span Span) error {
	for j, vec := range vecs {
		pos := span.Start + j
		doc := docs[pos]
		id, err := store.Add(models.NewMetadata(doc), vec)
		if err != nil {
			return fmt.Errorf("document %d: %w", pos, err)
		}
		if ce := idx.logger.Check(zap.DebugLevel, "indexed"); ce != nil {
			ce.Write(zap.String("id", id), zap.String("caption", idx.caption(doc)))
		}
	}
	idx.logger.Debug("progress", zap.Int("done", span.End), zap.Int("total", len(docs)))
	if idx.progress != nil {
		idx.progress(span.End, len(docs))
	}
	return nil
}

func (idx *Indexer) caption(doc models.RawDocument) string {
	v, ok := doc[idx.captionField]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return utils.Truncate(s, captionLogLen)
	}
	return utils.Truncate(fmt.Sprint(v), captionLogLen)
}

func (idx *Indexer) save(store *vector.Store) error {
	if idx.output == "" {
		return nil
	}
	if err := store.SaveFile(idx.output); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	idx.logger.Info("serialized index written", zap.String("path", idx.output))
	return nil
}
