package main

import (
	"fmt"
	"sync"

	"github.com/hyperjump/vecindex/internal/cli"
	"github.com/hyperjump/vecindex/internal/config"
	"github.com/hyperjump/vecindex/internal/embedding"
	"github.com/hyperjump/vecindex/internal/indexer"
	"github.com/hyperjump/vecindex/internal/search"
	"github.com/hyperjump/vecindex/internal/vector"
	"github.com/hyperjump/vecindex/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// embedderFactory builds the configured provider. Tests swap it for a fake.
var embedderFactory = embedding.New

// NewRootCmd returns the index-and-query command with its subcommands attached.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vecindex [flags] <data.json>",
		Short: "Embed JSON documents and run cosine similarity queries",
		Long: `Vectorize a JSON file of docs, or load an existing JSON file that already
includes vectorized data, then optionally run a top-k query against it.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runIndex,
	}

	addPersistentFlags(rootCmd)
	f := rootCmd.Flags()
	f.Int("batch-size", 32, "Number of docs to embed per batch")
	f.Int("concurrency", 1, "Number of batches embedded in parallel")
	f.StringP("output", "o", "", "Optional path to write the serialized index as JSON")
	f.StringP("query", "q", "", "Run a top-k search after indexing or loading")
	f.IntP("top-k", "k", 10, "Number of query results to print")
	f.String("caption-field", "header", "Metadata field shown as each result's caption")
	f.String("format", string(cli.OutputText), "Query output format (text|json)")

	rootCmd.AddCommand(
		NewServeCmd(),
		NewConfigCmd(),
		NewVersionCmd(version),
	)
	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Config file path (default ./"+config.DefaultFile+" if present)")
	cmd.PersistentFlags().String("provider", "", "Embedding provider (onnx|openai|mock)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}

// loadSettings resolves the config file and applies flag overrides.
func loadSettings(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Embedding.Provider, _ = flags.GetString("provider")
	}
	if flags.Lookup("batch-size") != nil && flags.Changed("batch-size") {
		cfg.Index.BatchSize, _ = flags.GetInt("batch-size")
	}
	if flags.Lookup("concurrency") != nil && flags.Changed("concurrency") {
		cfg.Index.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Lookup("top-k") != nil && flags.Changed("top-k") {
		cfg.Index.TopK, _ = flags.GetInt("top-k")
	}
	if flags.Lookup("caption-field") != nil && flags.Changed("caption-field") {
		cfg.Index.CaptionField, _ = flags.GetString("caption-field")
	}

	verbose, _ := flags.GetBool("verbose")
	logger, err := utils.NewCLILogger(verbose || cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

// lazyEmbedder builds the provider on first use, so embedded input without a query never
// loads a model.
type lazyEmbedder struct {
	cfg  config.EmbeddingConfig
	once sync.Once
	emb  embedding.Embedder
	err  error
}

func (l *lazyEmbedder) get() (embedding.Embedder, error) {
	l.once.Do(func() {
		l.emb, l.err = embedderFactory(l.cfg)
		if l.err != nil {
			l.err = fmt.Errorf("create %s embedder: %w", l.cfg.Provider, l.err)
		}
	})
	return l.emb, l.err
}

func (l *lazyEmbedder) Close() error {
	if l.emb == nil {
		return nil
	}
	return l.emb.Close()
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := cli.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	if cfg.Index.BatchSize < 1 {
		return fmt.Errorf("%w: got %d", indexer.ErrBatchSize, cfg.Index.BatchSize)
	}
	if cfg.Index.TopK < 1 {
		return fmt.Errorf("%w: got %d", search.ErrTopK, cfg.Index.TopK)
	}
	output, _ := cmd.Flags().GetString("output")
	query, _ := cmd.Flags().GetString("query")

	docs, err := indexer.ReadInput(args[0])
	if err != nil {
		return err
	}
	mode, err := indexer.DetectMode(docs)
	if err != nil {
		return err
	}
	logger.Debug("input read", zap.String("path", args[0]), zap.Int("documents", len(docs)), zap.Stringer("mode", mode))

	embedder := &lazyEmbedder{cfg: cfg.Embedding}
	defer embedder.Close()

	var store *vector.Store
	if mode == indexer.ModeEmbedded {
		store, err = indexer.LoadEmbedded(docs)
		if err != nil {
			return err
		}
		if err := store.SaveFile(output); err != nil {
			return fmt.Errorf("write index: %w", err)
		}
	} else {
		emb, err := embedder.get()
		if err != nil {
			return err
		}
		idx := indexer.NewIndexer(emb,
			indexer.WithLogger(logger),
			indexer.WithBatchSize(cfg.Index.BatchSize),
			indexer.WithConcurrency(cfg.Index.Concurrency),
			indexer.WithCaptionField(cfg.Index.CaptionField),
			indexer.WithTextFields(cfg.Index.TextField, cfg.Index.FragmentsField),
			indexer.WithOutput(output),
		)
		store, _, err = idx.Build(cmd.Context(), docs)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Done. Total indexed: %d\n", store.Len())
	}
	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Serialized index written to %s\n", output)
	}

	if query == "" {
		return nil
	}
	emb, err := embedder.get()
	if err != nil {
		return err
	}
	engine := search.NewEngine(emb, search.WithLogger(logger))
	resp, err := engine.Search(cmd.Context(), store, &search.Query{
		Text:         query,
		K:            cfg.Index.TopK,
		CaptionField: cfg.Index.CaptionField,
	})
	if err != nil {
		return err
	}
	return cli.WriteSearchResults(cmd.OutOrStdout(), resp, cfg.Index.TopK, format)
}
