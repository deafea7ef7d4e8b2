package cli

import (
	"fmt"
	"os"
	"time"

	"docqa/config"
	"docqa/internal/adapter/cache"
	"docqa/internal/adapter/chunker"
	"docqa/internal/adapter/embedding"
	"docqa/internal/adapter/llm"
	"docqa/internal/adapter/store"
	"docqa/internal/port"
	"docqa/internal/usecase"
)

// components is the wired application core shared by the serve, index and ask
// commands.
type components struct {
	store      *store.BoltStore
	retriever  port.Retriever
	ingest     *usecase.IngestUseCase
	queryCache *cache.QueryCache
}

func (c *components) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// openComponents opens (or creates) the index and builds the pipeline around
// it. With requireIndex set, a missing index file is an error instead of
// being created, so read-only commands can report "no knowledge base".
func openComponents(requireIndex bool) (*components, error) {
	dbPath := config.IndexDBPath(rootDir)
	if requireIndex {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("no knowledge base found at %s. Run 'docqa index' first", dbPath)
		}
	}
	if err := config.EnsureDataDir(rootDir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	embedder, err := embedderFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	vectors, err := store.NewBoltVectorStore(st.DB(), embedder.Dimension())
	if err != nil {
		st.Close()
		return nil, err
	}

	queryCache := cache.NewQueryCache(cfg.Retrieve.CacheSize, time.Duration(cfg.Retrieve.CacheTTLSecs)*time.Second)
	retrieve := usecase.NewRetrieveUseCase(embedder, vectors, st, cfg.Retrieve.MinScoreThreshold)
	ch := chunker.NewSentenceChunker(cfg.Index.SentencesPerChunk, cfg.Index.OverlapSentences)

	return &components{
		store:      st,
		retriever:  cache.NewCachedRetriever(retrieve, queryCache),
		ingest:     usecase.NewIngestUseCase(st, vectors, embedder, ch, queryCache),
		queryCache: queryCache,
	}, nil
}

func embedderFromConfig(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "mock":
		dim := cfg.Embedding.Dimension
		if dim <= 0 {
			dim = 64
		}
		return embedding.NewMockEmbedder(dim), nil
	default:
		return embedding.NewOpenAIEmbedder(
			cfg.Embedding.APIKeyEnv,
			cfg.Embedding.Model,
			cfg.Embedding.BaseURL,
			time.Duration(cfg.Embedding.TimeoutSecs)*time.Second,
		)
	}
}

func backendsFromConfig(cfg *config.Config) map[string]port.Generator {
	timeout := time.Duration(cfg.Synthesis.TimeoutSecs) * time.Second
	return map[string]port.Generator{
		"openai": llm.NewOpenAIGenerator(llm.OpenAIOptions{
			APIKeyEnv:   cfg.Synthesis.OpenAI.APIKeyEnv,
			Model:       cfg.Synthesis.OpenAI.Model,
			BaseURL:     cfg.Synthesis.OpenAI.BaseURL,
			Temperature: cfg.Synthesis.Temperature,
			MaxTokens:   cfg.Synthesis.OpenAI.MaxTokens,
			Timeout:     timeout,
		}),
		"anthropic": llm.NewAnthropicGenerator(llm.AnthropicOptions{
			APIKeyEnv:   cfg.Synthesis.Anthropic.APIKeyEnv,
			Model:       cfg.Synthesis.Anthropic.Model,
			BaseURL:     cfg.Synthesis.Anthropic.BaseURL,
			Temperature: cfg.Synthesis.Temperature,
			MaxTokens:   cfg.Synthesis.Anthropic.MaxTokens,
			Timeout:     timeout,
		}),
	}
}
