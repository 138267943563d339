// ABOUTME: Wires configuration into backends, stores, agents and sessions
// ABOUTME: Shared by the CLI, MCP and HTTP hosts so every surface runs the same stack
package app

import (
	"context"
	"fmt"

	"github.com/harper/shopassist/internal/catalog"
	"github.com/harper/shopassist/internal/config"
	"github.com/harper/shopassist/internal/core"
	"github.com/harper/shopassist/internal/llm"
	"github.com/harper/shopassist/internal/session"
	"github.com/harper/shopassist/internal/storage"
	"github.com/harper/shopassist/internal/storage/sqlite"
	"go.uber.org/zap"
)

// App holds every long-lived component of a running assistant
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *sqlite.DB
	Products    *sqlite.ProductStore
	Transcripts *sqlite.TranscriptStore
	Store       *storage.VectorStorage
	Chat        llm.Chat
	Embedding   llm.Embedding
	Sessions    *session.Manager
	Catalog     catalog.Source
}

// New builds the OpenAI-backed stack described by cfg
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.RequireOpenAI(); err != nil {
		return nil, err
	}

	chatTok := tokenizerFor(cfg.ChatModel, logger)
	embedTok := tokenizerFor(cfg.EmbeddingModel, logger)

	clientCfg := &llm.ClientConfig{
		APIKey:            cfg.OpenAIKey,
		BaseURL:           cfg.OpenAIBaseURL,
		ChatModel:         cfg.ChatModel,
		EmbeddingModel:    cfg.EmbeddingModel,
		Dimensions:        cfg.EmbeddingDim,
		MaxRetries:        cfg.MaxRetries,
		RetryDelay:        cfg.RetryDelay,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}

	chat, err := llm.NewOpenAIChat(clientCfg, chatTok)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat backend: %w", err)
	}
	embedding, err := llm.NewOpenAIEmbedding(clientCfg, embedTok)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding backend: %w", err)
	}

	return NewWithBackends(cfg, logger, chat, embedding)
}

// NewWithBackends builds the stack around caller-supplied backends.
// Token limits and the embedding cache are applied here.
func NewWithBackends(cfg *config.Config, logger *zap.Logger, chat llm.Chat, embedding llm.Embedding) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := openDB(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewVectorStorage(cfg.EmbeddingDim, cfg.StoreCapacity)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}

	a := &App{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		Products:    sqlite.NewProductStore(db),
		Transcripts: sqlite.NewTranscriptStore(db),
		Store:       store,
		Chat:        llm.LimitChat(chat, cfg.ChatTokenLimit),
		Embedding:   llm.LimitEmbedding(llm.CacheEmbedding(embedding, cfg.EmbeddingCacheSize), cfg.EmbeddingTokenLimit),
		Catalog:     catalog.NewFakeStoreClient(cfg.CatalogURL, nil).WithRetry(cfg.MaxRetries, cfg.RetryDelay),
	}

	opts := []session.Option{session.WithLogger(logger.Named("session"))}
	if cfg.SaveTranscripts {
		opts = append(opts, session.WithRecorder(a.Transcripts))
	}
	a.Sessions = session.NewManager(a.NewAgent, opts...)

	return a, nil
}

func openDB(path string) (*sqlite.DB, error) {
	if path == ":memory:" {
		return sqlite.OpenInMemory()
	}
	return sqlite.Open(path)
}

func tokenizerFor(model string, logger *zap.Logger) llm.Tokenizer {
	tok, err := llm.NewTokenizer(model)
	if err != nil {
		if logger != nil {
			logger.Warn("falling back to word token counts", zap.String("model", model), zap.Error(err))
		}
		return llm.WordTokenizer{}
	}
	return tok
}

// NewAgent builds a fresh agent of the configured kind
func (a *App) NewAgent() core.Agent {
	opts := []core.Option{
		core.WithSystemPrompt(a.Config.SystemPrompt),
		core.WithLogger(a.Logger.Named("agent")),
	}
	if a.Config.Agent == config.AgentSimple {
		return core.NewChatBot(a.Chat, opts...)
	}
	opts = append(opts, core.WithK(a.Config.TopK))
	return core.NewRAGAgent(a.Chat, a.Embedding, a.Store, opts...)
}

// SyncCatalog fetches the remote catalog and upserts it into the product database
func (a *App) SyncCatalog(ctx context.Context) (int, error) {
	products, err := a.Catalog.Products(ctx)
	if err != nil {
		return 0, err
	}
	if err := a.Products.InsertProducts(ctx, products); err != nil {
		return 0, fmt.Errorf("failed to save products: %w", err)
	}
	a.Logger.Info("catalog synced", zap.Int("products", len(products)))
	return len(products), nil
}

// LoadCatalog fills the vector store from the product database, syncing from the
// remote catalog first when the database is empty or refresh is set
func (a *App) LoadCatalog(ctx context.Context, refresh bool) (int, error) {
	count, err := a.Products.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	if refresh || count == 0 {
		if _, err := a.SyncCatalog(ctx); err != nil {
			return 0, err
		}
	}

	products, err := a.Products.FetchAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read products: %w", err)
	}

	a.Store.Clear()
	n, err := catalog.Populate(ctx, a.Store, a.Embedding, products, a.Config.PopulateConcurrency)
	if err != nil {
		return a.Store.Len(), err
	}
	a.Logger.Info("vector store populated", zap.Int("records", n), zap.Int("capacity", a.Store.Cap()))
	return n, nil
}

// SearchProducts embeds query and returns the closest products with scores
func (a *App) SearchProducts(ctx context.Context, query string, limit int) ([]storage.SearchResult, error) {
	vector, err := a.Embedding.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return a.Store.SearchScored(vector, limit)
}

// Close releases the database
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
