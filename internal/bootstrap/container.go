package bootstrap

import (
	"context"
	"log"
	"time"

	"docqa-be/internal/config"
	"docqa-be/internal/controller"
	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/repository/contract"
	"docqa-be/internal/repository/memory"
	"docqa-be/internal/repository/rediscache"
	"docqa-be/internal/repository/unitofwork"
	"docqa-be/internal/service"
	"docqa-be/pkg/embedding"
	"docqa-be/pkg/extract"
	"docqa-be/pkg/llm"
	"docqa-be/pkg/llm/factory"
	"docqa-be/pkg/transcribe"
	"docqa-be/pkg/vectorindex"

	pktNats "docqa-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	RagController  controller.IRagController
	FileController controller.IFileController

	// Services, exposed for cmd/* to run or call directly
	RagService        service.IRagService
	IndexerService    service.IIndexerService
	ConsumerService   service.IConsumerService
	OrphanSweeper     service.IOrphanSweeper
	CacheInvalidation service.ICacheInvalidationService

	UowFactory unitofwork.RepositoryFactory
	Logger     logger.ILogger

	closers []func()
}

// NewContainer wires every component. A nil db selects the in-process store, which suits local runs and the CLI.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c := &Container{Logger: sysLogger}

	// 1. Persistence
	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	} else {
		log.Printf("[WARN] No database configured, using in-memory store")
		uowFactory = memory.NewStore().NewRepositoryFactory()
	}
	c.UowFactory = uowFactory

	// 2. Models
	embeddingProvider, err := embedding.NewProvider(embedding.Config{
		Provider:       cfg.Ai.EmbeddingProvider,
		Model:          cfg.Ai.EmbeddingModel,
		Dimension:      cfg.Ai.EmbeddingDimension,
		RequestsPerSec: cfg.Ai.EmbeddingRPS,
		OllamaBaseURL:  cfg.Ai.OllamaBaseURL,
		OpenAIBaseURL:  cfg.Ai.OpenAIBaseURL,
		OpenAIAPIKey:   cfg.Keys.OpenAI,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize embedding provider: %v", err)
	}
	warmupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = embedding.Warmup(warmupCtx, embeddingProvider)
	cancel()
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s (%s, %d dims)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel, embeddingProvider.Dimension())

	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider:      cfg.Ai.LLMProvider,
		Model:         cfg.Ai.LLMModel,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		OpenAIBaseURL: cfg.Ai.OpenAIBaseURL,
		OpenAIAPIKey:  cfg.Keys.OpenAI,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	generator := llm.NewAnswerGenerator(llmProvider, cfg.Ai.MaxTokens)

	var transcriber transcribe.AudioTranscriber
	if cfg.Keys.OpenAI != "" {
		transcriber = transcribe.NewOpenAITranscriber(cfg.Ai.OpenAIBaseURL, cfg.Keys.OpenAI, cfg.Ai.TranscribeModel)
	} else {
		log.Printf("[WARN] OPENAI_API_KEY not set, voice questions are disabled")
	}

	// 3. Vector index and processed cache
	index := c.newIndex(cfg, uowFactory, db != nil)
	cache := c.newCache(cfg, sysLogger)

	// 4. Event bus: NATS across instances, watermill in process
	var eventPublisher service.IEventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 5. Services
	indexerService := service.NewIndexerService(
		uowFactory,
		extract.NewDefaultRegistry(),
		embeddingProvider,
		index,
		cache,
		eventPublisher,
		sysLogger,
	)
	ragService := service.NewRagService(
		uowFactory,
		indexerService,
		embeddingProvider,
		index,
		generator,
		transcriber,
		eventPublisher,
		sysLogger,
	)
	publisherService := service.NewPublisherService(cfg.App.UploadTopic, pubSub)
	fileService := service.NewFileService(
		uowFactory,
		publisherService,
		indexerService,
		eventPublisher,
		cfg.App.StoragePath,
		sysLogger,
	)

	c.RagService = ragService
	c.IndexerService = indexerService
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.UploadTopic, uowFactory, indexerService, sysLogger)
	c.OrphanSweeper = service.NewOrphanSweeper(uowFactory, sysLogger)

	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		c.CacheInvalidation = service.NewCacheInvalidationService(natsSub, indexerService, sysLogger)
		c.closers = append(c.closers, natsSub.Close)
	}

	// 6. Controllers
	c.RagController = controller.NewRagController(ragService)
	c.FileController = controller.NewFileController(fileService)

	return c
}

func (c *Container) newIndex(cfg *config.Config, uowFactory unitofwork.RepositoryFactory, hasDB bool) vectorindex.Index {
	switch cfg.Rag.VectorStore {
	case "qdrant":
		q, err := vectorindex.NewQdrantIndex(cfg.Rag.QdrantURL, cfg.Rag.QdrantCollection, cfg.Ai.EmbeddingDimension)
		if err != nil {
			log.Fatalf("[FATAL] Failed to connect to Qdrant: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := q.EnsureCollection(ctx); err != nil {
			log.Fatalf("[FATAL] Failed to ensure Qdrant collection: %v", err)
		}
		c.closers = append(c.closers, func() { _ = q.Close() })
		log.Printf("[INFO] Using vector index: qdrant (%s)", cfg.Rag.QdrantCollection)
		return q
	case "memory":
		log.Printf("[INFO] Using vector index: memory")
		return vectorindex.NewMemoryIndex(cfg.Ai.EmbeddingDimension)
	default:
		if !hasDB {
			log.Printf("[WARN] pgvector needs a database, falling back to the memory index")
			return vectorindex.NewMemoryIndex(cfg.Ai.EmbeddingDimension)
		}
		log.Printf("[INFO] Using vector index: pgvector")
		return vectorindex.NewPgvectorIndex(uowFactory, cfg.Ai.EmbeddingDimension)
	}
}

func (c *Container) newCache(cfg *config.Config, sysLogger logger.ILogger) contract.ProcessedFileCache {
	if cfg.Rag.CacheBackend != "redis" {
		return memory.NewProcessedFileCache()
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Using in-memory processed cache", err)
		_ = rdb.Close()
		return memory.NewProcessedFileCache()
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return rediscache.NewProcessedFileCache(rdb, sysLogger)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
