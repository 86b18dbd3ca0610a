package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/parlance-labs/recall-core/internal/adapters/driven/ai"
	"github.com/parlance-labs/recall-core/internal/adapters/driven/chroma"
	"github.com/parlance-labs/recall-core/internal/adapters/driven/memcache"
	"github.com/parlance-labs/recall-core/internal/adapters/driven/postgres"
	redisadapter "github.com/parlance-labs/recall-core/internal/adapters/driven/redis"
	"github.com/parlance-labs/recall-core/internal/adapters/driven/sqlite"
	"github.com/parlance-labs/recall-core/internal/adapters/driven/websearch"
	"github.com/parlance-labs/recall-core/internal/adapters/driving/http"
	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
	"github.com/parlance-labs/recall-core/internal/core/services"
	"github.com/parlance-labs/recall-core/internal/runtime"
)

var version = "dev"

// stores bundles the persistence layer so postgres and sqlite wire up
// identically
type stores struct {
	sessions  driven.SessionStore
	messages  driven.MessageStore
	knowledge driven.KnowledgeStore
	files     driven.FileStore
	settings  driven.SettingsStore
	pinger    http.Pinger
	close     func() error
}

func main() {
	// Local overrides; absence is not an error
	_ = godotenv.Load()

	log.Printf("recall-core %s starting", version)

	port := getEnvInt("PORT", 8080)
	databaseURL := getEnv("DATABASE_URL", "recall.db")
	redisURL := getEnv("REDIS_URL", "")
	chromaURL := getEnv("CHROMA_URL", "http://localhost:8000")

	ctx := context.Background()

	// ===== Persistence (PostgreSQL or SQLite by DATABASE_URL scheme) =====
	st, backend, err := connectStores(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer st.close()
	log.Printf("Using %s store backend", backend)

	// ===== Redis (optional, backs the web search cache and limiter) =====
	var redisClient *redis.Client
	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== Vector index =====
	var index driven.VectorIndex
	var indexPinger http.Pinger
	chromaIndex, err := chroma.Connect(ctx, chroma.DefaultConfig(chromaURL))
	if err != nil {
		log.Printf("Warning: Chroma unavailable: %v (retrieval disabled)", err)
	} else {
		index = chromaIndex
		indexPinger = chromaIndex
		log.Println("Chroma connected")
	}

	// ===== AI services =====
	runtimeConfig := domain.NewRuntimeConfig(backend)
	runtimeServices := runtime.NewServices(runtimeConfig)

	aiConfig := domain.AIConfig{
		EmbeddingProvider:  domain.AIProvider(getEnv("EMBEDDING_PROVIDER", "")),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", ""),
		SummarizerProvider: domain.AIProvider(getEnv("SUMMARIZER_PROVIDER", "")),
		SummarizerModel:    getEnv("SUMMARIZER_MODEL", ""),
		BaseURL:            getEnv("AI_BASE_URL", ""),
	}

	embedding, err := ai.NewEmbeddingService(aiConfig)
	if err != nil {
		log.Fatalf("Invalid embedding configuration: %v", err)
	}
	if embedding != nil {
		if err := runtimeServices.ValidateAndSetEmbedding(ctx, embedding); err != nil {
			log.Printf("Warning: embedding service unavailable: %v", err)
		} else {
			log.Printf("Embedding service ready (%s)", aiConfig.EmbeddingProvider)
		}
	}

	summarizer, err := ai.NewSummarizerService(aiConfig)
	if err != nil {
		log.Fatalf("Invalid summarizer configuration: %v", err)
	}
	if summarizer != nil {
		if err := runtimeServices.ValidateAndSetSummarizer(ctx, summarizer); err != nil {
			log.Printf("Warning: summarizer service unavailable: %v", err)
		} else {
			log.Printf("Summarizer service ready (%s)", aiConfig.SummarizerProvider)
		}
	}

	log.Printf("Runtime config: store_backend=%s, embedding=%t, summarizer=%t",
		runtimeConfig.StoreBackend,
		runtimeConfig.EmbeddingAvailable(),
		runtimeConfig.SummarizerAvailable())

	// ===== Web search cache and limiter (Redis if available) =====
	rateLimit := getEnvInt("SEARCH_RATE_LIMIT_PER_MIN", 13)
	var searchCache driven.SearchCache
	var searchLimiter driven.SearchLimiter
	if redisClient != nil {
		searchCache = redisadapter.NewSearchCache(redisClient)
		searchLimiter = redisadapter.NewSearchLimiter(redisClient, rateLimit)
		log.Println("Using Redis search cache and limiter")
	} else {
		searchCache = memcache.NewSearchCache()
		searchLimiter = memcache.NewSearchLimiter(rateLimit)
		log.Println("Using in-process search cache and limiter")
	}

	// ===== Web search providers =====
	providers := []driven.WebSearchProvider{
		websearch.NewDuckDuckGo(getEnv("DUCKDUCKGO_URL", "")),
	}
	if bingKey := getEnv("BING_API_KEY", ""); bingKey != "" {
		providers = append(providers, websearch.NewBing(getEnv("BING_URL", ""), bingKey))
		log.Println("Bing search provider enabled")
	}

	// ===== Core services =====
	logger := slog.Default()
	cacheTTL := time.Duration(getEnvInt("RETRIEVAL_CACHE_TTL_SEC", 300)) * time.Second

	retrievalCache := services.NewRetrievalCache(cacheTTL)
	retriever := services.NewDualScopeRetriever(index, runtimeServices, logger)
	contextService := services.NewContextService(retrievalCache, retriever, st.files, st.settings, logger)
	memoryService := services.NewMemoryService(st.sessions, st.messages, st.knowledge, st.settings, runtimeServices, logger)
	searchAugmenter := services.NewSearchAugmenter(providers, searchCache, searchLimiter, st.settings, logger)
	chatService := services.NewChatService(st.sessions, st.messages, st.settings, contextService, memoryService, searchAugmenter, logger)

	// ===== HTTP server =====
	cfg := http.Config{
		Host:    getEnv("HOST", "0.0.0.0"),
		Port:    port,
		Version: version,
	}
	server := http.NewServer(
		cfg,
		chatService,
		memoryService,
		st.sessions,
		st.messages,
		st.files,
		st.settings,
		st.pinger,
		indexPinger,
	)

	log.Printf("API server starting on :%d", port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// connectStores picks the store backend from the DATABASE_URL scheme:
// postgres:// URLs get PostgreSQL, anything else is treated as a SQLite
// file path.
func connectStores(ctx context.Context, databaseURL string) (*stores, string, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		db, err := postgres.Connect(ctx, postgres.DefaultConfig(databaseURL))
		if err != nil {
			return nil, "", err
		}
		if err := db.InitSchema(ctx); err != nil {
			db.Close()
			return nil, "", fmt.Errorf("schema init failed: %w", err)
		}
		return &stores{
			sessions:  postgres.NewSessionStore(db),
			messages:  postgres.NewMessageStore(db),
			knowledge: postgres.NewKnowledgeStore(db),
			files:     postgres.NewFileStore(db),
			settings:  postgres.NewSettingsStore(db),
			pinger:    db,
			close:     db.Close,
		}, "postgres", nil
	}

	db, err := sqlite.Connect(ctx, databaseURL)
	if err != nil {
		return nil, "", err
	}
	return &stores{
		sessions:  sqlite.NewSessionStore(db),
		messages:  sqlite.NewMessageStore(db),
		knowledge: sqlite.NewKnowledgeStore(db),
		files:     sqlite.NewFileStore(db),
		settings:  sqlite.NewSettingsStore(db),
		pinger:    db,
		close:     db.Close,
	}, "sqlite", nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
