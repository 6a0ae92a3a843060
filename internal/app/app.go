// Package app assembles the services from configuration.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"myclaim/internal/config"
	"myclaim/internal/documents"
	"myclaim/internal/embed"
	"myclaim/internal/httpapi"
	"myclaim/internal/llm"
	"myclaim/internal/logging"
	"myclaim/internal/metrics"
	"myclaim/internal/modelserver"
	"myclaim/internal/objectstore"
	"myclaim/internal/queue"
	"myclaim/internal/rag"
	"myclaim/internal/retrieval"
	"myclaim/internal/scoring"
	"myclaim/internal/store"
	"myclaim/internal/vector"
	"myclaim/internal/worker"
)

type App struct {
	Config    config.Config
	Log       logging.Logger
	Metrics   *metrics.Metrics
	Scorer    *scoring.Orchestrator
	LLM       llm.Provider
	RAG       *rag.Service
	Documents *documents.Service
	Objects   *objectstore.Store
	Store     *store.Store
	Queue     *queue.Queue
}

// New builds every service. Postgres, Redis and the object store are optional
// and are left nil when not configured. Scoring model failures do not fail
// startup; the orchestrator reports them through Ready.
func New(ctx context.Context, cfg config.Config, log logging.Logger) (*App, error) {
	log = logging.OrNop(log)
	a := &App{
		Config:  cfg,
		Log:     log,
		Metrics: metrics.New(cfg.Metrics.Namespace),
	}

	scorer, err := modelserver.Load(ctx, modelserver.NewClient(cfg.Models.ServingURL), modelserver.Names{
		Approval: cfg.Models.Approval,
		Coverage: cfg.Models.Coverage,
		Anomaly:  cfg.Models.Anomaly,
	}, log.Named("scoring"),
		scoring.WithTimeout(cfg.Timeouts.Scoring),
		scoring.WithLogger(log.Named("scoring")),
		scoring.WithMetrics(a.Metrics))
	if err != nil {
		log.Warn("scoring disabled", logging.Err(err))
	}
	a.Scorer = scorer

	a.LLM = selectLLM(cfg, log)
	retriever := retrieval.New(selectEmbedder(cfg, log), selectVector(cfg), cfg.Vector.TopK)
	retriever.EmbedTimeout = cfg.Timeouts.Embed
	retriever.SearchTimeout = cfg.Timeouts.Search
	retriever.Metrics = a.Metrics
	a.RAG = rag.NewService(retriever, a.LLM, log, a.Metrics)

	var archive documents.Archiver
	if cfg.ObjectStore.URL != "" {
		objects, err := objectstore.New(objectstore.Config{
			URL:       cfg.ObjectStore.URL,
			Bucket:    cfg.ObjectStore.Bucket,
			AccessKey: cfg.ObjectStore.AccessKey,
			SecretKey: cfg.ObjectStore.SecretKey,
			UseSSL:    cfg.ObjectStore.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		if err := objects.EnsureBucket(ctx); err != nil {
			log.Warn("document archive unavailable", logging.String("bucket", objects.Bucket()), logging.Err(err))
		} else {
			a.Objects = objects
			archive = objects
		}
	}
	a.Documents = documents.NewService(a.LLM, documents.Models{
		Damage:   cfg.LLM.DamageModel,
		Document: cfg.LLM.DocumentModel,
	}, archive, log, a.Metrics)

	if cfg.Database.DSN != "" {
		st, err := store.Open(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx, st.DB()); err != nil {
			_ = st.Close()
			return nil, err
		}
		a.Store = st
	}
	if cfg.Redis.URL != "" {
		q, err := queue.New(cfg.Redis.URL)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Queue = q
	}
	return a, nil
}

func (a *App) Close() error {
	var err error
	if a.Store != nil {
		err = a.Store.Close()
	}
	if a.Queue != nil {
		_ = a.Queue.Close()
	}
	return err
}

func (a *App) Router() *gin.Engine {
	if !a.Config.Dev.Mode {
		gin.SetMode(gin.ReleaseMode)
	}
	deps := httpapi.Deps{
		Scorer:    a.Scorer,
		RAG:       a.RAG,
		Documents: a.Documents,
		Log:       a.Log,
		Metrics:   a.Metrics,
	}
	if a.Store != nil {
		deps.Claims = a.Store
		deps.Checks = append(deps.Checks, httpapi.Check{Name: "postgres", Ping: a.Store.Ping})
	}
	if a.Queue != nil {
		deps.Jobs = a.Queue
		deps.Checks = append(deps.Checks, httpapi.Check{Name: "redis", Ping: a.Queue.Ping})
	}
	return httpapi.NewRouter(deps, httpapi.Options{
		MaxUploadBytes: a.Config.HTTP.MaxUploadBytes,
		RateLimitRPS:   a.Config.HTTP.RateLimitRPS,
		RateLimitBurst: a.Config.HTTP.RateLimitBurst,
		AllowOrigins:   a.Config.HTTP.AllowOrigins,
	})
}

// Serve listens until ctx is cancelled, then drains in-flight requests.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.HTTP.Addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: a.Config.HTTP.ReadHeaderTimeout,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	a.Log.Info("http server listening", logging.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Worker returns the background scorer. It needs both Postgres and Redis.
func (a *App) Worker() (*worker.Worker, error) {
	if a.Store == nil || a.Queue == nil {
		return nil, errors.New("worker requires database.dsn and redis.url")
	}
	w := worker.New(a.Queue, a.Store, a.Scorer, a.Log, a.Metrics)
	if a.Config.Worker.PollTimeout > 0 {
		w.PollTimeout = a.Config.Worker.PollTimeout
	}
	return w, nil
}

func selectLLM(cfg config.Config, log logging.Logger) llm.Provider {
	if cfg.LLM.Provider != "openai" {
		return llm.NewNoop()
	}
	provider, err := llm.NewOpenAI(llm.Config{
		APIKey:            cfg.LLM.APIKey,
		BaseURL:           cfg.LLM.BaseURL,
		ChatModel:         cfg.LLM.ChatModel,
		Temperature:       cfg.LLM.Temperature,
		MaxTokens:         cfg.LLM.MaxTokens,
		CompletionTimeout: cfg.Timeouts.Completion,
		VisionTimeout:     cfg.Timeouts.Vision,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
	})
	if err != nil {
		log.Warn("language model disabled", logging.Err(err))
		return llm.NewNoop()
	}
	return provider
}

func selectEmbedder(cfg config.Config, log logging.Logger) embed.Provider {
	switch cfg.Embedding.Provider {
	case "openai":
		provider, err := embed.NewOpenAI(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.Embedding.Model, cfg.Embedding.Dim)
		if err != nil {
			log.Warn("embeddings disabled", logging.Err(err))
			return nil
		}
		return provider
	case "noop":
		return embed.NewNoop(cfg.Embedding.Dim)
	}
	return nil
}

func selectVector(cfg config.Config) vector.Store {
	if cfg.Vector.URL == "" {
		return nil
	}
	switch cfg.Vector.Provider {
	case "dashvector":
		return vector.NewDashVector(cfg.Vector.URL, cfg.Vector.APIKey, cfg.Vector.Collection)
	case "qdrant":
		return vector.NewQdrant(cfg.Vector.URL, cfg.Vector.APIKey, cfg.Vector.Collection)
	}
	return nil
}
