// Package httpapi exposes scoring, question answering, document extraction
// and claim records over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"myclaim/internal/claims"
	"myclaim/internal/documents"
	"myclaim/internal/logging"
	"myclaim/internal/metrics"
	"myclaim/internal/rag"
	"myclaim/internal/scoring"
	"myclaim/internal/store"
)

type Scorer interface {
	Score(ctx context.Context, f claims.Features) (scoring.Result, error)
	Ready() error
}

type Answerer interface {
	Answer(ctx context.Context, query string) rag.Answer
}

type Analyzer interface {
	Analyze(ctx context.Context, kind documents.Kind, image []byte, contentType string) (map[string]any, error)
}

type ClaimStore interface {
	CreateClaim(ctx context.Context, c store.Claim) (store.Claim, error)
	GetClaim(ctx context.Context, id string) (store.Claim, error)
	ListClaims(ctx context.Context, f store.Filter) ([]store.Claim, int, error)
	UpdateClaim(ctx context.Context, id string, c store.Claim) (store.Claim, error)
	DeleteClaim(ctx context.Context, id string) error
}

type Enqueuer interface {
	PushScoringJob(ctx context.Context, claimID string) error
}

// Check is one dependency probed by /readyz.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type Options struct {
	MaxUploadBytes int64
	RateLimitRPS   float64
	RateLimitBurst int
	AllowOrigins   []string
}

// Deps wires handlers to services. Claims and Jobs are optional; without
// Claims the record routes are not registered.
type Deps struct {
	Scorer    Scorer
	RAG       Answerer
	Documents Analyzer
	Claims    ClaimStore
	Jobs      Enqueuer
	Checks    []Check
	Log       logging.Logger
	Metrics   *metrics.Metrics
}

type server struct {
	Deps
	opts Options
	now  func() time.Time
}

func NewRouter(d Deps, opts Options) *gin.Engine {
	d.Log = logging.OrNop(d.Log).Named("http")
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	s := &server{Deps: d, opts: opts, now: time.Now}

	r := gin.New()
	r.Use(RequestID(), Recovery(d.Log), RequestLogger(d.Log, d.Metrics), CORS(opts.AllowOrigins))

	r.GET("/", s.root)
	r.GET("/health", s.health)
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/readyz", s.ready)
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	api := r.Group("/", RateLimit(opts.RateLimitRPS, opts.RateLimitBurst, d.Log))
	api.POST("/predict", s.predict)
	api.POST("/claims/api/predict/", s.predict)
	api.POST("/rag", s.rag)
	api.POST("/claims/api/rag/", s.rag)
	for _, kind := range documents.Kinds() {
		api.POST(kind.Route, s.analyze(kind))
	}

	if d.Claims != nil {
		cl := api.Group("/api/claims")
		cl.GET("", s.listClaims)
		cl.POST("", s.createClaim)
		cl.GET("/filter_by_damage_score", s.filterByDamageScore)
		cl.GET("/filter_by_repair_amount", s.filterByRepairAmount)
		cl.GET("/:id", s.getClaim)
		cl.PUT("/:id", s.updateClaim)
		cl.DELETE("/:id", s.deleteClaim)
		cl.POST("/:id/score", s.enqueueScoring)
	}
	return r
}

func (s *server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "MyClaim AI API is running", "status": "online"})
}

func (s *server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": s.now().UTC().Format(time.RFC3339)})
}

func (s *server) ready(c *gin.Context) {
	failed := gin.H{}
	if s.Scorer != nil {
		if err := s.Scorer.Ready(); err != nil {
			failed["models"] = err.Error()
		}
	}
	for _, check := range s.Checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		err := check.Ping(ctx)
		cancel()
		if err != nil {
			failed[check.Name] = err.Error()
		}
	}
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": failed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
