package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"myclaim/internal/logging"
)

const DashScopeBaseURL = "https://dashscope-intl.aliyuncs.com/compatible-mode/v1"

type Config struct {
	HTTP struct {
		Addr              string        `yaml:"addr"`
		ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
		MaxUploadBytes    int64         `yaml:"max_upload_bytes"`
		RateLimitRPS      float64       `yaml:"rate_limit_rps"`
		RateLimitBurst    int           `yaml:"rate_limit_burst"`
		AllowOrigins      []string      `yaml:"allow_origins"`
	} `yaml:"http"`
	Dev struct {
		Mode bool `yaml:"mode"`
	} `yaml:"dev"`
	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
	ObjectStore struct {
		URL       string `yaml:"url"`
		Bucket    string `yaml:"bucket"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		UseSSL    bool   `yaml:"use_ssl"`
	} `yaml:"object_store"`
	Vector struct {
		Provider   string `yaml:"provider"`
		URL        string `yaml:"url"`
		APIKey     string `yaml:"api_key"`
		Collection string `yaml:"collection"`
		TopK       int    `yaml:"top_k"`
	} `yaml:"vector"`
	Embedding struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		Dim      int    `yaml:"dim"`
	} `yaml:"embedding"`
	LLM struct {
		Provider          string  `yaml:"provider"`
		BaseURL           string  `yaml:"base_url"`
		APIKey            string  `yaml:"api_key"`
		ChatModel         string  `yaml:"chat_model"`
		Temperature       float32 `yaml:"temperature"`
		MaxTokens         int     `yaml:"max_tokens"`
		DamageModel       string  `yaml:"damage_model"`
		DocumentModel     string  `yaml:"document_model"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"llm"`
	Models struct {
		ServingURL string `yaml:"serving_url"`
		Approval   string `yaml:"approval"`
		Coverage   string `yaml:"coverage"`
		Anomaly    string `yaml:"anomaly"`
	} `yaml:"models"`
	Timeouts struct {
		Embed      time.Duration `yaml:"embed"`
		Search     time.Duration `yaml:"search"`
		Completion time.Duration `yaml:"completion"`
		Vision     time.Duration `yaml:"vision"`
		Scoring    time.Duration `yaml:"scoring"`
	} `yaml:"timeouts"`
	Worker struct {
		PollTimeout time.Duration `yaml:"poll_timeout"`
	} `yaml:"worker"`
	Metrics struct {
		Namespace string `yaml:"namespace"`
	} `yaml:"metrics"`
	Log logging.Config `yaml:"log"`
}

func Default() Config {
	var cfg Config
	cfg.HTTP.Addr = ":8000"
	cfg.HTTP.ReadHeaderTimeout = 5 * time.Second
	cfg.HTTP.MaxUploadBytes = 10 << 20
	cfg.HTTP.RateLimitRPS = 20
	cfg.HTTP.RateLimitBurst = 40
	cfg.HTTP.AllowOrigins = []string{"*"}
	cfg.Dev.Mode = true
	cfg.ObjectStore.Bucket = "myclaim-documents"
	cfg.Vector.Provider = "dashvector"
	cfg.Vector.Collection = "quickstart"
	cfg.Vector.TopK = 5
	cfg.Embedding.Provider = "openai"
	cfg.Embedding.Model = "text-embedding-v3"
	cfg.Embedding.Dim = 1024
	cfg.LLM.Provider = "openai"
	cfg.LLM.BaseURL = DashScopeBaseURL
	cfg.LLM.ChatModel = "qwen-turbo"
	cfg.LLM.Temperature = 0.7
	cfg.LLM.MaxTokens = 512
	cfg.LLM.DamageModel = "qwen-vl-plus"
	cfg.LLM.DocumentModel = "qwen-vl-max"
	cfg.LLM.RequestsPerSecond = 5
	cfg.Models.Approval = "approval"
	cfg.Models.Coverage = "coverage"
	cfg.Models.Anomaly = "anomaly"
	cfg.Timeouts.Embed = 15 * time.Second
	cfg.Timeouts.Search = 10 * time.Second
	cfg.Timeouts.Completion = 30 * time.Second
	cfg.Timeouts.Vision = 60 * time.Second
	cfg.Timeouts.Scoring = 5 * time.Second
	cfg.Worker.PollTimeout = 5 * time.Second
	cfg.Metrics.Namespace = "myclaim"
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return cfg
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, err
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	applyEnv(&cfg)

	if cfg.HTTP.Addr == "" {
		return cfg, errors.New("missing http.addr (or MC_HTTP_ADDR)")
	}
	if cfg.Vector.TopK <= 0 {
		return cfg, errors.New("vector.top_k must be positive")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MC_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("MC_HTTP_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.HTTP.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("MC_HTTP_RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.HTTP.RateLimitRPS = f
		}
	}
	if v := os.Getenv("MC_HTTP_RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimitBurst = n
		}
	}
	if v := os.Getenv("MC_HTTP_ALLOW_ORIGINS"); v != "" {
		cfg.HTTP.AllowOrigins = splitCSV(v)
	}
	if v := os.Getenv("MC_DEV_MODE"); v != "" {
		cfg.Dev.Mode = parseBool(v, cfg.Dev.Mode)
	}
	if v := os.Getenv("MC_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("MC_REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("MC_OBJECT_STORE_URL"); v != "" {
		cfg.ObjectStore.URL = v
	}
	if v := os.Getenv("MC_OBJECT_STORE_BUCKET"); v != "" {
		cfg.ObjectStore.Bucket = v
	}
	if v := os.Getenv("MC_OBJECT_STORE_ACCESS_KEY"); v != "" {
		cfg.ObjectStore.AccessKey = v
	}
	if v := os.Getenv("MC_OBJECT_STORE_SECRET_KEY"); v != "" {
		cfg.ObjectStore.SecretKey = v
	}
	if v := os.Getenv("MC_OBJECT_STORE_USE_SSL"); v != "" {
		cfg.ObjectStore.UseSSL = parseBool(v, cfg.ObjectStore.UseSSL)
	}
	if v := os.Getenv("MC_VECTOR_PROVIDER"); v != "" {
		cfg.Vector.Provider = v
	}
	if v := os.Getenv("MC_VECTOR_URL"); v != "" {
		cfg.Vector.URL = v
	}
	if v := os.Getenv("MC_VECTOR_API_KEY"); v != "" {
		cfg.Vector.APIKey = v
	}
	if v := os.Getenv("MC_VECTOR_COLLECTION"); v != "" {
		cfg.Vector.Collection = v
	}
	if v := os.Getenv("MC_TOPK"); v != "" {
		if k, err := strconv.Atoi(v); err == nil {
			cfg.Vector.TopK = k
		}
	}
	if v := os.Getenv("MC_EMBED_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv("MC_EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("MC_EMBED_DIM"); v != "" {
		if dim, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Dim = dim
		}
	}
	if v := os.Getenv("MC_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("MC_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("MC_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("MC_CHAT_MODEL"); v != "" {
		cfg.LLM.ChatModel = v
	}
	if v := os.Getenv("MC_LLM_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(f)
		}
	}
	if v := os.Getenv("MC_LLM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LLM.MaxTokens = n
		}
	}
	if v := os.Getenv("MC_DAMAGE_MODEL"); v != "" {
		cfg.LLM.DamageModel = v
	}
	if v := os.Getenv("MC_DOCUMENT_MODEL"); v != "" {
		cfg.LLM.DocumentModel = v
	}
	if v := os.Getenv("MC_LLM_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.LLM.RequestsPerSecond = f
		}
	}
	if v := os.Getenv("MC_MODELS_SERVING_URL"); v != "" {
		cfg.Models.ServingURL = v
	}
	if v := os.Getenv("MC_MODEL_APPROVAL"); v != "" {
		cfg.Models.Approval = v
	}
	if v := os.Getenv("MC_MODEL_COVERAGE"); v != "" {
		cfg.Models.Coverage = v
	}
	if v := os.Getenv("MC_MODEL_ANOMALY"); v != "" {
		cfg.Models.Anomaly = v
	}
	setDuration("MC_TIMEOUT_EMBED", &cfg.Timeouts.Embed)
	setDuration("MC_TIMEOUT_SEARCH", &cfg.Timeouts.Search)
	setDuration("MC_TIMEOUT_COMPLETION", &cfg.Timeouts.Completion)
	setDuration("MC_TIMEOUT_VISION", &cfg.Timeouts.Vision)
	setDuration("MC_TIMEOUT_SCORING", &cfg.Timeouts.Scoring)
	setDuration("MC_WORKER_POLL_TIMEOUT", &cfg.Worker.PollTimeout)
	if v := os.Getenv("MC_METRICS_NAMESPACE"); v != "" {
		cfg.Metrics.Namespace = v
	}
	if v := os.Getenv("MC_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("MC_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func setDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func parseBool(input string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func splitCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		val := strings.TrimSpace(part)
		if val == "" {
			continue
		}
		out = append(out, val)
	}
	return out
}
