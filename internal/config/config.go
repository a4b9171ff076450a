package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	ResultsDir   string `json:"results_dir"`
	DataDir      string `json:"data_dir"`
	DataCacheDir string `json:"data_cache_dir"`

	LLMProvider    string `json:"llm_provider"`
	Model          string `json:"model"`
	BackendURL     string `json:"backend_url"`
	MaxTokens      int    `json:"max_tokens"`
	DeepSeekAPIKey string `json:"deepseek_api_key"`
	OpenAIAPIKey   string `json:"openai_api_key"`

	// Deliberation settings.
	MaxDebateRounds int                `json:"max_debate_rounds"`
	ConsensusMethod string             `json:"consensus_method"`
	AnalystWeights  map[string]float64 `json:"analyst_weights,omitempty"`
	AnalystTimeout  time.Duration      `json:"analyst_timeout"`
	SessionTimeout  time.Duration      `json:"session_timeout"`

	// Decision thresholds. Carried over from the original calibration; kept
	// configurable because no derivation against outcome data exists yet.
	ConfidenceHigh      float64 `json:"confidence_high"`
	ConfidenceMedium    float64 `json:"confidence_medium"`
	ConfidenceLow       float64 `json:"confidence_low"`
	ConfidenceSpread    float64 `json:"confidence_spread"`
	EscalationConsensus float64 `json:"escalation_consensus"`
	TopFactors          int     `json:"top_factors"`

	// Market data providers.
	FinnhubAPIKey       string `json:"finnhub_api_key"`
	LongportAppKey      string `json:"longport_app_key"`
	LongportAppSecret   string `json:"longport_app_secret"`
	LongportAccessToken string `json:"longport_access_token"`
	CacheEnabled        bool   `json:"cache_enabled"`
	OnlineTools         bool   `json:"online_tools"`

	Debug bool `json:"debug"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := &Config{
		ProjectDir:   currentDir,
		ResultsDir:   filepath.Join(currentDir, "results"),
		DataDir:      filepath.Join(currentDir, "data"),
		DataCacheDir: filepath.Join(currentDir, "data", "cache"),

		LLMProvider: "deepseek",
		Model:       "deepseek-chat",
		BackendURL:  "",
		MaxTokens:   8192,

		MaxDebateRounds: 3,
		ConsensusMethod: "weighted",
		AnalystTimeout:  120 * time.Second,
		SessionTimeout:  15 * time.Minute,

		ConfidenceHigh:      0.8,
		ConfidenceMedium:    0.6,
		ConfidenceLow:       0.4,
		ConfidenceSpread:    0.4,
		EscalationConsensus: 0.75,
		TopFactors:          5,

		CacheEnabled: true,
		OnlineTools:  true,
		Debug:        false,
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("RESULTS_DIR"); val != "" {
		c.ResultsDir = val
	}
	if val := os.Getenv("DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = val
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		c.Model = val
	}
	if val := os.Getenv("BACKEND_URL"); val != "" {
		c.BackendURL = val
	}
	if val := os.Getenv("LLM_MAX_TOKENS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxTokens = v
		}
	}

	if val := os.Getenv("MAX_DEBATE_ROUNDS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxDebateRounds = v
		}
	}
	if val := os.Getenv("CONSENSUS_METHOD"); val != "" {
		c.ConsensusMethod = val
	}
	if val := os.Getenv("ANALYST_WEIGHTS"); val != "" {
		if weights := parseWeights(val); len(weights) > 0 {
			c.AnalystWeights = weights
		}
	}
	if val := os.Getenv("ANALYST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.AnalystTimeout = d
		}
	}
	if val := os.Getenv("SESSION_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.SessionTimeout = d
		}
	}

	if val := os.Getenv("CONFIDENCE_HIGH"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.ConfidenceHigh = v
		}
	}
	if val := os.Getenv("CONFIDENCE_MEDIUM"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.ConfidenceMedium = v
		}
	}
	if val := os.Getenv("CONFIDENCE_LOW"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.ConfidenceLow = v
		}
	}
	if val := os.Getenv("CONFIDENCE_SPREAD"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.ConfidenceSpread = v
		}
	}
	if val := os.Getenv("ESCALATION_CONSENSUS"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.EscalationConsensus = v
		}
	}
	if val := os.Getenv("TOP_FACTORS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.TopFactors = v
		}
	}

	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}
	if val := os.Getenv("ONLINE_TOOLS"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.OnlineTools = enabled
		}
	}
	if val := os.Getenv("QUORUMGO_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}

	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("QUORUMGO_FINNHUB_API_KEY"); val != "" {
		c.FinnhubAPIKey = val
	}
	if val := os.Getenv("LONGPORT_APP_KEY"); val != "" {
		c.LongportAppKey = val
	}
	if val := os.Getenv("LONGPORT_APP_SECRET"); val != "" {
		c.LongportAppSecret = val
	}
	if val := os.Getenv("LONGPORT_ACCESS_TOKEN"); val != "" {
		c.LongportAccessToken = val
	}
}

// parseWeights parses "fundamental=0.3,technical=0.3" style weight lists.
// Malformed or negative entries are skipped.
func parseWeights(raw string) map[string]float64 {
	weights := make(map[string]float64)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil || w < 0 {
			continue
		}
		weights[strings.TrimSpace(parts[0])] = w
	}
	return weights
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ResultsDir, c.DataDir, c.DataCacheDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
