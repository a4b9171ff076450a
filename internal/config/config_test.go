package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "deepseek", cfg.LLMProvider)
	assert.Equal(t, 3, cfg.MaxDebateRounds)
	assert.Equal(t, "weighted", cfg.ConsensusMethod)
	assert.Equal(t, 120*time.Second, cfg.AnalystTimeout)
	assert.Equal(t, 15*time.Minute, cfg.SessionTimeout)
	assert.InDelta(t, 0.8, cfg.ConfidenceHigh, 1e-9)
	assert.InDelta(t, 0.4, cfg.ConfidenceSpread, 1e-9)
	assert.InDelta(t, 0.75, cfg.EscalationConsensus, 1e-9)
	assert.Equal(t, 5, cfg.TopFactors)
	assert.True(t, cfg.CacheEnabled)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MAX_DEBATE_ROUNDS", "5")
	t.Setenv("CONSENSUS_METHOD", "majority")
	t.Setenv("ANALYST_TIMEOUT", "30s")
	t.Setenv("CONFIDENCE_SPREAD", "0.25")
	t.Setenv("QUORUMGO_DEBUG", "true")
	t.Setenv("ANALYST_WEIGHTS", "fundamental_analyst=0.4, technical_analyst=0.2")

	cfg := DefaultConfig()

	assert.Equal(t, 5, cfg.MaxDebateRounds)
	assert.Equal(t, "majority", cfg.ConsensusMethod)
	assert.Equal(t, 30*time.Second, cfg.AnalystTimeout)
	assert.InDelta(t, 0.25, cfg.ConfidenceSpread, 1e-9)
	assert.True(t, cfg.Debug)
	require.Len(t, cfg.AnalystWeights, 2)
	assert.InDelta(t, 0.4, cfg.AnalystWeights["fundamental_analyst"], 1e-9)
	assert.InDelta(t, 0.2, cfg.AnalystWeights["technical_analyst"], 1e-9)
}

func TestEnvOverridesIgnoreMalformedValues(t *testing.T) {
	t.Setenv("MAX_DEBATE_ROUNDS", "many")
	t.Setenv("ANALYST_TIMEOUT", "soon")

	cfg := DefaultConfig()

	assert.Equal(t, 3, cfg.MaxDebateRounds)
	assert.Equal(t, 120*time.Second, cfg.AnalystTimeout)
}

func TestParseWeights(t *testing.T) {
	weights := parseWeights("a=0.5,b=0.3")
	assert.InDelta(t, 0.5, weights["a"], 1e-9)
	assert.InDelta(t, 0.3, weights["b"], 1e-9)

	// Malformed and negative entries are skipped.
	weights = parseWeights("a=0.5,broken,b=-1,c=x")
	assert.Len(t, weights, 1)
	assert.InDelta(t, 0.5, weights["a"], 1e-9)

	assert.Empty(t, parseWeights(""))
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := &Config{
		ResultsDir:   filepath.Join(base, "results"),
		DataDir:      filepath.Join(base, "data"),
		DataCacheDir: filepath.Join(base, "data", "cache"),
	}
	require.NoError(t, cfg.EnsureDirectories())
	assert.DirExists(t, cfg.ResultsDir)
	assert.DirExists(t, cfg.DataCacheDir)
}
