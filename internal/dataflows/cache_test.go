package dataflows

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheManagerRoundTrip(t *testing.T) {
	cm := NewCacheManager(t.TempDir(), time.Hour, true)
	params := map[string]string{"symbol": "AAPL"}
	stored := []string{"one", "two"}

	require.NoError(t, cm.Set("test", "values", params, stored))

	var loaded []string
	require.True(t, cm.Get("test", "values", params, &loaded))
	assert.Equal(t, stored, loaded)

	// Different params miss.
	var missed []string
	assert.False(t, cm.Get("test", "values", map[string]string{"symbol": "MSFT"}, &missed))
}

func TestCacheManagerExpiry(t *testing.T) {
	cm := NewCacheManager(t.TempDir(), -time.Second, true)
	require.NoError(t, cm.Set("test", "values", "k", "v"))

	var loaded string
	assert.False(t, cm.Get("test", "values", "k", &loaded))
}

func TestCacheManagerDisabled(t *testing.T) {
	cm := NewCacheManager(t.TempDir(), time.Hour, false)
	require.NoError(t, cm.Set("test", "values", "k", "v"))

	var loaded string
	assert.False(t, cm.Get("test", "values", "k", &loaded))
}

func TestWithRetrySucceedsAfterFailures(t *testing.T) {
	cfg := &RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	attempts := 0
	err := WithRetry(cfg, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryExhaustsBudget(t *testing.T) {
	cfg := &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	sentinel := errors.New("down")
	err := WithRetry(cfg, func() error { return sentinel })
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
}

func TestValidateSymbol(t *testing.T) {
	assert.NoError(t, ValidateSymbol("aapl"))
	assert.NoError(t, ValidateSymbol(" TSLA "))
	assert.Error(t, ValidateSymbol(""))
	assert.Error(t, ValidateSymbol("   "))
	assert.Error(t, ValidateSymbol("TOOLONGSYMBOL"))
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "AAPL", NormalizeSymbol(" aapl "))
}
