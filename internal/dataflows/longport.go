package dataflows

import (
	"context"
	"errors"
	"fmt"

	lpconfig "github.com/longportapp/openapi-go/config"
	lpquote "github.com/longportapp/openapi-go/quote"

	"github.com/dyike/QuorumGo/internal/config"
)

// LongportClient is an optional second quote source for HK and CN listed
// symbols. It is only constructed when all three Longport credentials are
// present.
type LongportClient struct {
	quoteCtx *lpquote.QuoteContext
}

// NewLongportClient builds a client from the configured credentials, or
// returns an error when they are missing or rejected.
func NewLongportClient(cfg *config.Config) (*LongportClient, error) {
	if cfg.LongportAppKey == "" || cfg.LongportAppSecret == "" || cfg.LongportAccessToken == "" {
		return nil, errors.New("longport credentials not configured")
	}

	conf, err := lpconfig.New(lpconfig.WithConfigKey(cfg.LongportAppKey, cfg.LongportAppSecret, cfg.LongportAccessToken))
	if err != nil {
		return nil, fmt.Errorf("longport config: %w", err)
	}
	quoteCtx, err := lpquote.NewFromCfg(conf)
	if err != nil {
		return nil, fmt.Errorf("longport quote context: %w", err)
	}
	return &LongportClient{quoteCtx: quoteCtx}, nil
}

// GetStaticInfo returns listing details for the given symbols.
func (lc *LongportClient) GetStaticInfo(ctx context.Context, symbols []string) ([]*lpquote.StaticInfo, error) {
	if lc.quoteCtx == nil {
		return nil, errors.New("longport quote context is nil")
	}
	return lc.quoteCtx.StaticInfo(ctx, symbols)
}

// Close releases the underlying connection.
func (lc *LongportClient) Close() error {
	if lc.quoteCtx != nil {
		return lc.quoteCtx.Close()
	}
	return nil
}
