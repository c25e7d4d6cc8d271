package gateway

import (
	"context"
	"fmt"
	"io"

	"github.com/ppiankov/macrolens/internal/cache"
	"github.com/ppiankov/macrolens/internal/catalog"
	"github.com/ppiankov/macrolens/internal/model"
)

// Build assembles the configured source chain. Remote sources are cached
// when caching is enabled; the SQL store is read directly. The returned
// closer releases the store, if one was opened.
func Build(ctx context.Context, cfg *model.Config, cat *catalog.Catalog) (Gateway, io.Closer, error) {
	var (
		chain  []Named
		store  *SQLStore
		client *Client
	)
	c := cache.FromConfig(cfg.Cache)

	remote := func(name string, g Gateway) Gateway {
		if c == nil {
			return g
		}
		return NewCached(g, c, cfg.Cache.MemoryTTL, name)
	}

	for _, name := range cfg.Gateway.Sources {
		switch name {
		case SourceStore:
			if store == nil {
				s, err := OpenSQLStore(ctx, cfg.Gateway.Driver, cfg.Gateway.DSN, cat)
				if err != nil {
					return nil, nil, fmt.Errorf("open store: %w", err)
				}
				store = s
			}
			chain = append(chain, Named{Name: name, Gateway: store})

		case SourceWorldBank:
			if client == nil {
				client = NewClientFromConfig(cfg.HTTP, cfg.RateLimiting)
			}
			chain = append(chain, Named{Name: name, Gateway: remote(name, NewWorldBank(client, cfg.Gateway.WorldBankURL, cat))})

		case SourceIMF:
			if client == nil {
				client = NewClientFromConfig(cfg.HTTP, cfg.RateLimiting)
			}
			chain = append(chain, Named{Name: name, Gateway: remote(name, NewIMF(client, cfg.Gateway.IMFURL, cat))})

		default:
			if store != nil {
				_ = store.Close()
			}
			return nil, nil, fmt.Errorf("unknown gateway source %q", name)
		}
	}

	if len(chain) == 0 {
		return nil, nil, fmt.Errorf("no gateway sources configured")
	}

	var closer io.Closer = nopCloser{}
	if store != nil {
		closer = store
	}
	return NewFallback(chain...), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
