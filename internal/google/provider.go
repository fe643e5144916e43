package google

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// refreshMargin is how long before expiry a cached token is considered stale.
// It leaves headroom for clock skew and in-flight request latency.
const refreshMargin = time.Minute

// CachingTokenProvider wraps a TokenProvider and reuses the minted token
// until shortly before its expiry. It is safe for concurrent use; concurrent
// callers with a stale cache serialize on a single exchange.
//
// The token validity window and scope are those of the underlying provider;
// caching only avoids redundant exchanges.
type CachingTokenProvider struct {
	src TokenProvider

	mu  sync.Mutex
	tok *oauth2.Token

	// now is overridable for tests
	now func() time.Time
}

// NewCachingTokenProvider creates a caching wrapper around src.
func NewCachingTokenProvider(src TokenProvider) *CachingTokenProvider {
	return &CachingTokenProvider{
		src: src,
		now: time.Now,
	}
}

// AccessToken returns the cached token if still fresh, otherwise mints a new
// one via the underlying provider.
func (p *CachingTokenProvider) AccessToken(ctx context.Context) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tok != nil && p.tok.Expiry.After(p.now().Add(refreshMargin)) {
		return p.tok, nil
	}

	tok, err := p.src.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	p.tok = tok
	return tok, nil
}

// Token implements oauth2.TokenSource.
func (p *CachingTokenProvider) Token() (*oauth2.Token, error) {
	return p.AccessToken(context.Background())
}
