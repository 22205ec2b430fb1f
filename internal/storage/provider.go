package storage

import (
	"context"
	"sync"
	"time"
)

// Provider builds the configured backend on first use and then reuses it.
// Construction is deferred so that cloud credential resolution only happens
// when something is actually uploaded.
type Provider struct {
	cfg     Config
	factory func(ctx context.Context, cfg Config) (Store, error)

	mu    sync.Mutex
	store Store
}

// NewProvider creates a Provider for cfg. Nothing is built yet.
func NewProvider(cfg Config) *Provider {
	return &Provider{cfg: cfg, factory: New}
}

// Store returns the backend, building it if needed. A failed build is not
// cached; the next call tries again.
func (p *Provider) Store(ctx context.Context) (Store, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.store != nil {
		return p.store, nil
	}
	s, err := p.factory(ctx, p.cfg)
	if err != nil {
		return nil, &Error{Op: "init", Bucket: p.bucket(), Err: err}
	}
	p.store = s
	return s, nil
}

// Reset drops the built backend so the next call builds a fresh one.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.store = nil
}

// Backend reports the configured backend without building it.
func (p *Provider) Backend() Backend { return p.cfg.Backend }

// Put implements Store.
func (p *Provider) Put(ctx context.Context, data []byte, ext string, ttl time.Duration) (string, error) {
	s, err := p.Store(ctx)
	if err != nil {
		return "", err
	}
	return s.Put(ctx, data, ext, ttl)
}

// Delete implements Store.
func (p *Provider) Delete(ctx context.Context, locator string) (bool, error) {
	s, err := p.Store(ctx)
	if err != nil {
		return false, err
	}
	return s.Delete(ctx, locator)
}

func (p *Provider) bucket() string {
	if p.cfg.Backend == BackendS3 {
		return p.cfg.Bucket
	}
	return ""
}
