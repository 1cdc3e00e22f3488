// Package loader fetches program IDLs, classifies them and normalizes legacy
// type expressions, caching the results per program.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/reoring/idlkit"
	"github.com/reoring/idlkit/source"
)

const (
	// DefaultCacheSize is the number of programs kept when no size is configured.
	DefaultCacheSize = 1024
	// DefaultLoadTimeout bounds one fetch-and-normalize run.
	DefaultLoadTimeout = 30 * time.Second
)

// Fetcher returns the raw IDL document of a program. *onchain.Fetcher
// satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, programID solana.PublicKey) ([]byte, error)
}

// Result is a classified and normalized IDL. IDL is shared between callers and
// must not be mutated.
type Result struct {
	ProgramID string
	Spec      idlkit.Spec
	IDL       map[string]any
	Warnings  []string
}

// Loader wires a Fetcher to idlkit.Normalize behind an LRU cache. Concurrent
// loads of the same program share one fetch, which runs detached from the
// callers' cancellation and is bounded by the load timeout instead.
type Loader struct {
	fetcher Fetcher
	cache   *lru.Cache[string, *Result]
	group   singleflight.Group
	logger  *slog.Logger
	size    int
	timeout time.Duration
}

// Option configures a Loader.
type Option func(*Loader)

// WithCacheSize sets the number of cached programs.
func WithCacheSize(n int) Option { return func(l *Loader) { l.size = n } }

// WithLoadTimeout bounds a shared load independently of caller contexts.
func WithLoadTimeout(d time.Duration) Option { return func(l *Loader) { l.timeout = d } }

// WithLogger sets the logger; the default discards output.
func WithLogger(lg *slog.Logger) Option { return func(l *Loader) { l.logger = lg } }

// New constructs a Loader.
func New(f Fetcher, opts ...Option) (*Loader, error) {
	l := &Loader{fetcher: f, size: DefaultCacheSize, timeout: DefaultLoadTimeout}
	for _, o := range opts {
		o(l)
	}
	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}
	if l.timeout <= 0 {
		l.timeout = DefaultLoadTimeout
	}
	if l.size <= 0 {
		l.size = DefaultCacheSize
	}
	cache, err := lru.New[string, *Result](l.size)
	if err != nil {
		return nil, fmt.Errorf("loader: create cache: %w", err)
	}
	l.cache = cache
	return l, nil
}

// Load returns the normalized IDL of programID (base58).
func (l *Loader) Load(ctx context.Context, programID string) (*Result, error) {
	pk, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("loader: invalid program id %q: %w", programID, err)
	}
	key := pk.String()
	if res, ok := l.cache.Get(key); ok {
		l.logger.Debug("idl cache hit", "program", key)
		return res, nil
	}

	// the shared load outlives any single caller; each caller still stops
	// waiting when its own context ends
	ch := l.group.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		return l.load(lctx, pk)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			l.logger.Debug("idl load shared", "program", key)
		}
		return r.Val.(*Result), nil
	}
}

func (l *Loader) load(ctx context.Context, pk solana.PublicKey) (*Result, error) {
	key := pk.String()
	raw, err := l.fetcher.Fetch(ctx, pk)
	if err != nil {
		l.logger.Warn("idl fetch failed", "program", key, "error", err)
		return nil, fmt.Errorf("loader: fetch %s: %w", key, err)
	}
	doc, err := source.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("loader: decode %s: %w", key, err)
	}
	spec := idlkit.Classify(doc)
	out, diag, err := idlkit.Normalize(doc)
	if err != nil {
		l.logger.Warn("idl normalize failed", "program", key, "spec", string(spec), "error", err)
		return nil, fmt.Errorf("loader: normalize %s: %w", key, err)
	}
	res := &Result{ProgramID: key, Spec: spec, IDL: out, Warnings: diag.Warnings()}
	for _, w := range res.Warnings {
		l.logger.Debug("idl normalize warning", "program", key, "warning", w)
	}
	l.cache.Add(key, res)
	l.logger.Info("idl loaded", "program", key, "spec", string(spec), "bytes", len(raw))
	return res, nil
}

// Invalidate drops a cached program and reports whether it was present.
func (l *Loader) Invalidate(programID string) bool {
	pk, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return false
	}
	return l.cache.Remove(pk.String())
}

// Len returns the number of cached programs.
func (l *Loader) Len() int { return l.cache.Len() }
