// Package blame resolves line authorship from a local Git repository.
package blame

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

// DefaultLRUSize is the number of file blames kept in memory.
const DefaultLRUSize = 1024

// GitSource implements contract.BlameSource with 'git blame' at a fixed revision.
type GitSource struct {
	client   contract.GitClient
	repoPath string
	ref      string
	commit   string
	tracked  map[string]struct{}
	recent   *lru.Cache[string, *schema.FileBlame]
	store    contract.CacheStore
}

var _ contract.BlameSource = &GitSource{} // Compile-time check

type settings struct {
	lruSize int
	store   contract.CacheStore
}

// Option configures a GitSource.
type Option func(*settings)

// WithCacheStore persists blames across runs in store.
func WithCacheStore(store contract.CacheStore) Option {
	return func(s *settings) { s.store = store }
}

// WithLRUSize changes how many file blames are kept in memory.
func WithLRUSize(n int) Option {
	return func(s *settings) { s.lruSize = n }
}

// New resolves ref and lists the files it tracks, so later lookups can tell
// untracked paths apart from real failures.
func New(ctx context.Context, client contract.GitClient, repoPath, ref string, opts ...Option) (*GitSource, error) {
	s := &settings{lruSize: DefaultLRUSize}
	for _, opt := range opts {
		opt(s)
	}

	commit, err := client.ResolveRef(ctx, repoPath, ref)
	if err != nil {
		return nil, err
	}
	files, err := client.ListFilesAtRef(ctx, repoPath, commit)
	if err != nil {
		return nil, err
	}
	tracked := make(map[string]struct{}, len(files))
	for _, f := range files {
		tracked[f] = struct{}{}
	}

	recent, err := lru.New[string, *schema.FileBlame](max(s.lruSize, 1))
	if err != nil {
		return nil, err
	}

	return &GitSource{
		client:   client,
		repoPath: repoPath,
		ref:      ref,
		commit:   commit,
		tracked:  tracked,
		recent:   recent,
		store:    s.store,
	}, nil
}

// Commit returns the commit hash the source blames at.
func (g *GitSource) Commit() string { return g.commit }

// Tracked reports whether path is part of the blamed revision.
func (g *GitSource) Tracked(path string) bool {
	_, ok := g.tracked[path]
	return ok
}

// Lookup implements contract.BlameSource.
func (g *GitSource) Lookup(ctx context.Context, path string) (*schema.FileBlame, error) {
	if !g.Tracked(path) {
		return nil, schema.NewNotTrackedError(path)
	}
	if fb, ok := g.recent.Get(path); ok {
		return fb, nil
	}

	key := g.cacheKey(path)
	if fb := checkCacheHit(g.store, key); fb != nil {
		g.recent.Add(path, fb)
		return fb, nil
	}

	out, err := g.client.GetFileBlame(ctx, g.repoPath, g.commit, path)
	if err != nil {
		return nil, schema.NewBlameFailure(path, err)
	}
	fb, err := parsePorcelain(path, out)
	if err != nil {
		return nil, schema.NewBlameFailure(path, err)
	}

	storeResult(g.store, key, fb)
	g.recent.Add(path, fb)
	return fb, nil
}
