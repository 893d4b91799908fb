package blame

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

// currentCacheVersion defines the version of the cached blame encoding
const currentCacheVersion = 1

// cacheKey is unique per repository, commit and path. Blame at a fixed
// commit never changes, so entries do not expire.
func (g *GitSource) cacheKey(path string) string {
	key := fmt.Sprintf("blame:%s:%s:%s", g.repoPath, g.commit, path)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}

// checkCacheHit attempts to retrieve and validate a cached blame
func checkCacheHit(store contract.CacheStore, key string) *schema.FileBlame {
	if store == nil {
		return nil
	}
	data, version, _, err := store.Get(key)
	if err != nil || version != currentCacheVersion {
		return nil
	}
	var fb schema.FileBlame
	if err := json.Unmarshal(data, &fb); err != nil || fb.Lines == nil {
		return nil
	}
	return &fb
}

// storeResult saves a blame, warning on failure
func storeResult(store contract.CacheStore, key string, fb *schema.FileBlame) {
	if store == nil {
		return
	}
	data, err := json.Marshal(fb)
	if err != nil {
		return
	}
	if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
		contract.LogWarn("Cannot cache blame of "+fb.Path, err)
	}
}
