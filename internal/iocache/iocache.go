// Package iocache persists blame results and analysis history.
package iocache

import (
	"sync"

	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
)

// CacheStoreManager manages the blame cache and the analysis store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	blame        contract.CacheStore
	analysis     contract.AnalysisStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetBlameStore returns the blame CacheStore, or nil when caching is disabled.
func (mgr *CacheStoreManager) GetBlameStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.blame
}

// GetAnalysisStore returns the AnalysisStore, or nil when tracking is disabled.
func (mgr *CacheStoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}
