// Package observability lets a host program watch interestmap at work.
//
// Live maps, the headless pipeline, caches and the HTTP server report events
// through four hook interfaces. Each defaults to a no-op; a binary swaps in
// its own implementation once at startup, for example to log or count:
//
//	observability.SetMapHooks(myMapHooks{})
//	observability.SetHTTPHooks(myHTTPHooks{})
//
// Libraries only ever read the registry, so they carry no dependency on a
// metrics or tracing backend.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Map Hooks
// =============================================================================

// MapHooks receives lifecycle events from live maps.
type MapHooks interface {
	OnMapCreated(ctx context.Context, mapID string, nodeCount int)
	OnMapDestroyed(ctx context.Context, mapID string, ticks int)

	// OnRedraw records a re-randomisation with the seed used.
	OnRedraw(ctx context.Context, mapID string, seed uint64)

	// Drag events. reason is "release", "idle", "replaced", "redraw" or "destroy".
	OnDragStart(ctx context.Context, mapID, nodeID string)
	OnDragEnd(ctx context.Context, mapID, nodeID, reason string)
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the headless layout pipeline.
type PipelineHooks interface {
	// Settle events
	OnSettleStart(ctx context.Context, nodeCount, ticks int)
	OnSettleComplete(ctx context.Context, ticks int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// keyType names the kind of entry, such as "snapshot" or "artifact".
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the API server.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)

	// OnResponse receives the matched route pattern, e.g. "/maps/{id}/drag".
	OnResponse(ctx context.Context, method, pattern string, statusCode int, duration time.Duration)

	// OnError receives errors that were turned into error responses.
	OnError(ctx context.Context, method, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopMapHooks is a no-op implementation of MapHooks.
type NoopMapHooks struct{}

func (NoopMapHooks) OnMapCreated(context.Context, string, int)         {}
func (NoopMapHooks) OnMapDestroyed(context.Context, string, int)       {}
func (NoopMapHooks) OnRedraw(context.Context, string, uint64)          {}
func (NoopMapHooks) OnDragStart(context.Context, string, string)       {}
func (NoopMapHooks) OnDragEnd(context.Context, string, string, string) {}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnSettleStart(context.Context, int, int)                          {}
func (NoopPipelineHooks) OnSettleComplete(context.Context, int, time.Duration, error)      {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	mapHooks      MapHooks      = NoopMapHooks{}
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetMapHooks installs h. A nil h is ignored.
func SetMapHooks(h MapHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		mapHooks = h
	}
}

// SetPipelineHooks installs h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks installs h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Map returns the registered map hooks.
func Map() MapHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return mapHooks
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op hooks. Tests that install hooks call it on cleanup.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	mapHooks = NoopMapHooks{}
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
