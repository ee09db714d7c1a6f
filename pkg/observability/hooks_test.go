package observability

import (
	"context"
	"testing"
	"time"
)

func TestDefaultHooksAreNoop(t *testing.T) {
	Reset()

	if _, ok := Map().(NoopMapHooks); !ok {
		t.Error("default Map() should return NoopMapHooks")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("default Pipeline() should return NoopPipelineHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("default Cache() should return NoopCacheHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("default HTTP() should return NoopHTTPHooks")
	}
}

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	Map().OnMapCreated(ctx, "m", 3)
	Map().OnRedraw(ctx, "m", 42)
	Map().OnDragStart(ctx, "m", "l1_0")
	Map().OnDragEnd(ctx, "m", "l1_0", "release")
	Map().OnMapDestroyed(ctx, "m", 100)

	Pipeline().OnSettleStart(ctx, 10, 300)
	Pipeline().OnSettleComplete(ctx, 300, time.Second, nil)
	Pipeline().OnRenderStart(ctx, []string{"svg"})
	Pipeline().OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	Cache().OnCacheHit(ctx, "snapshot")
	Cache().OnCacheMiss(ctx, "snapshot")
	Cache().OnCacheSet(ctx, "snapshot", 1024)

	HTTP().OnRequest(ctx, "GET", "/maps")
	HTTP().OnResponse(ctx, "GET", "/maps", 200, time.Millisecond)
	HTTP().OnError(ctx, "GET", "/maps", nil)
}

func TestSetHooks(t *testing.T) {
	defer Reset()

	customMap := &testMapHooks{}
	SetMapHooks(customMap)
	if Map() != customMap {
		t.Error("SetMapHooks should set custom hooks")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Map().(NoopMapHooks); !ok {
		t.Error("Reset() should restore NoopMapHooks")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testMapHooks{}
	SetMapHooks(custom)

	// Setting nil should be ignored
	SetMapHooks(nil)

	if Map() != custom {
		t.Error("SetMapHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testMapHooks struct{ NoopMapHooks }
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
