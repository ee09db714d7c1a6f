package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/interestmap/pkg/observability"
)

// logHooks reports map and pipeline events to the CLI logger.
type logHooks struct {
	logger *log.Logger
}

func newLogHooks(l *log.Logger) *logHooks { return &logHooks{logger: l} }

// register installs h as the map and pipeline hooks.
func (h *logHooks) register() {
	observability.SetMapHooks(h)
	observability.SetPipelineHooks(h)
}

func (h *logHooks) OnMapCreated(_ context.Context, mapID string, nodeCount int) {
	h.logger.Debug("map created", "map", mapID, "nodes", nodeCount)
}

func (h *logHooks) OnMapDestroyed(_ context.Context, mapID string, ticks int) {
	h.logger.Debug("map destroyed", "map", mapID, "ticks", ticks)
}

func (h *logHooks) OnRedraw(_ context.Context, mapID string, seed uint64) {
	h.logger.Debug("map redrawn", "map", mapID, "seed", seed)
}

func (h *logHooks) OnDragStart(_ context.Context, mapID, nodeID string) {
	h.logger.Debug("drag started", "map", mapID, "node", nodeID)
}

func (h *logHooks) OnDragEnd(_ context.Context, mapID, nodeID, reason string) {
	h.logger.Debug("drag ended", "map", mapID, "node", nodeID, "reason", reason)
}

func (h *logHooks) OnSettleStart(_ context.Context, nodeCount, ticks int) {
	h.logger.Debug("settling", "nodes", nodeCount, "ticks", ticks)
}

func (h *logHooks) OnSettleComplete(_ context.Context, ticks int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("settle failed", "ticks", ticks, "error", err)
		return
	}
	h.logger.Debug("settled", "ticks", ticks, "duration", d)
}

func (h *logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("rendering", "formats", formats)
}

func (h *logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "formats", formats, "error", err)
		return
	}
	h.logger.Debug("rendered", "formats", formats, "duration", d)
}

var (
	_ observability.MapHooks      = (*logHooks)(nil)
	_ observability.PipelineHooks = (*logHooks)(nil)
)
