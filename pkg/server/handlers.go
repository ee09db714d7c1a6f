package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/interestmap/pkg/core/tree"
	"github.com/matzehuels/interestmap/pkg/errors"
	"github.com/matzehuels/interestmap/pkg/graph"
	"github.com/matzehuels/interestmap/pkg/interestmap"
	"github.com/matzehuels/interestmap/pkg/pipeline"
	"github.com/matzehuels/interestmap/pkg/store"
)

// =============================================================================
// Request and Response Bodies
// =============================================================================

type createMapRequest struct {
	ID      string          `json:"id,omitempty"`
	Tree    json.RawMessage `json:"tree"`
	Options json.RawMessage `json:"options,omitempty"`
}

type resizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type redrawRequest struct {
	Seed uint64 `json:"seed,omitempty"`
}

type redrawResponse struct {
	Seed uint64 `json:"seed"`
}

// Drag actions.
const (
	ActionGrab    = "grab"
	ActionMove    = "move"
	ActionHold    = "hold"
	ActionRelease = "release"
)

type dragRequest struct {
	Action string   `json:"action"`
	Node   string   `json:"node,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
}

type saveSnapshotRequest struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
}

type layoutRequest struct {
	Tree    json.RawMessage  `json:"tree"`
	Options pipeline.Options `json:"options,omitzero"`
}

type layoutResponse struct {
	TreeHash  string            `json:"tree_hash"`
	Snapshot  graph.Snapshot    `json:"snapshot"`
	Artifacts map[string]string `json:"artifacts"`
	Stats     layoutStats       `json:"stats"`
	Cache     layoutCache       `json:"cache"`
}

type layoutStats struct {
	Nodes    int     `json:"nodes"`
	Links    int     `json:"links"`
	Ticks    int     `json:"ticks"`
	SettleMS float64 `json:"settle_ms"`
	RenderMS float64 `json:"render_ms"`
}

type layoutCache struct {
	Snapshot bool `json:"snapshot"`
	Render   bool `json:"render"`
}

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "maps": s.maps.len()})
}

// =============================================================================
// Live Maps
// =============================================================================

func (s *Server) handleCreateMap(w http.ResponseWriter, r *http.Request) {
	var req createMapRequest
	if err := s.decode(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	root, err := decodeTree(req.Tree)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.mapOptions(req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ID != "" && s.maps.exists(req.ID) {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "map id %q is already in use", req.ID))
		return
	}

	mapOpts := slices.Clone(s.cfg.MapOptions)
	mapOpts = append(mapOpts, interestmap.WithLogger(s.logger))
	if req.ID != "" {
		mapOpts = append(mapOpts, interestmap.WithID(req.ID))
	}
	m, err := interestmap.New(root, opts, mapOpts...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.maps.add(m); err != nil {
		m.Destroy()
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("map created", "id", m.ID(), "root", root.Name, "seed", m.Seed())
	w.Header().Set("Location", "/maps/"+m.ID())
	s.writeJSON(w, http.StatusCreated, m.Status())
}

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	maps := s.maps.list()
	out := make([]interestmap.Status, 0, len(maps))
	for _, m := range maps {
		out = append(out, m.Status())
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	m, err := s.maps.get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := m.Snapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDestroyMap(w http.ResponseWriter, r *http.Request) {
	m, err := s.maps.remove(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	m.Destroy()
	s.logger.Info("map destroyed", "id", m.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	m, err := s.maps.get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req resizeRequest
	if err := s.decode(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := m.Resize(req.Width, req.Height); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, m.Status())
}

func (s *Server) handleRedraw(w http.ResponseWriter, r *http.Request) {
	m, err := s.maps.get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req redrawRequest
	if err := s.decode(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	seed := req.Seed
	if seed == 0 {
		seed, err = m.Redraw()
	} else {
		err = m.RedrawSeeded(seed)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, redrawResponse{Seed: seed})
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	m, err := s.maps.get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req dragRequest
	if err := s.decode(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := applyDrag(m, req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, m.Status())
}

func applyDrag(m *interestmap.Map, req dragRequest) error {
	switch req.Action {
	case ActionGrab:
		if req.Node == "" {
			return errors.New(errors.ErrCodeInvalidInput, "grab needs a node")
		}
		d, err := m.Grab(req.Node)
		if err != nil {
			return err
		}
		if req.X != nil && req.Y != nil {
			return d.Move(*req.X, *req.Y)
		}
		return nil

	case ActionMove:
		if req.X == nil || req.Y == nil {
			return errors.New(errors.ErrCodeInvalidInput, "move needs x and y")
		}
		d, ok := m.Dragging()
		if !ok || (req.Node != "" && d.NodeID() != req.Node) {
			return errors.New(errors.ErrCodeNodeNotFound, "node %q is not being dragged", req.Node)
		}
		return d.Move(*req.X, *req.Y)

	case ActionHold:
		d, ok := m.Dragging()
		if !ok || (req.Node != "" && d.NodeID() != req.Node) {
			return errors.New(errors.ErrCodeNodeNotFound, "node %q is not being dragged", req.Node)
		}
		return d.Hold()

	case ActionRelease:
		if m.Destroyed() {
			_, err := m.Snapshot()
			return err
		}
		if d, ok := m.Dragging(); ok && (req.Node == "" || d.NodeID() == req.Node) {
			d.Release()
		}
		return nil

	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown drag action %q (want grab, move, hold or release)", req.Action)
	}
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	m, err := s.maps.get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req saveSnapshotRequest
	if err := s.decode(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := m.Snapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap.ID = req.ID
	if req.Title != "" {
		snap.Title = req.Title
	}
	saved, err := s.cfg.Store.Save(r.Context(), snap)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("snapshot saved", "id", saved.ID, "map", m.ID(), "tick", saved.Tick)
	w.Header().Set("Location", "/snapshots/"+saved.ID)
	s.writeJSON(w, http.StatusCreated, store.Summarize(saved))
}

// =============================================================================
// Saved Snapshots
// =============================================================================

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	list, err := s.cfg.Store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.cfg.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Headless Layouts
// =============================================================================

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := s.decode(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	root, err := decodeTree(req.Tree)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.cfg.Runner.Execute(r.Context(), root, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	artifacts := make(map[string]string, len(result.Artifacts))
	for format, data := range result.Artifacts {
		artifacts[format] = string(data)
	}
	s.writeJSON(w, http.StatusOK, layoutResponse{
		TreeHash:  result.TreeHash,
		Snapshot:  result.Snapshot,
		Artifacts: artifacts,
		Stats: layoutStats{
			Nodes:    result.Stats.NodeCount,
			Links:    result.Stats.LinkCount,
			Ticks:    result.Stats.Ticks,
			SettleMS: float64(result.Stats.SettleTime.Microseconds()) / 1000,
			RenderMS: float64(result.Stats.RenderTime.Microseconds()) / 1000,
		},
		Cache: layoutCache{
			Snapshot: result.CacheInfo.SnapshotHit,
			Render:   result.CacheInfo.RenderHit,
		},
	})
}

// =============================================================================
// Helpers
// =============================================================================

func decodeTree(raw json.RawMessage) (tree.Entity, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return tree.Entity{}, errors.New(errors.ErrCodeInvalidInput, "tree is required")
	}
	return graph.UnmarshalTree(raw, graph.FormatJSON)
}

// mapOptions layers raw request options over the server defaults. Unknown
// option keys keep their defaults and are logged.
func (s *Server) mapOptions(raw json.RawMessage) (interestmap.Options, error) {
	opts := cloneOptions(s.cfg.MapDefaults)
	if len(bytes.TrimSpace(raw)) == 0 {
		return opts, nil
	}
	if err := json.Unmarshal(raw, &opts); err != nil {
		return interestmap.Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid map options")
	}
	if extra := unknownFields(raw, &opts); len(extra) > 0 {
		s.logger.Warn("ignoring unknown map options", "options", extra)
	}
	return opts, nil
}

func cloneOptions(o interestmap.Options) interestmap.Options {
	o.LevelDistances = slices.Clone(o.LevelDistances)
	o.NodeRadius = slices.Clone(o.NodeRadius)
	o.Colors = slices.Clone(o.Colors)
	if o.OrbitalRings != nil {
		on := *o.OrbitalRings
		o.OrbitalRings = &on
	}
	return o
}
