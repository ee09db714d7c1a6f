// Package server exposes live interest maps over HTTP.
//
// The API is the host side of a map: it creates maps from entity trees,
// forwards viewport and pointer commands to them and freezes their frames
// into the snapshot store. A stateless endpoint runs the headless layout
// pipeline for callers that only want a settled picture.
//
// # Routes
//
//	POST   /maps                  create a map from {"tree": ..., "options": ...}
//	GET    /maps                  list live maps
//	GET    /maps/{id}             current snapshot
//	PUT    /maps/{id}/size        {"width": w, "height": h}
//	POST   /maps/{id}/redraw      optional {"seed": n}
//	POST   /maps/{id}/drag        {"action": "grab"|"move"|"hold"|"release", ...}
//	DELETE /maps/{id}             destroy the map
//	POST   /maps/{id}/snapshots   save the current frame
//	GET    /snapshots             list saved snapshots
//	GET    /snapshots/{id}        fetch a saved snapshot
//	DELETE /snapshots/{id}        delete a saved snapshot
//	POST   /layouts               settle a tree headlessly and export it
//	GET    /healthz               liveness
//
// A drag that sees no move or hold for the map's idle timeout is released,
// so clients holding a node still send "hold" periodically.
//
// Errors are returned as {"code": ..., "message": ...} with the status
// derived from the error code.
package server
