package pipeline

import (
	"fmt"

	"github.com/matzehuels/interestmap/pkg/graph"
	"github.com/matzehuels/interestmap/pkg/render/nodelink"
)

// Render exports a snapshot in the requested formats.
func Render(snap graph.Snapshot, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case graph.ExportJSON:
			data, err = graph.MarshalSnapshot(snap)
		case graph.ExportDOT, graph.ExportSVG:
			if dot == "" {
				dot = nodelink.ToDOT(snap, nodelink.Options{Rings: opts.Rings, Labels: opts.Labels})
			}
			if format == graph.ExportDOT {
				data = []byte(dot)
			} else {
				data, err = nodelink.RenderSVG(dot)
			}
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
