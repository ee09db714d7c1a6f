// Package cli implements the interestmap command-line interface.
//
// # Commands
//
//   - layout: Settle a tree headlessly and export JSON, DOT or SVG
//   - watch: Run a live map in the terminal, reloading the tree on change
//   - serve: Host live maps over HTTP
//   - snapshot: List, show and delete saved snapshots
//   - cache: Manage the layout cache
//   - config: Show or initialise the configuration file
//
// # Configuration
//
// Every command reads $XDG_CONFIG_HOME/interestmap/config.toml, or the file
// named by --config. A missing file means defaults. Flags given on the
// command line override the file.
//
// # Watch Keys
//
//	r          redraw with a new seed
//	tab        select the next node (shift+tab: previous)
//	arrows     drag the selected node (hjkl also work)
//	space      release the node
//	n          toggle first-ring names
//	s          save a snapshot
//	q          quit
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. While the
// watch view is open, logs are discarded unless --log-file is given.
package cli
