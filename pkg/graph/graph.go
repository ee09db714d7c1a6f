package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/interestmap/pkg/core/tree"
	"github.com/matzehuels/interestmap/pkg/errors"
)

// =============================================================================
// Tree Input API
// =============================================================================

// FormatFromPath returns the tree format implied by path's extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported tree file %q (want .json, .yaml or .toml)", filepath.Base(path))
}

// ReadTreeFile reads and decodes a tree file, choosing the decoder by
// extension.
func ReadTreeFile(path string) (tree.Entity, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return tree.Entity{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return tree.Entity{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "tree file %s not found", path)
		}
		return tree.Entity{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTree(f, format)
}

// ReadTree decodes a tree in the given format from r.
func ReadTree(r io.Reader, format string) (tree.Entity, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return tree.Entity{}, fmt.Errorf("read: %w", err)
	}
	return UnmarshalTree(data, format)
}

// UnmarshalTree decodes a tree in the given format.
func UnmarshalTree(data []byte, format string) (tree.Entity, error) {
	var v any
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &v)
	case FormatYAML:
		err = yaml.Unmarshal(data, &v)
	case FormatTOML:
		var m map[string]any
		_, err = toml.Decode(string(data), &m)
		v = m
	default:
		return tree.Entity{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported tree format %q", format)
	}
	if err != nil {
		return tree.Entity{}, errors.Wrap(errors.ErrCodeInvalidTree, err, "decode %s tree", format)
	}

	root, err := tree.FromValue(v)
	if err != nil {
		return tree.Entity{}, errors.Wrap(errors.ErrCodeInvalidTree, err, "invalid tree")
	}
	if err := errors.ValidateEntityName(root.Name); err != nil {
		return tree.Entity{}, err
	}
	return root, nil
}

// =============================================================================
// Snapshot Serialization API
// =============================================================================

// MarshalSnapshot converts a snapshot to indented JSON bytes.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSnapshot(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalSnapshot decodes JSON bytes into a snapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	return ReadSnapshot(bytes.NewReader(data))
}

// WriteSnapshot writes a snapshot as JSON to an io.Writer.
func WriteSnapshot(s Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteSnapshotFile writes a snapshot to a JSON file.
// The file is created with 0644 permissions.
func WriteSnapshotFile(s Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteSnapshot(s, f)
}

// ReadSnapshot decodes a JSON snapshot from an io.Reader.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decode: %w", err)
	}
	return s, nil
}

// ReadSnapshotFile reads a JSON snapshot file.
func ReadSnapshotFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}
