// Package tree defines the hierarchical input of an interest map.
//
// An [Entity] is a named node with an optional colour, an optional avatar
// (meaningful on the root only) and an ordered list of children. The map
// lays out the root, its children (level 1) and their children (level 2).
// Deeper entities are accepted and counted but not placed.
//
// Decoding is deliberately forgiving: a missing or malformed "children"
// value is read as an empty list rather than an error, so a half-edited data
// file still produces a map.
package tree

import (
	"fmt"
	"strings"
)

// Entity is one node of the input hierarchy.
type Entity struct {
	Name     string   `json:"name" yaml:"name" toml:"name" bson:"name"`
	Color    string   `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty" bson:"color,omitempty"`
	Avatar   string   `json:"avatar,omitempty" yaml:"avatar,omitempty" toml:"avatar,omitempty" bson:"avatar,omitempty"`
	Children []Entity `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty" bson:"children,omitempty"`
}

// DescendantCount returns the number of entities nested below e at any depth.
func (e Entity) DescendantCount() int {
	n := len(e.Children)
	for _, c := range e.Children {
		n += c.DescendantCount()
	}
	return n
}

// Depth returns the number of levels below e (0 for a leaf).
func (e Entity) Depth() int {
	d := 0
	for _, c := range e.Children {
		d = max(d, c.Depth()+1)
	}
	return d
}

// Size returns the number of entities in the tree rooted at e, e included.
func (e Entity) Size() int {
	return 1 + e.DescendantCount()
}

// FromValue converts a generic decoded document (as produced by
// encoding/json, yaml.v3 or toml decoding into any) into an Entity.
//
// Only the root is required to be an object with a name. Children that are
// not objects are skipped; a "children" value that is not a list is treated
// as empty.
func FromValue(v any) (Entity, error) {
	m, ok := asMap(v)
	if !ok {
		return Entity{}, fmt.Errorf("root must be an object, got %T", v)
	}
	e := fromMap(m)
	if strings.TrimSpace(e.Name) == "" {
		return Entity{}, fmt.Errorf("root entity has no name")
	}
	return e, nil
}

func fromMap(m map[string]any) Entity {
	e := Entity{
		Name:   stringField(m, "name"),
		Color:  stringField(m, "color"),
		Avatar: stringField(m, "avatar"),
	}
	list, ok := m["children"].([]any)
	if !ok {
		if maps, isMaps := m["children"].([]map[string]any); isMaps {
			for _, c := range maps {
				e.Children = append(e.Children, fromMap(c))
			}
		}
		return e
	}
	for _, item := range list {
		cm, ok := asMap(item)
		if !ok {
			continue
		}
		e.Children = append(e.Children, fromMap(cm))
	}
	return e
}

// asMap accepts both string-keyed maps (json, toml, yaml.v3) and the
// interface-keyed maps older YAML decoders emit.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func stringField(m map[string]any, key string) string {
	switch s := m[key].(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}
