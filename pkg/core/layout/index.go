package layout

// Index is a lookup structure over a node slice, built once after planning.
// Forces use it instead of scanning nodes by id every tick.
type Index struct {
	pos      map[string]int
	parent   []int   // -1 for the root
	children [][]int // node indices per node, in node order
	primary  []int   // level-1 node indices, in node order
}

// NewIndex builds an Index over nodes. Parents that do not resolve are
// treated as absent.
func NewIndex(nodes []Node) *Index {
	idx := &Index{
		pos:      make(map[string]int, len(nodes)),
		parent:   make([]int, len(nodes)),
		children: make([][]int, len(nodes)),
	}
	for i := range nodes {
		idx.pos[nodes[i].ID] = i
	}
	for i := range nodes {
		idx.parent[i] = -1
		if p, ok := idx.pos[nodes[i].Parent]; ok && nodes[i].Parent != "" {
			idx.parent[i] = p
			idx.children[p] = append(idx.children[p], i)
		}
		if nodes[i].Level == LevelPrimary {
			idx.primary = append(idx.primary, i)
		}
	}
	return idx
}

// Len returns the number of indexed nodes.
func (x *Index) Len() int { return len(x.parent) }

// Lookup returns the position of id in the node slice.
func (x *Index) Lookup(id string) (int, bool) {
	i, ok := x.pos[id]
	return i, ok
}

// Parent returns the index of node i's parent, or -1.
func (x *Index) Parent(i int) int { return x.parent[i] }

// Children returns the indices of node i's direct children.
func (x *Index) Children(i int) []int { return x.children[i] }

// Primary returns the indices of all level-1 nodes.
func (x *Index) Primary() []int { return x.primary }

// Descendants returns the indices of every node below i, depth first.
func (x *Index) Descendants(i int) []int {
	var out []int
	var walk func(int)
	walk = func(n int) {
		for _, c := range x.children[n] {
			out = append(out, c)
			walk(c)
		}
	}
	walk(i)
	return out
}

// Degree returns the number of links touching node i.
func (x *Index) Degree(i int) int {
	d := len(x.children[i])
	if x.parent[i] >= 0 {
		d++
	}
	return d
}
