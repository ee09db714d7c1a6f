package cache

// ScopedKeyer namespaces another keyer, letting several environments share
// one redis database.
type ScopedKeyer struct {
	inner Keyer
	ns    string
}

// NewScopedKeyer prefixes every key from inner with ns. A nil inner means
// the default keyer.
func NewScopedKeyer(inner Keyer, ns string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return &ScopedKeyer{inner: inner, ns: ns}
}

func (k *ScopedKeyer) SnapshotKey(treeHash string, opts SnapshotKeyOpts) string {
	return k.ns + k.inner.SnapshotKey(treeHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return k.ns + k.inner.ArtifactKey(snapshotHash, opts)
}
