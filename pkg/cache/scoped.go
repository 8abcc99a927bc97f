package cache

// ScopedKeyer prefixes every key produced by an inner [Keyer]. The CLI and
// server scope keys by registry URL so that switching registries never serves
// another registry's manifests.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "registry.npmjs.org:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer uses
// [NewDefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ManifestKey returns the prefixed manifest key.
func (k *ScopedKeyer) ManifestKey(name string) string {
	return k.prefix + k.inner.ManifestKey(name)
}

// ReportKey returns the prefixed report key.
func (k *ScopedKeyer) ReportKey(root string, opts ReportKeyOpts) string {
	return k.prefix + k.inner.ReportKey(root, opts)
}
