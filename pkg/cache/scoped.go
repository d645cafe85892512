package cache

// ScopedKeyer wraps a Keyer with a prefix, for example to keep several
// deployments apart in one shared Redis.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

func (k *ScopedKeyer) PageKey(docHash string, opts PageKeyOpts) string {
	return k.prefix + k.inner.PageKey(docHash, opts)
}

func (k *ScopedKeyer) ThumbnailKey(contentHash string, opts ThumbnailKeyOpts) string {
	return k.prefix + k.inner.ThumbnailKey(contentHash, opts)
}

func (k *ScopedKeyer) OutlineKey(docHash string, opts OutlineKeyOpts) string {
	return k.prefix + k.inner.OutlineKey(docHash, opts)
}
