package cache

// PageKeyOpts are the options that change rendered page HTML.
type PageKeyOpts struct {
	Page     int    `json:"page"`
	Mode     string `json:"mode"`
	Shell    bool   `json:"shell"`
	Title    string `json:"title,omitempty"`
	MaxDepth int    `json:"max_depth,omitempty"`
}

// ThumbnailKeyOpts are the options that change a thumbnail.
type ThumbnailKeyOpts struct {
	Page        int     `json:"page"`
	Format      string  `json:"format"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	MaxTopLevel int     `json:"max_top_level"`
	MaxChildren int     `json:"max_children"`
	MaxDepth    int     `json:"max_depth"`
	TextLimit   int     `json:"text_limit"`
}

// OutlineKeyOpts are the options that change an outline diagram.
type OutlineKeyOpts struct {
	Page     int    `json:"page"`
	Detailed bool   `json:"detailed"`
	Format   string `json:"format"`
}

// Keyer generates cache keys. Content hashes come from [Hash].
type Keyer interface {
	PageKey(docHash string, opts PageKeyOpts) string
	ThumbnailKey(contentHash string, opts ThumbnailKeyOpts) string
	OutlineKey(docHash string, opts OutlineKeyOpts) string
}

// DefaultKeyer hashes the content hash together with the options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) PageKey(docHash string, opts PageKeyOpts) string {
	return hashKey(KeyTypePage, docHash, opts)
}

func (DefaultKeyer) ThumbnailKey(contentHash string, opts ThumbnailKeyOpts) string {
	return hashKey(KeyTypeThumbnail, contentHash, opts)
}

func (DefaultKeyer) OutlineKey(docHash string, opts OutlineKeyOpts) string {
	return hashKey(KeyTypeOutline, docHash, opts)
}
