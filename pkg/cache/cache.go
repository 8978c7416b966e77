// Package cache provides content-addressed caching for decoded source
// images and rendered preview artifacts.
//
// Re-rendering a preview after a grid tweak is dominated by decoding and
// flattening the source document, so the flattened base image is cached
// keyed on the source file's identity (path, mtime, size). Encoded
// preview JPEGs are cached one level up, keyed on the base image plus
// every parameter that shapes the overlay.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the cached bytes for key and whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// SourceKeyOpts identifies a source file revision without reading it.
type SourceKeyOpts struct {
	ModTime int64 `json:"mod_time"`
	Size    int64 `json:"size"`
}

// PreviewKeyOpts covers every parameter that changes preview output.
// Two previews with equal base keys and equal opts are byte-identical.
type PreviewKeyOpts struct {
	MaxDim       int     `json:"max_dim"`
	Rows         int     `json:"rows"`
	Cols         int     `json:"cols"`
	Order        string  `json:"order"`
	MarginTop    int     `json:"margin_top"`
	MarginBottom int     `json:"margin_bottom"`
	MarginLeft   int     `json:"margin_left"`
	MarginRight  int     `json:"margin_right"`
	Gutter       int     `json:"gutter"`
	DPI          float64 `json:"dpi"`
}

// Keyer generates cache keys for the rendering pipeline stages.
type Keyer interface {
	// SourceKey keys a decoded, flattened base image by file identity.
	SourceKey(path string, opts SourceKeyOpts) string

	// PreviewKey keys an encoded preview derived from a base image.
	PreviewKey(sourceKey string, opts PreviewKeyOpts) string

	// TemplateKey keys a generated blank template sheet.
	TemplateKey(paper, orientation string, dpi float64) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SourceKey generates a key for base image caching.
func (k *DefaultKeyer) SourceKey(path string, opts SourceKeyOpts) string {
	return hashKey("source", path, opts)
}

// PreviewKey generates a key for preview artifact caching.
func (k *DefaultKeyer) PreviewKey(sourceKey string, opts PreviewKeyOpts) string {
	return hashKey("preview", sourceKey, opts)
}

// TemplateKey generates a key for template sheet caching.
func (k *DefaultKeyer) TemplateKey(paper, orientation string, dpi float64) string {
	return hashKey("template", paper, orientation, dpi)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
