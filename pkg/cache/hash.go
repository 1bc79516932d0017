package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// =============================================================================
// Keyers
// =============================================================================

// RenderKeyOpts are the render settings that change an artifact's bytes.
type RenderKeyOpts struct {
	Format         string  `json:"format"`
	Background     string  `json:"background,omitempty"`
	ConnectorColor string  `json:"connector_color,omitempty"`
	Padding        float64 `json:"padding,omitempty"`
	FontFamily     string  `json:"font_family,omitempty"`
	Scale          float64 `json:"scale,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// RenderKey returns the key of an artifact rendered from a tree whose
	// serialized form hashes to treeHash.
	RenderKey(treeHash string, opts RenderKeyOpts) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RenderKey implements [Keyer].
func (DefaultKeyer) RenderKey(treeHash string, opts RenderKeyOpts) string {
	return hashKey("render", treeHash, opts)
}
