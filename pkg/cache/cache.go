// Package cache stores rendered artifacts keyed by the hash of their input.
//
// Only derived output (SVG diagrams) is cached. Keys are content-addressed:
// the same systems, connections and view options always map to the same
// key, so a changed catalog never serves a stale diagram and no explicit
// invalidation is needed.
//
// Three backends are provided: [FileCache] for the CLI, [RedisCache] for
// shared server deployments, and [NullCache] to disable caching.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key of a rendered artifact for the given input hash.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format    string   `json:"format"`
	Env       string   `json:"env"`
	Journey   string   `json:"journey,omitempty"`
	Layers    []string `json:"layers,omitempty"`
	Highlight []string `json:"highlight,omitempty"`
}

// DefaultKeyer produces unprefixed keys of the form "artifact:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}

// Default TTLs.
const (
	// ArtifactTTL bounds how long an unchanged diagram is kept.
	ArtifactTTL = 24 * time.Hour
)
