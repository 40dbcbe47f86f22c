// keyimage.go implements the key-image registry: enforces at-most-one
// valid ring signature per underlying signing key across the canonical
// chain. Generalized from crypto/nullifier_set.go's sparse-set pattern
// (itself kept for the state-transition proof's nullifier set), with
// reorg rollback layered on top: key images inserted by an unfinalized
// block are removed if that block's branch is abandoned, while key
// images under a finalized block are permanent.
package state

import (
	"errors"
	"sync"

	"github.com/glider-chain/glider/core/types"
)

// ErrKeyImageSeen is returned when a key image has already been recorded,
// at any height.
var ErrKeyImageSeen = errors.New("state: key image already seen")

type keyImageEntry struct {
	height uint64
}

// KeyImageRegistry tracks every key image inserted on the canonical
// branch, along with the height it was inserted at so unfinalized entries
// can be rolled back on reorg.
type KeyImageRegistry struct {
	mu              sync.RWMutex
	images          map[types.Hash]keyImageEntry
	finalizedHeight uint64
}

// NewKeyImageRegistry creates an empty registry.
func NewKeyImageRegistry() *KeyImageRegistry {
	return &KeyImageRegistry{images: make(map[types.Hash]keyImageEntry)}
}

// Insert records a key image at the given height. Returns ErrKeyImageSeen
// if the image is already present.
func (r *KeyImageRegistry) Insert(image types.Hash, height uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.images[image]; ok {
		return ErrKeyImageSeen
	}
	r.images[image] = keyImageEntry{height: height}
	return nil
}

// Contains reports whether a key image has been recorded.
func (r *KeyImageRegistry) Contains(image types.Hash) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.images[image]
	return ok
}

// Finalize advances the finalized height; key images at or below it can no
// longer be rolled back.
func (r *KeyImageRegistry) Finalize(height uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if height > r.finalizedHeight {
		r.finalizedHeight = height
	}
}

// RollbackAbove removes every key image inserted strictly above height,
// used when an unfinalized branch is abandoned in favor of a heavier one.
// Images at or below the finalized height are never removed.
func (r *KeyImageRegistry) RollbackAbove(height uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if height < r.finalizedHeight {
		height = r.finalizedHeight
	}
	for img, entry := range r.images {
		if entry.height > height {
			delete(r.images, img)
		}
	}
}

// Clone returns a deep copy of the registry.
func (r *KeyImageRegistry) Clone() *KeyImageRegistry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	images := make(map[types.Hash]keyImageEntry, len(r.images))
	for k, v := range r.images {
		images[k] = v
	}
	return &KeyImageRegistry{images: images, finalizedHeight: r.finalizedHeight}
}

// Len returns the number of recorded key images.
func (r *KeyImageRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.images)
}
