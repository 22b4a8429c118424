// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scopus

import "sync"

// KeyPool rotates Scopus API keys round-robin. Next pops the front key
// and pushes it to the back, so deleting a key mid-rotation never skips
// or repeats its neighbours: removing the key about to be served simply
// advances to the following one.
//
// The pool only shrinks. A key removed after a quota hit never returns;
// quotas reset on a weekly window, far beyond any single run.
type KeyPool struct {
	mu   sync.Mutex
	keys []string
}

// NewKeyPool creates a pool over the given keys, preserving their order.
func NewKeyPool(keys []string) *KeyPool {
	p := &KeyPool{keys: make([]string, len(keys))}
	copy(p.keys, keys)
	return p
}

// Next returns the key at the front of the rotation and moves it to the
// back. It returns ErrOutOfAPIKeys when the pool is empty.
func (p *KeyPool) Next() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.keys) == 0 {
		return "", ErrOutOfAPIKeys
	}
	key := p.keys[0]
	p.keys = append(p.keys[1:], key)
	return key, nil
}

// Remove deletes the first occurrence of key from the rotation. Removing
// a key that is not present is a no-op; concurrent callers may race to
// remove the same key.
func (p *KeyPool) Remove(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			return
		}
	}
}

// Len returns the number of keys currently in the pool.
func (p *KeyPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}

// Keys returns a snapshot of the rotation, front first.
func (p *KeyPool) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}
