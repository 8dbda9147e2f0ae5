package modtree

import (
	"strings"
	"sync"

	radix "github.com/armon/go-radix"
)

// ModuleTree is a trie from dotted path to its owning ModuleConfig, built
// once per project and shared read-only afterwards.
//
// It is a thin typed wrapper over *radix.Tree, the same shape as the
// teacher's deducerTrie: avoid type assertions leaking past this file.
type ModuleTree struct {
	mu sync.RWMutex
	t  *radix.Tree
}

// NewModuleTree returns an empty tree.
func NewModuleTree() *ModuleTree {
	return &ModuleTree{t: radix.New()}
}

// key turns a dotted path into the radix tree's byte-ordered key space, with
// "." kept as the segment separator. Byte-prefix lookups on these keys do not
// respect segment boundaries, so NearestAncestor probes each "."-delimited
// ancestor with an exact Get instead of using LongestPrefix.
func key(p DottedPath) string { return string(p) }

// Insert adds or replaces the module at p.
func (mt *ModuleTree) Insert(p DottedPath, cfg *ModuleConfig) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.t.Insert(key(p), cfg)
}

// Get returns the module registered exactly at p.
func (mt *ModuleTree) Get(p DottedPath) (*ModuleConfig, bool) {
	mt.mu.RLock()
	defer mt.mu.RUnlock()
	v, ok := mt.t.Get(key(p))
	if !ok {
		return nil, false
	}
	return v.(*ModuleConfig), true
}

// Len reports how many modules are registered.
func (mt *ModuleTree) Len() int {
	mt.mu.RLock()
	defer mt.mu.RUnlock()
	return mt.t.Len()
}

// NearestAncestor returns the module config owning the nearest ancestor of p
// (p itself counts as its own ancestor), and whether p resolves exactly to
// that module's own path.
func (mt *ModuleTree) NearestAncestor(p DottedPath) (cfg *ModuleConfig, exact bool, ok bool) {
	mt.mu.RLock()
	defer mt.mu.RUnlock()

	s := key(p)
	for {
		if v, has := mt.t.Get(s); has {
			return v.(*ModuleConfig), s == key(p), true
		}
		// Walk up one "." segment at a time: radix.LongestPrefix alone
		// would also match a module whose path is a non-dotted prefix of p
		// (e.g. "ab" matching "abc"), which is wrong for dotted-path
		// ancestry. So we probe segment boundaries explicitly.
		idx := strings.LastIndexByte(s, '.')
		if idx < 0 {
			break
		}
		s = s[:idx]
	}
	return nil, false, false
}

// Walk visits every (path, config) pair in the tree in sorted key order.
func (mt *ModuleTree) Walk(fn func(DottedPath, *ModuleConfig) bool) {
	mt.mu.RLock()
	defer mt.mu.RUnlock()
	mt.t.Walk(func(s string, v interface{}) bool {
		return fn(DottedPath(s), v.(*ModuleConfig))
	})
}
