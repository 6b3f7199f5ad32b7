// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package dispatch

import "sync"

// CitationRegistry is the external collaborator the dispatcher reports to on
// every successful resolve: append-only, idempotent on the same token.
// Injected through the Dispatcher's Registry field rather than reached
// through a package-level global.
type CitationRegistry interface {
	Cite(token string)
}

// NopRegistry discards every citation. Useful for callers (and tests) that
// do not care about the citation side-channel.
type NopRegistry struct{}

func (NopRegistry) Cite(string) {}

// MemoryRegistry is a minimal in-process CitationRegistry: it records each
// distinct token once, in first-seen order.
type MemoryRegistry struct {
	mu     sync.Mutex
	seen   map[string]struct{}
	tokens []string
}

// NewMemoryRegistry returns an empty MemoryRegistry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{seen: make(map[string]struct{})}
}

// Cite records token if it has not been seen before. Safe for concurrent
// use: the dispatcher's Dispatch method may be called from multiple
// goroutines coordinating independent Compute calls that share one registry.
func (r *MemoryRegistry) Cite(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[token]; ok {
		return
	}
	r.seen[token] = struct{}{}
	r.tokens = append(r.tokens, token)
}

// Tokens returns the distinct citation tokens recorded so far, in the order
// they were first cited.
func (r *MemoryRegistry) Tokens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.tokens))
	copy(out, r.tokens)
	return out
}
