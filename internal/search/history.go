// Package search keeps the user's recent search terms, persisted under
// the search-history key.
package search

import (
	"errors"
	"log"
	"strings"
	"sync"

	"storefront/internal/localstore"
)

// maxEntries caps the history; the oldest term falls off.
const maxEntries = 10

type History struct {
	mu    sync.Mutex
	local *localstore.Store
	terms []string
}

func NewHistory(local *localstore.Store) *History {
	h := &History{local: local}
	if err := local.Get(localstore.KeySearchHistory, &h.terms); err != nil && !errors.Is(err, localstore.ErrNotFound) {
		log.Printf("✗ Failed to load search history, starting empty: %v", err)
	}
	return h
}

// Add records a search term most-recent-first. A term already present
// (case-insensitively) moves to the front instead of duplicating.
func (h *History) Add(term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	kept := make([]string, 0, len(h.terms)+1)
	kept = append(kept, term)
	for _, t := range h.terms {
		if strings.EqualFold(t, term) {
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) > maxEntries {
		kept = kept[:maxEntries]
	}
	h.terms = kept
	h.persist()
}

// Recent returns the history, most recent first.
func (h *History) Recent() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, len(h.terms))
	copy(out, h.terms)
	return out
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.terms = nil
	h.persist()
}

func (h *History) persist() {
	if err := h.local.Put(localstore.KeySearchHistory, h.terms); err != nil {
		log.Printf("✗ Failed to persist search history: %v", err)
	}
}
