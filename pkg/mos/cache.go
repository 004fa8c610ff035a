package mos

import "sync"

// DefaultConversationID is the shared cache slot for callers that do not carry
// a conversation identifier (the plain HTTP search endpoints). It preserves
// the "chat about the last search" flow for the single-page client.
const DefaultConversationID = "default"

// ResultCache holds, per conversation, the most recent search response and the
// most recently fetched document. A new top-level search for a conversation
// replaces its slot entirely, which is the defined eviction point: a stale
// document from a previous line of questioning does not leak into the next.
type ResultCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	search   *SearchResponse
	document *Document
}

// NewResultCache creates an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{entries: make(map[string]*cacheEntry)}
}

// PutSearch stores the latest search response for a conversation, evicting any
// previously cached document along with the previous results.
func (c *ResultCache) PutSearch(conversationID string, resp *SearchResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key(conversationID)] = &cacheEntry{search: resp}
}

// PutDocument stores the latest fetched document for a conversation.
func (c *ResultCache) PutDocument(conversationID string, doc *Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := key(conversationID)
	entry := c.entries[id]
	if entry == nil {
		entry = &cacheEntry{}
		c.entries[id] = entry
	}
	entry.document = doc
}

// Get returns the cached search response and document for a conversation;
// either may be nil.
func (c *ResultCache) Get(conversationID string) (*SearchResponse, *Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.entries[key(conversationID)]
	if entry == nil {
		return nil, nil
	}
	return entry.search, entry.document
}

func key(conversationID string) string {
	if conversationID == "" {
		return DefaultConversationID
	}
	return conversationID
}
