package cache

import (
	"net/http"
	"sync"
	"time"
)

// Pages memoizes rendered response bodies for a bounded time window. Hits
// are served verbatim: a post deleted after the body was cached stays
// visible until the window elapses. Writes never invalidate entries.
type Pages interface {
	Get(key string) ([]byte, bool)
	Set(key string, body []byte)
	Clear()
	DeleteExpired()
}

// RequestKey derives the cache key for a request: the path plus its encoded
// query, so each page number caches separately.
func RequestKey(r *http.Request) string {
	key := r.URL.Path
	if query := r.URL.Query().Encode(); query != "" {
		key += "?" + query
	}
	return key
}

type memoryEntry struct {
	body    []byte
	expires time.Time
}

// MemoryPages is the in-process backend: an explicit key -> (body, expiry)
// map owned by whoever constructed it. The clock is injectable so tests can
// move time instead of sleeping.
type MemoryPages struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	expiration time.Duration
	now        func() time.Time
}

func NewMemoryPages(expiration time.Duration) *MemoryPages {
	return &MemoryPages{
		entries:    make(map[string]memoryEntry),
		expiration: expiration,
		now:        time.Now,
	}
}

// SetClock replaces the time source. Test use only.
func (p *MemoryPages) SetClock(now func() time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = now
}

func (p *MemoryPages) Get(key string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[key]
	if !ok || p.now().After(entry.expires) {
		return nil, false
	}
	return entry.body, true
}

func (p *MemoryPages) Set(key string, body []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.entries[key] = memoryEntry{
		body:    body,
		expires: p.now().Add(p.expiration),
	}
}

func (p *MemoryPages) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = make(map[string]memoryEntry)
}

func (p *MemoryPages) DeleteExpired() {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for key, entry := range p.entries {
		if now.After(entry.expires) {
			delete(p.entries, key)
		}
	}
}
