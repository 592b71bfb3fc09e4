package blobstore

import (
	"container/list"
	"context"
	"sync"
)

// CachingStore wraps a Store with an in-memory LRU read cache. Snapshots
// are immutable once written, so a cached blob never goes stale; Put and
// Delete still invalidate the entry in case a name is reused.
type CachingStore struct {
	inner     Store
	mu        sync.Mutex
	entries   map[string]*list.Element
	order     *list.List // front = most recently used
	size      int
	maxSize   int
	hits      uint64
	misses    uint64
	evictions uint64
}

type cacheEntry struct {
	name string
	data []byte
}

// NewCachingStore wraps inner with a cache holding at most maxSize bytes.
func NewCachingStore(inner Store, maxSize int) *CachingStore {
	return &CachingStore{
		inner:   inner,
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
	}
}

// Put writes through to the inner store and invalidates the cache entry.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.inner.Put(ctx, name, data); err != nil {
		return err
	}
	s.mu.Lock()
	s.evict(name)
	s.mu.Unlock()
	return nil
}

// Get returns the cached blob or reads through to the inner store.
func (s *CachingStore) Get(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	if el, ok := s.entries[name]; ok {
		s.order.MoveToFront(el)
		data := el.Value.(*cacheEntry).data
		s.hits++
		s.mu.Unlock()
		copied := make([]byte, len(data))
		copy(copied, data)
		return copied, nil
	}
	s.misses++
	s.mu.Unlock()

	data, err := s.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.insert(name, data)
	s.mu.Unlock()
	return data, nil
}

// Delete removes a blob and its cache entry.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	if err := s.inner.Delete(ctx, name); err != nil {
		return err
	}
	s.mu.Lock()
	s.evict(name)
	s.mu.Unlock()
	return nil
}

// List lists blobs from the inner store. Listings are not cached.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns cache hit/miss/eviction counters.
func (s *CachingStore) Stats() (hits, misses, evictions uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.misses, s.evictions
}

// insert adds an entry and evicts from the LRU tail until under budget.
// Callers must hold mu.
func (s *CachingStore) insert(name string, data []byte) {
	if len(data) > s.maxSize {
		return
	}
	if el, ok := s.entries[name]; ok {
		s.size -= len(el.Value.(*cacheEntry).data)
		s.order.Remove(el)
		delete(s.entries, name)
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	s.entries[name] = s.order.PushFront(&cacheEntry{name: name, data: copied})
	s.size += len(copied)

	for s.size > s.maxSize {
		tail := s.order.Back()
		if tail == nil {
			break
		}
		entry := tail.Value.(*cacheEntry)
		s.order.Remove(tail)
		delete(s.entries, entry.name)
		s.size -= len(entry.data)
		s.evictions++
	}
}

// evict drops a single entry if cached. Callers must hold mu.
func (s *CachingStore) evict(name string) {
	if el, ok := s.entries[name]; ok {
		s.size -= len(el.Value.(*cacheEntry).data)
		s.order.Remove(el)
		delete(s.entries, name)
	}
}
