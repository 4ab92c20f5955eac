package glyphcache

import (
	"fmt"
	"hash/fnv"
	"image"
	"sync"
	"sync/atomic"

	"github.com/npillmayer/ringtext/engine/glyphing"
	"github.com/npillmayer/schuko"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/singleflight"
)

// Default budgets, used if a configuration does not set them.
const (
	DefaultMaxEntries = 4096
	DefaultMaxBytes   = 16 << 20
	DefaultSubpixel   = 4
)

const maxShards = 16

// entryOverhead is the number of bytes accounted for an entry in addition
// to its pixels.
const entryOverhead = 64

// Key identifies a rasterized glyph.
type Key struct {
	FontID string              // font identity, see font.ScalableFont.ID
	GID    glyphing.GlyphIndex // glyph index within the font
	Size   fixed.Int26_6       // pixels per em
	Phase  uint8               // subpixel phase of the pen position
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%d|%d|%d", k.FontID, k.GID, k.Size, k.Phase)
}

func (k Key) hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(k.FontID))
	h.Write([]byte{byte(k.GID), byte(k.GID >> 8), byte(k.GID >> 16), byte(k.GID >> 24),
		byte(k.Size), byte(k.Size >> 8), byte(k.Size >> 16), byte(k.Size >> 24), k.Phase})
	return h.Sum64()
}

// Entry is a rasterized glyph together with its metrics.
// Entries are shared between clients and must not be modified.
type Entry struct {
	Mask    *image.Alpha  // coverage mask, may be empty for blank glyphs
	Origin  image.Point   // offset of the mask's top left corner from the pen position
	Advance fixed.Int26_6 // horizontal advance in pixels
}

// Size returns the number of bytes an entry is accounted for.
func (e *Entry) Size() int64 {
	if e == nil || e.Mask == nil {
		return entryOverhead
	}
	return int64(len(e.Mask.Pix)) + entryOverhead
}

// Config holds the budgets of a cache.
type Config struct {
	MaxEntries int   // maximum number of resident entries
	MaxBytes   int64 // maximum number of bytes of resident entries
	Subpixel   int   // number of horizontal subpixel phases
}

// ConfigFrom reads a cache configuration from keys
// `glyphcache.entries`, `glyphcache.bytes` and `glyphcache.subpixel`.
// Unset keys take default values.
func ConfigFrom(conf schuko.Configuration) Config {
	cfg := Config{
		MaxEntries: DefaultMaxEntries,
		MaxBytes:   DefaultMaxBytes,
		Subpixel:   DefaultSubpixel,
	}
	if conf == nil {
		return cfg
	}
	if conf.IsSet("glyphcache.entries") {
		cfg.MaxEntries = conf.GetInt("glyphcache.entries")
	}
	if conf.IsSet("glyphcache.bytes") {
		cfg.MaxBytes = int64(conf.GetInt("glyphcache.bytes"))
	}
	if conf.IsSet("glyphcache.subpixel") {
		cfg.Subpixel = conf.GetInt("glyphcache.subpixel")
	}
	return cfg
}

// Stats holds cache statistics.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Fills     uint64 // number of rasterizations done by GetOrFill
	Rejects   uint64 // entries too large to be stored
}

// HitRate returns the ratio of hits to all lookups.
func (s Stats) HitRate() float64 {
	if s.Hits+s.Misses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Hits+s.Misses)
}

// Cache is a bounded LRU cache of rasterized glyphs.
// A cache is safe for concurrent use.
type Cache struct {
	shards   []*shard
	mask     uint64
	subpixel int
	filling  singleflight.Group

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
	fills     atomic.Uint64
	rejects   atomic.Uint64
}

type item struct {
	key        Key
	entry      *Entry
	size       int64
	prev, next *item
}

type shard struct {
	mu         sync.Mutex
	items      map[Key]*item
	lru        lruList
	bytes      int64
	maxEntries int
	maxBytes   int64
}

// New creates a cache with budgets from cfg. Non-positive budgets are
// replaced by defaults.
func New(cfg Config) *Cache {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.Subpixel <= 0 {
		cfg.Subpixel = 1
	} else if cfg.Subpixel > 256 {
		cfg.Subpixel = 256
	}
	n := maxShards
	for n > 1 && (cfg.MaxEntries < n || cfg.MaxBytes < int64(n)*4*entryOverhead) {
		n /= 2
	}
	c := &Cache{
		shards:   make([]*shard, n),
		mask:     uint64(n - 1),
		subpixel: cfg.Subpixel,
	}
	for i := range c.shards {
		c.shards[i] = &shard{
			items:      make(map[Key]*item),
			maxEntries: cfg.MaxEntries / n,
			maxBytes:   cfg.MaxBytes / int64(n),
		}
	}
	tracer().Debugf("glyph cache with %d shards, %d entries, %d bytes", n, cfg.MaxEntries, cfg.MaxBytes)
	return c
}

func (c *Cache) shardFor(key Key) *shard {
	return c.shards[key.hash()&c.mask]
}

// Subpixel returns the number of subpixel phases of c.
func (c *Cache) Subpixel() int {
	return c.subpixel
}

// Get returns the entry for key, if it is resident. A hit makes the entry
// the most recently used one.
func (c *Cache) Get(key Key) (*Entry, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	it, ok := s.items[key]
	if ok {
		s.lru.moveToFront(it)
	}
	s.mu.Unlock()
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return it.entry, true
}

// Put stores an entry for key, replacing a previous one, and evicts least
// recently used entries until the shard is within its budget again.
// An entry larger than a shard's byte budget is not stored.
func (c *Cache) Put(key Key, entry *Entry) {
	size := entry.Size()
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if size > s.maxBytes {
		tracer().Infof("glyph %s too large for cache (%d bytes)", key, size)
		c.rejects.Add(1)
		return
	}
	if it, ok := s.items[key]; ok {
		s.bytes += size - it.size
		it.entry, it.size = entry, size
		s.lru.moveToFront(it)
	} else {
		it = &item{key: key, entry: entry, size: size}
		s.items[key] = it
		s.lru.pushFront(it)
		s.bytes += size
	}
	for s.lru.len > s.maxEntries || s.bytes > s.maxBytes {
		victim := s.lru.back()
		if victim == nil {
			break
		}
		s.lru.remove(victim)
		delete(s.items, victim.key)
		s.bytes -= victim.size
		c.evictions.Add(1)
	}
}

// GetOrFill returns the entry for key. If it is not resident, fill is called
// to create it and the result is stored. Concurrent callers missing the same
// key wait for a single call of fill and share its result.
// Errors of fill are returned to all waiting callers and are not cached.
func (c *Cache) GetOrFill(key Key, fill func(Key) (*Entry, error)) (*Entry, error) {
	if e, ok := c.Get(key); ok {
		return e, nil
	}
	v, err, shared := c.filling.Do(key.String(), func() (interface{}, error) {
		if e, ok := c.peek(key); ok {
			return e, nil
		}
		e, err := fill(key)
		if err != nil {
			return nil, err
		}
		c.fills.Add(1)
		c.Put(key, e)
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		tracer().Debugf("shared fill for glyph %s", key)
	}
	return v.(*Entry), nil
}

// peek looks up an entry without touching statistics or recency.
func (c *Cache) peek(key Key) (*Entry, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.items[key]; ok {
		return it.entry, true
	}
	return nil, false
}

// Len returns the number of resident entries.
func (c *Cache) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.Lock()
		n += s.lru.len
		s.mu.Unlock()
	}
	return n
}

// Bytes returns the number of bytes of resident entries.
func (c *Cache) Bytes() int64 {
	var n int64
	for _, s := range c.shards {
		s.mu.Lock()
		n += s.bytes
		s.mu.Unlock()
	}
	return n
}

// Stats returns a snapshot of the cache statistics.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Fills:     c.fills.Load(),
		Rejects:   c.rejects.Load(),
	}
}
