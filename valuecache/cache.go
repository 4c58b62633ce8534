// Package valuecache memoizes the results of evaluating data paths at
// frames, using Akita cache directories for LRU bookkeeping.
package valuecache

import (
	"sort"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/rewind/datapath"
)

// Config holds cache capacities.
type Config struct {
	// Frames is the number of frame buckets kept.
	Frames int
	// HotPaths is the number of recently requested paths preloaded into new
	// frames.
	HotPaths int
}

// DefaultConfig returns the default capacities.
func DefaultConfig() Config {
	return Config{
		Frames:   100,
		HotPaths: 100,
	}
}

// Statistics holds cache statistics.
type Statistics struct {
	Hits      uint64
	Misses    uint64
	Preloaded uint64
	Evictions uint64
}

// Cache stores path values per frame.
//
// Both the frame buckets and the hot path set are fully associative
// directories with an LRU victim finder: one set, one way per entry and a
// block size of one, so that a block tag is exactly a frame number or a path
// ID.
type Cache struct {
	config Config

	frames  *akitacache.DirectoryImpl
	buckets []map[*datapath.Path]datapath.Value

	hot      *akitacache.DirectoryImpl
	hotPaths []*datapath.Path

	stats Statistics
}

// New creates a cache with the given capacities. Non-positive capacities
// are raised to one.
func New(config Config) *Cache {
	if config.Frames < 1 {
		config.Frames = 1
	}
	if config.HotPaths < 1 {
		config.HotPaths = 1
	}

	return &Cache{
		config: config,
		frames: akitacache.NewDirectory(
			1, config.Frames, 1, akitacache.NewLRUVictimFinder()),
		buckets: make([]map[*datapath.Path]datapath.Value, config.Frames),
		hot: akitacache.NewDirectory(
			1, config.HotPaths, 1, akitacache.NewLRUVictimFinder()),
		hotPaths: make([]*datapath.Path, config.HotPaths),
	}
}

// Config returns the cache capacities.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// Get returns the cached value of path at frame. The path is marked hot
// whether or not the lookup hits.
func (c *Cache) Get(frame uint32, path *datapath.Path) (datapath.Value, bool) {
	c.touchHot(path)

	block := c.frames.Lookup(0, uint64(frame))
	if block == nil || !block.IsValid {
		c.stats.Misses++
		return 0, false
	}

	c.frames.Visit(block)

	v, ok := c.buckets[block.WayID][path]
	if !ok {
		c.stats.Misses++
		return 0, false
	}

	c.stats.Hits++

	return v, true
}

// Insert stores the value of path at frame, evicting the least recently
// used frame bucket if needed.
func (c *Cache) Insert(frame uint32, path *datapath.Path, value datapath.Value) {
	bucket := c.bucket(frame)
	bucket[path] = value
}

// Preload fills a new bucket for frame with every hot path read from mem.
// Nothing happens if the frame already has a bucket. Paths that fail to
// read are skipped.
func (c *Cache) Preload(frame uint32, mem []byte) {
	if block := c.frames.Lookup(0, uint64(frame)); block != nil && block.IsValid {
		return
	}

	bucket := c.bucket(frame)

	for _, set := range c.hot.GetSets() {
		for _, block := range set.Blocks {
			if !block.IsValid {
				continue
			}

			path := c.hotPaths[block.WayID]
			v, err := path.Read(mem)
			if err != nil {
				continue
			}

			bucket[path] = v
			c.stats.Preloaded++
		}
	}
}

// Invalidate drops every bucket at or after frame from.
func (c *Cache) Invalidate(from uint32) {
	for _, set := range c.frames.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.Tag >= uint64(from) {
				block.IsValid = false
				c.buckets[block.WayID] = nil
			}
		}
	}
}

// Frames returns the frames with a bucket, ascending.
func (c *Cache) Frames() []uint32 {
	frames := make([]uint32, 0, c.config.Frames)

	for _, set := range c.frames.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid {
				frames = append(frames, uint32(block.Tag))
			}
		}
	}

	sort.Slice(frames, func(i, j int) bool { return frames[i] < frames[j] })

	return frames
}

// Len returns the number of cached values across all buckets.
func (c *Cache) Len() int {
	n := 0

	for _, set := range c.frames.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid {
				n += len(c.buckets[block.WayID])
			}
		}
	}

	return n
}

// HotPaths returns the hot paths, most recently used last.
func (c *Cache) HotPaths() []*datapath.Path {
	paths := make([]*datapath.Path, 0, c.config.HotPaths)

	for _, set := range c.hot.GetSets() {
		for _, block := range set.LRUQueue {
			if block.IsValid {
				paths = append(paths, c.hotPaths[block.WayID])
			}
		}
	}

	return paths
}

// Reset drops every bucket and hot path and clears statistics.
func (c *Cache) Reset() {
	c.frames.Reset()
	c.hot.Reset()

	for i := range c.buckets {
		c.buckets[i] = nil
	}
	for i := range c.hotPaths {
		c.hotPaths[i] = nil
	}

	c.stats = Statistics{}
}

// bucket returns the bucket of frame, allocating one in the LRU way if
// needed.
func (c *Cache) bucket(frame uint32) map[*datapath.Path]datapath.Value {
	addr := uint64(frame)

	block := c.frames.Lookup(0, addr)
	if block != nil && block.IsValid {
		c.frames.Visit(block)
		return c.buckets[block.WayID]
	}

	victim := c.frames.FindVictim(addr)
	if victim.IsValid {
		c.stats.Evictions++
	}

	victim.Tag = addr
	victim.IsValid = true
	victim.IsDirty = false
	c.frames.Visit(victim)

	bucket := make(map[*datapath.Path]datapath.Value)
	c.buckets[victim.WayID] = bucket

	return bucket
}

func (c *Cache) touchHot(path *datapath.Path) {
	addr := path.ID()

	block := c.hot.Lookup(0, addr)
	if block != nil && block.IsValid {
		c.hot.Visit(block)
		return
	}

	victim := c.hot.FindVictim(addr)
	victim.Tag = addr
	victim.IsValid = true
	c.hot.Visit(victim)
	c.hotPaths[victim.WayID] = path
}
