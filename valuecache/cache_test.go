package valuecache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rewind/datapath"
	"github.com/sarchlab/rewind/valuecache"
)

var _ = Describe("Cache", func() {
	var (
		compiler *datapath.Compiler
		a, b, c  *datapath.Path
		cache    *valuecache.Cache
	)

	compile := func(source string) *datapath.Path {
		p, err := compiler.Compile(source)
		Expect(err).NotTo(HaveOccurred())
		return p
	}

	BeforeEach(func() {
		layout, err := datapath.NewLayout(
			datapath.Global{Name: "a", Offset: 0, Type: datapath.Scalar(datapath.U8)},
			datapath.Global{Name: "b", Offset: 1, Type: datapath.Scalar(datapath.U8)},
			datapath.Global{Name: "c", Offset: 2, Type: datapath.Scalar(datapath.U16)},
		)
		Expect(err).NotTo(HaveOccurred())
		compiler = datapath.NewCompiler(layout)
		a, b, c = compile("a"), compile("b"), compile("c")

		cache = valuecache.New(valuecache.Config{Frames: 3, HotPaths: 2})
	})

	It("should return what was inserted", func() {
		cache.Insert(10, a, 7)

		v, ok := cache.Get(10, a)

		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(datapath.Value(7)))
		Expect(cache.Stats().Hits).To(Equal(uint64(1)))
	})

	It("should miss on unknown frames and paths", func() {
		cache.Insert(10, a, 7)

		_, ok := cache.Get(11, a)
		Expect(ok).To(BeFalse())
		_, ok = cache.Get(10, b)
		Expect(ok).To(BeFalse())
		Expect(cache.Stats().Misses).To(Equal(uint64(2)))
	})

	It("should evict the least recently used frame", func() {
		cache.Insert(1, a, 1)
		cache.Insert(2, a, 2)
		cache.Insert(3, a, 3)
		cache.Get(1, a)

		cache.Insert(4, a, 4)

		Expect(cache.Frames()).To(Equal([]uint32{1, 3, 4}))
		Expect(cache.Stats().Evictions).To(Equal(uint64(1)))
	})

	It("should drop frames at or after an invalidated frame", func() {
		cache.Insert(5, a, 1)
		cache.Insert(9, a, 2)
		cache.Insert(12, a, 3)

		cache.Invalidate(9)

		Expect(cache.Frames()).To(Equal([]uint32{5}))
		_, ok := cache.Get(9, a)
		Expect(ok).To(BeFalse())
		Expect(cache.Len()).To(Equal(1))
	})

	It("should preload hot paths into new frames", func() {
		cache.Get(0, a)
		cache.Get(0, c)
		mem := []byte{4, 5, 0x34, 0x12}

		cache.Preload(20, mem)

		v, ok := cache.Get(20, a)
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(datapath.Value(4)))
		v, ok = cache.Get(20, c)
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(datapath.Value(0x1234)))
		_, ok = cache.Get(20, b)
		Expect(ok).To(BeFalse())
		Expect(cache.Stats().Preloaded).To(Equal(uint64(2)))
	})

	It("should not preload a frame that already has a bucket", func() {
		cache.Get(0, a)
		cache.Insert(20, a, 99)

		cache.Preload(20, []byte{4, 5, 6, 7})

		v, _ := cache.Get(20, a)
		Expect(v).To(Equal(datapath.Value(99)))
	})

	It("should skip hot paths that fail to read", func() {
		cache.Get(0, a)
		cache.Get(0, c)

		cache.Preload(20, []byte{4})

		Expect(cache.Frames()).To(Equal([]uint32{20}))
		_, ok := cache.Get(20, c)
		Expect(ok).To(BeFalse())
		v, ok := cache.Get(20, a)
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(datapath.Value(4)))
	})

	It("should keep only the most recent hot paths", func() {
		cache.Get(0, a)
		cache.Get(0, b)
		cache.Get(0, a)
		cache.Get(0, c)

		Expect(cache.HotPaths()).To(Equal([]*datapath.Path{a, c}))
	})

	It("should forget everything on reset", func() {
		cache.Insert(1, a, 1)
		cache.Get(1, a)

		cache.Reset()

		Expect(cache.Frames()).To(BeEmpty())
		Expect(cache.HotPaths()).To(BeEmpty())
		Expect(cache.Stats()).To(Equal(valuecache.Statistics{}))
	})

	It("should raise non-positive capacities", func() {
		small := valuecache.New(valuecache.Config{})

		Expect(small.Config()).To(Equal(valuecache.Config{Frames: 1, HotPaths: 1}))
		Expect(valuecache.DefaultConfig()).To(Equal(
			valuecache.Config{Frames: 100, HotPaths: 100}))
	})
})
