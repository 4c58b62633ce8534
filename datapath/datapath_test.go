package datapath_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rewind/datapath"
)

var _ = Describe("Path", func() {
	var (
		layout *datapath.Layout
		mem    []byte
	)

	BeforeEach(func() {
		vec := datapath.Struct(
			datapath.Field{Name: "x", Offset: 0, Type: datapath.Scalar(datapath.S32)},
			datapath.Field{Name: "y", Offset: 4, Type: datapath.Scalar(datapath.S32)},
		)

		var err error
		layout, err = datapath.NewLayout(
			datapath.Global{Name: "counter", Offset: 0, Type: datapath.Scalar(datapath.U32)},
			datapath.Global{Name: "flag", Offset: 4, Type: datapath.Scalar(datapath.S8)},
			datapath.Global{Name: "pos", Offset: 8, Type: vec},
			datapath.Global{
				Name:   "grid",
				Offset: 16,
				Type:   datapath.Array(datapath.Array(datapath.Scalar(datapath.U8), 4), 3),
			},
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(layout.Size()).To(Equal(28))

		mem = make([]byte, layout.Size())
	})

	It("should resolve nested struct fields", func() {
		p, err := datapath.Compile(layout, "pos.y")

		Expect(err).NotTo(HaveOccurred())
		Expect(p.Offset()).To(Equal(12))
		Expect(p.Kind()).To(Equal(datapath.S32))
		Expect(p.String()).To(Equal("pos.y"))
	})

	It("should resolve array elements", func() {
		p, err := datapath.Compile(layout, "grid[2][3]")

		Expect(err).NotTo(HaveOccurred())
		Expect(p.Offset()).To(Equal(16 + 2*4 + 3))
	})

	It("should write and read back signed values", func() {
		p, _ := datapath.Compile(layout, "pos.x")

		Expect(p.Write(mem, -5)).To(Succeed())
		v, err := p.Read(mem)

		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(datapath.Value(-5)))
		Expect(mem[8:12]).To(Equal([]byte{0xfb, 0xff, 0xff, 0xff}))
	})

	It("should sign-extend narrow values", func() {
		p, _ := datapath.Compile(layout, "flag")
		mem[4] = 0xff

		v, err := p.Read(mem)

		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(datapath.Value(-1)))
	})

	It("should reject values that do not fit", func() {
		p, _ := datapath.Compile(layout, "grid[0][0]")

		Expect(p.Write(mem, 256)).To(MatchError(ContainSubstring("does not fit")))
		Expect(p.Write(mem, -1)).To(HaveOccurred())
	})

	It("should reject short memory", func() {
		p, _ := datapath.Compile(layout, "counter")

		_, err := p.Read(mem[:2])

		Expect(err).To(MatchError(ContainSubstring("exceeds")))
	})

	DescribeTable("invalid paths",
		func(source string) {
			_, err := datapath.Compile(layout, source)
			Expect(err).To(MatchError(datapath.ErrInvalidPath))
		},
		Entry("unknown global", "nope"),
		Entry("unknown field", "pos.z"),
		Entry("field on scalar", "counter.x"),
		Entry("index on struct", "pos[0]"),
		Entry("index out of range", "grid[3][0]"),
		Entry("non-scalar result", "grid[1]"),
		Entry("missing bracket", "grid[1"),
		Entry("empty", ""),
		Entry("trailing dot", "pos."),
	)

	It("should give distinct paths distinct ids", func() {
		a, _ := datapath.Compile(layout, "counter")
		b, _ := datapath.Compile(layout, "counter")

		Expect(a.ID()).NotTo(Equal(b.ID()))
	})

	It("should reject duplicate globals", func() {
		_, err := datapath.NewLayout(
			datapath.Global{Name: "a", Type: datapath.Scalar(datapath.U8)},
			datapath.Global{Name: "a", Offset: 1, Type: datapath.Scalar(datapath.U8)},
		)

		Expect(err).To(MatchError(ContainSubstring("duplicate")))
	})
})

var _ = Describe("Compiler", func() {
	It("should intern compiled paths", func() {
		layout, err := datapath.NewLayout(
			datapath.Global{Name: "a", Type: datapath.Scalar(datapath.U16)},
		)
		Expect(err).NotTo(HaveOccurred())
		c := datapath.NewCompiler(layout)

		p1, err := c.Compile("a")
		Expect(err).NotTo(HaveOccurred())
		p2, err := c.Compile("a")
		Expect(err).NotTo(HaveOccurred())
		_, err = c.Compile("b")
		Expect(err).To(HaveOccurred())

		Expect(p1).To(BeIdenticalTo(p2))
		Expect(c.Len()).To(Equal(1))
		Expect(c.Layout()).To(BeIdenticalTo(layout))
	})
})
