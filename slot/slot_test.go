package slot_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rewind/slot"
)

var _ = Describe("Tag", func() {
	It("should report the frame of an At tag", func() {
		tag := slot.AtFrame(42)

		frame, ok := tag.Frame()
		Expect(ok).To(BeTrue())
		Expect(frame).To(Equal(uint32(42)))
		Expect(tag.IsAt(42)).To(BeTrue())
		Expect(tag.IsAt(41)).To(BeFalse())
		Expect(tag.String()).To(Equal("At(42)"))
	})

	It("should not treat PowerOn as frame 0", func() {
		tag := slot.PowerOnTag()

		_, ok := tag.Frame()
		Expect(ok).To(BeFalse())
		Expect(tag.IsAt(0)).To(BeFalse())
		Expect(tag.IsKnown()).To(BeTrue())
		Expect(tag).NotTo(Equal(slot.AtFrame(0)))
	})

	It("should mark Unknown as not known", func() {
		Expect(slot.UnknownTag().IsKnown()).To(BeFalse())
		Expect(slot.UnknownTag().Kind()).To(Equal(slot.Unknown))
		Expect(slot.UnknownTag().String()).To(Equal("Unknown"))
	})
})

var _ = Describe("Index", func() {
	It("should address backups by number", func() {
		idx := slot.BackupIndex(3)

		n, ok := idx.Backup()
		Expect(ok).To(BeTrue())
		Expect(n).To(Equal(3))
		Expect(idx.String()).To(Equal("Backup(3)"))
		Expect(idx).To(Equal(slot.BackupIndex(3)))
		Expect(idx).NotTo(Equal(slot.BackupIndex(2)))
	})

	It("should distinguish base and power-on", func() {
		Expect(slot.BaseIndex.IsBase()).To(BeTrue())
		Expect(slot.PowerOnIndex.IsBase()).To(BeFalse())
		_, ok := slot.BaseIndex.Backup()
		Expect(ok).To(BeFalse())
	})

	It("should panic on a negative backup index", func() {
		Expect(func() { slot.BackupIndex(-1) }).To(Panic())
	})
})

var _ = Describe("Slot", func() {
	It("should start zeroed and Unknown", func() {
		s := slot.New(16)

		Expect(s.Len()).To(Equal(16))
		Expect(s.Bytes()).To(Equal(make([]byte, 16)))
		Expect(s.Tag()).To(Equal(slot.UnknownTag()))
	})

	It("should tag caller-supplied images as PowerOn", func() {
		s := slot.FromBytes([]byte{1, 2, 3})

		Expect(s.Tag()).To(Equal(slot.PowerOnTag()))
		Expect(s.Bytes()).To(Equal([]byte{1, 2, 3}))
	})

	It("should copy contents and tag", func() {
		src := slot.New(4)
		copy(src.Bytes(), []byte{9, 8, 7, 6})
		src.SetTag(slot.AtFrame(5))
		dst := slot.New(4)

		Expect(dst.CopyFrom(src)).To(Succeed())
		Expect(dst.Bytes()).To(Equal([]byte{9, 8, 7, 6}))
		Expect(dst.Tag()).To(Equal(slot.AtFrame(5)))

		src.Bytes()[0] = 0
		Expect(dst.Bytes()[0]).To(Equal(byte(9)))
	})

	It("should reject copies between different sizes", func() {
		Expect(slot.New(4).CopyFrom(slot.New(5))).To(MatchError(ContainSubstring("size mismatch")))
	})

	It("should clone independently", func() {
		s := slot.FromBytes([]byte{1, 2})
		c := s.Clone()
		c.Bytes()[0] = 5

		Expect(s.Bytes()[0]).To(Equal(byte(1)))
		Expect(c.Tag()).To(Equal(slot.PowerOnTag()))
	})
})
