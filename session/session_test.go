package session_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rewind/datapath"
	"github.com/sarchlab/rewind/emu"
	"github.com/sarchlab/rewind/loader"
	"github.com/sarchlab/rewind/session"
	"github.com/sarchlab/rewind/timeline"
	"github.com/sarchlab/rewind/valuecache"
)

var _ = Describe("Session", func() {
	var (
		machine *emu.Machine
		s       *session.Session
	)

	newSession := func() *session.Session {
		powerOn, err := machine.PowerOn(&loader.Pattern{
			Name:   "blinker",
			Width:  3,
			Height: 1,
			Cells:  []loader.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
		})
		Expect(err).NotTo(HaveOccurred())

		return session.New(machine, powerOn, machine.Layout(),
			session.WithCacheConfig(valuecache.Config{Frames: 8, HotPaths: 4}),
			session.WithTimelineOptions(timeline.WithBackupSlots(4)),
		)
	}

	BeforeEach(func() {
		var err error
		machine, err = emu.NewMachine(16, 16, emu.WithSpawnPeriod(0))
		Expect(err).NotTo(HaveOccurred())
		s = newSession()
	})

	It("should read values by path", func() {
		v, err := s.Read(10, "frame_counter")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(datapath.Value(10)))

		v, err = s.Read(10, "population")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(datapath.Value(3)))
	})

	It("should serve repeated reads from the cache", func() {
		_, err := s.Read(10, "population")
		Expect(err).NotTo(HaveOccurred())
		_, err = s.Read(10, "population")
		Expect(err).NotTo(HaveOccurred())

		Expect(s.CacheStats().Hits).To(Equal(uint64(1)))
		Expect(s.TimelineStats().Materializations).To(Equal(uint64(1)))
	})

	It("should preload hot paths for new frames", func() {
		_, err := s.Read(10, "population")
		Expect(err).NotTo(HaveOccurred())
		_, err = s.Read(10, "frame_counter")
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Read(11, "frame_counter")
		Expect(err).NotTo(HaveOccurred())
		v, err := s.Read(11, "population")
		Expect(err).NotTo(HaveOccurred())

		Expect(v).To(Equal(datapath.Value(3)))
		Expect(s.TimelineStats().Materializations).To(Equal(uint64(3)))
	})

	It("should reflect edits in later frames", func() {
		v, err := s.Read(6, "grid[8][8]")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(datapath.Value(0)))

		Expect(s.Write(5, "pad.buttons", datapath.Value(emu.ButtonA))).To(Succeed())

		v, err = s.Read(6, "grid[8][8]")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(datapath.Value(1)))
		Expect(s.EditFrames()).To(Equal([]uint32{5}))
	})

	It("should keep cached frames before an edit", func() {
		_, err := s.Read(10, "population")
		Expect(err).NotTo(HaveOccurred())

		Expect(s.Write(20, "pad.stick_x", 1)).To(Succeed())
		_, err = s.Read(10, "population")
		Expect(err).NotTo(HaveOccurred())

		Expect(s.CacheStats().Hits).To(Equal(uint64(1)))
	})

	It("should undo an edit on reset", func() {
		before, err := s.Read(30, "player.pos.x")
		Expect(err).NotTo(HaveOccurred())

		Expect(s.Write(3, "pad.stick_x", 1)).To(Succeed())
		moved, err := s.Read(30, "player.pos.x")
		Expect(err).NotTo(HaveOccurred())
		Expect(moved).To(Equal(datapath.Value(15)))

		Expect(s.Reset(3, "pad.stick_x")).To(Succeed())
		after, err := s.Read(30, "player.pos.x")
		Expect(err).NotTo(HaveOccurred())
		Expect(after).To(Equal(before))
	})

	It("should shift edits with inserted and deleted frames", func() {
		Expect(s.Write(5, "pad.stick_y", 1)).To(Succeed())

		s.InsertFrame(0)
		Expect(s.EditFrames()).To(Equal([]uint32{6}))

		s.DeleteFrame(2)
		Expect(s.EditFrames()).To(Equal([]uint32{5}))

		s.ResetAll()
		Expect(s.EditFrames()).To(BeEmpty())
	})

	It("should reject unknown paths", func() {
		_, err := s.Read(0, "player.mood")

		Expect(err).To(MatchError(timeline.ErrPathEvaluationFailed))
		Expect(err).To(MatchError(datapath.ErrInvalidPath))
		Expect(s.Write(0, "nope", 1)).To(MatchError(datapath.ErrInvalidPath))
	})

	It("should surface edits that cannot be applied", func() {
		Expect(s.Write(3, "pad.stick_x", 1000)).To(Succeed())

		_, err := s.Read(4, "player.pos.x")

		Expect(err).To(MatchError(timeline.ErrControllerApplyFailed))
		Expect(err).To(MatchError(timeline.ErrPathEvaluationFailed))
	})

	It("should move backups near hotspots", func() {
		s.SetHotspot("cursor", 40)

		completed, err := s.BalanceDistribution(timeline.Unbounded)

		Expect(err).NotTo(HaveOccurred())
		Expect(completed).To(BeTrue())
		Expect(s.LoadedFrames()).To(ContainElement(uint32(40)))

		s.DeleteHotspot("cursor")
	})

	It("should expose frame memory", func() {
		err := s.WithFrame(2, func(mem []byte) error {
			Expect(mem).To(HaveLen(machine.Size()))
			Expect(mem[emu.OffsetFrameCounter]).To(Equal(byte(2)))
			return nil
		})

		Expect(err).NotTo(HaveOccurred())
	})

	It("should serialize concurrent readers", func() {
		frames := []uint32{3, 17, 9, 40, 22, 5, 31, 12}
		results := make([]datapath.Value, len(frames))

		var wg sync.WaitGroup
		for i, f := range frames {
			wg.Add(1)
			go func(i int, f uint32) {
				defer wg.Done()
				defer GinkgoRecover()

				v, err := s.Read(f, "frame_counter")
				Expect(err).NotTo(HaveOccurred())
				results[i] = v
			}(i, f)
		}
		wg.Wait()

		for i, f := range frames {
			Expect(results[i]).To(Equal(datapath.Value(f)))
		}
	})
})
