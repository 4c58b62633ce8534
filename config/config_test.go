package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rewind/config"
)

var _ = Describe("Config", func() {
	Describe("Default Config", func() {
		It("should have the documented defaults", func() {
			c := config.DefaultConfig()

			Expect(c.BackupSlots).To(Equal(30))
			Expect(c.CacheFrames).To(Equal(100))
			Expect(c.HotPaths).To(Equal(100))
			Expect(c.BalanceBudget).To(Equal(20 * time.Millisecond))
			Expect(c.Alignments).To(Equal(
				[]uint32{1, 15, 40, 145, 410, 1505, 4010, 14005}))
			Expect(c.Validate()).To(Succeed())
		})

		It("should produce a working machine", func() {
			m, err := config.DefaultConfig().NewMachine()

			Expect(err).NotTo(HaveOccurred())
			Expect(m.Width()).To(Equal(64))
			Expect(m.Height()).To(Equal(48))
		})

		It("should map to cache and timeline settings", func() {
			c := config.DefaultConfig()

			Expect(c.CacheConfig().Frames).To(Equal(100))
			Expect(c.TimelineOptions()).To(HaveLen(2))
			level, err := c.SlogLevel()
			Expect(err).NotTo(HaveOccurred())
			Expect(level).To(Equal(slog.LevelInfo))
		})
	})

	Describe("Clone", func() {
		It("should not share alignments", func() {
			original := config.DefaultConfig()
			clone := original.Clone()
			clone.Alignments[0] = 99
			clone.World.Width = 3

			Expect(original.Alignments[0]).To(Equal(uint32(1)))
			Expect(original.World.Width).To(Equal(64))
		})
	})

	DescribeTable("Validate",
		func(mutate func(c *config.Config), msg string) {
			c := config.DefaultConfig()
			mutate(c)
			Expect(c.Validate()).To(MatchError(ContainSubstring(msg)))
		},
		Entry("negative backups", func(c *config.Config) { c.BackupSlots = -1 }, "backup_slots"),
		Entry("no cache frames", func(c *config.Config) { c.CacheFrames = 0 }, "cache_frames"),
		Entry("no hot paths", func(c *config.Config) { c.HotPaths = 0 }, "hot_paths"),
		Entry("negative budget", func(c *config.Config) { c.BalanceBudget = -1 }, "balance_budget"),
		Entry("zero alignment", func(c *config.Config) { c.Alignments = []uint32{1, 0} }, "alignments"),
		Entry("empty world", func(c *config.Config) { c.World.Height = 0 }, "world"),
		Entry("bad log level", func(c *config.Config) { c.LogLevel = "loud" }, "log_level"),
	)

	Describe("Load and Save", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "rewind-config-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should round-trip through a file", func() {
			original := config.DefaultConfig()
			original.BackupSlots = 4
			original.BalanceBudget = 5 * time.Millisecond
			original.World.Seed = 7
			path := filepath.Join(tempDir, "rewind.yaml")

			Expect(original.SaveConfig(path)).To(Succeed())
			loaded, err := config.LoadConfig(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(original))
		})

		It("should keep defaults for missing fields", func() {
			path := filepath.Join(tempDir, "partial.yaml")
			Expect(os.WriteFile(path,
				[]byte("backup_slots: 2\nbalance_budget: 1s\nworld:\n  width: 10\n"),
				0644)).To(Succeed())

			loaded, err := config.LoadConfig(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.BackupSlots).To(Equal(2))
			Expect(loaded.BalanceBudget).To(Equal(time.Second))
			Expect(loaded.World.Width).To(Equal(10))
			Expect(loaded.World.Height).To(Equal(48))
			Expect(loaded.HotPaths).To(Equal(100))
		})

		It("should report a missing file", func() {
			_, err := config.LoadConfig("/nonexistent/path/rewind.yaml")

			Expect(err).To(MatchError(ContainSubstring("failed to read config file")))
		})

		It("should report malformed YAML", func() {
			path := filepath.Join(tempDir, "bad.yaml")
			Expect(os.WriteFile(path, []byte("backup_slots: [\n"), 0644)).To(Succeed())

			_, err := config.LoadConfig(path)

			Expect(err).To(MatchError(ContainSubstring("failed to parse config")))
		})
	})
})
