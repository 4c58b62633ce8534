// Package session combines a timeline, a value cache and an edit set into
// a read/write-by-path interface that is safe for concurrent use.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/rewind/datapath"
	"github.com/sarchlab/rewind/edits"
	"github.com/sarchlab/rewind/slot"
	"github.com/sarchlab/rewind/timeline"
	"github.com/sarchlab/rewind/valuecache"
)

// Session serves reads and edits of a simulation by frame and path.
type Session struct {
	mu sync.Mutex

	timeline *timeline.Timeline
	cache    *valuecache.Cache
	edits    *edits.Set
	compiler *datapath.Compiler
}

type settings struct {
	cache        valuecache.Config
	timelineOpts []timeline.Option
	hooks        []sim.Hook
}

// Option configures a Session.
type Option func(*settings)

// WithCacheConfig sets the value cache capacities.
func WithCacheConfig(config valuecache.Config) Option {
	return func(s *settings) {
		s.cache = config
	}
}

// WithTimelineOptions passes options to the underlying timeline.
func WithTimelineOptions(opts ...timeline.Option) Option {
	return func(s *settings) {
		s.timelineOpts = append(s.timelineOpts, opts...)
	}
}

// WithHook registers a hook on the underlying timeline.
func WithHook(hook sim.Hook) Option {
	return func(s *settings) {
		s.hooks = append(s.hooks, hook)
	}
}

// New creates a session over host starting from powerOn. Paths are
// compiled against layout.
func New(
	host timeline.Host,
	powerOn *slot.Slot,
	layout *datapath.Layout,
	opts ...Option,
) *Session {
	st := settings{cache: valuecache.DefaultConfig()}
	for _, opt := range opts {
		opt(&st)
	}

	set := edits.New()
	tl := timeline.New(host, powerOn, set, st.timelineOpts...)
	for _, hook := range st.hooks {
		tl.AcceptHook(hook)
	}

	return &Session{
		timeline: tl,
		cache:    valuecache.New(st.cache),
		edits:    set,
		compiler: datapath.NewCompiler(layout),
	}
}

func (s *Session) compile(path string) (*datapath.Path, error) {
	p, err := s.compiler.Compile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", timeline.ErrPathEvaluationFailed, err)
	}
	return p, nil
}

// Read returns the value of path at frame.
func (s *Session) Read(frame uint32, path string) (datapath.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.compile(path)
	if err != nil {
		return 0, err
	}

	if v, ok := s.cache.Get(frame, p); ok {
		return v, nil
	}

	h, err := s.timeline.Frame(frame)
	if err != nil {
		return 0, err
	}
	defer h.Release()

	s.cache.Preload(frame, h.Bytes())

	v, err := p.Read(h.Bytes())
	if err != nil {
		return 0, fmt.Errorf("%w: frame %d %s: %w",
			timeline.ErrPathEvaluationFailed, frame, path, err)
	}

	s.cache.Insert(frame, p, v)

	return v, nil
}

// WithFrame runs fn on the memory of frame. fn must not retain or write
// mem.
func (s *Session) WithFrame(frame uint32, fn func(mem []byte) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.timeline.WithFrame(frame, func(h *timeline.Handle) error {
		return fn(h.Bytes())
	})
}

// Write schedules path to be set to value at frame.
func (s *Session) Write(frame uint32, path string, value datapath.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.compile(path)
	if err != nil {
		return err
	}

	s.mutate(func(set *edits.Set) timeline.InvalidatedFrames {
		return set.Write(frame, p, value)
	})

	return nil
}

// Reset removes the edit of path at frame.
func (s *Session) Reset(frame uint32, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.compile(path)
	if err != nil {
		return err
	}

	s.mutate(func(set *edits.Set) timeline.InvalidatedFrames {
		return set.Reset(frame, p)
	})

	return nil
}

// ResetAll removes every edit.
func (s *Session) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mutate((*edits.Set).ResetAll)
}

// InsertFrame shifts the edits at or after frame one frame later.
func (s *Session) InsertFrame(frame uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mutate(func(set *edits.Set) timeline.InvalidatedFrames {
		return set.InsertFrame(frame)
	})
}

// DeleteFrame drops the edits at frame and shifts later edits one frame
// earlier.
func (s *Session) DeleteFrame(frame uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mutate(func(set *edits.Set) timeline.InvalidatedFrames {
		return set.DeleteFrame(frame)
	})
}

// mutate edits the controller and invalidates the timeline and the cache
// together.
func (s *Session) mutate(fn func(set *edits.Set) timeline.InvalidatedFrames) {
	invalidated := s.timeline.WithControllerMut(
		func(timeline.Controller) timeline.InvalidatedFrames {
			return fn(s.edits)
		})

	if from, ok := invalidated.From(); ok {
		s.cache.Invalidate(from)
	}
}

// EditFrames returns the frames that have edits.
func (s *Session) EditFrames() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.edits.Frames()
}

// SetHotspot records a frame expected to be read often.
func (s *Session) SetHotspot(name string, frame uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timeline.SetHotspot(name, frame)
}

// DeleteHotspot forgets a hotspot.
func (s *Session) DeleteHotspot(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timeline.DeleteHotspot(name)
}

// BalanceDistribution moves backup slots near the hotspots within budget.
func (s *Session) BalanceDistribution(budget time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.timeline.BalanceDistribution(budget)
}

// LoadedFrames returns the frames held by the timeline's slots.
func (s *Session) LoadedFrames() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.timeline.LoadedFrames()
}

// CacheStats returns value cache statistics.
func (s *Session) CacheStats() valuecache.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cache.Stats()
}

// TimelineStats returns timeline work counters.
func (s *Session) TimelineStats() timeline.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.timeline.Stats()
}
