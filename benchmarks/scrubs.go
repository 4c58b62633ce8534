package benchmarks

// GetScrubs returns the standard set of scrubs. Each one models a way a
// user moves through a recording.
func GetScrubs() []Scrub {
	return []Scrub{
		forwardPlay(600),
		backwardScrub(600),
		windowJitter(400, 30, 300),
		editAndReplay(200, 400, 10),
		longJumps(100, 1500, 40),
	}
}

// GetQuickScrubs returns a small set of short scrubs for smoke testing.
func GetQuickScrubs() []Scrub {
	return []Scrub{
		forwardPlay(60),
		backwardScrub(60),
		windowJitter(40, 8, 40),
	}
}

// 1. Forward Play - every frame once, in order
func forwardPlay(n uint32) Scrub {
	frames := make([]uint32, 0, n)
	for f := uint32(0); f < n; f++ {
		frames = append(frames, f)
	}

	return Scrub{
		Name:        "forward_play",
		Description: "Reads frames 0..n-1 in order - the base slot never rewinds",
		Frames:      frames,
		Path:        "population",
	}
}

// 2. Backward Scrub - every frame once, last to first
func backwardScrub(n uint32) Scrub {
	frames := make([]uint32, 0, n)
	for f := n; f > 0; f-- {
		frames = append(frames, f-1)
	}

	return Scrub{
		Name:        "backward_scrub",
		Description: "Reads frames n-1..0 - every read rewinds",
		Frames:      frames,
		Path:        "population",
	}
}

// 3. Window Jitter - pseudo-random reads around a cursor
func windowJitter(center, radius uint32, reads int) Scrub {
	frames := make([]uint32, 0, reads)
	x := uint32(12345)

	for i := 0; i < reads; i++ {
		x = x*1103515245 + 12345
		offset := (x >> 16) % (2*radius + 1)
		frames = append(frames, center-radius+offset)
	}

	return Scrub{
		Name:        "window_jitter",
		Description: "Reads random frames within a window around a fixed cursor",
		Frames:      frames,
		Path:        "player.pos.x",
	}
}

// 4. Edit and Replay - play forward while editing just behind the cursor
func editAndReplay(from, to uint32, every int) Scrub {
	frames := make([]uint32, 0, to-from)
	for f := from; f < to; f++ {
		frames = append(frames, f)
	}

	return Scrub{
		Name:        "edit_and_replay",
		Description: "Plays forward and edits the stick five frames back every few reads",
		Frames:      frames,
		Path:        "player.pos.x",
		EditEvery:   every,
		EditBack:    5,
		EditPath:    "pad.stick_x",
	}
}

// 5. Long Jumps - alternate between two distant frames
func longJumps(a, b uint32, reads int) Scrub {
	frames := make([]uint32, 0, reads)
	for i := 0; i < reads; i++ {
		if i%2 == 0 {
			frames = append(frames, a+uint32(i))
		} else {
			frames = append(frames, b+uint32(i))
		}
	}

	return Scrub{
		Name:        "long_jumps",
		Description: "Alternates between two distant, slowly advancing frames",
		Frames:      frames,
		Path:        "population",
	}
}
