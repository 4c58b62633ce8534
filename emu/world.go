package emu

import (
	"encoding/binary"

	"github.com/sarchlab/rewind/datapath"
)

// Offsets of the globals in a memory image.
const (
	OffsetFrameCounter = 0
	OffsetRNG          = 4
	OffsetButtons      = 8
	OffsetStickX       = 10
	OffsetStickY       = 11
	OffsetPlayerPosX   = 12
	OffsetPlayerPosY   = 16
	OffsetPlayerVelX   = 20
	OffsetPlayerVelY   = 22
	OffsetPopulation   = 24
	OffsetGrid         = 32
)

// Pad buttons.
const (
	// ButtonA plants a live cell under the player.
	ButtonA uint16 = 1 << iota
	// ButtonB halts the player.
	ButtonB
)

func newLayout(width, height int) (*datapath.Layout, error) {
	vec32 := datapath.Struct(
		datapath.Field{Name: "x", Offset: 0, Type: datapath.Scalar(datapath.S32)},
		datapath.Field{Name: "y", Offset: 4, Type: datapath.Scalar(datapath.S32)},
	)
	vec16 := datapath.Struct(
		datapath.Field{Name: "x", Offset: 0, Type: datapath.Scalar(datapath.S16)},
		datapath.Field{Name: "y", Offset: 2, Type: datapath.Scalar(datapath.S16)},
	)

	return datapath.NewLayout(
		datapath.Global{
			Name:   "frame_counter",
			Offset: OffsetFrameCounter,
			Type:   datapath.Scalar(datapath.U32),
		},
		datapath.Global{
			Name:   "rng",
			Offset: OffsetRNG,
			Type:   datapath.Scalar(datapath.U32),
		},
		datapath.Global{
			Name:   "pad",
			Offset: OffsetButtons,
			Type: datapath.Struct(
				datapath.Field{Name: "buttons", Offset: 0, Type: datapath.Scalar(datapath.U16)},
				datapath.Field{Name: "stick_x", Offset: 2, Type: datapath.Scalar(datapath.S8)},
				datapath.Field{Name: "stick_y", Offset: 3, Type: datapath.Scalar(datapath.S8)},
			),
		},
		datapath.Global{
			Name:   "player",
			Offset: OffsetPlayerPosX,
			Type: datapath.Struct(
				datapath.Field{Name: "pos", Offset: 0, Type: vec32},
				datapath.Field{Name: "vel", Offset: 8, Type: vec16},
			),
		},
		datapath.Global{
			Name:   "population",
			Offset: OffsetPopulation,
			Type:   datapath.Scalar(datapath.U32),
		},
		datapath.Global{
			Name:   "grid",
			Offset: OffsetGrid,
			Type: datapath.Array(
				datapath.Array(datapath.Scalar(datapath.U8), width), height),
		},
	)
}

// world is a view of one memory image.
type world struct {
	mem    []byte
	width  int
	height int
	spawn  uint32
}

func (w world) u32(off int) uint32 {
	return binary.LittleEndian.Uint32(w.mem[off:])
}

func (w world) setU32(off int, v uint32) {
	binary.LittleEndian.PutUint32(w.mem[off:], v)
}

func (w world) s32(off int) int32 {
	return int32(w.u32(off))
}

func (w world) setS32(off int, v int32) {
	w.setU32(off, uint32(v))
}

func (w world) setS16(off int, v int16) {
	binary.LittleEndian.PutUint16(w.mem[off:], uint16(v))
}

func (w world) cell(x, y int) byte {
	return w.mem[OffsetGrid+y*w.width+x]
}

func (w world) setCell(x, y int, v byte) {
	w.mem[OffsetGrid+y*w.width+x] = v
}

// step runs one frame of the world.
func (w world) step(scratch []byte) {
	w.setU32(OffsetFrameCounter, w.u32(OffsetFrameCounter)+1)

	rng := xorshift(w.u32(OffsetRNG))
	w.setU32(OffsetRNG, rng)

	w.generation(scratch)
	w.movePlayer()

	if w.spawn > 0 && rng%w.spawn == 0 {
		w.setCell(int(rng>>8)%w.width, int(rng>>16)%w.height, 1)
	}

	w.setU32(OffsetPopulation, w.population())
}

func (w world) movePlayer() {
	buttons := binary.LittleEndian.Uint16(w.mem[OffsetButtons:])

	vx := int16(int8(w.mem[OffsetStickX]))
	vy := int16(int8(w.mem[OffsetStickY]))
	if buttons&ButtonB != 0 {
		vx, vy = 0, 0
	}

	w.setS16(OffsetPlayerVelX, vx)
	w.setS16(OffsetPlayerVelY, vy)

	x := clamp(w.s32(OffsetPlayerPosX)+int32(vx), 0, int32(w.width-1))
	y := clamp(w.s32(OffsetPlayerPosY)+int32(vy), 0, int32(w.height-1))
	w.setS32(OffsetPlayerPosX, x)
	w.setS32(OffsetPlayerPosY, y)

	if buttons&ButtonA != 0 {
		w.setCell(int(x), int(y), 1)
	}
}

// generation applies B3/S23 over the toroidal grid.
func (w world) generation(scratch []byte) {
	for y := 0; y < w.height; y++ {
		for x := 0; x < w.width; x++ {
			n := w.neighbors(x, y)
			alive := w.cell(x, y) != 0

			var next byte
			if n == 3 || (alive && n == 2) {
				next = 1
			}
			scratch[y*w.width+x] = next
		}
	}

	copy(w.mem[OffsetGrid:], scratch)
}

func (w world) neighbors(x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx := (x + dx + w.width) % w.width
			ny := (y + dy + w.height) % w.height
			if w.cell(nx, ny) != 0 {
				n++
			}
		}
	}
	return n
}

func (w world) population() uint32 {
	var n uint32
	for _, c := range w.mem[OffsetGrid : OffsetGrid+w.width*w.height] {
		if c != 0 {
			n++
		}
	}
	return n
}

func xorshift(x uint32) uint32 {
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	return x
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
