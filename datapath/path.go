package datapath

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

// Value is an integer read from or written to memory.
type Value int64

// ErrInvalidPath is returned when a path does not compile against a layout.
var ErrInvalidPath = errors.New("invalid path")

var nextPathID atomic.Uint64

// Path addresses one scalar in a memory image.
type Path struct {
	id     uint64
	source string
	offset int
	kind   Kind
}

// ID returns a process-wide unique identifier of the compiled path.
func (p *Path) ID() uint64 {
	return p.id
}

// String returns the source the path was compiled from.
func (p *Path) String() string {
	return p.source
}

// Offset returns the byte offset of the addressed scalar.
func (p *Path) Offset() int {
	return p.offset
}

// Kind returns the representation of the addressed scalar.
func (p *Path) Kind() Kind {
	return p.kind
}

// Read decodes the addressed scalar from mem.
func (p *Path) Read(mem []byte) (Value, error) {
	if err := p.checkBounds(mem); err != nil {
		return 0, err
	}

	b := mem[p.offset:]

	switch p.kind {
	case U8:
		return Value(b[0]), nil
	case S8:
		return Value(int8(b[0])), nil
	case U16:
		return Value(binary.LittleEndian.Uint16(b)), nil
	case S16:
		return Value(int16(binary.LittleEndian.Uint16(b))), nil
	case U32:
		return Value(binary.LittleEndian.Uint32(b)), nil
	case S32:
		return Value(int32(binary.LittleEndian.Uint32(b))), nil
	default:
		return Value(binary.LittleEndian.Uint64(b)), nil
	}
}

// Write encodes v into the addressed scalar of mem. Values that do not fit
// the scalar are rejected.
func (p *Path) Write(mem []byte, v Value) error {
	if err := p.checkBounds(mem); err != nil {
		return err
	}

	if !fits(p.kind, v) {
		return fmt.Errorf("value %d does not fit %s at %s", v, p.kind, p.source)
	}

	b := mem[p.offset:]

	switch p.kind.Size() {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	default:
		binary.LittleEndian.PutUint64(b, uint64(v))
	}

	return nil
}

func (p *Path) checkBounds(mem []byte) error {
	if p.offset+p.kind.Size() > len(mem) {
		return fmt.Errorf("path %s at offset %d exceeds %d-byte memory",
			p.source, p.offset, len(mem))
	}
	return nil
}

func fits(k Kind, v Value) bool {
	switch k {
	case U8:
		return v >= 0 && v <= math.MaxUint8
	case S8:
		return v >= math.MinInt8 && v <= math.MaxInt8
	case U16:
		return v >= 0 && v <= math.MaxUint16
	case S16:
		return v >= math.MinInt16 && v <= math.MaxInt16
	case U32:
		return v >= 0 && v <= math.MaxUint32
	case S32:
		return v >= math.MinInt32 && v <= math.MaxInt32
	default:
		return true
	}
}

// Compile resolves source against layout.
func Compile(layout *Layout, source string) (*Path, error) {
	p := &parser{src: source}

	name, err := p.ident()
	if err != nil {
		return nil, err
	}

	g, ok := layout.globals[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown global %q", ErrInvalidPath, name)
	}

	offset := g.Offset
	t := g.Type

	for !p.done() {
		switch p.peek() {
		case '.':
			p.pos++
			field, err := p.ident()
			if err != nil {
				return nil, err
			}
			if t.kind != StructType {
				return nil, fmt.Errorf("%w: %s: .%s on a non-struct",
					ErrInvalidPath, source, field)
			}
			f, ok := t.fields[field]
			if !ok {
				return nil, fmt.Errorf("%w: %s: no field %q",
					ErrInvalidPath, source, field)
			}
			offset += f.Offset
			t = f.Type
		case '[':
			p.pos++
			index, err := p.index()
			if err != nil {
				return nil, err
			}
			if t.kind != ArrayType {
				return nil, fmt.Errorf("%w: %s: index on a non-array",
					ErrInvalidPath, source)
			}
			if index >= t.length {
				return nil, fmt.Errorf("%w: %s: index %d out of range [0, %d)",
					ErrInvalidPath, source, index, t.length)
			}
			offset += index * t.elem.size
			t = t.elem
		default:
			return nil, p.errorf("unexpected %q", p.peek())
		}
	}

	if t.kind != ScalarType {
		return nil, fmt.Errorf("%w: %s does not name a scalar", ErrInvalidPath, source)
	}

	return &Path{
		id:     nextPathID.Add(1),
		source: source,
		offset: offset,
		kind:   t.scalar,
	}, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) done() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	return p.src[p.pos]
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: at %d: %s",
		ErrInvalidPath, p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) ident() (string, error) {
	start := p.pos
	for !p.done() && isIdentByte(p.peek(), p.pos == start) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("expected identifier")
	}
	return p.src[start:p.pos], nil
}

func (p *parser) index() (int, error) {
	start := p.pos
	for !p.done() && p.peek() >= '0' && p.peek() <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, p.errorf("expected index")
	}

	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, p.errorf("bad index: %v", err)
	}

	if p.done() || p.peek() != ']' {
		return 0, p.errorf("expected ]")
	}
	p.pos++

	return n, nil
}

func isIdentByte(c byte, first bool) bool {
	switch {
	case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return !first
	}
	return false
}
