// Package loader provides power-on pattern loading for the sandbox world.
//
// Two common Life pattern formats are supported: plaintext (.cells), where
// 'O' or '*' marks a live cell, and run-length encoded (.rle).
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Cell is the position of a live cell relative to the pattern's top-left
// corner.
type Cell struct {
	X int
	Y int
}

// Pattern is a set of live cells.
type Pattern struct {
	// Name is taken from a "!Name:" or "#N" header when present.
	Name string
	// Width and Height bound every cell.
	Width  int
	Height int
	// Cells contains the live cells in row-major order.
	Cells []Cell
}

// Load reads a pattern file, choosing the format by extension.
func Load(path string) (*Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var p *Pattern

	switch strings.ToLower(filepath.Ext(path)) {
	case ".rle":
		p, err = ParseRLE(f)
	case ".cells", ".txt":
		p, err = ParseCells(f)
	default:
		return nil, fmt.Errorf("unsupported pattern format %q", filepath.Ext(path))
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return p, nil
}

// ParseCells parses the plaintext format.
func ParseCells(r io.Reader) (*Pattern, error) {
	p := &Pattern{}
	scanner := bufio.NewScanner(r)
	y := 0

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.HasPrefix(line, "!") {
			if name, ok := strings.CutPrefix(line, "!Name:"); ok {
				p.Name = strings.TrimSpace(name)
			}
			continue
		}

		for x, c := range line {
			switch c {
			case 'O', '*':
				p.add(x, y)
			case '.', ' ':
			default:
				return nil, fmt.Errorf("line %d: unexpected %q", y+1, c)
			}
		}

		if len(line) > p.Width {
			p.Width = len(line)
		}
		y++
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pattern: %w", err)
	}

	p.Height = y

	return p, nil
}

// ParseRLE parses the run-length encoded format.
func ParseRLE(r io.Reader) (*Pattern, error) {
	p := &Pattern{}
	scanner := bufio.NewScanner(r)
	headerSeen := false
	x, y, run := 0, 0, 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "#") {
			if name, ok := strings.CutPrefix(line, "#N"); ok {
				p.Name = strings.TrimSpace(name)
			}
			continue
		}

		if !headerSeen {
			if line == "" {
				continue
			}
			if err := p.parseRLEHeader(line); err != nil {
				return nil, err
			}
			headerSeen = true
			continue
		}

		for _, c := range line {
			switch {
			case c >= '0' && c <= '9':
				run = run*10 + int(c-'0')
			case c == 'b' || c == 'o':
				n := max(run, 1)
				if c == 'o' {
					for i := 0; i < n; i++ {
						p.add(x+i, y)
					}
				}
				x += n
				run = 0
			case c == '$':
				y += max(run, 1)
				x = 0
				run = 0
			case c == '!':
				return p.checkBounds()
			case c == ' ' || c == '\t':
			default:
				return nil, fmt.Errorf("unexpected %q in RLE data", c)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pattern: %w", err)
	}

	if !headerSeen {
		return nil, fmt.Errorf("missing RLE header")
	}

	return nil, fmt.Errorf("missing RLE terminator '!'")
}

func (p *Pattern) parseRLEHeader(line string) error {
	for _, part := range strings.Split(line, ",") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return fmt.Errorf("malformed RLE header %q", line)
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "x", "y":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return fmt.Errorf("bad RLE dimension %s=%q", key, value)
			}
			if key == "x" {
				p.Width = n
			} else {
				p.Height = n
			}
		case "rule":
			if !strings.EqualFold(value, "B3/S23") {
				return fmt.Errorf("unsupported rule %q", value)
			}
		}
	}

	return nil
}

func (p *Pattern) checkBounds() (*Pattern, error) {
	for _, c := range p.Cells {
		if c.X >= p.Width || c.Y >= p.Height {
			return nil, fmt.Errorf("cell (%d, %d) outside declared %dx%d",
				c.X, c.Y, p.Width, p.Height)
		}
	}
	return p, nil
}

func (p *Pattern) add(x, y int) {
	p.Cells = append(p.Cells, Cell{X: x, Y: y})
}

// Population returns the number of live cells.
func (p *Pattern) Population() int {
	return len(p.Cells)
}
