package datapath

// Compiler compiles paths against one layout and interns the results, so
// that the same source always yields the same *Path.
type Compiler struct {
	layout *Layout
	cache  map[string]*Path
}

// NewCompiler creates a compiler for layout.
func NewCompiler(layout *Layout) *Compiler {
	return &Compiler{
		layout: layout,
		cache:  make(map[string]*Path),
	}
}

// Layout returns the layout paths are compiled against.
func (c *Compiler) Layout() *Layout {
	return c.layout
}

// Compile returns the interned path for source. Failures are not cached.
func (c *Compiler) Compile(source string) (*Path, error) {
	if p, ok := c.cache[source]; ok {
		return p, nil
	}

	p, err := Compile(c.layout, source)
	if err != nil {
		return nil, err
	}

	c.cache[source] = p

	return p, nil
}

// Len returns the number of interned paths.
func (c *Compiler) Len() int {
	return len(c.cache)
}
