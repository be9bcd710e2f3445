package domain

// LayerLookup resolves layer names against the installed layers.
// FindLayer returns nil when no layer of that name is installed.
type LayerLookup interface {
	FindLayer(name string) *Layer
}

// PathLookup is implemented by lookups that can also match on the install
// directory. Callers type-assert for it and fall back to FindLayer.
type PathLookup interface {
	FindLayerAt(name, path string) *Layer
}

// Catalog is an immutable snapshot of the available layers, in discovery order.
// Returned layers are copies; the catalog is never mutated by callers.
type Catalog struct {
	layers []Layer
}

// NewCatalog copies layers into a new catalog.
func NewCatalog(layers []Layer) *Catalog {
	cp := make([]Layer, len(layers))
	for i, l := range layers {
		cp[i] = l.Clone()
	}
	return &Catalog{layers: cp}
}

var (
	_ LayerLookup = (*Catalog)(nil)
	_ PathLookup  = (*Catalog)(nil)
)

// FindLayer returns a copy of the first layer named name, or nil.
func (c *Catalog) FindLayer(name string) *Layer {
	if c == nil {
		return nil
	}
	l := FindLayer(c.layers, name)
	if l == nil {
		return nil
	}
	cp := l.Clone()
	return &cp
}

// FindLayerAt returns a copy of the layer installed at path with that name, or nil.
func (c *Catalog) FindLayerAt(name, path string) *Layer {
	if c == nil {
		return nil
	}
	l := FindLayerAt(c.layers, name, path)
	if l == nil {
		return nil
	}
	cp := l.Clone()
	return &cp
}

// Layers returns copies of every available layer.
func (c *Catalog) Layers() []Layer {
	if c == nil {
		return nil
	}
	out := make([]Layer, len(c.layers))
	for i, l := range c.layers {
		out[i] = l.Clone()
	}
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.layers)
}
