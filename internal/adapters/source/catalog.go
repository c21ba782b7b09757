package source

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownDataset is returned for names that are not in the catalog.
var ErrUnknownDataset = errors.New("unknown dataset")

// Catalog is the ordered set of configured datasets.
type Catalog struct {
	sources     map[string]Source
	names       []string
	defaultName string
}

// NewCatalog builds a catalog. Names are ordered ascending, so yearly
// datasets sort chronologically. defaultName must be one of the sources.
func NewCatalog(defaultName string, sources ...Source) (*Catalog, error) {
	c := &Catalog{sources: make(map[string]Source, len(sources))}
	for _, s := range sources {
		if _, dup := c.sources[s.Name()]; dup {
			return nil, fmt.Errorf("duplicate dataset %q", s.Name())
		}
		c.sources[s.Name()] = s
		c.names = append(c.names, s.Name())
	}
	sort.Strings(c.names)
	if _, ok := c.sources[defaultName]; !ok {
		return nil, fmt.Errorf("%w: default %q", ErrUnknownDataset, defaultName)
	}
	c.defaultName = defaultName
	return c, nil
}

// FromPaths builds a catalog of file sources from a name -> path map.
func FromPaths(defaultName string, paths map[string]string) (*Catalog, error) {
	sources := make([]Source, 0, len(paths))
	for name, path := range paths {
		sources = append(sources, NewFileSource(name, path))
	}
	return NewCatalog(defaultName, sources...)
}

// Lookup returns the named source; an empty name selects the default.
func (c *Catalog) Lookup(name string) (Source, error) {
	if name == "" {
		name = c.defaultName
	}
	s, ok := c.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	return s, nil
}

// Names returns the dataset names in ascending order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Default returns the default dataset name.
func (c *Catalog) Default() string { return c.defaultName }

// Sources returns the sources in name order.
func (c *Catalog) Sources() []Source {
	out := make([]Source, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, c.sources[n])
	}
	return out
}
