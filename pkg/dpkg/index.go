package dpkg

import (
	"fmt"
	"slices"
	"strings"
)

func (idx *Index) Count() int {
	return len(idx.names)
}

// Digest is a hash of the status file that the
// index was built from.
func (idx *Index) Digest() string {
	return idx.digest
}

// List returns every package ordered by name.
func (idx *Index) List() []Summary {
	out := make([]Summary, len(idx.names))
	for i, name := range idx.names {
		out[i] = Summary{
			Name:    name,
			Summary: idx.packages[name].Summary(),
		}
	}
	return out
}

// Get returns a copy of the named package with its
// dependencies sorted.
func (idx *Index) Get(name string) (*Detail, error) {
	pkg, ok := idx.packages[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	depends := slices.Clone(pkg.Depends)
	slices.SortStableFunc(depends, func(a, b string) int {
		return strings.Compare(Key(a), Key(b))
	})
	reverse := slices.Clone(pkg.ReverseDepends)
	slices.Sort(reverse)

	return &Detail{
		Name:            pkg.Name,
		Description:     pkg.Description,
		Summary:         pkg.Summary(),
		LongDescription: pkg.LongDescription(),
		Depends:         nonNil(depends),
		Alternatives:    nonNil(slices.Clone(pkg.Alternatives)),
		ReverseDepends:  nonNil(reverse),
	}, nil
}

// Has returns true if the index contains a package with
// the given name.
func (idx *Index) Has(name string) bool {
	_, ok := idx.packages[name]
	return ok
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
