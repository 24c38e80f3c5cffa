package dpkg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/go-logr/logr"
)

// Builder collects packages and links them together
// into an Index.
type Builder struct {
	ctx      context.Context
	packages map[string]*Package
}

func NewBuilder(ctx context.Context) *Builder {
	return &Builder{
		ctx:      ctx,
		packages: map[string]*Package{},
	}
}

// Add records a package. If a package with the same name
// has already been added, it is replaced.
func (b *Builder) Add(pkg *Package) {
	if _, ok := b.packages[pkg.Name]; ok {
		logr.FromContextOrDiscard(b.ctx).V(1).Info("replacing duplicate package", "name", pkg.Name)
	}
	b.packages[pkg.Name] = pkg
}

// Build freezes the set of packages and resolves the
// reverse and alternative dependencies of each one.
//
// The Builder is emptied and the packages it held are
// owned by the returned Index.
func (b *Builder) Build() *Index {
	log := logr.FromContextOrDiscard(b.ctx)

	idx := &Index{
		packages: b.packages,
		names:    slices.Sorted(maps.Keys(b.packages)),
	}
	b.packages = map[string]*Package{}

	for _, pkg := range idx.packages {
		pkg.Alternatives = nil
		pkg.ReverseDepends = nil
	}

	// the set of keys is fixed at this point, so the order
	// we visit packages in only affects the insertion order
	// of each list
	for _, name := range idx.names {
		pkg := idx.packages[name]
		for _, token := range pkg.Depends {
			target, ok := idx.packages[Key(token)]
			if !ok {
				log.V(6).Info("dependency is not installed", "name", name, "dependency", token)
				pkg.Alternatives = appendUnique(pkg.Alternatives, token)
				continue
			}
			target.ReverseDepends = appendUnique(target.ReverseDepends, name)
		}
	}
	log.V(2).Info("resolved dependency graph", "count", len(idx.names))
	return idx
}

// Load reads a status file and builds an Index from it.
func Load(ctx context.Context, r io.Reader) (*Index, error) {
	log := logr.FromContextOrDiscard(ctx)

	h := xxhash.New()
	parser := NewParser(ctx, io.TeeReader(r, h))
	builder := NewBuilder(ctx)
	for {
		pkg, err := parser.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
		builder.Add(pkg)
	}
	idx := builder.Build()
	idx.digest = strconv.FormatUint(h.Sum64(), 16)

	log.V(1).Info("loaded status file", "count", idx.Count(), "digest", idx.digest)
	return idx, nil
}

func appendUnique(s []string, v string) []string {
	if slices.Contains(s, v) {
		return s
	}
	return append(s, v)
}
