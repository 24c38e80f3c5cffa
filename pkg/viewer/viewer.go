package viewer

import (
	"context"
	"sync"

	"github.com/djcass44/debview/pkg/dpkg"
	"github.com/djcass44/debview/pkg/source"
	"github.com/go-logr/logr"
)

// Viewer owns the package index. The index is built the
// first time that it is needed and is never rebuilt, even if
// building it failed.
type Viewer struct {
	log     logr.Logger
	sources []source.Source
	index   func() (*dpkg.Index, error)
}

// NewViewer creates a Viewer that reads from the first
// available source. The context is used when building the
// index, so it should outlive any single request.
func NewViewer(ctx context.Context, sources ...source.Source) *Viewer {
	v := &Viewer{
		log:     logr.FromContextOrDiscard(ctx),
		sources: sources,
	}
	v.index = sync.OnceValues(func() (*dpkg.Index, error) {
		v.log.Info("building package index", "sources", len(v.sources))
		idx, err := source.Load(ctx, v.sources...)
		if err != nil {
			v.log.Error(err, "failed to build package index")
			return nil, err
		}
		v.log.Info("built package index", "count", idx.Count())
		return idx, nil
	})
	return v
}

// Preload builds the index straight away rather than
// waiting for the first query.
func (v *Viewer) Preload(_ context.Context) error {
	_, err := v.index()
	return err
}

func (v *Viewer) Index(_ context.Context) (*dpkg.Index, error) {
	return v.index()
}

// List returns every installed package ordered by name.
func (v *Viewer) List(ctx context.Context) ([]dpkg.Summary, error) {
	idx, err := v.Index(ctx)
	if err != nil {
		return nil, err
	}
	return idx.List(), nil
}

// Get returns the details of a single package.
func (v *Viewer) Get(ctx context.Context, name string) (*dpkg.Detail, error) {
	idx, err := v.Index(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Get(name)
}
