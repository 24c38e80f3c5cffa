package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/djcass44/debview/pkg/dpkg"
	"github.com/go-logr/logr"
)

var (
	// DefaultPath is where dpkg keeps its status database.
	DefaultPath = filepath.Join("/var", "lib", "dpkg", "status")
	// FallbackPath is read from the working directory when
	// DefaultPath does not exist.
	FallbackPath = "status.real"
)

// Source is somewhere that a status file can be read from.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// Defaults returns the system status file followed
// by the bundled fallback.
func Defaults() []Source {
	return []Source{
		&File{Path: DefaultPath},
		&File{Path: FallbackPath},
	}
}

// First opens the first source that is available. If no
// source can be opened, the returned error wraps
// dpkg.ErrSourceUnavailable.
func First(ctx context.Context, sources ...Source) (io.ReadCloser, Source, error) {
	log := logr.FromContextOrDiscard(ctx)

	if len(sources) == 0 {
		return nil, nil, fmt.Errorf("%w: no sources configured", dpkg.ErrSourceUnavailable)
	}

	var errs []error
	for _, src := range sources {
		log.V(2).Info("opening status source", "source", src.String())
		rc, err := src.Open(ctx)
		if err != nil {
			log.V(1).Info("status source is not available", "source", src.String(), "error", err.Error())
			errs = append(errs, fmt.Errorf("%s: %w", src, err))
			continue
		}
		log.V(1).Info("using status source", "source", src.String())
		return rc, src, nil
	}
	return nil, nil, fmt.Errorf("%w: %w", dpkg.ErrSourceUnavailable, errors.Join(errs...))
}

// Load reads the first available source and
// builds an index from it.
func Load(ctx context.Context, sources ...Source) (*dpkg.Index, error) {
	rc, src, err := First(ctx, sources...)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	idx, err := dpkg.Load(ctx, rc)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", src, err)
	}
	return idx, nil
}
