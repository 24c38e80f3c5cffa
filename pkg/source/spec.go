package source

import (
	"fmt"
	"strings"

	"github.com/djcass44/debview/pkg/airutil"
	v1 "github.com/djcass44/debview/pkg/api/v1"
	"github.com/djcass44/debview/pkg/downloader"
)

const schemeOCI = "oci://"

// FromSpec converts the configured sources into
// their implementations.
func FromSpec(sources []v1.Source, dl *downloader.Downloader) ([]Source, error) {
	out := make([]Source, len(sources))
	for i, s := range sources {
		uri := airutil.ExpandEnv(s.URI)
		if uri == "" {
			return nil, fmt.Errorf("source %d is missing a uri", i)
		}
		switch s.Type {
		case v1.SourceFile:
			out[i] = &File{Path: uri}
		case v1.SourceURL:
			if dl == nil {
				return nil, fmt.Errorf("source %d requires a downloader", i)
			}
			out[i] = &Remote{URL: uri, Downloader: dl}
		case v1.SourceOCI:
			out[i] = &Image{Ref: strings.TrimPrefix(uri, schemeOCI), Path: s.Path}
		default:
			return nil, fmt.Errorf("unknown source type: %s", s.Type)
		}
	}
	return out, nil
}

// ParseSpec guesses the type of source from
// a plain string, e.g. a command-line flag.
func ParseSpec(s string) v1.Source {
	switch {
	case strings.HasPrefix(s, schemeOCI):
		return v1.Source{Type: v1.SourceOCI, URI: strings.TrimPrefix(s, schemeOCI)}
	case strings.Contains(s, "://"):
		return v1.Source{Type: v1.SourceURL, URI: s}
	default:
		return v1.Source{Type: v1.SourceFile, URI: s}
	}
}
