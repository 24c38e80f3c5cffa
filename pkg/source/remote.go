package source

import (
	"context"
	"io"
	"net/url"
	"path"

	"github.com/djcass44/debview/pkg/downloader"
)

// Remote downloads a status file before reading it. The
// file is kept in the downloader's cache and is reused by every
// later Open, including in other processes sharing the cache
// directory, until the cache is cleared with "debview cache clean".
type Remote struct {
	URL        string
	Downloader *downloader.Downloader
}

func (r *Remote) Open(ctx context.Context) (io.ReadCloser, error) {
	dst, err := r.Downloader.Download(ctx, r.URL)
	if err != nil {
		return nil, err
	}
	return (&File{Path: dst}).Open(ctx)
}

func (r *Remote) String() string {
	// strip any credentials
	uri, err := url.Parse(r.URL)
	if err != nil {
		return path.Base(r.URL)
	}
	return uri.Redacted()
}
