package viewer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/djcass44/debview/pkg/dpkg"
	"github.com/djcass44/debview/pkg/source"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statusFile = `Package: a
Depends: b
Description: the first package
 It depends on b.

Package: b
Depends: c, z
Description: the second package

Package: c
`

// countingSource records how many
// times it has been opened.
type countingSource struct {
	source.Source
	opens atomic.Int32
}

func (c *countingSource) Open(ctx context.Context) (io.ReadCloser, error) {
	c.opens.Add(1)
	return c.Source.Open(ctx)
}

func newTestViewer(t *testing.T, ctx context.Context) (*Viewer, *countingSource) {
	path := filepath.Join(t.TempDir(), "status")
	require.NoError(t, os.WriteFile(path, []byte(statusFile), 0644))

	src := &countingSource{Source: &source.File{Path: path}}
	return NewViewer(ctx, src), src
}

func TestViewer_Queries(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))
	v, _ := newTestViewer(t, ctx)

	out, err := v.List(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, []dpkg.Summary{{Name: "a", Summary: "the first package"}, {Name: "b", Summary: "the second package"}, {Name: "c"}}, out)

	b, err := v.Get(ctx, "b")
	require.NoError(t, err)
	assert.EqualValues(t, []string{"a"}, b.ReverseDepends)
	assert.EqualValues(t, []string{" z"}, b.Alternatives)

	_, err = v.Get(ctx, "missing")
	assert.ErrorIs(t, err, dpkg.ErrNotFound)
}

func TestViewer_BuildOnce(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))
	v, src := newTestViewer(t, ctx)

	wg := sync.WaitGroup{}
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := v.List(ctx)
			assert.NoError(t, err)
			assert.Len(t, out, 3)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, src.opens.Load())
}

func TestViewer_Unavailable(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	src := &countingSource{Source: &source.File{Path: filepath.Join(t.TempDir(), "missing")}}
	v := NewViewer(ctx, src)

	err := v.Preload(ctx)
	assert.ErrorIs(t, err, dpkg.ErrSourceUnavailable)

	// the failure is remembered rather than retried
	_, err = v.List(ctx)
	assert.ErrorIs(t, err, dpkg.ErrSourceUnavailable)
	assert.EqualValues(t, 1, src.opens.Load())
}

func TestViewer_Handler(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))
	v, _ := newTestViewer(t, ctx)

	ts := httptest.NewServer(v.Handler())
	defer ts.Close()

	get := func(t *testing.T, path string, headers ...string) (*http.Response, string) {
		req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
		require.NoError(t, err)
		for i := 0; i+1 < len(headers); i += 2 {
			req.Header.Set(headers[i], headers[i+1])
		}
		resp, err := ts.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(body)
	}

	t.Run("index page", func(t *testing.T) {
		resp, body := get(t, "/")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
		assert.Contains(t, body, `<a href="/info/a">a</a>`)
		assert.Contains(t, body, `<a href="/info/c">c</a>`)
		assert.Less(t, strings.Index(body, "/info/a"), strings.Index(body, "/info/b"))
	})
	t.Run("info page", func(t *testing.T) {
		resp, body := get(t, "/info/b")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "the second package")
		// installed dependencies are links
		assert.Contains(t, body, `<a href="/info/c">c</a>`)
		assert.Contains(t, body, `<a href="/info/a">a</a>`)
		// missing dependencies are not
		assert.Contains(t, body, "<li>z</li>")
		assert.NotContains(t, body, `href="/info/z"`)
	})
	t.Run("missing package page", func(t *testing.T) {
		resp, _ := get(t, "/info/missing")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
	t.Run("list api", func(t *testing.T) {
		resp, body := get(t, "/api/v1/packages")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out []dpkg.Summary
		require.NoError(t, json.Unmarshal([]byte(body), &out))
		assert.Len(t, out, 3)
		assert.Equal(t, "a", out[0].Name)
	})
	t.Run("info api", func(t *testing.T) {
		resp, body := get(t, "/api/v1/packages/b")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out dpkg.Detail
		require.NoError(t, json.Unmarshal([]byte(body), &out))
		assert.Equal(t, "b", out.Name)
		assert.EqualValues(t, []string{"a"}, out.ReverseDepends)
		assert.EqualValues(t, []string{"c", " z"}, out.Depends)
	})
	t.Run("missing package api", func(t *testing.T) {
		resp, body := get(t, "/api/v1/packages/missing")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, body, "package not found")
	})
	t.Run("etag", func(t *testing.T) {
		resp, _ := get(t, "/")
		etag := resp.Header.Get("ETag")
		require.NotEmpty(t, etag)

		resp, body := get(t, "/", "If-None-Match", etag)
		assert.Equal(t, http.StatusNotModified, resp.StatusCode)
		assert.Empty(t, body)
	})
}

func TestViewer_HandlerUnavailable(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))
	v := NewViewer(ctx, &source.File{Path: filepath.Join(t.TempDir(), "missing")})

	ts := httptest.NewServer(v.Handler())
	defer ts.Close()

	for _, path := range []string{"/", "/info/a", "/api/v1/packages"} {
		t.Run(path, func(t *testing.T) {
			resp, err := ts.Client().Get(ts.URL + path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		})
	}
}
