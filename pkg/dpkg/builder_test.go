package dpkg

import (
	"context"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(s []string) []string {
	out := make([]string, len(s))
	for i := range s {
		out[i] = Key(s[i])
	}
	return out
}

func TestLoad(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	in := "Package: a\nDepends: b\n\nPackage: b\nDepends: c, z\n\nPackage: c\n"
	idx, err := Load(ctx, strings.NewReader(in))
	require.NoError(t, err)

	assert.EqualValues(t, []Summary{{Name: "a"}, {Name: "b"}, {Name: "c"}}, idx.List())
	assert.NotEmpty(t, idx.Digest())

	b, err := idx.Get("b")
	require.NoError(t, err)
	assert.EqualValues(t, []string{"a"}, b.ReverseDepends)
	assert.EqualValues(t, []string{"c", " z"}, b.Depends)
	assert.EqualValues(t, []string{"c", "z"}, keys(b.Depends))
	assert.EqualValues(t, []string{" z"}, b.Alternatives)
	assert.EqualValues(t, []string{"z"}, keys(b.Alternatives))

	a, err := idx.Get("a")
	require.NoError(t, err)
	assert.Empty(t, a.ReverseDepends)
	assert.Empty(t, a.Alternatives)

	c, err := idx.Get("c")
	require.NoError(t, err)
	assert.EqualValues(t, []string{"b"}, c.ReverseDepends)
}

func TestLoad_Undefined(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	// "c" is never defined
	in := "Package: a\nDepends: b\n\nPackage: b\nDepends: c, z\n\n"
	idx, err := Load(ctx, strings.NewReader(in))
	require.NoError(t, err)

	assert.EqualValues(t, []Summary{{Name: "a"}, {Name: "b"}}, idx.List())

	b, err := idx.Get("b")
	require.NoError(t, err)
	assert.EqualValues(t, []string{"a"}, b.ReverseDepends)
	assert.EqualValues(t, []string{"c", "z"}, keys(b.Depends))
	assert.EqualValues(t, []string{"c", "z"}, keys(b.Alternatives))
}

func TestLoad_Alternatives(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	in := "Package: a\nDepends: foo | bar\n\nPackage: bar\n"
	idx, err := Load(ctx, strings.NewReader(in))
	require.NoError(t, err)

	a, err := idx.Get("a")
	require.NoError(t, err)
	// dependencies are sorted by name, alternatives
	// keep the order they were found in
	assert.EqualValues(t, []string{" bar", "foo "}, a.Depends)
	assert.EqualValues(t, []string{"foo "}, a.Alternatives)

	bar, err := idx.Get("bar")
	require.NoError(t, err)
	assert.EqualValues(t, []string{"a"}, bar.ReverseDepends)
}

func TestLoad_MissingSeparator(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	in := "Package: a\nDescription: short summary\n l1\n l2\nPackage: b\nDepends: a\n"
	idx, err := Load(ctx, strings.NewReader(in))
	require.NoError(t, err)

	assert.EqualValues(t, []Summary{{Name: "a", Summary: "short summary"}, {Name: "b"}}, idx.List())

	a, err := idx.Get("a")
	require.NoError(t, err)
	assert.EqualValues(t, []string{"b"}, a.ReverseDepends)

	b, err := idx.Get("b")
	require.NoError(t, err)
	assert.Empty(t, b.Alternatives)
}

func TestLoad_Duplicates(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	t.Run("the last package wins", func(t *testing.T) {
		in := "Package: a\nDescription: first\n\nPackage: a\nDescription: second\n"
		idx, err := Load(ctx, strings.NewReader(in))
		require.NoError(t, err)

		assert.Equal(t, 1, idx.Count())
		a, err := idx.Get("a")
		require.NoError(t, err)
		assert.Equal(t, "second", a.Summary)
	})
	t.Run("repeated dependencies are recorded once", func(t *testing.T) {
		in := "Package: a\nDepends: b, b, z | z\n\nPackage: b\n"
		idx, err := Load(ctx, strings.NewReader(in))
		require.NoError(t, err)

		a, err := idx.Get("a")
		require.NoError(t, err)
		assert.Len(t, a.Depends, 4)
		assert.EqualValues(t, []string{" z "}, a.Alternatives[:1])

		b, err := idx.Get("b")
		require.NoError(t, err)
		assert.EqualValues(t, []string{"a"}, b.ReverseDepends)
	})
}

func TestLoad_Testdata(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	f, err := os.Open("./testdata/status")
	require.NoError(t, err)
	defer f.Close()

	idx, err := Load(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 5, idx.Count())

	// every resolvable dependency has a matching
	// reverse dependency, and nothing else does
	for _, s := range idx.List() {
		pkg, err := idx.Get(s.Name)
		require.NoError(t, err)
		for _, dep := range pkg.Depends {
			target, err := idx.Get(Key(dep))
			if err != nil {
				assert.ErrorIs(t, err, ErrNotFound)
				assert.Contains(t, pkg.Alternatives, dep)
				continue
			}
			assert.NotContains(t, pkg.Alternatives, dep)
			assert.Contains(t, target.ReverseDepends, pkg.Name)
		}
	}

	libc, err := idx.Get("libc6")
	require.NoError(t, err)
	assert.EqualValues(t, []string{"libgcc-s1", "passwd"}, libc.ReverseDepends)
	assert.Equal(t, "GNU C Library: Shared libraries", libc.Summary)

	passwd, err := idx.Get("passwd")
	require.NoError(t, err)
	assert.True(t, slices.IsSortedFunc(passwd.Depends, func(a, b string) int {
		return strings.Compare(Key(a), Key(b))
	}))
	assert.EqualValues(t, []string{"adduser"}, passwd.ReverseDepends)
}

func TestIndex_Get(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	idx, err := Load(ctx, strings.NewReader("Package: a\nDepends: c, b\n\nPackage: b\n\nPackage: c\n"))
	require.NoError(t, err)

	t.Run("missing package", func(t *testing.T) {
		out, err := idx.Get("missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, out)
		assert.False(t, idx.Has("missing"))
	})
	t.Run("repeated calls are stable", func(t *testing.T) {
		one, err := idx.Get("a")
		require.NoError(t, err)
		two, err := idx.Get("a")
		require.NoError(t, err)
		assert.EqualValues(t, one, two)
		assert.EqualValues(t, []string{" b", "c"}, one.Depends)
	})
	t.Run("results do not share memory with the index", func(t *testing.T) {
		one, err := idx.Get("a")
		require.NoError(t, err)
		one.Depends[0] = "mutated"

		two, err := idx.Get("a")
		require.NoError(t, err)
		assert.EqualValues(t, []string{" b", "c"}, two.Depends)
	})
	t.Run("concurrent reads", func(t *testing.T) {
		wg := sync.WaitGroup{}
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				out, err := idx.Get("b")
				assert.NoError(t, err)
				assert.EqualValues(t, []string{"a"}, out.ReverseDepends)
				assert.Len(t, idx.List(), 3)
			}()
		}
		wg.Wait()
	})
}
