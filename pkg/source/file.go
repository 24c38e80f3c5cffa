package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

const (
	compressionGzip = ".gz"
	compressionXZ   = ".xz"
	compressionZstd = ".zst"
)

// File reads a status file from the local filesystem. Files
// ending in .gz, .xz or .zst are decompressed (e.g. the
// backups that dpkg keeps in /var/backups).
type File struct {
	Path string
}

func (f *File) Open(ctx context.Context) (io.ReadCloser, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("path", f.Path)

	file, err := os.Open(filepath.Clean(f.Path))
	if err != nil {
		return nil, err
	}

	compression := filepath.Ext(f.Path)
	log.V(6).Info("detected file compression", "compression", compression)

	switch compression {
	case compressionGzip:
		gzipReader, err := gzip.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return &readCloser{Reader: gzipReader, closers: []func() error{gzipReader.Close, file.Close}}, nil
	case compressionXZ:
		xzReader, err := xz.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("creating xz reader: %w", err)
		}
		return &readCloser{Reader: xzReader, closers: []func() error{file.Close}}, nil
	case compressionZstd:
		zstdReader, err := zstd.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		return &readCloser{Reader: zstdReader, closers: []func() error{func() error {
			zstdReader.Close()
			return nil
		}, file.Close}}, nil
	default:
		return file, nil
	}
}

func (f *File) String() string {
	return f.Path
}

// readCloser closes the decompressor before
// the file underneath it.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	var errs []error
	for _, fn := range r.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
