package archiveutil

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"chainguard.dev/apko/pkg/apk/fs"
	"github.com/go-logr/logr"
)

var ErrFileNotFound = errors.New("file not found in archive")

// UntarFile extracts a single regular file from a tar archive
// into rootfs. It returns the path of the file within rootfs.
func UntarFile(ctx context.Context, r io.Reader, filename string, rootfs fs.FullFS) (string, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("path", filename)
	target := CleanPath(filename)

	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		switch {
		case errors.Is(err, io.EOF):
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, filename)
		case err != nil:
			log.Error(err, "failed to read file from archive")
			return "", fmt.Errorf("reading archive: %w", err)
		case header == nil:
			continue
		}

		if CleanPath(header.Name) != target {
			continue
		}
		if header.Typeflag != tar.TypeReg {
			return "", fmt.Errorf("%s is not a regular file", filename)
		}

		log.V(5).Info("found file in archive", "size", header.Size, "mode", header.Mode)
		data, err := io.ReadAll(tr)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", filename, err)
		}
		if err := rootfs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return "", fmt.Errorf("creating parent directory: %w", err)
		}
		if err := rootfs.WriteFile(target, data, os.FileMode(header.Mode).Perm()); err != nil {
			return "", fmt.Errorf("writing %s: %w", filename, err)
		}
		return target, nil
	}
}

// CleanPath normalises an archive path so that entries such
// as "./var/lib" and "/var/lib" can be compared.
func CleanPath(s string) string {
	return strings.TrimPrefix(path.Clean("/"+s), "/")
}
