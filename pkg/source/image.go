package source

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"chainguard.dev/apko/pkg/apk/fs"
	"github.com/djcass44/debview/pkg/containerutil"
	"github.com/go-logr/logr"
)

// Image reads the status file from inside
// an OCI image.
type Image struct {
	Ref string
	// Path of the status file within the image. Defaults
	// to DefaultPath.
	Path string
}

func (i *Image) Open(ctx context.Context) (io.ReadCloser, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("ref", i.Ref)

	img, err := containerutil.Pull(ctx, i.Ref)
	if err != nil {
		return nil, err
	}

	rootfs := fs.NewMemFS()
	path, err := containerutil.ExtractFile(ctx, img, i.path(), rootfs)
	if err != nil {
		return nil, err
	}
	data, err := rootfs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading extracted file: %w", err)
	}
	log.V(2).Info("read status file from image", "size", len(data))
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (i *Image) String() string {
	return fmt.Sprintf("oci://%s%s", i.Ref, i.path())
}

func (i *Image) path() string {
	if i.Path == "" {
		return DefaultPath
	}
	return i.Path
}
