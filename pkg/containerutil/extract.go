package containerutil

import (
	"context"

	"chainguard.dev/apko/pkg/apk/fs"
	"github.com/djcass44/debview/pkg/archiveutil"
	"github.com/go-logr/logr"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/mutate"
)

// ExtractFile copies a single file out of the flattened
// image filesystem and into the given rootfs. It returns the
// path of the file within rootfs.
func ExtractFile(ctx context.Context, img v1.Image, filename string, rootfs fs.FullFS) (string, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("path", filename)
	log.V(1).Info("extracting file from image")

	rc := mutate.Extract(img)
	defer rc.Close()

	return archiveutil.UntarFile(ctx, rc, filename, rootfs)
}
