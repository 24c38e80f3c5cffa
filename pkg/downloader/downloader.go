package downloader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/hashicorp/go-getter"
)

type Downloader struct {
	cacheDir string
}

func NewDownloader(cacheDir string) (*Downloader, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, err
	}
	return &Downloader{cacheDir: cacheDir}, nil
}

// Download fetches a file into the cache directory and
// returns its path. Files that have already been downloaded
// are not fetched again.
func (d *Downloader) Download(ctx context.Context, src string) (string, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("src", src)
	log.Info("downloading file")

	uri, err := url.Parse(src)
	if err != nil {
		log.Error(err, "failed to parse url")
		return "", err
	}

	// download the file to a predictable location so that
	// we can avoid repeated downloads
	dst := filepath.Join(d.cacheDir, HashString(src)+"-"+filepath.Base(uri.Path))
	if _, err := os.Stat(dst); err == nil {
		log.V(1).Info("using cached file", "dst", dst)
		return dst, nil
	}

	// disable archive handling, otherwise compressed
	// files are unpacked by go-getter
	q := uri.Query()
	q.Set("archive", "false")
	uri.RawQuery = q.Encode()

	tmp := fmt.Sprintf("%s.%s.partial", dst, uuid.NewString())
	log.V(1).Info("preparing to download file", "dst", dst, "tmp", tmp)

	client := &getter.Client{
		Ctx:             ctx,
		Src:             uri.String(),
		Dst:             tmp,
		Mode:            getter.ClientModeFile,
		DisableSymlinks: true,
	}
	if err := client.Get(); err != nil {
		log.Error(err, "failed to download file")
		_ = os.Remove(tmp)
		return "", fmt.Errorf("downloading %s: %w", src, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		log.Error(err, "failed to move file into the cache", "file", dst)
		return "", err
	}
	// we need to chmod the files so that the root group
	// can access them as if they were the owner
	if err := os.Chmod(dst, 0664); err != nil {
		log.Error(err, "failed to update file permissions", "file", dst)
		return "", err
	}

	return dst, nil
}

func (d *Downloader) CacheDir() string {
	return d.cacheDir
}

// HashString generates a 12-character SHA256 hash
// from a given string.
// It should not be used for cryptographic operations.
func HashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])[:12]
}
