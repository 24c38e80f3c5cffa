package airutil

import (
	"os"
	"path/filepath"

	"github.com/drone/envsubst"
)

// ExpandEnv substitutes environment variables in s. Only the
// braced form (${VAR}, ${VAR:-default}) is expanded, a bare $VAR
// is left as it is. If the substitution fails, s is returned
// unchanged.
func ExpandEnv(s string) string {
	val, err := envsubst.EvalEnv(s)
	if err != nil {
		return s
	}
	return val
}

// CacheDir returns d, or a directory within the
// user's cache directory when d is empty.
func CacheDir(d string) string {
	if d == "" {
		d, _ = os.UserCacheDir()
		d = filepath.Join(d, "debview")
	}
	return filepath.Clean(d)
}
