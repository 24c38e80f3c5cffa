package v1

import metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

type SourceType string

const (
	SourceFile SourceType = "File"
	SourceURL  SourceType = "URL"
	SourceOCI  SourceType = "OCI"
)

type ViewerSpec struct {
	// Listen is the address that the HTTP server binds to.
	Listen string `json:"listen,omitempty"`
	// Preload builds the package index when the server starts
	// rather than on the first request.
	Preload  bool     `json:"preload,omitempty"`
	CacheDir string   `json:"cacheDir,omitempty"`
	Sources  []Source `json:"sources,omitempty"`
}

// Source is a location to read the status file from. Sources
// are tried in order and the first one that can be read is used.
type Source struct {
	Type SourceType `json:"type"`
	URI  string     `json:"uri"`
	// Path is the location of the status file within
	// an OCI image.
	Path string `json:"path,omitempty"`
}

type Viewer struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec ViewerSpec `json:"spec"`
}
