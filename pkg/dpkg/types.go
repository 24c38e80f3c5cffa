package dpkg

import (
	"errors"
	"strings"
)

var (
	ErrSourceUnavailable = errors.New("status source unavailable")
	ErrNotFound          = errors.New("package not found")
)

// DescriptionBreak separates the short description
// from its continuation lines.
const DescriptionBreak = "\n"

// Package is a single stanza from the status database.
type Package struct {
	Name        string
	Description string
	// Depends holds the raw dependency tokens. Whitespace
	// surrounding each token is kept as it was in the file.
	Depends []string
	// Alternatives holds the raw dependency tokens that
	// could not be found in the index.
	Alternatives   []string
	ReverseDepends []string
}

type Summary struct {
	Name    string `json:"name"`
	Summary string `json:"summary,omitempty"`
}

type Detail struct {
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	LongDescription string   `json:"longDescription,omitempty"`
	Depends         []string `json:"depends"`
	Alternatives    []string `json:"alternatives"`
	ReverseDepends  []string `json:"reverseDepends"`
}

type Index struct {
	packages map[string]*Package
	names    []string
	digest   string
}

func (p *Package) Summary() string {
	summary, _, _ := strings.Cut(p.Description, DescriptionBreak)
	return summary
}

func (p *Package) LongDescription() string {
	_, long, _ := strings.Cut(p.Description, DescriptionBreak)
	return long
}
