package dpkg

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/go-logr/logr"
)

const (
	fieldPackage     = "Package:"
	fieldDescription = "Description:"
	fieldDepends     = "Depends:"

	// maxLineLength is the longest line that we're willing
	// to read from a status file
	maxLineLength = 1024 * 1024
)

// Parser reads packages from a dpkg status file one
// stanza at a time.
type Parser struct {
	ctx     context.Context
	scanner *bufio.Scanner

	// line is a line that has been read but not
	// yet processed
	line    string
	pending bool

	current *Package
	lineNo  int
}

func NewParser(ctx context.Context, r io.Reader) *Parser {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	return &Parser{
		ctx:     ctx,
		scanner: scanner,
	}
}

// Next returns the next complete package in the stream. It
// returns io.EOF once there are no more packages.
func (p *Parser) Next() (*Package, error) {
	log := logr.FromContextOrDiscard(p.ctx)
	for {
		line, ok := p.readLine()
		if !ok {
			if err := p.scanner.Err(); err != nil {
				log.Error(err, "failed to read status file", "line", p.lineNo)
				return nil, err
			}
			// the file may not end with a blank line, so
			// we need to check for a dangling package
			if pkg := p.commit(); pkg != nil {
				return pkg, nil
			}
			return nil, io.EOF
		}

		switch {
		case strings.HasPrefix(line, fieldPackage):
			// a package that isn't terminated by a blank
			// line is still complete
			prev := p.commit()
			p.current = &Package{Name: fieldValue(line)}
			log.V(9).Info("found package", "name", p.current.Name, "line", p.lineNo)
			if prev != nil {
				log.V(1).Info("package was not followed by a blank line", "name", prev.Name, "line", p.lineNo)
				return prev, nil
			}
		case strings.HasPrefix(line, fieldDescription):
			description := p.readDescription(fieldValue(line))
			if p.current == nil {
				log.V(8).Info("skipping description outside of a package", "line", p.lineNo)
				continue
			}
			p.current.Description = description
		case strings.HasPrefix(line, fieldDepends):
			if p.current == nil {
				log.V(8).Info("skipping dependencies outside of a package", "line", p.lineNo)
				continue
			}
			p.current.Depends = append(p.current.Depends, ParseDepends(fieldValue(line))...)
		case line == "":
			if pkg := p.commit(); pkg != nil {
				return pkg, nil
			}
		}
	}
}

// All drains the parser and returns every package.
func (p *Parser) All() ([]*Package, error) {
	var out []*Package
	for {
		pkg, err := p.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, pkg)
	}
}

// readDescription consumes the continuation lines of
// a description. The first line that isn't part of the
// description is kept so that the next call to readLine
// returns it.
func (p *Parser) readDescription(first string) string {
	sb := strings.Builder{}
	sb.WriteString(first)
	sb.WriteString(DescriptionBreak)
	for {
		line, ok := p.readLine()
		if !ok {
			break
		}
		if !strings.HasPrefix(line, " ") {
			p.line, p.pending = line, true
			break
		}
		sb.WriteString(line)
	}
	return sb.String()
}

func (p *Parser) readLine() (string, bool) {
	if p.pending {
		p.pending = false
		return p.line, true
	}
	if !p.scanner.Scan() {
		return "", false
	}
	p.lineNo++
	return p.scanner.Text(), true
}

// commit returns the package currently being read
// and resets the parser so that it can find the next one.
func (p *Parser) commit() *Package {
	pkg := p.current
	p.current = nil
	if pkg == nil {
		return nil
	}
	if pkg.Name == "" {
		logr.FromContextOrDiscard(p.ctx).V(1).Info("skipping package with no name", "line", p.lineNo)
		return nil
	}
	return pkg
}

func fieldValue(line string) string {
	_, value, _ := strings.Cut(line, ":")
	return strings.TrimSpace(value)
}
