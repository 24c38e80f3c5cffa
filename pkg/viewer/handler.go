package viewer

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/djcass44/debview/pkg/dpkg"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"info": infoPath,
}).ParseFS(templateFS, "templates/*.html"))

const paramPackageName = "packageName"

type link struct {
	Name string
	// Href is empty when the package is not installed
	Href string
}

type infoData struct {
	Name            string
	Summary         string
	LongDescription string
	Depends         []link
	Alternatives    []string
	ReverseDepends  []link
}

// Handler returns the HTTP routes for browsing the index.
func (v *Viewer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(v.withLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", v.listPage)
	r.Get("/info/{packageName}", v.infoPage)
	r.Route("/api/v1/packages", func(r chi.Router) {
		r.Get("/", v.listJSON)
		r.Get("/{packageName}", v.infoJSON)
	})
	return r
}

// withLogger attaches a request-scoped logger
// to the request context.
func (v *Viewer) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := v.log.WithValues("method", r.Method, "path", r.URL.Path, "id", middleware.GetReqID(r.Context()))
		log.V(2).Info("handling request", "remote", r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(logr.NewContext(r.Context(), log)))
	})
}

func (v *Viewer) listPage(w http.ResponseWriter, r *http.Request) {
	idx, err := v.Index(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if notModified(w, r, idx) {
		return
	}
	render(w, r, "index.html", idx.List())
}

func (v *Viewer) infoPage(w http.ResponseWriter, r *http.Request) {
	idx, err := v.Index(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	pkg, err := idx.Get(packageName(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if notModified(w, r, idx) {
		return
	}

	page := infoData{
		Name:            pkg.Name,
		Summary:         pkg.Summary,
		LongDescription: pkg.LongDescription,
	}
	for _, dep := range pkg.Alternatives {
		page.Alternatives = append(page.Alternatives, dpkg.Key(dep))
	}
	for _, dep := range pkg.Depends {
		l := link{Name: dpkg.Key(dep)}
		if idx.Has(l.Name) {
			l.Href = infoPath(l.Name)
		}
		page.Depends = append(page.Depends, l)
	}
	for _, name := range pkg.ReverseDepends {
		page.ReverseDepends = append(page.ReverseDepends, link{Name: name, Href: infoPath(name)})
	}
	render(w, r, "info.html", page)
}

func (v *Viewer) listJSON(w http.ResponseWriter, r *http.Request) {
	idx, err := v.Index(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if notModified(w, r, idx) {
		return
	}
	writeJSON(w, r, http.StatusOK, idx.List())
}

func (v *Viewer) infoJSON(w http.ResponseWriter, r *http.Request) {
	idx, err := v.Index(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	pkg, err := idx.Get(packageName(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if notModified(w, r, idx) {
		return
	}
	writeJSON(w, r, http.StatusOK, pkg)
}

func infoPath(name string) string {
	return "/info/" + url.PathEscape(name)
}

// packageName returns the unescaped package
// name from the request path.
func packageName(r *http.Request) string {
	name := chi.URLParam(r, paramPackageName)
	if s, err := url.PathUnescape(name); err == nil {
		return s
	}
	return name
}

// notModified sets the ETag of the response and returns
// true if the client already has the current version.
func notModified(w http.ResponseWriter, r *http.Request, idx *dpkg.Index) bool {
	etag := strconv.Quote(idx.Digest())
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

func render(w http.ResponseWriter, r *http.Request, name string, data any) {
	log := logr.FromContextOrDiscard(r.Context()).WithValues("template", name)

	// render into a buffer so that template errors
	// don't result in a partial page
	buf := bytes.Buffer{}
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error(err, "failed to render template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		log.V(1).Info("failed to write response", "error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logr.FromContextOrDiscard(r.Context()).V(1).Info("failed to write response", "error", err.Error())
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logr.FromContextOrDiscard(r.Context())

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, dpkg.ErrNotFound):
		code = http.StatusNotFound
		log.V(1).Info("package not found", "error", err.Error())
	case errors.Is(err, dpkg.ErrSourceUnavailable):
		code = http.StatusServiceUnavailable
		log.Error(err, "package index is unavailable")
	default:
		log.Error(err, "failed to handle request")
	}

	// don't leak internal details (e.g. file paths)
	// to the client
	msg := http.StatusText(code)
	if code == http.StatusNotFound {
		msg = err.Error()
	}

	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSON(w, r, code, map[string]string{"error": msg})
		return
	}
	http.Error(w, msg, code)
}
