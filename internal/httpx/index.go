package httpx

import (
	"html/template"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

// TemplateRenderer abstracts template execution for easier testing.
type TemplateRenderer interface {
	Execute(w http.ResponseWriter, data any) error
}

// HTMLRenderer implements TemplateRenderer using html/template. When Name is
// set the named template is executed instead of the root.
type HTMLRenderer struct {
	T    *template.Template
	Name string
}

func (hr HTMLRenderer) Execute(w http.ResponseWriter, data any) error {
	if hr.Name != "" {
		return hr.T.ExecuteTemplate(w, hr.Name, data)
	}
	return hr.T.Execute(w, data)
}

// IndexView supplies dynamic values to the index template.
type IndexView struct {
	Count      int64  // current number of signups
	MaxBytes   int64  // request body cap, mirrored into the form
	Email      string // previously submitted address on error
	ID         string // id issued by a successful form signup
	Flash      string
	FlashError bool
}

func (h *Handler) indexView(r *http.Request) IndexView {
	view := IndexView{MaxBytes: h.MaxBody}
	n, err := h.Service.Count(r.Context())
	if err != nil {
		cid, _ := GetCorrelationID(r.Context())
		slog.Warn("count", "domain", "ui", "action", "error", "cid", cid)
		return view
	}
	view.Count = n
	return view
}

func (h *Handler) renderIndex(w http.ResponseWriter, status int, view IndexView) {
	if h.IndexTmpl == nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("index unavailable"))
		return
	}
	renderTemplate(w, h.IndexTmpl, status, view)
}

// handleIndex renders the root HTML page. Any other unmatched path is a JSON 404.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusMethodNotAllowed, msgMethod)
		return
	}
	h.renderIndex(w, http.StatusOK, h.indexView(r))
}

// staticHandler serves embedded/static assets under /static/.
func (h *Handler) staticHandler() http.Handler {
	fs := h.Assets
	files := http.FileServer(fs)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// no directory listings; require a file with extension
		if strings.HasSuffix(r.URL.Path, "/") || path.Ext(r.URL.Path) == "" {
			writeError(w, http.StatusNotFound, msgNotFound)
			return
		}
		w.Header().Del("Pragma")
		w.Header().Set("Cache-Control", "public, max-age=300")
		files.ServeHTTP(w, r)
	})
}
