// Package webui exposes a session over a small JSON API: trigger a load
// (uploads or locations), read the views and download the export artifacts.
package webui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"eda/internal/analysis"
	"eda/internal/dataset"
	"eda/internal/datasource"
	"eda/internal/datasource/httpds"
	"eda/internal/export"
	"eda/internal/session"
)

// maxUpload bounds the in-memory part of a multipart load request.
const maxUpload = 32 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Options configures the handler.
type Options struct {
	// Prefix names downloaded artifacts. Defaults to "titanic".
	Prefix string
	// Client fetches http(s) locations given to POST /api/load.
	Client *httpds.Client
	// DataDir is the only directory POST /api/load may read local paths
	// from; relative paths are taken relative to it. Empty rejects every
	// local path, leaving uploads and http(s) URLs.
	DataDir string
	// LoadTimeout bounds one load. Zero means no extra bound.
	LoadTimeout time.Duration
}

type handler struct {
	sess *session.Session
	opt  Options
}

// NewRouter returns the API routes for sess.
func NewRouter(sess *session.Session, opt Options) http.Handler {
	if opt.Prefix == "" {
		opt.Prefix = "titanic"
	}
	h := &handler{sess: sess, opt: opt}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Post("/load", h.load)
		r.Get("/overview", h.overview)
		r.Get("/missing", h.missing)
		r.Get("/numeric", h.numeric)
		r.Get("/distribution", h.distribution)
		r.Get("/target", h.target)
		r.Get("/target-rate", h.targetRate)
		r.Get("/export/csv", h.exportCSV)
		r.Get("/export/summary", h.exportSummary)
		r.Get("/export/xlsx", h.exportXLSX)
	})
	return r
}

// Serve runs the API on addr until ctx is canceled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("webui: listening addr=%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("webui: serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Printf("webui: shutting down addr=%s", addr)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("webui: shutdown: %w", err)
		}
		return nil
	}
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	status := "empty"
	if _, err := h.sess.Current(); err == nil {
		status = "loaded"
	}
	render.JSON(w, r, map[string]string{"status": "ok", "dataset": status})
}

// loadRequest is the JSON form of POST /api/load.
type loadRequest struct {
	Train string `json:"train"`
	Test  string `json:"test"`
}

type loadResponse struct {
	LoadID      string          `json:"load_id"`
	LoadedAt    time.Time       `json:"loaded_at"`
	Sources     session.Sources `json:"sources"`
	Fingerprint string          `json:"fingerprint"`
	Records     int             `json:"records"`
	Train       int             `json:"train"`
	Test        int             `json:"test"`
	Columns     []string        `json:"columns"`
}

func (h *handler) load(w http.ResponseWriter, r *http.Request) {
	train, test, err := h.sources(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	if h.opt.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.LoadTimeout)
		defer cancel()
	}
	l, err := h.sess.Load(ctx, train, test)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, loadResponse{
		LoadID:      l.LoadID,
		LoadedAt:    l.LoadedAt.UTC(),
		Sources:     l.Sources,
		Fingerprint: l.Fingerprint,
		Records:     l.Dataset.Len(),
		Train:       l.Dataset.TrainCount(),
		Test:        l.Dataset.TestCount(),
		Columns:     l.Dataset.Columns(),
	})
}

// sources reads either multipart uploads ("train", "test" file fields) or a
// JSON body of locations.
func (h *handler) sources(r *http.Request) (train, test datasource.Source, err error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			return nil, nil, fmt.Errorf("webui: %w: %v", errBadRequest, err)
		}
		if train, err = formFile(r.MultipartForm, "train"); err != nil {
			return nil, nil, err
		}
		if test, err = formFile(r.MultipartForm, "test"); err != nil {
			return nil, nil, err
		}
		return train, test, nil
	}

	var req loadRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("webui: %w: invalid JSON body: %v", errBadRequest, err)
	}
	if train, err = h.locate(req.Train); err != nil {
		return nil, nil, err
	}
	if test, err = h.locate(req.Test); err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

// locate resolves a JSON load location. URLs pass through; local paths must
// stay inside DataDir once cleaned and symlinks are followed.
func (h *handler) locate(loc string) (datasource.Source, error) {
	loc = strings.TrimSpace(loc)
	if loc == "" || strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") {
		return datasource.Resolve(loc, h.opt.Client), nil
	}
	if h.opt.DataDir == "" {
		return nil, fmt.Errorf("webui: %w: local paths are disabled; upload the files or set a data directory", errBadRequest)
	}
	path, err := containedPath(h.opt.DataDir, loc)
	if err != nil {
		return nil, err
	}
	return datasource.Resolve(path, h.opt.Client), nil
}

// containedPath returns loc as a path inside dir, or a bad request error
// when it escapes dir.
func containedPath(dir, loc string) (string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("webui: data dir: %w", err)
	}
	root = realPath(root)

	p := loc
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	p = realPath(filepath.Clean(p))

	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("webui: %w: %q is outside the data directory", errBadRequest, loc)
	}
	return p, nil
}

// realPath follows symlinks in p. A file that does not exist yet keeps its
// name under its resolved parent, so absence still reports as missing input.
func realPath(p string) string {
	if r, err := filepath.EvalSymlinks(p); err == nil {
		return r
	}
	if r, err := filepath.EvalSymlinks(filepath.Dir(p)); err == nil {
		return filepath.Join(r, filepath.Base(p))
	}
	return p
}

// formFile returns the uploaded file for field as an in-memory source, or
// nil when the field is absent.
func formFile(form *multipart.Form, field string) (datasource.Source, error) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("webui: open upload %s: %w", field, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("webui: read upload %s: %w", field, err)
	}
	name := fh.Filename
	if name == "" {
		name = field + ".csv"
	}
	return datasource.FromBytes(name, b), nil
}

func (h *handler) overview(w http.ResponseWriter, r *http.Request) {
	v, err := h.sess.Overview()
	respond(w, r, v, err)
}

func (h *handler) missing(w http.ResponseWriter, r *http.Request) {
	v, err := h.sess.Missing()
	respond(w, r, v, err)
}

func (h *handler) numeric(w http.ResponseWriter, r *http.Request) {
	v, err := h.sess.Numeric()
	respond(w, r, v, err)
}

func (h *handler) distribution(w http.ResponseWriter, r *http.Request) {
	v, err := h.sess.Distribution(r.URL.Query().Get("feature"))
	respond(w, r, v, err)
}

func (h *handler) target(w http.ResponseWriter, r *http.Request) {
	v, err := h.sess.Target()
	respond(w, r, v, err)
}

func (h *handler) targetRate(w http.ResponseWriter, r *http.Request) {
	v, err := h.sess.TargetRate(r.URL.Query().Get("feature"))
	respond(w, r, v, err)
}

func (h *handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, export.CSVFileName(h.opt.Prefix), "text/csv; charset=utf-8", h.sess.ExportCSV)
}

func (h *handler) exportSummary(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, export.SummaryFileName(h.opt.Prefix), "application/json", h.sess.ExportSummary)
}

func (h *handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, export.WorkbookFileName(h.opt.Prefix), xlsxContentType, h.sess.ExportWorkbook)
}

// download buffers the artifact so a failure can still be reported as JSON.
func (h *handler) download(w http.ResponseWriter, r *http.Request, name, contentType string, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, v)
}

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// classify maps an error to its HTTP status and stable kind label.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, dataset.ErrMissingInput):
		return http.StatusBadRequest, "missing_input"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, analysis.ErrUnknownColumn):
		return http.StatusBadRequest, "unknown_column"
	case errors.Is(err, dataset.ErrNotLoaded):
		return http.StatusConflict, "not_loaded"
	case errors.Is(err, dataset.ErrLoadInProgress):
		return http.StatusConflict, "load_in_progress"
	case errors.Is(err, dataset.ErrParseFailure):
		return http.StatusUnprocessableEntity, "parse_failure"
	case errors.Is(err, dataset.ErrEmptyMerge):
		return http.StatusUnprocessableEntity, "empty_merge"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	}
	return http.StatusInternalServerError, "internal"
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	if status >= http.StatusInternalServerError {
		log.Printf("webui: %s %s failed kind=%s err=%v", r.Method, r.URL.Path, kind, err)
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error(), Kind: kind})
}
