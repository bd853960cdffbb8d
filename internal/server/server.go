// Package server exposes the tracker over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/dsatrack/internal/catalog"
	"github.com/abhisek/dsatrack/internal/progress"
	"github.com/abhisek/dsatrack/internal/query"
	"github.com/abhisek/dsatrack/internal/spacedrep"
	"github.com/abhisek/dsatrack/internal/store"
	"github.com/abhisek/dsatrack/internal/tracker"
)

// ExportFilename is the suggested download name for exports.
const ExportFilename = "dsa_tracker.json"

const maxImportBytes = 4 << 20

// Server handles HTTP requests for the tracker API.
type Server struct {
	tracker *tracker.Tracker
	addr    string
	log     *zap.Logger
}

// New creates a new API server.
func New(t *tracker.Tracker, addr string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{tracker: t, addr: addr, log: log}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Entries
	mux.HandleFunc("GET /entries", s.listEntries)
	mux.HandleFunc("GET /entries/{id}", s.getEntry)
	mux.HandleFunc("PUT /entries/{id}/done", s.setDone)
	mux.HandleFunc("POST /entries/{id}/review", s.review)
	mux.HandleFunc("PUT /entries/{id}/notes", s.setNotes)
	mux.HandleFunc("GET /random", s.random)

	// Aggregates
	mux.HandleFunc("GET /stats", s.stats)
	mux.HandleFunc("GET /sections", s.sections)

	// Whole-store operations
	mux.HandleFunc("GET /export", s.export)
	mux.HandleFunc("POST /import", s.importAll)
	mux.HandleFunc("POST /reset", s.reset)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withCORS(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("starting server", zap.String("addr", s.addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

// withCORS adds CORS headers for a local frontend.
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// EntryView is an entry together with its progress.
type EntryView struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	ReferenceURL string          `json:"referenceUrl"`
	Difficulty   string          `json:"difficulty"`
	Tags         []string        `json:"tags,omitempty"`
	SectionID    string          `json:"sectionId,omitempty"`
	Progress     progress.Record `json:"progress"`
	Review       string          `json:"review"`
}

func (s *Server) view(e catalog.Entry) EntryView {
	rec := s.tracker.Record(e.ID)
	return EntryView{
		ID:           e.ID,
		Title:        e.Title,
		ReferenceURL: e.ReferenceURL,
		Difficulty:   string(e.Difficulty),
		Tags:         e.Tags,
		SectionID:    e.SectionID,
		Progress:     rec,
		Review:       string(spacedrep.Status(rec, s.tracker.Now())),
	}
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, err := query.ParseFilter(q.Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sort, err := query.ParseSort(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var entries []catalog.Entry
	if seed := q.Get("seed"); seed != "" {
		n, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "seed must be an unsigned integer")
			return
		}
		engine := &query.Engine{Rand: rand.New(rand.NewPCG(n, n)), Tag: s.tracker.Engine().Tag}
		entries = engine.Query(s.tracker.Catalog().Entries, s.tracker.Store().Snapshot(), filter, sort, s.tracker.Now())
	} else {
		entries = s.tracker.Query(filter, sort)
	}

	views := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, s.view(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": views,
		"filter":  filter.String(),
		"sort":    sort.String(),
	})
}

// lookup resolves the {id} path value, writing a 404 when it is unknown.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (catalog.Entry, bool) {
	e, err := s.tracker.Resolve(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "entry not found")
		return catalog.Entry{}, false
	}
	return e, true
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(e))
}

// DoneRequest is the request body for PUT /entries/{id}/done.
type DoneRequest struct {
	Done *bool `json:"done"`
}

func (s *Server) setDone(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req DoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Done == nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.tracker.SetDone(r.Context(), e.ID, *req.Done); err != nil {
		s.serverError(w, "set done", err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(e))
}

// ReviewRequest is the request body for POST /entries/{id}/review.
type ReviewRequest struct {
	Rating spacedrep.Rating `json:"rating"`
}

func (s *Server) review(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "rating must be one of Again, Hard, Good, Easy")
		return
	}
	if _, err := s.tracker.BeginReview(e.ID).Commit(r.Context(), req.Rating); err != nil {
		if errors.Is(err, spacedrep.ErrInvalidRating) {
			writeError(w, http.StatusBadRequest, "rating must be one of Again, Hard, Good, Easy")
			return
		}
		s.serverError(w, "apply review", err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(e))
}

// NotesRequest is the request body for PUT /entries/{id}/notes.
type NotesRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) setNotes(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req NotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.tracker.SetNotes(r.Context(), e.ID, req.Notes); err != nil {
		s.serverError(w, "set notes", err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(e))
}

func (s *Server) random(w http.ResponseWriter, r *http.Request) {
	e, ok := s.tracker.RandomUnsolved()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"entry": nil, "allSolved": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": s.view(e), "allSolved": false})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.GlobalStats())
}

// SectionView is one row of GET /sections.
type SectionView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Checked  int    `json:"checked"`
	Total    int    `json:"total"`
	Percent  int    `json:"percent"`
	Complete bool   `json:"complete"`
}

func (s *Server) sections(w http.ResponseWriter, r *http.Request) {
	reports := s.tracker.Sections()
	out := make([]SectionView, 0, len(reports))
	for _, rep := range reports {
		out = append(out, SectionView{
			ID:       rep.Section.ID,
			Title:    rep.Section.Title,
			Checked:  rep.Checked,
			Total:    rep.Total,
			Percent:  rep.Percent,
			Complete: rep.Complete(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sections": out})
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	blob, err := s.tracker.Export()
	if err != nil {
		s.serverError(w, "export", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(blob)
}

func (s *Server) importAll(w http.ResponseWriter, r *http.Request) {
	blob, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}
	if err := s.tracker.Import(r.Context(), blob); err != nil {
		if errors.Is(err, store.ErrInvalidFormat) {
			writeError(w, http.StatusBadRequest, "invalid format")
			return
		}
		s.serverError(w, "import", err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.GlobalStats())
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Reset(r.Context()); err != nil {
		s.serverError(w, "reset", err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.GlobalStats())
}

func (s *Server) serverError(w http.ResponseWriter, op string, err error) {
	s.log.Error("request failed", zap.String("op", op), zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
