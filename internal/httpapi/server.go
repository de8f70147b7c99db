// Package httpapi is the HTTP surface over the analysis engine, the
// session store and the advisor flow. It owns no business rules: handlers
// validate transport concerns and delegate.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/joelkehle/costcoach/internal/advisor"
	"github.com/joelkehle/costcoach/internal/costanalysis"
	"github.com/joelkehle/costcoach/internal/session"
)

type Config struct {
	Store session.Store
	Coach advisor.Coach // nil: deterministic template notes only
	PDF   *PDFRenderer  // nil: report.pdf responds 503
	Clock func() time.Time
}

type Server struct {
	store session.Store
	flow  *advisor.Flow
	pdf   *PDFRenderer
	clock func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewServer(cfg Config) http.Handler {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	s := &Server{
		store: cfg.Store,
		flow:  advisor.NewFlow(cfg.Coach, cfg.Clock),
		pdf:   cfg.PDF,
		clock: cfg.Clock,
		locks: map[string]*sync.Mutex{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/archetypes", s.handleArchetypes)
	mux.HandleFunc("/v1/analyses", s.handleAnalyses)
	mux.HandleFunc("/v1/chat", s.handleChat)
	mux.HandleFunc("/v1/sessions", s.handleListSessions)
	mux.HandleFunc("/v1/sessions/", s.handleSession)
	mux.HandleFunc("/v1/reports", s.handleReports)
	return withTracing(mux)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	var se *session.Error
	if errors.As(err, &se) {
		writeJSON(w, se.Status, map[string]any{
			"ok": false,
			"error": map[string]any{
				"code":    se.Code,
				"message": se.Message,
			},
		})
		return
	}
	log.Printf("httpapi: internal error: %v", err)
	writeJSON(w, 500, map[string]any{
		"ok": false,
		"error": map[string]any{
			"code":    session.CodeInternal,
			"message": err.Error(),
		},
	})
}

func writeValidationError(w http.ResponseWriter, message string) {
	writeJSON(w, 400, map[string]any{
		"ok": false,
		"error": map[string]any{
			"code":    session.CodeValidation,
			"message": message,
		},
	})
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return json.Unmarshal([]byte("{}"), dst)
	}
	blob, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(blob) == 0 {
		blob = []byte("{}")
	}
	return json.Unmarshal(blob, dst)
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// sessionLock serializes all work on one session id. Sessions are cheap and
// mostly short-lived; the lock map is never pruned.
func (s *Server) sessionLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

func (s *Server) handleArchetypes(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	type archetypeView struct {
		ID     costanalysis.Archetype   `json:"id"`
		Label  string                   `json:"label"`
		Fields []costanalysis.FieldSpec `json:"fields"`
	}
	out := make([]archetypeView, 0, 4)
	for _, a := range costanalysis.Archetypes() {
		fields, _ := costanalysis.SchemaFor(a)
		out = append(out, archetypeView{ID: a, Label: costanalysis.ArchetypeLabel(a), Fields: fields})
	}
	writeJSON(w, 200, out)
}

func (s *Server) handleAnalyses(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Archetype string         `json:"archetype"`
		Input     map[string]any `json:"input"`
		SessionID string         `json:"session_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, "invalid JSON body: "+err.Error())
		return
	}

	// Validation problems are data, not transport errors: the envelope is
	// returned with 200 and a non-empty errors list.
	result := costanalysis.Analyze(req.Archetype, req.Input)

	if id := strings.TrimSpace(req.SessionID); id != "" {
		lock := s.sessionLock(id)
		lock.Lock()
		defer lock.Unlock()
		sess, err := s.store.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		sess.Archetype = result.Archetype
		sess.LastResult = &result
		if result.OK() {
			sess.State = session.StateDone
		}
		if err := s.store.Save(r.Context(), sess); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, 200, result)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	var req struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, "invalid JSON body: "+err.Error())
		return
	}

	var sess *session.Session
	var err error
	if id := strings.TrimSpace(req.SessionID); id != "" {
		lock := s.sessionLock(id)
		lock.Lock()
		defer lock.Unlock()
		sess, err = s.store.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		s.chatTurn(w, r, sess, req.Message)
		return
	}

	sess, err = s.store.Create(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	lock := s.sessionLock(sess.ID)
	lock.Lock()
	defer lock.Unlock()
	s.chatTurn(w, r, sess, req.Message)
}

func (s *Server) chatTurn(w http.ResponseWriter, r *http.Request, sess *session.Session, message string) {
	reply, err := s.flow.Advance(r.Context(), sess, message)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{
		"session_id": sess.ID,
		"reply":      reply.Text,
		"done":       reply.Done,
		"result":     reply.Result,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	summaries, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"sessions": summaries})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	switch {
	case strings.HasSuffix(rest, "/report.pdf"):
		s.handleSessionReportPDF(w, r, strings.TrimSuffix(rest, "/report.pdf"))
	case strings.HasSuffix(rest, "/report"):
		s.handleSessionReport(w, r, strings.TrimSuffix(rest, "/report"))
	case rest != "" && !strings.Contains(rest, "/"):
		s.handleSessionByID(w, r, rest)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *Server) handleSessionByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		sess, err := s.store.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, sess)
	case http.MethodDelete:
		if err := s.store.Delete(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) sessionReport(ctx context.Context, id string) (string, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if sess.LastResult == nil {
		return "", session.NewInvalidSession("no analysis has run for this session yet")
	}
	return costanalysis.BuildReport(*sess.LastResult, s.clock()), nil
}

func (s *Server) handleSessionReport(w http.ResponseWriter, r *http.Request, id string) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	report, err := s.sessionReport(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = io.WriteString(w, report)
}

func (s *Server) handleSessionReportPDF(w http.ResponseWriter, r *http.Request, id string) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	report, err := s.sessionReport(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if s.pdf == nil {
		writeError(w, &session.Error{Code: session.CodeUnavailable, Message: "PDF rendering not configured", Status: 503})
		return
	}
	pdf, err := s.pdf.Render(r.Context(), report)
	if err != nil {
		log.Printf("httpapi: pdf render failed: %v", err)
		writeError(w, &session.Error{Code: session.CodeUnavailable, Message: "PDF rendering unavailable", Status: 503})
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="analisis-costos.pdf"`)
	_, _ = w.Write(pdf)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Archetype string         `json:"archetype"`
		Input     map[string]any `json:"input"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, "invalid JSON body: "+err.Error())
		return
	}
	result := costanalysis.Analyze(req.Archetype, req.Input)
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = io.WriteString(w, costanalysis.BuildReport(result, s.clock()))
}
