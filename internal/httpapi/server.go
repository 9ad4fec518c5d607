// Package httpapi is the inbound OpenAI-compatible HTTP surface: a
// net/http server exposing POST /v1/chat/completions and GET /healthz,
// with no router framework in front of it, mirroring the minimal
// net/http + net.Listen wiring this codebase's server entrypoints use.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cursorbridge/cursorbridge/internal/auth"
	"github.com/cursorbridge/cursorbridge/internal/config"
	"github.com/cursorbridge/cursorbridge/internal/cursorclient"
	"github.com/cursorbridge/cursorbridge/internal/cursorerr"
	"github.com/cursorbridge/cursorbridge/internal/cursorproto"
	"github.com/cursorbridge/cursorbridge/internal/diag"
	"github.com/cursorbridge/cursorbridge/internal/models"
	"github.com/cursorbridge/cursorbridge/internal/openai"
	"github.com/cursorbridge/cursorbridge/internal/session"
	"github.com/google/uuid"
)

// Server owns the HTTP listener and the dependencies each request needs to
// open a fresh Cursor session.
type Server struct {
	cfg     config.Config
	creds   *auth.FileStore
	authCli *auth.Client
	catalog *models.Catalog
	diag    *diag.Bus
	log     *slog.Logger

	mux *http.ServeMux
}

func New(cfg config.Config, creds *auth.FileStore, authCli *auth.Client, catalog *models.Catalog, diagBus *diag.Bus, log *slog.Logger) *Server {
	s := &Server{cfg: cfg, creds: creds, authCli: authCli, catalog: catalog, diag: diagBus, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /v1/chat/completions", s.handleChatCompletions)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	return s
}

func (s *Server) ListenAndServe() error {
	s.log.Info("listening", "addr", s.cfg.ListenAddr)
	return http.ListenAndServe(s.cfg.ListenAddr, s.mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req openai.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if req.Model == "" {
		if id, err := s.catalog.DefaultModelID(r.Context()); err == nil {
			req.Model = id
		}
	}

	sessionID := uuid.NewString()
	log := s.log.With("session_id", sessionID, "model", req.Model)

	prompt := openai.FlattenPrompt(req.Messages)
	toolDefs, err := openai.ToMcpToolDefinitions(req.Tools)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid tools: %v", err), http.StatusBadRequest)
		return
	}

	limits := s.catalog.Lookup(req.Model)
	log.Debug("resolved model limits", "context_window", limits.ContextWindow, "max_output", limits.MaxOutputTokens)

	tokenFn := func() string {
		access, err := s.creds.EnsureFresh(r.Context(), s.authCli)
		if err != nil {
			log.Warn("credential refresh failed, using cached access token", "err", err)
			return s.creds.GetAccess()
		}
		return access
	}
	transport := cursorclient.New(s.cfg.BaseURL, tokenFn)

	runRequest := cursorproto.AgentRunRequest{
		ConversationID: sessionID,
		Action: cursorproto.UserMessageAction{
			UserMessage: cursorproto.UserMessage{
				Text:      prompt,
				MessageID: uuid.NewString(),
				Mode:      cursorproto.ModeAgent,
			},
			RequestContext: &cursorproto.RequestContext{
				Env: cursorproto.Env{
					WorkspacePath: s.cfg.WorkspacePath,
					Timezone:      time.Local.String(),
				},
				McpTools: toolDefs,
			},
		},
	}

	sess := session.New(sessionID, transport, session.HeartbeatPolicy{
		IdleNoProgress:     s.cfg.HeartbeatIdleNoProgress,
		MaxBeatsNoProgress: s.cfg.HeartbeatMaxBeatsNoProgress,
		IdleProgress:       s.cfg.HeartbeatIdleProgress,
		MaxBeatsProgress:   s.cfg.HeartbeatMaxBeatsProgress,
	}, s.cfg.RequestTimeout)
	sess.SetDiag(s.diag)

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)

	runErrCh := make(chan error, 1)
	go func() { runErrCh <- sess.Run(ctx, runRequest) }()

	if req.Stream {
		w.Header().Set("content-type", "text/event-stream")
		w.Header().Set("cache-control", "no-cache")
		fw := &flushWriter{w: w, flusher: asFlusher(w)}
		sw := openai.NewWriter(fw, sessionID, req.Model)
		if err := openai.Stream(sw, sess.Events(), sessionID); err != nil {
			log.Warn("stream write failed", "err", err)
		}
	} else {
		resp, _ := openai.Aggregate(sess.Events(), sessionID, sessionID, req.Model)
		w.Header().Set("content-type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}

	// A tool-exec request ends the OpenAI-facing response well before the
	// underlying Cursor session would naturally finish (or starve on
	// heartbeats); cancel it immediately rather than let the background
	// goroutine hold the session open until the request deadline.
	cancel()
	if err := <-runErrCh; err != nil {
		st := cursorerr.ToStatus(err)
		log.Debug("session goroutine ended", "code", st.Code(), "err", st.Message())
	}
}

// flushWriter flushes after every write, since SSE clients expect each
// chunk delivered as its own network write rather than batched behind
// net/http's default buffering.
type flushWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (f *flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if f.flusher != nil {
		f.flusher.Flush()
	}
	return n, err
}

func asFlusher(w http.ResponseWriter) http.Flusher {
	f, _ := w.(http.Flusher)
	return f
}
