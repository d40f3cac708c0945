package chi

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/penwyp/go-claude-meter/internal/application/agent"
	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/penwyp/go-claude-meter/internal/metrics"
	"github.com/penwyp/go-claude-meter/internal/util"
)

const maxBodyBytes = 64 << 10

// Agent is the part of the coordinator the status API drives
type Agent interface {
	Status() agent.Status
	Refresh(ctx context.Context, trigger agent.Trigger) error
	Settings() model.DisplaySettings
	UpdateSettings(settings model.DisplaySettings) error
	SaveCredentials(ctx context.Context, orgID, sessionKey string) error
	TestNotification() error
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type credentialsRequest struct {
	OrgID      string `json:"orgId"`
	SessionKey string `json:"sessionKey"`
}

// Server is the local status API
type Server struct {
	agent  Agent
	router chi.Router
	srv    *http.Server
}

// NewServer builds the router. token, when set, is required as a Bearer
// token on every route except /health and /metrics.
func NewServer(a Agent, listen, token string) *Server {
	s := &Server{agent: a}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())
	r.Use(BearerAuthMiddleware(token))

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/status", s.status)
	r.Post("/refresh", s.refresh)
	r.Get("/settings", s.getSettings)
	r.Put("/settings", s.putSettings)
	r.Put("/credentials", s.putCredentials)
	r.Post("/notifications/test", s.testNotification)

	s.router = r
	s.srv = &http.Server{
		Addr:              listen,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		// a manual refresh waits for the upstream request
		WriteTimeout: 60 * time.Second,
	}
	return s
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens and serves in the background. Listen errors are returned
// synchronously; later serve errors are logged.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	util.LogInfof("Status API listening on http://%s", ln.Addr())

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			util.LogErrorf("Status API stopped: %v", err)
		}
	}()
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.agent.Status())
}

// refresh runs to completion even if the client goes away
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	if err := s.agent.Refresh(context.WithoutCancel(r.Context()), agent.TriggerManual); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.agent.Status())
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.agent.Settings())
}

// putSettings merges the body over the current settings, so a partial
// document only changes the keys it names
func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	settings := s.agent.Settings()
	if err := decodeBody(r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if err := s.agent.UpdateSettings(settings); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.agent.Settings())
}

func (s *Server) putCredentials(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.OrgID == "" || req.SessionKey == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "orgId and sessionKey are required")
		return
	}
	if err := s.agent.SaveCredentials(r.Context(), req.OrgID, req.SessionKey); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) testNotification(w http.ResponseWriter, r *http.Request) {
	if err := s.agent.TestNotification(); err != nil {
		writeError(w, http.StatusInternalServerError, "notification", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	return sonic.Unmarshal(body, v)
}

// statusFor maps an error kind to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrCredentialsMissing):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidSettings):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrTransport), errors.Is(err, model.ErrDecode):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), model.KindName(err), err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		util.LogErrorf("Failed to encode response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Kind: kind})
}
