// Package server exposes a client over HTTP so a remote scheduler can fire
// events and re-drive tasks with a recorded ledger.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/maxkimambo/plz/internal/client"
	dipErrors "github.com/maxkimambo/plz/internal/errors"
	"github.com/maxkimambo/plz/internal/ledger"
	"github.com/maxkimambo/plz/internal/logger"
)

const (
	DefaultMaxBodyBytes    = 1 << 20
	DefaultShutdownTimeout = 5 * time.Second

	internalErrorMessage = "INTERNAL SERVER ERROR"
)

// Settings controls the HTTP listener.
type Settings struct {
	Addr            string
	MaxBodyBytes    int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	client   *client.Client
	settings Settings

	mu       sync.RWMutex
	listener net.Listener
}

type callRequest struct {
	Payload json.RawMessage `json:"payload,omitempty"`
	Stack   ledger.Stack    `json:"stack,omitempty"`
}

type callResponse struct {
	Success bool         `json:"success"`
	Result  interface{}  `json:"result"`
	Stack   ledger.Stack `json:"stack"`
}

type errorResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Code    string       `json:"code"`
	Stack   ledger.Stack `json:"stack,omitempty"`
}

type healthResponse struct {
	Status   string `json:"status"`
	ClientID string `json:"clientId"`
}

// New wraps c. Zero settings fall back to defaults.
func New(c *client.Client, settings Settings) *Server {
	if settings.MaxBodyBytes <= 0 {
		settings.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if settings.ShutdownTimeout <= 0 {
		settings.ShutdownTimeout = DefaultShutdownTimeout
	}
	return &Server{client: c, settings: settings}
}

// Handler returns the routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/plz/{task}", s.handleCallTask)
	mux.HandleFunc("POST /api/events/{event}", s.handleFireEvent)
	return mux
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.settings.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.settings.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is done, then drains
// in-flight requests.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	logger.User.Starting(fmt.Sprintf("Listening on %s", listener.Addr()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Op.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.settings.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Addr is the bound address once serving.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		ClientID: s.client.Metadata().ClientID,
	})
}

func (s *Server) handleCallTask(w http.ResponseWriter, r *http.Request) {
	task := r.PathValue("task")

	var req callRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		writeError(w, err, nil)
		return
	}

	var payload interface{}
	if req.Payload != nil {
		payload = req.Payload
	}
	invocation, err := s.client.CallTask(r.Context(), task, payload, req.Stack)
	if err != nil {
		var stack ledger.Stack
		if invocation != nil {
			stack = invocation.Stack
		}
		writeError(w, err, stack)
		return
	}

	writeJSON(w, http.StatusOK, callResponse{
		Success: true,
		Result:  invocation.Result,
		Stack:   invocation.Stack.Clone(),
	})
}

func (s *Server) handleFireEvent(w http.ResponseWriter, r *http.Request) {
	event := r.PathValue("event")

	var payload json.RawMessage
	if err := s.decodeBody(w, r, &payload); err != nil {
		writeError(w, err, nil)
		return
	}

	var body interface{}
	if payload != nil {
		body = payload
	}
	if err := s.client.FireEvent(r.Context(), event, body); err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"success": true})
}

// decodeBody reads an optional JSON body into v. An empty body leaves v
// untouched.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	reader := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer reader.Close()

	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return dipErrors.New(dipErrors.CodeBadRequest, "Payload exceeds limit").
				WithContext("limit", maxErr.Limit)
		}
		return dipErrors.New(dipErrors.CodeBadRequest, "Unable to read body").WithOriginalError(err)
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return dipErrors.New(dipErrors.CodeBadRequest, "Invalid JSON body").WithOriginalError(err)
	}
	return nil
}

func writeError(w http.ResponseWriter, err error, stack ledger.Stack) {
	resp := errorResponse{
		Message: internalErrorMessage,
		Code:    string(dipErrors.CodeUnknownError),
		Stack:   stack,
	}
	if dipErr, ok := dipErrors.AsDIPError(err); ok {
		resp.Message = dipErr.Message
		resp.Code = string(dipErr.Code)
	} else {
		logger.Op.Errorf("Unhandled error: %v", err)
	}
	writeJSON(w, dipErrors.HTTPStatus(err), resp)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
