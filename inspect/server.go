// Package inspect serves a running session over HTTP so its state and
// command history can be examined, stepped and undone from outside the
// process. Websocket clients receive a fresh snapshot after every change.
package inspect

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/milk9111/hexskirmish/command"
	"github.com/milk9111/hexskirmish/ecs/component"
	"github.com/milk9111/hexskirmish/scenario"
	"github.com/milk9111/hexskirmish/script"
)

// Server serialises every request against one session.
type Server struct {
	mu       sync.Mutex
	session  *scenario.Session
	producer *script.Producer
	prompt   *command.PromptColumn
	logger   *zap.Logger
	router   *mux.Router

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]struct{}
	upgrader  websocket.Upgrader
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProducer enables POST /api/script.
func WithProducer(p *script.Producer) Option {
	return func(s *Server) {
		s.producer = p
	}
}

// WithPrompt enables POST /api/draw for sessions that wait on drawn columns.
func WithPrompt(p *command.PromptColumn) Option {
	return func(s *Server) {
		s.prompt = p
	}
}

func New(session *scenario.Session, opts ...Option) *Server {
	s := &Server{
		session:  session,
		logger:   zap.NewNop(),
		clients:  make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
	for _, opt := range opts {
		opt(s)
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/figures/{name}", s.handleFigure).Methods(http.MethodGet)
	api.HandleFunc("/step", s.handleStep).Methods(http.MethodPost)
	api.HandleFunc("/undo", s.handleUndo).Methods(http.MethodPost)
	api.HandleFunc("/enqueue", s.handleEnqueue).Methods(http.MethodPost)
	api.HandleFunc("/round/advance", s.handleAdvance).Methods(http.MethodPost)
	api.HandleFunc("/script", s.handleScript).Methods(http.MethodPost)
	api.HandleFunc("/draw", s.handleDraw).Methods(http.MethodPost)
	r.HandleFunc("/ws", s.handleWS)
	r.Use(s.recoverer)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Replace swaps in a new session, e.g. after the scenario file changed.
// producer and prompt may be nil.
func (s *Server) Replace(session *scenario.Session, producer *script.Producer, prompt *command.PromptColumn) {
	s.mu.Lock()
	s.session = session
	s.producer = producer
	s.prompt = prompt
	snap := session.Snapshot()
	s.mu.Unlock()
	s.broadcast(snap)
}

// StepResult answers step, undo and enqueue requests.
type StepResult struct {
	Ran   int               `json:"ran"`
	State scenario.Snapshot `json:"state"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.session.Snapshot()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	history := s.session.Snapshot().History
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	s.mu.Lock()
	v, ok := s.session.FigureView(name)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %q", scenario.ErrUnknownFigure, name))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleStep executes one command, or drains the queue with ?all=true.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("all") == "true"
	s.change(w, func() (int, error) {
		if all {
			return s.session.Run()
		}
		ran, err := s.session.Step()
		if !ran {
			return 0, err
		}
		return 1, nil
	})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.change(w, func() (int, error) {
		if s.session.Undo() {
			return 1, nil
		}
		return 0, nil
	})
}

// handleEnqueue accepts a JSON array of intents.
func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	var intents []scenario.Intent
	if err := json.NewDecoder(r.Body).Decode(&intents); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode intents: %w", err))
		return
	}
	s.change(w, func() (int, error) {
		if err := s.session.EnqueueIntents(intents...); err != nil {
			return 0, err
		}
		return 0, nil
	})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.change(w, func() (int, error) {
		return 0, s.session.Advance(r.Context())
	})
}

func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	s.change(w, func() (int, error) {
		if s.producer == nil {
			return 0, errNoProducer
		}
		cmds, err := s.producer.Produce(r.Context(), s.session)
		if err != nil {
			return 0, err
		}
		s.session.Enqueue(cmds...)
		return 0, nil
	})
}

type drawRequest struct {
	Column string `json:"column"`
}

func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	var req drawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode draw: %w", err))
		return
	}
	col, err := component.ParseTrayColumn(req.Column)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.change(w, func() (int, error) {
		if s.prompt == nil {
			return 0, errNoPrompt
		}
		s.prompt.Provide(col)
		return 0, nil
	})
}

var (
	errNoProducer = errors.New("inspect: no script loaded")
	errNoPrompt   = errors.New("inspect: session does not take drawn columns")
)

// change runs fn under the session lock, answers with the new state and
// pushes it to websocket clients.
func (s *Server) change(w http.ResponseWriter, fn func() (int, error)) {
	ran, snap, err := s.apply(fn)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errNoProducer) || errors.Is(err, errNoPrompt) || errors.Is(err, scenario.ErrCommandFailed) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}

	s.logger.Debug("session changed", zap.Int("ran", ran), zap.Int("history", len(snap.History)))
	writeJSON(w, http.StatusOK, StepResult{Ran: ran, State: snap})
	s.broadcast(snap)
}

func (s *Server) apply(fn func() (int, error)) (int, scenario.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ran, err := fn()
	if err != nil {
		return 0, scenario.Snapshot{}, err
	}
	return ran, s.session.Snapshot(), nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	snap := s.session.Snapshot()
	s.mu.Unlock()

	s.clientsMu.Lock()
	s.clients[conn] = struct{}{}
	err = conn.WriteJSON(snap)
	s.clientsMu.Unlock()
	if err != nil {
		s.drop(conn)
		return
	}
	s.logger.Debug("websocket client connected", zap.String("remote", r.RemoteAddr))

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.drop(conn)
			return
		}
	}
}

func (s *Server) drop(conn *websocket.Conn) {
	s.clientsMu.Lock()
	delete(s.clients, conn)
	s.clientsMu.Unlock()
	_ = conn.Close()
}

func (s *Server) broadcast(snap scenario.Snapshot) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteJSON(snap); err != nil {
			s.logger.Debug("websocket write failed", zap.Error(err))
			delete(s.clients, conn)
			_ = conn.Close()
		}
	}
}

// recoverer turns a fatal engine failure into a 500 instead of killing the
// connection without an answer.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.logger.Error("request panicked", zap.String("path", r.URL.Path), zap.Any("panic", v))
				writeError(w, http.StatusInternalServerError, fmt.Errorf("%v", v))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}
