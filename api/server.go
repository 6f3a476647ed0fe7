package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/wricardo/mcp-training/minesweeper/game/engine"
	"github.com/wricardo/mcp-training/minesweeper/game/service"
	"github.com/wricardo/mcp-training/minesweeper/logger"
	"github.com/wricardo/mcp-training/minesweeper/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	metrics *Metrics
}

// NewServer creates a new API server. hub may be nil, in which case updates
// are not broadcast and /ws is unavailable.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		metrics: NewMetrics(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.metrics.middleware)

	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/start", s.handleStart).Methods("POST")
	api.HandleFunc("/sessions/{id}/reveal", s.handleReveal).Methods("POST")
	api.HandleFunc("/sessions/{id}/mark", s.handleMark).Methods("POST")
	api.HandleFunc("/sessions/{id}/bulk", s.handleBulk).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Metrics returns the server's collectors
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{"error": message, "code": status})
}

// statusFor maps service and engine errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrOutOfBounds),
		errors.Is(err, engine.ErrInvalidConfiguration),
		errors.Is(err, service.ErrInvalidConfig),
		errors.Is(err, service.ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrGameOver), errors.Is(err, engine.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	}
	respondError(w, status, err.Error())
}

func (s *Server) broadcast(sessionID string, state *engine.GameState) {
	if s.hub != nil && state != nil {
		s.hub.BroadcastToSession(sessionID, state)
	}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID   string `json:"config_id,omitempty"`
		ConfigName string `json:"config_name,omitempty"` // Deprecated, use config_id
	}

	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	configID := req.ConfigID
	if configID == "" {
		configID = req.ConfigName
	}

	session, err := s.service.CreateSession(r.Context(), configID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.metrics.sessionCreated()

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy := query.Get("sort") // "created" or "accessed" (default)
	order := query.Get("order") // "asc" or "desc" (default)
	if sortBy != "created" {
		sortBy = "accessed"
	}
	if order != "asc" {
		order = "desc"
	}
	if configName := query.Get("config"); configName != "" {
		filtered := sessions[:0]
		for _, sess := range sessions {
			if sess.ConfigName == configName {
				filtered = append(filtered, sess)
			}
		}
		sessions = filtered
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}
		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l < len(sessions) {
		sessions = sessions[:l]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, websocket.EventDeleted, nil)
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetGameState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

type positionRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

func decodePosition(r *http.Request) (int, int, error) {
	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return 0, 0, errors.New("invalid request body")
	}
	if req.X == nil || req.Y == nil {
		return 0, 0, errors.New("both x and y are required")
	}
	return *req.X, *req.Y, nil
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	result, err := s.service.Start(r.Context(), sessionID)
	s.finishAction(w, sessionID, engine.ActionStart, result, err)
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	x, y, err := decodePosition(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.Reveal(r.Context(), sessionID, x, y)
	s.finishAction(w, sessionID, engine.ActionReveal, result, err)
}

func (s *Server) handleMark(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	x, y, err := decodePosition(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.Mark(r.Context(), sessionID, x, y)
	s.finishAction(w, sessionID, engine.ActionMark, result, err)
}

// finishAction records metrics, broadcasts and writes the response for a
// single command.
func (s *Server) finishAction(w http.ResponseWriter, sessionID, action string, result *service.ActionResult, err error) {
	var state *engine.GameState
	if result != nil {
		state = result.GameState
	}
	s.metrics.action(action, err, state)

	if err != nil {
		logger.Debug("action rejected", "session_id", sessionID, "action", action, "error", err)
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, state)
	logger.Info("action", "session_id", sessionID, "action", action,
		"revealed", len(result.Revealed), "state", state.State)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Actions []service.BulkAction `json:"actions"`
		Reset   bool                 `json:"reset,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.BulkActions(r.Context(), sessionID, req.Actions, req.Reset)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	for _, step := range result.Steps {
		var stepErr error
		if !step.Success {
			stepErr = errors.New(step.Error)
		}
		s.metrics.action(step.Action, stepErr, nil)
	}
	if result.GameState != nil && result.GameState.State.IsTerminal() && result.ActionsExecuted > 0 {
		s.metrics.gamesFinished.WithLabelValues(string(result.GameState.State)).Inc()
	}

	s.broadcast(sessionID, result.GameState)
	logger.Info("bulk actions", "session_id", sessionID,
		"executed", result.ActionsExecuted, "requested", result.RequestedActions,
		"stop", result.StopReasonCode, "revealed", result.RevealedTotal)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Reset(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, state)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Game reset successfully",
		"state":   state,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		opts.Page = p
	}
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		opts.Limit = l
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetMoveHistory(r.Context(), mux.Vars(r)["id"], opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if configs == nil {
		configs = []*service.ConfigInfo{}
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	config, err := s.service.LoadConfig(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, config)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		engine.GameConfig
		ConfigID string `json:"config_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	gameConfig := req.GameConfig
	if err := engine.ValidateGameConfig(&gameConfig); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	configID := req.ConfigID
	if configID == "" {
		configID = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(gameConfig.Name), " ", "_"))
	}

	if err := s.service.SaveConfig(r.Context(), configID, &gameConfig); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": configID,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket updates disabled", http.StatusServiceUnavailable)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	state, err := s.service.GetGameState(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID, state)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
