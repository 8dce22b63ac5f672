// internal/httpserver/server.go
//
// HTTP server wiring for the Third Edge backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Room endpoints: POST /api/create, POST /api/join.
//   - Player endpoints (require player token): POST /api/action, GET /api/poll.
//   - Signed player tokens: create/join mint an HS256 JWT binding the player
//     id to the room; action/poll accept only that token, so a caller can
//     never act as a player it was not issued.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled.
//   - Engine rejections map to HTTP statuses by kind; the body always carries
//     the stable reason code as {"error":"<code>"}.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/thirdedge/go-server/internal/dispatch"
	"github.com/thirdedge/go-server/internal/game"
)

// Server bundles the router and the action dispatcher.
type Server struct {
	r *chi.Mux
	d *dispatch.Dispatcher
}

// New constructs a Server, installs middleware, and registers routes.
func New(d *dispatch.Dispatcher) *Server {
	s := &Server{r: chi.NewRouter(), d: d}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"third-edge-go","endpoints":["/health","POST /api/create","POST /api/join","POST /api/action","GET /api/poll"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Room lifecycle — public
	s.r.Post("/api/create", s.handleCreate)
	s.r.Post("/api/join", s.handleJoin)

	// Gameplay — require a player token
	s.r.With(s.requirePlayer()).Post("/api/action", s.handleAction)
	s.r.With(s.requirePlayer()).Get("/api/poll", s.handlePoll)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ ROOMS --------------------------------------

// sessionRes is the payload returned by create/join: the seat plus the signed
// token the client must present for action/poll.
type sessionRes struct {
	Code      string `json:"code"`
	PlayerID  string `json:"playerId"`
	PlayerNum int    `json:"playerNum"`
	Token     string `json:"token"`
}

// handleCreate allocates a new waiting room and seat 1.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	sess, err := s.d.CreateGame(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	s.writeSession(w, sess)
}

// joinReq is the payload for POST /api/join.
type joinReq struct {
	Code string `json:"code"`
}

// handleJoin seats player 2 in an existing waiting room.
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		http.Error(w, `{"error":"room_code_required"}`, http.StatusBadRequest)
		return
	}
	sess, err := s.d.JoinGame(r.Context(), req.Code)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	s.writeSession(w, sess)
}

// writeSession signs the player token and writes the session payload.
func (s *Server) writeSession(w http.ResponseWriter, sess *dispatch.Session) {
	tok, err := signPlayerToken(sess)
	if err != nil {
		log.Error().Err(err).Msg("sign player token")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(sessionRes{
		Code:      sess.Code,
		PlayerID:  sess.PlayerID,
		PlayerNum: sess.PlayerNum,
		Token:     tok,
	})
}

// ------------------------------ GAMEPLAY -----------------------------------

// actionReq is the payload for POST /api/action. Data's shape depends on the
// action type and is decoded into the matching typed variant.
type actionReq struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// handleAction decodes the typed action and submits it through the dispatcher.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	seat := seatFrom(r)
	var req actionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Action == "" {
		http.Error(w, `{"error":"missing_fields"}`, http.StatusBadRequest)
		return
	}
	act, err := decodeAction(req.Action, req.Data)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if err := s.d.Submit(r.Context(), seat.Code, seat.PlayerID, act); err != nil {
		writeEngineError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// handlePoll returns the requesting player's view of the game.
func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	seat := seatFrom(r)
	view, err := s.d.View(r.Context(), seat.Code, seat.PlayerID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(view)
}

// decodeAction maps a wire action type plus raw payload to its typed variant.
func decodeAction(action string, data json.RawMessage) (game.Action, error) {
	switch game.ActionType(action) {
	case game.ActionRoster:
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return nil, game.Reject(game.ErrBadPayload, "invalid_roster")
		}
		return game.RosterAction{Cards: ids}, nil
	case game.ActionHand:
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return nil, game.Reject(game.ErrBadPayload, "invalid_hand")
		}
		return game.HandAction{Cards: ids}, nil
	case game.ActionPlay:
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return nil, game.Reject(game.ErrBadPayload, "invalid_card")
		}
		return game.PlayAction{Card: id}, nil
	case game.ActionNextMatch:
		return game.NextMatchAction{}, nil
	default:
		return nil, game.Reject(game.ErrBadPayload, "unsupported_action")
	}
}

// writeEngineError maps an engine error kind to an HTTP status and writes the
// stable reason code.
func writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, game.ErrWrongPhase), errors.Is(err, game.ErrBadPayload):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrConflict):
		status = http.StatusConflict
	}
	body, _ := json.Marshal(map[string]string{"error": game.ReasonCode(err)})
	http.Error(w, string(body), status)
}
