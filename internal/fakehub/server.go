// Package fakehub provides a fake backend for tests: a health endpoint and a
// SignalR hub speaking the JSON protocol over websockets, with switches to
// inject the failures the realtime client has to survive.
package fakehub

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const recordSeparator = 0x1e

// Server is a running fake backend. API routes live under /api, the hub at /chathub.
type Server struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	healthy         atomic.Bool
	rejectNegotiate atomic.Bool
	rejectUpgrade   atomic.Bool
	skipHandshake   atomic.Bool

	negotiations atomic.Int32
	connections  atomic.Int32
	pings        atomic.Int32

	mu       sync.Mutex
	issued   map[string]bool
	tokens   []string
	conns    map[*websocket.Conn]*sync.Mutex
	redirect string
}

// New starts a healthy server. Close it when done.
func New() *Server {
	s := &Server{
		issued: make(map[string]bool),
		conns:  make(map[*websocket.Conn]*sync.Mutex),
	}
	s.healthy.Store(true)

	r := chi.NewRouter()
	r.Get("/api/health", s.handleHealth)
	r.Post("/chathub/negotiate", s.handleNegotiate)
	r.Get("/chathub", s.handleHub)

	s.srv = httptest.NewServer(r)
	return s
}

// Close drops every connection and shuts the server down.
func (s *Server) Close() {
	s.DropAll()
	s.srv.Close()
}

// URL is the server root.
func (s *Server) URL() string { return s.srv.URL }

// APIURL is the REST base, ending in /api.
func (s *Server) APIURL() string { return s.srv.URL + "/api" }

// HubURL is the hub endpoint.
func (s *Server) HubURL() string { return s.srv.URL + "/chathub" }

// SetHealthy toggles the health endpoint between 200 and 503.
func (s *Server) SetHealthy(ok bool) { s.healthy.Store(ok) }

// RejectNegotiate makes negotiate answer 401.
func (s *Server) RejectNegotiate(reject bool) { s.rejectNegotiate.Store(reject) }

// RejectUpgrade makes the websocket endpoint answer 403.
func (s *Server) RejectUpgrade(reject bool) { s.rejectUpgrade.Store(reject) }

// SkipHandshake makes the hub accept the socket but never acknowledge the handshake.
func (s *Server) SkipHandshake(skip bool) { s.skipHandshake.Store(skip) }

// RedirectTo makes negotiate answer with a redirect to url and accessToken.
// An empty url disables redirection.
func (s *Server) RedirectTo(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirect = url
}

// Negotiations counts negotiate requests.
func (s *Server) Negotiations() int { return int(s.negotiations.Load()) }

// Connections counts completed handshakes.
func (s *Server) Connections() int { return int(s.connections.Load()) }

// Pings counts ping messages received from clients.
func (s *Server) Pings() int { return int(s.pings.Load()) }

// Active is the number of open websocket connections.
func (s *Server) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Tokens returns the bearer tokens seen, in order, on negotiate and upgrade requests.
func (s *Server) Tokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tokens...)
}

// Push sends an invocation of target with args to every connected client.
func (s *Server) Push(target string, args ...any) error {
	if args == nil {
		args = []any{}
	}
	return s.broadcast(map[string]any{"type": 1, "target": target, "arguments": args})
}

// PushRaw writes frame as-is to every connected client.
func (s *Server) PushRaw(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ws, wmu := range s.conns {
		wmu.Lock()
		_ = ws.WriteMessage(websocket.TextMessage, frame)
		wmu.Unlock()
	}
}

// CloseAll sends a hub close message, with errMsg when non-empty, to every client.
func (s *Server) CloseAll(errMsg string) error {
	msg := map[string]any{"type": 7}
	if errMsg != "" {
		msg["error"] = errMsg
	}
	return s.broadcast(msg)
}

// DropAll closes every socket without a close frame.
func (s *Server) DropAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ws := range s.conns {
		_ = ws.Close()
		delete(s.conns, ws)
	}
}

func (s *Server) broadcast(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.PushRaw(append(data, recordSeparator))
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !s.healthy.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleNegotiate(w http.ResponseWriter, r *http.Request) {
	s.negotiations.Add(1)
	s.recordToken(r)

	if s.rejectNegotiate.Load() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	s.mu.Lock()
	redirect := s.redirect
	s.mu.Unlock()
	if redirect != "" {
		s.RedirectTo("")
		writeJSON(w, map[string]any{"url": redirect, "accessToken": "redirected-token"})
		return
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.issued[token] = true
	s.mu.Unlock()

	writeJSON(w, map[string]any{
		"negotiateVersion": 1,
		"connectionId":     uuid.NewString(),
		"connectionToken":  token,
		"availableTransports": []map[string]any{
			{"transport": "WebSockets", "transferFormats": []string{"Text", "Binary"}},
		},
	})
}

func (s *Server) handleHub(w http.ResponseWriter, r *http.Request) {
	s.recordToken(r)

	if s.rejectUpgrade.Load() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if id := r.URL.Query().Get("id"); id != "" {
		s.mu.Lock()
		ok := s.issued[id]
		delete(s.issued, id)
		s.mu.Unlock()
		if !ok {
			http.Error(w, "unknown connection id", http.StatusNotFound)
			return
		}
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	go s.serve(ws)
}

func (s *Server) serve(ws *websocket.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.conns, ws)
		s.mu.Unlock()
		_ = ws.Close()
	}()

	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, frame, err := ws.ReadMessage()
	if err != nil || !bytes.Contains(frame, []byte(`"protocol":"json"`)) {
		return
	}
	_ = ws.SetReadDeadline(time.Time{})

	if s.skipHandshake.Load() {
		// hold the socket open until the client gives up
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}

	wmu := &sync.Mutex{}
	s.mu.Lock()
	s.conns[ws] = wmu
	wmu.Lock()
	err = ws.WriteMessage(websocket.TextMessage, []byte{'{', '}', recordSeparator})
	wmu.Unlock()
	s.mu.Unlock()
	if err != nil {
		return
	}
	s.connections.Add(1)

	for {
		_, frame, err := ws.ReadMessage()
		if err != nil {
			return
		}
		for _, record := range bytes.Split(frame, []byte{recordSeparator}) {
			if bytes.Contains(record, []byte(`"type":6`)) {
				s.pings.Add(1)
			}
		}
	}
}

func (s *Server) recordToken(r *http.Request) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return
	}
	s.mu.Lock()
	s.tokens = append(s.tokens, token)
	s.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
