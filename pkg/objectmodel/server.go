// Object model server: network-queryable diagnostics.
//
// Exposes the shaper configuration and move diagnostics the way the
// firmware's object model does: an HTTP endpoint for one-shot queries
// and a websocket endpoint accepting small JSON-RPC style requests,
// so a web UI can poll live state and push configuration commands.
//
// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package objectmodel

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Caribou3d/RepRapFirmware/pkg/log"
)

// Host is the view of the motion host the server queries. Both methods
// must be safe to call from the server goroutine.
type Host interface {
	// ObjectModel returns a snapshot of the diagnostics tree.
	ObjectModel() map[string]any

	// ExecuteGCode runs one command line and returns its reply text.
	ExecuteGCode(line string) (string, error)
}

// Server serves the object model over HTTP and websocket.
type Server struct {
	host   Host
	addr   string
	logger *log.Logger

	httpServer *http.Server
	wsUpgrader websocket.Upgrader

	mu        sync.Mutex
	wsClients map[*websocket.Conn]struct{}
}

// New creates a server for the given host. logger may be nil.
func New(host Host, addr string, logger *log.Logger) *Server {
	return &Server{
		host:      host,
		addr:      addr,
		logger:    logger,
		wsClients: make(map[*websocket.Conn]struct{}),
		wsUpgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start begins serving. It returns once the listener is running; the
// server itself runs on its own goroutine until Stop.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/rr_model", s.handleModel)
	mux.HandleFunc("/websocket", s.handleWebSocket)

	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("object model server: %v", err)
		}
	}()
	s.logger.Infof("object model server listening on %s", s.addr)
	return nil
}

// Stop shuts the server down and closes all websocket clients.
func (s *Server) Stop() error {
	s.mu.Lock()
	for conn := range s.wsClients {
		conn.Close()
	}
	s.wsClients = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// handleModel answers a one-shot object model query.
func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"result": s.host.ObjectModel(),
	})
}

// wsRequest is one websocket request frame.
type wsRequest struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Params struct {
		Script string `json:"script,omitempty"`
	} `json:"params"`
}

// wsResponse is the reply frame.
type wsResponse struct {
	ID     int64  `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// handleWebSocket upgrades the connection and serves request frames
// until the client disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}
	s.mu.Lock()
	s.wsClients[conn] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.wsClients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		resp := s.serve(req)
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

// serve executes one request frame.
func (s *Server) serve(req wsRequest) wsResponse {
	switch req.Method {
	case "objectmodel.query":
		return wsResponse{ID: req.ID, Result: s.host.ObjectModel()}

	case "gcode.execute":
		reply, err := s.host.ExecuteGCode(req.Params.Script)
		if err != nil {
			return wsResponse{ID: req.ID, Error: err.Error()}
		}
		return wsResponse{ID: req.ID, Result: reply}

	default:
		return wsResponse{ID: req.ID, Error: "unknown method: " + req.Method}
	}
}
