package server

import "net/http"

// registerRoutes attaches all API routes to the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api", s.handleRoot)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
}
