// Package server exposes the analyzer over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"url-vetting/vetting"
)

// ReadinessProbe reports whether the curated lists have loaded.
type ReadinessProbe interface {
	IsReady() bool
}

type Server struct {
	service *Service
	lists   ReadinessProbe
}

func New(service *Service, lists ReadinessProbe) *Server {
	return &Server{service: service, lists: lists}
}

// Routes returns the router with all endpoints mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.health)
	r.Post("/analyze", s.analyze)
	r.Route("/lists", func(r chi.Router) {
		r.Get("/", s.userLists)
		r.Post("/allow", s.allow)
		r.Post("/deny", s.deny)
	})
	return r
}

type listRequest struct {
	Value string `json:"value"`
}

type okResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ready := s.lists == nil || s.lists.IsReady()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "lists_ready": ready})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, okResponse{Error: "invalid JSON body"})
		return
	}
	resp := s.service.Analyze(r.Context(), req)
	log.Printf("[Server] analyzed %s: %s (%d)", resp.URL, resp.Status, resp.Score)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) allow(w http.ResponseWriter, r *http.Request) {
	s.listWrite(w, r, s.service.Analyzer.AddToAllowList)
}

func (s *Server) deny(w http.ResponseWriter, r *http.Request) {
	s.listWrite(w, r, s.service.Analyzer.MarkUnsafe)
}

func (s *Server) listWrite(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, value string) error) {
	var req listRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, okResponse{Error: "invalid JSON body"})
		return
	}
	if err := op(r.Context(), req.Value); err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			log.Printf("[Server] list update failed for %q: %v", req.Value, err)
		}
		writeJSON(w, status, okResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) userLists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.service.Analyzer.UserLists(r.Context())
	if err != nil {
		log.Printf("[Server] user lists unavailable: %v", err)
		writeJSON(w, http.StatusInternalServerError, okResponse{Error: err.Error()})
		return
	}
	if lists.Allow == nil {
		lists.Allow = []string{}
	}
	if lists.Deny == nil {
		lists.Deny = []string{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Server] encode response: %v", err)
	}
}

func errorStatus(err error) int {
	if errors.Is(err, vetting.ErrEmptyValue) || errors.Is(err, vetting.ErrUnknownList) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
