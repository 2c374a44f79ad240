package testutil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"taskdash/internal/service"
)

// Server serves the task service REST contract over a FakeService.
// Protected routes require a bearer token issued by /login or added with
// Authorize.
type Server struct {
	*httptest.Server

	svc *FakeService

	mu       sync.Mutex
	tokens   map[string]bool
	requests []string
	headers  []string
}

// NewServer starts a Server. Callers must Close it.
func NewServer(svc *FakeService) *Server {
	s := &Server{svc: svc, tokens: make(map[string]bool)}

	r := chi.NewRouter()
	r.Use(s.trace)
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
		r.Group(func(r chi.Router) {
			r.Use(s.requireBearer)
			r.Get("/tasks", s.handleList)
			r.Post("/tasks", s.handleCreate)
			r.Get("/tasks/deleted", s.handleListDeleted)
			r.Put("/tasks/restore/{id}", s.handleRestore)
			r.Put("/tasks/{id}", s.handleUpdate)
			r.Delete("/tasks/{id}", s.handleDelete)
		})
	})

	s.Server = httptest.NewServer(r)
	return s
}

// APIURL returns the base URL clients should be configured with.
func (s *Server) APIURL() string {
	return s.Server.URL + "/api"
}

// Authorize accepts token on protected routes.
func (s *Server) Authorize(token string) {
	s.mu.Lock()
	s.tokens[token] = true
	s.mu.Unlock()
}

// Requests returns "METHOD /path" for every request received.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// AuthHeaders returns the Authorization header of every request received.
func (s *Server) AuthHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.headers...)
}

func (s *Server) trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.headers = append(s.headers, r.Header.Get("Authorization"))
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		valid := ok && s.tokens[token]
		s.mu.Unlock()
		if !valid {
			writeErrorJSON(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds service.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid login data")
		return
	}
	token, err := s.svc.Login(r.Context(), creds)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.Authorize(token)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg service.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid registration data")
		return
	}
	if err := s.svc.Register(r.Context(), reg); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.svc.ListTasks(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleListDeleted(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.svc.ListDeletedTasks(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.NewTask
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid task data")
		return
	}
	task, err := s.svc.CreateTask(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	patch, err := decodePatch(r)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid task data")
		return
	}
	task, err := s.svc.UpdateTask(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task moved to recycle bin"})
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RestoreTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task restored"})
}

// decodePatch reads a partial update. A JSON null due date clears it.
func decodePatch(r *http.Request) (service.TaskPatch, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return service.TaskPatch{}, err
	}
	var p service.TaskPatch
	if v, ok := raw["title"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return p, err
		}
		p.Title = &s
	}
	if v, ok := raw["description"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return p, err
		}
		p.Description = &s
	}
	if v, ok := raw["completed"]; ok {
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			return p, err
		}
		p.Completed = &b
	}
	if v, ok := raw["dueDate"]; ok {
		if string(v) == "null" {
			p.ClearDueDate = true
		} else {
			var d service.Date
			if err := json.Unmarshal(v, &d); err != nil {
				return p, err
			}
			p.DueDate = &d
		}
	}
	return p, nil
}

func writeServiceError(w http.ResponseWriter, err error) {
	var re *service.RequestError
	switch {
	case errors.As(err, &re) && re.Status != 0 && re.Message != "":
		writeErrorJSON(w, re.Status, re.Message)
	case errors.Is(err, service.ErrUnauthorized):
		writeErrorJSON(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, service.ErrNotFound):
		writeErrorJSON(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, context.Canceled):
		writeErrorJSON(w, http.StatusServiceUnavailable, "Request cancelled")
	default:
		writeErrorJSON(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
