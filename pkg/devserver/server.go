// Package devserver is a local stand-in for the remote chat service. It
// serves the chat and lead endpoints the widget talks to.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/mattsolo1/grove-widget/pkg/api"
	"github.com/sirupsen/logrus"
)

var log = grovelogging.NewLogger("grove-widget.devserver")

// Config tunes the server. Zero values select the defaults below.
type Config struct {
	AllowedOrigins   []string
	HistoryLimit     int
	ChatPerMinute    int
	LeadsPerMinute   int
	AssistantTimeout time.Duration
}

const (
	DefaultHistoryLimit     = 12
	DefaultChatPerMinute    = 90
	DefaultLeadsPerMinute   = 5
	DefaultAssistantTimeout = 20 * time.Second
)

func (c Config) withDefaults() Config {
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.ChatPerMinute == 0 {
		c.ChatPerMinute = DefaultChatPerMinute
	}
	if c.LeadsPerMinute == 0 {
		c.LeadsPerMinute = DefaultLeadsPerMinute
	}
	if c.AssistantTimeout <= 0 {
		c.AssistantTimeout = DefaultAssistantTimeout
	}
	return c
}

// Lead is a stored callback request.
type Lead struct {
	api.LeadRequest
	ReceivedAt time.Time
}

// Server routes the widget endpoints.
type Server struct {
	router    *chi.Mux
	cfg       Config
	clinics   *Directory
	assistant Assistant
	history   *HistoryStore
	metrics   *Metrics

	chatLimit *limiterPool
	leadLimit *limiterPool

	mu    sync.Mutex
	leads []Lead
}

// New builds a server answering for clinics with assistant.
func New(cfg Config, clinics *Directory, assistant Assistant) *Server {
	cfg = cfg.withDefaults()
	if clinics == nil {
		clinics = DemoDirectory()
	}
	if assistant == nil {
		assistant = EchoAssistant{}
	}
	s := &Server{
		router:    chi.NewRouter(),
		cfg:       cfg,
		clinics:   clinics,
		assistant: assistant,
		history:   NewHistoryStore(cfg.HistoryLimit),
		metrics:   NewMetrics(),
		chatLimit: newLimiterPool(cfg.ChatPerMinute),
		leadLimit: newLimiterPool(cfg.LeadsPerMinute),
	}

	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestLogger)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	s.router.With(s.rateLimit("chat", s.chatLimit)).Post("/chat", s.handleChat)
	s.router.With(s.rateLimit("leads", s.leadLimit)).Post("/leads", s.handleLead)
	// /lead is kept as an alias for older embeds
	s.router.With(s.rateLimit("leads", s.leadLimit)).Post("/lead", s.handleLead)
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler { return s.router }

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Leads returns a copy of the leads received so far.
func (s *Server) Leads() []Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Lead(nil), s.leads...)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	log.WithFields(logrus.Fields{"addr": addr, "clinics": s.clinics.IDs()}).Info("Development server listening")
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid JSON body")
		return
	}
	clinic, ok := s.clinics.Get(req.ClinicID)
	if !ok {
		writeError(w, http.StatusNotFound, "Clinic not found")
		return
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		writeError(w, http.StatusBadRequest, "Empty message")
		return
	}

	s.history.Append(sessionID, Turn{Role: RoleUser, Content: text})
	resp := api.ChatResponse{SessionID: sessionID, BookingURL: clinic.BookingURL}

	if reply, reason, hit := Guardrail(clinic, text); hit {
		s.history.Append(sessionID, Turn{Role: RoleAssistant, Content: reply})
		s.metrics.chatReplies.WithLabelValues(reason).Inc()
		resp.Reply, resp.Handoff, resp.HandoffReason = reply, true, reason
		writeJSON(w, http.StatusOK, resp)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.AssistantTimeout)
	defer cancel()
	start := time.Now()
	reply, err := s.assistant.Reply(ctx, SystemPrompt(clinic), s.history.Get(sessionID))
	s.metrics.assistantLat.Observe(time.Since(start).Seconds())
	if err != nil {
		log.WithError(err).WithField("session_id", sessionID).Warn("Assistant failed")
		s.metrics.chatReplies.WithLabelValues("error").Inc()
		writeError(w, http.StatusBadGateway, "LLM error: "+err.Error())
		return
	}

	s.history.Append(sessionID, Turn{Role: RoleAssistant, Content: reply})
	s.metrics.chatReplies.WithLabelValues("assistant").Inc()
	resp.Reply = reply
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLead(w http.ResponseWriter, r *http.Request) {
	var req api.LeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid JSON body")
		return
	}
	if _, ok := s.clinics.Get(req.ClinicID); !ok {
		writeError(w, http.StatusNotFound, "Clinic not found")
		return
	}

	s.mu.Lock()
	s.leads = append(s.leads, Lead{LeadRequest: req, ReceivedAt: time.Now()})
	s.mu.Unlock()
	s.metrics.leads.Inc()

	log.WithFields(logrus.Fields{
		"clinic_id":  req.ClinicID,
		"session_id": req.SessionID,
	}).Info("Lead received")
	writeJSON(w, http.StatusOK, api.LeadResponse{OK: true})
}

// rateLimit rejects clients over the pool's budget with 429.
func (s *Server) rateLimit(route string, pool *limiterPool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !pool.Allow(clientKey(r)) {
				s.metrics.rateLimited.WithLabelValues(route).Inc()
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
