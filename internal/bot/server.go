package bot

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	healthTimeout = 2 * time.Second
	maxBodyBytes  = 1 << 20
)

// Server exposes the interactions webhook and operational endpoints.
type Server struct {
	bot       *Bot
	publicKey ed25519.PublicKey
	logger    *slog.Logger
	router    chi.Router
}

// NewServer creates a Server that verifies requests against publicKey.
func NewServer(b *Bot, publicKey ed25519.PublicKey) *Server {
	s := &Server{
		bot:       b,
		publicKey: publicKey,
		logger:    b.logger,
		router:    chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Post("/interactions", s.handleInteraction)
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/", s.handleInstall)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleInteraction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if !discordgo.VerifyInteraction(r, s.publicKey) {
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	var interaction discordgo.Interaction
	if err := json.NewDecoder(r.Body).Decode(&interaction); err != nil {
		s.logger.Warn("failed to decode interaction", "error", err)
		http.Error(w, "malformed interaction", http.StatusBadRequest)
		return
	}

	responder := NewWebhookResponder()
	if err := s.bot.Dispatch(r.Context(), &interaction, responder); err != nil {
		s.logger.Error("failed to dispatch interaction", "interaction_id", interaction.ID, "error", err)
	}

	response := responder.Response()
	if response == nil {
		http.Error(w, "no response produced", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("failed to encode interaction response",
			"interaction_id", interaction.ID,
			"error", err,
		)
		return
	}

	// Follow-ups edit messages Discord only knows about once it has our reply.
	if err := http.NewResponseController(w).Flush(); err != nil {
		s.logger.Debug("failed to flush interaction response", "error", err)
	}
	s.bot.RunAfterResponse(responder.Tasks())
}

// HealthResponse is the body returned by the health endpoint.
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	components := make(map[string]string)
	overallStatus := "healthy"

	for name, check := range s.bot.HealthChecks() {
		if err := check(ctx); err != nil {
			s.logger.Warn("health check failed", "component", name, "error", err)
			components[name] = "unhealthy"
			overallStatus = "degraded"
			continue
		}
		components[name] = "healthy"
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Components: components,
	}); err != nil {
		s.logger.Error("failed to encode health response", "error", err)
	}
}

// handleInstall redirects to the OAuth2 page that adds the application to a server.
func (s *Server) handleInstall(w http.ResponseWriter, r *http.Request) {
	target := "https://discord.com/oauth2/authorize?client_id=" + url.QueryEscape(s.bot.config.AppID)
	http.Redirect(w, r, target, http.StatusFound)
}
