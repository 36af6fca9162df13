package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"railfactory/internal/config"
	"railfactory/internal/economy"
	"railfactory/internal/game"
)

// Server exposes the read-only stats surface plus an operator refresh hook.
// The gameplay surface lives in the Discord bot, not here.
type Server struct {
	cfg  config.APIConfig
	log  *slog.Logger
	game *game.Service
	mux  *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, gameSvc *game.Service) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:  cfg,
		log:  logger,
		game: gameSvc,
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/guilds/{id}/leaderboard", s.handleLeaderboard)
		r.Get("/guilds/{id}/rank/{user_id}", s.handleUserRank)
		r.Get("/guilds/{id}/shares", s.handleShares)
		r.Get("/guilds/{id}/totals", s.handleTotals)
		r.Get("/guilds/{id}/purchases", s.handlePurchases)
		r.Post("/guilds/{id}/refresh", s.handleRefresh)
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "id")
	tier := queryInt(r, "tier", 1)
	limit := queryInt(r, "limit", 10)
	rows, err := s.game.TopContributors(r.Context(), guildID, tier, limit)
	if err != nil {
		s.serverError(w, "leaderboard", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tier": tier, "rows": rows})
}

func (s *Server) handleUserRank(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "id")
	userID := chi.URLParam(r, "user_id")
	tier := queryInt(r, "tier", 1)
	row, err := s.game.UserRank(r.Context(), guildID, userID, tier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user has no contribution at this tier")
			return
		}
		s.serverError(w, "user rank", err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleShares(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "id")
	resource := economy.Resource(r.URL.Query().Get("resource"))
	if resource == "" {
		writeError(w, http.StatusBadRequest, "resource query parameter is required")
		return
	}
	rows, err := s.game.ProductionShares(r.Context(), guildID, resource, queryInt(r, "limit", 10))
	if err != nil {
		s.serverError(w, "shares", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resource": resource, "rows": rows})
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	rows, err := s.game.RoleTotals(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.serverError(w, "totals", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (s *Server) handlePurchases(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "id")
	q := r.URL.Query()
	filter := game.PurchaseFilter{
		Role:     economy.Role(q.Get("role")),
		Resource: economy.Resource(q.Get("resource")),
		Limit:    queryInt(r, "limit", 100),
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be RFC3339")
			return
		}
		filter.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "to must be RFC3339")
			return
		}
		filter.To = t
	}
	rows, err := s.game.PurchaseEvents(r.Context(), guildID, filter)
	if err != nil {
		s.serverError(w, "purchases", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "id")
	sum, err := s.game.RefreshGuild(r.Context(), guildID, time.Now())
	if err != nil {
		s.serverError(w, "refresh", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) serverError(w http.ResponseWriter, op string, err error) {
	s.log.Error(op+" failed", "err", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
