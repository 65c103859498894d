package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"trivia-quiz-service/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter mounts the REST endpoints and the websocket play loop.
func NewRouter(service *app.QuizService, ws *WSHandler, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &restHandler{service: service, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", h.categories)
		r.Get("/leaderboard", h.leaderboard)
		r.Delete("/leaderboard", h.clearLeaderboard)
		r.Get("/player", h.playerName)
		r.Put("/player", h.setPlayerName)
	})
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				log.Debug("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

type restHandler struct {
	service *app.QuizService
	log     *zap.Logger
}

type playerPayload struct {
	Name string `json:"name"`
}

func (h *restHandler) categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Categories(r.Context()))
}

func (h *restHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Leaderboard(r.Context())
	if err != nil {
		h.log.Error("list leaderboard", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "leaderboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *restHandler) clearLeaderboard(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearLeaderboard(r.Context()); err != nil {
		h.log.Error("clear leaderboard", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "leaderboard unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *restHandler) playerName(w http.ResponseWriter, r *http.Request) {
	name, err := h.service.PlayerName(r.Context())
	if err != nil {
		h.log.Error("load player name", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "player name unavailable")
		return
	}
	writeJSON(w, http.StatusOK, playerPayload{Name: name})
}

func (h *restHandler) setPlayerName(w http.ResponseWriter, r *http.Request) {
	var body playerPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	name := strings.TrimSpace(body.Name)
	if err := h.service.SetPlayerName(r.Context(), name); err != nil {
		h.log.Error("store player name", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "player name unavailable")
		return
	}
	writeJSON(w, http.StatusOK, playerPayload{Name: name})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Message: message})
}
