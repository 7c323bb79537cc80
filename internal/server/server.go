// Package server exposes the meal-planner core over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hearthside/mealplan/internal/config"
	"github.com/hearthside/mealplan/internal/importer"
	"github.com/hearthside/mealplan/internal/ingredient"
	"github.com/hearthside/mealplan/internal/model"
	"github.com/hearthside/mealplan/internal/pantry"
	"github.com/hearthside/mealplan/internal/planner"
	"github.com/hearthside/mealplan/internal/store"
	"github.com/hearthside/mealplan/internal/units"
)

// Server wires the HTTP API to the store, pantry engine, and planner.
type Server struct {
	store   store.Store
	engine  *pantry.Engine
	planner *planner.Service
	cfg     config.ServerConfig
}

// New builds a server over an opened store.
func New(s store.Store, cfg config.ServerConfig) *Server {
	return &Server{
		store:   s,
		engine:  pantry.NewEngine(store.PantryRows{S: s}, s.Capabilities().StructuredQuantity),
		planner: planner.New(s),
		cfg:     cfg,
	}
}

// Router assembles the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(rateLimiter(s.cfg.RatePerSecond, s.cfg.RateBurst))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/parse", s.handleParse)
		r.Post("/convert", s.handleConvert)
		r.Get("/pantry", s.handlePantryList)
		r.Post("/pantry", s.handlePantryAdd)
		r.Post("/pantry/deduct", s.handleDeduct)
		r.Post("/pantry/restock", s.handleRestock)
		r.Post("/recipes", s.handleCreateRecipe)
		r.Post("/plan", s.handlePlan)
		r.Delete("/plan/{id}", s.handleUnplan)
		r.Get("/plan/shortfalls", s.handleShortfalls)
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.Int("port", s.cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

// rateLimiter applies a process-wide token bucket to every request.
func rateLimiter(perSecond float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lines []string `json:"lines"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Lines) == 0 {
		writeError(w, http.StatusBadRequest, "lines is required")
		return
	}

	records := make([]model.IngredientRecord, 0, len(req.Lines))
	for _, line := range req.Lines {
		if rec := ingredient.ParseLine(line); rec != nil {
			records = append(records, *rec)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity float64 `json:"quantity"`
		From     string  `json:"from"`
		To       string  `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := units.Convert(req.Quantity, req.From, req.To)
	if !res.OK {
		writeJSON(w, http.StatusOK, map[string]any{"ok": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "quantity": res.Qty})
}

func (s *Server) handlePantryList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ListPantry(r.Context())
	if err != nil {
		writeInternalError(w, "list pantry", err)
		return
	}
	if rows == nil {
		rows = []model.PantryRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (s *Server) handlePantryAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Quantity string `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	row := importer.NewPantryRow(req.Name, req.Quantity)
	if err := s.store.InsertPantryRow(r.Context(), row); err != nil {
		writeInternalError(w, "insert pantry row", err)
		return
	}
	writeJSON(w, http.StatusCreated, row)
}

// deductRequest carries a pantry mutation in user units; the handler resolves
// the base unit before calling the engine.
type deductRequest struct {
	Key      string  `json:"key"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

func (r deductRequest) toBase() (qty float64, baseUnit string, ok bool) {
	unit := units.Canonical(r.Unit)
	_, base := units.FamilyOf(unit)
	qty, ok = units.ToBase(r.Quantity, unit)
	if !ok || qty <= 0 {
		return 0, "", false
	}
	return qty, base, true
}

func (s *Server) handleDeduct(w http.ResponseWriter, r *http.Request) {
	var req deductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	need, baseUnit, ok := req.toBase()
	if !ok || req.Key == "" {
		writeError(w, http.StatusBadRequest, "key, positive quantity, and resolvable unit are required")
		return
	}

	deducted, err := s.engine.Deduct(r.Context(), req.Key, need, baseUnit)
	if err != nil {
		writeInternalError(w, "deduct", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"needed":    need,
		"deducted":  deducted,
		"base_unit": baseUnit,
	})
}

func (s *Server) handleRestock(w http.ResponseWriter, r *http.Request) {
	var req deductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	qty, baseUnit, ok := req.toBase()
	if !ok || req.Key == "" {
		writeError(w, http.StatusBadRequest, "key, positive quantity, and resolvable unit are required")
		return
	}

	if err := s.engine.Restock(r.Context(), req.Key, qty, baseUnit); err != nil {
		writeInternalError(w, "restock", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"restocked": qty,
		"base_unit": baseUnit,
	})
}

func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string   `json:"title"`
		Servings int      `json:"servings"`
		Lines    []string `json:"lines"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	recipe, err := s.planner.CreateRecipe(r.Context(), req.Title, req.Servings, req.Lines)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, recipe)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RecipeID string `json:"recipe_id"`
		Date     string `json:"date"`
		Slot     string `json:"slot"`
		Servings int    `json:"servings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.planner.Plan(r.Context(), req.RecipeID, req.Date, model.MealSlot(req.Slot), req.Servings)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleUnplan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.planner.Unplan(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed", "id": id})
}

func (s *Server) handleShortfalls(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	items, err := s.planner.Shortfalls(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if items == nil {
		items = []model.ShoppingItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeInternalError(w http.ResponseWriter, action string, err error) {
	zap.L().Error(action+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
