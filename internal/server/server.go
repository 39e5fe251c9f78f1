// Package server exposes the ChefBoard REST API.
package server

import (
	"encoding/json"
	"log"
	"net/http"

	"chefboard/internal/family"
	"chefboard/internal/feedback"
	"chefboard/internal/grocery"
	"chefboard/internal/metrics"
	"chefboard/internal/parser"
	"chefboard/internal/recipe"
	"chefboard/internal/uploads"
)

// Server wires the API handlers to their backing services.
type Server struct {
	recipes  *recipe.Repository
	parser   *parser.Parser
	grocery  *grocery.Generator
	lists    *grocery.Repository
	feedback *feedback.Repository
	families *family.Repository
	invites  family.InviteSigner
	uploads  *uploads.Storage
	metrics  *metrics.Store
}

// New creates a Server.
func New(
	recipes *recipe.Repository,
	recipeParser *parser.Parser,
	groceryGen *grocery.Generator,
	lists *grocery.Repository,
	feedbackRepo *feedback.Repository,
	families *family.Repository,
	invites family.InviteSigner,
	uploadStore *uploads.Storage,
	metricsStore *metrics.Store,
) *Server {
	return &Server{
		recipes:  recipes,
		parser:   recipeParser,
		grocery:  groceryGen,
		lists:    lists,
		feedback: feedbackRepo,
		families: families,
		invites:  invites,
		uploads:  uploadStore,
		metrics:  metricsStore,
	}
}

// RegisterHandlers registers all API routes on the mux.
func (s *Server) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/recipes", s.handleListRecipes)
	mux.HandleFunc("POST /api/recipes", s.handleCreateRecipe)
	mux.HandleFunc("PUT /api/recipes/{id}", s.handleUpdateRecipe)
	mux.HandleFunc("DELETE /api/recipes/{id}", s.handleDeleteRecipe)
	mux.HandleFunc("POST /api/recipes/bulk", s.handleBulkRecipes)

	mux.HandleFunc("POST /api/parse-recipe", s.handleParseRecipe)
	mux.HandleFunc("POST /api/generate-grocery-list", s.handleGenerateGroceryList)
	mux.HandleFunc("GET /api/grocery-lists/latest", s.handleLatestGroceryList)
	mux.HandleFunc("POST /api/favorites", s.handleToggleFavorite)

	mux.HandleFunc("POST /api/uploads", s.handleUpload)
	mux.HandleFunc("GET /api/uploads/{key}", s.handleGetUpload)

	mux.HandleFunc("POST /api/feedback", s.handleSubmitFeedback)
	mux.HandleFunc("GET /api/feedback", s.handleListFeedback)

	mux.HandleFunc("POST /api/families", s.handleCreateFamily)
	mux.HandleFunc("GET /api/families/{id}", s.handleGetFamily)
	mux.HandleFunc("DELETE /api/families/{id}", s.handleDeleteFamily)
	mux.HandleFunc("POST /api/families/{id}/invite", s.handleInvite)
	mux.HandleFunc("POST /api/families/join", s.handleJoinFamily)

	mux.HandleFunc("GET /api/admin/stats", s.handleAdminStats)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
