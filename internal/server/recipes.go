package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"chefboard/internal/recipe"
)

func newRecipeID() string { return uuid.NewString() }

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.recipes.List(r.Context())
	if err != nil {
		log.Printf("Failed to list recipes: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list recipes")
		return
	}
	if recipes == nil {
		recipes = []recipe.Recipe{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"recipes": recipes})
}

func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var rec recipe.Recipe
	if !decodeBody(w, r, &rec) {
		return
	}
	if strings.TrimSpace(rec.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	// Temporary client ids are replaced by a server-assigned identity.
	if rec.ID == "" || recipe.IsTempID(rec.ID) {
		rec.ID = uuid.NewString()
	}
	now := time.Now()
	rec.CreatedAt = ""
	rec.Touch(now)
	rec.AppendVersion("created", now)

	if err := s.recipes.Save(r.Context(), rec); err != nil {
		log.Printf("Failed to create recipe: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save recipe")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := s.recipes.Get(r.Context(), id)
	if err != nil {
		log.Printf("Failed to get recipe %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load recipe")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	var rec recipe.Recipe
	if !decodeBody(w, r, &rec) {
		return
	}
	rec.ID = id
	rec.CreatedAt = existing.CreatedAt
	rec.VersionHistory = existing.VersionHistory
	now := time.Now()
	rec.Touch(now)
	rec.AppendVersion("updated", now)

	if err := s.recipes.Save(r.Context(), rec); err != nil {
		log.Printf("Failed to update recipe %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to save recipe")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.recipes.Delete(r.Context(), id); err != nil {
		log.Printf("Failed to delete recipe %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete recipe")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleBulkRecipes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action  string                     `json:"action"`
		IDs     []string                   `json:"ids"`
		Updates map[string]json.RawMessage `json:"updates"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}

	switch req.Action {
	case "update":
		updated, err := s.recipes.BulkUpdate(r.Context(), req.IDs, req.Updates)
		if err != nil {
			log.Printf("Bulk update failed: %v", err)
			writeError(w, http.StatusInternalServerError, "bulk update failed")
			return
		}
		if updated == nil {
			updated = []recipe.Recipe{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"recipes": updated})
	case "delete":
		if err := s.recipes.BulkDelete(r.Context(), req.IDs); err != nil {
			log.Printf("Bulk delete failed: %v", err)
			writeError(w, http.StatusInternalServerError, "bulk delete failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		writeError(w, http.StatusBadRequest, "action must be update or delete")
	}
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RecipeID string `json:"recipeId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.RecipeID == "" {
		writeError(w, http.StatusBadRequest, "recipeId is required")
		return
	}

	isFavorite, err := s.recipes.ToggleFavorite(r.Context(), req.RecipeID)
	if err != nil {
		log.Printf("Failed to toggle favorite for %s: %v", req.RecipeID, err)
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isFavorite": isFavorite})
}
