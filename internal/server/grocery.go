package server

import (
	"log"
	"net/http"

	"chefboard/internal/recipe"
)

func (s *Server) handleGenerateGroceryList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Recipes []recipe.Recipe `json:"recipes"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Recipes) == 0 {
		writeError(w, http.StatusBadRequest, "recipes are required")
		return
	}

	items, err := s.grocery.Generate(r.Context(), req.Recipes)
	if err != nil {
		log.Printf("Failed to generate grocery list: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to generate grocery list")
		return
	}
	if items == nil {
		items = []recipe.StructuredIngredient{}
	}

	ids := make([]string, 0, len(req.Recipes))
	for _, rec := range req.Recipes {
		if rec.ID != "" {
			ids = append(ids, rec.ID)
		}
	}
	if _, err := s.lists.Save(r.Context(), ids, items); err != nil {
		log.Printf("Warning: failed to persist grocery list: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{"ingredients": items})
}

func (s *Server) handleLatestGroceryList(w http.ResponseWriter, r *http.Request) {
	list, err := s.lists.Latest(r.Context())
	if err != nil {
		log.Printf("Failed to load latest grocery list: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load grocery list")
		return
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "no grocery list generated yet")
		return
	}
	writeJSON(w, http.StatusOK, list)
}
