package server

import (
	"log"
	"net/http"
	"strings"

	"chefboard/internal/feedback"
)

func (s *Server) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var f feedback.Feedback
	if !decodeBody(w, r, &f) {
		return
	}
	if err := f.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.feedback.Insert(r.Context(), f)
	if err != nil {
		log.Printf("Failed to store feedback: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store feedback")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	entries, err := s.feedback.List(r.Context())
	if err != nil {
		log.Printf("Failed to list feedback: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list feedback")
		return
	}
	if entries == nil {
		entries = []feedback.Feedback{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"feedback": entries})
}

func (s *Server) handleCreateFamily(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		OwnerID string `json:"ownerId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.OwnerID == "" {
		writeError(w, http.StatusBadRequest, "name and ownerId are required")
		return
	}

	fam, err := s.families.Create(r.Context(), req.Name, req.OwnerID)
	if err != nil {
		log.Printf("Failed to create family: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create family")
		return
	}
	writeJSON(w, http.StatusCreated, fam)
}

func (s *Server) handleGetFamily(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	fam, err := s.families.Get(r.Context(), id)
	if err != nil {
		log.Printf("Failed to get family %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load family")
		return
	}
	if fam == nil {
		writeError(w, http.StatusNotFound, "family not found")
		return
	}

	members, err := s.families.Members(r.Context(), id)
	if err != nil {
		log.Printf("Failed to list members of %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load family members")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"family": fam, "members": members})
}

func (s *Server) handleDeleteFamily(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.families.Delete(r.Context(), id); err != nil {
		log.Printf("Failed to delete family %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete family")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	fam, err := s.families.Get(r.Context(), id)
	if err != nil {
		log.Printf("Failed to get family %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load family")
		return
	}
	if fam == nil {
		writeError(w, http.StatusNotFound, "family not found")
		return
	}

	token, err := s.invites.Sign(id)
	if err != nil {
		log.Printf("Failed to sign invite for %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to create invite")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func (s *Server) handleJoinFamily(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Token == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "token and userId are required")
		return
	}

	familyID, err := s.invites.Verify(req.Token)
	if err != nil {
		writeError(w, http.StatusForbidden, "invalid or expired invite")
		return
	}
	if err := s.families.AddMember(r.Context(), familyID, req.UserID); err != nil {
		log.Printf("Failed to join family %s: %v", familyID, err)
		writeError(w, http.StatusInternalServerError, "failed to join family")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"familyId": familyID})
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	recipeCount, err := s.recipes.Count(r.Context())
	if err != nil {
		log.Printf("Failed to count recipes: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	feedbackCount, err := s.feedback.Count(r.Context())
	if err != nil {
		log.Printf("Failed to count feedback: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	usage, err := s.metrics.GetDailyUsage(r.Context(), 30)
	if err != nil {
		log.Printf("Failed to load capture usage: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"recipes":  recipeCount,
		"feedback": feedbackCount,
		"captures": usage,
	})
}
