package server

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"chefboard/internal/metrics"
	"chefboard/internal/parser"
	"chefboard/internal/recipe"
)

// handleParseRecipe runs an AI capture and streams newline-delimited
// JSON progress events ({"stage": ...}) followed by a final event
// carrying the saved recipe, so clients can show discrete progress
// without sniffing partial JSON.
func (s *Server) handleParseRecipe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL   string `json:"url"`
		Text  string `json:"text"`
		Image string `json:"image"` // base64
		Mime  string `json:"mimeType"`
		Mode  string `json:"mode"` // parse (default) or infer
	}
	if !decodeBody(w, r, &req) {
		return
	}

	source := captureSource(req.URL, req.Text, req.Image, req.Mode)
	if source == "" {
		writeError(w, http.StatusBadRequest, "one of url, image or text is required")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	enc := json.NewEncoder(w)
	emit := func(event any) {
		if err := enc.Encode(event); err != nil {
			log.Printf("Failed to write progress event: %v", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	progress := func(stage parser.Stage) {
		emit(map[string]string{"stage": string(stage)})
	}

	start := time.Now()
	rec, err := s.capture(r, source, req.URL, req.Text, req.Image, req.Mime, progress)

	if s.metrics != nil {
		if merr := s.metrics.Record(r.Context(), metrics.CaptureMetric{
			Source:    source,
			LatencyMS: time.Since(start).Milliseconds(),
			Success:   err == nil,
		}); merr != nil {
			log.Printf("Warning: failed to record capture metric: %v", merr)
		}
	}

	if err != nil {
		log.Printf("Capture (%s) failed: %v", source, err)
		emit(map[string]string{"error": err.Error()})
		return
	}

	rec.ID = newRecipeID()
	now := time.Now()
	rec.AppendVersion("imported", now)
	if err := s.recipes.Save(r.Context(), *rec); err != nil {
		log.Printf("Failed to save captured recipe: %v", err)
		emit(map[string]string{"error": "failed to save recipe"})
		return
	}

	emit(map[string]any{"stage": "saved", "recipe": rec})
}

func (s *Server) capture(r *http.Request, source, url, text, image, mimeType string, progress parser.ProgressFunc) (*recipe.Recipe, error) {
	ctx := r.Context()
	switch source {
	case "url":
		return s.parser.ParseURL(ctx, url, progress)
	case "image":
		data, err := base64.StdEncoding.DecodeString(image)
		if err != nil {
			return nil, err
		}
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		rec, err := s.parser.ParseImage(ctx, mimeType, data, progress)
		if err != nil {
			return nil, err
		}
		return rec, nil
	case "infer":
		return s.parser.Infer(ctx, text, progress)
	}
	return s.parser.ParseText(ctx, text, progress)
}

func captureSource(url, text, image, mode string) string {
	switch {
	case url != "":
		return "url"
	case image != "":
		return "image"
	case text != "" && mode == "infer":
		return "infer"
	case text != "":
		return "text"
	}
	return ""
}
