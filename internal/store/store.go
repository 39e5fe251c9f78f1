// Package store is the client side of the recipe API: it owns the
// canonical in-memory recipe slice for the session and exposes actions
// that mutate it optimistically while a REST call is in flight.
package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"chefboard/internal/recipe"
)

// Status is the mutation state of a recipe in the local array.
type Status string

const (
	StatusClean      Status = "clean"
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusRolledBack Status = "rolled-back"
)

// SaveDebounce coalesces rapid local edits into a single save call.
const SaveDebounce = time.Second

// Store holds the in-memory recipe collection and talks to the API.
type Store struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.Mutex
	recipes []recipe.Recipe
	status  map[string]Status

	saveDelay   time.Duration
	saveTimer   *time.Timer
	pendingSave map[string]recipe.Recipe
}

// New creates a Store for the API at baseURL. A nil client uses a
// default client without a request timeout; a hung call blocks only
// the action awaiting it.
func New(baseURL string, client *http.Client) *Store {
	if client == nil {
		client = &http.Client{}
	}
	return &Store{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  client,
		status:      make(map[string]Status),
		saveDelay:   SaveDebounce,
		pendingSave: make(map[string]recipe.Recipe),
	}
}

// Refresh replaces the in-memory collection with the server's. Last
// fetch wins; there is no merging.
func (s *Store) Refresh(ctx context.Context) error {
	var payload struct {
		Recipes []recipe.Recipe `json:"recipes"`
	}
	if err := s.doJSON(ctx, http.MethodGet, "/api/recipes", nil, &payload); err != nil {
		return err
	}

	s.mu.Lock()
	s.recipes = payload.Recipes
	s.status = make(map[string]Status)
	s.mu.Unlock()
	return nil
}

// Recipes returns a copy of the current in-memory collection.
func (s *Store) Recipes() []recipe.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.recipes)
}

// Get returns the recipe with the given id, if present.
func (s *Store) Get(id string) (recipe.Recipe, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.recipes {
		if r.ID == id {
			return r, true
		}
	}
	return recipe.Recipe{}, false
}

// Status reports the mutation state of a recipe.
func (s *Store) Status(id string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.status[id]; ok {
		return st
	}
	return StatusClean
}

// Save creates or updates a recipe. New recipes (no id or a temporary
// one) are POSTed and take the server-assigned id; existing ones are
// PUT. The local array is patched on success.
func (s *Store) Save(ctx context.Context, rec recipe.Recipe) (recipe.Recipe, error) {
	localID := rec.ID
	if localID == "" {
		localID = recipe.NewTempID()
		rec.ID = localID
	}
	s.setStatus(localID, StatusPending)

	var (
		saved recipe.Recipe
		err   error
	)
	if recipe.IsTempID(rec.ID) {
		err = s.doJSON(ctx, http.MethodPost, "/api/recipes", rec, &saved)
	} else {
		err = s.doJSON(ctx, http.MethodPut, "/api/recipes/"+rec.ID, rec, &saved)
	}
	if err != nil {
		s.setStatus(localID, StatusRolledBack)
		return recipe.Recipe{}, err
	}

	s.mu.Lock()
	s.patchLocked(localID, saved)
	delete(s.status, localID)
	s.status[saved.ID] = StatusConfirmed
	s.mu.Unlock()
	return saved, nil
}

// Delete removes a recipe server-side, then from the local array.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.setStatus(id, StatusPending)
	if err := s.doJSON(ctx, http.MethodDelete, "/api/recipes/"+id, nil, nil); err != nil {
		s.setStatus(id, StatusRolledBack)
		return err
	}

	s.mu.Lock()
	s.recipes = slices.DeleteFunc(s.recipes, func(r recipe.Recipe) bool { return r.ID == id })
	delete(s.status, id)
	s.mu.Unlock()
	return nil
}

// BulkEdit applies a partial update to all recipes in ids via the bulk
// endpoint, patching the local array with the server's result.
func (s *Store) BulkEdit(ctx context.Context, ids []string, updates map[string]json.RawMessage) error {
	body := map[string]any{"action": "update", "ids": ids, "updates": updates}
	var payload struct {
		Recipes []recipe.Recipe `json:"recipes"`
	}
	if err := s.doJSON(ctx, http.MethodPost, "/api/recipes/bulk", body, &payload); err != nil {
		return err
	}

	s.mu.Lock()
	for _, updated := range payload.Recipes {
		s.patchLocked(updated.ID, updated)
		s.status[updated.ID] = StatusConfirmed
	}
	s.mu.Unlock()
	return nil
}

// BulkDelete removes all recipes in ids via the bulk endpoint.
func (s *Store) BulkDelete(ctx context.Context, ids []string) error {
	body := map[string]any{"action": "delete", "ids": ids}
	if err := s.doJSON(ctx, http.MethodPost, "/api/recipes/bulk", body, nil); err != nil {
		return err
	}

	s.mu.Lock()
	s.recipes = slices.DeleteFunc(s.recipes, func(r recipe.Recipe) bool {
		return slices.Contains(ids, r.ID)
	})
	s.mu.Unlock()
	return nil
}

// ToggleFavorite optimistically flips the favorite flag, then
// reconciles with the server's answer: the server state wins when it
// disagrees with the optimistic guess, and a network failure reverts
// the flip entirely.
func (s *Store) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	idx := slices.IndexFunc(s.recipes, func(r recipe.Recipe) bool { return r.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return false, fmt.Errorf("recipe %s not found", id)
	}
	prev := s.recipes[idx].IsFavorite
	s.recipes[idx].IsFavorite = !prev
	s.status[id] = StatusPending
	s.mu.Unlock()

	var payload struct {
		IsFavorite bool `json:"isFavorite"`
	}
	err := s.doJSON(ctx, http.MethodPost, "/api/favorites", map[string]string{"recipeId": id}, &payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	idx = slices.IndexFunc(s.recipes, func(r recipe.Recipe) bool { return r.ID == id })
	if idx < 0 {
		return false, err
	}
	if err != nil {
		s.recipes[idx].IsFavorite = prev
		s.status[id] = StatusRolledBack
		return prev, err
	}
	s.recipes[idx].IsFavorite = payload.IsFavorite
	s.status[id] = StatusConfirmed
	return payload.IsFavorite, nil
}

// GenerateGroceryList asks the server to consolidate the given recipes
// into a shopping list.
func (s *Store) GenerateGroceryList(ctx context.Context, recipes []recipe.Recipe) ([]recipe.StructuredIngredient, error) {
	body := map[string]any{"recipes": recipes}
	var payload struct {
		Ingredients []recipe.StructuredIngredient `json:"ingredients"`
	}
	if err := s.doJSON(ctx, http.MethodPost, "/api/generate-grocery-list", body, &payload); err != nil {
		return nil, err
	}
	return payload.Ingredients, nil
}

// QueueSave schedules a debounced save: rapid edits to the same or
// different recipes within the window coalesce into one flush. The
// local array is patched immediately.
func (s *Store) QueueSave(rec recipe.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.patchLocked(rec.ID, rec)
	s.pendingSave[rec.ID] = rec
	s.status[rec.ID] = StatusPending

	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.saveTimer = time.AfterFunc(s.saveDelay, func() {
		s.Flush(context.Background())
	})
}

// Flush writes out all queued saves immediately. Failed saves are
// marked rolled back but remain in the local array; there is no retry.
func (s *Store) Flush(ctx context.Context) {
	s.mu.Lock()
	queued := s.pendingSave
	s.pendingSave = make(map[string]recipe.Recipe)
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	s.mu.Unlock()

	for _, rec := range queued {
		var saved recipe.Recipe
		err := s.doJSON(ctx, http.MethodPut, "/api/recipes/"+rec.ID, rec, &saved)
		s.mu.Lock()
		if err != nil {
			s.status[rec.ID] = StatusRolledBack
		} else {
			s.patchLocked(rec.ID, saved)
			s.status[rec.ID] = StatusConfirmed
		}
		s.mu.Unlock()
	}
}

// ImportFromURL runs a streaming AI capture: stage events are relayed
// to progress as they arrive and the final recipe is returned.
func (s *Store) ImportFromURL(ctx context.Context, sourceURL string, progress func(string)) (*recipe.Recipe, error) {
	body, err := json.Marshal(map[string]string{"url": sourceURL})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/parse-recipe", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	// The server emits newline-delimited JSON: {"stage": "..."} events
	// followed by a final event carrying the recipe.
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var imported *recipe.Recipe
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var event struct {
			Stage  string         `json:"stage"`
			Error  string         `json:"error"`
			Recipe *recipe.Recipe `json:"recipe"`
		}
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("failed to decode progress event: %w", err)
		}
		if event.Error != "" {
			return nil, fmt.Errorf("import failed: %s", event.Error)
		}
		if progress != nil && event.Stage != "" {
			progress(event.Stage)
		}
		if event.Recipe != nil {
			imported = event.Recipe
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("stream ended early: %w", err)
	}
	if imported == nil {
		return nil, fmt.Errorf("stream ended without a recipe")
	}

	s.mu.Lock()
	s.patchLocked(imported.ID, *imported)
	s.status[imported.ID] = StatusConfirmed
	s.mu.Unlock()
	return imported, nil
}

// patchLocked replaces the entry with the given id, or appends when it
// is new. Callers hold s.mu.
func (s *Store) patchLocked(id string, rec recipe.Recipe) {
	idx := slices.IndexFunc(s.recipes, func(r recipe.Recipe) bool { return r.ID == id })
	if idx < 0 {
		s.recipes = append(s.recipes, rec)
		return
	}
	s.recipes[idx] = rec
}

func (s *Store) setStatus(id string, st Status) {
	s.mu.Lock()
	s.status[id] = st
	s.mu.Unlock()
}

// doJSON performs one request with a JSON body and decodes the JSON
// response into out (when non-nil).
func (s *Store) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
		return fmt.Errorf("api error: status %d: %s", resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("api error: status %d", resp.StatusCode)
}
