package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"chefboard/internal/recipe"
)

// fakeAPI is a minimal in-memory stand-in for the recipe server.
type fakeAPI struct {
	mu       sync.Mutex
	recipes  map[string]recipe.Recipe
	fail     bool
	favorite map[string]bool
	puts     int
}

func newFakeAPI(seed ...recipe.Recipe) *fakeAPI {
	api := &fakeAPI{recipes: map[string]recipe.Recipe{}, favorite: map[string]bool{}}
	for _, r := range seed {
		api.recipes[r.ID] = r
	}
	return api
}

func (a *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/recipes", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		list := make([]recipe.Recipe, 0, len(a.recipes))
		for _, rec := range a.recipes {
			list = append(list, rec)
		}
		json.NewEncoder(w).Encode(map[string]any{"recipes": list})
	})
	mux.HandleFunc("POST /api/recipes", func(w http.ResponseWriter, r *http.Request) {
		if a.fail {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
			return
		}
		var rec recipe.Recipe
		json.NewDecoder(r.Body).Decode(&rec)
		rec.ID = "srv-1"
		a.mu.Lock()
		a.recipes[rec.ID] = rec
		a.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(rec)
	})
	mux.HandleFunc("PUT /api/recipes/{id}", func(w http.ResponseWriter, r *http.Request) {
		if a.fail {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
			return
		}
		var rec recipe.Recipe
		json.NewDecoder(r.Body).Decode(&rec)
		rec.ID = r.PathValue("id")
		a.mu.Lock()
		a.recipes[rec.ID] = rec
		a.puts++
		a.mu.Unlock()
		json.NewEncoder(w).Encode(rec)
	})
	mux.HandleFunc("DELETE /api/recipes/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		delete(a.recipes, r.PathValue("id"))
		a.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})
	mux.HandleFunc("POST /api/favorites", func(w http.ResponseWriter, r *http.Request) {
		if a.fail {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
			return
		}
		var req struct {
			RecipeID string `json:"recipeId"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		a.mu.Lock()
		a.favorite[req.RecipeID] = !a.favorite[req.RecipeID]
		state := a.favorite[req.RecipeID]
		a.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]bool{"isFavorite": state})
	})
	mux.HandleFunc("POST /api/recipes/bulk", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Action  string                     `json:"action"`
			IDs     []string                   `json:"ids"`
			Updates map[string]json.RawMessage `json:"updates"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		a.mu.Lock()
		defer a.mu.Unlock()
		if req.Action == "delete" {
			for _, id := range req.IDs {
				delete(a.recipes, id)
			}
			json.NewEncoder(w).Encode(map[string]bool{"success": true})
			return
		}
		var updated []recipe.Recipe
		for _, id := range req.IDs {
			rec, ok := a.recipes[id]
			if !ok {
				continue
			}
			patched, err := recipe.ApplyPatch(rec, req.Updates)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
				return
			}
			a.recipes[id] = patched
			updated = append(updated, patched)
		}
		json.NewEncoder(w).Encode(map[string]any{"recipes": updated})
	})
	return mux
}

func newTestStore(t *testing.T, api *fakeAPI) *Store {
	t.Helper()
	ts := httptest.NewServer(api.handler())
	t.Cleanup(ts.Close)
	return New(ts.URL, ts.Client())
}

func TestRefresh(t *testing.T) {
	api := newFakeAPI(recipe.Recipe{ID: "r1", Title: "Pancakes"})
	st := newTestStore(t, api)

	if err := st.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if got := st.Recipes(); len(got) != 1 || got[0].ID != "r1" {
		t.Errorf("Unexpected collection: %+v", got)
	}
	if st.Status("r1") != StatusClean {
		t.Errorf("Expected clean status after refresh, got %q", st.Status("r1"))
	}
}

func TestSave(t *testing.T) {
	t.Run("NewRecipeTakesServerID", func(t *testing.T) {
		st := newTestStore(t, newFakeAPI())
		saved, err := st.Save(context.Background(), recipe.Recipe{ID: recipe.NewTempID(), Title: "Soup"})
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if saved.ID != "srv-1" {
			t.Errorf("Expected the server id, got %q", saved.ID)
		}
		if _, ok := st.Get("srv-1"); !ok {
			t.Error("Saved recipe missing from the local array")
		}
		if st.Status("srv-1") != StatusConfirmed {
			t.Errorf("Expected confirmed, got %q", st.Status("srv-1"))
		}
	})

	t.Run("ExistingRecipeIsPut", func(t *testing.T) {
		api := newFakeAPI(recipe.Recipe{ID: "r1", Title: "Pancakes"})
		st := newTestStore(t, api)
		st.Refresh(context.Background())

		saved, err := st.Save(context.Background(), recipe.Recipe{ID: "r1", Title: "Better Pancakes"})
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if saved.Title != "Better Pancakes" {
			t.Errorf("Unexpected title %q", saved.Title)
		}
		got, _ := st.Get("r1")
		if got.Title != "Better Pancakes" {
			t.Errorf("Local array not patched: %q", got.Title)
		}
	})

	t.Run("FailureMarksRolledBack", func(t *testing.T) {
		api := newFakeAPI()
		api.fail = true
		st := newTestStore(t, api)

		rec := recipe.Recipe{ID: recipe.NewTempID(), Title: "Doomed"}
		if _, err := st.Save(context.Background(), rec); err == nil {
			t.Fatal("Expected an error")
		}
		if st.Status(rec.ID) != StatusRolledBack {
			t.Errorf("Expected rolled-back, got %q", st.Status(rec.ID))
		}
	})
}

func TestToggleFavorite(t *testing.T) {
	t.Run("ServerStateWins", func(t *testing.T) {
		api := newFakeAPI(recipe.Recipe{ID: "r1", Title: "Pancakes"})
		st := newTestStore(t, api)
		st.Refresh(context.Background())

		fav, err := st.ToggleFavorite(context.Background(), "r1")
		if err != nil {
			t.Fatalf("ToggleFavorite failed: %v", err)
		}
		if !fav {
			t.Error("Expected favorite to be set")
		}
		got, _ := st.Get("r1")
		if !got.IsFavorite {
			t.Error("Local recipe not updated")
		}
		if st.Status("r1") != StatusConfirmed {
			t.Errorf("Expected confirmed, got %q", st.Status("r1"))
		}
	})

	t.Run("NetworkFailureRevertsTheFlip", func(t *testing.T) {
		api := newFakeAPI(recipe.Recipe{ID: "r1", Title: "Pancakes", IsFavorite: true})
		st := newTestStore(t, api)
		st.Refresh(context.Background())
		api.fail = true

		fav, err := st.ToggleFavorite(context.Background(), "r1")
		if err == nil {
			t.Fatal("Expected an error")
		}
		if !fav {
			t.Error("Expected the prior value back")
		}
		got, _ := st.Get("r1")
		if !got.IsFavorite {
			t.Error("Optimistic flip was not reverted")
		}
		if st.Status("r1") != StatusRolledBack {
			t.Errorf("Expected rolled-back, got %q", st.Status("r1"))
		}
	})

	t.Run("UnknownRecipeFails", func(t *testing.T) {
		st := newTestStore(t, newFakeAPI())
		if _, err := st.ToggleFavorite(context.Background(), "ghost"); err == nil {
			t.Fatal("Expected an error for an unknown recipe")
		}
	})
}

func TestQueueSave(t *testing.T) {
	t.Run("RapidEditsCoalesce", func(t *testing.T) {
		api := newFakeAPI(recipe.Recipe{ID: "r1", Title: "Pancakes"})
		st := newTestStore(t, api)
		st.Refresh(context.Background())
		st.saveDelay = 20 * time.Millisecond

		st.QueueSave(recipe.Recipe{ID: "r1", Title: "Draft 1"})
		st.QueueSave(recipe.Recipe{ID: "r1", Title: "Draft 2"})
		st.QueueSave(recipe.Recipe{ID: "r1", Title: "Draft 3"})

		if st.Status("r1") != StatusPending {
			t.Errorf("Expected pending while debouncing, got %q", st.Status("r1"))
		}
		got, _ := st.Get("r1")
		if got.Title != "Draft 3" {
			t.Errorf("Local array should show the latest edit, got %q", got.Title)
		}

		deadline := time.After(time.Second)
		for st.Status("r1") != StatusConfirmed {
			select {
			case <-deadline:
				t.Fatal("Debounced save never flushed")
			case <-time.After(5 * time.Millisecond):
			}
		}

		api.mu.Lock()
		puts := api.puts
		final := api.recipes["r1"].Title
		api.mu.Unlock()
		if puts != 1 {
			t.Errorf("Expected a single coalesced save, got %d", puts)
		}
		if final != "Draft 3" {
			t.Errorf("Expected the last edit to win, server has %q", final)
		}
	})

	t.Run("FlushWritesImmediately", func(t *testing.T) {
		api := newFakeAPI(recipe.Recipe{ID: "r1", Title: "Pancakes"})
		st := newTestStore(t, api)
		st.Refresh(context.Background())
		st.saveDelay = time.Hour

		st.QueueSave(recipe.Recipe{ID: "r1", Title: "Edited"})
		st.Flush(context.Background())

		if st.Status("r1") != StatusConfirmed {
			t.Errorf("Expected confirmed after flush, got %q", st.Status("r1"))
		}
		api.mu.Lock()
		defer api.mu.Unlock()
		if api.recipes["r1"].Title != "Edited" {
			t.Errorf("Server missed the flush: %q", api.recipes["r1"].Title)
		}
	})
}

func TestBulk(t *testing.T) {
	seed := []recipe.Recipe{
		{ID: "r1", Title: "One"},
		{ID: "r2", Title: "Two"},
		{ID: "r3", Title: "Three"},
	}

	t.Run("BulkEditPatchesAll", func(t *testing.T) {
		st := newTestStore(t, newFakeAPI(seed...))
		st.Refresh(context.Background())

		updates := map[string]json.RawMessage{"thisWeek": json.RawMessage(`true`)}
		if err := st.BulkEdit(context.Background(), []string{"r1", "r3"}, updates); err != nil {
			t.Fatalf("BulkEdit failed: %v", err)
		}
		for _, id := range []string{"r1", "r3"} {
			got, _ := st.Get(id)
			if !got.ThisWeek {
				t.Errorf("Recipe %s not updated", id)
			}
		}
		got, _ := st.Get("r2")
		if got.ThisWeek {
			t.Error("Recipe r2 should be untouched")
		}
	})

	t.Run("BulkDeleteRemovesAll", func(t *testing.T) {
		st := newTestStore(t, newFakeAPI(seed...))
		st.Refresh(context.Background())

		if err := st.BulkDelete(context.Background(), []string{"r1", "r2"}); err != nil {
			t.Fatalf("BulkDelete failed: %v", err)
		}
		if got := st.Recipes(); len(got) != 1 || got[0].ID != "r3" {
			t.Errorf("Expected only r3 left, got %+v", got)
		}
	})
}

func TestImportFromURL(t *testing.T) {
	t.Run("RelaysStagesAndStoresRecipe", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/parse-recipe", func(w http.ResponseWriter, r *http.Request) {
			enc := json.NewEncoder(w)
			enc.Encode(map[string]string{"stage": "fetching"})
			enc.Encode(map[string]string{"stage": "extracting"})
			enc.Encode(map[string]any{"stage": "saved", "recipe": recipe.Recipe{ID: "srv-9", Title: "Clipped"}})
		})
		ts := httptest.NewServer(mux)
		defer ts.Close()

		st := New(ts.URL, ts.Client())
		var stages []string
		rec, err := st.ImportFromURL(context.Background(), "https://example.com/pie", func(stage string) {
			stages = append(stages, stage)
		})
		if err != nil {
			t.Fatalf("ImportFromURL failed: %v", err)
		}
		if rec.ID != "srv-9" || rec.Title != "Clipped" {
			t.Errorf("Unexpected recipe: %+v", rec)
		}
		want := []string{"fetching", "extracting", "saved"}
		if fmt.Sprint(stages) != fmt.Sprint(want) {
			t.Errorf("Expected stages %v, got %v", want, stages)
		}
		if _, ok := st.Get("srv-9"); !ok {
			t.Error("Imported recipe missing from the local array")
		}
	})

	t.Run("ErrorEventAborts", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/parse-recipe", func(w http.ResponseWriter, r *http.Request) {
			enc := json.NewEncoder(w)
			enc.Encode(map[string]string{"stage": "fetching"})
			enc.Encode(map[string]string{"error": "page unreachable"})
		})
		ts := httptest.NewServer(mux)
		defer ts.Close()

		st := New(ts.URL, ts.Client())
		if _, err := st.ImportFromURL(context.Background(), "https://example.com/pie", nil); err == nil {
			t.Fatal("Expected an error from the error event")
		}
	})

	t.Run("StreamWithoutRecipeFails", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/parse-recipe", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"stage": "fetching"})
		})
		ts := httptest.NewServer(mux)
		defer ts.Close()

		st := New(ts.URL, ts.Client())
		if _, err := st.ImportFromURL(context.Background(), "https://example.com/pie", nil); err == nil {
			t.Fatal("Expected an error for a truncated stream")
		}
	})
}

func TestDelete(t *testing.T) {
	api := newFakeAPI(recipe.Recipe{ID: "r1", Title: "Pancakes"})
	st := newTestStore(t, api)
	st.Refresh(context.Background())

	if err := st.Delete(context.Background(), "r1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(st.Recipes()) != 0 {
		t.Error("Recipe still in the local array")
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.recipes) != 0 {
		t.Error("Recipe still on the server")
	}
}
