package router

import (
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	t.Run("DefaultsAreOmitted", func(t *testing.T) {
		if got := (State{View: ViewLibrary}).Encode(); got != "" {
			t.Errorf("Expected empty query for the default state, got %q", got)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		s := State{View: ViewDetail, ActiveRecipeID: "r42", SearchQuery: "soup"}
		if got := Decode(s.Encode()); got != s {
			t.Errorf("Round trip changed the state: %+v -> %+v", s, got)
		}
	})

	t.Run("UnknownViewFallsBackToLibrary", func(t *testing.T) {
		if got := Decode("view=bogus"); got.View != ViewLibrary {
			t.Errorf("Expected library fallback, got %q", got.View)
		}
	})

	t.Run("BareRecipeLinkSelfCorrectsToDetail", func(t *testing.T) {
		got := Decode("recipe=r1")
		if got.View != ViewDetail || got.ActiveRecipeID != "r1" {
			t.Errorf("Expected detail view of r1, got %+v", got)
		}
	})

	t.Run("ExplicitViewWinsOverSelfCorrection", func(t *testing.T) {
		got := Decode("view=edit&recipe=r1")
		if got.View != ViewEdit {
			t.Errorf("Expected edit view, got %q", got.View)
		}
	})

	t.Run("MalformedQueryYieldsDefaultState", func(t *testing.T) {
		got := Decode("%zz")
		if got != (State{View: ViewLibrary}) {
			t.Errorf("Expected default state, got %+v", got)
		}
	})
}

func TestHistory_PushAndReplace(t *testing.T) {
	h := NewHistory("")

	t.Run("ViewChangePushes", func(t *testing.T) {
		h.SetView(ViewWeek)
		if h.Len() != 2 {
			t.Errorf("Expected 2 entries, got %d", h.Len())
		}
		if h.Current().View != ViewWeek {
			t.Errorf("Expected week view, got %q", h.Current().View)
		}
	})

	t.Run("SearchChangeReplaces", func(t *testing.T) {
		h.SetSearch("chicken")
		h.SetSearch("chicken soup")
		if h.Len() != 2 {
			t.Errorf("Typing must not grow the stack, got %d entries", h.Len())
		}
		if h.Current().SearchQuery != "chicken soup" {
			t.Errorf("Expected latest query, got %q", h.Current().SearchQuery)
		}
	})

	t.Run("NoOpDoesNothing", func(t *testing.T) {
		before := h.Len()
		h.SetView(ViewWeek)
		if h.Len() != before {
			t.Errorf("Setting the same view grew the stack to %d", h.Len())
		}
	})

	t.Run("RecipeChangePushes", func(t *testing.T) {
		h.SetRecipe("r7")
		if h.Len() != 3 {
			t.Errorf("Expected 3 entries, got %d", h.Len())
		}
	})
}

func TestHistory_BackForward(t *testing.T) {
	h := NewHistory("")
	h.SetView(ViewWeek)
	h.SetRecipe("r1")

	t.Run("BackRestoresPriorState", func(t *testing.T) {
		s, ok := h.Back()
		if !ok {
			t.Fatal("Expected Back to succeed")
		}
		if s.View != ViewWeek || s.ActiveRecipeID != "" {
			t.Errorf("Expected the week state, got %+v", s)
		}
	})

	t.Run("ForwardRestoresUndoneState", func(t *testing.T) {
		s, ok := h.Forward()
		if !ok {
			t.Fatal("Expected Forward to succeed")
		}
		if s.ActiveRecipeID != "r1" {
			t.Errorf("Expected r1 active, got %+v", s)
		}
	})

	t.Run("BackAtBottomFails", func(t *testing.T) {
		h.Back()
		h.Back()
		if _, ok := h.Back(); ok {
			t.Error("Expected Back to fail at the bottom of the stack")
		}
	})

	t.Run("PushDropsForwardEntries", func(t *testing.T) {
		h2 := NewHistory("")
		h2.SetView(ViewWeek)
		h2.SetView(ViewGrocery)
		h2.Back()
		h2.SetView(ViewSettings)
		if _, ok := h2.Forward(); ok {
			t.Error("Expected forward entries to be dropped after a push")
		}
		if h2.Current().View != ViewSettings {
			t.Errorf("Expected settings view, got %q", h2.Current().View)
		}
	})
}

func TestHistory_InitialEntry(t *testing.T) {
	t.Run("BackToInitialReparsesQueryString", func(t *testing.T) {
		h := NewHistory("view=week&q=pasta")
		h.SetView(ViewDetail)
		s, ok := h.Back()
		if !ok {
			t.Fatal("Expected Back to succeed")
		}
		if s.View != ViewWeek || s.SearchQuery != "pasta" {
			t.Errorf("Expected the initial state back, got %+v", s)
		}
	})

	t.Run("SelfCorrectionRewritesInitialLocation", func(t *testing.T) {
		h := NewHistory("recipe=r1")
		if h.Current().View != ViewDetail {
			t.Errorf("Expected detail view, got %q", h.Current().View)
		}
		if h.Location() != "recipe=r1&view=detail" {
			t.Errorf("Expected the corrected query string, got %q", h.Location())
		}
	})
}
