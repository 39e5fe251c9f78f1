// Package router maps the application view-state tuple bidirectionally
// to a query string and models the browser history stack, so that any
// state is shareable, bookmarkable and restorable via back/forward.
package router

import (
	"net/url"
)

// View is the finite set of top-level application views.
type View string

const (
	ViewLibrary           View = "library"
	ViewDetail            View = "detail"
	ViewEdit              View = "edit"
	ViewGrocery           View = "grocery"
	ViewWeek              View = "week"
	ViewSettings          View = "settings"
	ViewFeedbackDashboard View = "feedback-dashboard"
	ViewBulkImport        View = "bulk-import"
	ViewFamilySettings    View = "family-settings"
	ViewAdminDashboard    View = "admin-dashboard"
	ViewInvite            View = "invite"
	ViewNotifications     View = "notifications"
)

var knownViews = map[View]bool{
	ViewLibrary: true, ViewDetail: true, ViewEdit: true, ViewGrocery: true,
	ViewWeek: true, ViewSettings: true, ViewFeedbackDashboard: true,
	ViewBulkImport: true, ViewFamilySettings: true, ViewAdminDashboard: true,
	ViewInvite: true, ViewNotifications: true,
}

// Valid reports whether v is a known view.
func (v View) Valid() bool { return knownViews[v] }

// State is the routed application state. The zero search query and the
// library view are defaults and are omitted from the query string.
type State struct {
	View           View
	ActiveRecipeID string
	SearchQuery    string
}

// Encode serializes the non-default fields of a state into a query
// string (without the leading "?").
func (s State) Encode() string {
	q := url.Values{}
	if s.View != "" && s.View != ViewLibrary {
		q.Set("view", string(s.View))
	}
	if s.ActiveRecipeID != "" {
		q.Set("recipe", s.ActiveRecipeID)
	}
	if s.SearchQuery != "" {
		q.Set("q", s.SearchQuery)
	}
	return q.Encode()
}

// Decode parses a query string into a state. Unknown views fall back
// to the library. Self-correcting rule: a recipe id with the default
// view is coerced to the detail view, so a bare "?recipe=r1" link
// opens the recipe it names.
func Decode(rawQuery string) State {
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return State{View: ViewLibrary}
	}

	s := State{
		View:           View(q.Get("view")),
		ActiveRecipeID: q.Get("recipe"),
		SearchQuery:    q.Get("q"),
	}
	if !s.View.Valid() {
		s.View = ViewLibrary
	}
	if s.ActiveRecipeID != "" && s.View == ViewLibrary {
		s.View = ViewDetail
	}
	return s
}

// Partial is a merge patch for SetRoute; nil fields are left alone.
type Partial struct {
	View           *View
	ActiveRecipeID *string
	SearchQuery    *string
}

type entry struct {
	state State
	raw   string
	// hasState mirrors history.pushState: entries created by this
	// router carry a state object, the initial entry after a page
	// load does not and must be re-parsed from its query string.
	hasState bool
}

// History models the browser history stack over router states.
type History struct {
	entries []entry
	index   int
}

// NewHistory parses the initial query string into the first entry. If
// the self-correcting rule changed the view, the entry is written back
// corrected (the replaceState a browser client would issue).
func NewHistory(rawQuery string) *History {
	initial := Decode(rawQuery)
	e := entry{state: initial, raw: rawQuery}
	if initial.Encode() != rawQuery {
		e.raw = initial.Encode()
	}
	return &History{entries: []entry{e}}
}

// Current returns the state of the active history entry.
func (h *History) Current() State {
	e := h.entries[h.index]
	if !e.hasState {
		return Decode(e.raw)
	}
	return e.state
}

// Location returns the active entry's query string.
func (h *History) Location() string {
	return h.entries[h.index].raw
}

// SetView navigates to a view, keeping the rest of the state.
func (h *History) SetView(v View) {
	h.SetRoute(Partial{View: &v})
}

// SetRecipe selects (or with an empty id, clears) the active recipe.
func (h *History) SetRecipe(id string) {
	h.SetRoute(Partial{ActiveRecipeID: &id})
}

// SetSearch updates the search query in place, without growing the
// history stack.
func (h *History) SetSearch(q string) {
	h.SetRoute(Partial{SearchQuery: &q})
}

// SetRoute merges a partial state into the current one. A view or
// recipe change pushes a new history entry; a search-only change
// replaces the current entry; no change is a no-op.
func (h *History) SetRoute(p Partial) {
	cur := h.Current()
	next := cur
	if p.View != nil {
		next.View = *p.View
	}
	if p.ActiveRecipeID != nil {
		next.ActiveRecipeID = *p.ActiveRecipeID
	}
	if p.SearchQuery != nil {
		next.SearchQuery = *p.SearchQuery
	}

	if next == cur {
		return
	}

	e := entry{state: next, raw: next.Encode(), hasState: true}
	if next.View != cur.View || next.ActiveRecipeID != cur.ActiveRecipeID {
		// Push: drop any forward entries first.
		h.entries = append(h.entries[:h.index+1], e)
		h.index++
		return
	}
	h.entries[h.index] = e
}

// Back moves to the previous entry, restoring its stored state, or
// re-parsing its query string when no state object was attached.
// Returns false at the bottom of the stack.
func (h *History) Back() (State, bool) {
	if h.index == 0 {
		return h.Current(), false
	}
	h.index--
	return h.Current(), true
}

// Forward moves to the next entry if one exists.
func (h *History) Forward() (State, bool) {
	if h.index >= len(h.entries)-1 {
		return h.Current(), false
	}
	h.index++
	return h.Current(), true
}

// Len returns the number of entries on the stack.
func (h *History) Len() int { return len(h.entries) }
