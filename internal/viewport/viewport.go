// Package viewport turns grouped recipe buckets into a flat, measured
// item sequence and computes the visible window over it, the way a
// virtualized list renders only what intersects the scroll viewport.
package viewport

import (
	"chefboard/internal/library"
	"chefboard/internal/recipe"
)

// Estimated pixel heights per item kind.
const (
	HeaderHeight  = 60
	ListRowHeight = 80
	GridRowHeight = 380
)

// Responsive breakpoints, in pixels of viewport width.
const (
	twoColumnMinWidth   = 640
	threeColumnMinWidth = 1024
)

// ItemKind discriminates flattened items.
type ItemKind int

const (
	ItemHeader ItemKind = iota
	ItemRow
)

// Item is one flattened entry: a group header or a row of up to
// Columns recipes, positioned at its cumulative offset.
type Item struct {
	Kind     ItemKind
	GroupKey string
	Recipes  []recipe.Recipe
	Height   int
	Offset   int
}

// Flattened is the measured item sequence for a grouped collection.
type Flattened struct {
	Items       []Item
	TotalHeight int
	Columns     int
}

// ColumnsForWidth derives the responsive column count from viewport
// width: 1, 2 or 3 columns.
func ColumnsForWidth(width int) int {
	switch {
	case width >= threeColumnMinWidth:
		return 3
	case width >= twoColumnMinWidth:
		return 2
	}
	return 1
}

// Flatten produces the item sequence for the given groups. Collapsed
// groups contribute only their header, which immediately changes the
// item count and the total scrollable height. A single column renders
// list rows; multiple columns render taller grid rows.
func Flatten(groups []library.Group, collapsed map[string]bool, columns int) Flattened {
	if columns < 1 {
		columns = 1
	}
	rowHeight := ListRowHeight
	if columns > 1 {
		rowHeight = GridRowHeight
	}

	f := Flattened{Columns: columns}
	offset := 0
	for _, g := range groups {
		f.Items = append(f.Items, Item{
			Kind:     ItemHeader,
			GroupKey: g.Key,
			Height:   HeaderHeight,
			Offset:   offset,
		})
		offset += HeaderHeight

		if collapsed[g.Key] {
			continue
		}

		for start := 0; start < len(g.Recipes); start += columns {
			end := min(start+columns, len(g.Recipes))
			f.Items = append(f.Items, Item{
				Kind:     ItemRow,
				GroupKey: g.Key,
				Recipes:  g.Recipes[start:end],
				Height:   rowHeight,
				Offset:   offset,
			})
			offset += rowHeight
		}
	}
	f.TotalHeight = offset
	return f
}

// Window returns the items intersecting the scroll viewport plus an
// overscan margin on both sides.
func (f Flattened) Window(scrollTop, viewportHeight, overscan int) []Item {
	top := scrollTop - overscan
	bottom := scrollTop + viewportHeight + overscan

	var visible []Item
	for _, item := range f.Items {
		if item.Offset+item.Height <= top {
			continue
		}
		if item.Offset >= bottom {
			break
		}
		visible = append(visible, item)
	}
	return visible
}
