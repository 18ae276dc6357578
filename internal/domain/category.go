package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Category is a node in the budgeting tree. The distinguished available-funds
// category acts as the reservoir income flows into and envelope allocations
// flow out of.
type Category struct {
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ID                string
	Name              string
	ParentID          string
	GroupID           string
	SortOrder         int
	Priority          int
	MonthlyAmount     decimal.Decimal
	AllocationPercent decimal.Decimal
	TargetAmount      decimal.Decimal
	IsIncomeCategory  bool
	IsAvailableFunds  bool
	IsSavingsGoal     bool
	Active            bool
}

// CategoryGroup orders categories for allocation and display.
type CategoryGroup struct {
	ID        string
	Name      string
	SortOrder int
}

// CategoryIndex is a precomputed adjacency view of the category tree, built
// once per recalculation pass instead of re-scanning the full list at every
// recursion level.
type CategoryIndex struct {
	byID           map[string]*Category
	children       map[string][]*Category
	groups         map[string]*CategoryGroup
	availableFunds *Category
}

// NewCategoryIndex builds the index from a flat category list.
func NewCategoryIndex(categories []*Category, groups []*CategoryGroup) *CategoryIndex {
	idx := &CategoryIndex{
		byID:     make(map[string]*Category, len(categories)),
		children: make(map[string][]*Category),
		groups:   make(map[string]*CategoryGroup, len(groups)),
	}

	for _, g := range groups {
		idx.groups[g.ID] = g
	}

	for _, c := range categories {
		idx.byID[c.ID] = c
		if c.IsAvailableFunds {
			idx.availableFunds = c
		}
	}

	for _, c := range categories {
		if c.ParentID != "" {
			idx.children[c.ParentID] = append(idx.children[c.ParentID], c)
		}
	}

	for _, kids := range idx.children {
		sort.SliceStable(kids, func(i, j int) bool {
			return kids[i].SortOrder < kids[j].SortOrder
		})
	}

	return idx
}

// ByID returns the category or nil.
func (idx *CategoryIndex) ByID(id string) *Category {
	return idx.byID[id]
}

// ChildrenOf returns the direct children sorted by SortOrder.
func (idx *CategoryIndex) ChildrenOf(id string) []*Category {
	return idx.children[id]
}

// ActiveChildrenOf returns direct active children sorted by SortOrder.
func (idx *CategoryIndex) ActiveChildrenOf(id string) []*Category {
	var active []*Category
	for _, c := range idx.children[id] {
		if c.Active {
			active = append(active, c)
		}
	}
	return active
}

// Roots returns active top-level categories sorted by SortOrder.
func (idx *CategoryIndex) Roots() []*Category {
	var roots []*Category
	for _, c := range idx.byID {
		if c.ParentID == "" && c.Active {
			roots = append(roots, c)
		}
	}
	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].SortOrder < roots[j].SortOrder
	})
	return roots
}

// AvailableFunds returns the reservoir category or ErrAvailableFundsMissing.
func (idx *CategoryIndex) AvailableFunds() (*Category, error) {
	if idx.availableFunds == nil {
		return nil, ErrAvailableFundsMissing
	}
	return idx.availableFunds, nil
}

// GroupSortOrder returns the sort order of the category's group, or 0 when
// the category has no group.
func (idx *CategoryIndex) GroupSortOrder(c *Category) int {
	if g, ok := idx.groups[c.GroupID]; ok {
		return g.SortOrder
	}
	return 0
}
