package domain

import (
	"errors"
	"testing"
)

func buildTestIndex() *CategoryIndex {
	categories := []*Category{
		{ID: "avail", Name: "Available Funds", IsAvailableFunds: true, Active: true, SortOrder: 0},
		{ID: "living", Name: "Living", Active: true, SortOrder: 1},
		{ID: "groceries", Name: "Groceries", ParentID: "living", Active: true, SortOrder: 2},
		{ID: "rent", Name: "Rent", ParentID: "living", Active: true, SortOrder: 1},
		{ID: "old", Name: "Old", ParentID: "living", Active: false, SortOrder: 3},
		{ID: "salary", Name: "Salary", IsIncomeCategory: true, Active: true, SortOrder: 2},
	}
	groups := []*CategoryGroup{
		{ID: "g1", Name: "Fixed", SortOrder: 1},
	}
	return NewCategoryIndex(categories, groups)
}

func TestCategoryIndexChildrenSorted(t *testing.T) {
	idx := buildTestIndex()

	kids := idx.ChildrenOf("living")
	if len(kids) != 3 {
		t.Fatalf("expected 3 children, got %d", len(kids))
	}

	if kids[0].ID != "rent" || kids[1].ID != "groceries" {
		t.Errorf("children not sorted by SortOrder: %s, %s", kids[0].ID, kids[1].ID)
	}

	active := idx.ActiveChildrenOf("living")
	if len(active) != 2 {
		t.Errorf("expected 2 active children, got %d", len(active))
	}
}

func TestCategoryIndexRoots(t *testing.T) {
	idx := buildTestIndex()

	roots := idx.Roots()
	if len(roots) != 3 {
		t.Fatalf("expected 3 roots, got %d", len(roots))
	}

	if roots[0].ID != "avail" || roots[1].ID != "living" || roots[2].ID != "salary" {
		t.Errorf("roots out of order: %s, %s, %s", roots[0].ID, roots[1].ID, roots[2].ID)
	}
}

func TestCategoryIndexAvailableFunds(t *testing.T) {
	idx := buildTestIndex()

	af, err := idx.AvailableFunds()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if af.ID != "avail" {
		t.Errorf("AvailableFunds() = %s", af.ID)
	}

	empty := NewCategoryIndex(nil, nil)
	if _, err := empty.AvailableFunds(); !errors.Is(err, ErrAvailableFundsMissing) {
		t.Errorf("expected ErrAvailableFundsMissing, got %v", err)
	}
}

func TestCategoryIndexByIDMissing(t *testing.T) {
	idx := buildTestIndex()

	if idx.ByID("nope") != nil {
		t.Error("expected nil for unknown id")
	}
}
