package hierarchy

import (
	"reflect"
	"testing"

	"github.com/docscrape/docscrape/internal/model"
)

// TestBuild tests parent/child linking over a small id set.
func TestBuild(t *testing.T) {
	t.Parallel()

	entries := []model.Entry{
		{ID: "a"},
		{ID: "a.b"},
		{ID: "a.b.c"},
		{ID: "x"},
	}

	Build(entries)

	byID := make(map[string]model.Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	if got := byID["a.b.c"].Parent; got != "a.b" {
		t.Errorf("a.b.c parent = %q, want a.b", got)
	}
	if got := byID["a.b"].Parent; got != "a" {
		t.Errorf("a.b parent = %q, want a", got)
	}
	if got := byID["a"].Parent; got != "" {
		t.Errorf("a parent = %q, want none", got)
	}
	if got := byID["x"].Parent; got != "" {
		t.Errorf("x parent = %q, want none", got)
	}

	if want := []string{"a.b"}; !reflect.DeepEqual(byID["a"].Children, want) {
		t.Errorf("a children = %v, want %v", byID["a"].Children, want)
	}
	if want := []string{"a.b.c"}; !reflect.DeepEqual(byID["a.b"].Children, want) {
		t.Errorf("a.b children = %v, want %v", byID["a.b"].Children, want)
	}
}

// TestBuildOrphan verifies entries without a matching parent stay
// top-level.
func TestBuildOrphan(t *testing.T) {
	t.Parallel()

	entries := []model.Entry{
		{ID: "a.b.c"},
		{ID: "a"},
	}

	Build(entries)

	if entries[0].Parent != "" {
		t.Errorf("a.b.c parent = %q, want none (a.b is absent)", entries[0].Parent)
	}
	if entries[1].Children != nil {
		t.Errorf("a children = %v, want none", entries[1].Children)
	}
}

// TestBuildChildOrder verifies children accumulate in processing order.
func TestBuildChildOrder(t *testing.T) {
	t.Parallel()

	entries := []model.Entry{
		{ID: "m"},
		{ID: "m.z"},
		{ID: "m.a"},
	}

	Build(entries)

	if want := []string{"m.z", "m.a"}; !reflect.DeepEqual(entries[0].Children, want) {
		t.Errorf("children = %v, want %v (processing order, not sorted)", entries[0].Children, want)
	}
}

// TestBuildDuplicateIDs verifies the first occurrence of a duplicated id
// receives the children; duplicates are preserved, never merged.
func TestBuildDuplicateIDs(t *testing.T) {
	t.Parallel()

	entries := []model.Entry{
		{ID: "a"},
		{ID: "a"},
		{ID: "a.b"},
	}

	Build(entries)

	if want := []string{"a.b"}; !reflect.DeepEqual(entries[0].Children, want) {
		t.Errorf("first occurrence children = %v, want %v", entries[0].Children, want)
	}
	if entries[1].Children != nil {
		t.Errorf("duplicate children = %v, want none", entries[1].Children)
	}
	if len(entries) != 3 {
		t.Errorf("entries = %d, duplicates must not be merged", len(entries))
	}
}
