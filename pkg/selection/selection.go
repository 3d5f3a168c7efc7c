// Package selection holds the two list-valued selection controls: a sorted
// multi-select set and an insertion-ordered list that can only move items up.
package selection

import (
	"slices"
	"sort"
)

// SortedSet is a multi-select whose committed value is always sorted
// lexicographically, whatever order the options are displayed in.
type SortedSet struct {
	members []string
}

// NewSortedSet seeds the set; duplicates are collapsed.
func NewSortedSet(members []string) *SortedSet {
	s := &SortedSet{}
	s.Set(members)
	return s
}

// Set replaces the selection.
func (s *SortedSet) Set(members []string) []string {
	seen := make(map[string]struct{}, len(members))
	out := make([]string, 0, len(members))
	for _, member := range members {
		if _, ok := seen[member]; ok {
			continue
		}
		seen[member] = struct{}{}
		out = append(out, member)
	}
	sort.Strings(out)
	s.members = out
	return s.Values()
}

// Toggle flips membership of member and returns the committed value.
func (s *SortedSet) Toggle(member string) []string {
	if idx := slices.Index(s.members, member); idx >= 0 {
		s.members = slices.Delete(s.members, idx, idx+1)
		return s.Values()
	}
	return s.Set(append(s.members, member))
}

// Contains reports whether member is selected.
func (s *SortedSet) Contains(member string) bool {
	return slices.Contains(s.members, member)
}

// Values returns a copy of the sorted members.
func (s *SortedSet) Values() []string {
	return append([]string{}, s.members...)
}

// OrderedList keeps selected identifiers in the order they were picked. The
// only reorder operation is MoveUp.
type OrderedList struct {
	items []string
}

// NewOrderedList seeds the list, keeping the given order and dropping
// duplicates.
func NewOrderedList(items []string) *OrderedList {
	l := &OrderedList{}
	for _, item := range items {
		if !slices.Contains(l.items, item) {
			l.items = append(l.items, item)
		}
	}
	return l
}

// Toggle appends item when absent and removes it when present.
func (l *OrderedList) Toggle(item string) []string {
	if slices.Contains(l.items, item) {
		return l.Deselect(item)
	}
	return l.Select(item)
}

// Select appends item at the end. Selecting a present item is a no-op.
func (l *OrderedList) Select(item string) []string {
	if !slices.Contains(l.items, item) {
		l.items = append(l.items, item)
	}
	return l.Values()
}

// Deselect removes item, keeping the relative order of the rest.
func (l *OrderedList) Deselect(item string) []string {
	l.items = slices.DeleteFunc(l.items, func(v string) bool { return v == item })
	return l.Values()
}

// CanMoveUp reports whether MoveUp(index) would change the order.
func (l *OrderedList) CanMoveUp(index int) bool {
	return index > 0 && index < len(l.items)
}

// MoveUp swaps the item at index with its predecessor. Index 0 and indices
// outside the list are no-ops.
func (l *OrderedList) MoveUp(index int) []string {
	if l.CanMoveUp(index) {
		l.items[index], l.items[index-1] = l.items[index-1], l.items[index]
	}
	return l.Values()
}

// Contains reports whether item is selected.
func (l *OrderedList) Contains(item string) bool {
	return slices.Contains(l.items, item)
}

// Values returns a copy of the ordered selection.
func (l *OrderedList) Values() []string {
	return append([]string{}, l.items...)
}
