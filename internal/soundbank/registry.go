// Package soundbank holds the definitions of everything the playback engine
// can play: categories, their items and the items' sub-items.
//
// A Registry is immutable once built. Runtime state such as trigger
// timestamps and category gains lives in the playback engine, so one
// registry can back several engines.
package soundbank

import (
	"maps"
	"slices"
	"time"
)

// Registry answers name lookups over a validated sound bank
type Registry struct {
	categories []*Category
	byCategory map[string]*Category
	items      map[string]*Item
	clips      map[string]time.Duration
}

// Stats summarises a registry
type Stats struct {
	Categories int
	Items      int
	SubItems   int
	Redirects  int
	Clips      int
}

// NewRegistry links, validates and normalises the given categories.
// clips maps clip names to their length; a length of 0 marks a stream
// without a natural end. The categories are owned by the registry afterwards.
func NewRegistry(clips map[string]time.Duration, categories ...*Category) (*Registry, error) {
	r := &Registry{
		categories: categories,
		byCategory: make(map[string]*Category, len(categories)),
		items:      make(map[string]*Item),
		clips:      maps.Clone(clips),
	}
	if r.clips == nil {
		r.clips = make(map[string]time.Duration)
	}

	if err := r.link(); err != nil {
		return nil, err
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	for _, item := range r.items {
		normalizeWeights(item)
	}
	return r, nil
}

// Item returns the item with the given name
func (r *Registry) Item(name string) (*Item, bool) {
	item, ok := r.items[name]
	return item, ok
}

// Category returns the category with the given name
func (r *Registry) Category(name string) (*Category, bool) {
	c, ok := r.byCategory[name]
	return c, ok
}

// Categories returns the categories in declaration order
func (r *Registry) Categories() []*Category {
	return slices.Clone(r.categories)
}

// ItemNames returns all item names sorted
func (r *Registry) ItemNames() []string {
	return slices.Sorted(maps.Keys(r.items))
}

// ClipLength returns the declared length of a clip
func (r *Registry) ClipLength(name string) (time.Duration, bool) {
	d, ok := r.clips[name]
	return d, ok
}

// Clips returns a copy of the clip table
func (r *Registry) Clips() map[string]time.Duration {
	return maps.Clone(r.clips)
}

// MissingClips lists clip names referenced by sub-items but absent from the
// clip table, sorted. Backends other than the simulated one may still open them.
func (r *Registry) MissingClips() []string {
	missing := make(map[string]struct{})
	for _, item := range r.items {
		for _, sub := range item.SubItems {
			if sub.IsRedirect() {
				continue
			}
			if _, ok := r.clips[sub.Clip]; !ok {
				missing[sub.Clip] = struct{}{}
			}
		}
	}
	return slices.Sorted(maps.Keys(missing))
}

// Stats returns counts of the registry contents
func (r *Registry) Stats() Stats {
	s := Stats{
		Categories: len(r.categories),
		Items:      len(r.items),
		Clips:      len(r.clips),
	}
	for _, item := range r.items {
		s.SubItems += len(item.SubItems)
		for _, sub := range item.SubItems {
			if sub.IsRedirect() {
				s.Redirects++
			}
		}
	}
	return s
}

// normalizeWeights stores each sub-item's share of the item's clip weight
// and the running cumulative sum. Redirects get zero width. When no clip
// carries weight every field stays zero and selection falls back to uniform.
func normalizeWeights(item *Item) {
	var total float64
	for _, sub := range item.SubItems {
		if !sub.IsRedirect() {
			total += sub.Probability
		}
	}

	var cumulative float64
	for _, sub := range item.SubItems {
		sub.Weight = 0
		if total > 0 && !sub.IsRedirect() {
			sub.Weight = sub.Probability / total
		}
		cumulative += sub.Weight
		sub.Cumulative = cumulative
	}

	// Pin the last weighted entry to exactly 1 against rounding drift
	if total > 0 {
		for i := len(item.SubItems) - 1; i >= 0; i-- {
			if item.SubItems[i].Weight > 0 {
				item.SubItems[i].Cumulative = 1
				break
			}
		}
	}
}
