package domain

import (
	"fmt"
)

// ScopeState is the load state of a channel scope index
type ScopeState int

const (
	ScopeEmpty ScopeState = iota
	ScopeLoading
	ScopeLoaded
)

func (s ScopeState) String() string {
	switch s {
	case ScopeLoading:
		return "loading"
	case ScopeLoaded:
		return "loaded"
	default:
		return "empty"
	}
}

// Matcher is anything that can test a scope key, e.g. a compiled wildcard
type Matcher interface {
	MatchString(s string) bool
}

// ScopeEntry is one (node, attribute) pair found in an animation file
type ScopeEntry struct {
	Ordinal   int
	Node      string
	Attribute string
	Selected  bool
}

// Key returns the "{node}.{attribute}" identity of the entry
func (e ScopeEntry) Key() string {
	return ChannelKey(e.Node, e.Attribute)
}

// ChannelScopeIndex is the enumerable set of channels an import may be limited to.
// It owns its selection; nothing outside the index tracks which entries are chosen.
type ChannelScopeIndex struct {
	state         ScopeState
	source        string
	entries       []ScopeEntry
	refreshNeeded bool
	keepSelection bool
}

// NewChannelScopeIndex creates an empty index that needs a first scan
func NewChannelScopeIndex() *ChannelScopeIndex {
	return &ChannelScopeIndex{
		state:         ScopeEmpty,
		refreshNeeded: true,
		keepSelection: true,
	}
}

// State returns the current load state
func (idx *ChannelScopeIndex) State() ScopeState {
	return idx.state
}

// Source returns the file the entries were scanned from
func (idx *ChannelScopeIndex) Source() string {
	return idx.source
}

// SavedSelection is the selection carried across a rescan
type SavedSelection struct {
	Keys     []string
	Ordinals []int
	// Entries is the entry count at the time the selection was saved
	Entries int
}

// Empty reports whether nothing was carried over
func (s SavedSelection) Empty() bool {
	return len(s.Keys) == 0
}

// BeginLoad moves the index to Loading and drops its entries.
// It returns the selection to reapply once loading finishes; it is empty when
// every entry should end up selected.
func (idx *ChannelScopeIndex) BeginLoad(source string) SavedSelection {
	var previous SavedSelection
	if idx.keepSelection {
		for _, e := range idx.entries {
			if e.Selected {
				previous.Keys = append(previous.Keys, e.Key())
				previous.Ordinals = append(previous.Ordinals, e.Ordinal)
			}
		}
		previous.Entries = len(idx.entries)
	}
	idx.state = ScopeLoading
	idx.source = source
	idx.entries = nil
	return previous
}

// Append adds an entry while loading. Duplicates are kept.
func (idx *ChannelScopeIndex) Append(node, attribute string) {
	idx.entries = append(idx.entries, ScopeEntry{
		Ordinal:   len(idx.entries) + 1,
		Node:      node,
		Attribute: attribute,
	})
}

// FinishLoad completes a scan. A non-empty previous selection is reapplied by
// key when every key still exists. When remapping renamed the keys but the
// entry count is unchanged, it is reapplied by ordinal instead. An empty
// previous selection selects everything.
func (idx *ChannelScopeIndex) FinishLoad(previous SavedSelection) {
	switch {
	case previous.Empty():
		idx.SelectAll()
	case !idx.hasAllKeys(previous.Keys) && previous.Entries == len(idx.entries):
		idx.selectOrdinals(previous.Ordinals)
	default:
		idx.SelectKeys(previous.Keys)
	}
	idx.state = ScopeLoaded
	idx.refreshNeeded = false
	idx.keepSelection = true
}

func (idx *ChannelScopeIndex) hasAllKeys(keys []string) bool {
	present := make(map[string]bool, len(idx.entries))
	for _, e := range idx.entries {
		present[e.Key()] = true
	}
	for _, k := range keys {
		if !present[k] {
			return false
		}
	}
	return true
}

func (idx *ChannelScopeIndex) selectOrdinals(ordinals []int) {
	for _, o := range ordinals {
		if o >= 1 && o <= len(idx.entries) {
			idx.entries[o-1].Selected = true
		}
	}
}

// Reset returns the index to its empty state
func (idx *ChannelScopeIndex) Reset() {
	idx.state = ScopeEmpty
	idx.source = ""
	idx.entries = nil
	idx.refreshNeeded = true
	idx.keepSelection = true
}

// MarkStale flags the index for a rescan. keepSelection false means the next scan
// starts from a full selection instead of the current one.
func (idx *ChannelScopeIndex) MarkStale(keepSelection bool) {
	idx.refreshNeeded = true
	idx.keepSelection = keepSelection
}

// RefreshNeeded reports whether configuration or the source changed since the last scan
func (idx *ChannelScopeIndex) RefreshNeeded() bool {
	return idx.refreshNeeded
}

// Len returns the number of entries
func (idx *ChannelScopeIndex) Len() int {
	return len(idx.entries)
}

// Entries returns a copy of all entries in scan order
func (idx *ChannelScopeIndex) Entries() []ScopeEntry {
	out := make([]ScopeEntry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Keys returns every entry key in scan order
func (idx *ChannelScopeIndex) Keys() []string {
	keys := make([]string, 0, len(idx.entries))
	for _, e := range idx.entries {
		keys = append(keys, e.Key())
	}
	return keys
}

// SelectedKeys returns the keys of the selected entries in scan order
func (idx *ChannelScopeIndex) SelectedKeys() []string {
	var keys []string
	for _, e := range idx.entries {
		if e.Selected {
			keys = append(keys, e.Key())
		}
	}
	return keys
}

// SelectedCount returns how many entries are selected
func (idx *ChannelScopeIndex) SelectedCount() int {
	count := 0
	for _, e := range idx.entries {
		if e.Selected {
			count++
		}
	}
	return count
}

// SelectAll selects every entry
func (idx *ChannelScopeIndex) SelectAll() {
	for i := range idx.entries {
		idx.entries[i].Selected = true
	}
}

// ClearSelection deselects every entry
func (idx *ChannelScopeIndex) ClearSelection() {
	for i := range idx.entries {
		idx.entries[i].Selected = false
	}
}

// SelectKeys selects every entry whose key is in keys. Other entries are left alone.
func (idx *ChannelScopeIndex) SelectKeys(keys []string) {
	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}
	for i := range idx.entries {
		if wanted[idx.entries[i].Key()] {
			idx.entries[i].Selected = true
		}
	}
}

// FilterSelect selects (additive) or deselects every entry whose key matches m.
// It returns the number of matching entries.
func (idx *ChannelScopeIndex) FilterSelect(m Matcher, additive bool) int {
	matched := 0
	for i := range idx.entries {
		if m.MatchString(idx.entries[i].Key()) {
			idx.entries[i].Selected = additive
			matched++
		}
	}
	return matched
}

// Toggle flips the selection of the entry at a 1-based ordinal
func (idx *ChannelScopeIndex) Toggle(ordinal int) error {
	if ordinal < 1 || ordinal > len(idx.entries) {
		return fmt.Errorf("no channel at position %d", ordinal)
	}
	idx.entries[ordinal-1].Selected = !idx.entries[ordinal-1].Selected
	return nil
}

// IsSelected reports whether a selected entry has exactly this key.
// An index with no selection is fully selected first, as a scope with nothing
// chosen would otherwise reject every record.
func (idx *ChannelScopeIndex) IsSelected(key string) bool {
	if idx.SelectedCount() == 0 {
		idx.SelectAll()
	}
	for _, e := range idx.entries {
		if e.Selected && e.Key() == key {
			return true
		}
	}
	return false
}

// Label renders the status line shown next to the channel list
func (idx *ChannelScopeIndex) Label() string {
	num := idx.SelectedCount()
	s := "s"
	if num == 1 {
		s = ""
	}
	state := "Refreshed"
	if idx.refreshNeeded {
		state = "Refresh Needed"
	}
	return fmt.Sprintf("%d Channel%s Scoped (%s)", num, s, state)
}
