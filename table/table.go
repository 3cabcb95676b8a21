// Package table implements the table object of the language: map-like
// semantics over a raw Go map, without exposing the map itself.
package table

// Entry is a single key-value pair of a table.
type Entry struct {
	Key   string
	Value any
}

// Consumer visits one entry during iteration. Returning false stops the walk.
type Consumer func(key string, val any) bool

// Dict is the closed operation set of a table. Keys and Values make no
// pairing promise across calls; Entries and ForEach yield explicit pairs.
type Dict interface {
	Len() int
	Get(key string) (val any, exists bool)
	Set(key string, val any)
	Keys() []string
	Values() []any
	Entries() []Entry
	ForEach(consumer Consumer)
	Clear()
}

type Table struct {
	store map[string]any
}

// New returns an empty table backed by a freshly allocated map.
func New() *Table {
	return &Table{store: make(map[string]any)}
}

// From wraps an existing map without copying it. Ownership transfers to the
// table: mutation through any other reference to m stays visible here.
func From(m map[string]any) *Table {
	return &Table{store: m}
}

func (t *Table) Len() int {
	return len(t.store)
}

func (t *Table) Get(key string) (any, bool) {
	val, ok := t.store[key]
	return val, ok
}

func (t *Table) Set(key string, val any) {
	t.store[key] = val
}

func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.store))
	for key := range t.store {
		keys = append(keys, key)
	}

	return keys
}

func (t *Table) Values() []any {
	values := make([]any, 0, len(t.store))
	for _, val := range t.store {
		values = append(values, val)
	}

	return values
}

func (t *Table) Entries() []Entry {
	entries := make([]Entry, 0, len(t.store))
	for key, val := range t.store {
		entries = append(entries, Entry{Key: key, Value: val})
	}

	return entries
}

func (t *Table) ForEach(consumer Consumer) {
	for key, val := range t.store {
		if !consumer(key, val) {
			break
		}
	}
}

// Clear swaps in a fresh map. A map shared via From is left untouched for
// whoever else still holds it.
func (t *Table) Clear() {
	t.store = make(map[string]any)
}
