package stats

import (
	"fmt"
	"sort"
)

// Entry is one category value with its count and share of all rows.
type Entry struct {
	Value   string  `json:"value"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// String formats the entry as "Value: count (pct%)" with one decimal.
func (e Entry) String() string {
	return fmt.Sprintf("%s: %d (%.1f%%)", e.Value, e.Count, e.Percent)
}

// Tally counts occurrences of category values, remembering the order in
// which values were first seen.
type Tally struct {
	counts map[string]int
	order  []string
	total  int
}

func newTally() *Tally {
	return &Tally{counts: make(map[string]int)}
}

func (t *Tally) add(v string) {
	if _, ok := t.counts[v]; !ok {
		t.order = append(t.order, v)
	}
	t.counts[v]++
}

// Len returns the number of distinct values.
func (t *Tally) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Count returns the count for v.
func (t *Tally) Count(v string) int {
	if t == nil {
		return 0
	}
	return t.counts[v]
}

// Ranked returns the entries by descending count. Ties keep first-seen
// order.
func (t *Tally) Ranked() []Entry {
	entries := t.entries(t.valuesInOrder())
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}

// Top returns the first n ranked entries. n <= 0 returns all of them.
func (t *Tally) Top(n int) []Entry {
	ranked := t.Ranked()
	if n > 0 && len(ranked) > n {
		return ranked[:n]
	}
	return ranked
}

// Sorted returns the entries ordered by value.
func (t *Tally) Sorted() []Entry {
	values := t.valuesInOrder()
	sort.Strings(values)
	return t.entries(values)
}

// InOrder returns entries for the given values, skipping values with no
// count.
func (t *Tally) InOrder(values []string) []Entry {
	present := make([]string, 0, len(values))
	for _, v := range values {
		if t.Count(v) > 0 {
			present = append(present, v)
		}
	}
	return t.entries(present)
}

func (t *Tally) valuesInOrder() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.order...)
}

func (t *Tally) entries(values []string) []Entry {
	entries := make([]Entry, 0, len(values))
	for _, v := range values {
		c := t.counts[v]
		var pct float64
		if t.total > 0 {
			pct = float64(c) / float64(t.total) * 100
		}
		entries = append(entries, Entry{Value: v, Count: c, Percent: pct})
	}
	return entries
}
